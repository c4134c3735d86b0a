package fsx

import (
	"math/rand/v2"
	"os"
	"sync"
	"syscall"
)

// FlakyConfig controls fault-injection probabilities for [Flaky]. Each rate
// is in [0, 1]; the zero value disables all injection.
//
// Grounded on the teacher's pkg/fs/chaos.go ChaosConfig, scaled down to the
// handful of operations the width-upgrade coordinator (mmlist §4.6) and the
// crash-recovery tests in this module actually need to exercise.
type FlakyConfig struct {
	// OpenFailRate fails OpenFile calls outright.
	OpenFailRate float64
	// RenameFailRate fails Rename calls before the rename is attempted, so
	// the filesystem is left unchanged.
	RenameFailRate float64
}

// Flaky wraps an [FS] and injects failures per [FlakyConfig], for testing
// the width-upgrade crash-recovery paths without a real crash.
type Flaky struct {
	fs   FS
	cfg  FlakyConfig
	mu   sync.Mutex
	rand *rand.Rand
}

// NewFlaky wraps fs with fault injection seeded deterministically so test
// failures reproduce.
func NewFlaky(fs FS, cfg FlakyConfig, seed uint64) *Flaky {
	return &Flaky{fs: fs, cfg: cfg, rand: rand.New(rand.NewPCG(seed, seed))}
}

func (f *Flaky) roll(rate float64) bool {
	if rate <= 0 {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.rand.Float64() < rate
}

func (f *Flaky) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	if f.roll(f.cfg.OpenFailRate) {
		return nil, &os.PathError{Op: "open", Path: path, Err: syscall.EIO}
	}

	return f.fs.OpenFile(path, flag, perm)
}

func (f *Flaky) Stat(path string) (os.FileInfo, error) { return f.fs.Stat(path) }

func (f *Flaky) Remove(path string) error { return f.fs.Remove(path) }

func (f *Flaky) Rename(oldpath, newpath string) error {
	if f.roll(f.cfg.RenameFailRate) {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EIO}
	}

	return f.fs.Rename(oldpath, newpath)
}

func (f *Flaky) MkdirAll(path string, perm os.FileMode) error { return f.fs.MkdirAll(path, perm) }

var _ FS = (*Flaky)(nil)
