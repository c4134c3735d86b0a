package compactint

import (
	"fmt"
	"strconv"

	"github.com/tickstore/listmmf/internal/fsx"
)

// upgradeChunkItems bounds each bulk decode/encode pass during Upgrade to
// 512 elements (one 4096-byte page at 8 bytes per element, less than a
// page at narrower widths), matching spec.md
// §4.6 step 3's "bulk buffered copy, not per-element calls".
const upgradeChunkItems = 512

// Upgrade rewrites the compact-integer file at path to target's wider
// encoding, following spec.md §4.6's six-step protocol: stage at
// path+".upgrading", bulk-copy decode/encode, fsync, rename pair, delete
// the backup. The source file remains readable by existing handles
// throughout; only a reopen after the rename observes the new encoding.
func Upgrade(path string, h uint32, target IntCodec) error {
	src, err := OpenReader(path, h)
	if err != nil {
		return fmt.Errorf("compactint: upgrade: open source: %w", err)
	}
	defer src.Close()

	upgradingPath := path + ".upgrading"
	backupPath := path + ".backup"
	markerPath := upgradingPath + ".meta"

	count := src.Count()
	targetWidth := int64(target.Bits() / 8)

	fs := fsx.NewReal()
	aw := fsx.NewAtomicWriter(fs)

	// Durably record that staging has begun (target width and signedness)
	// before the bulk copy starts. RecoverCrash deletes this marker along
	// with any ".upgrading" file; it does not read the marker's contents.
	marker := strconv.Itoa(target.Bits()) + " " + strconv.FormatBool(target.Signed())
	if err := aw.WriteFile(markerPath, []byte(marker)); err != nil {
		return fmt.Errorf("compactint: upgrade: write stage marker: %w", err)
	}

	dst, err := OpenWriter(target, upgradingPath, h, int64(h)+16+count*targetWidth)
	if err != nil {
		return fmt.Errorf("compactint: upgrade: create target: %w", err)
	}

	for i := int64(0); i < count; i += upgradeChunkItems {
		n := int64(upgradeChunkItems)
		if i+n > count {
			n = count - i
		}

		span, err := src.Range(i, n)
		if err != nil {
			_ = dst.Close()
			return fmt.Errorf("compactint: upgrade: read chunk at %d: %w", i, err)
		}

		if err := dst.BulkAppend(span); err != nil {
			_ = dst.Close()
			return fmt.Errorf("compactint: upgrade: write chunk at %d: %w", i, err)
		}
	}

	if err := dst.Sync(); err != nil {
		_ = dst.Close()
		return fmt.Errorf("compactint: upgrade: sync target: %w", err)
	}

	if err := dst.Close(); err != nil {
		return fmt.Errorf("compactint: upgrade: close target: %w", err)
	}

	if err := aw.SwapRename(path, upgradingPath, backupPath); err != nil {
		return fmt.Errorf("compactint: upgrade: swap: %w", err)
	}

	if err := fsx.FsyncDir(path); err != nil {
		return fmt.Errorf("compactint: upgrade: fsync dir: %w", err)
	}

	if err := fs.Remove(backupPath); err != nil {
		return fmt.Errorf("compactint: upgrade: delete backup: %w", err)
	}

	if err := fs.Remove(markerPath); err != nil {
		return fmt.Errorf("compactint: upgrade: delete stage marker: %w", err)
	}

	return nil
}

// RecoverCrash applies spec.md §4.6's crash-recovery rules and must be
// called before opening path for writing: if path+".upgrading" exists,
// delete it (along with its stage marker, if any); if path is missing but
// path+".backup" exists, promote the backup; if both path and the backup
// exist, delete the backup.
func RecoverCrash(path string) error {
	fs := fsx.NewReal()

	upgradingPath := path + ".upgrading"
	backupPath := path + ".backup"
	markerPath := upgradingPath + ".meta"

	if _, err := fs.Stat(upgradingPath); err == nil {
		if err := fs.Remove(upgradingPath); err != nil {
			return fmt.Errorf("compactint: recover: remove %q: %w", upgradingPath, err)
		}
	}

	if _, err := fs.Stat(markerPath); err == nil {
		if err := fs.Remove(markerPath); err != nil {
			return fmt.Errorf("compactint: recover: remove %q: %w", markerPath, err)
		}
	}

	_, pathErr := fs.Stat(path)
	_, backupErr := fs.Stat(backupPath)

	switch {
	case pathErr != nil && backupErr == nil:
		if err := fs.Rename(backupPath, path); err != nil {
			return fmt.Errorf("compactint: recover: promote backup: %w", err)
		}
	case pathErr == nil && backupErr == nil:
		if err := fs.Remove(backupPath); err != nil {
			return fmt.Errorf("compactint: recover: remove stale backup: %w", err)
		}
	}

	return nil
}
