package mmlist

import (
	"sync"

	"github.com/tickstore/listmmf/internal/fsx"
)

// registryEntry is the in-process coordination state shared by every List
// handle open on the same underlying file (by device+inode identity)
// within this process. It is purely an in-process safety net: the
// cross-process contract is carried entirely by the writer lock (§4.4)
// and the count field's atomics (§5); registryEntry only protects this
// process's own goroutines from racing a remap against a concurrent
// element read on a different handle to the same file.
//
// Grounded on the teacher's fileRegistry/fileRegistryEntry in
// pkg/slotcache/lock.go, generalized from "guard mmap reads vs the single
// writer's mutations" to the same shape for mmlist.
type registryEntry struct {
	mapMu    sync.RWMutex // held for read during element access, for write during remap
	refCount int
}

var (
	registryMu sync.Mutex
	registry   = map[fsx.Identity]*registryEntry{}
)

func acquireRegistryEntry(id fsx.Identity) *registryEntry {
	registryMu.Lock()
	defer registryMu.Unlock()

	e, ok := registry[id]
	if !ok {
		e = &registryEntry{}
		registry[id] = e
	}

	e.refCount++

	return e
}

func releaseRegistryEntry(id fsx.Identity, e *registryEntry) {
	registryMu.Lock()
	defer registryMu.Unlock()

	e.refCount--
	if e.refCount == 0 {
		delete(registry, id)
	}
}
