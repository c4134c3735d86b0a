package mmlist

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tickstore/listmmf/internal/fsx"
)

func Test_AcquireRegistryEntry_Shares_One_Entry_Per_Identity(t *testing.T) {
	t.Parallel()

	id := fsx.Identity{Dev: 1, Ino: 42}

	e1 := acquireRegistryEntry(id)
	e2 := acquireRegistryEntry(id)

	require.Same(t, e1, e2)
	require.Equal(t, 2, e1.refCount)

	releaseRegistryEntry(id, e2)
	releaseRegistryEntry(id, e1)
}

func Test_ReleaseRegistryEntry_Removes_Entry_When_RefCount_Reaches_Zero(t *testing.T) {
	t.Parallel()

	id := fsx.Identity{Dev: 2, Ino: 7}

	e := acquireRegistryEntry(id)
	releaseRegistryEntry(id, e)

	registryMu.Lock()
	_, stillPresent := registry[id]
	registryMu.Unlock()

	require.False(t, stillPresent)
}

func Test_Different_Identities_Get_Independent_Entries(t *testing.T) {
	t.Parallel()

	idA := fsx.Identity{Dev: 9, Ino: 1}
	idB := fsx.Identity{Dev: 9, Ino: 2}

	eA := acquireRegistryEntry(idA)
	eB := acquireRegistryEntry(idB)

	require.NotSame(t, eA, eB)

	releaseRegistryEntry(idA, eA)
	releaseRegistryEntry(idB, eB)
}
