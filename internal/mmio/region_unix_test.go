//go:build !windows

package mmio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Open_Creates_File_Rounded_Up_To_PageSize(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "list.dat")

	r, err := Open(path, 100, ReadWrite)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.Base(), PageSize)
}

func Test_Open_Rounds_Requested_Bytes_Up_To_Whole_Pages(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "list.dat")

	r, err := Open(path, PageSize+1, ReadWrite)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.Base(), 2*PageSize)
}

func Test_Region_Remap_Grows_View_And_Preserves_Existing_Bytes(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "list.dat")

	r, err := Open(path, PageSize, ReadWrite)
	require.NoError(t, err)
	defer r.Close()

	r.Base()[0] = 0xAB

	err = r.Remap(3*PageSize, false)
	require.NoError(t, err)
	require.Len(t, r.Base(), 3*PageSize)
	require.Equal(t, byte(0xAB), r.Base()[0])
}

func Test_Region_Remap_Downgrades_Shrink_To_NoOp_When_Other_Process_Holds_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "list.dat")

	r, err := Open(path, 4*PageSize, ReadWrite)
	require.NoError(t, err)
	defer r.Close()

	err = r.Remap(PageSize, true)
	require.NoError(t, err)
	require.Len(t, r.Base(), 4*PageSize, "shrink must be downgraded to a no-op when another process still holds the file")
}

func Test_Region_Remap_Shrinks_File_When_No_Other_Process_Holds_It(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "list.dat")

	r, err := Open(path, 4*PageSize, ReadWrite)
	require.NoError(t, err)
	defer r.Close()

	err = r.Remap(PageSize, false)
	require.NoError(t, err)
	require.Len(t, r.Base(), PageSize)
}

func Test_Open_Read_Only_Does_Not_Grow_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "list.dat")

	w, err := Open(path, PageSize, ReadWrite)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := Open(path, 10*PageSize, ReadOnly)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.Base(), PageSize, "read-only open must never extend the file")
}
