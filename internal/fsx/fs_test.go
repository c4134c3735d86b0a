package fsx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Real_OpenFile_Write_Read_Roundtrips(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.bin")

	real := NewReal()

	f, err := real.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f2, err := real.OpenFile(path, os.O_RDONLY, 0)
	require.NoError(t, err)
	defer f2.Close()

	got := make([]byte, 5)
	_, err = f2.Read(got)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))
}

func Test_Real_Stat_Reports_Size(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("abcd"), 0o600))

	info, err := NewReal().Stat(path)
	require.NoError(t, err)
	require.EqualValues(t, 4, info.Size())
}

func Test_Real_Remove_Is_Not_An_Error_When_File_Is_Missing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nonexistent.bin")

	require.NoError(t, NewReal().Remove(path))
}

func Test_Real_Rename_Moves_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	oldpath := filepath.Join(dir, "old.bin")
	newpath := filepath.Join(dir, "new.bin")

	require.NoError(t, os.WriteFile(oldpath, []byte("x"), 0o600))

	real := NewReal()
	require.NoError(t, real.Rename(oldpath, newpath))

	_, err := os.Stat(oldpath)
	require.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(newpath)
	require.NoError(t, err)
	require.Equal(t, "x", string(data))
}

func Test_Real_MkdirAll_Creates_Nested_Directories(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, NewReal().MkdirAll(dir, 0o755))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
