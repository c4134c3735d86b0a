package fsx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_AtomicWriter_WriteFile_Creates_File_With_Exact_Contents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.bin")

	w := NewAtomicWriter(NewReal())
	require.NoError(t, w.WriteFile(path, []byte("compact-int width upgrade")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "compact-int width upgrade", string(got))
}

func Test_AtomicWriter_WriteFile_Leaves_No_Temp_File_Behind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	w := NewAtomicWriter(NewReal())
	require.NoError(t, w.WriteFile(path, []byte("data")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "out.bin", entries[0].Name())
}

func Test_AtomicWriter_SwapRename_Promotes_Staged_File_And_Backs_Up_Current(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	current := filepath.Join(dir, "values.dat")
	staged := filepath.Join(dir, "values.dat.staged")
	backup := filepath.Join(dir, "values.dat.backup")

	require.NoError(t, os.WriteFile(current, []byte("old-width"), 0o600))
	require.NoError(t, os.WriteFile(staged, []byte("new-width"), 0o600))

	w := NewAtomicWriter(NewReal())
	require.NoError(t, w.SwapRename(current, staged, backup))

	got, err := os.ReadFile(current)
	require.NoError(t, err)
	require.Equal(t, "new-width", string(got))

	backupData, err := os.ReadFile(backup)
	require.NoError(t, err)
	require.Equal(t, "old-width", string(backupData))

	_, err = os.Stat(staged)
	require.True(t, os.IsNotExist(err), "staged file must be consumed by the rename")
}

func Test_AtomicWriter_SwapRename_Fails_When_Current_Is_Missing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	current := filepath.Join(dir, "values.dat")
	staged := filepath.Join(dir, "values.dat.staged")
	backup := filepath.Join(dir, "values.dat.backup")

	require.NoError(t, os.WriteFile(staged, []byte("new-width"), 0o600))

	w := NewAtomicWriter(NewReal())
	err := w.SwapRename(current, staged, backup)
	require.Error(t, err)

	_, statErr := os.Stat(staged)
	require.NoError(t, statErr, "a failed first rename must leave the staged file untouched")
}

func Test_AtomicWriter_SwapRename_Surfaces_Injected_Rename_Failure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	current := filepath.Join(dir, "values.dat")
	staged := filepath.Join(dir, "values.dat.staged")
	backup := filepath.Join(dir, "values.dat.backup")

	require.NoError(t, os.WriteFile(current, []byte("old"), 0o600))
	require.NoError(t, os.WriteFile(staged, []byte("new"), 0o600))

	flaky := NewFlaky(NewReal(), FlakyConfig{RenameFailRate: 1}, 11)
	w := NewAtomicWriter(flaky)

	err := w.SwapRename(current, staged, backup)
	require.Error(t, err)

	got, readErr := os.ReadFile(current)
	require.NoError(t, readErr)
	require.Equal(t, "old", string(got), "injected failure on the first rename must leave current untouched")
}

func Test_FsyncDir_Succeeds_On_An_Existing_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "file.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	require.NoError(t, FsyncDir(path))
}
