package compactint

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tickstore/listmmf/mmlist"
)

func Test_List_OpenWriter_OpenReader_Roundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "values.dat")

	w, err := OpenWriter(I32, path, 0, 4096)
	require.NoError(t, err)

	require.NoError(t, w.Append(42))
	require.NoError(t, w.Append(-17))
	require.NoError(t, w.Close())

	r, err := OpenReader(path, 0)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, I32, r.Codec())
	require.EqualValues(t, 2, r.Count())

	v0, err := r.Get(0)
	require.NoError(t, err)
	require.EqualValues(t, 42, v0)

	v1, err := r.Get(1)
	require.NoError(t, err)
	require.EqualValues(t, -17, v1)
}

func Test_List_OpenReader_Infers_Codec_From_DataType_Tag(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "values.dat")

	w, err := OpenWriter(U16, path, 0, 4096)
	require.NoError(t, err)
	require.NoError(t, w.Append(65535))
	require.NoError(t, w.Close())

	r, err := OpenReader(path, 0)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, U16, r.Codec())
}

func Test_List_OpenWriter_Rejects_Mismatched_Codec_On_Existing_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "values.dat")

	w, err := OpenWriter(I16, path, 0, 4096)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = OpenWriter(I32, path, 0, 4096)
	require.Error(t, err)
	require.True(t, errors.Is(err, mmlist.ErrIncompatible))
}

func Test_List_Append_Rejects_Out_Of_Range_Value_And_Leaves_Count_Unchanged(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "values.dat")

	w, err := OpenWriter(U8, path, 0, 4096)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append(200))

	err = w.Append(256)

	var rangeErr *RangeExceededError
	require.ErrorAs(t, err, &rangeErr)
	require.True(t, errors.Is(err, ErrRangeExceeded))
	require.EqualValues(t, 256, rangeErr.Value)
	require.Equal(t, U8, rangeErr.Current)
	require.EqualValues(t, 1, w.Count())
}

func Test_List_Set_Rejects_Out_Of_Range_Value_Without_Mutating_Storage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "values.dat")

	w, err := OpenWriter(I8, path, 0, 4096)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append(10))

	err = w.Set(0, 1000)
	require.Error(t, err)

	v, err := w.Get(0)
	require.NoError(t, err)
	require.EqualValues(t, 10, v)
}

func Test_List_BulkAppend_Validates_Every_Value_Before_Writing_Any(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "values.dat")

	w, err := OpenWriter(U8, path, 0, 4096)
	require.NoError(t, err)
	defer w.Close()

	err = w.BulkAppend([]int64{1, 2, 300, 4})
	require.Error(t, err)
	require.EqualValues(t, 0, w.Count())
}

func Test_List_NextWider_Suggestion_Is_Signed_For_Negative_Value(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "values.dat")

	w, err := OpenWriter(U8, path, 0, 4096)
	require.NoError(t, err)
	defer w.Close()

	// U8 cannot hold a negative value at all, so the very first append
	// already triggers a range error with a signed suggestion.
	err = w.Append(-1)

	var rangeErr *RangeExceededError
	require.ErrorAs(t, err, &rangeErr)
	require.True(t, rangeErr.Suggested.Signed())
}

func Test_List_Utilization_Reports_Zero_Before_Any_Write(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "values.dat")

	w, err := OpenWriter(I32, path, 0, 4096)
	require.NoError(t, err)
	defer w.Close()

	require.Zero(t, w.Utilization())
}

func Test_List_Utilization_Tracks_Largest_Magnitude_Observed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "values.dat")

	w, err := OpenWriter(I8, path, 0, 4096)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append(-100))
	require.NoError(t, w.Append(10))

	require.InDelta(t, 100.0/127.0, w.Utilization(), 0.001)
}

func Test_List_SetUtilizationWarning_Fires_Once_When_Threshold_Crossed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "values.dat")

	w, err := OpenWriter(I8, path, 0, 4096)
	require.NoError(t, err)
	defer w.Close()

	var calls int

	var lastUtil float64

	w.SetUtilizationWarning(0.5, func(u float64) {
		calls++
		lastUtil = u
	})

	require.NoError(t, w.Append(10))
	require.Zero(t, calls)

	require.NoError(t, w.Append(100))
	require.Equal(t, 1, calls)
	require.GreaterOrEqual(t, lastUtil, 0.5)

	require.NoError(t, w.Append(120))
	require.Equal(t, 1, calls, "warning must fire at most once per SetUtilizationWarning call")
}

func Test_List_TruncateTail_Shrinks_Count(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "values.dat")

	w, err := OpenWriter(I32, path, 0, 4096)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.BulkAppend([]int64{1, 2, 3, 4, 5}))
	require.NoError(t, w.TruncateTail(2))
	require.EqualValues(t, 2, w.Count())
}

func Test_List_Range_Decodes_Into_Freshly_Allocated_Slice(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "values.dat")

	w, err := OpenWriter(I16, path, 0, 4096)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.BulkAppend([]int64{10, -20, 30}))

	got, err := w.Range(0, 3)
	require.NoError(t, err)
	require.Equal(t, []int64{10, -20, 30}, got)
}
