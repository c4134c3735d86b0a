package mmio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_NewHeader_Returns_Error_When_H_Not_Multiple_Of_8(t *testing.T) {
	t.Parallel()

	base := make([]byte, 64)

	_, err := NewHeader(base, 5)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func Test_NewHeader_Returns_Error_When_Base_Too_Small(t *testing.T) {
	t.Parallel()

	base := make([]byte, 8)

	_, err := NewHeader(base, 8)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func Test_Header_SetDataType_Is_Readable_Via_DataType(t *testing.T) {
	t.Parallel()

	base := make([]byte, 32)

	hd, err := NewHeader(base, 0)
	require.NoError(t, err)

	hd.SetDataType(7)
	require.Equal(t, uint32(7), hd.DataType())
}

func Test_Header_SetCount_Is_Readable_Via_Count(t *testing.T) {
	t.Parallel()

	base := make([]byte, 32)

	hd, err := NewHeader(base, 0)
	require.NoError(t, err)

	hd.SetCount(42)
	require.EqualValues(t, 42, hd.Count())
}

func Test_Header_Fields_Offset_By_H(t *testing.T) {
	t.Parallel()

	const h = 16

	base := make([]byte, h+32)

	hd, err := NewHeader(base, h)
	require.NoError(t, err)

	hd.SetVersion(1)
	hd.SetDataType(2)
	hd.SetCount(3)

	require.Equal(t, uint32(h+16), hd.ElementsOffset())
	require.Equal(t, uint32(1), hd.Version())
	require.Equal(t, uint32(2), hd.DataType())
	require.EqualValues(t, 3, hd.Count())

	// Bytes before H are untouched reserved space.
	for i := 0; i < h; i++ {
		require.Zero(t, base[i])
	}
}

func Test_Header_Rebase_Points_At_New_Slice(t *testing.T) {
	t.Parallel()

	base1 := make([]byte, 32)

	hd, err := NewHeader(base1, 0)
	require.NoError(t, err)

	hd.SetCount(10)

	base2 := make([]byte, 32)
	copy(base2, base1)

	hd2 := hd.Rebase(base2)
	require.EqualValues(t, 10, hd2.Count())

	hd2.SetCount(20)
	require.EqualValues(t, 10, hd.Count(), "original header must not observe writes through the rebased copy")
}
