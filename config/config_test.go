package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tickstore/listmmf/compactint"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "provision.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func Test_Load_Parses_Well_Formed_Entries(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `{
		"entries": [
			{"path": "trades.dat", "kind": "compactint", "encoding": "u24", "min_bytes": 4096},
			{"path": "bits.dat", "kind": "bitlist"},
			{"path": "times.dat", "kind": "tsindex", "order": "strictly_ascending"}
		]
	}`)

	spec, err := Load(path)
	require.NoError(t, err)
	require.Len(t, spec.Entries, 3)

	require.Equal(t, "trades.dat", spec.Entries[0].Path)
	require.Equal(t, KindCompactInt, spec.Entries[0].Kind)
	require.Equal(t, "u24", spec.Entries[0].Encoding)
	require.EqualValues(t, 4096, spec.Entries[0].MinBytes)

	require.Equal(t, KindBitList, spec.Entries[1].Kind)

	require.Equal(t, KindTSIndex, spec.Entries[2].Kind)
	require.Equal(t, OrderStrictlyAscending, spec.Entries[2].Order)
}

func Test_Load_Accepts_JSONC_Comments_And_Trailing_Commas(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `{
		// provisioned tick-series files
		"entries": [
			{
				"path": "trades.dat",
				"kind": "compactint",
				"encoding": "i32", // logical price scale
			},
		],
	}`)

	spec, err := Load(path)
	require.NoError(t, err)
	require.Len(t, spec.Entries, 1)
	require.Equal(t, "i32", spec.Entries[0].Encoding)
}

func Test_Load_Fails_On_Missing_File(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.jsonc"))
	require.Error(t, err)
}

func Test_Load_Fails_On_Invalid_JSONC(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `{ this is not json `)

	_, err := Load(path)
	require.Error(t, err)
}

func Test_Load_Rejects_Unknown_Kind(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `{"entries": [{"path": "x.dat", "kind": "bogus"}]}`)

	_, err := Load(path)
	require.Error(t, err)
}

func Test_Load_Rejects_CompactInt_Entry_Without_Encoding(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `{"entries": [{"path": "x.dat", "kind": "compactint"}]}`)

	_, err := Load(path)
	require.Error(t, err)
}

func Test_Load_Rejects_Unknown_Encoding(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `{"entries": [{"path": "x.dat", "kind": "compactint", "encoding": "i17"}]}`)

	_, err := Load(path)
	require.Error(t, err)
}

func Test_Load_Rejects_Reserved_Header_Bytes_Not_Multiple_Of_Eight(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `{"entries": [{"path": "x.dat", "kind": "bitlist", "reserved_header_bytes": 3}]}`)

	_, err := Load(path)
	require.Error(t, err)
}

func Test_Load_Rejects_Unknown_Order_On_TSIndex_Entry(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `{"entries": [{"path": "x.dat", "kind": "tsindex", "order": "sideways"}]}`)

	_, err := Load(path)
	require.Error(t, err)
}

func Test_CodecFor_Maps_Every_Documented_Encoding_Name(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		codec compactint.IntCodec
	}{
		{"i8", compactint.I8}, {"u8", compactint.U8},
		{"i16", compactint.I16}, {"u16", compactint.U16},
		{"i24", compactint.I24}, {"u24", compactint.U24},
		{"i32", compactint.I32}, {"u32", compactint.U32},
		{"i40", compactint.I40}, {"u40", compactint.U40},
		{"i48", compactint.I48}, {"u48", compactint.U48},
		{"i56", compactint.I56}, {"u56", compactint.U56},
		{"i64", compactint.I64}, {"u64", compactint.U64},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := CodecFor(tc.name)
			require.NoError(t, err)
			require.Equal(t, tc.codec, got)
		})
	}
}

func Test_CodecFor_Rejects_Unknown_Name(t *testing.T) {
	t.Parallel()

	_, err := CodecFor("not-a-codec")
	require.Error(t, err)
}
