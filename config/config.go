// Package config loads the small set of options a caller must supply once
// per tick-series file: its kind, element encoding, reserved header size,
// and (for time-series files) ordering policy. Files are human-edited
// JSONC, standardized to JSON via hujson the way the teacher's own
// config.go loads its `.tk.json` (spec.md has no CLI surface — this is
// ambient configuration plumbing consumed by other Go code, not a CLI).
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"github.com/tickstore/listmmf/compactint"
)

// Kind names which package provisions a file described by an Entry.
type Kind string

const (
	KindList       Kind = "list"
	KindCompactInt Kind = "compactint"
	KindBitList    Kind = "bitlist"
	KindTSIndex    Kind = "tsindex"
)

// Order mirrors tsindex.OrderPolicy in the config file's vocabulary.
type Order string

const (
	OrderNone              Order = "none"
	OrderWeaklyAscending   Order = "weakly_ascending"
	OrderStrictlyAscending Order = "strictly_ascending"
)

// Entry describes one provisioned file.
type Entry struct {
	Path string `json:"path"`
	Kind Kind   `json:"kind"`

	// ReservedHeaderBytes is H (spec.md §3); must be a multiple of 8.
	ReservedHeaderBytes uint32 `json:"reserved_header_bytes,omitempty"`

	// Encoding names a compactint codec variant (e.g. "i32", "u24") and
	// applies only when Kind is KindCompactInt.
	Encoding string `json:"encoding,omitempty"`

	// Order applies only when Kind is KindTSIndex.
	Order Order `json:"order,omitempty"`

	// MinBytes pre-sizes the file's initial capacity on first writer open.
	MinBytes int64 `json:"min_bytes,omitempty"`
}

// Spec is the top-level shape of a config file: the set of tick-series
// files this deployment provisions.
type Spec struct {
	Entries []Entry `json:"entries"`
}

// Load reads path, standardizes it from JSONC to JSON via hujson, and
// unmarshals it into a Spec. It then validates every entry.
func Load(path string) (Spec, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled deployment config
	if err != nil {
		return Spec{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Spec{}, fmt.Errorf("config: %q is not valid JSONC: %w", path, err)
	}

	var spec Spec

	if err := json.Unmarshal(standardized, &spec); err != nil {
		return Spec{}, fmt.Errorf("config: %q is not valid JSON after standardization: %w", path, err)
	}

	for i, e := range spec.Entries {
		if err := validateEntry(e); err != nil {
			return Spec{}, fmt.Errorf("config: %q entry %d (%s): %w", path, i, e.Path, err)
		}
	}

	return spec, nil
}

func validateEntry(e Entry) error {
	if e.Path == "" {
		return fmt.Errorf("path must not be empty")
	}

	switch e.Kind {
	case KindList, KindCompactInt, KindBitList, KindTSIndex:
	default:
		return fmt.Errorf("unknown kind %q", e.Kind)
	}

	if e.ReservedHeaderBytes%8 != 0 {
		return fmt.Errorf("reserved_header_bytes %d is not a multiple of 8", e.ReservedHeaderBytes)
	}

	if e.Kind == KindCompactInt {
		if e.Encoding == "" {
			return fmt.Errorf("kind %q requires encoding", KindCompactInt)
		}

		if _, err := CodecFor(e.Encoding); err != nil {
			return err
		}
	}

	if e.Kind == KindTSIndex {
		switch e.Order {
		case "", OrderNone, OrderWeaklyAscending, OrderStrictlyAscending:
		default:
			return fmt.Errorf("unknown order %q", e.Order)
		}
	}

	if e.MinBytes < 0 {
		return fmt.Errorf("min_bytes must not be negative")
	}

	return nil
}

// CodecFor maps a config file's encoding name (e.g. "i32", "u24") to the
// corresponding compactint.IntCodec.
func CodecFor(name string) (compactint.IntCodec, error) {
	switch name {
	case "i8":
		return compactint.I8, nil
	case "u8":
		return compactint.U8, nil
	case "i16":
		return compactint.I16, nil
	case "u16":
		return compactint.U16, nil
	case "i24":
		return compactint.I24, nil
	case "u24":
		return compactint.U24, nil
	case "i32":
		return compactint.I32, nil
	case "u32":
		return compactint.U32, nil
	case "i40":
		return compactint.I40, nil
	case "u40":
		return compactint.U40, nil
	case "i48":
		return compactint.I48, nil
	case "u48":
		return compactint.U48, nil
	case "i56":
		return compactint.I56, nil
	case "u56":
		return compactint.U56, nil
	case "i64":
		return compactint.I64, nil
	case "u64":
		return compactint.U64, nil
	default:
		return compactint.IntCodec{}, fmt.Errorf("unknown compact-integer encoding %q", name)
	}
}
