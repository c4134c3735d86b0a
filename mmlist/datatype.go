package mmlist

// DataType is the header's data-type tag (spec.md §6): a stable
// identifier for the on-disk element encoding. Concrete integer values are
// not specified by the format, only the enumerated set and its stability
// once assigned; callers that persist files across builds must not
// renumber this list.
type DataType uint32

const (
	DataTypeEmpty DataType = iota
	DataTypeBit
	DataTypeI8
	DataTypeU8
	DataTypeI16
	DataTypeU16
	DataTypeI32
	DataTypeU32
	DataTypeI64
	DataTypeU64
	DataTypeF32
	DataTypeF64
	DataTypeDateTimeTicks
	DataTypeUnixSeconds
	DataTypeI24AsI64
	DataTypeU24AsI64
	DataTypeI40AsI64
	DataTypeU40AsI64
	DataTypeI48AsI64
	DataTypeU48AsI64
	DataTypeI56AsI64
	DataTypeU56AsI64
	DataTypeAnyStruct
)

func (dt DataType) String() string {
	switch dt {
	case DataTypeEmpty:
		return "empty"
	case DataTypeBit:
		return "bit"
	case DataTypeI8:
		return "i8"
	case DataTypeU8:
		return "u8"
	case DataTypeI16:
		return "i16"
	case DataTypeU16:
		return "u16"
	case DataTypeI32:
		return "i32"
	case DataTypeU32:
		return "u32"
	case DataTypeI64:
		return "i64"
	case DataTypeU64:
		return "u64"
	case DataTypeF32:
		return "f32"
	case DataTypeF64:
		return "f64"
	case DataTypeDateTimeTicks:
		return "date_time_ticks"
	case DataTypeUnixSeconds:
		return "unix_seconds"
	case DataTypeI24AsI64:
		return "i24_as_i64"
	case DataTypeU24AsI64:
		return "u24_as_i64"
	case DataTypeI40AsI64:
		return "i40_as_i64"
	case DataTypeU40AsI64:
		return "u40_as_i64"
	case DataTypeI48AsI64:
		return "i48_as_i64"
	case DataTypeU48AsI64:
		return "u48_as_i64"
	case DataTypeI56AsI64:
		return "i56_as_i64"
	case DataTypeU56AsI64:
		return "u56_as_i64"
	case DataTypeAnyStruct:
		return "any_struct"
	default:
		return "unknown"
	}
}
