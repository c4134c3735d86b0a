package mmio

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Header is a typed overlay over the fixed three fields that sit
// immediately after the caller's reserved region H (spec.md §3): a
// monotonic version counter, a data-type tag, and the atomic logical
// element count. H itself belongs to the caller (bitlist reserves 8 bytes
// there; tsindex uses H=0); Header never reads or writes it.
//
// Grounded on the teacher's slc1Header fixed-offset layout in
// pkg/slotcache/format.go, narrowed from the slot-cache's ~20 header fields
// down to the three this spec defines, with the count field's atomicity
// elevated from a convention to the type's actual contract.
type Header struct {
	base []byte
	h    uint32
}

// NewHeader returns a [Header] overlaying base at reserved-region size h.
// h must be a multiple of 8 (spec.md §3) and base must be at least h+16
// bytes long.
func NewHeader(base []byte, h uint32) (Header, error) {
	if h%8 != 0 {
		return Header{}, fmt.Errorf("%w: reserved header size %d is not a multiple of 8", ErrInvalidArgument, h)
	}

	if len(base) < int(h)+16 {
		return Header{}, fmt.Errorf("%w: mapped region of %d bytes too small for header at H=%d", ErrInvalidArgument, len(base), h)
	}

	return Header{base: base, h: h}, nil
}

// Rebase returns a copy of hd overlaying a new base slice, used after a
// mmio.Region.Remap replaces the mapped view.
func (hd Header) Rebase(base []byte) Header {
	hd.base = base
	return hd
}

func (hd Header) versionOffset() uint32  { return hd.h }
func (hd Header) dataTypeOffset() uint32 { return hd.h + 4 }
func (hd Header) countOffset() uint32    { return hd.h + 8 }

// ElementsOffset is the byte offset where element data begins.
func (hd Header) ElementsOffset() uint32 { return hd.h + 16 }

// Version returns the monotonic write counter. Per spec.md §4.2 this field
// is optional and may be left at 0.
func (hd Header) Version() uint32 {
	return binary.LittleEndian.Uint32(hd.base[hd.versionOffset():])
}

// SetVersion writes the monotonic write counter.
func (hd Header) SetVersion(v uint32) {
	binary.LittleEndian.PutUint32(hd.base[hd.versionOffset():], v)
}

// DataType returns the encoding tag.
func (hd Header) DataType() uint32 {
	return binary.LittleEndian.Uint32(hd.base[hd.dataTypeOffset():])
}

// SetDataType writes the encoding tag. Callers must only do this once, at
// creation of a new file (spec.md §4.2) — the field is otherwise immutable
// for the life of the file.
func (hd Header) SetDataType(dt uint32) {
	binary.LittleEndian.PutUint32(hd.base[hd.dataTypeOffset():], dt)
}

func (hd Header) countPtr() *int64 {
	return (*int64)(unsafe.Pointer(&hd.base[hd.countOffset()]))
}

// Count performs a single atomic, naturally aligned 8-byte load of the
// logical element count (spec.md §4.2, §5 load-acquire side of the
// count-field discipline).
func (hd Header) Count() int64 {
	return atomic.LoadInt64(hd.countPtr())
}

// SetCount performs a single atomic, naturally aligned 8-byte store of the
// logical element count (spec.md §5 store-release side). Callers must
// write the element payload before calling SetCount so that any reader
// observing the new count also observes the new element.
func (hd Header) SetCount(n int64) {
	atomic.StoreInt64(hd.countPtr(), n)
}
