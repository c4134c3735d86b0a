package compactint

import (
	"fmt"
	"unsafe"

	"github.com/tickstore/listmmf/mmlist"
)

// W1..W8 are the fixed-size byte-array storage types backing one
// mmlist.List[T] instantiation per on-disk width (spec.md §2 item 3:
// "fixed-size element type T (1..8 bytes)"). compactint is the only
// package that needs the odd widths (3, 5, 6, 7 bytes); bitlist and
// tsindex use native Go integer types directly instead.
type (
	W1 [1]byte
	W2 [2]byte
	W3 [3]byte
	W4 [4]byte
	W5 [5]byte
	W6 [6]byte
	W7 [7]byte
	W8 [8]byte
)

// rawElems erases the mmlist.List[T] element type parameter so the
// façade in list.go can hold one concrete field regardless of which width
// was chosen at open time.
type rawElems interface {
	Count() int64
	Path() string
	DataType() mmlist.DataType
	LockCapacity()
	Close() error
	Width() int

	Get(i int64) ([]byte, error)
	Set(i int64, b []byte) error
	Append(b []byte) error
	BulkAppend(spans [][]byte) error
	TruncateTail(n int64) error
	// Range returns a zero-copy view over [i, i+n) as tightly packed
	// bytes, stride Width() (spec.md §4.9 zero-copy read path).
	Range(i, n int64) ([]byte, error)
	// Sync flushes dirty mapped pages to disk (spec.md §4.6 step 4).
	Sync() error
}

type wordList[W any] struct {
	l     *mmlist.List[W]
	width int
}

func bytesOf[W any](v *W, width int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), width)
}

func (w *wordList[W]) Count() int64              { return w.l.Count() }
func (w *wordList[W]) Path() string              { return w.l.Path() }
func (w *wordList[W]) DataType() mmlist.DataType { return w.l.DataType() }
func (w *wordList[W]) LockCapacity()             { w.l.LockCapacity() }
func (w *wordList[W]) Close() error               { return w.l.Close() }
func (w *wordList[W]) Width() int                 { return w.width }

func (w *wordList[W]) Get(i int64) ([]byte, error) {
	v, err := w.l.Get(i)
	if err != nil {
		return nil, err
	}

	return bytesOf(&v, w.width), nil
}

func (w *wordList[W]) Set(i int64, b []byte) error {
	var v W

	copy(bytesOf(&v, w.width), b)

	return w.l.Set(i, v)
}

func (w *wordList[W]) Append(b []byte) error {
	var v W

	copy(bytesOf(&v, w.width), b)

	return w.l.Append(v)
}

func (w *wordList[W]) BulkAppend(spans [][]byte) error {
	vals := make([]W, len(spans))

	for idx, b := range spans {
		copy(bytesOf(&vals[idx], w.width), b)
	}

	return w.l.BulkAppend(vals)
}

func (w *wordList[W]) TruncateTail(n int64) error { return w.l.TruncateTail(n) }

func (w *wordList[W]) Sync() error { return w.l.Sync() }

func (w *wordList[W]) Range(i, n int64) ([]byte, error) {
	span, err := w.l.Range(i, n)
	if err != nil {
		return nil, err
	}

	if len(span) == 0 {
		return nil, nil
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(&span[0])), len(span)*w.width), nil
}

// dataTypeFor maps a codec's (bits, signed) pair to the header data-type
// tag from spec.md §6.
func dataTypeFor(c IntCodec) mmlist.DataType {
	switch {
	case c.bits == 8 && c.signed:
		return mmlist.DataTypeI8
	case c.bits == 8:
		return mmlist.DataTypeU8
	case c.bits == 16 && c.signed:
		return mmlist.DataTypeI16
	case c.bits == 16:
		return mmlist.DataTypeU16
	case c.bits == 24 && c.signed:
		return mmlist.DataTypeI24AsI64
	case c.bits == 24:
		return mmlist.DataTypeU24AsI64
	case c.bits == 32 && c.signed:
		return mmlist.DataTypeI32
	case c.bits == 32:
		return mmlist.DataTypeU32
	case c.bits == 40 && c.signed:
		return mmlist.DataTypeI40AsI64
	case c.bits == 40:
		return mmlist.DataTypeU40AsI64
	case c.bits == 48 && c.signed:
		return mmlist.DataTypeI48AsI64
	case c.bits == 48:
		return mmlist.DataTypeU48AsI64
	case c.bits == 56 && c.signed:
		return mmlist.DataTypeI56AsI64
	case c.bits == 56:
		return mmlist.DataTypeU56AsI64
	case c.bits == 64 && c.signed:
		return mmlist.DataTypeI64
	default:
		return mmlist.DataTypeU64
	}
}

func openRawWriter(c IntCodec, path string, h uint32, minBytes int64) (rawElems, error) {
	dt := dataTypeFor(c)

	switch c.bits / 8 {
	case 1:
		l, err := mmlist.OpenWriter[W1](path, h, dt, minBytes)
		return wrapOrNil[W1](l, 1, err)
	case 2:
		l, err := mmlist.OpenWriter[W2](path, h, dt, minBytes)
		return wrapOrNil[W2](l, 2, err)
	case 3:
		l, err := mmlist.OpenWriter[W3](path, h, dt, minBytes)
		return wrapOrNil[W3](l, 3, err)
	case 4:
		l, err := mmlist.OpenWriter[W4](path, h, dt, minBytes)
		return wrapOrNil[W4](l, 4, err)
	case 5:
		l, err := mmlist.OpenWriter[W5](path, h, dt, minBytes)
		return wrapOrNil[W5](l, 5, err)
	case 6:
		l, err := mmlist.OpenWriter[W6](path, h, dt, minBytes)
		return wrapOrNil[W6](l, 6, err)
	case 7:
		l, err := mmlist.OpenWriter[W7](path, h, dt, minBytes)
		return wrapOrNil[W7](l, 7, err)
	case 8:
		l, err := mmlist.OpenWriter[W8](path, h, dt, minBytes)
		return wrapOrNil[W8](l, 8, err)
	default:
		return nil, fmt.Errorf("compactint: unsupported width %d bits", c.bits)
	}
}

func openRawReader(c IntCodec, path string, h uint32) (rawElems, error) {
	dt := dataTypeFor(c)

	switch c.bits / 8 {
	case 1:
		l, err := mmlist.OpenReader[W1](path, h, dt)
		return wrapOrNil[W1](l, 1, err)
	case 2:
		l, err := mmlist.OpenReader[W2](path, h, dt)
		return wrapOrNil[W2](l, 2, err)
	case 3:
		l, err := mmlist.OpenReader[W3](path, h, dt)
		return wrapOrNil[W3](l, 3, err)
	case 4:
		l, err := mmlist.OpenReader[W4](path, h, dt)
		return wrapOrNil[W4](l, 4, err)
	case 5:
		l, err := mmlist.OpenReader[W5](path, h, dt)
		return wrapOrNil[W5](l, 5, err)
	case 6:
		l, err := mmlist.OpenReader[W6](path, h, dt)
		return wrapOrNil[W6](l, 6, err)
	case 7:
		l, err := mmlist.OpenReader[W7](path, h, dt)
		return wrapOrNil[W7](l, 7, err)
	case 8:
		l, err := mmlist.OpenReader[W8](path, h, dt)
		return wrapOrNil[W8](l, 8, err)
	default:
		return nil, fmt.Errorf("compactint: unsupported width %d bits", c.bits)
	}
}

func wrapOrNil[W any](l *mmlist.List[W], width int, err error) (rawElems, error) {
	if err != nil {
		return nil, err
	}

	return &wordList[W]{l: l, width: width}, nil
}
