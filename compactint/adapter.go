package compactint

import (
	"fmt"
	"sync"
	"unsafe"
)

// ZeroCopyI64 returns a borrowed []int64 view over [i, i+n), valid only
// when the façade's on-disk width already matches i64 (spec.md §4.9
// "available only when the on-disk encoding already matches i64 width").
// The slice aliases mapped memory and must not outlive the current
// operation; it is invalidated by the next mutating call on l.
//
// This reinterprets the underlying W8 byte-array storage directly as
// int64, which is bit-correct only on little-endian hosts — the only
// hosts this package's on-disk format (spec.md §6, bit-exact
// little-endian) targets.
func (l *List) ZeroCopyI64(i, n int64) ([]int64, error) {
	if l.codec.Bits() != 64 {
		return nil, fmt.Errorf("compactint: zero-copy requires a 64-bit encoding, got %d-bit", l.codec.Bits())
	}

	raw, err := l.raw.Range(i, n)
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return nil, nil
	}

	return unsafe.Slice((*int64)(unsafe.Pointer(&raw[0])), n), nil
}

// i64BufferPool backs PooledI64 for odd on-disk widths (spec.md §9 "no
// hidden allocation on hot paths": the pool amortizes the allocation a
// decode would otherwise need on every call).
var i64BufferPool = sync.Pool{
	New: func() any { return make([]int64, 0, 4096) },
}

// PooledI64 decodes [i, i+n) into a buffer rented from a shared pool,
// returning the filled slice plus a disposer that must be called exactly
// once when the caller is done with it (spec.md §4.9 "pooled decode").
// The slice must not be used after dispose is called.
func (l *List) PooledI64(i, n int64) (values []int64, dispose func(), err error) {
	width := l.codec.Bits() / 8

	raw, err := l.raw.Range(i, n)
	if err != nil {
		return nil, nil, err
	}

	buf, _ := i64BufferPool.Get().([]int64)
	if int64(cap(buf)) < n {
		buf = make([]int64, n)
	} else {
		buf = buf[:n]
	}

	for idx := range buf {
		buf[idx] = l.codec.Decode(raw[idx*width:])
	}

	dispose = func() { i64BufferPool.Put(buf[:0]) }

	return buf, dispose, nil
}
