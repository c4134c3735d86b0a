package compactint

import (
	"fmt"

	"github.com/tickstore/listmmf/internal/mmio"
	"github.com/tickstore/listmmf/mmlist"
)

// List is the façade over a compact-integer file: it composes a typed
// list of the chosen on-disk width with that width's [Codec], presenting
// every operation in the logical i64 domain (spec.md §4.5 "Façade").
type List struct {
	codec IntCodec
	raw   rawElems

	observedMin, observedMax int64
	hasObserved              bool

	warnThreshold float64
	warned        bool
	onWarn        func(utilization float64)
}

// OpenWriter opens or creates a compact-integer file at path using codec.
// If the file already exists, its stored data-type tag must match codec's;
// a mismatch means the caller chose the wrong codec for this file (use
// [OpenReader] to probe an unknown file first) and fails wrapping
// [mmlist.ErrIncompatible], which openRawWriter's underlying
// mmlist.OpenWriter call already enforces.
func OpenWriter(codec IntCodec, path string, h uint32, minBytes int64) (*List, error) {
	raw, err := openRawWriter(codec, path, h, minBytes)
	if err != nil {
		return nil, fmt.Errorf("compactint: %w", err)
	}

	return &List{codec: codec, raw: raw}, nil
}

// OpenReader opens an existing compact-integer file read-only, determining
// its codec from the stored data-type tag.
func OpenReader(path string, h uint32) (*List, error) {
	dt, err := probeDataType(path, h)
	if err != nil {
		return nil, err
	}

	codec, err := codecForDataType(dt)
	if err != nil {
		return nil, err
	}

	raw, err := openRawReader(codec, path, h)
	if err != nil {
		return nil, err
	}

	return &List{codec: codec, raw: raw}, nil
}

func probeDataType(path string, h uint32) (mmlist.DataType, error) {
	r, err := mmio.Open(path, int64(h)+16, mmio.ReadOnly)
	if err != nil {
		return 0, fmt.Errorf("compactint: %w", err)
	}
	defer r.Close()

	hd, err := mmio.NewHeader(r.Base(), h)
	if err != nil {
		return 0, err
	}

	return mmlist.DataType(hd.DataType()), nil
}

func codecForDataType(dt mmlist.DataType) (IntCodec, error) {
	switch dt {
	case mmlist.DataTypeI8:
		return I8, nil
	case mmlist.DataTypeU8:
		return U8, nil
	case mmlist.DataTypeI16:
		return I16, nil
	case mmlist.DataTypeU16:
		return U16, nil
	case mmlist.DataTypeI24AsI64:
		return I24, nil
	case mmlist.DataTypeU24AsI64:
		return U24, nil
	case mmlist.DataTypeI32:
		return I32, nil
	case mmlist.DataTypeU32:
		return U32, nil
	case mmlist.DataTypeI40AsI64:
		return I40, nil
	case mmlist.DataTypeU40AsI64:
		return U40, nil
	case mmlist.DataTypeI48AsI64:
		return I48, nil
	case mmlist.DataTypeU48AsI64:
		return U48, nil
	case mmlist.DataTypeI56AsI64:
		return I56, nil
	case mmlist.DataTypeU56AsI64:
		return U56, nil
	case mmlist.DataTypeI64:
		return I64, nil
	case mmlist.DataTypeU64:
		return U64, nil
	default:
		return IntCodec{}, fmt.Errorf("compactint: data-type %s is not a compact-integer encoding", dt)
	}
}

// Count, Path, Close, LockCapacity, DataType, Codec mirror mmlist.List's
// surface in the logical domain.
func (l *List) Count() int64              { return l.raw.Count() }
func (l *List) Path() string              { return l.raw.Path() }
func (l *List) Close() error              { return l.raw.Close() }
func (l *List) LockCapacity()             { l.raw.LockCapacity() }
func (l *List) DataType() mmlist.DataType { return l.raw.DataType() }
func (l *List) Codec() IntCodec           { return l.codec }

// Sync flushes the file's dirty mapped pages to disk (spec.md §4.6 step 4).
func (l *List) Sync() error { return l.raw.Sync() }

// Get decodes and returns the logical value at index i.
func (l *List) Get(i int64) (int64, error) {
	b, err := l.raw.Get(i)
	if err != nil {
		return 0, err
	}

	return l.codec.Decode(b), nil
}

// Range decodes [i, i+n) into a freshly allocated slice. Unlike
// mmlist.List.Range this is never zero-copy for a borrowed i64 view — use
// [ZeroCopyI64] or [PooledI64] (adapter.go) for that.
func (l *List) Range(i, n int64) ([]int64, error) {
	width := l.codec.Bits() / 8

	raw, err := l.raw.Range(i, n)
	if err != nil {
		return nil, err
	}

	out := make([]int64, n)
	for idx := range out {
		out[idx] = l.codec.Decode(raw[idx*width:])
	}

	return out, nil
}

// Set overwrites the logical value at index i. Fails with a
// [RangeExceededError] (wrapping [ErrRangeExceeded]) when v is outside the
// codec's representable range, leaving the stored value unchanged.
func (l *List) Set(i, v int64) error {
	if err := l.checkRange(v); err != nil {
		return err
	}

	buf := make([]byte, l.codec.Bits()/8)
	l.codec.Encode(v, buf)

	if err := l.raw.Set(i, buf); err != nil {
		return err
	}

	l.observe(v)

	return nil
}

// Append encodes and appends v, growing capacity if needed.
func (l *List) Append(v int64) error {
	if err := l.checkRange(v); err != nil {
		return err
	}

	buf := make([]byte, l.codec.Bits()/8)
	l.codec.Encode(v, buf)

	if err := l.raw.Append(buf); err != nil {
		return err
	}

	l.observe(v)

	return nil
}

// BulkAppend encodes and appends every value in vs with a single capacity
// check. On a range violation, no value in vs is written.
func (l *List) BulkAppend(vs []int64) error {
	width := l.codec.Bits() / 8

	spans := make([][]byte, len(vs))

	for idx, v := range vs {
		if err := l.checkRange(v); err != nil {
			return err
		}

		buf := make([]byte, width)
		l.codec.Encode(v, buf)
		spans[idx] = buf
	}

	if err := l.raw.BulkAppend(spans); err != nil {
		return err
	}

	for _, v := range vs {
		l.observe(v)
	}

	return nil
}

// TruncateTail sets count to newCount.
func (l *List) TruncateTail(newCount int64) error {
	return l.raw.TruncateTail(newCount)
}

func (l *List) checkRange(v int64) error {
	if v >= l.codec.Min() && v <= l.codec.Max() {
		return nil
	}

	keepSigned := l.hasObserved && l.observedMin < 0
	suggested := NextWider(l.codec, v, keepSigned)

	return &RangeExceededError{Value: v, Current: l.codec, Suggested: suggested}
}

func (l *List) observe(v int64) {
	if !l.hasObserved {
		l.observedMin, l.observedMax, l.hasObserved = v, v, true
	} else {
		if v < l.observedMin {
			l.observedMin = v
		}

		if v > l.observedMax {
			l.observedMax = v
		}
	}

	l.maybeWarnUtilization()
}

// Utilization returns observed_max / allowed_max in the codec's logical
// domain, using the larger-magnitude of the observed min/max so that a
// predominantly negative signed series still reports meaningfully
// (spec.md §4.5 "online utilization tracking").
func (l *List) Utilization() float64 {
	if !l.hasObserved {
		return 0
	}

	allowed := l.codec.Max()
	if allowed == 0 {
		return 0
	}

	m := l.observedMax
	if neg := -l.observedMin; neg > m {
		m = neg
	}

	return float64(m) / float64(allowed)
}

// SetUtilizationWarning arms a one-shot callback invoked the first time
// Utilization() crosses threshold after a write.
func (l *List) SetUtilizationWarning(threshold float64, cb func(utilization float64)) {
	l.warnThreshold = threshold
	l.onWarn = cb
	l.warned = false
}

func (l *List) maybeWarnUtilization() {
	if l.warned || l.onWarn == nil || l.warnThreshold <= 0 {
		return
	}

	u := l.Utilization()
	if u >= l.warnThreshold {
		l.warned = true
		l.onWarn(u)
	}
}
