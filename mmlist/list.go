package mmlist

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/tickstore/listmmf/internal/fsx"
	"github.com/tickstore/listmmf/internal/mmio"
)

// maxGrowthItems bounds the absolute per-remap growth to 1 GiB worth of
// items (spec.md §4.3 growth policy: "current + min(current, 1 GiB)").
const maxGrowthItems = 1 << 30

// List is a persistent, random-access sequence of fixed-size elements of
// type T, backed by a single memory-mapped file. T's in-memory layout
// must exactly match its on-disk layout and must be 1 to 8 bytes wide
// (spec.md §2 item 3); this is checked at open time via unsafe.Sizeof,
// since Go has no constraint that expresses "any POD type of width N".
type List[T any] struct {
	region *mmio.Region
	header mmio.Header
	path   string
	mode   mmio.Mode
	h      uint32

	elemSize uint32

	identity fsx.Identity
	entry    *registryEntry
	lock     fsx.Lock     // non-nil only for a writer handle
	presence fsx.Presence // held by every handle, reader or writer

	capLocked bool
	closed    bool
}

// OpenWriter opens path for writing, creating it if absent, and acquires
// the cross-process writer lock (spec.md §4.4). If the file is newly
// created its header's data-type tag is set to dataType exactly once
// (spec.md §4.2); if it already exists, the stored tag is left untouched
// and validated against dataType, failing with ErrIncompatible on a
// mismatch (spec.md §3: "Open validates that the tag on disk matches the
// tag the caller expects").
func OpenWriter[T any](path string, h uint32, dataType DataType, minBytes int64) (*List[T], error) {
	lockPath := fsx.LockTargetPath(path)

	lk, err := fsx.NewLocker().TryLock(lockPath)
	if err != nil {
		if errors.Is(err, fsx.ErrWouldBlock) {
			return nil, ErrAlreadyOpen
		}

		return nil, fmt.Errorf("mmlist: acquire writer lock: %w", err)
	}

	l, err := open[T](path, h, mmio.ReadWrite, minBytes)
	if err != nil {
		_ = lk.Close()
		return nil, err
	}

	if DataType(l.header.DataType()) == DataTypeEmpty && l.header.Count() == 0 {
		l.header.SetDataType(uint32(dataType))
	} else if stored := DataType(l.header.DataType()); stored != dataType {
		_ = l.Close()
		_ = lk.Close()
		return nil, fmt.Errorf("%w: file %q has tag %s, caller expects %s", ErrIncompatible, path, stored, dataType)
	}

	l.lock = lk

	return l, nil
}

// OpenReader opens an existing file read-only, validating its stored
// data-type tag against dataType and failing with ErrIncompatible on a
// mismatch (spec.md §3). Multiple readers, in any number of processes, may
// hold a read handle concurrently with the one writer (spec.md §5).
func OpenReader[T any](path string, h uint32, dataType DataType) (*List[T], error) {
	l, err := open[T](path, h, mmio.ReadOnly, int64(h)+16)
	if err != nil {
		return nil, err
	}

	if stored := DataType(l.header.DataType()); stored != dataType {
		_ = l.Close()
		return nil, fmt.Errorf("%w: file %q has tag %s, caller expects %s", ErrIncompatible, path, stored, dataType)
	}

	return l, nil
}

func open[T any](path string, h uint32, mode mmio.Mode, minBytes int64) (*List[T], error) {
	var zero T

	elemSize := uint32(unsafe.Sizeof(zero))
	if elemSize < 1 || elemSize > 8 {
		return nil, fmt.Errorf("%w: element width %d bytes outside [1,8]", ErrInvalidArgument, elemSize)
	}

	if h%8 != 0 {
		return nil, fmt.Errorf("%w: reserved header size %d is not a multiple of 8", ErrInvalidArgument, h)
	}

	if minBytes < int64(h)+16 {
		minBytes = int64(h) + 16
	}

	region, err := mmio.Open(path, minBytes, mode)
	if err != nil {
		if errors.Is(err, mmio.ErrUnsupported) {
			return nil, ErrUnsupported
		}

		return nil, fmt.Errorf("mmlist: %w", err)
	}

	hd, err := mmio.NewHeader(region.Base(), h)
	if err != nil {
		_ = region.Close()
		return nil, err
	}

	id, err := fsx.IdentityOf(region.Fd())
	if err != nil {
		_ = region.Close()
		return nil, fmt.Errorf("mmlist: %w", err)
	}

	presence, err := fsx.AcquirePresence(fsx.PresencePath(path))
	if err != nil {
		_ = region.Close()
		return nil, fmt.Errorf("mmlist: %w", err)
	}

	return &List[T]{
		region:   region,
		header:   hd,
		path:     path,
		mode:     mode,
		h:        h,
		elemSize: elemSize,
		identity: id,
		entry:    acquireRegistryEntry(id),
		presence: presence,
	}, nil
}

// Close releases the view, then the mapping, then the file handle, then
// the writer lock if one is held (spec.md §4.1, reverse of acquisition
// order per §3 "Entities and lifecycle").
func (l *List[T]) Close() error {
	if l.closed {
		return nil
	}

	l.closed = true

	releaseRegistryEntry(l.identity, l.entry)

	err := l.region.Close()

	if perr := l.presence.Close(); perr != nil && err == nil {
		err = perr
	}

	if l.lock != nil {
		if lerr := l.lock.Close(); lerr != nil && err == nil {
			err = lerr
		}
	}

	return err
}

// Count returns the current logical element count with a single atomic
// load (spec.md §4.2).
func (l *List[T]) Count() int64 {
	return l.header.Count()
}

// ElementWidth returns the on-disk byte width of one element.
func (l *List[T]) ElementWidth() uint32 { return l.elemSize }

// DataType returns the header's data-type tag.
func (l *List[T]) DataType() DataType { return DataType(l.header.DataType()) }

// Sync flushes this list's dirty mapped pages to disk (spec.md §4.6 step 4,
// "fsync the target" before the rename pair that publishes it).
func (l *List[T]) Sync() error {
	if err := l.region.Sync(); err != nil {
		return fmt.Errorf("mmlist: sync: %w", err)
	}

	return nil
}

// Path returns the backing file path.
func (l *List[T]) Path() string { return l.path }

// Reserved returns the caller-owned reserved header region, H bytes wide,
// that sits before the version/data-type/count fields (spec.md §3). Callers
// such as bitlist use this for their own extra header fields (bitlist keeps
// its logical bit length there). The returned slice aliases mapped memory
// and is invalidated by any call that may remap (Append, BulkAppend,
// TruncateTail, TrimToCount, Remap).
func (l *List[T]) Reserved() []byte { return l.region.Base()[:l.h] }

// LockCapacity switches the list into capacity-locked mode: any
// subsequent operation that would remap (grow, shrink, trim) fails with
// ErrCapacityLocked (spec.md §4.3). This is one-way; there is no unlock.
func (l *List[T]) LockCapacity() { l.capLocked = true }

func (l *List[T]) capacityItems() int64 {
	return (int64(len(l.region.Base())) - int64(l.h) - 16) / int64(l.elemSize)
}

func (l *List[T]) elementsOffset() int64 { return int64(l.h) + 16 }

// elemPtr returns a pointer to the i-th element slot in the current view.
// Caller must hold entry.mapMu for read (or write, during a mutation) and
// have already validated i against the current capacity.
func (l *List[T]) elemPtr(i int64) *T {
	base := l.region.Base()
	off := l.elementsOffset() + i*int64(l.elemSize)
	return (*T)(unsafe.Pointer(&base[off]))
}

// Get returns the element at index i. 0 ≤ i < count is required.
func (l *List[T]) Get(i int64) (T, error) {
	var zero T

	l.entry.mapMu.RLock()
	defer l.entry.mapMu.RUnlock()

	count := l.Count()
	if i < 0 || i >= count {
		return zero, fmt.Errorf("%w: index %d, count %d", ErrOutOfBounds, i, count)
	}

	if i >= l.capacityItems() {
		return zero, ErrTruncated
	}

	return *l.elemPtr(i), nil
}

// Set overwrites the element at index i. 0 ≤ i < count is required.
func (l *List[T]) Set(i int64, v T) error {
	if l.mode != mmio.ReadWrite {
		return fmt.Errorf("mmlist: Set requires a writer handle")
	}

	l.entry.mapMu.RLock()
	defer l.entry.mapMu.RUnlock()

	count := l.Count()
	if i < 0 || i >= count {
		return fmt.Errorf("%w: index %d, count %d", ErrOutOfBounds, i, count)
	}

	*l.elemPtr(i) = v

	return nil
}

// SetLast overwrites the last element; equivalent to Set(Count()-1, v).
func (l *List[T]) SetLast(v T) error {
	count := l.Count()
	if count < 1 {
		return fmt.Errorf("%w: list is empty", ErrOutOfBounds)
	}

	return l.Set(count-1, v)
}

// Append adds v as the new last element, growing capacity if needed. The
// element is written before the count field is advanced (spec.md §4.3
// count-field discipline, §5 store-release).
func (l *List[T]) Append(v T) error {
	if l.mode != mmio.ReadWrite {
		return fmt.Errorf("mmlist: Append requires a writer handle")
	}

	count := l.Count()

	if err := l.ensureCapacity(count + 1); err != nil {
		return err
	}

	l.entry.mapMu.RLock()
	*l.elemPtr(count) = v
	l.entry.mapMu.RUnlock()

	l.header.SetCount(count + 1)

	return nil
}

// BulkAppend copies span onto the end of the list in one capacity check
// and one bulk copy (spec.md §4.3 "single capacity check").
func (l *List[T]) BulkAppend(span []T) error {
	if l.mode != mmio.ReadWrite {
		return fmt.Errorf("mmlist: BulkAppend requires a writer handle")
	}

	if len(span) == 0 {
		return nil
	}

	count := l.Count()
	newCount := count + int64(len(span))

	if err := l.ensureCapacity(newCount); err != nil {
		return err
	}

	l.entry.mapMu.RLock()
	for idx, v := range span {
		*l.elemPtr(count + int64(idx)) = v
	}
	l.entry.mapMu.RUnlock()

	l.header.SetCount(newCount)

	return nil
}

// ensureCapacity grows the view so capacityItems() ≥ minimumRequired,
// applying spec.md §4.3's growth policy:
//
//	new_capacity := max(minimum_required, current + min(current, 1 GiB))
func (l *List[T]) ensureCapacity(minimumRequired int64) error {
	current := l.capacityItems()
	if current >= minimumRequired {
		return nil
	}

	if l.capLocked {
		return ErrCapacityLocked
	}

	increment := current
	if increment > maxGrowthItems {
		increment = maxGrowthItems
	}

	newCapacity := current + increment
	if newCapacity < minimumRequired {
		newCapacity = minimumRequired
	}

	if newCapacity <= 0 {
		newCapacity = minimumRequired
	}

	newBytes := l.elementsOffset() + newCapacity*int64(l.elemSize)
	if newBytes <= 0 || newCapacity > math.MaxInt64/int64(l.elemSize) {
		return ErrOverflow
	}

	return l.remap(newBytes, false)
}

// TruncateTail sets count to newCount (spec.md §4.3). When newCount is 0
// it also shrinks the file, subject to remap's shrink downgrade; any other
// newCount leaves the file length unchanged.
func (l *List[T]) TruncateTail(newCount int64) error {
	if l.mode != mmio.ReadWrite {
		return fmt.Errorf("mmlist: TruncateTail requires a writer handle")
	}

	count := l.Count()
	if newCount < 0 || newCount > count {
		return fmt.Errorf("%w: new count %d, count %d", ErrOutOfBounds, newCount, count)
	}

	l.header.SetCount(newCount)

	if newCount == 0 {
		return l.shrinkToward(0)
	}

	return nil
}

// TruncateHead drops the first count-keep elements by moving the suffix
// down to offset 0 (spec.md §4.3).
func (l *List[T]) TruncateHead(keep int64) error {
	if l.mode != mmio.ReadWrite {
		return fmt.Errorf("mmlist: TruncateHead requires a writer handle")
	}

	count := l.Count()
	if keep < 0 || keep > count {
		return fmt.Errorf("%w: keep %d, count %d", ErrOutOfBounds, keep, count)
	}

	if keep == count {
		return nil
	}

	drop := count - keep

	l.entry.mapMu.RLock()
	base := l.region.Base()
	dstOff := l.elementsOffset()
	srcOff := dstOff + drop*int64(l.elemSize)
	n := keep * int64(l.elemSize)
	copy(base[dstOff:dstOff+n], base[srcOff:srcOff+n])
	l.entry.mapMu.RUnlock()

	l.header.SetCount(keep)

	return nil
}

// Range returns a borrowed view over the raw elements [i, i+n). The slice
// is valid only until the next mutating call on this list (spec.md §4.3,
// §5 "pointers obtained from range() are valid only until the next
// mutating call").
func (l *List[T]) Range(i, n int64) ([]T, error) {
	if n > math.MaxInt32 {
		return nil, ErrIntegerRangeOnly
	}

	l.entry.mapMu.RLock()
	defer l.entry.mapMu.RUnlock()

	count := l.Count()
	if i < 0 || n < 0 || i+n > count {
		return nil, fmt.Errorf("%w: range [%d,%d), count %d", ErrOutOfBounds, i, i+n, count)
	}

	if i+n > l.capacityItems() {
		return nil, ErrTruncated
	}

	if n == 0 {
		return nil, nil
	}

	return unsafe.Slice(l.elemPtr(i), n), nil
}

// TrimToCount shrinks capacity toward count when current capacity exceeds
// count/0.9 (spec.md §4.3).
func (l *List[T]) TrimToCount() error {
	if l.mode != mmio.ReadWrite {
		return fmt.Errorf("mmlist: TrimToCount requires a writer handle")
	}

	count := l.Count()
	current := l.capacityItems()

	if current == 0 || float64(count) > float64(current)*0.9 {
		return nil
	}

	return l.shrinkToward(count)
}

func (l *List[T]) shrinkToward(items int64) error {
	newBytes := l.elementsOffset() + items*int64(l.elemSize)
	return l.remap(newBytes, true)
}

// remap disposes the current view and creates a fresh one sized to
// byteCapacity, rounded up by mmio to a whole page. When isShrinkCandidate
// is true the new capacity may be smaller than the current file length, so
// remap asks this handle's presence token whether any other handle — in
// this process or another — still holds one; if so the shrink is
// downgraded to a no-op by mmio.Region.Remap itself (spec.md §4.1: "if
// ... any other process still holds the file, the shrink is downgraded to
// a no-op"), since truncating out from under a live reader would
// invalidate pages it still expects to dereference.
func (l *List[T]) remap(byteCapacity int64, isShrinkCandidate bool) error {
	l.entry.mapMu.Lock()
	defer l.entry.mapMu.Unlock()

	otherHolders := false

	if isShrinkCandidate {
		var err error

		otherHolders, err = l.presence.OtherHolders()
		if err != nil {
			return fmt.Errorf("mmlist: presence check: %w", err)
		}
	}

	if err := l.region.Remap(byteCapacity, otherHolders); err != nil {
		return fmt.Errorf("mmlist: remap: %w", err)
	}

	l.header = l.header.Rebase(l.region.Base())

	return nil
}

// Remap forces the handle to re-create its view over the file's current
// on-disk length, for a reader that observed an index at or beyond its own
// capacity (spec.md §5 "reader self-remap"). This only ever grows a
// reader's view, so it is never a shrink candidate.
func (l *List[T]) Remap() error {
	byteCapacity := l.elementsOffset()
	if l.mode == mmio.ReadWrite {
		// A writer's view already spans the whole file; keep that length so
		// the remap cannot truncate it.
		byteCapacity = int64(len(l.region.Base()))
	}

	return l.remap(byteCapacity, false)
}
