// Package tsindex implements an ordered time-series index over 32-bit
// Unix-second values (spec.md §4.8): an append-time ordering policy, and
// lower_bound/upper_bound/binary_search with a choice of binary,
// interpolation, or auto-selected search strategy.
//
// Grounded on mmlist.List[int32] for storage, and on the teacher's
// generation-counter retry discipline in pkg/slotcache/slotcache.go for
// the "cache the auto choice, invalidate on any write" pattern — here two
// private cache fields on Index rather than a reader-retry loop, since tsindex has
// only one writer per process and no concurrent-mutation-during-read
// hazard to retry around.
package tsindex

import (
	"fmt"

	"github.com/tickstore/listmmf/mmlist"
)

// OrderPolicy constrains the values an Index will accept on Append.
type OrderPolicy int

const (
	// OrderNone applies no ordering constraint.
	OrderNone OrderPolicy = iota
	// OrderWeaklyAscending requires each appended value to be ≥ the
	// previous one.
	OrderWeaklyAscending
	// OrderStrictlyAscending requires each appended value to be > the
	// previous one.
	OrderStrictlyAscending
)

// Strategy selects the search algorithm a lookup uses.
type Strategy int

const (
	// StrategyAuto picks binary or interpolation per spec.md §4.8's
	// sampling heuristic, caching the choice until the next write.
	StrategyAuto Strategy = iota
	StrategyBinary
	StrategyInterpolation
)

// autoSampleCount and autoDeviationThreshold parameterize the auto
// strategy-selection heuristic (spec.md §4.8 "Strategy selection").
const (
	autoMinCountForInterpolation = 10_000
	autoSampleCount              = 20
	autoDeviationThreshold       = 0.15
)

// interpolationShortFinish is the interval width at and below which
// interpolation search switches to a linear/binary finish (spec.md §4.8
// step 5).
const interpolationShortFinish = 8

// Index is an ordered time-series index backed by a memory-mapped file of
// 32-bit Unix-second values.
type Index struct {
	list  *mmlist.List[int32]
	order OrderPolicy

	cacheValid   bool
	cachedBinary bool // true selects binary, false selects interpolation
}

// OpenWriter opens or creates a time-series index at path, enforcing order
// on every subsequent Append.
func OpenWriter(path string, order OrderPolicy, minBytes int64) (*Index, error) {
	list, err := mmlist.OpenWriter[int32](path, 0, mmlist.DataTypeUnixSeconds, minBytes)
	if err != nil {
		return nil, err
	}

	return &Index{list: list, order: order}, nil
}

// OpenReader opens an existing time-series index read-only. order governs
// only how Append behaves if the caller later upgrades this handle's
// intent; it has no effect on search operations.
func OpenReader(path string, order OrderPolicy) (*Index, error) {
	list, err := mmlist.OpenReader[int32](path, 0, mmlist.DataTypeUnixSeconds)
	if err != nil {
		return nil, err
	}

	return &Index{list: list, order: order}, nil
}

// Close releases the backing resources.
func (ix *Index) Close() error { return ix.list.Close() }

// Path returns the backing file path.
func (ix *Index) Path() string { return ix.list.Path() }

// Count returns the current element count.
func (ix *Index) Count() int64 { return ix.list.Count() }

// LockCapacity forbids further growth (spec.md §4.3).
func (ix *Index) LockCapacity() { ix.list.LockCapacity() }

// Get returns the value at index i.
func (ix *Index) Get(i int64) (int32, error) { return ix.list.Get(i) }

// Range returns a borrowed view over [i, i+n); see mmlist.List.Range for
// the lifetime contract.
func (ix *Index) Range(i, n int64) ([]int32, error) { return ix.list.Range(i, n) }

// Append adds v as the new last element, enforcing the index's ordering
// policy. A violation fails with mmlist.ErrOrderViolation and leaves count
// unchanged (spec.md §4.8 "leave count unchanged").
func (ix *Index) Append(v int32) error {
	count := ix.list.Count()

	if count > 0 {
		last, err := ix.list.Get(count - 1)
		if err != nil {
			return err
		}

		switch ix.order {
		case OrderWeaklyAscending:
			if v < last {
				return fmt.Errorf("%w: %d after %d under weakly-ascending order", mmlist.ErrOrderViolation, v, last)
			}
		case OrderStrictlyAscending:
			if v <= last {
				return fmt.Errorf("%w: %d after %d under strictly-ascending order", mmlist.ErrOrderViolation, v, last)
			}
		}
	}

	if err := ix.list.Append(v); err != nil {
		return err
	}

	ix.invalidateStrategyCache()

	return nil
}

// Set overwrites the element at i, enforcing the index's ordering policy
// against both of its surviving neighbors (spec.md §4.8 applies the same
// ordering check Append does to any mutation, not just appends). A
// violation fails with mmlist.ErrOrderViolation and leaves the element
// unchanged.
func (ix *Index) Set(i int64, v int32) error {
	if err := ix.checkOrderAt(i, v); err != nil {
		return err
	}

	if err := ix.list.Set(i, v); err != nil {
		return err
	}

	ix.invalidateStrategyCache()

	return nil
}

// SetLast overwrites the final element, enforcing the index's ordering
// policy against its predecessor.
func (ix *Index) SetLast(v int32) error {
	count := ix.list.Count()
	if count == 0 {
		return mmlist.ErrOutOfBounds
	}

	if err := ix.checkOrderAt(count-1, v); err != nil {
		return err
	}

	if err := ix.list.SetLast(v); err != nil {
		return err
	}

	ix.invalidateStrategyCache()

	return nil
}

// checkOrderAt validates that writing v at i would not break the index's
// ordering policy against the elements immediately before and after i.
func (ix *Index) checkOrderAt(i int64, v int32) error {
	if ix.order == OrderNone {
		return nil
	}

	if i > 0 {
		prev, err := ix.list.Get(i - 1)
		if err != nil {
			return err
		}

		if violates := ix.orderViolated(prev, v); violates {
			return fmt.Errorf("%w: %d at index %d would follow %d", mmlist.ErrOrderViolation, v, i, prev)
		}
	}

	if i+1 < ix.list.Count() {
		next, err := ix.list.Get(i + 1)
		if err != nil {
			return err
		}

		if violates := ix.orderViolated(v, next); violates {
			return fmt.Errorf("%w: %d at index %d would precede %d", mmlist.ErrOrderViolation, v, i, next)
		}
	}

	return nil
}

// orderViolated reports whether b immediately after a breaks ix.order.
func (ix *Index) orderViolated(a, b int32) bool {
	switch ix.order {
	case OrderWeaklyAscending:
		return b < a
	case OrderStrictlyAscending:
		return b <= a
	default:
		return false
	}
}

// TruncateTail sets count to newCount, invalidating the cached auto
// strategy choice.
func (ix *Index) TruncateTail(newCount int64) error {
	if err := ix.list.TruncateTail(newCount); err != nil {
		return err
	}

	ix.invalidateStrategyCache()

	return nil
}

func (ix *Index) invalidateStrategyCache() { ix.cacheValid = false }

// resolveStrategy turns StrategyAuto into a concrete binary/interpolation
// choice, computing and caching it on first use after the last write
// (spec.md §4.8 "cache the choice on the list instance, invalidate on any
// write").
func (ix *Index) resolveStrategy(requested Strategy) (Strategy, error) {
	if requested != StrategyAuto {
		return requested, nil
	}

	if ix.cacheValid {
		if ix.cachedBinary {
			return StrategyBinary, nil
		}

		return StrategyInterpolation, nil
	}

	useInterpolation, err := ix.shouldUseInterpolation()
	if err != nil {
		return StrategyBinary, err
	}

	ix.cachedBinary = !useInterpolation
	ix.cacheValid = true

	if useInterpolation {
		return StrategyInterpolation, nil
	}

	return StrategyBinary, nil
}

// shouldUseInterpolation implements spec.md §4.8's sampling heuristic:
// fewer than 10,000 elements always uses binary; otherwise sample 20
// evenly spaced indices, compute the mean absolute relative deviation from
// an ideal uniform line through the first and last sampled points, and
// pick interpolation when that deviation is under 15%.
func (ix *Index) shouldUseInterpolation() (bool, error) {
	count := ix.list.Count()
	if count < autoMinCountForInterpolation {
		return false, nil
	}

	first, err := ix.list.Get(0)
	if err != nil {
		return false, err
	}

	last, err := ix.list.Get(count - 1)
	if err != nil {
		return false, err
	}

	if last == first {
		return false, nil
	}

	span := float64(last) - float64(first)
	n := float64(count - 1)

	var totalDeviation float64

	samples := autoSampleCount
	if int64(samples) > count {
		samples = int(count)
	}

	for s := 0; s < samples; s++ {
		idx := int64(float64(s) / float64(samples-1) * n)
		if samples == 1 {
			idx = 0
		}

		actual, err := ix.list.Get(idx)
		if err != nil {
			return false, err
		}

		expected := float64(first) + span*(float64(idx)/n)

		var deviation float64
		if expected != 0 {
			deviation = absFloat(float64(actual)-expected) / absFloat(expected)
		} else {
			deviation = absFloat(float64(actual) - expected)
		}

		totalDeviation += deviation
	}

	meanDeviation := totalDeviation / float64(samples)

	return meanDeviation < autoDeviationThreshold, nil
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}

	return f
}
