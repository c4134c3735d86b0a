package tsindex

// LowerBound returns the smallest index i in [0, count) with get(i) ≥ v,
// or count if no such index exists (spec.md §4.8).
func (ix *Index) LowerBound(v int32, strategy Strategy) (int64, error) {
	resolved, err := ix.resolveStrategy(strategy)
	if err != nil {
		return 0, err
	}

	if resolved == StrategyBinary {
		return ix.binaryLowerBound(0, ix.list.Count(), v)
	}

	return ix.interpolationLowerBound(v)
}

// UpperBound returns the smallest index i in [0, count) with get(i) > v,
// or count if no such index exists.
func (ix *Index) UpperBound(v int32, strategy Strategy) (int64, error) {
	resolved, err := ix.resolveStrategy(strategy)
	if err != nil {
		return 0, err
	}

	if resolved == StrategyBinary {
		return ix.binaryUpperBound(0, ix.list.Count(), v)
	}

	return ix.interpolationUpperBound(v)
}

// BinarySearch returns the index of an occurrence of v, or the bitwise
// complement of the index where v would be inserted to keep the list
// sorted (spec.md §4.8 "binary_search").
func (ix *Index) BinarySearch(v int32, strategy Strategy) (int64, error) {
	idx, err := ix.LowerBound(v, strategy)
	if err != nil {
		return 0, err
	}

	count := ix.list.Count()
	if idx < count {
		got, err := ix.list.Get(idx)
		if err != nil {
			return 0, err
		}

		if got == v {
			return idx, nil
		}
	}

	return ^idx, nil
}

// binaryLowerBound is the classical half-interval search over [lo, hi),
// ties pushed left (spec.md §4.8 "tie-break pushes left for lower-bound").
func (ix *Index) binaryLowerBound(lo, hi int64, v int32) (int64, error) {
	for lo < hi {
		mid := lo + (hi-lo)/2

		got, err := ix.list.Get(mid)
		if err != nil {
			return 0, err
		}

		if got < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	return lo, nil
}

// binaryUpperBound is the classical half-interval search over [lo, hi),
// ties pushed right.
func (ix *Index) binaryUpperBound(lo, hi int64, v int32) (int64, error) {
	for lo < hi {
		mid := lo + (hi-lo)/2

		got, err := ix.list.Get(mid)
		if err != nil {
			return 0, err
		}

		if got <= v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	return lo, nil
}

// narrowInterpolation narrows [low, high] toward the region containing v,
// guaranteeing progress every iteration (spec.md §4.8 step 4's progress
// guard: a computed position landing exactly on a boundary is nudged
// inward before use, so the interval strictly shrinks each pass) until the
// interval is short enough for a binary finish (step 5).
func (ix *Index) narrowInterpolation(low, high int64, v int32) (int64, int64, error) {
	for high-low > interpolationShortFinish {
		vLow, err := ix.list.Get(low)
		if err != nil {
			return 0, 0, err
		}

		vHigh, err := ix.list.Get(high)
		if err != nil {
			return 0, 0, err
		}

		if vLow == vHigh {
			// Constant range: division by zero in the cross-product.
			// Degrade to the binary finish over the remaining interval.
			break
		}

		pos := low + (int64(v)-int64(vLow))*(high-low)/(int64(vHigh)-int64(vLow))

		if pos < low {
			pos = low
		}

		if pos > high {
			pos = high
		}

		if pos == high {
			pos--
		} else if pos == low && low+1 <= high {
			pos++
		}

		if pos < low {
			pos = low
		}

		if pos > high {
			pos = high
		}

		got, err := ix.list.Get(pos)
		if err != nil {
			return 0, 0, err
		}

		if got < v {
			low = pos + 1
		} else {
			high = pos
		}
	}

	if high < low {
		high = low
	}

	return low, high, nil
}

func (ix *Index) interpolationLowerBound(v int32) (int64, error) {
	count := ix.list.Count()
	if count == 0 {
		return 0, nil
	}

	first, err := ix.list.Get(0)
	if err != nil {
		return 0, err
	}

	if v <= first {
		return 0, nil
	}

	last, err := ix.list.Get(count - 1)
	if err != nil {
		return 0, err
	}

	if v > last {
		return count, nil
	}

	low, high, err := ix.narrowInterpolation(0, count-1, v)
	if err != nil {
		return 0, err
	}

	return ix.binaryLowerBound(low, high+1, v)
}

func (ix *Index) interpolationUpperBound(v int32) (int64, error) {
	count := ix.list.Count()
	if count == 0 {
		return 0, nil
	}

	first, err := ix.list.Get(0)
	if err != nil {
		return 0, err
	}

	if v < first {
		return 0, nil
	}

	last, err := ix.list.Get(count - 1)
	if err != nil {
		return 0, err
	}

	if v >= last {
		return count, nil
	}

	// narrowInterpolation brackets lower_bound(v) tightly in [low, high],
	// but duplicates of v can push upper_bound(v) arbitrarily far to the
	// right of high, so the finish must search up to count rather than
	// just high+1 (spec.md §4.8 step 6's "walk right to the requested
	// bound" generalized to a binary finish that can't overshoot).
	low, _, err := ix.narrowInterpolation(0, count-1, v)
	if err != nil {
		return 0, err
	}

	return ix.binaryUpperBound(low, count, v)
}
