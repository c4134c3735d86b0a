package compactint

import (
	"errors"
	"fmt"
)

// ErrRangeExceeded is the sentinel compactint.List write failures wrap;
// use errors.As to recover the [RangeExceededError] payload (spec.md §7
// RangeExceeded).
var ErrRangeExceeded = errors.New("compactint: value outside encoding range")

// RangeExceededError carries the offending value and the smallest wider
// encoding able to represent it (spec.md §4.5 overflow detection).
type RangeExceededError struct {
	Value     int64
	Current   IntCodec
	Suggested IntCodec
}

func (e *RangeExceededError) Error() string {
	return fmt.Sprintf("compactint: value %d exceeds %d-bit range [%d,%d]; suggest %d-bit %s",
		e.Value, e.Current.Bits(), e.Current.Min(), e.Current.Max(), e.Suggested.Bits(), signedness(e.Suggested))
}

func (e *RangeExceededError) Unwrap() error { return ErrRangeExceeded }

func signedness(c IntCodec) string {
	if c.Signed() {
		return "signed"
	}

	return "unsigned"
}
