package tsindex

import (
	"math"
	"time"
)

// ToUnixSeconds converts t to signed 32-bit Unix seconds, saturating to
// math.MinInt32/MaxInt32 outside the representable range and truncating
// sub-second precision (spec.md §6 "unix_seconds").
func ToUnixSeconds(t time.Time) int32 {
	sec := t.Unix()

	if sec > math.MaxInt32 {
		return math.MaxInt32
	}

	if sec < math.MinInt32 {
		return math.MinInt32
	}

	return int32(sec)
}

// FromUnixSeconds converts s back to a UTC time.Time. The epoch 0 round
// trips to 1970-01-01T00:00:00Z.
func FromUnixSeconds(s int32) time.Time {
	return time.Unix(int64(s), 0).UTC()
}
