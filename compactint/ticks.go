package compactint

import "time"

// ticksEpoch is 0001-01-01T00:00:00 UTC, the zero point for
// date_time_ticks (spec.md §6).
var ticksEpoch = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// ToTicks converts t to 100-nanosecond ticks since 0001-01-01 (spec.md §6
// date_time_ticks), truncating sub-tick precision.
func ToTicks(t time.Time) int64 {
	u := t.UTC()
	return (u.Unix()-ticksEpoch.Unix())*10_000_000 + int64(u.Nanosecond())/100
}

// FromTicks converts ticks since 0001-01-01 back to a time.Time.
func FromTicks(ticks int64) time.Time {
	return time.Unix(ticksEpoch.Unix()+ticks/10_000_000, ticks%10_000_000*100).UTC()
}
