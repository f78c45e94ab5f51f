package util

import "time"

// FromUnixNano converts a nanosecond epoch as sent by the oracle.
// Non-positive values mean "absent" and yield the zero time.
func FromUnixNano(ns int64) time.Time {
	if ns <= 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

// Seconds converts an integer number of seconds to a duration, falling
// back to def for non-positive input.
func Seconds(n int, def time.Duration) time.Duration {
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
