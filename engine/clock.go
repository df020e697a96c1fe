package engine

import "time"

// MinuteMs is the number of milliseconds in a wall-clock minute, and the
// granularity every minute-boundary timestamp in this package is a
// multiple of.
const MinuteMs int64 = 60_000

// monotonicBase anchors nowMonotonicNs at process start. time.Since
// subtracts using Go's monotonic clock reading, so the values below
// advance steadily through NTP slews and wall-clock steps.
var monotonicBase = time.Now()

// nowMonotonicNs returns nanoseconds elapsed on the monotonic clock
// since process start, suitable for measuring durations and absolute
// sleep deadlines. These values are only ever differenced, never
// serialized; nowMs is the wall-clock source for anything that leaves
// the process.
func nowMonotonicNs() int64 {
	return int64(time.Since(monotonicBase))
}

// nowMs returns the current wall-clock time in Unix milliseconds.
func nowMs() int64 {
	return time.Now().UnixMilli()
}

// floorToMinuteMs floors a wall-clock millisecond timestamp to the
// preceding (or equal) minute boundary.
func floorToMinuteMs(ms int64) int64 {
	return (ms / MinuteMs) * MinuteMs
}

// isoMinute formats a minute-boundary millisecond timestamp as an
// ISO-8601 minute string, e.g. "2026-07-29T09:15".
func isoMinute(minuteMs int64) string {
	return time.UnixMilli(minuteMs).UTC().Format("2006-01-02T15:04")
}
