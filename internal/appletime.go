package internal

import "time"

// Apple stores call and message timestamps as offsets from 2001-01-01 00:00:00 UTC
// rather than the Unix epoch. Call records use whole seconds, message records use
// nanoseconds. Everything stays in UTC; the source stores carry no zone info.
var appleEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// AppleEpochUnix is the Unix timestamp of the Apple epoch, for use inside SQL.
const AppleEpochUnix = 978307200

// FromAppleSeconds converts a whole-second Apple epoch offset (ZCALLRECORD.ZDATE).
func FromAppleSeconds(sec int64) time.Time {
	return appleEpoch.Add(time.Duration(sec) * time.Second)
}

// FromAppleNanoseconds converts a nanosecond Apple epoch offset (message.date).
// Sub-second precision is truncated, matching the original viewer.
func FromAppleNanoseconds(ns int64) time.Time {
	return FromAppleSeconds(ns / 1e9)
}

// FormatDate renders the calendar-date portion as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatTime renders the time-of-day portion as HH:MM:SS.
func FormatTime(t time.Time) string {
	return t.Format("15:04:05")
}

// FormatDateTime renders the combined form used in the message thread view.
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
