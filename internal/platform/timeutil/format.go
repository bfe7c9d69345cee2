package timeutil

import (
	"fmt"
	"time"
)

// ISO8601 is the timestamp layout used in mirror rows and exports.
const ISO8601 = "2006-01-02T15:04:05Z07:00"

// FormatElapsed renders a running duration as h:mm:ss.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

// FormatMinutes renders an accumulated minute total as "3h 25m".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// RoundMinutes converts a session duration to whole minutes, rounding
// half up. Totals are incremented and recomputed through this one
// function so the reconciliation check can never diverge on rounding.
func RoundMinutes(d time.Duration) int {
	ms := d.Milliseconds()
	if ms <= 0 {
		return 0
	}
	return int((ms + 30_000) / 60_000)
}

// FormatStamp renders a timestamp for display and mirror rows.
func FormatStamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(ISO8601)
}

// FormatDay renders the calendar date of a timestamp.
func FormatDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
