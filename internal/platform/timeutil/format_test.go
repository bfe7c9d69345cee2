package timeutil_test

import (
	"testing"
	"time"

	"tally/internal/platform/timeutil"
)

func TestFormatElapsed(t *testing.T) {
	t.Parallel()
	if got := timeutil.FormatElapsed(90 * time.Second); got != "0:01:30" {
		t.Fatalf("expected 0:01:30, got %s", got)
	}
	if got := timeutil.FormatElapsed(3*time.Hour + 5*time.Minute + 2*time.Second); got != "3:05:02" {
		t.Fatalf("expected 3:05:02, got %s", got)
	}
	if got := timeutil.FormatElapsed(-time.Second); got != "0:00:00" {
		t.Fatalf("negative durations clamp to zero, got %s", got)
	}
}

func TestFormatMinutes(t *testing.T) {
	t.Parallel()
	if got := timeutil.FormatMinutes(45); got != "45m" {
		t.Fatalf("expected 45m, got %s", got)
	}
	if got := timeutil.FormatMinutes(205); got != "3h 25m" {
		t.Fatalf("expected 3h 25m, got %s", got)
	}
}

func TestRoundMinutes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{-time.Minute, 0},
		{29*time.Second + 999*time.Millisecond, 0},
		{30 * time.Second, 1},
		{90 * time.Second, 2},
		{5 * time.Minute, 5},
	}
	for _, c := range cases {
		if got := timeutil.RoundMinutes(c.d); got != c.want {
			t.Fatalf("RoundMinutes(%v) = %d, want %d", c.d, got, c.want)
		}
	}
}

func TestFormatStamp(t *testing.T) {
	t.Parallel()
	stamp := time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)
	if got := timeutil.FormatStamp(stamp); got != "2026-02-25T10:00:00Z" {
		t.Fatalf("unexpected stamp %s", got)
	}
	if got := timeutil.FormatStamp(time.Time{}); got != "" {
		t.Fatalf("zero time renders empty, got %q", got)
	}
	if got := timeutil.FormatDay(stamp); got != "2026-02-25" {
		t.Fatalf("unexpected day %s", got)
	}
}
