package domain

import "time"

// ActiveSession is the durable current-session marker. Elapsed time is
// always recomputed from StartedAt, never accumulated from ticks, so a
// crash or reload loses nothing.
type ActiveSession struct {
	ID           string
	ActivityID   string
	ActivityName string
	StartedAt    time.Time
}

// Session is one finished start-to-stop interval. It is immutable once
// appended to the log; only a cascade delete of its activity removes it.
type Session struct {
	ID           string
	ActivityID   string
	ActivityName string
	StartedAt    time.Time
	EndedAt      time.Time
	Duration     time.Duration
}

func (s Session) Running() bool {
	return s.EndedAt.IsZero()
}

// Finalize closes the interval at endedAt. The same clock source feeds
// start and stop, so a negative difference only means clock skew and is
// clamped.
func (a ActiveSession) Finalize(endedAt time.Time) Session {
	duration := endedAt.Sub(a.StartedAt)
	if duration < 0 {
		duration = 0
	}
	return Session{
		ID:           a.ID,
		ActivityID:   a.ActivityID,
		ActivityName: a.ActivityName,
		StartedAt:    a.StartedAt,
		EndedAt:      endedAt,
		Duration:     duration,
	}
}
