package dto

import "time"

type StartInput struct {
	ActivityID string
}

type StartOutput struct {
	SessionID    string
	ActivityID   string
	ActivityName string
	StartedAt    time.Time
}

type ActiveOutput struct {
	SessionID    string
	ActivityID   string
	ActivityName string
	StartedAt    time.Time
	Elapsed      time.Duration
}

type SessionOutput struct {
	ID           string
	ActivityID   string
	ActivityName string
	StartedAt    time.Time
	EndedAt      time.Time
	Duration     time.Duration
	Minutes      int
}

// ElapsedEvent is the recurring display notification while a timer
// runs. It carries no authority; the marker file does.
type ElapsedEvent struct {
	SessionID    string
	ActivityName string
	Elapsed      time.Duration
}

type ActivityStatsOutput struct {
	ActivityID   string
	ActivityName string
	Sessions     int
	Minutes      int
}
