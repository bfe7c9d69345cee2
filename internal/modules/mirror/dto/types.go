package dto

import "time"

type StatusOutput struct {
	Status     string
	DocumentID string
	LastSync   time.Time
	LastError  string
}

type StatusEvent struct {
	Status string
	Op     string
	Err    string
	At     time.Time
}
