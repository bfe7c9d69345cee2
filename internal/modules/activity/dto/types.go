package dto

import "time"

type CreateInput struct {
	Name  string
	Color string
}

type ActivityOutput struct {
	ID           string
	Name         string
	Color        string
	TotalMinutes int
	CreatedAt    time.Time
}

type DeleteOutput struct {
	ID              string
	Name            string
	RemovedSessions int
}
