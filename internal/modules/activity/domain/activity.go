package domain

import (
	"strings"
	"time"
)

// DefaultColor is assigned when a create request omits the swatch.
const DefaultColor = "#4ECDC4"

type Activity struct {
	ID           string
	Name         string
	Color        string
	TotalMinutes int
	CreatedAt    time.Time
}

// NormalizeName is the uniqueness key: names collide case-insensitively
// after trimming.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Defaults are seeded into an empty store on first load.
func Defaults(now time.Time, newID func() string) []Activity {
	return []Activity{
		{ID: newID(), Name: "Work", Color: "#4ECDC4", CreatedAt: now},
		{ID: newID(), Name: "Study", Color: "#FF6B6B", CreatedAt: now},
		{ID: newID(), Name: "Exercise", Color: "#45B7D1", CreatedAt: now},
	}
}
