package domain

import (
	"strconv"
	"time"

	"tally/internal/platform/timeutil"
)

const SchemaVersion = 1

// DefaultDocumentTitle is the well-known name used to find an existing
// mirror document before ever creating one. Exactly one document per
// user; search-before-create is mandatory.
const DefaultDocumentTitle = "Tally Time Tracker"

// Handle identifies the external mirror document. An empty DocumentID
// means local-only mode.
type Handle struct {
	DocumentID string
}

func (h Handle) Empty() bool {
	return h.DocumentID == ""
}

type SyncStatus string

const (
	StatusOffline    SyncStatus = "offline"
	StatusConnecting SyncStatus = "connecting"
	StatusSyncing    SyncStatus = "syncing"
	StatusOnline     SyncStatus = "online"
)

// StatusEvent reports the outcome of a sync operation. Mirror failures
// never reach the caller that triggered them; this channel is the only
// place they surface.
type StatusEvent struct {
	Status SyncStatus
	Op     string
	Err    error
	At     time.Time
}

const (
	SheetActivities = "Activities"
	SheetSessions   = "Sessions"
	SheetMetadata   = "Metadata"
)

type SheetSpec struct {
	Title  string
	Header []string
}

// Schema is the fixed three-table layout of a freshly created document.
func Schema() []SheetSpec {
	return []SheetSpec{
		{Title: SheetActivities, Header: []string{"ID", "Name", "Color", "Total Minutes", "Created At"}},
		{Title: SheetSessions, Header: []string{"ID", "Activity ID", "Activity Name", "Start Time", "End Time", "Duration (min)", "Date"}},
		{Title: SheetMetadata, Header: []string{"Key", "Value"}},
	}
}

type ActivityRecord struct {
	ID           string
	Name         string
	Color        string
	TotalMinutes int
	CreatedAt    time.Time
}

func (r ActivityRecord) Row() []string {
	return []string{
		r.ID,
		r.Name,
		r.Color,
		strconv.Itoa(r.TotalMinutes),
		timeutil.FormatStamp(r.CreatedAt),
	}
}

type SessionRecord struct {
	ID           string
	ActivityID   string
	ActivityName string
	StartedAt    time.Time
	EndedAt      time.Time
	Minutes      int
}

func (r SessionRecord) Row() []string {
	return []string{
		r.ID,
		r.ActivityID,
		r.ActivityName,
		timeutil.FormatStamp(r.StartedAt),
		timeutil.FormatStamp(r.EndedAt),
		strconv.Itoa(r.Minutes),
		timeutil.FormatDay(r.StartedAt),
	}
}

// MetadataRows is written after every full resync.
func MetadataRows(lastSync time.Time) [][]string {
	return [][]string{
		{"Last Sync", timeutil.FormatStamp(lastSync)},
		{"Version", strconv.Itoa(SchemaVersion)},
	}
}
