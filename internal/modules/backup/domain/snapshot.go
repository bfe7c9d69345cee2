package domain

// Snapshot is the export boundary format. It round-trips losslessly
// back into the local records: timestamps stay ms epochs, field names
// match the persisted records.
type Snapshot struct {
	Activities []ActivityRecord `json:"activities"`
	Sessions   []SessionRecord  `json:"sessions"`
	ExportDate string           `json:"exportDate"`
}

type ActivityRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	TotalMinutes int    `json:"totalMinutes"`
	CreatedAt    int64  `json:"createdAt"`
}

type SessionRecord struct {
	ID           string `json:"id"`
	ActivityID   string `json:"activityId"`
	ActivityName string `json:"activityName"`
	StartTime    int64  `json:"startTime"`
	EndTime      int64  `json:"endTime,omitempty"`
	Duration     int64  `json:"duration,omitempty"`
}
