package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tally/internal/modules/timer/domain"
	timerout "tally/internal/modules/timer/port/out"
	apperrors "tally/internal/platform/errors"
)

// currentSessionRecord is the persisted marker shape; startTime is a ms
// epoch like every other record timestamp.
type currentSessionRecord struct {
	ID           string `json:"id"`
	ActivityID   string `json:"activityId"`
	ActivityName string `json:"activityName"`
	StartTime    int64  `json:"startTime"`
}

type FileCurrentSessionStore struct {
	path string
}

func NewFileCurrentSessionStore(dataDir string) timerout.ActiveSessionStore {
	return &FileCurrentSessionStore{path: filepath.Join(dataDir, "current-session.json")}
}

func (s *FileCurrentSessionStore) SaveActive(_ context.Context, session domain.ActiveSession) error {
	record := currentSessionRecord{
		ID:           session.ID,
		ActivityID:   session.ActivityID,
		ActivityName: session.ActivityName,
		StartTime:    session.StartedAt.UnixMilli(),
	}
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode current session: %v", apperrors.ErrStorageUnavailable, err)
	}
	return writeRecord(s.path, payload)
}

func (s *FileCurrentSessionStore) LoadActive(_ context.Context) (domain.ActiveSession, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ActiveSession{}, apperrors.ErrTimerIdle
		}
		return domain.ActiveSession{}, fmt.Errorf("%w: read current session: %v", apperrors.ErrStorageUnavailable, err)
	}
	record := currentSessionRecord{}
	if err := json.Unmarshal(payload, &record); err != nil {
		return domain.ActiveSession{}, fmt.Errorf("%w: decode current session: %v", apperrors.ErrStorageUnavailable, err)
	}
	if record.ID == "" {
		return domain.ActiveSession{}, apperrors.ErrTimerIdle
	}
	return domain.ActiveSession{
		ID:           record.ID,
		ActivityID:   record.ActivityID,
		ActivityName: record.ActivityName,
		StartedAt:    time.UnixMilli(record.StartTime).UTC(),
	}, nil
}

func (s *FileCurrentSessionStore) ClearActive(_ context.Context) error {
	return removeRecord(s.path)
}
