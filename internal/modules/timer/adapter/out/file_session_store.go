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

// sessionRecord is the persisted log entry shape. endTime and duration
// are omitted for a running session, though only completed sessions
// ever reach this log.
type sessionRecord struct {
	ID           string `json:"id"`
	ActivityID   string `json:"activityId"`
	ActivityName string `json:"activityName"`
	StartTime    int64  `json:"startTime"`
	EndTime      int64  `json:"endTime,omitempty"`
	Duration     int64  `json:"duration,omitempty"`
}

type FileSessionStore struct {
	path string
}

func NewFileSessionStore(dataDir string) timerout.SessionStore {
	return &FileSessionStore{path: filepath.Join(dataDir, "sessions.json")}
}

func (s *FileSessionStore) Load(_ context.Context) ([]domain.Session, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Session{}, nil
		}
		return nil, fmt.Errorf("%w: read sessions: %v", apperrors.ErrStorageUnavailable, err)
	}
	records := []sessionRecord{}
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("%w: decode sessions: %v", apperrors.ErrStorageUnavailable, err)
	}
	sessions := make([]domain.Session, 0, len(records))
	for _, record := range records {
		session := domain.Session{
			ID:           record.ID,
			ActivityID:   record.ActivityID,
			ActivityName: record.ActivityName,
			StartedAt:    time.UnixMilli(record.StartTime).UTC(),
			Duration:     time.Duration(record.Duration) * time.Millisecond,
		}
		if record.EndTime != 0 {
			session.EndedAt = time.UnixMilli(record.EndTime).UTC()
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *FileSessionStore) Append(ctx context.Context, session domain.Session) error {
	sessions, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return s.Save(ctx, append(sessions, session))
}

func (s *FileSessionStore) Save(_ context.Context, sessions []domain.Session) error {
	records := make([]sessionRecord, 0, len(sessions))
	for _, session := range sessions {
		record := sessionRecord{
			ID:           session.ID,
			ActivityID:   session.ActivityID,
			ActivityName: session.ActivityName,
			StartTime:    session.StartedAt.UnixMilli(),
			Duration:     session.Duration.Milliseconds(),
		}
		if !session.Running() {
			record.EndTime = session.EndedAt.UnixMilli()
		}
		records = append(records, record)
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode sessions: %v", apperrors.ErrStorageUnavailable, err)
	}
	return writeRecord(s.path, payload)
}

func (s *FileSessionStore) Clear(_ context.Context) error {
	return removeRecord(s.path)
}

func writeRecord(path string, payload []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: create data dir: %v", apperrors.ErrStorageUnavailable, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("%w: write record: %v", apperrors.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: replace record: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

func removeRecord(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove record: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}
