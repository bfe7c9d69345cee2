package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tally/internal/modules/activity/domain"
	activityout "tally/internal/modules/activity/port/out"
	"tally/internal/platform/clock"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/id"
)

// activityRecord is the persisted shape: timestamps as ms epochs, field
// names fixed by the record format.
type activityRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	TotalMinutes int    `json:"totalMinutes"`
	CreatedAt    int64  `json:"createdAt"`
}

type FileActivityStore struct {
	path  string
	clock clock.Clock
	idGen id.Generator
}

func NewFileActivityStore(dataDir string, clock clock.Clock, idGen id.Generator) activityout.ActivityStore {
	return &FileActivityStore{path: filepath.Join(dataDir, "activities.json"), clock: clock, idGen: idGen}
}

// Load reads the activities record. A fresh data dir is seeded with the
// default activities, persisted before returning.
func (s *FileActivityStore) Load(ctx context.Context) ([]domain.Activity, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			seeded := domain.Defaults(s.clock.Now(), s.idGen.New)
			if err := s.Save(ctx, seeded); err != nil {
				return nil, err
			}
			return seeded, nil
		}
		return nil, fmt.Errorf("%w: read activities: %v", apperrors.ErrStorageUnavailable, err)
	}
	records := []activityRecord{}
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("%w: decode activities: %v", apperrors.ErrStorageUnavailable, err)
	}
	activities := make([]domain.Activity, 0, len(records))
	for _, record := range records {
		activities = append(activities, domain.Activity{
			ID:           record.ID,
			Name:         record.Name,
			Color:        record.Color,
			TotalMinutes: record.TotalMinutes,
			CreatedAt:    time.UnixMilli(record.CreatedAt).UTC(),
		})
	}
	return activities, nil
}

func (s *FileActivityStore) Save(_ context.Context, activities []domain.Activity) error {
	records := make([]activityRecord, 0, len(activities))
	for _, activity := range activities {
		records = append(records, activityRecord{
			ID:           activity.ID,
			Name:         activity.Name,
			Color:        activity.Color,
			TotalMinutes: activity.TotalMinutes,
			CreatedAt:    activity.CreatedAt.UnixMilli(),
		})
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode activities: %v", apperrors.ErrStorageUnavailable, err)
	}
	return writeRecord(s.path, payload)
}

func (s *FileActivityStore) Clear(_ context.Context) error {
	return removeRecord(s.path)
}

// writeRecord replaces a record file atomically: either the whole new
// record lands or the prior value remains.
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
