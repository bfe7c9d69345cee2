package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	activitydomain "tally/internal/modules/activity/domain"
	activityout "tally/internal/modules/activity/port/out"
	"tally/internal/modules/backup/domain"
	timerdomain "tally/internal/modules/timer/domain"
	timerout "tally/internal/modules/timer/port/out"
	"tally/internal/platform/clock"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/timeutil"
)

type BackupService struct {
	clock             clock.Clock
	activities        activityout.ActivityStore
	activityProjector activityout.ActivityProjector
	sessions          timerout.SessionStore
	sessionProjector  timerout.SessionProjector
	active            timerout.ActiveSessionStore
}

func NewBackupService(
	clk clock.Clock,
	activities activityout.ActivityStore,
	activityProjector activityout.ActivityProjector,
	sessions timerout.SessionStore,
	sessionProjector timerout.SessionProjector,
	active timerout.ActiveSessionStore,
) *BackupService {
	return &BackupService{
		clock:             clk,
		activities:        activities,
		activityProjector: activityProjector,
		sessions:          sessions,
		sessionProjector:  sessionProjector,
		active:            active,
	}
}

func (s *BackupService) Export(ctx context.Context, path string) (domain.Snapshot, error) {
	activities, err := s.activities.Load(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	sessions, err := s.sessions.Load(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snapshot := domain.Snapshot{
		Activities: make([]domain.ActivityRecord, 0, len(activities)),
		Sessions:   make([]domain.SessionRecord, 0, len(sessions)),
		ExportDate: timeutil.FormatStamp(s.clock.Now()),
	}
	for _, activity := range activities {
		snapshot.Activities = append(snapshot.Activities, domain.ActivityRecord{
			ID:           activity.ID,
			Name:         activity.Name,
			Color:        activity.Color,
			TotalMinutes: activity.TotalMinutes,
			CreatedAt:    activity.CreatedAt.UnixMilli(),
		})
	}
	for _, session := range sessions {
		record := domain.SessionRecord{
			ID:           session.ID,
			ActivityID:   session.ActivityID,
			ActivityName: session.ActivityName,
			StartTime:    session.StartedAt.UnixMilli(),
			Duration:     session.Duration.Milliseconds(),
		}
		if !session.Running() {
			record.EndTime = session.EndedAt.UnixMilli()
		}
		snapshot.Sessions = append(snapshot.Sessions, record)
	}
	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return domain.Snapshot{}, fmt.Errorf("write snapshot: %w", err)
	}
	return snapshot, nil
}

// Import replaces the local records with a previously exported
// snapshot and rebuilds the read model. The snapshot is validated
// before anything is written.
func (s *BackupService) Import(ctx context.Context, path string) (domain.Snapshot, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	snapshot := domain.Snapshot{}
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: malformed snapshot: %v", apperrors.ErrInvalidInput, err)
	}
	if err := validate(snapshot); err != nil {
		return domain.Snapshot{}, err
	}

	activities := make([]activitydomain.Activity, 0, len(snapshot.Activities))
	for _, record := range snapshot.Activities {
		activities = append(activities, activitydomain.Activity{
			ID:           record.ID,
			Name:         record.Name,
			Color:        record.Color,
			TotalMinutes: record.TotalMinutes,
			CreatedAt:    time.UnixMilli(record.CreatedAt).UTC(),
		})
	}
	sessions := make([]timerdomain.Session, 0, len(snapshot.Sessions))
	for _, record := range snapshot.Sessions {
		session := timerdomain.Session{
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

	if err := s.activities.Save(ctx, activities); err != nil {
		return domain.Snapshot{}, err
	}
	if err := s.sessions.Save(ctx, sessions); err != nil {
		return domain.Snapshot{}, err
	}
	if err := s.activityProjector.Reset(ctx); err != nil {
		return domain.Snapshot{}, err
	}
	for _, activity := range activities {
		if err := s.activityProjector.UpsertActivity(ctx, activity); err != nil {
			return domain.Snapshot{}, err
		}
	}
	if err := s.sessionProjector.Reset(ctx); err != nil {
		return domain.Snapshot{}, err
	}
	for _, session := range sessions {
		if err := s.sessionProjector.InsertSession(ctx, session); err != nil {
			return domain.Snapshot{}, err
		}
	}
	return snapshot, nil
}

// Clear wipes every local record slot and the read model. The next
// load reseeds the default activities.
func (s *BackupService) Clear(ctx context.Context) error {
	if err := s.activities.Clear(ctx); err != nil {
		return err
	}
	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}
	if err := s.active.ClearActive(ctx); err != nil {
		return err
	}
	if err := s.activityProjector.Reset(ctx); err != nil {
		return err
	}
	return s.sessionProjector.Reset(ctx)
}

func validate(snapshot domain.Snapshot) error {
	seen := map[string]bool{}
	for _, activity := range snapshot.Activities {
		if activity.ID == "" {
			return fmt.Errorf("%w: activity without id", apperrors.ErrInvalidInput)
		}
		key := activitydomain.NormalizeName(activity.Name)
		if key == "" {
			return fmt.Errorf("%w: activity %s has an empty name", apperrors.ErrInvalidInput, activity.ID)
		}
		if seen[key] {
			return fmt.Errorf("%w: duplicate activity name %q", apperrors.ErrDuplicateName, activity.Name)
		}
		seen[key] = true
		if activity.TotalMinutes < 0 {
			return fmt.Errorf("%w: activity %s has a negative total", apperrors.ErrInvalidInput, activity.ID)
		}
	}
	for _, session := range snapshot.Sessions {
		if session.ID == "" {
			return fmt.Errorf("%w: session without id", apperrors.ErrInvalidInput)
		}
		if session.Duration < 0 {
			return fmt.Errorf("%w: session %s has a negative duration", apperrors.ErrInvalidInput, session.ID)
		}
		if session.EndTime != 0 && session.EndTime < session.StartTime {
			return fmt.Errorf("%w: session %s ends before it starts", apperrors.ErrInvalidInput, session.ID)
		}
	}
	return nil
}
