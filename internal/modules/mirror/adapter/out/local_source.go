package out

import (
	"context"
	"fmt"

	activityout "tally/internal/modules/activity/port/out"
	"tally/internal/modules/mirror/domain"
	mirrorout "tally/internal/modules/mirror/port/out"
	timerout "tally/internal/modules/timer/port/out"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/timeutil"
)

// StoreLocalSource adapts the durable activity and session stores into
// the engine's read-only view. The engine reads at sync time, so a row
// always reflects the state persisted by the mutation that triggered
// it or something newer; lagging behind local state is fine by
// contract.
type StoreLocalSource struct {
	activities activityout.ActivityStore
	sessions   timerout.SessionStore
}

func NewStoreLocalSource(activities activityout.ActivityStore, sessions timerout.SessionStore) mirrorout.LocalSource {
	return &StoreLocalSource{activities: activities, sessions: sessions}
}

func (s *StoreLocalSource) Activities(ctx context.Context) ([]domain.ActivityRecord, error) {
	activities, err := s.activities.Load(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]domain.ActivityRecord, 0, len(activities))
	for _, activity := range activities {
		records = append(records, domain.ActivityRecord{
			ID:           activity.ID,
			Name:         activity.Name,
			Color:        activity.Color,
			TotalMinutes: activity.TotalMinutes,
			CreatedAt:    activity.CreatedAt,
		})
	}
	return records, nil
}

func (s *StoreLocalSource) Activity(ctx context.Context, activityID string) (domain.ActivityRecord, error) {
	records, err := s.Activities(ctx)
	if err != nil {
		return domain.ActivityRecord{}, err
	}
	for _, record := range records {
		if record.ID == activityID {
			return record, nil
		}
	}
	return domain.ActivityRecord{}, fmt.Errorf("%w: activity %s", apperrors.ErrNotFound, activityID)
}

func (s *StoreLocalSource) Sessions(ctx context.Context) ([]domain.SessionRecord, error) {
	sessions, err := s.sessions.Load(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]domain.SessionRecord, 0, len(sessions))
	for _, session := range sessions {
		records = append(records, domain.SessionRecord{
			ID:           session.ID,
			ActivityID:   session.ActivityID,
			ActivityName: session.ActivityName,
			StartedAt:    session.StartedAt,
			EndedAt:      session.EndedAt,
			Minutes:      timeutil.RoundMinutes(session.Duration),
		})
	}
	return records, nil
}

func (s *StoreLocalSource) Session(ctx context.Context, sessionID string) (domain.SessionRecord, error) {
	records, err := s.Sessions(ctx)
	if err != nil {
		return domain.SessionRecord{}, err
	}
	for _, record := range records {
		if record.ID == sessionID {
			return record, nil
		}
	}
	return domain.SessionRecord{}, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, sessionID)
}
