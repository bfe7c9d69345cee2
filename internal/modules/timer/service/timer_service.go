package service

import (
	"context"
	"errors"

	"tally/internal/modules/timer/domain"
	timerout "tally/internal/modules/timer/port/out"
	"tally/internal/platform/clock"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/id"
)

type TimerService struct {
	clock     clock.Clock
	idGen     id.Generator
	sessions  timerout.SessionStore
	active    timerout.ActiveSessionStore
	projector timerout.SessionProjector
}

func NewTimerService(clock clock.Clock, idGen id.Generator, sessions timerout.SessionStore, active timerout.ActiveSessionStore, projector timerout.SessionProjector) *TimerService {
	return &TimerService{clock: clock, idGen: idGen, sessions: sessions, active: active, projector: projector}
}

func (s *TimerService) Begin(activityID, activityName string) domain.ActiveSession {
	return domain.ActiveSession{
		ID:           s.idGen.New(),
		ActivityID:   activityID,
		ActivityName: activityName,
		StartedAt:    s.clock.Now(),
	}
}

// Finish closes the active session and appends it to the durable log
// before anything else observes it.
func (s *TimerService) Finish(ctx context.Context, active domain.ActiveSession) (domain.Session, error) {
	session := active.Finalize(s.clock.Now())
	if err := s.sessions.Append(ctx, session); err != nil {
		return domain.Session{}, err
	}
	if err := s.projector.InsertSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// RunningFor reports whether the current-session marker references the
// given activity.
func (s *TimerService) RunningFor(ctx context.Context, activityID string) (bool, error) {
	active, err := s.active.LoadActive(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrTimerIdle) {
			return false, nil
		}
		return false, err
	}
	return active.ActivityID == activityID, nil
}

// PurgeByActivity removes every logged session of a deleted activity
// and returns how many were dropped.
func (s *TimerService) PurgeByActivity(ctx context.Context, activityID string) (int, error) {
	sessions, err := s.sessions.Load(ctx)
	if err != nil {
		return 0, err
	}
	kept := sessions[:0]
	removed := 0
	for _, session := range sessions {
		if session.ActivityID == activityID {
			removed++
			continue
		}
		kept = append(kept, session)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.sessions.Save(ctx, kept); err != nil {
		return 0, err
	}
	if err := s.projector.DeleteByActivity(ctx, activityID); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *TimerService) List(ctx context.Context) ([]domain.Session, error) {
	return s.sessions.Load(ctx)
}

func (s *TimerService) Stats(ctx context.Context) ([]timerout.ActivityStats, error) {
	return s.projector.StatsByActivity(ctx)
}
