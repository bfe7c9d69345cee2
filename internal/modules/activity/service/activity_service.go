package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tally/internal/modules/activity/domain"
	activityout "tally/internal/modules/activity/port/out"
	"tally/internal/platform/clock"
	apperrors "tally/internal/platform/errors"
	"tally/internal/platform/id"
	"tally/internal/platform/timeutil"
)

type ActivityService struct {
	clock     clock.Clock
	idGen     id.Generator
	store     activityout.ActivityStore
	projector activityout.ActivityProjector
}

func NewActivityService(clock clock.Clock, idGen id.Generator, store activityout.ActivityStore, projector activityout.ActivityProjector) *ActivityService {
	return &ActivityService{clock: clock, idGen: idGen, store: store, projector: projector}
}

func (s *ActivityService) Create(ctx context.Context, name, color string) (domain.Activity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Activity{}, fmt.Errorf("%w: activity name is empty", apperrors.ErrInvalidInput)
	}
	activities, err := s.store.Load(ctx)
	if err != nil {
		return domain.Activity{}, err
	}
	key := domain.NormalizeName(name)
	for _, existing := range activities {
		if domain.NormalizeName(existing.Name) == key {
			return domain.Activity{}, fmt.Errorf("%w: %q", apperrors.ErrDuplicateName, existing.Name)
		}
	}
	if strings.TrimSpace(color) == "" {
		color = domain.DefaultColor
	}
	activity := domain.Activity{
		ID:        s.idGen.New(),
		Name:      name,
		Color:     color,
		CreatedAt: s.clock.Now(),
	}
	activities = append(activities, activity)
	if err := s.store.Save(ctx, activities); err != nil {
		return domain.Activity{}, err
	}
	if err := s.projector.UpsertActivity(ctx, activity); err != nil {
		return domain.Activity{}, err
	}
	return activity, nil
}

func (s *ActivityService) Delete(ctx context.Context, activityID string) (domain.Activity, error) {
	activities, err := s.store.Load(ctx)
	if err != nil {
		return domain.Activity{}, err
	}
	idx := -1
	for i, existing := range activities {
		if existing.ID == activityID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.Activity{}, fmt.Errorf("%w: activity %s", apperrors.ErrNotFound, activityID)
	}
	deleted := activities[idx]
	activities = append(activities[:idx], activities[idx+1:]...)
	if err := s.store.Save(ctx, activities); err != nil {
		return domain.Activity{}, err
	}
	if err := s.projector.DeleteActivity(ctx, activityID); err != nil {
		return domain.Activity{}, err
	}
	return deleted, nil
}

// ApplyCompletedSession adds the rounded minutes of a finished session
// to the activity total. A session whose activity is gone still stays
// in the log, so a missing activity is a silent no-op here.
func (s *ActivityService) ApplyCompletedSession(ctx context.Context, activityID string, duration time.Duration) error {
	activities, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	for i := range activities {
		if activities[i].ID != activityID {
			continue
		}
		activities[i].TotalMinutes += timeutil.RoundMinutes(duration)
		if err := s.store.Save(ctx, activities); err != nil {
			return err
		}
		return s.projector.UpsertActivity(ctx, activities[i])
	}
	return nil
}

func (s *ActivityService) Find(ctx context.Context, activityID string) (domain.Activity, error) {
	activities, err := s.store.Load(ctx)
	if err != nil {
		return domain.Activity{}, err
	}
	for _, existing := range activities {
		if existing.ID == activityID {
			return existing, nil
		}
	}
	return domain.Activity{}, fmt.Errorf("%w: activity %s", apperrors.ErrNotFound, activityID)
}

func (s *ActivityService) List(ctx context.Context) ([]domain.Activity, error) {
	return s.store.Load(ctx)
}
