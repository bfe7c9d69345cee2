package usecase

import (
	"context"
	"fmt"
	"time"

	"tally/internal/modules/activity/dto"
	activityin "tally/internal/modules/activity/port/in"
	"tally/internal/modules/activity/service"
	apperrors "tally/internal/platform/errors"
)

// sessionCascade is the slice of the timer module the registry needs:
// refusing deletes under a running timer and cascading the session log.
type sessionCascade interface {
	RunningFor(ctx context.Context, activityID string) (bool, error)
	PurgeByActivity(ctx context.Context, activityID string) (int, error)
}

// mirrorNotifier receives fire-and-forget sync triggers. A nil notifier
// means local-only mode.
type mirrorNotifier interface {
	ActivityCreated(activityID string)
	BulkChanged()
}

type Interactor struct {
	svc      *service.ActivityService
	sessions sessionCascade
	mirror   mirrorNotifier
}

func NewInteractor(svc *service.ActivityService, sessions sessionCascade, mirror mirrorNotifier) activityin.Usecase {
	return &Interactor{svc: svc, sessions: sessions, mirror: mirror}
}

func (i *Interactor) Create(ctx context.Context, input dto.CreateInput) (dto.ActivityOutput, error) {
	activity, err := i.svc.Create(ctx, input.Name, input.Color)
	if err != nil {
		return dto.ActivityOutput{}, err
	}
	if i.mirror != nil {
		i.mirror.ActivityCreated(activity.ID)
	}
	return dto.ActivityOutput{
		ID:           activity.ID,
		Name:         activity.Name,
		Color:        activity.Color,
		TotalMinutes: activity.TotalMinutes,
		CreatedAt:    activity.CreatedAt,
	}, nil
}

// Delete removes the activity and every session that references it. The
// cascade makes incremental mirror sync unsafe, so the trigger is a
// full resync. Deleting the activity behind the running timer is
// refused; stop the timer first.
func (i *Interactor) Delete(ctx context.Context, activityID string) (dto.DeleteOutput, error) {
	if i.sessions != nil {
		running, err := i.sessions.RunningFor(ctx, activityID)
		if err != nil {
			return dto.DeleteOutput{}, err
		}
		if running {
			return dto.DeleteOutput{}, fmt.Errorf("%w: stop the timer before deleting its activity", apperrors.ErrTimerRunning)
		}
	}
	deleted, err := i.svc.Delete(ctx, activityID)
	if err != nil {
		return dto.DeleteOutput{}, err
	}
	removed := 0
	if i.sessions != nil {
		removed, err = i.sessions.PurgeByActivity(ctx, activityID)
		if err != nil {
			return dto.DeleteOutput{}, err
		}
	}
	if i.mirror != nil {
		i.mirror.BulkChanged()
	}
	return dto.DeleteOutput{ID: deleted.ID, Name: deleted.Name, RemovedSessions: removed}, nil
}

func (i *Interactor) Get(ctx context.Context, activityID string) (dto.ActivityOutput, error) {
	activity, err := i.svc.Find(ctx, activityID)
	if err != nil {
		return dto.ActivityOutput{}, err
	}
	return dto.ActivityOutput{
		ID:           activity.ID,
		Name:         activity.Name,
		Color:        activity.Color,
		TotalMinutes: activity.TotalMinutes,
		CreatedAt:    activity.CreatedAt,
	}, nil
}

func (i *Interactor) List(ctx context.Context) ([]dto.ActivityOutput, error) {
	activities, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActivityOutput, 0, len(activities))
	for _, activity := range activities {
		out = append(out, dto.ActivityOutput{
			ID:           activity.ID,
			Name:         activity.Name,
			Color:        activity.Color,
			TotalMinutes: activity.TotalMinutes,
			CreatedAt:    activity.CreatedAt,
		})
	}
	return out, nil
}

func (i *Interactor) ApplyCompletedSession(ctx context.Context, activityID string, duration time.Duration) error {
	return i.svc.ApplyCompletedSession(ctx, activityID, duration)
}
