package in

import (
	"context"
	"time"

	"tally/internal/modules/activity/dto"
)

type Usecase interface {
	Create(ctx context.Context, input dto.CreateInput) (dto.ActivityOutput, error)
	Delete(ctx context.Context, activityID string) (dto.DeleteOutput, error)
	Get(ctx context.Context, activityID string) (dto.ActivityOutput, error)
	List(ctx context.Context) ([]dto.ActivityOutput, error)
	ApplyCompletedSession(ctx context.Context, activityID string, duration time.Duration) error
}
