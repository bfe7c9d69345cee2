package out

import (
	"context"

	"tally/internal/modules/activity/domain"
)

// ActivityStore owns the durable activities record. Load on a fresh
// data dir seeds the default activities and persists them before
// returning.
type ActivityStore interface {
	Load(ctx context.Context) ([]domain.Activity, error)
	Save(ctx context.Context, activities []domain.Activity) error
	Clear(ctx context.Context) error
}

// ActivityProjector maintains the rebuildable sqlite read model.
type ActivityProjector interface {
	Reset(ctx context.Context) error
	UpsertActivity(ctx context.Context, activity domain.Activity) error
	DeleteActivity(ctx context.Context, activityID string) error
}
