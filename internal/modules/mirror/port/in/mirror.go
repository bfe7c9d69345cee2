package in

import (
	"context"

	"tally/internal/modules/mirror/dto"
)

type Usecase interface {
	Connect(ctx context.Context) (dto.StatusOutput, error)
	Disconnect(ctx context.Context) error
	SyncNow(ctx context.Context) error
	Status(ctx context.Context) (dto.StatusOutput, error)
	Subscribe() (<-chan dto.StatusEvent, func())

	// Fire-and-forget triggers from the local mutation path. They never
	// block and never return an error; outcomes surface on the status
	// channel.
	ActivityCreated(activityID string)
	SessionCompleted(sessionID string)
	BulkChanged()

	// Wait blocks until in-flight background syncs settle. Short-lived
	// CLI commands call it before exiting.
	Wait()
}
