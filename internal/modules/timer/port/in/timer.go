package in

import (
	"context"

	"tally/internal/modules/timer/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StartOutput, error)
	Stop(ctx context.Context) (dto.SessionOutput, error)
	GetActive(ctx context.Context) (dto.ActiveOutput, error)
	ListSessions(ctx context.Context) ([]dto.SessionOutput, error)
	Stats(ctx context.Context) ([]dto.ActivityStatsOutput, error)
	Resume(ctx context.Context) error
	Subscribe() (<-chan dto.ElapsedEvent, func())
}
