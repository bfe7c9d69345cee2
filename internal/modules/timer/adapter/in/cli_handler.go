package in

import (
	"context"

	timerdto "tally/internal/modules/timer/dto"
	timerin "tally/internal/modules/timer/port/in"
)

type CLIHandler struct {
	usecase timerin.Usecase
}

func NewCLIHandler(usecase timerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, activityID string) (timerdto.StartOutput, error) {
	return h.usecase.Start(ctx, timerdto.StartInput{ActivityID: activityID})
}

func (h CLIHandler) Stop(ctx context.Context) (timerdto.SessionOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) GetActive(ctx context.Context) (timerdto.ActiveOutput, error) {
	return h.usecase.GetActive(ctx)
}

func (h CLIHandler) ListSessions(ctx context.Context) ([]timerdto.SessionOutput, error) {
	return h.usecase.ListSessions(ctx)
}

func (h CLIHandler) Stats(ctx context.Context) ([]timerdto.ActivityStatsOutput, error) {
	return h.usecase.Stats(ctx)
}
