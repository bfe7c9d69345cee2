package in

import (
	"context"

	activitydto "tally/internal/modules/activity/dto"
	activityin "tally/internal/modules/activity/port/in"
)

type CLIHandler struct {
	usecase activityin.Usecase
}

func NewCLIHandler(usecase activityin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Create(ctx context.Context, name, color string) (activitydto.ActivityOutput, error) {
	return h.usecase.Create(ctx, activitydto.CreateInput{Name: name, Color: color})
}

func (h CLIHandler) Delete(ctx context.Context, activityID string) (activitydto.DeleteOutput, error) {
	return h.usecase.Delete(ctx, activityID)
}

func (h CLIHandler) Get(ctx context.Context, activityID string) (activitydto.ActivityOutput, error) {
	return h.usecase.Get(ctx, activityID)
}

func (h CLIHandler) List(ctx context.Context) ([]activitydto.ActivityOutput, error) {
	return h.usecase.List(ctx)
}
