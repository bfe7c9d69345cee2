package in

import (
	"context"

	mirrordto "tally/internal/modules/mirror/dto"
	mirrorin "tally/internal/modules/mirror/port/in"
)

type CLIHandler struct {
	usecase mirrorin.Usecase
}

func NewCLIHandler(usecase mirrorin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Connect(ctx context.Context) (mirrordto.StatusOutput, error) {
	return h.usecase.Connect(ctx)
}

func (h CLIHandler) Disconnect(ctx context.Context) error {
	return h.usecase.Disconnect(ctx)
}

func (h CLIHandler) SyncNow(ctx context.Context) error {
	return h.usecase.SyncNow(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (mirrordto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}
