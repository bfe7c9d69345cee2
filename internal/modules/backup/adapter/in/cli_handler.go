package in

import (
	"context"

	backupdto "tally/internal/modules/backup/dto"
	backupin "tally/internal/modules/backup/port/in"
)

type CLIHandler struct {
	usecase backupin.Usecase
}

func NewCLIHandler(usecase backupin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Export(ctx context.Context, path string) (backupdto.SnapshotOutput, error) {
	return h.usecase.Export(ctx, path)
}

func (h CLIHandler) Import(ctx context.Context, path string) (backupdto.SnapshotOutput, error) {
	return h.usecase.Import(ctx, path)
}

func (h CLIHandler) Clear(ctx context.Context) error {
	return h.usecase.Clear(ctx)
}
