package in

import (
	"context"

	"tally/internal/modules/backup/dto"
)

type Usecase interface {
	Export(ctx context.Context, path string) (dto.SnapshotOutput, error)
	Import(ctx context.Context, path string) (dto.SnapshotOutput, error)
	Clear(ctx context.Context) error
}
