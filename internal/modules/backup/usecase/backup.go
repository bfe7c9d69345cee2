package usecase

import (
	"context"
	"fmt"
	"strings"

	"tally/internal/modules/backup/dto"
	backupin "tally/internal/modules/backup/port/in"
	"tally/internal/modules/backup/service"
	apperrors "tally/internal/platform/errors"
)

// mirrorNotifier mirrors the bulk triggers; import and clear both
// invalidate every external row.
type mirrorNotifier interface {
	BulkChanged()
}

type Interactor struct {
	svc    *service.BackupService
	mirror mirrorNotifier
}

func NewInteractor(svc *service.BackupService, mirror mirrorNotifier) backupin.Usecase {
	return &Interactor{svc: svc, mirror: mirror}
}

func (i *Interactor) Export(ctx context.Context, path string) (dto.SnapshotOutput, error) {
	if strings.TrimSpace(path) == "" {
		return dto.SnapshotOutput{}, fmt.Errorf("%w: export path is empty", apperrors.ErrInvalidInput)
	}
	snapshot, err := i.svc.Export(ctx, path)
	if err != nil {
		return dto.SnapshotOutput{}, err
	}
	return dto.SnapshotOutput{Path: path, Activities: len(snapshot.Activities), Sessions: len(snapshot.Sessions)}, nil
}

func (i *Interactor) Import(ctx context.Context, path string) (dto.SnapshotOutput, error) {
	if strings.TrimSpace(path) == "" {
		return dto.SnapshotOutput{}, fmt.Errorf("%w: import path is empty", apperrors.ErrInvalidInput)
	}
	snapshot, err := i.svc.Import(ctx, path)
	if err != nil {
		return dto.SnapshotOutput{}, err
	}
	if i.mirror != nil {
		i.mirror.BulkChanged()
	}
	return dto.SnapshotOutput{Path: path, Activities: len(snapshot.Activities), Sessions: len(snapshot.Sessions)}, nil
}

func (i *Interactor) Clear(ctx context.Context) error {
	if err := i.svc.Clear(ctx); err != nil {
		return err
	}
	if i.mirror != nil {
		i.mirror.BulkChanged()
	}
	return nil
}
