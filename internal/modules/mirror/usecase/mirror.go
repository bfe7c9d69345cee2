package usecase

import (
	"context"

	"tally/internal/modules/mirror/domain"
	"tally/internal/modules/mirror/dto"
	mirrorin "tally/internal/modules/mirror/port/in"
	"tally/internal/modules/mirror/service"
)

type Interactor struct {
	svc *service.MirrorService
}

func NewInteractor(svc *service.MirrorService) mirrorin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Connect(ctx context.Context) (dto.StatusOutput, error) {
	if _, err := i.svc.Connect(ctx); err != nil {
		return dto.StatusOutput{}, err
	}
	return i.Status(ctx)
}

func (i *Interactor) Disconnect(ctx context.Context) error {
	return i.svc.Disconnect(ctx)
}

func (i *Interactor) SyncNow(ctx context.Context) error {
	return i.svc.SyncNow(ctx)
}

func (i *Interactor) Status(context.Context) (dto.StatusOutput, error) {
	status, handle, lastSync, lastErr := i.svc.Status()
	out := dto.StatusOutput{
		Status:     string(status),
		DocumentID: handle.DocumentID,
		LastSync:   lastSync,
	}
	if lastErr != nil {
		out.LastError = lastErr.Error()
	}
	return out, nil
}

func (i *Interactor) Subscribe() (<-chan dto.StatusEvent, func()) {
	events, cancel := i.svc.Subscribe()
	out := make(chan dto.StatusEvent, 8)
	go func() {
		defer close(out)
		for event := range events {
			out <- mapEvent(event)
		}
	}()
	return out, cancel
}

func (i *Interactor) ActivityCreated(activityID string) {
	i.svc.ActivityCreated(activityID)
}

func (i *Interactor) SessionCompleted(sessionID string) {
	i.svc.SessionCompleted(sessionID)
}

func (i *Interactor) BulkChanged() {
	i.svc.BulkChanged()
}

func (i *Interactor) Wait() {
	i.svc.Wait()
}

func mapEvent(event domain.StatusEvent) dto.StatusEvent {
	out := dto.StatusEvent{Status: string(event.Status), Op: event.Op, At: event.At}
	if event.Err != nil {
		out.Err = event.Err.Error()
	}
	return out
}
