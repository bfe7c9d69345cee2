package out

import (
	"context"

	"tally/internal/modules/timer/domain"
)

// SessionStore owns the durable session log.
type SessionStore interface {
	Load(ctx context.Context) ([]domain.Session, error)
	Append(ctx context.Context, session domain.Session) error
	Save(ctx context.Context, sessions []domain.Session) error
	Clear(ctx context.Context) error
}

// ActiveSessionStore owns the current-session marker slot. LoadActive
// reports ErrTimerIdle when the slot is empty.
type ActiveSessionStore interface {
	SaveActive(ctx context.Context, session domain.ActiveSession) error
	LoadActive(ctx context.Context) (domain.ActiveSession, error)
	ClearActive(ctx context.Context) error
}

// SessionProjector maintains the rebuildable sqlite read model of the
// session log.
type SessionProjector interface {
	Reset(ctx context.Context) error
	InsertSession(ctx context.Context, session domain.Session) error
	DeleteByActivity(ctx context.Context, activityID string) error
	StatsByActivity(ctx context.Context) ([]ActivityStats, error)
}

type ActivityStats struct {
	ActivityID   string
	ActivityName string
	Sessions     int
	Minutes      int
}
