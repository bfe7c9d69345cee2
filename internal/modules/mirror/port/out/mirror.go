package out

import (
	"context"
	"net/http"

	"tally/internal/modules/mirror/domain"
)

// DocumentClient speaks to the external spreadsheet-shaped document
// service. Implementations classify failures: a missing document is
// ErrMirrorDocumentMissing, anything else ErrMirrorUnavailable.
type DocumentClient interface {
	Exists(ctx context.Context, documentID string) error
	FindByTitle(ctx context.Context, title string) (string, error)
	Create(ctx context.Context, title string, sheets []domain.SheetSpec) (string, error)
	AppendRows(ctx context.Context, documentID, sheet string, rows [][]string) error
	// ReplaceRows rewrites every data row of a sheet. Headers are never
	// touched.
	ReplaceRows(ctx context.Context, documentID, sheet string, rows [][]string) error
}

// CredentialSource yields an HTTP client carrying the delegated
// identity of the external account.
type CredentialSource interface {
	Client(ctx context.Context) (*http.Client, error)
}

// HandleStore owns the durable mirror-handle slot.
type HandleStore interface {
	Load(ctx context.Context) (domain.Handle, error)
	Save(ctx context.Context, handle domain.Handle) error
	Clear(ctx context.Context) error
}

// LocalSource is the engine's read-only view of local state.
type LocalSource interface {
	Activities(ctx context.Context) ([]domain.ActivityRecord, error)
	Activity(ctx context.Context, activityID string) (domain.ActivityRecord, error)
	Sessions(ctx context.Context) ([]domain.SessionRecord, error)
	Session(ctx context.Context, sessionID string) (domain.SessionRecord, error)
}
