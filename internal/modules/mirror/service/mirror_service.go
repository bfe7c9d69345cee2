package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tally/internal/modules/mirror/domain"
	mirrorout "tally/internal/modules/mirror/port/out"
	"tally/internal/platform/clock"
	apperrors "tally/internal/platform/errors"
)

const syncTimeout = 30 * time.Second

// MirrorService is the one-way, best-effort replication engine. Local
// mutations trigger it fire-and-forget; it never blocks or fails the
// mutation path. Bulk or ambiguous changes get a full resync rather
// than incremental diffing: correctness over a low-volume dataset is
// cheap.
type MirrorService struct {
	clock   clock.Clock
	docs    mirrorout.DocumentClient
	handles mirrorout.HandleStore
	source  mirrorout.LocalSource
	title   string

	mu       sync.Mutex
	status   domain.SyncStatus
	handle   domain.Handle
	lastSync time.Time
	lastErr  error

	wg sync.WaitGroup

	subMu   sync.Mutex
	subs    map[int]chan domain.StatusEvent
	nextSub int
}

func NewMirrorService(clk clock.Clock, docs mirrorout.DocumentClient, handles mirrorout.HandleStore, source mirrorout.LocalSource, title string) *MirrorService {
	if title == "" {
		title = domain.DefaultDocumentTitle
	}
	s := &MirrorService{
		clock:   clk,
		docs:    docs,
		handles: handles,
		source:  source,
		title:   title,
		status:  domain.StatusOffline,
		subs:    map[int]chan domain.StatusEvent{},
	}
	// A handle persisted by an earlier process means the mirror was
	// connected; resume in that state.
	if handle, err := handles.Load(context.Background()); err == nil && !handle.Empty() {
		s.handle = handle
		s.status = domain.StatusOnline
	}
	return s
}

// Connect resolves the mirror handle: reuse the stored document if it
// is still reachable, otherwise search by the well-known title,
// otherwise create a fresh document with headers. A connect always ends
// with a full resync so the document reflects current local state.
func (s *MirrorService) Connect(ctx context.Context) (domain.Handle, error) {
	s.transition(domain.StatusConnecting, "connect", nil)
	handle, err := s.resolveHandle(ctx)
	if err != nil {
		s.transition(domain.StatusOffline, "connect", err)
		return domain.Handle{}, err
	}
	s.mu.Lock()
	s.handle = handle
	s.mu.Unlock()
	s.transition(domain.StatusSyncing, "connect", nil)
	if err := s.fullResync(ctx, handle); err != nil {
		s.settle("connect", err)
		return handle, nil
	}
	s.settle("connect", nil)
	return handle, nil
}

func (s *MirrorService) resolveHandle(ctx context.Context) (domain.Handle, error) {
	stored, err := s.handles.Load(ctx)
	if err != nil {
		return domain.Handle{}, err
	}
	if !stored.Empty() {
		if err := s.docs.Exists(ctx, stored.DocumentID); err == nil {
			return stored, nil
		} else if !errors.Is(err, apperrors.ErrMirrorDocumentMissing) {
			return domain.Handle{}, err
		}
		// Stored document is gone; fall through to search/create.
	}
	documentID, err := s.docs.FindByTitle(ctx, s.title)
	if err != nil {
		return domain.Handle{}, err
	}
	if documentID == "" {
		documentID, err = s.docs.Create(ctx, s.title, domain.Schema())
		if err != nil {
			return domain.Handle{}, err
		}
	}
	handle := domain.Handle{DocumentID: documentID}
	if err := s.handles.Save(ctx, handle); err != nil {
		return domain.Handle{}, err
	}
	return handle, nil
}

// Disconnect drops the handle and the connected state. The external
// document is left alone.
func (s *MirrorService) Disconnect(ctx context.Context) error {
	if err := s.handles.Clear(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.handle = domain.Handle{}
	s.lastErr = nil
	s.mu.Unlock()
	s.transition(domain.StatusOffline, "disconnect", nil)
	return nil
}

// SyncNow runs a synchronous full resync, for the explicit sync
// command.
func (s *MirrorService) SyncNow(ctx context.Context) error {
	handle, ok := s.connectedHandle()
	if !ok {
		return fmt.Errorf("%w: not connected", apperrors.ErrMirrorUnavailable)
	}
	s.transition(domain.StatusSyncing, "full resync", nil)
	err := s.fullResync(ctx, handle)
	s.settle("full resync", err)
	return err
}

// ActivityCreated appends the one new activity row.
func (s *MirrorService) ActivityCreated(activityID string) {
	s.launch("append activity", func(ctx context.Context, handle domain.Handle) error {
		record, err := s.source.Activity(ctx, activityID)
		if err != nil {
			return err
		}
		return s.docs.AppendRows(ctx, handle.DocumentID, domain.SheetActivities, [][]string{record.Row()})
	})
}

// SessionCompleted appends the one finished session row, then rewrites
// the Activities table: the parent total changed and the append-only
// incremental path cannot update a single existing row.
func (s *MirrorService) SessionCompleted(sessionID string) {
	s.launch("append session", func(ctx context.Context, handle domain.Handle) error {
		record, err := s.source.Session(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := s.docs.AppendRows(ctx, handle.DocumentID, domain.SheetSessions, [][]string{record.Row()}); err != nil {
			return err
		}
		return s.rewriteActivities(ctx, handle)
	})
}

// BulkChanged schedules a full resync after a cascade or any other
// change too broad for incremental append.
func (s *MirrorService) BulkChanged() {
	s.launch("full resync", func(ctx context.Context, handle domain.Handle) error {
		return s.fullResync(ctx, handle)
	})
}

func (s *MirrorService) Status() (domain.SyncStatus, domain.Handle, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.handle, s.lastSync, s.lastErr
}

func (s *MirrorService) Subscribe() (<-chan domain.StatusEvent, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	key := s.nextSub
	s.nextSub++
	ch := make(chan domain.StatusEvent, 8)
	s.subs[key] = ch
	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if sub, ok := s.subs[key]; ok {
			delete(s.subs, key)
			close(sub)
		}
	}
}

// Wait blocks until every in-flight background sync has settled.
func (s *MirrorService) Wait() {
	s.wg.Wait()
}

func (s *MirrorService) connectedHandle() (domain.Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle, !s.handle.Empty()
}

// launch runs one sync operation in the background. Not connected means
// local-only mode: the trigger is silently a no-op.
func (s *MirrorService) launch(op string, fn func(context.Context, domain.Handle) error) {
	handle, ok := s.connectedHandle()
	if !ok {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		s.transition(domain.StatusSyncing, op, nil)
		s.settle(op, fn(ctx, handle))
	}()
}

// settle records the outcome of a sync op. A missing document discards
// the handle and demotes to Offline; any other failure keeps the
// connection (connected but last op failed), so Syncing -> Online even
// on error.
func (s *MirrorService) settle(op string, err error) {
	if err == nil {
		s.mu.Lock()
		s.lastSync = s.clock.Now()
		s.lastErr = nil
		s.mu.Unlock()
		s.transition(domain.StatusOnline, op, nil)
		return
	}
	if errors.Is(err, apperrors.ErrMirrorDocumentMissing) {
		_ = s.handles.Clear(context.Background())
		s.mu.Lock()
		s.handle = domain.Handle{}
		s.lastErr = err
		s.mu.Unlock()
		s.transition(domain.StatusOffline, op, err)
		return
	}
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.transition(domain.StatusOnline, op, err)
}

func (s *MirrorService) fullResync(ctx context.Context, handle domain.Handle) error {
	if err := s.rewriteActivities(ctx, handle); err != nil {
		return err
	}
	sessions, err := s.source.Sessions(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(sessions))
	for _, session := range sessions {
		rows = append(rows, session.Row())
	}
	if err := s.docs.ReplaceRows(ctx, handle.DocumentID, domain.SheetSessions, rows); err != nil {
		return err
	}
	return s.docs.ReplaceRows(ctx, handle.DocumentID, domain.SheetMetadata, domain.MetadataRows(s.clock.Now()))
}

func (s *MirrorService) rewriteActivities(ctx context.Context, handle domain.Handle) error {
	activities, err := s.source.Activities(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(activities))
	for _, activity := range activities {
		rows = append(rows, activity.Row())
	}
	return s.docs.ReplaceRows(ctx, handle.DocumentID, domain.SheetActivities, rows)
}

func (s *MirrorService) transition(status domain.SyncStatus, op string, err error) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
	event := domain.StatusEvent{Status: status, Op: op, Err: err, At: s.clock.Now()}
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sub := range s.subs {
		select {
		case sub <- event:
		default:
		}
	}
}
