package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tally/internal/modules/mirror/adapter/out"
	"tally/internal/modules/mirror/domain"
	"tally/internal/modules/mirror/service"
	apperrors "tally/internal/platform/errors"
)

type fakeClock struct {
	values []time.Time
	idx    int
}

func (f *fakeClock) Now() time.Time {
	if f.idx >= len(f.values) {
		return f.values[len(f.values)-1]
	}
	v := f.values[f.idx]
	f.idx++
	return v
}

type fakeSource struct {
	activities []domain.ActivityRecord
	sessions   []domain.SessionRecord
}

func (f *fakeSource) Activities(context.Context) ([]domain.ActivityRecord, error) {
	return f.activities, nil
}

func (f *fakeSource) Activity(_ context.Context, activityID string) (domain.ActivityRecord, error) {
	for _, record := range f.activities {
		if record.ID == activityID {
			return record, nil
		}
	}
	return domain.ActivityRecord{}, fmt.Errorf("%w: activity %s", apperrors.ErrNotFound, activityID)
}

func (f *fakeSource) Sessions(context.Context) ([]domain.SessionRecord, error) {
	return f.sessions, nil
}

func (f *fakeSource) Session(_ context.Context, sessionID string) (domain.SessionRecord, error) {
	for _, record := range f.sessions {
		if record.ID == sessionID {
			return record, nil
		}
	}
	return domain.SessionRecord{}, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, sessionID)
}

// fakeDocumentServer is an in-memory stand-in for the spreadsheet
// document service, speaking the same JSON REST surface.
type fakeDocumentServer struct {
	mu       sync.Mutex
	docs     map[string]*fakeDocument
	nextID   int
	failPuts bool
}

type fakeDocument struct {
	title  string
	sheets map[string][][]string
}

func newFakeDocumentServer() *fakeDocumentServer {
	return &fakeDocumentServer{docs: map[string]*fakeDocument{}}
}

func (s *fakeDocumentServer) createDocument(title string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("doc-%d", s.nextID)
	s.docs[id] = &fakeDocument{title: title, sheets: map[string][][]string{}}
	return id
}

func (s *fakeDocumentServer) deleteDocument(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
}

func (s *fakeDocumentServer) rows(id, sheet string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil
	}
	return doc.sheets[sheet]
}

func (s *fakeDocumentServer) setFailPuts(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPuts = fail
}

func (s *fakeDocumentServer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

func (s *fakeDocumentServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/documents", func(w http.ResponseWriter, r *http.Request) {
		title := r.URL.Query().Get("title")
		s.mu.Lock()
		defer s.mu.Unlock()
		list := struct {
			Documents []map[string]string `json:"documents"`
		}{Documents: []map[string]string{}}
		for id, doc := range s.docs {
			if title == "" || doc.title == title {
				list.Documents = append(list.Documents, map[string]string{"id": id, "title": doc.title})
			}
		}
		json.NewEncoder(w).Encode(list)
	})
	mux.HandleFunc("POST /v1/documents", func(w http.ResponseWriter, r *http.Request) {
		request := struct {
			Title string `json:"title"`
		}{}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		id := s.createDocument(request.Title)
		json.NewEncoder(w).Encode(map[string]string{"id": id, "title": request.Title})
	})
	mux.HandleFunc("GET /v1/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		doc, ok := s.docs[r.PathValue("id")]
		s.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": r.PathValue("id"), "title": doc.title})
	})
	mux.HandleFunc("POST /v1/documents/{id}/sheets/{sheet}/rows:append", func(w http.ResponseWriter, r *http.Request) {
		payload := struct {
			Rows [][]string `json:"rows"`
		}{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		doc, ok := s.docs[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		sheet := r.PathValue("sheet")
		doc.sheets[sheet] = append(doc.sheets[sheet], payload.Rows...)
	})
	mux.HandleFunc("PUT /v1/documents/{id}/sheets/{sheet}/rows", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		fail := s.failPuts
		s.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		payload := struct {
			Rows [][]string `json:"rows"`
		}{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		doc, ok := s.docs[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		doc.sheets[r.PathValue("sheet")] = payload.Rows
	})
	return mux
}

func newMirror(t *testing.T, endpoint, dir string, source *fakeSource) *service.MirrorService {
	t.Helper()
	clk := &fakeClock{values: []time.Time{time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)}}
	return service.NewMirrorService(
		clk,
		out.NewHTTPDocumentClient(endpoint, out.NewOAuthCredentialSource("")),
		out.NewFileHandleStore(dir),
		source,
		"",
	)
}

func defaultSource() *fakeSource {
	return &fakeSource{
		activities: []domain.ActivityRecord{
			{ID: "act-1", Name: "Work", Color: "#4ECDC4", TotalMinutes: 120, CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
			{ID: "act-2", Name: "Study", Color: "#FF6B6B", CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		},
		sessions: []domain.SessionRecord{},
	}
}

func TestConnectSearchesThenCreatesAndResyncs(t *testing.T) {
	t.Parallel()
	docs := newFakeDocumentServer()
	server := httptest.NewServer(docs.handler())
	defer server.Close()
	dir := t.TempDir()

	svc := newMirror(t, server.URL, dir, defaultSource())
	events, cancel := svc.Subscribe()
	defer cancel()

	handle, err := svc.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if handle.Empty() {
		t.Fatalf("expected handle after connect")
	}
	if docs.count() != 1 {
		t.Fatalf("expected exactly one document, got %d", docs.count())
	}

	status, gotHandle, lastSync, lastErr := svc.Status()
	if status != domain.StatusOnline || gotHandle != handle || lastSync.IsZero() || lastErr != nil {
		t.Fatalf("unexpected status after connect: %v %+v %v %v", status, gotHandle, lastSync, lastErr)
	}

	activityRows := docs.rows(handle.DocumentID, domain.SheetActivities)
	if len(activityRows) != 2 || activityRows[0][1] != "Work" || activityRows[0][3] != "120" {
		t.Fatalf("unexpected activity rows %v", activityRows)
	}
	metadataRows := docs.rows(handle.DocumentID, domain.SheetMetadata)
	if len(metadataRows) != 2 || metadataRows[0][0] != "Last Sync" {
		t.Fatalf("unexpected metadata rows %v", metadataRows)
	}

	stored, err := out.NewFileHandleStore(dir).Load(context.Background())
	if err != nil || stored != handle {
		t.Fatalf("expected handle persisted, got %+v (%v)", stored, err)
	}

	want := []domain.SyncStatus{domain.StatusConnecting, domain.StatusSyncing, domain.StatusOnline}
	for _, expected := range want {
		event := <-events
		if event.Status != expected {
			t.Fatalf("expected transition to %v, got %+v", expected, event)
		}
	}
}

func TestConnectReusesExistingDocumentByTitle(t *testing.T) {
	t.Parallel()
	docs := newFakeDocumentServer()
	existing := docs.createDocument(domain.DefaultDocumentTitle)
	server := httptest.NewServer(docs.handler())
	defer server.Close()

	svc := newMirror(t, server.URL, t.TempDir(), defaultSource())
	handle, err := svc.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if handle.DocumentID != existing {
		t.Fatalf("expected search to find %s, got %s", existing, handle.DocumentID)
	}
	if docs.count() != 1 {
		t.Fatalf("connect must not create a second document, got %d", docs.count())
	}
}

func TestConnectReusesStoredReachableHandle(t *testing.T) {
	t.Parallel()
	docs := newFakeDocumentServer()
	existing := docs.createDocument("renamed by the user")
	server := httptest.NewServer(docs.handler())
	defer server.Close()
	dir := t.TempDir()

	handles := out.NewFileHandleStore(dir)
	if err := handles.Save(context.Background(), domain.Handle{DocumentID: existing}); err != nil {
		t.Fatalf("save handle: %v", err)
	}

	svc := newMirror(t, server.URL, dir, defaultSource())
	if status, _, _, _ := svc.Status(); status != domain.StatusOnline {
		t.Fatalf("expected persisted handle to resume connected, got %v", status)
	}

	handle, err := svc.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if handle.DocumentID != existing {
		t.Fatalf("expected stored document reused even when retitled, got %s", handle.DocumentID)
	}
	if docs.count() != 1 {
		t.Fatalf("expected no new document, got %d", docs.count())
	}
}

type failingHandleStore struct{}

func (failingHandleStore) Load(context.Context) (domain.Handle, error) {
	return domain.Handle{}, fmt.Errorf("%w: handle slot unreadable", apperrors.ErrStorageUnavailable)
}

func (failingHandleStore) Save(context.Context, domain.Handle) error { return nil }

func (failingHandleStore) Clear(context.Context) error { return nil }

func TestConnectAbortsWhenHandleStoreFails(t *testing.T) {
	t.Parallel()
	docs := newFakeDocumentServer()
	server := httptest.NewServer(docs.handler())
	defer server.Close()

	clk := &fakeClock{values: []time.Time{time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)}}
	svc := service.NewMirrorService(
		clk,
		out.NewHTTPDocumentClient(server.URL, out.NewOAuthCredentialSource("")),
		failingHandleStore{},
		defaultSource(),
		"",
	)
	if _, err := svc.Connect(context.Background()); !errors.Is(err, apperrors.ErrStorageUnavailable) {
		t.Fatalf("expected connect aborted on storage failure, got %v", err)
	}
	if status, _, _, _ := svc.Status(); status != domain.StatusOffline {
		t.Fatalf("expected offline after aborted connect, got %v", status)
	}
	if docs.count() != 0 {
		t.Fatalf("an aborted connect must not create a document, got %d", docs.count())
	}
}

func TestMissingDocumentDropsHandle(t *testing.T) {
	t.Parallel()
	docs := newFakeDocumentServer()
	server := httptest.NewServer(docs.handler())
	defer server.Close()
	dir := t.TempDir()

	svc := newMirror(t, server.URL, dir, defaultSource())
	handle, err := svc.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	docs.deleteDocument(handle.DocumentID)
	if err := svc.SyncNow(context.Background()); !errors.Is(err, apperrors.ErrMirrorDocumentMissing) {
		t.Fatalf("expected missing document error, got %v", err)
	}
	if status, gotHandle, _, _ := svc.Status(); status != domain.StatusOffline || !gotHandle.Empty() {
		t.Fatalf("expected offline with dropped handle, got %v %+v", status, gotHandle)
	}
	stored, err := out.NewFileHandleStore(dir).Load(context.Background())
	if err != nil || !stored.Empty() {
		t.Fatalf("expected persisted handle cleared, got %+v (%v)", stored, err)
	}
}

func TestSyncFailureKeepsConnection(t *testing.T) {
	t.Parallel()
	docs := newFakeDocumentServer()
	server := httptest.NewServer(docs.handler())
	defer server.Close()

	svc := newMirror(t, server.URL, t.TempDir(), defaultSource())
	handle, err := svc.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	docs.setFailPuts(true)
	if err := svc.SyncNow(context.Background()); !errors.Is(err, apperrors.ErrMirrorUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	status, gotHandle, _, lastErr := svc.Status()
	if status != domain.StatusOnline || gotHandle != handle || lastErr == nil {
		t.Fatalf("a failed sync must not drop the connection: %v %+v %v", status, gotHandle, lastErr)
	}
}

func TestSessionCompletedAppendsRowAndRewritesTotals(t *testing.T) {
	t.Parallel()
	docs := newFakeDocumentServer()
	server := httptest.NewServer(docs.handler())
	defer server.Close()

	source := defaultSource()
	svc := newMirror(t, server.URL, t.TempDir(), source)
	handle, err := svc.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	source.sessions = append(source.sessions, domain.SessionRecord{
		ID:           "sess-1",
		ActivityID:   "act-1",
		ActivityName: "Work",
		StartedAt:    time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
		EndedAt:      time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC),
		Minutes:      30,
	})
	source.activities[0].TotalMinutes = 150

	svc.SessionCompleted("sess-1")
	svc.Wait()

	sessionRows := docs.rows(handle.DocumentID, domain.SheetSessions)
	if len(sessionRows) != 1 || sessionRows[0][0] != "sess-1" || sessionRows[0][5] != "30" {
		t.Fatalf("unexpected session rows %v", sessionRows)
	}
	activityRows := docs.rows(handle.DocumentID, domain.SheetActivities)
	if len(activityRows) != 2 || activityRows[0][3] != "150" {
		t.Fatalf("expected activity totals rewritten, got %v", activityRows)
	}

	svc.ActivityCreated("act-2")
	svc.Wait()
	if rows := docs.rows(handle.DocumentID, domain.SheetActivities); len(rows) != 3 {
		t.Fatalf("expected created activity appended, got %v", rows)
	}
}

func TestBulkChangedRewritesEverythingAfterCascade(t *testing.T) {
	t.Parallel()
	docs := newFakeDocumentServer()
	server := httptest.NewServer(docs.handler())
	defer server.Close()

	source := defaultSource()
	source.sessions = []domain.SessionRecord{
		{ID: "sess-1", ActivityID: "act-1", ActivityName: "Work", StartedAt: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), EndedAt: time.Date(2026, 3, 3, 9, 30, 0, 0, time.UTC), Minutes: 30},
		{ID: "sess-2", ActivityID: "act-2", ActivityName: "Study", StartedAt: time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), EndedAt: time.Date(2026, 3, 3, 10, 15, 0, 0, time.UTC), Minutes: 15},
	}
	svc := newMirror(t, server.URL, t.TempDir(), source)
	handle, err := svc.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if rows := docs.rows(handle.DocumentID, domain.SheetSessions); len(rows) != 2 {
		t.Fatalf("expected both sessions mirrored, got %v", rows)
	}

	// A delete cascade drops act-1 and its sessions locally, then fires
	// the bulk trigger.
	source.activities = source.activities[1:]
	source.sessions = source.sessions[1:]
	svc.BulkChanged()
	svc.Wait()

	sessionRows := docs.rows(handle.DocumentID, domain.SheetSessions)
	if len(sessionRows) != 1 {
		t.Fatalf("expected resync to drop the cascaded session, got %v", sessionRows)
	}
	for _, row := range sessionRows {
		if row[1] == "act-1" {
			t.Fatalf("cascaded activity still referenced: %v", row)
		}
	}
	activityRows := docs.rows(handle.DocumentID, domain.SheetActivities)
	if len(activityRows) != 1 || activityRows[0][0] != "act-2" {
		t.Fatalf("expected only the surviving activity, got %v", activityRows)
	}
	if status, _, _, lastErr := svc.Status(); status != domain.StatusOnline || lastErr != nil {
		t.Fatalf("expected clean online status after resync, got %v %v", status, lastErr)
	}
}
