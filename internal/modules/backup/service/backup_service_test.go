package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	activityoutadapter "tally/internal/modules/activity/adapter/out"
	backupdomain "tally/internal/modules/backup/domain"
	"tally/internal/modules/backup/service"
	timeroutadapter "tally/internal/modules/timer/adapter/out"
	timerdomain "tally/internal/modules/timer/domain"
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

type seqID struct{ n int }

func (s *seqID) New() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func newBackup(t *testing.T, dir string, clk *fakeClock) (*service.BackupService, func(context.Context) (int, int)) {
	t.Helper()
	ids := &seqID{}
	activityStore := activityoutadapter.NewFileActivityStore(dir, clk, ids)
	activityProjector, err := activityoutadapter.NewSQLiteActivityProjector(filepath.Join(dir, "tally.db"))
	if err != nil {
		t.Fatalf("new activity projector: %v", err)
	}
	sessionStore := timeroutadapter.NewFileSessionStore(dir)
	sessionProjector, err := timeroutadapter.NewSQLiteSessionProjector(filepath.Join(dir, "tally.db"))
	if err != nil {
		t.Fatalf("new session projector: %v", err)
	}
	activeStore := timeroutadapter.NewFileCurrentSessionStore(dir)

	svc := service.NewBackupService(clk, activityStore, activityProjector, sessionStore, sessionProjector, activeStore)
	counts := func(ctx context.Context) (int, int) {
		activities, err := activityStore.Load(ctx)
		if err != nil {
			t.Fatalf("load activities: %v", err)
		}
		sessions, err := sessionStore.Load(ctx)
		if err != nil {
			t.Fatalf("load sessions: %v", err)
		}
		return len(activities), len(sessions)
	}

	// Seed defaults and one finished session so the snapshot has data.
	if _, err := activityStore.Load(context.Background()); err != nil {
		t.Fatalf("seed activities: %v", err)
	}
	session := timerdomain.Session{
		ID:           "sess-1",
		ActivityID:   "id-1",
		ActivityName: "Work",
		StartedAt:    time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC),
		EndedAt:      time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC),
		Duration:     30 * time.Minute,
	}
	if err := sessionStore.Append(context.Background(), session); err != nil {
		t.Fatalf("append session: %v", err)
	}
	return svc, counts
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	clk := &fakeClock{values: []time.Time{time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)}}
	svc, counts := newBackup(t, dir, clk)
	path := filepath.Join(dir, "tally-backup.json")

	exported, err := svc.Export(context.Background(), path)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(exported.Activities) != 3 || len(exported.Sessions) != 1 {
		t.Fatalf("unexpected snapshot %d/%d", len(exported.Activities), len(exported.Sessions))
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot file: %v", err)
	}
	onDisk := backupdomain.Snapshot{}
	if err := json.Unmarshal(payload, &onDisk); err != nil {
		t.Fatalf("decode snapshot file: %v", err)
	}
	if onDisk.ExportDate == "" || onDisk.Sessions[0].EndTime == 0 {
		t.Fatalf("snapshot missing timestamps: %+v", onDisk)
	}

	if err := svc.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}

	imported, err := svc.Import(context.Background(), path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(imported.Activities) != 3 || len(imported.Sessions) != 1 {
		t.Fatalf("unexpected imported snapshot %d/%d", len(imported.Activities), len(imported.Sessions))
	}
	gotActivities, gotSessions := counts(context.Background())
	if gotActivities != 3 || gotSessions != 1 {
		t.Fatalf("expected restored records, got %d/%d", gotActivities, gotSessions)
	}
}

func TestImportRejectsMalformedSnapshots(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	clk := &fakeClock{values: []time.Time{time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)}}
	svc, _ := newBackup(t, dir, clk)

	write := func(name string, snapshot backupdomain.Snapshot) string {
		payload, err := json.Marshal(snapshot)
		if err != nil {
			t.Fatalf("encode snapshot: %v", err)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			t.Fatalf("write snapshot: %v", err)
		}
		return path
	}

	duplicates := write("dup.json", backupdomain.Snapshot{Activities: []backupdomain.ActivityRecord{
		{ID: "a-1", Name: "Work", CreatedAt: 1},
		{ID: "a-2", Name: "work", CreatedAt: 1},
	}})
	if _, err := svc.Import(context.Background(), duplicates); !errors.Is(err, apperrors.ErrDuplicateName) {
		t.Fatalf("expected duplicate name rejected, got %v", err)
	}

	inverted := write("inverted.json", backupdomain.Snapshot{Sessions: []backupdomain.SessionRecord{
		{ID: "s-1", StartTime: 2000, EndTime: 1000},
	}})
	if _, err := svc.Import(context.Background(), inverted); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected inverted interval rejected, got %v", err)
	}

	if _, err := svc.Import(context.Background(), filepath.Join(dir, "absent.json")); err == nil {
		t.Fatalf("expected missing file to fail")
	}
}

func TestClearReseedsDefaultsOnNextLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	clk := &fakeClock{values: []time.Time{time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)}}
	svc, counts := newBackup(t, dir, clk)

	if err := svc.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	gotActivities, gotSessions := counts(context.Background())
	if gotActivities != 3 {
		t.Fatalf("expected defaults reseeded on next load, got %d", gotActivities)
	}
	if gotSessions != 0 {
		t.Fatalf("expected empty session log after clear, got %d", gotSessions)
	}
}
