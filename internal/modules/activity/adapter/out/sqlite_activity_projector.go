package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"tally/internal/modules/activity/domain"
	activityout "tally/internal/modules/activity/port/out"
	"tally/internal/platform/timeutil"

	_ "modernc.org/sqlite"
)

type SQLiteActivityProjector struct {
	db *sql.DB
}

func NewSQLiteActivityProjector(dbPath string) (activityout.ActivityProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLiteActivityProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return projector, nil
}

func (s *SQLiteActivityProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS activities (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  color TEXT NOT NULL,
  total_minutes INTEGER NOT NULL,
  created_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create activities table: %w", err)
	}
	return nil
}

func (s *SQLiteActivityProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM activities`); err != nil {
		return fmt.Errorf("reset activities: %w", err)
	}
	return nil
}

func (s *SQLiteActivityProjector) UpsertActivity(ctx context.Context, activity domain.Activity) error {
	const stmt = `
INSERT INTO activities (id, name, color, total_minutes, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  name=excluded.name,
  color=excluded.color,
  total_minutes=excluded.total_minutes,
  created_at=excluded.created_at;
`
	_, err := s.db.ExecContext(ctx, stmt,
		activity.ID,
		activity.Name,
		activity.Color,
		activity.TotalMinutes,
		timeutil.FormatStamp(activity.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert activity: %w", err)
	}
	return nil
}

func (s *SQLiteActivityProjector) DeleteActivity(ctx context.Context, activityID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, activityID); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}
