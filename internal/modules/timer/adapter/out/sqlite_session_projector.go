package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"tally/internal/modules/timer/domain"
	timerout "tally/internal/modules/timer/port/out"
	"tally/internal/platform/timeutil"

	_ "modernc.org/sqlite"
)

type SQLiteSessionProjector struct {
	db *sql.DB
}

func NewSQLiteSessionProjector(dbPath string) (timerout.SessionProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLiteSessionProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return projector, nil
}

func (s *SQLiteSessionProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  activity_id TEXT NOT NULL,
  activity_name TEXT NOT NULL,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  duration_min INTEGER NOT NULL,
  day TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (s *SQLiteSessionProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("reset sessions: %w", err)
	}
	return nil
}

func (s *SQLiteSessionProjector) InsertSession(ctx context.Context, session domain.Session) error {
	const stmt = `
INSERT INTO sessions (id, activity_id, activity_name, started_at, ended_at, duration_min, day)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  activity_id=excluded.activity_id,
  activity_name=excluded.activity_name,
  started_at=excluded.started_at,
  ended_at=excluded.ended_at,
  duration_min=excluded.duration_min,
  day=excluded.day;
`
	_, err := s.db.ExecContext(ctx, stmt,
		session.ID,
		session.ActivityID,
		session.ActivityName,
		timeutil.FormatStamp(session.StartedAt),
		timeutil.FormatStamp(session.EndedAt),
		timeutil.RoundMinutes(session.Duration),
		timeutil.FormatDay(session.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SQLiteSessionProjector) DeleteByActivity(ctx context.Context, activityID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE activity_id = ?`, activityID); err != nil {
		return fmt.Errorf("delete sessions by activity: %w", err)
	}
	return nil
}

func (s *SQLiteSessionProjector) StatsByActivity(ctx context.Context) ([]timerout.ActivityStats, error) {
	const query = `
SELECT activity_id, activity_name, COUNT(*), SUM(duration_min)
FROM sessions
GROUP BY activity_id, activity_name
ORDER BY SUM(duration_min) DESC;
`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query session stats: %w", err)
	}
	defer rows.Close()

	stats := []timerout.ActivityStats{}
	for rows.Next() {
		stat := timerout.ActivityStats{}
		if err := rows.Scan(&stat.ActivityID, &stat.ActivityName, &stat.Sessions, &stat.Minutes); err != nil {
			return nil, fmt.Errorf("scan session stats: %w", err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session stats: %w", err)
	}
	return stats, nil
}
