package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store manages the local call-history log backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Call is one recorded remote invocation.
type Call struct {
	ID        string
	Method    string
	OK        bool
	Error     string
	Profile   string
	Duration  time.Duration
	CreatedAt time.Time
}

// Stats aggregates recorded outcomes.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) applyMigrations(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS call_history (
        id TEXT PRIMARY KEY,
        method TEXT NOT NULL,
        ok INTEGER NOT NULL,
        error TEXT NOT NULL DEFAULT '',
        profile TEXT NOT NULL DEFAULT '',
        duration_ms REAL NOT NULL,
        created_at TEXT NOT NULL
    )`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create call_history table: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Record appends one call to the log. Safe to invoke on a nil store.
func (s *Store) Record(ctx context.Context, call Call) error {
	if s == nil || s.db == nil {
		return nil
	}
	if call.ID == "" {
		call.ID = uuid.NewString()
	}
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO call_history (id, method, ok, error, profile, duration_ms, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		call.ID,
		call.Method,
		boolToInt(call.OK),
		call.Error,
		call.Profile,
		float64(call.Duration)/float64(time.Millisecond),
		call.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record call %s: %w", call.Method, err)
	}
	return nil
}

// List returns the most recent calls, newest first. A non-positive limit
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Call, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := `SELECT id, method, ok, error, profile, duration_ms, created_at
              FROM call_history ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list call history: %w", err)
	}
	defer rows.Close()

	var calls []Call
	for rows.Next() {
		var (
			call       Call
			ok         int
			durationMS float64
			createdAt  string
		)
		if err := rows.Scan(&call.ID, &call.Method, &ok, &call.Error, &call.Profile, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan call row: %w", err)
		}
		call.OK = ok != 0
		call.Duration = time.Duration(durationMS * float64(time.Millisecond))
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			call.CreatedAt = parsed
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}

// CallStats aggregates recorded outcomes.
func (s *Store) CallStats(ctx context.Context) (Stats, error) {
	if s == nil || s.db == nil {
		return Stats{}, nil
	}
	var stats Stats
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(ok), 0) FROM call_history`)
	if err := row.Scan(&stats.Total, &stats.Succeeded); err != nil {
		return Stats{}, fmt.Errorf("aggregate call history: %w", err)
	}
	stats.Failed = stats.Total - stats.Succeeded
	return stats, nil
}

// Clear removes every recorded call and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM call_history`)
	if err != nil {
		return 0, fmt.Errorf("clear call history: %w", err)
	}
	return res.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
