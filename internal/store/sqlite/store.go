// Package sqlite is the default, file-backed record store.
//
// A single open connection serializes writers inside the process and an
// advisory lock file keeps a second copydock process away from the database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/MrSnakeDoc/copydock/internal/domain"
	"github.com/MrSnakeDoc/copydock/internal/store"
)

const timeLayout = time.RFC3339Nano

// Store persists records in a SQLite database file.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

var _ store.Store = (*Store)(nil)

// Open creates (if needed) and opens the database at path, takes the
// process lock and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", store.ErrLocked, path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection: every statement and transaction is serialized.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &Store{db: db, path: path, lock: lock}
	if err := s.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) Kind() string { return "sqlite" }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database and releases the process lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("release lock: %w", unlockErr)
		}
	}
	return err
}

// ─────────────────────────────────────────────────────────────────
// Status checks
// ─────────────────────────────────────────────────────────────────

func (s *Store) AddStatusCheck(ctx context.Context, rec domain.StatusCheck) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO status_checks (id, client_name, timestamp) VALUES (?, ?, ?)`,
		rec.ID, rec.ClientName, formatTime(rec.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("insert status check: %w", err)
	}
	return nil
}

func (s *Store) StatusChecks(ctx context.Context) ([]domain.StatusCheck, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, client_name, timestamp FROM status_checks ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query status checks: %w", err)
	}
	defer rows.Close()

	checks := []domain.StatusCheck{}
	for rows.Next() {
		var (
			rec domain.StatusCheck
			ts  string
		)
		if err := rows.Scan(&rec.ID, &rec.ClientName, &ts); err != nil {
			return nil, fmt.Errorf("scan status check: %w", err)
		}
		if rec.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("status check %s: %w", rec.ID, err)
		}
		checks = append(checks, rec)
	}
	return checks, rows.Err()
}

// ─────────────────────────────────────────────────────────────────
// Web captures
// ─────────────────────────────────────────────────────────────────

func (s *Store) AddWebCapture(ctx context.Context, rec domain.WebCapture) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO web_captures (
            id, selected_text, selected_html, source_domain, source_url,
            target_notebook_id, timestamp, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.SelectedText,
		rec.SelectedHTML,
		rec.SourceDomain,
		rec.SourceURL,
		rec.TargetNotebookID,
		rec.Timestamp,
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert web capture: %w", err)
	}
	return nil
}

func (s *Store) WebCaptures(ctx context.Context, limit int) ([]domain.WebCapture, error) {
	query := `SELECT id, selected_text, selected_html, source_domain, source_url,
            target_notebook_id, timestamp, created_at
        FROM web_captures ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query web captures: %w", err)
	}
	defer rows.Close()

	captures := []domain.WebCapture{}
	for rows.Next() {
		var (
			rec       domain.WebCapture
			createdAt string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.SelectedText,
			&rec.SelectedHTML,
			&rec.SourceDomain,
			&rec.SourceURL,
			&rec.TargetNotebookID,
			&rec.Timestamp,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan web capture: %w", err)
		}
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("web capture %s: %w", rec.ID, err)
		}
		captures = append(captures, rec)
	}
	return captures, rows.Err()
}

func (s *Store) CountWebCaptures(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM web_captures`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count web captures: %w", err)
	}
	return n, nil
}

// ─────────────────────────────────────────────────────────────────
// Notebooks
// ─────────────────────────────────────────────────────────────────

func (s *Store) AddNotebook(ctx context.Context, rec domain.Notebook) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notebooks (id, name, description, created_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(id) DO NOTHING`,
		rec.ID, rec.Name, rec.Description, formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert notebook: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("notebook %s: %w", rec.ID, store.ErrDuplicate)
	}
	return nil
}

func (s *Store) EnsureNotebook(ctx context.Context, rec domain.Notebook) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notebooks (id, name, description, created_at)
         SELECT ?, ?, ?, ? WHERE NOT EXISTS (SELECT 1 FROM notebooks)`,
		rec.ID, rec.Name, rec.Description, formatTime(rec.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("ensure notebook: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *Store) Notebooks(ctx context.Context) ([]domain.Notebook, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM notebooks ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query notebooks: %w", err)
	}
	defer rows.Close()

	notebooks := []domain.Notebook{}
	for rows.Next() {
		var (
			rec       domain.Notebook
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scan notebook: %w", err)
		}
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("notebook %s: %w", rec.ID, err)
		}
		notebooks = append(notebooks, rec)
	}
	return notebooks, rows.Err()
}

// ─────────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────────

func (s *Store) Settings(ctx context.Context) (domain.Settings, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	return scanSettings(rows)
}

// UpdateSettings upserts every key of patch and reads the merged singleton
// back inside the same transaction.
func (s *Store) UpdateSettings(ctx context.Context, patch map[string]string) (domain.Settings, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin settings tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for key, value := range patch {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
             ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		); err != nil {
			return nil, fmt.Errorf("upsert setting %s: %w", key, err)
		}
	}

	rows, err := tx.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	merged, err := scanSettings(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit settings: %w", err)
	}
	return merged, nil
}

func scanSettings(rows *sql.Rows) (domain.Settings, error) {
	defer rows.Close()

	settings := domain.Settings{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return settings, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", v, err)
	}
	return t, nil
}
