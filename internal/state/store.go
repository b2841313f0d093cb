// Package state persists host-wide values across runs in an embedded SQLite
// database.
//
// It plays the part of an editor's global state: whether stamping is enabled
// and which release last ran. Values are stored as text in a single kv table.
//
// The database uses WAL mode so the watch daemon and one-shot CLI commands can
// read and write concurrently.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/spf13/cast"
)

// Keys used by the application.
const (
	KeyEnabled     = "fileAutoComment.enabled"
	KeyLastVersion = "fileAutoComment.lastVersion"
)

// Store wraps the SQLite connection.
type Store struct {
	conn *sql.DB
	path string
}

// DefaultPath returns the state database location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "autocomment", "state.db"), nil
}

// Open opens (creating if needed) the database at path and initializes the
// schema. The caller must call Close.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}

	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{conn: conn, path: path}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := s.conn.Exec(pragma); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := s.InitSchema(context.Background()); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close checkpoints the WAL and closes the connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close state database: %w", err)
	}

	s.conn = nil
	return nil
}

// InitSchema creates the kv table. It is idempotent.
func (s *Store) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Get returns the value stored under key. found is false if key is unset.
func (s *Store) Get(ctx context.Context, key string) (value string, found bool, err error) {
	err = s.conn.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at
	`
	if _, err := s.conn.ExecContext(ctx, query, key, value, now()); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Enabled reports whether stamping is switched on. Stamping starts disabled;
// an unreadable stored value also counts as disabled.
func (s *Store) Enabled(ctx context.Context) (bool, error) {
	value, found, err := s.Get(ctx, KeyEnabled)
	if err != nil || !found {
		return false, err
	}
	enabled, err := cast.ToBoolE(value)
	if err != nil {
		return false, nil
	}
	return enabled, nil
}

// SetEnabled persists the enabled flag.
func (s *Store) SetEnabled(ctx context.Context, enabled bool) error {
	return s.Set(ctx, KeyEnabled, cast.ToString(enabled))
}

// Toggle flips the enabled flag in a single statement and returns the new
// value. A missing flag counts as disabled, so the first toggle enables.
func (s *Store) Toggle(ctx context.Context) (bool, error) {
	query := `
	INSERT INTO kv (key, value, updated_at) VALUES (?, 'true', ?)
	ON CONFLICT(key) DO UPDATE SET
		value = CASE WHEN kv.value = 'true' THEN 'false' ELSE 'true' END,
		updated_at = excluded.updated_at
	RETURNING value
	`
	var value string
	if err := s.conn.QueryRowContext(ctx, query, KeyEnabled, now()).Scan(&value); err != nil {
		return false, fmt.Errorf("failed to toggle enabled flag: %w", err)
	}
	return value == "true", nil
}

// LastVersion returns the release recorded by the last run, or "".
func (s *Store) LastVersion(ctx context.Context) (string, error) {
	value, _, err := s.Get(ctx, KeyLastVersion)
	return value, err
}

// SetLastVersion records the running release.
func (s *Store) SetLastVersion(ctx context.Context, version string) error {
	return s.Set(ctx, KeyLastVersion, version)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
