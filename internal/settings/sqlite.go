package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLiteStore keeps settings as JSON documents in a SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the settings database and applies migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		id TEXT PRIMARY KEY,
		version TEXT NOT NULL,
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context, id string, defaults Settings) (Settings, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM settings WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return defaults, nil
	}
	if err != nil {
		return Settings{}, err
	}

	var stored Settings
	if err := json.Unmarshal([]byte(payload), &stored); err != nil {
		return Settings{}, fmt.Errorf("decoding stored settings: %w", err)
	}
	return stored, nil
}

func (s *SQLiteStore) Save(ctx context.Context, id string, st Settings) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (id, version, payload, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET version = excluded.version, payload = excluded.payload, updated_at = excluded.updated_at`,
		id, st.Version, string(payload), time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}
