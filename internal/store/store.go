// Package store persists settings, table view preferences, saved views and
// the list of recently opened data files in a single SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	trackerrors "github.com/bekirdag/jobtracker/internal/errors"
	"github.com/bekirdag/jobtracker/internal/logger"
	"github.com/bekirdag/jobtracker/internal/settings"
	"github.com/bekirdag/jobtracker/internal/tableview"
)

// Store is safe for concurrent use. A nil *Store behaves as an empty store
// that accepts and drops writes.
type Store struct {
	db   *sql.DB
	path string
	log  *slog.Logger
	now  func() time.Time

	mu      sync.Mutex
	current *settings.Settings
}

// Open opens or creates the database at path and loads the settings
// snapshot.
func Open(path string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, trackerrors.NewLoadError("create store directory", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, trackerrors.NewLoadError("open store", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &Store{db: db, path: path, log: logger.OrDiscard(log), now: time.Now}
	cur, err := s.loadSettings()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.current = cur
	return s, nil
}

func migrate(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS view_prefs (
			table_id TEXT PRIMARY KEY,
			prefs TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS views (
			view_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			view_type TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS data_files (
			path TEXT PRIMARY KEY,
			seq INTEGER NOT NULL DEFAULT 0,
			opened_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return trackerrors.NewLoadError("store migration failed", err)
		}
	}
	return nil
}

// Path is the database file.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// loadSettings overlays stored keys on the defaults. A value that does not
// decode only loses its own key.
func (s *Store) loadSettings() (*settings.Settings, error) {
	base, err := json.Marshal(settings.Defaults())
	if err != nil {
		return nil, trackerrors.NewInternalError("encode default settings", err)
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &doc); err != nil {
		return nil, trackerrors.NewInternalError("decode default settings", err)
	}
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key ASC`)
	if err != nil {
		return nil, trackerrors.NewLoadError("read settings", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, trackerrors.NewLoadError("scan settings", err)
		}
		if _, known := doc[key]; !known {
			continue
		}
		if err := checkSetting(key, value); err != nil {
			s.log.Warn("skipping unreadable setting", "key", key, "err", err)
			continue
		}
		doc[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.NewLoadError("read settings", err)
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, trackerrors.NewInternalError("encode settings", err)
	}
	out := &settings.Settings{}
	if err := json.Unmarshal(merged, out); err != nil {
		return nil, trackerrors.NewLoadError("decode settings", err)
	}
	return out, nil
}

func checkSetting(key, value string) error {
	if !json.Valid([]byte(value)) {
		return fmt.Errorf("value of %q is not JSON", key)
	}
	doc, err := json.Marshal(map[string]json.RawMessage{key: json.RawMessage(value)})
	if err != nil {
		return err
	}
	return json.Unmarshal(doc, &settings.Settings{})
}

// Current returns a copy of the latest settings snapshot.
func (s *Store) Current() *settings.Settings {
	if s == nil {
		return settings.Defaults()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// SaveSettings writes the fields set in patch in one transaction and returns
// the merged settings.
func (s *Store) SaveSettings(ctx context.Context, patch settings.Patch) (*settings.Settings, error) {
	if s == nil || s.db == nil {
		return nil, trackerrors.New(trackerrors.CategoryPersistence, trackerrors.CodeStoreClosed, "settings store is not open")
	}
	values := patch.Values()
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, trackerrors.NewSaveError("begin settings write", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`)
	if err != nil {
		_ = tx.Rollback()
		return nil, trackerrors.NewSaveError("prepare settings write", err)
	}
	defer stmt.Close()
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			_ = tx.Rollback()
			return nil, trackerrors.NewSaveError(fmt.Sprintf("encode setting %q", key), err)
		}
		if _, err := stmt.ExecContext(ctx, key, string(data)); err != nil {
			_ = tx.Rollback()
			return nil, trackerrors.NewSaveError(fmt.Sprintf("write setting %q", key), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, trackerrors.NewSaveError("commit settings write", err)
	}
	s.current = s.current.Merge(patch)
	s.log.Debug("settings saved", "keys", len(values))
	return s.current.Clone(), nil
}

// ViewPrefs adapts the store to tableview.PreferencesStore.
func (s *Store) ViewPrefs() tableview.PreferencesStore {
	return viewPrefs{s}
}

type viewPrefs struct{ s *Store }

func (v viewPrefs) Load(tableID string) (tableview.Prefs, error) {
	if v.s == nil || v.s.db == nil {
		return tableview.Prefs{}, nil
	}
	var raw string
	err := v.s.db.QueryRow(`SELECT prefs FROM view_prefs WHERE table_id = ?`, tableID).Scan(&raw)
	if err == sql.ErrNoRows {
		return tableview.Prefs{}, nil
	}
	if err != nil {
		return tableview.Prefs{}, trackerrors.NewLoadError("read view preferences", err)
	}
	return tableview.DecodePrefs([]byte(raw))
}

func (v viewPrefs) Save(tableID string, prefs tableview.Prefs) error {
	if v.s == nil || v.s.db == nil {
		return nil
	}
	data, err := prefs.Encode()
	if err != nil {
		return trackerrors.NewSaveError("encode view preferences", err)
	}
	_, err = v.s.db.Exec(`INSERT INTO view_prefs (table_id, prefs, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(table_id) DO UPDATE SET prefs = excluded.prefs, updated_at = excluded.updated_at`, tableID, string(data))
	if err != nil {
		return trackerrors.NewSaveError("write view preferences", err)
	}
	return nil
}

// RememberDataFile records path as the most recently opened data file.
func (s *Store) RememberDataFile(path string) error {
	if s == nil || s.db == nil {
		return nil
	}
	clean := filepath.Clean(strings.TrimSpace(path))
	if clean == "" || clean == "." {
		return nil
	}
	_, err := s.db.Exec(`INSERT INTO data_files (path, seq, opened_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM data_files), CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET seq = excluded.seq, opened_at = excluded.opened_at`, clean)
	if err != nil {
		return trackerrors.NewSaveError("remember data file", err)
	}
	return nil
}

// RecentDataFiles lists remembered data files, most recent first.
func (s *Store) RecentDataFiles(limit int) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`SELECT path FROM data_files ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, trackerrors.NewLoadError("read data files", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, trackerrors.NewLoadError("scan data files", err)
		}
		out = append(out, path)
	}
	if err := rows.Err(); err != nil {
		return nil, trackerrors.NewLoadError("read data files", err)
	}
	return out, nil
}

// ForgetDataFile removes path from the recent list.
func (s *Store) ForgetDataFile(path string) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec(`DELETE FROM data_files WHERE path = ?`, filepath.Clean(strings.TrimSpace(path)))
	if err != nil {
		return trackerrors.NewSaveError("forget data file", err)
	}
	return nil
}
