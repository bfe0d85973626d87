// Package store provides the SQLite-backed record store that is the single
// source of truth on a device.
//
// Collections are persisted the way the source system persisted them:
// each collection is one JSON array blob, replaced wholesale on every save.
// There are no per-record writes. Small scalar settings (initialized flag,
// bridge endpoints, last-sync timestamp) live in a separate table.
//
// The database runs in embedded mode with WAL so that a second local
// process sharing the same file can read concurrently.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vcpc/helpdesk/internal/model"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Settings keys. Logical names, persisted as rows in the settings table.
const (
	SettingInitialized = "initialized"
	SettingSheetURL    = "sheet_url"
	SettingRestURL     = "rest_url"
	SettingStaticURL   = "static_url"
	SettingLastSync    = "last_sync"
)

// MaxLogEntries caps the system log; the oldest entry is evicted on insert.
const MaxLogEntries = 100

// Store wraps the SQLite connection holding the helpdesk collections.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates or opens the store database at the given path.
//
// The parent directory is created if needed and the schema is initialized.
// The caller must Close() the store when done.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping store database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{conn: conn, path: path}

	if _, err := s.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := s.initSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the filesystem path of the database file.
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
		return fmt.Errorf("failed to close store database: %w", err)
	}
	s.conn = nil
	return nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		key TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// readCollection loads a collection blob and decodes it into out.
// A missing row or malformed JSON is treated as an absent collection:
// out is left at its zero value and no error is returned.
func (s *Store) readCollection(ctx context.Context, key model.Collection, out any) error {
	var data string
	err := s.conn.QueryRowContext(ctx,
		"SELECT data FROM collections WHERE key = ?", string(key)).Scan(&data)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read collection %s: %w", key, err)
	}
	// Corrupt blobs degrade to "absent", matching read-corruption policy.
	_ = json.Unmarshal([]byte(data), out)
	return nil
}

// writeCollection replaces a collection blob in a single statement.
func (s *Store) writeCollection(ctx context.Context, key model.Collection, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal collection %s: %w", key, err)
	}
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO collections (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		string(key), string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write collection %s: %w", key, err)
	}
	return nil
}

// Tickets returns the persisted ticket list, or an empty list if absent.
func (s *Store) Tickets(ctx context.Context) ([]model.Ticket, error) {
	var tickets []model.Ticket
	if err := s.readCollection(ctx, model.Tickets, &tickets); err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []model.Ticket{}
	}
	return tickets, nil
}

// SaveTickets replaces the ticket collection wholesale.
func (s *Store) SaveTickets(ctx context.Context, tickets []model.Ticket) error {
	return s.writeCollection(ctx, model.Tickets, tickets)
}

// Users returns the persisted user list, or an empty list if absent.
func (s *Store) Users(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.readCollection(ctx, model.Users, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// SaveUsers replaces the user collection wholesale.
func (s *Store) SaveUsers(ctx context.Context, users []model.User) error {
	return s.writeCollection(ctx, model.Users, users)
}

// Assets returns the persisted asset list, or an empty list if absent.
func (s *Store) Assets(ctx context.Context) ([]model.Asset, error) {
	var assets []model.Asset
	if err := s.readCollection(ctx, model.Assets, &assets); err != nil {
		return nil, err
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	return assets, nil
}

// SaveAssets replaces the asset collection wholesale.
func (s *Store) SaveAssets(ctx context.Context, assets []model.Asset) error {
	return s.writeCollection(ctx, model.Assets, assets)
}

// Logs returns the persisted log list, newest first.
func (s *Store) Logs(ctx context.Context) ([]model.SystemLog, error) {
	var logs []model.SystemLog
	if err := s.readCollection(ctx, model.Logs, &logs); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []model.SystemLog{}
	}
	return logs, nil
}

// SaveLogs replaces the log collection wholesale.
func (s *Store) SaveLogs(ctx context.Context, logs []model.SystemLog) error {
	return s.writeCollection(ctx, model.Logs, logs)
}

// AppendLog prepends an entry to the system log, evicting beyond the cap.
func (s *Store) AppendLog(ctx context.Context, entry model.SystemLog) error {
	logs, err := s.Logs(ctx)
	if err != nil {
		return err
	}
	logs = append([]model.SystemLog{entry}, logs...)
	if len(logs) > MaxLogEntries {
		logs = logs[:MaxLogEntries]
	}
	return s.SaveLogs(ctx, logs)
}

// Setting returns a settings value, or "" if unset.
func (s *Store) Setting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.conn.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting stores a settings value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// IsInitialized reports whether the store has ever been seeded or imported.
func (s *Store) IsInitialized(ctx context.Context) (bool, error) {
	v, err := s.Setting(ctx, SettingInitialized)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// SetInitialized marks the store as initialized.
func (s *Store) SetInitialized(ctx context.Context) error {
	return s.SetSetting(ctx, SettingInitialized, "true")
}

// LastSync returns the timestamp of the last successful remote pull,
// or the zero time if no pull has succeeded yet.
func (s *Store) LastSync(ctx context.Context) (time.Time, error) {
	v, err := s.Setting(ctx, SettingLastSync)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, nil
	}
	return t, nil
}

// SetLastSync records a successful remote pull.
func (s *Store) SetLastSync(ctx context.Context, t time.Time) error {
	return s.SetSetting(ctx, SettingLastSync, t.UTC().Format(time.RFC3339))
}

// Export bundles all four collections into a snapshot.
func (s *Store) Export(ctx context.Context) (*model.Snapshot, error) {
	tickets, err := s.Tickets(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	assets, err := s.Assets(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := s.Logs(ctx)
	if err != nil {
		return nil, err
	}
	return &model.Snapshot{Tickets: tickets, Users: users, Assets: assets, Logs: logs}, nil
}

// Import overwrites local collections with those present in the snapshot.
// Nil collections are skipped: an absent key is not an empty-array intent.
// The store is marked initialized after a successful import.
func (s *Store) Import(ctx context.Context, snap *model.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	if snap.Tickets != nil {
		if err := s.SaveTickets(ctx, snap.Tickets); err != nil {
			return err
		}
	}
	if snap.Users != nil {
		if err := s.SaveUsers(ctx, snap.Users); err != nil {
			return err
		}
	}
	if snap.Assets != nil {
		if err := s.SaveAssets(ctx, snap.Assets); err != nil {
			return err
		}
	}
	if snap.Logs != nil {
		if err := s.SaveLogs(ctx, snap.Logs); err != nil {
			return err
		}
	}
	return s.SetInitialized(ctx)
}

// Size returns the total byte size of the stored collection blobs.
func (s *Store) Size(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := s.conn.QueryRowContext(ctx,
		"SELECT SUM(LENGTH(data)) FROM collections").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to compute store size: %w", err)
	}
	return total.Int64, nil
}

// Clear removes every collection and setting. The next startup runs the
// full initialization sequence again.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM collections"); err != nil {
		return fmt.Errorf("failed to clear collections: %w", err)
	}
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM settings"); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	return nil
}
