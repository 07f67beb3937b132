// Package persistence provides SQLite-backed save slots. Each slot
// holds one full serialized session; writing a slot replaces it.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/chronotrade/internal/game"
)

// ErrNoSave is returned when a slot has never been written.
var ErrNoSave = errors.New("no save in slot")

// DB wraps a SQLite connection for session storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		slot TEXT PRIMARY KEY,
		save_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		state TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveInfo describes one occupied slot.
type SaveInfo struct {
	Slot      string    `db:"slot" json:"slot"`
	SaveID    string    `db:"save_id" json:"save_id"`
	CreatedAt time.Time `db:"-" json:"created_at"`

	CreatedRaw string `db:"created_at" json:"-"`
}

// Save writes a session into a slot, replacing any previous save there.
func (db *DB) Save(slot string, state game.SavedState) (SaveInfo, error) {
	blob, err := json.Marshal(state)
	if err != nil {
		return SaveInfo{}, fmt.Errorf("marshal state: %w", err)
	}

	info := SaveInfo{
		Slot:      slot,
		SaveID:    uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	_, err = db.conn.Exec(
		"INSERT OR REPLACE INTO saves (slot, save_id, created_at, state) VALUES (?, ?, ?, ?)",
		info.Slot, info.SaveID, info.CreatedAt.Format(time.RFC3339), string(blob),
	)
	if err != nil {
		return SaveInfo{}, fmt.Errorf("write slot %s: %w", slot, err)
	}

	slog.Info("session saved", "slot", slot, "save_id", info.SaveID)
	return info, nil
}

// Load reads the raw state blob from a slot. The caller feeds it to
// the game engine's import, which validates it.
func (db *DB) Load(slot string) ([]byte, error) {
	var blob string
	err := db.conn.Get(&blob, "SELECT state FROM saves WHERE slot = ?", slot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNoSave, slot)
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", slot, err)
	}
	return []byte(blob), nil
}

// ListSaves returns every occupied slot, most recent first.
func (db *DB) ListSaves() ([]SaveInfo, error) {
	var rows []SaveInfo
	err := db.conn.Select(&rows,
		"SELECT slot, save_id, created_at FROM saves ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if t, err := time.Parse(time.RFC3339, rows[i].CreatedRaw); err == nil {
			rows[i].CreatedAt = t
		}
	}
	return rows, nil
}

// DeleteSave clears a slot. Deleting an empty slot is not an error.
func (db *DB) DeleteSave(slot string) error {
	_, err := db.conn.Exec("DELETE FROM saves WHERE slot = ?", slot)
	return err
}

// SetMeta stores a key-value pair (schema version, last seed).
func (db *DB) SetMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
