package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"markestedt/dictbar/hotkey"
)

// Well-known keys in the defaults table.
const (
	KeyHotkey             = "hotkey"
	KeySelectedDictionary = "selected_dictionary"
)

// ErrNotSet is returned by GetDefault for a missing or unreadable value.
var ErrNotSet = errors.New("default not set")

// SetDefault stores v as JSON under key, replacing any previous value.
func (db *DB) SetDefault(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode default %q: %w", key, err)
	}

	query := `
		INSERT INTO defaults (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.conn.Exec(query, key, string(data)); err != nil {
		return fmt.Errorf("failed to save default %q: %w", key, err)
	}
	return nil
}

// GetDefault decodes the value stored under key into v.
// A corrupt value is reported as ErrNotSet so callers fall back to defaults.
func (db *DB) GetDefault(key string, v any) error {
	var raw string
	err := db.conn.QueryRow("SELECT value FROM defaults WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotSet
	}
	if err != nil {
		return fmt.Errorf("failed to read default %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		slog.Warn("Ignoring corrupt default", "key", key, "error", err)
		return ErrNotSet
	}
	return nil
}

// DeleteDefault removes key. Removing a missing key is not an error.
func (db *DB) DeleteDefault(key string) error {
	if _, err := db.conn.Exec("DELETE FROM defaults WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete default %q: %w", key, err)
	}
	return nil
}

// LoadHotkey returns the persisted shortcut record, or nil when none is
// stored. hotkey.FromPersisted(nil) yields the default shortcut.
func (db *DB) LoadHotkey() (hotkey.Record, error) {
	var r hotkey.Record
	err := db.GetDefault(KeyHotkey, &r)
	if errors.Is(err, ErrNotSet) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// SaveHotkey persists a shortcut record.
func (db *DB) SaveHotkey(r hotkey.Record) error {
	return db.SetDefault(KeyHotkey, r)
}

// LoadSelectedDictionary returns the stored dictionary index.
func (db *DB) LoadSelectedDictionary() (int, bool, error) {
	var index int
	err := db.GetDefault(KeySelectedDictionary, &index)
	if errors.Is(err, ErrNotSet) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return index, true, nil
}

// SaveSelectedDictionary persists the dictionary index.
func (db *DB) SaveSelectedDictionary(index int) error {
	return db.SetDefault(KeySelectedDictionary, index)
}
