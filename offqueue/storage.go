// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package offqueue

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Storage is the durable key/value backend the queue persists its serialized
// snapshot into. Load returns found=false when the key has never been
// written.
type Storage interface {
	Load(key string) (value string, found bool, err error)
	Save(key, value string) error
}

// MemoryStorage is a Storage backed by a plain map, used in tests and as a
// fallback when no durable backend is available.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string

	// FailSaves makes every Save return an error, for exercising the
	// persistence-failure path in tests.
	FailSaves bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Load(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStorage) Save(key, value string) error {
	if s.FailSaves {
		return errors.New("memory storage: saves disabled")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// SQLiteStorage persists queue snapshots in a single-purpose KV table inside
// the app's SQLite database.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage prepares the backing table on the given database handle.
func NewSQLiteStorage(db *sql.DB) (*SQLiteStorage, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS _offline_queue (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create offline queue table: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// OpenSQLiteStorage opens (or creates) a SQLite database at path with the
// pragmas the client uses elsewhere, and prepares the queue table on it.
func OpenSQLiteStorage(path string) (*SQLiteStorage, *sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	storage, err := NewSQLiteStorage(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return storage, db, nil
}

func (s *SQLiteStorage) Load(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM _offline_queue WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load queue blob: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteStorage) Save(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO _offline_queue (key, value, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to save queue blob: %w", err)
	}
	return nil
}
