// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package offqueue

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/srse369/saisongs-sub005/catalog"
)

func TestSQLiteStorageRoundTrip(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	// In-memory SQLite gives each pooled connection its own database.
	db.SetMaxOpenConns(1)

	storage, err := NewSQLiteStorage(db)
	require.NoError(t, err)

	_, found, err := storage.Load(QueueKey)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, storage.Save(QueueKey, `{"version":1,"operations":[]}`))
	value, found, err := storage.Load(QueueKey)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `{"version":1,"operations":[]}`, value)

	// Upsert replaces the snapshot wholesale.
	require.NoError(t, storage.Save(QueueKey, `{"version":1,"operations":null}`))
	value, _, err = storage.Load(QueueKey)
	require.NoError(t, err)
	require.Equal(t, `{"version":1,"operations":null}`, value)
}

func TestOpenSQLiteStoragePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.db")

	storage, db, err := OpenSQLiteStorage(path)
	require.NoError(t, err)
	store := NewQueueStore(storage, nil)
	id := store.Enqueue(CreateSong(catalog.SongFields{Title: "durable"}))
	require.NoError(t, db.Close())

	storage2, db2, err := OpenSQLiteStorage(path)
	require.NoError(t, err)
	defer db2.Close()
	store2 := NewQueueStore(storage2, nil)
	ops := store2.List()
	require.Len(t, ops, 1)
	require.Equal(t, id, ops[0].ID)
	require.Equal(t, "durable", ops[0].Song.Title)
}
