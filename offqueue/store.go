// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package offqueue

import (
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// QueueKey is the storage key the serialized queue lives under.
const QueueKey = "saisongs.offline_queue"

// queueBlob is the persisted snapshot format. The whole blob is rewritten on
// every mutation; there are no partial in-place edits.
type queueBlob struct {
	Version int        `json:"version"`
	Ops     []QueuedOp `json:"operations"`
}

// QueueStore holds the ordered pending operations and mirrors every change
// into the injected Storage backend. A persistence failure is logged as a
// warning and the in-memory queue still reflects the change; durability is
// explicitly not guaranteed on storage failure. A corrupt or unparseable
// stored blob degrades to an empty queue rather than an error.
type QueueStore struct {
	storage Storage
	logger  *slog.Logger

	mu  sync.Mutex
	ops []QueuedOp
}

// NewQueueStore loads the persisted queue (if any) from storage.
func NewQueueStore(storage Storage, logger *slog.Logger) *QueueStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &QueueStore{storage: storage, logger: logger}

	raw, found, err := storage.Load(QueueKey)
	if err != nil {
		logger.Warn("failed to load offline queue; starting empty", "err", err)
		return s
	}
	if !found || raw == "" {
		return s
	}
	var blob queueBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		logger.Warn("corrupt offline queue blob; starting empty", "err", err)
		return s
	}
	s.ops = blob.Ops
	return s
}

// Enqueue appends the operation, persists the queue, and returns the
// operation id (assigned here when the caller left it empty).
func (s *QueueStore) Enqueue(op QueuedOp) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.QueuedAt.IsZero() {
		op.QueuedAt = time.Now().UTC()
	}
	s.ops = append(s.ops, op)
	s.persistLocked()
	return op.ID
}

// Remove drops the operation with the given id and persists the new snapshot.
// Unknown ids are a no-op.
func (s *QueueStore) Remove(opID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = slices.DeleteFunc(s.ops, func(op QueuedOp) bool { return op.ID == opID })
	s.persistLocked()
}

// List returns a snapshot copy of the pending operations in enqueue order.
func (s *QueueStore) List() []QueuedOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ops)
}

// PendingCount returns the number of queued operations.
func (s *QueueStore) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ops)
}

// Clear abandons all pending operations.
func (s *QueueStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = nil
	s.persistLocked()
}

func (s *QueueStore) persistLocked() {
	data, err := json.Marshal(queueBlob{Version: 1, Ops: s.ops})
	if err != nil {
		s.logger.Warn("failed to serialize offline queue", "err", err)
		return
	}
	if err := s.storage.Save(QueueKey, string(data)); err != nil {
		s.logger.Warn("failed to persist offline queue; change kept in memory only",
			"pending", len(s.ops), "err", err)
	}
}
