// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package offqueue

import (
	"context"
	"time"

	"github.com/srse369/saisongs-sub005/catalog"
)

// ConflictReason says why a queued operation clashes with server state.
type ConflictReason string

const (
	ConflictModifiedOnServer ConflictReason = "modified_on_server"
	ConflictDeletedOnServer  ConflictReason = "deleted_on_server"
)

// Conflict is an advisory finding from CheckConflicts. It is never persisted
// and does not block replay; resolution policy belongs to the caller.
type Conflict struct {
	OpID            string         `json:"opId"`
	Label           string         `json:"label,omitempty"`
	Reason          ConflictReason `json:"reason"`
	ServerUpdatedAt time.Time      `json:"serverUpdatedAt,omitzero"`
}

// CheckConflicts scans queued update/delete operations whose target is a real
// server id and compares them against current server state:
//
//   - target missing, op is delete: no conflict (the goal is already achieved)
//   - target missing, op is update: deleted_on_server
//   - target present with UpdatedAt strictly later than the op's enqueue
//     time: modified_on_server
//
// Creates and temp-id-addressed operations are skipped; nothing exists
// server-side for them yet. A per-operation read failure is swallowed and
// that operation is simply omitted from the result, so one flaky fetch never
// aborts the scan. The queue is never mutated.
func (e *Engine) CheckConflicts(ctx context.Context) []Conflict {
	var conflicts []Conflict
	for _, op := range e.store.List() {
		if op.Kind == OpCreate || IsTempID(op.TargetID) {
			continue
		}
		updatedAt, err := e.serverUpdatedAt(ctx, op.Entity, op.TargetID)
		if catalog.IsNotFound(err) {
			if op.Kind == OpUpdate {
				conflicts = append(conflicts, Conflict{
					OpID:   op.ID,
					Label:  op.Label,
					Reason: ConflictDeletedOnServer,
				})
			}
			continue
		}
		if err != nil {
			e.logger.Debug("conflict check skipped operation",
				"op", op.ID, "entity", op.Entity, "err", err)
			continue
		}
		if updatedAt.After(op.QueuedAt) {
			conflicts = append(conflicts, Conflict{
				OpID:            op.ID,
				Label:           op.Label,
				Reason:          ConflictModifiedOnServer,
				ServerUpdatedAt: updatedAt,
			})
		}
	}
	return conflicts
}

func (e *Engine) serverUpdatedAt(ctx context.Context, entity Entity, id string) (time.Time, error) {
	switch entity {
	case EntitySong:
		song, err := e.services.Songs.GetByID(ctx, id)
		if err != nil {
			return time.Time{}, err
		}
		return song.UpdatedAt, nil
	case EntitySinger:
		singer, err := e.services.Singers.GetByID(ctx, id)
		if err != nil {
			return time.Time{}, err
		}
		return singer.UpdatedAt, nil
	case EntityPitch:
		pitch, err := e.services.Pitches.GetByID(ctx, id)
		if err != nil {
			return time.Time{}, err
		}
		return pitch.UpdatedAt, nil
	case EntitySession:
		session, err := e.services.Sessions.GetByID(ctx, id)
		if err != nil {
			return time.Time{}, err
		}
		return session.UpdatedAt, nil
	default:
		return time.Time{}, catalog.ErrNotFound
	}
}
