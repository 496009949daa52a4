// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package offqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/srse369/saisongs-sub005/catalog"
)

// Stage is the per-operation progress state reported during replay.
type Stage string

const (
	StageSyncing Stage = "syncing"
	StageSuccess Stage = "success"
	StageFailed  Stage = "failed"
)

// ProgressFunc receives per-operation progress during a replay pass.
type ProgressFunc func(op QueuedOp, stage Stage)

// Result aggregates a replay pass.
type Result struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

// EngineConfig holds the optional collaborators of an Engine.
type EngineConfig struct {
	Bus          Bus          // nil: no events emitted
	Connectivity Connectivity // nil: AlwaysOnline
	Logger       *slog.Logger // nil: slog.Default()
}

// Engine replays the offline queue against the per-entity backend services.
//
// Invocations must be serialized by the caller: two interleaved passes would
// share no temp-id state and could double-apply operations. The engine holds
// no internal lock across a pass.
type Engine struct {
	store    *QueueStore
	services catalog.Services
	bus      Bus
	conn     Connectivity
	logger   *slog.Logger
}

// NewEngine creates a sync engine over the given queue and backends.
func NewEngine(store *QueueStore, services catalog.Services, cfg *EngineConfig) *Engine {
	e := &Engine{store: store, services: services, conn: AlwaysOnline, logger: slog.Default()}
	if cfg != nil {
		if cfg.Bus != nil {
			e.bus = cfg.Bus
		}
		if cfg.Connectivity != nil {
			e.conn = cfg.Connectivity
		}
		if cfg.Logger != nil {
			e.logger = cfg.Logger
		}
	}
	return e
}

// Store exposes the underlying queue for pending counts and manual clearing.
func (e *Engine) Store() *QueueStore { return e.store }

// ShouldQueue reports whether a failed mutation belongs in the offline queue
// rather than in front of the user.
func (e *Engine) ShouldQueue(err error) bool {
	return IsOfflineError(e.conn, err)
}

// Process drains the queue in entity priority order (song, singer, pitch,
// session), preserving enqueue order within each group. Each operation is
// applied independently: a failure leaves that operation queued for a future
// pass and never aborts the batch. Successful operations are removed from
// the persisted queue one by one, so an interruption mid-pass leaves a
// consistent partially-processed queue.
//
// Delivery is at-least-once: if a backend create succeeds and the subsequent
// queue-removal persist is lost to a crash, the create is replayed on the
// next pass. Creates carry their operation id as a client key so backends
// with idempotent upsert semantics can deduplicate.
func (e *Engine) Process(ctx context.Context, onProgress ProgressFunc) Result {
	ops := e.store.List()
	if len(ops) == 0 {
		return Result{}
	}

	tm := tempIDMap{}
	var result Result
	for _, entity := range entityPriority {
		for _, op := range ops {
			if op.Entity != entity {
				continue
			}
			if onProgress != nil {
				onProgress(op, StageSyncing)
			}
			if err := e.apply(ctx, op, tm); err != nil {
				result.Failed++
				e.logger.Warn("offline operation failed; retained for next pass",
					"op", op.ID, "entity", op.Entity, "kind", op.Kind, "err", err)
				if onProgress != nil {
					onProgress(op, StageFailed)
				}
				continue
			}
			e.store.Remove(op.ID)
			result.Synced++
			if onProgress != nil {
				onProgress(op, StageSuccess)
			}
		}
	}
	e.logger.Info("offline queue pass complete",
		"synced", result.Synced, "failed", result.Failed, "pending", e.store.PendingCount())
	return result
}

func (e *Engine) apply(ctx context.Context, op QueuedOp, tm tempIDMap) error {
	resolved, err := op.resolved(tm)
	if err != nil {
		return err
	}
	if op.Kind == OpCreate {
		// At-least-once contract: the queue op id doubles as the create's
		// idempotency key for backends that support upsert-by-client-key.
		ctx = catalog.WithClientKey(ctx, op.ID)
	}
	switch op.Entity {
	case EntitySong:
		return e.applySong(ctx, resolved, tm)
	case EntitySinger:
		return e.applySinger(ctx, resolved, tm)
	case EntityPitch:
		return e.applyPitch(ctx, resolved, tm)
	case EntitySession:
		return e.applySession(ctx, resolved, tm)
	default:
		return fmt.Errorf("offqueue: unknown entity %q", op.Entity)
	}
}

func (e *Engine) applySong(ctx context.Context, op QueuedOp, tm tempIDMap) error {
	switch op.Kind {
	case OpCreate:
		song, err := e.services.Songs.Create(ctx, *op.Song)
		if err != nil {
			return err
		}
		e.registerCreated(op, song.ID, tm)
		e.publish(Event{Type: EventCreated, Entity: EntitySong, ID: song.ID, Song: song})
		return nil
	case OpUpdate:
		song, err := e.services.Songs.Update(ctx, op.TargetID, *op.Song)
		if err != nil {
			return err
		}
		e.publish(Event{Type: EventUpdated, Entity: EntitySong, ID: song.ID, Song: song})
		return nil
	case OpDelete:
		if err := e.services.Songs.Delete(ctx, op.TargetID); err != nil {
			return err
		}
		e.publish(Event{Type: EventDeleted, Entity: EntitySong, ID: op.TargetID})
		return nil
	default:
		return fmt.Errorf("offqueue: unknown op kind %q", op.Kind)
	}
}

func (e *Engine) applySinger(ctx context.Context, op QueuedOp, tm tempIDMap) error {
	switch op.Kind {
	case OpCreate:
		singer, err := e.services.Singers.Create(ctx, *op.Singer)
		if err != nil {
			return err
		}
		e.registerCreated(op, singer.ID, tm)
		e.publish(Event{Type: EventCreated, Entity: EntitySinger, ID: singer.ID, Singer: singer})
		return nil
	case OpUpdate:
		singer, err := e.services.Singers.Update(ctx, op.TargetID, *op.Singer)
		if err != nil {
			return err
		}
		e.publish(Event{Type: EventUpdated, Entity: EntitySinger, ID: singer.ID, Singer: singer})
		return nil
	case OpDelete:
		if err := e.services.Singers.Delete(ctx, op.TargetID); err != nil {
			return err
		}
		e.publish(Event{Type: EventDeleted, Entity: EntitySinger, ID: op.TargetID})
		return nil
	default:
		return fmt.Errorf("offqueue: unknown op kind %q", op.Kind)
	}
}

func (e *Engine) applyPitch(ctx context.Context, op QueuedOp, tm tempIDMap) error {
	switch op.Kind {
	case OpCreate:
		pitch, err := e.services.Pitches.Create(ctx, *op.Pitch)
		if err != nil {
			return err
		}
		e.registerCreated(op, pitch.ID, tm)
		e.publish(Event{Type: EventCreated, Entity: EntityPitch, ID: pitch.ID, Pitch: pitch})
		return nil
	case OpUpdate:
		pitch, err := e.services.Pitches.Update(ctx, op.TargetID, *op.Pitch)
		if err != nil {
			return err
		}
		e.publish(Event{Type: EventUpdated, Entity: EntityPitch, ID: pitch.ID, Pitch: pitch})
		return nil
	case OpDelete:
		if err := e.services.Pitches.Delete(ctx, op.TargetID); err != nil {
			return err
		}
		e.publish(Event{Type: EventDeleted, Entity: EntityPitch, ID: op.TargetID})
		return nil
	default:
		return fmt.Errorf("offqueue: unknown op kind %q", op.Kind)
	}
}

// applySession sends the session's item list only after the parent
// create/update call has succeeded. If SetItems fails the whole operation is
// treated as failed and stays queued; the next pass re-sends both calls.
func (e *Engine) applySession(ctx context.Context, op QueuedOp, tm tempIDMap) error {
	switch op.Kind {
	case OpCreate:
		fields := *op.Session
		items := fields.Items
		fields.Items = nil
		session, err := e.services.Sessions.Create(ctx, fields)
		if err != nil {
			return err
		}
		if len(items) > 0 {
			if err := e.services.Sessions.SetItems(ctx, session.ID, items); err != nil {
				return fmt.Errorf("session %s created but items not applied: %w", session.ID, err)
			}
			session.Items = items
		}
		e.registerCreated(op, session.ID, tm)
		e.publish(Event{Type: EventCreated, Entity: EntitySession, ID: session.ID, Session: session})
		return nil
	case OpUpdate:
		fields := *op.Session
		items := fields.Items
		fields.Items = nil
		session, err := e.services.Sessions.Update(ctx, op.TargetID, fields)
		if err != nil {
			return err
		}
		if items != nil {
			if err := e.services.Sessions.SetItems(ctx, session.ID, items); err != nil {
				return fmt.Errorf("session %s updated but items not applied: %w", session.ID, err)
			}
			session.Items = items
		}
		e.publish(Event{Type: EventUpdated, Entity: EntitySession, ID: session.ID, Session: session})
		return nil
	case OpDelete:
		if err := e.services.Sessions.Delete(ctx, op.TargetID); err != nil {
			return err
		}
		e.publish(Event{Type: EventDeleted, Entity: EntitySession, ID: op.TargetID})
		return nil
	default:
		return fmt.Errorf("offqueue: unknown op kind %q", op.Kind)
	}
}

// registerCreated records the temp→real mapping for later operations in the
// same pass and emits the placeholder-removal half of the create event pair.
func (e *Engine) registerCreated(op QueuedOp, realID string, tm tempIDMap) {
	if op.TempID == "" {
		return
	}
	tm[op.TempID] = realID
	e.publish(Event{Type: EventDeleted, Entity: op.Entity, ID: op.TempID})
}

func (e *Engine) publish(ev Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
