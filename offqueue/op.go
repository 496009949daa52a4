// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

// Package offqueue implements the offline mutation queue and sync engine for
// the saisongs client: durable ordered capture of create/update/delete
// operations performed without connectivity, advisory conflict detection
// against current server state, and dependency-ordered replay with temp-id
// resolution once the backend is reachable again.
package offqueue

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/srse369/saisongs-sub005/catalog"
)

// Entity identifies which catalog type an operation targets.
type Entity string

const (
	EntitySong    Entity = "song"
	EntitySinger  Entity = "singer"
	EntityPitch   Entity = "pitch"
	EntitySession Entity = "session"
)

// entityPriority is the fixed replay order. Pitches reference songs and
// singers; sessions reference songs and singers through their item lists, so
// referenced entities must be materialized first.
var entityPriority = []Entity{EntitySong, EntitySinger, EntityPitch, EntitySession}

// OpKind is the mutation type of a queued operation.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// QueuedOp is one captured offline mutation. Exactly one of the payload
// pointers is set, matching Entity; the queue never carries loose field maps.
type QueuedOp struct {
	ID       string    `json:"id"`
	Kind     OpKind    `json:"kind"`
	Entity   Entity    `json:"entity"`
	TargetID string    `json:"targetId,omitempty"` // update/delete target; may itself be a temp id
	TempID   string    `json:"tempId,omitempty"`   // create only: placeholder id handed to the UI
	Label    string    `json:"label,omitempty"`    // human-readable summary for progress/conflict UI
	QueuedAt time.Time `json:"queuedAt"`

	Song    *catalog.SongFields    `json:"song,omitempty"`
	Singer  *catalog.SingerFields  `json:"singer,omitempty"`
	Pitch   *catalog.PitchFields   `json:"pitch,omitempty"`
	Session *catalog.SessionFields `json:"session,omitempty"`
}

// WithLabel returns a copy of the operation carrying a display label.
func (op QueuedOp) WithLabel(label string) QueuedOp {
	op.Label = label
	return op
}

// CreateSong builds a create operation with a fresh temp id. The temp id is
// returned to callers via TempID so optimistic UI state can reference the
// entity before the server assigns a real id.
func CreateSong(fields catalog.SongFields) QueuedOp {
	return QueuedOp{Kind: OpCreate, Entity: EntitySong, TempID: GenerateTempID(EntitySong), Song: &fields}
}

// UpdateSong builds an update operation. id may be a temp id when the song
// was created in the same offline session.
func UpdateSong(id string, fields catalog.SongFields) QueuedOp {
	return QueuedOp{Kind: OpUpdate, Entity: EntitySong, TargetID: id, Song: &fields}
}

// DeleteSong builds a delete operation.
func DeleteSong(id string) QueuedOp {
	return QueuedOp{Kind: OpDelete, Entity: EntitySong, TargetID: id}
}

func CreateSinger(fields catalog.SingerFields) QueuedOp {
	return QueuedOp{Kind: OpCreate, Entity: EntitySinger, TempID: GenerateTempID(EntitySinger), Singer: &fields}
}

func UpdateSinger(id string, fields catalog.SingerFields) QueuedOp {
	return QueuedOp{Kind: OpUpdate, Entity: EntitySinger, TargetID: id, Singer: &fields}
}

func DeleteSinger(id string) QueuedOp {
	return QueuedOp{Kind: OpDelete, Entity: EntitySinger, TargetID: id}
}

func CreatePitch(fields catalog.PitchFields) QueuedOp {
	return QueuedOp{Kind: OpCreate, Entity: EntityPitch, TempID: GenerateTempID(EntityPitch), Pitch: &fields}
}

func UpdatePitch(id string, fields catalog.PitchFields) QueuedOp {
	return QueuedOp{Kind: OpUpdate, Entity: EntityPitch, TargetID: id, Pitch: &fields}
}

func DeletePitch(id string) QueuedOp {
	return QueuedOp{Kind: OpDelete, Entity: EntityPitch, TargetID: id}
}

func CreateSession(fields catalog.SessionFields) QueuedOp {
	return QueuedOp{Kind: OpCreate, Entity: EntitySession, TempID: GenerateTempID(EntitySession), Session: &fields}
}

func UpdateSession(id string, fields catalog.SessionFields) QueuedOp {
	return QueuedOp{Kind: OpUpdate, Entity: EntitySession, TargetID: id, Session: &fields}
}

func DeleteSession(id string) QueuedOp {
	return QueuedOp{Kind: OpDelete, Entity: EntitySession, TargetID: id}
}

const tempIDPrefix = "temp-"

// GenerateTempID produces a client-side placeholder id of the form
// temp-<entity>-<unixms>-<random>. Server-issued ids never use the temp-
// prefix, so the two namespaces cannot collide.
func GenerateTempID(entity Entity) string {
	return fmt.Sprintf("%s%s-%d-%s", tempIDPrefix, entity, time.Now().UnixMilli(), uuid.NewString()[:8])
}

// IsTempID reports whether id is a client-generated placeholder.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// ErrUnresolvedTempID is returned when an operation references a temp id
// whose creating operation has not succeeded in the current replay pass. The
// operation fails loudly and stays queued rather than sending a placeholder
// id to the backend.
var ErrUnresolvedTempID = errors.New("offqueue: unresolved temp id")

// tempIDMap holds temp→real id mappings for a single replay pass.
type tempIDMap map[string]string

func (m tempIDMap) resolve(id string) (string, error) {
	if !IsTempID(id) {
		return id, nil
	}
	real, ok := m[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedTempID, id)
	}
	return real, nil
}

// resolved returns a deep copy of the operation with the target id and every
// foreign-key reference field remapped through the pass's temp-id map. The
// stored operation is never mutated, so a failed op keeps its temp ids for
// the next pass.
//
// Each entity's reference fields are enumerated here; a payload field added
// without a matching resolve line is a bug in this switch, not a silent
// convention miss.
func (op QueuedOp) resolved(m tempIDMap) (QueuedOp, error) {
	out := op
	if out.TargetID != "" {
		id, err := m.resolve(out.TargetID)
		if err != nil {
			return op, err
		}
		out.TargetID = id
	}
	switch op.Entity {
	case EntitySong, EntitySinger:
		// No foreign-key fields.
	case EntityPitch:
		if op.Pitch != nil {
			p := *op.Pitch
			var err error
			if p.SongID, err = m.resolve(p.SongID); err != nil {
				return op, err
			}
			if p.SingerID, err = m.resolve(p.SingerID); err != nil {
				return op, err
			}
			out.Pitch = &p
		}
	case EntitySession:
		if op.Session != nil {
			s := *op.Session
			s.Items = slices.Clone(op.Session.Items)
			for i := range s.Items {
				var err error
				if s.Items[i].SongID, err = m.resolve(s.Items[i].SongID); err != nil {
					return op, err
				}
				if s.Items[i].SingerID, err = m.resolve(s.Items[i].SingerID); err != nil {
					return op, err
				}
			}
			out.Session = &s
		}
	}
	return out, nil
}
