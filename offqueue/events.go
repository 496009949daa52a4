// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package offqueue

import (
	"sync"

	"github.com/srse369/saisongs-sub005/catalog"
)

// EventType is the lifecycle stage an event announces.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event is a fire-and-forget notification emitted by the sync engine as
// replayed operations succeed. When a create replaces an offline placeholder
// the engine emits a pair: a deleted event for the temp id immediately
// followed by a created event carrying the real entity, so subscribers can
// swap optimistic state atomically.
//
// Delivery is synchronous, to subscribers registered at publish time only.
// No ordering is guaranteed relative to concurrent subscribers and delivery
// is never retried; this is a notification, not a transactional side effect.
type Event struct {
	Type   EventType
	Entity Entity
	ID     string

	// Exactly one is set on created/updated events, matching Entity.
	// Deleted events carry only the id.
	Song    *catalog.Song
	Singer  *catalog.Singer
	Pitch   *catalog.Pitch
	Session *catalog.Session
}

// Bus receives events from the sync engine.
type Bus interface {
	Publish(Event)
}

// Dispatcher is a minimal in-process Bus with per-type subscriptions.
type Dispatcher struct {
	mu     sync.RWMutex
	nextID int
	subs   map[EventType]map[int]func(Event)
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[EventType]map[int]func(Event))}
}

// Subscribe registers a handler for one event type and returns its
// unsubscribe function.
func (d *Dispatcher) Subscribe(t EventType, fn func(Event)) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	if d.subs[t] == nil {
		d.subs[t] = make(map[int]func(Event))
	}
	d.subs[t][id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs[t], id)
	}
}

// Publish delivers the event synchronously to current subscribers.
func (d *Dispatcher) Publish(ev Event) {
	d.mu.RLock()
	handlers := make([]func(Event), 0, len(d.subs[ev.Type]))
	for _, fn := range d.subs[ev.Type] {
		handlers = append(handlers, fn)
	}
	d.mu.RUnlock()
	for _, fn := range handlers {
		fn(ev)
	}
}
