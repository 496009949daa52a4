// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package offqueue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/srse369/saisongs-sub005/catalog"
)

// fakeBackend records every service call in order and lets tests fail
// specific calls or preload server-side state for GetByID.
type fakeBackend struct {
	seq   int
	calls []string

	// hook runs before each call's default behavior; a non-nil return fails
	// that call.
	hook func(name string, payload any) error

	// server state for GetByID: id -> updatedAt. Absent ids return
	// catalog.ErrNotFound unless getErr overrides.
	updatedAt map[string]time.Time
	getErr    map[string]error

	lastPitchCreate   *catalog.PitchFields
	lastSessionItems  []catalog.SessionItem
	lastSessionItemID string
	lastClientKey     string
}

func (b *fakeBackend) services() catalog.Services {
	return catalog.Services{
		Songs:    fakeSongs{b},
		Singers:  fakeSingers{b},
		Pitches:  fakePitches{b},
		Sessions: fakeSessions{b},
	}
}

func (b *fakeBackend) step(ctx context.Context, name string, payload any) error {
	b.calls = append(b.calls, name)
	if key := catalog.ClientKeyFromContext(ctx); key != "" {
		b.lastClientKey = key
	}
	if b.hook != nil {
		return b.hook(name, payload)
	}
	return nil
}

func (b *fakeBackend) newID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s-%d", prefix, b.seq)
}

func (b *fakeBackend) get(name, id string) (time.Time, error) {
	b.calls = append(b.calls, name)
	if err, ok := b.getErr[id]; ok {
		return time.Time{}, err
	}
	ts, ok := b.updatedAt[id]
	if !ok {
		return time.Time{}, catalog.ErrNotFound
	}
	return ts, nil
}

func (b *fakeBackend) callIndex(t *testing.T, name string) int {
	t.Helper()
	for i, c := range b.calls {
		if c == name {
			return i
		}
	}
	t.Fatalf("call %q not found in %v", name, b.calls)
	return -1
}

type fakeSongs struct{ b *fakeBackend }

func (s fakeSongs) Create(ctx context.Context, f catalog.SongFields) (*catalog.Song, error) {
	if err := s.b.step(ctx, "song.create", f); err != nil {
		return nil, err
	}
	return &catalog.Song{ID: s.b.newID("srv-song"), Title: f.Title, UpdatedAt: time.Now()}, nil
}

func (s fakeSongs) Update(ctx context.Context, id string, f catalog.SongFields) (*catalog.Song, error) {
	if err := s.b.step(ctx, "song.update", f); err != nil {
		return nil, err
	}
	return &catalog.Song{ID: id, Title: f.Title, UpdatedAt: time.Now()}, nil
}

func (s fakeSongs) Delete(ctx context.Context, id string) error {
	return s.b.step(ctx, "song.delete", id)
}

func (s fakeSongs) GetByID(ctx context.Context, id string) (*catalog.Song, error) {
	ts, err := s.b.get("song.get", id)
	if err != nil {
		return nil, err
	}
	return &catalog.Song{ID: id, UpdatedAt: ts}, nil
}

type fakeSingers struct{ b *fakeBackend }

func (s fakeSingers) Create(ctx context.Context, f catalog.SingerFields) (*catalog.Singer, error) {
	if err := s.b.step(ctx, "singer.create", f); err != nil {
		return nil, err
	}
	return &catalog.Singer{ID: s.b.newID("srv-singer"), Name: f.Name, UpdatedAt: time.Now()}, nil
}

func (s fakeSingers) Update(ctx context.Context, id string, f catalog.SingerFields) (*catalog.Singer, error) {
	if err := s.b.step(ctx, "singer.update", f); err != nil {
		return nil, err
	}
	return &catalog.Singer{ID: id, Name: f.Name, UpdatedAt: time.Now()}, nil
}

func (s fakeSingers) Delete(ctx context.Context, id string) error {
	return s.b.step(ctx, "singer.delete", id)
}

func (s fakeSingers) GetByID(ctx context.Context, id string) (*catalog.Singer, error) {
	ts, err := s.b.get("singer.get", id)
	if err != nil {
		return nil, err
	}
	return &catalog.Singer{ID: id, UpdatedAt: ts}, nil
}

type fakePitches struct{ b *fakeBackend }

func (s fakePitches) Create(ctx context.Context, f catalog.PitchFields) (*catalog.Pitch, error) {
	if err := s.b.step(ctx, "pitch.create", f); err != nil {
		return nil, err
	}
	s.b.lastPitchCreate = &f
	return &catalog.Pitch{ID: s.b.newID("srv-pitch"), SongID: f.SongID, SingerID: f.SingerID, Value: f.Value, UpdatedAt: time.Now()}, nil
}

func (s fakePitches) Update(ctx context.Context, id string, f catalog.PitchFields) (*catalog.Pitch, error) {
	if err := s.b.step(ctx, "pitch.update", f); err != nil {
		return nil, err
	}
	return &catalog.Pitch{ID: id, SongID: f.SongID, SingerID: f.SingerID, Value: f.Value, UpdatedAt: time.Now()}, nil
}

func (s fakePitches) Delete(ctx context.Context, id string) error {
	return s.b.step(ctx, "pitch.delete", id)
}

func (s fakePitches) GetByID(ctx context.Context, id string) (*catalog.Pitch, error) {
	ts, err := s.b.get("pitch.get", id)
	if err != nil {
		return nil, err
	}
	return &catalog.Pitch{ID: id, UpdatedAt: ts}, nil
}

type fakeSessions struct{ b *fakeBackend }

func (s fakeSessions) Create(ctx context.Context, f catalog.SessionFields) (*catalog.Session, error) {
	if err := s.b.step(ctx, "session.create", f); err != nil {
		return nil, err
	}
	return &catalog.Session{ID: s.b.newID("srv-session"), Name: f.Name, Date: f.Date, UpdatedAt: time.Now()}, nil
}

func (s fakeSessions) Update(ctx context.Context, id string, f catalog.SessionFields) (*catalog.Session, error) {
	if err := s.b.step(ctx, "session.update", f); err != nil {
		return nil, err
	}
	return &catalog.Session{ID: id, Name: f.Name, Date: f.Date, UpdatedAt: time.Now()}, nil
}

func (s fakeSessions) Delete(ctx context.Context, id string) error {
	return s.b.step(ctx, "session.delete", id)
}

func (s fakeSessions) GetByID(ctx context.Context, id string) (*catalog.Session, error) {
	ts, err := s.b.get("session.get", id)
	if err != nil {
		return nil, err
	}
	return &catalog.Session{ID: id, UpdatedAt: ts}, nil
}

func (s fakeSessions) SetItems(ctx context.Context, id string, items []catalog.SessionItem) error {
	if err := s.b.step(ctx, "session.setItems", items); err != nil {
		return err
	}
	s.b.lastSessionItemID = id
	s.b.lastSessionItems = items
	return nil
}

func newTestEngine(t *testing.T) (*Engine, *QueueStore, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{}
	store := NewQueueStore(NewMemoryStorage(), nil)
	engine := NewEngine(store, backend.services(), nil)
	return engine, store, backend
}

func TestProcessAllSuccess(t *testing.T) {
	engine, store, _ := newTestEngine(t)

	store.Enqueue(CreateSong(catalog.SongFields{Title: "Sita Rama"}))
	store.Enqueue(CreateSinger(catalog.SingerFields{Name: "Anjali"}))
	store.Enqueue(UpdateSong("srv-song-9", catalog.SongFields{Title: "Sita Rama (rev)"}))

	result := engine.Process(context.Background(), nil)
	require.Equal(t, Result{Synced: 3, Failed: 0}, result)
	require.Equal(t, 0, store.PendingCount())
}

func TestProcessEmptyQueueIsNoOp(t *testing.T) {
	engine, _, backend := newTestEngine(t)

	result := engine.Process(context.Background(), nil)
	require.Equal(t, Result{}, result)
	require.Empty(t, backend.calls)
}

func TestProcessResolvesTempIDDependencies(t *testing.T) {
	engine, store, backend := newTestEngine(t)

	songOp := CreateSong(catalog.SongFields{Title: "Govinda"})
	store.Enqueue(songOp)
	store.Enqueue(CreatePitch(catalog.PitchFields{
		SongID:   songOp.TempID,
		SingerID: "srv-singer-77",
		Value:    "C#",
	}))

	result := engine.Process(context.Background(), nil)
	require.Equal(t, Result{Synced: 2, Failed: 0}, result)

	require.NotNil(t, backend.lastPitchCreate)
	require.Equal(t, "srv-song-1", backend.lastPitchCreate.SongID)
	require.False(t, IsTempID(backend.lastPitchCreate.SongID))
	require.Equal(t, "srv-singer-77", backend.lastPitchCreate.SingerID)
}

func TestProcessPartialFailureIsolation(t *testing.T) {
	engine, store, backend := newTestEngine(t)

	store.Enqueue(CreateSong(catalog.SongFields{Title: "first"}))
	failedID := store.Enqueue(CreateSong(catalog.SongFields{Title: "boom"}))
	store.Enqueue(CreateSong(catalog.SongFields{Title: "third"}))

	backend.hook = func(name string, payload any) error {
		if f, ok := payload.(catalog.SongFields); ok && f.Title == "boom" {
			return fmt.Errorf("backend unavailable")
		}
		return nil
	}

	result := engine.Process(context.Background(), nil)
	require.Equal(t, Result{Synced: 2, Failed: 1}, result)

	remaining := store.List()
	require.Len(t, remaining, 1)
	require.Equal(t, failedID, remaining[0].ID)
}

func TestProcessEntityPriorityOrder(t *testing.T) {
	engine, store, backend := newTestEngine(t)

	// Enqueued in reverse of dependency order; replay must still create the
	// singer before the pitch.
	singer := CreateSinger(catalog.SingerFields{Name: "Ravi"})
	store.Enqueue(CreatePitch(catalog.PitchFields{
		SongID:   "srv-song-5",
		SingerID: singer.TempID,
		Value:    "D",
	}))
	store.Enqueue(singer)

	result := engine.Process(context.Background(), nil)
	require.Equal(t, Result{Synced: 2, Failed: 0}, result)
	require.Less(t, backend.callIndex(t, "singer.create"), backend.callIndex(t, "pitch.create"))
	require.Equal(t, "srv-singer-1", backend.lastPitchCreate.SingerID)
}

func TestProcessUnresolvedTempIDFailsLoudly(t *testing.T) {
	engine, store, backend := newTestEngine(t)

	song := CreateSong(catalog.SongFields{Title: "boom"})
	store.Enqueue(song)
	store.Enqueue(CreatePitch(catalog.PitchFields{
		SongID:   song.TempID,
		SingerID: "srv-singer-1",
		Value:    "E",
	}))

	backend.hook = func(name string, payload any) error {
		if name == "song.create" {
			return fmt.Errorf("backend unavailable")
		}
		return nil
	}

	result := engine.Process(context.Background(), nil)
	require.Equal(t, Result{Synced: 0, Failed: 2}, result)
	require.Equal(t, 2, store.PendingCount())
	// The pitch create never reached the backend with a placeholder id.
	require.NotContains(t, backend.calls, "pitch.create")

	// Stored payload still carries the temp id for the next pass.
	for _, op := range store.List() {
		if op.Entity == EntityPitch {
			require.Equal(t, song.TempID, op.Pitch.SongID)
		}
	}
}

func TestProcessSessionItemsAfterParent(t *testing.T) {
	engine, store, backend := newTestEngine(t)

	song := CreateSong(catalog.SongFields{Title: "Raghupati"})
	singer := CreateSinger(catalog.SingerFields{Name: "Meera"})
	store.Enqueue(song)
	store.Enqueue(singer)
	store.Enqueue(CreateSession(catalog.SessionFields{
		Name: "Thursday Bhajans",
		Date: time.Date(2026, 9, 3, 18, 30, 0, 0, time.UTC),
		Items: []catalog.SessionItem{
			{SongID: song.TempID, SingerID: singer.TempID, Position: 1},
			{SongID: "srv-song-50", Position: 2},
		},
	}))

	result := engine.Process(context.Background(), nil)
	require.Equal(t, Result{Synced: 3, Failed: 0}, result)

	require.Less(t, backend.callIndex(t, "session.create"), backend.callIndex(t, "session.setItems"))
	require.Equal(t, "srv-session-3", backend.lastSessionItemID)
	require.Equal(t, "srv-song-1", backend.lastSessionItems[0].SongID)
	require.Equal(t, "srv-singer-2", backend.lastSessionItems[0].SingerID)
	require.Equal(t, "srv-song-50", backend.lastSessionItems[1].SongID)
}

func TestProcessSessionItemFailureKeepsOpQueued(t *testing.T) {
	engine, store, backend := newTestEngine(t)

	store.Enqueue(CreateSession(catalog.SessionFields{
		Name:  "Sunday",
		Items: []catalog.SessionItem{{SongID: "srv-song-1", Position: 1}},
	}))
	backend.hook = func(name string, payload any) error {
		if name == "session.setItems" {
			return fmt.Errorf("backend unavailable")
		}
		return nil
	}

	result := engine.Process(context.Background(), nil)
	require.Equal(t, Result{Synced: 0, Failed: 1}, result)
	require.Equal(t, 1, store.PendingCount())
}

func TestProcessEmitsPlaceholderReplacementPair(t *testing.T) {
	backend := &fakeBackend{}
	store := NewQueueStore(NewMemoryStorage(), nil)
	bus := NewDispatcher()

	var events []Event
	bus.Subscribe(EventDeleted, func(ev Event) { events = append(events, ev) })
	bus.Subscribe(EventCreated, func(ev Event) { events = append(events, ev) })

	engine := NewEngine(store, backend.services(), &EngineConfig{Bus: bus})
	song := CreateSong(catalog.SongFields{Title: "Hari Om"})
	store.Enqueue(song)

	result := engine.Process(context.Background(), nil)
	require.Equal(t, Result{Synced: 1, Failed: 0}, result)

	require.Len(t, events, 2)
	require.Equal(t, EventDeleted, events[0].Type)
	require.Equal(t, song.TempID, events[0].ID)
	require.Equal(t, EventCreated, events[1].Type)
	require.Equal(t, "srv-song-1", events[1].ID)
	require.NotNil(t, events[1].Song)
	require.Equal(t, "Hari Om", events[1].Song.Title)
}

func TestProcessReportsProgress(t *testing.T) {
	engine, store, backend := newTestEngine(t)

	okID := store.Enqueue(CreateSong(catalog.SongFields{Title: "ok"}))
	badID := store.Enqueue(CreateSong(catalog.SongFields{Title: "boom"}))
	backend.hook = func(name string, payload any) error {
		if f, ok := payload.(catalog.SongFields); ok && f.Title == "boom" {
			return fmt.Errorf("backend unavailable")
		}
		return nil
	}

	stages := map[string][]Stage{}
	engine.Process(context.Background(), func(op QueuedOp, stage Stage) {
		stages[op.ID] = append(stages[op.ID], stage)
	})

	require.Equal(t, []Stage{StageSyncing, StageSuccess}, stages[okID])
	require.Equal(t, []Stage{StageSyncing, StageFailed}, stages[badID])
}

func TestProcessSendsClientKeyOnCreates(t *testing.T) {
	engine, store, backend := newTestEngine(t)

	opID := store.Enqueue(CreateSong(catalog.SongFields{Title: "keyed"}))
	engine.Process(context.Background(), nil)
	require.Equal(t, opID, backend.lastClientKey)
}

func TestProcessIntraEntityOrderPreserved(t *testing.T) {
	engine, store, backend := newTestEngine(t)

	song := CreateSong(catalog.SongFields{Title: "v1"})
	store.Enqueue(song)
	store.Enqueue(UpdateSong(song.TempID, catalog.SongFields{Title: "v2"}))

	result := engine.Process(context.Background(), nil)
	require.Equal(t, Result{Synced: 2, Failed: 0}, result)
	require.Less(t, backend.callIndex(t, "song.create"), backend.callIndex(t, "song.update"))
}
