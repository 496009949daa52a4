// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package catalog

import "context"

// SongService is the backend contract for songs.
type SongService interface {
	Create(ctx context.Context, fields SongFields) (*Song, error)
	Update(ctx context.Context, id string, fields SongFields) (*Song, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Song, error)
}

// SingerService is the backend contract for singers.
type SingerService interface {
	Create(ctx context.Context, fields SingerFields) (*Singer, error)
	Update(ctx context.Context, id string, fields SingerFields) (*Singer, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Singer, error)
}

// PitchService is the backend contract for pitch assignments.
type PitchService interface {
	Create(ctx context.Context, fields PitchFields) (*Pitch, error)
	Update(ctx context.Context, id string, fields PitchFields) (*Pitch, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Pitch, error)
}

// SessionService is the backend contract for named sessions. Items are
// replaced wholesale with SetItems after the session create/update succeeds.
type SessionService interface {
	Create(ctx context.Context, fields SessionFields) (*Session, error)
	Update(ctx context.Context, id string, fields SessionFields) (*Session, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Session, error)
	SetItems(ctx context.Context, id string, items []SessionItem) error
}

// Services bundles the four per-entity backends consumed by the sync engine.
type Services struct {
	Songs    SongService
	Singers  SingerService
	Pitches  PitchService
	Sessions SessionService
}
