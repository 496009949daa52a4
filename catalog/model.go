// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

// Package catalog defines the song catalog domain model and the per-entity
// backend service interfaces consumed by the offline queue.
package catalog

import "time"

// Song is a bhajan in the shared catalog.
type Song struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Lyrics    string    `json:"lyrics,omitempty"`
	Deity     string    `json:"deity,omitempty"`
	Raga      string    `json:"raga,omitempty"`
	Beat      string    `json:"beat,omitempty"`
	Tempo     string    `json:"tempo,omitempty"`
	Language  string    `json:"language,omitempty"`
	AudioURL  string    `json:"audioUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Singer is a member who leads songs.
type Singer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Gender    string    `json:"gender,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Pitch is the starting pitch a particular singer uses for a particular song.
type Pitch struct {
	ID        string    `json:"id"`
	SongID    string    `json:"songId"`
	SingerID  string    `json:"singerId"`
	Value     string    `json:"value"` // e.g. "C#", "D"
	Scale     string    `json:"scale,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Session is a named, dated list of songs with assigned singers.
type Session struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Date      time.Time     `json:"date"`
	Items     []SessionItem `json:"items,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// SessionItem is one slot in a session's running order.
type SessionItem struct {
	SongID   string `json:"songId"`
	SingerID string `json:"singerId,omitempty"`
	Position int    `json:"position"`
}

// SongFields carries the mutable fields of a Song for create/update calls.
type SongFields struct {
	Title    string `json:"title"`
	Lyrics   string `json:"lyrics,omitempty"`
	Deity    string `json:"deity,omitempty"`
	Raga     string `json:"raga,omitempty"`
	Beat     string `json:"beat,omitempty"`
	Tempo    string `json:"tempo,omitempty"`
	Language string `json:"language,omitempty"`
	AudioURL string `json:"audioUrl,omitempty"`
}

// SingerFields carries the mutable fields of a Singer.
type SingerFields struct {
	Name   string `json:"name"`
	Gender string `json:"gender,omitempty"`
}

// PitchFields carries the mutable fields of a Pitch. SongID and SingerID may
// hold temp ids when the referenced entity was created in the same offline
// session; the queue resolves them before the backend ever sees the payload.
type PitchFields struct {
	SongID   string `json:"songId"`
	SingerID string `json:"singerId"`
	Value    string `json:"value"`
	Scale    string `json:"scale,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// SessionFields carries the mutable fields of a Session. Items are applied
// with a separate SetItems call after the session itself exists.
type SessionFields struct {
	Name  string        `json:"name"`
	Date  time.Time     `json:"date"`
	Items []SessionItem `json:"items,omitempty"`
}
