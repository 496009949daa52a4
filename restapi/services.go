// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package restapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/srse369/saisongs-sub005/catalog"
)

type songService struct{ c *Client }

func (s *songService) Create(ctx context.Context, fields catalog.SongFields) (*catalog.Song, error) {
	var song catalog.Song
	if err := s.c.do(ctx, http.MethodPost, "/api/songs", fields, &song); err != nil {
		return nil, err
	}
	return &song, nil
}

func (s *songService) Update(ctx context.Context, id string, fields catalog.SongFields) (*catalog.Song, error) {
	var song catalog.Song
	if err := s.c.do(ctx, http.MethodPut, "/api/songs/"+url.PathEscape(id), fields, &song); err != nil {
		return nil, err
	}
	return &song, nil
}

func (s *songService) Delete(ctx context.Context, id string) error {
	return s.c.do(ctx, http.MethodDelete, "/api/songs/"+url.PathEscape(id), nil, nil)
}

func (s *songService) GetByID(ctx context.Context, id string) (*catalog.Song, error) {
	var song catalog.Song
	if err := s.c.do(ctx, http.MethodGet, "/api/songs/"+url.PathEscape(id), nil, &song); err != nil {
		return nil, err
	}
	return &song, nil
}

type singerService struct{ c *Client }

func (s *singerService) Create(ctx context.Context, fields catalog.SingerFields) (*catalog.Singer, error) {
	var singer catalog.Singer
	if err := s.c.do(ctx, http.MethodPost, "/api/singers", fields, &singer); err != nil {
		return nil, err
	}
	return &singer, nil
}

func (s *singerService) Update(ctx context.Context, id string, fields catalog.SingerFields) (*catalog.Singer, error) {
	var singer catalog.Singer
	if err := s.c.do(ctx, http.MethodPut, "/api/singers/"+url.PathEscape(id), fields, &singer); err != nil {
		return nil, err
	}
	return &singer, nil
}

func (s *singerService) Delete(ctx context.Context, id string) error {
	return s.c.do(ctx, http.MethodDelete, "/api/singers/"+url.PathEscape(id), nil, nil)
}

func (s *singerService) GetByID(ctx context.Context, id string) (*catalog.Singer, error) {
	var singer catalog.Singer
	if err := s.c.do(ctx, http.MethodGet, "/api/singers/"+url.PathEscape(id), nil, &singer); err != nil {
		return nil, err
	}
	return &singer, nil
}

type pitchService struct{ c *Client }

func (s *pitchService) Create(ctx context.Context, fields catalog.PitchFields) (*catalog.Pitch, error) {
	var pitch catalog.Pitch
	if err := s.c.do(ctx, http.MethodPost, "/api/pitches", fields, &pitch); err != nil {
		return nil, err
	}
	return &pitch, nil
}

func (s *pitchService) Update(ctx context.Context, id string, fields catalog.PitchFields) (*catalog.Pitch, error) {
	var pitch catalog.Pitch
	if err := s.c.do(ctx, http.MethodPut, "/api/pitches/"+url.PathEscape(id), fields, &pitch); err != nil {
		return nil, err
	}
	return &pitch, nil
}

func (s *pitchService) Delete(ctx context.Context, id string) error {
	return s.c.do(ctx, http.MethodDelete, "/api/pitches/"+url.PathEscape(id), nil, nil)
}

func (s *pitchService) GetByID(ctx context.Context, id string) (*catalog.Pitch, error) {
	var pitch catalog.Pitch
	if err := s.c.do(ctx, http.MethodGet, "/api/pitches/"+url.PathEscape(id), nil, &pitch); err != nil {
		return nil, err
	}
	return &pitch, nil
}

type sessionService struct{ c *Client }

func (s *sessionService) Create(ctx context.Context, fields catalog.SessionFields) (*catalog.Session, error) {
	var session catalog.Session
	if err := s.c.do(ctx, http.MethodPost, "/api/sessions", fields, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *sessionService) Update(ctx context.Context, id string, fields catalog.SessionFields) (*catalog.Session, error) {
	var session catalog.Session
	if err := s.c.do(ctx, http.MethodPut, "/api/sessions/"+url.PathEscape(id), fields, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *sessionService) Delete(ctx context.Context, id string) error {
	return s.c.do(ctx, http.MethodDelete, "/api/sessions/"+url.PathEscape(id), nil, nil)
}

func (s *sessionService) GetByID(ctx context.Context, id string) (*catalog.Session, error) {
	var session catalog.Session
	if err := s.c.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(id), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *sessionService) SetItems(ctx context.Context, id string, items []catalog.SessionItem) error {
	body := struct {
		Items []catalog.SessionItem `json:"items"`
	}{Items: items}
	return s.c.do(ctx, http.MethodPut, "/api/sessions/"+url.PathEscape(id)+"/items", body, nil)
}
