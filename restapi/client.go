// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

// Package restapi implements the catalog backend services over the saisongs
// REST API with JWT bearer authentication.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/srse369/saisongs-sub005/catalog"
)

// TokenFunc returns a bearer token for the outgoing request.
type TokenFunc func(ctx context.Context) (string, error)

// Client is the shared HTTP plumbing behind the per-entity services.
type Client struct {
	BaseURL string
	Token   TokenFunc
	HTTP    *http.Client
}

// NewClient creates a REST client for the given API base URL.
func NewClient(baseURL string, token TokenFunc) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Services returns the four catalog backends bound to this client.
func (c *Client) Services() catalog.Services {
	return catalog.Services{
		Songs:    &songService{c},
		Singers:  &singerService{c},
		Pitches:  &pitchService{c},
		Sessions: &sessionService{c},
	}
}

// errorBody is the JSON error envelope the API returns on non-2xx statuses.
type errorBody struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// do sends one JSON request. Transport failures surface unchanged (they carry
// their *url.Error / net.Error classification for the offline classifier);
// 404 maps to catalog.ErrNotFound and any other non-2xx status to
// *catalog.RequestError.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != nil {
		token, err := c.Token(ctx)
		if err != nil {
			return fmt.Errorf("failed to get auth token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if key := catalog.ClientKeyFromContext(ctx); key != "" {
		req.Header.Set("X-Client-Key", key)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return catalog.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		msg := ""
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil {
			if json.Unmarshal(data, &eb) == nil {
				msg = eb.Message
				if msg == "" {
					msg = eb.Error
				}
			}
		}
		return &catalog.RequestError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
