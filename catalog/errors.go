// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by GetByID (and update/delete) when the entity does
// not exist on the server.
var ErrNotFound = errors.New("catalog: not found")

// RequestError is an application-level rejection from the backend (validation
// failure, business-rule violation). It is never classified as a network
// error and therefore never queued.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog: server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog: server returned status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err represents a missing entity, either as the
// ErrNotFound sentinel or as an HTTP 404 rejection.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == 404
}
