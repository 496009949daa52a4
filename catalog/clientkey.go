// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package catalog

import "context"

type clientKeyContextKey struct{}

// WithClientKey attaches a client-chosen idempotency key to the context of a
// create call. Transports forward it to the backend (restapi sends it as the
// X-Client-Key header); a backend implementing upsert-by-client-key can then
// deduplicate at-least-once replays of the same create.
func WithClientKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, clientKeyContextKey{}, key)
}

// ClientKeyFromContext returns the idempotency key set by WithClientKey, or
// the empty string.
func ClientKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(clientKeyContextKey{}).(string)
	return key
}
