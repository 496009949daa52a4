// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package restapi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT claim set the saisongs API expects: the user in the
// standard sub claim plus a device id.
type Claims struct {
	DeviceID string `json:"did"`
	jwt.RegisteredClaims
}

// TokenSource mints HS256 bearer tokens for a single user/device pair and
// caches each token until shortly before expiry. Its Token method satisfies
// TokenFunc.
type TokenSource struct {
	secret   []byte
	userID   string
	deviceID string
	expiry   time.Duration

	mu        sync.Mutex
	cached    string
	expiresAt time.Time
}

// NewTokenSource creates a token source. expiry <= 0 defaults to 24h.
func NewTokenSource(secret, userID, deviceID string, expiry time.Duration) *TokenSource {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &TokenSource{
		secret:   []byte(secret),
		userID:   userID,
		deviceID: deviceID,
		expiry:   expiry,
	}
}

// Token returns a cached token, re-minting when within a minute of expiry.
func (ts *TokenSource) Token(_ context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := time.Now()
	if ts.cached != "" && now.Before(ts.expiresAt.Add(-time.Minute)) {
		return ts.cached, nil
	}

	expiresAt := now.Add(ts.expiry)
	claims := &Claims{
		DeviceID: ts.deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "saisongs",
			Subject:   ts.userID,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	ts.cached = token
	ts.expiresAt = expiresAt
	return token, nil
}

// ParseToken validates a token produced by a TokenSource with the same
// secret and returns its claims. Used by tests and local tooling.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("missing sub (user id) in token")
	}
	return claims, nil
}
