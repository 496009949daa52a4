// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package offqueue

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"

	"github.com/srse369/saisongs-sub005/catalog"
)

// Connectivity is the host's online/offline signal. The queue never probes
// the network itself; the embedding application supplies whatever signal the
// platform offers.
type Connectivity interface {
	Online() bool
}

// ConnectivityFunc adapts a plain function to Connectivity.
type ConnectivityFunc func() bool

func (f ConnectivityFunc) Online() bool { return f() }

// AlwaysOnline is a Connectivity for environments with no offline signal.
var AlwaysOnline Connectivity = ConnectivityFunc(func() bool { return true })

// IsNetworkError classifies err as transport-level (connection refused/reset,
// DNS failure, timeout) as opposed to an application-level rejection. Only
// network-classified errors are eligible for queuing; a validation or
// business-rule rejection must surface to the user immediately, since
// queuing it would mask a bug and replay it fruitlessly.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	// Application-level rejections are never network errors, whatever they wrap.
	var reqErr *catalog.RequestError
	if errors.As(err, &reqErr) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH),
		errors.Is(err, syscall.ENETDOWN):
		return true
	}
	return false
}

// IsOfflineError reports whether a failed mutation should be queued for later
// replay: either the host says it is offline, or the error itself is
// transport-level.
func IsOfflineError(conn Connectivity, err error) bool {
	if conn != nil && !conn.Online() {
		return true
	}
	return IsNetworkError(err)
}
