// Copyright 2025 Saisongs Contributors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsNotFound(t *testing.T) {
	require.True(t, IsNotFound(ErrNotFound))
	require.True(t, IsNotFound(fmt.Errorf("get song: %w", ErrNotFound)))
	require.True(t, IsNotFound(&RequestError{StatusCode: 404}))
	require.False(t, IsNotFound(&RequestError{StatusCode: 500}))
	require.False(t, IsNotFound(errors.New("boom")))
	require.False(t, IsNotFound(nil))
}

func TestRequestErrorMessage(t *testing.T) {
	require.Equal(t, "catalog: server returned status 422: title required",
		(&RequestError{StatusCode: 422, Message: "title required"}).Error())
	require.Equal(t, "catalog: server returned status 500",
		(&RequestError{StatusCode: 500}).Error())
}
