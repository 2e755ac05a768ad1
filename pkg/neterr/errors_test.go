package neterr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassification(t *testing.T) {
	err := WithStatus(KindRateLimit, 429, "too many requests")
	require.True(t, Is(err, KindRateLimit))
	require.Equal(t, KindRateLimit, TypeOf(err))
	require.False(t, Is(err, KindAuth))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(KindConnection, cause, "dial failed")
	require.True(t, errors.Is(err, cause))
}

func TestTypeOfUnclassified(t *testing.T) {
	require.Equal(t, KindUnknown, TypeOf(errors.New("plain")))
}

func TestErrorString(t *testing.T) {
	err := New(KindTimeout, "deadline exceeded")
	require.Contains(t, err.Error(), "timeout")

	wrapped := fmt.Errorf("submit failed: %w", err)
	require.True(t, Is(wrapped, KindTimeout))
}
