package circuit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"netexec/pkg/neterr"
)

func TestTripsAfterFailureThreshold(t *testing.T) {
	b := New(Config{FailureThreshold: 2, RecoveryTimeout: 200 * time.Millisecond})

	err := b.Execute(func() error { return errors.New("connect error") })
	require.Error(t, err)
	require.Equal(t, Closed, b.GetState())

	err = b.Execute(func() error { return errors.New("connect error") })
	require.Error(t, err)
	require.Equal(t, Open, b.GetState())

	called := false
	err = b.Execute(func() error { called = true; return nil })
	require.ErrorIs(t, err, neterr.ErrCircuitOpen)
	require.False(t, called)
}

func TestRecoversThroughHalfOpen(t *testing.T) {
	b := New(Config{FailureThreshold: 2, RecoveryTimeout: 100 * time.Millisecond})
	b.Execute(func() error { return errors.New("x") })
	b.Execute(func() error { return errors.New("x") })
	require.Equal(t, Open, b.GetState())

	time.Sleep(150 * time.Millisecond)

	err := b.Execute(func() error { return nil })
	require.NoError(t, err)
	require.Equal(t, Closed, b.GetState())
}

func TestHalfOpenSingleFailureReopens(t *testing.T) {
	b := New(Config{FailureThreshold: 1, RecoveryTimeout: 50 * time.Millisecond})
	b.Execute(func() error { return errors.New("x") })
	require.Equal(t, Open, b.GetState())

	time.Sleep(60 * time.Millisecond)
	err := b.Execute(func() error { return errors.New("still failing") })
	require.Error(t, err)
	require.Equal(t, Open, b.GetState())
}

func TestHalfOpenAdmissionCap(t *testing.T) {
	b := New(Config{FailureThreshold: 1, RecoveryTimeout: 10 * time.Millisecond, HalfOpenMaxCalls: 1})
	b.Execute(func() error { return errors.New("x") })
	time.Sleep(15 * time.Millisecond)

	require.True(t, b.Allow())
	require.False(t, b.Allow())
}

func TestExcludedErrorDoesNotCountAsFailure(t *testing.T) {
	notFound := neterr.New(neterr.KindNotFound, "missing")
	b := New(Config{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Hour,
		Exclude: func(err error) bool {
			return neterr.Is(err, neterr.KindNotFound)
		},
	})

	err := b.Execute(func() error { return notFound })
	require.ErrorIs(t, err, notFound)
	require.Equal(t, Closed, b.GetState())

	err = b.Execute(func() error { return errors.New("connect error") })
	require.Error(t, err)
	require.Equal(t, Open, b.GetState())
}

func TestResetForcesClosed(t *testing.T) {
	b := New(Config{FailureThreshold: 1, RecoveryTimeout: time.Hour})
	b.Execute(func() error { return errors.New("x") })
	require.Equal(t, Open, b.GetState())

	b.Reset()
	require.Equal(t, Closed, b.GetState())
}
