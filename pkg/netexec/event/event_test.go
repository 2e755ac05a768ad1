package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLifecycleHappyPath(t *testing.T) {
	e := New(Descriptor{EndpointURL: "https://example.test/v1/chat", Method: "POST"}, nil)
	require.Equal(t, StatusPending, e.Status())
	require.NotEmpty(t, e.ID())
	require.False(t, e.Timing().CreatedAt.IsZero())

	e.UpdateStatus(StatusQueued)
	e.UpdateStatus(StatusProcessing)
	e.UpdateStatus(StatusCalling)
	e.SetResult(200, map[string]string{"content-type": "application/json"}, map[string]any{"ok": true})

	require.Equal(t, StatusCompleted, e.Status())
	require.True(t, e.IsTerminal())
	require.Equal(t, 200, e.Result().StatusCode)

	timing := e.Timing()
	require.False(t, timing.QueuedAt.IsZero())
	require.False(t, timing.ProcessingStartedAt.IsZero())
	require.False(t, timing.CallStartedAt.IsZero())
	require.False(t, timing.CompletedAt.IsZero())
}

func TestTimestampsSetOnce(t *testing.T) {
	e := New(Descriptor{}, nil)
	e.UpdateStatus(StatusQueued)
	first := e.Timing().QueuedAt

	e.UpdateStatus(StatusQueued)
	require.Equal(t, first, e.Timing().QueuedAt)
}

func TestSetErrorTransitionsToFailed(t *testing.T) {
	e := New(Descriptor{}, nil)
	e.UpdateStatus(StatusQueued)
	e.UpdateStatus(StatusProcessing)
	e.SetError("timeout", "deadline exceeded", "")

	require.Equal(t, StatusFailed, e.Status())
	require.True(t, e.IsTerminal())
	require.Equal(t, "timeout", e.Err().Kind)
}

func TestCancelBeforeCalling(t *testing.T) {
	e := New(Descriptor{}, nil)
	e.UpdateStatus(StatusQueued)
	e.Cancel("submitter gave up")

	require.Equal(t, StatusCancelled, e.Status())
	require.True(t, e.IsTerminal())
}

func TestLogIsAppendOnly(t *testing.T) {
	e := New(Descriptor{}, nil)
	e.AddLog("custom note %d", 1)
	e.UpdateStatus(StatusQueued)

	logs := e.Logs()
	require.Len(t, logs, 2)
	require.Contains(t, logs[0].Message, "custom note 1")
	require.Contains(t, logs[1].Message, "status changed")
}

func TestMetadataDefaultsToEmptyMap(t *testing.T) {
	e := New(Descriptor{}, nil)
	require.NotNil(t, e.Metadata())
	require.Empty(t, e.Metadata())
}
