package sdkadapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeAdapter struct{ closed bool }

func (f *fakeAdapter) Call(ctx context.Context, methodPath string, kwargs map[string]any) (any, error) {
	return map[string]any{"method": methodPath}, nil
}

func (f *fakeAdapter) Close() error {
	f.closed = true
	return nil
}

func TestBuildUnknownProviderErrors(t *testing.T) {
	_, err := Build("does-not-exist", nil)
	require.Error(t, err)
}

func TestRegisterAndBuild(t *testing.T) {
	Register("fake-test-provider", func(config map[string]any) (Adapter, error) {
		return &fakeAdapter{}, nil
	})

	adapter, err := Build("fake-test-provider", map[string]any{"api_key": "k"})
	require.NoError(t, err)

	result, err := adapter.Call(context.Background(), "do.thing", nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"method": "do.thing"}, result)
}

func TestBuildIsCaseInsensitive(t *testing.T) {
	Register("Fake-Mixed-Case", func(config map[string]any) (Adapter, error) {
		return &fakeAdapter{}, nil
	})

	adapter, err := Build("fake-mixed-case", nil)
	require.NoError(t, err)
	require.NotNil(t, adapter)

	adapter, err = Build("FAKE-MIXED-CASE", nil)
	require.NoError(t, err)
	require.NotNil(t, adapter)
}

func TestConfigStringHelper(t *testing.T) {
	require.Equal(t, "v", configString(map[string]any{"k": "v"}, "k"))
	require.Equal(t, "", configString(map[string]any{"k": 5}, "k"))
	require.Equal(t, "", configString(nil, "k"))
}
