package endpoint

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"netexec/internal/sdkadapter"
)

type countingAdapter struct{}

func (countingAdapter) Call(ctx context.Context, methodPath string, kwargs map[string]any) (any, error) {
	return nil, nil
}
func (countingAdapter) Close() error { return nil }

func TestValidateRequiresBaseURLForHTTP(t *testing.T) {
	_, err := New(Config{Name: "a", TransportType: TransportHTTP})
	require.Error(t, err)
}

func TestValidateRequiresSDKConfigForSDK(t *testing.T) {
	_, err := New(Config{Name: "a", TransportType: TransportSDK})
	require.Error(t, err)
}

func TestValidateRejectsUnknownTransport(t *testing.T) {
	_, err := New(Config{Name: "a", TransportType: "carrier-pigeon"})
	require.Error(t, err)
}

func TestGetHTTPClientCachesInstance(t *testing.T) {
	e, err := New(Config{Name: "a", TransportType: TransportHTTP, BaseURL: "https://example.test"})
	require.NoError(t, err)

	c1, err := e.GetHTTPClient()
	require.NoError(t, err)
	c2, err := e.GetHTTPClient()
	require.NoError(t, err)
	require.Same(t, c1, c2)
}

func TestConcurrentFirstGetClientConstructsOnce(t *testing.T) {
	var constructions int32
	sdkadapter.Register("endpoint-test-provider", func(config map[string]any) (sdkadapter.Adapter, error) {
		atomic.AddInt32(&constructions, 1)
		return countingAdapter{}, nil
	})

	e, err := New(Config{
		Name: "a", TransportType: TransportSDK,
		SDK: &SDKConfig{ProviderName: "endpoint-test-provider"},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.GetSDKAdapter()
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, atomic.LoadInt32(&constructions))
}

func TestCloseIsIdempotentAndRejectsFurtherUse(t *testing.T) {
	e, err := New(Config{Name: "a", TransportType: TransportHTTP, BaseURL: "https://example.test"})
	require.NoError(t, err)

	require.NoError(t, e.Close(context.Background()))
	require.NoError(t, e.Close(context.Background()))

	_, err = e.GetHTTPClient()
	require.Error(t, err)
}
