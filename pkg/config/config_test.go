package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
executor:
  queue_capacity: 100
  concurrency_limit: 5
  request_rate: 10
  request_period_ms: 1000
  workers: 2
endpoints:
  completions:
    name: completions
    transport_type: http
    base_url: https://api.example.com
    http_config:
      method: POST
  chat:
    name: chat
    transport_type: sdk
    api_key: test-key
    sdk_config:
      sdk_provider_name: openai
      default_sdk_method_name: chat.completions.create
resilience:
  max_retries: 2
  failure_threshold: 3
`

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeSample(t)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 100, cfg.Executor.QueueCapacity)
	require.Len(t, cfg.Endpoints, 2)
	require.Equal(t, "openai", cfg.Endpoints["chat"].SDK.ProviderName)
}

func TestValidateRejectsMissingBaseURL(t *testing.T) {
	cfg := Config{
		Executor: Executor{Workers: 1, QueueCapacity: 1, RequestRate: 1},
		Endpoints: map[string]Endpoint{
			"bad": {TransportType: "http"},
		},
	}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownTransport(t *testing.T) {
	cfg := Config{
		Executor: Executor{Workers: 1, QueueCapacity: 1, RequestRate: 1},
		Endpoints: map[string]Endpoint{
			"bad": {TransportType: "carrier-pigeon"},
		},
	}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroWorkers(t *testing.T) {
	cfg := Config{Executor: Executor{Workers: 0, QueueCapacity: 1, RequestRate: 1}}
	require.Error(t, cfg.Validate())
}
