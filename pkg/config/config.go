// Package config loads the YAML configuration describing an executor, its
// endpoints, and their resilience policies.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Executor mirrors the executor construction parameters of §4.11.
type Executor struct {
	QueueCapacity    int     `yaml:"queue_capacity"`
	ConcurrencyLimit int     `yaml:"concurrency_limit"`
	RequestRate      float64 `yaml:"request_rate"`
	RequestPeriodMS  int     `yaml:"request_period_ms"`
	RequestCapacity  float64 `yaml:"request_capacity"`
	TokenRate        float64 `yaml:"token_rate"`
	TokenPeriodMS    int     `yaml:"token_period_ms"`
	TokenCapacity    float64 `yaml:"token_capacity"`
	Workers          int     `yaml:"workers"`
}

// HTTP mirrors endpoint.HTTPConfig.
type HTTP struct {
	Method string `yaml:"method"`
}

// SDK mirrors endpoint.SDKConfig.
type SDK struct {
	ProviderName      string         `yaml:"sdk_provider_name"`
	DefaultMethodName string         `yaml:"default_sdk_method_name"`
	ProviderConfig    map[string]any `yaml:"provider_config"`
}

// Endpoint mirrors endpoint.Config.
type Endpoint struct {
	Name                 string            `yaml:"name"`
	TransportType        string            `yaml:"transport_type"`
	BaseURL              string            `yaml:"base_url"`
	APIKey               string            `yaml:"api_key"`
	TimeoutSeconds       float64           `yaml:"timeout"`
	DefaultHeaders       map[string]string `yaml:"default_headers"`
	ClientKwargs         map[string]any    `yaml:"client_kwargs"`
	DefaultRequestKwargs map[string]any    `yaml:"default_request_kwargs"`
	HTTP                 *HTTP             `yaml:"http_config"`
	SDK                  *SDK              `yaml:"sdk_config"`
}

// Resilience configures retry and circuit-breaker defaults applied by the facade.
type Resilience struct {
	MaxRetries        int     `yaml:"max_retries"`
	BaseDelayMS       int     `yaml:"base_delay_ms"`
	MaxDelayMS        int     `yaml:"max_delay_ms"`
	BackoffFactor     float64 `yaml:"backoff_factor"`
	JitterFactor      float64 `yaml:"jitter_factor"`
	FailureThreshold  int     `yaml:"failure_threshold"`
	RecoveryTimeoutMS int     `yaml:"recovery_timeout_ms"`
	HalfOpenMaxCalls  int     `yaml:"half_open_max_calls"`
}

// Config is the top-level configuration document.
type Config struct {
	Executor   Executor            `yaml:"executor"`
	Endpoints  map[string]Endpoint `yaml:"endpoints"`
	Resilience Resilience          `yaml:"resilience"`
}

// Load reads and parses a YAML config file, then validates it.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural invariants across the document.
func (c Config) Validate() error {
	if c.Executor.Workers <= 0 {
		return fmt.Errorf("config: executor.workers must be positive")
	}
	if c.Executor.QueueCapacity <= 0 {
		return fmt.Errorf("config: executor.queue_capacity must be positive")
	}
	if c.Executor.RequestRate <= 0 {
		return fmt.Errorf("config: executor.request_rate must be positive")
	}

	for name, ep := range c.Endpoints {
		switch ep.TransportType {
		case "http":
			if ep.BaseURL == "" {
				return fmt.Errorf("config: endpoint %q: http transport requires base_url", name)
			}
		case "sdk":
			if ep.SDK == nil || ep.SDK.ProviderName == "" {
				return fmt.Errorf("config: endpoint %q: sdk transport requires sdk_config.sdk_provider_name", name)
			}
		default:
			return fmt.Errorf("config: endpoint %q: unsupported transport_type %q", name, ep.TransportType)
		}
	}
	return nil
}
