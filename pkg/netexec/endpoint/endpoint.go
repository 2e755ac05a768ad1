// Package endpoint binds a validated transport configuration to a lazily
// constructed, cached client.
package endpoint

import (
	"context"
	"fmt"
	"sync"
	"time"

	"netexec/internal/sdkadapter"
	"netexec/pkg/neterr"
	"netexec/pkg/netexec/transport"
)

// TransportType discriminates between the two client families an endpoint can bind to.
type TransportType string

const (
	TransportHTTP TransportType = "http"
	TransportSDK  TransportType = "sdk"
)

// HTTPConfig configures an http-transport endpoint.
type HTTPConfig struct {
	Method string // default request method, e.g. "POST"
}

// SDKConfig configures an sdk-transport endpoint.
type SDKConfig struct {
	ProviderName      string
	DefaultMethodName string
	ProviderConfig    map[string]any
}

// Config fully describes an endpoint's binding, mirroring the external
// construction interface.
type Config struct {
	Name                 string
	TransportType        TransportType
	BaseURL              string
	APIKey               string
	Timeout              time.Duration
	DefaultHeaders       map[string]string
	ClientKwargs         map[string]any
	DefaultRequestKwargs map[string]any
	HTTP                 *HTTPConfig
	SDK                  *SDKConfig
}

// Validate checks the endpoint config for the discriminant-specific required fields.
func (c Config) Validate() error {
	switch c.TransportType {
	case TransportHTTP:
		if c.BaseURL == "" {
			return fmt.Errorf("endpoint %q: http transport requires base_url", c.Name)
		}
	case TransportSDK:
		if c.SDK == nil || c.SDK.ProviderName == "" {
			return fmt.Errorf("endpoint %q: sdk transport requires sdk_config.sdk_provider_name", c.Name)
		}
	default:
		return fmt.Errorf("endpoint %q: %w: %q", c.Name, neterr.ErrUnsupportedTransport, c.TransportType)
	}
	return nil
}

// Endpoint holds a validated config and lazily constructs, then caches, its
// underlying client. Concurrent first-time GetHTTPClient/GetSDKAdapter calls
// construct exactly one client.
type Endpoint struct {
	cfg Config

	mu     sync.Mutex
	http   *transport.HTTPClient
	sdk    sdkadapter.Adapter
	closed bool
}

// New validates cfg and returns a new, not-yet-connected endpoint.
func New(cfg Config) (*Endpoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Endpoint{cfg: cfg}, nil
}

// Config returns the endpoint's configuration.
func (e *Endpoint) Config() Config {
	return e.cfg
}

// GetHTTPClient returns the cached HTTP client, constructing it on first call.
func (e *Endpoint) GetHTTPClient() (*transport.HTTPClient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, neterr.ErrEndpointClosed
	}
	if e.cfg.TransportType != TransportHTTP {
		return nil, fmt.Errorf("endpoint %q: not an http endpoint", e.cfg.Name)
	}
	if e.http == nil {
		e.http = transport.NewHTTPClient(e.cfg.BaseURL, e.cfg.Timeout, e.cfg.DefaultHeaders)
	}
	return e.http, nil
}

// GetSDKAdapter returns the cached SDK adapter, constructing it on first call.
func (e *Endpoint) GetSDKAdapter() (sdkadapter.Adapter, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, neterr.ErrEndpointClosed
	}
	if e.cfg.TransportType != TransportSDK {
		return nil, fmt.Errorf("endpoint %q: not an sdk endpoint", e.cfg.Name)
	}
	if e.sdk == nil {
		providerConfig := make(map[string]any, len(e.cfg.SDK.ProviderConfig)+1)
		for k, v := range e.cfg.SDK.ProviderConfig {
			providerConfig[k] = v
		}
		if e.cfg.APIKey != "" {
			providerConfig["api_key"] = e.cfg.APIKey
		}
		adapter, err := sdkadapter.Build(e.cfg.SDK.ProviderName, providerConfig)
		if err != nil {
			return nil, err
		}
		e.sdk = adapter
	}
	return e.sdk, nil
}

// Close releases the underlying client, preferring the client's own Close
// method, and marks the endpoint closed. Further GetHTTPClient and
// GetSDKAdapter calls fail.
// Idempotent.
func (e *Endpoint) Close(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var err error
	if e.http != nil {
		err = e.http.Close()
	}
	if e.sdk != nil {
		if sdkErr := e.sdk.Close(); sdkErr != nil && err == nil {
			err = sdkErr
		}
	}
	return err
}
