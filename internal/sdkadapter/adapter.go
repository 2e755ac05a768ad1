// Package sdkadapter multiplexes several vendor SDKs behind one dotted
// method-path call contract, so the facade can dispatch to any configured
// provider without knowing its concrete client type.
package sdkadapter

import (
	"context"
	"fmt"
	"strings"
)

// Adapter is the uniform contract an sdk-discriminant endpoint dispatches
// through. methodPath is a dotted name (e.g. "messages.create") naming the
// vendor operation to invoke; kwargs are merged from the endpoint's default
// request kwargs and the invocation payload.
type Adapter interface {
	Call(ctx context.Context, methodPath string, kwargs map[string]any) (any, error)
	Close() error
}

// Constructor builds an Adapter from a provider-specific config map. Config
// keys are provider-defined; common ones are "api_key" and "base_url".
type Constructor func(config map[string]any) (Adapter, error)

var registry = map[string]Constructor{}

// Register adds a provider constructor to the registry, keyed
// case-insensitively. Called from each provider sub-package's init.
func Register(providerName string, ctor Constructor) {
	registry[normalizeProviderName(providerName)] = ctor
}

// Build resolves a provider by name (case-insensitively) and constructs an
// adapter from config. Unknown provider names are a construction error.
func Build(providerName string, config map[string]any) (Adapter, error) {
	ctor, ok := registry[normalizeProviderName(providerName)]
	if !ok {
		return nil, fmt.Errorf("sdkadapter: unknown provider %q", providerName)
	}
	return ctor(config)
}

func normalizeProviderName(providerName string) string {
	return strings.ToLower(providerName)
}

// configString reads a string config key, returning "" if absent or wrong type.
func configString(config map[string]any, key string) string {
	v, ok := config[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
