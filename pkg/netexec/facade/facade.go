// Package facade exposes the single invoke entry point callers use to
// dispatch a request payload to an endpoint through an executor, wrapping
// the transport-specific dispatch rules of an HTTP or SDK endpoint.
package facade

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"netexec/pkg/logx"
	"netexec/pkg/neterr"
	"netexec/pkg/netexec/circuit"
	"netexec/pkg/netexec/endpoint"
	"netexec/pkg/netexec/event"
	"netexec/pkg/netexec/executor"
	"netexec/pkg/netexec/retry"
)

// Facade binds one endpoint to one executor and dispatches invocations
// between them.
type Facade struct {
	endpoint *endpoint.Endpoint
	executor *executor.Executor
	breaker  *circuit.Breaker
	retryCfg *retry.Config
	logger   *logx.Logger
}

// Option configures optional resilience layered around the transport call.
type Option func(*Facade)

// WithCircuitBreaker wraps every dispatched call with the given breaker.
func WithCircuitBreaker(b *circuit.Breaker) Option {
	return func(f *Facade) { f.breaker = b }
}

// WithRetry wraps every dispatched call with the given retry policy.
func WithRetry(cfg retry.Config) Option {
	return func(f *Facade) { f.retryCfg = &cfg }
}

// New binds an endpoint and executor into a facade.
func New(ep *endpoint.Endpoint, exec *executor.Executor, opts ...Option) *Facade {
	f := &Facade{endpoint: ep, executor: exec, logger: logx.NewLogger("facade")}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// InvokeOptions carries the per-call overrides accepted by Invoke.
type InvokeOptions struct {
	HTTPPath      string
	HTTPMethod    string
	SDKMethodName string
	TokensNeeded  int
	Metadata      map[string]any
	ExtraKwargs   map[string]any
}

var getMethods = map[string]bool{http.MethodGet: true, http.MethodHead: true}

// Invoke dispatches requestPayload to the bound endpoint through the bound
// executor, returning the request's lifecycle event. Configuration and
// lifecycle errors (unsupported transport, endpoint closed) are surfaced
// synchronously; transport errors are only observable on the returned event.
func (f *Facade) Invoke(requestPayload any, opts InvokeOptions) (*event.Event, error) {
	cfg := f.endpoint.Config()

	var closure executor.Closure
	var descriptor event.Descriptor

	switch cfg.TransportType {
	case endpoint.TransportHTTP:
		c, err := f.buildHTTPClosure(requestPayload, opts)
		if err != nil {
			return nil, err
		}
		closure = c
		method := opts.HTTPMethod
		if method == "" && cfg.HTTP != nil {
			method = cfg.HTTP.Method
		}
		if method == "" {
			method = http.MethodPost
		}
		descriptor = event.Descriptor{
			EndpointURL:  strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(opts.HTTPPath, "/"),
			Method:       method,
			Payload:      requestPayload,
			TokensNeeded: opts.TokensNeeded,
		}
	case endpoint.TransportSDK:
		c, methodName, err := f.buildSDKClosure(requestPayload, opts)
		if err != nil {
			return nil, err
		}
		closure = c
		descriptor = event.Descriptor{
			EndpointURL:  fmt.Sprintf("sdk://%s/%s", cfg.SDK.ProviderName, methodName),
			Method:       "SDK_CALL",
			Payload:      requestPayload,
			TokensNeeded: opts.TokensNeeded,
		}
	default:
		return nil, fmt.Errorf("facade: %w: %q", neterr.ErrUnsupportedTransport, cfg.TransportType)
	}

	closure = f.wrapResilience(closure)

	return f.executor.Submit(closure, descriptor, opts.Metadata)
}

func (f *Facade) buildHTTPClosure(payload any, opts InvokeOptions) (executor.Closure, error) {
	client, err := f.endpoint.GetHTTPClient()
	if err != nil {
		return nil, err
	}
	cfg := f.endpoint.Config()

	method := opts.HTTPMethod
	if method == "" && cfg.HTTP != nil {
		method = cfg.HTTP.Method
	}
	if method == "" {
		method = http.MethodPost
	}
	method = strings.ToUpper(method)

	var params map[string]string
	var body any
	if getMethods[method] {
		params = flattenToStringMap(payload)
	} else {
		body = payload
	}

	headers := map[string]string{}
	for k, v := range cfg.DefaultHeaders {
		headers[k] = v
	}

	return func(ctx context.Context) (int, map[string]string, any, error) {
		status, respHeaders, respBody, err := client.Request(ctx, method, opts.HTTPPath, params, body, headers)
		if err != nil {
			return 0, nil, nil, err
		}
		flatHeaders := make(map[string]string, len(respHeaders))
		for k := range respHeaders {
			flatHeaders[k] = respHeaders.Get(k)
		}
		return status, flatHeaders, respBody, nil
	}, nil
}

func (f *Facade) buildSDKClosure(payload any, opts InvokeOptions) (executor.Closure, string, error) {
	adapter, err := f.endpoint.GetSDKAdapter()
	if err != nil {
		return nil, "", err
	}
	cfg := f.endpoint.Config()

	methodName := opts.SDKMethodName
	if methodName == "" && cfg.SDK != nil {
		methodName = cfg.SDK.DefaultMethodName
	}

	kwargs := map[string]any{}
	for k, v := range cfg.DefaultRequestKwargs {
		kwargs[k] = v
	}
	for k, v := range opts.ExtraKwargs {
		kwargs[k] = v
	}

	if mapping, ok := payload.(map[string]any); ok {
		for k, v := range mapping {
			kwargs[k] = v
		}
	} else if payload != nil {
		f.logger.Warn("sdk payload is not a map[string]any (got %T); passing as a single positional-equivalent argument", payload)
		kwargs["_positional"] = payload
	}

	return func(ctx context.Context) (int, map[string]string, any, error) {
		result, err := adapter.Call(ctx, methodName, kwargs)
		if err != nil {
			return 0, nil, nil, err
		}
		// SDK success paths synthesize status 200 and empty headers rather
		// than discarding vendor response metadata the adapter didn't
		// surface in the first place.
		return 200, map[string]string{}, result, nil
	}, methodName, nil
}

func (f *Facade) wrapResilience(closure executor.Closure) executor.Closure {
	wrapped := closure

	if f.retryCfg != nil {
		inner := wrapped
		cfg := *f.retryCfg
		wrapped = func(ctx context.Context) (int, map[string]string, any, error) {
			var status int
			var headers map[string]string
			var body any
			err := retry.Do(cfg, func() error {
				var innerErr error
				status, headers, body, innerErr = inner(ctx)
				return innerErr
			})
			return status, headers, body, err
		}
	}

	if f.breaker != nil {
		inner := wrapped
		breaker := f.breaker
		wrapped = func(ctx context.Context) (int, map[string]string, any, error) {
			if !breaker.Allow() {
				return 0, nil, nil, neterr.ErrCircuitOpen
			}
			status, headers, body, err := inner(ctx)
			breaker.Record(err)
			return status, headers, body, err
		}
	}

	return wrapped
}

func flattenToStringMap(payload any) map[string]string {
	mapping, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(mapping))
	for k, v := range mapping {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}
