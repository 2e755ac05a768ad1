// Command netexec-demo loads a config file, wires an executor and an
// endpoint for the configured entry named by -endpoint, and dispatches a
// single demo invocation against it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	_ "netexec/internal/sdkadapter/anthropic"
	_ "netexec/internal/sdkadapter/google"
	_ "netexec/internal/sdkadapter/ollama"
	_ "netexec/internal/sdkadapter/openai"

	"netexec/pkg/config"
	"netexec/pkg/logx"
	"netexec/pkg/netexec/circuit"
	"netexec/pkg/netexec/endpoint"
	"netexec/pkg/netexec/executor"
	"netexec/pkg/netexec/facade"
	"netexec/pkg/netexec/metrics"
	"netexec/pkg/netexec/retry"
)

func main() {
	configPath := flag.String("config", "", "path to the netexec config YAML")
	endpointName := flag.String("endpoint", "", "endpoint name to dispatch the demo invocation to")
	httpPath := flag.String("http-path", "", "HTTP path for http-transport endpoints")
	flag.Parse()

	if *configPath == "" || *endpointName == "" {
		fmt.Fprintln(os.Stderr, "usage: netexec-demo -config <path> -endpoint <name> [-http-path <path>]")
		os.Exit(1)
	}

	log := logx.NewLogger("netexec-demo")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("loading config: %v", err)
		os.Exit(1)
	}

	epCfg, ok := cfg.Endpoints[*endpointName]
	if !ok {
		log.Error("no endpoint named %q in config", *endpointName)
		os.Exit(1)
	}

	ep, err := endpoint.New(toEndpointConfig(epCfg))
	if err != nil {
		log.Error("constructing endpoint: %v", err)
		os.Exit(1)
	}
	defer ep.Close(context.Background())

	recorder := metrics.NewPrometheusRecorder(prometheus.DefaultRegisterer)

	exec, err := executor.New(executor.Config{
		QueueCapacity:    cfg.Executor.QueueCapacity,
		ConcurrencyLimit: cfg.Executor.ConcurrencyLimit,
		RequestRate:      cfg.Executor.RequestRate,
		RequestPeriod:    time.Duration(cfg.Executor.RequestPeriodMS) * time.Millisecond,
		RequestCapacity:  cfg.Executor.RequestCapacity,
		TokenRate:        cfg.Executor.TokenRate,
		TokenPeriod:      time.Duration(cfg.Executor.TokenPeriodMS) * time.Millisecond,
		TokenCapacity:    cfg.Executor.TokenCapacity,
		Workers:          cfg.Executor.Workers,
		Recorder:         recorder,
		Logger:           logx.NewLogger("executor." + *endpointName),
		EndpointKey:      *endpointName,
	})
	if err != nil {
		log.Error("constructing executor: %v", err)
		os.Exit(1)
	}
	exec.Start()
	defer exec.Stop(true)

	var opts []facade.Option
	if cfg.Resilience.FailureThreshold > 0 {
		opts = append(opts, facade.WithCircuitBreaker(circuit.New(circuit.Config{
			FailureThreshold: cfg.Resilience.FailureThreshold,
			RecoveryTimeout:  time.Duration(cfg.Resilience.RecoveryTimeoutMS) * time.Millisecond,
			HalfOpenMaxCalls: cfg.Resilience.HalfOpenMaxCalls,
		})))
	}
	if cfg.Resilience.MaxRetries > 0 {
		opts = append(opts, facade.WithRetry(retry.Config{
			MaxRetries:    cfg.Resilience.MaxRetries,
			BaseDelay:     time.Duration(cfg.Resilience.BaseDelayMS) * time.Millisecond,
			MaxDelay:      time.Duration(cfg.Resilience.MaxDelayMS) * time.Millisecond,
			BackoffFactor: cfg.Resilience.BackoffFactor,
			JitterFactor:  cfg.Resilience.JitterFactor,
		}))
	}

	f := facade.New(ep, exec, opts...)

	ev, err := f.Invoke(map[string]any{"prompt": "hello from netexec-demo"}, facade.InvokeOptions{
		HTTPPath: *httpPath,
	})
	if err != nil {
		log.Error("invoke failed synchronously: %v", err)
		os.Exit(1)
	}

	log.Info("submitted request %s, waiting for completion", ev.ID())
	for !ev.IsTerminal() {
		time.Sleep(10 * time.Millisecond)
	}

	log.Info("request %s finished with status %s", ev.ID(), ev.Status())
	for _, entry := range ev.Logs() {
		fmt.Printf("[%s] %s\n", entry.Timestamp.Format(time.RFC3339), entry.Message)
	}
}

func toEndpointConfig(c config.Endpoint) endpoint.Config {
	out := endpoint.Config{
		Name:                 c.Name,
		TransportType:        endpoint.TransportType(c.TransportType),
		BaseURL:              c.BaseURL,
		APIKey:               c.APIKey,
		Timeout:              time.Duration(c.TimeoutSeconds * float64(time.Second)),
		DefaultHeaders:       c.DefaultHeaders,
		ClientKwargs:         c.ClientKwargs,
		DefaultRequestKwargs: c.DefaultRequestKwargs,
	}
	if c.HTTP != nil {
		out.HTTP = &endpoint.HTTPConfig{Method: c.HTTP.Method}
	}
	if c.SDK != nil {
		out.SDK = &endpoint.SDKConfig{
			ProviderName:      c.SDK.ProviderName,
			DefaultMethodName: c.SDK.DefaultMethodName,
			ProviderConfig:    c.SDK.ProviderConfig,
		}
	}
	return out
}
