package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder implements Recorder using Prometheus client metrics.
type PrometheusRecorder struct {
	requestsTotal   *prometheus.CounterVec
	tokensTotal     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	throttleTotal   *prometheus.CounterVec
	backpressure    *prometheus.CounterVec
	queueWaitTime   *prometheus.HistogramVec
	circuitState    *prometheus.GaugeVec
}

// NewPrometheusRecorder registers a recorder's metrics against reg and
// returns it. Pass prometheus.DefaultRegisterer in production; tests should
// pass a fresh prometheus.NewRegistry() to avoid collisions with other
// recorders in the same process.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netexec_requests_total",
				Help: "Total number of dispatched requests by endpoint and outcome.",
			},
			[]string{"endpoint", "status"},
		),
		tokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netexec_tokens_total",
				Help: "Total tokens consumed by endpoint.",
			},
			[]string{"endpoint"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "netexec_request_duration_seconds",
				Help:    "Duration of dispatched requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		throttleTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netexec_throttle_total",
				Help: "Total number of rate-limit throttling events.",
			},
			[]string{"endpoint", "reason"},
		),
		backpressure: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netexec_backpressure_total",
				Help: "Total number of work-queue backpressure rejections.",
			},
			[]string{"endpoint"},
		),
		queueWaitTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "netexec_queue_wait_duration_seconds",
				Help:    "Time spent waiting for rate-limit availability.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		circuitState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "netexec_circuit_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half_open).",
			},
			[]string{"endpoint"},
		),
	}
}

func (p *PrometheusRecorder) ObserveRequest(endpoint, status string, tokens int, success bool, duration time.Duration) {
	p.requestsTotal.WithLabelValues(endpoint, status).Inc()
	if success {
		p.tokensTotal.WithLabelValues(endpoint).Add(float64(tokens))
	}
	p.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) IncThrottle(endpoint, reason string) {
	p.throttleTotal.WithLabelValues(endpoint, reason).Inc()
}

func (p *PrometheusRecorder) IncBackpressure(endpoint string) {
	p.backpressure.WithLabelValues(endpoint).Inc()
}

func (p *PrometheusRecorder) ObserveQueueWait(endpoint string, duration time.Duration) {
	p.queueWaitTime.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) SetCircuitState(endpoint string, state int) {
	p.circuitState.WithLabelValues(endpoint).Set(float64(state))
}
