// File: internal/infra/metrics/metrics.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harness_http_requests_total",
			Help: "Requests issued against the target service per endpoint/outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	pollAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harness_poll_attempts_total",
			Help: "Bounded polling attempts per loop (auth readiness, call status).",
		},
		[]string{"loop"},
	)

	steps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harness_steps_total",
			Help: "Flow step results per step/outcome.",
		},
		[]string{"step", "outcome"},
	)
)

// Register registers all harness collectors exactly once.
func Register(reg prometheus.Registerer) {
	once.Do(func() {
		reg.MustRegister(httpRequests, pollAttempts, steps)
	})
}

func IncHTTPRequest(endpoint, outcome string) {
	httpRequests.WithLabelValues(endpoint, outcome).Inc()
}

func IncPollAttempt(loop string) {
	pollAttempts.WithLabelValues(loop).Inc()
}

func IncStep(step, outcome string) {
	steps.WithLabelValues(step, outcome).Inc()
}
