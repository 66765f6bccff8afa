// Package metrics defines the custom Prometheus metrics of the identity API.
// It is the single source of truth for metric names, labels and help strings.
//
// Metrics are registered with promauto against the Registerer handed to New,
// so they are exposed by whichever Gatherer serves /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// Metrics holds the service counters. A nil *Metrics records nothing.
type Metrics struct {
	// operations counts completed account operations.
	// Labels:
	//   - operation: "register", "fetch_one", "list_all" or "remove"
	//   - outcome: the canonical outcome name (e.g. "CREATED", "ACCESS_DENIED")
	operations *prometheus.CounterVec

	// accessDenied counts decisions that refused an operation.
	accessDenied *prometheus.CounterVec

	// authFailures counts rejected credentials, by scheme: "basic",
	// "bearer" or "unsupported".
	authFailures *prometheus.CounterVec
}

// New creates the counters and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		operations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of account operations, by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		accessDenied: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "access_denied_total",
				Help:      "Total number of operations refused by the access decision point.",
			},
			[]string{"operation"},
		),
		authFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authentication_failures_total",
				Help:      "Total number of requests whose credentials could not be verified.",
			},
			[]string{"scheme"},
		),
	}
}

// Operation records one finished operation and, for ACCESS_DENIED, the denial.
func (m *Metrics) Operation(operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	if outcome == "ACCESS_DENIED" {
		m.accessDenied.WithLabelValues(operation).Inc()
	}
}

// AuthFailure records rejected credentials for scheme.
func (m *Metrics) AuthFailure(scheme string) {
	if m == nil {
		return
	}
	m.authFailures.WithLabelValues(scheme).Inc()
}
