package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Authentication Prometheus metrics. Defined in a standalone package so both
// services and handlers can record them without import cycles.

var (
	AuthAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_attempts_total",
		Help: "Authentication attempts by operation and outcome",
	}, []string{"operation", "outcome"}) // operation: register|login|refresh|google, outcome: success|failure

	IdentityProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "identity_provider_request_duration_seconds",
		Help:    "Latency of outbound identity provider calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	IdentitySyncTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "identity_sync_total",
		Help: "Local identity records recreated from provider lookups",
	})
)

// RegisterAuth registers the auth metrics on the given registry (or default if nil).
func RegisterAuth(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{AuthAttemptsTotal, IdentityProviderRequestDuration, IdentitySyncTotal}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// RecordAuthAttempt increments the attempt counter for an auth operation.
func RecordAuthAttempt(operation string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	AuthAttemptsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordIdentitySync increments the sync counter.
func RecordIdentitySync() {
	IdentitySyncTotal.Inc()
}
