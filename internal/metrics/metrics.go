// Package metrics defines the Prometheus metrics for the auth service.
// Metrics live in a standalone package so the identity client and the HTTP
// layer can record without importing each other.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests processed",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	ProviderCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_provider_calls_total",
		Help: "Calls to the identity provider by operation and outcome",
	}, []string{"op", "outcome"})

	ProviderCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "identity_provider_call_duration_seconds",
		Help:    "Identity provider call latency",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"op"})

	RateLimitRejectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limit_rejects_total",
		Help: "Requests rejected by rate limiting",
	}, []string{"route"})
)

// Register registers all service metrics on the given registry (default if
// nil). AlreadyRegisteredError is tolerated so tests can call this repeatedly.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ProviderCallsTotal,
		ProviderCallDuration,
		RateLimitRejectsTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// ObserveProviderCall records one identity-provider call.
func ObserveProviderCall(op string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ProviderCallsTotal.WithLabelValues(op, outcome).Inc()
	ProviderCallDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}
