// Package metrics exposes prometheus instruments for the session core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var Module = fx.Provide(New)

// Metrics counts session and rate-limit decisions.
type Metrics struct {
	sessionsCreated    prometheus.Counter
	sessionsDenied     *prometheus.CounterVec
	rateLimitDecisions *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portalauth_sessions_created_total",
			Help: "Sessions successfully created.",
		}),
		sessionsDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portalauth_sessions_denied_total",
			Help: "Session creations rejected, by reason.",
		}, []string{"reason"}),
		rateLimitDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portalauth_rate_limit_decisions_total",
			Help: "Rate limiter decisions, by operation and outcome.",
		}, []string{"operation", "decision"}),
	}

	prometheus.MustRegister(m.sessionsCreated, m.sessionsDenied, m.rateLimitDecisions)
	return m
}

func (m *Metrics) RecordSessionCreated() {
	if m == nil {
		return
	}
	m.sessionsCreated.Inc()
}

func (m *Metrics) RecordSessionDenied(reason string) {
	if m == nil {
		return
	}
	m.sessionsDenied.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordRateLimit(operation string, allowed bool) {
	if m == nil {
		return
	}
	decision := "allowed"
	if !allowed {
		decision = "denied"
	}
	m.rateLimitDecisions.WithLabelValues(operation, decision).Inc()
}
