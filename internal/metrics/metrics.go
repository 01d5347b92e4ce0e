// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leftoverhq/leftover/internal/model"
)

const namespace = "leftover"

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	claims           *prometheus.CounterVec
	pickups          *prometheus.CounterVec
	sweepRuns        *prometheus.CounterVec
	donationsExpired prometheus.Counter
	claimsTimedOut   prometheus.Counter
	sweepDuration    prometheus.Histogram
	requests         *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_total",
			Help:      "Claim attempts by outcome.",
		}, []string{"outcome"}),
		pickups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pickups_total",
			Help:      "Pickup confirmations by outcome.",
		}, []string{"outcome"}),
		sweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Expiry sweep runs by result.",
		}, []string{"result"}),
		donationsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_donations_expired_total",
			Help:      "Donations moved to EXPIRED by the sweep.",
		}),
		claimsTimedOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_claims_timed_out_total",
			Help:      "Pending claims moved to TIMESUP by the sweep.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of expiry sweep runs.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}

	m.registry.MustRegister(
		m.claims, m.pickups, m.sweepRuns, m.donationsExpired, m.claimsTimedOut,
		m.sweepDuration, m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Outcome labels an operation result by its domain error kind.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, model.ErrExpired):
		return "expired"
	case errors.Is(err, model.ErrValidation):
		return "validation"
	case errors.Is(err, model.ErrUnauthorized):
		return "unauthorized"
	}
	return "error"
}

// ObserveClaim counts a claim attempt.
func (m *Metrics) ObserveClaim(err error) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(Outcome(err)).Inc()
}

// ObservePickup counts a pickup confirmation.
func (m *Metrics) ObservePickup(err error) {
	if m == nil {
		return
	}
	m.pickups.WithLabelValues(Outcome(err)).Inc()
}

// ObserveSweep records one sweep run. res is ignored when err is set.
func (m *Metrics) ObserveSweep(res *model.SweepResult, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(took.Seconds())
	if err != nil {
		m.sweepRuns.WithLabelValues("error").Inc()
		return
	}
	m.sweepRuns.WithLabelValues("ok").Inc()
	m.donationsExpired.Add(float64(res.DonationsExpired))
	m.claimsTimedOut.Add(float64(res.ClaimsTimedOut))
}

// ObserveRequest records a served HTTP request. route is the matched mux
// pattern, so path parameters do not blow up the label set.
func (m *Metrics) ObserveRequest(method, route string, code int, took time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Observe(took.Seconds())
}
