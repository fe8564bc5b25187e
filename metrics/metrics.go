// Package metrics exposes client-side submission counters in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "predict_client"

// Outcome labels for the submissions counter.
const (
	OutcomeSucceeded     = "succeeded"
	OutcomeFailed        = "failed"
	OutcomeStale         = "stale"
	OutcomeRejectedBusy  = "rejected_busy"
	OutcomeRejectedEmpty = "rejected_empty"
)

// Metrics groups the collectors used by the submission orchestrator.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Submissions *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	InFlight    prometheus.Gauge
	Results     prometheus.Counter
}

// NewRegistry creates a registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Submission attempts by outcome.",
		}, []string{"mode", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_duration_seconds",
			Help:      "Time from accepted submission to settlement.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"mode"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "submission_in_flight",
			Help:      "1 while a submission is outstanding.",
		}),
		Results: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_received_total",
			Help:      "Result records received from the backend.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Submissions, m.Duration, m.InFlight, m.Results)
	}
	return m
}

// Outcome increments the submissions counter.
func (m *Metrics) Outcome(mode, outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(mode, outcome).Inc()
}

// Settled records the settlement duration and result count.
func (m *Metrics) Settled(mode string, d time.Duration, results int) {
	if m == nil {
		return
	}
	m.Duration.WithLabelValues(mode).Observe(d.Seconds())
	m.Results.Add(float64(results))
}

// SetInFlight sets the in-flight gauge.
func (m *Metrics) SetInFlight(busy bool) {
	if m == nil {
		return
	}
	if busy {
		m.InFlight.Set(1)
		return
	}
	m.InFlight.Set(0)
}

// Handler returns an http.Handler that serves reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Serve starts a /metrics listener on addr in the background. The returned
// function shuts it down.
func Serve(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if logger != nil {
				logger.Error("metrics listener", "addr", addr, "error", err)
			}
		}
	}()
	if logger != nil {
		logger.Info("metrics listening", "addr", addr)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
