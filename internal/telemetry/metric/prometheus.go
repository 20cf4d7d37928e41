// Package metric provides Prometheus metrics for gymadmin.
package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gymadmin"

// Registry holds all client metrics. A nil *Registry is valid and records nothing.
type Registry struct {
	reg *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session metrics
	ForcedLogouts prometheus.Counter

	// Store metrics
	StaleResponses *prometheus.CounterVec

	// Scanner metrics
	ScanResults   *prometheus.CounterVec
	FramesDecoded prometheus.Counter
}

// NewRegistry creates a registry with all collectors registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Backend requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Backend request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ForcedLogouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "forced_logouts_total",
			Help:      "Sessions torn down after an invalid-token response",
		}),
		StaleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "stale_responses_total",
			Help:      "List responses discarded because a newer request was issued",
		}, []string{"store"}),
		ScanResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "results_total",
			Help:      "Scanned payloads by outcome (success, failure, dropped)",
		}, []string{"result"}),
		FramesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "frames_decoded_total",
			Help:      "Camera frames that yielded a payload",
		}),
	}

	r.reg.MustRegister(
		r.RequestsTotal,
		r.RequestDuration,
		r.ForcedLogouts,
		r.StaleResponses,
		r.ScanResults,
		r.FramesDecoded,
		collectors.NewGoCollector(),
	)
	return r
}

// Register adds extra collectors, e.g. a StoreCollector.
func (r *Registry) Register(cs ...prometheus.Collector) error {
	if r == nil {
		return nil
	}
	for _, c := range cs {
		if err := r.reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Gatherer returns the underlying gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Gatherer(), promhttp.HandlerOpts{})
}

// ObserveRequest records one backend call. status 0 means no response.
func (r *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncForcedLogout records a forced logout.
func (r *Registry) IncForcedLogout() {
	if r == nil {
		return
	}
	r.ForcedLogouts.Inc()
}

// IncStale records a discarded stale list response.
func (r *Registry) IncStale(store string) {
	if r == nil {
		return
	}
	r.StaleResponses.WithLabelValues(store).Inc()
}

// IncScan records a scanner outcome.
func (r *Registry) IncScan(result string) {
	if r == nil {
		return
	}
	r.ScanResults.WithLabelValues(result).Inc()
}

// IncFrameDecoded records a frame that produced a payload.
func (r *Registry) IncFrameDecoded() {
	if r == nil {
		return
	}
	r.FramesDecoded.Inc()
}
