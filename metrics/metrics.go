// Package metrics exposes Prometheus instrumentation for the collection pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamGiveUps  prometheus.Counter
	RecordsSaved     *prometheus.CounterVec
	MarketDuration   *prometheus.HistogramVec
	MarketTimeouts   prometheus.Counter
	PersistFailures  prometheus.Counter
	JobsFinished     *prometheus.CounterVec
	BasketEvaluated  prometheus.Counter
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		UpstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "collector_upstream_requests_total",
			Help: "Upstream price API page requests by outcome",
		}, []string{"outcome"}),
		UpstreamGiveUps: f.NewCounter(prometheus.CounterOpts{
			Name: "collector_upstream_giveups_total",
			Help: "Term/market pairs abandoned after exhausting retries",
		}),
		RecordsSaved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "collector_records_saved_total",
			Help: "Unique price records upserted per market",
		}, []string{"market"}),
		MarketDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "collector_market_duration_seconds",
			Help:    "Wall-clock time spent collecting one market",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"market"}),
		MarketTimeouts: f.NewCounter(prometheus.CounterOpts{
			Name: "collector_market_timeouts_total",
			Help: "Markets that hit their collection deadline",
		}),
		PersistFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "collector_persist_failures_total",
			Help: "Failed price record upserts",
		}),
		JobsFinished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "collector_jobs_finished_total",
			Help: "Collection jobs by terminal status",
		}, []string{"status"}),
		BasketEvaluated: f.NewCounter(prometheus.CounterOpts{
			Name: "basket_evaluations_total",
			Help: "Basket price reports computed",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) UpstreamRequest(ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.UpstreamRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) UpstreamGiveUp() {
	if m == nil {
		return
	}
	m.UpstreamGiveUps.Inc()
}

// MarketFinished records a market's outcome.
func (m *Metrics) MarketFinished(market string, saved int, d time.Duration, timedOut, persistFailed bool) {
	if m == nil {
		return
	}
	m.RecordsSaved.WithLabelValues(market).Add(float64(saved))
	m.MarketDuration.WithLabelValues(market).Observe(d.Seconds())
	if timedOut {
		m.MarketTimeouts.Inc()
	}
	if persistFailed {
		m.PersistFailures.Inc()
	}
}

func (m *Metrics) JobFinished(status string) {
	if m == nil {
		return
	}
	m.JobsFinished.WithLabelValues(status).Inc()
}

func (m *Metrics) BasketEvaluation() {
	if m == nil {
		return
	}
	m.BasketEvaluated.Inc()
}
