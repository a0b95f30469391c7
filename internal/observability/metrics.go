package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the risk service.
type Metrics struct {
	Refreshes       *prometheus.CounterVec // labels: outcome={success,error}
	RefreshDuration prometheus.Histogram
	PipelineRunning prometheus.Gauge

	// Feed metrics.
	FeedRequests        *prometheus.CounterVec // labels: outcome={success,error}
	FeedRequestDuration prometheus.Histogram
	FeedMalformedRows   prometheus.Counter
	EventsFetched       prometheus.Counter
	EventsAnalyzed      prometheus.Gauge

	// Portfolio metrics.
	AssetsByRisk *prometheus.GaugeVec // labels: risk={low,medium,high}

	// Publishing metrics.
	ReportsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Refreshes,
		m.RefreshDuration,
		m.PipelineRunning,
		m.FeedRequests,
		m.FeedRequestDuration,
		m.FeedMalformedRows,
		m.EventsFetched,
		m.EventsAnalyzed,
		m.AssetsByRisk,
		m.ReportsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_risk",
			Name:      "refreshes_total",
			Help:      "Analysis refresh cycles by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_risk",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-analyse-publish cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_risk",
			Name:      "pipeline_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		FeedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_risk",
			Name:      "feed_requests_total",
			Help:      "USGS feed requests by outcome.",
		}, []string{"outcome"}),
		FeedRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_risk",
			Name:      "feed_request_duration_seconds",
			Help:      "USGS feed request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FeedMalformedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_risk",
			Name:      "feed_malformed_rows_total",
			Help:      "Feed CSV rows skipped because they could not be parsed.",
		}),
		EventsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_risk",
			Name:      "events_fetched_total",
			Help:      "Total events parsed from the feed.",
		}),
		EventsAnalyzed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_risk",
			Name:      "events_analyzed",
			Help:      "Events with a location key in the latest report.",
		}),
		AssetsByRisk: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "quake_risk",
			Name:      "assets",
			Help:      "Portfolio assets per risk tier in the latest report.",
		}, []string{"risk"}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_risk",
			Name:      "reports_published_total",
			Help:      "Reports written to the Kafka sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_risk",
			Name:      "publish_errors_total",
			Help:      "Failed report publications.",
		}),
	}
}
