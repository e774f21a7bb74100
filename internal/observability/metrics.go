package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mesonet_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Transport metrics.
	TransportRequests *prometheus.CounterVec // labels: outcome={success,error}
	TransportDuration prometheus.Histogram
	ResponseBytes     prometheus.Histogram

	// Fetch metrics.
	FetchRequests *prometheus.CounterVec // labels: mode={snapshot,timeseries}, outcome={success,transport_error,parse_error}
	MaskedValues  prometheus.Counter

	// Pipeline metrics.
	ObservationsParsed    prometheus.Counter
	ObservationsPublished prometheus.Counter
	TransformErrors       prometheus.Counter
	PipelineRunning       prometheus.Gauge
	PollCycleDuration     prometheus.Histogram
	StationLookups        *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.TransportRequests,
		m.TransportDuration,
		m.ResponseBytes,
		m.FetchRequests,
		m.MaskedValues,
		m.ObservationsParsed,
		m.ObservationsPublished,
		m.TransformErrors,
		m.PipelineRunning,
		m.PollCycleDuration,
		m.StationLookups,
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
		TransportRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_requests_total",
			Help:      "Provider HTTP requests by outcome.",
		}, []string{"outcome"}),
		TransportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transport_duration_seconds",
			Help:      "Provider HTTP request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ResponseBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "response_bytes",
			Help:      "Size of downloaded Mesonet files.",
			Buckets:   prometheus.ExponentialBuckets(1024, 2, 10),
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Table fetches by file mode and outcome.",
		}, []string{"mode", "outcome"}),
		MaskedValues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "masked_values_total",
			Help:      "Values flagged as missing in fetched tables.",
		}),
		ObservationsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_parsed_total",
			Help:      "Station observations parsed from polled files.",
		}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_published_total",
			Help:      "Observations written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Polled files that could not be converted into observations.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		PollCycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_cycle_duration_seconds",
			Help:      "Duration of a complete fetch-transform-publish cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		StationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "station_lookups_total",
			Help:      "Site table lookups by result.",
		}, []string{"result"}),
	}
}
