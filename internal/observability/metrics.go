package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for batch runs and clicks.
type Metrics struct {
	BatchRuns      *prometheus.CounterVec // labels: outcome={success,error}
	BatchDuration  prometheus.Histogram
	ScenesUsed     prometheus.Gauge
	NRICoverage    prometheus.Gauge
	ClicksTotal    *prometheus.CounterVec // labels: outcome={success,unresolved,insufficient,invalid,error}
	ClickDuration  prometheus.Histogram
	ExportsWritten *prometheus.CounterVec // labels: kind={geotiff,png,geojson,csv}
}

func newMetrics() *Metrics {
	return &Metrics{
		BatchRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydromap",
			Name:      "batch_runs_total",
			Help:      "NRI batch runs by outcome.",
		}, []string{"outcome"}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hydromap",
			Name:      "batch_duration_seconds",
			Help:      "Duration of a complete NRI batch run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		ScenesUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hydromap",
			Name:      "batch_scenes",
			Help:      "Landsat scenes composited in the last batch.",
		}),
		NRICoverage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hydromap",
			Name:      "nri_coverage_ratio",
			Help:      "Share of grid cells with an NRI value in the last batch.",
		}),
		ClicksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydromap",
			Name:      "clicks_total",
			Help:      "TNRI click evaluations by outcome.",
		}, []string{"outcome"}),
		ClickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hydromap",
			Name:      "click_duration_seconds",
			Help:      "Duration of a TNRI click evaluation.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ExportsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydromap",
			Name:      "exports_total",
			Help:      "Files exported by kind.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.BatchRuns,
		m.BatchDuration,
		m.ScenesUsed,
		m.NRICoverage,
		m.ClicksTotal,
		m.ClickDuration,
		m.ExportsWritten,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting registers the metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() (*Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m, reg
}
