// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "openml_schema_check"

// Metrics holds all Prometheus metrics for the validator.
type Metrics struct {
	// Run metrics
	RunsTotal            *prometheus.CounterVec
	FailuresTotal        *prometheus.CounterVec
	RunDuration          prometheus.Histogram
	LastRunTimestamp     prometheus.Gauge
	LastSuccessTimestamp prometheus.Gauge

	// Stage metrics
	StageDuration *prometheus.HistogramVec
	FetchBytes    prometheus.Gauge

	// Dataset shape observed on the last decode
	DatasetRows         prometheus.Gauge
	DatasetColumns      prometheus.Gauge
	DatasetMissingCells prometheus.Gauge

	// Report publish metrics
	ReportPublishTotal   *prometheus.CounterVec
	ReportPublishErrors  *prometheus.CounterVec
	ReportPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Run metrics
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of validation runs by outcome",
		}, []string{"outcome"}),
		FailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Total number of failed runs by failure kind",
		}, []string{"kind"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a full validation run in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run",
		}),
		LastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that passed every check",
		}),

		// Stage metrics
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"stage"}),
		FetchBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetch_bytes",
			Help:      "Size of the last fetched resource in bytes",
		}),

		// Dataset shape
		DatasetRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Row count of the last decoded table",
		}),
		DatasetColumns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_columns",
			Help:      "Column count of the last decoded table",
		}),
		DatasetMissingCells: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_missing_cells",
			Help:      "Missing cell count of the last decoded table",
		}),

		// Report publish metrics
		ReportPublishTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_publish_total",
			Help:      "Total number of validation reports published",
		}, []string{"topic"}),
		ReportPublishErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_publish_errors_total",
			Help:      "Total number of report publish errors",
		}, []string{"topic"}),
		ReportPublishLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_publish_latency_seconds",
			Help:      "Report publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordStage records how long a pipeline stage took.
func (m *Metrics) RecordStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordFetch records the size of a fetched resource.
func (m *Metrics) RecordFetch(bytes int) {
	m.FetchBytes.Set(float64(bytes))
}

// RecordShape records the shape of a decoded table.
func (m *Metrics) RecordShape(rows int64, columns int, missing int64) {
	m.DatasetRows.Set(float64(rows))
	m.DatasetColumns.Set(float64(columns))
	m.DatasetMissingCells.Set(float64(missing))
}

// RecordRun records the end of a run. kind is empty on success.
func (m *Metrics) RecordRun(kind string, d time.Duration, at time.Time) {
	m.RunDuration.Observe(d.Seconds())
	m.LastRunTimestamp.Set(float64(at.Unix()))
	if kind == "" {
		m.RunsTotal.WithLabelValues("passed").Inc()
		m.LastSuccessTimestamp.Set(float64(at.Unix()))
		return
	}
	m.RunsTotal.WithLabelValues("failed").Inc()
	m.FailuresTotal.WithLabelValues(kind).Inc()
}

// RecordReportPublish records a report publish attempt.
func (m *Metrics) RecordReportPublish(topic string, err error, latencySeconds float64) {
	m.ReportPublishTotal.WithLabelValues(topic).Inc()
	m.ReportPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.ReportPublishErrors.WithLabelValues(topic).Inc()
	}
}
