package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	studyRuns   *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	seriesRows  *prometheus.HistogramVec
	isinLookups *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a recorder registered on reg; nil means the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		studyRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finstudies_study_runs_total",
				Help: "Study invocations by study and result",
			},
			[]string{"study", "result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finstudies_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"kind"},
		),
		seriesRows: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finstudies_series_rows",
				Help:    "Rows per fetched series",
				Buckets: []float64{5, 20, 60, 130, 260, 520, 1300, 2600, 6500},
			},
			[]string{"source"},
		),
		isinLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finstudies_isin_lookups_total",
				Help: "ISIN lookups by cache result",
			},
			[]string{"result"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finstudies_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordStudy counts one study invocation; result is "ok" or an error kind.
func (r *Recorder) RecordStudy(study, result string) {
	r.studyRuns.WithLabelValues(study, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordSeriesRows observes the size of a fetched series.
func (r *Recorder) RecordSeriesRows(source string, rows int) {
	r.seriesRows.WithLabelValues(source).Observe(float64(rows))
}

// RecordIsinLookup counts an ISIN lookup as "hit", "miss" or "error".
func (r *Recorder) RecordIsinLookup(result string) {
	r.isinLookups.WithLabelValues(result).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
