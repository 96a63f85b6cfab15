package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	rowsLoaded   *prometheus.CounterVec
	rowsDropped  *prometheus.CounterVec
	sourceErrors *prometheus.CounterVec
	lastClose    *prometheus.GaugeVec
	signals      *prometheus.GaugeVec
	passDuration prometheus.Histogram
	cacheEvents  *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		rowsLoaded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendband_rows_loaded_total",
				Help: "Raw rows successfully parsed per instrument",
			},
			[]string{"instrument"},
		),
		rowsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendband_rows_dropped_total",
				Help: "Malformed rows dropped per instrument",
			},
			[]string{"instrument"},
		),
		sourceErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendband_source_errors_total",
				Help: "Unavailable sources per instrument",
			},
			[]string{"instrument"},
		),
		lastClose: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "trendband_last_close",
				Help: "Most recent closing price per instrument",
			},
			[]string{"instrument"},
		),
		signals: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "trendband_signals",
				Help: "Signal counts on the latest trade date",
			},
			[]string{"signal"},
		),
		passDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trendband_pass_duration_seconds",
				Help:    "Duration of a full pipeline pass",
				Buckets: prometheus.DefBuckets,
			},
		),
		cacheEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendband_cache_events_total",
				Help: "Result cache hits, misses and invalidations",
			},
			[]string{"event"},
		),
	}
}

// RecordRowsLoaded counts parsed rows for an instrument.
func (r *Recorder) RecordRowsLoaded(instrument string, n int) {
	r.rowsLoaded.WithLabelValues(instrument).Add(float64(n))
}

// RecordRowsDropped counts dropped malformed rows for an instrument.
func (r *Recorder) RecordRowsDropped(instrument string, n int) {
	if n > 0 {
		r.rowsDropped.WithLabelValues(instrument).Add(float64(n))
	}
}

// RecordSourceError counts an unavailable source.
func (r *Recorder) RecordSourceError(instrument string) {
	r.sourceErrors.WithLabelValues(instrument).Inc()
}

// RecordLastClose records the latest closing price for an instrument.
func (r *Recorder) RecordLastClose(instrument string, close float64) {
	r.lastClose.WithLabelValues(instrument).Set(close)
}

// RecordSignals records the signal count for the latest trade date.
func (r *Recorder) RecordSignals(signal string, n int) {
	r.signals.WithLabelValues(signal).Set(float64(n))
}

// RecordPassDuration records a full pass duration in seconds.
func (r *Recorder) RecordPassDuration(seconds float64) {
	r.passDuration.Observe(seconds)
}

// RecordCacheEvent counts a result cache event (hit, miss, invalidate).
func (r *Recorder) RecordCacheEvent(event string) {
	r.cacheEvents.WithLabelValues(event).Inc()
}
