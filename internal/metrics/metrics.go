package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes the refresh-cycle metrics.
type Recorder struct {
	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	assetsScored  prometheus.Gauge
	ranked        prometheus.Gauge
	signals       *prometheus.CounterVec
	sinkErrors    *prometheus.CounterVec
	fallbacks     prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cycles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinradar_refresh_cycles_total",
				Help: "Refresh cycles by result",
			},
			[]string{"result"},
		),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "coinradar_refresh_cycle_duration_seconds",
			Help:    "Duration of a full collect-score-rank-publish cycle",
			Buckets: prometheus.DefBuckets,
		}),
		assetsScored: f.NewGauge(prometheus.GaugeOpts{
			Name: "coinradar_assets_scored",
			Help: "Assets scored in the last cycle",
		}),
		ranked: f.NewGauge(prometheus.GaugeOpts{
			Name: "coinradar_ranked_signals",
			Help: "Entries in the last ranked selection",
		}),
		signals: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinradar_signals_total",
				Help: "Computed signals by type",
			},
			[]string{"type"},
		),
		sinkErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinradar_sink_errors_total",
				Help: "Publish or notification failures by sink",
			},
			[]string{"sink"},
		),
		fallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "coinradar_fetch_fallbacks_total",
			Help: "Cycles served from the snapshot archive after a provider failure",
		}),
	}
}

// RecordCycle records a finished cycle.
func (r *Recorder) RecordCycle(result string, d time.Duration) {
	r.cycles.WithLabelValues(result).Inc()
	r.cycleDuration.Observe(d.Seconds())
}

// RecordBoard records the size of the scored batch and the ranking.
func (r *Recorder) RecordBoard(scored, ranked int) {
	r.assetsScored.Set(float64(scored))
	r.ranked.Set(float64(ranked))
}

// RecordSignal counts one computed signal.
func (r *Recorder) RecordSignal(signalType string) {
	r.signals.WithLabelValues(signalType).Inc()
}

// RecordSinkError counts a failed publish or notification.
func (r *Recorder) RecordSinkError(sink string) {
	r.sinkErrors.WithLabelValues(sink).Inc()
}

// RecordFallback counts a cycle served from the archive.
func (r *Recorder) RecordFallback() {
	r.fallbacks.Inc()
}
