// Package metrics records per-run Prometheus metrics and writes them in
// the text exposition format for the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder owns a private registry so repeated runs in one process (batch
// mode, tests) never collide on the default registerer. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	files    *prometheus.CounterVec
	duration prometheus.Histogram
	bytes    prometheus.Counter
	runs     prometheus.Counter
	lastRun  prometheus.Gauge
}

// New creates a Recorder with all fontsort metrics registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		files: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fontsort_files_total",
				Help: "Font files processed, by terminal outcome",
			},
			[]string{"outcome"},
		),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fontsort_file_duration_seconds",
			Help:    "Time taken to extract, plan and place one file",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		bytes: f.NewCounter(prometheus.CounterOpts{
			Name: "fontsort_bytes_moved_total",
			Help: "Total bytes of font files moved",
		}),
		runs: f.NewCounter(prometheus.CounterOpts{
			Name: "fontsort_runs_total",
			Help: "Completed runs (one per root directory)",
		}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "fontsort_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
}

// ObserveFile records one file's outcome and processing time.
func (r *Recorder) ObserveFile(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.files.WithLabelValues(outcome).Inc()
	r.duration.Observe(d.Seconds())
}

// AddBytes adds n moved bytes.
func (r *Recorder) AddBytes(n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.bytes.Add(float64(n))
}

// RunFinished marks the end of one root's run.
func (r *Recorder) RunFinished(at time.Time) {
	if r == nil {
		return
	}
	r.runs.Inc()
	r.lastRun.Set(float64(at.Unix()))
}

// WriteFile writes every metric to path atomically.
func (r *Recorder) WriteFile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }
