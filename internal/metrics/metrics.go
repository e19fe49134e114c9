// Package metrics records what one bakeoff invocation did in a private
// Prometheus registry, for the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rotisserie/eris"
)

const namespace = "bakeoff"

// Recorder holds the metrics of one command run.
type Recorder struct {
	registry *prometheus.Registry

	rowsLoaded  *prometheus.GaugeVec
	rowsDropped *prometheus.GaugeVec
	galaxies    prometheus.Gauge
	unbinned    *prometheus.GaugeVec
	stageTime   *prometheus.GaugeVec
	lastRun     prometheus.Gauge
}

// New creates a Recorder labelled with the command name.
func New(command string) *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(prometheus.WrapRegistererWith(prometheus.Labels{"command": command}, reg))

	return &Recorder{
		registry: reg,
		rowsLoaded: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_loaded",
			Help:      "Rows read from an input table.",
		}, []string{"input"}),
		rowsDropped: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_dropped",
			Help:      "Rows discarded from an input table by status filtering.",
		}, []string{"input"}),
		galaxies: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "galaxies_compared",
			Help:      "Galaxies present in both model summaries.",
		}),
		unbinned: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "delta_bic_unbinned",
			Help:      "Non-finite ΔBIC values excluded from the evidence table.",
		}, []string{"kind"}),
		stageTime: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in a pipeline stage.",
		}, []string{"stage"}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the command finished.",
		}),
	}
}

// Loaded records the row counts of an input.
func (r *Recorder) Loaded(input string, rows, dropped int) {
	r.rowsLoaded.WithLabelValues(input).Set(float64(rows))
	r.rowsDropped.WithLabelValues(input).Set(float64(dropped))
}

// Galaxies records the number of joined galaxies.
func (r *Recorder) Galaxies(n int) {
	r.galaxies.Set(float64(n))
}

// Unbinned records the NaN and ±Inf ΔBIC counts.
func (r *Recorder) Unbinned(nan, inf int) {
	r.unbinned.WithLabelValues("nan").Set(float64(nan))
	r.unbinned.WithLabelValues("inf").Set(float64(inf))
}

// Stage starts timing a stage; call the returned func when it ends.
func (r *Recorder) Stage(name string) func() {
	start := time.Now()
	return func() {
		r.stageTime.WithLabelValues(name).Add(time.Since(start).Seconds())
	}
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// WriteTextfile stamps the finish time and writes the registry in text
// exposition format. The write is atomic.
func (r *Recorder) WriteTextfile(path string) error {
	r.lastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return eris.Wrapf(err, "metrics: write textfile %s", path)
	}
	return nil
}
