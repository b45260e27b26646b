// Package metrics exposes Prometheus instruments for the filter pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "markview"

// Registry owns a private Prometheus registry and the instruments recorded
// by the filter queue. A nil *Registry is valid and records nothing.
type Registry struct {
	reg *prometheus.Registry

	FilterPasses    prometheus.Counter
	MarkersIn       prometheus.Counter
	MarkersKept     prometheus.Counter
	MarkersRejected *prometheus.CounterVec
	FilterDuration  prometheus.Histogram

	JobsSubmitted prometheus.Counter
	JobsResolved  prometheus.Counter
	JobsDropped   prometheus.Counter
	QueueDepth    prometheus.Gauge
}

func New() *Registry {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Registry{
		reg: reg,
		FilterPasses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "passes_total",
			Help:      "Total filtering passes executed by the worker",
		}),
		MarkersIn: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "markers_in_total",
			Help:      "Total markers submitted to filtering passes",
		}),
		MarkersKept: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "markers_kept_total",
			Help:      "Total markers that survived filtering",
		}),
		MarkersRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "markers_rejected_total",
			Help:      "Total markers rejected, by reason",
		}, []string{"reason"}),
		FilterDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "pass_duration_seconds",
			Help:      "Duration of a single filtering pass",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		JobsSubmitted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "jobs_submitted_total",
			Help:      "Total filter jobs submitted",
		}),
		JobsResolved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "jobs_resolved_total",
			Help:      "Total filter jobs whose result was delivered",
		}),
		JobsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "results_dropped_total",
			Help:      "Worker results received with no matching active job",
		}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Jobs in flight plus jobs waiting",
		}),
	}
}

// ObserveFilter records one completed filtering pass.
func (r *Registry) ObserveFilter(in, kept, outOfZone, collided int, took time.Duration) {
	if r == nil {
		return
	}
	r.FilterPasses.Inc()
	r.MarkersIn.Add(float64(in))
	r.MarkersKept.Add(float64(kept))
	r.MarkersRejected.WithLabelValues("zone").Add(float64(outOfZone))
	r.MarkersRejected.WithLabelValues("collision").Add(float64(collided))
	r.FilterDuration.Observe(took.Seconds())
}

func (r *Registry) JobSubmitted() {
	if r == nil {
		return
	}
	r.JobsSubmitted.Inc()
}

func (r *Registry) JobResolved() {
	if r == nil {
		return
	}
	r.JobsResolved.Inc()
}

func (r *Registry) ResultDropped() {
	if r == nil {
		return
	}
	r.JobsDropped.Inc()
}

func (r *Registry) SetQueueDepth(n int) {
	if r == nil {
		return
	}
	r.QueueDepth.Set(float64(n))
}

// Gatherer returns the underlying registry for scraping or inspection.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile dumps every metric in the text exposition format, for
// node_exporter's textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
