// Package metrics collects Prometheus metrics for one partitioning run.
//
// A run is a batch job, so metrics are not served over HTTP: the command
// writes the registry to a node-exporter textfile when the run ends.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "communities"

// Recorder holds the collectors of one run on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	Exchanges  *prometheus.CounterVec
	Iterations *prometheus.CounterVec
	Worst      *prometheus.GaugeVec
	Aggregate  *prometheus.GaugeVec

	FillRejections prometheus.Counter
	FillRestarts   prometheus.Counter
	Links          prometheus.Counter
	Communities    prometheus.Gauge
	Failures       *prometheus.CounterVec

	StageDuration *prometheus.HistogramVec
}

// NewRecorder creates and registers the collectors under namespace.
func NewRecorder(namespace string) *Recorder {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		Exchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refine_exchanges_total",
				Help:      "Precincts moved between communities, by metric",
			},
			[]string{"metric"},
		),
		Iterations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refine_iterations_total",
				Help:      "Refinement iterations, by metric",
			},
			[]string{"metric"},
		),
		Worst: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "refine_worst_deviation",
				Help:      "Deviation of the worst community after the last iteration",
			},
			[]string{"metric"},
		),
		Aggregate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "refine_aggregate",
				Help:      "Partition-wide aggregate after the last iteration",
			},
			[]string{"metric"},
		),
		FillRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fill_rejections_total",
			Help:      "Picks undone because they split the pool or the community",
		}),
		FillRestarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fill_restarts_total",
			Help:      "Community fills started over",
		}),
		Links: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "island_links_total",
			Help:      "Corridors created between islands",
		}),
		Communities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "communities",
			Help:      "Communities in the partition",
		}),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failures_total",
				Help:      "Fatal run failures, by stage",
			},
			[]string{"stage"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Wall time of each pipeline stage",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"stage"},
		),
	}
	r.registry.MustRegister(
		r.Exchanges, r.Iterations, r.Worst, r.Aggregate,
		r.FillRejections, r.FillRestarts, r.Links, r.Communities, r.Failures,
		r.StageDuration,
	)

	return r
}

// Registry returns the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveExchange counts one applied exchange.
func (r *Recorder) ObserveExchange(metric string) {
	r.Exchanges.WithLabelValues(metric).Inc()
}

// ObserveIteration counts one refinement iteration and its outcome.
func (r *Recorder) ObserveIteration(metric string, worst, aggregate float64) {
	r.Iterations.WithLabelValues(metric).Inc()
	r.Worst.WithLabelValues(metric).Set(worst)
	r.Aggregate.WithLabelValues(metric).Set(aggregate)
}

// ObserveStage records how long stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveFailure counts a fatal failure in stage.
func (r *Recorder) ObserveFailure(stage string) {
	r.Failures.WithLabelValues(stage).Inc()
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
