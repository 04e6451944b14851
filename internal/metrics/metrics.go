// Package metrics counts analysis activity on a private Prometheus registry
// and dumps it in node-exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the analysis counters. A nil *Registry is valid and
// records nothing.
type Registry struct {
	PairsAnalyzed   prometheus.Counter
	UnreadableFiles *prometheus.CounterVec
	DelaysExtracted prometheus.Counter
	LabelsDetected  *prometheus.CounterVec
	PairDuration    prometheus.Histogram

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.PairsAnalyzed = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "sdfscan_pairs_analyzed_total",
			Help: "Netlist/annex pairs analyzed",
		},
	)

	r.UnreadableFiles = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdfscan_unreadable_files_total",
			Help: "Files that could not be read, by kind",
		},
		[]string{"kind"},
	)

	r.DelaysExtracted = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "sdfscan_delays_extracted_total",
			Help: "Delay values extracted from timing annex files",
		},
	)

	r.LabelsDetected = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sdfscan_labels_detected_total",
			Help: "Component labels detected, by label",
		},
		[]string{"label"},
	)

	r.PairDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sdfscan_pair_duration_seconds",
			Help:    "Time spent analyzing one pair",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	return r
}

// RecordPair records one analyzed pair.
func (r *Registry) RecordPair(labels []string, delays int, duration time.Duration) {
	if r == nil {
		return
	}
	r.PairsAnalyzed.Inc()
	r.DelaysExtracted.Add(float64(delays))
	for _, l := range labels {
		r.LabelsDetected.WithLabelValues(l).Inc()
	}
	r.PairDuration.Observe(duration.Seconds())
}

// RecordUnreadable records a file that could not be read. kind is
// "netlist" or "annex".
func (r *Registry) RecordUnreadable(kind string) {
	if r == nil {
		return
	}
	r.UnreadableFiles.WithLabelValues(kind).Inc()
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is written atomically.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
