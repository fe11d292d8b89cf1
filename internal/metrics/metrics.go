// Package metrics exposes Prometheus instrumentation for forest conversion.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dgallion1/treeflat/internal/dectree"
)

var (
	// conversionDuration measures end-to-end forest conversion time.
	// Labels: status (ok, failed)
	conversionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "treeflat",
		Subsystem: "convert",
		Name:      "duration_seconds",
		Help:      "Forest conversion latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"status"})

	treesConverted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "treeflat",
		Subsystem: "convert",
		Name:      "trees_total",
		Help:      "Total decision trees flattened",
	})

	// failures counts rejected forests.
	// Labels: kind (malformed_edge, unknown_feature, unknown_relation, structural_mismatch, empty_forest, other)
	failures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "treeflat",
		Subsystem: "convert",
		Name:      "failures_total",
		Help:      "Total forest conversions rejected, by error kind",
	}, []string{"kind"})

	// jobs counts async jobs reaching a terminal state.
	// Labels: status (completed, failed)
	jobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "treeflat",
		Subsystem: "pipeline",
		Name:      "jobs_total",
		Help:      "Total conversion jobs finished, by terminal status",
	}, []string{"status"})

	archiveRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "treeflat",
		Subsystem: "archive",
		Name:      "retries_total",
		Help:      "Total retried archive writes",
	})
)

// ObserveConversion records a successful conversion of n trees.
func ObserveConversion(d time.Duration, n int) {
	conversionDuration.WithLabelValues("ok").Observe(d.Seconds())
	treesConverted.Add(float64(n))
}

// ObserveFailure records a rejected conversion.
func ObserveFailure(d time.Duration, err error) {
	conversionDuration.WithLabelValues("failed").Observe(d.Seconds())
	failures.WithLabelValues(Kind(err)).Inc()
}

// JobFinished counts a job reaching a terminal status.
func JobFinished(status string) {
	jobs.WithLabelValues(status).Inc()
}

// ArchiveRetry counts one retried archive write.
func ArchiveRetry() {
	archiveRetries.Inc()
}

// Kind maps a conversion error to its failure label.
func Kind(err error) string {
	switch {
	case errors.Is(err, dectree.ErrMalformedEdge):
		return "malformed_edge"
	case errors.Is(err, dectree.ErrUnknownFeature):
		return "unknown_feature"
	case errors.Is(err, dectree.ErrUnknownRelation):
		return "unknown_relation"
	case errors.Is(err, dectree.ErrStructuralMismatch):
		return "structural_mismatch"
	case errors.Is(err, dectree.ErrEmptyForest):
		return "empty_forest"
	default:
		return "other"
	}
}
