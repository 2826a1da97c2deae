package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event store metrics, observed by the persistence adapters.
var (
	// EventAppends counts append attempts by outcome (ok, conflict, error).
	EventAppends = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "identity",
		Name:      "event_appends_total",
		Help:      "Total number of event stream append attempts",
	}, []string{"status"})

	// EventAppendDuration tracks append latency.
	EventAppendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "identity",
		Name:      "event_append_duration_seconds",
		Help:      "Latency of event stream appends",
		Buckets:   prometheus.DefBuckets,
	})

	// StreamReads counts stream reads by outcome (ok, error).
	StreamReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "identity",
		Name:      "stream_reads_total",
		Help:      "Total number of event stream reads",
	}, []string{"status"})
)

// Append outcome labels.
const (
	StatusOK       = "ok"
	StatusConflict = "conflict"
	StatusError    = "error"
)
