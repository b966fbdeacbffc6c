package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	GenerateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bindgen_generate_seconds",
		Help:    "Time spent generating bindings for one AST document.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	FilesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bindgen_files_generated_total",
		Help: "Total number of binding files written.",
	})

	GenerateFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bindgen_generate_failures_total",
		Help: "Total number of AST documents that failed to generate, by error code.",
	}, []string{"code"})

	FragmentsEmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bindgen_fragments_emitted_total",
		Help: "Total number of binding fragments emitted by the visitor.",
	})

	SkippedNodesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bindgen_skipped_nodes_total",
		Help: "Total number of AST nodes recorded as skipped, by reason.",
	}, []string{"reason"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bindgen_watcher_events_total",
		Help: "Total number of file change batches received by the watcher.",
	})

	WatcherThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bindgen_watcher_throttled_total",
		Help: "Total number of regeneration batches delayed by the rate limiter.",
	})
)
