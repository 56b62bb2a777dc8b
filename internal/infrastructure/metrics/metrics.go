package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Presentation API metrics
var (
	// StructureIndexRepairsTotal counts out-of-range layout indices silently
	// remapped by the repair pass. A rising rate means the structure
	// generator is producing malformed output.
	StructureIndexRepairsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "deckgen",
			Subsystem: "presentation_api",
			Name:      "structure_index_repairs_total",
			Help:      "Total out-of-range structure indices repaired",
		},
	)

	SlidesGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "deckgen",
			Subsystem: "presentation_api",
			Name:      "slides_generated_total",
			Help:      "Total slides generated across all streams",
		},
	)

	GenerationStreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deckgen",
			Subsystem: "presentation_api",
			Name:      "generation_streams_total",
			Help:      "Total presentation generation streams by terminal status",
		},
		[]string{"status"},
	)

	AssetFetchFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deckgen",
			Subsystem: "presentation_api",
			Name:      "asset_fetch_failures_total",
			Help:      "Total asset fetches that fell back to placeholders",
		},
		[]string{"kind"},
	)

	LLMRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "deckgen",
			Subsystem: "presentation_api",
			Name:      "llm_request_duration_seconds",
			Help:      "Latency of structured generation calls",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)
)
