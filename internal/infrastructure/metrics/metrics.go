package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnsTotal counts pipeline turns by outcome.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instareply",
			Subsystem: "bot",
			Name:      "turns_total",
			Help:      "Total pipeline turns by outcome",
		},
		[]string{"outcome"},
	)

	// GenerationDuration tracks language model latency.
	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "instareply",
			Subsystem: "bot",
			Name:      "generation_duration_seconds",
			Help:      "Reply generation duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// SendsTotal counts outbound provider sends.
	SendsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "instareply",
			Subsystem: "bot",
			Name:      "sends_total",
			Help:      "Total outbound messages dispatched",
		},
	)

	// RetrievedChunks tracks knowledge-base hits per turn.
	RetrievedChunks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "instareply",
			Subsystem: "bot",
			Name:      "retrieved_chunks",
			Help:      "Knowledge chunks retrieved per turn",
			Buckets:   []float64{0, 1, 2, 3, 5},
		},
	)

	// WebhookEventsTotal counts inbound events by disposition.
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instareply",
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Inbound webhook messaging events by disposition",
		},
		[]string{"disposition"},
	)
)
