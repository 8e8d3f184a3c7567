// Package metrics registers the Prometheus collectors shared by the console
// and the webhook receiver.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CampaignMessages counts send attempts by log status (sent, failed)
	CampaignMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wacms",
			Subsystem: "campaign",
			Name:      "messages_total",
			Help:      "Total number of campaign send attempts, by outcome.",
		},
		[]string{"status"},
	)

	// CampaignRuns counts finished runs by terminal status
	CampaignRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wacms",
			Subsystem: "campaign",
			Name:      "runs_total",
			Help:      "Total number of finished campaign runs, by final status.",
		},
		[]string{"status"},
	)

	// ProviderRequestDuration observes messaging API latency by operation and outcome
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wacms",
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Duration of messaging API requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)

	// WebhookEvents counts webhook entries by result (stored, duplicate, ignored, error)
	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wacms",
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Total number of webhook entries processed, by result.",
		},
		[]string{"result"},
	)

	// FeedEvents counts feed events applied or archived, by type
	FeedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wacms",
			Subsystem: "feed",
			Name:      "events_total",
			Help:      "Total number of feed events handled, by event type.",
		},
		[]string{"type"},
	)
)
