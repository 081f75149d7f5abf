// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics exposes Prometheus instrumentation for the ingest
// pipeline: event throughput, flush behavior, hot-list size, and the
// health of the WAL and snapshot circuit breakers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsIngestedTotal counts every event accepted by IngestEvent,
	// labeled by action.
	EventsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postpulse_events_ingested_total",
			Help: "Total number of events accepted for ingestion, by action",
		},
		[]string{"action"},
	)

	// EventsRateLimitedTotal counts events dropped by the optional ingest
	// rate limiter.
	EventsRateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "postpulse_events_rate_limited_total",
			Help: "Total number of events rejected by the ingest rate limiter",
		},
	)

	// FlushDuration measures how long one flush_batch call takes, from
	// folding an already-drained batch through snapshot persistence.
	FlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "postpulse_flush_duration_seconds",
			Help:    "Duration of a flush cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// FlushBatchSize records the number of events drained per flush.
	FlushBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "postpulse_flush_batch_size",
			Help:    "Number of events drained in a single flush",
			Buckets: []float64{1, 10, 50, 100, 250, 500, 1000, 5000},
		},
	)

	// FlushesTotal counts completed flush cycles.
	FlushesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "postpulse_flushes_total",
			Help: "Total number of completed flush cycles",
		},
	)

	// BufferedEvents is the current number of events sitting in the ingest
	// buffer awaiting flush.
	BufferedEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "postpulse_buffered_events",
			Help: "Current number of events buffered and not yet flushed",
		},
	)

	// HotPostsSize is the current length of hot_posts.
	HotPostsSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "postpulse_hot_posts_size",
			Help: "Current number of entries in hot_posts",
		},
	)

	// TrackedPosts is the number of posts currently present in post_stats.
	TrackedPosts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "postpulse_tracked_posts",
			Help: "Current number of posts present in post_stats",
		},
	)

	// WALAppendErrorsTotal counts WAL append failures observed by the
	// circuit breaker, including calls short-circuited while the breaker
	// is open.
	WALAppendErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "postpulse_wal_append_errors_total",
			Help: "Total number of failed or breaker-rejected WAL append attempts",
		},
	)

	// SnapshotWriteErrorsTotal counts snapshot persistence failures
	// observed by the circuit breaker.
	SnapshotWriteErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "postpulse_snapshot_write_errors_total",
			Help: "Total number of failed or breaker-rejected snapshot writes",
		},
	)

	// CircuitBreakerState reports 0=closed, 1=half-open, 2=open for each
	// named breaker.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "postpulse_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open), by breaker name",
		},
		[]string{"breaker"},
	)

	// FeedClientsConnected is the current number of connected live-feed
	// WebSocket clients.
	FeedClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "postpulse_feed_clients_connected",
			Help: "Current number of connected live-feed WebSocket clients",
		},
	)

	// FeedBroadcastsDroppedTotal counts ranking_changed messages dropped
	// because the broadcast channel was full.
	FeedBroadcastsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "postpulse_feed_broadcasts_dropped_total",
			Help: "Total number of ranking_changed broadcasts dropped due to a full channel",
		},
	)
)

// RecordFlush records the duration and size of a completed flush.
func RecordFlush(batchSize int, duration time.Duration) {
	FlushDuration.Observe(duration.Seconds())
	FlushBatchSize.Observe(float64(batchSize))
	FlushesTotal.Inc()
}

// RecordState updates the point-in-time gauges from a snapshot of the
// aggregate state's shape.
func RecordState(bufferedEvents, hotPostsSize, trackedPosts int) {
	BufferedEvents.Set(float64(bufferedEvents))
	HotPostsSize.Set(float64(hotPostsSize))
	TrackedPosts.Set(float64(trackedPosts))
}

// breakerStateValue maps gobreaker's State to the numeric convention used by
// CircuitBreakerState.
func breakerStateValue(state string) float64 {
	switch state {
	case "closed":
		return 0
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return -1
	}
}

// RecordCircuitBreakerState records the current state of a named breaker.
func RecordCircuitBreakerState(name, state string) {
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(state))
}
