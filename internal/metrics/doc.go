// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package metrics provides Prometheus instrumentation for Postpulse's ingest
pipeline: event throughput, flush behavior, ranking size, live-feed
broadcast health, and the state of the WAL and snapshot circuit breakers.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Ingest metrics:
  - postpulse_events_ingested_total: events accepted by IngestEvent (counter)
    Labels: action
  - postpulse_events_rate_limited_total: events dropped by the optional
    ingest rate limiter (counter)

Flush metrics:
  - postpulse_flush_duration_seconds: flush cycle duration (histogram)
  - postpulse_flush_batch_size: events drained per flush (histogram)
  - postpulse_flushes_total: completed flush cycles (counter)

State gauges, updated after every flush:
  - postpulse_buffered_events: events awaiting the next flush
  - postpulse_hot_posts_size: current length of hot_posts
  - postpulse_tracked_posts: current size of post_stats

Durability metrics:
  - postpulse_wal_append_errors_total: failed or breaker-rejected WAL appends
  - postpulse_snapshot_write_errors_total: failed or breaker-rejected snapshot writes
  - postpulse_circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
    Labels: breaker (wal-append, snapshot-write)

Live-feed metrics:
  - postpulse_feed_clients_connected: connected WebSocket clients (gauge)
  - postpulse_feed_broadcasts_dropped_total: ranking_changed messages
    dropped because the hub's broadcast channel was full

# Usage Example

	metrics.RecordFlush(len(batch), time.Since(start))
	metrics.RecordState(bufferLen, len(hotPosts), len(postStats))
	metrics.RecordCircuitBreakerState("wal-append", cb.State().String())

# Prometheus Configuration

	scrape_configs:
	  - job_name: 'postpulse'
	    static_configs:
	      - targets: ['localhost:8080']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

# Alerting

	groups:
	  - name: postpulse
	    rules:
	      - alert: CircuitBreakerOpen
	        expr: postpulse_circuit_breaker_state > 0
	        for: 2m
	        annotations:
	          summary: "Circuit breaker open for {{ $labels.breaker }}"

	      - alert: FeedBroadcastsDropping
	        expr: rate(postpulse_feed_broadcasts_dropped_total[5m]) > 0
	        for: 5m
	        annotations:
	          summary: "Live feed dropping ranking_changed broadcasts"

# Cardinality

Labels are limited to action (six known values) and breaker (two known
names); neither grows with the number of posts or connected clients.

# Thread Safety

All metric recording functions are thread-safe; the Prometheus client
library handles synchronization internally.
*/
package metrics
