// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package config resolves Postpulse's runtime configuration.

# Configuration Sources

Values are layered in order of increasing precedence:

  1. Struct defaults (defaultConfig)
  2. An optional YAML file (config.yaml, or the path in POSTPULSE_CONFIG_PATH)
  3. Environment variables prefixed POSTPULSE_

# Environment Variables

	POSTPULSE_DATA_DIR              data directory for the WAL and snapshot files
	POSTPULSE_FLUSH_EVENT_COUNT     events buffered before a size-triggered flush
	POSTPULSE_FLUSH_INTERVAL        max time between flushes (Go duration string)
	POSTPULSE_TOP_K                 hot_posts / most_played list length
	POSTPULSE_NATS_URL              NATS server URL for the event receiver
	POSTPULSE_NATS_SUBJECT          subject the receiver subscribes to
	POSTPULSE_HTTP_LISTEN_ADDR      HTTP listen address for the read API
	POSTPULSE_HTTP_CORS_ORIGINS     comma-separated CORS allowlist
	POSTPULSE_HTTP_STATE_RATE_LIMIT /v1/state requests per second per remote address
	POSTPULSE_LOG_LEVEL             trace|debug|info|warn|error|fatal|panic
	POSTPULSE_LOG_FORMAT            json|console
	POSTPULSE_INGEST_RATE_ENABLED   opt in to bounding ingest throughput
	POSTPULSE_INGEST_RATE_EVENTS_PER_SECOND
	POSTPULSE_INGEST_RATE_BURST

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

# Thread Safety

The Config returned by Load is not mutated afterward and is safe to share
across goroutines without synchronization.
*/
package config
