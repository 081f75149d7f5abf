// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ratelimit builds the optional, opt-in ingest throughput limiter
// from configuration. It is a thin construction wrapper around
// golang.org/x/time/rate — the manager takes a *rate.Limiter directly and
// has no rate-limiting logic of its own.
package ratelimit

import (
	"github.com/hotlist/postpulse/internal/config"
	"golang.org/x/time/rate"
)

// NewIngestLimiter builds the ingest limiter described by cfg, or returns
// nil if disabled. A nil limiter means unbounded ingestion, matching the
// baseline behavior when no rate limit is configured.
func NewIngestLimiter(cfg config.IngestRateConfig) *rate.Limiter {
	if !cfg.Enabled {
		return nil
	}
	return rate.NewLimiter(rate.Limit(cfg.EventsPerSecond), cfg.Burst)
}
