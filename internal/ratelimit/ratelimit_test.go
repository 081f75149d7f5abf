// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package ratelimit

import (
	"testing"

	"github.com/hotlist/postpulse/internal/config"
)

func TestNewIngestLimiterReturnsNilWhenDisabled(t *testing.T) {
	limiter := NewIngestLimiter(config.IngestRateConfig{Enabled: false})
	if limiter != nil {
		t.Fatal("expected nil limiter when disabled")
	}
}

func TestNewIngestLimiterHonorsConfiguredRateAndBurst(t *testing.T) {
	limiter := NewIngestLimiter(config.IngestRateConfig{
		Enabled:         true,
		EventsPerSecond: 100,
		Burst:           5,
	})
	if limiter == nil {
		t.Fatal("expected non-nil limiter when enabled")
	}
	if limiter.Burst() != 5 {
		t.Errorf("Burst() = %d, want 5", limiter.Burst())
	}
	if limiter.Limit() != 100 {
		t.Errorf("Limit() = %v, want 100", limiter.Limit())
	}
}
