// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordFlushIncrementsCounters(t *testing.T) {
	before := testutil.ToFloat64(FlushesTotal)

	RecordFlush(42, 10*time.Millisecond)

	after := testutil.ToFloat64(FlushesTotal)
	if after != before+1 {
		t.Errorf("FlushesTotal = %v, want %v", after, before+1)
	}
}

func TestRecordStateSetsGauges(t *testing.T) {
	RecordState(3, 7, 120)

	if got := testutil.ToFloat64(BufferedEvents); got != 3 {
		t.Errorf("BufferedEvents = %v, want 3", got)
	}
	if got := testutil.ToFloat64(HotPostsSize); got != 7 {
		t.Errorf("HotPostsSize = %v, want 7", got)
	}
	if got := testutil.ToFloat64(TrackedPosts); got != 120 {
		t.Errorf("TrackedPosts = %v, want 120", got)
	}
}

func TestRecordCircuitBreakerStateMapsKnownStates(t *testing.T) {
	cases := map[string]float64{
		"closed":    0,
		"half-open": 1,
		"open":      2,
	}
	for state, want := range cases {
		RecordCircuitBreakerState("wal-append", state)
		got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("wal-append"))
		if got != want {
			t.Errorf("state %q: gauge = %v, want %v", state, got, want)
		}
	}
}

func TestEventsIngestedTotalCountsByAction(t *testing.T) {
	before := testutil.ToFloat64(EventsIngestedTotal.WithLabelValues("play"))

	EventsIngestedTotal.WithLabelValues("play").Inc()

	after := testutil.ToFloat64(EventsIngestedTotal.WithLabelValues("play"))
	if after != before+1 {
		t.Errorf("EventsIngestedTotal[play] = %v, want %v", after, before+1)
	}
}
