// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package receiver

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/hotlist/postpulse/internal/ingest"
)

type fakeIngester struct {
	events []ingest.Event
}

func (f *fakeIngester) IngestEvent(_ context.Context, evt ingest.Event) {
	f.events = append(f.events, evt)
}

func newTestReceiver(fake *fakeIngester) *Receiver {
	return &Receiver{ingester: fake}
}

func TestHandleDecodesValidMessage(t *testing.T) {
	fake := &fakeIngester{}
	r := newTestReceiver(fake)

	payload, _ := json.Marshal(map[string]any{
		"post_id": "p1",
		"user_id": "u1",
		"action":  "play",
	})
	msg := message.NewMessage("1", payload)

	r.handle(context.Background(), msg)

	if len(fake.events) != 1 {
		t.Fatalf("got %d events, want 1", len(fake.events))
	}
	if fake.events[0].Action != ingest.ActionPlay {
		t.Errorf("Action = %v, want play", fake.events[0].Action)
	}
}

func TestHandleDefaultsUnknownActionToView(t *testing.T) {
	fake := &fakeIngester{}
	r := newTestReceiver(fake)

	payload, _ := json.Marshal(map[string]any{
		"post_id": "p1",
		"user_id": "u1",
		"action":  "double_tap",
	})
	msg := message.NewMessage("1", payload)

	r.handle(context.Background(), msg)

	if len(fake.events) != 1 || fake.events[0].Action != ingest.ActionView {
		t.Fatalf("expected one VIEW-defaulted event, got %+v", fake.events)
	}
}

func TestHandleDropsMissingRequiredFields(t *testing.T) {
	fake := &fakeIngester{}
	r := newTestReceiver(fake)

	payload, _ := json.Marshal(map[string]any{
		"user_id": "u1",
		"action":  "view",
	})
	msg := message.NewMessage("1", payload)

	r.handle(context.Background(), msg)

	if len(fake.events) != 0 {
		t.Fatalf("expected message with empty post_id to be dropped, got %+v", fake.events)
	}
}

func TestHandleSubstitutesNowWhenCreatedAtAbsent(t *testing.T) {
	fake := &fakeIngester{}
	r := newTestReceiver(fake)

	before := time.Now()
	payload, _ := json.Marshal(map[string]any{
		"post_id": "p1",
		"user_id": "u1",
		"action":  "view",
	})
	msg := message.NewMessage("1", payload)

	r.handle(context.Background(), msg)
	after := time.Now()

	if len(fake.events) != 1 {
		t.Fatalf("got %d events, want 1", len(fake.events))
	}
	got := fake.events[0].CreatedAt
	if got.Before(before) || got.After(after) {
		t.Errorf("CreatedAt = %v, want between %v and %v", got, before, after)
	}
}

func TestHandleAlwaysAcksRegardlessOfDecodeOutcome(t *testing.T) {
	fake := &fakeIngester{}
	r := newTestReceiver(fake)

	msg := message.NewMessage("1", []byte("not json"))
	acked := make(chan struct{}, 1)
	go func() {
		<-msg.Acked()
		acked <- struct{}{}
	}()

	r.handle(context.Background(), msg)

	select {
	case <-acked:
	case <-time.After(time.Second):
		t.Fatal("message was never acked")
	}
}
