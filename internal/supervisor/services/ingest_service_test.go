// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type mockIngestManager struct {
	started atomic.Bool
	stopped atomic.Bool
}

func (m *mockIngestManager) Start() { m.started.Store(true) }
func (m *mockIngestManager) Stop()  { m.stopped.Store(true) }

func TestIngestServiceInterface(t *testing.T) {
	var _ suture.Service = (*IngestService)(nil)
}

func TestIngestServiceStartsAndStopsManager(t *testing.T) {
	mgr := &mockIngestManager{}
	svc := NewIngestService(mgr)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	for i := 0; i < 10 && !mgr.started.Load(); i++ {
		time.Sleep(20 * time.Millisecond)
	}
	if !mgr.started.Load() {
		t.Fatal("ingest manager was not started")
	}

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("service did not stop in time")
	}

	if !mgr.stopped.Load() {
		t.Error("ingest manager was not stopped")
	}
}

func TestIngestServiceString(t *testing.T) {
	svc := NewIngestService(&mockIngestManager{})
	if svc.String() != "ingest-manager" {
		t.Errorf("expected %q, got %q", "ingest-manager", svc.String())
	}
}
