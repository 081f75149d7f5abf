// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/thejerf/suture/v4"
)

type mockReceiver struct {
	runErr    error
	closeErr  error
	runCalled atomic.Bool
	closed    atomic.Bool
}

func (m *mockReceiver) Run(ctx context.Context) error {
	m.runCalled.Store(true)
	return m.runErr
}

func (m *mockReceiver) Close() error {
	m.closed.Store(true)
	return m.closeErr
}

func TestReceiverServiceInterface(t *testing.T) {
	var _ suture.Service = (*ReceiverService)(nil)
}

func TestReceiverServiceClosesSubscriberAfterRun(t *testing.T) {
	recv := &mockReceiver{}
	svc := NewReceiverService(recv)

	if err := svc.Serve(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !recv.runCalled.Load() {
		t.Error("Run was not called")
	}
	if !recv.closed.Load() {
		t.Error("Close was not called after Run returned")
	}
}

func TestReceiverServicePropagatesRunError(t *testing.T) {
	runErr := errors.New("subscribe failed")
	recv := &mockReceiver{runErr: runErr}
	svc := NewReceiverService(recv)

	err := svc.Serve(context.Background())
	if !errors.Is(err, runErr) {
		t.Errorf("expected %v, got %v", runErr, err)
	}
}

func TestReceiverServiceReturnsCloseErrorWhenRunSucceeds(t *testing.T) {
	closeErr := errors.New("close failed")
	recv := &mockReceiver{closeErr: closeErr}
	svc := NewReceiverService(recv)

	err := svc.Serve(context.Background())
	if err == nil {
		t.Fatal("expected error from Close")
	}
}

func TestReceiverServiceString(t *testing.T) {
	svc := NewReceiverService(&mockReceiver{})
	if svc.String() != "nats-receiver" {
		t.Errorf("expected %q, got %q", "nats-receiver", svc.String())
	}
}
