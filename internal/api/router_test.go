// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/hotlist/postpulse/internal/ingest"
	"github.com/hotlist/postpulse/internal/streaming"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := ingest.Config{DataDir: t.TempDir()}
	manager, err := ingest.NewManager(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	hub := streaming.NewHub()
	return NewServer(manager, hub, Config{})
}

func TestHandleHealthzReturnsOK(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !body.Success {
		t.Errorf("Success = false, want true")
	}
}

func TestHandleStateReturnsAggregateState(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	data, ok := body.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Data = %#v, want object", body.Data)
	}
	if _, ok := data["total_events"]; !ok {
		t.Errorf("state payload missing total_events field: %#v", data)
	}
}

func TestHandleMetricsExposesPrometheusFormat(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
