// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package services adapts Postpulse's ingest, receiver, and HTTP components
// to suture.Service so the supervisor tree can start, stop, and restart
// them independently.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hotlist/postpulse/internal/logging"
)

// HTTPServer matches *http.Server's lifecycle methods, letting HTTPServerService
// work without a direct net/http dependency in tests.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService wraps an HTTP server as a supervised service, translating
// ListenAndServe's blocking pattern into suture's context-aware Serve pattern.
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string
}

// NewHTTPServerService creates a new HTTP server service wrapper. shutdownTimeout
// bounds how long in-flight requests get to finish during graceful shutdown.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("service", h.name).Msg("read api listening")
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		logging.Info().Str("service", h.name).Dur("timeout", h.shutdownTimeout).Msg("read api shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}

		<-errCh
		logging.Info().Str("service", h.name).Msg("read api stopped")
		return ctx.Err()
	}
}

// String implements fmt.Stringer; suture uses it to identify the service in logs.
func (h *HTTPServerService) String() string {
	return h.name
}
