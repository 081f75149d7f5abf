// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main is the entry point for the Postpulse server.
//
// Postpulse aggregates content interaction events (views, plays, pauses,
// carousel navigation) into an in-process ranking engine: hot posts and
// most-played lists, kept durable through a write-ahead log and periodic
// snapshots, exposed over a small read-side HTTP API and a live WebSocket
// feed.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, config file, and environment
//     variables (Koanf v2)
//  2. Logging: structured zerolog output
//  3. Live feed hub: WebSocket broadcast of ranking changes
//  4. Ingest core: write-ahead log, aggregate state, flush worker
//  5. Receiver: NATS/Watermill subscriber decoding inbound events
//  6. HTTP API: read-only state, health, metrics, and feed endpoints
//
// The ingest core, receiver, feed hub and HTTP server run as services under
// a supervisor tree so a crash in the receiver never stops the ingest core from continuing to drain its
// buffer, and vice versa.
//
// # Configuration
//
// See internal/config for the full list of POSTPULSE_* environment
// variables and the config file search path.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it cancels
// the root context, which stops the HTTP server, closes the receiver's
// subscription, and lets the ingest core drain and flush its buffer one
// last time before exiting.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hotlist/postpulse/internal/api"
	"github.com/hotlist/postpulse/internal/config"
	"github.com/hotlist/postpulse/internal/ingest"
	"github.com/hotlist/postpulse/internal/logging"
	"github.com/hotlist/postpulse/internal/ratelimit"
	"github.com/hotlist/postpulse/internal/receiver"
	"github.com/hotlist/postpulse/internal/streaming"
	"github.com/hotlist/postpulse/internal/supervisor"
	"github.com/hotlist/postpulse/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Timestamp: true,
	})

	logging.Info().Msg("Starting Postpulse with supervisor tree")
	logging.Info().
		Str("data_dir", cfg.DataDir).
		Str("nats_url", cfg.NATS.URL).
		Str("http_addr", cfg.HTTP.ListenAddr).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := streaming.NewHub()

	limiter := ratelimit.NewIngestLimiter(cfg.IngestRate)
	if limiter != nil {
		logging.Info().
			Float64("events_per_second", cfg.IngestRate.EventsPerSecond).
			Int("burst", cfg.IngestRate.Burst).
			Msg("Ingest rate limiting enabled")
	}

	manager, err := ingest.NewManager(ctx, ingest.Config{
		DataDir:         cfg.DataDir,
		FlushEventCount: cfg.FlushEventCount,
		FlushInterval:   cfg.FlushInterval,
		TopK:            cfg.TopK,
		IngestLimiter:   limiter,
		OnFlush: func(n ingest.FlushNotification) {
			hub.BroadcastRankingChanged(n.HotPosts, n.MostPlayed)
		},
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize ingest manager")
	}

	recv, err := receiver.New(receiver.Config{
		URL:     cfg.NATS.URL,
		Subject: cfg.NATS.Subject,
	}, manager)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize NATS receiver")
	}

	apiServer := api.NewServer(manager, hub, api.Config{
		AllowedOrigins: cfg.HTTP.CORSOrigins,
		StateRateLimit: cfg.HTTP.StateRateLimit,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTP.ListenAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddIngestService(services.NewIngestService(manager))
	tree.AddReceiverService(services.NewReceiverService(recv))
	tree.AddAPIService(services.NewHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(httpServer, 10*time.Second))
	logging.Info().Str("addr", httpServer.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Postpulse stopped gracefully")
}
