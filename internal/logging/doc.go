// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides centralized zerolog-based structured logging for Postpulse.
//
// This package implements a unified logging layer using zerolog, providing
// zero-allocation structured JSON logging for production and human-readable
// console output for development.
//
// # Overview
//
// The package provides:
//   - Zero-allocation structured logging via zerolog
//   - JSON output format for production, console output for development
//   - Global logger configuration through Init and a Config value
//   - Context-aware logging with correlation ID and request ID propagation
//
// # Quick Start
//
//	import "github.com/hotlist/postpulse/internal/logging"
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("component", "ingest").Msg("manager started")
//	logging.Error().Err(err).Msg("flush failed")
//
//	logging.Ctx(ctx).Info().Str("post_id", id).Msg("event ingested")
//
// # Configuration
//
// This package reads no environment variables; Init takes a Config:
//
//	Level   - Minimum log level: trace, debug, info, warn, error, fatal, panic (default: info)
//	Format  - Output format: json, console (default: json)
//	Caller  - Include caller file:line (default: false)
//
// The server fills Level and Format from internal/config
// (POSTPULSE_LOG_LEVEL, POSTPULSE_LOG_FORMAT).
//
// # Thread Safety
//
// All exported functions are safe for concurrent use. The global logger
// is protected by sync.RWMutex for configuration changes.
package logging
