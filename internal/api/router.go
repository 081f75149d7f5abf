// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hotlist/postpulse/internal/ingest"
	"github.com/hotlist/postpulse/internal/streaming"
)

// Config controls CORS and rate-limiting behavior of the router.
type Config struct {
	// AllowedOrigins is the CORS allowlist for browser dashboards. A single
	// "*" entry allows any origin.
	AllowedOrigins []string
	// StateRateLimit is the maximum number of /v1/state requests a single
	// remote address may make per second.
	StateRateLimit int
}

func (c Config) withDefaults() Config {
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.StateRateLimit <= 0 {
		c.StateRateLimit = 20
	}
	return c
}

// Server holds the dependencies every handler reads from.
type Server struct {
	cfg     Config
	manager *ingest.Manager
	hub     *streaming.Hub
}

// NewServer constructs the HTTP surface for the manager and feed hub.
func NewServer(manager *ingest.Manager, hub *streaming.Hub, cfg Config) *Server {
	return &Server{cfg: cfg.withDefaults(), manager: manager, hub: hub}
}

// Router builds the chi router exposing healthz, state, metrics and the
// live feed.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(s.cfg.StateRateLimit, time.Second))
		r.Get("/v1/state", s.handleState)
	})

	r.Get("/v1/feed", s.handleFeed)

	return r
}
