// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads Postpulse's configuration in layers: struct defaults,
// an optional YAML file, then environment variables, following the same
// defaults -> file -> env -> unmarshal -> validate shape regardless of which
// layer contributed a given value.
package config

import (
	"fmt"
	"time"
)

// Config is the fully resolved runtime configuration for a Postpulse
// process.
type Config struct {
	DataDir         string        `koanf:"data_dir"`
	FlushEventCount int           `koanf:"flush_event_count"`
	FlushInterval   time.Duration `koanf:"flush_interval"`
	TopK            int           `koanf:"top_k"`

	NATS       NATSConfig       `koanf:"nats"`
	HTTP       HTTPConfig       `koanf:"http"`
	Log        LogConfig        `koanf:"log"`
	IngestRate IngestRateConfig `koanf:"ingest_rate"`
}

// NATSConfig configures the event receiver's subscription.
type NATSConfig struct {
	URL     string `koanf:"url"`
	Subject string `koanf:"subject"`
}

// HTTPConfig configures the read-side HTTP API.
type HTTPConfig struct {
	ListenAddr     string   `koanf:"listen_addr"`
	CORSOrigins    []string `koanf:"cors_origins"`
	StateRateLimit int      `koanf:"state_rate_limit"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// IngestRateConfig configures the optional opt-in ingest rate limiter. It is
// disabled (unbounded ingestion) unless Enabled is true.
type IngestRateConfig struct {
	Enabled         bool    `koanf:"enabled"`
	EventsPerSecond float64 `koanf:"events_per_second"`
	Burst           int     `koanf:"burst"`
}

// defaultConfig returns a Config with every field set to its documented
// default. Layers loaded after this one only override what they set.
func defaultConfig() *Config {
	return &Config{
		DataDir:         "./data",
		FlushEventCount: 500,
		FlushInterval:   5 * time.Second,
		TopK:            10,
		NATS: NATSConfig{
			URL:     "nats://127.0.0.1:4222",
			Subject: "postpulse.events",
		},
		HTTP: HTTPConfig{
			ListenAddr:     ":8080",
			CORSOrigins:    []string{"*"},
			StateRateLimit: 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		IngestRate: IngestRateConfig{
			Enabled: false,
		},
	}
}

// Validate checks that the resolved configuration is internally consistent.
func (c *Config) Validate() error {
	if err := c.validateCore(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	if err := c.validateHTTP(); err != nil {
		return err
	}
	if err := c.validateIngestRate(); err != nil {
		return err
	}
	return c.validateLog()
}

func (c *Config) validateCore() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.FlushEventCount <= 0 {
		return fmt.Errorf("flush_event_count must be positive, got %d", c.FlushEventCount)
	}
	if c.FlushInterval <= 0 {
		return fmt.Errorf("flush_interval must be positive, got %s", c.FlushInterval)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	return nil
}

func (c *Config) validateNATS() error {
	if c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required")
	}
	if c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required")
	}
	return nil
}

func (c *Config) validateHTTP() error {
	if c.HTTP.ListenAddr == "" {
		return fmt.Errorf("http.listen_addr is required")
	}
	if c.HTTP.StateRateLimit <= 0 {
		return fmt.Errorf("http.state_rate_limit must be positive, got %d", c.HTTP.StateRateLimit)
	}
	if len(c.HTTP.CORSOrigins) == 0 {
		return fmt.Errorf("http.cors_origins must not be empty")
	}
	return nil
}

func (c *Config) validateIngestRate() error {
	if !c.IngestRate.Enabled {
		return nil
	}
	if c.IngestRate.EventsPerSecond <= 0 {
		return fmt.Errorf("ingest_rate.events_per_second must be positive when ingest_rate.enabled=true, got %f", c.IngestRate.EventsPerSecond)
	}
	if c.IngestRate.Burst <= 0 {
		return fmt.Errorf("ingest_rate.burst must be positive when ingest_rate.enabled=true, got %d", c.IngestRate.Burst)
	}
	return nil
}

func (c *Config) validateLog() error {
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("log.level %q is not a recognized level", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q must be \"json\" or \"console\"", c.Log.Format)
	}
	return nil
}
