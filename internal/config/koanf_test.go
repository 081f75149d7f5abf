// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaultsWithNoOverrides(t *testing.T) {
	clearPostpulseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TopK != 10 {
		t.Errorf("TopK = %d, want 10 (default)", cfg.TopK)
	}
	if cfg.FlushInterval != 5*time.Second {
		t.Errorf("FlushInterval = %s, want 5s (default)", cfg.FlushInterval)
	}
}

func TestLoadEnvVarsOverrideDefaults(t *testing.T) {
	clearPostpulseEnv(t)
	t.Setenv("POSTPULSE_TOP_K", "25")
	t.Setenv("POSTPULSE_NATS_URL", "nats://events.internal:4222")
	t.Setenv("POSTPULSE_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TopK != 25 {
		t.Errorf("TopK = %d, want 25", cfg.TopK)
	}
	if cfg.NATS.URL != "nats://events.internal:4222" {
		t.Errorf("NATS.URL = %q, want override", cfg.NATS.URL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	// unrelated defaults remain
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json (default)", cfg.Log.Format)
	}
}

func TestLoadCORSOriginsSplitFromEnv(t *testing.T) {
	clearPostpulseEnv(t)
	t.Setenv("POSTPULSE_HTTP_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.HTTP.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.HTTP.CORSOrigins, want)
	}
	for i, origin := range want {
		if cfg.HTTP.CORSOrigins[i] != origin {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.HTTP.CORSOrigins[i], origin)
		}
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	clearPostpulseEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "top_k: 15\ndata_dir: /var/lib/postpulse\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TopK != 15 {
		t.Errorf("TopK = %d, want 15 (from file)", cfg.TopK)
	}
	if cfg.DataDir != "/var/lib/postpulse" {
		t.Errorf("DataDir = %q, want /var/lib/postpulse (from file)", cfg.DataDir)
	}
}

func TestLoadEnvOverridesConfigFile(t *testing.T) {
	clearPostpulseEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("top_k: 15\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("POSTPULSE_TOP_K", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TopK != 30 {
		t.Errorf("TopK = %d, want 30 (env should win over file)", cfg.TopK)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearPostpulseEnv(t)
	t.Setenv("POSTPULSE_LOG_LEVEL", "shout")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
}

// postpulseEnvVars lists every environment variable Load() reads, so tests
// can start from a clean slate regardless of what the test host has set.
var postpulseEnvVars = []string{
	ConfigPathEnvVar,
	"POSTPULSE_DATA_DIR", "POSTPULSE_FLUSH_EVENT_COUNT", "POSTPULSE_FLUSH_INTERVAL", "POSTPULSE_TOP_K",
	"POSTPULSE_NATS_URL", "POSTPULSE_NATS_SUBJECT",
	"POSTPULSE_HTTP_LISTEN_ADDR", "POSTPULSE_HTTP_CORS_ORIGINS", "POSTPULSE_HTTP_STATE_RATE_LIMIT",
	"POSTPULSE_LOG_LEVEL", "POSTPULSE_LOG_FORMAT",
	"POSTPULSE_INGEST_RATE_ENABLED", "POSTPULSE_INGEST_RATE_EVENTS_PER_SECOND", "POSTPULSE_INGEST_RATE_BURST",
}

func clearPostpulseEnv(t *testing.T) {
	t.Helper()
	for _, name := range postpulseEnvVars {
		original, wasSet := os.LookupEnv(name)
		os.Unsetenv(name)
		if wasSet {
			t.Cleanup(func() { os.Setenv(name, original) })
		}
	}
}
