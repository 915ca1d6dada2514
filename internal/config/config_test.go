// Threadrec - Forum Thread Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threadrec

package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/threadrec/internal/validation"
)

// Tests that touch the environment use t.Setenv and therefore cannot run
// in parallel.

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.Server.Addr() != "0.0.0.0:8787" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Recommend.DefaultLimit != 10 || cfg.Recommend.MaxLimit != 50 {
		t.Errorf("limits = %d/%d, want 10/50", cfg.Recommend.DefaultLimit, cfg.Recommend.MaxLimit)
	}
	if cfg.Recommend.CandidateWindow != 30*24*time.Hour {
		t.Errorf("CandidateWindow = %v, want 720h", cfg.Recommend.CandidateWindow)
	}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, []string{"*"}) {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadFile_Layers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9000
recommend:
  timezone: Asia/Shanghai
  author_affinity_weight: 0.05
logging:
  format: console
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("CORS_ORIGINS", "https://linux.do, https://www.nodeseek.com,")
	t.Setenv("RECOMMEND_CANDIDATE_WINDOW", "168h")
	t.Setenv("BADGER_IN_MEMORY", "true")
	t.Setenv("UNRELATED_SETTING", "ignored")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Port = %d, want env override 9100", cfg.Server.Port)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Format = %q, want file value console", cfg.Logging.Format)
	}
	if cfg.Recommend.AuthorAffinityWeight != 0.05 {
		t.Errorf("AuthorAffinityWeight = %v, want 0.05", cfg.Recommend.AuthorAffinityWeight)
	}
	if cfg.Recommend.CandidateWindow != 7*24*time.Hour {
		t.Errorf("CandidateWindow = %v, want 168h", cfg.Recommend.CandidateWindow)
	}
	if !cfg.Store.InMemory {
		t.Error("InMemory not read from BADGER_IN_MEMORY")
	}
	want := []string{"https://linux.do", "https://www.nodeseek.com"}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want default 15s", cfg.Server.ReadTimeout)
	}

	engine, err := cfg.Recommend.Engine()
	if err != nil {
		t.Fatalf("Engine(): %v", err)
	}
	if engine.Location == nil || engine.Location.String() != "Asia/Shanghai" {
		t.Errorf("Location = %v, want Asia/Shanghai", engine.Location)
	}
	if engine.Prefilter.Window != 7*24*time.Hour {
		t.Errorf("engine window = %v", engine.Prefilter.Window)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadFile(absent) should fail")
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "70000")

	_, err := LoadFile("")
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("LoadFile() error = %v, want validation error", err)
	}
	if !strings.Contains(err.Error(), "server.port") {
		t.Errorf("error %q does not name server.port", err)
	}
}

func TestLoad_UsesConfigPathEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threadrec.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9200\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("Server.Port = %d, want 9200 from %s", cfg.Server.Port, ConfigPathEnvVar)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"no store path", func(c *Config) { c.Store.Path = "" }, "BADGER_PATH"},
		{"in memory without path", func(c *Config) { c.Store.Path = ""; c.Store.InMemory = true }, ""},
		{"default above max", func(c *Config) { c.Recommend.DefaultLimit = 60 }, "default_limit"},
		{"min above max candidates", func(c *Config) { c.Recommend.MinCandidates = 600 }, "min_candidates"},
		{"unknown timezone", func(c *Config) { c.Recommend.Timezone = "Mars/Olympus" }, "timezone"},
		{"share out of range", func(c *Config) { c.Recommend.ContentShare = 1.5 }, "content_share"},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, "rate_limit_reqs"},
		{"negative gc interval", func(c *Config) { c.Maintenance.ValueLogGCInterval = -time.Second }, "value_log_gc_interval"},
		{"breaker ratio", func(c *Config) { c.Store.Breaker.FailureRatio = 0 }, "failure_ratio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"HTTP_PORT":           "server.port",
		"BADGER_PATH":         "store.path",
		"RECOMMEND_SEED":      "recommend.seed",
		"LOG_LEVEL":           "logging.level",
		"RATE_LIMIT_REQUESTS": "security.rate_limit_reqs",
		"PATH":                "",
		"HOME":                "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
