package config

import (
	"path/filepath"
	"testing"
)

func TestEnvStr(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	if v := envStr("TEST_STR", "fallback"); v != "value" {
		t.Fatalf("expected value, got %q", v)
	}
	if v := envStr("TEST_STR_MISSING", "fallback"); v != "fallback" {
		t.Fatalf("expected fallback, got %q", v)
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if v := envInt("TEST_INT", 0); v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
	if v := envInt("TEST_INT_MISSING", 99); v != 99 {
		t.Fatalf("expected fallback 99, got %d", v)
	}
	// Unparsable values fall back to the default.
	t.Setenv("TEST_INT_BAD", "abc")
	if v := envInt("TEST_INT_BAD", 7); v != 7 {
		t.Fatalf("expected fallback 7, got %d", v)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	if !envBool("TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("TEST_BOOL_BAD", "maybe")
	if !envBool("TEST_BOOL_BAD", true) {
		t.Fatal("expected fallback true for unparsable value")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STARWATCH_DATA_DIR", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected Load() to succeed with defaults, got: %v", err)
	}
	if !cfg.ReadFromBeginning {
		t.Fatal("expected ReadFromBeginning default true")
	}
	if cfg.ShowReplayedLogs {
		t.Fatal("expected ShowReplayedLogs default false")
	}
	if cfg.FeedBufferSize != 500 {
		t.Fatalf("expected default feed buffer 500, got %d", cfg.FeedBufferSize)
	}
	if cfg.ServiceName != "starwatch" {
		t.Fatalf("unexpected service name %q", cfg.ServiceName)
	}
	want := filepath.Join(cfg.DataDir, "starwatch.db")
	if cfg.DatabasePath != want {
		t.Fatalf("expected db under data dir, got %q", cfg.DatabasePath)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STARWATCH_DATA_DIR", t.TempDir())
	t.Setenv("STARWATCH_LOG_PATH", `C:\Game\Game.log`)
	t.Setenv("STARWATCH_READ_FROM_BEGINNING", "false")
	t.Setenv("STARWATCH_SHOW_REPLAYED_LOGS", "true")
	t.Setenv("STARWATCH_DB_PATH", "/tmp/custom.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogPath != `C:\Game\Game.log` {
		t.Fatalf("unexpected log path %q", cfg.LogPath)
	}
	if cfg.ReadFromBeginning {
		t.Fatal("expected ReadFromBeginning false")
	}
	if !cfg.ShowReplayedLogs {
		t.Fatal("expected ShowReplayedLogs true")
	}
	if cfg.DatabasePath != "/tmp/custom.db" {
		t.Fatalf("unexpected db path %q", cfg.DatabasePath)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{DataDir: "", FeedBufferSize: 10}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty data dir")
	}
	cfg = Config{DataDir: "x", FeedBufferSize: 0}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero feed buffer")
	}
}
