package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Unset all VERDICT_ env vars to test pure defaults
	envVars := []string{
		"VERDICT_PORT", "VERDICT_METRICS_PORT", "VERDICT_ADMIN_TOKEN",
		"VERDICT_DATABASE_URL", "VERDICT_NATS_URL", "VERDICT_BOARD_KEY",
		"VERDICT_AUTOSAVE_DELAY_MS", "VERDICT_LOG_LEVEL",
	}
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8700 {
		t.Errorf("expected port 8700, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected metrics port 8701, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.AdminToken != "" {
		t.Errorf("expected empty admin token, got '%s'", cfg.Server.AdminToken)
	}
	if cfg.Database.URL != "" {
		t.Errorf("expected empty database URL, got '%s'", cfg.Database.URL)
	}
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("expected nats URL, got %s", cfg.NATS.URL)
	}
	if cfg.Board.Key != "default" {
		t.Errorf("expected board key 'default', got '%s'", cfg.Board.Key)
	}
	if cfg.Board.AutosaveDelayMs != 150 {
		t.Errorf("expected autosave delay 150, got %d", cfg.Board.AutosaveDelayMs)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format 'json', got '%s'", cfg.Logging.Format)
	}
	if cfg.AutosaveDelay() != 150*time.Millisecond {
		t.Errorf("expected AutosaveDelay 150ms, got %v", cfg.AutosaveDelay())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VERDICT_PORT", "9000")
	t.Setenv("VERDICT_METRICS_PORT", "9001")
	t.Setenv("VERDICT_ADMIN_TOKEN", "secret-token")
	t.Setenv("VERDICT_DATABASE_URL", "postgres://localhost/verdict_test")
	t.Setenv("VERDICT_NATS_URL", "nats://nats:4222")
	t.Setenv("VERDICT_BOARD_KEY", "team-offsite")
	t.Setenv("VERDICT_AUTOSAVE_DELAY_MS", "300")
	t.Setenv("VERDICT_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 9001 {
		t.Errorf("expected metrics port 9001, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.AdminToken != "secret-token" {
		t.Errorf("expected admin token 'secret-token', got '%s'", cfg.Server.AdminToken)
	}
	if cfg.Database.URL != "postgres://localhost/verdict_test" {
		t.Errorf("expected database URL, got '%s'", cfg.Database.URL)
	}
	if cfg.NATS.URL != "nats://nats:4222" {
		t.Errorf("expected nats URL, got '%s'", cfg.NATS.URL)
	}
	if cfg.Board.Key != "team-offsite" {
		t.Errorf("expected board key 'team-offsite', got '%s'", cfg.Board.Key)
	}
	if cfg.Board.AutosaveDelayMs != 300 {
		t.Errorf("expected autosave delay 300, got %d", cfg.Board.AutosaveDelayMs)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got '%s'", cfg.Logging.Level)
	}
}

func TestLoadFromFileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
server:
  port: 7000
  admin_token: file-token
board:
  key: from-file
  autosave_delay_ms: 500
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VERDICT_PORT", "7100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 7100 {
		t.Errorf("env should override file: got %d", cfg.Server.Port)
	}
	if cfg.Server.AdminToken != "file-token" {
		t.Errorf("expected token from file, got '%s'", cfg.Server.AdminToken)
	}
	if cfg.Board.Key != "from-file" {
		t.Errorf("expected board key from file, got '%s'", cfg.Board.Key)
	}
	if cfg.Board.AutosaveDelayMs != 500 {
		t.Errorf("expected autosave delay 500, got %d", cfg.Board.AutosaveDelayMs)
	}
	// untouched values keep their defaults
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected default metrics port, got %d", cfg.Server.MetricsPort)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
