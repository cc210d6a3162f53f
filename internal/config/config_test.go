package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Deploy.Concurrency != 3 || cfg.Deploy.RateLimit != 30 || cfg.Deploy.RateLimitWindow != time.Minute {
		t.Errorf("unexpected deploy defaults: %+v", cfg.Deploy)
	}
	if cfg.GitHub.BaseURL != "https://api.github.com" || cfg.GitHub.Timeout != 30*time.Second {
		t.Errorf("unexpected github defaults: %+v", cfg.GitHub)
	}
	if cfg.Database.DSN != ":memory:" {
		t.Errorf("DSN = %q", cfg.Database.DSN)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RETRIGGER_DEPLOY_CONCURRENCY", "5")
	t.Setenv("RETRIGGER_DEPLOY_RATE_LIMIT_WINDOW", "90s")
	t.Setenv("RETRIGGER_GITHUB_BASE_URL", "http://localhost:9999")

	cfg, err := Load(New(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Deploy.Concurrency != 5 {
		t.Errorf("Concurrency = %d, want 5", cfg.Deploy.Concurrency)
	}
	if cfg.Deploy.RateLimitWindow != 90*time.Second {
		t.Errorf("RateLimitWindow = %v, want 90s", cfg.Deploy.RateLimitWindow)
	}
	if cfg.GitHub.BaseURL != "http://localhost:9999" {
		t.Errorf("BaseURL = %q", cfg.GitHub.BaseURL)
	}
}

func TestLoadFileAndInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "retrigger.yaml")
	content := "server:\n  port: -1\ndeploy:\n  concurrency: 0\n  rate_limit: 10\nlog:\n  level: loud\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v := New()
	if err := ReadFile(v, path); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	cfg, err := Load(v, zerolog.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Deploy.Concurrency != 3 || cfg.Log.Level != "info" {
		t.Errorf("invalid values should fall back to defaults: %+v", cfg)
	}
	if cfg.Deploy.RateLimit != 10 {
		t.Errorf("RateLimit = %d, want 10", cfg.Deploy.RateLimit)
	}
	if q := cfg.Deploy.Queue(); q.RateLimit != 10 || q.RateLimitWindow != time.Minute {
		t.Errorf("Queue() = %+v", q)
	}
}

func TestReadFileMissing(t *testing.T) {
	if err := ReadFile(New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Errorf("expected an error for an explicit missing file")
	}
	t.Chdir(t.TempDir())
	if err := ReadFile(New(), ""); err != nil {
		t.Errorf("missing default file should be ignored, got %v", err)
	}
}
