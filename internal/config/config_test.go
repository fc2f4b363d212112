package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout != 0 {
		t.Errorf("request_timeout = %v, want zero (disabled)", cfg.Server.RequestTimeout)
	}
}

func TestLoadMissingFileIgnored(t *testing.T) {
	cfg, err := Load("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("missing file should be skipped, got: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default", cfg.Server.Port)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
  request_timeout: 30s
upstream:
  base_url: https://upstream.example.com/v1
models:
  aliases:
    gpt-4o: azure/gpt-4o-deployment
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout != 30*time.Second {
		t.Errorf("request_timeout = %v, want 30s", cfg.Server.RequestTimeout)
	}
	if cfg.Upstream.BaseURL != "https://upstream.example.com/v1" {
		t.Errorf("base_url = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Models.Aliases["gpt-4o"] != "azure/gpt-4o-deployment" {
		t.Errorf("aliases = %v", cfg.Models.Aliases)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RELAY_SERVER_PORT", "7070")
	t.Setenv("RELAY_UPSTREAM_API_KEY", "sk-test")
	t.Setenv("RELAY_UPSTREAM_BASE_URL", "http://localhost:1234/v1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env to win over file", cfg.Server.Port)
	}
	// Only the first underscore splits the key path.
	if cfg.Upstream.APIKey != "sk-test" {
		t.Errorf("api_key = %q", cfg.Upstream.APIKey)
	}
	if cfg.Upstream.BaseURL != "http://localhost:1234/v1" {
		t.Errorf("base_url = %q", cfg.Upstream.BaseURL)
	}
}
