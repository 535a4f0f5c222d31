package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
store:
  base_url: "https://script.example.com/exec"
  admin_token: "secret"
  cache_ttl_seconds: 30
admin:
  password: "letmein"
server:
  port: 9000
  shutdown_timeout_seconds: 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.BaseURL != "https://script.example.com/exec" {
		t.Errorf("base_url = %q", cfg.Store.BaseURL)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.ShutdownTimeout() != 5*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.ShutdownTimeout())
	}
	if cfg.StoreCacheTTL() != 30*time.Second {
		t.Errorf("cache ttl = %v", cfg.StoreCacheTTL())
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
store:
  base_url: "https://script.example.com/exec"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d", cfg.Server.Port)
	}
	if cfg.ShutdownTimeout() != 10*time.Second {
		t.Errorf("default shutdown timeout = %v", cfg.ShutdownTimeout())
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_STORE_URL", "https://script.example.com/exec")
	t.Setenv("TEST_ADMIN_PASSWORD", "from-env")

	path := writeConfig(t, `
store:
  base_url: "${TEST_STORE_URL}"
admin:
  password: "${TEST_ADMIN_PASSWORD}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.BaseURL != "https://script.example.com/exec" {
		t.Errorf("base_url = %q", cfg.Store.BaseURL)
	}
	if cfg.Admin.Password != "from-env" {
		t.Errorf("password = %q", cfg.Admin.Password)
	}
}

func TestLoadMissingBaseURL(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted config without store.base_url")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load accepted a missing file")
	}
}
