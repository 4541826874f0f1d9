package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/hotlines/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
}

func TestStoreConfig_UnknownDriver(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.Driver = "postgres"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("unknown driver should fail validation")
	}
	if !strings.Contains(err.Error(), "store") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStoreConfig_MemoryNeedsNoPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.Driver = "memory"
	cfg.Store.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("memory driver without path should pass: %v", err)
	}

	cfg.Store.Driver = "bolt"
	if err := cfg.Validate(); err == nil {
		t.Fatal("bolt driver without path should fail")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("out of range port should fail")
	}
}

func TestRateLimitConfig_BurstRequired(t *testing.T) {
	cfg := RateLimitConfig{RPS: 5}
	if err := cfg.Validate(); err == nil {
		t.Fatal("rps without burst should fail")
	}
	cfg = RateLimitConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled limiter should pass: %v", err)
	}
}

func TestApplicationConfig_FeedbackEmail(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.FeedbackEmail = "not-an-email"
	if err := cfg.Validate(); err == nil {
		t.Fatal("malformed feedback email should fail")
	}
	cfg.App.FeedbackEmail = "feedback@example.org"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid email should pass: %v", err)
	}
}

func TestCatalogConfig_ConfirmWindow(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Catalog.ConfirmWindow = time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Fatal("tiny confirm window should fail")
	}
}

func TestLoad_YAMLWithEnv(t *testing.T) {
	t.Setenv("HOTLINES_TEST_DB", "/tmp/prefs.bolt")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `app:
  log_level: debug
  http:
    port: 9090
store:
  driver: bolt
  path: ${HOTLINES_TEST_DB}
session:
  idle_ttl: 5m
catalog:
  confirm_window: 1500ms
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("app section not applied: %+v", cfg.App)
	}
	if cfg.Store.Driver != "bolt" || cfg.Store.Path != "/tmp/prefs.bolt" {
		t.Errorf("store section not applied: %+v", cfg.Store)
	}
	if cfg.Session.IdleTTL != 5*time.Minute || cfg.Session.SweepInterval != time.Minute {
		t.Errorf("session section = %+v", cfg.Session)
	}
	if cfg.Catalog.ConfirmWindow != 1500*time.Millisecond {
		t.Errorf("confirm window = %s", cfg.Catalog.ConfirmWindow)
	}
	if len(cfg.Share.TrustedHosts) == 0 {
		t.Error("default trusted hosts lost")
	}
}

func TestLoadOptional_MissingFileKeepsDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), cfg)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if found {
		t.Error("absent file reported as found")
	}
	if cfg.App.HTTP.Port != 8080 {
		t.Errorf("defaults changed: port = %d", cfg.App.HTTP.Port)
	}
}
