package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.BaseURL != "https://api.datto.com/v1/bcdr/device" {
		t.Errorf("base URL = %q", cfg.API.BaseURL)
	}
	if cfg.Thresholds.CheckinLimit != 20*time.Minute {
		t.Errorf("checkin limit = %v", cfg.Thresholds.CheckinLimit)
	}
	if cfg.Thresholds.StoragePercent != 95 {
		t.Errorf("storage percent = %v", cfg.Thresholds.StoragePercent)
	}
	if cfg.Thresholds.BackupAge != 12*time.Hour {
		t.Errorf("backup age = %v", cfg.Thresholds.BackupAge)
	}
	if cfg.Thresholds.OffsiteAge != 72*time.Hour {
		t.Errorf("offsite age = %v", cfg.Thresholds.OffsiteAge)
	}
	if cfg.Thresholds.ScreenshotAge != 48*time.Hour {
		t.Errorf("screenshot age = %v", cfg.Thresholds.ScreenshotAge)
	}
	if cfg.Email.Enabled {
		t.Error("email enabled by default")
	}
	if cfg.Email.Port != 25 {
		t.Errorf("email port = %d", cfg.Email.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  base_url: https://portal.example.com/v1/bcdr/device
thresholds:
  storage_percent: 90
email:
  enabled: true
  host: mail.example.com
  from: datto-check@example.com
  to: [noc@example.com]
  cc: [mgr@example.com]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.API.BaseURL != "https://portal.example.com/v1/bcdr/device" {
		t.Errorf("base URL = %q", cfg.API.BaseURL)
	}
	if cfg.Thresholds.StoragePercent != 90 {
		t.Errorf("storage percent = %v, want file override", cfg.Thresholds.StoragePercent)
	}
	// Unset fields keep their defaults.
	if cfg.Thresholds.CheckinLimit != 20*time.Minute {
		t.Errorf("checkin limit = %v, want default", cfg.Thresholds.CheckinLimit)
	}
	if !cfg.Email.Enabled || cfg.Email.Host != "mail.example.com" {
		t.Errorf("email = %+v", cfg.Email)
	}
	if len(cfg.Email.Cc) != 1 || cfg.Email.Cc[0] != "mgr@example.com" {
		t.Errorf("cc = %v", cfg.Email.Cc)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config invalid: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DATTOCHECK_API_BASE_URL", "https://staging.example.com/device")
	t.Setenv("DATTOCHECK_EMAIL_ENABLED", "true")
	t.Setenv("DATTOCHECK_EMAIL_HOST", "relay.example.com")
	t.Setenv("DATTOCHECK_EMAIL_FROM", "checks@example.com")
	t.Setenv("DATTOCHECK_EMAIL_TO", "a@example.com, b@example.com")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	if cfg.API.BaseURL != "https://staging.example.com/device" {
		t.Errorf("base URL = %q", cfg.API.BaseURL)
	}
	if !cfg.Email.Enabled {
		t.Error("email not enabled from env")
	}
	if cfg.Email.Host != "relay.example.com" {
		t.Errorf("host = %q", cfg.Email.Host)
	}
	if len(cfg.Email.To) != 2 || cfg.Email.To[1] != "b@example.com" {
		t.Errorf("to = %v", cfg.Email.To)
	}
}

func TestValidateEmailRequirements(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Email.Enabled = true

	if err := cfg.Validate(); err == nil {
		t.Error("enabled email with no host passed validation")
	}

	cfg.Email.Host = "mail.example.com"
	if err := cfg.Validate(); err == nil {
		t.Error("enabled email with no addresses passed validation")
	}

	cfg.Email.From = "datto-check@example.com"
	cfg.Email.To = []string{"noc@example.com"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("complete email config rejected: %v", err)
	}
}
