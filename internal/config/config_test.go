package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"statewatch/internal/config"
)

func TestLoadAppliesDefaultsWhenFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.toml")
	cfg, path, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if path != missing {
		t.Fatalf("unexpected resolved path: %q", path)
	}
	if cfg.Workflow.DefaultStateField != "workflow_state" {
		t.Fatalf("unexpected default state field: %q", cfg.Workflow.DefaultStateField)
	}
	if cfg.Workflow.FallbackStateField != "status" {
		t.Fatalf("unexpected fallback state field: %q", cfg.Workflow.FallbackStateField)
	}
	if len(cfg.Notifications.BroadRoles) != 1 || cfg.Notifications.BroadRoles[0] != "Employee" {
		t.Fatalf("unexpected broad roles: %v", cfg.Notifications.BroadRoles)
	}
	if !cfg.InApp.Enabled {
		t.Fatal("expected in-app channel enabled by default")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`data_dir = "` + filepath.Join(dir, "data") + `"`,
		`record_base_url = "https://erp.example.com/app/"`,
		"[notifications]",
		`broad_roles = [" Employee ", "employee", "All Staff"]`,
		"[logging]",
		`format = "JSON"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Paths.RecordBaseURL != "https://erp.example.com/app" {
		t.Fatalf("base url not trimmed: %q", cfg.Paths.RecordBaseURL)
	}
	if got := cfg.Notifications.BroadRoles; len(got) != 2 || got[0] != "Employee" || got[1] != "All Staff" {
		t.Fatalf("broad roles not deduplicated: %v", got)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("log format not canonicalized: %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsPartialEmailConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Email.Enabled = true
	cfg.Email.From = "workflow@example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing smtp host")
	}
}

func TestValidateRejectsBarePushTopic(t *testing.T) {
	cfg := config.Default()
	cfg.Push.Topic = "statewatch-alerts"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for non-URL topic")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config should load cleanly: exists=%v err=%v", exists, err)
	}
}
