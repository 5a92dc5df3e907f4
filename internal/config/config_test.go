package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PlanName != "Imported" {
		t.Errorf("PlanName = %q, want Imported", cfg.PlanName)
	}
	if cfg.Telemetry != nil {
		t.Errorf("Telemetry = %+v, want nil", cfg.Telemetry)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
db_path: /tmp/fitplot-test.db
plan_name: Мой план
telemetry:
  otlp_endpoint: localhost:4317
  insecure: true
  service_name: fitplot-dev
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/fitplot-test.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.PlanName != "Мой план" {
		t.Errorf("PlanName = %q", cfg.PlanName)
	}
	if cfg.Telemetry == nil || cfg.Telemetry.OTLPEndpoint != "localhost:4317" || !cfg.Telemetry.Insecure {
		t.Errorf("Telemetry = %+v", cfg.Telemetry)
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "db_pathh: /tmp/x.db\n")

	if _, err := Load(path); err == nil {
		t.Error("Load accepted a config with a misspelled key")
	}
}

func TestLoad_TelemetryRequiresEndpoint(t *testing.T) {
	path := writeConfig(t, `
telemetry:
  insecure: true
`)

	if _, err := Load(path); err == nil {
		t.Error("Load accepted telemetry without an endpoint")
	}
}
