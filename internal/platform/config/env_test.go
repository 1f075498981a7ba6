package config

import "testing"

type testConfig struct {
	DataDir     string `env:"HAIGUI_DATA_DIR" envDefault:"./data"`
	TelemetryDB string `env:"HAIGUI_TELEMETRY_DB"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg testConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.DataDir != "./data" {
		t.Fatalf("expected default data dir, got %q", cfg.DataDir)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("HAIGUI_DATA_DIR", "/var/lib/haigui")
	t.Setenv("HAIGUI_TELEMETRY_DB", "/var/lib/haigui/telemetry.db")

	var cfg testConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.DataDir != "/var/lib/haigui" {
		t.Fatalf("expected override, got %q", cfg.DataDir)
	}
	if cfg.TelemetryDB != "/var/lib/haigui/telemetry.db" {
		t.Fatalf("expected override, got %q", cfg.TelemetryDB)
	}
}
