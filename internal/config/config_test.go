package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Detector.ConfidenceThresh != 0.5 {
		t.Errorf("confidence threshold: got %v, want 0.5", cfg.Detector.ConfidenceThresh)
	}
	if cfg.Pipeline.FailureLimit != 10 {
		t.Errorf("failure limit: got %d, want 10", cfg.Pipeline.FailureLimit)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.yaml")
	data := []byte(`
settings:
  logLevel: debug
robot:
  ip: 192.168.68.80
mapping:
  swayMax: 0.3
  smoothing: 0.6
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Settings.LogLevel != "debug" {
		t.Errorf("log level: got %q, want debug", cfg.Settings.LogLevel)
	}
	if cfg.Robot.IP != "192.168.68.80" {
		t.Errorf("robot IP: got %q", cfg.Robot.IP)
	}
	if cfg.Mapping.Smoothing != 0.6 {
		t.Errorf("smoothing: got %v, want 0.6", cfg.Mapping.Smoothing)
	}
	// Untouched sections keep their defaults.
	if cfg.Detector.InputSize != 640 {
		t.Errorf("input size: got %d, want 640", cfg.Detector.InputSize)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("ROBOT_IP", "10.0.0.9")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Robot.IP != "10.0.0.9" {
		t.Errorf("robot IP: got %q, want env value", cfg.Robot.IP)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("mapping:\n  smoothing: 1.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for smoothing > 1")
	}
}
