package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harness.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  base_url: http://api.test:9000/\n")
	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.BaseURL != "http://api.test:9000" {
		t.Errorf("base url not trimmed: %q", cfg.Server.BaseURL)
	}
	if cfg.Call.PhoneNumber != "+1234567890" {
		t.Errorf("phone default: %q", cfg.Call.PhoneNumber)
	}
	if cfg.Call.PostCallWait != 30*time.Second {
		t.Errorf("post call wait default: %v", cfg.Call.PostCallWait)
	}
	if cfg.Google.Detect != "get-auth" {
		t.Errorf("detect default: %q", cfg.Google.Detect)
	}
	if cfg.Google.ListenAddr != "127.0.0.1:8181" {
		t.Errorf("listen addr default: %q", cfg.Google.ListenAddr)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("log defaults: %+v", cfg.Log)
	}
}

func TestLoadConfigMissingDefaultPathFallsBack(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := LoadConfig(DefaultPath, true)
	if err != nil {
		t.Fatalf("defaults should load without a file: %v", err)
	}
	if cfg.Server.BaseURL != "http://localhost:8080" {
		t.Errorf("base url default: %q", cfg.Server.BaseURL)
	}
	if !cfg.Runtime.Dev {
		t.Error("dev flag not carried")
	}
}

func TestLoadConfigMissingExplicitPathFails(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), false); err == nil {
		t.Fatal("expected error for explicit missing path")
	}
}

func TestLoadConfigRejectsBadDetect(t *testing.T) {
	path := writeConfig(t, "google:\n  detect: carrier-pigeon\n")
	if _, err := LoadConfig(path, false); err == nil {
		t.Fatal("expected detect validation error")
	}
}

func TestLoadConfigRejectsBadBaseURL(t *testing.T) {
	path := writeConfig(t, "server:\n  base_url: ftp://api.test\n")
	if _, err := LoadConfig(path, false); err == nil {
		t.Fatal("expected base_url validation error")
	}
}
