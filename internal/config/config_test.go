package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := loadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("loadFile() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.TargetOrigin != "*" {
		t.Errorf("TargetOrigin = %q, want *", cfg.TargetOrigin)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("PingPeriod = %v", cfg.PingPeriod)
	}
	if cfg.RateInterval != time.Second || cfg.RateLimit != 20 {
		t.Errorf("rate = %d per %v", cfg.RateLimit, cfg.RateInterval)
	}
	if cfg.Backpressure != "drop" {
		t.Errorf("Backpressure = %q", cfg.Backpressure)
	}
	if cfg.Secret == "" {
		t.Error("an empty secret should be replaced with a random one")
	}
}

func TestLoadFile_KeepsConfiguredSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("secret: s3cret\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadFile(path)
	if err != nil {
		t.Fatalf("loadFile() error = %v", err)
	}
	if cfg.Secret != "s3cret" {
		t.Errorf("Secret = %q, want s3cret", cfg.Secret)
	}
}

func TestLoadFile_FromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	body := []byte(`
mode: debug
port: 9000
origin: https://host.example
target_origin: https://frame.example
send_buffer: 8
rate_interval: 250ms
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFile(path)
	if err != nil {
		t.Fatalf("loadFile() error = %v", err)
	}
	if cfg.Mode != "debug" || cfg.Port != 9000 {
		t.Errorf("got mode=%q port=%d", cfg.Mode, cfg.Port)
	}
	if cfg.Origin != "https://host.example" || cfg.TargetOrigin != "https://frame.example" {
		t.Errorf("got origin=%q target_origin=%q", cfg.Origin, cfg.TargetOrigin)
	}
	if cfg.SendBuffer != 8 || cfg.RateInterval != 250*time.Millisecond {
		t.Errorf("got send_buffer=%d rate_interval=%v", cfg.SendBuffer, cfg.RateInterval)
	}
	if cfg.LoopQueue != 256 {
		t.Errorf("unset key should keep default, LoopQueue = %d", cfg.LoopQueue)
	}
}

func TestLoadFile_EnvOverride(t *testing.T) {
	t.Setenv("FRAMEBRIDGE_PORT", "9191")
	t.Setenv("FRAMEBRIDGE_TARGET_ORIGIN", "https://only.example")

	cfg, err := loadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("loadFile() error = %v", err)
	}
	if cfg.Port != 9191 {
		t.Errorf("Port = %d, want 9191", cfg.Port)
	}
	if cfg.TargetOrigin != "https://only.example" {
		t.Errorf("TargetOrigin = %q", cfg.TargetOrigin)
	}
}

func TestLoadFile_EmptyTargetOrigin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("target_origin: \"\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadFile(path); !errors.Is(err, ErrEmptyTargetOrigin) {
		t.Error("expected an error for an empty target_origin")
	}
}

func TestLoad_UsesConfigEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "config.staging.yaml"), []byte("port: 7001\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("CONFIG_ENV", "staging")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 7001 {
		t.Errorf("Port = %d, want 7001", cfg.Port)
	}
}
