package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadReadsConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "path: " + filepath.Join(dir, "db") + "\napi:\n  url: http://localhost:8080\n  timeout: 3s\nscope: p1\n"
	if err := os.WriteFile(filepath.Join(dir, ".sitelog.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SITELOG_CONFIG_PATH", dir)
	t.Setenv("SITELOG_ROLE", "manager")
	t.Setenv("SITELOG_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BasePath() != filepath.Join(dir, "db") {
		t.Fatalf("unexpected path %q", cfg.Path)
	}
	if cfg.APIURL != "http://localhost:8080" || cfg.APITimeout != 3*time.Second || cfg.Scope != "p1" {
		t.Fatalf("unexpected api settings %+v", cfg)
	}
	if cfg.Role != "manager" || cfg.LogLevel != "debug" {
		t.Fatalf("env should override defaults, got %+v", cfg)
	}
	if cfg.Offline() {
		t.Fatalf("configured api url means online")
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "UTC"}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("unexpected location %v %v", loc, err)
	}
	cfg.Timezone = "Mars/Olympus"
	if _, err := cfg.Location(); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
}
