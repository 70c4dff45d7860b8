package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	tests := []struct {
		name  string
		check func(*Config) bool
	}{
		{"default server port is 8080", func(c *Config) bool { return c.Server.Port == 8080 }},
		{"default server host is 0.0.0.0", func(c *Config) bool { return c.Server.Host == "0.0.0.0" }},
		{"default storage backend is file", func(c *Config) bool { return c.Storage.Backend == "file" }},
		{"default storage data dir", func(c *Config) bool { return c.Storage.DataDir == "./data" }},
		{"default batch size is 1000", func(c *Config) bool { return c.Sequence.DefaultBatchSize == 1000 }},
		{"default prefetch threshold is 100", func(c *Config) bool { return c.Sequence.PrefetchThreshold == 100 }},
		{"default log level is info", func(c *Config) bool { return c.Observability.LogLevel == "info" }},
		{"default log format is json", func(c *Config) bool { return c.Observability.LogFormat == "json" }},
		{"default metrics path", func(c *Config) bool { return c.Observability.MetricsPath == "/metrics" }},
		{"default metrics enabled", func(c *Config) bool { return c.Observability.MetricsEnabled }},
		{"listen addr format", func(c *Config) bool { return c.Server.ListenAddr() == "0.0.0.0:8080" }},
	}

	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(cfg) {
				t.Errorf("check failed for %s", tt.name)
			}
		})
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("IDBUILDER_WORKER_SERVER__PORT", "9090")
	t.Setenv("IDBUILDER_WORKER_SEQUENCE__DEFAULT_BATCH_SIZE", "500")

	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Sequence.DefaultBatchSize != 500 {
		t.Errorf("Sequence.DefaultBatchSize = %d, want 500", cfg.Sequence.DefaultBatchSize)
	}
}

func TestLoadRejectsUnsupportedBackend(t *testing.T) {
	t.Setenv("IDBUILDER_WORKER_STORAGE__BACKEND", "redis")

	if _, err := LoadFromDir(t.TempDir()); err == nil {
		t.Fatalf("Load with unsupported backend = nil error, want error")
	}
}

func TestLoadFileOverlayAppliesBeforeEnv(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "default.json"), `{"server":{"port":7000},"sequence":{"default_batch_size":42}}`)

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000 from default.json", cfg.Server.Port)
	}
	if cfg.Sequence.DefaultBatchSize != 42 {
		t.Errorf("Sequence.DefaultBatchSize = %d, want 42 from default.json", cfg.Sequence.DefaultBatchSize)
	}
	// Fields the overlay didn't mention keep the hardcoded default.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default 0.0.0.0", cfg.Server.Host)
	}

	t.Setenv("IDBUILDER_WORKER_SERVER__PORT", "9999")
	cfg, err = LoadFromDir(dir)
	if err != nil {
		t.Fatalf("Load with env override: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999, env must win over default.json", cfg.Server.Port)
	}
}

func TestLoadProfileOverlayLayersOverDefault(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "default.json"), `{"observability":{"log_level":"info","log_format":"json"}}`)
	writeJSON(t, filepath.Join(dir, "staging.json"), `{"observability":{"log_level":"debug"}}`)
	t.Setenv(profileEnvVar, "staging")

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("Observability.LogLevel = %q, want %q from staging.json", cfg.Observability.LogLevel, "debug")
	}
	if cfg.Observability.LogFormat != "json" {
		t.Errorf("Observability.LogFormat = %q, want %q to survive from default.json", cfg.Observability.LogFormat, "json")
	}
}

func TestLoadMissingOverlayFilesAreNotErrors(t *testing.T) {
	if _, err := LoadFromDir(filepath.Join(t.TempDir(), "does-not-exist")); err != nil {
		t.Fatalf("Load with no overlay files present = %v, want nil error", err)
	}
}

func writeJSON(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
