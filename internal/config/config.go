// Package config loads the application configuration the way the Rust
// reference does: a base layer of hardcoded defaults, optionally overlaid by
// JSON files selected by a profile, finally overridden by environment
// variables using caarlos0/env's nested envPrefix tags. The overlay mirrors
// the reference's config/{profile}.toml layering, adapted to JSON since
// nothing else in this stack pulls in a TOML library.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// envVarPrefix is prepended to every nested env tag below, so
// ServerConfig.Port (env:"PORT", envPrefix:"SERVER__" on the parent field)
// resolves to IDBUILDER_WORKER_SERVER__PORT.
const envVarPrefix = "IDBUILDER_WORKER_"

// profileEnvVar selects which optional config/<profile>.json overlays
// config/default.json. Unset resolves to defaultProfile.
const profileEnvVar = "IDBUILDER_PROFILE"

const defaultProfile = "development"

// defaultConfigDir is where Load looks for default.json and <profile>.json.
const defaultConfigDir = "config"

// ServerConfig is the HTTP listener configuration.
type ServerConfig struct {
	Host string `env:"HOST" json:"host"`
	Port int    `env:"PORT" json:"port"`
}

// ListenAddr returns the address the HTTP server should bind to.
func (s ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects and parameterizes the storage backend. Only the
// file backend is implemented; backend is still read from the environment
// so a deployment can fail fast with a clear error if it names one that
// isn't.
type StorageConfig struct {
	Backend string `env:"BACKEND" json:"backend"`
	DataDir string `env:"FILE_DATA_DIR" json:"file_data_dir"`
}

// SequenceConfig tunes the two-tier cache shared by the increment and
// formatted generation strategies.
type SequenceConfig struct {
	DefaultBatchSize  uint32 `env:"DEFAULT_BATCH_SIZE" json:"default_batch_size"`
	PrefetchThreshold uint32 `env:"PREFETCH_THRESHOLD" json:"prefetch_threshold"`
}

// AuthConfig configures the two-tier token service.
type AuthConfig struct {
	AdminToken         string        `env:"ADMIN_TOKEN" json:"admin_token"`
	KeyTokenExpiration time.Duration `env:"KEY_TOKEN_EXPIRATION" json:"key_token_expiration"`
}

// ObservabilityConfig configures logging. MetricsEnabled and MetricsPath are
// loaded but not read by the server, which always serves metrics at /metrics.
type ObservabilityConfig struct {
	LogLevel       string `env:"LOG_LEVEL" json:"log_level"`
	LogFormat      string `env:"LOG_FORMAT" json:"log_format"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" json:"metrics_enabled"`
	MetricsPath    string `env:"METRICS_PATH" json:"metrics_path"`
}

// WorkerLeaseConfig tunes the snowflake worker-ID allocator.
type WorkerLeaseConfig struct {
	DefaultTTL time.Duration `env:"LEASE_TTL" json:"lease_ttl"`
}

// Config is the complete application configuration.
type Config struct {
	Server        ServerConfig        `envPrefix:"SERVER__" json:"server"`
	Storage       StorageConfig       `envPrefix:"STORAGE__" json:"storage"`
	Sequence      SequenceConfig      `envPrefix:"SEQUENCE__" json:"sequence"`
	Auth          AuthConfig          `envPrefix:"AUTH__" json:"auth"`
	Observability ObservabilityConfig `envPrefix:"OBSERVABILITY__" json:"observability"`
	WorkerLease   WorkerLeaseConfig   `envPrefix:"SNOWFLAKE__" json:"snowflake"`
}

// setDefaults fills cfg with the hardcoded base layer, the bottom of the
// default.json < <profile>.json < environment stack. These are deliberately
// not expressed as caarlos0/env envDefault tags: envDefault fires whenever
// the matching environment variable is unset, which would stomp on a value
// supplied by a file overlay before env.Parse ever runs.
func (c *Config) setDefaults() {
	c.Server = ServerConfig{Host: "0.0.0.0", Port: 8080}
	c.Storage = StorageConfig{Backend: "file", DataDir: "./data"}
	c.Sequence = SequenceConfig{DefaultBatchSize: 1000, PrefetchThreshold: 100}
	c.Auth = AuthConfig{AdminToken: "admin_change_me_in_production", KeyTokenExpiration: 720 * time.Hour}
	c.Observability = ObservabilityConfig{LogLevel: "info", LogFormat: "json", MetricsEnabled: true, MetricsPath: "/metrics"}
	c.WorkerLease = WorkerLeaseConfig{DefaultTTL: 60 * time.Second}
}

// Load reads configuration the same way Config.Load does in the reference:
// defaults, then config/default.json, then config/<profile>.json (profile
// from IDBUILDER_PROFILE, default "development"), then environment
// variables prefixed IDBUILDER_WORKER_ with "__" separating section from
// field (e.g. IDBUILDER_WORKER_SERVER__PORT). Each layer is optional except
// the hardcoded defaults; later layers win.
func Load() (*Config, error) {
	return LoadFromDir(defaultConfigDir)
}

// LoadFromDir is Load with an explicit directory to look for default.json
// and <profile>.json in, so tests and alternate deployments can point it
// elsewhere.
func LoadFromDir(configDir string) (*Config, error) {
	cfg := &Config{}
	cfg.setDefaults()

	profile := os.Getenv(profileEnvVar)
	if profile == "" {
		profile = defaultProfile
	}

	if err := overlayFile(cfg, filepath.Join(configDir, "default.json")); err != nil {
		return nil, err
	}
	if err := overlayFile(cfg, filepath.Join(configDir, profile+".json")); err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envVarPrefix}); err != nil {
		return nil, fmt.Errorf("parsing config from env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlayFile merges a JSON file's fields onto cfg, leaving fields the file
// omits untouched. A missing file is not an error: both overlay layers are
// optional.
func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config overlay %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config overlay %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port cannot be 0")
	}
	if c.Storage.Backend != "file" {
		return fmt.Errorf("unsupported storage.backend %q: only \"file\" is implemented", c.Storage.Backend)
	}
	if c.Sequence.DefaultBatchSize == 0 {
		return fmt.Errorf("sequence.default_batch_size cannot be 0")
	}
	return nil
}
