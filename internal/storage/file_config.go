package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/idbuilder/worker/internal/domain"
)

func (s *FileStorage) configPath(kind, name string) string {
	return filepath.Join(s.configsDir, kind, sanitizeName(name)+".json")
}

func (s *FileStorage) configDir(kind string) string {
	return filepath.Join(s.configsDir, kind)
}

func saveConfig(s *FileStorage, kind, name string, v any) error {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()

	path := s.configPath(kind, name)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening config %q/%q: %w", kind, name, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing config %q/%q: %w", kind, name, err)
	}
	return f.Sync()
}

func getConfig[T any](s *FileStorage, kind, name string) (*T, error) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()

	path := s.configPath(kind, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config %q/%q: %w", kind, name, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding config %q/%q: %w", kind, name, err)
	}
	return &v, nil
}

func listConfigs[T any](s *FileStorage, kind string) ([]T, error) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()

	entries, err := os.ReadDir(s.configDir(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing configs %q: %w", kind, err)
	}

	out := make([]T, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.configDir(kind), e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", e.Name(), err)
		}
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decoding config file %q: %w", e.Name(), err)
		}
		out = append(out, v)
	}
	return out, nil
}

func deleteConfig(s *FileStorage, kind, name string) (bool, error) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()

	path := s.configPath(kind, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat config %q/%q: %w", kind, name, err)
	}
	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("deleting config %q/%q: %w", kind, name, err)
	}
	return true, nil
}

// --- Increment configs ---

func (s *FileStorage) SaveIncrementConfig(_ context.Context, cfg domain.IncrementConfig) error {
	return saveConfig(s, "increment", cfg.Name, cfg)
}

func (s *FileStorage) GetIncrementConfig(_ context.Context, name string) (*domain.IncrementConfig, error) {
	return getConfig[domain.IncrementConfig](s, "increment", name)
}

func (s *FileStorage) ListIncrementConfigs(_ context.Context) ([]domain.IncrementConfig, error) {
	out, err := listConfigs[domain.IncrementConfig](s, "increment")
	sortConfigsByName(out, func(c domain.IncrementConfig) string { return c.Name })
	return out, err
}

func (s *FileStorage) DeleteIncrementConfig(_ context.Context, name string) (bool, error) {
	return deleteConfig(s, "increment", name)
}

// --- Snowflake configs ---

func (s *FileStorage) SaveSnowflakeConfig(_ context.Context, cfg domain.SnowflakeConfig) error {
	return saveConfig(s, "snowflake", cfg.Name, cfg)
}

func (s *FileStorage) GetSnowflakeConfig(_ context.Context, name string) (*domain.SnowflakeConfig, error) {
	return getConfig[domain.SnowflakeConfig](s, "snowflake", name)
}

func (s *FileStorage) ListSnowflakeConfigs(_ context.Context) ([]domain.SnowflakeConfig, error) {
	out, err := listConfigs[domain.SnowflakeConfig](s, "snowflake")
	sortConfigsByName(out, func(c domain.SnowflakeConfig) string { return c.Name })
	return out, err
}

func (s *FileStorage) DeleteSnowflakeConfig(_ context.Context, name string) (bool, error) {
	return deleteConfig(s, "snowflake", name)
}

// --- Formatted configs ---

func (s *FileStorage) SaveFormattedConfig(_ context.Context, cfg domain.FormattedConfig) error {
	return saveConfig(s, "formatted", cfg.Name, cfg)
}

func (s *FileStorage) GetFormattedConfig(_ context.Context, name string) (*domain.FormattedConfig, error) {
	return getConfig[domain.FormattedConfig](s, "formatted", name)
}

func (s *FileStorage) ListFormattedConfigs(_ context.Context) ([]domain.FormattedConfig, error) {
	out, err := listConfigs[domain.FormattedConfig](s, "formatted")
	sortConfigsByName(out, func(c domain.FormattedConfig) string { return c.Name })
	return out, err
}

func (s *FileStorage) DeleteFormattedConfig(_ context.Context, name string) (bool, error) {
	return deleteConfig(s, "formatted", name)
}

func sortConfigsByName[T any](items []T, name func(T) string) {
	sort.Slice(items, func(i, j int) bool { return name(items[i]) < name(items[j]) })
}
