package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/snapfs/snapfs/pkg/status"
)

// Config is the daemon configuration, stored as TOML.
type Config struct {
	// RepoPath is the SCM repository the helper imports from.
	RepoPath string `toml:"repo_path"`

	// HelperPath is the import helper executable.
	HelperPath string `toml:"helper_path"`

	// StorePath is the byte-store database file.
	StorePath string `toml:"store_path"`

	StatusCache StatusCacheConfig `toml:"status_cache"`
}

// StatusCacheConfig bounds the status cache.
type StatusCacheConfig struct {
	MaxSize      int `toml:"scm_status_cache_max_size"`
	MinimumItems int `toml:"scm_status_cache_minimum_items"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		StorePath: "snapfs.db",
		StatusCache: StatusCacheConfig{
			MaxSize:      status.DefaultMaxSizeBytes,
			MinimumItems: status.DefaultMinimumItems,
		},
	}
}

// Load reads the configuration at path. A missing file yields
// Default; unset cache bounds fall back to their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config: unmarshal: %w", err)
	}
	if cfg.StatusCache.MaxSize <= 0 {
		cfg.StatusCache.MaxSize = status.DefaultMaxSizeBytes
	}
	if cfg.StatusCache.MinimumItems < 0 {
		cfg.StatusCache.MinimumItems = status.DefaultMinimumItems
	}
	return cfg, nil
}

// Write atomically writes the configuration to path via a temp file
// and rename.
func (c Config) Write(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}

// CacheConfig converts the cache bounds for status.NewCache.
func (c Config) CacheConfig() status.CacheConfig {
	return status.CacheConfig{
		MaxSizeBytes: c.StatusCache.MaxSize,
		MinimumItems: c.StatusCache.MinimumItems,
	}
}
