// Package config loads database settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"heapdb/pkg/logging"
	"heapdb/pkg/primitives"
)

// HomeEnv overrides the data directory when set.
const HomeEnv = "HEAPDB_HOME"

const (
	DefaultPages        = 50
	DefaultPageSize     = 4096
	DefaultBuckets      = 100
	DefaultCacheEntries = 64

	maxPageSize     = 64 * 1024
	pageSizeQuantum = 512
)

type Config struct {
	DataDir     string           `yaml:"data_dir"`
	CatalogFile string           `yaml:"catalog_file"` // relative paths resolve against DataDir
	BufferPool  BufferPoolConfig `yaml:"buffer_pool"`
	Log         LogConfig        `yaml:"log"`
	Stats       StatsConfig      `yaml:"stats"`
}

type BufferPoolConfig struct {
	Pages    int `yaml:"pages"`
	PageSize int `yaml:"page_size"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
	Output string `yaml:"output"` // empty for stderr
}

type StatsConfig struct {
	Buckets      int   `yaml:"buckets"`
	CacheEntries int64 `yaml:"cache_entries"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataDir: "data",
		BufferPool: BufferPoolConfig{
			Pages:    DefaultPages,
			PageSize: DefaultPageSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Stats: StatsConfig{
			Buckets:      DefaultBuckets,
			CacheEntries: DefaultCacheEntries,
		},
	}
}

// Load builds a Config from defaults, then the YAML file at path if path is
// not empty, then HEAPDB_HOME, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening config: %w", err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if home := os.Getenv(HomeEnv); home != "" {
		cfg.DataDir = home
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the page size and pool capacity and fills in a missing
// histogram bucket count.
func (c *Config) Validate() error {
	ps := c.BufferPool.PageSize
	if ps <= 0 || ps%pageSizeQuantum != 0 || ps > maxPageSize {
		return fmt.Errorf("page size %d must be a positive multiple of %d no larger than %d", ps, pageSizeQuantum, maxPageSize)
	}
	if c.BufferPool.Pages < 1 {
		return fmt.Errorf("buffer pool needs at least one page, got %d", c.BufferPool.Pages)
	}
	if c.DataDir == "" {
		return errors.New("data directory cannot be empty")
	}
	if c.Stats.Buckets <= 0 {
		c.Stats.Buckets = DefaultBuckets
	}
	return nil
}

// CatalogPath returns the schema file location, or "" when none is configured.
func (c *Config) CatalogPath() primitives.Filepath {
	if c.CatalogFile == "" {
		return ""
	}
	if filepath.IsAbs(c.CatalogFile) {
		return primitives.Filepath(c.CatalogFile)
	}
	return primitives.Filepath(c.DataDir).Join(c.CatalogFile)
}

// Logging converts the log section to a logging.Config.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:      logging.ParseLevel(c.Log.Level),
		OutputPath: c.Log.Output,
		Format:     c.Log.Format,
	}
}
