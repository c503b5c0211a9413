// Package config holds the settings used to open a haystack index.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for an index and the tools that use it.
type Config struct {
	// Path is the badger data directory. Ignored when InMemory is set.
	Path string `yaml:"path"`

	// InMemory keeps the index in memory only.
	InMemory bool `yaml:"inMemory"`

	// PageSize is the default number of hits per page.
	// Default: 42
	PageSize int `yaml:"pageSize"`

	// PoolSize is the number of workers used when reindexing in bulk.
	// Zero picks a size from the number of CPUs.
	PoolSize int `yaml:"poolSize"`

	// BatchSize is the number of postings committed per transaction when reindexing in bulk.
	// Default: 100
	BatchSize int `yaml:"batchSize"`

	// Stemming reduces words to their stems before indexing and searching.
	// Default: true
	Stemming bool `yaml:"stemming"`

	// StopWords drops common English words before indexing and searching.
	StopWords bool `yaml:"stopWords"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"logLevel"`

	// LogFormat is text or json.
	LogFormat string `yaml:"logFormat"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithPath sets the data directory.
func WithPath(path string) ConfigOption {
	return func(c *Config) {
		c.Path = path
	}
}

// WithInMemory keeps the index in memory.
func WithInMemory(inMemory bool) ConfigOption {
	return func(c *Config) {
		c.InMemory = inMemory
	}
}

// WithPageSize sets the default page size.
func WithPageSize(size int) ConfigOption {
	return func(c *Config) {
		c.PageSize = size
	}
}

// WithPoolSize sets the bulk reindex worker count.
func WithPoolSize(size int) ConfigOption {
	return func(c *Config) {
		c.PoolSize = size
	}
}

// WithBatchSize sets the bulk reindex batch size.
func WithBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.BatchSize = size
	}
}

// WithStemming turns stemming on or off.
func WithStemming(stemming bool) ConfigOption {
	return func(c *Config) {
		c.Stemming = stemming
	}
}

// WithStopWords turns English stop word removal on or off.
func WithStopWords(stopWords bool) ConfigOption {
	return func(c *Config) {
		c.StopWords = stopWords
	}
}

// WithLogging sets the log level and format.
func WithLogging(level, format string) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
		c.LogFormat = format
	}
}

// DefaultConfig returns a Config with defaults for a local index.
func DefaultConfig() *Config {
	return &Config{
		Path:      "./haystack.db",
		PageSize:  42,
		BatchSize: 100,
		Stemming:  true,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads a YAML config file, if path is not empty, over the defaults and
// then applies HAYSTACK_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HAYSTACK_PATH"); v != "" {
		cfg.Path = v
	}
	if v := os.Getenv("HAYSTACK_IN_MEMORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.InMemory = b
		}
	}
	if v := os.Getenv("HAYSTACK_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PageSize = n
		}
	}
	if v := os.Getenv("HAYSTACK_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PoolSize = n
		}
	}
	if v := os.Getenv("HAYSTACK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HAYSTACK_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

// Normalize lower-cases the log settings.
func (c *Config) Normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if !c.InMemory && c.Path == "" {
		return errors.New("config: Path is required unless InMemory is set")
	}
	if c.PageSize < 1 {
		return errors.New("config: PageSize must be at least 1")
	}
	if c.PoolSize < 0 {
		return errors.New("config: PoolSize must not be negative")
	}
	if c.BatchSize < 1 {
		return errors.New("config: BatchSize must be at least 1")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown LogLevel %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown LogFormat %q", c.LogFormat)
	}
	return nil
}
