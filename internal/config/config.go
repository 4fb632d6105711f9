// Package config provides unified configuration loading for paperlens.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for paperlens.
type Config struct {
	Extractor     ExtractorConfig     `yaml:"extractor"`
	Summarizer    SummarizerConfig    `yaml:"summarizer"`
	Viewer        ViewerConfig        `yaml:"viewer"`
	Cache         CacheConfig         `yaml:"cache"`
	Pipeline      PipelineConfig      `yaml:"pipeline"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ExtractorConfig holds content extraction service settings.
type ExtractorConfig struct {
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheDir string        `yaml:"cache_dir"` // Disk cache for extracted markdown
}

// SummarizerConfig holds LLM summarization settings.
type SummarizerConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ViewerConfig holds result publisher settings.
type ViewerConfig struct {
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	Timeout   time.Duration `yaml:"timeout"`
	Streaming bool          `yaml:"streaming"` // Push records as they are produced
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	Enabled    bool          `yaml:"enabled"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// PipelineConfig holds orchestration settings.
type PipelineConfig struct {
	MaxConcurrentJobs int `yaml:"max_concurrent_jobs"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Extractor: ExtractorConfig{
			BaseURL:  "https://api.inkfold.dev/v1",
			Timeout:  120 * time.Second,
			CacheDir: ".cache",
		},
		Summarizer: SummarizerConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-2024-08-06",
			Temperature: 0.0,
			MaxTokens:   8192,
			Timeout:     240 * time.Second,
		},
		Viewer: ViewerConfig{
			BaseURL:   "https://viewer.paperlens.dev/api/v1",
			Timeout:   60 * time.Second,
			Streaming: false,
		},
		Cache: CacheConfig{
			Driver:     "memory",
			Enabled:    true,
			TTL:        7 * 24 * time.Hour,
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Pipeline: PipelineConfig{
			MaxConcurrentJobs: 1,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Pipeline.MaxConcurrentJobs < 1 {
		return fmt.Errorf("max_concurrent_jobs must be at least 1")
	}

	if c.Summarizer.Model == "" {
		return fmt.Errorf("summarizer model must not be empty")
	}

	if c.Summarizer.Temperature < 0 || c.Summarizer.Temperature > 2 {
		return fmt.Errorf("summarizer temperature must be between 0 and 2")
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EXTRACTOR_API_URL"); v != "" {
		cfg.Extractor.BaseURL = v
	}

	if v := os.Getenv("EXTRACTOR_API_KEY"); v != "" {
		cfg.Extractor.APIKey = v
	}

	if v := os.Getenv("PAPERLENS_CACHE_DIR"); v != "" {
		cfg.Extractor.CacheDir = v
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Summarizer.APIKey = v
	}

	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.Summarizer.BaseURL = v
	}

	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Summarizer.Model = v
	}

	if v := os.Getenv("VIEWER_API_URL"); v != "" {
		cfg.Viewer.BaseURL = v
	}

	if v := os.Getenv("VIEWER_API_KEY"); v != "" {
		cfg.Viewer.APIKey = v
	}

	if v := os.Getenv("PAPERLENS_VIEWER"); isTruthy(v) {
		cfg.Viewer.Streaming = true
	}

	if v := os.Getenv("PAPERLENS_DISABLE_CACHE"); isTruthy(v) {
		cfg.Cache.Enabled = false
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		if opts, err := redis.ParseURL(v); err == nil {
			cfg.Cache.Driver = "redis"
			cfg.Cache.Redis.Addr = opts.Addr
			cfg.Cache.Redis.Password = opts.Password
			cfg.Cache.Redis.DB = opts.DB
		}
	}

	if v := os.Getenv("PAPERLENS_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pipeline.MaxConcurrentJobs = n
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

// isTruthy reports whether an env toggle is set to an affirmative value.
func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
