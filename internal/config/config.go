package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"adpulse/internal/dataprocessing"
)

// Config is the complete application configuration. Values load from
// environment variables (prefix ADPULSE) first, with an optional YAML file
// overlaid on top. Everything the pipeline needs travels in here
// explicitly; there is no process-wide settings state.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"50"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"25"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json"`
}

// PathsConfig contains file system paths for the batch CLI.
type PathsConfig struct {
	InputDir  string `yaml:"input_dir" envconfig:"INPUT_DIR" default:"data/input"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"output"`
}

// PipelineConfig carries the tunables of the consolidation pipeline.
// Aliases extend (not replace) the built-in alias table: custom names are
// appended after the defaults so the built-in matching still applies.
type PipelineConfig struct {
	VarianceThreshold float64             `yaml:"variance_threshold" envconfig:"VARIANCE_THRESHOLD" default:"0.5"`
	GroupByCampaign   bool                `yaml:"group_by_campaign" envconfig:"GROUP_BY_CAMPAIGN" default:"true"`
	ExtraAliases      map[string][]string `yaml:"extra_aliases" envconfig:"-"`
	LoaderConcurrency int                 `yaml:"loader_concurrency" envconfig:"LOADER_CONCURRENCY" default:"4"`
}

// Load loads configuration from environment variables, then overlays values
// from the YAML file at configPath if it exists (file values take
// precedence). An empty configPath skips the file.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("ADPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := cfg.overlayFile(configPath); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	if c.Pipeline.VarianceThreshold <= 0 {
		return fmt.Errorf("variance threshold must be positive, got %v", c.Pipeline.VarianceThreshold)
	}
	return nil
}

// PipelineSettings converts the configuration into the pipeline's explicit
// per-call Config, merging extra aliases after the built-in ones.
func (c *Config) PipelineSettings() dataprocessing.Config {
	aliases := dataprocessing.DefaultAliases()
	for field, names := range c.Pipeline.ExtraAliases {
		f := dataprocessing.Field(field)
		aliases[f] = append(aliases[f], names...)
	}
	return dataprocessing.Config{
		Aliases:           aliases,
		VarianceThreshold: c.Pipeline.VarianceThreshold,
		GroupByCampaign:   c.Pipeline.GroupByCampaign,
	}
}
