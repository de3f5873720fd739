package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Archive ArchiveConfig `yaml:"archive"`
	Output  OutputConfig  `yaml:"output"`
	Lookup  LookupConfig  `yaml:"lookup"`
	Media   MediaConfig   `yaml:"media"`
	Server  ServerConfig  `yaml:"server"`
}

// ArchiveConfig locates the exported archive on disk.
type ArchiveConfig struct {
	Root string `yaml:"root" envconfig:"ARCHIVE_ROOT"`
}

// OutputConfig controls where the document model and run state land.
type OutputConfig struct {
	Dir          string `yaml:"dir" envconfig:"OUTPUT_DIR" default:"unspool-out"`
	ModelFile    string `yaml:"model_file" envconfig:"OUTPUT_MODEL_FILE" default:"model.json"`
	HandleCache  string `yaml:"handle_cache" envconfig:"HANDLE_CACHE_FILE" default:"handle-cache.json"`
	MediaStateDB string `yaml:"media_state_db" envconfig:"MEDIA_STATE_DB" default:"media-state.db"`
	PrettyModel  bool   `yaml:"pretty_model" envconfig:"OUTPUT_PRETTY"`
}

// LookupConfig governs remote handle resolution. Disabled by default:
// querying the lookup endpoint discloses which accounts the archive
// references, so it needs an explicit opt-in.
type LookupConfig struct {
	Enabled     bool          `yaml:"enabled" envconfig:"LOOKUP_ENABLED"`
	BatchSize   int           `yaml:"batch_size" envconfig:"LOOKUP_BATCH_SIZE" default:"100"`
	Concurrency int           `yaml:"concurrency" envconfig:"LOOKUP_CONCURRENCY" default:"2"`
	RateLimit   float64       `yaml:"rate_limit" envconfig:"LOOKUP_RATE_LIMIT" default:"1"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"LOOKUP_TIMEOUT" default:"15s"`
	BaseURL     string        `yaml:"base_url" envconfig:"LOOKUP_BASE_URL" default:"https://api.twitter.com"`
}

// MediaConfig governs local media location and the opt-in best-quality
// upgrade downloads.
type MediaConfig struct {
	Upgrade       bool          `yaml:"upgrade" envconfig:"MEDIA_UPGRADE"`
	Concurrency   int           `yaml:"concurrency" envconfig:"MEDIA_CONCURRENCY" default:"2"`
	RateLimit     float64       `yaml:"rate_limit" envconfig:"MEDIA_RATE_LIMIT" default:"1"`
	MaxAttempts   int           `yaml:"max_attempts" envconfig:"MEDIA_MAX_ATTEMPTS" default:"4"`
	RetryDelay    time.Duration `yaml:"retry_delay" envconfig:"MEDIA_RETRY_DELAY" default:"2s"`
	MaxRetryDelay time.Duration `yaml:"max_retry_delay" envconfig:"MEDIA_MAX_RETRY_DELAY" default:"30s"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"MEDIA_TIMEOUT" default:"2m"`
	UserAgent     string        `yaml:"user_agent" envconfig:"MEDIA_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
}

// ServerConfig holds the preview server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"127.0.0.1"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT" default:"8490"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Lookup.BatchSize <= 0 || c.Lookup.BatchSize > 100 {
		return fmt.Errorf("lookup batch_size must be in 1..100, got %d", c.Lookup.BatchSize)
	}
	if c.Lookup.Concurrency <= 0 {
		return fmt.Errorf("lookup concurrency must be positive")
	}
	if c.Media.Concurrency <= 0 {
		return fmt.Errorf("media concurrency must be positive")
	}
	if c.Media.MaxAttempts <= 0 {
		return fmt.Errorf("media max_attempts must be positive")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
