package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "SOUNDSHELF_"

// Config represents the application configuration loaded from a TOML file.
//
// Every field can be overridden from the environment, e.g. SOUNDSHELF_CACHE_TTL=30s.
type Config struct {
	Database DatabaseConfig `toml:"database" envPrefix:"DATABASE_"`
	Cache    CacheConfig    `toml:"cache" envPrefix:"CACHE_"`
	Retry    RetryConfig    `toml:"retry" envPrefix:"RETRY_"`
	Tasks    TasksConfig    `toml:"tasks" envPrefix:"TASKS_"`
	Log      LogConfig      `toml:"log" envPrefix:"LOG_"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" env:"PATH"`
	MaxOpenConns int    `toml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
}

// CacheConfig controls the user-type cache.
type CacheConfig struct {
	TTL      time.Duration `toml:"ttl" env:"TTL"`
	Coalesce bool          `toml:"coalesce" env:"COALESCE"`
}

// RetryConfig controls the backoff schedule used for store lookups.
type RetryConfig struct {
	MaxAttempts int           `toml:"max_attempts" env:"MAX_ATTEMPTS"`
	BaseDelay   time.Duration `toml:"base_delay" env:"BASE_DELAY"`
}

// TasksConfig contains settings for bulk operations.
type TasksConfig struct {
	Workers   int     `toml:"workers" env:"WORKERS"`
	RateLimit float64 `toml:"rate_limit" env:"RATE_LIMIT"`
}

// LogConfig sets the minimum log level.
type LogConfig struct {
	Level string `toml:"level" env:"LEVEL"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ReadConfig builds the effective configuration.
//
// The file at path is used when it exists, otherwise the defaults. Variables from envFile
// (when present) are loaded into the process environment without overriding existing
// ones, then SOUNDSHELF_* variables are applied. The result is validated.
func ReadConfig(path, envFile string) (*Config, error) {
	config := DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}

	if err := ApplyEnv(config, envFile); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overlays environment variables onto config.
func ApplyEnv(config *Config, envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load env file: %w", err)
			}
		}
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks the settings that would otherwise fail at runtime.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts))
	}
	if c.Retry.BaseDelay < 0 {
		errs = append(errs, fmt.Errorf("retry.base_delay must not be negative, got %s", c.Retry.BaseDelay))
	}
	if c.Tasks.Workers < 1 {
		errs = append(errs, fmt.Errorf("tasks.workers must be at least 1, got %d", c.Tasks.Workers))
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("log.level: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// LogLevel returns the configured [log.Level], defaulting to info.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
