package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./soundshelf.db" {
			t.Errorf("expected database path ./soundshelf.db, got %s", config.Database.Path)
		}

		if config.Cache.TTL != 5*time.Minute {
			t.Errorf("expected cache ttl 5m, got %s", config.Cache.TTL)
		}

		if config.Cache.Coalesce {
			t.Error("expected coalescing to be disabled by default")
		}

		if config.Retry.MaxAttempts != 3 {
			t.Errorf("expected 3 retry attempts, got %d", config.Retry.MaxAttempts)
		}

		if config.Retry.BaseDelay != time.Second {
			t.Errorf("expected base delay 1s, got %s", config.Retry.BaseDelay)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20

[cache]
ttl = "90s"
coalesce = true

[retry]
base_delay = "250ms"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Cache.TTL != 90*time.Second || !config.Cache.Coalesce {
			t.Errorf("unexpected cache config: %+v", config.Cache)
		}

		if config.Retry.BaseDelay != 250*time.Millisecond {
			t.Errorf("expected base delay 250ms, got %s", config.Retry.BaseDelay)
		}

		if config.Retry.MaxAttempts != 3 {
			t.Errorf("missing keys should keep defaults, got max_attempts %d", config.Retry.MaxAttempts)
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[cache\nttl ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("ReadConfig Env Overrides", func(t *testing.T) {
		tmpDir := t.TempDir()
		envFile := filepath.Join(tmpDir, ".env")
		if err := os.WriteFile(envFile, []byte("SOUNDSHELF_RETRY_MAX_ATTEMPTS=5\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv("SOUNDSHELF_CACHE_TTL", "30s")
		t.Setenv("SOUNDSHELF_DATABASE_PATH", ":memory:")
		t.Cleanup(func() { os.Unsetenv("SOUNDSHELF_RETRY_MAX_ATTEMPTS") })

		config, err := ReadConfig(filepath.Join(tmpDir, "missing.toml"), envFile)
		if err != nil {
			t.Fatalf("failed to read config: %v", err)
		}

		if config.Cache.TTL != 30*time.Second {
			t.Errorf("expected ttl from env 30s, got %s", config.Cache.TTL)
		}
		if config.Database.Path != ":memory:" {
			t.Errorf("expected database path from env, got %s", config.Database.Path)
		}
		if config.Retry.MaxAttempts != 5 {
			t.Errorf("expected max attempts from env file 5, got %d", config.Retry.MaxAttempts)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := DefaultConfig()
		config.Retry.MaxAttempts = 0
		config.Cache.TTL = 0
		config.Log.Level = "loud"

		err := config.Validate()
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LogLevel", func(t *testing.T) {
		config := DefaultConfig()
		config.Log.Level = "debug"
		if config.LogLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", config.LogLevel())
		}

		config.Log.Level = ""
		if config.LogLevel() != log.InfoLevel {
			t.Errorf("expected info level fallback, got %v", config.LogLevel())
		}
	})
}
