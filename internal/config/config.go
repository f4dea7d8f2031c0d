package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ddi-checker/internal/domain"
)

// EnvPrefix is the prefix of every environment variable read by the manager.
const EnvPrefix = "DDI_CHECKER"

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v          *viper.Viper
	configFile string
	config     *domain.Config
}

var _ domain.ConfigManager = (*Manager)(nil)

// NewManager creates a new configuration manager. An empty configFile searches
// the default locations; a missing default file is not an error.
func NewManager(configFile string) (*Manager, error) {
	m := &Manager{configFile: configFile}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// .env values become ordinary environment variables; real env wins.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".ddi-checker"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if m.configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.v = v
	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Assessment service defaults
	v.SetDefault("api.base_url", "http://localhost:10000")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.rate_limit", 5)
	v.SetDefault("api.user_agent", "ddi-checker/1.0")
	v.SetDefault("api.circuit_breaker.max_requests", 1)
	v.SetDefault("api.circuit_breaker.interval", "60s")
	v.SetDefault("api.circuit_breaker.timeout", "30s")
	v.SetDefault("api.circuit_breaker.failure_threshold", 5)

	// Suggestion cache defaults
	v.SetDefault("cache.memory_size", 256)
	v.SetDefault("cache.memory_ttl", "15m")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.redis_ttl", "24h")
	v.SetDefault("cache.pool_size", 10)
	v.SetDefault("cache.pool_timeout", "4s")
	v.SetDefault("cache.max_retries", 3)

	// Archive defaults
	v.SetDefault("archive.driver", "sqlite")
	v.SetDefault("archive.path", defaultArchivePath())
	v.SetDefault("archive.database_url", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9464")

	v.SetDefault("display.history_limit", 6)
	v.SetDefault("display.format", "text")
}

func defaultArchivePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ddi-checker", "reports.db")
	}
	return filepath.Join(home, ".ddi-checker", "reports.db")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetAPIConfig returns assessment service configuration
func (m *Manager) GetAPIConfig() *domain.APIConfig {
	return &m.config.API
}

// GetCacheConfig returns suggestion cache configuration
func (m *Manager) GetCacheConfig() *domain.CacheConfig {
	return &m.config.Cache
}

// GetArchiveConfig returns report archive configuration
func (m *Manager) GetArchiveConfig() *domain.ArchiveConfig {
	return &m.config.Archive
}

// ConfigFileUsed returns the file the configuration was read from, if any.
func (m *Manager) ConfigFileUsed() string {
	return m.v.ConfigFileUsed()
}

// Set overrides a single key and re-decodes the configuration. Used for
// command-line flags that take precedence over files and environment.
func (m *Manager) Set(key string, value any) error {
	m.v.Set(key, value)
	config := &domain.Config{}
	if err := m.v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	m.config = config
	return nil
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.API.BaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}
	u, err := url.Parse(config.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL: %s", config.API.BaseURL)
	}
	if config.API.Timeout <= 0 {
		return fmt.Errorf("API timeout must be positive")
	}
	if config.API.RateLimit <= 0 {
		return fmt.Errorf("invalid API rate limit: %d", config.API.RateLimit)
	}

	if config.Cache.MemorySize <= 0 {
		return fmt.Errorf("invalid cache memory size: %d", config.Cache.MemorySize)
	}

	switch strings.ToLower(config.Archive.Driver) {
	case "none", "":
	case "sqlite":
		if config.Archive.Path == "" {
			return fmt.Errorf("archive path is required for sqlite driver")
		}
	case "postgres":
		if config.Archive.DatabaseURL == "" {
			return fmt.Errorf("archive database URL is required for postgres driver")
		}
	default:
		return fmt.Errorf("invalid archive driver: %s", config.Archive.Driver)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	if config.Display.HistoryLimit <= 0 {
		return fmt.Errorf("invalid history limit: %d", config.Display.HistoryLimit)
	}

	return nil
}
