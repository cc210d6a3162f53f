// Package config loads service settings from defaults, an optional YAML
// file, RETRIGGER_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/yz4230/retrigger/internal/deploy"
	"github.com/yz4230/retrigger/internal/github"
	"github.com/yz4230/retrigger/internal/queue"
)

const EnvPrefix = "RETRIGGER"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	GitHub   github.Config  `mapstructure:"github"`
	Deploy   DeployConfig   `mapstructure:"deploy"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type DeployConfig struct {
	Concurrency     int           `mapstructure:"concurrency"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
}

func (d DeployConfig) Queue() queue.Config {
	return queue.Config{RateLimit: d.RateLimit, RateLimitWindow: d.RateLimitWindow}
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("database.dsn", ":memory:")
	v.SetDefault("github.base_url", github.DefaultBaseURL)
	v.SetDefault("github.api_version", github.DefaultAPIVersion)
	v.SetDefault("github.timeout", github.DefaultTimeout)
	v.SetDefault("github.cache_ttl", github.DefaultCacheTTL)
	v.SetDefault("github.cache_size", github.DefaultCacheSize)
	v.SetDefault("deploy.concurrency", deploy.DefaultConcurrency)
	v.SetDefault("deploy.rate_limit", queue.DefaultRateLimit)
	v.SetDefault("deploy.rate_limit_window", queue.DefaultRateLimitWindow)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads path, or ./retrigger.yaml when path is empty. A missing
// default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}
	v.SetConfigName("retrigger")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes v and replaces invalid values with defaults.
func Load(v *viper.Viper, log zerolog.Logger) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		log.Warn().Int("port", cfg.Server.Port).Msg("invalid server port, using 8080")
		cfg.Server.Port = 8080
	}
	if cfg.Deploy.Concurrency <= 0 {
		log.Warn().Int("concurrency", cfg.Deploy.Concurrency).Msg("invalid deploy concurrency, using default")
		cfg.Deploy.Concurrency = deploy.DefaultConcurrency
	}
	if cfg.Deploy.RateLimit <= 0 {
		log.Warn().Int("rate_limit", cfg.Deploy.RateLimit).Msg("invalid rate limit, using default")
		cfg.Deploy.RateLimit = queue.DefaultRateLimit
	}
	if cfg.Deploy.RateLimitWindow <= 0 {
		log.Warn().Dur("rate_limit_window", cfg.Deploy.RateLimitWindow).Msg("invalid rate limit window, using default")
		cfg.Deploy.RateLimitWindow = queue.DefaultRateLimitWindow
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		log.Warn().Str("level", cfg.Log.Level).Msg("invalid log level, using info")
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format != "console" && cfg.Log.Format != "json" {
		cfg.Log.Format = "console"
	}

	log.Debug().
		Int("port", cfg.Server.Port).
		Str("github", cfg.GitHub.BaseURL).
		Int("concurrency", cfg.Deploy.Concurrency).
		Int("rate_limit", cfg.Deploy.RateLimit).
		Dur("rate_limit_window", cfg.Deploy.RateLimitWindow).
		Msg("configuration loaded")

	return &cfg, nil
}
