// Package config loads application configuration from config.yaml and
// PARLAY_-prefixed environment variables, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	OddsAPI   OddsAPIConfig   `yaml:"oddsapi" mapstructure:"oddsapi"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Generator GeneratorConfig `yaml:"generator" mapstructure:"generator"`
	Daily     DailyConfig     `yaml:"daily" mapstructure:"daily"`
	Resolver  ResolverConfig  `yaml:"resolver" mapstructure:"resolver"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// OddsAPIConfig holds odds provider settings.
type OddsAPIConfig struct {
	Key             string `yaml:"key" mapstructure:"key"`
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	Region          string `yaml:"region" mapstructure:"region"`
	RetryAttempts   int    `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoffMs  int    `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
	RetryMaxDelayMs int    `yaml:"retry_max_delay_ms" mapstructure:"retry_max_delay_ms"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	MaxTokens   int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// GeneratorConfig configures the parlay generation pipeline.
type GeneratorConfig struct {
	MaxAttempts int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	WindowHours int    `yaml:"window_hours" mapstructure:"window_hours"`
	Region      string `yaml:"region" mapstructure:"region"`
}

// DailyConfig configures the daily archetype batch.
type DailyConfig struct {
	Sports []string `yaml:"sports" mapstructure:"sports"`
}

// ResolverConfig configures result resolution.
type ResolverConfig struct {
	BufferHours int `yaml:"buffer_hours" mapstructure:"buffer_hours"`
	DaysFrom    int `yaml:"days_from" mapstructure:"days_from"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PARLAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("store.database_url", "")
	v.SetDefault("oddsapi.key", "")
	v.SetDefault("oddsapi.base_url", "https://api.the-odds-api.com")
	v.SetDefault("oddsapi.region", "us")
	v.SetDefault("oddsapi.retry_attempts", 3)
	v.SetDefault("oddsapi.retry_backoff_ms", 500)
	v.SetDefault("oddsapi.retry_max_delay_ms", 10000)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.timeout_secs", 60)
	v.SetDefault("generator.max_attempts", 3)
	v.SetDefault("generator.window_hours", 48)
	v.SetDefault("daily.sports", []string{"basketball_nba", "americanfootball_nfl", "icehockey_nhl"})
	v.SetDefault("resolver.buffer_hours", 3)
	v.SetDefault("resolver.days_from", 3)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
