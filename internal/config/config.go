// Package config provides configuration management for the journal application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Store       StoreConfig  `mapstructure:"store"`
	Market      MarketConfig `mapstructure:"market"`
	Server      ServerConfig `mapstructure:"server"`
	UI          UIConfig     `mapstructure:"ui"`
	Auth        AuthConfig   `mapstructure:"auth"`
	Credentials Credentials  `mapstructure:"-"` // Loaded separately
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// MarketConfig holds market-data API configuration.
type MarketConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	PacingDelay   time.Duration `mapstructure:"pacing_delay"`
	QuoteCurrency string        `mapstructure:"quote_currency"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// UIConfig holds CLI output configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
	TimeFormat   string `mapstructure:"time_format"`
}

// AuthConfig holds session configuration.
type AuthConfig struct {
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// Credentials holds API credentials.
type Credentials struct {
	OpenAI    OpenAICredentials    `mapstructure:"openai"`
	CoinGecko CoinGeckoCredentials `mapstructure:"coingecko"`
}

// OpenAICredentials holds the AI coach API key.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// CoinGeckoCredentials holds the optional CoinGecko API key.
type CoinGeckoCredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/cryptofolio"
	}
	return filepath.Join(home, ".config", "cryptofolio")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("store.path", filepath.Join(configDir, "cryptofolio.db"))
	v.SetDefault("market.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("market.timeout", 10*time.Second)
	v.SetDefault("market.pacing_delay", time.Second)
	v.SetDefault("market.quote_currency", "usd")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "2006-01-02")
	v.SetDefault("ui.time_format", "15:04")
	v.SetDefault("auth.session_ttl", 24*time.Hour)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateConfig(configDir); err != nil {
				return err
			}
			return v.Unmarshal(target)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("openai.model", "gpt-4o-mini")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateCredentials(configDir); err != nil {
				return err
			}
			return v.Unmarshal(creds)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CRYPTOFOLIO_DB"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		cfg.Credentials.CoinGecko.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	if c.Market.BaseURL == "" {
		return fmt.Errorf("market.base_url must not be empty")
	}
	if c.Market.Timeout <= 0 {
		return fmt.Errorf("market.timeout must be positive")
	}
	if c.Market.PacingDelay < 0 {
		return fmt.Errorf("market.pacing_delay must be non-negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}
	return nil
}
