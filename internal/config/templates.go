package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Cryptofolio Configuration

[store]
# Path to the SQLite database file
# path = "~/.config/cryptofolio/cryptofolio.db"

[market]
# Market data API base URL
base_url = "https://api.coingecko.com/api/v3"
# Request timeout
timeout = "10s"
# Delay between the search and details calls, to respect rate limits
pacing_delay = "1s"
# Quote currency for prices
quote_currency = "usd"

[server]
# HTTP API port
port = 8080
# CORS allowed origins
allowed_origins = ["*"]

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "2006-01-02"
# Time format
time_format = "15:04"

[auth]
# Session lifetime
session_ttl = "24h"
`

const credentialsTemplate = `# Cryptofolio Credentials
# Keep this file private (chmod 600).

[openai]
# API key for the AI coach chat (optional)
api_key = ""
model = "gpt-4o-mini"

[coingecko]
# CoinGecko API key (optional, the public API works without one)
api_key = ""
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(configDir, "credentials.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(credentialsTemplate), 0600)
}
