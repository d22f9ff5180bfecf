// Package config loads bot configuration from an optional YAML file with
// environment variable overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Discord struct {
		Token   string `yaml:"token"`
		OwnerID string `yaml:"owner_id"`
	} `yaml:"discord"`
	Commands struct {
		UpdateOnStart bool   `yaml:"update_on_start"`
		SyncCron      string `yaml:"sync_cron"`
		CoinCount     int    `yaml:"coin_count"`
	} `yaml:"commands"`
	Gecko struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"gecko"`
	Fulfill struct {
		MaxConcurrent         int `yaml:"max_concurrent"`
		RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
	} `yaml:"fulfill"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads config from a YAML file (missing file is fine), applies
// environment variable overrides and fills in defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := os.Getenv("OWNER_ID"); v != "" {
		cfg.Discord.OwnerID = v
	}
	if v := os.Getenv("UPDATE_COMMANDS"); v != "" {
		cfg.Commands.UpdateOnStart = v == "y" || v == "true"
	}
	if v := os.Getenv("COMMAND_SYNC_CRON"); v != "" {
		cfg.Commands.SyncCron = v
	}
	if v := os.Getenv("GECKO_BASE_URL"); v != "" {
		cfg.Gecko.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Fulfill.MaxConcurrent = n
		}
	}

	// Defaults
	if cfg.Commands.CoinCount <= 0 {
		// 99 coin commands plus the niche command hits Discord's cap of
		// 100 global commands.
		cfg.Commands.CoinCount = 99
	}
	if cfg.Gecko.TimeoutSeconds <= 0 {
		cfg.Gecko.TimeoutSeconds = 15
	}
	if cfg.Fulfill.MaxConcurrent <= 0 {
		cfg.Fulfill.MaxConcurrent = 32
	}
	if cfg.Fulfill.RequestTimeoutSeconds <= 0 {
		cfg.Fulfill.RequestTimeoutSeconds = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "INFO"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	return cfg, nil
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return errors.New("discord token is required (discord.token or DISCORD_TOKEN)")
	}
	if c.Commands.CoinCount > 99 {
		return fmt.Errorf("commands.coin_count %d exceeds the 99 coin command slots", c.Commands.CoinCount)
	}
	return nil
}

// GeckoTimeout returns the per-call HTTP timeout for the CoinGecko client.
func (c *Config) GeckoTimeout() time.Duration {
	return time.Duration(c.Gecko.TimeoutSeconds) * time.Second
}

// RequestTimeout returns the end-to-end deadline for one fulfillment.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Fulfill.RequestTimeoutSeconds) * time.Second
}
