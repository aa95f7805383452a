package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Flush policy names for Ledger.FlushPolicy
const (
	FlushWriteThrough = "write_through"
	FlushBatched      = "batched"
)

// Config holds all application configuration
type Config struct {
	Discord struct {
		Token    string  `yaml:"token"`
		GuildID  string  `yaml:"guild_id"`
		AdminIDs []int64 `yaml:"admin_ids"`
	} `yaml:"discord"`
	Ledger struct {
		Path                 string `yaml:"path"`
		StartingBalance      int64  `yaml:"starting_balance"`
		FlushPolicy          string `yaml:"flush_policy"`
		FlushCron            string `yaml:"flush_cron"`
		WatchIntervalSeconds int    `yaml:"watch_interval_seconds"`
		InitializeFresh      bool   `yaml:"initialize_fresh"`
	} `yaml:"ledger"`
	RateLimit struct {
		WindowSeconds int `yaml:"window_seconds"`
		MaxCommands   int `yaml:"max_commands"`
	} `yaml:"rate_limit"`
	Daily struct {
		BonusAmount   int64  `yaml:"bonus_amount"`
		BonusCron     string `yaml:"bonus_cron"`
		ClaimAmount   int64  `yaml:"claim_amount"`
		CooldownHours int    `yaml:"cooldown_hours"`
	} `yaml:"daily"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is fine: env vars and defaults
// still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Pre-seeded before parsing so an explicit zero in the file or
	// environment survives; zero is a legal starting balance.
	cfg.Ledger.StartingBalance = 1000

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
	if v := os.Getenv("DISCORD_GUILD_ID"); v != "" {
		cfg.Discord.GuildID = v
	}
	if v := os.Getenv("ADMIN_IDS"); v != "" {
		cfg.Discord.AdminIDs = nil
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if id, err := strconv.ParseInt(part, 10, 64); err == nil {
				cfg.Discord.AdminIDs = append(cfg.Discord.AdminIDs, id)
			}
		}
	}
	if v := os.Getenv("LEDGER_PATH"); v != "" {
		cfg.Ledger.Path = v
	}
	if v := os.Getenv("STARTING_BALANCE"); v != "" {
		if balance, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Ledger.StartingBalance = balance
		}
	}
	if v := os.Getenv("FLUSH_POLICY"); v != "" {
		cfg.Ledger.FlushPolicy = v
	}
	if v := os.Getenv("INITIALIZE_FRESH"); v == "true" {
		cfg.Ledger.InitializeFresh = true
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Ledger.Path == "" {
		cfg.Ledger.Path = "data/ledger.json"
	}
	if cfg.Ledger.FlushPolicy == "" {
		cfg.Ledger.FlushPolicy = FlushWriteThrough
	}
	if cfg.Ledger.FlushCron == "" {
		cfg.Ledger.FlushCron = "@every 30s"
	}
	if cfg.Ledger.WatchIntervalSeconds == 0 {
		cfg.Ledger.WatchIntervalSeconds = 10
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 10
	}
	if cfg.RateLimit.MaxCommands == 0 {
		cfg.RateLimit.MaxCommands = 5
	}
	if cfg.Daily.BonusAmount == 0 {
		cfg.Daily.BonusAmount = 100
	}
	if cfg.Daily.BonusCron == "" {
		cfg.Daily.BonusCron = "0 0 12 * * *"
	}
	if cfg.Daily.ClaimAmount == 0 {
		cfg.Daily.ClaimAmount = 250
	}
	if cfg.Daily.CooldownHours == 0 {
		cfg.Daily.CooldownHours = 22
	}

	return cfg, nil
}

// Validate checks that all required fields are set and coherent
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token is required")
	}
	if c.Ledger.StartingBalance < 0 {
		return fmt.Errorf("ledger.starting_balance must not be negative")
	}
	if c.Ledger.FlushPolicy != FlushWriteThrough && c.Ledger.FlushPolicy != FlushBatched {
		return fmt.Errorf("ledger.flush_policy must be %q or %q", FlushWriteThrough, FlushBatched)
	}
	if c.Ledger.WatchIntervalSeconds < 0 {
		return fmt.Errorf("ledger.watch_interval_seconds must not be negative")
	}
	return nil
}

// IsAdmin reports whether the user is a configured administrative identity
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Discord.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
