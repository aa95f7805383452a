package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DISCORD_TOKEN", "DISCORD_GUILD_ID", "ADMIN_IDS",
		"LEDGER_PATH", "STARTING_BALANCE", "FLUSH_POLICY",
		"INITIALIZE_FRESH", "SQLITE_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "data/ledger.json", cfg.Ledger.Path)
	assert.Equal(t, int64(1000), cfg.Ledger.StartingBalance)
	assert.Equal(t, FlushWriteThrough, cfg.Ledger.FlushPolicy)
	assert.Equal(t, 10, cfg.Ledger.WatchIntervalSeconds)
	assert.False(t, cfg.Ledger.InitializeFresh)
	assert.Equal(t, 10, cfg.RateLimit.WindowSeconds)
	assert.Equal(t, 5, cfg.RateLimit.MaxCommands)
	assert.Equal(t, int64(250), cfg.Daily.ClaimAmount)
	assert.Equal(t, 22, cfg.Daily.CooldownHours)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)

	content := `
discord:
  token: abc123
  guild_id: "555"
  admin_ids: [111, 222]
ledger:
  path: /var/lib/coinbank/ledger.json
  starting_balance: 5000
  flush_policy: batched
  flush_cron: "@every 10s"
  watch_interval_seconds: 3
rate_limit:
  window_seconds: 30
  max_commands: 2
database:
  sqlite_path: /var/lib/coinbank/history.db
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.Discord.Token)
	assert.Equal(t, "555", cfg.Discord.GuildID)
	assert.Equal(t, []int64{111, 222}, cfg.Discord.AdminIDs)
	assert.Equal(t, "/var/lib/coinbank/ledger.json", cfg.Ledger.Path)
	assert.Equal(t, int64(5000), cfg.Ledger.StartingBalance)
	assert.Equal(t, FlushBatched, cfg.Ledger.FlushPolicy)
	assert.Equal(t, "@every 10s", cfg.Ledger.FlushCron)
	assert.Equal(t, 3, cfg.Ledger.WatchIntervalSeconds)
	assert.Equal(t, 30, cfg.RateLimit.WindowSeconds)
	assert.Equal(t, 2, cfg.RateLimit.MaxCommands)
	assert.Equal(t, "/var/lib/coinbank/history.db", cfg.Database.SQLitePath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)

	content := `
discord:
  token: from-file
ledger:
  starting_balance: 5000
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("DISCORD_TOKEN", "from-env")
	t.Setenv("ADMIN_IDS", "10, 20,30")
	t.Setenv("STARTING_BALANCE", "777")
	t.Setenv("FLUSH_POLICY", "batched")
	t.Setenv("INITIALIZE_FRESH", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Discord.Token)
	assert.Equal(t, []int64{10, 20, 30}, cfg.Discord.AdminIDs)
	assert.Equal(t, int64(777), cfg.Ledger.StartingBalance)
	assert.Equal(t, FlushBatched, cfg.Ledger.FlushPolicy)
	assert.True(t, cfg.Ledger.InitializeFresh)
}

func TestLoad_ZeroStartingBalanceIsRespected(t *testing.T) {
	clearEnv(t)

	content := `
ledger:
  starting_balance: 0
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cfg.Ledger.StartingBalance)

	// Same through the environment
	t.Setenv("STARTING_BALANCE", "0")
	cfg, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), cfg.Ledger.StartingBalance)
}

func TestLoad_MalformedYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("discord: [not: valid"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	clearEnv(t)

	valid := func(t *testing.T) *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		cfg.Discord.Token = "token"
		return cfg
	}

	assert.NoError(t, valid(t).Validate())

	cfg := valid(t)
	cfg.Discord.Token = ""
	assert.ErrorContains(t, cfg.Validate(), "discord.token")

	cfg = valid(t)
	cfg.Ledger.StartingBalance = -1
	assert.ErrorContains(t, cfg.Validate(), "starting_balance")

	cfg = valid(t)
	cfg.Ledger.FlushPolicy = "sometimes"
	assert.ErrorContains(t, cfg.Validate(), "flush_policy")

	cfg = valid(t)
	cfg.Ledger.WatchIntervalSeconds = -5
	assert.ErrorContains(t, cfg.Validate(), "watch_interval_seconds")
}

func TestConfig_IsAdmin(t *testing.T) {
	cfg := &Config{}
	cfg.Discord.AdminIDs = []int64{111, 222}

	assert.True(t, cfg.IsAdmin(111))
	assert.True(t, cfg.IsAdmin(222))
	assert.False(t, cfg.IsAdmin(333))
}
