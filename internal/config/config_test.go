package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-desktop/recall-agent/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RECALL_API_KEY", "RECALL_BASE_URL", "DEFAULT_CHAIN", "MAX_POSITION_SIZE", "LOG_LEVEL",
		"AGENT_INTERVAL", "AGENT_PAPER_TRADING", "AGENT_SERVER_PORT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "ethereum", cfg.Agent.DefaultChain)
	assert.Equal(t, 30*time.Second, cfg.Agent.Interval)
	assert.True(t, cfg.Agent.PaperTrading)
	assert.Equal(t, "10", cfg.Agent.DefaultTradeAmount)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 10000.0, cfg.Paper.InitialBalances["USDC"])
	assert.Equal(t, 2500.0, cfg.Paper.StartPrices["WETH"])
	assert.Equal(t, 500, cfg.Risk.MaxDailyTrades)
	assert.Equal(t, 15*time.Minute, cfg.Risk.CooldownPeriod)

	require.Len(t, cfg.Strategies, 2)
	assert.Equal(t, "moving_average", cfg.Strategies[0].Name)
	assert.Equal(t, "simple_trigger", cfg.Strategies[1].Name)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "agent.yaml")
	content := `
agent:
  interval: 5s
  defaultChain: base
server:
  port: 8081
strategies:
  - name: simple_trigger
    enabled: true
    parameters:
      buyThreshold: 3
      sellThreshold: 2
      lookbackPeriod: 4
      minConfidence: 0.4
      maxPositionSize: 25
      tokens: [WETH]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Agent.Interval)
	assert.Equal(t, "base", cfg.Agent.DefaultChain)
	assert.Equal(t, 8081, cfg.Server.Port)

	require.Len(t, cfg.Strategies, 1)
	p := cfg.Strategies[0].Parameters
	assert.Equal(t, 3.0, p.BuyThreshold)
	assert.Equal(t, 4, p.LookbackPeriod)
	assert.Equal(t, 25.0, p.MaxPositionSize)
	assert.Equal(t, []string{"WETH"}, p.Tokens)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RECALL_API_KEY", "secret-key-1234")
	t.Setenv("DEFAULT_CHAIN", "solana")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AGENT_INTERVAL", "1m")
	t.Setenv("AGENT_PAPER_TRADING", "false")
	t.Setenv("AGENT_SERVER_PORT", "9000")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "secret-key-1234", cfg.Agent.APIKey)
	assert.Equal(t, "solana", cfg.Agent.DefaultChain)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, time.Minute, cfg.Agent.Interval)
	assert.False(t, cfg.Agent.PaperTrading)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, "****1234", cfg.Redacted().Agent.APIKey)
	assert.Equal(t, "secret-key-1234", cfg.Agent.APIKey)
}

func TestMaxPositionSizeCapsStrategies(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_POSITION_SIZE", "40")

	cfg, err := config.Load("")
	require.NoError(t, err)

	for _, s := range cfg.Strategies {
		assert.LessOrEqual(t, s.Parameters.MaxPositionSize, 40.0, s.Name)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	live := *cfg
	live.Agent.PaperTrading = false
	assert.Error(t, live.Validate(), "live mode needs an API key")

	zero := *cfg
	zero.Agent.Interval = 0
	assert.Error(t, zero.Validate())

	badAmount := *cfg
	badAmount.Agent.DefaultTradeAmount = "ten"
	assert.Error(t, badAmount.Validate())

	cooldown := *cfg
	cooldown.Risk.CooldownPeriod = 0
	assert.Error(t, cooldown.Validate())

	redis := *cfg
	redis.Redis.Enabled = true
	redis.Redis.Addr = ""
	assert.Error(t, redis.Validate())
}
