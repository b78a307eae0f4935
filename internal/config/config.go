// Package config loads agent configuration from defaults, an optional config
// file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/atlas-desktop/recall-agent/pkg/types"
	"github.com/atlas-desktop/recall-agent/pkg/utils"
)

// Config is the complete agent configuration.
type Config struct {
	Agent      AgentConfig            `mapstructure:"agent"`
	Strategies []types.StrategyConfig `mapstructure:"strategies"`
	Server     types.ServerConfig     `mapstructure:"server"`
	Paper      PaperConfig            `mapstructure:"paper"`
	Risk       RiskConfig             `mapstructure:"risk"`
	Redis      RedisConfig            `mapstructure:"redis"`
	Log        LogConfig              `mapstructure:"log"`
}

// AgentConfig holds the trading agent and Recall API settings.
type AgentConfig struct {
	APIKey       string `mapstructure:"apiKey"`
	BaseURL      string `mapstructure:"baseUrl"`
	DefaultChain string `mapstructure:"defaultChain"`
	// MaxPositionSize caps every strategy's maxPositionSize. Zero disables the cap.
	MaxPositionSize    float64       `mapstructure:"maxPositionSize"`
	QuoteToken         string        `mapstructure:"quoteToken"`
	DefaultTradeAmount string        `mapstructure:"defaultTradeAmount"`
	Interval           time.Duration `mapstructure:"interval"`
	PaperTrading       bool          `mapstructure:"paperTrading"`
	RequestsPerSecond  float64       `mapstructure:"requestsPerSecond"`
	RequestTimeout     time.Duration `mapstructure:"requestTimeout"`
}

// PaperConfig configures the simulated feed and venue.
type PaperConfig struct {
	InitialBalances map[string]float64 `mapstructure:"initialBalances"`
	StartPrices     map[string]float64 `mapstructure:"startPrices"`
	SlippageBps     float64            `mapstructure:"slippageBps"`
	Volatility      float64            `mapstructure:"volatility"`
	Seed            int64              `mapstructure:"seed"`
}

// RiskConfig configures the trade risk guard. Zero values disable a limit.
type RiskConfig struct {
	MaxOrderAmount         float64       `mapstructure:"maxOrderAmount"`
	MaxDailyTrades         int           `mapstructure:"maxDailyTrades"`
	MaxConsecutiveFailures int           `mapstructure:"maxConsecutiveFailures"`
	CooldownPeriod         time.Duration `mapstructure:"cooldownPeriod"`
}

// RedisConfig configures the optional signal publisher.
type RedisConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Addr          string `mapstructure:"addr"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	ChannelPrefix string `mapstructure:"channelPrefix"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
	// File, when set, receives a copy of all log output.
	File string `mapstructure:"file"`
}

// envBindings maps configuration keys to their unprefixed environment names.
var envBindings = map[string]string{
	"agent.apiKey":             "RECALL_API_KEY",
	"agent.baseUrl":            "RECALL_BASE_URL",
	"agent.defaultChain":       "DEFAULT_CHAIN",
	"agent.maxPositionSize":    "MAX_POSITION_SIZE",
	"log.level":                "LOG_LEVEL",
	"agent.quoteToken":         "AGENT_QUOTE_TOKEN",
	"agent.defaultTradeAmount": "AGENT_DEFAULT_TRADE_AMOUNT",
	"agent.interval":           "AGENT_INTERVAL",
	"agent.paperTrading":       "AGENT_PAPER_TRADING",
	"agent.requestsPerSecond":  "AGENT_REQUESTS_PER_SECOND",
	"agent.requestTimeout":     "AGENT_REQUEST_TIMEOUT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("agent.apiKey", "")
	v.SetDefault("agent.baseUrl", "https://api.sandbox.competitions.recall.network")
	v.SetDefault("agent.defaultChain", "ethereum")
	v.SetDefault("agent.maxPositionSize", 0)
	v.SetDefault("agent.quoteToken", "USDC")
	v.SetDefault("agent.defaultTradeAmount", "10")
	v.SetDefault("agent.interval", 30*time.Second)
	v.SetDefault("agent.paperTrading", true)
	v.SetDefault("agent.requestsPerSecond", 5)
	v.SetDefault("agent.requestTimeout", 30*time.Second)

	server := types.DefaultServerConfig()
	v.SetDefault("server.host", server.Host)
	v.SetDefault("server.port", server.Port)
	v.SetDefault("server.websocketPath", server.WebSocketPath)
	v.SetDefault("server.readTimeout", server.ReadTimeout)
	v.SetDefault("server.writeTimeout", server.WriteTimeout)
	v.SetDefault("server.enableMetrics", server.EnableMetrics)

	v.SetDefault("paper.initialBalances", map[string]float64{"USDC": 10000})
	v.SetDefault("paper.startPrices", map[string]float64{"USDC": 1, "WETH": 2500})
	v.SetDefault("paper.slippageBps", 10)
	v.SetDefault("paper.volatility", 0.02)
	v.SetDefault("paper.seed", 42)

	v.SetDefault("risk.maxOrderAmount", 0)
	v.SetDefault("risk.maxDailyTrades", 500)
	v.SetDefault("risk.maxConsecutiveFailures", 5)
	v.SetDefault("risk.cooldownPeriod", 15*time.Minute)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channelPrefix", "agent.signals")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Load reads the configuration. path may be empty, in which case only
// defaults, .env and the environment are consulted.
func Load(path string) (*Config, error) {
	// A missing .env is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if len(cfg.Strategies) == 0 {
		cfg.Strategies = []types.StrategyConfig{
			types.DefaultMovingAverageConfig(),
			types.DefaultSimpleTriggerConfig(),
		}
	}
	cfg.applyPositionCap()

	// viper lowercases map keys.
	cfg.Paper.InitialBalances = normalizeTokens(cfg.Paper.InitialBalances)
	cfg.Paper.StartPrices = normalizeTokens(cfg.Paper.StartPrices)

	return &cfg, nil
}

func (c *Config) applyPositionCap() {
	limit := c.Agent.MaxPositionSize
	if limit <= 0 {
		return
	}
	for i := range c.Strategies {
		p := &c.Strategies[i].Parameters
		if p.MaxPositionSize <= 0 || p.MaxPositionSize > limit {
			p.MaxPositionSize = limit
		}
	}
}

func normalizeTokens(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for token, v := range in {
		out[utils.NormalizeToken(token)] = v
	}
	return out
}

// Validate checks the configuration for values the agent cannot run with.
func (c *Config) Validate() error {
	if !c.Agent.PaperTrading && c.Agent.APIKey == "" {
		return fmt.Errorf("RECALL_API_KEY is required when paper trading is disabled")
	}
	if c.Agent.Interval <= 0 {
		return fmt.Errorf("agent interval must be positive, got %s", c.Agent.Interval)
	}
	if c.Agent.DefaultChain == "" {
		return fmt.Errorf("default chain must not be empty")
	}
	if _, err := utils.ParsePrice(c.Agent.DefaultTradeAmount); err != nil {
		return fmt.Errorf("default trade amount: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	if c.Risk.MaxConsecutiveFailures > 0 && c.Risk.CooldownPeriod <= 0 {
		return fmt.Errorf("risk cooldown must be positive when the kill switch is enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis address required when redis is enabled")
	}
	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	c.Agent.APIKey = utils.RedactSecret(c.Agent.APIKey)
	if c.Redis.Password != "" {
		c.Redis.Password = "****"
	}
	return c
}
