package types

import "time"

// StrategyConfig describes one strategy instance.
type StrategyConfig struct {
	// Name selects the strategy kind, for example "moving_average".
	Name       string             `json:"name" mapstructure:"name"`
	Enabled    bool               `json:"enabled" mapstructure:"enabled"`
	Parameters StrategyParameters `json:"parameters" mapstructure:"parameters"`
}

// StrategyParameters is the parameter bundle shared by all strategy kinds.
// Each kind reads only the fields it uses.
type StrategyParameters struct {
	// Moving average crossover
	ShortPeriod int `json:"shortPeriod,omitempty" mapstructure:"shortPeriod"`
	LongPeriod  int `json:"longPeriod,omitempty" mapstructure:"longPeriod"`

	// Threshold trigger
	BuyThreshold   float64 `json:"buyThreshold,omitempty" mapstructure:"buyThreshold"`
	SellThreshold  float64 `json:"sellThreshold,omitempty" mapstructure:"sellThreshold"`
	LookbackPeriod int     `json:"lookbackPeriod,omitempty" mapstructure:"lookbackPeriod"`

	MinConfidence   float64  `json:"minConfidence" mapstructure:"minConfidence"`
	MaxPositionSize float64  `json:"maxPositionSize" mapstructure:"maxPositionSize"`
	Tokens          []string `json:"tokens" mapstructure:"tokens"`
}

// StrategyUpdate is a partial configuration change. Nil fields are left
// untouched.
type StrategyUpdate struct {
	Enabled         *bool    `json:"enabled,omitempty"`
	ShortPeriod     *int     `json:"shortPeriod,omitempty"`
	LongPeriod      *int     `json:"longPeriod,omitempty"`
	BuyThreshold    *float64 `json:"buyThreshold,omitempty"`
	SellThreshold   *float64 `json:"sellThreshold,omitempty"`
	LookbackPeriod  *int     `json:"lookbackPeriod,omitempty"`
	MinConfidence   *float64 `json:"minConfidence,omitempty"`
	MaxPositionSize *float64 `json:"maxPositionSize,omitempty"`
	Tokens          []string `json:"tokens,omitempty"`
}

// Apply merges the update into cfg and returns the result.
func (u StrategyUpdate) Apply(cfg StrategyConfig) StrategyConfig {
	p := cfg.Parameters
	if u.Enabled != nil {
		cfg.Enabled = *u.Enabled
	}
	if u.ShortPeriod != nil {
		p.ShortPeriod = *u.ShortPeriod
	}
	if u.LongPeriod != nil {
		p.LongPeriod = *u.LongPeriod
	}
	if u.BuyThreshold != nil {
		p.BuyThreshold = *u.BuyThreshold
	}
	if u.SellThreshold != nil {
		p.SellThreshold = *u.SellThreshold
	}
	if u.LookbackPeriod != nil {
		p.LookbackPeriod = *u.LookbackPeriod
	}
	if u.MinConfidence != nil {
		p.MinConfidence = *u.MinConfidence
	}
	if u.MaxPositionSize != nil {
		p.MaxPositionSize = *u.MaxPositionSize
	}
	if u.Tokens != nil {
		p.Tokens = append([]string(nil), u.Tokens...)
	}
	cfg.Parameters = p
	return cfg
}

// Clone returns a deep copy of the configuration.
func (c StrategyConfig) Clone() StrategyConfig {
	c.Parameters.Tokens = append([]string(nil), c.Parameters.Tokens...)
	return c
}

// DefaultMovingAverageConfig returns the stock crossover configuration.
func DefaultMovingAverageConfig() StrategyConfig {
	return StrategyConfig{
		Name:    "moving_average",
		Enabled: true,
		Parameters: StrategyParameters{
			ShortPeriod:     5,
			LongPeriod:      20,
			MinConfidence:   0.6,
			MaxPositionSize: 100,
			Tokens:          []string{"USDC", "WETH"},
		},
	}
}

// DefaultSimpleTriggerConfig returns the stock threshold trigger configuration.
func DefaultSimpleTriggerConfig() StrategyConfig {
	return StrategyConfig{
		Name:    "simple_trigger",
		Enabled: true,
		Parameters: StrategyParameters{
			BuyThreshold:    2.0,
			SellThreshold:   1.5,
			MinConfidence:   0.5,
			MaxPositionSize: 50,
			Tokens:          []string{"USDC", "WETH"},
			LookbackPeriod:  10,
		},
	}
}

// ServerConfig represents the status API server configuration.
type ServerConfig struct {
	Host          string        `json:"host" mapstructure:"host"`
	Port          int           `json:"port" mapstructure:"port"`
	WebSocketPath string        `json:"websocketPath" mapstructure:"websocketPath"`
	ReadTimeout   time.Duration `json:"readTimeout" mapstructure:"readTimeout"`
	WriteTimeout  time.Duration `json:"writeTimeout" mapstructure:"writeTimeout"`
	EnableMetrics bool          `json:"enableMetrics" mapstructure:"enableMetrics"`
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:          "0.0.0.0",
		Port:          3000,
		WebSocketPath: "/ws",
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		EnableMetrics: true,
	}
}
