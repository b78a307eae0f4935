// Package data provides market data sources for the trading agent.
package data

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atlas-desktop/recall-agent/pkg/types"
)

// FeedConfig configures the simulated feed.
type FeedConfig struct {
	Chain string `json:"chain"`
	// StartPrices holds the opening price of every simulated token.
	StartPrices map[string]float64 `json:"startPrices"`
	// Volatility is the maximum relative move per tick, e.g. 0.01 for 1%.
	Volatility float64 `json:"volatility"`
	Seed       int64   `json:"seed"`
}

// DefaultFeedConfig returns sensible defaults.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		Chain: "ethereum",
		StartPrices: map[string]float64{
			"USDC": 1.0,
			"WETH": 2500.0,
		},
		Volatility: 0.02,
		Seed:       42,
	}
}

// stableTokens never move in the simulation.
var stableTokens = map[string]bool{"USDC": true, "USDT": true, "DAI": true}

type tokenState struct {
	price   float64
	open    float64
	volume  float64
	updated time.Time
}

// SimulatedFeed produces a seeded random walk of prices for paper trading.
type SimulatedFeed struct {
	logger *zap.Logger
	config FeedConfig

	mu     sync.Mutex
	rng    *rand.Rand
	tokens map[string]*tokenState
	order  []string
	now    func() time.Time
}

// NewSimulatedFeed creates a new simulated market data feed.
func NewSimulatedFeed(logger *zap.Logger, config FeedConfig) *SimulatedFeed {
	if config.Chain == "" {
		config.Chain = "ethereum"
	}
	f := &SimulatedFeed{
		logger: logger.Named("feed"),
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
		tokens: make(map[string]*tokenState, len(config.StartPrices)),
		now:    time.Now,
	}
	for token, price := range config.StartPrices {
		f.tokens[token] = &tokenState{price: price, open: price}
		f.order = append(f.order, token)
	}
	sort.Strings(f.order)
	return f
}

// GetMarketData advances every token by one tick and returns the snapshot.
// Requests for a chain other than the feed's return no data.
func (f *SimulatedFeed) GetMarketData(ctx context.Context, chain string) ([]types.MarketData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if chain != "" && chain != f.config.Chain {
		return []types.MarketData{}, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now().UTC()
	batch := make([]types.MarketData, 0, len(f.order))
	for _, token := range f.order {
		state := f.tokens[token]
		if !stableTokens[token] {
			change := (f.rng.Float64() - 0.5) * f.config.Volatility * 2
			state.price *= 1 + change
		}
		state.volume += f.rng.Float64() * 1000000
		state.updated = now

		change24h := 0.0
		if state.open != 0 {
			change24h = (state.price - state.open) / state.open * 100
		}

		batch = append(batch, types.MarketData{
			Token:     token,
			Price:     decimal.NewFromFloat(state.price).Round(8).String(),
			Volume24h: state.volume,
			Change24h: change24h,
			Timestamp: now,
			Chain:     f.config.Chain,
		})
	}

	f.logger.Debug("Generated market snapshot", zap.Int("tokens", len(batch)))
	return batch, nil
}

// Tokens returns the simulated token symbols in a stable order.
func (f *SimulatedFeed) Tokens() []string {
	return append([]string(nil), f.order...)
}
