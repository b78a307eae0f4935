// Package strategy provides the signal-generating trading strategies.
package strategy

import (
	"context"

	"github.com/atlas-desktop/recall-agent/pkg/types"
)

// Strategy is the interface all strategies must implement.
//
// Analyze consumes one cycle's market data batch, appends the prices of
// tokens it tracks to its private history and returns the signals it
// produced. Per-token data problems never surface as errors; the token is
// skipped for that cycle instead.
type Strategy interface {
	Name() string
	Description() string
	Kind() Kind
	Enabled() bool
	Config() types.StrategyConfig
	UpdateConfig(update types.StrategyUpdate)
	Analyze(ctx context.Context, batch []types.MarketData) ([]types.TradingSignal, error)
	ResetHistory()
	PriceHistory(token string) []float64
}

var (
	_ Strategy = (*MovingAverageStrategy)(nil)
	_ Strategy = (*SimpleTriggerStrategy)(nil)
)

// tokenSet is a strategy's token allow-list.
type tokenSet map[string]struct{}

func newTokenSet(tokens []string) tokenSet {
	set := make(tokenSet, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func (s tokenSet) contains(token string) bool {
	_, ok := s[token]
	return ok
}
