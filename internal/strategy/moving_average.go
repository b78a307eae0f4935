package strategy

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/atlas-desktop/recall-agent/pkg/types"
	"github.com/atlas-desktop/recall-agent/pkg/utils"
	"go.uber.org/zap"
)

const movingAverageHistory = 100

// MovingAverageStrategy signals when a short moving average diverges from a
// long one.
type MovingAverageStrategy struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	config  types.StrategyConfig
	tokens  tokenSet
	history *PriceHistory
	window  []float64
}

// NewMovingAverageStrategy creates a new moving average crossover strategy.
func NewMovingAverageStrategy(logger *zap.Logger, config types.StrategyConfig) *MovingAverageStrategy {
	config = config.Clone()
	return &MovingAverageStrategy{
		logger:  logger.Named("moving_average"),
		config:  config,
		tokens:  newTokenSet(config.Parameters.Tokens),
		history: NewPriceHistory(movingAverageHistory),
	}
}

// Name returns the display name.
func (s *MovingAverageStrategy) Name() string {
	return "Moving Average Strategy"
}

// Description returns what the strategy does.
func (s *MovingAverageStrategy) Description() string {
	return "Uses short and long-term moving averages to generate buy/sell signals"
}

// Kind returns KindMovingAverage.
func (s *MovingAverageStrategy) Kind() Kind {
	return KindMovingAverage
}

// Enabled reports whether the strategy should run.
func (s *MovingAverageStrategy) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Enabled
}

// Config returns a copy of the current configuration.
func (s *MovingAverageStrategy) Config() types.StrategyConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Clone()
}

// UpdateConfig merges update into the configuration. History is kept.
func (s *MovingAverageStrategy) UpdateConfig(update types.StrategyUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = update.Apply(s.config)
	s.tokens = newTokenSet(s.config.Parameters.Tokens)
}

// Analyze implements Strategy.
func (s *MovingAverageStrategy) Analyze(ctx context.Context, batch []types.MarketData) ([]types.TradingSignal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	params := s.config.Parameters
	var signals []types.TradingSignal

	for _, data := range batch {
		if !s.tokens.contains(data.Token) {
			continue
		}

		price, err := utils.ParsePrice(data.Price)
		if err != nil {
			s.logger.Debug("Skipping unparseable price",
				zap.String("token", data.Token),
				zap.String("price", data.Price))
			continue
		}

		if s.history.Append(data.Token, price) < params.LongPeriod {
			continue
		}

		span := params.LongPeriod
		if params.ShortPeriod > span {
			span = params.ShortPeriod
		}
		s.window = s.history.Tail(s.window[:0], data.Token, span)
		shortMA := MovingAverage(s.window, params.ShortPeriod)
		longMA := MovingAverage(s.window, params.LongPeriod)
		if math.IsNaN(shortMA) || math.IsNaN(longMA) {
			continue
		}

		if signal, ok := s.evaluate(data.Token, shortMA, longMA, params); ok {
			signals = append(signals, signal)
		}
	}

	return signals, nil
}

func (s *MovingAverageStrategy) evaluate(token string, shortMA, longMA float64, params types.StrategyParameters) (types.TradingSignal, bool) {
	relativeDiff := math.Abs(shortMA-longMA) / ((shortMA + longMA) / 2)
	confidence := ClampConfidence(relativeDiff * 10)
	if confidence < params.MinConfidence {
		return types.TradingSignal{}, false
	}

	var action types.Action
	var reason string
	switch {
	case shortMA > longMA:
		action = types.ActionBuy
		reason = fmt.Sprintf("Short MA (%.4f) > Long MA (%.4f)", shortMA, longMA)
	case shortMA < longMA:
		action = types.ActionSell
		reason = fmt.Sprintf("Short MA (%.4f) < Long MA (%.4f)", shortMA, longMA)
	default:
		return types.TradingSignal{}, false
	}

	s.logger.Debug("Crossover detected",
		zap.String("token", token),
		zap.String("action", string(action)),
		zap.Float64("shortMA", shortMA),
		zap.Float64("longMA", longMA),
		zap.Float64("confidence", confidence))

	return types.TradingSignal{
		Action:     action,
		Confidence: confidence,
		Reason:     reason,
		Token:      token,
		Amount:     utils.FormatAmount(positionSize(params.MaxPositionSize, confidence)),
	}, true
}

// ResetHistory drops every stored price.
func (s *MovingAverageStrategy) ResetHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Reset()
}

// PriceHistory returns the stored prices for token, oldest first.
func (s *MovingAverageStrategy) PriceHistory(token string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Values(token)
}
