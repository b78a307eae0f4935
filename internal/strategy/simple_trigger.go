package strategy

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/atlas-desktop/recall-agent/pkg/types"
	"github.com/atlas-desktop/recall-agent/pkg/utils"
	"go.uber.org/zap"
)

// SimpleTriggerStrategy signals when the current price deviates from the
// trailing lookback mean by more than a configured percentage.
//
// The baseline is the mean of the lookbackPeriod prices observed before the
// current one, so a token needs lookbackPeriod+1 observations before it can
// trigger. History is bounded at twice the lookback period.
type SimpleTriggerStrategy struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	config  types.StrategyConfig
	tokens  tokenSet
	history *PriceHistory
	window  []float64
}

// NewSimpleTriggerStrategy creates a new threshold trigger strategy.
func NewSimpleTriggerStrategy(logger *zap.Logger, config types.StrategyConfig) *SimpleTriggerStrategy {
	config = config.Clone()
	return &SimpleTriggerStrategy{
		logger:  logger.Named("simple_trigger"),
		config:  config,
		tokens:  newTokenSet(config.Parameters.Tokens),
		history: NewPriceHistory(2 * config.Parameters.LookbackPeriod),
	}
}

// Name returns the display name.
func (s *SimpleTriggerStrategy) Name() string {
	return "Simple Trigger Strategy"
}

// Description returns what the strategy does.
func (s *SimpleTriggerStrategy) Description() string {
	return "Triggers buy/sell based on price percentage changes from recent average"
}

// Kind returns KindSimpleTrigger.
func (s *SimpleTriggerStrategy) Kind() Kind {
	return KindSimpleTrigger
}

// Enabled reports whether the strategy should run.
func (s *SimpleTriggerStrategy) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Enabled
}

// Config returns a copy of the current configuration.
func (s *SimpleTriggerStrategy) Config() types.StrategyConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Clone()
}

// UpdateConfig merges update into the configuration. A new lookback period
// rebounds the history, keeping the newest prices.
func (s *SimpleTriggerStrategy) UpdateConfig(update types.StrategyUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = update.Apply(s.config)
	s.tokens = newTokenSet(s.config.Parameters.Tokens)
	s.history.Resize(2 * s.config.Parameters.LookbackPeriod)
}

// Analyze implements Strategy.
func (s *SimpleTriggerStrategy) Analyze(ctx context.Context, batch []types.MarketData) ([]types.TradingSignal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	params := s.config.Parameters
	lookback := params.LookbackPeriod
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

		n := s.history.Append(data.Token, price)
		if lookback <= 0 || n <= lookback {
			continue
		}

		s.window = s.history.Tail(s.window[:0], data.Token, lookback+1)
		baseline := MovingAverage(s.window[:lookback], lookback)
		change := PriceChangePercent(price, baseline)

		if signal, ok := s.evaluate(data.Token, change, params); ok {
			signals = append(signals, signal)
		}
	}

	return signals, nil
}

func (s *SimpleTriggerStrategy) evaluate(token string, change float64, params types.StrategyParameters) (types.TradingSignal, bool) {
	var action types.Action
	var confidence float64
	var reason string

	switch {
	case change >= params.BuyThreshold:
		action = types.ActionBuy
		confidence = ClampConfidence(math.Min(change/params.BuyThreshold, 2.0))
		reason = fmt.Sprintf("Price increased %.2f%% above threshold (%s%%)",
			change, strconv.FormatFloat(params.BuyThreshold, 'f', -1, 64))
	case change <= -params.SellThreshold:
		action = types.ActionSell
		confidence = ClampConfidence(math.Min(math.Abs(change)/params.SellThreshold, 2.0))
		reason = fmt.Sprintf("Price decreased %.2f%% below threshold (%s%%)",
			math.Abs(change), strconv.FormatFloat(params.SellThreshold, 'f', -1, 64))
	default:
		return types.TradingSignal{}, false
	}

	if confidence < params.MinConfidence {
		return types.TradingSignal{}, false
	}

	s.logger.Debug("Threshold crossed",
		zap.String("token", token),
		zap.String("action", string(action)),
		zap.Float64("change", change),
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
func (s *SimpleTriggerStrategy) ResetHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Reset()
}

// PriceHistory returns the stored prices for token, oldest first.
func (s *SimpleTriggerStrategy) PriceHistory(token string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Values(token)
}
