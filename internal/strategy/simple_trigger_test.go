package strategy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atlas-desktop/recall-agent/internal/strategy"
	"github.com/atlas-desktop/recall-agent/pkg/types"
)

func triggerConfig(lookback int, tokens ...string) types.StrategyConfig {
	return types.StrategyConfig{
		Name:    "simple_trigger",
		Enabled: true,
		Parameters: types.StrategyParameters{
			BuyThreshold:    2.0,
			SellThreshold:   1.5,
			MinConfidence:   0.5,
			MaxPositionSize: 50,
			Tokens:          tokens,
			LookbackPeriod:  lookback,
		},
	}
}

func TestSimpleTriggerBuyScenario(t *testing.T) {
	s := strategy.NewSimpleTriggerStrategy(zap.NewNop(), triggerConfig(3, "Y"))

	cycles := feed(t, s, "Y", 100, 100, 100, 103)

	for i := 0; i < 3; i++ {
		assert.Empty(t, cycles[i], "cycle %d", i+1)
	}
	require.Len(t, cycles[3], 1)
	signal := cycles[3][0]
	assert.Equal(t, types.ActionBuy, signal.Action)
	assert.Equal(t, 1.0, signal.Confidence)
	assert.Equal(t, "50", signal.Amount)
	assert.Equal(t, "Y", signal.Token)
	assert.Equal(t, "Price increased 3.00% above threshold (2%)", signal.Reason)
}

func TestSimpleTriggerSell(t *testing.T) {
	s := strategy.NewSimpleTriggerStrategy(zap.NewNop(), triggerConfig(3, "Y"))

	cycles := feed(t, s, "Y", 100, 100, 100, 97)

	require.Len(t, cycles[3], 1)
	assert.Equal(t, types.ActionSell, cycles[3][0].Action)
	assert.Equal(t, 1.0, cycles[3][0].Confidence)
	assert.Equal(t, "Price decreased 3.00% below threshold (1.5%)", cycles[3][0].Reason)
}

func TestSimpleTriggerThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  float64
	}{
		{"exactly at threshold", 102, 1.0},
		{"twice the threshold", 104, 1.0},
		{"far beyond threshold", 150, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := strategy.NewSimpleTriggerStrategy(zap.NewNop(), triggerConfig(3, "Y"))
			cycles := feed(t, s, "Y", 100, 100, 100, tt.price)
			require.Len(t, cycles[3], 1)
			assert.Equal(t, types.ActionBuy, cycles[3][0].Action)
			assert.Equal(t, tt.want, cycles[3][0].Confidence)
		})
	}
}

func TestSimpleTriggerWithinBand(t *testing.T) {
	s := strategy.NewSimpleTriggerStrategy(zap.NewNop(), triggerConfig(3, "Y"))

	cycles := feed(t, s, "Y", 100, 100, 100, 101, 99.5, 100)
	for i, c := range cycles {
		assert.Empty(t, c, "cycle %d", i+1)
	}
}

func TestSimpleTriggerHistoryCap(t *testing.T) {
	s := strategy.NewSimpleTriggerStrategy(zap.NewNop(), triggerConfig(3, "Y"))

	for i := 1; i <= 20; i++ {
		feed(t, s, "Y", float64(i))
		assert.LessOrEqual(t, len(s.PriceHistory("Y")), 6)
	}
	assert.Equal(t, []float64{15, 16, 17, 18, 19, 20}, s.PriceHistory("Y"))
}

func TestSimpleTriggerAllowList(t *testing.T) {
	s := strategy.NewSimpleTriggerStrategy(zap.NewNop(), triggerConfig(3, "Y"))

	cycles := feed(t, s, "Q", 100, 100, 100, 200)
	for _, c := range cycles {
		assert.Empty(t, c)
	}
	assert.Empty(t, s.PriceHistory("Q"))
}

func TestSimpleTriggerZeroLookbackNeverSignals(t *testing.T) {
	s := strategy.NewSimpleTriggerStrategy(zap.NewNop(), triggerConfig(0, "Y"))

	cycles := feed(t, s, "Y", 100, 200, 50)
	for _, c := range cycles {
		assert.Empty(t, c)
	}
	assert.LessOrEqual(t, len(s.PriceHistory("Y")), 1)
}

func TestSimpleTriggerUpdateLookbackResizes(t *testing.T) {
	s := strategy.NewSimpleTriggerStrategy(zap.NewNop(), triggerConfig(3, "Y"))
	feed(t, s, "Y", 1, 2, 3, 4, 5, 6)

	lookback := 1
	s.UpdateConfig(types.StrategyUpdate{LookbackPeriod: &lookback})

	assert.Equal(t, []float64{5, 6}, s.PriceHistory("Y"))
	assert.Equal(t, 1, s.Config().Parameters.LookbackPeriod)
	assert.Equal(t, 2.0, s.Config().Parameters.BuyThreshold)

	cycles := feed(t, s, "Y", 6.3)
	require.Len(t, cycles[0], 1)
	assert.Equal(t, types.ActionBuy, cycles[0][0].Action)
}

func TestSimpleTriggerEmptyBatch(t *testing.T) {
	s := strategy.NewSimpleTriggerStrategy(zap.NewNop(), triggerConfig(3, "Y"))
	feed(t, s, "Y", 100)

	signals, err := s.Analyze(context.Background(), []types.MarketData{})
	require.NoError(t, err)
	assert.Empty(t, signals)
	assert.Equal(t, []float64{100}, s.PriceHistory("Y"))
}

func TestSimpleTriggerMetadata(t *testing.T) {
	s := strategy.NewSimpleTriggerStrategy(zap.NewNop(), triggerConfig(3, "Y"))

	assert.Equal(t, "Simple Trigger Strategy", s.Name())
	assert.Equal(t, "Triggers buy/sell based on price percentage changes from recent average", s.Description())
	assert.Equal(t, strategy.KindSimpleTrigger, s.Kind())
	assert.True(t, s.Enabled())
}
