package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atlas-desktop/recall-agent/pkg/types"
)

type failingExecutor struct {
	calls int
	err   error
}

func (f *failingExecutor) ExecuteTrade(ctx context.Context, req types.TradeExecutionRequest) (*types.TradeExecutionResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &types.TradeExecutionResponse{TradeID: "t", Status: types.TradeStatusCompleted}, nil
}

func newGuard(config RiskConfig, next Executor, now *time.Time) *RiskGuard {
	g := NewRiskGuard(zap.NewNop(), config, next)
	g.now = func() time.Time { return *now }
	return g
}

func TestRiskGuardMaxOrderAmount(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	next := &failingExecutor{}
	g := newGuard(RiskConfig{MaxOrderAmount: decimal.NewFromInt(100)}, next, &now)

	var violations []RiskViolation
	g.OnViolation = func(v RiskViolation) { violations = append(violations, v) }

	_, err := g.ExecuteTrade(context.Background(), types.TradeExecutionRequest{FromToken: "USDC", ToToken: "WETH", Amount: "150"})
	assert.ErrorIs(t, err, ErrRiskRejected)
	assert.Equal(t, 0, next.calls)
	require.Len(t, violations, 1)
	assert.Equal(t, "max_order_amount", violations[0].Rule)
	assert.Equal(t, "WETH", violations[0].Token)

	_, err = g.ExecuteTrade(context.Background(), types.TradeExecutionRequest{FromToken: "USDC", ToToken: "WETH", Amount: "100"})
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestRiskGuardDailyTradesResetAtMidnight(t *testing.T) {
	now := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	next := &failingExecutor{}
	g := newGuard(RiskConfig{MaxDailyTrades: 2}, next, &now)
	req := types.TradeExecutionRequest{FromToken: "USDC", ToToken: "WETH", Amount: "10"}

	for i := 0; i < 2; i++ {
		_, err := g.ExecuteTrade(context.Background(), req)
		require.NoError(t, err)
	}
	_, err := g.ExecuteTrade(context.Background(), req)
	assert.ErrorIs(t, err, ErrRiskRejected)

	now = now.Add(2 * time.Hour)
	_, err = g.ExecuteTrade(context.Background(), req)
	assert.NoError(t, err)

	trades, _ := g.Status()
	assert.Equal(t, 1, trades)
}

func TestRiskGuardKillSwitch(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	next := &failingExecutor{err: errors.New("venue down")}
	g := newGuard(RiskConfig{MaxConsecutiveFailures: 2, CooldownPeriod: time.Minute}, next, &now)
	req := types.TradeExecutionRequest{FromToken: "USDC", ToToken: "WETH", Amount: "10"}

	for i := 0; i < 2; i++ {
		_, err := g.ExecuteTrade(context.Background(), req)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRiskRejected)
	}

	_, err := g.ExecuteTrade(context.Background(), req)
	assert.ErrorIs(t, err, ErrRiskRejected)
	assert.Equal(t, 2, next.calls)

	_, until := g.Status()
	assert.Equal(t, now.Add(time.Minute), until)

	next.err = nil
	now = now.Add(2 * time.Minute)
	_, err = g.ExecuteTrade(context.Background(), req)
	assert.NoError(t, err)
}

func TestRiskGuardPassesThroughAccount(t *testing.T) {
	paper := NewPaperExecutor(zap.NewNop(), DefaultPaperConfig())
	g := NewRiskGuard(zap.NewNop(), DefaultRiskConfig(), paper)

	g.ObservePrices([]types.MarketData{{Token: "USDC", Price: "1"}, {Token: "WETH", Price: "2000"}})
	_, err := g.ExecuteTrade(context.Background(), types.TradeExecutionRequest{FromToken: "USDC", ToToken: "WETH", Amount: "100"})
	require.NoError(t, err)

	trades, err := g.GetTradeHistory(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Len(t, trades, 1)

	bare := NewRiskGuard(zap.NewNop(), DefaultRiskConfig(), &failingExecutor{})
	_, err = bare.GetBalances(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotSupported)
}
