package execution_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atlas-desktop/recall-agent/internal/execution"
	"github.com/atlas-desktop/recall-agent/pkg/types"
)

func newPaper(t *testing.T) *execution.PaperExecutor {
	t.Helper()
	p := execution.NewPaperExecutor(zap.NewNop(), execution.PaperConfig{
		Chain: "ethereum",
		InitialBalances: map[string]decimal.Decimal{
			"USDC": decimal.NewFromInt(1000),
		},
		SlippageBps: decimal.Zero,
	})
	p.ObservePrices([]types.MarketData{
		{Token: "USDC", Price: "1"},
		{Token: "WETH", Price: "2000"},
	})
	return p
}

func TestPaperBuyAndSell(t *testing.T) {
	p := newPaper(t)
	ctx := context.Background()

	resp, err := p.ExecuteTrade(ctx, types.TradeExecutionRequest{FromToken: "USDC", ToToken: "WETH", Amount: "500", Reason: "buy signal: test"})
	require.NoError(t, err)
	assert.Equal(t, types.TradeStatusCompleted, resp.Status)
	assert.NotEmpty(t, resp.TradeID)

	balances, err := p.GetBalances(ctx, "")
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "USDC", balances[0].Token)
	assert.Equal(t, "500", balances[0].Amount)
	assert.Equal(t, "WETH", balances[1].Token)
	assert.Equal(t, "0.25", balances[1].Amount)
	assert.InDelta(t, 500.0, balances[1].Value, 1e-9)

	_, err = p.ExecuteTrade(ctx, types.TradeExecutionRequest{FromToken: "WETH", ToToken: "USDC", Amount: "0.25"})
	require.NoError(t, err)

	balances, err = p.GetBalances(ctx, "")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "1000", balances[0].Amount)

	metrics := p.Metrics()
	assert.Equal(t, 2, metrics.TotalOrders)
	assert.Equal(t, 2, metrics.SuccessfulOrders)
	assert.True(t, metrics.TotalVolume.Equal(decimal.NewFromInt(1000)))
}

func TestPaperSlippage(t *testing.T) {
	p := execution.NewPaperExecutor(zap.NewNop(), execution.PaperConfig{
		InitialBalances: map[string]decimal.Decimal{"USDC": decimal.NewFromInt(100)},
		SlippageBps:     decimal.NewFromInt(100),
	})
	p.ObservePrices([]types.MarketData{{Token: "USDC", Price: "1"}, {Token: "X", Price: "10"}})

	_, err := p.ExecuteTrade(context.Background(), types.TradeExecutionRequest{FromToken: "USDC", ToToken: "X", Amount: "100"})
	require.NoError(t, err)

	positions, err := p.GetPositions(context.Background(), "ethereum")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "X", positions[0].Token)
	assert.Equal(t, "9.9", positions[0].Amount)
}

func TestPaperRejections(t *testing.T) {
	p := newPaper(t)
	ctx := context.Background()

	_, err := p.ExecuteTrade(ctx, types.TradeExecutionRequest{FromToken: "USDC", ToToken: "WETH", Amount: "5000"})
	assert.True(t, errors.Is(err, execution.ErrInsufficientBalance))

	_, err = p.ExecuteTrade(ctx, types.TradeExecutionRequest{FromToken: "USDC", ToToken: "DOGE", Amount: "1"})
	assert.True(t, errors.Is(err, execution.ErrUnknownPrice))

	_, err = p.ExecuteTrade(ctx, types.TradeExecutionRequest{FromToken: "USDC", ToToken: "WETH", Amount: "-1"})
	assert.True(t, errors.Is(err, execution.ErrInvalidAmount))

	_, err = p.ExecuteTrade(ctx, types.TradeExecutionRequest{FromToken: "USDC", ToToken: "WETH", Amount: "ten"})
	assert.True(t, errors.Is(err, execution.ErrInvalidAmount))

	assert.Equal(t, 2, p.Metrics().FailedOrders)
}

func TestPaperTradeHistory(t *testing.T) {
	p := newPaper(t)
	ctx := context.Background()

	for _, amount := range []string{"10", "20", "30"} {
		_, err := p.ExecuteTrade(ctx, types.TradeExecutionRequest{FromToken: "USDC", ToToken: "WETH", Amount: amount})
		require.NoError(t, err)
	}

	trades, err := p.GetTradeHistory(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "30", trades[0].Amount)
	assert.Equal(t, "20", trades[1].Amount)

	all, err := p.GetTradeHistory(ctx, 0, "ethereum")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	other, err := p.GetTradeHistory(ctx, 0, "base")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestPaperCancelledContext(t *testing.T) {
	p := newPaper(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ExecuteTrade(ctx, types.TradeExecutionRequest{FromToken: "USDC", ToToken: "WETH", Amount: "1"})
	assert.ErrorIs(t, err, context.Canceled)
}
