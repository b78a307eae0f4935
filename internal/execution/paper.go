package execution

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atlas-desktop/recall-agent/pkg/types"
	"github.com/atlas-desktop/recall-agent/pkg/utils"
)

// PaperConfig configures the simulated venue.
type PaperConfig struct {
	Chain           string                     `json:"chain"`
	InitialBalances map[string]decimal.Decimal `json:"initialBalances"`
	// SlippageBps is applied against the trader on every fill.
	SlippageBps decimal.Decimal `json:"slippageBps"`
}

// DefaultPaperConfig returns sensible defaults.
func DefaultPaperConfig() PaperConfig {
	return PaperConfig{
		Chain: "ethereum",
		InitialBalances: map[string]decimal.Decimal{
			"USDC": decimal.NewFromInt(10000),
		},
		SlippageBps: decimal.NewFromInt(10),
	}
}

// PaperExecutor fills trades in memory at the last observed prices.
type PaperExecutor struct {
	logger *zap.Logger
	config PaperConfig

	mu       sync.RWMutex
	balances map[string]decimal.Decimal
	prices   map[string]decimal.Decimal
	trades   []types.Trade
	metrics  ExecutorMetrics
}

var (
	_ Executor      = (*PaperExecutor)(nil)
	_ Account       = (*PaperExecutor)(nil)
	_ PriceObserver = (*PaperExecutor)(nil)
)

// NewPaperExecutor creates a new paper trading venue.
func NewPaperExecutor(logger *zap.Logger, config PaperConfig) *PaperExecutor {
	if config.Chain == "" {
		config.Chain = "ethereum"
	}
	balances := make(map[string]decimal.Decimal, len(config.InitialBalances))
	for token, amount := range config.InitialBalances {
		balances[token] = amount
	}
	return &PaperExecutor{
		logger:   logger.Named("paper"),
		config:   config,
		balances: balances,
		prices:   make(map[string]decimal.Decimal),
		metrics:  ExecutorMetrics{TotalVolume: decimal.Zero},
	}
}

// ObservePrices records the latest price of every token in batch.
func (p *PaperExecutor) ObservePrices(batch []types.MarketData) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, data := range batch {
		price, err := decimal.NewFromString(data.Price)
		if err != nil || !price.IsPositive() {
			continue
		}
		p.prices[data.Token] = price
	}
}

// ExecuteTrade swaps Amount of FromToken into ToToken at the last observed
// prices, less slippage.
func (p *PaperExecutor) ExecuteTrade(ctx context.Context, req types.TradeExecutionRequest) (*types.TradeExecutionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, req.Amount)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.metrics.TotalOrders++
	p.metrics.LastOrderTime = time.Now()

	fromPrice, ok := p.prices[req.FromToken]
	if !ok {
		p.metrics.FailedOrders++
		return nil, fmt.Errorf("%w: %s", ErrUnknownPrice, req.FromToken)
	}
	toPrice, ok := p.prices[req.ToToken]
	if !ok {
		p.metrics.FailedOrders++
		return nil, fmt.Errorf("%w: %s", ErrUnknownPrice, req.ToToken)
	}

	available := p.balances[req.FromToken]
	if available.LessThan(amount) {
		p.metrics.FailedOrders++
		return nil, fmt.Errorf("%w: have %s %s, need %s",
			ErrInsufficientBalance, available.String(), req.FromToken, amount.String())
	}

	slippage := decimal.NewFromInt(1).Sub(p.config.SlippageBps.Div(decimal.NewFromInt(10000)))
	notional := amount.Mul(fromPrice)
	received := notional.Div(toPrice).Mul(slippage)

	p.balances[req.FromToken] = available.Sub(amount)
	p.balances[req.ToToken] = p.balances[req.ToToken].Add(received)

	trade := types.Trade{
		ID:        uuid.New().String(),
		FromToken: req.FromToken,
		ToToken:   req.ToToken,
		Amount:    amount.String(),
		Price:     fromPrice.Div(toPrice).String(),
		Timestamp: time.Now().UTC(),
		Status:    types.TradeStatusCompleted,
		Reason:    req.Reason,
	}
	p.trades = append(p.trades, trade)
	p.metrics.SuccessfulOrders++
	p.metrics.TotalVolume = p.metrics.TotalVolume.Add(notional)

	p.logger.Info("Paper trade filled",
		zap.String("category", "trade"),
		zap.String("tradeId", trade.ID),
		zap.String("from", req.FromToken),
		zap.String("to", req.ToToken),
		zap.String("amount", trade.Amount),
		zap.String("received", received.StringFixed(8)),
		zap.String("notional", utils.FormatMoney(notional, "USD")))

	return &types.TradeExecutionResponse{
		TradeID: trade.ID,
		Status:  trade.Status,
	}, nil
}

// GetBalances returns every non-zero holding, sorted by token.
func (p *PaperExecutor) GetBalances(ctx context.Context, chain string) ([]types.Balance, error) {
	if chain != "" && chain != p.config.Chain {
		return []types.Balance{}, nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	balances := make([]types.Balance, 0, len(p.balances))
	for _, token := range p.sortedTokens() {
		amount := p.balances[token]
		if amount.IsZero() {
			continue
		}
		balances = append(balances, types.Balance{
			Token:  token,
			Amount: amount.String(),
			Chain:  p.config.Chain,
			Value:  p.valueOf(token, amount),
		})
	}
	return balances, nil
}

// GetPositions returns holdings valued at the latest observed prices.
func (p *PaperExecutor) GetPositions(ctx context.Context, chain string) ([]types.Position, error) {
	balances, err := p.GetBalances(ctx, chain)
	if err != nil {
		return nil, err
	}
	positions := make([]types.Position, len(balances))
	for i, b := range balances {
		positions[i] = types.Position{Token: b.Token, Amount: b.Amount, Value: b.Value, Chain: b.Chain}
	}
	return positions, nil
}

// GetTradeHistory returns up to limit trades, newest first. A non-positive
// limit returns all trades.
func (p *PaperExecutor) GetTradeHistory(ctx context.Context, limit int, chain string) ([]types.Trade, error) {
	if chain != "" && chain != p.config.Chain {
		return []types.Trade{}, nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	n := len(p.trades)
	if limit > 0 && limit < n {
		n = limit
	}
	trades := make([]types.Trade, 0, n)
	for i := len(p.trades) - 1; i >= 0 && len(trades) < n; i-- {
		trades = append(trades, p.trades[i])
	}
	return trades, nil
}

// Metrics returns a snapshot of execution counters.
func (p *PaperExecutor) Metrics() ExecutorMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.metrics
}

func (p *PaperExecutor) sortedTokens() []string {
	tokens := make([]string, 0, len(p.balances))
	for token := range p.balances {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

func (p *PaperExecutor) valueOf(token string, amount decimal.Decimal) float64 {
	price, ok := p.prices[token]
	if !ok {
		return 0
	}
	return amount.Mul(price).InexactFloat64()
}
