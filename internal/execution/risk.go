package execution

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atlas-desktop/recall-agent/pkg/types"
)

// ErrRiskRejected is returned when the risk guard blocks a trade.
var ErrRiskRejected = errors.New("trade rejected by risk guard")

// RiskConfig contains risk limits. Zero values disable a limit.
type RiskConfig struct {
	// MaxOrderAmount caps the amount of a single trade request.
	MaxOrderAmount decimal.Decimal `json:"maxOrderAmount"`
	// MaxDailyTrades caps accepted trades per UTC day.
	MaxDailyTrades int `json:"maxDailyTrades"`
	// MaxConsecutiveFailures trips the kill switch.
	MaxConsecutiveFailures int           `json:"maxConsecutiveFailures"`
	CooldownPeriod         time.Duration `json:"cooldownPeriod"`
}

// DefaultRiskConfig returns default risk configuration.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		MaxOrderAmount:         decimal.Zero,
		MaxDailyTrades:         500,
		MaxConsecutiveFailures: 5,
		CooldownPeriod:         15 * time.Minute,
	}
}

// RiskViolation represents a risk rule violation.
type RiskViolation struct {
	Rule      string          `json:"rule"`
	Token     string          `json:"token"`
	Value     decimal.Decimal `json:"value"`
	Limit     decimal.Decimal `json:"limit"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
}

// RiskGuard wraps an Executor and rejects trades that break the configured
// limits. Account and PriceObserver calls pass through to the wrapped venue.
type RiskGuard struct {
	logger *zap.Logger
	config RiskConfig
	next   Executor
	now    func() time.Time

	mu                  sync.Mutex
	day                 string
	dailyTrades         int
	consecutiveFailures int
	disabledUntil       time.Time

	// OnViolation is called for every rejected trade.
	OnViolation func(RiskViolation)
}

var (
	_ Executor      = (*RiskGuard)(nil)
	_ Account       = (*RiskGuard)(nil)
	_ PriceObserver = (*RiskGuard)(nil)
)

// NewRiskGuard creates a new risk guard in front of next.
func NewRiskGuard(logger *zap.Logger, config RiskConfig, next Executor) *RiskGuard {
	return &RiskGuard{
		logger: logger.Named("risk-guard"),
		config: config,
		next:   next,
		now:    time.Now,
	}
}

// ExecuteTrade checks the request against the limits and forwards it.
func (g *RiskGuard) ExecuteTrade(ctx context.Context, req types.TradeExecutionRequest) (*types.TradeExecutionResponse, error) {
	if v := g.check(req); v != nil {
		g.logger.Warn("Trade rejected",
			zap.String("rule", v.Rule),
			zap.String("token", v.Token),
			zap.String("message", v.Message))
		if g.OnViolation != nil {
			g.OnViolation(*v)
		}
		return nil, fmt.Errorf("%w: %s", ErrRiskRejected, v.Message)
	}

	resp, err := g.next.ExecuteTrade(ctx, req)
	g.record(err)
	return resp, err
}

func (g *RiskGuard) check(req types.TradeExecutionRequest) *RiskViolation {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.rollDay(now)

	violation := func(rule, message string, value, limit decimal.Decimal) *RiskViolation {
		return &RiskViolation{
			Rule:      rule,
			Token:     req.ToToken,
			Value:     value,
			Limit:     limit,
			Message:   message,
			Timestamp: now,
		}
	}

	if now.Before(g.disabledUntil) {
		return violation("kill_switch",
			fmt.Sprintf("trading disabled until %s", g.disabledUntil.Format(time.RFC3339)),
			decimal.NewFromInt(int64(g.consecutiveFailures)),
			decimal.NewFromInt(int64(g.config.MaxConsecutiveFailures)))
	}

	if g.config.MaxOrderAmount.IsPositive() {
		amount, err := decimal.NewFromString(req.Amount)
		if err == nil && amount.GreaterThan(g.config.MaxOrderAmount) {
			return violation("max_order_amount", "order amount exceeds maximum",
				amount, g.config.MaxOrderAmount)
		}
	}

	if g.config.MaxDailyTrades > 0 && g.dailyTrades >= g.config.MaxDailyTrades {
		return violation("max_daily_trades", "maximum daily trades reached",
			decimal.NewFromInt(int64(g.dailyTrades)),
			decimal.NewFromInt(int64(g.config.MaxDailyTrades)))
	}
	return nil
}

func (g *RiskGuard) record(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err == nil {
		g.dailyTrades++
		g.consecutiveFailures = 0
		return
	}

	g.consecutiveFailures++
	if g.config.MaxConsecutiveFailures > 0 && g.consecutiveFailures >= g.config.MaxConsecutiveFailures {
		g.disabledUntil = g.now().Add(g.config.CooldownPeriod)
		g.consecutiveFailures = 0
		g.logger.Error("Kill switch activated",
			zap.Int("failures", g.config.MaxConsecutiveFailures),
			zap.Time("until", g.disabledUntil))
	}
}

// rollDay resets the daily counters at UTC midnight. Caller holds g.mu.
func (g *RiskGuard) rollDay(now time.Time) {
	day := now.UTC().Format("2006-01-02")
	if day != g.day {
		g.day = day
		g.dailyTrades = 0
	}
}

// Status reports the guard's counters.
func (g *RiskGuard) Status() (dailyTrades int, disabledUntil time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rollDay(g.now())
	return g.dailyTrades, g.disabledUntil
}

// ObservePrices forwards prices to the wrapped venue when it tracks them.
func (g *RiskGuard) ObservePrices(batch []types.MarketData) {
	if observer, ok := g.next.(PriceObserver); ok {
		observer.ObservePrices(batch)
	}
}

// GetBalances forwards to the wrapped venue.
func (g *RiskGuard) GetBalances(ctx context.Context, chain string) ([]types.Balance, error) {
	account, ok := g.next.(Account)
	if !ok {
		return nil, ErrNotSupported
	}
	return account.GetBalances(ctx, chain)
}

// GetPositions forwards to the wrapped venue.
func (g *RiskGuard) GetPositions(ctx context.Context, chain string) ([]types.Position, error) {
	account, ok := g.next.(Account)
	if !ok {
		return nil, ErrNotSupported
	}
	return account.GetPositions(ctx, chain)
}

// GetTradeHistory forwards to the wrapped venue.
func (g *RiskGuard) GetTradeHistory(ctx context.Context, limit int, chain string) ([]types.Trade, error) {
	account, ok := g.next.(Account)
	if !ok {
		return nil, ErrNotSupported
	}
	return account.GetTradeHistory(ctx, limit, chain)
}
