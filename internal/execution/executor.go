// Package execution provides trade execution venues.
package execution

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas-desktop/recall-agent/pkg/types"
)

var (
	// ErrUnknownPrice is returned when a trade references a token with no
	// observed price.
	ErrUnknownPrice = errors.New("no price observed for token")
	// ErrInsufficientBalance is returned when the source token balance
	// cannot cover the trade.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidAmount is returned for non-positive or unparseable amounts.
	ErrInvalidAmount = errors.New("invalid trade amount")
	// ErrNotSupported is returned when a venue does not expose the
	// requested account data.
	ErrNotSupported = errors.New("not supported by execution venue")
)

// Executor submits trade requests to a venue.
type Executor interface {
	ExecuteTrade(ctx context.Context, req types.TradeExecutionRequest) (*types.TradeExecutionResponse, error)
}

// Account exposes the holdings and trade history of a venue.
type Account interface {
	GetBalances(ctx context.Context, chain string) ([]types.Balance, error)
	GetPositions(ctx context.Context, chain string) ([]types.Position, error)
	GetTradeHistory(ctx context.Context, limit int, chain string) ([]types.Trade, error)
}

// PriceObserver receives every market data batch the agent fetches.
type PriceObserver interface {
	ObservePrices(batch []types.MarketData)
}

// ExecutorMetrics tracks execution activity.
type ExecutorMetrics struct {
	TotalOrders      int             `json:"totalOrders"`
	SuccessfulOrders int             `json:"successfulOrders"`
	FailedOrders     int             `json:"failedOrders"`
	TotalVolume      decimal.Decimal `json:"totalVolume"`
	LastOrderTime    time.Time       `json:"lastOrderTime"`
}
