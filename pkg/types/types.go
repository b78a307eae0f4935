// Package types provides shared type definitions for the trading agent.
package types

import (
	"time"
)

// Action represents what a trading signal recommends.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// MarketData is a single token's price snapshot for one polling cycle.
type MarketData struct {
	Token     string    `json:"token"`
	Price     string    `json:"price"`
	Volume24h float64   `json:"volume24h"`
	Change24h float64   `json:"change24h"`
	Timestamp time.Time `json:"timestamp"`
	Chain     string    `json:"chain"`
}

// TradingSignal is a strategy recommendation for one token.
type TradingSignal struct {
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	Token      string  `json:"token"`
	// Amount is the suggested position size as a decimal string. Empty when
	// the strategy does not size its signals.
	Amount string `json:"amount,omitempty"`
}

// TradeExecutionRequest asks the execution venue to swap one token for another.
type TradeExecutionRequest struct {
	FromToken string `json:"fromToken"`
	ToToken   string `json:"toToken"`
	Amount    string `json:"amount"`
	Reason    string `json:"reason,omitempty"`
	Chain     string `json:"chain,omitempty"`
}

// TradeExecutionResponse is the venue's acknowledgement of a trade.
type TradeExecutionResponse struct {
	TradeID         string `json:"tradeId"`
	Status          string `json:"status"`
	TransactionHash string `json:"transactionHash,omitempty"`
	GasUsed         string `json:"gasUsed,omitempty"`
}

// Trade status values reported by execution venues.
const (
	TradeStatusPending   = "pending"
	TradeStatusCompleted = "completed"
	TradeStatusFailed    = "failed"
)

// Trade is a historical trade record.
type Trade struct {
	ID        string    `json:"id"`
	FromToken string    `json:"fromToken"`
	ToToken   string    `json:"toToken"`
	Amount    string    `json:"amount"`
	Price     string    `json:"price"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
}

// Balance is a wallet holding on one chain.
type Balance struct {
	Token  string  `json:"token"`
	Amount string  `json:"amount"`
	Chain  string  `json:"chain"`
	Value  float64 `json:"value"`
}

// Position is an open holding valued at the latest known price.
type Position struct {
	Token  string  `json:"token"`
	Amount string  `json:"amount"`
	Value  float64 `json:"value"`
	Chain  string  `json:"chain"`
}
