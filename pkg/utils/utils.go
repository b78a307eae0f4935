// Package utils provides utility functions for the trading agent.
package utils

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParsePrice parses a decimal price string. Non-numeric and non-finite
// values are rejected.
func ParsePrice(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("price %q out of range", s)
	}
	return f, nil
}

// FormatAmount renders a float amount as the shortest decimal string that
// round-trips.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// NormalizeToken trims and uppercases a token symbol.
func NormalizeToken(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}

// RedactSecret masks all but the last four characters of a credential.
func RedactSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

// FormatMoney formats a decimal as money.
func FormatMoney(d decimal.Decimal, currency string) string {
	switch strings.ToUpper(currency) {
	case "USD", "USDT", "USDC":
		return "$" + d.StringFixed(2)
	case "WETH", "ETH":
		return d.StringFixed(6) + " " + strings.ToUpper(currency)
	case "WBTC", "BTC":
		return d.StringFixed(8) + " " + strings.ToUpper(currency)
	default:
		return d.String() + " " + currency
	}
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// MinDecimal returns the minimum of two decimals.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
