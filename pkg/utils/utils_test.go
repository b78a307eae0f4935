package utils_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas-desktop/recall-agent/pkg/utils"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"100", 100, false},
		{" 2500.75 ", 2500.75, false},
		{"0.000001", 0.000001, false},
		{"", 0, true},
		{"abc", 0, true},
		{"12abc", 0, true},
		{"NaN", 0, true},
		{"Infinity", 0, true},
	}

	for _, tt := range tests {
		got, err := utils.ParsePrice(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePrice(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePrice(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := utils.FormatAmount(50); got != "50" {
		t.Errorf("FormatAmount(50) = %q", got)
	}
	if got := utils.FormatAmount(24.5); got != "24.5" {
		t.Errorf("FormatAmount(24.5) = %q", got)
	}
}

func TestRedactSecret(t *testing.T) {
	if got := utils.RedactSecret(""); got != "" {
		t.Errorf("empty secret redacted to %q", got)
	}
	if got := utils.RedactSecret("abc"); got != "****" {
		t.Errorf("short secret redacted to %q", got)
	}
	if got := utils.RedactSecret("sk_live_123456"); got != "****3456" {
		t.Errorf("secret redacted to %q", got)
	}
}

func TestFormatMoney(t *testing.T) {
	if got := utils.FormatMoney(decimal.NewFromFloat(1234.5), "usdc"); got != "$1234.50" {
		t.Errorf("FormatMoney USDC = %q", got)
	}
	if got := utils.FormatMoney(decimal.NewFromInt(2), "WETH"); got != "2.000000 WETH" {
		t.Errorf("FormatMoney WETH = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := utils.FormatDuration(90 * time.Second); got != "1m 30s" {
		t.Errorf("FormatDuration = %q", got)
	}
	if got := utils.FormatDuration(26 * time.Hour); got != "1d 2h 0m" {
		t.Errorf("FormatDuration = %q", got)
	}
}
