package dca

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dcareport/internal/domain/model"
)

func TestFormatterRender(t *testing.T) {
	r := &model.Report{
		GeneratedAt: time.Now(),
		Assets: []model.AssetSummary{
			{
				Crypto:      "BTC",
				TotalAmount: decimal.RequireFromString("0.01"),
				TotalPrice:  decimal.NewFromInt(500),
				AvgEntry:    decimal.NewNullDecimal(decimal.NewFromInt(50000)),
			},
			{Crypto: "ETH", TotalAmount: decimal.Zero, TotalPrice: decimal.Zero},
		},
		TotalSpent: decimal.NewFromInt(500),
	}

	out := NewFormatter(false).Render(r)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if f := strings.Fields(lines[0]); strings.Join(f, " ") != "crypto totalAmount totalPrice avgEntry" {
		t.Errorf("header = %q", lines[0])
	}
	if f := strings.Fields(lines[1]); strings.Join(f, " ") != "BTC 0.010 500.000 50000.000" {
		t.Errorf("btc row = %q", lines[1])
	}
	if f := strings.Fields(lines[2]); strings.Join(f, " ") != "ETH 0.000 0.000 -" {
		t.Errorf("eth row = %q", lines[2])
	}
	if lines[3] != "total spent: 500.000" {
		t.Errorf("total = %q", lines[3])
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("unexpected ANSI codes without color")
	}
}

func TestFormatterColor(t *testing.T) {
	r := &model.Report{NoActivity: true, TotalSpent: decimal.Zero}

	out := NewFormatter(true).Render(r)

	if !strings.Contains(out, ansiBold+"total spent: 0.000"+ansiReset) {
		t.Errorf("expected bold total, got %q", out)
	}
}
