package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "expected %s, got %s", want, got.String())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateTotals(t *testing.T) {
	tests := []struct {
		name        string
		lines       []Line
		cfg         TaxConfig
		wantSub     string
		wantTax     string
		wantTotal   string
		wantBalance string
	}{
		{
			name:        "gst 18 percent with advance",
			lines:       []Line{{Quantity: 2, UnitPrice: dec("1000")}},
			cfg:         TaxConfig{GSTEnabled: true, GSTPercentage: dec("18"), AdvancePaid: dec("500")},
			wantSub:     "2000",
			wantTax:     "360",
			wantTotal:   "2360",
			wantBalance: "1860",
		},
		{
			name:        "gst disabled ignores percentage",
			lines:       []Line{{Quantity: 3, UnitPrice: dec("250")}},
			cfg:         TaxConfig{GSTEnabled: false, GSTPercentage: dec("28")},
			wantSub:     "750",
			wantTax:     "0",
			wantTotal:   "750",
			wantBalance: "750",
		},
		{
			name:        "advance larger than total goes negative",
			lines:       []Line{{Quantity: 1, UnitPrice: dec("100")}},
			cfg:         TaxConfig{AdvancePaid: dec("150")},
			wantSub:     "100",
			wantTax:     "0",
			wantTotal:   "100",
			wantBalance: "-50",
		},
		{
			name:        "no lines",
			lines:       nil,
			cfg:         TaxConfig{GSTEnabled: true, GSTPercentage: dec("18")},
			wantSub:     "0",
			wantTax:     "0",
			wantTotal:   "0",
			wantBalance: "0",
		},
		{
			name:        "out of range percentage is not clamped",
			lines:       []Line{{Quantity: 1, UnitPrice: dec("100")}},
			cfg:         TaxConfig{GSTEnabled: true, GSTPercentage: dec("150")},
			wantSub:     "100",
			wantTax:     "150",
			wantTotal:   "250",
			wantBalance: "250",
		},
		{
			name:        "negative price flows through",
			lines:       []Line{{Quantity: 2, UnitPrice: dec("100")}, {Quantity: 1, UnitPrice: dec("-50")}},
			cfg:         TaxConfig{},
			wantSub:     "150",
			wantTax:     "0",
			wantTotal:   "150",
			wantBalance: "150",
		},
		{
			name:        "fractional gst",
			lines:       []Line{{Quantity: 1, UnitPrice: dec("99.99")}},
			cfg:         TaxConfig{GSTEnabled: true, GSTPercentage: dec("5")},
			wantSub:     "99.99",
			wantTax:     "4.9995",
			wantTotal:   "104.9895",
			wantBalance: "104.9895",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTotals(tt.lines, tt.cfg)
			assertDecimal(t, tt.wantSub, got.Subtotal)
			assertDecimal(t, tt.wantTax, got.TaxAmount)
			assertDecimal(t, tt.wantTotal, got.Total)
			assertDecimal(t, tt.wantBalance, got.BalanceDue)

			assert.True(t, got.Total.Equal(got.Subtotal.Add(got.TaxAmount)))
			assert.True(t, got.BalanceDue.Equal(got.Total.Sub(tt.cfg.AdvancePaid)))
		})
	}
}

func TestCalculateTotals_Idempotent(t *testing.T) {
	lines := []Line{{Quantity: 4, UnitPrice: dec("12.5")}, {Quantity: 1, UnitPrice: dec("7")}}
	cfg := TaxConfig{GSTEnabled: true, GSTPercentage: dec("12"), AdvancePaid: dec("10")}

	first := CalculateTotals(lines, cfg)
	second := CalculateTotals(lines, cfg)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.BalanceDue.Equal(second.BalanceDue))
}
