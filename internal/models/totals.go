package models

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Line is a single priced quantity fed into CalculateTotals
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// TaxConfig holds the GST toggle and advance payment applied on top of a
// subtotal
type TaxConfig struct {
	GSTEnabled    bool
	GSTPercentage decimal.Decimal
	AdvancePaid   decimal.Decimal
}

// Totals are the derived monetary figures of a cart or invoice
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	Total      decimal.Decimal `json:"total"`
	BalanceDue decimal.Decimal `json:"balance_due"`
}

// CalculateTotals derives subtotal, tax, total and balance due. Inputs are
// not clamped: negative prices, negative advances and GST percentages outside
// [0,100] flow through the formulas unchanged.
func CalculateTotals(lines []Line, cfg TaxConfig) Totals {
	subtotal := Subtotal(lines)

	tax := decimal.Zero
	if cfg.GSTEnabled {
		tax = subtotal.Mul(cfg.GSTPercentage).Div(hundred)
	}

	total := subtotal.Add(tax)
	return Totals{
		Subtotal:   subtotal,
		TaxAmount:  tax,
		Total:      total,
		BalanceDue: total.Sub(cfg.AdvancePaid),
	}
}

// Subtotal returns the sum of quantity times unit price over lines
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}
