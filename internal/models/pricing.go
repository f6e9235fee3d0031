package models

import "github.com/shopspring/decimal"

// PricingSchedule is the price table a checkout is opened against. It is
// captured once per checkout so later catalog edits do not reprice a cart.
type PricingSchedule struct {
	BasePrice  decimal.Decimal
	Categories []TicketCategory
}

// NewPricingSchedule captures the prices of an event
func NewPricingSchedule(e *Event) PricingSchedule {
	ps := PricingSchedule{BasePrice: decimal.Zero}
	if e.TicketPrice != nil {
		ps.BasePrice = *e.TicketPrice
	}
	ps.Categories = append([]TicketCategory(nil), e.Categories...)
	return ps
}

// PriceOf returns the unit price of a category
func (ps PricingSchedule) PriceOf(categoryID string) (decimal.Decimal, bool) {
	for _, c := range ps.Categories {
		if c.ID == categoryID {
			return c.Price, true
		}
	}
	return decimal.Zero, false
}

// NewSelection returns the empty selection matching the schedule: per
// category when categories exist, a flat count otherwise.
func (ps PricingSchedule) NewSelection() Selection {
	if len(ps.Categories) > 0 {
		return NewCategorizedSelection(ps.Categories)
	}
	return NewFlatSelection(ps.BasePrice)
}
