package models

import (
	"encoding/gob"

	"github.com/shopspring/decimal"
)

const (
	// StandardTicketName labels the single line of a flat-priced selection
	StandardTicketName = "Standard Ticket"

	FlatMinQuantity = 1
	FlatMaxQuantity = 10
)

// Selection is the cart of a checkout. It is either a FlatSelection (event
// without categories) or a CategorizedSelection.
type Selection interface {
	// SetQuantity adjusts the quantity of a category by delta
	SetQuantity(categoryID string, delta int)
	// TotalCount is the number of tickets selected
	TotalCount() int
	// Lines lists the selected quantities with their unit prices
	Lines() []CartLine
}

// CartLine is one priced row of a selection
type CartLine struct {
	CategoryID string          `json:"category_id,omitempty"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

// SelectionSubtotal is the sum of unit price times quantity over a selection
func SelectionSubtotal(s Selection) decimal.Decimal {
	return Subtotal(toLines(s.Lines()))
}

// SelectionTotals computes the totals of a selection. Ticket sales carry no
// GST or advance.
func SelectionTotals(s Selection) Totals {
	return CalculateTotals(toLines(s.Lines()), TaxConfig{})
}

func toLines(cart []CartLine) []Line {
	lines := make([]Line, 0, len(cart))
	for _, c := range cart {
		lines = append(lines, Line{Quantity: c.Quantity, UnitPrice: c.UnitPrice})
	}
	return lines
}

// FlatSelection is a single ticket count at one price, kept within
// [FlatMinQuantity, FlatMaxQuantity].
type FlatSelection struct {
	UnitPrice decimal.Decimal
	Count     int
}

// NewFlatSelection starts a flat selection at the minimum count
func NewFlatSelection(price decimal.Decimal) *FlatSelection {
	return &FlatSelection{UnitPrice: price, Count: FlatMinQuantity}
}

// SetQuantity ignores categoryID; the count is clamped to the flat bounds
func (f *FlatSelection) SetQuantity(_ string, delta int) {
	f.Count = clamp(f.Count+delta, FlatMinQuantity, FlatMaxQuantity)
}

func (f *FlatSelection) TotalCount() int {
	return f.Count
}

func (f *FlatSelection) Lines() []CartLine {
	return []CartLine{{
		Name:      StandardTicketName,
		UnitPrice: f.UnitPrice,
		Quantity:  f.Count,
	}}
}

// CategorizedSelection maps category ids to quantities. Quantities are never
// negative and have no upper bound; a missing key means zero.
type CategorizedSelection struct {
	Categories []TicketCategory
	Quantities map[string]int
}

// NewCategorizedSelection starts an empty selection over categories
func NewCategorizedSelection(categories []TicketCategory) *CategorizedSelection {
	return &CategorizedSelection{
		Categories: append([]TicketCategory(nil), categories...),
		Quantities: make(map[string]int),
	}
}

// SetQuantity adjusts a category's quantity, flooring at zero. Unknown
// categories are ignored.
func (c *CategorizedSelection) SetQuantity(categoryID string, delta int) {
	if !c.known(categoryID) {
		return
	}
	if c.Quantities == nil {
		c.Quantities = make(map[string]int)
	}

	q := c.Quantities[categoryID] + delta
	if q <= 0 {
		delete(c.Quantities, categoryID)
		return
	}
	c.Quantities[categoryID] = q
}

func (c *CategorizedSelection) TotalCount() int {
	total := 0
	for _, q := range c.Quantities {
		total += q
	}
	return total
}

// Quantity returns the selected quantity of a category
func (c *CategorizedSelection) Quantity(categoryID string) int {
	return c.Quantities[categoryID]
}

// Lines returns selected categories in catalog order
func (c *CategorizedSelection) Lines() []CartLine {
	var lines []CartLine
	for _, cat := range c.Categories {
		q := c.Quantities[cat.ID]
		if q == 0 {
			continue
		}
		lines = append(lines, CartLine{
			CategoryID: cat.ID,
			Name:       cat.Name,
			UnitPrice:  cat.Price,
			Quantity:   q,
		})
	}
	return lines
}

func (c *CategorizedSelection) known(categoryID string) bool {
	for _, cat := range c.Categories {
		if cat.ID == categoryID {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RegisterGobTypes registers the draft types stored in server-side sessions
func RegisterGobTypes() {
	gob.Register(&FlatSelection{})
	gob.Register(&CategorizedSelection{})
	gob.Register(&Checkout{})
	gob.Register(&Invoice{})
}
