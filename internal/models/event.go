package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Event is a ticketed event. When Categories is non-empty it is the only
// source of prices for checkout and TicketPrice is display-only.
type Event struct {
	ID             string           `json:"id" db:"id"`
	Title          string           `json:"title" db:"title"`
	TicketPrice    *decimal.Decimal `json:"ticket_price,omitempty" db:"ticket_price"`
	Categories     []TicketCategory `json:"categories,omitempty"`
	VenueLayoutURL string           `json:"venue_layout_url,omitempty" db:"venue_layout_url"`
	StartsAt       *time.Time       `json:"starts_at,omitempty" db:"starts_at"`
	Venue          string           `json:"venue,omitempty" db:"venue"`
}

// TicketCategory is a priced ticket tier of an event
type TicketCategory struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Description string          `json:"description,omitempty" db:"description"`
}

// Validate validates the event data
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return errors.New("title is required")
	}

	if e.TicketPrice != nil && e.TicketPrice.IsNegative() {
		return errors.New("ticket price cannot be negative")
	}

	return e.validateCategories()
}

func (e *Event) validateCategories() error {
	seen := make(map[string]bool, len(e.Categories))
	for _, c := range e.Categories {
		if c.ID == "" {
			return errors.New("category id is required")
		}
		if seen[c.ID] {
			return errors.New("category ids must be unique within an event")
		}
		seen[c.ID] = true

		if strings.TrimSpace(c.Name) == "" {
			return errors.New("category name is required")
		}
		if c.Price.IsNegative() {
			return errors.New("category price cannot be negative")
		}
	}
	return nil
}

// HasCategories reports whether checkout uses per-category pricing
func (e *Event) HasCategories() bool {
	return len(e.Categories) > 0
}

// HasLayout reports whether the event has a venue layout to show before
// ticket selection
func (e *Event) HasLayout() bool {
	return strings.TrimSpace(e.VenueLayoutURL) != ""
}

// DisplayPrice is the "from" price shown on listings: the cheapest category
// when categories exist, otherwise the flat ticket price.
func (e *Event) DisplayPrice() decimal.Decimal {
	if !e.HasCategories() {
		if e.TicketPrice == nil {
			return decimal.Zero
		}
		return *e.TicketPrice
	}

	lowest := e.Categories[0].Price
	for _, c := range e.Categories[1:] {
		if c.Price.LessThan(lowest) {
			lowest = c.Price
		}
	}
	return lowest
}
