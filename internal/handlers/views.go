package handlers

import (
	"github.com/shopspring/decimal"

	"event-console/internal/models"
)

// EventView is an event as shown before checkout
type EventView struct {
	*models.Event
	DisplayPrice decimal.Decimal `json:"display_price"`
	HasLayout    bool            `json:"has_layout"`
}

func newEventView(e *models.Event) EventView {
	return EventView{
		Event:        e,
		DisplayPrice: e.DisplayPrice(),
		HasLayout:    e.HasLayout(),
	}
}

// CategoryView is one selectable tier with its current quantity
type CategoryView struct {
	models.TicketCategory
	Quantity int `json:"quantity"`
}

// CheckoutView is the client-facing state of a checkout draft
type CheckoutView struct {
	DraftID        string                 `json:"draft_id"`
	EventID        string                 `json:"event_id"`
	EventTitle     string                 `json:"event_title"`
	VenueLayoutURL string                 `json:"venue_layout_url,omitempty"`
	Step           models.CheckoutStep    `json:"step"`
	Categories     []CategoryView         `json:"categories,omitempty"`
	Lines          []models.CartLine      `json:"lines"`
	TicketCount    int                    `json:"ticket_count"`
	Totals         models.Totals          `json:"totals"`
	Customer       models.CustomerDetails `json:"customer"`
	PaymentRef     string                 `json:"payment_ref,omitempty"`
	Order          *models.TicketOrder    `json:"order,omitempty"`
	Submitting     bool                   `json:"submitting"`
}

func newCheckoutView(c *models.Checkout, submitting bool) CheckoutView {
	view := CheckoutView{
		DraftID:        c.DraftID,
		EventID:        c.EventID,
		EventTitle:     c.EventTitle,
		VenueLayoutURL: c.VenueLayoutURL,
		Step:           c.Step,
		Lines:          []models.CartLine{},
		Totals:         c.Totals(),
		Customer:       c.Customer,
		PaymentRef:     c.PaymentRef,
		Order:          c.Order,
		Submitting:     submitting,
	}

	if c.Selection != nil {
		if lines := c.Selection.Lines(); lines != nil {
			view.Lines = lines
		}
		view.TicketCount = c.Selection.TotalCount()
	}

	if sel, ok := c.Selection.(*models.CategorizedSelection); ok {
		for _, cat := range sel.Categories {
			view.Categories = append(view.Categories, CategoryView{
				TicketCategory: cat,
				Quantity:       sel.Quantity(cat.ID),
			})
		}
	}

	return view
}

// InvoiceView is an invoice draft with its live totals
type InvoiceView struct {
	*models.Invoice
	Totals   models.Totals `json:"totals"`
	UPIReady bool          `json:"upi_ready"`
	Saving   bool          `json:"saving"`
}

func newInvoiceView(inv *models.Invoice, saving bool) InvoiceView {
	_, upiReady := inv.UPIPaymentURI()
	return InvoiceView{
		Invoice:  inv,
		Totals:   inv.Totals(),
		UPIReady: upiReady,
		Saving:   saving,
	}
}
