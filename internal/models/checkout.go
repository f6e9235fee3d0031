package models

import (
	"strings"

	"github.com/google/uuid"
)

// CheckoutStep is a state of the guided purchase flow
type CheckoutStep string

const (
	StepLayout    CheckoutStep = "layout"
	StepSelection CheckoutStep = "selection"
	StepDetails   CheckoutStep = "details"
	StepPayment   CheckoutStep = "payment"
	StepSuccess   CheckoutStep = "success"
)

// CustomerDetails are the buyer's contact fields
type CustomerDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Complete reports whether all three fields are filled in
func (d CustomerDetails) Complete() bool {
	return strings.TrimSpace(d.Name) != "" &&
		strings.TrimSpace(d.Email) != "" &&
		strings.TrimSpace(d.Phone) != ""
}

// Checkout is one session's ticket purchase draft. Fields are exported so
// the draft survives gob encoding in the session store.
type Checkout struct {
	DraftID        string
	EventID        string
	EventTitle     string
	VenueLayoutURL string
	Pricing        PricingSchedule
	Step           CheckoutStep
	Selection      Selection
	Customer       CustomerDetails
	PaymentRef     string
	Order          *TicketOrder
}

// NewCheckout opens a checkout for an event
func NewCheckout(e *Event) *Checkout {
	c := &Checkout{}
	c.Reopen(e)
	return c
}

// Reopen discards all transient state and starts over for e
func (c *Checkout) Reopen(e *Event) {
	*c = Checkout{
		DraftID:        uuid.NewString(),
		EventID:        e.ID,
		EventTitle:     e.Title,
		VenueLayoutURL: strings.TrimSpace(e.VenueLayoutURL),
		Pricing:        NewPricingSchedule(e),
		Step:           StepSelection,
	}
	if e.HasLayout() {
		c.Step = StepLayout
	}
	c.Selection = c.Pricing.NewSelection()
}

// HasLayout reports whether the flow includes the layout step
func (c *Checkout) HasLayout() bool {
	return strings.TrimSpace(c.VenueLayoutURL) != ""
}

// NextStep computes the forward transition without applying it
func (c *Checkout) NextStep() (CheckoutStep, error) {
	switch c.Step {
	case StepLayout:
		return StepSelection, nil
	case StepSelection:
		if c.Selection == nil || c.Selection.TotalCount() <= 0 {
			return c.Step, NewValidationError("selection", "no items selected")
		}
		return StepDetails, nil
	case StepDetails:
		if !c.Customer.Complete() {
			return c.Step, NewValidationError("customer", "incomplete details")
		}
		return StepPayment, nil
	default:
		// payment only leaves through submission; success is terminal
		return c.Step, ErrInvalidTransition
	}
}

// PrevStep computes the backward transition without applying it
func (c *Checkout) PrevStep() (CheckoutStep, error) {
	switch c.Step {
	case StepPayment:
		return StepDetails, nil
	case StepDetails:
		return StepSelection, nil
	case StepSelection:
		if c.HasLayout() {
			return StepLayout, nil
		}
	}
	return c.Step, ErrInvalidTransition
}

// Next moves one step forward. A rejected transition leaves the checkout
// unchanged.
func (c *Checkout) Next() error {
	next, err := c.NextStep()
	if err != nil {
		return err
	}
	c.Step = next
	return nil
}

// Back moves one step backward, keeping everything entered so far
func (c *Checkout) Back() error {
	prev, err := c.PrevStep()
	if err != nil {
		return err
	}
	c.Step = prev
	return nil
}

// SetQuantity changes the cart; only allowed while selecting
func (c *Checkout) SetQuantity(categoryID string, delta int) error {
	if c.Step != StepSelection {
		return ErrStepLocked
	}
	c.Selection.SetQuantity(categoryID, delta)
	return nil
}

// SetCustomer stores customer details; only allowed on the details step.
// Partial details are kept; completeness is checked when moving on.
func (c *Checkout) SetCustomer(d CustomerDetails) error {
	if c.Step != StepDetails {
		return ErrStepLocked
	}
	c.Customer = CustomerDetails{
		Name:  strings.TrimSpace(d.Name),
		Email: strings.TrimSpace(d.Email),
		Phone: strings.TrimSpace(d.Phone),
	}
	return nil
}

// SetPaymentRef records the user-supplied payment reference
func (c *Checkout) SetPaymentRef(ref string) error {
	if c.Step != StepPayment {
		return ErrStepLocked
	}
	c.PaymentRef = strings.TrimSpace(ref)
	return nil
}

// ReadyToSubmit checks the local guards of the payment to success transition
func (c *Checkout) ReadyToSubmit() error {
	if c.Step != StepPayment {
		return ErrInvalidTransition
	}
	if strings.TrimSpace(c.PaymentRef) == "" {
		return NewValidationError("payment_ref", "missing payment reference")
	}
	return nil
}

// Complete records the persisted order and enters the terminal step
func (c *Checkout) Complete(order *TicketOrder) error {
	if err := c.ReadyToSubmit(); err != nil {
		return err
	}
	c.Order = order
	c.Step = StepSuccess
	return nil
}

// Totals are recomputed from the current selection on every call
func (c *Checkout) Totals() Totals {
	if c.Selection == nil {
		return CalculateTotals(nil, TaxConfig{})
	}
	return SelectionTotals(c.Selection)
}
