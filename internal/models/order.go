package models

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

// OrderPending is the only status this service assigns
const OrderPending OrderStatus = "pending"

// OrderItem is one line of a placed order
type OrderItem struct {
	CategoryID string          `json:"category_id,omitempty" db:"category_id"`
	Name       string          `json:"name" db:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity   int             `json:"quantity" db:"quantity"`
}

// TicketOrder is the immutable record handed to persistence on submission.
// Status changes after creation belong to whoever reconciles payments.
type TicketOrder struct {
	ID          string          `json:"id" db:"id"`
	OrderNumber string          `json:"order_number" db:"order_number"`
	EventID     string          `json:"event_id" db:"event_id"`
	EventTitle  string          `json:"event_title" db:"event_title"`
	Customer    CustomerDetails `json:"customer"`
	Items       []OrderItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaymentRef  string          `json:"payment_ref" db:"payment_ref"`
	Status      OrderStatus     `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Order number format: ORD-YYYYMMDD-XXXXXX (e.g., ORD-20240101-123456)
var orderNumberRegex = regexp.MustCompile(`^ORD-\d{8}-\d{6}$`)

// BuildTicketOrder snapshots a checkout that is ready to submit
func BuildTicketOrder(c *Checkout, now time.Time) (*TicketOrder, error) {
	if err := c.ReadyToSubmit(); err != nil {
		return nil, err
	}

	lines := c.Selection.Lines()
	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		if l.CategoryID != "" {
			price, ok := c.Pricing.PriceOf(l.CategoryID)
			if !ok || !price.Equal(l.UnitPrice) {
				return nil, NewValidationError("selection", "ticket category "+l.CategoryID+" is not on sale at this price")
			}
		}
		items = append(items, OrderItem{
			CategoryID: l.CategoryID,
			Name:       l.Name,
			UnitPrice:  l.UnitPrice,
			Quantity:   l.Quantity,
		})
	}

	order := &TicketOrder{
		OrderNumber: GenerateOrderNumber(),
		EventID:     c.EventID,
		EventTitle:  c.EventTitle,
		Customer:    c.Customer,
		Items:       items,
		TotalAmount: c.Totals().Total,
		PaymentRef:  c.PaymentRef,
		Status:      OrderPending,
		CreatedAt:   now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate validates the order data
func (o *TicketOrder) Validate() error {
	if !orderNumberRegex.MatchString(o.OrderNumber) {
		return errors.New("order number format is invalid")
	}

	if o.EventID == "" {
		return errors.New("event is required")
	}

	if len(o.Items) == 0 {
		return NewValidationError("items", "no items selected")
	}

	for _, item := range o.Items {
		if item.Quantity <= 0 {
			return errors.New("order item quantity must be positive")
		}
	}

	if !o.Customer.Complete() {
		return NewValidationError("customer", "incomplete details")
	}

	if o.PaymentRef == "" {
		return NewValidationError("payment_ref", "missing payment reference")
	}

	return nil
}

// TicketCount is the number of tickets across all items
func (o *TicketOrder) TicketCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// GenerateOrderNumber generates a unique order number
func GenerateOrderNumber() string {
	now := time.Now()
	dateStr := now.Format("20060102")

	randomNum, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return fmt.Sprintf("ORD-%s-%06d", dateStr, now.UnixNano()%1000000)
	}

	return fmt.Sprintf("ORD-%s-%06d", dateStr, randomNum.Int64())
}
