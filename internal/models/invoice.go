package models

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SignatoryMode controls how the signature block is rendered
type SignatoryMode string

const (
	SignatoryNone  SignatoryMode = "none"
	SignatoryText  SignatoryMode = "text"
	SignatoryImage SignatoryMode = "image"
)

// LineItemField names an editable fixed column of a line item
type LineItemField string

const (
	FieldDescription LineItemField = "description"
	FieldQuantity    LineItemField = "quantity"
	FieldPrice       LineItemField = "price"
)

// Party holds sender or client contact fields. Empty fields are not printed.
type Party struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	GSTIN   string `json:"gstin,omitempty"`
}

// Signatory is the signature block of an invoice
type Signatory struct {
	Mode     SignatoryMode `json:"mode"`
	Name     string        `json:"name,omitempty"`
	ImageURL string        `json:"image_url,omitempty"`
}

// CustomColumn is a user-defined column shared by every line item
type CustomColumn struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// InvoiceLineItem is one row of an invoice. CustomValues is keyed by
// CustomColumn.ID; a missing key reads as empty.
type InvoiceLineItem struct {
	ID           string            `json:"id"`
	Description  string            `json:"description"`
	Quantity     int               `json:"quantity"`
	UnitPrice    decimal.Decimal   `json:"unit_price"`
	CustomValues map[string]string `json:"custom_values"`
}

// Amount is quantity times unit price
func (li InvoiceLineItem) Amount() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Invoice is an invoice draft or saved invoice. Columns and LineItems form
// one schema: every key in a line item's CustomValues names a column in
// Columns.
type Invoice struct {
	ID             string            `json:"id,omitempty" db:"id"`
	DraftID        string            `json:"draft_id" db:"-"`
	Sender         Party             `json:"sender"`
	Client         Party             `json:"client"`
	InvoiceNumber  string            `json:"invoice_number" db:"invoice_number"`
	IssueDate      time.Time         `json:"issue_date" db:"issue_date"`
	DueDate        *time.Time        `json:"due_date,omitempty" db:"due_date"`
	Columns        []CustomColumn    `json:"columns"`
	LineItems      []InvoiceLineItem `json:"line_items"`
	AdvancePaid    decimal.Decimal   `json:"advance_paid" db:"advance_paid"`
	GSTEnabled     bool              `json:"gst_enabled" db:"gst_enabled"`
	GSTPercentage  decimal.Decimal   `json:"gst_percentage" db:"gst_percentage"`
	UPIEnabled     bool              `json:"upi_enabled" db:"upi_enabled"`
	UPIID          string            `json:"upi_id,omitempty" db:"upi_id"`
	Signatory      Signatory         `json:"signatory"`
	Notes          string            `json:"notes,omitempty" db:"notes"`
	PaymentDetails string            `json:"payment_details,omitempty" db:"payment_details"`
	SavedAt        *time.Time        `json:"saved_at,omitempty" db:"updated_at"`
}

// NewInvoice creates a draft with one empty line item
func NewInvoice(issueDate time.Time) *Invoice {
	inv := &Invoice{
		DraftID:       uuid.NewString(),
		IssueDate:     issueDate,
		Columns:       []CustomColumn{},
		LineItems:     []InvoiceLineItem{},
		AdvancePaid:   decimal.Zero,
		GSTPercentage: decimal.Zero,
		Signatory:     Signatory{Mode: SignatoryNone},
	}
	inv.AddLineItem()
	return inv
}

// AddColumn appends a column with a fresh id. Blank labels are ignored and
// yield nil.
func (inv *Invoice) AddColumn(label string) *CustomColumn {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	inv.Columns = append(inv.Columns, CustomColumn{ID: uuid.NewString(), Label: label})
	return &inv.Columns[len(inv.Columns)-1]
}

// RemoveColumn drops a column and its value from every line item
func (inv *Invoice) RemoveColumn(columnID string) error {
	idx := inv.columnIndex(columnID)
	if idx < 0 {
		return ErrColumnNotFound
	}
	inv.Columns = append(inv.Columns[:idx], inv.Columns[idx+1:]...)
	for i := range inv.LineItems {
		delete(inv.LineItems[i].CustomValues, columnID)
	}
	return nil
}

// AddLineItem appends an empty row with quantity 1 and price 0
func (inv *Invoice) AddLineItem() *InvoiceLineItem {
	inv.LineItems = append(inv.LineItems, InvoiceLineItem{
		ID:           uuid.NewString(),
		Quantity:     1,
		UnitPrice:    decimal.Zero,
		CustomValues: make(map[string]string),
	})
	return &inv.LineItems[len(inv.LineItems)-1]
}

// RemoveLineItem deletes a row. The last row may be removed too.
func (inv *Invoice) RemoveLineItem(itemID string) error {
	idx := inv.itemIndex(itemID)
	if idx < 0 {
		return ErrLineItemNotFound
	}
	inv.LineItems = append(inv.LineItems[:idx], inv.LineItems[idx+1:]...)
	return nil
}

// SetLineItemField edits a fixed column. Quantity and price are parsed as
// numbers; unparseable or negative input becomes 0.
func (inv *Invoice) SetLineItemField(itemID string, field LineItemField, value string) error {
	idx := inv.itemIndex(itemID)
	if idx < 0 {
		return ErrLineItemNotFound
	}
	item := &inv.LineItems[idx]

	switch field {
	case FieldDescription:
		item.Description = value
	case FieldQuantity:
		item.Quantity = parseQuantity(value)
	case FieldPrice:
		item.UnitPrice = parsePrice(value)
	default:
		return NewValidationError("field", "unknown line item field "+string(field))
	}
	return nil
}

// SetCustomValue sets a row's value for a column. The column must exist.
func (inv *Invoice) SetCustomValue(itemID, columnID, value string) error {
	idx := inv.itemIndex(itemID)
	if idx < 0 {
		return ErrLineItemNotFound
	}
	if inv.columnIndex(columnID) < 0 {
		return ErrColumnNotFound
	}

	item := &inv.LineItems[idx]
	if item.CustomValues == nil {
		item.CustomValues = make(map[string]string)
	}
	item.CustomValues[columnID] = value
	return nil
}

// CustomValue reads a row's value for a column, empty when unset
func (li InvoiceLineItem) CustomValue(columnID string) string {
	return li.CustomValues[columnID]
}

// Totals are recomputed from the line items on every call
func (inv *Invoice) Totals() Totals {
	lines := make([]Line, 0, len(inv.LineItems))
	for _, li := range inv.LineItems {
		lines = append(lines, Line{Quantity: li.Quantity, UnitPrice: li.UnitPrice})
	}
	return CalculateTotals(lines, TaxConfig{
		GSTEnabled:    inv.GSTEnabled,
		GSTPercentage: inv.GSTPercentage,
		AdvancePaid:   inv.AdvancePaid,
	})
}

// Validate checks the fields required before an invoice can be saved
func (inv *Invoice) Validate() error {
	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		return NewValidationError("invoice_number", "invoice number is required")
	}
	if strings.TrimSpace(inv.Client.Name) == "" {
		return NewValidationError("client.name", "client name is required")
	}
	if inv.IssueDate.IsZero() {
		return NewValidationError("issue_date", "issue date is required")
	}
	if inv.DueDate != nil && inv.DueDate.Before(inv.IssueDate) {
		return NewValidationError("due_date", "due date cannot be before issue date")
	}
	if inv.UPIEnabled && strings.TrimSpace(inv.UPIID) == "" {
		return NewValidationError("upi_id", "UPI id is required when UPI is enabled")
	}
	for _, li := range inv.LineItems {
		for key := range li.CustomValues {
			if inv.columnIndex(key) < 0 {
				return NewValidationError("line_items", "line item references a removed column")
			}
		}
	}
	return nil
}

// Clone returns a deep copy suitable for handing to persistence
func (inv *Invoice) Clone() *Invoice {
	out := *inv
	if inv.Columns != nil {
		out.Columns = make([]CustomColumn, len(inv.Columns))
		copy(out.Columns, inv.Columns)
	}
	if inv.LineItems != nil {
		out.LineItems = make([]InvoiceLineItem, len(inv.LineItems))
		for i, li := range inv.LineItems {
			if li.CustomValues != nil {
				values := make(map[string]string, len(li.CustomValues))
				for k, v := range li.CustomValues {
					values[k] = v
				}
				li.CustomValues = values
			}
			out.LineItems[i] = li
		}
	}
	if inv.DueDate != nil {
		due := *inv.DueDate
		out.DueDate = &due
	}
	if inv.SavedAt != nil {
		saved := *inv.SavedAt
		out.SavedAt = &saved
	}
	return &out
}

func (inv *Invoice) itemIndex(id string) int {
	for i, li := range inv.LineItems {
		if li.ID == id {
			return i
		}
	}
	return -1
}

func (inv *Invoice) columnIndex(id string) int {
	for i, c := range inv.Columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func parseQuantity(value string) int {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return max(n, 0)
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func parsePrice(value string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
