package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of invoice dates
const DateLayout = "2006-01-02"

// QuantityChangeRequest adjusts one category of the cart
type QuantityChangeRequest struct {
	CategoryID string `json:"category_id" validate:"max=64"`
	Delta      int    `json:"delta" validate:"min=-100,max=100"`
}

// CustomerDetailsRequest carries the buyer's contact fields. Fields may be
// partial; completeness is enforced when leaving the details step.
type CustomerDetailsRequest struct {
	Name  string `json:"name" validate:"max=120"`
	Email string `json:"email" validate:"omitempty,max=254,email"`
	Phone string `json:"phone" validate:"max=32"`
}

// PaymentRefRequest carries the user-supplied payment reference
type PaymentRefRequest struct {
	PaymentRef string `json:"payment_ref" validate:"max=128"`
}

// ColumnCreateRequest adds a custom invoice column
type ColumnCreateRequest struct {
	Label string `json:"label" validate:"max=64"`
}

// LineItemFieldRequest edits a fixed column of a line item
type LineItemFieldRequest struct {
	Field string `json:"field" validate:"required,oneof=description quantity price"`
	Value string `json:"value" validate:"max=1000"`
}

// CustomValueRequest sets a custom column value on a line item
type CustomValueRequest struct {
	Value string `json:"value" validate:"max=500"`
}

// InvoiceHeaderRequest is a partial update of the non-tabular invoice fields.
// Nil fields are left unchanged.
type InvoiceHeaderRequest struct {
	Sender         *Party  `json:"sender"`
	Client         *Party  `json:"client"`
	InvoiceNumber  *string `json:"invoice_number" validate:"omitempty,max=64"`
	IssueDate      *string `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate        *string `json:"due_date" validate:"omitempty,max=10"`
	AdvancePaid    *string `json:"advance_paid" validate:"omitempty,max=20"`
	GSTEnabled     *bool   `json:"gst_enabled"`
	GSTPercentage  *string `json:"gst_percentage" validate:"omitempty,max=8"`
	UPIEnabled     *bool   `json:"upi_enabled"`
	UPIID          *string `json:"upi_id" validate:"omitempty,max=100"`
	SignatoryMode  *string `json:"signatory_mode" validate:"omitempty,oneof=none text image"`
	SignatoryName  *string `json:"signatory_name" validate:"omitempty,max=120"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
	PaymentDetails *string `json:"payment_details" validate:"omitempty,max=2000"`
}

// Apply copies the set fields onto inv. On error inv is left unchanged.
func (req *InvoiceHeaderRequest) Apply(inv *Invoice) error {
	next := inv.Clone()

	if req.Sender != nil {
		next.Sender = *req.Sender
	}
	if req.Client != nil {
		next.Client = *req.Client
	}
	if req.InvoiceNumber != nil {
		next.InvoiceNumber = *req.InvoiceNumber
	}
	if req.IssueDate != nil {
		d, err := time.Parse(DateLayout, *req.IssueDate)
		if err != nil {
			return NewValidationError("issue_date", "issue date must be YYYY-MM-DD")
		}
		next.IssueDate = d
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			next.DueDate = nil
		} else {
			d, err := time.Parse(DateLayout, *req.DueDate)
			if err != nil {
				return NewValidationError("due_date", "due date must be YYYY-MM-DD")
			}
			next.DueDate = &d
		}
	}
	if req.AdvancePaid != nil {
		amount, err := decimal.NewFromString(*req.AdvancePaid)
		if err != nil {
			return NewValidationError("advance_paid", "advance paid must be a number")
		}
		if amount.IsNegative() {
			return NewValidationError("advance_paid", "advance paid cannot be negative")
		}
		next.AdvancePaid = amount
	}
	if req.GSTEnabled != nil {
		next.GSTEnabled = *req.GSTEnabled
	}
	if req.GSTPercentage != nil {
		pct, err := decimal.NewFromString(*req.GSTPercentage)
		if err != nil {
			return NewValidationError("gst_percentage", "GST percentage must be a number")
		}
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return NewValidationError("gst_percentage", "GST percentage must be between 0 and 100")
		}
		next.GSTPercentage = pct
	}
	if req.UPIEnabled != nil {
		next.UPIEnabled = *req.UPIEnabled
	}
	if req.UPIID != nil {
		next.UPIID = *req.UPIID
	}
	if req.SignatoryMode != nil {
		next.Signatory.Mode = SignatoryMode(*req.SignatoryMode)
	}
	if req.SignatoryName != nil {
		next.Signatory.Name = *req.SignatoryName
	}
	if req.Notes != nil {
		next.Notes = *req.Notes
	}
	if req.PaymentDetails != nil {
		next.PaymentDetails = *req.PaymentDetails
	}

	*inv = *next
	return nil
}
