package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestInvoiceHeaderRequest_Apply(t *testing.T) {
	inv := newTestInvoice()

	req := &InvoiceHeaderRequest{
		Sender:        &Party{Name: "Star Events", Phone: "99999"},
		InvoiceNumber: strPtr("INV-777"),
		IssueDate:     strPtr("2026-02-01"),
		DueDate:       strPtr("2026-02-15"),
		AdvancePaid:   strPtr("250.50"),
		GSTEnabled:    boolPtr(true),
		GSTPercentage: strPtr("18"),
		SignatoryMode: strPtr("text"),
		SignatoryName: strPtr("R. Mehta"),
	}

	require.NoError(t, req.Apply(inv))

	assert.Equal(t, "Star Events", inv.Sender.Name)
	assert.Equal(t, "INV-777", inv.InvoiceNumber)
	assert.Equal(t, "2026-02-01", inv.IssueDate.Format(DateLayout))
	require.NotNil(t, inv.DueDate)
	assert.Equal(t, "2026-02-15", inv.DueDate.Format(DateLayout))
	assertDecimal(t, "250.5", inv.AdvancePaid)
	assert.True(t, inv.GSTEnabled)
	assertDecimal(t, "18", inv.GSTPercentage)
	assert.Equal(t, SignatoryText, inv.Signatory.Mode)
	assert.Equal(t, "Lakeside Weddings", inv.Client.Name)

	require.NoError(t, (&InvoiceHeaderRequest{DueDate: strPtr("")}).Apply(inv))
	assert.Nil(t, inv.DueDate)
}

func TestInvoiceHeaderRequest_ApplyRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		req  InvoiceHeaderRequest
	}{
		{name: "bad issue date", req: InvoiceHeaderRequest{IssueDate: strPtr("01/02/2026")}},
		{name: "bad due date", req: InvoiceHeaderRequest{DueDate: strPtr("soon")}},
		{name: "non numeric advance", req: InvoiceHeaderRequest{AdvancePaid: strPtr("lots")}},
		{name: "negative advance", req: InvoiceHeaderRequest{AdvancePaid: strPtr("-1")}},
		{name: "gst above 100", req: InvoiceHeaderRequest{GSTPercentage: strPtr("101")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := newTestInvoice()
			before := inv.Clone()

			err := tt.req.Apply(inv)

			assert.True(t, IsValidationError(err))
			assert.Equal(t, before, inv)
		})
	}
}
