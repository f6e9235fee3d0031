package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-console/internal/models"
)

func init() {
	models.RegisterGobTypes()
}

func concertEvent() *models.Event {
	return &models.Event{
		ID:    "monsoon-nights",
		Title: "Monsoon Nights",
		Categories: []models.TicketCategory{
			{ID: "vip", Name: "VIP", Price: decimal.NewFromInt(500)},
			{ID: "general", Name: "General", Price: decimal.NewFromInt(200)},
		},
	}
}

// roundTrip replays the cookies of rr on a fresh request
func roundTrip(rr *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestDraftStore_Checkout(t *testing.T) {
	drafts := NewDraftStore(NewFilesystemStore(t.TempDir(), "test-secret", 3600, false))

	_, err := drafts.Checkout(httptest.NewRequest("GET", "/", nil))
	assert.ErrorIs(t, err, models.ErrDraftNotFound)

	c := models.NewCheckout(concertEvent())
	require.NoError(t, c.SetQuantity("vip", 2))

	rr := httptest.NewRecorder()
	require.NoError(t, drafts.SaveCheckout(rr, httptest.NewRequest("POST", "/", nil), c))

	loaded, err := drafts.Checkout(roundTrip(rr))
	require.NoError(t, err)
	assert.Equal(t, c.DraftID, loaded.DraftID)
	assert.Equal(t, models.StepSelection, loaded.Step)
	assert.Equal(t, 2, loaded.Selection.TotalCount())
	assert.True(t, loaded.Totals().Total.Equal(decimal.NewFromInt(1000)))
}

func TestDraftStore_Invoice(t *testing.T) {
	drafts := NewDraftStore(NewFilesystemStore(t.TempDir(), "test-secret", 3600, false))

	inv := models.NewInvoice(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	col := inv.AddColumn("HSN")
	require.NoError(t, inv.SetCustomValue(inv.LineItems[0].ID, col.ID, "9983"))

	rr := httptest.NewRecorder()
	require.NoError(t, drafts.SaveInvoice(rr, httptest.NewRequest("POST", "/", nil), inv))

	loaded, err := drafts.Invoice(roundTrip(rr))
	require.NoError(t, err)
	assert.Equal(t, inv.DraftID, loaded.DraftID)
	assert.Equal(t, "9983", loaded.LineItems[0].CustomValue(col.ID))

	_, err = drafts.Checkout(roundTrip(rr))
	assert.ErrorIs(t, err, models.ErrDraftNotFound, "invoice and checkout drafts are independent")
}

func TestNewCheckoutView(t *testing.T) {
	c := models.NewCheckout(concertEvent())
	require.NoError(t, c.SetQuantity("general", 3))

	view := newCheckoutView(c, false)

	assert.Equal(t, models.StepSelection, view.Step)
	assert.Equal(t, 3, view.TicketCount)
	require.Len(t, view.Categories, 2)
	assert.Equal(t, 0, view.Categories[0].Quantity)
	assert.Equal(t, 3, view.Categories[1].Quantity)
	require.Len(t, view.Lines, 1)
	assert.True(t, view.Totals.Subtotal.Equal(decimal.NewFromInt(600)))

	empty := newCheckoutView(models.NewCheckout(concertEvent()), true)
	assert.NotNil(t, empty.Lines)
	assert.True(t, empty.Submitting)
}
