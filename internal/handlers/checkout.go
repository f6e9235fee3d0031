package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"event-console/internal/models"
	"event-console/internal/services"
)

// CheckoutHandler drives the guided ticket purchase flow
type CheckoutHandler struct {
	checkoutService *services.CheckoutService
	drafts          *DraftStore
	decoder         *requestDecoder
	logger          *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *services.CheckoutService, drafts *DraftStore, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		drafts:          drafts,
		decoder:         newRequestDecoder(),
		logger:          logger,
	}
}

// GetEvent shows an event with its display price
func (h *CheckoutHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.checkoutService.Event(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, "Event retrieved", newEventView(event))
}

// Open starts a new checkout for an event, discarding any previous one
func (h *CheckoutHandler) Open(w http.ResponseWriter, r *http.Request) {
	c, err := h.checkoutService.Open(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.drafts.SaveCheckout(w, r, c); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, "Checkout opened", h.view(c))
}

// Get returns the current checkout
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.drafts.Checkout(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, "Checkout retrieved", h.view(c))
}

// ChangeQuantity adds delta tickets of a category to the cart
func (h *CheckoutHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	var req models.QuantityChangeRequest
	if err := h.decoder.decode(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.mutate(w, r, "Quantity updated", func(c *models.Checkout) error {
		return c.SetQuantity(req.CategoryID, req.Delta)
	})
}

// Next advances one step
func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Moved to next step", func(c *models.Checkout) error {
		return c.Next()
	})
}

// Back returns one step, keeping entered data
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "Moved to previous step", func(c *models.Checkout) error {
		return c.Back()
	})
}

// UpdateDetails stores the buyer's contact details
func (h *CheckoutHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var req models.CustomerDetailsRequest
	if err := h.decoder.decode(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.mutate(w, r, "Details updated", func(c *models.Checkout) error {
		return c.SetCustomer(models.CustomerDetails{Name: req.Name, Email: req.Email, Phone: req.Phone})
	})
}

// UpdatePaymentRef stores the payment reference entered on the payment step
func (h *CheckoutHandler) UpdatePaymentRef(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentRefRequest
	if err := h.decoder.decode(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.mutate(w, r, "Payment reference updated", func(c *models.Checkout) error {
		return c.SetPaymentRef(req.PaymentRef)
	})
}

// Submit places the order. On failure the checkout stays on the payment
// step with everything the buyer entered.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	c, err := h.drafts.Checkout(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if _, err := h.checkoutService.Submit(r.Context(), c); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.drafts.SaveCheckout(w, r, c); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, "Order placed", h.view(c))
}

// Receipt downloads the PDF receipt of a placed order
func (h *CheckoutHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	c, err := h.drafts.Checkout(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	pdf, err := h.checkoutService.Receipt(r.Context(), c)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeFile(w, "application/pdf", fmt.Sprintf("receipt-%s.pdf", c.Order.OrderNumber), pdf)
}

// mutate loads the checkout, applies fn and persists the result. A rejected
// change is not saved.
func (h *CheckoutHandler) mutate(w http.ResponseWriter, r *http.Request, message string, fn func(*models.Checkout) error) {
	c, err := h.drafts.Checkout(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if h.checkoutService.InProgress(c.DraftID) {
		respondError(w, r, h.logger, models.ErrInProgress)
		return
	}

	if err := fn(c); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.drafts.SaveCheckout(w, r, c); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, message, h.view(c))
}

func (h *CheckoutHandler) view(c *models.Checkout) CheckoutView {
	return newCheckoutView(c, h.checkoutService.InProgress(c.DraftID))
}

func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
