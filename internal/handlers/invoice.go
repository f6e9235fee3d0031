package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"event-console/internal/models"
	"event-console/internal/services"
)

// InvoiceHandler edits, saves and exports the session's invoice draft
type InvoiceHandler struct {
	invoiceService *services.InvoiceService
	drafts         *DraftStore
	decoder        *requestDecoder
	maxUpload      int64
	logger         *logrus.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *services.InvoiceService, drafts *DraftStore, maxUpload int64, logger *logrus.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		drafts:         drafts,
		decoder:        newRequestDecoder(),
		maxUpload:      maxUpload,
		logger:         logger,
	}
}

// NewDraft replaces the session's draft with a blank invoice
func (h *InvoiceHandler) NewDraft(w http.ResponseWriter, r *http.Request) {
	inv := h.invoiceService.NewDraft()
	if err := h.drafts.SaveInvoice(w, r, inv); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, "Invoice draft created", h.view(inv))
}

// Edit loads a saved invoice into the session for editing
func (h *InvoiceHandler) Edit(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invoiceService.Open(r.Context(), chi.URLParam(r, "invoiceID"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.drafts.SaveInvoice(w, r, inv); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, "Invoice opened", h.view(inv))
}

// Get returns the draft with live totals
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.drafts.Invoice(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, "Invoice draft retrieved", h.view(inv))
}

// UpdateHeader applies a partial update of the non-tabular fields
func (h *InvoiceHandler) UpdateHeader(w http.ResponseWriter, r *http.Request) {
	var req models.InvoiceHeaderRequest
	if err := h.decoder.decode(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.mutate(w, r, http.StatusOK, "Invoice updated", func(inv *models.Invoice) error {
		return req.Apply(inv)
	})
}

// AddColumn appends a custom column
func (h *InvoiceHandler) AddColumn(w http.ResponseWriter, r *http.Request) {
	var req models.ColumnCreateRequest
	if err := h.decoder.decode(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.mutate(w, r, http.StatusCreated, "Column added", func(inv *models.Invoice) error {
		if inv.AddColumn(req.Label) == nil {
			return models.NewValidationError("label", "column label is required")
		}
		return nil
	})
}

// RemoveColumn deletes a custom column and its values on every line item
func (h *InvoiceHandler) RemoveColumn(w http.ResponseWriter, r *http.Request) {
	columnID := chi.URLParam(r, "columnID")
	h.mutate(w, r, http.StatusOK, "Column removed", func(inv *models.Invoice) error {
		return inv.RemoveColumn(columnID)
	})
}

// AddLineItem appends an empty line item
func (h *InvoiceHandler) AddLineItem(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, http.StatusCreated, "Line item added", func(inv *models.Invoice) error {
		inv.AddLineItem()
		return nil
	})
}

// RemoveLineItem deletes a line item
func (h *InvoiceHandler) RemoveLineItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	h.mutate(w, r, http.StatusOK, "Line item removed", func(inv *models.Invoice) error {
		return inv.RemoveLineItem(itemID)
	})
}

// UpdateLineItem edits the description, quantity or price of a line item
func (h *InvoiceHandler) UpdateLineItem(w http.ResponseWriter, r *http.Request) {
	var req models.LineItemFieldRequest
	if err := h.decoder.decode(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	itemID := chi.URLParam(r, "itemID")
	h.mutate(w, r, http.StatusOK, "Line item updated", func(inv *models.Invoice) error {
		return inv.SetLineItemField(itemID, models.LineItemField(req.Field), req.Value)
	})
}

// SetCustomValue sets one custom column cell
func (h *InvoiceHandler) SetCustomValue(w http.ResponseWriter, r *http.Request) {
	var req models.CustomValueRequest
	if err := h.decoder.decode(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	itemID := chi.URLParam(r, "itemID")
	columnID := chi.URLParam(r, "columnID")
	h.mutate(w, r, http.StatusOK, "Line item updated", func(inv *models.Invoice) error {
		return inv.SetCustomValue(itemID, columnID, req.Value)
	})
}

// UploadSignature stores a signature image and switches the signatory to
// image mode
func (h *InvoiceHandler) UploadSignature(w http.ResponseWriter, r *http.Request) {
	file, filename, err := readUpload(w, r, h.maxUpload)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	defer file.Close()

	h.mutate(w, r, http.StatusOK, "Signature uploaded", func(inv *models.Invoice) error {
		return h.invoiceService.UploadSignature(r.Context(), inv, file, filename)
	})
}

// Save persists the draft, creating it on first save
func (h *InvoiceHandler) Save(w http.ResponseWriter, r *http.Request) {
	inv, err := h.drafts.Invoice(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.invoiceService.Save(r.Context(), inv); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.drafts.SaveInvoice(w, r, inv); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, "Invoice saved", h.view(inv))
}

// ExportPDF downloads the draft as a PDF
func (h *InvoiceHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	inv, err := h.drafts.Invoice(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	pdf, err := h.invoiceService.ExportPDF(r.Context(), inv)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeFile(w, "application/pdf", invoiceFilename(inv), pdf)
}

// UPIQRCode returns the UPI payment QR code for the current balance due
func (h *InvoiceHandler) UPIQRCode(w http.ResponseWriter, r *http.Request) {
	inv, err := h.drafts.Invoice(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	png, err := h.invoiceService.UPIQRCode(inv)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *InvoiceHandler) mutate(w http.ResponseWriter, r *http.Request, status int, message string, fn func(*models.Invoice) error) {
	inv, err := h.drafts.Invoice(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if h.invoiceService.InProgress(inv.DraftID) {
		respondError(w, r, h.logger, models.ErrInProgress)
		return
	}

	if err := fn(inv); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.drafts.SaveInvoice(w, r, inv); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, r, status, message, h.view(inv))
}

func (h *InvoiceHandler) view(inv *models.Invoice) InvoiceView {
	return newInvoiceView(inv, h.invoiceService.InProgress(inv.DraftID))
}

func invoiceFilename(inv *models.Invoice) string {
	if inv.InvoiceNumber == "" {
		return "invoice-draft.pdf"
	}
	return fmt.Sprintf("invoice-%s.pdf", sanitizeFilename(inv.InvoiceNumber))
}

func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
