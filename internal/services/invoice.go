package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"event-console/internal/config"
	"event-console/internal/models"
)

// InvoiceService saves, reopens and exports invoice drafts
type InvoiceService struct {
	store    InvoiceStore
	renderer InvoiceRenderer
	qr       QRRenderer
	uploader Uploader
	fetcher  ImageFetcher
	defaults config.InvoiceConfig
	logger   *logrus.Logger
	now      func() time.Time
	inFlight sync.Map
}

// InvoiceServiceDeps groups the collaborators of InvoiceService
type InvoiceServiceDeps struct {
	Store    InvoiceStore
	Renderer InvoiceRenderer
	QR       QRRenderer
	Uploader Uploader
	Fetcher  ImageFetcher
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(deps InvoiceServiceDeps, defaults config.InvoiceConfig, logger *logrus.Logger) *InvoiceService {
	return &InvoiceService{
		store:    deps.Store,
		renderer: deps.Renderer,
		qr:       deps.QR,
		uploader: deps.Uploader,
		fetcher:  deps.Fetcher,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

// NewDraft starts an invoice dated today with the configured sender,
// GST rate and payment details
func (s *InvoiceService) NewDraft() *models.Invoice {
	now := s.now()
	inv := models.NewInvoice(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
	inv.Sender = models.Party{
		Name:    s.defaults.SenderName,
		Company: s.defaults.SenderCompany,
		Address: s.defaults.SenderAddress,
		Email:   s.defaults.SenderEmail,
		Phone:   s.defaults.SenderPhone,
		GSTIN:   s.defaults.SenderGSTIN,
	}
	if pct, err := decimal.NewFromString(s.defaults.GSTPercentage); err == nil {
		inv.GSTPercentage = pct
	}
	inv.PaymentDetails = s.defaults.PaymentDetails
	inv.UPIID = s.defaults.UPIID
	return inv
}

// InProgress reports whether a save for the draft is running
func (s *InvoiceService) InProgress(draftID string) bool {
	_, busy := s.inFlight.Load(draftID)
	return busy
}

// Save creates the invoice on first save and updates it afterwards. On
// failure the draft keeps its previous ID and contents.
func (s *InvoiceService) Save(ctx context.Context, inv *models.Invoice) error {
	if _, busy := s.inFlight.LoadOrStore(inv.DraftID, struct{}{}); busy {
		return models.ErrInProgress
	}
	defer s.inFlight.Delete(inv.DraftID)

	if err := inv.Validate(); err != nil {
		return err
	}

	snapshot := inv.Clone()
	log := s.logger.WithContext(ctx).WithField("invoice_number", inv.InvoiceNumber)

	if inv.ID == "" {
		id, err := s.store.CreateInvoice(ctx, snapshot)
		if err != nil {
			if errors.Is(err, models.ErrDuplicateEntry) {
				return duplicateNumber(inv.InvoiceNumber)
			}
			log.WithError(err).Error("failed to create invoice")
			return models.NewIOError("save invoice", err)
		}
		inv.ID = id
	} else if err := s.store.UpdateInvoice(ctx, inv.ID, snapshot); err != nil {
		if errors.Is(err, models.ErrDuplicateEntry) {
			return duplicateNumber(inv.InvoiceNumber)
		}
		log.WithError(err).WithField("invoice_id", inv.ID).Error("failed to update invoice")
		return models.NewIOError("save invoice", err)
	}

	saved := s.now()
	inv.SavedAt = &saved
	log.WithField("invoice_id", inv.ID).Info("invoice saved")
	return nil
}

func duplicateNumber(number string) error {
	return models.NewValidationError("invoice_number", fmt.Sprintf("invoice number %s is already in use", number))
}

// Open loads a saved invoice as a new draft for editing
func (s *InvoiceService) Open(ctx context.Context, id string) (*models.Invoice, error) {
	inv, err := s.store.GetInvoiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrInvoiceNotFound) {
			return nil, err
		}
		return nil, models.NewIOError("load invoice", err)
	}
	inv.DraftID = uuid.NewString()
	return inv, nil
}

// ExportPDF renders the draft as it is now. A missing QR code or signature
// image is logged and left out; only a render failure is an error.
func (s *InvoiceService) ExportPDF(ctx context.Context, inv *models.Invoice) ([]byte, error) {
	snapshot := inv.Clone()
	doc := &InvoiceDocument{
		Invoice: snapshot,
		Totals:  snapshot.Totals(),
	}
	log := s.logger.WithContext(ctx).WithField("draft_id", inv.DraftID)

	if uri, ok := snapshot.UPIPaymentURI(); ok {
		png, err := s.qr.Encode(uri, s.defaults.QRSize)
		if err != nil {
			log.WithError(err).Warn("UPI QR code left out of invoice PDF")
		} else {
			doc.UPIQR = png
		}
	}

	if snapshot.Signatory.Mode == models.SignatoryImage && snapshot.Signatory.ImageURL != "" && s.fetcher != nil {
		image, err := s.fetcher.Fetch(ctx, snapshot.Signatory.ImageURL)
		if err != nil {
			log.WithError(err).Warn("signature image left out of invoice PDF")
		} else {
			doc.Signature = image
		}
	}

	pdf, err := s.renderer.RenderInvoice(ctx, doc)
	if err != nil {
		log.WithError(err).Warn("invoice export failed")
		return nil, models.NewExportError("invoice export failed", err)
	}
	return pdf, nil
}

// UPIQRCode renders the UPI payment link for the current balance due
func (s *InvoiceService) UPIQRCode(inv *models.Invoice) ([]byte, error) {
	uri, ok := inv.UPIPaymentURI()
	if !ok {
		if inv.UPIEnabled && !inv.Totals().BalanceDue.IsPositive() {
			return nil, models.NewValidationError("advance_paid", "nothing left to pay on this invoice")
		}
		return nil, models.NewValidationError("upi_id", "UPI payment is not enabled for this invoice")
	}

	png, err := s.qr.Encode(uri, s.defaults.QRSize)
	if err != nil {
		return nil, models.NewExportError("QR code generation failed", err)
	}
	return png, nil
}

// UploadSignature stores a signature image and switches the signatory to
// image mode. The draft is unchanged if the upload fails.
func (s *InvoiceService) UploadSignature(ctx context.Context, inv *models.Invoice, reader io.Reader, filename string) error {
	url, err := s.uploader.Upload(ctx, reader, filename, HintSignatures)
	if err != nil {
		var validationErr *models.ValidationError
		var ioErr *models.IOError
		if errors.As(err, &validationErr) || errors.As(err, &ioErr) {
			return err
		}
		return models.NewIOError("upload signature", err)
	}

	previous := inv.Signatory.ImageURL
	inv.Signatory.Mode = models.SignatoryImage
	inv.Signatory.ImageURL = url

	// a saved invoice may still reference the old image
	if previous != "" && previous != url && inv.ID == "" {
		if err := s.uploader.Remove(ctx, previous); err != nil {
			s.logger.WithContext(ctx).WithError(err).WithField("url", previous).Warn("replaced signature not removed")
		}
	}
	return nil
}
