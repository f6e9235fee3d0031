package services

import (
	"context"
	"io"

	"event-console/internal/models"
)

// EventSource resolves the event a checkout is opened for
type EventSource interface {
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
}

// OrderStore persists placed ticket orders
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.TicketOrder) (string, error)
}

// InvoiceStore persists invoices
type InvoiceStore interface {
	CreateInvoice(ctx context.Context, inv *models.Invoice) (string, error)
	UpdateInvoice(ctx context.Context, id string, inv *models.Invoice) error
	GetInvoiceByID(ctx context.Context, id string) (*models.Invoice, error)
}

// Uploader stores a file under a path hint and returns its public URL.
// Remove deletes a file it stored earlier; unknown URLs are ignored.
type Uploader interface {
	Upload(ctx context.Context, reader io.Reader, filename, pathHint string) (string, error)
	Remove(ctx context.Context, url string) error
}

// InvoiceRenderer turns an invoice snapshot into a PDF
type InvoiceRenderer interface {
	RenderInvoice(ctx context.Context, doc *InvoiceDocument) ([]byte, error)
}

// ReceiptRenderer turns a placed order into a PDF receipt
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, order *models.TicketOrder) ([]byte, error)
}

// QRRenderer encodes content as a square PNG of the given size in pixels
type QRRenderer interface {
	Encode(content string, size int) ([]byte, error)
}

// ImageFetcher downloads an already uploaded image
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
