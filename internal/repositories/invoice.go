package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"event-console/internal/models"
)

// InvoiceRepository persists invoices. The custom-column schema, line items,
// parties and signatory are stored as JSONB documents.
type InvoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

type invoiceDocuments struct {
	sender, client, columns, lineItems, signatory []byte
}

func encodeInvoice(inv *models.Invoice) (*invoiceDocuments, error) {
	var docs invoiceDocuments
	var err error

	if docs.sender, err = json.Marshal(inv.Sender); err != nil {
		return nil, fmt.Errorf("failed to encode sender: %w", err)
	}
	if docs.client, err = json.Marshal(inv.Client); err != nil {
		return nil, fmt.Errorf("failed to encode client: %w", err)
	}

	columns := inv.Columns
	if columns == nil {
		columns = []models.CustomColumn{}
	}
	if docs.columns, err = json.Marshal(columns); err != nil {
		return nil, fmt.Errorf("failed to encode columns: %w", err)
	}

	items := inv.LineItems
	if items == nil {
		items = []models.InvoiceLineItem{}
	}
	if docs.lineItems, err = json.Marshal(items); err != nil {
		return nil, fmt.Errorf("failed to encode line items: %w", err)
	}

	if docs.signatory, err = json.Marshal(inv.Signatory); err != nil {
		return nil, fmt.Errorf("failed to encode signatory: %w", err)
	}
	return &docs, nil
}

func nullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// CreateInvoice inserts a new invoice and returns its id
func (r *InvoiceRepository) CreateInvoice(ctx context.Context, inv *models.Invoice) (string, error) {
	docs, err := encodeInvoice(inv)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO invoices (invoice_number, sender, client, issue_date, due_date, custom_columns, line_items,
			advance_paid, gst_enabled, gst_percentage, upi_enabled, upi_id, signatory, notes, payment_details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`

	var id string
	err = r.db.QueryRowContext(ctx, query,
		inv.InvoiceNumber,
		docs.sender,
		docs.client,
		inv.IssueDate,
		nullDate(inv.DueDate),
		docs.columns,
		docs.lineItems,
		inv.AdvancePaid,
		inv.GSTEnabled,
		inv.GSTPercentage,
		inv.UPIEnabled,
		inv.UPIID,
		docs.signatory,
		inv.Notes,
		inv.PaymentDetails,
	).Scan(&id)
	if err != nil {
		return "", mapWriteError("failed to create invoice", err)
	}

	return id, nil
}

// UpdateInvoice overwrites a saved invoice
func (r *InvoiceRepository) UpdateInvoice(ctx context.Context, id string, inv *models.Invoice) error {
	if !validInvoiceID(id) {
		return models.ErrInvoiceNotFound
	}

	docs, err := encodeInvoice(inv)
	if err != nil {
		return err
	}

	query := `
		UPDATE invoices
		SET invoice_number = $2, sender = $3, client = $4, issue_date = $5, due_date = $6,
			custom_columns = $7, line_items = $8, advance_paid = $9, gst_enabled = $10,
			gst_percentage = $11, upi_enabled = $12, upi_id = $13, signatory = $14,
			notes = $15, payment_details = $16, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		id,
		inv.InvoiceNumber,
		docs.sender,
		docs.client,
		inv.IssueDate,
		nullDate(inv.DueDate),
		docs.columns,
		docs.lineItems,
		inv.AdvancePaid,
		inv.GSTEnabled,
		inv.GSTPercentage,
		inv.UPIEnabled,
		inv.UPIID,
		docs.signatory,
		inv.Notes,
		inv.PaymentDetails,
	)
	if err != nil {
		return mapWriteError("failed to update invoice", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrInvoiceNotFound
	}

	return nil
}

// GetInvoiceByID loads a saved invoice
func (r *InvoiceRepository) GetInvoiceByID(ctx context.Context, id string) (*models.Invoice, error) {
	if !validInvoiceID(id) {
		return nil, models.ErrInvoiceNotFound
	}

	query := `
		SELECT id, invoice_number, sender, client, issue_date, due_date, custom_columns, line_items,
			advance_paid, gst_enabled, gst_percentage, upi_enabled, upi_id, signatory, notes,
			payment_details, updated_at
		FROM invoices
		WHERE id = $1`

	inv := &models.Invoice{}
	var docs invoiceDocuments
	var dueDate sql.NullTime
	var updatedAt time.Time

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&docs.sender,
		&docs.client,
		&inv.IssueDate,
		&dueDate,
		&docs.columns,
		&docs.lineItems,
		&inv.AdvancePaid,
		&inv.GSTEnabled,
		&inv.GSTPercentage,
		&inv.UPIEnabled,
		&inv.UPIID,
		&docs.signatory,
		&inv.Notes,
		&inv.PaymentDetails,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if err := decodeInvoiceDocuments(inv, &docs); err != nil {
		return nil, err
	}
	if dueDate.Valid {
		inv.DueDate = &dueDate.Time
	}
	inv.SavedAt = &updatedAt

	return inv, nil
}

// validInvoiceID rejects ids the uuid column could never hold
func validInvoiceID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func decodeInvoiceDocuments(inv *models.Invoice, docs *invoiceDocuments) error {
	if err := json.Unmarshal(docs.sender, &inv.Sender); err != nil {
		return fmt.Errorf("failed to decode sender: %w", err)
	}
	if err := json.Unmarshal(docs.client, &inv.Client); err != nil {
		return fmt.Errorf("failed to decode client: %w", err)
	}
	if err := json.Unmarshal(docs.columns, &inv.Columns); err != nil {
		return fmt.Errorf("failed to decode columns: %w", err)
	}
	if err := json.Unmarshal(docs.lineItems, &inv.LineItems); err != nil {
		return fmt.Errorf("failed to decode line items: %w", err)
	}
	if err := json.Unmarshal(docs.signatory, &inv.Signatory); err != nil {
		return fmt.Errorf("failed to decode signatory: %w", err)
	}
	for i := range inv.LineItems {
		if inv.LineItems[i].CustomValues == nil {
			inv.LineItems[i].CustomValues = make(map[string]string)
		}
	}
	return nil
}
