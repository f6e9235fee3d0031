package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"event-console/internal/models"
)

const pqUniqueViolation = "23505"

// OrderRepository persists placed ticket orders
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder inserts the order and its items in one transaction and returns
// the new order id. A colliding order number is regenerated on the order.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *models.TicketOrder) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := 0; i < 5; i++ {
		var exists bool
		err = tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM ticket_orders WHERE order_number = $1)", order.OrderNumber,
		).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("failed to check order number uniqueness: %w", err)
		}
		if !exists {
			break
		}
		order.OrderNumber = models.GenerateOrderNumber()
	}

	query := `
		INSERT INTO ticket_orders (order_number, event_id, event_title, customer_name, customer_email,
			customer_phone, total_amount, payment_ref, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	var id string
	err = tx.QueryRowContext(ctx, query,
		order.OrderNumber,
		order.EventID,
		order.EventTitle,
		order.Customer.Name,
		order.Customer.Email,
		order.Customer.Phone,
		order.TotalAmount,
		order.PaymentRef,
		order.Status,
		order.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", mapWriteError("failed to create order", err)
	}

	for pos, item := range order.Items {
		var categoryID sql.NullString
		if item.CategoryID != "" {
			categoryID = sql.NullString{String: item.CategoryID, Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, category_id, name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, pos, categoryID, item.Name, item.UnitPrice, item.Quantity,
		)
		if err != nil {
			return "", fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit order creation: %w", err)
	}

	return id, nil
}

func mapWriteError(msg string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return fmt.Errorf("%s: %w", msg, models.ErrDuplicateEntry)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
