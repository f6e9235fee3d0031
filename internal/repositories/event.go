package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"event-console/internal/models"
)

// EventRepository reads events and their ticket categories
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// GetEventByID loads an event with its categories in display order
func (r *EventRepository) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	query := `
		SELECT id, title, ticket_price, venue, venue_layout_url, starts_at
		FROM events
		WHERE id = $1`

	event := &models.Event{}
	var price decimal.NullDecimal
	var startsAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&price,
		&event.Venue,
		&event.VenueLayoutURL,
		&startsAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if price.Valid {
		event.TicketPrice = &price.Decimal
	}
	if startsAt.Valid {
		event.StartsAt = &startsAt.Time
	}

	categories, err := r.categories(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Categories = categories

	return event, nil
}

func (r *EventRepository) categories(ctx context.Context, eventID string) ([]models.TicketCategory, error) {
	query := `
		SELECT id, name, price, description
		FROM ticket_categories
		WHERE event_id = $1
		ORDER BY position, name`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket categories: %w", err)
	}
	defer rows.Close()

	var categories []models.TicketCategory
	for rows.Next() {
		var c models.TicketCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Price, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan ticket category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ticket categories: %w", err)
	}

	return categories, nil
}

// UpsertEvent writes an event and replaces its categories in one transaction
func (r *EventRepository) UpsertEvent(ctx context.Context, event *models.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var price decimal.NullDecimal
	if event.TicketPrice != nil {
		price = decimal.NullDecimal{Decimal: *event.TicketPrice, Valid: true}
	}
	var startsAt sql.NullTime
	if event.StartsAt != nil {
		startsAt = sql.NullTime{Time: *event.StartsAt, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (id, title, ticket_price, venue, venue_layout_url, starts_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			ticket_price = EXCLUDED.ticket_price,
			venue = EXCLUDED.venue,
			venue_layout_url = EXCLUDED.venue_layout_url,
			starts_at = EXCLUDED.starts_at,
			updated_at = NOW()`,
		event.ID, event.Title, price, event.Venue, event.VenueLayoutURL, startsAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert event: %w", err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM ticket_categories WHERE event_id = $1", event.ID); err != nil {
		return fmt.Errorf("failed to clear ticket categories: %w", err)
	}

	for pos, c := range event.Categories {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ticket_categories (event_id, id, name, price, description, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			event.ID, c.ID, c.Name, c.Price, c.Description, pos,
		)
		if err != nil {
			return mapWriteError("failed to create ticket category", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event upsert: %w", err)
	}
	return nil
}
