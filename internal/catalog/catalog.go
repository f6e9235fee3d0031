// Package catalog serves events from a YAML file. It is the event source when
// the server runs without a database.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"event-console/internal/models"
)

type categoryEntry struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Price       string `mapstructure:"price"`
	Description string `mapstructure:"description"`
}

type eventEntry struct {
	ID             string          `mapstructure:"id"`
	Title          string          `mapstructure:"title"`
	TicketPrice    string          `mapstructure:"ticket_price"`
	Venue          string          `mapstructure:"venue"`
	VenueLayoutURL string          `mapstructure:"venue_layout_url"`
	Categories     []categoryEntry `mapstructure:"categories"`
}

type file struct {
	Events []eventEntry `mapstructure:"events"`
}

// Catalog is an immutable set of events keyed by id
type Catalog struct {
	events map[string]*models.Event
	order  []string
}

// Load reads and validates a catalog file
func Load(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read event catalog: %w", err)
	}
	return fromViper(v)
}

// LoadReader reads a catalog in the given format ("yaml", "json", ...)
func LoadReader(format string, content string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to parse event catalog: %w", err)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Catalog, error) {
	var f file
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("failed to decode event catalog: %w", err)
	}

	c := &Catalog{events: make(map[string]*models.Event, len(f.Events))}
	for _, entry := range f.Events {
		event, err := entry.toEvent()
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", entry.ID, err)
		}
		if _, dup := c.events[event.ID]; dup {
			return nil, fmt.Errorf("event %q: %w", entry.ID, models.ErrDuplicateEntry)
		}
		c.events[event.ID] = event
		c.order = append(c.order, event.ID)
	}
	return c, nil
}

func (e eventEntry) toEvent() (*models.Event, error) {
	if e.ID == "" {
		return nil, fmt.Errorf("id is required")
	}

	event := &models.Event{
		ID:             e.ID,
		Title:          e.Title,
		Venue:          e.Venue,
		VenueLayoutURL: e.VenueLayoutURL,
	}

	if e.TicketPrice != "" {
		price, err := decimal.NewFromString(e.TicketPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid ticket_price %q", e.TicketPrice)
		}
		event.TicketPrice = &price
	}

	for _, ce := range e.Categories {
		price, err := decimal.NewFromString(ce.Price)
		if err != nil {
			return nil, fmt.Errorf("category %q: invalid price %q", ce.ID, ce.Price)
		}
		event.Categories = append(event.Categories, models.TicketCategory{
			ID:          ce.ID,
			Name:        ce.Name,
			Price:       price,
			Description: ce.Description,
		})
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}
	return event, nil
}

// GetEventByID returns a copy of the event so callers cannot mutate the
// catalog
func (c *Catalog) GetEventByID(_ context.Context, id string) (*models.Event, error) {
	event, ok := c.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	out := *event
	out.Categories = append([]models.TicketCategory(nil), event.Categories...)
	return &out, nil
}

// Events lists all events in file order
func (c *Catalog) Events() []*models.Event {
	out := make([]*models.Event, 0, len(c.order))
	for _, id := range c.order {
		event, _ := c.GetEventByID(context.Background(), id)
		out = append(out, event)
	}
	return out
}
