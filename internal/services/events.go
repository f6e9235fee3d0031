package services

import (
	"context"
	"errors"
	"fmt"

	"event-console/internal/models"
)

// ChainedEventSource asks each source in order. A source that does not know
// the event passes to the next; any other failure stops the lookup.
type ChainedEventSource struct {
	sources []EventSource
}

// NewChainedEventSource creates a lookup over sources in priority order
func NewChainedEventSource(sources ...EventSource) *ChainedEventSource {
	return &ChainedEventSource{sources: sources}
}

// GetEventByID returns the first match
func (c *ChainedEventSource) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	for _, source := range c.sources {
		event, err := source.GetEventByID(ctx, id)
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, models.ErrEventNotFound) {
			return nil, fmt.Errorf("failed to load event %s: %w", id, err)
		}
	}
	return nil, models.ErrEventNotFound
}
