package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-console/internal/models"
)

func TestChainedEventSource(t *testing.T) {
	ctx := context.Background()
	db := &MockEventSource{}
	file := &MockEventSource{}

	db.On("GetEventByID", ctx, "db-event").Return(&models.Event{ID: "db-event", Title: "From DB"}, nil)
	db.On("GetEventByID", ctx, "file-event").Return(nil, models.ErrEventNotFound)
	db.On("GetEventByID", ctx, "missing").Return(nil, models.ErrEventNotFound)
	db.On("GetEventByID", ctx, "broken").Return(nil, errors.New("connection reset"))
	file.On("GetEventByID", ctx, "file-event").Return(&models.Event{ID: "file-event", Title: "From file"}, nil)
	file.On("GetEventByID", ctx, "missing").Return(nil, models.ErrEventNotFound)

	source := NewChainedEventSource(db, file)

	event, err := source.GetEventByID(ctx, "db-event")
	require.NoError(t, err)
	assert.Equal(t, "From DB", event.Title)

	event, err = source.GetEventByID(ctx, "file-event")
	require.NoError(t, err)
	assert.Equal(t, "From file", event.Title)

	_, err = source.GetEventByID(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrEventNotFound)

	_, err = source.GetEventByID(ctx, "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	file.AssertNotCalled(t, "GetEventByID", ctx, "broken")
}
