package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"event-console/internal/models"
)

// CheckoutService opens checkouts and submits them as pending orders
type CheckoutService struct {
	events   EventSource
	orders   OrderStore
	receipts ReceiptRenderer
	logger   *logrus.Logger
	now      func() time.Time
	inFlight sync.Map
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(events EventSource, orders OrderStore, receipts ReceiptRenderer, logger *logrus.Logger) *CheckoutService {
	return &CheckoutService{
		events:   events,
		orders:   orders,
		receipts: receipts,
		logger:   logger,
		now:      time.Now,
	}
}

// Event loads an event for display
func (s *CheckoutService) Event(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.events.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			return nil, err
		}
		return nil, models.NewIOError("load event", err)
	}
	return event, nil
}

// Open starts a fresh checkout for an event, discarding any previous one
func (s *CheckoutService) Open(ctx context.Context, eventID string) (*models.Checkout, error) {
	event, err := s.Event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return models.NewCheckout(event), nil
}

// InProgress reports whether a submission for the draft is running
func (s *CheckoutService) InProgress(draftID string) bool {
	_, busy := s.inFlight.Load(draftID)
	return busy
}

// Submit places the order. On success the checkout enters the success step
// with the stored order; on failure it is left exactly as it was.
func (s *CheckoutService) Submit(ctx context.Context, c *models.Checkout) (*models.TicketOrder, error) {
	if _, busy := s.inFlight.LoadOrStore(c.DraftID, struct{}{}); busy {
		return nil, models.ErrInProgress
	}
	defer s.inFlight.Delete(c.DraftID)

	order, err := models.BuildTicketOrder(c, s.now())
	if err != nil {
		return nil, err
	}

	id, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(logrus.Fields{
			"draft_id": c.DraftID,
			"event_id": c.EventID,
		}).Error("failed to create ticket order")
		return nil, models.NewIOError("create order", err)
	}
	order.ID = id

	if err := c.Complete(order); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"tickets":      order.TicketCount(),
		"total":        order.TotalAmount.StringFixed(2),
	}).Info("ticket order placed")

	return order, nil
}

// Receipt renders the PDF receipt of a completed checkout
func (s *CheckoutService) Receipt(ctx context.Context, c *models.Checkout) ([]byte, error) {
	if c.Step != models.StepSuccess || c.Order == nil {
		return nil, models.ErrInvalidTransition
	}

	pdf, err := s.receipts.RenderReceipt(ctx, c.Order)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("order_id", c.Order.ID).Warn("receipt export failed")
		return nil, models.NewExportError("receipt export failed", err)
	}
	return pdf, nil
}
