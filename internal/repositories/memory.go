package repositories

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"event-console/internal/models"
)

// MemoryOrderStore keeps orders in process memory. It backs simple mode when
// no database is reachable.
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[string]*models.TicketOrder
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]*models.TicketOrder)}
}

func (s *MemoryOrderStore) CreateOrder(_ context.Context, order *models.TicketOrder) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.orders {
		if existing.OrderNumber == order.OrderNumber {
			return "", models.ErrDuplicateEntry
		}
	}

	id := uuid.NewString()
	stored := *order
	stored.ID = id
	s.orders[id] = &stored
	return id, nil
}

// Get returns a copy of a stored order
func (s *MemoryOrderStore) Get(id string) (*models.TicketOrder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, false
	}
	out := *order
	return &out, true
}

// MemoryInvoiceStore keeps invoices in process memory
type MemoryInvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]*models.Invoice
}

func NewMemoryInvoiceStore() *MemoryInvoiceStore {
	return &MemoryInvoiceStore{invoices: make(map[string]*models.Invoice)}
}

func (s *MemoryInvoiceStore) CreateInvoice(_ context.Context, inv *models.Invoice) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.numberTaken(inv.InvoiceNumber, "") {
		return "", models.ErrDuplicateEntry
	}

	id := uuid.NewString()
	stored := inv.Clone()
	stored.ID = id
	s.invoices[id] = stored
	return id, nil
}

func (s *MemoryInvoiceStore) UpdateInvoice(_ context.Context, id string, inv *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[id]; !ok {
		return models.ErrInvoiceNotFound
	}
	if s.numberTaken(inv.InvoiceNumber, id) {
		return models.ErrDuplicateEntry
	}

	stored := inv.Clone()
	stored.ID = id
	s.invoices[id] = stored
	return nil
}

func (s *MemoryInvoiceStore) GetInvoiceByID(_ context.Context, id string) (*models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]
	if !ok {
		return nil, models.ErrInvoiceNotFound
	}
	return inv.Clone(), nil
}

func (s *MemoryInvoiceStore) numberTaken(number, exceptID string) bool {
	for id, existing := range s.invoices {
		if id != exceptID && existing.InvoiceNumber == number {
			return true
		}
	}
	return false
}

// Len is the number of stored invoices
func (s *MemoryInvoiceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.invoices)
}
