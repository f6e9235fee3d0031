package services

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"event-console/internal/models"
)

// MockStorageService is a mock implementation of StorageService
type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) Upload(ctx context.Context, key string, reader io.Reader, contentType string, size int64) (string, error) {
	args := m.Called(ctx, key, reader, contentType, size)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorageService) GetURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockStorageService) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type MockEventSource struct {
	mock.Mock
}

func (m *MockEventSource) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	event, _ := args.Get(0).(*models.Event)
	return event, args.Error(1)
}

type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) CreateOrder(ctx context.Context, order *models.TicketOrder) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

type MockInvoiceStore struct {
	mock.Mock
}

func (m *MockInvoiceStore) CreateInvoice(ctx context.Context, inv *models.Invoice) (string, error) {
	args := m.Called(ctx, inv)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceStore) UpdateInvoice(ctx context.Context, id string, inv *models.Invoice) error {
	args := m.Called(ctx, id, inv)
	return args.Error(0)
}

func (m *MockInvoiceStore) GetInvoiceByID(ctx context.Context, id string) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	inv, _ := args.Get(0).(*models.Invoice)
	return inv, args.Error(1)
}

type MockInvoiceRenderer struct {
	mock.Mock
}

func (m *MockInvoiceRenderer) RenderInvoice(ctx context.Context, doc *InvoiceDocument) ([]byte, error) {
	args := m.Called(ctx, doc)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type MockReceiptRenderer struct {
	mock.Mock
}

func (m *MockReceiptRenderer) RenderReceipt(ctx context.Context, order *models.TicketOrder) ([]byte, error) {
	args := m.Called(ctx, order)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type MockQRRenderer struct {
	mock.Mock
}

func (m *MockQRRenderer) Encode(content string, size int) ([]byte, error) {
	args := m.Called(content, size)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, reader io.Reader, filename, pathHint string) (string, error) {
	args := m.Called(ctx, reader, filename, pathHint)
	return args.String(0), args.Error(1)
}

func (m *MockUploader) Remove(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

type MockImageFetcher struct {
	mock.Mock
}

func (m *MockImageFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	args := m.Called(ctx, url)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}
