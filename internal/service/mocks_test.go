package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/krbenergy/uco-engine/internal/domain"
)

type MockCollectionRepository struct {
	mock.Mock
}

func (m *MockCollectionRepository) Create(ctx context.Context, collection *domain.Collection) error {
	args := m.Called(ctx, collection)
	return args.Error(0)
}

func (m *MockCollectionRepository) GetByCollectionID(ctx context.Context, collectionID string) (*domain.Collection, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Collection), args.Error(1)
}

func (m *MockCollectionRepository) GetByCollectionIDs(ctx context.Context, collectionIDs []string) ([]*domain.Collection, error) {
	args := m.Called(ctx, collectionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Collection), args.Error(1)
}

func (m *MockCollectionRepository) UpdateLedger(ctx context.Context, collectionID string, details *domain.PaymentDetails, status string, version int) error {
	args := m.Called(ctx, collectionID, details, status, version)
	return args.Error(0)
}

func (m *MockCollectionRepository) UpdateReview(ctx context.Context, collection *domain.Collection) error {
	args := m.Called(ctx, collection)
	return args.Error(0)
}

func (m *MockCollectionRepository) UpdateDetails(ctx context.Context, collection *domain.Collection) error {
	args := m.Called(ctx, collection)
	return args.Error(0)
}

func (m *MockCollectionRepository) MarkPaidForBatch(ctx context.Context, collectionIDs []string, stub *domain.PaymentDetails) (int64, error) {
	args := m.Called(ctx, collectionIDs, stub)
	return args.Get(0).(int64), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, paymentID, status, transactionReference, notes string) error {
	args := m.Called(ctx, paymentID, status, transactionReference, notes)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListProcessingOlderThan(ctx context.Context, cutoff time.Time) ([]*domain.Payment, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) Create(ctx context.Context, bill *domain.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) GetByBillID(ctx context.Context, billID string) (*domain.Bill, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bill), args.Error(1)
}

func (m *MockBillRepository) List(ctx context.Context, fboID string) ([]*domain.Bill, error) {
	args := m.Called(ctx, fboID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Bill), args.Error(1)
}

func (m *MockBillRepository) UpdateLedger(ctx context.Context, bill *domain.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

type MockFBORepository struct {
	mock.Mock
}

func (m *MockFBORepository) GetByFBOID(ctx context.Context, fboID string) (*domain.FBO, error) {
	args := m.Called(ctx, fboID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FBO), args.Error(1)
}

func (m *MockFBORepository) RecordCollection(ctx context.Context, fboID string, quantity decimal.Decimal) error {
	args := m.Called(ctx, fboID, quantity)
	return args.Error(0)
}

func (m *MockFBORepository) AddAmountPaid(ctx context.Context, fboID string, amount decimal.Decimal) error {
	args := m.Called(ctx, fboID, amount)
	return args.Error(0)
}

// MockRateSource feeds the pricing resolver a fixed rate table.
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) GetRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}
