package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/krbenergy/uco-engine/internal/domain"
)

func batchCollection(collectionID, quantity, pricePerKg string) *domain.Collection {
	return &domain.Collection{
		CollectionID: collectionID,
		FBOID:        "FBO1",
		Quantity:     decimal.RequireFromString(quantity),
		PricePerKg:   decimal.RequireFromString(pricePerKg),
		Status:       domain.CollectionStatusApproved,
	}
}

func TestProcessBulkPayment(t *testing.T) {
	actor := domain.Actor{ID: "ADM1", Name: "Meera"}
	fbo := &domain.FBO{FBOID: "FBO1", BusinessName: "Spice Garden"}

	tests := []struct {
		name            string
		request         *domain.ProcessBulkPaymentRequest
		setupMocks      func(*MockPaymentRepository, *MockCollectionRepository, *MockFBORepository)
		expectedError   bool
		errorContains   string
		validatePayment func(*testing.T, *domain.Payment)
	}{
		{
			name: "Success - Weighted average across mixed rates",
			request: &domain.ProcessBulkPaymentRequest{
				FBOID:         "FBO1",
				CollectionIDs: []string{"COL1", "COL2"},
				PaymentMethod: "Bank Transfer",
			},
			setupMocks: func(paymentRepo *MockPaymentRepository, colRepo *MockCollectionRepository, fboRepo *MockFBORepository) {
				fboRepo.On("GetByFBOID", mock.Anything, "FBO1").Return(fbo, nil)
				colRepo.On("GetByCollectionIDs", mock.Anything, []string{"COL1", "COL2"}).
					Return([]*domain.Collection{
						batchCollection("COL1", "10", "5"),
						batchCollection("COL2", "20", "8"),
					}, nil)
				paymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
				colRepo.On("MarkPaidForBatch", mock.Anything, []string{"COL1", "COL2"}, mock.Anything).
					Return(int64(2), nil)
			},
			validatePayment: func(t *testing.T, payment *domain.Payment) {
				// (10*5 + 20*8) / 30 = 7
				assert.True(t, payment.AveragePricePerKg.Equal(decimal.NewFromInt(7)))
				assert.True(t, payment.TotalQuantity.Equal(decimal.NewFromInt(30)))
				assert.True(t, payment.TotalAmount.Equal(decimal.NewFromInt(210)))
				assert.True(t, payment.NetAmount.Equal(decimal.NewFromInt(210)))
				assert.Equal(t, domain.PaymentStatusProcessing, payment.Status)
				assert.Equal(t, "ADM1", payment.ProcessedBy)
			},
		},
		{
			name: "Success - Deductions reduce the net payout",
			request: &domain.ProcessBulkPaymentRequest{
				FBOID:         "FBO1",
				CollectionIDs: []string{"COL1"},
				PaymentMethod: "Bank Transfer",
				Deductions: domain.Deductions{
					{Type: "quality", Amount: decimal.NewFromInt(15), Reason: "moisture content"},
					{Type: "transport", Amount: decimal.NewFromInt(5), Reason: "pickup surcharge"},
				},
			},
			setupMocks: func(paymentRepo *MockPaymentRepository, colRepo *MockCollectionRepository, fboRepo *MockFBORepository) {
				fboRepo.On("GetByFBOID", mock.Anything, "FBO1").Return(fbo, nil)
				colRepo.On("GetByCollectionIDs", mock.Anything, []string{"COL1"}).
					Return([]*domain.Collection{batchCollection("COL1", "10", "10")}, nil)
				paymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
				colRepo.On("MarkPaidForBatch", mock.Anything, []string{"COL1"}, mock.Anything).
					Return(int64(1), nil)
			},
			validatePayment: func(t *testing.T, payment *domain.Payment) {
				assert.True(t, payment.TotalAmount.Equal(decimal.NewFromInt(100)))
				assert.True(t, payment.NetAmount.Equal(decimal.NewFromInt(80)))
			},
		},
		{
			name: "Success - Zero total quantity settles at zero",
			request: &domain.ProcessBulkPaymentRequest{
				FBOID:         "FBO1",
				CollectionIDs: []string{"COL1"},
				PaymentMethod: "Cash",
			},
			setupMocks: func(paymentRepo *MockPaymentRepository, colRepo *MockCollectionRepository, fboRepo *MockFBORepository) {
				fboRepo.On("GetByFBOID", mock.Anything, "FBO1").Return(fbo, nil)
				colRepo.On("GetByCollectionIDs", mock.Anything, []string{"COL1"}).
					Return([]*domain.Collection{batchCollection("COL1", "0", "12.5")}, nil)
				paymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
				colRepo.On("MarkPaidForBatch", mock.Anything, []string{"COL1"}, mock.Anything).
					Return(int64(1), nil)
			},
			validatePayment: func(t *testing.T, payment *domain.Payment) {
				assert.True(t, payment.AveragePricePerKg.IsZero())
				assert.True(t, payment.TotalAmount.IsZero())
			},
		},
		{
			name: "Failure - Unknown collection rejects the batch",
			request: &domain.ProcessBulkPaymentRequest{
				FBOID:         "FBO1",
				CollectionIDs: []string{"COL1", "GHOST"},
				PaymentMethod: "Cash",
			},
			setupMocks: func(paymentRepo *MockPaymentRepository, colRepo *MockCollectionRepository, fboRepo *MockFBORepository) {
				fboRepo.On("GetByFBOID", mock.Anything, "FBO1").Return(fbo, nil)
				colRepo.On("GetByCollectionIDs", mock.Anything, []string{"COL1", "GHOST"}).
					Return([]*domain.Collection{batchCollection("COL1", "10", "5")}, nil)
			},
			expectedError: true,
			errorContains: "COLLECTION_NOT_FOUND",
		},
		{
			name: "Failure - Duplicate collection id rejects the batch",
			request: &domain.ProcessBulkPaymentRequest{
				FBOID:         "FBO1",
				CollectionIDs: []string{"COL1", "COL1"},
				PaymentMethod: "Cash",
			},
			setupMocks: func(paymentRepo *MockPaymentRepository, colRepo *MockCollectionRepository, fboRepo *MockFBORepository) {
				fboRepo.On("GetByFBOID", mock.Anything, "FBO1").Return(fbo, nil)
				colRepo.On("GetByCollectionIDs", mock.Anything, []string{"COL1", "COL1"}).
					Return([]*domain.Collection{batchCollection("COL1", "10", "5")}, nil)
			},
			expectedError: true,
			errorContains: "VALIDATION_ERROR",
		},
		{
			name: "Failure - Already-paid collection rejects the batch",
			request: &domain.ProcessBulkPaymentRequest{
				FBOID:         "FBO1",
				CollectionIDs: []string{"COL1", "COL2"},
				PaymentMethod: "Cash",
			},
			setupMocks: func(paymentRepo *MockPaymentRepository, colRepo *MockCollectionRepository, fboRepo *MockFBORepository) {
				paid := batchCollection("COL2", "20", "8")
				paid.Status = domain.CollectionStatusPaid
				fboRepo.On("GetByFBOID", mock.Anything, "FBO1").Return(fbo, nil)
				colRepo.On("GetByCollectionIDs", mock.Anything, []string{"COL1", "COL2"}).
					Return([]*domain.Collection{batchCollection("COL1", "10", "5"), paid}, nil)
			},
			expectedError: true,
			errorContains: "COLLECTION_ALREADY_PAID",
		},
		{
			name: "Failure - Unknown FBO",
			request: &domain.ProcessBulkPaymentRequest{
				FBOID:         "GHOST",
				CollectionIDs: []string{"COL1"},
				PaymentMethod: "Cash",
			},
			setupMocks: func(paymentRepo *MockPaymentRepository, colRepo *MockCollectionRepository, fboRepo *MockFBORepository) {
				fboRepo.On("GetByFBOID", mock.Anything, "GHOST").Return(nil, sql.ErrNoRows)
			},
			expectedError: true,
			errorContains: "FBO_NOT_FOUND",
		},
		{
			name: "Failure - Missing payment method fails validation",
			request: &domain.ProcessBulkPaymentRequest{
				FBOID:         "FBO1",
				CollectionIDs: []string{"COL1"},
			},
			setupMocks:    func(*MockPaymentRepository, *MockCollectionRepository, *MockFBORepository) {},
			expectedError: true,
			errorContains: "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paymentRepo := &MockPaymentRepository{}
			colRepo := &MockCollectionRepository{}
			fboRepo := &MockFBORepository{}
			tt.setupMocks(paymentRepo, colRepo, fboRepo)

			svc := NewPaymentService(paymentRepo, colRepo, fboRepo)

			payment, err := svc.ProcessBulkPayment(context.Background(), tt.request, actor)

			if tt.expectedError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				// A rejected batch must leave nothing behind.
				paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				colRepo.AssertNotCalled(t, "MarkPaidForBatch", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				tt.validatePayment(t, payment)
			}

			paymentRepo.AssertExpectations(t)
			colRepo.AssertExpectations(t)
			fboRepo.AssertExpectations(t)
		})
	}
}

// A stamping failure after the batch insert surfaces the error but still
// returns the durable payment, leaving repair to the reconciliation pass.
func TestProcessBulkPaymentStampingFailure(t *testing.T) {
	paymentRepo := &MockPaymentRepository{}
	colRepo := &MockCollectionRepository{}
	fboRepo := &MockFBORepository{}

	fboRepo.On("GetByFBOID", mock.Anything, "FBO1").
		Return(&domain.FBO{FBOID: "FBO1", BusinessName: "Spice Garden"}, nil)
	colRepo.On("GetByCollectionIDs", mock.Anything, []string{"COL1"}).
		Return([]*domain.Collection{batchCollection("COL1", "10", "5")}, nil)
	paymentRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	colRepo.On("MarkPaidForBatch", mock.Anything, []string{"COL1"}, mock.Anything).
		Return(int64(0), errors.New("connection reset"))

	svc := NewPaymentService(paymentRepo, colRepo, fboRepo)

	payment, err := svc.ProcessBulkPayment(context.Background(), &domain.ProcessBulkPaymentRequest{
		FBOID:         "FBO1",
		CollectionIDs: []string{"COL1"},
		PaymentMethod: "Cash",
	}, domain.Actor{ID: "ADM1"})

	require.Error(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, domain.PaymentStatusProcessing, payment.Status)
}

func TestUpdatePaymentStatus(t *testing.T) {
	t.Run("completion accumulates the net amount onto the FBO", func(t *testing.T) {
		paymentRepo := &MockPaymentRepository{}
		fboRepo := &MockFBORepository{}

		paymentRepo.On("GetByPaymentID", mock.Anything, "PAY1").Return(&domain.Payment{
			PaymentID: "PAY1",
			FBOID:     "FBO1",
			NetAmount: decimal.NewFromInt(200),
			Status:    domain.PaymentStatusProcessing,
		}, nil)
		paymentRepo.On("UpdateStatus", mock.Anything, "PAY1", domain.PaymentStatusCompleted, "UTR123", "").Return(nil)
		fboRepo.On("AddAmountPaid", mock.Anything, "FBO1", decimal.NewFromInt(200)).Return(nil)

		svc := NewPaymentService(paymentRepo, &MockCollectionRepository{}, fboRepo)

		payment, err := svc.UpdateStatus(context.Background(), "PAY1", &domain.UpdatePaymentStatusRequest{
			Status:               domain.PaymentStatusCompleted,
			TransactionReference: "UTR123",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusCompleted, payment.Status)
		fboRepo.AssertExpectations(t)
	})

	t.Run("re-completing an already completed batch does not double count", func(t *testing.T) {
		paymentRepo := &MockPaymentRepository{}
		fboRepo := &MockFBORepository{}

		paymentRepo.On("GetByPaymentID", mock.Anything, "PAY1").Return(&domain.Payment{
			PaymentID: "PAY1",
			FBOID:     "FBO1",
			NetAmount: decimal.NewFromInt(200),
			Status:    domain.PaymentStatusCompleted,
		}, nil)
		paymentRepo.On("UpdateStatus", mock.Anything, "PAY1", domain.PaymentStatusCompleted, "", "").Return(nil)

		svc := NewPaymentService(paymentRepo, &MockCollectionRepository{}, fboRepo)

		_, err := svc.UpdateStatus(context.Background(), "PAY1", &domain.UpdatePaymentStatusRequest{
			Status: domain.PaymentStatusCompleted,
		})

		require.NoError(t, err)
		fboRepo.AssertNotCalled(t, "AddAmountPaid", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown payment", func(t *testing.T) {
		paymentRepo := &MockPaymentRepository{}
		paymentRepo.On("GetByPaymentID", mock.Anything, "GHOST").Return(nil, sql.ErrNoRows)

		svc := NewPaymentService(paymentRepo, &MockCollectionRepository{}, &MockFBORepository{})

		_, err := svc.UpdateStatus(context.Background(), "GHOST", &domain.UpdatePaymentStatusRequest{
			Status: domain.PaymentStatusFailed,
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "PAYMENT_NOT_FOUND")
	})
}

func TestReconcileProcessing(t *testing.T) {
	t.Run("re-stamps collections for stuck batches", func(t *testing.T) {
		paymentRepo := &MockPaymentRepository{}
		colRepo := &MockCollectionRepository{}

		paymentRepo.On("ListProcessingOlderThan", mock.Anything, mock.Anything).
			Return([]*domain.Payment{
				{PaymentID: "PAY1", CollectionIDs: pq.StringArray{"COL1", "COL2"}},
				{PaymentID: "PAY2", CollectionIDs: pq.StringArray{"COL3"}},
			}, nil)
		// COL2 was already stamped before the crash; only COL1 needs repair.
		colRepo.On("MarkPaidForBatch", mock.Anything, []string{"COL1", "COL2"}, mock.Anything).
			Return(int64(1), nil)
		colRepo.On("MarkPaidForBatch", mock.Anything, []string{"COL3"}, mock.Anything).
			Return(int64(1), nil)

		svc := NewPaymentService(paymentRepo, colRepo, &MockFBORepository{})

		stamped, err := svc.ReconcileProcessing(context.Background(), 15*time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(2), stamped)
		colRepo.AssertExpectations(t)
	})

	t.Run("nothing stuck is a no-op", func(t *testing.T) {
		paymentRepo := &MockPaymentRepository{}
		colRepo := &MockCollectionRepository{}
		paymentRepo.On("ListProcessingOlderThan", mock.Anything, mock.Anything).
			Return([]*domain.Payment{}, nil)

		svc := NewPaymentService(paymentRepo, colRepo, &MockFBORepository{})

		stamped, err := svc.ReconcileProcessing(context.Background(), 15*time.Minute)

		require.NoError(t, err)
		assert.Zero(t, stamped)
		colRepo.AssertNotCalled(t, "MarkPaidForBatch", mock.Anything, mock.Anything, mock.Anything)
	})
}
