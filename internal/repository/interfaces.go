package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/krbenergy/uco-engine/internal/domain"
)

// CollectionRepository defines the interface for collection data operations
type CollectionRepository interface {
	// Create creates a new collection
	Create(ctx context.Context, collection *domain.Collection) error

	// GetByCollectionID retrieves a collection by its business ID
	GetByCollectionID(ctx context.Context, collectionID string) (*domain.Collection, error)

	// GetByCollectionIDs retrieves all collections matching the given IDs
	GetByCollectionIDs(ctx context.Context, collectionIDs []string) ([]*domain.Collection, error)

	// UpdateLedger replaces the embedded payment details and top-level
	// status, conditional on the version read. Returns
	// errors.ErrVersionConflict when another writer got there first.
	UpdateLedger(ctx context.Context, collectionID string, details *domain.PaymentDetails, status string, version int) error

	// UpdateReview stamps the review outcome, including any grade/price
	// correction and the recomputed amount
	UpdateReview(ctx context.Context, collection *domain.Collection) error

	// UpdateDetails persists edited quantity/grade/notes together with the
	// re-resolved price and amount
	UpdateDetails(ctx context.Context, collection *domain.Collection) error

	// MarkPaidForBatch stamps every referenced collection PAID with a
	// ledger stub pointing at the payment batch. Already-paid rows are
	// skipped, so the call is safe to repeat during reconciliation.
	MarkPaidForBatch(ctx context.Context, collectionIDs []string, stub *domain.PaymentDetails) (int64, error)
}

// PaymentRepository defines the interface for payment batch data operations
type PaymentRepository interface {
	// Create creates a new payment batch record
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByPaymentID retrieves a payment batch by its business ID
	GetByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// UpdateStatus updates the batch status and transaction reference
	UpdateStatus(ctx context.Context, paymentID, status, transactionReference, notes string) error

	// ListProcessingOlderThan returns PROCESSING batches created before the
	// cutoff, candidates for the reconciliation pass
	ListProcessingOlderThan(ctx context.Context, cutoff time.Time) ([]*domain.Payment, error)
}

// BillRepository defines the interface for bill data operations
type BillRepository interface {
	// Create creates a new bill
	Create(ctx context.Context, bill *domain.Bill) error

	// GetByBillID retrieves a bill by its business ID
	GetByBillID(ctx context.Context, billID string) (*domain.Bill, error)

	// List retrieves bills, newest first, optionally filtered by FBO
	List(ctx context.Context, fboID string) ([]*domain.Bill, error)

	// UpdateLedger persists the bill totals, status, and appended history
	UpdateLedger(ctx context.Context, bill *domain.Bill) error
}

// FBORepository defines the interface for FBO data operations
type FBORepository interface {
	// GetByFBOID retrieves an FBO by its business ID
	GetByFBOID(ctx context.Context, fboID string) (*domain.FBO, error)

	// RecordCollection bumps the collection counters after a new pickup
	RecordCollection(ctx context.Context, fboID string, quantity decimal.Decimal) error

	// AddAmountPaid accumulates the lifetime amount paid to an FBO
	AddAmountPaid(ctx context.Context, fboID string, amount decimal.Decimal) error
}

// SettingsRepository defines the interface for the key-value settings table
type SettingsRepository interface {
	// GetRates returns the grade rate settings as decimals
	GetRates(ctx context.Context) (map[string]decimal.Decimal, error)
}
