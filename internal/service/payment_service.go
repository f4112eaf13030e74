package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/krbenergy/uco-engine/internal/domain"
	"github.com/krbenergy/uco-engine/internal/repository"
	customError "github.com/krbenergy/uco-engine/pkg/errors"
	"github.com/krbenergy/uco-engine/pkg/utils"
)

// PaymentService processes admin settlement batches across collections.
type PaymentService struct {
	PaymentRepo    repository.PaymentRepository
	CollectionRepo repository.CollectionRepository
	FBORepo        repository.FBORepository
	validate       *validator.Validate
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	collectionRepo repository.CollectionRepository,
	fboRepo repository.FBORepository,
) *PaymentService {
	return &PaymentService{
		PaymentRepo:    paymentRepo,
		CollectionRepo: collectionRepo,
		FBORepo:        fboRepo,
		validate:       validator.New(),
	}
}

// ProcessBulkPayment settles a set of collections for one FBO in a single
// batch. All existence and already-paid checks run before any write, so a
// rejected batch leaves nothing behind. The two writes that follow (insert
// batch, stamp collections) are not atomic; a crash between them is
// repaired by ReconcileProcessing rather than a rollback.
func (s *PaymentService) ProcessBulkPayment(ctx context.Context, request *domain.ProcessBulkPaymentRequest, actor domain.Actor) (*domain.Payment, error) {
	if err := s.validate.Struct(request); err != nil {
		return nil, customError.WrapValidationError(err)
	}

	fbo, err := s.FBORepo.GetByFBOID(ctx, request.FBOID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapFBONotFound(request.FBOID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	collections, err := s.CollectionRepo.GetByCollectionIDs(ctx, request.CollectionIDs)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if len(collections) != len(request.CollectionIDs) {
		found := make(map[string]bool, len(collections))
		for _, c := range collections {
			found[c.CollectionID] = true
		}
		for _, id := range request.CollectionIDs {
			if !found[id] {
				return nil, customError.WrapCollectionNotFound(id)
			}
		}
		// Every id resolved, so the request must repeat one.
		return nil, customError.WrapValidationError(fmt.Errorf("duplicate collection ids in batch"))
	}

	// One already-paid collection rejects the whole batch.
	for _, c := range collections {
		if c.Status == domain.CollectionStatusPaid {
			return nil, customError.WrapCollectionAlreadyPaid(c.CollectionID)
		}
	}

	totalQuantity := decimal.Zero
	quantities := make([]decimal.Decimal, 0, len(collections))
	prices := make([]decimal.Decimal, 0, len(collections))
	for _, c := range collections {
		totalQuantity = totalQuantity.Add(c.Quantity)
		quantities = append(quantities, c.Quantity)
		prices = append(prices, c.PricePerKg)
	}

	averagePrice := utils.WeightedAveragePrice(quantities, prices)
	totalAmount := totalQuantity.Mul(averagePrice)
	netAmount := totalAmount.Sub(request.Deductions.Total())

	now := time.Now()
	payment := &domain.Payment{
		ID:                uuid.New(),
		PaymentID:         utils.GenerateID("PAY"),
		FBOID:             request.FBOID,
		FBOName:           fbo.BusinessName,
		CollectionIDs:     pq.StringArray(request.CollectionIDs),
		TotalQuantity:     totalQuantity,
		AveragePricePerKg: averagePrice,
		TotalAmount:       totalAmount,
		Deductions:        request.Deductions,
		NetAmount:         netAmount,
		PaymentMethod:     request.PaymentMethod,
		Status:            domain.PaymentStatusProcessing,
		Notes:             request.Notes,
		ProcessedBy:       actor.ID,
		PaymentDate:       now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.PaymentRepo.Create(ctx, payment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if _, err := s.CollectionRepo.MarkPaidForBatch(ctx, request.CollectionIDs, batchStub(payment)); err != nil {
		// The batch record is durable; the reconciliation pass will
		// re-apply the collection stamping.
		log.Printf("bulk payment %s: collection stamping failed, leaving to reconciliation: %v", payment.PaymentID, err)
		return payment, customError.WrapDatabaseError(err)
	}

	return payment, nil
}

// UpdateStatus moves a batch through processing to completed or failed.
// Completion accumulates the net amount onto the FBO's lifetime counter.
func (s *PaymentService) UpdateStatus(ctx context.Context, paymentID string, request *domain.UpdatePaymentStatusRequest) (*domain.Payment, error) {
	if err := s.validate.Struct(request); err != nil {
		return nil, customError.WrapValidationError(err)
	}

	payment, err := s.PaymentRepo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPaymentNotFound(paymentID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.PaymentRepo.UpdateStatus(ctx, paymentID, request.Status, request.TransactionReference, request.Notes); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if request.Status == domain.PaymentStatusCompleted && payment.Status != domain.PaymentStatusCompleted {
		if err := s.FBORepo.AddAmountPaid(ctx, payment.FBOID, payment.NetAmount); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
	}

	payment.Status = request.Status
	payment.TransactionReference = request.TransactionReference
	payment.Notes = request.Notes
	return payment, nil
}

// ReconcileProcessing repairs the gap between a batch insert and its
// collection updates. Any batch still PROCESSING after the cutoff gets its
// collection stamping re-applied; stamping skips already-paid rows, so
// repeating it is harmless. Returns the number of collections stamped.
func (s *PaymentService) ReconcileProcessing(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	payments, err := s.PaymentRepo.ListProcessingOlderThan(ctx, cutoff)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	var stamped int64
	for _, payment := range payments {
		n, err := s.CollectionRepo.MarkPaidForBatch(ctx, []string(payment.CollectionIDs), batchStub(payment))
		if err != nil {
			return stamped, customError.WrapDatabaseError(fmt.Errorf("payment %s: %w", payment.PaymentID, err))
		}
		if n > 0 {
			log.Printf("reconciliation: payment %s re-stamped %d collections", payment.PaymentID, n)
		}
		stamped += n
	}

	return stamped, nil
}

// batchStub is the ledger placeholder attached to each collection in a
// batch. The actual transaction amounts are recorded later through the
// per-collection ledger, not here.
func batchStub(payment *domain.Payment) *domain.PaymentDetails {
	return &domain.PaymentDetails{
		PaymentID:            payment.PaymentID,
		PaymentDate:          payment.PaymentDate,
		PaymentMethod:        payment.PaymentMethod,
		TransactionReference: "",
		Status:               domain.PaymentStatusProcessing,
		AmountPaid:           decimal.Zero,
		Balance:              decimal.Zero,
		History:              []domain.PaymentTransaction{},
	}
}
