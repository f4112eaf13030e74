package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/krbenergy/uco-engine/internal/domain"
	"github.com/krbenergy/uco-engine/internal/pricing"
	"github.com/krbenergy/uco-engine/internal/repository"
	customError "github.com/krbenergy/uco-engine/pkg/errors"
	"github.com/krbenergy/uco-engine/pkg/utils"
)

// LedgerService owns the collection lifecycle and its payment ledger. The
// embedded payment details and the top-level collection status form one
// state machine written through a single path, so the two can never drift.
type LedgerService struct {
	CollectionRepo repository.CollectionRepository
	FBORepo        repository.FBORepository
	resolver       *pricing.Resolver
	validate       *validator.Validate
	// retries bounds the optimistic-concurrency loop in ApplyPayment.
	retries int
}

func NewLedgerService(
	collectionRepo repository.CollectionRepository,
	fboRepo repository.FBORepository,
	resolver *pricing.Resolver,
	retries int,
) *LedgerService {
	if retries <= 0 {
		retries = 3
	}
	return &LedgerService{
		CollectionRepo: collectionRepo,
		FBORepo:        fboRepo,
		resolver:       resolver,
		validate:       validator.New(),
		retries:        retries,
	}
}

// CreateCollection records a new pickup. The price per kg is resolved from
// the current rate table; an explicit amount on the request overrides the
// computed quantity * rate. A pay-now request seeds the ledger with the
// first transaction and can mark the collection paid straight away.
func (s *LedgerService) CreateCollection(ctx context.Context, request *domain.CreateCollectionRequest, actor domain.Actor) (*domain.Collection, error) {
	if err := s.validate.Struct(request); err != nil {
		return nil, customError.WrapValidationError(err)
	}
	if request.Quantity.IsNegative() {
		return nil, customError.WrapInvalidPaymentAmount(request.Quantity.String())
	}

	fbo, err := s.FBORepo.GetByFBOID(ctx, request.FBOID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapFBONotFound(request.FBOID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	pricePerKg := s.resolver.ResolvePrice(ctx, request.QualityGrade)
	totalAmount := pricing.ComputeAmount(request.Quantity, pricePerKg, request.Amount)

	now := time.Now()
	collection := &domain.Collection{
		ID:             uuid.New(),
		CollectionID:   utils.GenerateID("COL"),
		FBOID:          request.FBOID,
		FBOName:        fbo.BusinessName,
		CollectorID:    actor.ID,
		CollectorName:  actor.Name,
		TripID:         request.TripID,
		Quantity:       request.Quantity,
		QualityGrade:   request.QualityGrade,
		QualityNotes:   request.QualityNotes,
		PricePerKg:     pricePerKg,
		TotalAmount:    totalAmount,
		Status:         domain.CollectionStatusPending,
		CollectionDate: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if request.PayNow {
		details := newLedger(totalAmount)
		details.PaymentMethod = request.Method
		details.TransactionReference = request.Reference
		details.PaymentProofURL = request.ProofURL
		applyTransaction(details, domain.PaymentTransaction{
			TransactionID: utils.GenerateID("TXN"),
			Amount:        request.AmountPaid,
			Date:          now,
			Method:        request.Method,
			Reference:     request.Reference,
			ProofURL:      request.ProofURL,
			PaidBy:        actor.ID,
			PaidByName:    actor.Name,
		}, totalAmount)
		collection.PaymentDetails = details
		if details.Status == domain.PaymentStatusCompleted {
			collection.Status = domain.CollectionStatusPaid
		}
	}

	if err := s.CollectionRepo.Create(ctx, collection); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.FBORepo.RecordCollection(ctx, request.FBOID, request.Quantity); err != nil {
		// Counter drift only; the collection row is already durable, and
		// failing here would invite a retry that duplicates the pickup.
		log.Printf("collection %s: fbo counter update failed: %v", collection.CollectionID, err)
	}

	return collection, nil
}

// ApplyPayment appends one payment transaction to a collection's ledger and
// recomputes the derived fields. It is deliberately not idempotent: calling
// it twice with the same amount records two transactions. Over-payment is
// allowed; the stored balance clamps at zero.
//
// The read-modify-write cycle is guarded by the collection version, retried
// a bounded number of times when a concurrent writer wins the race.
func (s *LedgerService) ApplyPayment(ctx context.Context, collectionID string, request *domain.ApplyPaymentRequest, actor domain.Actor) (*domain.ApplyPaymentResult, error) {
	if err := s.validate.Struct(request); err != nil {
		return nil, customError.WrapValidationError(err)
	}

	for attempt := 0; attempt < s.retries; attempt++ {
		collection, err := s.CollectionRepo.GetByCollectionID(ctx, collectionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, customError.WrapCollectionNotFound(collectionID)
			}
			return nil, customError.WrapDatabaseError(err)
		}

		details := collection.PaymentDetails
		if details == nil {
			details = newLedger(collection.TotalAmount)
		}

		now := time.Now()
		details.PaymentDate = now
		details.PaymentMethod = request.Method
		details.TransactionReference = request.Reference
		if request.ProofURL != "" {
			details.PaymentProofURL = request.ProofURL
		}
		applyTransaction(details, domain.PaymentTransaction{
			TransactionID: utils.GenerateID("TXN"),
			Amount:        request.Amount,
			Date:          now,
			Method:        request.Method,
			Reference:     request.Reference,
			ProofURL:      request.ProofURL,
			PaidBy:        actor.ID,
			PaidByName:    actor.Name,
		}, collection.TotalAmount)

		status := collection.Status
		switch details.Status {
		case domain.PaymentStatusCompleted:
			status = domain.CollectionStatusPaid
		case domain.PaymentStatusPartial:
			// A correction can leave a previously settled collection
			// short again; demote it so it shows up as due.
			if status == domain.CollectionStatusPaid {
				status = domain.CollectionStatusPending
			}
		}

		err = s.CollectionRepo.UpdateLedger(ctx, collectionID, details, status, collection.Version)
		if err != nil {
			if errors.Is(err, customError.ErrVersionConflict) {
				continue
			}
			if errors.Is(err, sql.ErrNoRows) {
				return nil, customError.WrapCollectionNotFound(collectionID)
			}
			return nil, customError.WrapDatabaseError(err)
		}

		return &domain.ApplyPaymentResult{
			CollectionID:   collectionID,
			Status:         status,
			PaymentDetails: details,
		}, nil
	}

	return nil, customError.WrapVersionConflict(collectionID)
}

// ReviewCollection approves or rejects a pending collection. A grade or
// price correction on the review recomputes the total amount; a grade
// change without an explicit price re-resolves the rate table.
func (s *LedgerService) ReviewCollection(ctx context.Context, collectionID string, request *domain.ReviewCollectionRequest, actor domain.Actor) (*domain.Collection, error) {
	if err := s.validate.Struct(request); err != nil {
		return nil, customError.WrapValidationError(err)
	}

	collection, err := s.CollectionRepo.GetByCollectionID(ctx, collectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCollectionNotFound(collectionID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if collection.Status != domain.CollectionStatusPending {
		return nil, customError.WrapCollectionNotPending(collectionID)
	}

	switch request.Action {
	case "approve":
		collection.Status = domain.CollectionStatusApproved
	case "reject":
		collection.Status = domain.CollectionStatusRejected
	}

	repriced := false
	if request.QualityGrade != "" && request.QualityGrade != collection.QualityGrade {
		collection.QualityGrade = request.QualityGrade
		collection.PricePerKg = s.resolver.ResolvePrice(ctx, request.QualityGrade)
		repriced = true
	}
	if request.PricePerKg != nil {
		collection.PricePerKg = *request.PricePerKg
		repriced = true
	}
	if repriced {
		collection.TotalAmount = collection.Quantity.Mul(collection.PricePerKg)
	}
	if request.Notes != "" {
		collection.QualityNotes = request.Notes
	}

	now := time.Now()
	collection.ApprovedBy = actor.ID
	collection.ApprovedAt = &now

	if err := s.CollectionRepo.UpdateReview(ctx, collection); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return collection, nil
}

// UpdateCollection edits quantity, grade, or notes. Changing quantity or
// grade re-resolves the grade's current rate and recomputes the amount;
// the price at time of collection is not preserved across edits.
func (s *LedgerService) UpdateCollection(ctx context.Context, collectionID string, request *domain.UpdateCollectionRequest) (*domain.Collection, error) {
	collection, err := s.CollectionRepo.GetByCollectionID(ctx, collectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCollectionNotFound(collectionID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	reprice := false
	if request.Quantity != nil {
		collection.Quantity = *request.Quantity
		reprice = true
	}
	if request.QualityGrade != "" {
		collection.QualityGrade = request.QualityGrade
		reprice = true
	}
	if request.QualityNotes != "" {
		collection.QualityNotes = request.QualityNotes
	}

	if reprice {
		collection.PricePerKg = s.resolver.ResolvePrice(ctx, collection.QualityGrade)
		collection.TotalAmount = collection.Quantity.Mul(collection.PricePerKg)
	}

	if err := s.CollectionRepo.UpdateDetails(ctx, collection); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return collection, nil
}

// newLedger is the empty ledger for a collection with nothing recorded yet.
func newLedger(totalAmount decimal.Decimal) *domain.PaymentDetails {
	return &domain.PaymentDetails{
		PaymentID:  utils.GenerateID("PAY"),
		Status:     domain.PaymentStatusPending,
		AmountPaid: decimal.Zero,
		Balance:    totalAmount,
		History:    []domain.PaymentTransaction{},
	}
}

// applyTransaction appends one transaction and recomputes the derived
// ledger fields. Status is a pure function of (amountPaid, balance) and is
// never carried over from the previous state.
func applyTransaction(details *domain.PaymentDetails, txn domain.PaymentTransaction, totalAmount decimal.Decimal) {
	details.History = append(details.History, txn)
	details.AmountPaid = details.AmountPaid.Add(txn.Amount)

	rawBalance := totalAmount.Sub(details.AmountPaid)
	details.Balance = utils.ClampToZero(rawBalance)

	switch {
	case rawBalance.Sign() <= 0:
		details.Status = domain.PaymentStatusCompleted
	case details.AmountPaid.Sign() > 0:
		details.Status = domain.PaymentStatusPartial
	default:
		details.Status = domain.PaymentStatusPending
	}
}
