package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/krbenergy/uco-engine/internal/domain"
	"github.com/krbenergy/uco-engine/internal/repository"
	customError "github.com/krbenergy/uco-engine/pkg/errors"
	"github.com/krbenergy/uco-engine/pkg/utils"
)

// billPaidTolerance treats a residual balance of up to one unit as settled,
// absorbing floating point drift accumulated upstream of the ledger.
var billPaidTolerance = decimal.NewFromInt(1)

// BillService ledgers period invoices. Simpler than the collection ledger:
// totals live on the bill row itself, settlement has a one-unit tolerance
// band, and a paid bill is never demoted by a later correction.
type BillService struct {
	BillRepo repository.BillRepository
	validate *validator.Validate
}

func NewBillService(billRepo repository.BillRepository) *BillService {
	return &BillService{
		BillRepo: billRepo,
		validate: validator.New(),
	}
}

// CreateBill issues a billing-period invoice from the supplied collection
// lines. Totals are taken as provided by the caller, which assembles them
// from the collection records; the balance is derived.
func (s *BillService) CreateBill(ctx context.Context, request *domain.CreateBillRequest, actor domain.Actor) (*domain.Bill, error) {
	if err := s.validate.Struct(request); err != nil {
		return nil, customError.WrapValidationError(err)
	}

	now := time.Now()
	billDate := request.BillDate
	if billDate.IsZero() {
		billDate = now
	}

	bill := &domain.Bill{
		ID:            uuid.New(),
		BillID:        utils.GenerateID("BILL"),
		BillNumber:    request.BillNumber,
		BillDate:      billDate,
		FBOID:         request.FBOID,
		FBOName:       request.FBOName,
		FBOAddress:    request.FBOAddress,
		DateFrom:      request.DateFrom,
		DateTo:        request.DateTo,
		Lines:         request.Lines,
		TotalVolume:   request.TotalVolume,
		TotalAmount:   request.TotalAmount,
		TotalPaid:     request.TotalPaid,
		TotalBalance:  utils.ClampToZero(request.TotalAmount.Sub(request.TotalPaid)),
		Status:        domain.BillStatusGenerated,
		History:       domain.BillHistory{},
		CreatedBy:     actor.ID,
		CreatedByName: actor.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.BillRepo.Create(ctx, bill); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return bill, nil
}

// ListBills returns bills newest first, optionally filtered by FBO. Rows
// written before the balance column existed carry a zero balance regardless
// of what is outstanding; those are backfilled from the stored totals.
func (s *BillService) ListBills(ctx context.Context, fboID string) ([]*domain.Bill, error) {
	bills, err := s.BillRepo.List(ctx, fboID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	for _, bill := range bills {
		if bill.TotalBalance.IsZero() && bill.Status != domain.BillStatusPaid {
			bill.TotalBalance = utils.ClampToZero(bill.TotalAmount.Sub(bill.TotalPaid))
		}
	}

	return bills, nil
}

// ApplyBillPayment records a payment against a bill. A balance within the
// tolerance band is forced to zero and flips the bill to paid; otherwise
// any payment leaves it partial. Status never moves backwards: once paid,
// a bill stays paid.
func (s *BillService) ApplyBillPayment(ctx context.Context, billID string, request *domain.ApplyPaymentRequest, actor domain.Actor) (*domain.BillPaymentResult, error) {
	if err := s.validate.Struct(request); err != nil {
		return nil, customError.WrapValidationError(err)
	}

	bill, err := s.BillRepo.GetByBillID(ctx, billID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapBillNotFound(billID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	newPaid := bill.TotalPaid.Add(request.Amount)
	newBalance := utils.ClampToZero(bill.TotalAmount.Sub(newPaid))

	status := bill.Status
	if status == "" {
		status = domain.BillStatusGenerated
	}
	if newBalance.LessThanOrEqual(billPaidTolerance) {
		newBalance = decimal.Zero
		status = domain.BillStatusPaid
	} else if newPaid.Sign() > 0 && status != domain.BillStatusPaid {
		status = domain.BillStatusPartial
	}

	bill.TotalPaid = newPaid
	bill.TotalBalance = newBalance
	bill.Status = status
	bill.History = append(bill.History, domain.PaymentTransaction{
		TransactionID: utils.GenerateID("TXN"),
		Amount:        request.Amount,
		Date:          time.Now(),
		Method:        request.Method,
		Reference:     request.Reference,
		ProofURL:      request.ProofURL,
		PaidBy:        actor.ID,
		PaidByName:    actor.Name,
	})

	if err := s.BillRepo.UpdateLedger(ctx, bill); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.BillPaymentResult{
		BillID:       bill.BillID,
		TotalPaid:    newPaid,
		TotalBalance: newBalance,
		Status:       status,
	}, nil
}
