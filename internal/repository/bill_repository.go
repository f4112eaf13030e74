package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/krbenergy/uco-engine/internal/domain"
)

type billRepository struct {
	db *sqlx.DB
}

func NewBillRepository(db *sqlx.DB) BillRepository {
	return &billRepository{db: db}
}

const billColumns = `
	id, bill_id, bill_number, bill_date, fbo_id, fbo_name, fbo_address,
	date_from, date_to, lines, total_volume, total_amount, total_paid,
	total_balance, status, payment_history, created_by, created_by_name,
	created_at, updated_at
`

func (r *billRepository) Create(ctx context.Context, bill *domain.Bill) error {
	query := `
		INSERT INTO bills (
			id, bill_id, bill_number, bill_date, fbo_id, fbo_name, fbo_address,
			date_from, date_to, lines, total_volume, total_amount, total_paid,
			total_balance, status, payment_history, created_by, created_by_name,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.db.ExecContext(ctx, query,
		bill.ID,
		bill.BillID,
		bill.BillNumber,
		bill.BillDate,
		bill.FBOID,
		bill.FBOName,
		bill.FBOAddress,
		bill.DateFrom,
		bill.DateTo,
		bill.Lines,
		bill.TotalVolume,
		bill.TotalAmount,
		bill.TotalPaid,
		bill.TotalBalance,
		bill.Status,
		bill.History,
		bill.CreatedBy,
		bill.CreatedByName,
		bill.CreatedAt,
		bill.UpdatedAt,
	)

	return err
}

func (r *billRepository) GetByBillID(ctx context.Context, billID string) (*domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE bill_id = $1`

	var bill domain.Bill
	err := r.db.GetContext(ctx, &bill, query, billID)
	if err != nil {
		return nil, err
	}

	return &bill, nil
}

func (r *billRepository) List(ctx context.Context, fboID string) ([]*domain.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills`
	args := []interface{}{}
	if fboID != "" {
		query += ` WHERE fbo_id = $1`
		args = append(args, fboID)
	}
	query += ` ORDER BY created_at DESC`

	var bills []*domain.Bill
	err := r.db.SelectContext(ctx, &bills, query, args...)
	if err != nil {
		return nil, err
	}

	return bills, nil
}

func (r *billRepository) UpdateLedger(ctx context.Context, bill *domain.Bill) error {
	query := `
		UPDATE bills
		SET total_paid = $2, total_balance = $3, status = $4, payment_history = $5, updated_at = $6
		WHERE bill_id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		bill.BillID,
		bill.TotalPaid,
		bill.TotalBalance,
		bill.Status,
		bill.History,
		time.Now(),
	)
	if err != nil {
		return err
	}

	return requireAffected(result)
}
