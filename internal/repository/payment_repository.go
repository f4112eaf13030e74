package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/krbenergy/uco-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `
	id, payment_id, fbo_id, fbo_name, collection_ids, total_quantity,
	average_price_per_kg, total_amount, deductions, net_amount, payment_method,
	transaction_reference, status, notes, processed_by, payment_date,
	created_at, updated_at
`

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			id, payment_id, fbo_id, fbo_name, collection_ids, total_quantity,
			average_price_per_kg, total_amount, deductions, net_amount, payment_method,
			transaction_reference, status, notes, processed_by, payment_date,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.PaymentID,
		payment.FBOID,
		payment.FBOName,
		payment.CollectionIDs,
		payment.TotalQuantity,
		payment.AveragePricePerKg,
		payment.TotalAmount,
		payment.Deductions,
		payment.NetAmount,
		payment.PaymentMethod,
		payment.TransactionReference,
		payment.Status,
		payment.Notes,
		payment.ProcessedBy,
		payment.PaymentDate,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	return err
}

func (r *paymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1`

	var payment domain.Payment
	err := r.db.GetContext(ctx, &payment, query, paymentID)
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, paymentID, status, transactionReference, notes string) error {
	query := `
		UPDATE payments
		SET status = $2, transaction_reference = $3, notes = $4, updated_at = $5
		WHERE payment_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, paymentID, status, transactionReference, notes, time.Now())
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (r *paymentRepository) ListProcessingOlderThan(ctx context.Context, cutoff time.Time) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
	`

	var payments []*domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, domain.PaymentStatusProcessing, cutoff)
	if err != nil {
		return nil, err
	}

	return payments, nil
}
