package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/krbenergy/uco-engine/internal/domain"
)

type fboRepository struct {
	db *sqlx.DB
}

func NewFBORepository(db *sqlx.DB) FBORepository {
	return &fboRepository{db: db}
}

func (r *fboRepository) GetByFBOID(ctx context.Context, fboID string) (*domain.FBO, error) {
	query := `
		SELECT id, fbo_id, business_name, bank_details, status, total_collections,
		       total_quantity_collected, total_amount_paid, last_collection_date,
		       created_at, updated_at
		FROM fbos
		WHERE fbo_id = $1
	`

	var fbo domain.FBO
	err := r.db.GetContext(ctx, &fbo, query, fboID)
	if err != nil {
		return nil, err
	}

	return &fbo, nil
}

func (r *fboRepository) RecordCollection(ctx context.Context, fboID string, quantity decimal.Decimal) error {
	query := `
		UPDATE fbos
		SET total_collections = total_collections + 1,
		    total_quantity_collected = total_quantity_collected + $2,
		    last_collection_date = $3,
		    updated_at = $3
		WHERE fbo_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, fboID, quantity, time.Now())
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (r *fboRepository) AddAmountPaid(ctx context.Context, fboID string, amount decimal.Decimal) error {
	query := `
		UPDATE fbos
		SET total_amount_paid = total_amount_paid + $2, updated_at = $3
		WHERE fbo_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, fboID, amount, time.Now())
	if err != nil {
		return err
	}

	return requireAffected(result)
}
