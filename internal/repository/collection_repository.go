package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/krbenergy/uco-engine/internal/domain"
	customError "github.com/krbenergy/uco-engine/pkg/errors"
)

type collectionRepository struct {
	db *sqlx.DB
}

func NewCollectionRepository(db *sqlx.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

const collectionColumns = `
	id, collection_id, fbo_id, fbo_name, collector_id, collector_name, trip_id,
	quantity_collected, quality_grade, quality_notes, price_per_kg, total_amount,
	status, approved_by, approved_at, payment_details, version,
	collection_date, created_at, updated_at
`

func (r *collectionRepository) Create(ctx context.Context, collection *domain.Collection) error {
	query := `
		INSERT INTO collections (
			id, collection_id, fbo_id, fbo_name, collector_id, collector_name, trip_id,
			quantity_collected, quality_grade, quality_notes, price_per_kg, total_amount,
			status, payment_details, version, collection_date, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 0, $15, $16, $17)
	`

	_, err := r.db.ExecContext(ctx, query,
		collection.ID,
		collection.CollectionID,
		collection.FBOID,
		collection.FBOName,
		collection.CollectorID,
		collection.CollectorName,
		collection.TripID,
		collection.Quantity,
		collection.QualityGrade,
		collection.QualityNotes,
		collection.PricePerKg,
		collection.TotalAmount,
		collection.Status,
		collection.PaymentDetails,
		collection.CollectionDate,
		collection.CreatedAt,
		collection.UpdatedAt,
	)

	return err
}

func (r *collectionRepository) GetByCollectionID(ctx context.Context, collectionID string) (*domain.Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections WHERE collection_id = $1`

	var collection domain.Collection
	err := r.db.GetContext(ctx, &collection, query, collectionID)
	if err != nil {
		return nil, err
	}

	return &collection, nil
}

func (r *collectionRepository) GetByCollectionIDs(ctx context.Context, collectionIDs []string) ([]*domain.Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections WHERE collection_id = ANY($1)`

	var collections []*domain.Collection
	err := r.db.SelectContext(ctx, &collections, query, pq.Array(collectionIDs))
	if err != nil {
		return nil, err
	}

	return collections, nil
}

// UpdateLedger is the single write path for payment reconciliation. The
// version predicate turns the read-modify-write cycle into a conditional
// update, so a concurrent writer surfaces as ErrVersionConflict instead of
// a lost update.
func (r *collectionRepository) UpdateLedger(ctx context.Context, collectionID string, details *domain.PaymentDetails, status string, version int) error {
	query := `
		UPDATE collections
		SET payment_details = $2, status = $3, version = version + 1, updated_at = $4
		WHERE collection_id = $1 AND version = $5
	`

	result, err := r.db.ExecContext(ctx, query, collectionID, details, status, time.Now(), version)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the row vanished or someone else bumped the version.
		var exists bool
		checkErr := r.db.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM collections WHERE collection_id = $1)`, collectionID)
		if checkErr != nil {
			return checkErr
		}
		if !exists {
			return sql.ErrNoRows
		}
		return customError.ErrVersionConflict
	}

	return nil
}

func (r *collectionRepository) UpdateReview(ctx context.Context, collection *domain.Collection) error {
	query := `
		UPDATE collections
		SET status = $2, quality_grade = $3, quality_notes = $4, price_per_kg = $5,
		    total_amount = $6, approved_by = $7, approved_at = $8,
		    version = version + 1, updated_at = $9
		WHERE collection_id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		collection.CollectionID,
		collection.Status,
		collection.QualityGrade,
		collection.QualityNotes,
		collection.PricePerKg,
		collection.TotalAmount,
		collection.ApprovedBy,
		collection.ApprovedAt,
		time.Now(),
	)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (r *collectionRepository) UpdateDetails(ctx context.Context, collection *domain.Collection) error {
	query := `
		UPDATE collections
		SET quantity_collected = $2, quality_grade = $3, quality_notes = $4,
		    price_per_kg = $5, total_amount = $6, version = version + 1, updated_at = $7
		WHERE collection_id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		collection.CollectionID,
		collection.Quantity,
		collection.QualityGrade,
		collection.QualityNotes,
		collection.PricePerKg,
		collection.TotalAmount,
		time.Now(),
	)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (r *collectionRepository) MarkPaidForBatch(ctx context.Context, collectionIDs []string, stub *domain.PaymentDetails) (int64, error) {
	query := `
		UPDATE collections
		SET status = $2, payment_details = $3, version = version + 1, updated_at = $4
		WHERE collection_id = ANY($1) AND status <> $2
	`

	result, err := r.db.ExecContext(ctx, query,
		pq.Array(collectionIDs),
		domain.CollectionStatusPaid,
		stub,
		time.Now(),
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
