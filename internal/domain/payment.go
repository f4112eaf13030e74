package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Payment is an admin-initiated settlement batch covering multiple
// collections for one FBO. It references the collections by business id;
// each collection carries its own ledger stub pointing back at the batch.
type Payment struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	PaymentID            string          `json:"payment_id" db:"payment_id"`
	FBOID                string          `json:"fbo_id" db:"fbo_id"`
	FBOName              string          `json:"fbo_name" db:"fbo_name"`
	CollectionIDs        pq.StringArray  `json:"collection_ids" db:"collection_ids"`
	TotalQuantity        decimal.Decimal `json:"total_quantity" db:"total_quantity"`
	AveragePricePerKg    decimal.Decimal `json:"average_price_per_kg" db:"average_price_per_kg"`
	TotalAmount          decimal.Decimal `json:"total_amount" db:"total_amount"`
	Deductions           Deductions      `json:"deductions" db:"deductions"`
	NetAmount            decimal.Decimal `json:"net_amount" db:"net_amount"`
	PaymentMethod        string          `json:"payment_method" db:"payment_method"`
	TransactionReference string          `json:"transaction_reference,omitempty" db:"transaction_reference"`
	Status               string          `json:"status" db:"status"`
	Notes                string          `json:"notes,omitempty" db:"notes"`
	ProcessedBy          string          `json:"processed_by" db:"processed_by"`
	PaymentDate          time.Time       `json:"payment_date" db:"payment_date"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// Deduction is one line subtracted from a batch total before payout.
type Deduction struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

type Deductions []Deduction

// Total sums the deduction amounts.
func (d Deductions) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d {
		total = total.Add(item.Amount)
	}
	return total
}

func (d Deductions) Value() (driver.Value, error) {
	if d == nil {
		return json.Marshal(Deductions{})
	}
	return json.Marshal(d)
}

func (d *Deductions) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported deductions column type %T", src)
	}
}

type ProcessBulkPaymentRequest struct {
	FBOID         string     `json:"fbo_id" validate:"required"`
	CollectionIDs []string   `json:"collection_ids" validate:"required,min=1"`
	PaymentMethod string     `json:"payment_method" validate:"required"`
	Deductions    Deductions `json:"deductions,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

type UpdatePaymentStatusRequest struct {
	Status               string `json:"status" validate:"required,oneof=pending processing completed failed"`
	TransactionReference string `json:"transaction_reference,omitempty"`
	Notes                string `json:"notes,omitempty"`
}
