package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CollectionStatusPending  = "pending"
	CollectionStatusApproved = "approved"
	CollectionStatusRejected = "rejected"
	CollectionStatusPaid     = "paid"
)

const (
	PaymentStatusPending    = "pending"
	PaymentStatusProcessing = "processing"
	PaymentStatusPartial    = "partial"
	PaymentStatusCompleted  = "completed"
	PaymentStatusFailed     = "failed"
)

// Quality grades for collected oil. Anything outside A/B/C prices at zero.
const (
	GradeA        = "A"
	GradeB        = "B"
	GradeC        = "C"
	GradeRejected = "Rejected"
)

// Collection represents one pickup of oil from an FBO.
type Collection struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	CollectionID   string          `json:"collection_id" db:"collection_id"`
	FBOID          string          `json:"fbo_id" db:"fbo_id"`
	FBOName        string          `json:"fbo_name" db:"fbo_name"`
	CollectorID    string          `json:"collector_id" db:"collector_id"`
	CollectorName  string          `json:"collector_name" db:"collector_name"`
	TripID         string          `json:"trip_id,omitempty" db:"trip_id"`
	Quantity       decimal.Decimal `json:"quantity_collected" db:"quantity_collected"`
	QualityGrade   string          `json:"quality_grade" db:"quality_grade"`
	QualityNotes   string          `json:"quality_notes,omitempty" db:"quality_notes"`
	PricePerKg     decimal.Decimal `json:"price_per_kg" db:"price_per_kg"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status         string          `json:"status" db:"status"`
	ApprovedBy     string          `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty" db:"approved_at"`
	PaymentDetails *PaymentDetails `json:"payment_details,omitempty" db:"payment_details"`
	// Version guards the ledger read-modify-write cycle. Every ledger
	// write is conditional on the version read, so two concurrent
	// payments against the same collection cannot silently lose one.
	Version        int       `json:"-" db:"version"`
	CollectionDate time.Time `json:"collection_date" db:"collection_date"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// PaymentDetails is the ledger header embedded in a collection. AmountPaid
// always equals the sum of transaction amounts in History, Balance is the
// total amount minus AmountPaid clamped at zero, and Status is derived from
// those two on every write.
type PaymentDetails struct {
	PaymentID            string               `json:"paymentId"`
	PaymentDate          time.Time            `json:"paymentDate"`
	PaymentMethod        string               `json:"paymentMethod"`
	TransactionReference string               `json:"transactionReference"`
	Status               string               `json:"status"`
	AmountPaid           decimal.Decimal      `json:"amountPaid"`
	Balance              decimal.Decimal      `json:"balance"`
	PaymentProofURL      string               `json:"paymentProofUrl,omitempty"`
	History              []PaymentTransaction `json:"history"`
}

// PaymentTransaction is one immutable payment event. Corrections are recorded
// as new (possibly negative) transactions, never by editing history.
type PaymentTransaction struct {
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Method        string          `json:"method"`
	Reference     string          `json:"reference,omitempty"`
	ProofURL      string          `json:"proofUrl,omitempty"`
	PaidBy        string          `json:"paidBy,omitempty"`
	PaidByName    string          `json:"paidByName,omitempty"`
}

func (p PaymentDetails) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *PaymentDetails) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported payment details column type %T", src)
	}
}

// Actor identifies the authenticated user recording an operation.
// Authentication itself happens upstream.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DTOs for requests and responses

type CreateCollectionRequest struct {
	FBOID        string           `json:"fbo_id" validate:"required"`
	TripID       string           `json:"trip_id,omitempty"`
	Quantity     decimal.Decimal  `json:"quantity_collected"`
	QualityGrade string           `json:"quality_grade" validate:"required"`
	QualityNotes string           `json:"quality_notes,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"` // manual override, wins over quantity * rate
	PayNow       bool             `json:"pay_now,omitempty"`
	Method       string           `json:"payment_method,omitempty"`
	Reference    string           `json:"payment_reference,omitempty"`
	AmountPaid   decimal.Decimal  `json:"amount_paid,omitempty"`
	ProofURL     string           `json:"payment_proof_url,omitempty"`
}

type ApplyPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"payment_method" validate:"required"`
	Reference string          `json:"payment_reference,omitempty"`
	ProofURL  string          `json:"payment_proof_url,omitempty"`
}

// ApplyPaymentResult returns the ledger state after recording a payment,
// alongside the (possibly changed) top-level collection status.
type ApplyPaymentResult struct {
	CollectionID   string          `json:"collection_id"`
	Status         string          `json:"status"`
	PaymentDetails *PaymentDetails `json:"payment_details"`
}

type ReviewCollectionRequest struct {
	Action       string           `json:"action" validate:"required,oneof=approve reject"`
	QualityGrade string           `json:"quality_grade,omitempty"`
	PricePerKg   *decimal.Decimal `json:"price_per_kg,omitempty"`
	Notes        string           `json:"notes,omitempty"`
}

type UpdateCollectionRequest struct {
	Quantity     *decimal.Decimal `json:"quantity_collected,omitempty"`
	QualityGrade string           `json:"quality_grade,omitempty"`
	QualityNotes string           `json:"quality_notes,omitempty"`
}
