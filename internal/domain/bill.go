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
	BillStatusGenerated = "generated"
	BillStatusPartial   = "partial"
	BillStatusPaid      = "paid"
)

// Bill is a billing-period invoice for one FBO, ledgered independently of
// the per-collection payment details.
type Bill struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	BillID        string          `json:"bill_id" db:"bill_id"`
	BillNumber    string          `json:"bill_number" db:"bill_number"`
	BillDate      time.Time       `json:"bill_date" db:"bill_date"`
	FBOID         string          `json:"fbo_id" db:"fbo_id"`
	FBOName       string          `json:"fbo_name" db:"fbo_name"`
	FBOAddress    string          `json:"fbo_address,omitempty" db:"fbo_address"`
	DateFrom      string          `json:"date_from" db:"date_from"`
	DateTo        string          `json:"date_to" db:"date_to"`
	Lines         BillLines       `json:"collections" db:"lines"`
	TotalVolume   decimal.Decimal `json:"total_volume" db:"total_volume"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	TotalPaid     decimal.Decimal `json:"total_paid" db:"total_paid"`
	TotalBalance  decimal.Decimal `json:"total_balance" db:"total_balance"`
	Status        string          `json:"status" db:"status"`
	History       BillHistory     `json:"payment_history" db:"payment_history"`
	CreatedBy     string          `json:"created_by,omitempty" db:"created_by"`
	CreatedByName string          `json:"created_by_name,omitempty" db:"created_by_name"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// BillLine is one collection summarised on an invoice.
type BillLine struct {
	CollectionID string          `json:"id"`
	Date         time.Time       `json:"date"`
	Volume       decimal.Decimal `json:"volume"`
	Quality      string          `json:"quality"`
	Rate         decimal.Decimal `json:"rate"`
	Amount       decimal.Decimal `json:"amount"`
	Paid         decimal.Decimal `json:"paid"`
	Balance      decimal.Decimal `json:"balance"`
}

type BillLines []BillLine

type BillHistory []PaymentTransaction

func (l BillLines) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(BillLines{})
	}
	return json.Marshal(l)
}

func (l *BillLines) Scan(src interface{}) error {
	return scanJSON(src, l, "bill lines")
}

func (h BillHistory) Value() (driver.Value, error) {
	if h == nil {
		return json.Marshal(BillHistory{})
	}
	return json.Marshal(h)
}

func (h *BillHistory) Scan(src interface{}) error {
	return scanJSON(src, h, "bill history")
}

func scanJSON(src, dst interface{}, what string) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported %s column type %T", what, src)
	}
}

type CreateBillRequest struct {
	BillNumber  string          `json:"bill_number" validate:"required"`
	BillDate    time.Time       `json:"bill_date"`
	FBOID       string          `json:"fbo_id" validate:"required"`
	FBOName     string          `json:"fbo_name" validate:"required"`
	FBOAddress  string          `json:"fbo_address,omitempty"`
	DateFrom    string          `json:"date_from" validate:"required"`
	DateTo      string          `json:"date_to" validate:"required"`
	Lines       BillLines       `json:"collections"`
	TotalVolume decimal.Decimal `json:"total_volume"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
}

// BillPaymentResult is the ledger state returned after recording a bill payment.
type BillPaymentResult struct {
	BillID       string          `json:"bill_id"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	Status       string          `json:"status"`
}
