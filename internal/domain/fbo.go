package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FBO is a food business operator, the oil-generating client site. Only the
// fields the payment engine reads and the aggregate counters it maintains
// live here; enrollment and contact data belong to the CRUD layer.
type FBO struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	FBOID              string          `json:"fbo_id" db:"fbo_id"`
	BusinessName       string          `json:"business_name" db:"business_name"`
	BankDetails        *BankDetails    `json:"bank_details,omitempty" db:"bank_details"`
	Status             string          `json:"status" db:"status"`
	TotalCollections   int             `json:"total_collections" db:"total_collections"`
	TotalQuantity      decimal.Decimal `json:"total_quantity_collected" db:"total_quantity_collected"`
	TotalAmountPaid    decimal.Decimal `json:"total_amount_paid" db:"total_amount_paid"`
	LastCollectionDate *time.Time      `json:"last_collection_date,omitempty" db:"last_collection_date"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

type BankDetails struct {
	AccountHolderName string `json:"accountHolderName"`
	AccountNumber     string `json:"accountNumber"`
	BankName          string `json:"bankName"`
	IFSCCode          string `json:"ifscCode"`
	Branch            string `json:"branch"`
	AccountType       string `json:"accountType"`
}

func (b BankDetails) Value() (driver.Value, error) {
	return json.Marshal(b)
}

func (b *BankDetails) Scan(src interface{}) error {
	return scanJSON(src, b, "bank details")
}
