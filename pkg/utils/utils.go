package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenerateID builds a business identifier like COL20250114A1B2C3D4:
// prefix + UTC date + the first uuid group uppercased.
func GenerateID(prefix string) string {
	stamp := time.Now().UTC().Format("20060102")
	unique := strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
	return prefix + stamp + unique
}

// ClampToZero floors a balance at zero; overpayment never produces a
// negative stored balance.
func ClampToZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// WeightedAveragePrice returns the quantity-weighted average of the given
// prices, or zero when the total quantity is zero.
func WeightedAveragePrice(quantities, prices []decimal.Decimal) decimal.Decimal {
	totalQuantity := decimal.Zero
	weighted := decimal.Zero
	for i := range quantities {
		totalQuantity = totalQuantity.Add(quantities[i])
		weighted = weighted.Add(prices[i].Mul(quantities[i]))
	}
	if totalQuantity.IsZero() {
		return decimal.Zero
	}
	return weighted.Div(totalQuantity)
}
