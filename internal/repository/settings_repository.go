package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type settingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// GetRates reads the grade rate rows. Values that fail to parse are
// skipped; the pricing resolver treats missing keys as zero.
func (r *settingsRepository) GetRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	query := `
		SELECT setting_key, setting_value
		FROM settings
		WHERE setting_key IN ('gradeARate', 'gradeBRate', 'gradeCRate')
	`

	rows := []struct {
		Key   string `db:"setting_key"`
		Value string `db:"setting_value"`
	}{}

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	rates := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		rate, err := decimal.NewFromString(row.Value)
		if err != nil {
			continue
		}
		rates[row.Key] = rate
	}

	return rates, nil
}
