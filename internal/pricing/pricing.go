package pricing

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/krbenergy/uco-engine/internal/domain"
)

const cacheKey = "pricing:rates"

// Setting keys for the per-grade rates in the settings table.
const (
	SettingGradeARate = "gradeARate"
	SettingGradeBRate = "gradeBRate"
	SettingGradeCRate = "gradeCRate"
)

// RateSource supplies the currently active rate table.
type RateSource interface {
	GetRates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// Resolver maps a quality grade to a price per kg using the active rate
// table. The rate in effect at lookup time is applied; there is no
// historical pricing.
type Resolver struct {
	source    RateSource
	cache     *redis.Client
	cacheTTL  time.Duration
	fallbacks map[string]decimal.Decimal
}

func NewResolver(source RateSource, cache *redis.Client, cacheTTL time.Duration, fallbacks map[string]decimal.Decimal) *Resolver {
	return &Resolver{
		source:    source,
		cache:     cache,
		cacheTTL:  cacheTTL,
		fallbacks: fallbacks,
	}
}

// ResolvePrice returns the per-kg rate for a grade. Rejected and unmapped
// grades resolve to zero, as does a grade whose setting is absent. Lookup
// failures also resolve to zero rather than failing the caller.
func (r *Resolver) ResolvePrice(ctx context.Context, grade string) decimal.Decimal {
	var key string
	switch grade {
	case domain.GradeA:
		key = SettingGradeARate
	case domain.GradeB:
		key = SettingGradeBRate
	case domain.GradeC:
		key = SettingGradeCRate
	default:
		return decimal.Zero
	}

	rates, err := r.rates(ctx)
	if err != nil {
		log.Printf("pricing: rate table lookup failed, defaulting to zero: %v", err)
		return decimal.Zero
	}

	if rate, ok := rates[key]; ok {
		return rate
	}
	if fallback, ok := r.fallbacks[grade]; ok {
		return fallback
	}
	return decimal.Zero
}

// Invalidate drops the cached rate table. Called after a settings update.
func (r *Resolver) Invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, cacheKey).Err(); err != nil {
		log.Printf("pricing: cache invalidation failed: %v", err)
	}
}

func (r *Resolver) rates(ctx context.Context) (map[string]decimal.Decimal, error) {
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var rates map[string]decimal.Decimal
			if jsonErr := json.Unmarshal([]byte(cached), &rates); jsonErr == nil {
				return rates, nil
			}
		}
	}

	rates, err := r.source.GetRates(ctx)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if encoded, err := json.Marshal(rates); err == nil {
			if err := r.cache.Set(ctx, cacheKey, encoded, r.cacheTTL).Err(); err != nil {
				log.Printf("pricing: cache write failed: %v", err)
			}
		}
	}

	return rates, nil
}

// ComputeAmount derives the total amount for a collection. An explicit
// override wins over the computed quantity * rate value.
func ComputeAmount(quantity, pricePerKg decimal.Decimal, override *decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return quantity.Mul(pricePerKg)
}
