package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/valvequote/quote_api/internal/models"
)

// RateSource loads the current exchange rate of a currency.
type RateSource interface {
	Latest(ctx context.Context, currencyCode string) (*models.ExchangeRate, error)
}

// ExchangeRateCache keeps the latest rate per currency in Redis. The refresh
// worker writes it with Put; readers go through Latest.
type ExchangeRateCache struct {
	store Store
	next  RateSource
	ttl   time.Duration
}

// NewExchangeRateCache creates a new ExchangeRateCache.
func NewExchangeRateCache(store Store, next RateSource, ttl time.Duration) *ExchangeRateCache {
	return &ExchangeRateCache{store: store, next: next, ttl: ttl}
}

func (c *ExchangeRateCache) key(currencyCode string) string {
	return fmt.Sprintf("fx:%s", strings.ToUpper(currencyCode))
}

// Put stores rate under its currency code.
func (c *ExchangeRateCache) Put(ctx context.Context, rate *models.ExchangeRate) error {
	b, err := json.Marshal(rate)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange rate: %w", err)
	}
	return c.store.Set(ctx, c.key(rate.CurrencyCode), string(b), c.ttl)
}

// Latest returns the cached rate, loading and caching it on a miss.
func (c *ExchangeRateCache) Latest(ctx context.Context, currencyCode string) (*models.ExchangeRate, error) {
	raw, err := c.store.Get(ctx, c.key(currencyCode))
	switch {
	case err == nil:
		var rate models.ExchangeRate
		if jerr := json.Unmarshal([]byte(raw), &rate); jerr == nil {
			return &rate, nil
		}
		log.Warn().Str("currency", currencyCode).Msg("exchange rate cache entry corrupt, reloading")
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("currency", currencyCode).Msg("exchange rate cache read failed, using database")
	}

	rate, err := c.next.Latest(ctx, currencyCode)
	if err != nil {
		return nil, err
	}
	if err := c.Put(ctx, rate); err != nil {
		log.Warn().Err(err).Str("currency", currencyCode).Msg("exchange rate cache write failed")
	}
	return rate, nil
}
