package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/valvequote/quote_api/internal/models"
)

// RateLoader lists the newest rate of every currency.
type RateLoader interface {
	LatestAll(ctx context.Context) ([]models.ExchangeRate, error)
}

// RateWriter stores one rate for fast display lookups.
type RateWriter interface {
	Put(ctx context.Context, rate *models.ExchangeRate) error
}

// ExchangeRateWorker periodically copies the newest exchange rates into the cache.
type ExchangeRateWorker struct {
	rates    RateLoader
	cache    RateWriter
	interval time.Duration
}

// NewExchangeRateWorker constructs an ExchangeRateWorker.
func NewExchangeRateWorker(rates RateLoader, cache RateWriter, interval time.Duration) *ExchangeRateWorker {
	return &ExchangeRateWorker{
		rates:    rates,
		cache:    cache,
		interval: interval,
	}
}

// Start begins the refresh loop and listens for context cancellation.
func (w *ExchangeRateWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting exchange rate worker")

	// Warm the cache before the first tick
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Exchange rate worker stopped")
			return
		}
	}
}

func (w *ExchangeRateWorker) run(ctx context.Context) int {
	start := time.Now()
	rates, err := w.rates.LatestAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load exchange rates")
		return 0
	}

	refreshed := 0
	for i := range rates {
		if !rates[i].Rate.IsPositive() {
			log.Warn().Str("currency", rates[i].CurrencyCode).Str("rate", rates[i].Rate.String()).Msg("Skipping non-positive exchange rate")
			continue
		}
		if err := w.cache.Put(ctx, &rates[i]); err != nil {
			log.Warn().Err(err).Str("currency", rates[i].CurrencyCode).Msg("Failed to cache exchange rate")
			continue
		}
		refreshed++
	}

	log.Info().Int("refreshed", refreshed).Int("total", len(rates)).Dur("duration", time.Since(start)).Msg("Exchange rates refreshed")
	return refreshed
}
