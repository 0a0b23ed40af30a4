package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/pricing"
	"github.com/valvequote/quote_api/internal/utils"
)

// PricingService prices configurations and applies the current margins.
type PricingService struct {
	engine  *pricing.Engine
	margins MarginStore
}

// NewPricingService constructs a PricingService.
func NewPricingService(engine *pricing.Engine, margins MarginStore) *PricingService {
	return &PricingService{engine: engine, margins: margins}
}

// PriceProduct returns the cost-basis breakdown of one configuration.
func (s *PricingService) PriceProduct(ctx context.Context, cfg models.ProductConfiguration) (*models.QuoteProduct, error) {
	p, err := s.engine.PriceProduct(ctx, cfg)
	if err != nil {
		log.Debug().Err(err).Str("series", cfg.SeriesID).Msg("product pricing failed")
		return nil, err
	}
	return p, nil
}

// PriceWithMargins prices one configuration and attaches the sell price of mode
// under the current margin snapshot.
func (s *PricingService) PriceWithMargins(ctx context.Context, cfg models.ProductConfiguration, mode models.PricingMode) (*models.QuoteProduct, *models.GlobalMargins, error) {
	if !mode.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", utils.ErrInvalidPricingMode, mode)
	}
	p, err := s.PriceProduct(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	margins, err := s.CurrentMargins(ctx)
	if err != nil {
		return nil, nil, err
	}
	sell, err := pricing.ApplyMargins(margins, mode, p)
	if err != nil {
		return nil, nil, err
	}
	p.Sell = &sell
	return p, margins, nil
}

// PriceQuote prices every configuration of a quote. With a mode, all products
// are priced under one margin snapshot whose version is returned.
func (s *PricingService) PriceQuote(ctx context.Context, cfgs []models.ProductConfiguration, mode *models.PricingMode) ([]models.QuoteProduct, *int, error) {
	if len(cfgs) == 0 {
		return nil, nil, fmt.Errorf("%w: a quote needs at least one product", utils.ErrInvalidConfiguration)
	}
	if mode != nil && !mode.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", utils.ErrInvalidPricingMode, *mode)
	}

	products := make([]models.QuoteProduct, 0, len(cfgs))
	for i, cfg := range cfgs {
		p, err := s.PriceProduct(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("product %d: %w", i+1, err)
		}
		products = append(products, *p)
	}
	if mode == nil {
		return products, nil, nil
	}

	margins, err := s.CurrentMargins(ctx)
	if err != nil {
		return nil, nil, err
	}
	priced, err := pricing.ApplyQuoteMargins(margins, *mode, products)
	if err != nil {
		return nil, nil, err
	}
	version := margins.Version
	return priced, &version, nil
}

// Totals aggregates raw line totals with discount and tax.
func (s *PricingService) Totals(lines []decimal.Decimal, discountPct, taxPct decimal.Decimal) (pricing.QuoteTotals, error) {
	if err := pricing.ValidatePercentages(discountPct, taxPct); err != nil {
		return pricing.QuoteTotals{}, err
	}
	return pricing.AggregateTotals(lines, discountPct, taxPct), nil
}

// CurrentMargins returns the latest margin snapshot.
func (s *PricingService) CurrentMargins(ctx context.Context) (*models.GlobalMargins, error) {
	m, err := s.margins.Current(ctx)
	if err != nil {
		if errors.Is(err, utils.ErrMarginsNotConfigured) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: loading margins: %v", utils.ErrDataUnavailable, err)
	}
	return m, nil
}

// MarginsByVersion returns an earlier snapshot, e.g. the one a quote was priced with.
func (s *PricingService) MarginsByVersion(ctx context.Context, version int) (*models.GlobalMargins, error) {
	m, err := s.margins.ByVersion(ctx, version)
	if err != nil {
		if errors.Is(err, utils.ErrMarginsNotConfigured) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: loading margins: %v", utils.ErrDataUnavailable, err)
	}
	return m, nil
}
