package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/utils"
)

// MarginRepository reads versioned margin settings.
type MarginRepository struct {
	db *sqlx.DB
}

// NewMarginRepository creates a new MarginRepository.
func NewMarginRepository(db *sqlx.DB) *MarginRepository {
	return &MarginRepository{db: db}
}

// Current returns the latest margin version as one snapshot. Both pricing
// modes must be present in that version.
func (r *MarginRepository) Current(ctx context.Context) (*models.GlobalMargins, error) {
	const q = `
        SELECT mode, version, manufacturing_profit_percentage, boughtout_profit_percentage,
               negotiation_margin_percentage, updated_at
        FROM margin_settings
        WHERE version = (SELECT MAX(version) FROM margin_settings)`

	var rows []models.MarginRow
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return marginsFromRows(rows)
}

// ByVersion returns the snapshot a quote was priced with.
func (r *MarginRepository) ByVersion(ctx context.Context, version int) (*models.GlobalMargins, error) {
	const q = `
        SELECT mode, version, manufacturing_profit_percentage, boughtout_profit_percentage,
               negotiation_margin_percentage, updated_at
        FROM margin_settings
        WHERE version = $1`

	var rows []models.MarginRow
	if err := r.db.SelectContext(ctx, &rows, q, version); err != nil {
		return nil, err
	}
	return marginsFromRows(rows)
}

func marginsFromRows(rows []models.MarginRow) (*models.GlobalMargins, error) {
	if len(rows) == 0 {
		return nil, utils.ErrMarginsNotConfigured
	}
	g := &models.GlobalMargins{Version: rows[0].Version}
	var haveStandard, haveProject bool
	for _, row := range rows {
		switch row.Mode {
		case models.PricingModeStandard:
			g.Standard, haveStandard = row.MarginSettings, true
		case models.PricingModeProject:
			g.Project, haveProject = row.MarginSettings, true
		}
		if row.UpdatedAt.After(g.UpdatedAt) {
			g.UpdatedAt = row.UpdatedAt
		}
	}
	if !haveStandard || !haveProject {
		return nil, fmt.Errorf("%w: version %d is missing a pricing mode", utils.ErrMarginsNotConfigured, g.Version)
	}
	return g, nil
}

// ExchangeRateRepository reads foreign currency rates.
type ExchangeRateRepository struct {
	db *sqlx.DB
}

// NewExchangeRateRepository creates a new ExchangeRateRepository.
func NewExchangeRateRepository(db *sqlx.DB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

// Latest returns the most recent effective rate for currencyCode.
func (r *ExchangeRateRepository) Latest(ctx context.Context, currencyCode string) (*models.ExchangeRate, error) {
	const q = `
        SELECT id, currency_code, rate, effective_at
        FROM exchange_rates
        WHERE currency_code = $1 AND effective_at <= NOW()
        ORDER BY effective_at DESC
        LIMIT 1`

	var rate models.ExchangeRate
	if err := r.db.GetContext(ctx, &rate, q, currencyCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", utils.ErrExchangeRateNotFound, currencyCode)
		}
		return nil, err
	}
	return &rate, nil
}

// LatestAll returns the current rate of every currency.
func (r *ExchangeRateRepository) LatestAll(ctx context.Context) ([]models.ExchangeRate, error) {
	const q = `
        SELECT DISTINCT ON (currency_code) id, currency_code, rate, effective_at
        FROM exchange_rates
        WHERE effective_at <= NOW()
        ORDER BY currency_code, effective_at DESC`

	var rates []models.ExchangeRate
	if err := r.db.SelectContext(ctx, &rates, q); err != nil {
		return nil, err
	}
	return rates, nil
}
