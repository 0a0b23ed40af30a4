package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PricingMode selects which margin regime applies to a quote.
type PricingMode string

const (
	PricingModeStandard PricingMode = "standard"
	PricingModeProject  PricingMode = "project"
)

// Valid reports whether m is a known pricing mode.
func (m PricingMode) Valid() bool {
	return m == PricingModeStandard || m == PricingModeProject
}

// MarginSettings holds the margin percentages of one pricing mode.
type MarginSettings struct {
	ManufacturingProfitPercentage decimal.Decimal `db:"manufacturing_profit_percentage" json:"manufacturingProfitPercentage"`
	BoughtoutProfitPercentage     decimal.Decimal `db:"boughtout_profit_percentage" json:"boughtoutProfitPercentage"`
	NegotiationMarginPercentage   decimal.Decimal `db:"negotiation_margin_percentage" json:"negotiationMarginPercentage"`
}

// GlobalMargins is a versioned snapshot of both margin regimes.
type GlobalMargins struct {
	Version   int            `json:"version"`
	Standard  MarginSettings `json:"standard"`
	Project   MarginSettings `json:"project"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// For returns the settings of the given mode.
func (g *GlobalMargins) For(mode PricingMode) (MarginSettings, bool) {
	switch mode {
	case PricingModeStandard:
		return g.Standard, true
	case PricingModeProject:
		return g.Project, true
	default:
		return MarginSettings{}, false
	}
}

// MarginRow is the storage shape of one margin_settings row.
type MarginRow struct {
	Mode    PricingMode `db:"mode"`
	Version int         `db:"version"`
	MarginSettings
	UpdatedAt time.Time `db:"updated_at"`
}

// ExchangeRate converts domestic amounts into CurrencyCode: foreign = domestic × Rate.
type ExchangeRate struct {
	ID           int             `db:"id" json:"-"`
	CurrencyCode string          `db:"currency_code" json:"currencyCode"`
	Rate         decimal.Decimal `db:"rate" json:"rate"`
	EffectiveAt  time.Time       `db:"effective_at" json:"effectiveAt"`
}

// Customer is the quote recipient. Customers billed in a currency other than
// the domestic one see converted amounts.
type Customer struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	CurrencyCode string    `db:"currency_code" json:"currencyCode"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

// IsDomestic reports whether the customer is billed in domesticCurrency.
func (c *Customer) IsDomestic(domesticCurrency string) bool {
	code := strings.TrimSpace(c.CurrencyCode)
	return code == "" || strings.EqualFold(code, domesticCurrency)
}
