package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/utils"
)

// Classify splits a product's costs into manufactured and bought-out categories
// and derives the unit and line totals. The split is fixed: accessories are
// bought out, everything else is manufactured.
func Classify(p *models.QuoteProduct) {
	manufacturing := p.Body.Total.Add(p.TubingFitting.Total).Add(p.Testing.Total)
	if p.Actuator != nil {
		manufacturing = manufacturing.Add(p.Actuator.Total)
	}
	p.ManufacturingCost = manufacturing
	p.BoughtoutItemCost = p.Accessories.Total
	p.UnitCost = p.ManufacturingCost.Add(p.BoughtoutItemCost)
	p.ProductTotalCost = p.UnitCost
	p.LineTotal = p.UnitCost.Mul(decimal.NewFromInt(int64(p.Configuration.Quantity)))
}

// SellPriceFor applies one margin regime to a classified product.
func SellPriceFor(settings models.MarginSettings, mode models.PricingMode, p *models.QuoteProduct) models.SellPrice {
	mfg := markup(p.ManufacturingCost, settings.ManufacturingProfitPercentage)
	bo := markup(p.BoughtoutItemCost, settings.BoughtoutProfitPercentage)
	before := mfg.Add(bo)
	unit := markup(before, settings.NegotiationMarginPercentage)

	return models.SellPrice{
		Mode:                  mode,
		Margins:               settings,
		ManufacturingSell:     mfg,
		BoughtoutSell:         bo,
		SellBeforeNegotiation: before,
		NegotiationAmount:     unit.Sub(before),
		UnitSellPrice:         unit,
		LineSellTotal:         unit.Mul(decimal.NewFromInt(int64(p.Configuration.Quantity))),
	}
}

// ApplyMargins selects the settings for mode from an explicit margins snapshot
// and prices the product under them.
func ApplyMargins(margins *models.GlobalMargins, mode models.PricingMode, p *models.QuoteProduct) (models.SellPrice, error) {
	if margins == nil {
		return models.SellPrice{}, utils.ErrMarginsNotConfigured
	}
	settings, ok := margins.For(mode)
	if !ok {
		return models.SellPrice{}, fmt.Errorf("%w: %q", utils.ErrInvalidPricingMode, mode)
	}
	if err := ValidateMarginSettings(settings); err != nil {
		return models.SellPrice{}, err
	}
	return SellPriceFor(settings, mode, p), nil
}

// ApplyQuoteMargins prices every product of one quote under a single regime.
// The products are copied; the inputs keep their cost-basis form.
func ApplyQuoteMargins(margins *models.GlobalMargins, mode models.PricingMode, products []models.QuoteProduct) ([]models.QuoteProduct, error) {
	out := make([]models.QuoteProduct, len(products))
	for i := range products {
		sell, err := ApplyMargins(margins, mode, &products[i])
		if err != nil {
			return nil, err
		}
		out[i] = products[i]
		out[i].Sell = &sell
	}
	return out, nil
}

// ValidateMarginSettings rejects negative percentages.
func ValidateMarginSettings(s models.MarginSettings) error {
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"manufacturingProfitPercentage", s.ManufacturingProfitPercentage},
		{"boughtoutProfitPercentage", s.BoughtoutProfitPercentage},
		{"negotiationMarginPercentage", s.NegotiationMarginPercentage},
	} {
		if f.value.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", utils.ErrMarginsNotConfigured, f.name)
		}
	}
	return nil
}
