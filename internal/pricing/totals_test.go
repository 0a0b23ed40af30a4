package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/utils"
)

func TestAggregateTotals(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		discount string
		tax      string
		subtotal string
		discAmt  string
		taxable  string
		taxAmt   string
		total    string
	}{
		{"plain subtotal", []string{"1000", "2500.50"}, "0", "0", "3500.50", "0", "3500.50", "0", "3500.50"},
		{"discount then tax", []string{"1000", "2500.50"}, "10", "18", "3500.50", "350.05", "3150.45", "567.08", "3717.53"},
		{"full discount", []string{"99.99"}, "100", "18", "99.99", "99.99", "0", "0", "0"},
		{"no lines", nil, "5", "18", "0", "0", "0", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := make([]decimal.Decimal, 0, len(tt.lines))
			for _, l := range tt.lines {
				lines = append(lines, dec(l))
			}
			got := AggregateTotals(lines, dec(tt.discount), dec(tt.tax))
			assertMoney(t, "subtotal", tt.subtotal, got.Subtotal)
			assertMoney(t, "discount", tt.discAmt, got.DiscountAmount)
			assertMoney(t, "taxable", tt.taxable, got.TaxableAmount)
			assertMoney(t, "tax", tt.taxAmt, got.TaxAmount)
			assertMoney(t, "total", tt.total, got.Total)
			assert.True(t, got.Total.Equal(got.Subtotal.Sub(got.DiscountAmount).Add(got.TaxAmount)))
		})
	}
}

func TestAggregateQuote_UsesBillableLines(t *testing.T) {
	cost := *pricedFull(t, 1)
	withSell, err := ApplyQuoteMargins(testMargins(), models.PricingModeStandard, []models.QuoteProduct{cost})
	require.NoError(t, err)

	got := AggregateQuote([]models.QuoteProduct{cost, withSell[0]}, decimal.Zero, decimal.Zero)
	// 53521.75 cost line plus 65389.80 sell line
	assertMoney(t, "subtotal", "118911.55", got.Subtotal)
}

func TestValidatePercentages(t *testing.T) {
	assert.NoError(t, ValidatePercentages(dec("0"), dec("0")))
	assert.NoError(t, ValidatePercentages(dec("100"), dec("28")))

	for _, c := range [][2]string{{"-1", "0"}, {"100.01", "0"}, {"0", "-0.5"}} {
		err := ValidatePercentages(dec(c[0]), dec(c[1]))
		assert.True(t, errors.Is(err, utils.ErrInvalidConfiguration), "discount=%s tax=%s", c[0], c[1])
	}
}

func TestApplyTotalsRoundTrip(t *testing.T) {
	totals := AggregateTotals([]decimal.Decimal{dec("1000"), dec("2500.50")}, dec("10"), dec("18"))
	var q models.Quote
	ApplyTotals(&q, totals)

	back := TotalsOf(&q)
	assertMoney(t, "taxable", "3150.45", back.TaxableAmount)
	assertMoney(t, "total", "3717.53", back.Total)
}

func TestConvertProduct_LeavesOriginalUntouched(t *testing.T) {
	p := pricedFull(t, 2)
	sell, err := ApplyMargins(testMargins(), models.PricingModeStandard, p)
	require.NoError(t, err)
	p.Sell = &sell

	bodyWeight := *p.Body.Body.Weight
	bodyUnit := *p.Body.Body.UnitPrice
	lineTotal := p.LineTotal
	firstAccessory := p.Accessories.Lines[0].Amount

	rate := dec("0.012")
	out := ConvertProduct(*p, rate)

	assertMoney(t, "original line", lineTotal.String(), p.LineTotal)
	assertMoney(t, "original unit price", bodyUnit.String(), *p.Body.Body.UnitPrice)
	assertMoney(t, "original accessory", firstAccessory.String(), p.Accessories.Lines[0].Amount)
	assertMoney(t, "original sell", "130779.60", p.Sell.LineSellTotal)

	assertMoney(t, "weight is not a price", bodyWeight.String(), *out.Body.Body.Weight)
	assertMoney(t, "converted unit price", "5.4", *out.Body.Body.UnitPrice)
	assertMoney(t, "converted line", lineTotal.Mul(rate).String(), out.LineTotal)
	assertMoney(t, "converted sell", "1569.3552", out.Sell.LineSellTotal)
	assert.NotSame(t, p.Actuator, out.Actuator)
	assert.NotSame(t, p.Sell, out.Sell)
}

func TestConvertQuote_ReciprocalRoundTrip(t *testing.T) {
	products := []models.QuoteProduct{*pricedFull(t, 1), *pricedFull(t, 4)}
	q := &models.Quote{Products: products}
	ApplyTotals(q, AggregateQuote(products, dec("7.5"), dec("18")))

	rate := dec("0.0119")
	converted, totals := ConvertQuote(q, rate)

	back := &models.Quote{Products: converted}
	ApplyTotals(back, totals)
	_, restored := ConvertQuote(back, decimal.NewFromInt(1).Div(rate))

	tolerance := dec("0.01")
	orig := TotalsOf(q)
	for name, pair := range map[string][2]decimal.Decimal{
		"subtotal": {orig.Subtotal, restored.Subtotal},
		"discount": {orig.DiscountAmount, restored.DiscountAmount},
		"tax":      {orig.TaxAmount, restored.TaxAmount},
		"total":    {orig.Total, restored.Total},
	} {
		assert.Truef(t, pair[0].Sub(pair[1]).Abs().LessThanOrEqual(tolerance), "%s: %s vs %s", name, pair[0], pair[1])
	}
	assert.True(t, restored.DiscountPercentage.Equal(dec("7.5")), "percentages are not converted")
}

func TestValidateRate(t *testing.T) {
	assert.NoError(t, ValidateRate(dec("0.012")))
	assert.True(t, errors.Is(ValidateRate(decimal.Zero), utils.ErrExchangeRateNotFound))
	assert.True(t, errors.Is(ValidateRate(dec("-1")), utils.ErrExchangeRateNotFound))
}

func TestFormatAmount(t *testing.T) {
	s, err := FormatAmount(dec("1234.5"), "USD")
	require.NoError(t, err)
	assert.Equal(t, "USD 1,234.50", s)

	s, err = FormatAmount(dec("1569.3552"), "EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR 1,569.36", s)

	s, err = FormatAmount(dec("12345678901234567.891"), "USD")
	require.NoError(t, err)
	assert.Equal(t, "USD 12,345,678,901,234,567.89", s, "large amounts keep their cents")

	s, err = FormatAmount(dec("-350.055"), "INR")
	require.NoError(t, err)
	assert.Equal(t, "INR -350.06", s)

	s, err = FormatAmount(dec("1500.4"), "JPY")
	require.NoError(t, err)
	assert.Equal(t, "JPY 1,500", s)

	_, err = FormatAmount(dec("1"), "XX")
	assert.Error(t, err)
}
