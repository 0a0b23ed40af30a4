package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/utils"
)

// QuoteTotals is the aggregated money summary of a quote.
type QuoteTotals struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	TaxableAmount      decimal.Decimal `json:"taxableAmount"`
	TaxPercentage      decimal.Decimal `json:"taxPercentage"`
	TaxAmount          decimal.Decimal `json:"taxAmount"`
	Total              decimal.Decimal `json:"total"`
}

// AggregateTotals sums line totals and applies discount then tax.
func AggregateTotals(lineTotals []decimal.Decimal, discountPct, taxPct decimal.Decimal) QuoteTotals {
	subtotal := Round2(decimal.Sum(decimal.Zero, lineTotals...))
	discount := Round2(percentOf(subtotal, discountPct))
	taxable := subtotal.Sub(discount)
	tax := Round2(percentOf(taxable, taxPct))

	return QuoteTotals{
		Subtotal:           subtotal,
		DiscountPercentage: discountPct,
		DiscountAmount:     discount,
		TaxableAmount:      taxable,
		TaxPercentage:      taxPct,
		TaxAmount:          tax,
		Total:              taxable.Add(tax),
	}
}

// AggregateQuote aggregates the billable line totals of products.
func AggregateQuote(products []models.QuoteProduct, discountPct, taxPct decimal.Decimal) QuoteTotals {
	lines := make([]decimal.Decimal, 0, len(products))
	for i := range products {
		lines = append(lines, products[i].BillableLineTotal())
	}
	return AggregateTotals(lines, discountPct, taxPct)
}

// ValidatePercentages checks discount and tax inputs.
func ValidatePercentages(discountPct, taxPct decimal.Decimal) error {
	if discountPct.IsNegative() || discountPct.GreaterThan(hundred) {
		return invalidConfig("discount", "discount percentage must be between 0 and 100, got %s", discountPct)
	}
	if taxPct.IsNegative() {
		return invalidConfig("tax", "tax percentage must not be negative, got %s", taxPct)
	}
	return nil
}

// ApplyTotals copies totals onto a quote.
func ApplyTotals(q *models.Quote, t QuoteTotals) {
	q.Subtotal = t.Subtotal
	q.DiscountPercentage = t.DiscountPercentage
	q.DiscountAmount = t.DiscountAmount
	q.TaxPercentage = t.TaxPercentage
	q.TaxAmount = t.TaxAmount
	q.Total = t.Total
}

// TotalsOf reads the totals stored on a quote.
func TotalsOf(q *models.Quote) QuoteTotals {
	return QuoteTotals{
		Subtotal:           q.Subtotal,
		DiscountPercentage: q.DiscountPercentage,
		DiscountAmount:     q.DiscountAmount,
		TaxableAmount:      q.Subtotal.Sub(q.DiscountAmount),
		TaxPercentage:      q.TaxPercentage,
		TaxAmount:          q.TaxAmount,
		Total:              q.Total,
	}
}

// ConvertAmount converts a domestic amount with rate. The result is not rounded;
// rounding happens when the amount is formatted for display.
func ConvertAmount(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate)
}

// ConvertTotals returns a converted copy of t. Percentages are left as is.
func ConvertTotals(t QuoteTotals, rate decimal.Decimal) QuoteTotals {
	return QuoteTotals{
		Subtotal:           ConvertAmount(t.Subtotal, rate),
		DiscountPercentage: t.DiscountPercentage,
		DiscountAmount:     ConvertAmount(t.DiscountAmount, rate),
		TaxableAmount:      ConvertAmount(t.TaxableAmount, rate),
		TaxPercentage:      t.TaxPercentage,
		TaxAmount:          ConvertAmount(t.TaxAmount, rate),
		Total:              ConvertAmount(t.Total, rate),
	}
}

// ConvertProduct returns a converted deep copy of p; p itself is not modified.
func ConvertProduct(p models.QuoteProduct, rate decimal.Decimal) models.QuoteProduct {
	out := p
	out.Body = convertBody(p.Body, rate)
	if p.Actuator != nil {
		a := models.ActuatorSubAssembly{
			Actuator: convertComponent(p.Actuator.Actuator, rate),
			Total:    ConvertAmount(p.Actuator.Total, rate),
		}
		a.Handwheel = convertComponentPtr(p.Actuator.Handwheel, rate)
		out.Actuator = &a
	}
	out.TubingFitting = convertModule(p.TubingFitting, rate)
	out.Testing = convertModule(p.Testing, rate)
	out.Accessories = convertModule(p.Accessories, rate)
	out.ManufacturingCost = ConvertAmount(p.ManufacturingCost, rate)
	out.BoughtoutItemCost = ConvertAmount(p.BoughtoutItemCost, rate)
	out.UnitCost = ConvertAmount(p.UnitCost, rate)
	out.ProductTotalCost = ConvertAmount(p.ProductTotalCost, rate)
	out.LineTotal = ConvertAmount(p.LineTotal, rate)
	if p.Sell != nil {
		s := *p.Sell
		s.ManufacturingSell = ConvertAmount(s.ManufacturingSell, rate)
		s.BoughtoutSell = ConvertAmount(s.BoughtoutSell, rate)
		s.SellBeforeNegotiation = ConvertAmount(s.SellBeforeNegotiation, rate)
		s.NegotiationAmount = ConvertAmount(s.NegotiationAmount, rate)
		s.UnitSellPrice = ConvertAmount(s.UnitSellPrice, rate)
		s.LineSellTotal = ConvertAmount(s.LineSellTotal, rate)
		out.Sell = &s
	}
	return out
}

// ConvertQuote returns a converted copy of a quote's products and totals.
func ConvertQuote(q *models.Quote, rate decimal.Decimal) ([]models.QuoteProduct, QuoteTotals) {
	products := make([]models.QuoteProduct, len(q.Products))
	for i := range q.Products {
		products[i] = ConvertProduct(q.Products[i], rate)
	}
	return products, ConvertTotals(TotalsOf(q), rate)
}

func convertBody(b models.BodySubAssembly, rate decimal.Decimal) models.BodySubAssembly {
	return models.BodySubAssembly{
		Body:     convertComponent(b.Body, rate),
		Bonnet:   convertComponent(b.Bonnet, rate),
		Plug:     convertComponent(b.Plug, rate),
		Seat:     convertComponent(b.Seat, rate),
		Stem:     convertComponent(b.Stem, rate),
		Cage:     convertComponentPtr(b.Cage, rate),
		SealRing: convertComponentPtr(b.SealRing, rate),
		Total:    ConvertAmount(b.Total, rate),
	}
}

func convertComponent(c models.ComponentCost, rate decimal.Decimal) models.ComponentCost {
	out := c
	if c.Weight != nil {
		w := *c.Weight
		out.Weight = &w
	}
	if c.UnitPrice != nil {
		v := ConvertAmount(*c.UnitPrice, rate)
		out.UnitPrice = &v
	}
	if c.FixedPrice != nil {
		v := ConvertAmount(*c.FixedPrice, rate)
		out.FixedPrice = &v
	}
	out.Cost = ConvertAmount(c.Cost, rate)
	return out
}

func convertComponentPtr(c *models.ComponentCost, rate decimal.Decimal) *models.ComponentCost {
	if c == nil {
		return nil
	}
	out := convertComponent(*c, rate)
	return &out
}

func convertModule(m models.ModuleBreakdown, rate decimal.Decimal) models.ModuleBreakdown {
	out := models.ModuleBreakdown{Lines: make([]models.ModuleLine, len(m.Lines)), Total: ConvertAmount(m.Total, rate)}
	for i, l := range m.Lines {
		l.UnitPrice = ConvertAmount(l.UnitPrice, rate)
		l.Amount = ConvertAmount(l.Amount, rate)
		out.Lines[i] = l
	}
	return out
}

// ValidateRate checks an exchange rate before it is used for display.
func ValidateRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return fmt.Errorf("%w: rate must be positive, got %s", utils.ErrExchangeRateNotFound, rate)
	}
	return nil
}

// FormatAmount renders amount in the ISO currency code with the currency's
// standard number of decimals and English digit grouping, e.g. "USD 1,234.50".
func FormatAmount(amount decimal.Decimal, code string) (string, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("invalid currency %q: %w", code, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	rounded := amount.Round(int32(scale))

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	whole := rounded.Truncate(0)
	if whole.GreaterThan(maxGroupedWhole) {
		return unit.String() + " " + sign + rounded.StringFixed(int32(scale)), nil
	}

	// Only the integer part goes through the printer, so no digits pass
	// through float64.
	p := message.NewPrinter(language.English)
	s := p.Sprintf("%v", number.Decimal(whole.IntPart()))
	if scale > 0 {
		frac := rounded.Sub(whole).StringFixed(int32(scale))
		s += frac[1:]
	}
	return unit.String() + " " + sign + s, nil
}

var maxGroupedWhole = decimal.NewFromInt(math.MaxInt64)
