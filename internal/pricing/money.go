// Package pricing turns product configurations and reference price data into
// itemised product costs, margin-adjusted sell prices and quote totals.
//
// Everything here is pure apart from the reference reads issued through
// ReferenceSource, so the functions are safe for concurrent use.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds to two decimal places, halves away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComponentCost converts a weight (kg) and a material price per kg into a cost.
func ComponentCost(weight, unitPrice decimal.Decimal) decimal.Decimal {
	return Round2(weight.Mul(unitPrice))
}

// percentOf returns amount × pct / 100, unrounded.
func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// markup returns amount × (1 + pct/100) rounded to two places.
func markup(amount, pct decimal.Decimal) decimal.Decimal {
	return Round2(amount.Add(percentOf(amount, pct)))
}
