package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ReferenceTable names one pricing reference table.
type ReferenceTable string

const (
	TableBodyWeights     ReferenceTable = "body_weights"
	TableBonnetWeights   ReferenceTable = "bonnet_weights"
	TablePlugWeights     ReferenceTable = "plug_weights"
	TableSeatWeights     ReferenceTable = "seat_weights"
	TableStemPrices      ReferenceTable = "stem_prices"
	TableCageWeights     ReferenceTable = "cage_weights"
	TableCageEligibility ReferenceTable = "cage_eligibility"
	TableSealRingPrices  ReferenceTable = "seal_ring_prices"
	TableActuatorPrices  ReferenceTable = "actuator_prices"
	TableHandwheelPrices ReferenceTable = "handwheel_prices"
	TableMaterials       ReferenceTable = "materials"
)

// Key columns shared by the reference tables.
const (
	ColSeries         = "series_id"
	ColSize           = "size"
	ColRating         = "rating"
	ColEndConnection  = "end_connection"
	ColBonnetType     = "bonnet_type"
	ColStemType       = "stem_type"
	ColSeatType       = "seat_type"
	ColActuatorType   = "actuator_type"
	ColActuatorSeries = "actuator_series"
	ColActuatorModel  = "actuator_model"
	ColConfiguration  = "configuration"
)

// ReferenceEntry is one active row of a pricing reference table.
// Priced tables carry either Weight (kg) or FixedPrice, never both.
// Flag tables (cage eligibility) carry neither.
type ReferenceEntry struct {
	ID          int                 `db:"id" json:"id"`
	Table       ReferenceTable      `db:"-" json:"table"`
	Weight      decimal.NullDecimal `db:"weight" json:"weight"`
	FixedPrice  decimal.NullDecimal `db:"fixed_price" json:"fixedPrice"`
	HasSealRing bool                `db:"has_seal_ring" json:"hasSealRing"`
	IsActive    bool                `db:"is_active" json:"isActive"`
}

// IsWeightBased reports whether the entry prices by weight.
func (e *ReferenceEntry) IsWeightBased() bool {
	return e.Weight.Valid && !e.FixedPrice.Valid
}

// IsFixedPrice reports whether the entry carries a fixed price.
func (e *ReferenceEntry) IsFixedPrice() bool {
	return e.FixedPrice.Valid && !e.Weight.Valid
}

// Material is a priced raw material referenced by name from a configuration.
type Material struct {
	ID         int             `db:"id" json:"id"`
	Name       string          `db:"name" json:"name"`
	PricePerKg decimal.Decimal `db:"price_per_kg" json:"pricePerKg"`
	IsActive   bool            `db:"is_active" json:"isActive"`
}

// KeyField is one column/value pair of a lookup key.
type KeyField struct {
	Column string
	Value  string
}

// LookupKey is an ordered composite key for a reference table. Values are
// matched exactly; callers trim before building a key.
type LookupKey []KeyField

// String renders the key for logs and error messages.
func (k LookupKey) String() string {
	parts := make([]string, 0, len(k))
	for _, f := range k {
		parts = append(parts, fmt.Sprintf("%s=%s", f.Column, f.Value))
	}
	return strings.Join(parts, ",")
}

func seriesSizeRating(series, size, rating string) LookupKey {
	return LookupKey{
		{Column: ColSeries, Value: series},
		{Column: ColSize, Value: size},
		{Column: ColRating, Value: rating},
	}
}

// BodyKey builds the body weight key.
func BodyKey(series, size, rating, endConnection string) LookupKey {
	return append(seriesSizeRating(series, size, rating), KeyField{Column: ColEndConnection, Value: endConnection})
}

// BonnetKey builds the bonnet weight key.
func BonnetKey(series, size, rating, bonnetType string) LookupKey {
	return append(seriesSizeRating(series, size, rating), KeyField{Column: ColBonnetType, Value: bonnetType})
}

// PlugKey builds the plug weight key.
func PlugKey(series, size, rating string) LookupKey {
	return seriesSizeRating(series, size, rating)
}

// SeatKey builds the seat weight key.
func SeatKey(series, size, rating string) LookupKey {
	return seriesSizeRating(series, size, rating)
}

// StemKey builds the stem key. Stem rows are either weight based or fixed price.
func StemKey(series, size, rating, stemType string) LookupKey {
	return append(seriesSizeRating(series, size, rating), KeyField{Column: ColStemType, Value: stemType})
}

// CageKey builds the cage weight key.
func CageKey(series, size, rating string) LookupKey {
	return seriesSizeRating(series, size, rating)
}

// CageEligibilityKey builds the key of the series/seat-type eligibility flag.
func CageEligibilityKey(series, seatType string) LookupKey {
	return LookupKey{
		{Column: ColSeries, Value: series},
		{Column: ColSeatType, Value: seatType},
	}
}

// SealRingKey builds the seal ring fixed price key.
func SealRingKey(series, size, rating string) LookupKey {
	return seriesSizeRating(series, size, rating)
}

// ActuatorKey builds the actuator fixed price key.
func ActuatorKey(actuatorType, series, model string, cfg ActuatorConfiguration) LookupKey {
	return LookupKey{
		{Column: ColActuatorType, Value: actuatorType},
		{Column: ColActuatorSeries, Value: series},
		{Column: ColActuatorModel, Value: model},
		{Column: ColConfiguration, Value: string(cfg)},
	}
}

// HandwheelKey builds the handwheel fixed price key.
func HandwheelKey(actuatorModel string) LookupKey {
	return LookupKey{{Column: ColActuatorModel, Value: actuatorModel}}
}
