package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus is the commercial status of a quote.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusApproved QuoteStatus = "approved"
	QuoteStatusRejected QuoteStatus = "rejected"
)

// Valid reports whether s is one of the four known statuses.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusApproved, QuoteStatusRejected:
		return true
	}
	return false
}

// ComponentCost is the resolved price of one component.
// Weight and UnitPrice are set for weight-priced components, FixedPrice otherwise.
type ComponentCost struct {
	Component  string           `json:"component"`
	Variant    string           `json:"variant,omitempty"`
	Material   string           `json:"material,omitempty"`
	Weight     *decimal.Decimal `json:"weight,omitempty"`
	UnitPrice  *decimal.Decimal `json:"unitPrice,omitempty"`
	FixedPrice *decimal.Decimal `json:"fixedPrice,omitempty"`
	Cost       decimal.Decimal  `json:"cost"`
}

// BodySubAssembly groups the pressure-boundary and trim components.
type BodySubAssembly struct {
	Body     ComponentCost   `json:"body"`
	Bonnet   ComponentCost   `json:"bonnet"`
	Plug     ComponentCost   `json:"plug"`
	Seat     ComponentCost   `json:"seat"`
	Stem     ComponentCost   `json:"stem"`
	Cage     *ComponentCost  `json:"cage,omitempty"`
	SealRing *ComponentCost  `json:"sealRing,omitempty"`
	Total    decimal.Decimal `json:"total"`
}

// ActuatorSubAssembly exists only for configurations carrying an actuator.
type ActuatorSubAssembly struct {
	Actuator  ComponentCost   `json:"actuator"`
	Handwheel *ComponentCost  `json:"handwheel,omitempty"`
	Total     decimal.Decimal `json:"total"`
}

// ModuleLine is one priced line of an optional module.
type ModuleLine struct {
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	IsDefault bool            `json:"isDefault,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

// ModuleBreakdown is the priced form of an optional module.
type ModuleBreakdown struct {
	Lines []ModuleLine    `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// IsEmpty reports whether the module has no lines and is hidden from display.
func (m *ModuleBreakdown) IsEmpty() bool {
	return len(m.Lines) == 0
}

// SellPrice is the margin-adjusted price of a product under one pricing mode.
type SellPrice struct {
	Mode                  PricingMode     `json:"mode"`
	Margins               MarginSettings  `json:"margins"`
	ManufacturingSell     decimal.Decimal `json:"manufacturingSell"`
	BoughtoutSell         decimal.Decimal `json:"boughtoutSell"`
	SellBeforeNegotiation decimal.Decimal `json:"sellBeforeNegotiation"`
	NegotiationAmount     decimal.Decimal `json:"negotiationAmount"`
	UnitSellPrice         decimal.Decimal `json:"unitSellPrice"`
	LineSellTotal         decimal.Decimal `json:"lineSellTotal"`
}

// QuoteProduct is the fully resolved and priced form of a ProductConfiguration.
type QuoteProduct struct {
	Configuration     ProductConfiguration `json:"configuration"`
	Body              BodySubAssembly      `json:"bodySubAssembly"`
	Actuator          *ActuatorSubAssembly `json:"actuatorSubAssembly,omitempty"`
	TubingFitting     ModuleBreakdown      `json:"tubingFitting"`
	Testing           ModuleBreakdown      `json:"testing"`
	Accessories       ModuleBreakdown      `json:"accessories"`
	ManufacturingCost decimal.Decimal      `json:"manufacturingCost"`
	BoughtoutItemCost decimal.Decimal      `json:"boughtoutItemCost"`
	UnitCost          decimal.Decimal      `json:"unitCost"`
	ProductTotalCost  decimal.Decimal      `json:"productTotalCost"`
	LineTotal         decimal.Decimal      `json:"lineTotal"`
	Sell              *SellPrice           `json:"sellPrice,omitempty"`
}

// BillableLineTotal is the amount the product contributes to a quote subtotal:
// the margin-adjusted line total when margins were applied, the cost line total otherwise.
func (p *QuoteProduct) BillableLineTotal() decimal.Decimal {
	if p.Sell != nil {
		return p.Sell.LineSellTotal
	}
	return p.LineTotal
}

// QuoteProducts is stored as a JSONB column.
type QuoteProducts []QuoteProduct

// Value implements driver.Valuer.
func (p QuoteProducts) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (p *QuoteProducts) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("quote products: unsupported scan type")
	}
	return json.Unmarshal(b, p)
}

// Quote is a priced commercial quote.
type Quote struct {
	ID                 int             `db:"id" json:"-"`
	QuoteNumber        string          `db:"quote_number" json:"quoteNumber"`
	CustomerID         int             `db:"customer_id" json:"customerId"`
	PricingMode        *PricingMode    `db:"pricing_mode" json:"pricingMode,omitempty"`
	MarginVersion      *int            `db:"margin_version" json:"marginVersion,omitempty"`
	Products           QuoteProducts   `db:"products" json:"products"`
	Subtotal           decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountPercentage decimal.Decimal `db:"discount_percentage" json:"discountPercentage"`
	DiscountAmount     decimal.Decimal `db:"discount_amount" json:"discountAmount"`
	TaxPercentage      decimal.Decimal `db:"tax_percentage" json:"taxPercentage"`
	TaxAmount          decimal.Decimal `db:"tax_amount" json:"taxAmount"`
	Total              decimal.Decimal `db:"total" json:"total"`
	Status             QuoteStatus     `db:"status" json:"status"`
	CreatedBy          string          `db:"created_by" json:"createdBy"`
	Notes              *string         `db:"notes" json:"notes,omitempty"`
	IsArchived         bool            `db:"is_archived" json:"isArchived"`
	CreatedAt          time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updatedAt"`
}

// QuoteFilter narrows a quote listing. Zero values are ignored. Page begins at 1.
type QuoteFilter struct {
	Status     QuoteStatus
	CustomerID int
	Archived   *bool
	Page       int
	Limit      int
}
