package models

import "github.com/shopspring/decimal"

// ActuatorConfiguration distinguishes catalogue actuators from special builds.
type ActuatorConfiguration string

const (
	ActuatorStandard ActuatorConfiguration = "standard"
	ActuatorSpecial  ActuatorConfiguration = "special"
)

// ComponentMaterials names the material of each weight-priced component.
type ComponentMaterials struct {
	Body   string `json:"body"`
	Bonnet string `json:"bonnet"`
	Plug   string `json:"plug"`
	Seat   string `json:"seat"`
	Stem   string `json:"stem,omitempty"`
	Cage   string `json:"cage,omitempty"`
}

// ActuatorSelection is the optional actuator block of a configuration.
type ActuatorSelection struct {
	Type          string                `json:"type" binding:"required"`
	Series        string                `json:"series" binding:"required"`
	Model         string                `json:"model" binding:"required"`
	Configuration ActuatorConfiguration `json:"configuration" binding:"required,oneof=standard special"`
}

// ModuleItem is a free-form priced line of the tubing/fitting or testing module.
// Quantity defaults to 1 when omitted.
type ModuleItem struct {
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  *int            `json:"quantity,omitempty"`
}

// AccessoryItem is a bought-out accessory line. Quantity is always explicit.
type AccessoryItem struct {
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	IsDefault bool            `json:"isDefault"`
}

// ProductConfiguration is the input to pricing one product.
type ProductConfiguration struct {
	ProductType   string             `json:"productType" binding:"required"`
	SeriesID      string             `json:"seriesId" binding:"required"`
	Size          string             `json:"size" binding:"required"`
	Rating        string             `json:"rating" binding:"required"`
	Quantity      int                `json:"quantity" binding:"required"`
	EndConnection string             `json:"endConnection"`
	BonnetType    string             `json:"bonnetType"`
	PlugType      string             `json:"plugType"`
	SeatType      string             `json:"seatType"`
	StemType      string             `json:"stemType"`
	Materials     ComponentMaterials `json:"materials"`
	HasCage       bool               `json:"hasCage"`
	Actuator      *ActuatorSelection `json:"actuator,omitempty"`
	HasHandwheel  bool               `json:"hasHandwheel"`
	TubingFitting []ModuleItem       `json:"tubingFitting,omitempty"`
	Testing       []ModuleItem       `json:"testing,omitempty"`
	Accessories   []AccessoryItem    `json:"accessories,omitempty"`
}

// HasActuator reports whether the actuator block is present.
func (c *ProductConfiguration) HasActuator() bool {
	return c.Actuator != nil
}
