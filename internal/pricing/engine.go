package pricing

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/valvequote/quote_api/internal/models"
)

// Component names used in breakdowns and errors.
const (
	CompBody      = "body"
	CompBonnet    = "bonnet"
	CompPlug      = "plug"
	CompSeat      = "seat"
	CompStem      = "stem"
	CompCage      = "cage"
	CompSealRing  = "sealRing"
	CompActuator  = "actuator"
	CompHandwheel = "handwheel"
)

// Engine prices product configurations.
type Engine struct {
	resolver *Resolver
}

// NewEngine constructs an Engine over a reference source.
func NewEngine(source ReferenceSource) *Engine {
	return &Engine{resolver: NewResolver(source)}
}

// Resolver exposes the engine's reference resolver.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// PriceProduct resolves every selected component of cfg and returns the
// itemised, cost-basis priced product. Any missing reference entry aborts pricing.
func (e *Engine) PriceProduct(ctx context.Context, cfg models.ProductConfiguration) (*models.QuoteProduct, error) {
	if err := ValidateConfiguration(&cfg); err != nil {
		return nil, err
	}

	p := &pricer{resolver: e.resolver, materials: make(map[string]*models.Material)}

	body, err := p.body(ctx, &cfg)
	if err != nil {
		return nil, err
	}

	var actuator *models.ActuatorSubAssembly
	if cfg.HasActuator() {
		actuator, err = p.actuator(ctx, &cfg)
		if err != nil {
			return nil, err
		}
	}

	product := &models.QuoteProduct{
		Configuration: cfg,
		Body:          *body,
		Actuator:      actuator,
		TubingFitting: priceModule(cfg.TubingFitting),
		Testing:       priceModule(cfg.Testing),
		Accessories:   priceAccessories(cfg.Accessories),
	}
	Classify(product)
	return product, nil
}

// ValidateConfiguration rejects structurally impossible configurations.
func ValidateConfiguration(cfg *models.ProductConfiguration) error {
	if cfg.Quantity < 1 {
		return invalidConfig("", "quantity must be at least 1, got %d", cfg.Quantity)
	}
	required := []struct{ name, value string }{
		{"seriesId", cfg.SeriesID},
		{"size", cfg.Size},
		{"rating", cfg.Rating},
		{"endConnection", cfg.EndConnection},
		{"bonnetType", cfg.BonnetType},
		{"seatType", cfg.SeatType},
		{"stemType", cfg.StemType},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalidConfig("", "%s is required", r.name)
		}
	}
	if cfg.HasHandwheel && !cfg.HasActuator() {
		return invalidConfig(CompHandwheel, "handwheel requested without an actuator")
	}
	if a := cfg.Actuator; a != nil {
		if a.Configuration != models.ActuatorStandard && a.Configuration != models.ActuatorSpecial {
			return invalidConfig(CompActuator, "configuration must be standard or special, got %q", a.Configuration)
		}
	}
	for i, item := range cfg.TubingFitting {
		if err := checkModuleItem("tubingFitting", i, item.Title, item.UnitPrice, item.Quantity); err != nil {
			return err
		}
	}
	for i, item := range cfg.Testing {
		if err := checkModuleItem("testing", i, item.Title, item.UnitPrice, item.Quantity); err != nil {
			return err
		}
	}
	for i, item := range cfg.Accessories {
		qty := item.Quantity
		if err := checkModuleItem("accessories", i, item.Title, item.UnitPrice, &qty); err != nil {
			return err
		}
	}
	return nil
}

func checkModuleItem(module string, i int, title string, unitPrice decimal.Decimal, qty *int) error {
	if strings.TrimSpace(title) == "" {
		return invalidConfig(module, "item %d: title is required", i)
	}
	if unitPrice.IsNegative() {
		return invalidConfig(module, "item %d: unit price must not be negative", i)
	}
	if qty != nil && *qty < 1 {
		return invalidConfig(module, "item %d: quantity must be at least 1", i)
	}
	return nil
}

// pricer carries per-call state. Materials resolved once are reused across components.
type pricer struct {
	resolver  *Resolver
	materials map[string]*models.Material
}

func (p *pricer) body(ctx context.Context, cfg *models.ProductConfiguration) (*models.BodySubAssembly, error) {
	series, size, rating := cfg.SeriesID, cfg.Size, cfg.Rating
	var b models.BodySubAssembly
	var err error

	if b.Body, _, err = p.component(ctx, CompBody, models.TableBodyWeights,
		models.BodyKey(series, size, rating, cfg.EndConnection), cfg.EndConnection, cfg.Materials.Body); err != nil {
		return nil, err
	}
	if b.Bonnet, _, err = p.component(ctx, CompBonnet, models.TableBonnetWeights,
		models.BonnetKey(series, size, rating, cfg.BonnetType), cfg.BonnetType, cfg.Materials.Bonnet); err != nil {
		return nil, err
	}
	var plugEntry *models.ReferenceEntry
	if b.Plug, plugEntry, err = p.component(ctx, CompPlug, models.TablePlugWeights,
		models.PlugKey(series, size, rating), cfg.PlugType, cfg.Materials.Plug); err != nil {
		return nil, err
	}
	if b.Seat, _, err = p.component(ctx, CompSeat, models.TableSeatWeights,
		models.SeatKey(series, size, rating), cfg.SeatType, cfg.Materials.Seat); err != nil {
		return nil, err
	}
	if b.Stem, _, err = p.component(ctx, CompStem, models.TableStemPrices,
		models.StemKey(series, size, rating, cfg.StemType), cfg.StemType, cfg.Materials.Stem); err != nil {
		return nil, err
	}

	if cfg.HasCage {
		eligible, err := p.resolver.IsFlagged(ctx, models.TableCageEligibility, models.CageEligibilityKey(series, cfg.SeatType))
		if err != nil {
			return nil, withComponent(err, CompCage)
		}
		if eligible {
			cage, _, err := p.component(ctx, CompCage, models.TableCageWeights,
				models.CageKey(series, size, rating), "", cfg.Materials.Cage)
			if err != nil {
				return nil, err
			}
			b.Cage = &cage
		}
	}

	if plugEntry.HasSealRing {
		ring, err := p.fixed(ctx, CompSealRing, models.TableSealRingPrices, models.SealRingKey(series, size, rating), "")
		if err != nil {
			return nil, err
		}
		b.SealRing = &ring
	}

	total := b.Body.Cost.Add(b.Bonnet.Cost).Add(b.Plug.Cost).Add(b.Seat.Cost).Add(b.Stem.Cost)
	if b.Cage != nil {
		total = total.Add(b.Cage.Cost)
	}
	if b.SealRing != nil {
		total = total.Add(b.SealRing.Cost)
	}
	b.Total = total
	return &b, nil
}

func (p *pricer) actuator(ctx context.Context, cfg *models.ProductConfiguration) (*models.ActuatorSubAssembly, error) {
	a := cfg.Actuator
	act, err := p.fixed(ctx, CompActuator, models.TableActuatorPrices,
		models.ActuatorKey(a.Type, a.Series, a.Model, a.Configuration), a.Model)
	if err != nil {
		return nil, err
	}
	sub := &models.ActuatorSubAssembly{Actuator: act, Total: act.Cost}

	if cfg.HasHandwheel {
		hw, err := p.fixed(ctx, CompHandwheel, models.TableHandwheelPrices, models.HandwheelKey(a.Model), a.Model)
		if err != nil {
			return nil, err
		}
		sub.Handwheel = &hw
		sub.Total = sub.Total.Add(hw.Cost)
	}
	return sub, nil
}

// component prices a weight-or-fixed-price component.
func (p *pricer) component(ctx context.Context, name string, table models.ReferenceTable, key models.LookupKey, variant, material string) (models.ComponentCost, *models.ReferenceEntry, error) {
	entry, err := p.resolver.Resolve(ctx, table, key)
	if err != nil {
		return models.ComponentCost{}, nil, withComponent(err, name)
	}

	cc := models.ComponentCost{Component: name, Variant: variant}
	switch {
	case entry.IsWeightBased():
		if strings.TrimSpace(material) == "" {
			return cc, nil, invalidConfig(name, "material is required for a weight-priced component")
		}
		mat, err := p.material(ctx, material)
		if err != nil {
			return cc, nil, withComponent(err, name)
		}
		weight := entry.Weight.Decimal
		unit := mat.PricePerKg
		cc.Material = mat.Name
		cc.Weight = &weight
		cc.UnitPrice = &unit
		cc.Cost = ComponentCost(weight, unit)
	case entry.IsFixedPrice():
		price := entry.FixedPrice.Decimal
		cc.FixedPrice = &price
		cc.Cost = price
	default:
		return cc, nil, malformedEntry(name, table, key)
	}
	return cc, entry, nil
}

// fixed prices a component that must come from a fixed-price table.
func (p *pricer) fixed(ctx context.Context, name string, table models.ReferenceTable, key models.LookupKey, variant string) (models.ComponentCost, error) {
	entry, err := p.resolver.Resolve(ctx, table, key)
	if err != nil {
		return models.ComponentCost{}, withComponent(err, name)
	}
	if !entry.IsFixedPrice() {
		return models.ComponentCost{}, malformedEntry(name, table, key)
	}
	price := entry.FixedPrice.Decimal
	return models.ComponentCost{Component: name, Variant: variant, FixedPrice: &price, Cost: price}, nil
}

func (p *pricer) material(ctx context.Context, name string) (*models.Material, error) {
	if m, ok := p.materials[name]; ok {
		return m, nil
	}
	m, err := p.resolver.ResolveMaterial(ctx, name)
	if err != nil {
		return nil, err
	}
	p.materials[name] = m
	return m, nil
}

func malformedEntry(name string, table models.ReferenceTable, key models.LookupKey) error {
	pe := invalidConfig(name, "reference entry must carry exactly one of weight or fixed price").(*PricingError)
	pe.Table = table
	pe.Key = key
	return pe
}

// Module lines keep their exact amounts; the subtotal is rounded once.
func priceModule(items []models.ModuleItem) models.ModuleBreakdown {
	m := models.ModuleBreakdown{Lines: make([]models.ModuleLine, 0, len(items)), Total: decimal.Zero}
	for _, item := range items {
		qty := 1
		if item.Quantity != nil {
			qty = *item.Quantity
		}
		amount := item.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
		m.Lines = append(m.Lines, models.ModuleLine{
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  qty,
			Amount:    amount,
		})
		m.Total = m.Total.Add(amount)
	}
	m.Total = Round2(m.Total)
	return m
}

func priceAccessories(items []models.AccessoryItem) models.ModuleBreakdown {
	m := models.ModuleBreakdown{Lines: make([]models.ModuleLine, 0, len(items)), Total: decimal.Zero}
	for _, item := range items {
		amount := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		m.Lines = append(m.Lines, models.ModuleLine{
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			IsDefault: item.IsDefault,
			Amount:    amount,
		})
		m.Total = m.Total.Add(amount)
	}
	m.Total = Round2(m.Total)
	return m
}
