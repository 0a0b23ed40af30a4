package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/valvequote/quote_api/internal/models"
)

// tableDef whitelists the key columns of one reference table and how its
// rows map onto models.ReferenceEntry.
type tableDef struct {
	keys   []string
	fields string
}

const (
	pricedFields = `id, weight, fixed_price, false AS has_seal_ring, is_active`
	plugFields   = `id, weight, fixed_price, has_seal_ring, is_active`
	fixedFields  = `id, NULL::numeric AS weight, fixed_price, false AS has_seal_ring, is_active`
	flagFields   = `id, NULL::numeric AS weight, NULL::numeric AS fixed_price, false AS has_seal_ring, is_active`
)

var ssr = []string{models.ColSeries, models.ColSize, models.ColRating}

var referenceTables = map[models.ReferenceTable]tableDef{
	models.TableBodyWeights:     {keys: append(ssr[:3:3], models.ColEndConnection), fields: pricedFields},
	models.TableBonnetWeights:   {keys: append(ssr[:3:3], models.ColBonnetType), fields: pricedFields},
	models.TablePlugWeights:     {keys: ssr, fields: plugFields},
	models.TableSeatWeights:     {keys: ssr, fields: pricedFields},
	models.TableStemPrices:      {keys: append(ssr[:3:3], models.ColStemType), fields: pricedFields},
	models.TableCageWeights:     {keys: ssr, fields: pricedFields},
	models.TableCageEligibility: {keys: []string{models.ColSeries, models.ColSeatType}, fields: flagFields},
	models.TableSealRingPrices:  {keys: ssr, fields: fixedFields},
	models.TableActuatorPrices: {
		keys:   []string{models.ColActuatorType, models.ColActuatorSeries, models.ColActuatorModel, models.ColConfiguration},
		fields: fixedFields,
	},
	models.TableHandwheelPrices: {keys: []string{models.ColActuatorModel}, fields: fixedFields},
}

// ReferenceRepository reads the pricing reference tables.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository creates a new ReferenceRepository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// FindActive returns the active rows of table whose key columns equal key.
// Table and column names come from a fixed whitelist, values are bound.
func (r *ReferenceRepository) FindActive(ctx context.Context, table models.ReferenceTable, key models.LookupKey) ([]models.ReferenceEntry, error) {
	q, args, err := buildReferenceQuery(table, key)
	if err != nil {
		return nil, err
	}

	var rows []models.ReferenceEntry
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// FindMaterials returns the active materials named name.
func (r *ReferenceRepository) FindMaterials(ctx context.Context, name string) ([]models.Material, error) {
	const q = `SELECT id, name, price_per_kg, is_active FROM materials WHERE name = $1 AND is_active = true`

	var rows []models.Material
	if err := r.db.SelectContext(ctx, &rows, q, name); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListMaterials returns every active material ordered by name.
func (r *ReferenceRepository) ListMaterials(ctx context.Context) ([]models.Material, error) {
	const q = `SELECT id, name, price_per_kg, is_active FROM materials WHERE is_active = true ORDER BY name`

	var rows []models.Material
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

func buildReferenceQuery(table models.ReferenceTable, key models.LookupKey) (string, []interface{}, error) {
	def, ok := referenceTables[table]
	if !ok {
		return "", nil, fmt.Errorf("unknown reference table %q", table)
	}
	if len(key) != len(def.keys) {
		return "", nil, fmt.Errorf("%s: expected %d key columns, got %d", table, len(def.keys), len(key))
	}

	allowed := make(map[string]bool, len(def.keys))
	for _, c := range def.keys {
		allowed[c] = true
	}

	where := make([]string, 0, len(key)+1)
	args := make([]interface{}, 0, len(key))
	for i, f := range key {
		if !allowed[f.Column] {
			return "", nil, fmt.Errorf("%s: column %q is not a key column", table, f.Column)
		}
		delete(allowed, f.Column)
		where = append(where, fmt.Sprintf("%s = $%d", f.Column, i+1))
		args = append(args, f.Value)
	}
	where = append(where, "is_active = true")

	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s", def.fields, table, strings.Join(where, " AND "))
	return q, args, nil
}
