package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/utils"
)

// ReferenceSource is the read side of the reference data store.
// FindActive returns every active row matching all key fields exactly.
// A non-nil error means the store could not answer, never "no rows".
type ReferenceSource interface {
	FindActive(ctx context.Context, table models.ReferenceTable, key models.LookupKey) ([]models.ReferenceEntry, error)
	FindMaterials(ctx context.Context, name string) ([]models.Material, error)
}

// Resolver applies the single-active-match policy on top of a ReferenceSource.
type Resolver struct {
	source ReferenceSource
}

// NewResolver constructs a Resolver.
func NewResolver(source ReferenceSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the one active entry for key.
func (r *Resolver) Resolve(ctx context.Context, table models.ReferenceTable, key models.LookupKey) (*models.ReferenceEntry, error) {
	if err := checkKey(table, key); err != nil {
		return nil, err
	}

	rows, err := r.source.FindActive(ctx, table, key)
	if err != nil {
		return nil, &PricingError{Table: table, Key: key, Err: utils.ErrDataUnavailable, Cause: err}
	}

	active := rows[:0:0]
	for _, row := range rows {
		if row.IsActive {
			active = append(active, row)
		}
	}

	switch len(active) {
	case 0:
		return nil, &PricingError{Table: table, Key: key, Err: utils.ErrReferenceNotFound}
	case 1:
		entry := active[0]
		entry.Table = table
		return &entry, nil
	default:
		return nil, &PricingError{
			Table: table,
			Key:   key,
			Err:   utils.ErrDuplicateReference,
			Cause: fmt.Errorf("%d active entries", len(active)),
		}
	}
}

// IsFlagged reports whether a flag table holds an active row for key.
// No row means false, not an error.
func (r *Resolver) IsFlagged(ctx context.Context, table models.ReferenceTable, key models.LookupKey) (bool, error) {
	if err := checkKey(table, key); err != nil {
		return false, err
	}
	rows, err := r.source.FindActive(ctx, table, key)
	if err != nil {
		return false, &PricingError{Table: table, Key: key, Err: utils.ErrDataUnavailable, Cause: err}
	}
	for _, row := range rows {
		if row.IsActive {
			return true, nil
		}
	}
	return false, nil
}

// ResolveMaterial returns the one active material called name.
func (r *Resolver) ResolveMaterial(ctx context.Context, name string) (*models.Material, error) {
	key := models.LookupKey{{Column: "name", Value: name}}
	if err := checkKey(models.TableMaterials, key); err != nil {
		return nil, err
	}

	rows, err := r.source.FindMaterials(ctx, name)
	if err != nil {
		return nil, &PricingError{Table: models.TableMaterials, Key: key, Err: utils.ErrDataUnavailable, Cause: err}
	}

	var found []models.Material
	for _, m := range rows {
		if m.IsActive {
			found = append(found, m)
		}
	}
	switch len(found) {
	case 0:
		return nil, &PricingError{Table: models.TableMaterials, Key: key, Err: utils.ErrReferenceNotFound}
	case 1:
		return &found[0], nil
	default:
		return nil, &PricingError{
			Table: models.TableMaterials,
			Key:   key,
			Err:   utils.ErrDuplicateReference,
			Cause: fmt.Errorf("%d active materials", len(found)),
		}
	}
}

// checkKey rejects empty keys and values that are blank or carry surrounding whitespace.
func checkKey(table models.ReferenceTable, key models.LookupKey) error {
	if len(key) == 0 {
		return &PricingError{Table: table, Key: key, Err: utils.ErrInvalidConfiguration, Cause: fmt.Errorf("empty lookup key")}
	}
	for _, f := range key {
		if f.Value == "" || strings.TrimSpace(f.Value) != f.Value {
			return &PricingError{
				Table: table,
				Key:   key,
				Err:   utils.ErrInvalidConfiguration,
				Cause: fmt.Errorf("%s must be a non-empty trimmed value", f.Column),
			}
		}
	}
	return nil
}
