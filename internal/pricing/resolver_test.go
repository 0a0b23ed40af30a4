package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/utils"
)

func TestResolver_Resolve(t *testing.T) {
	key := models.PlugKey("S100", "2", "300")

	tests := []struct {
		name    string
		rows    []models.ReferenceEntry
		wantErr error
	}{
		{"single active row", []models.ReferenceEntry{{ID: 7, IsActive: true}}, nil},
		{"no rows", nil, utils.ErrReferenceNotFound},
		{"inactive rows are ignored", []models.ReferenceEntry{{ID: 7}}, utils.ErrReferenceNotFound},
		{"two active rows", []models.ReferenceEntry{{ID: 7, IsActive: true}, {ID: 8, IsActive: true}}, utils.ErrInvalidConfiguration},
		{"one active among inactive", []models.ReferenceEntry{{ID: 7}, {ID: 8, IsActive: true}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{entries: map[string][]models.ReferenceEntry{
				refID(models.TablePlugWeights, key): tt.rows,
			}}
			entry, err := NewResolver(src).Resolve(context.Background(), models.TablePlugWeights, key)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, entry)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.True(t, entry.IsActive)
			assert.Equal(t, models.TablePlugWeights, entry.Table)
		})
	}
}

func TestResolver_DuplicateIsDistinguishable(t *testing.T) {
	key := models.HandwheelKey("PA-200")
	src := &fakeSource{entries: map[string][]models.ReferenceEntry{
		refID(models.TableHandwheelPrices, key): {{ID: 1, IsActive: true}, {ID: 2, IsActive: true}},
	}}

	_, err := NewResolver(src).Resolve(context.Background(), models.TableHandwheelPrices, key)
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrDuplicateReference))
	assert.False(t, errors.Is(err, utils.ErrReferenceNotFound))
}

func TestResolver_SourceFailure(t *testing.T) {
	cause := errors.New("pq: connection reset")
	src := &fakeSource{err: cause}
	r := NewResolver(src)

	_, err := r.Resolve(context.Background(), models.TableSeatWeights, models.SeatKey("S100", "2", "300"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrDataUnavailable))
	assert.True(t, errors.Is(err, cause))

	_, err = r.IsFlagged(context.Background(), models.TableCageEligibility, models.CageEligibilityKey("S100", "METAL"))
	assert.True(t, errors.Is(err, utils.ErrDataUnavailable))

	_, err = r.ResolveMaterial(context.Background(), "WCB")
	assert.True(t, errors.Is(err, utils.ErrDataUnavailable))
}

func TestResolver_RejectsMalformedKeys(t *testing.T) {
	r := NewResolver(&fakeSource{entries: map[string][]models.ReferenceEntry{}})

	keys := map[string]models.LookupKey{
		"empty key":     {},
		"blank value":   models.PlugKey("S100", "", "300"),
		"leading space": models.PlugKey(" S100", "2", "300"),
		"trailing tab":  models.PlugKey("S100", "2", "300\t"),
	}
	for name, key := range keys {
		t.Run(name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), models.TablePlugWeights, key)
			require.Error(t, err)
			assert.True(t, errors.Is(err, utils.ErrInvalidConfiguration))
		})
	}
}

func TestResolver_IsFlagged(t *testing.T) {
	src := newCatalogue()
	r := NewResolver(src)

	ok, err := r.IsFlagged(context.Background(), models.TableCageEligibility, models.CageEligibilityKey("S100", "METAL"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsFlagged(context.Background(), models.TableCageEligibility, models.CageEligibilityKey("S100", "SOFT"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolver_ResolveMaterial(t *testing.T) {
	src := newCatalogue()
	src.materials["CF8M"] = []models.Material{{ID: 3, Name: "CF8M", IsActive: true}, {ID: 4, Name: "CF8M", IsActive: true}}
	r := NewResolver(src)

	m, err := r.ResolveMaterial(context.Background(), "WCB")
	require.NoError(t, err)
	assertMoney(t, "price per kg", "450.00", m.PricePerKg)

	_, err = r.ResolveMaterial(context.Background(), "A105")
	assert.True(t, errors.Is(err, utils.ErrReferenceNotFound))

	_, err = r.ResolveMaterial(context.Background(), "CF8M")
	assert.True(t, errors.Is(err, utils.ErrInvalidConfiguration))
}
