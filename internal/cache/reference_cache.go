package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/pricing"
)

// Store is the key/value subset of Redis used by the caches.
// Get returns redis.Nil on a miss.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

// ReferenceCache is a read-through cache in front of a pricing.ReferenceSource.
// Redis failures fall back to the source; only non-empty answers are cached,
// so a missing entry is always confirmed against the database.
type ReferenceCache struct {
	store Store
	next  pricing.ReferenceSource
	ttl   time.Duration
}

// NewReferenceCache creates a new ReferenceCache.
func NewReferenceCache(store Store, next pricing.ReferenceSource, ttl time.Duration) *ReferenceCache {
	return &ReferenceCache{store: store, next: next, ttl: ttl}
}

const referencePrefix = "ref:"

// keyEntries query-escapes every column and value so distinct lookups can
// never collapse onto the same Redis key.
func (c *ReferenceCache) keyEntries(table models.ReferenceTable, key models.LookupKey) string {
	parts := make([]string, len(key))
	for i, f := range key {
		parts[i] = url.QueryEscape(f.Column) + "=" + url.QueryEscape(f.Value)
	}
	return fmt.Sprintf(referencePrefix+"%s:%s", table, strings.Join(parts, "&"))
}

func (c *ReferenceCache) keyMaterial(name string) string {
	return referencePrefix + "materials:" + url.QueryEscape(name)
}

// FindActive implements pricing.ReferenceSource.
func (c *ReferenceCache) FindActive(ctx context.Context, table models.ReferenceTable, key models.LookupKey) ([]models.ReferenceEntry, error) {
	ck := c.keyEntries(table, key)

	var cached []models.ReferenceEntry
	if c.load(ctx, ck, &cached) {
		return cached, nil
	}

	rows, err := c.next.FindActive(ctx, table, key)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		c.save(ctx, ck, rows)
	}
	return rows, nil
}

// FindMaterials implements pricing.ReferenceSource.
func (c *ReferenceCache) FindMaterials(ctx context.Context, name string) ([]models.Material, error) {
	ck := c.keyMaterial(name)

	var cached []models.Material
	if c.load(ctx, ck, &cached) {
		return cached, nil
	}

	rows, err := c.next.FindMaterials(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		c.save(ctx, ck, rows)
	}
	return rows, nil
}

// Flush drops every cached reference lookup. Run after migrations so rows
// cached by a previous deployment cannot outlive a schema or seed change.
func (c *ReferenceCache) Flush(ctx context.Context) (int, error) {
	n, err := c.store.DeleteByPrefix(ctx, referencePrefix)
	if err != nil {
		return n, fmt.Errorf("flush reference cache: %w", err)
	}
	return n, nil
}

// load reports whether dst was filled from Redis.
func (c *ReferenceCache) load(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("reference cache read failed, using database")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("reference cache entry corrupt, using database")
		return false
	}
	return true
}

func (c *ReferenceCache) save(ctx context.Context, key string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("reference cache encode failed")
		return
	}
	if err := c.store.Set(ctx, key, string(b), c.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("reference cache write failed")
	}
}
