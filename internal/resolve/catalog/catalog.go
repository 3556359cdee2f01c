// Package catalog keeps the persisted mapping records and the in-memory
// resolution engine in step. All writes go through here.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"msku-service/internal/resolve/engine"
	"msku-service/internal/resolve/model"
	"msku-service/internal/resolve/store"
	"msku-service/internal/resolve/suggest"
)

type Options struct {
	SuggestThreshold float64
	SuggestLimit     int
}

type Catalog struct {
	mu      sync.Mutex // serializes writers
	store   store.Store
	engine  *engine.Engine
	log     zerolog.Logger
	opts    Options
	now     func() time.Time
	suggest atomicIndex
}

// Open loads every stored record and builds the engine from them.
func Open(ctx context.Context, st store.Store, logger zerolog.Logger, opts Options) (*Catalog, error) {
	recs, err := st.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: load: %w", err)
	}
	mappings := make([]model.Mapping, len(recs))
	for i, r := range recs {
		mappings[i] = r.Mapping()
	}
	eng, err := engine.New(logger, mappings)
	if err != nil {
		return nil, fmt.Errorf("catalog: build engine: %w", err)
	}
	c := &Catalog{
		store:  st,
		engine: eng,
		log:    logger,
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
	}
	c.refreshSuggestions()
	logger.Info().Int("mappings", len(recs)).Int("patterns", len(eng.Patterns())).Msg("catalog loaded")
	return c, nil
}

func (c *Catalog) List(ctx context.Context) ([]model.Record, error) {
	return c.store.List(ctx)
}

func (c *Catalog) Get(ctx context.Context, id string) (model.Record, error) {
	rec, err := c.store.Get(ctx, id)
	return rec, storeErr(err)
}

// Create registers a new mapping. The record is persisted before the engine
// sees it, so lookups never return a mapping the store rejected.
func (c *Catalog) Create(ctx context.Context, sku, msku, marketplace string) (model.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.create(ctx, sku, msku, marketplace)
}

// create relies on c.mu: no other writer can take the key between the
// duplicate check and AddMapping.
func (c *Catalog) create(ctx context.Context, sku, msku, marketplace string) (model.Record, error) {
	if c.engine.Has(sku, marketplace) {
		return model.Record{}, engine.DuplicateError(sku, marketplace)
	}
	now := c.now()
	rec := model.Record{ID: uuid.NewString(), SKU: sku, MSKU: msku, Marketplace: marketplace, CreatedAt: now, UpdatedAt: now}
	if err := c.store.Create(ctx, rec); err != nil {
		return model.Record{}, storeErr(err)
	}
	if _, err := c.engine.AddMapping(sku, msku, marketplace); err != nil {
		c.rollbackCreate(ctx, rec.ID)
		return model.Record{}, err
	}
	c.refreshSuggestions()
	c.log.Info().Str("id", rec.ID).Str("sku", sku).Str("marketplace", marketplace).Str("msku", msku).Msg("mapping created")
	return rec, nil
}

// Update replaces sku/msku/marketplace of an existing record in place. The
// store is written first; the engine follows.
func (c *Catalog) Update(ctx context.Context, id, sku, msku, marketplace string) (model.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old, err := c.store.Get(ctx, id)
	if err != nil {
		return model.Record{}, storeErr(err)
	}
	rekeyed := !strings.EqualFold(old.SKU, sku) || !strings.EqualFold(old.Marketplace, marketplace)
	if rekeyed && c.engine.Has(sku, marketplace) {
		return model.Record{}, engine.Errorf(engine.ErrDuplicateMapping, "Update would create duplicate mapping")
	}

	upd := old
	upd.SKU, upd.MSKU, upd.Marketplace, upd.UpdatedAt = sku, msku, marketplace, c.now()
	if err := c.store.Update(ctx, upd); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return model.Record{}, engine.Errorf(engine.ErrDuplicateMapping, "Update would create duplicate mapping")
		}
		return model.Record{}, storeErr(err)
	}
	if _, err := c.engine.ReplaceMapping(old.SKU, old.Marketplace, sku, msku, marketplace); err != nil {
		if rerr := c.store.Update(ctx, old); rerr != nil {
			c.log.Error().Err(rerr).Str("id", id).Msg("rollback failed")
		}
		return model.Record{}, err
	}
	c.refreshSuggestions()
	c.log.Info().Str("id", id).Str("sku", sku).Str("marketplace", marketplace).Str("msku", msku).Msg("mapping updated")
	return upd, nil
}

// Delete removes a record from the store, then from the engine.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.store.Get(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if err := c.store.Delete(ctx, id); err != nil {
		return storeErr(err)
	}
	if _, err := c.engine.RemoveMapping(rec.SKU, rec.Marketplace); err != nil {
		// store and engine disagreed; the store is the source of truth
		c.log.Warn().Err(err).Str("id", id).Msg("engine had no entry for deleted mapping")
	}
	c.refreshSuggestions()
	c.log.Info().Str("id", id).Str("sku", rec.SKU).Str("marketplace", rec.Marketplace).Msg("mapping deleted")
	return nil
}

// Seed inserts mappings when the store is empty. Duplicates inside the seed
// are skipped with a warning. Returns the number inserted.
func (c *Catalog) Seed(ctx context.Context, mappings []model.Mapping) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.engine.Len() > 0 {
		return 0, nil
	}
	n := 0
	for _, m := range mappings {
		if _, err := c.create(ctx, m.SKU, m.MSKU, m.Marketplace); err != nil {
			if errors.Is(err, engine.ErrDuplicateMapping) {
				c.log.Warn().Str("sku", m.SKU).Str("marketplace", m.Marketplace).Msg("seed: duplicate skipped")
				continue
			}
			return n, err
		}
		n++
	}
	c.log.Info().Int("inserted", n).Msg("catalog seeded")
	return n, nil
}

// GetMsku resolves through the engine; the catalog also serves as an ingest.Resolver.
func (c *Catalog) GetMsku(sku, marketplace string) (model.Match, error) {
	return c.engine.GetMsku(sku, marketplace)
}

func (c *Catalog) Bulk(items []model.BulkItem) model.BulkReport {
	return c.engine.BulkProcess(items)
}

func (c *Catalog) Patterns() []engine.Pattern {
	return c.engine.Patterns()
}

// Suggest proposes known SKUs resembling an unresolved one.
func (c *Catalog) Suggest(sku string) []model.Suggestion {
	return c.suggest.load().Suggest(sku, c.opts.SuggestThreshold, c.opts.SuggestLimit)
}

func (c *Catalog) rollbackCreate(ctx context.Context, id string) {
	if err := c.store.Delete(ctx, id); err != nil {
		c.log.Error().Err(err).Str("id", id).Msg("rollback failed")
	}
}

func (c *Catalog) refreshSuggestions() {
	c.suggest.store(suggest.New(c.engine.Mappings()))
}

// storeErr maps store sentinels onto the engine taxonomy.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return engine.Errorf(engine.ErrNotFound, "Mapping not found")
	case errors.Is(err, store.ErrDuplicate):
		return engine.Errorf(engine.ErrDuplicateMapping, "Mapping already exists")
	default:
		return err
	}
}
