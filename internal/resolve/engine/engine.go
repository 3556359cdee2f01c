// Package engine resolves marketplace SKUs to master SKUs through an exact
// (sku, marketplace) index backed by pattern rules derived from the mapping set.
package engine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"msku-service/internal/resolve/model"
)

type Engine struct {
	mu       sync.RWMutex
	log      zerolog.Logger
	mappings []model.Mapping
	exact    map[string]string // key(sku, marketplace) -> msku
	patterns []Pattern
}

// New builds an engine from the initial mapping set. A repeated
// (sku, marketplace) key fails with ErrDuplicateMapping.
func New(logger zerolog.Logger, mappings []model.Mapping) (*Engine, error) {
	e := &Engine{
		log:      logger,
		mappings: make([]model.Mapping, 0, len(mappings)),
		exact:    make(map[string]string, len(mappings)),
	}
	for _, m := range mappings {
		k := key(m.SKU, m.Marketplace)
		if _, ok := e.exact[k]; ok {
			return nil, duplicateErr(m.SKU, m.Marketplace)
		}
		e.exact[k] = m.MSKU
		e.mappings = append(e.mappings, m)
	}
	e.rebuild()
	return e, nil
}

func key(sku, marketplace string) string {
	return strings.ToLower(sku) + ":" + strings.ToLower(marketplace)
}

func duplicateErr(sku, marketplace string) error {
	return newError(ErrDuplicateMapping, fmt.Sprintf("Mapping already exists for SKU %s in %s", sku, marketplace))
}

// AddMapping inserts a mapping and rebuilds the pattern set. Empty fields are
// the caller's concern; only duplicate keys are rejected.
func (e *Engine) AddMapping(sku, msku, marketplace string) (model.Mapping, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	k := key(sku, marketplace)
	if _, ok := e.exact[k]; ok {
		return model.Mapping{}, duplicateErr(sku, marketplace)
	}
	m := model.Mapping{SKU: sku, MSKU: msku, Marketplace: marketplace}
	e.exact[k] = msku
	e.mappings = append(e.mappings, m)
	e.rebuild()
	return m, nil
}

// RemoveMapping deletes the mapping for (sku, marketplace) and rebuilds the
// pattern set. Returns a confirmation message.
func (e *Engine) RemoveMapping(sku, marketplace string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	k := key(sku, marketplace)
	if _, ok := e.exact[k]; !ok {
		return "", newError(ErrNotFound, fmt.Sprintf("No mapping exists for SKU %s in %s", sku, marketplace))
	}
	delete(e.exact, k)
	for i, m := range e.mappings {
		if strings.EqualFold(m.SKU, sku) && strings.EqualFold(m.Marketplace, marketplace) {
			e.mappings = append(e.mappings[:i], e.mappings[i+1:]...)
			break
		}
	}
	e.rebuild()
	return fmt.Sprintf("Mapping removed for SKU %s in %s", sku, marketplace), nil
}

// ReplaceMapping swaps the mapping keyed (oldSKU, oldMarketplace) for a new
// one at the same position, so rebuild order is unchanged.
func (e *Engine) ReplaceMapping(oldSKU, oldMarketplace, sku, msku, marketplace string) (model.Mapping, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	oldKey, newKey := key(oldSKU, oldMarketplace), key(sku, marketplace)
	if _, ok := e.exact[oldKey]; !ok {
		return model.Mapping{}, newError(ErrNotFound, fmt.Sprintf("No mapping exists for SKU %s in %s", oldSKU, oldMarketplace))
	}
	if _, ok := e.exact[newKey]; ok && newKey != oldKey {
		return model.Mapping{}, duplicateErr(sku, marketplace)
	}

	m := model.Mapping{SKU: sku, MSKU: msku, Marketplace: marketplace}
	for i := range e.mappings {
		if key(e.mappings[i].SKU, e.mappings[i].Marketplace) == oldKey {
			e.mappings[i] = m
			break
		}
	}
	delete(e.exact, oldKey)
	e.exact[newKey] = msku
	e.rebuild()
	return m, nil
}

// GetMsku resolves sku on marketplace. Exact matches win over patterns;
// among matching patterns the highest confidence wins, ties go to the
// earliest pattern in rebuild order.
func (e *Engine) GetMsku(sku, marketplace string) (model.Match, error) {
	if sku == "" {
		return model.Match{}, newError(ErrInvalidArgument, "SKU is required")
	}
	if marketplace == "" {
		return model.Match{}, newError(ErrInvalidArgument, "Marketplace is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if msku, ok := e.exact[key(sku, marketplace)]; ok {
		return model.Match{MSKU: msku, MatchType: model.MatchExact, Confidence: 1.0}, nil
	}
	if p, ok := e.findPattern(sku); ok {
		return model.Match{MSKU: p.MSKU, MatchType: model.MatchPattern, Confidence: p.Confidence, Pattern: p.Kind}, nil
	}
	return model.Match{}, newError(ErrNotFound, fmt.Sprintf("No mapping found for SKU %s in %s", sku, marketplace))
}

// first strictly-greater wins == stable sort by confidence desc, take [0]
func (e *Engine) findPattern(sku string) (Pattern, bool) {
	var (
		best  Pattern
		found bool
	)
	for _, p := range e.patterns {
		if !p.Match(sku) {
			continue
		}
		if !found || p.Confidence > best.Confidence {
			best, found = p, true
		}
	}
	return best, found
}

// BulkProcess resolves every item; per-item failures land in Details.
func (e *Engine) BulkProcess(items []model.BulkItem) model.BulkReport {
	res := model.BulkReport{Details: make([]model.BulkDetail, 0, len(items))}
	for _, it := range items {
		res.Processed++
		m, err := e.GetMsku(it.SKU, it.Marketplace)
		if err != nil {
			res.NotMatched++
			res.Details = append(res.Details, model.BulkDetail{
				SKU:         it.SKU,
				Marketplace: it.Marketplace,
				Error:       Message(err),
			})
			continue
		}
		res.Matched++
		conf := m.Confidence
		if conf == 0 {
			conf = 1.0
		}
		res.Details = append(res.Details, model.BulkDetail{
			SKU:         it.SKU,
			Marketplace: it.Marketplace,
			MSKU:        m.MSKU,
			MatchType:   m.MatchType,
			Confidence:  conf,
		})
	}
	return res
}

// rebuild regenerates every pattern from the current mappings. Groups are
// visited in first-appearance order of their msku. Caller holds the write lock.
func (e *Engine) rebuild() {
	order := make([]string, 0)
	groups := make(map[string][]model.Mapping)
	for _, m := range e.mappings {
		if _, ok := groups[m.MSKU]; !ok {
			order = append(order, m.MSKU)
		}
		groups[m.MSKU] = append(groups[m.MSKU], m)
	}

	patterns := make([]Pattern, 0)
	for _, msku := range order {
		if g := groups[msku]; len(g) >= 2 {
			patterns = append(patterns, groupPatterns(msku, g)...)
		}
	}
	e.patterns = patterns

	e.log.Debug().
		Int("mappings", len(e.mappings)).
		Int("groups", len(order)).
		Int("patterns", len(patterns)).
		Msg("patterns rebuilt")
}

// Patterns returns a copy of the derived pattern set in rebuild order.
func (e *Engine) Patterns() []Pattern {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Pattern, len(e.patterns))
	copy(out, e.patterns)
	return out
}

// Mappings returns a copy of the mapping set in insertion order.
func (e *Engine) Mappings() []model.Mapping {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.Mapping, len(e.mappings))
	copy(out, e.mappings)
	return out
}

// Has reports whether an exact mapping exists for (sku, marketplace).
func (e *Engine) Has(sku, marketplace string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.exact[key(sku, marketplace)]
	return ok
}

// DuplicateError is the error AddMapping returns for an existing key.
func DuplicateError(sku, marketplace string) error { return duplicateErr(sku, marketplace) }

func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.mappings)
}
