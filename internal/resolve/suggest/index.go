// Package suggest proposes known SKUs that look like an unresolved one. It is
// advisory only and never takes part in resolution.
package suggest

import (
	"sort"

	"msku-service/internal/resolve/model"
)

type entry struct {
	m       model.Mapping
	compact string
	sorted  string
}

type Index struct {
	entries []entry
	inv     map[string]map[int]struct{} // trigram -> entry positions
}

func New(mappings []model.Mapping) *Index {
	idx := &Index{
		entries: make([]entry, 0, len(mappings)),
		inv:     make(map[string]map[int]struct{}),
	}
	for _, m := range mappings {
		c, s := forms(m.SKU)
		if c == "" {
			continue
		}
		pos := len(idx.entries)
		idx.entries = append(idx.entries, entry{m: m, compact: c, sorted: s})
		for g := range trigramSet(c) {
			bucket, ok := idx.inv[g]
			if !ok {
				bucket = make(map[int]struct{})
				idx.inv[g] = bucket
			}
			bucket[pos] = struct{}{}
		}
	}
	return idx
}

// Suggest returns up to limit known mappings whose SKU scores at least
// threshold against sku, best first. Ties are ordered by SKU, then marketplace.
func (idx *Index) Suggest(sku string, threshold float64, limit int) []model.Suggestion {
	c, s := forms(sku)
	if c == "" || limit <= 0 {
		return nil
	}

	seen := make(map[int]struct{})
	for g := range trigramSet(c) {
		for pos := range idx.inv[g] {
			seen[pos] = struct{}{}
		}
	}

	out := make([]model.Suggestion, 0, len(seen))
	for pos := range seen {
		e := idx.entries[pos]
		score := max(similarity(c, e.compact), similarity(s, e.sorted))
		if score < threshold {
			continue
		}
		out = append(out, model.Suggestion{
			SKU:         e.m.SKU,
			Marketplace: e.m.Marketplace,
			MSKU:        e.m.MSKU,
			Score:       score,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].SKU != out[j].SKU {
			return out[i].SKU < out[j].SKU
		}
		return out[i].Marketplace < out[j].Marketplace
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (idx *Index) Len() int { return len(idx.entries) }
