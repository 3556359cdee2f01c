// Package ingest turns parsed file rows into engine inputs: lookup
// candidates, mapping records and resolved sales lines.
package ingest

import (
	"regexp"
	"strings"

	"msku-service/internal/resolve/model"
)

var (
	skuFields         = []string{"sku", "sku_id", "product_id", "item_id", "product_code"}
	mskuFields        = []string{"msku", "master_sku", "master sku"}
	marketplaceFields = []string{"marketplace", "channel", "store", "platform", "source"}
	productFields     = []string{"product", "name", "title", "product_name", "item_name", "description"}

	reSKUToken = regexp.MustCompile(`(?i)[A-Z0-9]+-[A-Z0-9]+`)
)

// Columns names the headers to read, overriding detection. A value may list
// alternatives separated by "|", e.g. "Seller SKU|Артикул".
type Columns struct {
	SKU         string
	Marketplace string
}

// Candidates extracts {sku, marketplace} pairs for bulk resolution. Rows
// without a recognisable SKU are dropped; a missing marketplace becomes
// defaultMarketplace.
func Candidates(rows []map[string]string, defaultMarketplace string) []model.BulkItem {
	return CandidatesWith(rows, Columns{}, defaultMarketplace)
}

// CandidatesWith is Candidates with explicit column choices.
func CandidatesWith(rows []map[string]string, cols Columns, defaultMarketplace string) []model.BulkItem {
	if len(rows) == 0 {
		return nil
	}
	keys := headerKeys(rows)
	skuKey := override(keys, cols.SKU)
	if skuKey == "" {
		// "msku" contains "sku"; never read the master column as the seller SKU
		skuKey = findField(keys, skuFields, findExact(keys, mskuFields))
	}
	mpKey := override(keys, cols.Marketplace)
	if mpKey == "" {
		mpKey = findField(keys, marketplaceFields)
	}

	out := make([]model.BulkItem, 0, len(rows))
	for _, row := range rows {
		sku := value(row, skuKey)
		if sku == "" {
			sku = skuFromProductInfo(row, keys)
		}
		if sku == "" {
			continue
		}
		mp := value(row, mpKey)
		if mp == "" {
			mp = defaultMarketplace
		}
		out = append(out, model.BulkItem{SKU: sku, Marketplace: mp})
	}
	return out
}

// skuFromProductInfo digs a SKU-looking token (ABC-123) out of name/title
// columns, then falls back to any *id* column with a value longer than 3.
func skuFromProductInfo(row map[string]string, keys []string) string {
	for _, f := range productFields {
		for _, k := range keys {
			if !strings.Contains(strings.ToLower(k), f) {
				continue
			}
			if v := value(row, k); v != "" {
				if tok := reSKUToken.FindString(v); tok != "" {
					return tok
				}
			}
			break
		}
	}
	for _, k := range keys {
		if strings.Contains(strings.ToLower(k), "id") {
			if v := value(row, k); len(v) > 3 {
				return v
			}
		}
	}
	return ""
}

// Mappings reads mapping records (sku, msku, marketplace) from a seed or
// import file. Incomplete rows are skipped.
func Mappings(rows []map[string]string) []model.Mapping {
	if len(rows) == 0 {
		return nil
	}
	keys := headerKeys(rows)
	mskuKey := findField(keys, mskuFields)
	skuKey := findField(keys, skuFields, mskuKey)
	mpKey := findField(keys, marketplaceFields)
	if skuKey == "" || mskuKey == "" || mpKey == "" {
		return nil
	}

	out := make([]model.Mapping, 0, len(rows))
	for _, row := range rows {
		m := model.Mapping{
			SKU:         value(row, skuKey),
			MSKU:        value(row, mskuKey),
			Marketplace: value(row, mpKey),
		}
		if m.SKU == "" || m.MSKU == "" || m.Marketplace == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}
