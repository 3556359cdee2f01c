package ingest

import (
	"regexp"
	"slices"
	"sort"
	"strings"
)

var reHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// normHeaderKey: lower case, punctuation and separators collapsed to one space.
// "Product_SKU" and "product sku" compare equal.
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(reHeaderJunk.ReplaceAllString(s, " ")), " ")
}

// headerKeys returns the union of keys over rows, sorted, so field detection
// does not depend on map iteration order.
func headerKeys(rows []map[string]string) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// findField looks for the first wanted name among keys: exact match on the
// normalized header first, then a header containing the name. Keys listed in
// exclude are never returned.
func findField(keys, wants []string, exclude ...string) string {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	for _, w := range wants {
		nw := normHeaderKey(w)
		for _, k := range keys {
			if !skip[k] && normHeaderKey(k) == nw {
				return k
			}
		}
	}
	for _, w := range wants {
		nw := normHeaderKey(w)
		for _, k := range keys {
			if !skip[k] && strings.Contains(normHeaderKey(k), nw) {
				return k
			}
		}
	}
	return ""
}

// findExact is findField without the substring pass.
func findExact(keys, wants []string) string {
	for _, w := range wants {
		nw := normHeaderKey(w)
		for _, k := range keys {
			if normHeaderKey(k) == nw {
				return k
			}
		}
	}
	return ""
}

// findAllExact returns every key whose normalized header equals one of
// wants, in wants order.
func findAllExact(keys, wants []string) []string {
	var out []string
	for _, w := range wants {
		nw := normHeaderKey(w)
		for _, k := range keys {
			if normHeaderKey(k) == nw && !slices.Contains(out, k) {
				out = append(out, k)
			}
		}
	}
	return out
}

// firstValue is the first non-empty cell among keys.
func firstValue(row map[string]string, keys []string) string {
	for _, k := range keys {
		if v := value(row, k); v != "" {
			return v
		}
	}
	return ""
}

// override resolves a user-supplied column name ("a|b" for alternatives)
// against keys.
func override(keys []string, want string) string {
	if strings.TrimSpace(want) == "" {
		return ""
	}
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}
	return findField(keys, alts)
}

func value(row map[string]string, key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSpace(row[key])
}
