package engine

import (
	"regexp"
	"strings"

	"msku-service/internal/resolve/model"
)

const (
	confProductName = 0.7
	confAffix       = 0.8
	confVariant     = 0.6

	minAffixLen = 3
)

var (
	colorTerms = []string{"red", "blue", "green", "black", "white", "purple", "yellow", "orange"}
	sizeTerms  = []string{"small", "medium", "large", "xl", "xxl", "mini", "giant"}

	// PRODUCT-123 -> PRODUCT
	reProductMSKU = regexp.MustCompile(`^([A-Z]+)-\d+$`)
)

// Pattern is a derived matching rule. Term carries the kind's parameter: the
// product word (upper case), the lowercased prefix/suffix, or a vocabulary term.
type Pattern struct {
	MSKU       string            `json:"msku"`
	Kind       model.PatternKind `json:"kind"`
	Term       string            `json:"term"`
	Confidence float64           `json:"confidence"`
}

var matchers = map[model.PatternKind]func(term, sku string) bool{
	model.KindProductName: func(term, sku string) bool {
		return strings.Contains(strings.ToUpper(sku), term)
	},
	model.KindPrefix: func(term, sku string) bool {
		return strings.HasPrefix(strings.ToLower(sku), term)
	},
	model.KindSuffix: func(term, sku string) bool {
		return strings.HasSuffix(strings.ToLower(sku), term)
	},
	model.KindColorVariant: containsFold,
	model.KindSizeVariant:  containsFold,
}

func containsFold(term, sku string) bool {
	return strings.Contains(strings.ToLower(sku), term)
}

// Match reports whether sku satisfies the pattern. Unknown kinds never match.
func (p Pattern) Match(sku string) bool {
	fn, ok := matchers[p.Kind]
	if !ok {
		return false
	}
	return fn(p.Term, sku)
}

// groupPatterns derives the rules for one msku group, in fixed order:
// product-name, prefix, suffix, then colors and sizes.
func groupPatterns(msku string, group []model.Mapping) []Pattern {
	var out []Pattern

	if m := reProductMSKU.FindStringSubmatch(msku); m != nil {
		out = append(out, Pattern{MSKU: msku, Kind: model.KindProductName, Term: m[1], Confidence: confProductName})
	}

	skus := make([]string, len(group))
	for i, m := range group {
		skus[i] = strings.ToLower(m.SKU)
	}
	if p := longestCommonPrefix(skus); len([]rune(p)) >= minAffixLen {
		out = append(out, Pattern{MSKU: msku, Kind: model.KindPrefix, Term: p, Confidence: confAffix})
	}
	if s := longestCommonSuffix(skus); len([]rune(s)) >= minAffixLen {
		out = append(out, Pattern{MSKU: msku, Kind: model.KindSuffix, Term: s, Confidence: confAffix})
	}

	// Any color/size hit in the group emits a rule for every vocabulary term,
	// not only the ones present. Consumers rely on this recall; keep it.
	if hasVariantTerm(skus) {
		for _, t := range colorTerms {
			out = append(out, Pattern{MSKU: msku, Kind: model.KindColorVariant, Term: t, Confidence: confVariant})
		}
		for _, t := range sizeTerms {
			out = append(out, Pattern{MSKU: msku, Kind: model.KindSizeVariant, Term: t, Confidence: confVariant})
		}
	}
	return out
}

func hasVariantTerm(lowerSKUs []string) bool {
	for _, s := range lowerSKUs {
		for _, t := range colorTerms {
			if strings.Contains(s, t) {
				return true
			}
		}
		for _, t := range sizeTerms {
			if strings.Contains(s, t) {
				return true
			}
		}
	}
	return false
}

func longestCommonPrefix(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	prefix := []rune(ss[0])
	for _, s := range ss[1:] {
		r := []rune(s)
		n := 0
		for n < len(prefix) && n < len(r) && prefix[n] == r[n] {
			n++
		}
		prefix = prefix[:n]
		if n == 0 {
			return ""
		}
	}
	return string(prefix)
}

func longestCommonSuffix(ss []string) string {
	rev := make([]string, len(ss))
	for i, s := range ss {
		rev[i] = reverse(s)
	}
	return reverse(longestCommonPrefix(rev))
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
