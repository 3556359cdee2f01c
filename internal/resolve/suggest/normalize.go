package suggest

import (
	"regexp"
	"sort"
	"strings"
)

// всё, что не буква/цифра, разделитель (WIDGET-BLUE, widget_blue, widget.blue)
var separators = regexp.MustCompile(`[^\p{L}\p{N}]+`)

func tokens(sku string) []string {
	return strings.Fields(separators.ReplaceAllString(strings.ToLower(sku), " "))
}

// compact joins the tokens without separators; sorted does the same after a
// lexicographic sort, so BLUE-WIDGET and WIDGET-BLUE compare equal.
func forms(sku string) (compact, sorted string) {
	t := tokens(sku)
	compact = strings.Join(t, "")
	sort.Strings(t)
	sorted = strings.Join(t, "")
	return compact, sorted
}

func trigramSet(s string) map[string]struct{} {
	m := make(map[string]struct{})
	if s == "" {
		return m
	}
	r := []rune(" " + s + " ")
	if len(r) < 3 {
		m[string(r)] = struct{}{}
		return m
	}
	for i := 0; i <= len(r)-3; i++ {
		m[string(r[i:i+3])] = struct{}{}
	}
	return m
}
