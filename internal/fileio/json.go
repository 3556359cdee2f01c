package fileio

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// wrapper keys that commonly hold the row array in exported JSON
var jsonArrayKeys = []string{"items", "data", "products", "orders"}

// readJSON accepts a top-level array, an object wrapping one under a known
// key, or a single object.
func readJSON(r io.Reader) ([]map[string]string, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
		for _, k := range jsonArrayKeys {
			if arr, ok := v[k].([]any); ok {
				items = arr
				break
			}
		}
	default:
		return nil, fmt.Errorf("json: expected an object or array, got %T", doc)
	}

	out := make([]map[string]string, 0, len(items))
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		m := make(map[string]string, len(obj))
		for k, v := range obj {
			m[k] = stringify(v)
		}
		out = append(out, m)
	}
	return out, nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return normalizeCell(x)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
