// Package fileio turns uploaded spreadsheets and JSON exports into rows keyed
// by header: []map[header]value.
package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

type FileType string

const (
	TypeCSV     FileType = "csv"
	TypeExcel   FileType = "excel"
	TypeJSON    FileType = "json"
	TypeUnknown FileType = "unknown"
)

// DetectType classifies a file by extension, falling back to its MIME type.
func DetectType(filename, mime string) FileType {
	name := strings.ToLower(filename)
	mime = strings.ToLower(mime)
	switch {
	case strings.HasSuffix(name, ".csv") || mime == "text/csv":
		return TypeCSV
	case strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xls") ||
		strings.Contains(mime, "spreadsheet") || strings.Contains(mime, "excel"):
		return TypeExcel
	case strings.HasSuffix(name, ".json") || mime == "application/json":
		return TypeJSON
	default:
		return TypeUnknown
	}
}

// ReadAnyMaps picks a reader by extension. headerRow is 1-based and ignored
// for JSON.
func ReadAnyMaps(r io.Reader, filename string, headerRow int) ([]map[string]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r, headerRow)
	case ".xls":
		return readXLS(r, headerRow)
	case ".csv":
		return readCSV(r, headerRow)
	case ".json":
		return readJSON(r)
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
}

// pickHeader takes the header row, naming blank cells "Column N".
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	for i, v := range h {
		v = normalizeCell(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// rowsToMaps converts rows below the header into maps, dropping blank rows.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []map[string]string {
	start := max(headerRow, 1)
	var out []map[string]string
	for r := start; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c, h := range headers {
			var v string
			if c < len(rec) {
				v = normalizeCell(rec[c])
			}
			if v != "" {
				empty = false
			}
			m[h] = v
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}

var cellSpaces = strings.NewReplacer("\u00A0", " ", "\u202F", " ", "\uFEFF", "")

// normalizeCell trims a cell and replaces NBSP/NNBSP, dropping a BOM.
func normalizeCell(s string) string {
	return strings.TrimSpace(cellSpaces.Replace(s))
}
