package fileio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readCSV reads CSV with headerRow (1-based), auto-detecting the encoding and
// converting to UTF-8. Handles UTF-8 (with or without BOM), UTF-16 with BOM,
// Windows-1252 and Windows-1251.
func readCSV(r io.Reader, headerRow int) ([]map[string]string, error) {
	br := bufio.NewReader(r)

	peek, _ := br.Peek(2048)
	cr := csv.NewReader(decoder(br, peek))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	h := pickHeader(rows, headerRow)
	return rowsToMaps(rows, h, headerRow), nil
}

func decoder(br *bufio.Reader, peek []byte) io.Reader {
	if len(peek) >= 2 && (peek[0] == 0xFF && peek[1] == 0xFE || peek[0] == 0xFE && peek[1] == 0xFF) {
		return transform.NewReader(br, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	}
	if len(peek) == 0 {
		return br
	}
	det, err := chardet.NewTextDetector().DetectBest(peek)
	if err != nil || det == nil {
		return br
	}
	switch strings.ToLower(det.Charset) {
	case "windows-1251":
		return transform.NewReader(br, charmap.Windows1251.NewDecoder())
	case "iso-8859-1", "windows-1252":
		return transform.NewReader(br, charmap.Windows1252.NewDecoder())
	default:
		// UTF-8; a leading BOM is dropped by normalizeCell
		return br
	}
}
