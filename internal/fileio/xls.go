package fileio

import (
	"bytes"
	"errors"
	"io"

	xls "github.com/extrame/xls"
)

// widest row wins; Row.LastCol() is unreliable on exported workbooks
func computeMaxCols(sheet *xls.WorkSheet) int {
	const probeMax = 256
	maxCols := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		r := sheet.Row(i)
		if r == nil {
			continue
		}
		for j := probeMax - 1; j >= maxCols; j-- {
			if normalizeCell(r.Col(j)) != "" {
				maxCols = j + 1
				break
			}
		}
	}
	return max(maxCols, 1)
}

func readXLS(r io.Reader, headerRow int) ([]map[string]string, error) {
	if headerRow <= 0 {
		return nil, errors.New("headerRow must be 1-based and >= 1")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	// marketplace exports are usually utf-8; older ones come as cp1252/cp1251
	var (
		wb      *xls.WorkBook
		lastErr error
	)
	for _, cs := range []string{"utf-8", "windows-1252", "windows-1251"} {
		wb, err = xls.OpenReader(bytes.NewReader(b), cs)
		if err == nil && wb != nil {
			break
		}
		lastErr = err
	}
	if wb == nil {
		if lastErr == nil {
			lastErr = errors.New("xls: failed to open workbook")
		}
		return nil, lastErr
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	maxCols := computeMaxCols(sheet)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		cols := make([]string, maxCols)
		if row != nil {
			for j := 0; j < maxCols; j++ {
				cols[j] = normalizeCell(row.Col(j))
			}
		}
		rows = append(rows, cols)
	}

	h := pickHeader(rows, headerRow)
	return rowsToMaps(rows, h, headerRow), nil
}
