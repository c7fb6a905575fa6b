package fileparse

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/paisatrack/paisatrack/internal/common"
)

// parseXLSX extracts the header row and data records from the first sheet of
// a spreadsheet.
func parseXLSX(data []byte) ([]string, []map[string]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, common.ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	// Skip leading blank rows before the header; bank exports often carry a
	// title block above the actual table.
	start := 0
	for start < len(rows) && isBlankRecord(rows[start]) {
		start++
	}
	if start >= len(rows) {
		return nil, nil, common.ErrEmptyFile
	}

	headers := make([]string, len(rows[start]))
	for i, h := range rows[start] {
		headers[i] = strings.TrimSpace(h)
	}

	var records []map[string]string
	for _, rec := range rows[start+1:] {
		if isBlankRecord(rec) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		records = append(records, row)
	}

	return headers, records, nil
}
