package fileparse

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/paisatrack/paisatrack/internal/common"
)

// parseCSV extracts the header row and data records from CSV text. Bank
// exports frequently have ragged rows, so field counts are not enforced.
func parseCSV(data []byte) ([]string, []map[string]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	// Skip leading blank lines before the header.
	start := 0
	for start < len(all) && isBlankRecord(all[start]) {
		start++
	}
	if start >= len(all) {
		return nil, nil, common.ErrEmptyFile
	}

	headers := make([]string, len(all[start]))
	for i, h := range all[start] {
		headers[i] = strings.TrimSpace(h)
	}

	var records []map[string]string
	for _, rec := range all[start+1:] {
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

func isBlankRecord(rec []string) bool {
	for _, field := range rec {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
