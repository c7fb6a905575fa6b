// Package bankformat maps raw statement column layouts onto normalized rows.
// Each supported bank declares a header signature; detection walks the
// registry in priority order and falls back to a generic best-effort format.
package bankformat

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paisatrack/paisatrack/internal/model"
)

// ID identifies a supported bank layout.
type ID string

// Known format IDs.
const (
	FormatHDFC    ID = "HDFC"
	FormatICICI   ID = "ICICI"
	FormatSBI     ID = "SBI"
	FormatAxis    ID = "AXIS"
	FormatKotak   ID = "KOTAK"
	FormatGeneric ID = "GENERIC"
)

// MapFunc converts one header-keyed statement row into a RawRow. Rows the
// format cannot resolve come back with a nil Amount or Date; the caller
// filters those out.
type MapFunc func(row map[string]string) model.RawRow

// Format pairs a header signature with a row mapping function.
type Format struct {
	ID        ID
	signature []string
	Map       MapFunc
}

// matches reports whether every signature entry appears as a substring of
// some header, case-sensitive as authored by the bank.
func (f Format) matches(headers []string) bool {
	for _, want := range f.signature {
		found := false
		for _, h := range headers {
			if strings.Contains(h, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// dateLayouts covers the date forms seen across supported banks.
var dateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"2/1/2006",
	"2-1-2006",
	"02/01/06",
	"02 Jan 2006",
	"2 Jan 2006",
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
}

// parseDate parses a statement date into midnight UTC. Returns nil when no
// known layout matches.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day
		}
	}
	return nil
}

// parseAmount parses a statement amount that may carry thousands separators,
// a currency marker, or surrounding whitespace. Returns nil for empty or
// unparseable values.
func parseAmount(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "INR")
	s = strings.TrimPrefix(s, "Rs.")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// mapDebitCredit resolves a debit/credit column pair. Debit wins when both
// are populated; a row with neither resolves to a nil amount and gets
// dropped by the caller.
func mapDebitCredit(row map[string]string, dateCol, narrationCol, debitCol, creditCol string) model.RawRow {
	raw := model.RawRow{
		RawData:   row,
		Narration: strings.TrimSpace(row[narrationCol]),
		Date:      parseDate(row[dateCol]),
	}

	if amt := parseAmount(row[debitCol]); amt != nil && !amt.IsZero() {
		raw.Amount = amt
		raw.Direction = model.DirectionExpense
		return raw
	}
	if amt := parseAmount(row[creditCol]); amt != nil && !amt.IsZero() {
		raw.Amount = amt
		raw.Direction = model.DirectionInflow
		return raw
	}
	return raw
}
