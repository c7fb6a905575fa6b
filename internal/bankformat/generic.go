package bankformat

import (
	"strings"

	"github.com/paisatrack/paisatrack/internal/model"
)

// genericFormat is the fallback for unrecognized header sets. It guesses
// columns by name and works with either a debit/credit pair or a single
// signed amount column.
var genericFormat = Format{
	ID:        FormatGeneric,
	signature: nil,
	Map:       mapGeneric,
}

// MapGenericRow applies the generic column-guessing mapper to a single row.
// Used by callers that build rows without a header table, such as PDF text
// extraction.
func MapGenericRow(row map[string]string) model.RawRow {
	return mapGeneric(row)
}

func mapGeneric(row map[string]string) model.RawRow {
	dateCol := guessColumn(row, "date", "txn date", "value date")
	narrationCol := guessColumn(row, "narration", "description", "particulars", "remarks", "details")
	debitCol := guessColumn(row, "debit", "withdrawal")
	creditCol := guessColumn(row, "credit", "deposit")

	if debitCol != "" || creditCol != "" {
		return mapDebitCredit(row, dateCol, narrationCol, debitCol, creditCol)
	}

	raw := model.RawRow{
		RawData:   row,
		Narration: strings.TrimSpace(row[narrationCol]),
		Date:      parseDate(row[dateCol]),
	}

	amountCol := guessColumn(row, "amount", "amt")
	amt := parseAmount(row[amountCol])
	if amt == nil || amt.IsZero() {
		return raw
	}

	// Signed single-amount layout: negative means money out.
	if amt.IsNegative() {
		neg := amt.Neg()
		raw.Amount = &neg
		raw.Direction = model.DirectionExpense
	} else {
		raw.Amount = amt
		raw.Direction = model.DirectionInflow
	}
	return raw
}

// guessColumn finds the first column whose lower-cased name contains one of
// the candidate fragments, trying candidates in order so more specific
// fragments win.
func guessColumn(row map[string]string, candidates ...string) string {
	for _, want := range candidates {
		for k := range row {
			if strings.Contains(strings.ToLower(k), want) {
				return k
			}
		}
	}
	return ""
}
