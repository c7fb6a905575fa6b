package bankformat

import (
	"strings"

	"github.com/paisatrack/paisatrack/internal/model"
)

// hdfcFormat matches HDFC netbanking statement exports.
var hdfcFormat = Format{
	ID:        FormatHDFC,
	signature: []string{"Narration", "Withdrawal Amt", "Deposit Amt"},
	Map: func(row map[string]string) model.RawRow {
		return mapDebitCredit(row,
			findColumn(row, "Date"),
			findColumn(row, "Narration"),
			findColumn(row, "Withdrawal Amt"),
			findColumn(row, "Deposit Amt"))
	},
}

// iciciFormat matches ICICI statement exports.
var iciciFormat = Format{
	ID:        FormatICICI,
	signature: []string{"Transaction Remarks", "Withdrawal Amount", "Deposit Amount"},
	Map: func(row map[string]string) model.RawRow {
		return mapDebitCredit(row,
			findColumn(row, "Transaction Date"),
			findColumn(row, "Transaction Remarks"),
			findColumn(row, "Withdrawal Amount"),
			findColumn(row, "Deposit Amount"))
	},
}

// sbiFormat matches SBI statement exports.
var sbiFormat = Format{
	ID:        FormatSBI,
	signature: []string{"Txn Date", "Description", "Debit", "Credit"},
	Map: func(row map[string]string) model.RawRow {
		return mapDebitCredit(row,
			findColumn(row, "Txn Date"),
			findColumn(row, "Description"),
			findColumn(row, "Debit"),
			findColumn(row, "Credit"))
	},
}

// axisFormat matches Axis statement exports.
var axisFormat = Format{
	ID:        FormatAxis,
	signature: []string{"Tran Date", "Particulars", "Debit Amount", "Credit Amount"},
	Map: func(row map[string]string) model.RawRow {
		return mapDebitCredit(row,
			findColumn(row, "Tran Date"),
			findColumn(row, "Particulars"),
			findColumn(row, "Debit Amount"),
			findColumn(row, "Credit Amount"))
	},
}

// kotakFormat matches Kotak statement exports, which use a single amount
// column with a Dr/Cr indicator instead of a debit/credit pair.
var kotakFormat = Format{
	ID:        FormatKotak,
	signature: []string{"Transaction Date", "Description", "Amount", "Dr / Cr"},
	Map: func(row map[string]string) model.RawRow {
		raw := model.RawRow{
			RawData:   row,
			Narration: strings.TrimSpace(row[findColumn(row, "Description")]),
			Date:      parseDate(row[findColumn(row, "Transaction Date")]),
		}

		amt := parseAmount(row[findColumn(row, "Amount")])
		if amt == nil || amt.IsZero() {
			return raw
		}
		raw.Amount = amt

		indicator := strings.ToUpper(strings.TrimSpace(row[findColumn(row, "Dr / Cr")]))
		switch {
		case strings.HasPrefix(indicator, "DR"):
			raw.Direction = model.DirectionExpense
		case strings.HasPrefix(indicator, "CR"):
			raw.Direction = model.DirectionInflow
		case amt.IsNegative():
			neg := amt.Neg()
			raw.Amount = &neg
			raw.Direction = model.DirectionExpense
		default:
			raw.Direction = model.DirectionInflow
		}
		return raw
	},
}

// findColumn returns the first column key containing want as a substring.
// Bank exports pad or suffix header names inconsistently between file
// versions, so exact lookup is not reliable.
func findColumn(row map[string]string, want string) string {
	if _, ok := row[want]; ok {
		return want
	}
	for k := range row {
		if strings.Contains(k, want) {
			return k
		}
	}
	return want
}
