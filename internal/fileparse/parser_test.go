package fileparse

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paisatrack/paisatrack/internal/bankformat"
	"github.com/paisatrack/paisatrack/internal/common"
	"github.com/paisatrack/paisatrack/internal/model"
)

const hdfcCSV = `Date,Narration,Chq./Ref.No.,Withdrawal Amt.,Deposit Amt.,Closing Balance
12/01/2024,UPI-ZOMATO-zomato@paytm,REF001,540.00,,10000.00
01/01/2024,NEFT CR ACME CORP SALARY,REF002,,"75,000.00",85000.00
`

func TestParseFileCSV(t *testing.T) {
	p := NewParser()

	result, err := p.ParseFile([]byte(hdfcCSV), "statement.csv")
	require.NoError(t, err)

	assert.Equal(t, bankformat.FormatHDFC, result.Format)
	require.Len(t, result.Rows, 2)

	withdrawal := result.Rows[0]
	assert.Equal(t, model.DirectionExpense, withdrawal.Direction)
	require.NotNil(t, withdrawal.Amount)
	assert.True(t, withdrawal.Amount.Equal(decimal.RequireFromString("540")))
	assert.Equal(t, "UPI-ZOMATO-zomato@paytm", withdrawal.Narration)

	deposit := result.Rows[1]
	assert.Equal(t, model.DirectionInflow, deposit.Direction)
	require.NotNil(t, deposit.Amount)
	assert.True(t, deposit.Amount.Equal(decimal.RequireFromString("75000")),
		"thousands separators must be stripped, got %s", deposit.Amount)
}

func TestParseFileErrors(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name     string
		data     []byte
		filename string
		wantErr  error
	}{
		{
			name:     "empty buffer",
			data:     nil,
			filename: "statement.csv",
			wantErr:  common.ErrEmptyFile,
		},
		{
			name:     "header only",
			data:     []byte("Date,Narration,Withdrawal Amt.,Deposit Amt.\n"),
			filename: "statement.csv",
			wantErr:  common.ErrNoDataRows,
		},
		{
			name:     "rows without resolvable amounts",
			data:     []byte("Date,Narration,Withdrawal Amt.,Deposit Amt.\n01/01/2024,OPENING BALANCE,,\n"),
			filename: "statement.csv",
			wantErr:  common.ErrNoDataRows,
		},
		{
			name:     "unsupported extension",
			data:     []byte("whatever"),
			filename: "statement.docx",
			wantErr:  common.ErrUnsupportedFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseFile(tt.data, tt.filename)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseFileSkipsLeadingBlankLines(t *testing.T) {
	p := NewParser()

	data := []byte("\n\n" + hdfcCSV)
	result, err := p.ParseFile(data, "statement.csv")
	require.NoError(t, err)
	assert.Equal(t, bankformat.FormatHDFC, result.Format)
	assert.Len(t, result.Rows, 2)
}

func TestParseFileUnknownHeadersFallBackToGeneric(t *testing.T) {
	p := NewParser()

	data := []byte("Posting Date,Transaction Details,Debit,Credit\n05/06/2024,POS AMAZON RETAIL,\"1,499.00\",\n")
	result, err := p.ParseFile(data, "statement.csv")
	require.NoError(t, err)
	assert.Equal(t, bankformat.FormatGeneric, result.Format)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, model.DirectionExpense, result.Rows[0].Direction)
}

// stubExtractor returns canned text so PDF parsing is testable without
// poppler installed.
type stubExtractor struct {
	text string
	err  error
	// captured arguments
	password string
}

func (s *stubExtractor) Extract(_ []byte, password string) (string, error) {
	s.password = password
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func TestParseFilePDF(t *testing.T) {
	extractor := &stubExtractor{text: `
ACME BANK STATEMENT                  Page 1 of 2

12/01/2024   UPI-ZOMATO-zomato@paytm            540.00 DR
13/01/2024   NEFT SALARY ACME CORP           75,000.00 CR
some footer line without a transaction
`}

	p := NewParser(WithTextExtractor(extractor), WithPDFPassword("s3cret"))

	result, err := p.ParseFile([]byte("%PDF-1.7"), "statement.pdf")
	require.NoError(t, err)

	assert.Equal(t, "s3cret", extractor.password)
	assert.Equal(t, bankformat.FormatGeneric, result.Format)
	require.Len(t, result.Rows, 2)

	assert.Equal(t, model.DirectionExpense, result.Rows[0].Direction)
	assert.True(t, result.Rows[0].Amount.Equal(decimal.RequireFromString("540")))
	assert.Equal(t, model.DirectionInflow, result.Rows[1].Direction)
	assert.True(t, result.Rows[1].Amount.Equal(decimal.RequireFromString("75000")))
}

func TestParseFilePDFPasswordErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "password required", err: common.ErrPasswordRequired, wantErr: common.ErrPasswordRequired},
		{name: "wrong password", err: common.ErrWrongPassword, wantErr: common.ErrWrongPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(WithTextExtractor(&stubExtractor{err: tt.err}))
			_, err := p.ParseFile([]byte("%PDF-1.7"), "statement.pdf")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseFilePDFNoMatchingLines(t *testing.T) {
	p := NewParser(WithTextExtractor(&stubExtractor{text: "nothing that looks like a transaction"}))
	_, err := p.ParseFile([]byte("%PDF-1.7"), "statement.pdf")
	assert.ErrorIs(t, err, common.ErrNoDataRows)
}
