// Package fileparse decodes uploaded statement files into normalized rows.
// It selects a decoding strategy from the filename extension, detects the
// bank layout via the format registry, and drops rows whose amount or date
// could not be resolved.
package fileparse

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/paisatrack/paisatrack/internal/bankformat"
	"github.com/paisatrack/paisatrack/internal/common"
	"github.com/paisatrack/paisatrack/internal/model"
)

// Result is the outcome of parsing one uploaded file.
type Result struct {
	Format bankformat.ID
	Rows   []model.RawRow
}

// Parser decodes statement files. The zero value is not usable; construct
// with NewParser.
type Parser struct {
	pdf         TextExtractor
	pdfPassword string
}

// Option configures a Parser.
type Option func(*Parser)

// WithTextExtractor replaces the PDF text extraction collaborator.
func WithTextExtractor(e TextExtractor) Option {
	return func(p *Parser) { p.pdf = e }
}

// WithPDFPassword supplies the password for protected PDF statements.
func WithPDFPassword(password string) Option {
	return func(p *Parser) { p.pdfPassword = password }
}

// NewParser creates a statement file parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{pdf: &pdftotextExtractor{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile decodes the uploaded file and returns the detected bank format
// with the mapped rows. It fails with common.ErrEmptyFile on an empty
// buffer and common.ErrNoDataRows when a header parsed but no row survived
// mapping.
func (p *Parser) ParseFile(data []byte, filename string) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrEmptyFile, filename)
	}

	ext := strings.ToLower(filepath.Ext(filename))

	var headers []string
	var records []map[string]string
	var err error

	switch ext {
	case ".csv", ".txt":
		headers, records, err = parseCSV(data)
	case ".xls", ".xlsx":
		headers, records, err = parseXLSX(data)
	case ".pdf":
		return p.parsePDF(data, filename)
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFile, ext)
	}
	if err != nil {
		return nil, err
	}

	format := bankformat.Detect(headers)

	rows := make([]model.RawRow, 0, len(records))
	dropped := 0
	for _, record := range records {
		raw := format.Map(record)
		if raw.Amount == nil || raw.Date == nil {
			dropped++
			continue
		}
		rows = append(rows, raw)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrNoDataRows, filename)
	}

	slog.Info("Parsed statement file",
		"file", filename,
		"format", format.ID,
		"rows", len(rows),
		"dropped", dropped)

	return &Result{Format: format.ID, Rows: rows}, nil
}
