package fileparse

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/paisatrack/paisatrack/internal/bankformat"
	"github.com/paisatrack/paisatrack/internal/common"
	"github.com/paisatrack/paisatrack/internal/model"
)

// TextExtractor pulls plain text out of a PDF statement. Implementations
// must fail with common.ErrPasswordRequired or common.ErrWrongPassword when
// the document is protected, so callers can prompt for a password instead of
// reporting a hard failure.
type TextExtractor interface {
	Extract(data []byte, password string) (string, error)
}

// pdftotextExtractor shells out to poppler's pdftotext with layout
// preservation, which keeps statement tables column-aligned.
type pdftotextExtractor struct{}

func (e *pdftotextExtractor) Extract(data []byte, password string) (string, error) {
	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	args := []string{"-layout"}
	if password != "" {
		args = append(args, "-upw", password)
	}
	args = append(args, tmp.Name(), "-")

	var stdout, stderr bytes.Buffer
	cmd := exec.Command("pdftotext", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := stderr.String()
		switch {
		case strings.Contains(msg, "Incorrect password"):
			if password == "" {
				return "", common.ErrPasswordRequired
			}
			return "", common.ErrWrongPassword
		case strings.Contains(msg, "Encrypted"):
			return "", common.ErrPasswordRequired
		}
		return "", fmt.Errorf("pdftotext failed: %w: %s", err, msg)
	}

	return stdout.String(), nil
}

// pdfLineRe matches one statement line: date, narration, amount with an
// optional CR/DR suffix.
var pdfLineRe = regexp.MustCompile(
	`^\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}|\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{2,4})` +
		`\s+(.+?)\s+` +
		`(-?\d{1,3}(?:,\d{3})*\.\d{2})\s*(CR|DR|Cr|Dr)?\s*$`)

// parsePDF extracts text from a PDF statement and applies line-level
// heuristics. PDFs carry no header row, so the result is always the generic
// format.
func (p *Parser) parsePDF(data []byte, filename string) (*Result, error) {
	text, err := p.pdf.Extract(data, p.pdfPassword)
	if err != nil {
		return nil, err
	}

	var rows []model.RawRow
	for _, line := range strings.Split(text, "\n") {
		m := pdfLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		raw := pdfRowFromMatch(m)
		if raw.Amount == nil || raw.Date == nil {
			continue
		}
		rows = append(rows, raw)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrNoDataRows, filename)
	}

	slog.Info("Parsed PDF statement", "file", filename, "rows", len(rows))

	return &Result{Format: bankformat.FormatGeneric, Rows: rows}, nil
}

func pdfRowFromMatch(m []string) model.RawRow {
	row := map[string]string{
		"date":      m[1],
		"narration": m[2],
		"amount":    m[3],
	}

	raw := bankformat.MapGenericRow(row)

	// CR/DR suffix beats the sign convention when present.
	switch strings.ToUpper(m[4]) {
	case "CR":
		raw.Direction = model.DirectionInflow
	case "DR":
		raw.Direction = model.DirectionExpense
	}
	return raw
}
