package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense sources.
const (
	SourceManual          = "manual"
	SourceAIParsed        = "ai_parsed"
	SourceStatementImport = "statement_import"
)

// Expense is a finished transaction record posted from a confirmed row.
type Expense struct {
	ID            string
	UserID        string
	Amount        decimal.Decimal
	Date          time.Time
	Direction     Direction
	Category      string
	Platform      string
	PaymentMethod string
	Notes         string
	Tags          []string
	Source        string
	CreatedAt     time.Time
}
