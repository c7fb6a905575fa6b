// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether money left or entered the account.
type Direction string

// Direction constants.
const (
	DirectionExpense Direction = "EXPENSE"
	DirectionInflow  Direction = "INFLOW"
)

// ClassifiedBy indicates which stage last set a row's classification fields.
type ClassifiedBy string

// Classification provenance constants.
const (
	ClassifiedByRule   ClassifiedBy = "RULE"
	ClassifiedByAI     ClassifiedBy = "AI"
	ClassifiedByManual ClassifiedBy = "MANUAL"
)

// RawRow is one statement line after format-specific extraction, before
// classification. Amount and Date are nil when the source row could not be
// resolved; such rows are dropped before they reach the classifier.
type RawRow struct {
	RawData   map[string]string
	Amount    *decimal.Decimal
	Date      *time.Time
	Direction Direction // empty when the format could not determine it
	Narration string
}

// ConfidenceScores holds per-field classification confidence in [0,1].
// A zero value means the field was not evaluated.
type ConfidenceScores struct {
	Amount        float64 `json:"amount,omitempty"`
	Date          float64 `json:"datetime,omitempty"`
	Direction     float64 `json:"type,omitempty"`
	Category      float64 `json:"category,omitempty"`
	Platform      float64 `json:"platform,omitempty"`
	PaymentMethod float64 `json:"payment_method,omitempty"`
}

// MeetsThreshold reports whether every field scored at or above the threshold.
func (c ConfidenceScores) MeetsThreshold(threshold float64) bool {
	return c.Amount >= threshold &&
		c.Date >= threshold &&
		c.Direction >= threshold &&
		c.Category >= threshold &&
		c.Platform >= threshold &&
		c.PaymentMethod >= threshold
}

// ClassifiedRow is a RawRow with classification fields attached.
type ClassifiedRow struct {
	RawRow
	Category      string
	Platform      string
	PaymentMethod string
	Notes         string
	Tags          []string
	Recurring     bool
	Confidence    ConfidenceScores
	ClassifiedBy  ClassifiedBy
}

// RowStatus tracks a persisted row through user review.
type RowStatus string

// Row status constants. A row only ever moves PENDING -> CONFIRMED or
// PENDING -> SKIPPED.
const (
	RowPending   RowStatus = "PENDING"
	RowConfirmed RowStatus = "CONFIRMED"
	RowSkipped   RowStatus = "SKIPPED"
)

// ImportRow is a classified row bound to an import session.
type ImportRow struct {
	ID        string
	SessionID string
	// Seq is the row's position within the source statement; listings
	// preserve it.
	Seq int
	ClassifiedRow
	Status RowStatus
	// Auto marks rows whose rule classification cleared the confidence
	// threshold on every field, needing no AI escalation or review.
	Auto            bool
	PostedExpenseID string // set once confirmed and written to the expense store
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
