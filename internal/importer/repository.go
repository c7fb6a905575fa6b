package importer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paisatrack/paisatrack/internal/model"
)

// Scope selects which pending rows a bulk confirmation covers.
type Scope string

// Confirmation scopes.
const (
	ScopeAuto Scope = "AUTO" // only rows the pipeline auto-classified
	ScopeAll  Scope = "ALL"  // every pending row
)

// SessionUpdate is a partial update of an import session. Nil fields are
// left untouched.
type SessionUpdate struct {
	Status        *model.SessionStatus
	BankFormat    *string
	RowCount      *int
	AutoCount     *int
	ReviewCount   *int
	ProgressDone  *int
	ProgressTotal *int
	Error         *string
}

// RowUpdate is a partial update of an import row. Nil fields are left
// untouched.
type RowUpdate struct {
	Amount          *decimal.Decimal
	Date            *time.Time
	Direction       *model.Direction
	Category        *string
	Platform        *string
	PaymentMethod   *string
	Notes           *string
	Tags            *[]string
	Confidence      *model.ConfidenceScores
	ClassifiedBy    *model.ClassifiedBy
	Status          *model.RowStatus
	PostedExpenseID *string
}

// Repository is the persistence contract the import service depends on.
// Implementations must return errors wrapping common.ErrNotFound for missing
// or wrongly-owned records, distinguishable from generic failures.
type Repository interface {
	CreateSession(ctx context.Context, session *model.ImportSession) error
	UpdateSession(ctx context.Context, id string, upd SessionUpdate) error
	GetSession(ctx context.Context, id, userID string) (*model.ImportSession, error)
	ListSessions(ctx context.Context, userID string) ([]model.ImportSession, error)

	InsertRows(ctx context.Context, rows []model.ImportRow) error
	UpdateRow(ctx context.Context, id string, upd RowUpdate) error
	GetRow(ctx context.Context, id string) (*model.ImportRow, error)
	GetRowsBySession(ctx context.Context, sessionID string) ([]model.ImportRow, error)
	GetPendingRows(ctx context.Context, sessionID string, scope Scope) ([]model.ImportRow, error)

	InsertExpense(ctx context.Context, expense *model.Expense) error
	InsertExpenses(ctx context.Context, expenses []model.Expense) error
}
