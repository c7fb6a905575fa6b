package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paisatrack/paisatrack/internal/common"
	"github.com/paisatrack/paisatrack/internal/model"
)

// ConfirmAction is what the user decided about a row.
type ConfirmAction string

// Confirmation actions.
const (
	ActionConfirm ConfirmAction = "CONFIRM"
	ActionSkip    ConfirmAction = "SKIP"
)

// FieldOverrides carries user edits applied at confirmation time. Nil
// fields keep the stored value.
type FieldOverrides struct {
	Amount        *decimal.Decimal
	Date          *time.Time
	Direction     *model.Direction
	Category      *string
	Platform      *string
	PaymentMethod *string
	Notes         *string
	Tags          *[]string
}

// ConfirmRowInput is the payload for single-row confirmation.
type ConfirmRowInput struct {
	Action ConfirmAction
	Fields FieldOverrides
}

// ConfirmResult reports how many rows a bulk confirmation posted.
type ConfirmResult struct {
	Imported int
}

// ConfirmRow marks one row SKIPPED, or posts it as an expense and marks it
// CONFIRMED. Field overrides are merged onto the stored row before posting
// and persisted with the row.
func (s *Service) ConfirmRow(ctx context.Context, rowID string, input ConfirmRowInput, userID string) error {
	row, err := s.repo.GetRow(ctx, rowID)
	if err != nil {
		return err
	}
	// Ownership check goes through the row's session.
	if _, err := s.repo.GetSession(ctx, row.SessionID, userID); err != nil {
		return err
	}
	if row.Status != model.RowPending {
		return fmt.Errorf("%w: row %s is already %s", common.ErrConflict, rowID, row.Status)
	}

	if input.Action == ActionSkip {
		skipped := model.RowSkipped
		return s.repo.UpdateRow(ctx, rowID, RowUpdate{Status: &skipped})
	}
	if input.Action != ActionConfirm {
		return fmt.Errorf("%w: unknown action %q", common.ErrInvalidInput, input.Action)
	}

	merged := mergeOverrides(*row, input.Fields)

	expense := expenseFromRow(merged, userID)
	if err := s.repo.InsertExpense(ctx, &expense); err != nil {
		return fmt.Errorf("failed to post expense: %w", err)
	}

	confirmed := model.RowConfirmed
	upd := RowUpdate{
		Status:          &confirmed,
		PostedExpenseID: &expense.ID,
		Amount:          input.Fields.Amount,
		Date:            input.Fields.Date,
		Direction:       input.Fields.Direction,
		Category:        input.Fields.Category,
		Platform:        input.Fields.Platform,
		PaymentMethod:   input.Fields.PaymentMethod,
		Notes:           input.Fields.Notes,
		Tags:            input.Fields.Tags,
	}
	if overridesClassification(input.Fields) {
		manual := model.ClassifiedByManual
		upd.ClassifiedBy = &manual
	}
	return s.repo.UpdateRow(ctx, rowID, upd)
}

// ConfirmAll posts every pending row in scope as an expense, marks the rows
// CONFIRMED, and completes the session. A scope with nothing pending is a
// no-op that must not force-complete a session still holding other pending
// rows.
func (s *Service) ConfirmAll(ctx context.Context, sessionID string, scope Scope, userID string) (ConfirmResult, error) {
	session, err := s.repo.GetSession(ctx, sessionID, userID)
	if err != nil {
		return ConfirmResult{}, err
	}
	if session.Status == model.SessionParsing {
		return ConfirmResult{}, fmt.Errorf("%w: session %s is still parsing", common.ErrConflict, sessionID)
	}

	pending, err := s.repo.GetPendingRows(ctx, sessionID, scope)
	if err != nil {
		return ConfirmResult{}, err
	}
	if len(pending) == 0 {
		return ConfirmResult{Imported: 0}, nil
	}

	expenses := make([]model.Expense, len(pending))
	for i, row := range pending {
		expenses[i] = expenseFromRow(row, userID)
	}
	if err := s.repo.InsertExpenses(ctx, expenses); err != nil {
		return ConfirmResult{}, fmt.Errorf("failed to post expenses: %w", err)
	}

	confirmed := model.RowConfirmed
	for i, row := range pending {
		expenseID := expenses[i].ID
		if err := s.repo.UpdateRow(ctx, row.ID, RowUpdate{
			Status:          &confirmed,
			PostedExpenseID: &expenseID,
		}); err != nil {
			return ConfirmResult{}, fmt.Errorf("failed to confirm row %s: %w", row.ID, err)
		}
	}

	complete := model.SessionComplete
	if err := s.repo.UpdateSession(ctx, sessionID, SessionUpdate{Status: &complete}); err != nil {
		return ConfirmResult{}, fmt.Errorf("failed to complete session: %w", err)
	}

	return ConfirmResult{Imported: len(pending)}, nil
}

// mergeOverrides applies user edits onto a copy of the stored row.
func mergeOverrides(row model.ImportRow, fields FieldOverrides) model.ImportRow {
	if fields.Amount != nil {
		row.Amount = fields.Amount
	}
	if fields.Date != nil {
		row.Date = fields.Date
	}
	if fields.Direction != nil {
		row.Direction = *fields.Direction
	}
	if fields.Category != nil {
		row.Category = *fields.Category
	}
	if fields.Platform != nil {
		row.Platform = *fields.Platform
	}
	if fields.PaymentMethod != nil {
		row.PaymentMethod = *fields.PaymentMethod
	}
	if fields.Notes != nil {
		row.Notes = *fields.Notes
	}
	if fields.Tags != nil {
		row.Tags = *fields.Tags
	}
	return row
}

func overridesClassification(fields FieldOverrides) bool {
	return fields.Category != nil || fields.Platform != nil || fields.PaymentMethod != nil
}

// expenseFromRow builds the posted transaction record for a confirmed row.
// Unclassified fields default to "Other"; the source tag distinguishes
// statement imports from manual and AI-parsed single entries.
func expenseFromRow(row model.ImportRow, userID string) model.Expense {
	expense := model.Expense{
		ID:            uuid.NewString(),
		UserID:        userID,
		Direction:     row.Direction,
		Category:      orOther(row.Category),
		Platform:      orOther(row.Platform),
		PaymentMethod: orOther(row.PaymentMethod),
		Notes:         row.Notes,
		Tags:          row.Tags,
		Source:        model.SourceStatementImport,
		CreatedAt:     time.Now().UTC(),
	}
	if row.Amount != nil {
		expense.Amount = *row.Amount
	}
	if row.Date != nil {
		expense.Date = *row.Date
	}
	return expense
}

func orOther(s string) string {
	if s == "" {
		return "Other"
	}
	return s
}
