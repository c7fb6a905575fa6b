package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/paisatrack/paisatrack/internal/model"
)

// InsertExpense posts one expense record.
func (s *SQLiteStorage) InsertExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if expense == nil {
		return fmt.Errorf("%w: expense", errNilParam)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertExpenseTx(ctx, tx, expense); err != nil {
		return err
	}
	return tx.Commit()
}

// InsertExpenses posts a batch of expense records in one transaction.
func (s *SQLiteStorage) InsertExpenses(ctx context.Context, expenses []model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(expenses) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := range expenses {
		if err := insertExpenseTx(ctx, tx, &expenses[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertExpenseTx(ctx context.Context, tx *sql.Tx, expense *model.Expense) error {
	tags, err := json.Marshal(expense.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags for expense %s: %w", expense.ID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO expenses (
			id, user_id, amount, date, direction,
			category, platform, payment_method, notes, tags, source, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		expense.ID,
		expense.UserID,
		expense.Amount.String(),
		expense.Date,
		string(expense.Direction),
		expense.Category,
		expense.Platform,
		expense.PaymentMethod,
		expense.Notes,
		string(tags),
		expense.Source,
		expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense %s: %w", expense.ID, err)
	}
	return nil
}
