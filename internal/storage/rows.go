package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paisatrack/paisatrack/internal/common"
	"github.com/paisatrack/paisatrack/internal/importer"
	"github.com/paisatrack/paisatrack/internal/model"
)

// InsertRows persists all of a session's classified rows in one transaction.
func (s *SQLiteStorage) InsertRows(ctx context.Context, rows []model.ImportRow) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO import_rows (
			id, session_id, seq, raw_data, amount, date, direction, narration,
			category, platform, payment_method, notes, tags, recurring,
			confidence, classified_by, status, auto, posted_expense_id,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		rawData, err := json.Marshal(row.RawData)
		if err != nil {
			return fmt.Errorf("failed to marshal raw data for row %s: %w", row.ID, err)
		}
		tags, err := json.Marshal(row.Tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags for row %s: %w", row.ID, err)
		}
		confidence, err := json.Marshal(row.Confidence)
		if err != nil {
			return fmt.Errorf("failed to marshal confidence for row %s: %w", row.ID, err)
		}

		var amount string
		if row.Amount != nil {
			amount = row.Amount.String()
		}
		var date time.Time
		if row.Date != nil {
			date = *row.Date
		}

		if _, err := stmt.ExecContext(ctx,
			row.ID,
			row.SessionID,
			row.Seq,
			string(rawData),
			amount,
			date,
			string(row.Direction),
			row.Narration,
			row.Category,
			row.Platform,
			row.PaymentMethod,
			row.Notes,
			string(tags),
			row.Recurring,
			string(confidence),
			string(row.ClassifiedBy),
			string(row.Status),
			row.Auto,
			row.PostedExpenseID,
			row.CreatedAt,
			row.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert row %s: %w", row.ID, err)
		}
	}

	return tx.Commit()
}

// UpdateRow applies a partial update; nil fields are untouched.
func (s *SQLiteStorage) UpdateRow(ctx context.Context, id string, upd importer.RowUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	set := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Amount != nil {
		set = append(set, "amount = ?")
		args = append(args, upd.Amount.String())
	}
	if upd.Date != nil {
		set = append(set, "date = ?")
		args = append(args, *upd.Date)
	}
	if upd.Direction != nil {
		set = append(set, "direction = ?")
		args = append(args, string(*upd.Direction))
	}
	if upd.Category != nil {
		set = append(set, "category = ?")
		args = append(args, *upd.Category)
	}
	if upd.Platform != nil {
		set = append(set, "platform = ?")
		args = append(args, *upd.Platform)
	}
	if upd.PaymentMethod != nil {
		set = append(set, "payment_method = ?")
		args = append(args, *upd.PaymentMethod)
	}
	if upd.Notes != nil {
		set = append(set, "notes = ?")
		args = append(args, *upd.Notes)
	}
	if upd.Tags != nil {
		tags, err := json.Marshal(*upd.Tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags: %w", err)
		}
		set = append(set, "tags = ?")
		args = append(args, string(tags))
	}
	if upd.Confidence != nil {
		confidence, err := json.Marshal(*upd.Confidence)
		if err != nil {
			return fmt.Errorf("failed to marshal confidence: %w", err)
		}
		set = append(set, "confidence = ?")
		args = append(args, string(confidence))
	}
	if upd.ClassifiedBy != nil {
		set = append(set, "classified_by = ?")
		args = append(args, string(*upd.ClassifiedBy))
	}
	if upd.Status != nil {
		set = append(set, "status = ?")
		args = append(args, string(*upd.Status))
	}
	if upd.PostedExpenseID != nil {
		set = append(set, "posted_expense_id = ?")
		args = append(args, *upd.PostedExpenseID)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE import_rows SET %s WHERE id = ?", strings.Join(set, ", "))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update row: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: row %s", common.ErrNotFound, id)
	}
	return nil
}

const rowColumns = `id, session_id, seq, raw_data, amount, date, direction, narration,
	category, platform, payment_method, notes, tags, recurring,
	confidence, classified_by, status, auto, posted_expense_id,
	created_at, updated_at`

// GetRow returns one import row by id.
func (s *SQLiteStorage) GetRow(ctx context.Context, id string) (*model.ImportRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+rowColumns+" FROM import_rows WHERE id = ?", id)

	imported, err := scanImportRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: row %s", common.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get row: %w", err)
	}
	return imported, nil
}

// GetRowsBySession returns a session's rows in statement order.
func (s *SQLiteStorage) GetRowsBySession(ctx context.Context, sessionID string) ([]model.ImportRow, error) {
	return s.queryRows(ctx,
		"SELECT "+rowColumns+" FROM import_rows WHERE session_id = ? ORDER BY seq, id",
		sessionID)
}

// GetPendingRows returns rows still awaiting review, optionally narrowed to
// auto-classified rows.
func (s *SQLiteStorage) GetPendingRows(ctx context.Context, sessionID string, scope importer.Scope) ([]model.ImportRow, error) {
	query := "SELECT " + rowColumns + " FROM import_rows WHERE session_id = ? AND status = ?"
	args := []any{sessionID, string(model.RowPending)}

	if scope == importer.ScopeAuto {
		query += " AND auto = 1"
	}
	query += " ORDER BY seq, id"

	return s.queryRows(ctx, query, args...)
}

func (s *SQLiteStorage) queryRows(ctx context.Context, query string, args ...any) ([]model.ImportRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ImportRow
	for rows.Next() {
		row, err := scanImportRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, *row)
	}
	return out, rows.Err()
}

func scanImportRow(r rowScanner) (*model.ImportRow, error) {
	var row model.ImportRow
	var rawData, tags, confidence string
	var amount, direction, classifiedBy, status string
	var date time.Time
	var postedExpenseID sql.NullString

	err := r.Scan(
		&row.ID,
		&row.SessionID,
		&row.Seq,
		&rawData,
		&amount,
		&date,
		&direction,
		&row.Narration,
		&row.Category,
		&row.Platform,
		&row.PaymentMethod,
		&row.Notes,
		&tags,
		&row.Recurring,
		&confidence,
		&classifiedBy,
		&status,
		&row.Auto,
		&postedExpenseID,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if amount != "" {
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q: %w", amount, err)
		}
		row.Amount = &d
	}
	if !date.IsZero() {
		row.Date = &date
	}
	row.Direction = model.Direction(direction)
	row.ClassifiedBy = model.ClassifiedBy(classifiedBy)
	row.Status = model.RowStatus(status)
	row.PostedExpenseID = postedExpenseID.String

	if rawData != "" {
		if err := json.Unmarshal([]byte(rawData), &row.RawData); err != nil {
			return nil, fmt.Errorf("corrupt raw data: %w", err)
		}
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &row.Tags); err != nil {
			return nil, fmt.Errorf("corrupt tags: %w", err)
		}
	}
	if confidence != "" {
		if err := json.Unmarshal([]byte(confidence), &row.Confidence); err != nil {
			return nil, fmt.Errorf("corrupt confidence: %w", err)
		}
	}

	return &row, nil
}
