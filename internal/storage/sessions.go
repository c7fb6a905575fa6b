package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paisatrack/paisatrack/internal/common"
	"github.com/paisatrack/paisatrack/internal/importer"
	"github.com/paisatrack/paisatrack/internal/model"
)

// CreateSession persists a new import session.
func (s *SQLiteStorage) CreateSession(ctx context.Context, session *model.ImportSession) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("%w: session", errNilParam)
	}
	if err := validateString(session.ID, "session.ID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_sessions (
			id, user_id, status, source_file, bank_format,
			row_count, auto_count, review_count, progress_done, progress_total,
			error, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.ID,
		session.UserID,
		string(session.Status),
		session.SourceFile,
		session.BankFormat,
		session.RowCount,
		session.AutoCount,
		session.ReviewCount,
		session.ProgressDone,
		session.ProgressTotal,
		session.Error,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// UpdateSession applies a partial update; nil fields are untouched.
func (s *SQLiteStorage) UpdateSession(ctx context.Context, id string, upd importer.SessionUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	set := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Status != nil {
		set = append(set, "status = ?")
		args = append(args, string(*upd.Status))
	}
	if upd.BankFormat != nil {
		set = append(set, "bank_format = ?")
		args = append(args, *upd.BankFormat)
	}
	if upd.RowCount != nil {
		set = append(set, "row_count = ?")
		args = append(args, *upd.RowCount)
	}
	if upd.AutoCount != nil {
		set = append(set, "auto_count = ?")
		args = append(args, *upd.AutoCount)
	}
	if upd.ReviewCount != nil {
		set = append(set, "review_count = ?")
		args = append(args, *upd.ReviewCount)
	}
	if upd.ProgressDone != nil {
		set = append(set, "progress_done = ?")
		args = append(args, *upd.ProgressDone)
	}
	if upd.ProgressTotal != nil {
		set = append(set, "progress_total = ?")
		args = append(args, *upd.ProgressTotal)
	}
	if upd.Error != nil {
		set = append(set, "error = ?")
		args = append(args, *upd.Error)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE import_sessions SET %s WHERE id = ?", strings.Join(set, ", "))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: session %s", common.ErrNotFound, id)
	}
	return nil
}

const sessionColumns = `id, user_id, status, source_file, bank_format,
	row_count, auto_count, review_count, progress_done, progress_total,
	error, created_at, updated_at`

// GetSession returns the session scoped to the owning user.
func (s *SQLiteStorage) GetSession(ctx context.Context, id, userID string) (*model.ImportSession, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM import_sessions WHERE id = ? AND user_id = ?",
		id, userID)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: session %s", common.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// ListSessions returns the user's sessions, newest first.
func (s *SQLiteStorage) ListSessions(ctx context.Context, userID string) ([]model.ImportSession, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM import_sessions WHERE user_id = ? ORDER BY created_at DESC, id",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []model.ImportSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*model.ImportSession, error) {
	var session model.ImportSession
	var status string
	var bankFormat, errMsg sql.NullString

	err := r.Scan(
		&session.ID,
		&session.UserID,
		&status,
		&session.SourceFile,
		&bankFormat,
		&session.RowCount,
		&session.AutoCount,
		&session.ReviewCount,
		&session.ProgressDone,
		&session.ProgressTotal,
		&errMsg,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	session.Status = model.SessionStatus(status)
	session.BankFormat = bankFormat.String
	session.Error = errMsg.String
	return &session, nil
}
