package importer

import (
	"context"
	"fmt"
	"sync"

	"github.com/paisatrack/paisatrack/internal/common"
	"github.com/paisatrack/paisatrack/internal/model"
)

// mockRepository is an in-memory Repository for service tests.
type mockRepository struct {
	mu       sync.Mutex
	sessions map[string]*model.ImportSession
	rows     map[string]*model.ImportRow
	rowOrder []string
	expenses []model.Expense

	// injectable failures
	insertRowsErr    error
	insertExpenseErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		sessions: make(map[string]*model.ImportSession),
		rows:     make(map[string]*model.ImportRow),
	}
}

func (m *mockRepository) CreateSession(_ context.Context, session *model.ImportSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *mockRepository) UpdateSession(_ context.Context, id string, upd SessionUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("%w: session %s", common.ErrNotFound, id)
	}
	if upd.Status != nil {
		session.Status = *upd.Status
	}
	if upd.BankFormat != nil {
		session.BankFormat = *upd.BankFormat
	}
	if upd.RowCount != nil {
		session.RowCount = *upd.RowCount
	}
	if upd.AutoCount != nil {
		session.AutoCount = *upd.AutoCount
	}
	if upd.ReviewCount != nil {
		session.ReviewCount = *upd.ReviewCount
	}
	if upd.ProgressDone != nil {
		session.ProgressDone = *upd.ProgressDone
	}
	if upd.ProgressTotal != nil {
		session.ProgressTotal = *upd.ProgressTotal
	}
	if upd.Error != nil {
		session.Error = *upd.Error
	}
	return nil
}

func (m *mockRepository) GetSession(_ context.Context, id, userID string) (*model.ImportSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok || session.UserID != userID {
		return nil, fmt.Errorf("%w: session %s", common.ErrNotFound, id)
	}
	copied := *session
	return &copied, nil
}

func (m *mockRepository) ListSessions(_ context.Context, userID string) ([]model.ImportSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ImportSession
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockRepository) InsertRows(_ context.Context, rows []model.ImportRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertRowsErr != nil {
		return m.insertRowsErr
	}
	for i := range rows {
		copied := rows[i]
		m.rows[copied.ID] = &copied
		m.rowOrder = append(m.rowOrder, copied.ID)
	}
	return nil
}

func (m *mockRepository) UpdateRow(_ context.Context, id string, upd RowUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return fmt.Errorf("%w: row %s", common.ErrNotFound, id)
	}
	if upd.Amount != nil {
		row.Amount = upd.Amount
	}
	if upd.Date != nil {
		row.Date = upd.Date
	}
	if upd.Direction != nil {
		row.Direction = *upd.Direction
	}
	if upd.Category != nil {
		row.Category = *upd.Category
	}
	if upd.Platform != nil {
		row.Platform = *upd.Platform
	}
	if upd.PaymentMethod != nil {
		row.PaymentMethod = *upd.PaymentMethod
	}
	if upd.Notes != nil {
		row.Notes = *upd.Notes
	}
	if upd.Tags != nil {
		row.Tags = *upd.Tags
	}
	if upd.Confidence != nil {
		row.Confidence = *upd.Confidence
	}
	if upd.ClassifiedBy != nil {
		row.ClassifiedBy = *upd.ClassifiedBy
	}
	if upd.Status != nil {
		row.Status = *upd.Status
	}
	if upd.PostedExpenseID != nil {
		row.PostedExpenseID = *upd.PostedExpenseID
	}
	return nil
}

func (m *mockRepository) GetRow(_ context.Context, id string) (*model.ImportRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: row %s", common.ErrNotFound, id)
	}
	copied := *row
	return &copied, nil
}

func (m *mockRepository) GetRowsBySession(_ context.Context, sessionID string) ([]model.ImportRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ImportRow
	for _, id := range m.rowOrder {
		if m.rows[id].SessionID == sessionID {
			out = append(out, *m.rows[id])
		}
	}
	return out, nil
}

func (m *mockRepository) GetPendingRows(_ context.Context, sessionID string, scope Scope) ([]model.ImportRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ImportRow
	for _, id := range m.rowOrder {
		row := m.rows[id]
		if row.SessionID != sessionID || row.Status != model.RowPending {
			continue
		}
		if scope == ScopeAuto && !row.Auto {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (m *mockRepository) InsertExpense(_ context.Context, expense *model.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertExpenseErr != nil {
		return m.insertExpenseErr
	}
	m.expenses = append(m.expenses, *expense)
	return nil
}

func (m *mockRepository) InsertExpenses(_ context.Context, expenses []model.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertExpenseErr != nil {
		return m.insertExpenseErr
	}
	m.expenses = append(m.expenses, expenses...)
	return nil
}

func (m *mockRepository) session(id string) *model.ImportSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// mockClassifier records invocations and applies a fixed classification.
type mockClassifier struct {
	mu     sync.Mutex
	calls  int
	gotLen int
	err    error
}

func (m *mockClassifier) ClassifyRows(_ context.Context, rows []model.ClassifiedRow, onProgress func(done, total int)) ([]model.ClassifiedRow, error) {
	m.mu.Lock()
	m.calls++
	m.gotLen = len(rows)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	out := make([]model.ClassifiedRow, len(rows))
	for i, row := range rows {
		row.Category = "Other"
		row.Confidence.Category = 0.5
		row.ClassifiedBy = model.ClassifiedByAI
		out[i] = row
	}
	if onProgress != nil {
		onProgress(len(rows), len(rows))
	}
	return out, nil
}
