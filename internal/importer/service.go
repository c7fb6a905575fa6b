// Package importer orchestrates the statement import pipeline: parsing an
// uploaded file into a session, rule classification, confidence-gated AI
// escalation, and user-driven row confirmation.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paisatrack/paisatrack/internal/common"
	"github.com/paisatrack/paisatrack/internal/fileparse"
	"github.com/paisatrack/paisatrack/internal/model"
	"github.com/paisatrack/paisatrack/internal/rules"
)

// AutoThreshold is the per-field confidence a row must clear on every field
// to skip AI escalation and review.
const AutoThreshold = 0.80

// uploadExtensions is the whitelist for CreateSession.
var uploadExtensions = map[string]bool{
	".csv":  true,
	".txt":  true,
	".xls":  true,
	".xlsx": true,
	".pdf":  true,
}

// UploadedFile is a validated upload handed in by the transport layer.
type UploadedFile struct {
	Name string
	Data []byte
}

// Classifier abstracts the AI escalation stage.
type Classifier interface {
	ClassifyRows(ctx context.Context, rows []model.ClassifiedRow, onProgress func(done, total int)) ([]model.ClassifiedRow, error)
}

// Service drives import sessions end to end.
type Service struct {
	repo   Repository
	parser *fileparse.Parser
	ai     Classifier
	// background is the detach point for the pipeline; tests replace it to
	// run synchronously.
	background func(fn func())
}

// NewService creates an import service.
func NewService(repo Repository, parser *fileparse.Parser, ai Classifier) *Service {
	return &Service{
		repo:       repo,
		parser:     parser,
		ai:         ai,
		background: func(fn func()) { go fn() },
	}
}

// CreateSession validates and parses the upload, persists a new session in
// PARSING state, launches the classification pipeline detached, and returns
// the session id immediately. Validation and parse errors surface
// synchronously; pipeline errors later mark the session FAILED.
func (s *Service) CreateSession(ctx context.Context, userID string, file UploadedFile) (string, error) {
	if len(file.Data) == 0 {
		return "", fmt.Errorf("%w: empty upload", common.ErrMissingFile)
	}

	ext := strings.ToLower(filepath.Ext(file.Name))
	if !uploadExtensions[ext] {
		return "", fmt.Errorf("%w: %s", common.ErrUnsupportedFile, ext)
	}

	result, err := s.parser.ParseFile(file.Data, file.Name)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	session := &model.ImportSession{
		ID:            uuid.NewString(),
		UserID:        userID,
		Status:        model.SessionParsing,
		SourceFile:    file.Name,
		BankFormat:    string(result.Format),
		RowCount:      len(result.Rows),
		ProgressTotal: len(result.Rows),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	// The caller gets the session id now and polls for status; the
	// pipeline runs detached with its own context.
	s.background(func() {
		pipelineCtx := context.Background()
		if err := s.runPipeline(pipelineCtx, session.ID, result.Rows); err != nil {
			common.LogError(err, "Import pipeline failed", common.Fields{
				"session_id": session.ID,
			})
			s.failSession(pipelineCtx, session.ID, err)
		}
	})

	return session.ID, nil
}

// runPipeline classifies parsed rows, persists them, escalates fallback rows
// to the AI stage, and finalizes the session in REVIEWING state.
func (s *Service) runPipeline(ctx context.Context, sessionID string, raw []model.RawRow) error {
	classified := rules.ClassifyRows(raw)

	now := time.Now().UTC()
	importRows := make([]model.ImportRow, len(classified))
	autoCount := 0
	var fallback []model.ImportRow

	for i, row := range classified {
		auto := row.Confidence.MeetsThreshold(AutoThreshold)
		importRows[i] = model.ImportRow{
			ID:            uuid.NewString(),
			SessionID:     sessionID,
			Seq:           i,
			ClassifiedRow: row,
			Status:        model.RowPending,
			Auto:          auto,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if auto {
			autoCount++
		} else {
			fallback = append(fallback, importRows[i])
		}
	}

	// Auto and fallback rows alike are persisted in one write; fallback
	// rows are updated later by id, never by position.
	if err := s.repo.InsertRows(ctx, importRows); err != nil {
		return fmt.Errorf("failed to insert rows: %w", err)
	}

	reviewCount := len(fallback)
	if err := s.repo.UpdateSession(ctx, sessionID, SessionUpdate{
		AutoCount:    &autoCount,
		ReviewCount:  &reviewCount,
		ProgressDone: &autoCount,
	}); err != nil {
		return fmt.Errorf("failed to update session counts: %w", err)
	}

	if len(fallback) > 0 {
		if err := s.escalate(ctx, sessionID, autoCount, fallback); err != nil {
			return err
		}
	}

	total := len(importRows)
	reviewing := model.SessionReviewing
	if err := s.repo.UpdateSession(ctx, sessionID, SessionUpdate{
		Status:       &reviewing,
		AutoCount:    &autoCount,
		ReviewCount:  &reviewCount,
		ProgressDone: &total,
	}); err != nil {
		return fmt.Errorf("failed to finalize session: %w", err)
	}

	slog.Info("Import pipeline complete",
		"session_id", sessionID,
		"rows", total,
		"auto", autoCount,
		"review", reviewCount)
	return nil
}

// escalate runs fallback rows through the AI stage and writes the results
// back onto their persisted rows, correlated by row id.
func (s *Service) escalate(ctx context.Context, sessionID string, autoCount int, fallback []model.ImportRow) error {
	rows := make([]model.ClassifiedRow, len(fallback))
	for i, r := range fallback {
		rows[i] = r.ClassifiedRow
	}

	onProgress := func(done, _ int) {
		progress := autoCount + done
		if err := s.repo.UpdateSession(ctx, sessionID, SessionUpdate{
			ProgressDone: &progress,
		}); err != nil {
			slog.Warn("Failed to update session progress",
				"session_id", sessionID,
				"error", err)
		}
	}

	reclassified, err := s.ai.ClassifyRows(ctx, rows, onProgress)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrClassificationFailed, err)
	}

	for i, row := range reclassified {
		if row.ClassifiedBy != model.ClassifiedByAI {
			continue // reply was missing or empty; the rule result stands
		}
		rowID := fallback[i].ID
		confidence := row.Confidence
		classifiedBy := row.ClassifiedBy
		upd := RowUpdate{
			Confidence:   &confidence,
			ClassifiedBy: &classifiedBy,
		}
		if row.Category != "" {
			category := row.Category
			upd.Category = &category
		}
		if row.Platform != "" {
			platform := row.Platform
			upd.Platform = &platform
		}
		if row.PaymentMethod != "" {
			method := row.PaymentMethod
			upd.PaymentMethod = &method
		}
		if err := s.repo.UpdateRow(ctx, rowID, upd); err != nil {
			return fmt.Errorf("failed to update row %s: %w", rowID, err)
		}
	}
	return nil
}

// failSession force-updates a session to FAILED after a pipeline error.
// There is no caller left waiting, so the error is reported through polling.
func (s *Service) failSession(ctx context.Context, sessionID string, cause error) {
	failed := model.SessionFailed
	msg := cause.Error()
	if err := s.repo.UpdateSession(ctx, sessionID, SessionUpdate{
		Status: &failed,
		Error:  &msg,
	}); err != nil {
		common.LogError(err, "Failed to mark session FAILED", common.Fields{
			"session_id": sessionID,
		})
	}
}

// GetSession returns the session scoped to the owning user.
func (s *Service) GetSession(ctx context.Context, sessionID, userID string) (*model.ImportSession, error) {
	return s.repo.GetSession(ctx, sessionID, userID)
}

// ListSessions returns all of the user's sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, userID string) ([]model.ImportSession, error) {
	return s.repo.ListSessions(ctx, userID)
}

// GetRows returns a session's rows. Rows are not stable while the pipeline
// is still parsing, so a PARSING session is a conflict; that is a domain
// rule about data readiness, not a transport concern.
func (s *Service) GetRows(ctx context.Context, sessionID, userID string) ([]model.ImportRow, error) {
	session, err := s.repo.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionParsing {
		return nil, fmt.Errorf("%w: session %s is still parsing", common.ErrConflict, sessionID)
	}
	return s.repo.GetRowsBySession(ctx, sessionID)
}
