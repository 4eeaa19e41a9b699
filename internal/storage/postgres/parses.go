package postgres

import (
	"context"
	"fmt"
	"time"

	"techconnect-matcher/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

// ClaimParseRequest marks the candidate as parsing under the given request
// id. A later claim supersedes an earlier one; the in-flight pipeline
// detects that via CurrentParseRequestID and aborts.
func (s *Store) ClaimParseRequest(ctx context.Context, candidateID, requestID string) error {
	_, err := s.sess.
		Update("candidates").
		Set("parse_status", models.ParseStatusParsing).
		Set("parse_request_id", requestID).
		Set("parse_error", "").
		Set("updated_at", time.Now()).
		Where("id = ?", candidateID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to claim parse request",
			zap.String("candidate_id", candidateID),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("claim parse request: %w", err)
	}

	return nil
}

// CurrentParseRequestID re-reads the active request id. Pipelines call this
// after every slow step to detect being superseded.
func (s *Store) CurrentParseRequestID(ctx context.Context, candidateID string) (string, error) {
	var requestID string

	err := s.sess.
		Select("parse_request_id").
		From("candidates").
		Where("id = ?", candidateID).
		LoadOneContext(ctx, &requestID)

	if err == dbr.ErrNotFound {
		return "", nil
	}

	if err != nil {
		s.logger.Error("failed to read parse request id",
			zap.String("candidate_id", candidateID),
			zap.Error(err),
		)
		return "", fmt.Errorf("current parse request id: %w", err)
	}

	return requestID, nil
}

// SetParseError records a terminal parse failure, guarded by request id.
func (s *Store) SetParseError(ctx context.Context, candidateID, requestID, message string) error {
	result, err := s.sess.
		Update("candidates").
		Set("parse_status", models.ParseStatusError).
		Set("parse_error", message).
		Set("updated_at", time.Now()).
		Where("id = ? AND parse_request_id = ?", candidateID, requestID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to set parse error",
			zap.String("candidate_id", candidateID),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("set parse error: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrStaleRequest
	}

	return nil
}

// SetAIState updates the candidate's AI enrichment status. Guarded by the
// parse request id that spawned the enrichment.
func (s *Store) SetAIState(ctx context.Context, candidateID, requestID, status, aiError string) error {
	result, err := s.sess.
		Update("candidates").
		Set("ai_status", status).
		Set("ai_request_id", requestID).
		Set("ai_error", aiError).
		Set("updated_at", time.Now()).
		Where("id = ? AND parse_request_id = ?", candidateID, requestID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to set ai state",
			zap.String("candidate_id", candidateID),
			zap.String("status", status),
			zap.Error(err),
		)
		return fmt.Errorf("set ai state: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrStaleRequest
	}

	return nil
}

// SetProfileSummary stores the AI-written summary on the candidate.
func (s *Store) SetProfileSummary(ctx context.Context, candidateID, requestID, summary string) error {
	result, err := s.sess.
		Update("candidates").
		Set("profile_summary", summary).
		Set("updated_at", time.Now()).
		Where("id = ? AND parse_request_id = ?", candidateID, requestID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to set profile summary",
			zap.String("candidate_id", candidateID),
			zap.Error(err),
		)
		return fmt.Errorf("set profile summary: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrStaleRequest
	}

	return nil
}

// SaveParseArtifact persists the immutable record of one parse run.
func (s *Store) SaveParseArtifact(ctx context.Context, p *models.CvParse) error {
	query := `
		INSERT INTO cv_parses (
			request_id, candidate_id, cv_url, cv_text_hash, full_text,
			sections, skills_seed, skills_normalized_seed, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (request_id) DO NOTHING
	`

	_, err := s.sess.
		InsertBySql(query,
			p.RequestID,
			p.CandidateID,
			p.CvURL,
			p.CvTextHash,
			p.FullText,
			p.Sections,
			p.SkillsSeed,
			p.SkillsNormalizedSeed,
		).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to save parse artifact",
			zap.String("request_id", p.RequestID),
			zap.String("candidate_id", p.CandidateID),
			zap.Error(err),
		)
		return fmt.Errorf("save parse artifact: %w", err)
	}

	return nil
}

// GetParseArtifact loads one parse artifact by request id.
func (s *Store) GetParseArtifact(ctx context.Context, requestID string) (*models.CvParse, error) {
	var parse models.CvParse

	err := s.sess.
		Select("*").
		From("cv_parses").
		Where("request_id = ?", requestID).
		LoadOneContext(ctx, &parse)

	if err == dbr.ErrNotFound {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get parse artifact",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get parse artifact: %w", err)
	}

	return &parse, nil
}

// AttachAIReport records the AI enrichment output on the parse artifact.
func (s *Store) AttachAIReport(ctx context.Context, requestID, aiRequestID string, report models.RawJSON) error {
	_, err := s.sess.
		Update("cv_parses").
		Set("ai_request_id", aiRequestID).
		Set("ai_report", report).
		Set("ai_finished_at", time.Now()).
		Where("request_id = ?", requestID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to attach ai report",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("attach ai report: %w", err)
	}

	return nil
}
