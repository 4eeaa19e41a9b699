package postgres

import (
	"context"
	"fmt"
	"time"

	"techconnect-matcher/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

func (s *Store) CreateAnalysis(ctx context.Context, a *models.CvAnalysis) error {
	query := `
		INSERT INTO cv_analyses (
			id, candidate_id, cv_url, target_role, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO NOTHING
	`

	_, err := s.sess.
		InsertBySql(query,
			a.ID,
			a.CandidateID,
			a.CvURL,
			a.TargetRole,
			models.AnalysisStatusQueued,
		).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to create analysis",
			zap.String("analysis_id", a.ID),
			zap.String("candidate_id", a.CandidateID),
			zap.Error(err),
		)
		return fmt.Errorf("create analysis: %w", err)
	}

	return nil
}

func (s *Store) GetAnalysis(ctx context.Context, analysisID string) (*models.CvAnalysis, error) {
	var analysis models.CvAnalysis

	err := s.sess.
		Select("*").
		From("cv_analyses").
		Where("id = ?", analysisID).
		LoadOneContext(ctx, &analysis)

	if err == dbr.ErrNotFound {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get analysis",
			zap.String("analysis_id", analysisID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get analysis: %w", err)
	}

	return &analysis, nil
}

// ClaimAnalysis flips a queued analysis to running. Returns ErrStaleRequest
// when the analysis was already picked up, which makes redelivery a no-op.
func (s *Store) ClaimAnalysis(ctx context.Context, analysisID string) error {
	result, err := s.sess.
		Update("cv_analyses").
		Set("status", models.AnalysisStatusRunning).
		Set("started_at", time.Now()).
		Where("id = ? AND status = ?", analysisID, models.AnalysisStatusQueued).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to claim analysis",
			zap.String("analysis_id", analysisID),
			zap.Error(err),
		)
		return fmt.Errorf("claim analysis: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrStaleRequest
	}

	return nil
}

// FinishAnalysis records the terminal outcome of an analysis run.
func (s *Store) FinishAnalysis(ctx context.Context, a *models.CvAnalysis) error {
	_, err := s.sess.
		Update("cv_analyses").
		Set("status", a.Status).
		Set("error", a.Error).
		Set("cv_text_hash", a.CvTextHash).
		Set("parse_quality", a.ParseQuality).
		Set("parse_quality_reason", a.ParseQualityReason).
		Set("parse_quality_flags", a.ParseQualityFlags).
		Set("parse_quality_metrics", a.ParseQualityMetrics).
		Set("extracted", a.Extracted).
		Set("report", a.Report).
		Set("finished_at", time.Now()).
		Where("id = ?", a.ID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to finish analysis",
			zap.String("analysis_id", a.ID),
			zap.String("status", a.Status),
			zap.Error(err),
		)
		return fmt.Errorf("finish analysis: %w", err)
	}

	return nil
}
