package postgres

import (
	"context"
	"fmt"
	"time"

	"techconnect-matcher/internal/models"

	"github.com/gocraft/dbr/v2"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

func (s *Store) GetCandidate(ctx context.Context, candidateID string) (*models.Candidate, error) {
	var candidate models.Candidate

	err := s.sess.
		Select("*").
		From("candidates").
		Where("id = ?", candidateID).
		LoadOneContext(ctx, &candidate)

	if err == dbr.ErrNotFound {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get candidate",
			zap.String("candidate_id", candidateID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get candidate: %w", err)
	}

	return &candidate, nil
}

func (s *Store) SaveCandidate(ctx context.Context, candidate *models.Candidate) error {
	query := `
		INSERT INTO candidates (
			id, name, bio, location, seniority, active, lat, lon,
			work_model_prefs, skills_manual, skills_from_cv,
			skills_effective, skills_normalized, cv_url, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			bio = EXCLUDED.bio,
			location = EXCLUDED.location,
			seniority = EXCLUDED.seniority,
			active = EXCLUDED.active,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			work_model_prefs = EXCLUDED.work_model_prefs,
			skills_manual = EXCLUDED.skills_manual,
			skills_from_cv = EXCLUDED.skills_from_cv,
			skills_effective = EXCLUDED.skills_effective,
			skills_normalized = EXCLUDED.skills_normalized,
			cv_url = EXCLUDED.cv_url,
			updated_at = NOW()
	`

	_, err := s.sess.
		InsertBySql(query,
			candidate.ID,
			candidate.Name,
			candidate.Bio,
			candidate.Location,
			candidate.Seniority,
			candidate.Active,
			candidate.Lat,
			candidate.Lon,
			candidate.WorkModelPrefs,
			candidate.SkillsManual,
			candidate.SkillsFromCv,
			candidate.SkillsEffective,
			candidate.SkillsNormalized,
			candidate.CvURL,
		).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to save candidate",
			zap.String("candidate_id", candidate.ID),
			zap.Error(err),
		)
		return fmt.Errorf("save candidate: %w", err)
	}

	return nil
}

// SyncCandidateSkills persists the recomputed effective and normalized skill
// sets. Used when the stored sets drift from what the raw fields imply.
func (s *Store) SyncCandidateSkills(ctx context.Context, candidateID string, effective, normalized []string) error {
	_, err := s.sess.
		Update("candidates").
		Set("skills_effective", pq.StringArray(effective)).
		Set("skills_normalized", pq.StringArray(normalized)).
		Set("updated_at", time.Now()).
		Where("id = ?", candidateID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to sync candidate skills",
			zap.String("candidate_id", candidateID),
			zap.Error(err),
		)
		return fmt.Errorf("sync candidate skills: %w", err)
	}

	return nil
}

// ApplyCvSkills merges CV-derived skills into the candidate record together
// with the parse quality verdict. The write is guarded by request id so a
// superseded parse cannot clobber a newer one.
func (s *Store) ApplyCvSkills(ctx context.Context, candidateID, requestID string, fromCv, effective, normalized []string, outcome models.ParseOutcome) error {
	result, err := s.sess.
		Update("candidates").
		Set("skills_from_cv", pq.StringArray(fromCv)).
		Set("skills_effective", pq.StringArray(effective)).
		Set("skills_normalized", pq.StringArray(normalized)).
		Set("cv_text_hash", outcome.CvTextHash).
		Set("parse_status", models.ParseStatusDone).
		Set("parse_error", "").
		Set("profile_summary", outcome.Summary).
		Set("parse_quality", outcome.Quality).
		Set("parse_quality_reason", outcome.QualityReason).
		Set("parse_quality_flags", outcome.QualityFlags).
		Set("parse_quality_metrics", outcome.QualityMetrics).
		Set("parsed_at", time.Now()).
		Set("updated_at", time.Now()).
		Where("id = ? AND parse_request_id = ?", candidateID, requestID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to apply cv skills",
			zap.String("candidate_id", candidateID),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("apply cv skills: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return ErrStaleRequest
	}

	return nil
}
