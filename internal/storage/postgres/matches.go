package postgres

import (
	"context"
	"fmt"
	"time"

	"techconnect-matcher/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

// maxOpsPerBatch bounds a single transaction; larger op sets are flushed in
// chunks so one huge fan-out cannot hold a transaction open indefinitely.
const maxOpsPerBatch = 450

// ApplyMatchOps flushes upserts and deletes against the match-record set.
// Each chunk commits in its own transaction, so a failure mid-way leaves
// earlier chunks applied. Every op is idempotent, which makes a retry of the
// whole event safe.
func (s *Store) ApplyMatchOps(ctx context.Context, ops []models.MatchOp) error {
	for start := 0; start < len(ops); start += maxOpsPerBatch {
		end := start + maxOpsPerBatch
		if end > len(ops) {
			end = len(ops)
		}

		if err := s.applyMatchChunk(ctx, ops[start:end]); err != nil {
			return fmt.Errorf("apply match ops [%d:%d]: %w", start, end, err)
		}
	}

	return nil
}

func (s *Store) applyMatchChunk(ctx context.Context, ops []models.MatchOp) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.RollbackUnlessCommitted()

	for _, op := range ops {
		if op.Record == nil {
			_, err = tx.
				DeleteFrom("match_records").
				Where("candidate_id = ? AND job_id = ?", op.CandidateID, op.JobID).
				ExecContext(ctx)
			if err != nil {
				s.logger.Error("failed to delete match",
					zap.String("candidate_id", op.CandidateID),
					zap.String("job_id", op.JobID),
					zap.Error(err),
				)
				return fmt.Errorf("delete match: %w", err)
			}
			continue
		}

		if err := upsertMatch(ctx, tx, op.Record); err != nil {
			s.logger.Error("failed to upsert match",
				zap.String("candidate_id", op.CandidateID),
				zap.String("job_id", op.JobID),
				zap.Error(err),
			)
			return fmt.Errorf("upsert match: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("match ops applied", zap.Int("count", len(ops)))
	return nil
}

func upsertMatch(ctx context.Context, tx *dbr.Tx, m *models.MatchRecord) error {
	query := `
		INSERT INTO match_records (
			candidate_id, job_id, score, score_internal,
			score_raw_before_confidence, confidence_score, confidence_badge,
			confidence_details, reasons, matched_skills, missing_skills,
			matched_nice_skills, missing_nice_skills, req_ratio,
			missing_penalty, nice_bonus, mobile_bonus, bio_bonus, geo_bonus,
			distance_km, job_snapshot, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (candidate_id, job_id) DO UPDATE SET
			score = EXCLUDED.score,
			score_internal = EXCLUDED.score_internal,
			score_raw_before_confidence = EXCLUDED.score_raw_before_confidence,
			confidence_score = EXCLUDED.confidence_score,
			confidence_badge = EXCLUDED.confidence_badge,
			confidence_details = EXCLUDED.confidence_details,
			reasons = EXCLUDED.reasons,
			matched_skills = EXCLUDED.matched_skills,
			missing_skills = EXCLUDED.missing_skills,
			matched_nice_skills = EXCLUDED.matched_nice_skills,
			missing_nice_skills = EXCLUDED.missing_nice_skills,
			req_ratio = EXCLUDED.req_ratio,
			missing_penalty = EXCLUDED.missing_penalty,
			nice_bonus = EXCLUDED.nice_bonus,
			mobile_bonus = EXCLUDED.mobile_bonus,
			bio_bonus = EXCLUDED.bio_bonus,
			geo_bonus = EXCLUDED.geo_bonus,
			distance_km = EXCLUDED.distance_km,
			job_snapshot = EXCLUDED.job_snapshot,
			updated_at = EXCLUDED.updated_at
	`

	_, err := tx.
		InsertBySql(query,
			m.CandidateID,
			m.JobID,
			m.Score,
			m.ScoreInternal,
			m.ScoreRawBeforeConfidence,
			m.ConfidenceScore,
			m.ConfidenceBadge,
			m.ConfidenceDetails,
			m.Reasons,
			m.MatchedSkills,
			m.MissingSkills,
			m.MatchedNiceSkills,
			m.MissingNiceSkills,
			m.ReqRatio,
			m.MissingPenalty,
			m.NiceBonus,
			m.MobileBonus,
			m.BioBonus,
			m.GeoBonus,
			m.DistanceKm,
			m.JobSnapshot,
			time.Now(),
		).
		ExecContext(ctx)

	return err
}

// DeleteMatchesForJob is the fan-in cleanup after a job disappears.
func (s *Store) DeleteMatchesForJob(ctx context.Context, jobID string) (int64, error) {
	result, err := s.sess.
		DeleteFrom("match_records").
		Where("job_id = ?", jobID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to delete matches for job",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return 0, fmt.Errorf("delete matches for job: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()

	s.logger.Info("matches cleaned for job",
		zap.String("job_id", jobID),
		zap.Int64("count", rowsAffected),
	)

	return rowsAffected, nil
}

// DeleteMatchesForCandidate removes every match record owned by a candidate.
func (s *Store) DeleteMatchesForCandidate(ctx context.Context, candidateID string) (int64, error) {
	result, err := s.sess.
		DeleteFrom("match_records").
		Where("candidate_id = ?", candidateID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to delete matches for candidate",
			zap.String("candidate_id", candidateID),
			zap.Error(err),
		)
		return 0, fmt.Errorf("delete matches for candidate: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected, nil
}

// ListMatchesForCandidate returns the candidate's matches ordered by internal
// score, best first.
func (s *Store) ListMatchesForCandidate(ctx context.Context, candidateID string, limit int) ([]models.MatchRecord, error) {
	var matches []models.MatchRecord

	_, err := s.sess.
		Select("*").
		From("match_records").
		Where("candidate_id = ?", candidateID).
		OrderDir("score_internal", false).
		Limit(uint64(limit)).
		LoadContext(ctx, &matches)

	if err != nil {
		s.logger.Error("failed to list matches for candidate",
			zap.String("candidate_id", candidateID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list matches for candidate: %w", err)
	}

	return matches, nil
}

// ListMatchCandidateIDsForJob returns the candidate side of every stored
// match for a job. Used to reconcile deletions during job recompute.
func (s *Store) ListMatchCandidateIDsForJob(ctx context.Context, jobID string) ([]string, error) {
	var ids []string

	_, err := s.sess.
		Select("candidate_id").
		From("match_records").
		Where("job_id = ?", jobID).
		LoadContext(ctx, &ids)

	if err != nil {
		s.logger.Error("failed to list match candidates for job",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list match candidates for job: %w", err)
	}

	return ids, nil
}
