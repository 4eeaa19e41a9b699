package postgres

import (
	"context"
	"fmt"
	"time"

	"techconnect-matcher/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ReplaceSkillIndex converges the inverted-index memberships for one
// candidate onto the given skill set. It diffs against the stored
// memberships instead of wiping, so an unchanged set is a near no-op and
// concurrent recomputes converge on the same final state.
func (s *Store) ReplaceSkillIndex(ctx context.Context, candidateID string, skills []string, meta models.SkillIndexEntry) error {
	var current []string

	_, err := s.sess.
		Select("skill").
		From("skill_index").
		Where("candidate_id = ?", candidateID).
		LoadContext(ctx, &current)

	if err != nil {
		s.logger.Error("failed to read skill index",
			zap.String("candidate_id", candidateID),
			zap.Error(err),
		)
		return fmt.Errorf("read skill index: %w", err)
	}

	wanted := make(map[string]bool, len(skills))
	for _, sk := range skills {
		wanted[sk] = true
	}

	var stale []string
	currentSet := make(map[string]bool, len(current))
	for _, sk := range current {
		currentSet[sk] = true
		if !wanted[sk] {
			stale = append(stale, sk)
		}
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.RollbackUnlessCommitted()

	if len(stale) > 0 {
		_, err = tx.
			DeleteFrom("skill_index").
			Where("candidate_id = ? AND skill = ANY(?)", candidateID, pq.Array(stale)).
			ExecContext(ctx)
		if err != nil {
			s.logger.Error("failed to delete stale index entries",
				zap.String("candidate_id", candidateID),
				zap.Int("count", len(stale)),
				zap.Error(err),
			)
			return fmt.Errorf("delete stale index entries: %w", err)
		}
	}

	// Upsert every wanted skill so the denormalized metadata stays current
	// even for memberships that already existed.
	query := `
		INSERT INTO skill_index (
			skill, candidate_id, location, seniority, level_rank,
			work_model_prefs, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (skill, candidate_id) DO UPDATE SET
			location = EXCLUDED.location,
			seniority = EXCLUDED.seniority,
			level_rank = EXCLUDED.level_rank,
			work_model_prefs = EXCLUDED.work_model_prefs,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	for _, sk := range skills {
		_, err = tx.
			InsertBySql(query,
				sk,
				candidateID,
				meta.Location,
				meta.Seniority,
				meta.LevelRank,
				meta.WorkModelPrefs,
				now,
			).
			ExecContext(ctx)
		if err != nil {
			s.logger.Error("failed to upsert index entry",
				zap.String("candidate_id", candidateID),
				zap.String("skill", sk),
				zap.Error(err),
			)
			return fmt.Errorf("upsert index entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("skill index converged",
		zap.String("candidate_id", candidateID),
		zap.Int("skills", len(skills)),
		zap.Int("removed", len(stale)),
	)

	return nil
}

// DeleteSkillIndex drops every membership for a candidate. Used when the
// candidate deactivates or loses all skills.
func (s *Store) DeleteSkillIndex(ctx context.Context, candidateID string) error {
	_, err := s.sess.
		DeleteFrom("skill_index").
		Where("candidate_id = ?", candidateID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to delete skill index",
			zap.String("candidate_id", candidateID),
			zap.Error(err),
		)
		return fmt.Errorf("delete skill index: %w", err)
	}

	return nil
}

// LookupCandidatesBySeeds returns distinct candidate ids indexed under any of
// the seed skills. Each seed contributes at most perSeedLimit rows before the
// union is taken, keeping one hyper-common skill from dominating the scan.
func (s *Store) LookupCandidatesBySeeds(ctx context.Context, seeds []string, perSeedLimit int) ([]string, error) {
	if len(seeds) == 0 {
		return []string{}, nil
	}

	query := `
		SELECT DISTINCT candidate_id FROM (
			SELECT candidate_id,
			       ROW_NUMBER() OVER (PARTITION BY skill ORDER BY updated_at DESC) AS rn
			FROM skill_index
			WHERE skill = ANY($1)
		) ranked
		WHERE rn <= $2
	`

	var ids []string

	rows, err := s.sess.
		SelectBySql(query, pq.Array(seeds), perSeedLimit).
		Rows()

	if err != nil {
		s.logger.Error("failed to look up candidates by seeds",
			zap.Int("seeds", len(seeds)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("lookup candidates by seeds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan candidate id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	s.logger.Debug("seed lookup",
		zap.Int("seeds", len(seeds)),
		zap.Int("candidates", len(ids)),
	)

	return ids, nil
}

// GetCandidatesByIDs loads full candidate records for a fan-out scoring pass.
func (s *Store) GetCandidatesByIDs(ctx context.Context, candidateIDs []string) ([]models.Candidate, error) {
	if len(candidateIDs) == 0 {
		return []models.Candidate{}, nil
	}

	var candidates []models.Candidate

	_, err := s.sess.
		Select("*").
		From("candidates").
		Where("id = ANY(?)", pq.Array(candidateIDs)).
		LoadContext(ctx, &candidates)

	if err != nil {
		s.logger.Error("failed to get candidates by IDs",
			zap.Int("count", len(candidateIDs)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get candidates by IDs: %w", err)
	}

	return candidates, nil
}
