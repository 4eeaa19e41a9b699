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

func (s *Store) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job

	err := s.sess.
		Select("*").
		From("jobs").
		Where("id = ?", jobID).
		LoadOneContext(ctx, &job)

	if err == dbr.ErrNotFound {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get job",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get job: %w", err)
	}

	return &job, nil
}

func (s *Store) SaveJob(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (
			id, title, company_id, company_name, location, work_model, level,
			min_salary, max_salary, currency, active, lat, lon,
			required_skills, required_skills_normalized,
			nice_to_have_skills, nice_to_have_normalized, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			company_id = EXCLUDED.company_id,
			company_name = EXCLUDED.company_name,
			location = EXCLUDED.location,
			work_model = EXCLUDED.work_model,
			level = EXCLUDED.level,
			min_salary = EXCLUDED.min_salary,
			max_salary = EXCLUDED.max_salary,
			currency = EXCLUDED.currency,
			active = EXCLUDED.active,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			required_skills = EXCLUDED.required_skills,
			required_skills_normalized = EXCLUDED.required_skills_normalized,
			nice_to_have_skills = EXCLUDED.nice_to_have_skills,
			nice_to_have_normalized = EXCLUDED.nice_to_have_normalized,
			updated_at = NOW()
	`

	_, err := s.sess.
		InsertBySql(query,
			job.ID,
			job.Title,
			job.CompanyID,
			job.CompanyName,
			job.Location,
			job.WorkModel,
			job.Level,
			job.MinSalary,
			job.MaxSalary,
			job.Currency,
			job.Active,
			job.Lat,
			job.Lon,
			job.RequiredSkills,
			job.RequiredSkillsNormalized,
			job.NiceToHaveSkills,
			job.NiceToHaveNormalized,
		).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to save job",
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
		return fmt.Errorf("save job: %w", err)
	}

	return nil
}

// SyncJobSkills persists the recomputed normalized requirement sets.
func (s *Store) SyncJobSkills(ctx context.Context, jobID string, requiredNorm, niceNorm []string) error {
	_, err := s.sess.
		Update("jobs").
		Set("required_skills_normalized", pq.StringArray(requiredNorm)).
		Set("nice_to_have_normalized", pq.StringArray(niceNorm)).
		Set("updated_at", time.Now()).
		Where("id = ?", jobID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to sync job skills",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return fmt.Errorf("sync job skills: %w", err)
	}

	return nil
}

func (s *Store) ListActiveJobs(ctx context.Context, limit int) ([]models.Job, error) {
	var jobs []models.Job

	_, err := s.sess.
		Select("*").
		From("jobs").
		Where("active = TRUE").
		OrderDir("updated_at", false).
		Limit(uint64(limit)).
		LoadContext(ctx, &jobs)

	if err != nil {
		s.logger.Error("failed to list active jobs",
			zap.Int("limit", limit),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list active jobs: %w", err)
	}

	return jobs, nil
}

func (s *Store) DeleteJob(ctx context.Context, jobID string) error {
	_, err := s.sess.
		DeleteFrom("jobs").
		Where("id = ?", jobID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to delete job",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return fmt.Errorf("delete job: %w", err)
	}

	return nil
}
