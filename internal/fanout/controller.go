package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"techconnect-matcher/internal/match"
	"techconnect-matcher/internal/models"
	"techconnect-matcher/internal/skills"
	"techconnect-matcher/internal/storage/redis"

	"go.uber.org/zap"
)

// Fan-out bounds. One hot event must not turn into an unbounded scan.
const (
	maxActiveJobsPerCandidate = 300
	perSeedLookupLimit        = 500
	globalCandidateCap        = 1200
)

// Storage is the persistence surface the controller drives. *postgres.Store
// satisfies it; tests substitute a fake.
type Storage interface {
	GetCandidate(ctx context.Context, candidateID string) (*models.Candidate, error)
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	SyncCandidateSkills(ctx context.Context, candidateID string, effective, normalized []string) error
	SyncJobSkills(ctx context.Context, jobID string, requiredNorm, niceNorm []string) error

	ReplaceSkillIndex(ctx context.Context, candidateID string, skills []string, meta models.SkillIndexEntry) error
	DeleteSkillIndex(ctx context.Context, candidateID string) error
	LookupCandidatesBySeeds(ctx context.Context, seeds []string, perSeedLimit int) ([]string, error)
	GetCandidatesByIDs(ctx context.Context, candidateIDs []string) ([]models.Candidate, error)
	ListActiveJobs(ctx context.Context, limit int) ([]models.Job, error)

	ApplyMatchOps(ctx context.Context, ops []models.MatchOp) error
	DeleteMatchesForJob(ctx context.Context, jobID string) (int64, error)
	DeleteMatchesForCandidate(ctx context.Context, candidateID string) (int64, error)
	ListMatchCandidateIDsForJob(ctx context.Context, jobID string) ([]string, error)
}

// Cache absorbs repeated seed lookups for hot jobs. Misses are not errors.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Controller reacts to change events by converging the skill index and the
// match-record set. Every handler is idempotent: replaying an event produces
// byte-identical state.
type Controller struct {
	store  Storage
	cache  Cache
	logger *zap.Logger
}

func New(store Storage, cache Cache, logger *zap.Logger) *Controller {
	return &Controller{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// HandleCandidateWritten re-syncs the candidate's derived skill sets, their
// index memberships, and their match records against all active jobs.
func (c *Controller) HandleCandidateWritten(ctx context.Context, event *models.ChangeEvent) error {
	candidate, err := c.store.GetCandidate(ctx, event.CandidateID)
	if err != nil {
		return fmt.Errorf("load candidate: %w", err)
	}

	if candidate == nil {
		// Deleted: drop index memberships and every owned match record.
		if err := c.store.DeleteSkillIndex(ctx, event.CandidateID); err != nil {
			return err
		}
		_, err := c.store.DeleteMatchesForCandidate(ctx, event.CandidateID)
		return err
	}

	// Normalize-sync: recompute effective and normalized sets from the raw
	// fields and persist only on drift.
	manual := skills.SanitizeNormalized(candidate.SkillsManual)
	fromCv := skills.SanitizeNormalized(candidate.SkillsFromCv)
	effective := skills.Effective(manual, fromCv)
	normalized := skills.SanitizeNormalized(effective)

	if !sameSet(candidate.SkillsEffective, effective) || !sameSet(candidate.SkillsNormalized, normalized) {
		if err := c.store.SyncCandidateSkills(ctx, candidate.ID, effective, normalized); err != nil {
			return err
		}
		candidate.SkillsEffective = effective
		candidate.SkillsNormalized = normalized
	}

	// Index convergence.
	if !candidate.Active || len(normalized) == 0 {
		if err := c.store.DeleteSkillIndex(ctx, candidate.ID); err != nil {
			return err
		}
	} else {
		meta := models.SkillIndexEntry{
			CandidateID:    candidate.ID,
			Location:       candidate.Location,
			Seniority:      candidate.Seniority,
			LevelRank:      match.LevelRank(candidate.Seniority),
			WorkModelPrefs: candidate.WorkModelPrefs,
		}
		if err := c.store.ReplaceSkillIndex(ctx, candidate.ID, normalized, meta); err != nil {
			return err
		}
	}

	if !matchRelevantChanged(event.Before, candidate) {
		c.logger.Debug("candidate change not match-relevant",
			zap.String("candidate_id", candidate.ID),
		)
		return nil
	}

	jobs, err := c.store.ListActiveJobs(ctx, maxActiveJobsPerCandidate)
	if err != nil {
		return err
	}

	ops := make([]models.MatchOp, 0, len(jobs))
	kept := 0
	for i := range jobs {
		job := &jobs[i]
		op := models.MatchOp{CandidateID: candidate.ID, JobID: job.ID}
		if r := match.Match(candidate, job); r != nil {
			op.Record = c.buildRecord(candidate, job, r)
			kept++
		}
		ops = append(ops, op)
	}

	if err := c.store.ApplyMatchOps(ctx, ops); err != nil {
		return err
	}

	c.logger.Info("candidate recompute done",
		zap.String("candidate_id", candidate.ID),
		zap.Int("jobs_scanned", len(jobs)),
		zap.Int("matches", kept),
	)

	return nil
}

// HandleJobWritten re-syncs the job's normalized requirements and recomputes
// its match records over index-pruned candidates.
func (c *Controller) HandleJobWritten(ctx context.Context, event *models.ChangeEvent) error {
	job, err := c.store.GetJob(ctx, event.JobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}

	if job == nil || !job.Active {
		_, err := c.store.DeleteMatchesForJob(ctx, event.JobID)
		return err
	}

	requiredNorm := skills.SanitizeNormalized(job.RequiredSkills)
	niceNorm := skills.SanitizeNormalized(job.NiceToHaveSkills)

	if !sameSet(job.RequiredSkillsNormalized, requiredNorm) || !sameSet(job.NiceToHaveNormalized, niceNorm) {
		if err := c.store.SyncJobSkills(ctx, job.ID, requiredNorm, niceNorm); err != nil {
			return err
		}
		job.RequiredSkillsNormalized = requiredNorm
		job.NiceToHaveNormalized = niceNorm
	}

	// No requirements means unmatchable: converge to zero records.
	if len(requiredNorm) == 0 {
		_, err := c.store.DeleteMatchesForJob(ctx, job.ID)
		return err
	}

	seeds := skills.PickDiscriminative(requiredNorm, skills.SeedCount(len(requiredNorm)))

	candidateIDs, err := c.lookupCandidates(ctx, seeds)
	if err != nil {
		return err
	}
	if len(candidateIDs) > globalCandidateCap {
		candidateIDs = candidateIDs[:globalCandidateCap]
	}

	// Candidates holding a stored match must be re-scored even if the index
	// no longer reaches them, so stale records get deleted.
	existing, err := c.store.ListMatchCandidateIDsForJob(ctx, job.ID)
	if err != nil {
		return err
	}
	candidateIDs = unionIDs(candidateIDs, existing)

	candidates, err := c.store.GetCandidatesByIDs(ctx, candidateIDs)
	if err != nil {
		return err
	}

	ops := make([]models.MatchOp, 0, len(candidates))
	kept := 0
	for i := range candidates {
		candidate := &candidates[i]
		op := models.MatchOp{CandidateID: candidate.ID, JobID: job.ID}
		if r := match.Match(candidate, job); r != nil {
			op.Record = c.buildRecord(candidate, job, r)
			kept++
		}
		ops = append(ops, op)
	}

	if err := c.store.ApplyMatchOps(ctx, ops); err != nil {
		return err
	}

	c.logger.Info("job recompute done",
		zap.String("job_id", job.ID),
		zap.Int("seeds", len(seeds)),
		zap.Int("candidates_scanned", len(candidates)),
		zap.Int("matches", kept),
	)

	return nil
}

// HandleJobDeleted is the fan-in cleanup for a removed job.
func (c *Controller) HandleJobDeleted(ctx context.Context, event *models.ChangeEvent) error {
	_, err := c.store.DeleteMatchesForJob(ctx, event.JobID)
	return err
}

func (c *Controller) lookupCandidates(ctx context.Context, seeds []string) ([]string, error) {
	key := redis.SeedLookupKey(seeds)

	if c.cache != nil {
		var cached []string
		if err := c.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	ids, err := c.store.LookupCandidatesBySeeds(ctx, seeds, perSeedLookupLimit)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, ids, redis.SeedLookupTTL()); err != nil {
			c.logger.Debug("seed lookup cache write failed", zap.Error(err))
		}
	}

	return ids, nil
}

func (c *Controller) buildRecord(candidate *models.Candidate, job *models.Job, r *match.Result) *models.MatchRecord {
	reasons := match.BuildReasons(r, job, requiredCount(job))

	details, _ := json.Marshal(r.ConfidenceDetails)
	snapshot, _ := json.Marshal(models.SnapshotOf(job))

	return &models.MatchRecord{
		CandidateID: candidate.ID,
		JobID:       job.ID,

		Score:                    r.Score,
		ScoreInternal:            r.ScoreInternal,
		ScoreRawBeforeConfidence: r.ScoreRawBeforeConfidence,

		ConfidenceScore:   r.ConfidenceScore,
		ConfidenceBadge:   r.ConfidenceBadge,
		ConfidenceDetails: models.RawJSON(details),

		Reasons: reasons,

		MatchedSkills:     r.MatchedSkills,
		MissingSkills:     r.MissingSkills,
		MatchedNiceSkills: r.MatchedNiceSkills,
		MissingNiceSkills: r.MissingNiceSkills,

		ReqRatio:       r.ReqRatio,
		MissingPenalty: r.MissingPenalty,
		NiceBonus:      r.NiceBonus,
		MobileBonus:    r.MobileBonus,
		BioBonus:       r.BioBonus,
		GeoBonus:       r.GeoBonus,
		DistanceKm:     r.DistanceKm,

		JobSnapshot: models.RawJSON(snapshot),
	}
}

func requiredCount(job *models.Job) int {
	if n := len(job.RequiredSkillsNormalized); n > 0 {
		return n
	}
	return len(job.RequiredSkills)
}

// matchRelevantChanged compares the event's before snapshot against current
// state. Missing snapshot means we cannot prove the change irrelevant, so
// recompute.
func matchRelevantChanged(before json.RawMessage, current *models.Candidate) bool {
	if len(before) == 0 {
		return true
	}

	var prev models.Candidate
	if err := json.Unmarshal(before, &prev); err != nil {
		return true
	}

	if prev.Active != current.Active ||
		prev.Location != current.Location ||
		prev.Bio != current.Bio ||
		prev.Seniority != current.Seniority {
		return true
	}
	if !sameSet(prev.SkillsEffective, current.SkillsEffective) {
		return true
	}
	if !samePrefs(prev.WorkModelPrefs, current.WorkModelPrefs) {
		return true
	}
	if !sameCoord(prev.Lat, current.Lat) || !sameCoord(prev.Lon, current.Lon) {
		return true
	}
	return false
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if !set[s] {
			return false
		}
	}
	return true
}

func samePrefs(a, b models.WorkModelPrefs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func sameCoord(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func unionIDs(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, id := range a {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range b {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
