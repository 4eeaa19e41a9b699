package models

import (
	"time"

	"github.com/lib/pq"
)

// MatchRecord is derived state keyed by (candidate, job). It is overwritten on
// every recompute and deleted when the pairing no longer qualifies.
type MatchRecord struct {
	CandidateID string `db:"candidate_id"`
	JobID       string `db:"job_id"`

	// Display score shown to the user; never used for ranking.
	Score int `db:"score"`

	// Internal scores used for ranking and eligibility.
	ScoreInternal            int `db:"score_internal"`
	ScoreRawBeforeConfidence int `db:"score_raw_before_confidence"`

	ConfidenceScore   float64 `db:"confidence_score"`
	ConfidenceBadge   string  `db:"confidence_badge"`
	ConfidenceDetails RawJSON `db:"confidence_details"`

	Reasons pq.StringArray `db:"reasons"`

	MatchedSkills     pq.StringArray `db:"matched_skills"`
	MissingSkills     pq.StringArray `db:"missing_skills"`
	MatchedNiceSkills pq.StringArray `db:"matched_nice_skills"`
	MissingNiceSkills pq.StringArray `db:"missing_nice_skills"`

	ReqRatio       float64  `db:"req_ratio"`
	MissingPenalty int      `db:"missing_penalty"`
	NiceBonus      int      `db:"nice_bonus"`
	MobileBonus    int      `db:"mobile_bonus"`
	BioBonus       int      `db:"bio_bonus"`
	GeoBonus       int      `db:"geo_bonus"`
	DistanceKm     *float64 `db:"distance_km"`

	JobSnapshot RawJSON `db:"job_snapshot"`

	UpdatedAt time.Time `db:"updated_at"`
}

// MatchOp is one pending write against the match-record set. Ops are flushed
// in bounded batches by the fan-out controller.
type MatchOp struct {
	CandidateID string
	JobID       string
	Record      *MatchRecord // nil means delete
}

// SkillIndexEntry is a (skill -> candidate) membership with the denormalized
// eligibility metadata used to prune candidates before full scoring.
type SkillIndexEntry struct {
	Skill       string `db:"skill"`
	CandidateID string `db:"candidate_id"`

	Location       string         `db:"location"`
	Seniority      string         `db:"seniority"`
	LevelRank      *int           `db:"level_rank"`
	WorkModelPrefs WorkModelPrefs `db:"work_model_prefs"`

	UpdatedAt time.Time `db:"updated_at"`
}
