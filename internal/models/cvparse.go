package models

import (
	"time"

	"github.com/lib/pq"
)

// CvParse is the immutable artifact of one parse request.
type CvParse struct {
	RequestID   string `db:"request_id"`
	CandidateID string `db:"candidate_id"`
	CvURL       string `db:"cv_url"`
	CvTextHash  string `db:"cv_text_hash"`

	FullText string     `db:"full_text"`
	Sections SectionMap `db:"sections"`

	SkillsSeed           pq.StringArray `db:"skills_seed"`
	SkillsNormalizedSeed pq.StringArray `db:"skills_normalized_seed"`

	AIRequestID string  `db:"ai_request_id"`
	AIReport    RawJSON `db:"ai_report"`

	CreatedAt    time.Time  `db:"created_at"`
	AIFinishedAt *time.Time `db:"ai_finished_at"`
}

// ParseOutcome carries the candidate-facing results of a finished parse.
type ParseOutcome struct {
	CvTextHash     string
	Summary        string
	Quality        string
	QualityReason  string
	QualityFlags   pq.StringArray
	QualityMetrics RawJSON
}

const (
	AnalysisStatusQueued  = "queued"
	AnalysisStatusRunning = "running"
	AnalysisStatusDone    = "done"
	AnalysisStatusError   = "error"
)

// CvAnalysis is a standalone report request over a submitted CV, independent
// of the candidate's stored profile.
type CvAnalysis struct {
	ID          string `db:"id" json:"id"`
	CandidateID string `db:"candidate_id" json:"uid"`
	CvURL       string `db:"cv_url" json:"cvUrl"`
	TargetRole  string `db:"target_role" json:"targetRole,omitempty"`

	Status string `db:"status" json:"status"`
	Error  string `db:"error" json:"error,omitempty"`

	CvTextHash          string         `db:"cv_text_hash" json:"cvTextHash,omitempty"`
	ParseQuality        string         `db:"parse_quality" json:"parseQuality,omitempty"`
	ParseQualityReason  string         `db:"parse_quality_reason" json:"parseQualityReason,omitempty"`
	ParseQualityFlags   pq.StringArray `db:"parse_quality_flags" json:"parseQualityFlags,omitempty"`
	ParseQualityMetrics RawJSON        `db:"parse_quality_metrics" json:"parseQualityMetrics,omitempty"`

	Extracted RawJSON `db:"extracted" json:"extracted,omitempty"`
	Report    RawJSON `db:"report" json:"report,omitempty"`

	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	StartedAt  *time.Time `db:"started_at" json:"startedAt,omitempty"`
	FinishedAt *time.Time `db:"finished_at" json:"finishedAt,omitempty"`
}
