package models

import (
	"time"

	"github.com/lib/pq"
)

// Parse / AI statuses on the candidate record. Every handler that sets an
// in-progress status must leave the record on a terminal one.
const (
	ParseStatusParsing = "parsing"
	ParseStatusDone    = "done"
	ParseStatusError   = "error"

	QualityGood    = "good"
	QualityBad     = "bad"
	QualityUnknown = "unknown"

	AIStatusPending        = "pending"
	AIStatusRunning        = "running"
	AIStatusDone           = "done"
	AIStatusError          = "error"
	AIStatusSkippedSame    = "skipped_same_hash"
	AIStatusSkippedBadCv   = "skipped_bad_cv"
)

type Candidate struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Bio       string  `db:"bio" json:"bio"`
	Location  string  `db:"location" json:"location"`
	Seniority string  `db:"seniority" json:"seniority"`
	Active    bool    `db:"active" json:"active"`
	Lat       *float64 `db:"lat" json:"lat,omitempty"`
	Lon       *float64 `db:"lon" json:"lon,omitempty"`

	WorkModelPrefs WorkModelPrefs `db:"work_model_prefs" json:"workModelPrefs,omitempty"`

	// Skill sets. SkillsEffective is the only set the match engine reads.
	SkillsManual     pq.StringArray `db:"skills_manual" json:"skillsManual,omitempty"`
	SkillsFromCv     pq.StringArray `db:"skills_from_cv" json:"skillsFromCv,omitempty"`
	SkillsEffective  pq.StringArray `db:"skills_effective" json:"skillsEffective,omitempty"`
	SkillsNormalized pq.StringArray `db:"skills_normalized" json:"skillsNormalized,omitempty"`

	// CV parse state
	CvURL              string `db:"cv_url" json:"cvUrl,omitempty"`
	CvTextHash         string `db:"cv_text_hash" json:"cvTextHash,omitempty"`
	ParseStatus        string `db:"parse_status" json:"parseStatus,omitempty"`
	ParseRequestID     string `db:"parse_request_id" json:"parseRequestId,omitempty"`
	ParseError         string `db:"parse_error" json:"parseError,omitempty"`
	ParseQuality       string `db:"parse_quality" json:"parseQuality,omitempty"`
	ParseQualityReason string `db:"parse_quality_reason" json:"parseQualityReason,omitempty"`

	ParseQualityFlags   pq.StringArray `db:"parse_quality_flags" json:"parseQualityFlags,omitempty"`
	ParseQualityMetrics RawJSON        `db:"parse_quality_metrics" json:"parseQualityMetrics,omitempty"`

	AIStatus    string `db:"ai_status" json:"aiStatus,omitempty"`
	AIRequestID string `db:"ai_request_id" json:"aiRequestId,omitempty"`
	AIError     string `db:"ai_error" json:"aiError,omitempty"`

	ProfileSummary string `db:"profile_summary" json:"profileSummary,omitempty"`

	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
	ParsedAt  *time.Time `db:"parsed_at" json:"parsedAt,omitempty"`
}

// HasGeo reports whether the candidate carries a usable coordinate.
func (c *Candidate) HasGeo() bool {
	return c != nil && c.Lat != nil && c.Lon != nil
}
