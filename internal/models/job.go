package models

import (
	"time"

	"github.com/lib/pq"
)

type Job struct {
	ID          string   `db:"id" json:"id"`
	Title       string   `db:"title" json:"title"`
	CompanyID   string   `db:"company_id" json:"companyId,omitempty"`
	CompanyName string   `db:"company_name" json:"companyName,omitempty"`
	Location    string   `db:"location" json:"location,omitempty"`
	WorkModel   string   `db:"work_model" json:"workModel,omitempty"`
	Level       string   `db:"level" json:"level,omitempty"`
	MinSalary   *int     `db:"min_salary" json:"minSalary,omitempty"`
	MaxSalary   *int     `db:"max_salary" json:"maxSalary,omitempty"`
	Currency    string   `db:"currency" json:"currency,omitempty"`
	Active      bool     `db:"active" json:"isActive"`
	Lat         *float64 `db:"lat" json:"lat,omitempty"`
	Lon         *float64 `db:"lon" json:"lon,omitempty"`

	RequiredSkills           pq.StringArray `db:"required_skills" json:"requiredSkills,omitempty"`
	RequiredSkillsNormalized pq.StringArray `db:"required_skills_normalized" json:"requiredSkillsNormalized,omitempty"`
	NiceToHaveSkills         pq.StringArray `db:"nice_to_have_skills" json:"niceToHaveSkills,omitempty"`
	NiceToHaveNormalized     pq.StringArray `db:"nice_to_have_normalized" json:"niceToHaveSkillsNormalized,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (j *Job) HasGeo() bool {
	return j != nil && j.Lat != nil && j.Lon != nil
}

// JobSnapshot is the denormalized job view carried on a match record for
// display; it must never be read back as a source of truth.
type JobSnapshot struct {
	JobID            string   `json:"jobId"`
	Title            string   `json:"title,omitempty"`
	CompanyID        string   `json:"companyId,omitempty"`
	CompanyName      string   `json:"companyName,omitempty"`
	Location         string   `json:"location,omitempty"`
	WorkModel        string   `json:"workModel,omitempty"`
	Level            string   `json:"level,omitempty"`
	MinSalary        *int     `json:"minSalary,omitempty"`
	MaxSalary        *int     `json:"maxSalary,omitempty"`
	Currency         string   `json:"currency,omitempty"`
	Lat              *float64 `json:"lat,omitempty"`
	Lon              *float64 `json:"lon,omitempty"`
	RequiredSkills   []string `json:"requiredSkills,omitempty"`
	NiceToHaveSkills []string `json:"niceToHaveSkills,omitempty"`
}

func SnapshotOf(j *Job) JobSnapshot {
	return JobSnapshot{
		JobID:            j.ID,
		Title:            j.Title,
		CompanyID:        j.CompanyID,
		CompanyName:      j.CompanyName,
		Location:         j.Location,
		WorkModel:        j.WorkModel,
		Level:            j.Level,
		MinSalary:        j.MinSalary,
		MaxSalary:        j.MaxSalary,
		Currency:         j.Currency,
		Lat:              j.Lat,
		Lon:              j.Lon,
		RequiredSkills:   j.RequiredSkills,
		NiceToHaveSkills: j.NiceToHaveSkills,
	}
}
