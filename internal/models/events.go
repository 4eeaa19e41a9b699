package models

import "encoding/json"

// Change-event kinds delivered over the work queue. Delivery is at-least-once
// with no ordering guarantee; every handler must be idempotent.
const (
	EventCandidateWritten  = "candidate.written"
	EventJobWritten        = "job.written"
	EventJobDeleted        = "job.deleted"
	EventAnalysisRequested = "analysis.requested"
)

// ChangeEvent is one upstream change notification. Before/After carry the
// record snapshots the trigger source observed; handlers re-read current
// state before any conditional write.
type ChangeEvent struct {
	Kind string `json:"kind"`

	CandidateID string `json:"candidateId,omitempty"`
	JobID       string `json:"jobId,omitempty"`
	AnalysisID  string `json:"analysisId,omitempty"`

	Before json.RawMessage `json:"before,omitempty"`
	After  json.RawMessage `json:"after,omitempty"`
}
