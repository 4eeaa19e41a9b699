package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RawJSON maps a jsonb column onto a raw message without forcing a schema.
type RawJSON json.RawMessage

func (r RawJSON) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.RawMessage(r).MarshalJSON()
}

func (r *RawJSON) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	*r = RawJSON(bytes)
	return nil
}

func (r RawJSON) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	return json.RawMessage(r).MarshalJSON()
}

func (r *RawJSON) UnmarshalJSON(data []byte) error {
	if r == nil {
		return fmt.Errorf("RawJSON: unmarshal into nil pointer")
	}
	*r = append((*r)[0:0], data...)
	return nil
}

// WorkModelPrefs is the candidate's work-model preference map stored as jsonb.
// Keys: "remote", "hybrid", "on-site" (legacy docs may carry "onsite").
type WorkModelPrefs map[string]bool

func (p WorkModelPrefs) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func (p *WorkModelPrefs) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, p)
}

func (p WorkModelPrefs) Remote() bool { return p["remote"] }
func (p WorkModelPrefs) Hybrid() bool { return p["hybrid"] }
func (p WorkModelPrefs) OnSite() bool { return p["on-site"] || p["onsite"] }

// SectionMap is a named-section -> text map stored as jsonb.
type SectionMap map[string]string

func (m SectionMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *SectionMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, m)
}
