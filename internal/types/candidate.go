// Package types provides type definitions for the provider-neutral candidate
// and job documents consumed by the screening engine.
package types

import (
	"bytes"
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// ContactInfo holds contact channels for a candidate.
type ContactInfo struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ExperienceEntry is a single employment history entry. Dates are "YYYY-MM"
// strings; a missing End or the literal "現在" means the engagement is ongoing.
type ExperienceEntry struct {
	Company        string   `json:"company"`
	Title          string   `json:"title"`
	Start          string   `json:"start,omitempty"`
	End            string   `json:"end,omitempty"`
	EmploymentType string   `json:"employment_type,omitempty"`
	Summary        string   `json:"summary,omitempty"`
	Bullets        []string `json:"bullets,omitempty"`
}

// EducationEntry is a structured education history entry.
type EducationEntry struct {
	School string `json:"school"`
	Major  string `json:"major,omitempty"`
	Degree string `json:"degree,omitempty"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

// LanguageProficiency describes one language a candidate speaks.
type LanguageProficiency struct {
	Language string `json:"language"`
	Level    string `json:"level,omitempty"`
}

// SkillAggregate carries aggregated per-skill metadata.
type SkillAggregate struct {
	Years    *float64 `json:"years,omitempty"`
	LastUsed string   `json:"last_used,omitempty"`
}

// CandidateConstraints are candidate-side hard constraints.
type CandidateConstraints struct {
	Language    []string `json:"language,omitempty"`
	Location    []string `json:"location,omitempty"`
	Visa        string   `json:"visa,omitempty"`
	CanRelocate *bool    `json:"can_relocate,omitempty"`
	RemoteOK    *bool    `json:"remote_ok,omitempty"`
}

// ProviderRaw preserves the original provider payload alongside the
// normalized profile so downstream consumers can audit the conversion.
type ProviderRaw struct {
	Text   string         `json:"text,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// CandidateProfile is the provider-neutral résumé document. Unknown
// top-level JSON attributes are ignored; unknown attributes inside nested
// objects are rejected during decoding.
type CandidateProfile struct {
	Provider            string                    `json:"provider" validate:"required"`
	CandidateID         string                    `json:"candidate_id" validate:"required"`
	Name                string                    `json:"name,omitempty"`
	Gender              string                    `json:"gender,omitempty"`
	Age                 *int                      `json:"age,omitempty" validate:"omitempty,gte=0"`
	Location            string                    `json:"location,omitempty"`
	Contact             ContactInfo               `json:"contact,omitempty"`
	Experiences         []ExperienceEntry         `json:"experiences,omitempty"`
	Education           []EducationEntry          `json:"education,omitempty"`
	Skills              []string                  `json:"skills,omitempty"`
	Languages           []LanguageProficiency     `json:"languages,omitempty"`
	Certifications      []string                  `json:"certifications,omitempty"`
	Awards              []string                  `json:"awards,omitempty"`
	DesiredSalaryMinJPY *int64                    `json:"desired_salary_min_jpy,omitempty" validate:"omitempty,gte=0"`
	DesiredSalaryMaxJPY *int64                    `json:"desired_salary_max_jpy,omitempty" validate:"omitempty,gte=0"`
	Constraints         *CandidateConstraints     `json:"constraints,omitempty"`
	SkillsAgg           map[string]SkillAggregate `json:"skills_agg,omitempty"`
	Notes               string                    `json:"notes,omitempty"`
	ProviderRaw         ProviderRaw               `json:"provider_raw,omitempty"`
}

// Validate checks the profile's required fields and value ranges.
func (p *CandidateProfile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// DecodeCandidateProfile decodes a profile-shaped JSON document. Unknown
// nested attributes fail the decode via the strict nested unmarshalers.
func DecodeCandidateProfile(data []byte) (*CandidateProfile, error) {
	var profile CandidateProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// strictUnmarshal decodes data into v, rejecting unknown fields.
func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// UnmarshalJSON rejects unknown attributes inside experience entries.
func (e *ExperienceEntry) UnmarshalJSON(data []byte) error {
	type alias ExperienceEntry
	return strictUnmarshal(data, (*alias)(e))
}

// UnmarshalJSON rejects unknown attributes inside education entries.
func (e *EducationEntry) UnmarshalJSON(data []byte) error {
	type alias EducationEntry
	return strictUnmarshal(data, (*alias)(e))
}

// UnmarshalJSON rejects unknown attributes inside language entries.
func (l *LanguageProficiency) UnmarshalJSON(data []byte) error {
	type alias LanguageProficiency
	return strictUnmarshal(data, (*alias)(l))
}

// UnmarshalJSON rejects unknown attributes inside contact blocks.
func (c *ContactInfo) UnmarshalJSON(data []byte) error {
	type alias ContactInfo
	return strictUnmarshal(data, (*alias)(c))
}

// UnmarshalJSON rejects unknown attributes inside candidate constraints.
func (c *CandidateConstraints) UnmarshalJSON(data []byte) error {
	type alias CandidateConstraints
	return strictUnmarshal(data, (*alias)(c))
}

// UnmarshalJSON rejects unknown attributes inside skill aggregates.
func (s *SkillAggregate) UnmarshalJSON(data []byte) error {
	type alias SkillAggregate
	return strictUnmarshal(data, (*alias)(s))
}
