package types

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// SalaryRange is a job-side salary band in yen. Either bound may be absent.
type SalaryRange struct {
	MinJPY *int64 `json:"min_jpy,omitempty" validate:"omitempty,gte=0"`
	MaxJPY *int64 `json:"max_jpy,omitempty" validate:"omitempty,gte=0"`
}

// JobConstraints are the hard requirements attached to a job description.
// An empty list or nil pointer means the constraint is not enforced.
type JobConstraints struct {
	Language    []string     `json:"language,omitempty"`
	Location    []string     `json:"location,omitempty"`
	Visa        string       `json:"visa,omitempty"`
	SalaryRange *SalaryRange `json:"salary_range,omitempty"`
}

// EvaluationOverrides is a free-form per-JD mapping consulted by individual
// evaluators; each evaluator decodes only its own slice.
type EvaluationOverrides map[string]json.RawMessage

// Decode unmarshals the override slice stored under key into v. Returns
// false when no override is present for the key.
func (o EvaluationOverrides) Decode(key string, v any) (bool, error) {
	raw, ok := o[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, err
	}
	return true, nil
}

// JobDescription is the provider-neutral job document.
type JobDescription struct {
	JobID               string              `json:"job_id" validate:"required"`
	Locale              string              `json:"locale,omitempty"`
	RoleTitles          []string            `json:"role_titles,omitempty"`
	RequirementsText    []string            `json:"requirements_text,omitempty"`
	KeyPhrases          []string            `json:"key_phrases,omitempty"`
	Constraints         JobConstraints      `json:"constraints,omitempty"`
	EvaluationOverrides EvaluationOverrides `json:"evaluation_overrides,omitempty"`
}

// Validate checks the job document's required fields and value ranges.
func (j *JobDescription) Validate() error {
	validate := validator.New()
	return validate.Struct(j)
}

// UnmarshalJSON rejects unknown attributes inside job constraints.
func (c *JobConstraints) UnmarshalJSON(data []byte) error {
	type alias JobConstraints
	return strictUnmarshal(data, (*alias)(c))
}

// UnmarshalJSON rejects unknown attributes inside salary ranges.
func (r *SalaryRange) UnmarshalJSON(data []byte) error {
	type alias SalaryRange
	return strictUnmarshal(data, (*alias)(r))
}
