package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCandidateProfile_Full(t *testing.T) {
	doc := `{
		"provider": "bizreach",
		"candidate_id": "BU0000001",
		"gender": "男性",
		"age": 34,
		"location": "Tokyo",
		"experiences": [
			{"company": "Acme", "title": "Engineer", "start": "2020-01", "end": "2024-06", "employment_type": "contract", "bullets": ["did things"]}
		],
		"skills": ["Go"],
		"languages": [{"language": "日本語", "level": "ネイティブ"}],
		"desired_salary_min_jpy": 6000000,
		"constraints": {"visa": "ok", "can_relocate": true},
		"skills_agg": {"go": {"years": 4.5, "last_used": "2024-06"}},
		"provider_raw": {"text": "raw text", "fields": {"職務要約": "..."}}
	}`
	profile, err := DecodeCandidateProfile([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "BU0000001", profile.CandidateID)
	require.NotNil(t, profile.Age)
	assert.Equal(t, 34, *profile.Age)
	assert.Equal(t, "contract", profile.Experiences[0].EmploymentType)
	require.NotNil(t, profile.Constraints)
	require.NotNil(t, profile.Constraints.CanRelocate)
	assert.True(t, *profile.Constraints.CanRelocate)
	assert.Equal(t, int64(6000000), *profile.DesiredSalaryMinJPY)
	assert.Equal(t, 4.5, *profile.SkillsAgg["go"].Years)
	assert.NoError(t, profile.Validate())
}

func TestDecodeCandidateProfile_UnknownTopLevelIgnored(t *testing.T) {
	profile, err := DecodeCandidateProfile([]byte(`{"provider": "bizreach", "candidate_id": "x", "vendor_extras": {"a": 1}}`))
	require.NoError(t, err)
	assert.Equal(t, "x", profile.CandidateID)
}

func TestDecodeCandidateProfile_UnknownNestedRejected(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"experience", `{"provider": "p", "candidate_id": "c", "experiences": [{"company": "A", "surprise": 1}]}`},
		{"language", `{"provider": "p", "candidate_id": "c", "languages": [{"language": "ja", "fluencyy": "x"}]}`},
		{"constraints", `{"provider": "p", "candidate_id": "c", "constraints": {"remote": true}}`},
		{"education", `{"provider": "p", "candidate_id": "c", "education": [{"school": "X", "gpa": 4.0}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCandidateProfile([]byte(tc.doc))
			assert.Error(t, err)
		})
	}
}

func TestCandidateProfile_Validate(t *testing.T) {
	profile := &CandidateProfile{Provider: "bizreach", CandidateID: "BU0000001"}
	assert.NoError(t, profile.Validate())

	profile.CandidateID = ""
	assert.Error(t, profile.Validate())

	negative := -1
	profile = &CandidateProfile{Provider: "bizreach", CandidateID: "x", Age: &negative}
	assert.Error(t, profile.Validate())
}

func TestJobDescription_DecodeAndValidate(t *testing.T) {
	doc := `{
		"job_id": "job-1",
		"constraints": {"language": ["ja"], "salary_range": {"min_jpy": 6000000}},
		"evaluation_overrides": {"jd_keywords": {"must": ["go"]}}
	}`
	var job JobDescription
	require.NoError(t, strictDecode(t, doc, &job))
	assert.NoError(t, job.Validate())

	var override struct {
		Must []string `json:"must"`
	}
	found, err := job.EvaluationOverrides.Decode("jd_keywords", &override)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"go"}, override.Must)

	found, err = job.EvaluationOverrides.Decode("salary", &override)
	require.NoError(t, err)
	assert.False(t, found)
}

func strictDecode(t *testing.T, doc string, v any) error {
	t.Helper()
	return strictUnmarshal([]byte(doc), v)
}

func TestJobConstraints_UnknownFieldRejected(t *testing.T) {
	var job JobDescription
	err := strictDecode(t, `{"job_id": "j", "constraints": {"timezone": "JST"}}`, &job)
	assert.Error(t, err)
}
