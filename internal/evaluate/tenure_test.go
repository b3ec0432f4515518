package evaluate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hr-screening/internal/types"
)

func tenureCtx(asOf string) *Context {
	return &Context{
		Job:  &types.JobDescription{JobID: "job-1"},
		AsOf: asOf,
		Now:  func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) },
	}
}

func tenureProfile(experiences ...types.ExperienceEntry) *types.CandidateProfile {
	return &types.CandidateProfile{
		Provider:    "bizreach",
		CandidateID: "BU0000001",
		Experiences: experiences,
	}
}

func TestTenure_Method(t *testing.T) {
	assert.Equal(t, "tenure", NewTenure(DefaultTenureConfig()).Method())
}

func TestTenure_LongTenuresPass(t *testing.T) {
	e := NewTenure(DefaultTenureConfig())
	profile := tenureProfile(
		types.ExperienceEntry{Company: "A", Start: "2015-01", End: "2019-01"},
		types.ExperienceEntry{Company: "B", Start: "2019-01", End: "2024-01"},
	)
	result, err := e.Evaluate(profile, tenureCtx("2025-06"))
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.Scores["tenure_pass"])
	assert.Equal(t, 54.0, result.Scores["tenure_avg_months"])
	assert.Equal(t, false, result.Metadata["is_job_hopper"])
}

func TestTenure_RecentShortStintsFlagHopper(t *testing.T) {
	e := NewTenure(DefaultTenureConfig())
	profile := tenureProfile(
		types.ExperienceEntry{Company: "A", Start: "2024-01", End: "2024-06"},
		types.ExperienceEntry{Company: "B", Start: "2023-01", End: "2023-11"},
		types.ExperienceEntry{Company: "C", Start: "2022-01", End: "2022-09"},
	)
	result, err := e.Evaluate(profile, tenureCtx("2025-06"))
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Scores["tenure_pass"])
	assert.Equal(t, true, result.Metadata["is_job_hopper"])
	assert.Equal(t, 3, result.Metadata["recent_short_tenures"])
}

func TestTenure_ContractorRelaxation(t *testing.T) {
	e := NewTenure(DefaultTenureConfig())
	profile := tenureProfile(
		types.ExperienceEntry{Company: "A", Start: "2024-06", End: "2025-05", EmploymentType: "contract"},
		types.ExperienceEntry{Company: "B", Start: "2023-06", End: "2024-05", EmploymentType: "業務委託"},
		types.ExperienceEntry{Company: "C", Start: "2022-03", End: "2023-05", EmploymentType: "freelance"},
	)
	result, err := e.Evaluate(profile, tenureCtx("2025-06"))
	require.NoError(t, err)

	// two recent stints under 12 months and a sub-18 average would flag a
	// hopper, but the all-contract average of 12 months clears the bar
	assert.Equal(t, true, result.Metadata["is_job_hopper"])
	assert.Equal(t, true, result.Metadata["is_contract_profile"])
	assert.Equal(t, true, result.Metadata["passes_contract_rule"])
	assert.Equal(t, 1.0, result.Scores["tenure_pass"])
}

func TestTenure_MixedEmploymentNoRelaxation(t *testing.T) {
	e := NewTenure(DefaultTenureConfig())
	profile := tenureProfile(
		types.ExperienceEntry{Company: "A", Start: "2024-01", End: "2024-06", EmploymentType: "contract"},
		types.ExperienceEntry{Company: "B", Start: "2023-01", End: "2023-11"},
		types.ExperienceEntry{Company: "C", Start: "2022-01", End: "2022-09", EmploymentType: "contract"},
	)
	result, err := e.Evaluate(profile, tenureCtx("2025-06"))
	require.NoError(t, err)

	assert.Equal(t, false, result.Metadata["is_contract_profile"])
	assert.Equal(t, 0.0, result.Scores["tenure_pass"])
}

func TestTenure_SkipsUnparseableAndReversedSpans(t *testing.T) {
	e := NewTenure(DefaultTenureConfig())
	profile := tenureProfile(
		types.ExperienceEntry{Company: "A", Start: "unknown", End: "2024-01"},
		types.ExperienceEntry{Company: "B", Start: "2024-01", End: "2023-01"},
		types.ExperienceEntry{Company: "C", Start: "2020-01", End: "2024-01"},
	)
	result, err := e.Evaluate(profile, tenureCtx("2025-06"))
	require.NoError(t, err)

	spans := result.Metadata["per_experience"].([]TenureSpan)
	require.Len(t, spans, 1)
	assert.Equal(t, "C", spans[0].Company)
	assert.Equal(t, 48, spans[0].Months)
}

func TestTenure_OpenEndedUsesAsOf(t *testing.T) {
	e := NewTenure(DefaultTenureConfig())
	profile := tenureProfile(
		types.ExperienceEntry{Company: "A", Start: "2024-06"},
	)
	result, err := e.Evaluate(profile, tenureCtx("2025-06"))
	require.NoError(t, err)

	spans := result.Metadata["per_experience"].([]TenureSpan)
	require.Len(t, spans, 1)
	assert.Equal(t, 12, spans[0].Months)
	assert.Equal(t, "2025-06", result.Metadata["as_of"])
}

func TestTenure_ClockFallbackWhenAsOfMissing(t *testing.T) {
	e := NewTenure(DefaultTenureConfig())
	profile := tenureProfile(
		types.ExperienceEntry{Company: "A", Start: "2025-01"},
	)
	result, err := e.Evaluate(profile, tenureCtx(""))
	require.NoError(t, err)

	assert.Equal(t, "2025-06", result.Metadata["as_of"])
	spans := result.Metadata["per_experience"].([]TenureSpan)
	assert.Equal(t, 5, spans[0].Months)
}

func TestTenure_NoExperiences(t *testing.T) {
	e := NewTenure(DefaultTenureConfig())
	result, err := e.Evaluate(tenureProfile(), tenureCtx("2025-06"))
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.Scores["tenure_pass"])
	assert.Equal(t, 0.0, result.Scores["tenure_avg_months"])
	assert.Equal(t, false, result.Metadata["is_job_hopper"])
}

func TestTenure_SpansSortedByEndDescending(t *testing.T) {
	e := NewTenure(DefaultTenureConfig())
	profile := tenureProfile(
		types.ExperienceEntry{Company: "Old", Start: "2015-01", End: "2016-01"},
		types.ExperienceEntry{Company: "New", Start: "2023-01", End: "2024-01"},
	)
	result, err := e.Evaluate(profile, tenureCtx("2025-06"))
	require.NoError(t, err)

	spans := result.Metadata["per_experience"].([]TenureSpan)
	assert.Equal(t, "New", spans[0].Company)
	assert.Equal(t, "Old", spans[1].Company)
}
