package evaluate

import (
	"fmt"

	"github.com/jonathan/hr-screening/internal/types"
)

// MethodSalary is the method name emitted by Salary.
const MethodSalary = "salary"

// Salary status tags recorded in result metadata.
const (
	SalaryStatusOK                        = "ok"
	SalaryStatusWithinTolerance           = "within_tolerance"
	SalaryStatusAboveRequiredMax          = "above_required_max"
	SalaryStatusBelowRequiredMin          = "below_required_min"
	SalaryStatusOutOfRange                = "out_of_range"
	SalaryStatusInsufficientCandidateData = "insufficient_candidate_data"
	SalaryStatusInsufficientJobData       = "insufficient_job_data"
)

// SalaryConfig holds the tolerance applied to the job range.
type SalaryConfig struct {
	ToleranceRatio float64 `json:"tolerance_ratio" yaml:"tolerance_ratio"`
}

// DefaultSalaryConfig returns the default tolerance.
func DefaultSalaryConfig() SalaryConfig {
	return SalaryConfig{ToleranceRatio: 0.10}
}

// salaryOverride is the per-run or per-JD override stored under
// evaluation_overrides["salary"].
type salaryOverride struct {
	ToleranceRatio *float64 `json:"tolerance_ratio"`
}

// SalaryRangeView is a half-open yen range used in metadata. Nil bounds
// mean open-ended.
type SalaryRangeView struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// Salary compares the candidate's desired salary range with the JD range,
// expanded by a configurable tolerance. Missing data on either side passes
// with an insufficient-data status.
type Salary struct {
	cfg SalaryConfig
}

// NewSalary creates the evaluator. A zero tolerance falls back to the
// default.
func NewSalary(cfg SalaryConfig) *Salary {
	if cfg.ToleranceRatio == 0 {
		cfg.ToleranceRatio = DefaultSalaryConfig().ToleranceRatio
	}
	return &Salary{cfg: cfg}
}

// Method returns the stable method name.
func (e *Salary) Method() string { return MethodSalary }

// Evaluate checks range overlap against the tolerance-expanded job range
// and records the directional gap when the ranges miss.
func (e *Salary) Evaluate(profile *types.CandidateProfile, ctx *Context) (*types.EvaluationResult, error) {
	tolerance := e.cfg.ToleranceRatio
	var override salaryOverride
	found, err := ctx.override("salary", &override)
	if err != nil {
		return nil, fmt.Errorf("resolving salary overrides: %w", err)
	}
	if found && override.ToleranceRatio != nil {
		tolerance = *override.ToleranceRatio
	}

	desired, haveDesired := CandidateSalaryRange(profile)
	jobRange, haveJob := JobSalaryRange(ctx.Job)

	if !haveDesired || !haveJob {
		status := SalaryStatusInsufficientCandidateData
		if haveDesired {
			status = SalaryStatusInsufficientJobData
		}
		return e.result(true, 0, nil, nil, nil, nil, tolerance, status), nil
	}

	expanded := SalaryRangeView{}
	if jobRange.Min != nil {
		expanded.Min = floatPtr(*jobRange.Min * (1 - tolerance))
	}
	if jobRange.Max != nil {
		expanded.Max = floatPtr(*jobRange.Max * (1 + tolerance))
	}

	passes := rangesOverlap(desired, expanded)
	rawOverlap := rangesOverlap(desired, jobRange)

	var overlapSpan *float64
	if passes {
		overlapSpan = overlapSpanOf(desired, expanded)
	}

	status := SalaryStatusOK
	gap := 0.0
	switch {
	case passes && rawOverlap:
		status = SalaryStatusOK
	case passes:
		status = SalaryStatusWithinTolerance
	case expanded.Max != nil && desired.Min != nil && *desired.Min > *expanded.Max:
		status = SalaryStatusAboveRequiredMax
		gap = *desired.Min - *expanded.Max
	case expanded.Min != nil && desired.Max != nil && *desired.Max < *expanded.Min:
		status = SalaryStatusBelowRequiredMin
		gap = *expanded.Min - *desired.Max
	default:
		status = SalaryStatusOutOfRange
	}

	return e.result(passes, gap, &desired, &jobRange, &expanded, overlapSpan, tolerance, status), nil
}

func (e *Salary) result(passes bool, gap float64, desired, jobRange, expanded *SalaryRangeView, overlapSpan *float64, tolerance float64, status string) *types.EvaluationResult {
	span := 0.0
	if overlapSpan != nil {
		span = *overlapSpan
	}
	return &types.EvaluationResult{
		Method: MethodSalary,
		Scores: map[string]float64{
			"salary_pass":         boolScore(passes),
			"salary_overlap_span": span,
		},
		Metadata: map[string]any{
			"desired_range":      desired,
			"job_range":          jobRange,
			"expanded_job_range": expanded,
			"overlap_span":       overlapSpan,
			"gap_jpy":            gap,
			"tolerance_ratio":    tolerance,
			"status":             status,
		},
	}
}

// CandidateSalaryRange normalizes the candidate's desired bounds: a single
// stated value becomes a zero-width range and reversed bounds are swapped.
func CandidateSalaryRange(profile *types.CandidateProfile) (SalaryRangeView, bool) {
	min := profile.DesiredSalaryMinJPY
	max := profile.DesiredSalaryMaxJPY
	if min == nil && max == nil {
		return SalaryRangeView{}, false
	}
	if min == nil {
		min = max
	}
	if max == nil {
		max = min
	}
	lo, hi := float64(*min), float64(*max)
	if lo > hi {
		lo, hi = hi, lo
	}
	return SalaryRangeView{Min: floatPtr(lo), Max: floatPtr(hi)}, true
}

// JobSalaryRange exposes the JD's raw salary bounds, which may be open on
// either side.
func JobSalaryRange(job *types.JobDescription) (SalaryRangeView, bool) {
	sr := job.Constraints.SalaryRange
	if sr == nil {
		return SalaryRangeView{}, false
	}
	view := SalaryRangeView{}
	if sr.MinJPY != nil {
		view.Min = floatPtr(float64(*sr.MinJPY))
	}
	if sr.MaxJPY != nil {
		view.Max = floatPtr(float64(*sr.MaxJPY))
	}
	return view, true
}

// rangesOverlap treats missing bounds as open-ended.
func rangesOverlap(candidate, job SalaryRangeView) bool {
	if job.Min != nil && candidate.Max != nil && *candidate.Max < *job.Min {
		return false
	}
	if job.Max != nil && candidate.Min != nil && *candidate.Min > *job.Max {
		return false
	}
	return true
}

func overlapSpanOf(candidate, job SalaryRangeView) *float64 {
	if candidate.Min == nil || candidate.Max == nil {
		return nil
	}
	low := *candidate.Min
	if job.Min != nil && *job.Min > low {
		low = *job.Min
	}
	high := *candidate.Max
	if job.Max != nil && *job.Max < high {
		high = *job.Max
	}
	if high < low {
		return nil
	}
	return floatPtr(high - low)
}

func floatPtr(v float64) *float64 { return &v }
