// Package evaluate implements the stateless screening evaluators. Each
// evaluator consumes a candidate profile plus a shared job context and
// returns a normalized result whose score keys are stable contract names;
// the aggregator in internal/screening sums them across evaluators.
package evaluate

import (
	"math"
	"time"

	"github.com/jonathan/hr-screening/internal/types"
)

// Evaluator is the capability every screening method implements. Evaluators
// hold no mutable state and are safe to share across workers.
type Evaluator interface {
	// Method returns the stable method name recorded on results.
	Method() string
	// Evaluate scores one candidate against the job carried by ctx.
	Evaluate(profile *types.CandidateProfile, ctx *Context) (*types.EvaluationResult, error)
}

// Context carries the read-only job snapshot and run-scoped settings shared
// by all evaluators for one screening run. It may be aliased freely across
// parallel workers.
type Context struct {
	Job *types.JobDescription

	// AsOf is the reference date ("YYYY-MM" or ISO-8601) for tenure math.
	// Empty means "now" as reported by the injected clock.
	AsOf string

	// Now is the injected clock; nil falls back to time.Now.
	Now func() time.Time

	// Overrides are run-level evaluation overrides. Evaluators consult
	// these before the job document's own evaluation_overrides.
	Overrides types.EvaluationOverrides
}

// clock returns the effective clock function.
func (c *Context) clock() func() time.Time {
	if c != nil && c.Now != nil {
		return c.Now
	}
	return time.Now
}

// override decodes the override slice stored under key, checking run-level
// overrides first and the job document second.
func (c *Context) override(key string, v any) (bool, error) {
	if c == nil {
		return false, nil
	}
	if ok, err := c.Overrides.Decode(key, v); ok || err != nil {
		return ok, err
	}
	if c.Job == nil {
		return false, nil
	}
	return c.Job.EvaluationOverrides.Decode(key, v)
}

// round4 rounds to four decimal places, the precision surfaced in reports.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
