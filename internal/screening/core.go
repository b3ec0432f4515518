// Package screening coordinates the evaluators, merges their scores, and
// produces the final pass/borderline/reject decision for one candidate.
package screening

import (
	"fmt"

	"github.com/jonathan/hr-screening/internal/evaluate"
	"github.com/jonathan/hr-screening/internal/types"
)

// Default metric weights used for the pre-LLM weighted score. Unknown
// metrics in the aggregate do not contribute; missing metrics contribute 0.
func DefaultScoreWeights() map[string]float64 {
	return map[string]float64{
		"bm25_prox":   0.45,
		"embed_sim":   0.40,
		"sim_title":   0.10,
		"title_bonus": 0.05,
	}
}

// Thresholds are the decision cutoffs on the pre-LLM score.
type Thresholds struct {
	Pass       float64 `json:"pass" yaml:"pass"`
	Borderline float64 `json:"borderline" yaml:"borderline"`
}

// DefaultThresholds returns the calibrated cutoffs. They are tuned against
// raw BM25 magnitude; renormalizing any evaluator output requires
// recalibrating these.
func DefaultThresholds() Thresholds {
	return Thresholds{Pass: 0.80, Borderline: 0.65}
}

// Core runs an ordered evaluator sequence and aggregates the results.
// Evaluators are stateless, so one Core may be shared across parallel
// workers screening distinct candidates against the same job snapshot.
type Core struct {
	evaluators []evaluate.Evaluator
	weights    map[string]float64
	thresholds Thresholds
}

// NewCore builds a screening core. Nil weights or zero thresholds fall back
// to the defaults.
func NewCore(evaluators []evaluate.Evaluator, weights map[string]float64, thresholds Thresholds) *Core {
	if weights == nil {
		weights = DefaultScoreWeights()
	}
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds()
	}
	return &Core{evaluators: evaluators, weights: weights, thresholds: thresholds}
}

// Evaluate runs every evaluator in order, merges score maps by additive sum
// on shared keys, applies the hard gates, and decides. An evaluator error
// or contract violation fails the whole candidate.
func (c *Core) Evaluate(profile *types.CandidateProfile, ctx *evaluate.Context) (*types.ScreeningOutcome, error) {
	evaluations := make([]types.EvaluationResult, 0, len(c.evaluators))
	agg := make(map[string]float64)

	for _, ev := range c.evaluators {
		result, err := ev.Evaluate(profile, ctx)
		if err != nil {
			return nil, fmt.Errorf("evaluator %s: %w", ev.Method(), err)
		}
		if err := checkResultContract(result); err != nil {
			return nil, fmt.Errorf("evaluator %s: %w", ev.Method(), err)
		}
		evaluations = append(evaluations, *result)
		for key, value := range result.Scores {
			agg[key] += value
		}
	}

	preLLMScore := c.weightedScore(agg)
	flags, details := evaluateHardGates(profile, ctx.Job)
	failures := hardFailures(flags)

	return &types.ScreeningOutcome{
		CandidateID: profile.CandidateID,
		JobID:       ctx.Job.JobID,
		Evaluations: evaluations,
		Aggregate: types.AggregateScores{
			Scores:      agg,
			PreLLMScore: preLLMScore,
		},
		Decision: types.DecisionSummary{
			Decision:        c.decide(preLLMScore, failures),
			PreLLMScore:     preLLMScore,
			HardGateFlags:   flags,
			HardGateDetails: details,
			HardFailures:    failures,
		},
	}, nil
}

func (c *Core) weightedScore(agg map[string]float64) float64 {
	score := 0.0
	for metric, weight := range c.weights {
		score += agg[metric] * weight
	}
	return score
}

// decide maps the weighted score to a tier. Any hard failure forces reject
// regardless of score.
func (c *Core) decide(score float64, failures []string) types.Decision {
	if len(failures) > 0 {
		return types.DecisionReject
	}
	if score >= c.thresholds.Pass {
		return types.DecisionPass
	}
	if score >= c.thresholds.Borderline {
		return types.DecisionBorderline
	}
	return types.DecisionReject
}

// checkResultContract rejects malformed evaluator output. A result without
// a method or scores map breaks the aggregation contract.
func checkResultContract(result *types.EvaluationResult) error {
	if result == nil {
		return fmt.Errorf("nil evaluation result")
	}
	if result.Method == "" {
		return fmt.Errorf("evaluation result missing method")
	}
	if result.Scores == nil {
		return fmt.Errorf("evaluation result missing scores map")
	}
	return nil
}
