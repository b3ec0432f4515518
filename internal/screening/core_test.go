package screening

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hr-screening/internal/evaluate"
	"github.com/jonathan/hr-screening/internal/types"
)

// stubEvaluator returns a fixed result or error.
type stubEvaluator struct {
	method string
	scores map[string]float64
	err    error
}

func (s *stubEvaluator) Method() string { return s.method }

func (s *stubEvaluator) Evaluate(_ *types.CandidateProfile, _ *evaluate.Context) (*types.EvaluationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &types.EvaluationResult{Method: s.method, Scores: s.scores}, nil
}

func coreProfile() *types.CandidateProfile {
	return &types.CandidateProfile{Provider: "bizreach", CandidateID: "BU0000001"}
}

func coreCtx() *evaluate.Context {
	return &evaluate.Context{Job: &types.JobDescription{JobID: "job-1"}}
}

func TestCore_AdditiveScoreMerge(t *testing.T) {
	core := NewCore([]evaluate.Evaluator{
		&stubEvaluator{method: "a", scores: map[string]float64{"bm25_prox": 0.5, "embed_sim": 0.2}},
		&stubEvaluator{method: "b", scores: map[string]float64{"bm25_prox": 0.3}},
	}, nil, Thresholds{})

	outcome, err := core.Evaluate(coreProfile(), coreCtx())
	require.NoError(t, err)

	assert.InDelta(t, 0.8, outcome.Aggregate.Scores["bm25_prox"], 1e-9)
	assert.InDelta(t, 0.2, outcome.Aggregate.Scores["embed_sim"], 1e-9)
	assert.Len(t, outcome.Evaluations, 2)
}

func TestCore_WeightedScoreAndDecision(t *testing.T) {
	weights := map[string]float64{"bm25_prox": 1.0}
	thresholds := Thresholds{Pass: 0.8, Borderline: 0.65}

	tests := []struct {
		name  string
		score float64
		want  types.Decision
	}{
		{"pass at threshold", 0.80, types.DecisionPass},
		{"borderline", 0.70, types.DecisionBorderline},
		{"borderline at threshold", 0.65, types.DecisionBorderline},
		{"reject", 0.64, types.DecisionReject},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			core := NewCore([]evaluate.Evaluator{
				&stubEvaluator{method: "a", scores: map[string]float64{"bm25_prox": tc.score}},
			}, weights, thresholds)

			outcome, err := core.Evaluate(coreProfile(), coreCtx())
			require.NoError(t, err)
			assert.Equal(t, tc.want, outcome.Decision.Decision)
			assert.InDelta(t, tc.score, outcome.Aggregate.PreLLMScore, 1e-9)
		})
	}
}

func TestCore_UnknownMetricsDoNotContribute(t *testing.T) {
	core := NewCore([]evaluate.Evaluator{
		&stubEvaluator{method: "a", scores: map[string]float64{"mystery_metric": 99}},
	}, nil, Thresholds{})

	outcome, err := core.Evaluate(coreProfile(), coreCtx())
	require.NoError(t, err)
	assert.Equal(t, 0.0, outcome.Aggregate.PreLLMScore)
}

func TestCore_HardFailureForcesReject(t *testing.T) {
	core := NewCore([]evaluate.Evaluator{
		&stubEvaluator{method: "a", scores: map[string]float64{"bm25_prox": 5.0}},
	}, map[string]float64{"bm25_prox": 1.0}, Thresholds{Pass: 0.8, Borderline: 0.65})

	ctx := coreCtx()
	ctx.Job.Constraints.Language = []string{"ja"}

	outcome, err := core.Evaluate(coreProfile(), ctx)
	require.NoError(t, err)

	assert.Equal(t, types.DecisionReject, outcome.Decision.Decision)
	assert.Equal(t, []string{"language"}, outcome.Decision.HardFailures)
	assert.False(t, outcome.Decision.HardGateFlags["language_ok"])
}

func TestCore_EvaluatorErrorIsFatal(t *testing.T) {
	core := NewCore([]evaluate.Evaluator{
		&stubEvaluator{method: "boom", err: fmt.Errorf("broken")},
	}, nil, Thresholds{})

	_, err := core.Evaluate(coreProfile(), coreCtx())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestCore_ContractViolationIsFatal(t *testing.T) {
	core := NewCore([]evaluate.Evaluator{
		&stubEvaluator{method: "a", scores: nil},
	}, nil, Thresholds{})

	_, err := core.Evaluate(coreProfile(), coreCtx())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scores")
}

func TestDefaultScoreWeights(t *testing.T) {
	weights := DefaultScoreWeights()
	assert.Equal(t, 0.45, weights["bm25_prox"])
	assert.Equal(t, 0.40, weights["embed_sim"])
	assert.Equal(t, 0.10, weights["sim_title"])
	assert.Equal(t, 0.05, weights["title_bonus"])
}

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, 0.80, th.Pass)
	assert.Equal(t, 0.65, th.Borderline)
}
