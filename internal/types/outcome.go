package types

import "encoding/json"

// Decision is the final screening verdict for one candidate.
type Decision string

// Decision tiers, ordered best to worst.
const (
	DecisionPass       Decision = "pass"
	DecisionBorderline Decision = "borderline"
	DecisionReject     Decision = "reject"
)

// EvaluationResult is the normalized output of one evaluator. Metric names
// in Scores are stable contract keys; several evaluators may emit the same
// key and the aggregator sums them.
type EvaluationResult struct {
	Method   string             `json:"method"`
	Scores   map[string]float64 `json:"scores"`
	Metadata map[string]any     `json:"metadata,omitempty"`
}

// AggregateScores is the merged score view across all evaluators.
type AggregateScores struct {
	Scores      map[string]float64 `json:"scores"`
	PreLLMScore float64            `json:"pre_llm_score"`
}

// DecisionSummary is the final decision with the hard-gate breakdown.
type DecisionSummary struct {
	Decision        Decision        `json:"decision"`
	PreLLMScore     float64         `json:"pre_llm_score"`
	HardGateFlags   map[string]bool `json:"hard_gate_flags"`
	HardGateDetails map[string]any  `json:"hard_gate_details,omitempty"`
	HardFailures    []string        `json:"hard_failures"`
}

// ScreeningOutcome is the complete evaluation payload for one candidate.
// LLMPayload and LLMResponse are populated only when an external reranker
// is configured.
type ScreeningOutcome struct {
	CandidateID string             `json:"candidate_id"`
	JobID       string             `json:"job_id"`
	Evaluations []EvaluationResult `json:"evaluations"`
	Aggregate   AggregateScores    `json:"aggregate"`
	Decision    DecisionSummary    `json:"decision"`
	LLMPayload  map[string]any     `json:"llm_payload,omitempty"`
	LLMResponse json.RawMessage    `json:"llm_response,omitempty"`
}
