// Package rerank builds the compact payload posted to an optional external
// reranker and attaches the response to screening outcomes.
package rerank

import (
	"sort"

	"github.com/jonathan/hr-screening/internal/evaluate"
	"github.com/jonathan/hr-screening/internal/types"
)

const (
	topRequirements = 5
	topSkills       = 5
	topHits         = 3
	topEvidence     = 3
)

// BuildPayload projects the job, candidate, and screening outcome into the
// reranker request shape. It is a pure function of its inputs.
func BuildPayload(job *types.JobDescription, profile *types.CandidateProfile, outcome *types.ScreeningOutcome) map[string]any {
	return map[string]any{
		"job_id":       job.JobID,
		"candidate_id": profile.CandidateID,
		"jd": map[string]any{
			"role_titles":      job.RoleTitles,
			"requirements_top": firstN(job.RequirementsText, topRequirements),
			"constraints":      job.Constraints,
		},
		"candidate_summary": map[string]any{
			"titles":         experienceTitles(profile),
			"skills_agg_top": topSkillsAgg(profile),
		},
		"method1_bm25":  bm25Section(findEvaluation(outcome, evaluate.MethodBM25Proximity)),
		"method2_embed": embedSection(findEvaluation(outcome, evaluate.MethodEmbedSimilarity)),
		"pre_llm_score": outcome.Aggregate.PreLLMScore,
		"penalties":     outcome.Decision.HardGateFlags,
	}
}

func findEvaluation(outcome *types.ScreeningOutcome, method string) *types.EvaluationResult {
	for i := range outcome.Evaluations {
		if outcome.Evaluations[i].Method == method {
			return &outcome.Evaluations[i]
		}
	}
	return nil
}

func bm25Section(result *types.EvaluationResult) map[string]any {
	if result == nil {
		return map[string]any{}
	}
	var hits []evaluate.BM25Hit
	if raw, ok := result.Metadata["hits"].([]evaluate.BM25Hit); ok {
		hits = raw
	}
	return map[string]any{
		"bm25_prox":   result.Scores["bm25_prox"],
		"title_bonus": result.Scores["title_bonus"],
		"hits_top":    firstN(hits, topHits),
	}
}

func embedSection(result *types.EvaluationResult) map[string]any {
	if result == nil {
		return map[string]any{}
	}
	var evidence []evaluate.EvidencePair
	if raw, ok := result.Metadata["evidence_pairs"].([]evaluate.EvidencePair); ok {
		evidence = raw
	}
	return map[string]any{
		"embed_sim":          result.Scores["embed_sim"],
		"sim_title":          result.Scores["sim_title"],
		"evidence_pairs_top": firstN(evidence, topEvidence),
	}
}

func experienceTitles(profile *types.CandidateProfile) []string {
	titles := []string{}
	for _, exp := range profile.Experiences {
		if exp.Title != "" {
			titles = append(titles, exp.Title)
		}
	}
	return titles
}

// topSkillsAgg flattens the aggregated skills map into at most topSkills
// entries, sorted by name for deterministic output.
func topSkillsAgg(profile *types.CandidateProfile) []map[string]any {
	entries := []map[string]any{}
	for _, name := range sortedKeys(profile.SkillsAgg) {
		agg := profile.SkillsAgg[name]
		entries = append(entries, map[string]any{
			"name":      name,
			"years":     agg.Years,
			"last_used": agg.LastUsed,
		})
		if len(entries) == topSkills {
			break
		}
	}
	return entries
}

func sortedKeys(m map[string]types.SkillAggregate) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstN[T any](items []T, n int) []T {
	if items == nil {
		return []T{}
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
