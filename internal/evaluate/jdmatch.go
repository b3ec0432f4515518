package evaluate

import (
	"fmt"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/jonathan/hr-screening/internal/types"
)

// MethodJDRule is the method name emitted by JDKeywordMatcher.
const MethodJDRule = "jd_rule"

// Keyword group names recognized by the matcher.
const (
	groupMust       = "must"
	groupNice       = "nice"
	groupNiceToHave = "nice_to_have"
)

// JDMatcherConfig holds the tuning parameters for rule-based JD matching.
type JDMatcherConfig struct {
	MinSimilarity float64            `json:"min_similarity" yaml:"min_similarity"`
	GroupWeights  map[string]float64 `json:"group_weights" yaml:"group_weights"`
	TitleBonus    float64            `json:"title_bonus" yaml:"title_bonus"`
}

// DefaultJDMatcherConfig returns the default configuration with fresh maps.
func DefaultJDMatcherConfig() JDMatcherConfig {
	return JDMatcherConfig{
		MinSimilarity: 60,
		GroupWeights: map[string]float64{
			groupMust:       1.0,
			groupNice:       0.75,
			groupNiceToHave: 0.5,
		},
		TitleBonus: 0.1,
	}
}

// jdKeywordOverride is the per-run or per-JD keyword override document
// stored under evaluation_overrides["jd_keywords"].
type jdKeywordOverride struct {
	Must       []string           `json:"must"`
	Nice       []string           `json:"nice"`
	NiceToHave []string           `json:"nice_to_have"`
	Weights    map[string]float64 `json:"weights"`
	TitleBonus *float64           `json:"title_bonus"`
}

// JDKeywordMatcher scores keyword-group coverage between the JD and the
// candidate resume. Besides its own coverage metrics it emits proxy values
// on the lexical score keys so that keyword evidence softly boosts the
// lexical lanes under additive aggregation.
type JDKeywordMatcher struct {
	cfg JDMatcherConfig
}

// NewJDKeywordMatcher creates the matcher. Zero-valued config fields fall
// back to their defaults.
func NewJDKeywordMatcher(cfg JDMatcherConfig) *JDKeywordMatcher {
	defaults := DefaultJDMatcherConfig()
	if cfg.MinSimilarity == 0 {
		cfg.MinSimilarity = defaults.MinSimilarity
	}
	if cfg.GroupWeights == nil {
		cfg.GroupWeights = defaults.GroupWeights
	}
	if cfg.TitleBonus == 0 {
		cfg.TitleBonus = defaults.TitleBonus
	}
	return &JDKeywordMatcher{cfg: cfg}
}

// Method returns the stable method name.
func (e *JDKeywordMatcher) Method() string { return MethodJDRule }

// keywordGroup is one resolved group with its matching results.
type keywordGroup struct {
	name     string
	weight   float64
	keywords []string
	hits     []string
	coverage float64
}

// Evaluate resolves the keyword groups, matches them against the resume
// corpus, and reports the weighted coverage. Empty groups report coverage
// 1.0 but carry no weight, so a full miss on the only populated group still
// yields jd_pass = 0.
func (e *JDKeywordMatcher) Evaluate(profile *types.CandidateProfile, ctx *Context) (*types.EvaluationResult, error) {
	groups, titleBonus, err := e.resolveGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving jd keywords: %w", err)
	}
	corpus := buildSearchCorpus(profile)

	weightedSum := 0.0
	weightTotal := 0.0
	for i := range groups {
		g := &groups[i]
		g.hits = e.matchKeywords(corpus, g.keywords)
		if len(g.keywords) == 0 {
			g.coverage = 1.0
			continue
		}
		g.coverage = float64(len(g.hits)) / float64(len(g.keywords))
		weightedSum += g.weight * g.coverage
		weightTotal += g.weight
	}

	weighted := 1.0
	if weightTotal > 0 {
		weighted = clip01(weightedSum / weightTotal)
	}
	pass := weighted > 0

	mustCoverage := groups[0].coverage
	niceCoverage := groups[1].coverage
	fullMust := mustCoverage >= 1.0

	bonus := 0.0
	if fullMust {
		bonus = titleBonus
	}
	simTitle := niceCoverage
	if fullMust && simTitle < 0.6 {
		simTitle = 0.6
	}

	return &types.EvaluationResult{
		Method: MethodJDRule,
		Scores: map[string]float64{
			"jd_must_coverage": mustCoverage,
			"jd_nice_coverage": niceCoverage,
			"jd_pass":          boolScore(pass),
			"embed_sim":        maxFloat(mustCoverage, niceCoverage),
			"bm25_prox":        mustCoverage,
			"sim_title":        simTitle,
			"title_bonus":      bonus,
		},
		Metadata: e.metadata(groups, weighted, len(corpus)),
	}, nil
}

// resolveGroups reads the jd_keywords override (run-level first, then the
// JD document) and falls back to key_phrases/role_titles.
func (e *JDKeywordMatcher) resolveGroups(ctx *Context) ([]keywordGroup, float64, error) {
	var override jdKeywordOverride
	found, err := ctx.override("jd_keywords", &override)
	if err != nil {
		return nil, 0, err
	}

	must := cleanKeywords(ctx.Job.KeyPhrases)
	nice := cleanKeywords(ctx.Job.RoleTitles)
	var niceToHave []string
	titleBonus := e.cfg.TitleBonus
	weights := e.cfg.GroupWeights

	if found {
		if len(override.Must) > 0 {
			must = cleanKeywords(override.Must)
		}
		if len(override.Nice) > 0 {
			nice = cleanKeywords(override.Nice)
		}
		niceToHave = cleanKeywords(override.NiceToHave)
		if len(override.Weights) > 0 {
			weights = override.Weights
		}
		if override.TitleBonus != nil {
			titleBonus = *override.TitleBonus
		}
	}

	groups := []keywordGroup{
		{name: groupMust, weight: groupWeight(weights, groupMust, 1.0), keywords: must},
		{name: groupNice, weight: groupWeight(weights, groupNice, 0.75), keywords: nice},
		{name: groupNiceToHave, weight: groupWeight(weights, groupNiceToHave, 0.5), keywords: niceToHave},
	}
	return groups, titleBonus, nil
}

// matchKeywords returns the keywords with at least one corpus match, each
// counted once. A match is a lowercased substring hit or a fuzzy token-set
// ratio at or above the similarity floor.
func (e *JDKeywordMatcher) matchKeywords(corpus []string, keywords []string) []string {
	var hits []string
	seen := make(map[string]bool, len(keywords))
	for _, keyword := range keywords {
		lower := strings.ToLower(keyword)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		for _, text := range corpus {
			if strings.Contains(text, lower) {
				hits = append(hits, keyword)
				break
			}
			if float64(fuzzy.TokenSetRatio(lower, text)) >= e.cfg.MinSimilarity {
				hits = append(hits, keyword)
				break
			}
		}
	}
	return hits
}

func (e *JDKeywordMatcher) metadata(groups []keywordGroup, weighted float64, corpusSize int) map[string]any {
	weights := make(map[string]float64, len(groups))
	keywords := make(map[string][]string, len(groups))
	hits := make(map[string][]string, len(groups))
	coverage := make(map[string]float64, len(groups))
	for _, g := range groups {
		weights[g.name] = g.weight
		keywords[g.name] = emptySliceIfNil(g.keywords)
		hits[g.name] = emptySliceIfNil(g.hits)
		coverage[g.name] = g.coverage
	}
	return map[string]any{
		"keywords":       keywords,
		"hits":           hits,
		"coverage":       coverage,
		"weights":        weights,
		"weighted_score": weighted,
		"corpus_size":    corpusSize,
		"min_similarity": e.cfg.MinSimilarity,
	}
}

// buildSearchCorpus flattens the profile into lowercased searchable texts:
// skills, language names, experience titles, summaries, bullets, and notes.
func buildSearchCorpus(profile *types.CandidateProfile) []string {
	var corpus []string
	add := func(text string) {
		if text != "" {
			corpus = append(corpus, strings.ToLower(text))
		}
	}
	for _, skill := range profile.Skills {
		add(skill)
	}
	for _, lang := range profile.Languages {
		add(lang.Language)
	}
	for _, exp := range profile.Experiences {
		add(exp.Title)
		add(exp.Summary)
		for _, bullet := range exp.Bullets {
			add(bullet)
		}
	}
	add(profile.Notes)
	return corpus
}

// cleanKeywords trims whitespace and drops empty entries. Keywords are kept
// whole, so a key phrase containing a comma stays one keyword.
func cleanKeywords(entries []string) []string {
	var keywords []string
	for _, entry := range entries {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}

func groupWeight(weights map[string]float64, name string, fallback float64) float64 {
	if w, ok := weights[name]; ok {
		return w
	}
	return fallback
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func emptySliceIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
