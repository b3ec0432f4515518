package evaluate

import (
	"math"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/jonathan/hr-screening/internal/tokenize"
	"github.com/jonathan/hr-screening/internal/types"
)

// MethodBM25Proximity is the method name emitted by BM25Proximity.
const MethodBM25Proximity = "bm25_proximity"

// BM25Config holds the tuning parameters for the BM25 proximity evaluator.
type BM25Config struct {
	K1             float64             `json:"k1" yaml:"k1"`
	B              float64             `json:"b" yaml:"b"`
	AlphaProximity float64             `json:"alpha_proximity" yaml:"alpha_proximity"`
	Window         int                 `json:"window" yaml:"window"`
	SectionWeights map[string]float64  `json:"section_weights" yaml:"section_weights"`
	Synonyms       tokenize.SynonymMap `json:"synonyms" yaml:"synonyms"`
}

// DefaultBM25Config returns the default configuration. Maps are freshly
// allocated so instances never share mutable state.
func DefaultBM25Config() BM25Config {
	return BM25Config{
		K1:             1.2,
		B:              0.75,
		AlphaProximity: 0.2,
		Window:         8,
		SectionWeights: map[string]float64{
			"bullets": 1.0,
			"summary": 0.6,
			"title":   0.8,
			"skills":  0.5,
		},
		Synonyms: tokenize.SynonymMap{},
	}
}

// BM25Hit records the best-scoring resume document for one JD query.
type BM25Hit struct {
	JDText         string  `json:"jd_text"`
	ResumeText     string  `json:"resume_text"`
	BM25           float64 `json:"bm25"`
	ProximityBonus float64 `json:"proximity_bonus"`
	Section        string  `json:"section"`
	Weight         float64 `json:"weight"`
}

// BM25Proximity scores JD requirement lines against weighted resume
// sections using Okapi BM25 plus a minimal-span proximity bonus.
type BM25Proximity struct {
	cfg BM25Config
}

// NewBM25Proximity creates the evaluator. Zero-valued config fields fall
// back to their defaults.
func NewBM25Proximity(cfg BM25Config) *BM25Proximity {
	defaults := DefaultBM25Config()
	if cfg.K1 == 0 {
		cfg.K1 = defaults.K1
	}
	if cfg.B == 0 {
		cfg.B = defaults.B
	}
	if cfg.AlphaProximity == 0 {
		cfg.AlphaProximity = defaults.AlphaProximity
	}
	if cfg.Window == 0 {
		cfg.Window = defaults.Window
	}
	if cfg.SectionWeights == nil {
		cfg.SectionWeights = defaults.SectionWeights
	}
	if cfg.Synonyms == nil {
		cfg.Synonyms = tokenize.SynonymMap{}
	}
	return &BM25Proximity{cfg: cfg}
}

// Method returns the stable method name.
func (e *BM25Proximity) Method() string { return MethodBM25Proximity }

// weightedDoc is one scored resume section.
type weightedDoc struct {
	text    string
	section string
	weight  float64
	tokens  []string
}

// Evaluate computes bm25_prox (mean best-hit score across JD queries) and
// title_bonus (fuzzy title match). Candidates without any non-empty
// document score zero with an empty hit list.
func (e *BM25Proximity) Evaluate(profile *types.CandidateProfile, ctx *Context) (*types.EvaluationResult, error) {
	docs := e.buildDocuments(profile)
	if len(docs) == 0 {
		return e.emptyResult(), nil
	}

	totalLen := 0
	for _, doc := range docs {
		totalLen += len(doc.tokens)
	}
	avgDocLen := float64(totalLen) / float64(len(docs))
	idf := e.computeIDF(docs)

	var hits []BM25Hit
	total := 0.0
	for _, query := range e.buildQueries(ctx.Job) {
		queryTokens := e.cfg.Synonyms.Expand(tokenize.Tokenize(query))
		if len(queryTokens) == 0 {
			continue
		}
		hit, ok := e.scoreQuery(query, queryTokens, docs, idf, avgDocLen)
		if !ok {
			continue
		}
		hits = append(hits, hit)
		total += hit.BM25 + hit.ProximityBonus
	}

	score := 0.0
	if len(hits) > 0 {
		score = total / float64(len(hits))
	}

	return &types.EvaluationResult{
		Method: MethodBM25Proximity,
		Scores: map[string]float64{
			"bm25_prox":   score,
			"title_bonus": e.titleBonus(profile, ctx.Job),
		},
		Metadata: e.metadata(hits),
	}, nil
}

// buildDocuments assembles one weighted document per non-empty experience
// section plus a single joined-skills document.
func (e *BM25Proximity) buildDocuments(profile *types.CandidateProfile) []weightedDoc {
	var docs []weightedDoc
	add := func(text, section string) {
		tokens := tokenize.Tokenize(text)
		if len(tokens) == 0 {
			return
		}
		docs = append(docs, weightedDoc{
			text:    text,
			section: section,
			weight:  e.cfg.SectionWeights[section],
			tokens:  tokens,
		})
	}
	for _, exp := range profile.Experiences {
		if exp.Title != "" {
			add(exp.Title, "title")
		}
		if exp.Summary != "" {
			add(exp.Summary, "summary")
		}
		for _, bullet := range exp.Bullets {
			add(bullet, "bullets")
		}
	}
	if len(profile.Skills) > 0 {
		add(strings.Join(profile.Skills, " "), "skills")
	}
	return docs
}

// buildQueries concatenates requirements and key phrases, de-duplicated by
// tokenized form while preserving order.
func (e *BM25Proximity) buildQueries(job *types.JobDescription) []string {
	raw := make([]string, 0, len(job.RequirementsText)+len(job.KeyPhrases))
	raw = append(raw, job.RequirementsText...)
	raw = append(raw, job.KeyPhrases...)

	seen := make(map[string]bool, len(raw))
	queries := make([]string, 0, len(raw))
	for _, text := range raw {
		key := strings.Join(tokenize.Tokenize(text), " ")
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		queries = append(queries, text)
	}
	return queries
}

// scoreQuery returns the best weighted (bm25 + proximity) hit for a query.
func (e *BM25Proximity) scoreQuery(queryText string, queryTokens []string, docs []weightedDoc, idf map[string]float64, avgDocLen float64) (BM25Hit, bool) {
	bestScore := 0.0
	var best BM25Hit
	found := false
	for _, doc := range docs {
		docLen := float64(len(doc.tokens))
		bm25 := 0.0
		for _, token := range queryTokens {
			freq := 0
			for _, t := range doc.tokens {
				if t == token {
					freq++
				}
			}
			if freq == 0 {
				continue
			}
			f := float64(freq)
			denom := f + e.cfg.K1*(1-e.cfg.B+e.cfg.B*(docLen/avgDocLen))
			bm25 += idf[token] * (f * (e.cfg.K1 + 1)) / denom
		}
		if bm25 <= 0 {
			continue
		}
		proximity := e.proximityBonus(doc.tokens, queryTokens)
		weighted := (bm25 + proximity) * doc.weight
		if weighted > bestScore {
			bestScore = weighted
			found = true
			best = BM25Hit{
				JDText:         queryText,
				ResumeText:     doc.text,
				BM25:           bm25,
				ProximityBonus: proximity,
				Section:        doc.section,
				Weight:         doc.weight,
			}
		}
	}
	return best, found
}

// proximityBonus rewards documents where every query token occurs within a
// small window. The minimal span is found by anchoring on each occurrence
// of each token and greedily picking the nearest occurrence of the others.
func (e *BM25Proximity) proximityBonus(docTokens, queryTokens []string) float64 {
	unique := make(map[string][]int)
	for _, token := range queryTokens {
		unique[token] = nil
	}
	if len(unique) <= 1 {
		return 0
	}
	for idx, token := range docTokens {
		if _, ok := unique[token]; ok {
			unique[token] = append(unique[token], idx)
		}
	}
	for _, positions := range unique {
		if len(positions) == 0 {
			return 0
		}
	}

	minSpan := math.MaxInt
	for _, anchorPositions := range unique {
		for _, start := range anchorPositions {
			lo, hi := start, start
			for _, positions := range unique {
				nearest := positions[0]
				for _, pos := range positions[1:] {
					if abs(pos-start) < abs(nearest-start) {
						nearest = pos
					}
				}
				if nearest < lo {
					lo = nearest
				}
				if nearest > hi {
					hi = nearest
				}
			}
			if span := hi - lo + 1; span < minSpan {
				minSpan = span
			}
		}
	}
	if minSpan <= e.cfg.Window {
		return e.cfg.AlphaProximity / float64(1+minSpan)
	}
	return 0
}

// computeIDF builds the per-token IDF table over the candidate documents.
func (e *BM25Proximity) computeIDF(docs []weightedDoc) map[string]float64 {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc.tokens))
		for _, token := range doc.tokens {
			if !seen[token] {
				seen[token] = true
				df[token]++
			}
		}
	}
	total := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for token, freq := range df {
		f := float64(freq)
		idf[token] = math.Log(1 + (total-f+0.5)/(f+0.5))
	}
	return idf
}

// titleBonus is 0.2 times the best fuzzy token-set similarity between any
// JD role title and any candidate experience title.
func (e *BM25Proximity) titleBonus(profile *types.CandidateProfile, job *types.JobDescription) float64 {
	if len(job.RoleTitles) == 0 {
		return 0
	}
	best := 0.0
	for _, jobTitle := range job.RoleTitles {
		for _, exp := range profile.Experiences {
			if exp.Title == "" {
				continue
			}
			ratio := float64(fuzzy.TokenSetRatio(jobTitle, exp.Title)) / 100
			if ratio > best {
				best = ratio
			}
		}
	}
	return round4(best * 0.2)
}

func (e *BM25Proximity) metadata(hits []BM25Hit) map[string]any {
	if hits == nil {
		hits = []BM25Hit{}
	}
	return map[string]any{
		"k1":              e.cfg.K1,
		"b":               e.cfg.B,
		"alpha_proximity": e.cfg.AlphaProximity,
		"window":          e.cfg.Window,
		"hits":            hits,
	}
}

func (e *BM25Proximity) emptyResult() *types.EvaluationResult {
	return &types.EvaluationResult{
		Method:   MethodBM25Proximity,
		Scores:   map[string]float64{"bm25_prox": 0, "title_bonus": 0},
		Metadata: e.metadata(nil),
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
