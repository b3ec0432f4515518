package evaluate

import (
	"math"

	"github.com/jonathan/hr-screening/internal/tokenize"
	"github.com/jonathan/hr-screening/internal/types"
)

// MethodEmbedSimilarity is the method name emitted by EmbedSimilarity.
const MethodEmbedSimilarity = "embed_similarity"

// embedModelName identifies the deterministic TF-IDF cosine approximation
// used in place of a hosted embedder.
const embedModelName = "tfidf-cosine-lite"

// EmbedConfig holds the tuning parameters for the TF-IDF cosine evaluator.
type EmbedConfig struct {
	TopK           int                 `json:"top_k" yaml:"top_k"`
	SectionWeights map[string]float64  `json:"section_weights" yaml:"section_weights"`
	Synonyms       tokenize.SynonymMap `json:"synonyms" yaml:"synonyms"`
}

// DefaultEmbedConfig returns the default configuration with fresh maps.
func DefaultEmbedConfig() EmbedConfig {
	return EmbedConfig{
		TopK: 3,
		SectionWeights: map[string]float64{
			"bullets": 1.0,
			"summary": 0.8,
			"title":   0.7,
		},
		Synonyms: tokenize.SynonymMap{},
	}
}

// EvidencePair is one (JD requirement, resume entry) match with its cosine
// similarity, reported in metadata for downstream reranking.
type EvidencePair struct {
	JDText     string  `json:"jd_text"`
	ResumeText string  `json:"resume_text"`
	Similarity float64 `json:"similarity"`
	Section    string  `json:"section"`
	Weight     float64 `json:"weight"`
}

// EmbedSimilarity approximates embedding similarity with TF-IDF cosine over
// synonym-augmented texts. It requires no model service and is fully
// deterministic.
type EmbedSimilarity struct {
	cfg EmbedConfig
}

// NewEmbedSimilarity creates the evaluator. Zero-valued config fields fall
// back to their defaults.
func NewEmbedSimilarity(cfg EmbedConfig) *EmbedSimilarity {
	defaults := DefaultEmbedConfig()
	if cfg.TopK == 0 {
		cfg.TopK = defaults.TopK
	}
	if cfg.SectionWeights == nil {
		cfg.SectionWeights = defaults.SectionWeights
	}
	if cfg.Synonyms == nil {
		cfg.Synonyms = tokenize.SynonymMap{}
	}
	return &EmbedSimilarity{cfg: cfg}
}

// Method returns the stable method name.
func (e *EmbedSimilarity) Method() string { return MethodEmbedSimilarity }

type resumeEntry struct {
	text      string
	augmented string
	section   string
	weight    float64
}

type tfidfVector map[string]float64

// Evaluate scores every (requirement, resume entry) pair by cosine
// similarity and reports the mean of the top-k pairs plus the best title
// similarity. Either side being empty yields a zero result.
func (e *EmbedSimilarity) Evaluate(profile *types.CandidateProfile, ctx *Context) (*types.EvaluationResult, error) {
	jdTexts := nonEmpty(ctx.Job.RequirementsText)
	if len(jdTexts) == 0 {
		return e.emptyResult(), nil
	}
	entries := e.collectResumeEntries(profile)
	if len(entries) == 0 {
		return e.emptyResult(), nil
	}

	jdTokens := make([][]string, len(jdTexts))
	for i, text := range jdTexts {
		jdTokens[i] = tokenize.Tokenize(e.cfg.Synonyms.Augment(text))
	}
	resumeTokens := make([][]string, len(entries))
	for i, entry := range entries {
		resumeTokens[i] = tokenize.Tokenize(entry.augmented)
	}
	if allEmpty(jdTokens) || allEmpty(resumeTokens) {
		return e.emptyResult(), nil
	}

	idf := computeEmbedIDF(append(append([][]string(nil), jdTokens...), resumeTokens...))
	jdVectors := make([]tfidfVector, len(jdTokens))
	for i, tokens := range jdTokens {
		jdVectors[i] = tfidfVectorOf(tokens, idf)
	}
	resumeVectors := make([]tfidfVector, len(resumeTokens))
	for i, tokens := range resumeTokens {
		resumeVectors[i] = tfidfVectorOf(tokens, idf)
	}

	evidence := e.collectEvidence(jdTexts, entries, jdVectors, resumeVectors)
	if len(evidence) == 0 {
		return e.emptyResult(), nil
	}

	topK := e.cfg.TopK
	if topK > len(evidence) {
		topK = len(evidence)
	}
	sum := 0.0
	for _, pair := range evidence[:topK] {
		sum += pair.Similarity
	}

	return &types.EvaluationResult{
		Method: MethodEmbedSimilarity,
		Scores: map[string]float64{
			"embed_sim": round4(sum / float64(topK)),
			"sim_title": round4(e.titleSimilarity(ctx.Job, profile, idf)),
		},
		Metadata: map[string]any{
			"model":          embedModelName,
			"top_k":          e.cfg.TopK,
			"evidence_pairs": evidence[:topK],
		},
	}, nil
}

func (e *EmbedSimilarity) collectResumeEntries(profile *types.CandidateProfile) []resumeEntry {
	var entries []resumeEntry
	add := func(text, section string) {
		if text == "" {
			return
		}
		entries = append(entries, resumeEntry{
			text:      text,
			augmented: e.cfg.Synonyms.Augment(text),
			section:   section,
			weight:    e.cfg.SectionWeights[section],
		})
	}
	for _, exp := range profile.Experiences {
		add(exp.Title, "title")
		add(exp.Summary, "summary")
		for _, bullet := range exp.Bullets {
			add(bullet, "bullets")
		}
	}
	return entries
}

// collectEvidence gathers every pair with positive similarity, sorted by
// similarity descending. The sort is stable insertion so ties keep matrix
// order.
func (e *EmbedSimilarity) collectEvidence(jdTexts []string, entries []resumeEntry, jdVectors, resumeVectors []tfidfVector) []EvidencePair {
	var evidence []EvidencePair
	for i, jdText := range jdTexts {
		for j, entry := range entries {
			sim := cosineSimilarity(jdVectors[i], resumeVectors[j])
			if sim <= 0 {
				continue
			}
			pair := EvidencePair{
				JDText:     jdText,
				ResumeText: entry.text,
				Similarity: sim,
				Section:    entry.section,
				Weight:     entry.weight,
			}
			pos := len(evidence)
			for pos > 0 && evidence[pos-1].Similarity < sim {
				pos--
			}
			evidence = append(evidence, EvidencePair{})
			copy(evidence[pos+1:], evidence[pos:])
			evidence[pos] = pair
		}
	}
	return evidence
}

// titleSimilarity is the best cosine similarity between any JD role title
// and any candidate experience title, using the shared IDF table.
func (e *EmbedSimilarity) titleSimilarity(job *types.JobDescription, profile *types.CandidateProfile, idf map[string]float64) float64 {
	if len(job.RoleTitles) == 0 {
		return 0
	}
	var candidateVectors []tfidfVector
	for _, exp := range profile.Experiences {
		if exp.Title == "" {
			continue
		}
		candidateVectors = append(candidateVectors, tfidfVectorOf(tokenize.Tokenize(e.cfg.Synonyms.Augment(exp.Title)), idf))
	}
	if len(candidateVectors) == 0 {
		return 0
	}
	best := 0.0
	for _, roleTitle := range job.RoleTitles {
		jobVec := tfidfVectorOf(tokenize.Tokenize(e.cfg.Synonyms.Augment(roleTitle)), idf)
		for _, candidateVec := range candidateVectors {
			if sim := cosineSimilarity(jobVec, candidateVec); sim > best {
				best = sim
			}
		}
	}
	return best
}

func (e *EmbedSimilarity) emptyResult() *types.EvaluationResult {
	return &types.EvaluationResult{
		Method: MethodEmbedSimilarity,
		Scores: map[string]float64{"embed_sim": 0, "sim_title": 0},
		Metadata: map[string]any{
			"model":          embedModelName,
			"top_k":          e.cfg.TopK,
			"evidence_pairs": []EvidencePair{},
		},
	}
}

// computeEmbedIDF builds a smoothed IDF table over all documents. Empty
// documents do not count toward the corpus size.
func computeEmbedIDF(documents [][]string) map[string]float64 {
	df := make(map[string]int)
	totalDocs := 0
	for _, tokens := range documents {
		if len(tokens) == 0 {
			continue
		}
		totalDocs++
		seen := make(map[string]bool, len(tokens))
		for _, token := range tokens {
			if !seen[token] {
				seen[token] = true
				df[token]++
			}
		}
	}
	idf := make(map[string]float64, len(df))
	for token, freq := range df {
		idf[token] = math.Log(float64(1+totalDocs)/float64(1+freq)) + 1
	}
	return idf
}

func tfidfVectorOf(tokens []string, idf map[string]float64) tfidfVector {
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	total := float64(len(tokens))
	vector := make(tfidfVector, len(counts))
	for token, count := range counts {
		weight := (float64(count) / total) * idf[token]
		if weight > 0 {
			vector[token] = weight
		}
	}
	return vector
}

func cosineSimilarity(a, b tfidfVector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	dot := 0.0
	for token, value := range a {
		dot += value * b[token]
	}
	if dot == 0 {
		return 0
	}
	normA := 0.0
	for _, value := range a {
		normA += value * value
	}
	normB := 0.0
	for _, value := range b {
		normB += value * value
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func nonEmpty(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, text := range texts {
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

func allEmpty(docs [][]string) bool {
	for _, tokens := range docs {
		if len(tokens) > 0 {
			return false
		}
	}
	return true
}
