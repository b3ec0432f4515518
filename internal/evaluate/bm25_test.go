package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hr-screening/internal/types"
)

func bm25Job() *types.JobDescription {
	return &types.JobDescription{
		JobID:            "job-1",
		RoleTitles:       []string{"Backend Engineer"},
		RequirementsText: []string{"Go microservices on Kubernetes"},
		KeyPhrases:       []string{"terraform"},
	}
}

func bm25Profile() *types.CandidateProfile {
	return &types.CandidateProfile{
		Provider:    "bizreach",
		CandidateID: "BU0000001",
		Skills:      []string{"Go", "Terraform"},
		Experiences: []types.ExperienceEntry{
			{
				Company: "Acme",
				Title:   "Backend Engineer",
				Summary: "Platform team",
				Bullets: []string{"Built Go microservices deployed on Kubernetes"},
			},
		},
	}
}

func TestBM25Proximity_Method(t *testing.T) {
	assert.Equal(t, "bm25_proximity", NewBM25Proximity(DefaultBM25Config()).Method())
}

func TestBM25Proximity_EmptyProfile(t *testing.T) {
	e := NewBM25Proximity(DefaultBM25Config())
	result, err := e.Evaluate(&types.CandidateProfile{Provider: "bizreach", CandidateID: "x"}, &Context{Job: bm25Job()})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Scores["bm25_prox"])
	assert.Equal(t, 0.0, result.Scores["title_bonus"])
	assert.Empty(t, result.Metadata["hits"])
}

func TestBM25Proximity_MatchingBulletScores(t *testing.T) {
	e := NewBM25Proximity(DefaultBM25Config())
	result, err := e.Evaluate(bm25Profile(), &Context{Job: bm25Job()})
	require.NoError(t, err)

	assert.Greater(t, result.Scores["bm25_prox"], 0.0)

	hits, ok := result.Metadata["hits"].([]BM25Hit)
	require.True(t, ok)
	require.NotEmpty(t, hits)
	assert.Equal(t, "Go microservices on Kubernetes", hits[0].JDText)
	assert.Equal(t, "bullets", hits[0].Section)
	assert.Equal(t, 1.0, hits[0].Weight)
	assert.Greater(t, hits[0].BM25, 0.0)
}

func TestBM25Proximity_TitleBonusExactMatch(t *testing.T) {
	e := NewBM25Proximity(DefaultBM25Config())
	result, err := e.Evaluate(bm25Profile(), &Context{Job: bm25Job()})
	require.NoError(t, err)

	assert.InDelta(t, 0.2, result.Scores["title_bonus"], 1e-9)
}

func TestBM25Proximity_NoRoleTitlesNoBonus(t *testing.T) {
	job := bm25Job()
	job.RoleTitles = nil
	e := NewBM25Proximity(DefaultBM25Config())
	result, err := e.Evaluate(bm25Profile(), &Context{Job: job})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Scores["title_bonus"])
}

func TestBM25Proximity_DuplicateQueriesCollapse(t *testing.T) {
	job := bm25Job()
	job.KeyPhrases = []string{"Go microservices on Kubernetes", "go Microservices on kubernetes"}
	e := NewBM25Proximity(DefaultBM25Config())
	result, err := e.Evaluate(bm25Profile(), &Context{Job: job})
	require.NoError(t, err)

	hits := result.Metadata["hits"].([]BM25Hit)
	assert.Len(t, hits, 1)
}

func TestBM25Proximity_RepeatedQueryTokenCountsOnce(t *testing.T) {
	e := NewBM25Proximity(DefaultBM25Config())

	repeated := bm25Job()
	repeated.RequirementsText = []string{"Go experience, deep Go knowledge of microservices"}
	plain := bm25Job()
	plain.RequirementsText = []string{"Go experience, deep knowledge of microservices"}

	withDup, err := e.Evaluate(bm25Profile(), &Context{Job: repeated})
	require.NoError(t, err)
	withoutDup, err := e.Evaluate(bm25Profile(), &Context{Job: plain})
	require.NoError(t, err)

	assert.Equal(t, withoutDup.Scores["bm25_prox"], withDup.Scores["bm25_prox"])
}

func TestProximityBonus_AdjacentTokens(t *testing.T) {
	e := NewBM25Proximity(DefaultBM25Config())
	doc := []string{"built", "go", "kubernetes", "clusters"}
	bonus := e.proximityBonus(doc, []string{"go", "kubernetes"})
	// minimal span 2 -> alpha / (1 + 2)
	assert.InDelta(t, 0.2/3, bonus, 1e-9)
}

func TestProximityBonus_TokensTooFarApart(t *testing.T) {
	doc := []string{"go", "a", "b", "c", "d", "e", "f", "g", "h", "i", "kubernetes"}
	e := NewBM25Proximity(DefaultBM25Config())
	assert.Equal(t, 0.0, e.proximityBonus(doc, []string{"go", "kubernetes"}))
}

func TestProximityBonus_SingleTokenQuery(t *testing.T) {
	e := NewBM25Proximity(DefaultBM25Config())
	assert.Equal(t, 0.0, e.proximityBonus([]string{"go", "go"}, []string{"go"}))
}

func TestProximityBonus_MissingToken(t *testing.T) {
	e := NewBM25Proximity(DefaultBM25Config())
	assert.Equal(t, 0.0, e.proximityBonus([]string{"go"}, []string{"go", "rust"}))
}

func TestBM25Proximity_SynonymExpansion(t *testing.T) {
	cfg := DefaultBM25Config()
	cfg.Synonyms = map[string][]string{"k8s": {"kubernetes"}}
	e := NewBM25Proximity(cfg)

	job := &types.JobDescription{JobID: "job-1", RequirementsText: []string{"k8s"}}
	profile := &types.CandidateProfile{
		Provider:    "bizreach",
		CandidateID: "BU0000002",
		Experiences: []types.ExperienceEntry{
			{Company: "Acme", Title: "SRE", Bullets: []string{"operated kubernetes clusters"}},
		},
	}
	result, err := e.Evaluate(profile, &Context{Job: job})
	require.NoError(t, err)
	assert.Greater(t, result.Scores["bm25_prox"], 0.0)
}

func TestNewBM25Proximity_ZeroConfigUsesDefaults(t *testing.T) {
	e := NewBM25Proximity(BM25Config{})
	assert.Equal(t, 1.2, e.cfg.K1)
	assert.Equal(t, 0.75, e.cfg.B)
	assert.Equal(t, 0.2, e.cfg.AlphaProximity)
	assert.Equal(t, 8, e.cfg.Window)
	assert.Equal(t, 1.0, e.cfg.SectionWeights["bullets"])
}
