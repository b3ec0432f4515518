package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hr-screening/internal/types"
)

func embedJob() *types.JobDescription {
	return &types.JobDescription{
		JobID:            "job-1",
		RoleTitles:       []string{"Data Engineer"},
		RequirementsText: []string{"python data pipelines"},
	}
}

func embedProfile() *types.CandidateProfile {
	return &types.CandidateProfile{
		Provider:    "bizreach",
		CandidateID: "BU0000001",
		Experiences: []types.ExperienceEntry{
			{
				Company: "Acme",
				Title:   "Data Engineer",
				Bullets: []string{"python data pipelines", "ci cd automation"},
			},
		},
	}
}

func TestEmbedSimilarity_Method(t *testing.T) {
	assert.Equal(t, "embed_similarity", NewEmbedSimilarity(DefaultEmbedConfig()).Method())
}

func TestEmbedSimilarity_NoRequirements(t *testing.T) {
	e := NewEmbedSimilarity(DefaultEmbedConfig())
	result, err := e.Evaluate(embedProfile(), &Context{Job: &types.JobDescription{JobID: "job-1"}})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Scores["embed_sim"])
	assert.Equal(t, 0.0, result.Scores["sim_title"])
	assert.Empty(t, result.Metadata["evidence_pairs"])
}

func TestEmbedSimilarity_NoResumeEntries(t *testing.T) {
	e := NewEmbedSimilarity(DefaultEmbedConfig())
	result, err := e.Evaluate(&types.CandidateProfile{Provider: "bizreach", CandidateID: "x"}, &Context{Job: embedJob()})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Scores["embed_sim"])
}

func TestEmbedSimilarity_IdenticalTextScoresOne(t *testing.T) {
	e := NewEmbedSimilarity(DefaultEmbedConfig())
	result, err := e.Evaluate(embedProfile(), &Context{Job: embedJob()})
	require.NoError(t, err)

	pairs, ok := result.Metadata["evidence_pairs"].([]EvidencePair)
	require.True(t, ok)
	require.NotEmpty(t, pairs)
	assert.Equal(t, "python data pipelines", pairs[0].JDText)
	assert.Equal(t, "python data pipelines", pairs[0].ResumeText)
	assert.InDelta(t, 1.0, pairs[0].Similarity, 1e-9)
	assert.Greater(t, result.Scores["embed_sim"], 0.0)
}

func TestEmbedSimilarity_TitleSimilarity(t *testing.T) {
	e := NewEmbedSimilarity(DefaultEmbedConfig())
	result, err := e.Evaluate(embedProfile(), &Context{Job: embedJob()})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, result.Scores["sim_title"], 1e-9)
}

func TestEmbedSimilarity_EvidenceSortedDescending(t *testing.T) {
	e := NewEmbedSimilarity(DefaultEmbedConfig())
	job := embedJob()
	job.RequirementsText = []string{"python data pipelines", "terraform"}

	profile := embedProfile()
	profile.Experiences[0].Bullets = append(profile.Experiences[0].Bullets, "some terraform plus unrelated text here")

	result, err := e.Evaluate(profile, &Context{Job: job})
	require.NoError(t, err)

	pairs := result.Metadata["evidence_pairs"].([]EvidencePair)
	for i := 1; i < len(pairs); i++ {
		assert.GreaterOrEqual(t, pairs[i-1].Similarity, pairs[i].Similarity)
	}
}

func TestEmbedSimilarity_SynonymBridgesVocabulary(t *testing.T) {
	cfg := DefaultEmbedConfig()
	cfg.Synonyms = map[string][]string{"k8s": {"kubernetes"}}
	e := NewEmbedSimilarity(cfg)

	job := &types.JobDescription{JobID: "job-1", RequirementsText: []string{"kubernetes"}}
	profile := &types.CandidateProfile{
		Provider:    "bizreach",
		CandidateID: "BU0000002",
		Experiences: []types.ExperienceEntry{
			{Company: "Acme", Bullets: []string{"k8s"}},
		},
	}
	result, err := e.Evaluate(profile, &Context{Job: job})
	require.NoError(t, err)
	assert.Greater(t, result.Scores["embed_sim"], 0.0)
}

func TestEmbedSimilarity_ModelTag(t *testing.T) {
	e := NewEmbedSimilarity(DefaultEmbedConfig())
	result, err := e.Evaluate(embedProfile(), &Context{Job: embedJob()})
	require.NoError(t, err)
	assert.Equal(t, "tfidf-cosine-lite", result.Metadata["model"])
	assert.Equal(t, 3, result.Metadata["top_k"])
}

func TestCosineSimilarity(t *testing.T) {
	a := tfidfVector{"x": 1, "y": 1}
	assert.InDelta(t, 1.0, cosineSimilarity(a, a), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity(a, tfidfVector{"z": 1}))
	assert.Equal(t, 0.0, cosineSimilarity(a, nil))
}

func TestComputeEmbedIDF_SkipsEmptyDocs(t *testing.T) {
	idf := computeEmbedIDF([][]string{{"go"}, nil, {"go", "rust"}})
	// df(go)=2 over 2 docs, df(rust)=1
	assert.Greater(t, idf["rust"], idf["go"])
}
