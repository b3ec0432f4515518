package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
core:
  score_weights:
    bm25_prox: 0.5
    embed_sim: 0.5
  thresholds:
    pass: 0.9
    borderline: 0.7
evaluators:
  bm25:
    k1: 1.5
    b: 0.6
  salary:
    tolerance_ratio: 0.2
rerank:
  endpoint: https://rerank.example.com/v1
  api_key: secret
  timeout_seconds: 5
log_level: debug
workers: 8
audit_log: audit.jsonl
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.5, cfg.ScoreWeights()["bm25_prox"])
	assert.Equal(t, 0.9, cfg.DecisionThresholds().Pass)
	assert.Equal(t, 0.7, cfg.DecisionThresholds().Borderline)
	require.NotNil(t, cfg.Evaluators.BM25)
	assert.Equal(t, 1.5, cfg.Evaluators.BM25.K1)
	require.NotNil(t, cfg.Evaluators.Salary)
	assert.Equal(t, 0.2, cfg.Evaluators.Salary.ToleranceRatio)
	assert.Equal(t, "https://rerank.example.com/v1", cfg.Rerank.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.RerankTimeout())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.Workers)
}

func TestLoad_EmptyConfigUsesDefaults(t *testing.T) {
	path := writeConfig(t, "{}")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.45, cfg.ScoreWeights()["bm25_prox"])
	assert.Equal(t, 0.80, cfg.DecisionThresholds().Pass)
	assert.Equal(t, 10*time.Second, cfg.RerankTimeout())
	assert.Len(t, cfg.BuildEvaluators(), 5)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, "evaluaters:\n  bm25: {}\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate_ThresholdOrdering(t *testing.T) {
	cfg := &AppConfig{Core: CoreConfig{Thresholds: &ThresholdsConfig{Pass: 0.5, Borderline: 0.7}}}
	assert.Error(t, cfg.Validate())
}

func TestValidate_NegativeWeight(t *testing.T) {
	cfg := &AppConfig{Core: CoreConfig{ScoreWeights: map[string]float64{"bm25_prox": -1}}}
	assert.Error(t, cfg.Validate())
}

func TestValidate_NegativeWorkers(t *testing.T) {
	cfg := &AppConfig{Workers: -1}
	assert.Error(t, cfg.Validate())
}

func TestBuildEvaluators_Order(t *testing.T) {
	cfg := &AppConfig{}
	evaluators := cfg.BuildEvaluators()
	require.Len(t, evaluators, 5)
	assert.Equal(t, "bm25_proximity", evaluators[0].Method())
	assert.Equal(t, "embed_similarity", evaluators[1].Method())
	assert.Equal(t, "tenure", evaluators[2].Method())
	assert.Equal(t, "salary", evaluators[3].Method())
	assert.Equal(t, "jd_rule", evaluators[4].Method())
}

func TestRerankTimeout_DurationForm(t *testing.T) {
	cfg := &AppConfig{Rerank: RerankConfig{Timeout: 3 * time.Second, TimeoutSeconds: 9}}
	assert.Equal(t, 3*time.Second, cfg.RerankTimeout())
}
