// Package config provides configuration loading and validation for the CLI.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/hr-screening/internal/evaluate"
	"github.com/jonathan/hr-screening/internal/screening"
)

// CoreConfig overrides the aggregator's weights and decision thresholds.
// Nil fields keep the built-in defaults.
type CoreConfig struct {
	ScoreWeights map[string]float64 `yaml:"score_weights,omitempty"`
	Thresholds   *ThresholdsConfig  `yaml:"thresholds,omitempty"`
}

// ThresholdsConfig mirrors screening.Thresholds in YAML form.
type ThresholdsConfig struct {
	Pass       float64 `yaml:"pass"`
	Borderline float64 `yaml:"borderline"`
}

// EvaluatorsConfig carries the per-evaluator configuration slices. A nil
// slice means the evaluator runs with defaults.
type EvaluatorsConfig struct {
	BM25   *evaluate.BM25Config      `yaml:"bm25,omitempty"`
	Embed  *evaluate.EmbedConfig     `yaml:"embed,omitempty"`
	Tenure *evaluate.TenureConfig    `yaml:"tenure,omitempty"`
	Salary *evaluate.SalaryConfig    `yaml:"salary,omitempty"`
	JD     *evaluate.JDMatcherConfig `yaml:"jd,omitempty"`
}

// RerankConfig configures the optional external reranker. An empty endpoint
// disables it.
type RerankConfig struct {
	Endpoint       string        `yaml:"endpoint,omitempty"`
	APIKey         string        `yaml:"api_key,omitempty"`
	Timeout        time.Duration `yaml:"timeout,omitempty"`
	TimeoutSeconds float64       `yaml:"timeout_seconds,omitempty"`
}

// AppConfig is the composite configuration document loaded from YAML. All
// fields are optional; missing values use defaults or CLI flags.
type AppConfig struct {
	Core       CoreConfig       `yaml:"core,omitempty"`
	Evaluators EvaluatorsConfig `yaml:"evaluators,omitempty"`
	Rerank     RerankConfig     `yaml:"rerank,omitempty"`
	LogLevel   string           `yaml:"log_level,omitempty"`
	Workers    int              `yaml:"workers,omitempty"`
	AuditLog   string           `yaml:"audit_log,omitempty"`
}

// Load reads an AppConfig from a YAML file. Unknown keys are rejected so a
// typoed evaluator name fails loudly instead of silently running defaults.
func Load(path string) (*AppConfig, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg AppConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges. Required inputs are handled by CLI flag
// validation after merging.
func (c *AppConfig) Validate() error {
	if c.Core.Thresholds != nil {
		t := c.Core.Thresholds
		if t.Pass < t.Borderline {
			return fmt.Errorf("config error: thresholds.pass must be >= thresholds.borderline")
		}
	}
	for metric, weight := range c.Core.ScoreWeights {
		if weight < 0 {
			return fmt.Errorf("config error: score weight for %q must be non-negative", metric)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: workers must be non-negative")
	}
	if c.Rerank.TimeoutSeconds < 0 {
		return fmt.Errorf("config error: rerank timeout must be non-negative")
	}
	return nil
}

// ScoreWeights returns the configured weights or the defaults.
func (c *AppConfig) ScoreWeights() map[string]float64 {
	if len(c.Core.ScoreWeights) > 0 {
		return c.Core.ScoreWeights
	}
	return screening.DefaultScoreWeights()
}

// DecisionThresholds returns the configured thresholds or the defaults.
func (c *AppConfig) DecisionThresholds() screening.Thresholds {
	if c.Core.Thresholds != nil {
		return screening.Thresholds{
			Pass:       c.Core.Thresholds.Pass,
			Borderline: c.Core.Thresholds.Borderline,
		}
	}
	return screening.DefaultThresholds()
}

// BuildEvaluators constructs the default ordered evaluator sequence from
// the per-evaluator config slices.
func (c *AppConfig) BuildEvaluators() []evaluate.Evaluator {
	return []evaluate.Evaluator{
		evaluate.NewBM25Proximity(derefOr(c.Evaluators.BM25, evaluate.DefaultBM25Config)),
		evaluate.NewEmbedSimilarity(derefOr(c.Evaluators.Embed, evaluate.DefaultEmbedConfig)),
		evaluate.NewTenure(derefOr(c.Evaluators.Tenure, evaluate.DefaultTenureConfig)),
		evaluate.NewSalary(derefOr(c.Evaluators.Salary, evaluate.DefaultSalaryConfig)),
		evaluate.NewJDKeywordMatcher(derefOr(c.Evaluators.JD, evaluate.DefaultJDMatcherConfig)),
	}
}

// RerankTimeout resolves the reranker timeout from either duration form.
func (c *AppConfig) RerankTimeout() time.Duration {
	if c.Rerank.Timeout > 0 {
		return c.Rerank.Timeout
	}
	if c.Rerank.TimeoutSeconds > 0 {
		return time.Duration(c.Rerank.TimeoutSeconds * float64(time.Second))
	}
	return 10 * time.Second
}

func derefOr[T any](v *T, fallback func() T) T {
	if v != nil {
		return *v
	}
	return fallback()
}
