// Package pipeline provides the high-level orchestration for a screening
// batch: loading inputs, fanning candidates out to workers, invoking the
// optional reranker, and persisting results.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/hr-screening/internal/adapters"
	"github.com/jonathan/hr-screening/internal/evaluate"
	"github.com/jonathan/hr-screening/internal/observability"
	"github.com/jonathan/hr-screening/internal/rerank"
	"github.com/jonathan/hr-screening/internal/schemas"
	"github.com/jonathan/hr-screening/internal/screening"
	"github.com/jonathan/hr-screening/internal/types"
)

// AppVersion is stamped into the output metadata. Overridden at build time
// via -ldflags.
var AppVersion = "dev"

// RunOptions holds configuration for one screening batch.
type RunOptions struct {
	CandidatesPath string
	JobPath        string
	OutputPath     string
	AsOf           string
	AuditLogPath   string
	Workers        int
	Verbose        bool

	// Now is the injected clock used for tenure math and timestamps; nil
	// falls back to time.Now.
	Now func() time.Time
}

// Pipeline wires the screening core, adapters, and optional reranker into
// a batch runner.
type Pipeline struct {
	core     *screening.Core
	registry *adapters.Registry
	reranker *rerank.Client
}

// New builds a pipeline. The reranker may be nil.
func New(core *screening.Core, registry *adapters.Registry, reranker *rerank.Client) *Pipeline {
	return &Pipeline{core: core, registry: registry, reranker: reranker}
}

// Run executes one batch end to end and writes the result envelope. Bad
// candidate lines are collected into the envelope metadata; a bad job
// document or evaluator contract violation is fatal.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*ResultEnvelope, error) {
	printer := observability.NewPrinter(os.Stdout)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	runID := uuid.New().String()

	job, err := LoadJob(opts.JobPath)
	if err != nil {
		return nil, fmt.Errorf("loading job: %w", err)
	}
	if opts.Verbose {
		printer.PrintJobDescription(job)
	}

	loader := NewCandidateLoader(p.registry)
	profiles, loadErrors, err := loader.Load(opts.CandidatesPath)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}
	for _, loadErr := range loadErrors {
		log.Warn().Int("line", loadErr.Line).Str("error", loadErr.Message).Msg("skipping candidate record")
	}
	log.Info().
		Str("run_id", runID).
		Str("job_id", job.JobID).
		Int("candidates", len(profiles)).
		Int("rejected_lines", len(loadErrors)).
		Msg("starting screening batch")

	audit, err := OpenAuditLogger(opts.AuditLogPath)
	if err != nil {
		return nil, err
	}
	defer audit.Close()

	results, err := p.screenAll(ctx, job, profiles, opts, audit)
	if err != nil {
		return nil, err
	}

	if opts.Verbose {
		for _, outcome := range results {
			printer.PrintOutcome(outcome)
		}
		printer.PrintBatchSummary(results)
	}

	envelope := &ResultEnvelope{
		Metadata: ResultMetadata{
			JobID:          job.JobID,
			CandidateCount: len(results),
			Errors:         append([]LoadError{}, loadErrors...),
			Timestamp:      now().UTC().Format(time.RFC3339),
			AppVersion:     AppVersion,
			RunID:          runID,
		},
		Results: results,
	}

	if err := validateEnvelope(envelope); err != nil {
		log.Warn().Err(err).Msg("output failed schema validation")
	}
	if err := WriteOutput(opts.OutputPath, envelope); err != nil {
		return nil, err
	}
	log.Info().Str("run_id", runID).Str("output", opts.OutputPath).Msg("screening batch complete")
	return envelope, nil
}

// screenAll screens every candidate with a bounded worker pool, preserving
// input order in the results. The evaluators and job snapshot are
// read-only, so workers share them without locks.
func (p *Pipeline) screenAll(ctx context.Context, job *types.JobDescription, profiles []*types.CandidateProfile, opts RunOptions, audit *AuditLogger) ([]*types.ScreeningOutcome, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	evalCtx := &evaluate.Context{Job: job, AsOf: opts.AsOf, Now: opts.Now}
	results := make([]*types.ScreeningOutcome, len(profiles))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, profile := range profiles {
		i, profile := i, profile
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			outcome, err := p.screenOne(gCtx, job, profile, evalCtx, audit)
			if err != nil {
				return fmt.Errorf("candidate %s: %w", profile.CandidateID, err)
			}
			results[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) screenOne(ctx context.Context, job *types.JobDescription, profile *types.CandidateProfile, evalCtx *evaluate.Context, audit *AuditLogger) (*types.ScreeningOutcome, error) {
	outcome, err := p.core.Evaluate(profile, evalCtx)
	if err != nil {
		return nil, err
	}

	if p.reranker.Enabled() {
		payload := rerank.BuildPayload(job, profile, outcome)
		outcome.LLMPayload = payload
		outcome.LLMResponse = p.reranker.Rerank(ctx, payload)
	}

	if err := audit.Record(AuditRecord{
		CandidateID:     outcome.CandidateID,
		JobID:           outcome.JobID,
		PreLLMScore:     outcome.Aggregate.PreLLMScore,
		Decision:        outcome.Decision.Decision,
		HardGateFlags:   outcome.Decision.HardGateFlags,
		HardGateDetails: outcome.Decision.HardGateDetails,
		LLMPayload:      outcome.LLMPayload,
		LLMResponse:     outcome.LLMResponse,
	}); err != nil {
		return nil, err
	}
	return outcome, nil
}

// validateEnvelope checks the serialized output against the results schema.
// Failures are logged by the caller, never fatal.
func validateEnvelope(envelope *ResultEnvelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return schemas.ValidateScreeningResults(data)
}
