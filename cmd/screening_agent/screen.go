package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/hr-screening/internal/adapters"
	"github.com/jonathan/hr-screening/internal/config"
	"github.com/jonathan/hr-screening/internal/observability"
	"github.com/jonathan/hr-screening/internal/pipeline"
	"github.com/jonathan/hr-screening/internal/rerank"
	"github.com/jonathan/hr-screening/internal/screening"
)

var screenCommand = &cobra.Command{
	Use:   "screen",
	Short: "Screen a batch of candidates against a job description",
	Long: `Loads candidates from a JSONL file and a job description from JSON, runs
every evaluator plus the hard constraint gates, and writes a results
envelope. Bad candidate lines are skipped and reported in the output
metadata.

Configuration can be loaded from a YAML file using --config. Command-line
arguments override config file values.`,
	RunE: screenCmd,
}

var (
	screenConfigPath  string
	screenCandidates  string
	screenJob         string
	screenOutput      string
	screenAsOf        string
	screenAuditLog    string
	screenLLMEndpoint string
	screenLLMAPIKey   string
	screenWorkers     int
	screenLogLevel    string
	screenJSONLogs    bool
	screenVerbose     bool
)

func init() {
	screenCommand.Flags().StringVar(&screenConfigPath, "config", "", "Path to config.yaml (values can be overridden by other flags)")

	screenCommand.Flags().StringVarP(&screenCandidates, "candidates", "c", "", "Path to candidates JSONL file (required)")
	screenCommand.Flags().StringVarP(&screenJob, "job", "j", "", "Path to job description JSON file (required)")
	screenCommand.Flags().StringVarP(&screenOutput, "output", "o", "", "Path to write the results JSON envelope (required)")
	screenCommand.Flags().StringVar(&screenAsOf, "as-of", "", "Evaluation date as YYYY-MM-DD (defaults to today)")
	screenCommand.Flags().StringVar(&screenAuditLog, "audit-log", "", "Append per-candidate audit records to this JSONL file")
	screenCommand.Flags().IntVar(&screenWorkers, "workers", 0, "Concurrent screening workers (default 4)")
	screenCommand.Flags().StringVar(&screenLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	screenCommand.Flags().BoolVar(&screenJSONLogs, "json-logs", false, "Emit logs as JSON instead of console format")
	screenCommand.Flags().BoolVarP(&screenVerbose, "verbose", "v", false, "Print job, per-candidate, and batch summaries")

	// The reranker endpoint and key can come from flags or the environment.
	screenCommand.Flags().StringVar(&screenLLMEndpoint, "llm-endpoint", "", "Reranker endpoint URL (optional, defaults to LLM_ENDPOINT env var)")
	screenCommand.Flags().StringVar(&screenLLMAPIKey, "llm-api-key", "", "Reranker API key (optional, defaults to LLM_API_KEY env var)")

	_ = screenCommand.MarkFlagRequired("candidates")
	_ = screenCommand.MarkFlagRequired("job")
	_ = screenCommand.MarkFlagRequired("output")

	rootCmd.AddCommand(screenCommand)
}

func screenCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg := &config.AppConfig{}
	if screenConfigPath != "" {
		loaded, err := config.Load(screenConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
	}

	logLevel := cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		logLevel = screenLogLevel
	}
	observability.SetupLogging(logLevel, screenJSONLogs)

	workers := cfg.Workers
	if cmd.Flags().Changed("workers") {
		workers = screenWorkers
	}
	auditLog := cfg.AuditLog
	if cmd.Flags().Changed("audit-log") {
		auditLog = screenAuditLog
	}

	endpoint := cfg.Rerank.Endpoint
	if cmd.Flags().Changed("llm-endpoint") {
		endpoint = screenLLMEndpoint
	}
	if endpoint == "" {
		endpoint = os.Getenv("LLM_ENDPOINT")
	}
	apiKey := cfg.Rerank.APIKey
	if cmd.Flags().Changed("llm-api-key") {
		apiKey = screenLLMAPIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("LLM_API_KEY")
	}

	var reranker *rerank.Client
	if endpoint != "" {
		reranker = rerank.NewClient(endpoint, apiKey, cfg.RerankTimeout())
	}

	core := screening.NewCore(cfg.BuildEvaluators(), cfg.ScoreWeights(), cfg.DecisionThresholds())
	runner := pipeline.New(core, adapters.DefaultRegistry(), reranker)

	_, err := runner.Run(ctx, pipeline.RunOptions{
		CandidatesPath: screenCandidates,
		JobPath:        screenJob,
		OutputPath:     screenOutput,
		AsOf:           screenAsOf,
		AuditLogPath:   auditLog,
		Workers:        workers,
		Verbose:        screenVerbose,
	})
	return err
}
