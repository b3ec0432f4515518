package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/hr-screening/internal/ingest"
	"github.com/jonathan/hr-screening/internal/observability"
)

var convertCommand = &cobra.Command{
	Use:   "convert",
	Short: "Convert a BizReach résumé export into candidate JSONL",
	Long: `Parses a BizReach export (PDF or markdown/plain text) and writes one
candidate record per line, ready for the screen command. PDF inputs go
through text extraction first; pass --keep-text to inspect the
intermediate text.`,
	RunE: convertCmd,
}

var (
	convertInput    string
	convertOutput   string
	convertKeepText string
	convertLogLevel string
)

func init() {
	convertCommand.Flags().StringVarP(&convertInput, "input", "i", "", "Path to the BizReach export (.pdf, .md, or .txt) (required)")
	convertCommand.Flags().StringVarP(&convertOutput, "output", "o", "", "Path to write candidate JSONL (required)")
	convertCommand.Flags().StringVar(&convertKeepText, "keep-text", "", "Also write the extracted PDF text to this path")
	convertCommand.Flags().StringVar(&convertLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	_ = convertCommand.MarkFlagRequired("input")
	_ = convertCommand.MarkFlagRequired("output")

	rootCmd.AddCommand(convertCommand)
}

func convertCmd(_ *cobra.Command, _ []string) error {
	observability.SetupLogging(convertLogLevel, false)

	switch strings.ToLower(filepath.Ext(convertInput)) {
	case ".pdf":
		return ingest.PDFToJSONL(convertInput, convertOutput, convertKeepText)
	case ".md", ".txt", ".markdown":
		data, err := os.ReadFile(convertInput)
		if err != nil {
			return fmt.Errorf("reading %s: %w", convertInput, err)
		}
		return ingest.MarkdownFileToJSONL(string(data), convertOutput)
	default:
		return fmt.Errorf("unsupported input format %q: expected .pdf, .md, or .txt", filepath.Ext(convertInput))
	}
}
