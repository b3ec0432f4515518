// Package main provides the entry point for the HR screening CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "screening_agent",
	Short: "HR candidate screening pipeline",
	Long:  "Screens batches of provider résumé exports against a job description: deterministic pre-LLM scoring, hard constraint gates, and an optional external reranker.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
