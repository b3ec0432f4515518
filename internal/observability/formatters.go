// Package observability provides structured logging setup and formatted
// output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/hr-screening/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobDescription outputs a human-readable summary of the loaded JD.
func (p *Printer) PrintJobDescription(job *types.JobDescription) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job ID:   %s\n", job.JobID))
	if len(job.RoleTitles) > 0 {
		sb.WriteString(fmt.Sprintf("Roles:    %s\n", strings.Join(job.RoleTitles, ", ")))
	}
	sb.WriteString("\n")

	if len(job.RequirementsText) > 0 {
		sb.WriteString("Requirements:\n")
		count := min(len(job.RequirementsText), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", job.RequirementsText[i]))
		}
		if len(job.RequirementsText) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(job.RequirementsText)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(job.KeyPhrases) > 0 {
		sb.WriteString("Key phrases:\n")
		count := min(len(job.KeyPhrases), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", job.KeyPhrases[i]))
		}
		if len(job.KeyPhrases) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(job.KeyPhrases)-3))
		}
		sb.WriteString("\n")
	}

	if len(job.Constraints.Language) > 0 {
		sb.WriteString(fmt.Sprintf("Language: %s\n", strings.Join(job.Constraints.Language, ", ")))
	}
	if len(job.Constraints.Location) > 0 {
		sb.WriteString(fmt.Sprintf("Location: %s\n", strings.Join(job.Constraints.Location, ", ")))
	}
	if sr := job.Constraints.SalaryRange; sr != nil {
		sb.WriteString(fmt.Sprintf("Salary:   %s - %s JPY\n", formatYen(sr.MinJPY), formatYen(sr.MaxJPY)))
	}

	p.printBox("JOB DESCRIPTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOutcome outputs one candidate's screening result with its score
// breakdown and gate status.
func (p *Printer) PrintOutcome(outcome *types.ScreeningOutcome) {
	if outcome == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidate: %s\n", outcome.CandidateID))
	sb.WriteString(fmt.Sprintf("Decision:  %s\n", decorateDecision(outcome.Decision.Decision)))
	sb.WriteString(fmt.Sprintf("Score:     %.4f\n", outcome.Aggregate.PreLLMScore))
	sb.WriteString("\n")

	if len(outcome.Evaluations) > 0 {
		sb.WriteString("Evaluations:\n")
		for _, ev := range outcome.Evaluations {
			sb.WriteString(fmt.Sprintf("  %s\n", ev.Method))
			for _, key := range sortedScoreKeys(ev.Scores) {
				sb.WriteString(fmt.Sprintf("    %-20s %.4f\n", key, ev.Scores[key]))
			}
		}
		sb.WriteString("\n")
	}

	if len(outcome.Decision.HardFailures) > 0 {
		sb.WriteString(fmt.Sprintf("Hard failures: %s\n", strings.Join(outcome.Decision.HardFailures, ", ")))
	} else {
		sb.WriteString("Hard gates: all passed\n")
	}

	p.printBox("SCREENING OUTCOME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatchSummary outputs per-decision counts for a finished batch.
func (p *Printer) PrintBatchSummary(outcomes []*types.ScreeningOutcome) {
	counts := map[types.Decision]int{}
	for _, outcome := range outcomes {
		if outcome != nil {
			counts[outcome.Decision.Decision]++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates: %d\n\n", len(outcomes)))
	sb.WriteString(fmt.Sprintf("  pass:       %d\n", counts[types.DecisionPass]))
	sb.WriteString(fmt.Sprintf("  borderline: %d\n", counts[types.DecisionBorderline]))
	sb.WriteString(fmt.Sprintf("  reject:     %d", counts[types.DecisionReject]))

	p.printBox("BATCH SUMMARY", sb.String())
}

func decorateDecision(decision types.Decision) string {
	switch decision {
	case types.DecisionPass:
		return "✅ pass"
	case types.DecisionBorderline:
		return "⚠️  borderline"
	default:
		return "❌ reject"
	}
}

func sortedScoreKeys(scores map[string]float64) []string {
	keys := make([]string, 0, len(scores))
	for key := range scores {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func formatYen(v *int64) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *v)
}
