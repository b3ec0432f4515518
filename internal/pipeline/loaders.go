package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/hr-screening/internal/adapters"
	"github.com/jonathan/hr-screening/internal/schemas"
	"github.com/jonathan/hr-screening/internal/types"
)

// LoadError records one rejected candidate line. The batch continues past
// bad lines; errors are surfaced in the output metadata.
type LoadError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (e LoadError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// CandidateLoader reads newline-delimited candidate records and converts
// them through the provider adapters.
type CandidateLoader struct {
	registry *adapters.Registry
}

// NewCandidateLoader builds a loader over the given registry.
func NewCandidateLoader(registry *adapters.Registry) *CandidateLoader {
	return &CandidateLoader{registry: registry}
}

// Load parses the JSONL file at path. Each line is `{"provider": ...,
// "payload": {...}}`; the payload may also be inlined at the top level.
// Invalid lines are collected as LoadErrors, not fatal.
func (l *CandidateLoader) Load(path string) ([]*types.CandidateProfile, []LoadError, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening candidates file: %w", err)
	}
	defer file.Close()

	var profiles []*types.CandidateProfile
	var loadErrors []LoadError

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		profile, err := l.parseLine(line)
		if err != nil {
			loadErrors = append(loadErrors, LoadError{Line: lineNo, Message: err.Error()})
			continue
		}
		profiles = append(profiles, profile)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading candidates file: %w", err)
	}
	return profiles, loadErrors, nil
}

func (l *CandidateLoader) parseLine(line string) (*types.CandidateProfile, error) {
	var record struct {
		Provider string `json:"provider"`
	}
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if record.Provider == "" {
		return nil, fmt.Errorf("candidate record missing provider")
	}
	adapter, err := l.registry.Get(record.Provider)
	if err != nil {
		return nil, err
	}
	profile, err := adapter.ParseCandidate(line)
	if err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid candidate profile: %w", err)
	}
	return profile, nil
}

// LoadJob reads and validates a JobDescription JSON document. The document
// is checked against the JSON schema before decoding so schema violations
// carry field paths.
func LoadJob(path string) (*types.JobDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}
	if err := schemas.ValidateJobDescription(data); err != nil {
		return nil, fmt.Errorf("job document failed schema validation: %w", err)
	}
	var job types.JobDescription
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decoding job document: %w", err)
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job document: %w", err)
	}
	return &job, nil
}

// ResultEnvelope is the persisted output document.
type ResultEnvelope struct {
	Metadata ResultMetadata           `json:"metadata"`
	Results  []*types.ScreeningOutcome `json:"results"`
}

// ResultMetadata describes one screening run.
type ResultMetadata struct {
	JobID          string      `json:"job_id"`
	CandidateCount int         `json:"candidate_count"`
	Errors         []LoadError `json:"errors"`
	Timestamp      string      `json:"timestamp"`
	AppVersion     string      `json:"app_version"`
	RunID          string      `json:"run_id"`
}

// WriteOutput persists the envelope as indented UTF-8 JSON, creating parent
// directories as needed. Non-ASCII text is preserved literally.
func WriteOutput(path string, envelope *ResultEnvelope) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(envelope); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}
