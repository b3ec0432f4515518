package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/jonathan/hr-screening/internal/types"
)

// AuditRecord is one append-only audit line per screened candidate.
type AuditRecord struct {
	CandidateID     string          `json:"candidate_id"`
	JobID           string          `json:"job_id"`
	PreLLMScore     float64         `json:"pre_llm_score"`
	Decision        types.Decision  `json:"decision"`
	HardGateFlags   map[string]bool `json:"hard_gate_flags"`
	HardGateDetails map[string]any  `json:"hard_gate_details,omitempty"`
	LLMPayload      map[string]any  `json:"llm_payload,omitempty"`
	LLMResponse     json.RawMessage `json:"llm_response,omitempty"`
}

// AuditLogger appends newline-delimited JSON audit records. Writes are
// serialized so parallel workers can share one logger.
type AuditLogger struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// OpenAuditLogger opens (or creates) the audit log for appending. An empty
// path returns a nil logger, which discards records.
func OpenAuditLogger(path string) (*AuditLogger, error) {
	if path == "" {
		return nil, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	return &AuditLogger{file: file, enc: enc}, nil
}

// Record appends one audit line.
func (l *AuditLogger) Record(record AuditRecord) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(record); err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	return nil
}

// Close releases the underlying file.
func (l *AuditLogger) Close() error {
	if l == nil {
		return nil
	}
	return l.file.Close()
}
