package adapters

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/hr-screening/internal/types"
)

// ProviderBizReach is the provider name served by BizReachAdapter.
const ProviderBizReach = "bizreach"

// BizReachAdapter converts structured BizReach JSON payloads into candidate
// profiles. BizReach exports one candidate per record, so SplitCandidates
// is the identity.
type BizReachAdapter struct{}

// NewBizReachAdapter creates the adapter.
func NewBizReachAdapter() *BizReachAdapter { return &BizReachAdapter{} }

// Provider returns "bizreach".
func (a *BizReachAdapter) Provider() string { return ProviderBizReach }

// CanHandle accepts blobs whose metadata or embedded provider field names
// this adapter.
func (a *BizReachAdapter) CanHandle(blob []byte, metadata map[string]string) bool {
	if provider, ok := metadata["provider"]; ok && strings.EqualFold(provider, ProviderBizReach) {
		return true
	}
	var probe struct {
		Provider string `json:"provider"`
	}
	if err := json.Unmarshal(blob, &probe); err != nil {
		return false
	}
	return strings.EqualFold(probe.Provider, ProviderBizReach)
}

// SplitCandidates returns the text unchanged.
func (a *BizReachAdapter) SplitCandidates(text string) []string {
	return []string{text}
}

// ParseCandidate parses one BizReach record. The candidate data may be
// nested under a "payload" key or inlined at the top level.
func (a *BizReachAdapter) ParseCandidate(section string) (*types.CandidateProfile, error) {
	var envelope struct {
		Payload json.RawMessage `json:"payload"`
	}
	data := []byte(section)
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("invalid bizreach payload: %w", err)
	}
	if len(envelope.Payload) > 0 {
		data = envelope.Payload
	}

	profile, err := types.DecodeCandidateProfile(data)
	if err != nil {
		return nil, fmt.Errorf("invalid bizreach payload: %w", err)
	}
	profile.Provider = ProviderBizReach
	return profile, nil
}
