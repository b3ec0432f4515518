// Package adapters converts provider-native resume payloads into the
// provider-neutral candidate profile.
package adapters

import (
	"fmt"
	"sort"

	"github.com/jonathan/hr-screening/internal/types"
)

// ResumeAdapter is the provider-specific conversion contract. Implementations
// transform provider-native resume blobs into provider-neutral profiles.
type ResumeAdapter interface {
	// Provider returns the lowercase provider name the adapter serves.
	Provider() string
	// CanHandle reports whether the adapter can parse the given blob.
	// Metadata may carry an explicit provider hint.
	CanHandle(blob []byte, metadata map[string]string) bool
	// SplitCandidates splits a multi-candidate payload into per-candidate
	// chunks.
	SplitCandidates(text string) []string
	// ParseCandidate parses one candidate chunk into a profile.
	ParseCandidate(section string) (*types.CandidateProfile, error)
}

// Registry maps provider names to adapters.
type Registry struct {
	adapters map[string]ResumeAdapter
}

// NewRegistry builds a registry over the given adapters.
func NewRegistry(adapters ...ResumeAdapter) *Registry {
	reg := &Registry{adapters: make(map[string]ResumeAdapter, len(adapters))}
	for _, adapter := range adapters {
		reg.adapters[adapter.Provider()] = adapter
	}
	return reg
}

// DefaultRegistry returns a registry with the built-in adapters.
func DefaultRegistry() *Registry {
	return NewRegistry(NewBizReachAdapter())
}

// Get returns the adapter for a provider.
func (r *Registry) Get(provider string) (ResumeAdapter, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("unsupported provider %q", provider)
	}
	return adapter, nil
}

// Providers lists the registered provider names, sorted.
func (r *Registry) Providers() []string {
	providers := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	return providers
}
