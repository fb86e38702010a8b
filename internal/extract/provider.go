// Package extract defines the LLM extraction plugin point and its provider
// implementations. Each provider sends the prompt plus the report's page
// images to its API and returns the raw extracted record; schema
// reconciliation happens downstream.
package extract

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/imagendo/radeval/internal/model"
)

// Provider is the capability interface for one LLM backend.
type Provider interface {
	// Name returns the provider identifier (matches config and the
	// results directory layout).
	Name() string
	// Model returns the model identifier used for requests.
	Model() string
	// Extract sends the prompt with the page images and returns the raw
	// extracted record. Retry and backoff policy is the caller's concern.
	Extract(ctx context.Context, prompt string, pages [][]byte) (model.Record, error)
}

// Registry manages available extraction providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, eris.Errorf("extract: provider %q not registered (known: %s)", name, strings.Join(r.names(), ", "))
	}
	return p, nil
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names()
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DecodeResponse parses a model's text response into a Record, tolerating a
// markdown code fence around the JSON object.
func DecodeResponse(raw string) (model.Record, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}

	var rec model.Record
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return nil, eris.Wrap(err, "extract: decode response JSON")
	}
	return rec, nil
}
