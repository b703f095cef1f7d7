package papersources

import (
	"fmt"
	"sort"
	"sync"

	"github.com/helixir/paper-search-service/internal/domain"
)

// Registry manages the configured paper sources.
// It provides thread-safe registration and retrieval of paper sources.
type Registry struct {
	mu      sync.RWMutex
	sources map[domain.SourceType]PaperSource
}

// NewRegistry creates a new source registry with an empty source map.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[domain.SourceType]PaperSource),
	}
}

// Register adds a source to the registry.
// If a source with the same type already exists, it will be replaced.
func (r *Registry) Register(source PaperSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[source.SourceType()] = source
}

// Get returns a source by type, or nil if not found.
func (r *Registry) Get(sourceType domain.SourceType) PaperSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[sourceType]
}

// Lookup returns the source registered for sourceType.
// It fails with a domain.NotFoundError when no such source is registered and
// with domain.ErrSourceDisabled when the source is configured off.
func (r *Registry) Lookup(sourceType domain.SourceType) (PaperSource, error) {
	source := r.Get(sourceType)
	if source == nil {
		return nil, domain.NewNotFoundError("paper source", sourceType.String())
	}
	if !source.IsEnabled() {
		return nil, fmt.Errorf("%s: %w", source.Name(), domain.ErrSourceDisabled)
	}
	return source, nil
}

// EnabledSources returns only enabled sources, ordered by source type.
// The returned slice is a snapshot and is safe to iterate even if
// sources are added concurrently.
func (r *Registry) EnabledSources() []PaperSource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]PaperSource, 0, len(r.sources))
	for _, source := range r.sources {
		if source.IsEnabled() {
			sources = append(sources, source)
		}
	}
	sort.Slice(sources, func(i, j int) bool {
		return sources[i].SourceType() < sources[j].SourceType()
	})
	return sources
}
