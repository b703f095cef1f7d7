package papersources

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-search-service/internal/domain"
)

// mockPaperSource is a mock implementation of PaperSource for testing.
type mockPaperSource struct {
	sourceType domain.SourceType
	name       string
	enabled    bool
}

func newMockPaperSource(sourceType domain.SourceType, name string, enabled bool) *mockPaperSource {
	return &mockPaperSource{
		sourceType: sourceType,
		name:       name,
		enabled:    enabled,
	}
}

func (m *mockPaperSource) Search(ctx context.Context, params SearchParams) ([]*domain.Paper, error) {
	return []*domain.Paper{}, nil
}

func (m *mockPaperSource) Download(ctx context.Context, paperID, destDir string) (string, error) {
	return "", domain.ErrNotFound
}

func (m *mockPaperSource) Read(ctx context.Context, paperID string) (string, error) {
	return "", domain.ErrNotFound
}

func (m *mockPaperSource) SourceType() domain.SourceType {
	return m.sourceType
}

func (m *mockPaperSource) Name() string {
	return m.name
}

func (m *mockPaperSource) IsEnabled() bool {
	return m.enabled
}

const (
	sourceTypeAlpha domain.SourceType = "alpha"
	sourceTypeBeta  domain.SourceType = "beta"
)

func TestSearchParams_Limit(t *testing.T) {
	assert.Equal(t, DefaultMaxResults, SearchParams{}.Limit())
	assert.Equal(t, DefaultMaxResults, SearchParams{MaxResults: -3}.Limit())
	assert.Equal(t, 5, SearchParams{MaxResults: 5}.Limit())
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()

	require.NotNil(t, registry)
	require.NotNil(t, registry.sources)
	assert.Nil(t, registry.Get(domain.SourceTypeArXiv))
	assert.Empty(t, registry.EnabledSources())
}

func TestRegistry_Register(t *testing.T) {
	t.Run("registers single source", func(t *testing.T) {
		registry := NewRegistry()
		source := newMockPaperSource(domain.SourceTypeArXiv, "arXiv", true)

		registry.Register(source)

		retrieved := registry.Get(domain.SourceTypeArXiv)
		require.NotNil(t, retrieved)
		assert.Equal(t, source, retrieved)
	})

	t.Run("replaces existing source with same type", func(t *testing.T) {
		registry := NewRegistry()

		registry.Register(newMockPaperSource(domain.SourceTypeArXiv, "Original", true))
		registry.Register(newMockPaperSource(domain.SourceTypeArXiv, "Replacement", true))

		retrieved := registry.Get(domain.SourceTypeArXiv)
		require.NotNil(t, retrieved)
		assert.Equal(t, "Replacement", retrieved.Name())
		assert.Len(t, registry.EnabledSources(), 1)
	})

	t.Run("concurrent registration is safe", func(t *testing.T) {
		registry := NewRegistry()
		var wg sync.WaitGroup

		sourceTypes := []domain.SourceType{domain.SourceTypeArXiv, sourceTypeAlpha, sourceTypeBeta}

		for i := 0; i < 10; i++ {
			for _, st := range sourceTypes {
				wg.Add(1)
				go func(sourceType domain.SourceType) {
					defer wg.Done()
					registry.Register(newMockPaperSource(sourceType, string(sourceType), true))
				}(st)
			}
		}

		wg.Wait()

		assert.Len(t, registry.EnabledSources(), 3)
	})
}

func TestRegistry_Lookup(t *testing.T) {
	t.Run("returns enabled source", func(t *testing.T) {
		registry := NewRegistry()
		source := newMockPaperSource(domain.SourceTypeArXiv, "arXiv", true)
		registry.Register(source)

		got, err := registry.Lookup(domain.SourceTypeArXiv)
		require.NoError(t, err)
		assert.Equal(t, source, got)
	})

	t.Run("unregistered source is not found", func(t *testing.T) {
		registry := NewRegistry()

		got, err := registry.Lookup(domain.SourceTypeArXiv)
		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("disabled source is rejected", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register(newMockPaperSource(domain.SourceTypeArXiv, "arXiv", false))

		got, err := registry.Lookup(domain.SourceTypeArXiv)
		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, domain.ErrSourceDisabled)
	})
}

func TestRegistry_EnabledSources(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newMockPaperSource(sourceTypeBeta, "Beta", true))
	registry.Register(newMockPaperSource(domain.SourceTypeArXiv, "arXiv", false))
	registry.Register(newMockPaperSource(sourceTypeAlpha, "Alpha", true))

	sources := registry.EnabledSources()

	require.Len(t, sources, 2)
	assert.Equal(t, sourceTypeAlpha, sources[0].SourceType())
	assert.Equal(t, sourceTypeBeta, sources[1].SourceType())
}

var _ PaperSource = (*mockPaperSource)(nil)
