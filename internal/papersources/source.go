// Package papersources provides interfaces and types for academic paper source clients.
//
// Each paper index implements the PaperSource interface so the tool boundary can
// search, download, and read documents without knowing which index it talks to.
//
// Example usage:
//
//	source := arxiv.New(cfg, logger, metrics)
//	papers, err := source.Search(ctx, papersources.SearchParams{
//		Query:      "ti:transformer",
//		MaxResults: 5,
//	})
package papersources

import (
	"context"

	"github.com/helixir/paper-search-service/internal/domain"
)

// DefaultMaxResults is used when SearchParams.MaxResults is zero.
const DefaultMaxResults = 10

// SearchParams defines the parameters for searching academic papers.
type SearchParams struct {
	// Query is the search query string (required). It is passed to the
	// source verbatim; sources only apply transport encoding.
	Query string

	// MaxResults limits the number of papers returned.
	// A value of 0 uses DefaultMaxResults.
	MaxResults int
}

// Limit returns the effective result limit.
func (p SearchParams) Limit() int {
	if p.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return p.MaxResults
}

// PaperSource defines the interface that all paper source clients must implement.
// Implementations are stateless after construction and safe for concurrent use.
type PaperSource interface {
	// Search queries the source and returns papers in the order the source
	// ranked them, at most params.Limit() of them. Entries that cannot be
	// normalized are skipped. An error is returned only when the request as a
	// whole fails, in which case no papers are returned.
	Search(ctx context.Context, params SearchParams) ([]*domain.Paper, error)

	// Download fetches the document for paperID and persists it under destDir.
	// Returns the path of the written file.
	Download(ctx context.Context, paperID, destDir string) (string, error)

	// Read fetches the document for paperID and returns its extracted plain
	// text without writing anything to durable storage. On failure the text
	// is empty and the error describes why; domain.ErrNotFound is matched
	// when the source has no document for the identifier.
	Read(ctx context.Context, paperID string) (string, error)

	// SourceType returns the type identifier for this paper source.
	SourceType() domain.SourceType

	// Name returns a human-readable name for this paper source.
	// Used for logging, metrics, and display purposes.
	Name() string

	// IsEnabled returns whether this paper source is enabled by configuration.
	IsEnabled() bool
}
