package domain

import (
	"time"
)

// SourceType represents the paper index that produced a record.
type SourceType string

const (
	// SourceTypeArXiv identifies records produced by the arXiv adapter.
	SourceTypeArXiv SourceType = "arxiv"
)

// String returns the source tag as it appears in serialized records.
func (s SourceType) String() string {
	return string(s)
}

// Paper is one discovered or retrievable document, normalized from a
// source-specific search entry. A Paper is built once per search call and is
// never mutated afterwards.
type Paper struct {
	// PaperID is the last path segment of the source's canonical identifier
	// (e.g. "2107.12345v1"). Always non-empty for a constructed Paper.
	PaperID string `json:"paper_id"`

	// Title is the paper title as reported by the source.
	Title string `json:"title"`

	// Authors lists author names in source order.
	Authors []string `json:"authors"`

	// Abstract is the paper summary. May be empty.
	Abstract string `json:"abstract"`

	// URL is the canonical landing-page URI.
	URL string `json:"url"`

	// PDFURL is the advertised PDF link, or empty when none was advertised.
	PDFURL string `json:"pdf_url"`

	// PublishedDate is the first submission time (UTC).
	PublishedDate time.Time `json:"published_date"`

	// UpdatedDate is the latest revision time (UTC).
	UpdatedDate time.Time `json:"updated_date"`

	// Source is the tag of the adapter that produced this record.
	Source SourceType `json:"source"`

	// Categories lists subject tags in source order.
	Categories []string `json:"categories"`

	// Keywords is reserved for keyword extraction and is always empty for
	// adapters that do not perform it.
	Keywords []string `json:"keywords"`

	// DOI is the digital object identifier, empty when absent.
	DOI string `json:"doi"`
}

// ToMap serializes the paper into a field-name keyed mapping suitable for
// handing to tool callers. Timestamps are rendered as RFC 3339 strings and
// list fields are never nil.
func (p *Paper) ToMap() map[string]any {
	return map[string]any{
		"paper_id":       p.PaperID,
		"title":          p.Title,
		"authors":        nonNil(p.Authors),
		"abstract":       p.Abstract,
		"url":            p.URL,
		"pdf_url":        p.PDFURL,
		"published_date": formatTime(p.PublishedDate),
		"updated_date":   formatTime(p.UpdatedDate),
		"source":         p.Source.String(),
		"categories":     nonNil(p.Categories),
		"keywords":       nonNil(p.Keywords),
		"doi":            p.DOI,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
