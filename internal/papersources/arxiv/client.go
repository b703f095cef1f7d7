// Package arxiv implements the paper source for the arXiv preprint server.
package arxiv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/observability"
	"github.com/helixir/paper-search-service/internal/papersources"
	"github.com/helixir/paper-search-service/internal/pdf"
)

const (
	// DefaultBaseURL is the default arXiv API base URL.
	DefaultBaseURL = "https://export.arxiv.org/api"

	// DefaultPDFBaseURL is the default host PDFs are fetched from.
	DefaultPDFBaseURL = "https://arxiv.org"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default number of results per search.
	DefaultMaxResults = papersources.DefaultMaxResults

	// DefaultMaxPDFSize is the default cap on a fetched PDF.
	DefaultMaxPDFSize = 100 * 1024 * 1024

	// maxFeedSize bounds the Atom response body.
	maxFeedSize = 10 << 20

	// sourceName is the human-readable name for this source.
	sourceName = "arXiv"
)

// Read failure reasons, used as metric labels.
const (
	reasonNotFound = "not_found"
	reasonTooLarge = "too_large"
	reasonFetch    = "fetch"
	reasonDecode   = "decode"
)

// Config holds configuration for the arXiv client.
type Config struct {
	// BaseURL is the arXiv API base URL; searches go to BaseURL + "/query".
	BaseURL string

	// PDFBaseURL is the host documents are read from; PDFs live at
	// PDFBaseURL + "/pdf/{paper_id}.pdf".
	PDFBaseURL string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second. Zero disables pacing.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// MaxResults is the result count used when a search does not set one.
	MaxResults int

	// MaxPDFSize caps the size of a fetched PDF in bytes.
	MaxPDFSize int64

	// UserAgent is sent with every request.
	UserAgent string

	// AllowPrivateNetworks lets PDF fetches reach loopback and private
	// addresses, for tests and local mirrors.
	AllowPrivateNetworks bool

	// Enabled indicates whether this source is enabled.
	Enabled bool
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.PDFBaseURL == "" {
		c.PDFBaseURL = DefaultPDFBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.MaxPDFSize == 0 {
		c.MaxPDFSize = DefaultMaxPDFSize
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.PDFBaseURL = strings.TrimRight(c.PDFBaseURL, "/")
}

// Client implements the papersources.PaperSource interface for arXiv.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
	downloader *pdf.Downloader
	extractor  *pdf.Extractor
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

// Ensure Client implements PaperSource interface.
var _ papersources.PaperSource = (*Client)(nil)

// New creates a new arXiv client with the given configuration.
// metrics may be nil.
func New(cfg Config, logger zerolog.Logger, metrics *observability.Metrics) *Client {
	cfg.applyDefaults()

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: cfg.UserAgent,
	})

	return NewWithHTTPClient(cfg, httpClient, logger, metrics)
}

// NewWithHTTPClient creates a new arXiv client with a custom HTTP client
// for feed requests.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient, logger zerolog.Logger, metrics *observability.Metrics) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
		downloader: pdf.NewDownloader(pdf.Config{
			Timeout:              cfg.Timeout,
			MaxSize:              cfg.MaxPDFSize,
			UserAgent:            cfg.UserAgent,
			AllowPrivateNetworks: cfg.AllowPrivateNetworks,
		}),
		extractor: pdf.NewExtractor(),
		logger:    logger.With().Str("component", "arxiv").Logger(),
		metrics:   metrics,
	}
}

// Search queries arXiv for the newest submissions matching params.Query.
// Entries that cannot be normalized are logged and skipped. Any failure of
// the request itself is returned and no papers are produced.
func (c *Client) Search(ctx context.Context, params papersources.SearchParams) ([]*domain.Paper, error) {
	limit := params.MaxResults
	if limit <= 0 {
		limit = c.config.MaxResults
	}
	logger := observability.WithSearchContext(c.logger, params.Query, domain.SourceTypeArXiv.String())

	feed, err := c.fetchFeed(ctx, c.buildSearchURL(params.Query, limit))
	if err != nil {
		logger.Error().Err(err).Msg("arxiv search failed")
		return nil, err
	}

	papers := make([]*domain.Paper, 0, min(len(feed.Entries), limit))
	for _, entry := range feed.Entries {
		if len(papers) == limit {
			break
		}
		paper, err := entryToPaper(entry)
		if err != nil {
			c.metrics.RecordEntrySkipped(domain.SourceTypeArXiv.String())
			logger.Warn().Err(err).Msg("skipping malformed entry")
			continue
		}
		papers = append(papers, paper)
	}

	c.metrics.RecordPapersReturned(domain.SourceTypeArXiv.String(), len(papers))
	logger.Debug().
		Int("entries", len(feed.Entries)).
		Int("papers", len(papers)).
		Msg("arxiv search completed")

	return papers, nil
}

// Read fetches the PDF for paperID and returns its plain text. Nothing is
// written to disk. On failure the text is empty and the error tells why:
// domain.ErrNotFound for a missing document, pdf.ErrTooLarge,
// pdf.ErrDownloadFailed, or pdf.ErrMalformed.
func (c *Client) Read(ctx context.Context, paperID string) (string, error) {
	logger := observability.WithPaperContext(c.logger, paperID, domain.SourceTypeArXiv.String())

	doc, err := c.fetchPDF(ctx, paperID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to fetch pdf")
		return "", err
	}

	extraction, err := c.extractor.Extract(ctx, doc.Content)
	if err != nil {
		c.metrics.RecordDocumentReadFailed(domain.SourceTypeArXiv.String(), reasonDecode)
		logger.Warn().Err(err).Int64("size_bytes", doc.SizeBytes).Msg("failed to extract pdf text")
		return "", fmt.Errorf("reading %s: %w", paperID, err)
	}

	logger.Debug().
		Int("pages", extraction.Pages).
		Int("empty_pages", extraction.EmptyPages).
		Int("chars", len(extraction.Text)).
		Msg("pdf text extracted")

	return extraction.Text, nil
}

// Download fetches the PDF for paperID and writes it to
// destDir/<paperID with "/" replaced by "_">.pdf, creating destDir if needed.
// The file appears atomically; a failed download leaves nothing behind.
func (c *Client) Download(ctx context.Context, paperID, destDir string) (string, error) {
	logger := observability.WithPaperContext(c.logger, paperID, domain.SourceTypeArXiv.String())

	doc, err := c.fetchPDF(ctx, paperID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to fetch pdf")
		return "", err
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}

	path := filepath.Join(destDir, strings.ReplaceAll(paperID, "/", "_")+".pdf")
	if err := writeFileAtomic(path, doc.Content); err != nil {
		return "", fmt.Errorf("saving %s: %w", paperID, err)
	}

	logger.Info().
		Str("path", path).
		Str("sha256", doc.ContentHash).
		Int64("size_bytes", doc.SizeBytes).
		Msg("pdf downloaded")

	return path, nil
}

// SourceType returns the source type identifier.
func (c *Client) SourceType() domain.SourceType {
	return domain.SourceTypeArXiv
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// PDFURL returns the address the PDF for paperID is fetched from.
// The identifier is not validated.
func (c *Client) PDFURL(paperID string) string {
	return c.config.PDFBaseURL + "/pdf/" + paperID + ".pdf"
}

// buildSearchURL constructs the arXiv query URL. The query is passed through
// verbatim; only URL encoding is applied.
func (c *Client) buildSearchURL(query string, maxResults int) string {
	params := url.Values{}
	params.Set("search_query", query)
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")
	return c.config.BaseURL + "/query?" + params.Encode()
}

// fetchFeed issues one GET for searchURL and parses the Atom response.
func (c *Client) fetchFeed(ctx context.Context, searchURL string) (*atom.Feed, error) {
	source := domain.SourceTypeArXiv.String()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/atom+xml")

	resp, err := c.httpClient.Do(req)
	c.metrics.RecordSourceRequest(source, "query", time.Since(start).Seconds())
	if err != nil {
		c.metrics.RecordSourceRequestFailed(source, "query", "network")
		return nil, domain.NewExternalAPIError(sourceName, 0, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordSourceRequestFailed(source, "query", "http_"+strconv.Itoa(resp.StatusCode))
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, strings.TrimSpace(string(body)), nil)
	}

	// atom.Parser keeps parse state, so one is built per response.
	parser := &atom.Parser{}
	feed, err := parser.Parse(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		c.metrics.RecordSourceRequestFailed(source, "query", "decode")
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, "decoding feed", err)
	}

	return feed, nil
}

// fetchPDF downloads the PDF for paperID into memory and classifies failures.
func (c *Client) fetchPDF(ctx context.Context, paperID string) (*pdf.DownloadResult, error) {
	source := domain.SourceTypeArXiv.String()
	start := time.Now()

	doc, err := c.downloader.Download(ctx, c.PDFURL(paperID))
	c.metrics.RecordSourceRequest(source, "pdf", time.Since(start).Seconds())
	if err != nil {
		switch {
		case errors.Is(err, pdf.ErrNotFound):
			c.metrics.RecordDocumentReadFailed(source, reasonNotFound)
			return nil, fmt.Errorf("%w: %w", domain.NewNotFoundError("paper", paperID), err)
		case errors.Is(err, pdf.ErrTooLarge):
			c.metrics.RecordDocumentReadFailed(source, reasonTooLarge)
		default:
			c.metrics.RecordDocumentReadFailed(source, reasonFetch)
			c.metrics.RecordSourceRequestFailed(source, "pdf", "fetch")
		}
		return nil, fmt.Errorf("fetching %s: %w", paperID, err)
	}

	c.metrics.RecordDocumentFetched(source, doc.SizeBytes)
	return doc, nil
}

// entryToPaper converts an Atom entry to a domain Paper. It fails rather
// than return a partially filled record.
func entryToPaper(entry *atom.Entry) (*domain.Paper, error) {
	if entry == nil {
		return nil, &EntryError{Field: "entry", Reason: "nil"}
	}

	entryID := strings.TrimSpace(entry.ID)
	paperID := paperIDFromEntryID(entryID)
	if paperID == "" {
		return nil, &EntryError{EntryID: entryID, Field: "id", Reason: "no paper identifier"}
	}

	published, err := parseTimestamp(entryID, "published", entry.Published)
	if err != nil {
		return nil, err
	}
	updated, err := parseTimestamp(entryID, "updated", entry.Updated)
	if err != nil {
		return nil, err
	}

	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		if a == nil {
			continue
		}
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	categories := make([]string, 0, len(entry.Categories))
	for _, cat := range entry.Categories {
		if cat != nil && cat.Term != "" {
			categories = append(categories, cat.Term)
		}
	}

	return &domain.Paper{
		PaperID:       paperID,
		Title:         strings.TrimSpace(entry.Title),
		Authors:       authors,
		Abstract:      strings.TrimSpace(entry.Summary),
		URL:           entryID,
		PDFURL:        pdfLink(entry.Links),
		PublishedDate: published,
		UpdatedDate:   updated,
		Source:        domain.SourceTypeArXiv,
		Categories:    categories,
		Keywords:      []string{},
		DOI:           extensionValue(entry, "doi"),
	}, nil
}

// writeFileAtomic writes data to a temp file beside path and renames it into place.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*.pdf")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
