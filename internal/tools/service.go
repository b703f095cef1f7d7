// Package tools implements the tool-call boundary: the named operations a
// remote caller can invoke, their argument handling, and their failure policy.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/observability"
	"github.com/helixir/paper-search-service/internal/papersources"
	"github.com/helixir/paper-search-service/internal/pdf"
)

const (
	// DefaultMaxResults is used when search_arxiv is called without max_results.
	DefaultMaxResults = papersources.DefaultMaxResults

	// DefaultCallTimeout bounds a tool call when Config leaves it unset.
	DefaultCallTimeout = 60 * time.Second
)

// Tool call outcomes, used as metric labels.
const (
	outcomeOK      = "ok"
	outcomeEmpty   = "empty"
	outcomeError   = "error"
	outcomeInvalid = "invalid"
)

// ErrUnknownTool is returned by Call for a name that is not on the tool surface.
var ErrUnknownTool = errors.New("unknown tool")

// ReadStatus says why a read produced the text it did.
type ReadStatus string

// Read statuses. Every status other than ReadOK comes with empty text.
const (
	ReadOK          ReadStatus = "ok"
	ReadEmpty       ReadStatus = "empty"
	ReadNotFound    ReadStatus = "not_found"
	ReadTooLarge    ReadStatus = "too_large"
	ReadMalformed   ReadStatus = "malformed"
	ReadTimeout     ReadStatus = "timeout"
	ReadFetchFailed ReadStatus = "fetch_failed"
	ReadUnavailable ReadStatus = "unavailable"
	ReadInvalid     ReadStatus = "invalid"
)

// ReadOutcome is the text of a paper together with its status.
type ReadOutcome struct {
	Text   string
	Status ReadStatus
}

// Result is the payload of a successful tool call.
type Result struct {
	// Text is the textual rendering of the result.
	Text string
	// Structured is the machine-readable result object.
	Structured map[string]any
}

// Config holds tool boundary configuration.
type Config struct {
	// CallTimeout bounds a single tool invocation.
	CallTimeout time.Duration
}

// Service dispatches tool calls to the registered paper sources.
// It holds no per-call state and is safe for concurrent use.
type Service struct {
	registry    *papersources.Registry
	validator   *argValidator
	callTimeout time.Duration
	logger      zerolog.Logger
	metrics     *observability.Metrics
}

// NewService creates a tool boundary over registry. metrics may be nil.
func NewService(registry *papersources.Registry, cfg Config, logger zerolog.Logger, metrics *observability.Metrics) *Service {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &Service{
		registry:    registry,
		validator:   newArgValidator(),
		callTimeout: cfg.CallTimeout,
		logger:      logger.With().Str("component", "tools").Logger(),
		metrics:     metrics,
	}
}

// Ready reports whether the arXiv source is registered and enabled.
func (s *Service) Ready() error {
	_, err := s.registry.Lookup(domain.SourceTypeArXiv)
	return err
}

// Descriptors returns the tools this service answers.
func (s *Service) Descriptors() []Descriptor {
	return Descriptors()
}

// SearchArxiv runs a search and returns each paper as a field map, in feed
// order. maxResults of 0 means DefaultMaxResults. An empty result is an
// empty, non-nil slice. Failures of the remote request are returned as-is.
func (s *Service) SearchArxiv(ctx context.Context, query string, maxResults int) ([]map[string]any, error) {
	start := time.Now()
	logger := s.callLogger(ctx, ToolSearchArxiv)

	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}
	args := SearchArgs{Query: query, MaxResults: maxResults}
	if err := s.validator.Struct(args); err != nil {
		s.metrics.RecordToolCall(ToolSearchArxiv, outcomeInvalid, time.Since(start).Seconds())
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	source, err := s.registry.Lookup(domain.SourceTypeArXiv)
	if err != nil {
		s.metrics.RecordToolCall(ToolSearchArxiv, outcomeError, time.Since(start).Seconds())
		logger.Error().Err(err).Msg("arxiv source unavailable")
		return nil, err
	}

	papers, err := source.Search(ctx, papersources.SearchParams{Query: args.Query, MaxResults: args.MaxResults})
	if err != nil {
		s.metrics.RecordToolCall(ToolSearchArxiv, outcomeError, time.Since(start).Seconds())
		logger.Error().Err(err).Str("query", args.Query).Msg("search failed")
		return nil, err
	}

	out := make([]map[string]any, 0, len(papers))
	for _, p := range papers {
		out = append(out, p.ToMap())
	}

	outcome := outcomeOK
	if len(out) == 0 {
		outcome = outcomeEmpty
	}
	s.metrics.RecordToolCall(ToolSearchArxiv, outcome, time.Since(start).Seconds())
	logger.Info().
		Str("query", args.Query).
		Int("max_results", args.MaxResults).
		Int("results", len(out)).
		Dur("duration", time.Since(start)).
		Msg("search completed")

	return out, nil
}

// ReadArxivPaper returns the plain text of a paper, or "" if it cannot be
// read for any reason. It never fails.
func (s *Service) ReadArxivPaper(ctx context.Context, paperID string) string {
	return s.ReadArxivPaperOutcome(ctx, paperID).Text
}

// ReadArxivPaperOutcome is ReadArxivPaper with the reason for an empty result.
func (s *Service) ReadArxivPaperOutcome(ctx context.Context, paperID string) (outcome ReadOutcome) {
	start := time.Now()
	logger := s.callLogger(ctx, ToolReadArxivPaper).With().Str("paper_id", paperID).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("read panicked")
			outcome = ReadOutcome{Status: ReadMalformed}
		}
		metricOutcome := outcomeOK
		switch outcome.Status {
		case ReadOK:
		case ReadInvalid:
			metricOutcome = outcomeInvalid
		default:
			metricOutcome = outcomeEmpty
		}
		s.metrics.RecordToolCall(ToolReadArxivPaper, metricOutcome, time.Since(start).Seconds())
	}()

	if err := s.validator.Struct(ReadArgs{PaperID: paperID}); err != nil {
		logger.Warn().Err(err).Msg("rejected read")
		return ReadOutcome{Status: ReadInvalid}
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	source, err := s.registry.Lookup(domain.SourceTypeArXiv)
	if err != nil {
		logger.Error().Err(err).Msg("arxiv source unavailable")
		return ReadOutcome{Status: ReadUnavailable}
	}

	text, err := source.Read(ctx, paperID)
	if err != nil {
		status := classifyReadError(err)
		logger.Warn().Err(err).Str("status", string(status)).Msg("error reading paper")
		return ReadOutcome{Status: status}
	}
	if text == "" {
		logger.Info().Msg("paper has no extractable text")
		return ReadOutcome{Status: ReadEmpty}
	}

	logger.Info().
		Int("chars", len(text)).
		Dur("duration", time.Since(start)).
		Msg("paper read")
	return ReadOutcome{Text: text, Status: ReadOK}
}

// Call invokes the tool called name with a JSON arguments object.
// It returns ErrUnknownTool for an unknown name, a *domain.ValidationError
// for bad arguments, and the search error for a failed search_arxiv.
// read_arxiv_paper fails only when paper_id is absent or not a string.
func (s *Service) Call(ctx context.Context, name string, args map[string]any) (*Result, error) {
	ctx = observability.WithTool(ctx, name)

	switch name {
	case ToolSearchArxiv:
		var in SearchArgs
		if err := decodeArgs(args, &in); err != nil {
			s.metrics.RecordToolCall(name, outcomeInvalid, 0)
			return nil, err
		}
		papers, err := s.SearchArxiv(ctx, in.Query, in.MaxResults)
		if err != nil {
			return nil, err
		}
		text, err := json.Marshal(papers)
		if err != nil {
			return nil, fmt.Errorf("encoding results: %w", err)
		}
		return &Result{
			Text:       string(text),
			Structured: map[string]any{"result": papers},
		}, nil

	case ToolReadArxivPaper:
		// A missing or mistyped paper_id is a protocol error. An empty
		// string is a read like any other and yields "" with status invalid.
		if v, ok := args["paper_id"]; !ok || v == nil {
			s.metrics.RecordToolCall(name, outcomeInvalid, 0)
			return nil, domain.NewValidationError("paper_id", "is required")
		}
		var in ReadArgs
		if err := decodeArgs(args, &in); err != nil {
			s.metrics.RecordToolCall(name, outcomeInvalid, 0)
			return nil, err
		}
		outcome := s.ReadArxivPaperOutcome(ctx, in.PaperID)
		return &Result{
			Text:       outcome.Text,
			Structured: map[string]any{"result": outcome.Text, "status": string(outcome.Status)},
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}

func (s *Service) callLogger(ctx context.Context, tool string) zerolog.Logger {
	return observability.WithToolContext(s.logger, tool, observability.RequestIDFromContext(ctx))
}

// classifyReadError maps an adapter read error to a status.
func classifyReadError(err error) ReadStatus {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ReadNotFound
	case errors.Is(err, pdf.ErrTooLarge):
		return ReadTooLarge
	case errors.Is(err, pdf.ErrMalformed), errors.Is(err, pdf.ErrNotPDF):
		return ReadMalformed
	case errors.Is(err, context.DeadlineExceeded):
		return ReadTimeout
	case errors.Is(err, domain.ErrSourceDisabled):
		return ReadUnavailable
	default:
		return ReadFetchFailed
	}
}
