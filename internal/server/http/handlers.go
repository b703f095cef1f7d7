package httpserver

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/tools"
)

// Validation constants.
const (
	maxQueryLength     = 10000
	maxRequestBodySize = 1 << 20 // 1 MB limit for request bodies
)

// listTools handles GET /api/v1/tools.
func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listToolsResponse{Tools: s.tools.Descriptors()})
}

// searchArxiv handles GET /api/v1/arxiv/search?query=&max_results=.
func (s *Server) searchArxiv(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if len(query) > maxQueryLength {
		writeError(w, http.StatusBadRequest, "query is too long")
		return
	}

	maxResults := 0
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "max_results must be an integer")
			return
		}
		if n <= 0 {
			writeDomainError(w, domain.NewValidationError("max_results", "must be at least 1"))
			return
		}
		maxResults = n
	}

	papers, err := s.tools.SearchArxiv(r.Context(), query, maxResults)
	if err != nil {
		s.logger.Warn().Err(err).Msg("search request failed")
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:  query,
		Count:  len(papers),
		Papers: papers,
	})
}

// readArxivPaper handles GET /api/v1/arxiv/papers/{paperID}/text.
// Old-style identifiers carry a slash and must be sent escaped
// (hep-th%2F9901001). The response is 200 with empty text when the paper
// cannot be read; status says why.
func (s *Server) readArxivPaper(w http.ResponseWriter, r *http.Request) {
	paperID, err := url.PathUnescape(chi.URLParam(r, "paperID"))
	if err != nil || strings.TrimSpace(paperID) == "" {
		writeError(w, http.StatusBadRequest, "invalid paper_id")
		return
	}

	outcome := s.tools.ReadArxivPaperOutcome(r.Context(), paperID)
	if outcome.Status == tools.ReadInvalid {
		writeError(w, http.StatusBadRequest, "invalid paper_id")
		return
	}

	writeJSON(w, http.StatusOK, paperTextResponse{
		PaperID: paperID,
		Status:  string(outcome.Status),
		Chars:   len(outcome.Text),
		Text:    outcome.Text,
	})
}
