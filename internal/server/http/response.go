package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/tools"
)

// REST response types for JSON serialization.

type searchResponse struct {
	Query  string           `json:"query"`
	Count  int              `json:"count"`
	Papers []map[string]any `json:"papers"`
}

type paperTextResponse struct {
	PaperID string `json:"paper_id"`
	Status  string `json:"status"`
	Chars   int    `json:"chars"`
	Text    string `json:"text"`
}

type listToolsResponse struct {
	Tools []tools.Descriptor `json:"tools"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// The status line is already out, so an encode failure cannot be reported.
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// writeDomainError maps an error to a status and a generic message. Only
// validation messages reach the client verbatim.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	status, message := classifyError(err)
	writeError(w, status, message)
}

// classifyError returns the HTTP status and client-safe message for err.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return http.StatusBadRequest, ve.Error()
		}
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, tools.ErrUnknownTool):
		return http.StatusNotFound, "unknown tool"
	case errors.Is(err, domain.ErrSourceDisabled):
		return http.StatusServiceUnavailable, "source disabled"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, domain.ErrServiceUnavailable):
		return http.StatusBadGateway, "upstream unavailable"
	}

	var apiErr *domain.ExternalAPIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway, "upstream request failed"
	}
	return http.StatusInternalServerError, "internal server error"
}
