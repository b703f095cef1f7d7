package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/tools"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// mockToolService implements ToolService for HTTP handler tests.
type mockToolService struct {
	callFn   func(ctx context.Context, name string, args map[string]any) (*tools.Result, error)
	searchFn func(ctx context.Context, query string, maxResults int) ([]map[string]any, error)
	readFn   func(ctx context.Context, paperID string) tools.ReadOutcome
	readyErr error
}

func (m *mockToolService) Descriptors() []tools.Descriptor {
	return tools.Descriptors()
}

func (m *mockToolService) Call(ctx context.Context, name string, args map[string]any) (*tools.Result, error) {
	if m.callFn != nil {
		return m.callFn(ctx, name, args)
	}
	return &tools.Result{Text: "", Structured: map[string]any{"result": ""}}, nil
}

func (m *mockToolService) SearchArxiv(ctx context.Context, query string, maxResults int) ([]map[string]any, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, maxResults)
	}
	return []map[string]any{}, nil
}

func (m *mockToolService) ReadArxivPaperOutcome(ctx context.Context, paperID string) tools.ReadOutcome {
	if m.readFn != nil {
		return m.readFn(ctx, paperID)
	}
	return tools.ReadOutcome{Status: tools.ReadEmpty}
}

func (m *mockToolService) Ready() error {
	return m.readyErr
}

func newTestServer(svc ToolService) *Server {
	return NewServer(Config{Name: "paper_search_server", Version: "test"}, svc, zerolog.Nop())
}

func doRequest(t *testing.T, srv *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v (body %q)", err, rr.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

func TestHealthz(t *testing.T) {
	rr := doRequest(t, newTestServer(&mockToolService{}), http.MethodGet, "/healthz", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp map[string]string
	decodeBody(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %q", resp["status"])
	}
}

func TestReadyz(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		rr := doRequest(t, newTestServer(&mockToolService{}), http.MethodGet, "/readyz", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("source disabled", func(t *testing.T) {
		svc := &mockToolService{readyErr: fmt.Errorf("arXiv: %w", domain.ErrSourceDisabled)}
		rr := doRequest(t, newTestServer(svc), http.MethodGet, "/readyz", nil)
		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rr.Code)
		}
		var resp map[string]string
		decodeBody(t, rr, &resp)
		if resp["status"] != "not_ready" {
			t.Errorf("expected not_ready, got %q", resp["status"])
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := NewServer(Config{MetricsPath: "/metrics"}, &mockToolService{}, zerolog.Nop())
	rr := doRequest(t, srv, http.MethodGet, "/metrics", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		t.Errorf("metrics should not be served as JSON")
	}
}

func TestMetricsEndpoint_NotMountedWhenDisabled(t *testing.T) {
	rr := doRequest(t, newTestServer(&mockToolService{}), http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// REST mirrors
// ---------------------------------------------------------------------------

func TestSearchArxiv_REST(t *testing.T) {
	var gotQuery string
	var gotMax int
	svc := &mockToolService{
		searchFn: func(_ context.Context, query string, maxResults int) ([]map[string]any, error) {
			gotQuery, gotMax = query, maxResults
			return []map[string]any{{"paper_id": "2401.00001v1", "title": "A"}}, nil
		},
	}

	rr := doRequest(t, newTestServer(svc), http.MethodGet, "/api/v1/arxiv/search?query=cat%3Acs.LG+AND+ti%3Agraph&max_results=3", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotQuery != "cat:cs.LG AND ti:graph" {
		t.Errorf("query not passed through verbatim: %q", gotQuery)
	}
	if gotMax != 3 {
		t.Errorf("expected max_results 3, got %d", gotMax)
	}

	var resp searchResponse
	decodeBody(t, rr, &resp)
	if resp.Count != 1 || resp.Papers[0]["paper_id"] != "2401.00001v1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestSearchArxiv_RESTDefaultsMaxResults(t *testing.T) {
	var gotMax = -1
	svc := &mockToolService{
		searchFn: func(_ context.Context, _ string, maxResults int) ([]map[string]any, error) {
			gotMax = maxResults
			return []map[string]any{}, nil
		},
	}

	rr := doRequest(t, newTestServer(svc), http.MethodGet, "/api/v1/arxiv/search?query=x", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotMax != 0 {
		t.Errorf("expected max_results left to the tool default, got %d", gotMax)
	}
	if !strings.Contains(rr.Body.String(), `"papers":[]`) {
		t.Errorf("expected empty papers list, got %s", rr.Body.String())
	}
}

func TestSearchArxiv_RESTBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"missing query", "/api/v1/arxiv/search"},
		{"blank query", "/api/v1/arxiv/search?query=%20%20"},
		{"non-integer max_results", "/api/v1/arxiv/search?query=x&max_results=ten"},
		{"zero max_results", "/api/v1/arxiv/search?query=x&max_results=0"},
		{"oversized query", "/api/v1/arxiv/search?query=" + strings.Repeat("a", maxQueryLength+1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(t, newTestServer(&mockToolService{}), http.MethodGet, tc.target, nil)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestSearchArxiv_RESTUpstreamFailure(t *testing.T) {
	svc := &mockToolService{
		searchFn: func(_ context.Context, _ string, _ int) ([]map[string]any, error) {
			return nil, domain.NewExternalAPIError("arXiv", 500, "stack trace from upstream", nil)
		},
	}

	rr := doRequest(t, newTestServer(svc), http.MethodGet, "/api/v1/arxiv/search?query=x", nil)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "stack trace") {
		t.Errorf("upstream message leaked: %s", rr.Body.String())
	}
}

func TestReadArxivPaper_REST(t *testing.T) {
	var gotID string
	svc := &mockToolService{
		readFn: func(_ context.Context, paperID string) tools.ReadOutcome {
			gotID = paperID
			return tools.ReadOutcome{Text: "full text", Status: tools.ReadOK}
		},
	}

	rr := doRequest(t, newTestServer(svc), http.MethodGet, "/api/v1/arxiv/papers/2107.12345v2/text", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotID != "2107.12345v2" {
		t.Errorf("expected paper id 2107.12345v2, got %q", gotID)
	}

	var resp paperTextResponse
	decodeBody(t, rr, &resp)
	if resp.Text != "full text" || resp.Status != "ok" || resp.Chars != 9 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestReadArxivPaper_RESTOldStyleID(t *testing.T) {
	var gotID string
	svc := &mockToolService{
		readFn: func(_ context.Context, paperID string) tools.ReadOutcome {
			gotID = paperID
			return tools.ReadOutcome{Status: tools.ReadNotFound}
		},
	}

	rr := doRequest(t, newTestServer(svc), http.MethodGet, "/api/v1/arxiv/papers/hep-th%2F9901001/text", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotID != "hep-th/9901001" {
		t.Errorf("expected unescaped id, got %q", gotID)
	}

	var resp paperTextResponse
	decodeBody(t, rr, &resp)
	if resp.Text != "" || resp.Status != "not_found" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestListTools_REST(t *testing.T) {
	rr := doRequest(t, newTestServer(&mockToolService{}), http.MethodGet, "/api/v1/tools", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp listToolsResponse
	decodeBody(t, rr, &resp)
	if len(resp.Tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(resp.Tools))
	}
}

// ---------------------------------------------------------------------------
// writeDomainError
// ---------------------------------------------------------------------------

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{"validation", domain.NewValidationError("query", "is required"), http.StatusBadRequest, "validation error: query: is required"},
		{"bare invalid input", domain.ErrInvalidInput, http.StatusBadRequest, "invalid input"},
		{"unknown tool", fmt.Errorf("%w: x", tools.ErrUnknownTool), http.StatusNotFound, "unknown tool"},
		{"not found", domain.NewNotFoundError("paper source", "arxiv"), http.StatusNotFound, "resource not found"},
		{"disabled", fmt.Errorf("arXiv: %w", domain.ErrSourceDisabled), http.StatusServiceUnavailable, "source disabled"},
		{"upstream status", domain.NewExternalAPIError("arXiv", 503, "down", nil), http.StatusBadGateway, "upstream unavailable"},
		{"upstream transport", domain.NewExternalAPIError("arXiv", 0, "request failed", errors.New("dial tcp: refused")), http.StatusBadGateway, "upstream request failed"},
		{"internal", errors.New("boom: secret detail"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeDomainError(rr, tc.err)

			if rr.Code != tc.expectedStatus {
				t.Errorf("expected status %d, got %d", tc.expectedStatus, rr.Code)
			}
			var resp map[string]string
			decodeBody(t, rr, &resp)
			if resp["error"] != tc.expectedBody {
				t.Errorf("expected error %q, got %q", tc.expectedBody, resp["error"])
			}
		})
	}
}

func TestWriteDomainError_NilIsNoOp(t *testing.T) {
	rr := httptest.NewRecorder()
	writeDomainError(rr, nil)
	if rr.Body.Len() != 0 {
		t.Errorf("expected no body, got %q", rr.Body.String())
	}
}
