package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/tools"
)

// ---------------------------------------------------------------------------
// TestQueryPassthrough_Security
// ---------------------------------------------------------------------------

// TestQueryPassthrough_Security verifies that query-language and injection
// payloads reach the tool boundary byte for byte and never cause a 500.
func TestQueryPassthrough_Security(t *testing.T) {
	payloads := []struct {
		name  string
		query string
	}{
		{"boolean operators", `ti:"deep learning" AND NOT cat:cs.CV`},
		{"sql-looking", "'; DROP TABLE papers; --"},
		{"parameter smuggling", "x&max_results=2000&sortBy=relevance"},
		{"unicode", "Schrödinger équation 量子"},
		{"newlines", "graph\nneural\rnetworks"},
	}

	for _, tc := range payloads {
		t.Run(tc.name, func(t *testing.T) {
			var captured string
			svc := &mockToolService{
				searchFn: func(_ context.Context, query string, _ int) ([]map[string]any, error) {
					captured = query
					return []map[string]any{}, nil
				},
			}

			target := "/api/v1/arxiv/search?query=" + url.QueryEscape(tc.query)
			rr := doRequest(t, newTestServer(svc), http.MethodGet, target, nil)

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			if captured != tc.query {
				t.Errorf("expected query %q, got %q", tc.query, captured)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestXSSPayload_QueryField
// ---------------------------------------------------------------------------

// TestXSSPayload_QueryField verifies that a query echoed in the search
// response is HTML-escaped by the JSON encoder.
func TestXSSPayload_QueryField(t *testing.T) {
	xssPayloads := []struct {
		name    string
		query   string
		mustNot []string
	}{
		{"script tag", "<script>alert('xss')</script>", []string{"<script>", "</script>"}},
		{"img onerror", `<img src=x onerror=alert('xss')>`, []string{"<img"}},
		{"svg tag", `<svg/onload=alert('xss')>`, []string{"<svg"}},
	}

	for _, tc := range xssPayloads {
		t.Run(tc.name, func(t *testing.T) {
			target := "/api/v1/arxiv/search?query=" + url.QueryEscape(tc.query)
			rr := doRequest(t, newTestServer(&mockToolService{}), http.MethodGet, target, nil)

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			for _, fragment := range tc.mustNot {
				if strings.Contains(rr.Body.String(), fragment) {
					t.Errorf("response contains unescaped %q: %s", fragment, rr.Body.String())
				}
			}

			var resp searchResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Query != tc.query {
				t.Errorf("expected echoed query %q, got %q", tc.query, resp.Query)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResponseSanitization
// ---------------------------------------------------------------------------

// TestResponseSanitization verifies that upstream and internal error details
// never reach the REST client.
func TestResponseSanitization(t *testing.T) {
	sensitiveErrors := []struct {
		name      string
		err       error
		forbidden []string
	}{
		{
			name:      "transport failure",
			err:       domain.NewExternalAPIError("arXiv", 0, "request failed", fmt.Errorf("dial tcp 10.0.0.5:443: connection refused")),
			forbidden: []string{"10.0.0.5", "dial tcp", "connection refused"},
		},
		{
			name:      "upstream body",
			err:       domain.NewExternalAPIError("arXiv", 500, "java.lang.NullPointerException at org.arxiv.Query", nil),
			forbidden: []string{"java.lang", "org.arxiv"},
		},
		{
			name:      "file path leak",
			err:       fmt.Errorf("open /etc/secrets/token: no such file or directory"),
			forbidden: []string{"/etc/secrets", "token"},
		},
	}

	for _, tc := range sensitiveErrors {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockToolService{
				searchFn: func(_ context.Context, _ string, _ int) ([]map[string]any, error) {
					return nil, tc.err
				},
			}

			rr := doRequest(t, newTestServer(svc), http.MethodGet, "/api/v1/arxiv/search?query=x", nil)
			if rr.Code < 500 {
				t.Fatalf("expected 5xx, got %d", rr.Code)
			}
			for _, fragment := range tc.forbidden {
				if strings.Contains(rr.Body.String(), fragment) {
					t.Errorf("response body contains sensitive fragment %q: %s", fragment, rr.Body.String())
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMaxQueryLength_Security
// ---------------------------------------------------------------------------

// TestMaxQueryLength_Security verifies the query length boundary is enforced
// precisely at maxQueryLength.
func TestMaxQueryLength_Security(t *testing.T) {
	t.Run("exactly maxQueryLength succeeds", func(t *testing.T) {
		target := "/api/v1/arxiv/search?query=" + strings.Repeat("q", maxQueryLength)
		rr := doRequest(t, newTestServer(&mockToolService{}), http.MethodGet, target, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("maxQueryLength+1 is rejected", func(t *testing.T) {
		target := "/api/v1/arxiv/search?query=" + strings.Repeat("q", maxQueryLength+1)
		rr := doRequest(t, newTestServer(&mockToolService{}), http.MethodGet, target, nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRPCBodyLimit_Security
// ---------------------------------------------------------------------------

// TestRPCBodyLimit_Security verifies an oversized JSON-RPC body is cut at
// maxRequestBodySize and rejected as unparseable rather than buffered whole.
func TestRPCBodyLimit_Security(t *testing.T) {
	called := false
	svc := &mockToolService{
		callFn: func(_ context.Context, _ string, _ map[string]any) (*tools.Result, error) {
			called = true
			return &tools.Result{}, nil
		},
	}

	padding := strings.Repeat("a", maxRequestBodySize)
	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"search_arxiv","arguments":{"query":"` + padding + `"}}}`

	resp := postRPC(t, newTestServer(svc), body)
	if resp.Error == nil || resp.Error.Code != codeParseError {
		t.Fatalf("expected parse error, got %+v", resp.Error)
	}
	if called {
		t.Error("tool should not be called for a truncated body")
	}
}
