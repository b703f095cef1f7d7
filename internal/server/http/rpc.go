package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/observability"
	"github.com/helixir/paper-search-service/internal/tools"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolError      = -32000
)

// protocolVersion is offered when the client does not propose one.
const protocolVersion = "2025-06-18"

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeParams struct {
	ProtocolVersion string `json:"protocolVersion"`
}

type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type callResult struct {
	Content           []textContent  `json:"content"`
	StructuredContent map[string]any `json:"structuredContent,omitempty"`
	IsError           bool           `json:"isError"`
}

var nullID = json.RawMessage("null")

// handleRPC handles POST /mcp. Requests without an id are notifications and
// are acknowledged with 202 and no body.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeRPCError(w, nullID, codeParseError, "failed to read request body")
		return
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		writeRPCError(w, nullID, codeInvalidRequest, "batch requests are not supported")
		return
	}

	var req rpcRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		writeRPCError(w, nullID, codeParseError, "parse error")
		return
	}

	id := req.ID
	if len(id) == 0 {
		id = nullID
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		writeRPCError(w, id, codeInvalidRequest, "invalid request")
		return
	}

	if len(req.ID) == 0 {
		s.logger.Debug().Str("method", req.Method).Msg("notification received")
		w.WriteHeader(http.StatusAccepted)
		return
	}

	result, rpcErr := s.dispatch(r, req)
	if rpcErr != nil {
		writeRPCError(w, id, rpcErr.Code, rpcErr.Message)
		return
	}
	writeJSON(w, http.StatusOK, rpcResponse{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) dispatch(r *http.Request, req rpcRequest) (any, *rpcError) {
	switch req.Method {
	case "initialize":
		var params initializeParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return nil, &rpcError{Code: codeInvalidParams, Message: "invalid params"}
			}
		}
		version := params.ProtocolVersion
		if version == "" {
			version = protocolVersion
		}
		return map[string]any{
			"protocolVersion": version,
			"capabilities": map[string]any{
				"tools": map[string]any{"listChanged": false},
			},
			"serverInfo": s.info,
		}, nil

	case "ping":
		return map[string]any{}, nil

	case "tools/list":
		return listToolsResponse{Tools: s.tools.Descriptors()}, nil

	case "tools/call":
		var params callParams
		if len(req.Params) == 0 {
			return nil, &rpcError{Code: codeInvalidParams, Message: "params are required"}
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, &rpcError{Code: codeInvalidParams, Message: "invalid params"}
		}
		if params.Name == "" {
			return nil, &rpcError{Code: codeInvalidParams, Message: "tool name is required"}
		}
		return s.callTool(r, params)

	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: "method not found: " + req.Method}
	}
}

func (s *Server) callTool(r *http.Request, params callParams) (any, *rpcError) {
	ctx := observability.WithCallContext(r.Context(), observability.CallContext{
		RequestID: observability.RequestIDFromContext(r.Context()),
		Tool:      params.Name,
	})

	res, err := s.tools.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		switch {
		case errors.Is(err, tools.ErrUnknownTool):
			return nil, &rpcError{Code: codeInvalidParams, Message: "unknown tool: " + params.Name}
		case errors.Is(err, domain.ErrInvalidInput):
			return nil, &rpcError{Code: codeInvalidParams, Message: err.Error()}
		default:
			s.logger.Warn().Err(err).Str("tool", params.Name).Msg("tool call failed")
			_, message := classifyError(err)
			return nil, &rpcError{Code: codeToolError, Message: message}
		}
	}

	return callResult{
		Content:           []textContent{{Type: "text", Text: res.Text}},
		StructuredContent: res.Structured,
	}, nil
}

func writeRPCError(w http.ResponseWriter, id json.RawMessage, code int, message string) {
	writeJSON(w, http.StatusOK, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}
