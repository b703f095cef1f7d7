// Package observability provides logging and metrics support for the paper
// search service.
//
// # Logging
//
// Create a logger from configuration:
//
//	logger := observability.NewLogger(observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stderr",
//	})
//	logger = observability.WithToolContext(logger, "search_arxiv", requestID)
//	logger.Info().Int("count", n).Msg("search completed")
//
// # Metrics
//
//	metrics := observability.NewMetrics("paper_search")
//	metrics.RecordToolCall("read_arxiv_paper", "ok", elapsed.Seconds())
//
// A nil *Metrics may be passed wherever metrics are optional.
//
// # Standard Fields
//
//   - request_id: inbound request or JSON-RPC call identifier
//   - tool: tool name (search_arxiv, read_arxiv_paper)
//   - query: search query text
//   - source: paper source (arxiv)
//   - paper_id: paper identifier
package observability
