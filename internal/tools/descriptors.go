package tools

// Tool names exposed on the tool surface.
const (
	ToolSearchArxiv    = "search_arxiv"
	ToolReadArxivPaper = "read_arxiv_paper"
)

// Descriptor describes a single tool, including its JSON input schema.
type Descriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Descriptors returns the advertised tool list in a stable order.
func Descriptors() []Descriptor {
	return []Descriptor{
		{
			Name:        ToolSearchArxiv,
			Description: "Search academic papers on arXiv. Results are ordered by submission date, newest first.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "arXiv search_query expression, passed through verbatim (e.g. \"ti:transformer AND cat:cs.CL\").",
					},
					"max_results": map[string]any{
						"type":    "integer",
						"minimum": 1,
						"maximum": 2000,
						"default": DefaultMaxResults,
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        ToolReadArxivPaper,
			Description: "Extract text from an arXiv PDF. Returns an empty string when the paper cannot be read.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"paper_id": map[string]any{
						"type":        "string",
						"description": "arXiv identifier, e.g. 2107.12345 or 2107.12345v2.",
					},
				},
				"required": []string{"paper_id"},
			},
		},
	}
}
