package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search arXiv for papers",
	Long: `Search sends the query to the arXiv API as a search_query expression
(e.g. "ti:transformer AND cat:cs.CL") and prints the newest matches first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("max-results", 0, "maximum number of results to return (default 10)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	asJSON, _ := cmd.Flags().GetBool("json")

	papers, err := current.tools.SearchArxiv(cmd.Context(), strings.Join(args, " "), maxResults)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}
	return writePaperTable(cmd.OutOrStdout(), papers)
}

// writePaperTable prints one line per paper: id, publication day, title.
func writePaperTable(w io.Writer, papers []map[string]any) error {
	if len(papers) == 0 {
		_, err := fmt.Fprintln(w, "no results")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PAPER ID\tPUBLISHED\tTITLE")
	for _, p := range papers {
		published, _ := p["published_date"].(string)
		if len(published) >= len("2006-01-02") {
			published = published[:len("2006-01-02")]
		}
		title, _ := p["title"].(string)
		fmt.Fprintf(tw, "%v\t%s\t%s\n", p["paper_id"], published, strings.Join(strings.Fields(title), " "))
	}
	return tw.Flush()
}
