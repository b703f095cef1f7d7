package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixir/paper-search-service/internal/tools"
)

var readCmd = &cobra.Command{
	Use:   "read <paper_id>",
	Short: "Print the plain text of an arXiv paper",
	Long: `Read fetches the paper's PDF into memory and prints its text. Nothing is
written to disk unless --out is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	readCmd.Flags().String("out", "", "write the text to this file instead of stdout")

	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	outcome := current.tools.ReadArxivPaperOutcome(cmd.Context(), args[0])
	if outcome.Status != tools.ReadOK {
		return fmt.Errorf("no text for %s: %s", args[0], outcome.Status)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), outcome.Text)
		return err
	}
	if err := os.WriteFile(out, []byte(outcome.Text+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d characters to %s\n", len(outcome.Text), out)
	return nil
}
