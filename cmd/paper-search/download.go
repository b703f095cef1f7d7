package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helixir/paper-search-service/internal/domain"
)

var downloadCmd = &cobra.Command{
	Use:   "download <paper_id>...",
	Short: "Download arXiv PDFs to a directory",
	Long: `Download saves each paper's PDF as <dir>/<paper_id>.pdf, with "/" in
old-style identifiers replaced by "_". Every identifier is attempted; the
command fails if any of them failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("dir", "", "destination directory (default tools.download_dir)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = current.cfg.Tools.DownloadDir
	}

	source, err := current.registry.Lookup(domain.SourceTypeArXiv)
	if err != nil {
		return err
	}

	failed := 0
	for _, id := range args {
		path, err := source.Download(cmd.Context(), id, dir)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", id, err)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d download(s) failed", failed, len(args))
	}
	return nil
}
