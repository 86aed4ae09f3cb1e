package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/nfrund/semsearch/cmd/searchctl/internal/output"
	"github.com/nfrund/semsearch/internal/catalog"
	"github.com/nfrund/semsearch/internal/search"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newQueryCmd(fs afero.Fs) *cobra.Command {
	var (
		catalogPath string
		maxResults  int
		format      string
	)

	c := &cobra.Command{
		Use:   "query [text...]",
		Short: "Rank catalog images for a query",
		Long: `Rank the images of a catalog file for a query, the same way the web page does.
With no text the first images of the catalog are listed.

Examples:
  searchctl query tasty food                     # Ranked results in table format
  searchctl query cats --format json             # Ranked results in JSON format
  searchctl query --catalog ./other.yaml dogs    # Use another catalog file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != output.FormatTable && format != output.FormatJSON {
				return fmt.Errorf("invalid format %q, valid formats: table, json", format)
			}
			if maxResults < 1 {
				return fmt.Errorf("invalid --max %d, must be at least 1", maxResults)
			}
			store, err := catalog.Open(fs, catalogPath)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			results, err := search.NewCatalogResolver(store, maxResults).Resolve(context.Background(), query)
			if err != nil {
				return fmt.Errorf("failed to resolve %q: %w", query, err)
			}

			if format == output.FormatJSON {
				return output.ResultsJSON(cmd.OutOrStdout(), query, results)
			}
			output.ResultsTable(cmd.OutOrStdout(), results)
			return nil
		},
	}

	c.Flags().StringVar(&catalogPath, "catalog", "data/catalog.yaml", "path to the catalog file")
	c.Flags().IntVar(&maxResults, "max", search.DefaultMaxResults, "maximum number of results")
	c.Flags().StringVar(&format, "format", output.FormatTable, "output format (table, json)")
	return c
}
