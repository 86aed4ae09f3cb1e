package cmd

import (
	"fmt"

	"github.com/nfrund/semsearch/cmd/searchctl/internal/output"
	"github.com/nfrund/semsearch/internal/catalog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newCatalogCmd(fs afero.Fs) *cobra.Command {
	c := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate catalog files",
	}
	c.AddCommand(newCatalogValidateCmd(fs), newCatalogListCmd(fs))
	return c
}

func newCatalogValidateCmd(fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a catalog file",
		Long: `Validate a catalog file before deploying it. The check covers YAML syntax,
unknown fields, required image fields, URL format and duplicate ids.

Examples:
  searchctl catalog validate data/catalog.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := catalog.Open(fs, args[0])
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "❌ Catalog validation failed: %v\n", err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Catalog '%s' is valid (%d images)\n", args[0], len(store.Images()))
			return nil
		},
	}
}

func newCatalogListCmd(fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: "List the images of a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := catalog.Open(fs, args[0])
			if err != nil {
				return err
			}
			output.ImagesTable(cmd.OutOrStdout(), store.Images())
			return nil
		},
	}
}
