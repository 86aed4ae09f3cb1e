package cmd

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the searchctl command tree reading catalogs through fs.
func NewRootCmd(fs afero.Fs) *cobra.Command {
	root := &cobra.Command{
		Use:   "searchctl",
		Short: "Semantic search CLI",
		Long: `searchctl runs searches and checks catalogs offline, without the web server.

Available commands:
  query      Rank catalog images for a query
  catalog    Inspect and validate catalog files
  version    Print the version number

Use "searchctl [command] --help" for more information about a specific command.`,
		SilenceUsage: true,
	}
	root.AddCommand(newQueryCmd(fs), newCatalogCmd(fs), newVersionCmd())
	return root
}

// Execute executes the root command against the OS filesystem.
func Execute() {
	if err := NewRootCmd(afero.NewOsFs()).Execute(); err != nil {
		os.Exit(1)
	}
}
