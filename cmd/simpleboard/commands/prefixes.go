package commands

import (
	"github.com/spf13/cobra"

	"github.com/dyluth/simpleboard/internal/printer"
)

var prefixesCmd = &cobra.Command{
	Use:   "prefixes",
	Short: "List configured prefixes in viewer-list order",
	Long: `List every prefix from simpleboard.yml in the order viewers carrying
them appear in the viewer list.

Priorities are compared as decimal strings, so priority 10 sorts before 9.`,
	Args: cobra.NoArgs,
	RunE: runPrefixes,
}

func init() {
	rootCmd.AddCommand(prefixesCmd)
}

func runPrefixes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	return printer.Prefixes(cmd.OutOrStdout(), catalog.Sorted())
}
