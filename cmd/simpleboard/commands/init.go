package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/simpleboard/internal/scaffold"
)

var (
	forceInit bool
	initDir   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter simpleboard.yml",
	Long: `Create a starter simpleboard.yml with one board, two prefixes and two
viewers.

Use --force to replace an existing file (WARNING: destroys existing configuration).`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Force reinitialization (replaces existing simpleboard.yml)")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "Directory to write simpleboard.yml into")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if !forceInit {
		if err := scaffold.CheckExisting(initDir); err != nil {
			return err
		}
	}

	if err := scaffold.Initialize(initDir, forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess(initDir)
	return nil
}
