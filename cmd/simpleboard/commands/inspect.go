package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/simpleboard/internal/inspect"
	"github.com/dyluth/simpleboard/internal/printer"
	"github.com/dyluth/simpleboard/internal/resolver"
	"github.com/dyluth/simpleboard/pkg/substrate"
)

var (
	inspectInstanceName string
	inspectOutputFormat string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [SCOREBOARD_ID]",
	Short: "Show the scoreboards stored in Redis",
	Long: `Show the scoreboards a serving instance keeps in Redis.

Without an id every scoreboard of the instance is shown; with an id only
that one. Ids may be shortened to any unique prefix of at least 6 characters.

Output Formats:
  default - Sidebar drawing followed by the scoreboard's teams
  jsonl   - Line-delimited JSON, one scoreboard per line

Examples:
  # Show every scoreboard
  simpleboard inspect

  # Dump one scoreboard as JSON
  simpleboard inspect 5f0c1a --output=jsonl | jq .teams`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectInstanceName, "name", "n", "", "Instance name (defaults to redis.instance)")
	inspectCmd.Flags().StringVarP(&inspectOutputFormat, "output", "o", "default", "Output format (default or jsonl)")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var outputFormat inspect.OutputFormat
	switch inspectOutputFormat {
	case "default":
		outputFormat = inspect.OutputFormatDefault
	case "jsonl":
		outputFormat = inspect.OutputFormatJSONL
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", inspectOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := connect(ctx, cfg, inspectInstanceName)
	if err != nil {
		return err
	}
	defer client.Close()

	var snaps []*inspect.Snapshot
	if len(args) == 1 {
		id, err := resolver.ResolveScoreboardID(ctx, client, args[0])
		if err != nil {
			return resolveError(err, args[0], client.InstanceName())
		}
		snap, err := inspect.Take(ctx, client, id)
		if err != nil {
			return err
		}
		snaps = append(snaps, snap)
	} else {
		snaps, err = inspect.TakeAll(ctx, client)
		if err != nil {
			return err
		}
	}

	return inspect.Write(cmd.OutOrStdout(), snaps, client.InstanceName(), outputFormat)
}

func resolveError(err error, shortID, instanceName string) error {
	if resolver.IsNotFoundError(err) || substrate.IsNotFound(err) {
		return printer.Error(
			fmt.Sprintf("scoreboard '%s' not found", shortID),
			fmt.Sprintf("Instance '%s' has no scoreboard with that id.", instanceName),
			[]string{"List scoreboards:\n  simpleboard inspect"},
		)
	}
	if amb, ok := resolver.AsAmbiguousError(err); ok {
		return printer.Error("ambiguous scoreboard id", resolver.FormatAmbiguousError(amb), nil)
	}
	return printer.Error("invalid scoreboard id", err.Error(), nil)
}
