package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dyluth/simpleboard/internal/filter"
	"github.com/dyluth/simpleboard/internal/printer"
	"github.com/dyluth/simpleboard/internal/watch"
)

var (
	watchInstanceName string
	watchOutputFormat string
	watchKind         string
	watchObject       string
	watchScoreboard   string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream substrate mutations in real time",
	Long: `Stream every scoreboard mutation a serving instance makes.

Output Formats:
  default - Human-readable output with timestamps
  json    - Line-delimited JSON for programmatic processing

Filters (ANDed together):
  --kind        - Event kind (glob pattern: "*_team", "set_score")
  --object      - Objective or team name (glob pattern: "line_*")
  --scoreboard  - Scoreboard id (exact match)

Examples:
  # Watch all activity on the configured instance
  simpleboard watch

  # Only score changes, as JSON
  simpleboard watch --kind=set_score --output=json > scores.jsonl`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchInstanceName, "name", "n", "", "Instance name (defaults to redis.instance)")
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format (default or json)")
	watchCmd.Flags().StringVar(&watchKind, "kind", "", "Filter by event kind (glob pattern)")
	watchCmd.Flags().StringVar(&watchObject, "object", "", "Filter by objective or team name (glob pattern)")
	watchCmd.Flags().StringVar(&watchScoreboard, "scoreboard", "", "Filter by scoreboard id (exact match)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	outputFormat, err := watch.ParseOutputFormat(watchOutputFormat)
	if err != nil {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	criteria := &filter.Criteria{KindGlob: watchKind, NameGlob: watchObject, Scoreboard: watchScoreboard}
	if err := criteria.Validate(); err != nil {
		return printer.Error("invalid filter", err.Error(), []string{"Use shell glob syntax, e.g. --kind='*_team'"})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := connect(ctx, cfg, watchInstanceName)
	if err != nil {
		return err
	}
	defer client.Close()

	if !criteria.HasFilters() {
		criteria = nil
	}
	return watch.StreamEvents(ctx, client, outputFormat, criteria, cmd.OutOrStdout())
}
