package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/simpleboard/internal/config"
	"github.com/dyluth/simpleboard/internal/host"
	"github.com/dyluth/simpleboard/internal/printer"
	"github.com/dyluth/simpleboard/pkg/substrate/memory"
)

var previewTicks int

var previewCmd = &cobra.Command{
	Use:   "preview [BOARD...]",
	Short: "Render boards in the terminal",
	Long: `Render configured boards in the terminal using an in-memory substrate.

Every configured viewer joins, prefixes are assigned, then the scheduler is
stepped --ticks times before each board is drawn with the viewers it shows.

Examples:
  # Preview every board
  simpleboard preview

  # Preview one board after 100 ticks
  simpleboard preview lobby --ticks 100`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntVarP(&previewTicks, "ticks", "t", 0, "Number of scheduler ticks to run before rendering")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if previewTicks < 0 {
		return printer.Error("invalid tick count", fmt.Sprintf("--ticks must not be negative, got %d", previewTicks), nil)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = cfg.BoardNames()
	}
	for _, name := range names {
		if _, ok := cfg.Boards[name]; !ok {
			return printer.Error(
				fmt.Sprintf("board '%s' not found", name),
				"The board is not defined in the configuration.",
				[]string{"List boards in simpleboard.yml under 'boards:'"},
			)
		}
	}

	h, err := host.New(cfg, memory.NewManager())
	if err != nil {
		return err
	}
	if err := h.Start(ctx); err != nil {
		return err
	}
	for i := 0; i < previewTicks; i++ {
		h.Scheduler().Step(ctx)
	}

	out := cmd.OutOrStdout()
	for i, name := range names {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := drawBoard(cmd, h, cfg, name); err != nil {
			return err
		}
	}

	return h.Shutdown(ctx)
}

func drawBoard(cmd *cobra.Command, h *host.Host, cfg *config.Config, name string) error {
	out := cmd.OutOrStdout()
	board, _ := h.Board(name)

	sb, ok := board.Scoreboard().(*memory.Scoreboard)
	if !ok {
		printer.Warning("board '%s' is not shown to any viewer\n", name)
		return nil
	}

	title, lines, err := sb.Sidebar()
	if err != nil {
		return fmt.Errorf("failed to read board '%s': %w", name, err)
	}
	rows := make([]printer.SidebarLine, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, printer.SidebarLine{Text: l.Prefix, Score: l.Score})
	}
	if err := printer.Sidebar(out, title, rows); err != nil {
		return err
	}

	fmt.Fprintln(out)
	for _, vc := range cfg.Viewers {
		if cfg.BoardFor(vc) != name {
			continue
		}
		label := "-"
		if def, ok := h.Assignments().Get(vc.Player()); ok {
			label = def.Label().PlainText()
		}
		fmt.Fprintf(out, "  %-10s %s\n", label, vc.Name)
	}
	return nil
}
