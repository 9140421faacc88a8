package commands

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dyluth/simpleboard/internal/config"
	"github.com/dyluth/simpleboard/internal/instance"
	"github.com/dyluth/simpleboard/internal/printer"
	"github.com/dyluth/simpleboard/pkg/redisboard"
)

// defaultRedisURL is used when neither the config file nor REDIS_URL names a server.
const defaultRedisURL = "redis://localhost:6379/0"

var (
	version string
	commit  string
	date    string

	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "simpleboard",
	Short: "Simpleboard - flicker-free sidebars and ordered name prefixes",
	Long: `Simpleboard renders sidebar boards onto a scoreboard substrate with
minimal, diffed updates, and keeps viewers ordered by their name prefix.

Boards, prefixes and viewers are declared in simpleboard.yml. Preview them
in the terminal, or serve them on a Redis-backed substrate.`,
	Version: version,
	// Show help instead of silently succeeding without a subcommand
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Errors are printed by the printer package instead of cobra
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "simpleboard.yml", "Path to simpleboard.yml")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, printer.Error(
			"failed to load configuration",
			err.Error(),
			[]string{fmt.Sprintf("Check the file exists and is valid:\n  %s", configPath)},
		)
	}
	return cfg, nil
}

// connect opens a redisboard client for the configured server. override
// replaces the configured instance name when set.
func connect(ctx context.Context, cfg *config.Config, override string) (*redisboard.Client, error) {
	redisURL := cfg.Redis.URL
	if redisURL == "" {
		redisURL = defaultRedisURL
	}
	name, err := instance.Resolve(override, cfg.Redis.Instance)
	if err != nil {
		return nil, printer.Error("invalid instance name", err.Error(), nil)
	}

	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client, err := redisboard.NewClient(redisOpts, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create redisboard client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", redisURL),
			map[string]string{"instance": name},
			[]string{
				"Set redis.url in simpleboard.yml or export REDIS_URL",
				"Start a local server:\n  redis-server",
			},
		)
	}
	return client, nil
}
