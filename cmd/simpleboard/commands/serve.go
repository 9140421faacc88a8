package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/simpleboard/internal/health"
	"github.com/dyluth/simpleboard/internal/host"
	"github.com/dyluth/simpleboard/internal/printer"
)

var (
	serveInstanceName string
	serveHealthAddr   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the configured boards on Redis",
	Long: `Run the configured boards and prefixes on a Redis-backed substrate.

Every configured viewer is shown its board and assigned its prefix, then
boards are updated on their intervals until SIGINT or SIGTERM. On shutdown
every board is destroyed, removing its lines from Redis.

A health endpoint is served on --health-addr at /healthz.

Examples:
  # Serve with the configured Redis server
  simpleboard serve

  # Serve under another instance name
  REDIS_URL=redis://redis:6379/0 simpleboard serve --name lobby-2`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveInstanceName, "name", "n", "", "Instance name (defaults to redis.instance)")
	serveCmd.Flags().StringVar(&serveHealthAddr, "health-addr", health.DefaultAddr, "Health server listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := connect(ctx, cfg, serveInstanceName)
	if err != nil {
		return err
	}
	defer client.Close()

	h, err := host.New(cfg, client)
	if err != nil {
		return err
	}

	if err := h.Start(ctx); err != nil {
		return printer.ErrorWithContext(
			"failed to start boards",
			err.Error(),
			map[string]string{"instance": client.InstanceName()},
			nil,
		)
	}

	healthServer := health.NewServer(serveHealthAddr, client, h.Stats)
	if err := healthServer.Start(); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	boards, viewers := h.Stats()
	printer.Success("Serving %d boards to %d viewers on instance '%s'\n", boards, viewers, client.InstanceName())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- h.Run(ctx)
	}()

	var runErr error
	select {
	case sig := <-sigChan:
		log.Printf("[Serve] Received signal %v, shutting down...", sig)
		cancel()
		runErr = <-errChan
	case runErr = <-errChan:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	var errs []error
	if runErr != nil {
		errs = append(errs, runErr)
	}
	if err := h.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed to destroy boards: %w", err))
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop health server: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	log.Printf("[Serve] Shutdown complete")
	return nil
}
