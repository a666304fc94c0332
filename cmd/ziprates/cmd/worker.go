package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cronworker "ziprates/internal/cron"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the scheduled dataset refresh worker",
	Long: `Run the refresh worker, which periodically re-reads the dataset CSVs
and persists snapshots. With the postgrespool driver an advisory lock
ensures only one replica refreshes at a time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cronworker.Run(ctx, cfg); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}
