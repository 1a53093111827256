package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"basket-prices/models"
	"basket-prices/services"
	"basket-prices/storage"
)

var statusJobID string

func init() {
	statusCmd.Flags().StringVar(&statusJobID, "job", "", "print the stored report of this job instead of live progress")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Prints the progress of the running collection, or the report of a past job.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		if statusJobID != "" {
			store, err := storage.NewPostgresStore(cfg.DSN())
			if err != nil {
				return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
			}
			defer store.Close()

			job, err := store.GetJob(ctx, statusJobID)
			if err != nil {
				return err
			}
			services.PrintJobReport(os.Stdout, job)
			return nil
		}

		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is not set; live progress is only mirrored through Redis. Use --job to read a stored job")
		}

		mirror, err := storage.NewRedisProgressMirror(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer mirror.Close()

		snap, err := mirror.Load(ctx)
		if errors.Is(err, models.ErrNotFound) {
			fmt.Println("No collection progress has been published yet.")
			return nil
		}
		if err != nil {
			return err
		}
		services.PrintProgress(os.Stdout, *snap)
		return nil
	},
}
