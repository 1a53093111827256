package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"basket-prices/models"
	"basket-prices/services"
)

var (
	collectMarkets []string
	collectDays    int
)

func init() {
	collectCmd.Flags().StringSliceVar(&collectMarkets, "markets", nil, "market CNPJs to collect (default: all known markets)")
	collectCmd.Flags().IntVar(&collectDays, "days", 0, "days of sales history to request, 1-7 (default: DEFAULT_LOOKBACK_DAYS)")
	rootCmd.AddCommand(collectCmd)
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Runs one collection synchronously and prints the report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		days := collectDays
		if days == 0 {
			days = cfg.DefaultLookback
		}

		p, err := newPipeline()
		if err != nil {
			return err
		}
		defer p.Close()

		job, err := p.collector.Run(ctx, services.CollectRequest{MarketTaxIDs: collectMarkets, LookbackDays: days})
		if err != nil {
			return fmt.Errorf("collection could not start: %w", err)
		}

		services.PrintJobReport(os.Stdout, job)
		if job.Status == models.JobFailed {
			return fmt.Errorf("collection %s failed", job.ID)
		}
		return nil
	},
}
