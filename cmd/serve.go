package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"basket-prices/api"
	"basket-prices/services"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the HTTP API and, when COLLECTION_SCHEDULE is set, scheduled collections.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("=== Basket Prices API starting ===")
		logger.Info("Config - addr: %s | lookback: %d days | concurrency: %d | market timeout: %v",
			cfg.HTTPAddr, cfg.DefaultLookback, cfg.MaxConcurrency, cfg.MarketTimeout)

		if cfg.JWTSecret == "" {
			return errors.New("JWT_SECRET is required to serve the API")
		}

		p, err := newPipeline()
		if err != nil {
			return err
		}
		defer p.Close()

		if cfg.CollectionCronSpec != "" {
			sched, err := services.NewScheduler(cfg.CollectionCronSpec, p.collector,
				services.CollectRequest{LookbackDays: cfg.DefaultLookback}, logger)
			if err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()
			logger.Info("Scheduled collections enabled: %s", cfg.CollectionCronSpec)
		}

		gin.SetMode(gin.ReleaseMode)
		optimizer := services.NewBasketOptimizer(p.store, p.store, p.store, logger, p.metrics)
		opts := api.Options{
			JWTSecret:       cfg.JWTSecret,
			DefaultLookback: cfg.DefaultLookback,
			AllowedOrigins:  cfg.CORSOrigins,
		}
		srv := api.NewServer(opts, p.collector, optimizer, p.store, p.metrics, logger)

		if err := srv.Run(ctx, cfg.HTTPAddr); err != nil {
			return fmt.Errorf("HTTP server stopped: %w", err)
		}
		logger.Info("Shut down cleanly")
		return nil
	},
}
