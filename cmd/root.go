package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"basket-prices/config"
	"basket-prices/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:   "basket-prices",
	Short: "basket-prices collects supermarket prices and compares basket costs across markets.",
	// Commands return their errors; Execute prints them once.
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger = utils.NewLoggerLevel(cfg.LogLevel)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
