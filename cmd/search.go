package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"basket-prices/services"
)

var searchMarkets []string

func init() {
	searchCmd.Flags().StringSliceVar(&searchMarkets, "markets", nil, "market CNPJs to query (required)")
	_ = searchCmd.MarkFlagRequired("markets")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <product>",
	Short: "Queries one product upstream right now across the given markets, without saving.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		p, err := newPipeline()
		if err != nil {
			return err
		}
		defer p.Close()

		term := strings.Join(args, " ")
		records, err := p.collector.SearchLive(ctx, term, searchMarkets)
		if err != nil {
			return err
		}

		services.PrintSearchResults(os.Stdout, term, records)
		return nil
	},
}
