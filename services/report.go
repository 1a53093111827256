package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"basket-prices/models"
)

// PrintJobReport renders a finished (or failed) collection job as a summary
// block followed by the per-market breakdown table.
func PrintJobReport(w io.Writer, job *models.CollectionJob) {
	sep := strings.Repeat("═", 60)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🛒 PRICE COLLECTION REPORT\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "  Job           : %s\n", job.ID)
	fmt.Fprintf(w, "  Status        : \033[1m%s\033[0m\n", job.Status)
	fmt.Fprintf(w, "  Lookback      : %d days\n", job.LookbackDays)
	fmt.Fprintf(w, "  Items saved   : \033[1;32m%d\033[0m\n", job.TotalItemsSaved)
	if job.FinishedAt != nil {
		fmt.Fprintf(w, "  Duration      : %v\n", job.FinishedAt.Sub(job.StartedAt).Round(time.Second))
	}
	if job.ErrorMessage != nil {
		fmt.Fprintf(w, "  Error         : \033[1;31m%s\033[0m\n", *job.ErrorMessage)
	}
	fmt.Fprintln(w)

	writeBreakdown(w, job.Breakdown)
}

// PrintProgress renders a progress snapshot, as mirrored by a running job.
func PrintProgress(w io.Writer, s models.ProgressSnapshot) {
	fmt.Fprintf(w, "  Status   : \033[1m%s\033[0m (%.1f%%)\n", s.Status, s.PercentComplete)
	fmt.Fprintf(w, "  Message  : %s\n", s.Message)
	fmt.Fprintf(w, "  Markets  : %d/%d\n", s.MarketsProcessed, s.TotalMarkets)
	if s.Status == models.JobRunning {
		fmt.Fprintf(w, "  Current  : %s - %s (%d/%d products)\n",
			s.CurrentMarket, s.CurrentProduct, s.ProductsProcessedInMarket, s.TotalProducts)
		fmt.Fprintf(w, "  ETA      : %v\n", time.Duration(s.ETASeconds)*time.Second)
	}
	fmt.Fprintf(w, "  Found    : %d (saved %d)\n\n", s.ItemsFound, s.TotalItemsSaved)

	writeBreakdown(w, s.Breakdown)
}

// PrintSearchResults renders the offers returned by a live search.
func PrintSearchResults(w io.Writer, term string, records []models.PriceRecord) {
	fmt.Fprintf(w, "\n  Live search \033[1m%q\033[0m - %d offers (last %d days)\n\n",
		term, len(records), LiveSearchLookbackDays)
	if len(records) == 0 {
		fmt.Fprintf(w, "  No offers found\n\n")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Product", "Market", "Price", "Unit", "Last sale"})
	for i, r := range records {
		t.AppendRow(table.Row{i + 1, truncate(r.ProductName, 40), truncate(r.MarketName, 28),
			fmt.Sprintf("%.2f", r.Price), r.UnitLabel, r.LastSaleDate})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, Align: text.AlignRight}})
	t.SetStyle(table.StyleRounded)
	t.Render()
	fmt.Fprintln(w)
}

func writeBreakdown(w io.Writer, breakdown []models.MarketBreakdown) {
	if len(breakdown) == 0 {
		fmt.Fprintf(w, "  No markets processed\n\n")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Market", "CNPJ", "Items", "Duration (s)", "Days", "Note"})

	total := 0
	for i, b := range breakdown {
		note := b.Error
		if note == "" && b.TimedOut {
			note = "timed out"
		}
		t.AppendRow(table.Row{i + 1, truncate(b.MarketName, 32), b.MarketTaxID, b.ItemsFound,
			fmt.Sprintf("%.2f", b.DurationSeconds), b.LookbackDays, note})
		total += b.ItemsFound
	}

	t.AppendFooter(table.Row{"", "Total", "", total, "", "", ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
	fmt.Fprintln(w)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
