package models

import "time"

// ProgressSnapshot is a point-in-time copy of the running collection's progress.
type ProgressSnapshot struct {
	Status                    JobStatus         `json:"status"`
	JobID                     string            `json:"job_id,omitempty"`
	Message                   string            `json:"message"`
	CurrentMarket             string            `json:"current_market"`
	CurrentProduct            string            `json:"current_product"`
	MarketsProcessed          int               `json:"markets_processed"`
	TotalMarkets              int               `json:"total_markets"`
	ProductsProcessedInMarket int               `json:"products_processed_in_market"`
	TotalProducts             int               `json:"total_products"`
	ItemsFound                int               `json:"items_found"`
	ETASeconds                int64             `json:"eta_seconds"`
	PercentComplete           float64           `json:"percent_complete"`
	LookbackDays              int               `json:"lookback_days,omitempty"`
	StartedAt                 *time.Time        `json:"started_at,omitempty"`
	FinishedAt                *time.Time        `json:"finished_at,omitempty"`
	Breakdown                 []MarketBreakdown `json:"per_market_breakdown,omitempty"`
	TotalItemsSaved           int               `json:"total_items_saved"`
}
