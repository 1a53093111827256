package models

import "time"

// JobStatus is the lifecycle state of a collection job.
type JobStatus string

const (
	JobIdle      JobStatus = "IDLE"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
)

// Terminal reports whether no further transitions happen from s except a new run.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

const (
	MinLookbackDays     = 1
	MaxLookbackDays     = 7
	DefaultLookbackDays = 3
)

// ValidLookback reports whether days is within the accepted range.
func ValidLookback(days int) bool {
	return days >= MinLookbackDays && days <= MaxLookbackDays
}

// MarketBreakdown summarises one market's contribution to a job.
type MarketBreakdown struct {
	MarketTaxID     string  `json:"market_tax_id"`
	MarketName      string  `json:"market_name"`
	ItemsFound      int     `json:"items_found"`
	DurationSeconds float64 `json:"duration_seconds"`
	LookbackDays    int     `json:"lookback_days"`
	TimedOut        bool    `json:"timed_out,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// CollectionJob is one orchestrated run across a set of markets.
type CollectionJob struct {
	ID               string            `json:"id"`
	RequestedMarkets []string          `json:"requested_markets"`
	LookbackDays     int               `json:"lookback_days"`
	Status           JobStatus         `json:"status"`
	Breakdown        []MarketBreakdown `json:"per_market_breakdown"`
	TotalItemsSaved  int               `json:"total_items_saved"`
	ErrorMessage     *string           `json:"error_message,omitempty"`
	StartedAt        time.Time         `json:"started_at"`
	FinishedAt       *time.Time        `json:"finished_at,omitempty"`
}
