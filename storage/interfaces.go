package storage

import (
	"context"

	"basket-prices/models"
)

// MarketStore resolves market reference data.
type MarketStore interface {
	// ListMarkets returns the markets with the given tax ids, or every known
	// market when taxIDs is empty.
	ListMarkets(ctx context.Context, taxIDs []string) ([]models.Market, error)
}

// PriceStore persists and queries price observations.
type PriceStore interface {
	// UpsertRecords writes records keyed by fingerprint and returns how many
	// were sent to the store.
	UpsertRecords(ctx context.Context, records []models.PriceRecord) (int, error)
	PricesFor(ctx context.Context, catalogCodes, marketTaxIDs []string) ([]models.PriceRow, error)
	ProductNames(ctx context.Context, catalogCodes []string) (map[string]string, error)
}

// JobStore persists collection job state.
type JobStore interface {
	CreateJob(ctx context.Context, job *models.CollectionJob) error
	UpdateJob(ctx context.Context, job *models.CollectionJob) error
	GetJob(ctx context.Context, id string) (*models.CollectionJob, error)
}

// BasketStore reads user baskets.
type BasketStore interface {
	GetBasket(ctx context.Context, id int64) (*models.Basket, error)
}

// ProgressPublisher mirrors progress snapshots to other processes.
type ProgressPublisher interface {
	Publish(ctx context.Context, snap models.ProgressSnapshot) error
}
