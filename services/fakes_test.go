package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"basket-prices/models"
)

// memStore is an in-memory implementation of the storage interfaces.
type memStore struct {
	mu       sync.Mutex
	markets  []models.Market
	prices   map[string]models.PriceRecord
	jobs     map[string]models.CollectionJob
	baskets  map[int64]*models.Basket
	rows     []models.PriceRow
	names    map[string]string
	failFor  map[string]bool
	queries  int
	upserted int
}

func newMemStore(markets ...models.Market) *memStore {
	return &memStore{
		markets: markets,
		prices:  make(map[string]models.PriceRecord),
		jobs:    make(map[string]models.CollectionJob),
		baskets: make(map[int64]*models.Basket),
		names:   make(map[string]string),
		failFor: make(map[string]bool),
	}
}

func (s *memStore) ListMarkets(_ context.Context, taxIDs []string) ([]models.Market, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++

	if len(taxIDs) == 0 {
		return append([]models.Market(nil), s.markets...), nil
	}
	want := make(map[string]bool, len(taxIDs))
	for _, id := range taxIDs {
		want[id] = true
	}
	var out []models.Market
	for _, m := range s.markets {
		if want[m.TaxID] {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) UpsertRecords(_ context.Context, records []models.PriceRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if s.failFor[r.MarketTaxID] {
			return 0, fmt.Errorf("%w: disk full", models.ErrPersistence)
		}
		s.prices[r.Fingerprint] = r
	}
	s.upserted += len(records)
	return len(records), nil
}

func (s *memStore) PricesFor(_ context.Context, codes, markets []string) ([]models.PriceRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++

	inCodes := make(map[string]bool, len(codes))
	for _, c := range codes {
		inCodes[c] = true
	}
	inMarkets := make(map[string]bool, len(markets))
	for _, m := range markets {
		inMarkets[m] = true
	}

	var out []models.PriceRow
	for _, r := range s.rows {
		if inCodes[r.CatalogCode] && inMarkets[r.MarketTaxID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) ProductNames(_ context.Context, codes []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++

	out := make(map[string]string)
	for _, c := range codes {
		if n, ok := s.names[c]; ok {
			out[c] = n
		}
	}
	return out, nil
}

func (s *memStore) CreateJob(_ context.Context, job *models.CollectionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (s *memStore) UpdateJob(_ context.Context, job *models.CollectionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		return models.ErrNotFound
	}
	s.jobs[job.ID] = cloneJob(job)
	return nil
}

func (s *memStore) GetJob(_ context.Context, id string) (*models.CollectionJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &j, nil
}

func (s *memStore) GetBasket(_ context.Context, id int64) (*models.Basket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++
	b, ok := s.baskets[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return b, nil
}

func (s *memStore) priceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prices)
}

func (s *memStore) countFor(taxID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.prices {
		if r.MarketTaxID == taxID {
			n++
		}
	}
	return n
}

func cloneJob(j *models.CollectionJob) models.CollectionJob {
	c := *j
	c.Breakdown = append([]models.MarketBreakdown(nil), j.Breakdown...)
	return c
}

// fetchFunc adapts a function to the Fetcher interface.
type fetchFunc func(ctx context.Context, req models.SearchRequest) []models.PriceRecord

func (f fetchFunc) Fetch(ctx context.Context, req models.SearchRequest) []models.PriceRecord {
	return f(ctx, req)
}

// record builds a sealed price record the way the connector would.
func record(req models.SearchRequest, code string, price float64) models.PriceRecord {
	c := code
	r := models.PriceRecord{
		MarketTaxID:  req.Market.TaxID,
		MarketName:   req.Market.Name,
		ProductName:  code,
		CatalogCode:  &c,
		Price:        price,
		UnitType:     models.UnitTypeUnit,
		LastSaleDate: "2024-05-10",
		JobID:        req.JobID,
		ProductKey:   code,
	}
	r.Seal()
	return r
}

// recordingMirror keeps every published snapshot.
type recordingMirror struct {
	mu    sync.Mutex
	snaps []models.ProgressSnapshot
}

func (m *recordingMirror) Publish(_ context.Context, snap models.ProgressSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
	return nil
}

func (m *recordingMirror) all() []models.ProgressSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ProgressSnapshot(nil), m.snaps...)
}

func sortedTaxIDs(b []models.MarketBreakdown) []string {
	out := make([]string, 0, len(b))
	for _, x := range b {
		out = append(out, x.MarketTaxID)
	}
	sort.Strings(out)
	return out
}
