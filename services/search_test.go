package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basket-prices/models"
	"basket-prices/scraper/economiza"
	"basket-prices/utils"
)

type upstreamQuery struct {
	Description string
	TaxID       string
	Days        int
}

// fakeEconomiza serves one page per market with a fixed price list.
func fakeEconomiza(t *testing.T, prices map[string]float64) (*httptest.Server, func() []upstreamQuery) {
	t.Helper()
	var mu sync.Mutex
	var seen []upstreamQuery

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Product struct {
				Description string `json:"descricao"`
			} `json:"produto"`
			Establishment struct {
				Individual struct {
					TaxID string `json:"cnpj"`
				} `json:"individual"`
			} `json:"estabelecimento"`
			Days int `json:"dias"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		taxID := body.Establishment.Individual.TaxID
		mu.Lock()
		seen = append(seen, upstreamQuery{body.Product.Description, taxID, body.Days})
		mu.Unlock()

		var content []map[string]any
		if price, ok := prices[taxID]; ok {
			content = append(content, map[string]any{
				"produto": map[string]any{
					"descricao":     "ARROZ TIPO 1 5KG",
					"unidadeMedida": "UN",
					"gtin":          "7891000100103",
					"venda":         map[string]any{"valorVenda": price, "dataVenda": "2024-05-10T10:00:00"},
				},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"conteudo": content, "totalPaginas": 1})
	}))
	t.Cleanup(srv.Close)

	return srv, func() []upstreamQuery {
		mu.Lock()
		defer mu.Unlock()
		return append([]upstreamQuery(nil), seen...)
	}
}

func newLiveCollector(store *memStore, baseURL string) *Collector {
	client := economiza.NewWithOptions(economiza.Options{
		BaseURL: baseURL,
		Retry:   utils.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond},
	}, utils.NewNopLogger(), nil)
	return newTestCollector(store, client, CollectorOptions{})
}

func TestSearchLiveQueriesEveryMarket(t *testing.T) {
	srv, queries := fakeEconomiza(t, map[string]float64{
		marketA.TaxID: 27.9,
		marketB.TaxID: 24.5,
	})
	store := newMemStore(marketA, marketB)
	c := newLiveCollector(store, srv.URL)

	records, err := c.SearchLive(context.Background(), "Arroz", []string{marketA.TaxID, marketB.TaxID})
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, marketB.TaxID, records[0].MarketTaxID, "cheapest first")
	assert.Equal(t, 24.5, records[0].Price)
	assert.Equal(t, marketB.Name, records[0].MarketName)
	assert.Equal(t, marketA.TaxID, records[1].MarketTaxID)

	got := queries()
	require.Len(t, got, 2)
	for _, q := range got {
		assert.Equal(t, "ARROZ", q.Description)
		assert.Equal(t, LiveSearchLookbackDays, q.Days)
	}

	assert.Zero(t, store.priceCount(), "live results are not persisted")
	assert.Equal(t, models.JobIdle, c.Tracker().Snapshot().Status)
}

func TestSearchLiveSkipsUnknownMarkets(t *testing.T) {
	srv, queries := fakeEconomiza(t, map[string]float64{marketA.TaxID: 27.9})
	c := newLiveCollector(newMemStore(marketA), srv.URL)

	records, err := c.SearchLive(context.Background(), "arroz", []string{marketA.TaxID, "99999999000199"})
	require.NoError(t, err)

	assert.Len(t, records, 1)
	assert.Len(t, queries(), 1)
}

func TestSearchLiveRunsDuringCollection(t *testing.T) {
	srv, _ := fakeEconomiza(t, map[string]float64{marketA.TaxID: 27.9})
	c := newLiveCollector(newMemStore(marketA), srv.URL)
	require.NoError(t, c.Tracker().Begin("job-running", 3, 10))

	records, err := c.SearchLive(context.Background(), "arroz", []string{marketA.TaxID})

	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSearchLiveValidation(t *testing.T) {
	tests := []struct {
		name    string
		term    string
		markets []string
		want    error
	}{
		{"blank term", "   ", []string{marketA.TaxID}, models.ErrValidation},
		{"no markets", "arroz", nil, models.ErrValidation},
		{"only blank markets", "arroz", []string{""}, models.ErrValidation},
		{"unknown markets", "arroz", []string{"99999999000199"}, models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			f := fetchFunc(func(context.Context, models.SearchRequest) []models.PriceRecord {
				calls++
				return nil
			})
			c := newTestCollector(newMemStore(marketA), f, CollectorOptions{})

			_, err := c.SearchLive(context.Background(), tt.term, tt.markets)

			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Zero(t, calls)
		})
	}
}

func TestSearchLiveHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := fetchFunc(func(context.Context, models.SearchRequest) []models.PriceRecord {
		cancel()
		return nil
	})
	c := newTestCollector(newMemStore(marketA), f, CollectorOptions{})

	_, err := c.SearchLive(ctx, "arroz", []string{marketA.TaxID})

	assert.ErrorIs(t, err, context.Canceled)
}
