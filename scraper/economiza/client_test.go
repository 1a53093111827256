package economiza

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basket-prices/models"
	"basket-prices/utils"
)

func newTestClient(url string) *Client {
	return NewWithOptions(Options{
		BaseURL:  url,
		PageSize: 2,
		Retry:    utils.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond},
	}, utils.NewNopLogger(), nil)
}

func testRequest() models.SearchRequest {
	return models.SearchRequest{
		Term:         "arroz",
		Market:       models.Market{TaxID: "12345678000190", Name: "Mercado Central"},
		LookbackDays: 3,
		Token:        "secret-token",
		JobID:        "job-1",
	}
}

func item(desc, unit string, gtin any, price any, date string) map[string]any {
	return map[string]any{
		"produto": map[string]any{
			"descricao":     desc,
			"unidadeMedida": unit,
			"gtin":          gtin,
			"venda": map[string]any{
				"valorVenda": price,
				"dataVenda":  date,
			},
		},
	}
}

func TestFetchFollowsPagination(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		assert.Equal(t, "/produto/pesquisa", r.URL.Path)
		assert.Equal(t, "secret-token", r.Header.Get("AppToken"))

		var body searchBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ARROZ", body.Product.Description)
		assert.Equal(t, "12345678000190", body.Establishment.Individual.TaxID)
		assert.Equal(t, 3, body.Days)
		assert.Equal(t, 2, body.PerPage)

		var content []map[string]any
		if body.Page == 1 {
			content = []map[string]any{
				item("ARROZ TIPO 1 5KG", "UN", "7891000100103", 25.9, "2024-05-10T10:00:00"),
				item("ARROZ INTEGRAL", "UN", nil, 8.5, "2024-05-10T11:00:00"),
			}
		} else {
			content = []map[string]any{
				item("ARROZ A GRANEL", "KG", 7891000999999, 6.2, "2024-05-09T09:00:00"),
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"conteudo": content, "totalPaginas": 2})
	}))
	defer srv.Close()

	records := newTestClient(srv.URL).Fetch(context.Background(), testRequest())

	require.Len(t, records, 3)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))

	first := records[0]
	assert.Equal(t, "12345678000190", first.MarketTaxID)
	assert.Equal(t, "Mercado Central", first.MarketName)
	assert.Equal(t, "arroz tipo 1 5kg", first.NormalizedName)
	require.NotNil(t, first.CatalogCode)
	assert.Equal(t, "7891000100103", *first.CatalogCode)
	assert.Equal(t, models.UnitTypeWeight, first.UnitType)
	assert.Equal(t, "job-1", first.JobID)
	assert.Equal(t, models.Fingerprint("12345678000190", "7891000100103", 25.9, "2024-05-10T10:00:00"), first.Fingerprint)

	noCode := records[1]
	assert.Nil(t, noCode.CatalogCode)
	assert.Equal(t, "arroz integral_un", noCode.ProductKey)
	assert.Equal(t, models.UnitTypeUnit, noCode.UnitType)

	numericCode := records[2]
	require.NotNil(t, numericCode.CatalogCode)
	assert.Equal(t, "7891000999999", *numericCode.CatalogCode)
	assert.Equal(t, models.UnitTypeWeight, numericCode.UnitType)
}

func TestFetchDropsRecordsWithoutPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"conteudo": []map[string]any{
				item("FEIJAO", "UN", "1", nil, "2024-05-10"),
				item("FEIJAO PRETO", "UN", "2", 7.99, "2024-05-10"),
			},
			"totalPaginas": 1,
		})
	}))
	defer srv.Close()

	records := newTestClient(srv.URL).Fetch(context.Background(), testRequest())

	require.Len(t, records, 1)
	assert.Equal(t, "FEIJAO PRETO", records[0].ProductName)
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"conteudo":     []map[string]any{item("LEITE", "UN", "9", 4.5, "2024-05-10")},
			"totalPaginas": 1,
		})
	}))
	defer srv.Close()

	records := newTestClient(srv.URL).Fetch(context.Background(), testRequest())

	assert.Len(t, records, 1)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestFetchAbandonsPairAfterExhaustingRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			json.NewEncoder(w).Encode(map[string]any{
				"conteudo":     []map[string]any{item("CAFE", "UN", "5", 12.0, "2024-05-10")},
				"totalPaginas": 3,
			})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	records := newTestClient(srv.URL).Fetch(context.Background(), testRequest())

	assert.Empty(t, records, "a failed page discards the whole term/market pair")
	assert.EqualValues(t, 4, atomic.LoadInt32(&calls))
}

func TestFetchStopsWhenContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewWithOptions(Options{
		BaseURL: srv.URL,
		Retry:   utils.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour},
	}, utils.NewNopLogger(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan []models.PriceRecord, 1)
	go func() { done <- c.Fetch(ctx, testRequest()) }()

	select {
	case records := <-done:
		assert.Empty(t, records)
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch ignored context cancellation")
	}
}
