package services

import (
	"context"
	"fmt"
	"sort"

	"basket-prices/catalog"
	"basket-prices/models"
	"basket-prices/utils"
)

// LiveSearchLookbackDays is the sales history window of a live search.
const LiveSearchLookbackDays = models.DefaultLookbackDays

// SearchLive queries one term upstream across the given markets right now.
// Nothing is persisted and no collection job is involved, so it may run while
// a collection is in progress. Results are ordered cheapest first.
func (c *Collector) SearchLive(ctx context.Context, term string, taxIDs []string) ([]models.PriceRecord, error) {
	term = catalog.Normalize(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", models.ErrValidation)
	}
	taxIDs = uniqueSorted(taxIDs)
	if len(taxIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one market is required", models.ErrValidation)
	}

	markets, err := c.markets.ListMarkets(ctx, taxIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve markets: %w", err)
	}
	if len(markets) == 0 {
		return nil, fmt.Errorf("no markets found for %v: %w", taxIDs, models.ErrNotFound)
	}

	log := c.logger.With("term", term)

	sctx, cancel := c.marketContext(ctx)
	defer cancel()

	results := utils.NewKeyedSet[models.PriceRecord]()
	pool := utils.NewWorkerPool(c.opts.MaxConcurrency, 0)
	for _, m := range markets {
		pool.Submit(sctx, func(ctx context.Context) {
			records := c.fetch(ctx, models.SearchRequest{
				Term:         term,
				Market:       m,
				LookbackDays: LiveSearchLookbackDays,
				Token:        c.opts.Token,
			})
			for _, r := range records {
				results.Put(r.Fingerprint, r)
			}
		})
	}
	pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sctx.Err() != nil {
		log.Warn("[search] Live search stopped after %v with %d results", c.opts.MarketTimeout, results.Size())
	}

	out := results.Values()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		if out[i].MarketTaxID != out[j].MarketTaxID {
			return out[i].MarketTaxID < out[j].MarketTaxID
		}
		return out[i].ProductName < out[j].ProductName
	})

	log.Info("[search] Live search across %d markets returned %d results", len(markets), len(out))
	return out, nil
}
