package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"basket-prices/metrics"
	"basket-prices/models"
	"basket-prices/storage"
	"basket-prices/utils"
)

const (
	missingProductName = "Produto não encontrado"
	missingMarketName  = "Não encontrado"
)

// BasketOptimizer prices a basket in every candidate market and builds the
// cheapest cross-market combination. It only reads previously collected data.
type BasketOptimizer struct {
	baskets storage.BasketStore
	prices  storage.PriceStore
	markets storage.MarketStore
	logger  *utils.Logger
	metrics *metrics.Metrics
}

func NewBasketOptimizer(
	baskets storage.BasketStore,
	prices storage.PriceStore,
	markets storage.MarketStore,
	logger *utils.Logger,
	m *metrics.Metrics,
) *BasketOptimizer {
	return &BasketOptimizer{baskets: baskets, prices: prices, markets: markets, logger: logger, metrics: m}
}

// Evaluate loads the basket, checks the caller may use it and computes the
// price report over marketTaxIDs.
func (o *BasketOptimizer) Evaluate(ctx context.Context, user models.UserContext, basketID int64, marketTaxIDs []string) (*models.BasketPriceReport, error) {
	basket, err := o.baskets.GetBasket(ctx, basketID)
	if err != nil {
		return nil, err
	}

	if !user.Privileged() && basket.OwnerID != user.UserID {
		return nil, fmt.Errorf("basket %d: %w", basketID, models.ErrForbidden)
	}
	if len(basket.Items) > models.MaxBasketItems {
		return nil, fmt.Errorf("%w: basket has %d items, the limit is %d",
			models.ErrValidation, len(basket.Items), models.MaxBasketItems)
	}
	if len(basket.Items) == 0 {
		return models.EmptyBasketReport(), nil
	}

	// No candidate markets means nothing can be priced.
	taxIDs := uniqueSorted(marketTaxIDs)
	if len(taxIDs) == 0 {
		return models.EmptyBasketReport(), nil
	}

	codes := make([]string, 0, len(basket.Items))
	for _, it := range basket.Items {
		codes = append(codes, it.CatalogCode)
	}
	codes = uniqueSorted(codes)

	names, err := o.prices.ProductNames(ctx, codes)
	if err != nil {
		o.logger.Warn("[basket] Product names unavailable for basket %d: %v", basketID, err)
	}

	rows, err := o.prices.PricesFor(ctx, codes, taxIDs)
	if err != nil {
		return nil, fmt.Errorf("basket %d: load prices: %w", basketID, err)
	}

	report := Optimize(basket.Items, o.candidates(ctx, taxIDs, rows), rows, names)
	o.metrics.BasketEvaluation()
	o.logger.Debug("[basket] Basket %d: %d markets, mixed total %.2f, economy %.1f%%",
		basketID, len(taxIDs), report.MixedBasketResults.Total, report.EconomyPercent)
	return report, nil
}

// candidates resolves display names for the requested markets, preferring the
// name stored with the price rows.
func (o *BasketOptimizer) candidates(ctx context.Context, taxIDs []string, rows []models.PriceRow) []models.Market {
	names := make(map[string]string, len(taxIDs))
	for _, r := range rows {
		if _, ok := names[r.MarketTaxID]; !ok && r.MarketName != "" {
			names[r.MarketTaxID] = r.MarketName
		}
	}

	var missing []string
	for _, id := range taxIDs {
		if _, ok := names[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 && o.markets != nil {
		known, err := o.markets.ListMarkets(ctx, missing)
		if err != nil {
			o.logger.Warn("[basket] Market names unavailable: %v", err)
		}
		for _, m := range known {
			names[m.TaxID] = m.Name
		}
	}

	out := make([]models.Market, 0, len(taxIDs))
	for _, id := range taxIDs {
		name := names[id]
		if name == "" {
			name = id
		}
		out = append(out, models.Market{TaxID: id, Name: name})
	}
	return out
}

type priceKey struct {
	market string
	code   string
}

// Optimize computes the complete-basket total per market, the mixed basket and
// the saving of the mixed basket over the best complete one. Equal prices go
// to the market with the lowest tax id.
func Optimize(items []models.BasketItem, markets []models.Market, rows []models.PriceRow, names map[string]string) *models.BasketPriceReport {
	report := models.EmptyBasketReport()
	if len(items) == 0 {
		return report
	}

	markets = append([]models.Market(nil), markets...)
	sort.Slice(markets, func(i, j int) bool { return markets[i].TaxID < markets[j].TaxID })

	candidate := make(map[string]bool, len(markets))
	for _, m := range markets {
		candidate[m.TaxID] = true
	}

	lowest := make(map[priceKey]float64)
	for _, r := range rows {
		if !candidate[r.MarketTaxID] {
			continue
		}
		k := priceKey{market: r.MarketTaxID, code: r.CatalogCode}
		if cur, ok := lowest[k]; !ok || r.Price < cur {
			lowest[k] = r.Price
		}
	}

	displayName := func(it models.BasketItem) string {
		if it.Name != "" {
			return it.Name
		}
		if n := names[it.CatalogCode]; n != "" {
			return n
		}
		return missingProductName
	}

	for _, m := range markets {
		cb := models.CompleteBasket{
			MarketTaxID:   m.TaxID,
			MarketName:    m.Name,
			TotalProducts: len(items),
			Items:         make([]models.ItemPrice, 0, len(items)),
		}
		var total float64
		for _, it := range items {
			ip := models.ItemPrice{CatalogCode: it.CatalogCode, Name: displayName(it)}
			if p, ok := lowest[priceKey{market: m.TaxID, code: it.CatalogCode}]; ok {
				ip.Price = p
				ip.Found = true
				total += p
				cb.ProductsFound++
			}
			cb.Items = append(cb.Items, ip)
		}
		cb.Total = round2(total)
		report.CompleteBasketResults[m.TaxID] = cb
	}

	mixed := &report.MixedBasketResults
	var mixedTotal float64
	for _, it := range items {
		ip := models.ItemPrice{CatalogCode: it.CatalogCode, Name: displayName(it)}

		var winner *models.Market
		var best float64
		for i := range markets {
			p, ok := lowest[priceKey{market: markets[i].TaxID, code: it.CatalogCode}]
			if ok && (winner == nil || p < best) {
				winner, best = &markets[i], p
			}
		}

		if winner == nil {
			ip.MarketName = missingMarketName
			mixed.Items = append(mixed.Items, ip)
			continue
		}

		ip.Price = best
		ip.Found = true
		ip.MarketTaxID = winner.TaxID
		ip.MarketName = winner.Name
		mixed.Items = append(mixed.Items, ip)
		mixedTotal += best

		share := mixed.MarketBreakdown[winner.TaxID]
		share.MarketName = winner.Name
		share.Subtotal += best
		share.Items = append(share.Items, ip)
		mixed.MarketBreakdown[winner.TaxID] = share
	}
	for id, share := range mixed.MarketBreakdown {
		share.Subtotal = round2(share.Subtotal)
		mixed.MarketBreakdown[id] = share
	}
	mixed.Total = round2(mixedTotal)

	report.BestCompleteBasket = bestComplete(markets, report.CompleteBasketResults)
	report.EconomyPercent = economyPercent(report.BestCompleteBasket, mixed.Total)
	return report
}

// bestComplete picks the market covering the most items, then the cheapest,
// then the lowest tax id. Markets with nothing found never qualify.
func bestComplete(markets []models.Market, results map[string]models.CompleteBasket) *models.CompleteBasket {
	var best *models.CompleteBasket
	for _, m := range markets {
		cb := results[m.TaxID]
		if cb.ProductsFound == 0 {
			continue
		}
		if best == nil ||
			cb.ProductsFound > best.ProductsFound ||
			(cb.ProductsFound == best.ProductsFound && cb.Total < best.Total) {
			c := cb
			best = &c
		}
	}
	return best
}

func economyPercent(best *models.CompleteBasket, mixedTotal float64) float64 {
	if best == nil || mixedTotal == 0 || best.Total == 0 {
		return 0
	}
	return round1((best.Total - mixedTotal) / best.Total * 100)
}

func uniqueSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
