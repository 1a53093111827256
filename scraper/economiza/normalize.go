package economiza

import (
	"strings"
	"time"
	"unicode"

	"basket-prices/models"
)

// weightTokens mark a product as sold by weight when found in its name or unit.
var weightTokens = []string{"kg", "quilo", " a granel"}

// normaliseText lower-cases, trims and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), unicode.IsSpace)
	return strings.Join(fields, " ")
}

// detectUnitType classifies a product as WEIGHT or UNIT from its name and
// declared unit. Anything unmatched is UNIT.
func detectUnitType(name, unit string) models.UnitType {
	nameLower := strings.ToLower(name)
	unitLower := strings.ToLower(strings.TrimSpace(unit))

	if unitLower == "kg" {
		return models.UnitTypeWeight
	}
	for _, tok := range weightTokens {
		if strings.Contains(nameLower, tok) || strings.Contains(unitLower, tok) {
			return models.UnitTypeWeight
		}
	}
	return models.UnitTypeUnit
}

// productKey returns the catalog code, or a fallback derived from the
// normalized name and declared unit when the upstream omits it.
func productKey(catalogCode *string, name, unit string) string {
	if catalogCode != nil && *catalogCode != "" {
		return *catalogCode
	}
	return normaliseText(name + "_" + unit)
}

// toRecords converts one page of upstream content into sealed price records.
// Items without a price are dropped.
func toRecords(items []contentItem, req models.SearchRequest, collectedAt time.Time) []models.PriceRecord {
	out := make([]models.PriceRecord, 0, len(items))
	for _, it := range items {
		p := it.Product
		if p.Sale.Price == nil {
			continue
		}

		var code *string
		if c := strings.TrimSpace(string(p.GTIN)); c != "" {
			code = &c
		}

		rec := models.PriceRecord{
			MarketTaxID:    req.Market.TaxID,
			MarketName:     req.Market.Name,
			ProductName:    p.Description,
			NormalizedName: normaliseText(p.Description),
			CatalogCode:    code,
			Price:          *p.Sale.Price,
			UnitType:       detectUnitType(p.Description, p.Unit),
			UnitLabel:      p.Unit,
			LastSaleDate:   p.Sale.Date,
			CollectedAt:    collectedAt,
			JobID:          req.JobID,
			ProductKey:     productKey(code, p.Description, p.Unit),
		}
		rec.Seal()
		out = append(out, rec)
	}
	return out
}
