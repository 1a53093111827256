package models

import "time"

// MaxBasketItems is the largest basket the optimizer will evaluate.
const MaxBasketItems = 25

// BasketItem references a product by catalog code.
type BasketItem struct {
	CatalogCode string `json:"product_barcode"`
	Name        string `json:"product_name,omitempty"`
}

// Basket is a user-owned list of products compared across markets.
type Basket struct {
	ID        int64        `json:"id"`
	OwnerID   string       `json:"user_id"`
	Name      string       `json:"basket_name"`
	Items     []BasketItem `json:"products"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ItemPrice is one basket item's price in a given context.
type ItemPrice struct {
	CatalogCode string  `json:"barcode"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Found       bool    `json:"found"`
	MarketTaxID string  `json:"market_cnpj,omitempty"`
	MarketName  string  `json:"market_name,omitempty"`
}

// CompleteBasket is the cost of buying the whole basket in one market.
type CompleteBasket struct {
	MarketTaxID   string      `json:"market_cnpj"`
	MarketName    string      `json:"market_name"`
	Total         float64     `json:"total"`
	ProductsFound int         `json:"products_found"`
	TotalProducts int         `json:"total_products"`
	Items         []ItemPrice `json:"products"`
}

// MarketShare is the part of a mixed basket bought at one market.
type MarketShare struct {
	MarketName string      `json:"market_name"`
	Subtotal   float64     `json:"subtotal"`
	Items      []ItemPrice `json:"products"`
}

// MixedBasket buys every item at its individually cheapest market.
type MixedBasket struct {
	Total           float64                `json:"total"`
	Items           []ItemPrice            `json:"products"`
	MarketBreakdown map[string]MarketShare `json:"market_breakdown"`
}

// BasketPriceReport is computed on demand and never persisted.
type BasketPriceReport struct {
	CompleteBasketResults map[string]CompleteBasket `json:"complete_basket_results"`
	MixedBasketResults    MixedBasket               `json:"mixed_basket_results"`
	BestCompleteBasket    *CompleteBasket           `json:"best_complete_basket"`
	EconomyPercent        float64                   `json:"economy_percent"`
}

// EmptyBasketReport returns a report with no markets and no items.
func EmptyBasketReport() *BasketPriceReport {
	return &BasketPriceReport{
		CompleteBasketResults: map[string]CompleteBasket{},
		MixedBasketResults: MixedBasket{
			Items:           []ItemPrice{},
			MarketBreakdown: map[string]MarketShare{},
		},
	}
}
