package models

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// UnitType classifies how a product is sold.
type UnitType string

const (
	UnitTypeUnit   UnitType = "UNIT"
	UnitTypeWeight UnitType = "WEIGHT"
)

// Market is a supermarket identified by its tax id (CNPJ).
type Market struct {
	TaxID string `db:"tax_id" json:"tax_id"`
	Name  string `db:"name"   json:"name"`
}

// SearchRequest is one (product term, market) query against the upstream API.
type SearchRequest struct {
	Term         string
	Market       Market
	LookbackDays int
	Token        string
	JobID        string
}

// PriceRecord is a single normalized price observation.
type PriceRecord struct {
	Fingerprint    string    `db:"fingerprint"     json:"fingerprint"`
	MarketTaxID    string    `db:"market_tax_id"   json:"market_tax_id"`
	MarketName     string    `db:"market_name"     json:"market_name"`
	ProductName    string    `db:"product_name"    json:"product_name"`
	NormalizedName string    `db:"normalized_name" json:"normalized_name"`
	CatalogCode    *string   `db:"catalog_code"    json:"catalog_code,omitempty"`
	Price          float64   `db:"price"           json:"price"`
	UnitType       UnitType  `db:"unit_type"       json:"unit_type"`
	UnitLabel      string    `db:"unit_label"      json:"unit_label"`
	LastSaleDate   string    `db:"last_sale_date"  json:"last_sale_date"`
	CollectedAt    time.Time `db:"collected_at"    json:"collected_at"`
	JobID          string    `db:"job_id"          json:"job_id"`

	// ProductKey is the catalog code when present, otherwise a fallback derived
	// from the normalized name and unit label. It only feeds the fingerprint.
	ProductKey string `db:"-" json:"-"`
}

// Fingerprint hashes the fields that make an observation distinct. Identical
// inputs always produce the same 16-hex-char key.
func Fingerprint(marketTaxID, productKey string, price float64, lastSaleDate string) string {
	h := sha1.New()
	h.Write([]byte(strings.Join([]string{
		marketTaxID,
		productKey,
		strconv.FormatFloat(price, 'f', -1, 64),
		lastSaleDate,
	}, "|")))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Seal computes and stores the record fingerprint.
func (r *PriceRecord) Seal() {
	r.Fingerprint = Fingerprint(r.MarketTaxID, r.ProductKey, r.Price, r.LastSaleDate)
}

// PriceRow is the projection of stored prices the basket optimizer works on.
type PriceRow struct {
	CatalogCode string  `db:"catalog_code"`
	ProductName string  `db:"product_name"`
	Price       float64 `db:"price"`
	MarketTaxID string  `db:"market_tax_id"`
	MarketName  string  `db:"market_name"`
}
