package model

import "time"

// Mapping is one seller-specific SKU's canonical identity on one marketplace.
type Mapping struct {
	SKU         string `json:"sku"`
	MSKU        string `json:"msku"`
	Marketplace string `json:"marketplace"`
}

type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPattern MatchType = "pattern"
)

type PatternKind string

const (
	KindProductName  PatternKind = "product-name"
	KindPrefix       PatternKind = "prefix"
	KindSuffix       PatternKind = "suffix"
	KindColorVariant PatternKind = "color-variant"
	KindSizeVariant  PatternKind = "size-variant"
)

// Match: результат GetMsku. Для exact Confidence всегда 1.0, Pattern пустой.
type Match struct {
	MSKU       string      `json:"msku"`
	MatchType  MatchType   `json:"matchType"`
	Confidence float64     `json:"confidence"`
	Pattern    PatternKind `json:"pattern,omitempty"`
}

type BulkItem struct {
	SKU         string `json:"sku"`
	Marketplace string `json:"marketplace"`
}

type BulkDetail struct {
	SKU         string    `json:"sku"`
	Marketplace string    `json:"marketplace"`
	MSKU        string    `json:"msku,omitempty"`
	MatchType   MatchType `json:"matchType,omitempty"`
	Confidence  float64   `json:"confidence,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// BulkReport: Processed == Matched + NotMatched == len(Details).
type BulkReport struct {
	Processed  int          `json:"processed"`
	Matched    int          `json:"matched"`
	NotMatched int          `json:"notMatched"`
	Details    []BulkDetail `json:"details"`
}

// Record is a persisted mapping with its store identity.
type Record struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku"`
	MSKU        string    `json:"msku"`
	Marketplace string    `json:"marketplace"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (r Record) Mapping() Mapping {
	return Mapping{SKU: r.SKU, MSKU: r.MSKU, Marketplace: r.Marketplace}
}

type Suggestion struct {
	SKU         string  `json:"sku"`
	Marketplace string  `json:"marketplace"`
	MSKU        string  `json:"msku"`
	Score       float64 `json:"score"`
}

type SalesRow struct {
	OriginalSKU       string     `json:"originalSKU"`
	MSKU              string     `json:"msku,omitempty"`
	Marketplace       string     `json:"marketplace"`
	OrderDate         *time.Time `json:"orderDate,omitempty"`
	Quantity          int        `json:"quantity"`
	Price             float64    `json:"price"`
	OrderNumber       string     `json:"orderNumber"`
	MappingConfidence float64    `json:"mappingConfidence"`
	HasError          bool       `json:"hasError"`
	ErrorMessage      string     `json:"errorMessage,omitempty"`
}

type DateRange struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

type SalesSummary struct {
	TotalOrders   int       `json:"totalOrders"`
	TotalQuantity int       `json:"totalQuantity"`
	TotalRevenue  float64   `json:"totalRevenue"`
	MappedSKUs    int       `json:"mappedSkus"`
	UnmappedSKUs  int       `json:"unmappedSkus"`
	Marketplaces  []string  `json:"marketplaces"`
	DateRange     DateRange `json:"dateRange"`
}

type SalesReport struct {
	Rows    []SalesRow   `json:"data"`
	Summary SalesSummary `json:"summary"`
}
