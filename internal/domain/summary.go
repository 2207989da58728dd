package domain

import (
	"time"

	"github.com/google/uuid"
)

// The three summary levels are always derived, never hand-edited. Each
// rebuild replaces a table wholesale via shadow-build-and-swap, and the
// composite primary keys enforce at most one row per natural key.

// ProductSummary is Level 1: fact rows rolled up per (product, marketplace,
// month, metric), with the parent brand and category denormalised at
// rebuild time. Products of exclusion-tagged brands never appear here.
type ProductSummary struct {
	ProductID   uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BrandID     uuid.UUID  `gorm:"type:uuid"`
	CategoryID  *uuid.UUID `gorm:"type:uuid"`
	Marketplace string     `gorm:"size:10;primaryKey"`
	Metric      string     `gorm:"size:100;primaryKey"`
	Month       time.Time  `gorm:"type:date;primaryKey"`
	TotalValue  float64    `gorm:"type:decimal(18,2)"`
}

func (ProductSummary) TableName() string { return "summary_product_monthly" }

// BrandSummary is Level 2: Level-1 rows rolled up per brand, once per
// marketplace and once more across marketplaces under MarketplaceAll. Both
// row sets share this table and are distinguished only by the marketplace
// column.
type BrandSummary struct {
	BrandID      uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CategoryID   *uuid.UUID `gorm:"type:uuid"`
	Marketplace  string     `gorm:"size:10;primaryKey"`
	Metric       string     `gorm:"size:100;primaryKey"`
	Month        time.Time  `gorm:"type:date;primaryKey"`
	TotalValue   float64    `gorm:"type:decimal(18,2)"`
	ProductCount int64      `gorm:"default:0"`
}

func (BrandSummary) TableName() string { return "summary_brand_monthly" }

// CategorySummary is Level 3, derived only from Level-2 MarketplaceAll rows
// so categories never double count marketplaces. ProductCount is carried up
// by summing Level-2 counts rather than re-scanning Level 1.
type CategorySummary struct {
	CategoryID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Metric       string    `gorm:"size:100;primaryKey"`
	Month        time.Time `gorm:"type:date;primaryKey"`
	TotalValue   float64   `gorm:"type:decimal(18,2)"`
	BrandCount   int64     `gorm:"default:0"`
	ProductCount int64     `gorm:"default:0"`
}

func (CategorySummary) TableName() string { return "summary_category_monthly" }

// RefreshState records when a derived table was last rebuilt and how many
// rows the rebuild produced. Readers must treat a missing or stale row as
// "needs rebuild", never infer freshness from row counts.
type RefreshState struct {
	Name        string    `gorm:"size:100;primaryKey"`
	RefreshedAt time.Time
	Rows        int64 `gorm:"default:0"`
}

// MetricTotals carries per-product sums of the derived-metric source
// metrics over one window.
type MetricTotals struct {
	Revenue float64
	Units   float64
	CM3     float64
}
