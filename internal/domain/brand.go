package domain

import (
	"time"

	"github.com/google/uuid"
)

// BrandGroupStock tags brands whose products are stock-only: they are
// excluded from revenue aggregation entirely (never reach Level 1).
const BrandGroupStock = "stock"

// Brand groups products. Every derived field mirrors Product and is filled
// by summation over the brand's products, never measured independently.
// The one exception is the EBITDA percentages, which are recomputed from
// the brand's own summed CM3 and revenue so that the margin is
// revenue-weighted instead of an average of product percentages.
type Brand struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name        string     `gorm:"size:255;uniqueIndex"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index"`
	URL         string     `gorm:"size:512"`
	Acquisition string     `gorm:"size:255"`
	Group       string     `gorm:"column:group_tag;size:50;index"`

	L3MRevenue   float64 `gorm:"column:l3m_revenue;type:decimal(15,2);default:0"`
	L3MUnits     float64 `gorm:"column:l3m_units;type:decimal(15,2);default:0"`
	L3MCM3       float64 `gorm:"column:l3m_cm3;type:decimal(15,2);default:0"`
	L3MEBITDAPct float64 `gorm:"column:l3m_ebitda_pct;type:decimal(8,2);default:0"`
	LTMRevenue   float64 `gorm:"column:ltm_revenue;type:decimal(15,2);default:0"`
	LTMUnits     float64 `gorm:"column:ltm_units;type:decimal(15,2);default:0"`
	LTMCM3       float64 `gorm:"column:ltm_cm3;type:decimal(15,2);default:0"`
	LTMEBITDAPct float64 `gorm:"column:ltm_ebitda_pct;type:decimal(8,2);default:0"`

	StockUnits     float64 `gorm:"column:stock_units;type:decimal(15,2);default:0"`
	StockValue     float64 `gorm:"column:stock_value;type:decimal(15,2);default:0"`
	OverstockUnits float64 `gorm:"column:overstock_units;type:decimal(15,2);default:0"`
	OverstockValue float64 `gorm:"column:overstock_value;type:decimal(15,2);default:0"`

	MetricsUpdatedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Excluded reports whether the brand carries the stock-only exclusion tag.
func (b Brand) Excluded() bool { return b.Group == BrandGroupStock }
