package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is the leaf entity of the hierarchy, identified by its external
// ASIN code. The trailing-window and stock fields are derived: the metric
// jobs own them, nothing else writes them.
type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Code        string     `gorm:"size:50;uniqueIndex"`
	SKU         string     `gorm:"size:100;index"`
	Title       string     `gorm:"size:255"`
	BrandID     *uuid.UUID `gorm:"type:uuid;index"`
	Status      string     `gorm:"size:50"`
	EOL         bool       `gorm:"column:eol;default:false;index"`
	Seasonality string     `gorm:"size:100;index"`

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

// TrailingMetrics is one window's worth of derived financials.
type TrailingMetrics struct {
	Revenue   float64
	Units     float64
	CM3       float64
	EBITDAPct float64
}

// EBITDAPct computes CM3 over revenue as a percentage. Zero revenue yields
// exactly 0, never an error or NaN: a revenue-less period reports 0% margin.
func EBITDAPct(cm3, revenue float64) float64 {
	if revenue > 0 {
		return cm3 / revenue * 100
	}
	return 0
}

type StockMetrics struct {
	Units float64
	Value float64
}

type OverstockMetrics struct {
	Units float64
	Value float64
}

// Overstock applies the floor and the average-cost proxy: units over the
// forecast horizon are valued at stock_value/stock_units.
func Overstock(stock StockMetrics, forecastUnits float64) OverstockMetrics {
	units := stock.Units - forecastUnits
	if units < 0 {
		units = 0
	}
	var value float64
	if units > 0 && stock.Units > 0 && stock.Value > 0 {
		value = units * (stock.Value / stock.Units)
	}
	return OverstockMetrics{Units: units, Value: value}
}
