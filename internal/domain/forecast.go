package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProductForecast projects one metric for one product one month into the
// forecast horizon. EOL products get explicit zero rows; products without a
// usable seasonality curve get no rows at all, so "cannot forecast" stays
// distinguishable from "forecasts to zero".
type ProductForecast struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ProductID uuid.UUID `gorm:"type:uuid;index:idx_fcast_product_key,unique,priority:1"`
	Metric    string    `gorm:"size:100;index:idx_fcast_product_key,unique,priority:2"`
	Month     time.Time `gorm:"type:date;index:idx_fcast_product_key,unique,priority:3"`
	Value     float64   `gorm:"type:decimal(15,2)"`
}

func (ProductForecast) TableName() string { return "forecast_products" }

type BrandForecast struct {
	ID      int64     `gorm:"primaryKey;autoIncrement"`
	BrandID uuid.UUID `gorm:"type:uuid;index:idx_fcast_brand_key,unique,priority:1"`
	Metric  string    `gorm:"size:100;index:idx_fcast_brand_key,unique,priority:2"`
	Month   time.Time `gorm:"type:date;index:idx_fcast_brand_key,unique,priority:3"`
	Value   float64   `gorm:"type:decimal(15,2)"`
}

func (BrandForecast) TableName() string { return "forecast_brands" }
