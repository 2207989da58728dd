package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerline/brandboard/internal/domain"
)

type ForecastRepo struct{ db *gorm.DB }

func NewForecastRepo(db *gorm.DB) *ForecastRepo { return &ForecastRepo{db: db} }

// ReplaceProductForecasts swaps the whole product forecast set in one
// transaction. Forecasts are regenerated from scratch each run, so stale
// rows for products that lost their curve must not survive.
func (r *ForecastRepo) ReplaceProductForecasts(ctx context.Context, rows []domain.ProductForecast) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.ProductForecast{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return err
		}
		n = int64(len(rows))
		return nil
	})
	return n, err
}

// RebuildBrandForecasts derives brand rows by summing product forecasts
// per brand, metric and month.
func (r *ForecastRepo) RebuildBrandForecasts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.BrandForecast{}).Error; err != nil {
			return err
		}
		res := tx.Exec(`INSERT INTO forecast_brands (brand_id, metric, month, value)
SELECT p.brand_id, fp.metric, fp.month, SUM(fp.value)
FROM forecast_products fp
INNER JOIN products p ON p.id = fp.product_id
WHERE p.brand_id IS NOT NULL
GROUP BY p.brand_id, fp.metric, fp.month`)
		if res.Error != nil {
			return res.Error
		}
		n = res.RowsAffected
		return nil
	})
	return n, err
}

func (r *ForecastRepo) ProductUnits(ctx context.Context, months []time.Time) (map[uuid.UUID]float64, error) {
	if len(months) == 0 {
		return map[uuid.UUID]float64{}, nil
	}
	var rows []struct {
		ProductID uuid.UUID
		Total     float64
	}
	err := r.db.WithContext(ctx).Model(&domain.ProductForecast{}).
		Select("product_id, SUM(value) AS total").
		Where("metric = ?", string(domain.MetricNetUnits)).
		Where("month IN ?", months).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]float64, len(rows))
	for _, row := range rows {
		out[row.ProductID] = row.Total
	}
	return out, nil
}

func (r *ForecastRepo) BrandUnits(ctx context.Context, months []time.Time) (map[uuid.UUID]float64, error) {
	if len(months) == 0 {
		return map[uuid.UUID]float64{}, nil
	}
	var rows []struct {
		BrandID uuid.UUID
		Total   float64
	}
	err := r.db.WithContext(ctx).Model(&domain.BrandForecast{}).
		Select("brand_id, SUM(value) AS total").
		Where("metric = ?", string(domain.MetricNetUnits)).
		Where("month IN ?", months).
		Group("brand_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]float64, len(rows))
	for _, row := range rows {
		out[row.BrandID] = row.Total
	}
	return out, nil
}
