package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ledgerline/brandboard/internal/domain"
)

type FinancialRepo struct{ db *gorm.DB }

func NewFinancialRepo(db *gorm.DB) *FinancialRepo { return &FinancialRepo{db: db} }

func (r *FinancialRepo) BulkInsert(ctx context.Context, rows []domain.FactRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 500).Error
}

// LatestMonth returns the most recent fact month, the anchor for trailing
// windows and forecasts.
func (r *FinancialRepo) LatestMonth(ctx context.Context) (time.Time, error) {
	var row domain.FactRow
	err := r.db.WithContext(ctx).
		Order("month DESC").
		Select("month").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, domain.ErrNoData
	}
	if err != nil {
		return time.Time{}, err
	}
	return domain.FirstOfMonth(row.Month), nil
}

// MonthlyUnitsByCurve sums net units per calendar month over all non-EOL
// products assigned to the curve, within [from, to].
func (r *FinancialRepo) MonthlyUnitsByCurve(ctx context.Context, curve string, from, to time.Time) (map[time.Month]float64, error) {
	var rows []struct {
		Month time.Time
		Total float64
	}
	err := r.db.WithContext(ctx).
		Table("financials f").
		Select("f.month AS month, SUM(f.value) AS total").
		Joins("INNER JOIN products p ON p.id = f.product_id").
		Where("p.seasonality = ?", curve).
		Where("p.eol = ?", false).
		Where("LOWER(f.metric) = ?", "net units").
		Where("f.month BETWEEN ? AND ?", from, to).
		Group("f.month").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[time.Month]float64, len(rows))
	for _, row := range rows {
		out[row.Month.Month()] += row.Total
	}
	return out, nil
}

func (r *FinancialRepo) Quarantine(ctx context.Context, rejects []domain.ImportReject) error {
	if len(rejects) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(rejects, 500).Error
}
