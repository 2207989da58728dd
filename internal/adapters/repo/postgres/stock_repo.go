package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ledgerline/brandboard/internal/domain"
)

type StockRepo struct{ db *gorm.DB }

func NewStockRepo(db *gorm.DB) *StockRepo { return &StockRepo{db: db} }

func (r *StockRepo) Upsert(ctx context.Context, rows []domain.StockRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "product_id"}, {Name: "location_id"}, {Name: "month"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "cogs", "value"}),
	}).CreateInBatches(rows, 500).Error
}

// WindowTotals sums stock quantity and value per product across all
// locations for the window months.
func (r *StockRepo) WindowTotals(ctx context.Context, w domain.Window) (map[uuid.UUID]domain.StockMetrics, error) {
	var rows []struct {
		ProductID uuid.UUID
		Units     float64
		Value     float64
	}
	err := r.db.WithContext(ctx).Model(&domain.StockRow{}).
		Select("product_id, SUM(quantity) AS units, SUM(value) AS value").
		Where("month BETWEEN ? AND ?", w.Start(), w.End()).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]domain.StockMetrics, len(rows))
	for _, row := range rows {
		out[row.ProductID] = domain.StockMetrics{Units: row.Units, Value: row.Value}
	}
	return out, nil
}

func (r *StockRepo) GetOrCreateLocation(ctx context.Context, name string) (*domain.Location, error) {
	var loc domain.Location
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&loc).Error
	if err == nil {
		return &loc, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	loc = domain.Location{ID: uuid.New(), Name: name}
	if err := r.db.WithContext(ctx).Create(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}
