package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerline/brandboard/internal/domain"
)

type BrandRepo struct{ db *gorm.DB }

func NewBrandRepo(db *gorm.DB) *BrandRepo { return &BrandRepo{db: db} }

func (r *BrandRepo) Save(ctx context.Context, b *domain.Brand) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BrandRepo) FindByName(ctx context.Context, name string) (*domain.Brand, error) {
	var b domain.Brand
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BrandRepo) GetOrCreate(ctx context.Context, name, group string) (*domain.Brand, error) {
	b, err := r.FindByName(ctx, name)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	b = &domain.Brand{ID: uuid.New(), Name: name, Group: group}
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BrandRepo) List(ctx context.Context) ([]domain.Brand, error) {
	var brands []domain.Brand
	if err := r.db.WithContext(ctx).Order("name asc").Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *BrandRepo) UpdateTrailing(ctx context.Context, id uuid.UUID, months int, tm domain.TrailingMetrics) error {
	now := time.Now().UTC()
	cols := map[string]any{"metrics_updated_at": &now}
	switch months {
	case 3:
		cols["l3m_revenue"] = tm.Revenue
		cols["l3m_units"] = tm.Units
		cols["l3m_cm3"] = tm.CM3
		cols["l3m_ebitda_pct"] = tm.EBITDAPct
	case 12:
		cols["ltm_revenue"] = tm.Revenue
		cols["ltm_units"] = tm.Units
		cols["ltm_cm3"] = tm.CM3
		cols["ltm_ebitda_pct"] = tm.EBITDAPct
	default:
		return domain.ErrUnsupportedWindow
	}
	return r.db.WithContext(ctx).Model(&domain.Brand{}).Where("id = ?", id).Updates(cols).Error
}

func (r *BrandRepo) UpdateStock(ctx context.Context, id uuid.UUID, sm domain.StockMetrics) error {
	return r.db.WithContext(ctx).Model(&domain.Brand{}).Where("id = ?", id).
		Updates(map[string]any{"stock_units": sm.Units, "stock_value": sm.Value}).Error
}

func (r *BrandRepo) UpdateOverstock(ctx context.Context, id uuid.UUID, om domain.OverstockMetrics) error {
	return r.db.WithContext(ctx).Model(&domain.Brand{}).Where("id = ?", id).
		Updates(map[string]any{"overstock_units": om.Units, "overstock_value": om.Value}).Error
}
