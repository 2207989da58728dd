package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ledgerline/brandboard/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Save(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProductRepo) FindByCode(ctx context.Context, code string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := r.db.WithContext(ctx).Order("code asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepo) GetOrCreate(ctx context.Context, code, sku string, brandID *uuid.UUID, status string) (*domain.Product, error) {
	p, err := r.FindByCode(ctx, code)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	p = &domain.Product{
		ID:      uuid.New(),
		Code:    code,
		SKU:     sku,
		BrandID: brandID,
		Status:  status,
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepo) UpdateTrailing(ctx context.Context, id uuid.UUID, months int, tm domain.TrailingMetrics) error {
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
	return r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(cols).Error
}

func (r *ProductRepo) UpdateStock(ctx context.Context, id uuid.UUID, sm domain.StockMetrics) error {
	return r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).
		Updates(map[string]any{"stock_units": sm.Units, "stock_value": sm.Value}).Error
}

func (r *ProductRepo) UpdateOverstock(ctx context.Context, id uuid.UUID, om domain.OverstockMetrics) error {
	return r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).
		Updates(map[string]any{"overstock_units": om.Units, "overstock_value": om.Value}).Error
}

// TrailingSumsByBrand sums the already-finalized product window columns per
// brand, so brand figures always equal the sum of their products'.
func (r *ProductRepo) TrailingSumsByBrand(ctx context.Context, months int) (map[uuid.UUID]domain.TrailingMetrics, error) {
	var sel string
	switch months {
	case 3:
		sel = "brand_id, SUM(l3m_revenue) AS revenue, SUM(l3m_units) AS units, SUM(l3m_cm3) AS cm3"
	case 12:
		sel = "brand_id, SUM(ltm_revenue) AS revenue, SUM(ltm_units) AS units, SUM(ltm_cm3) AS cm3"
	default:
		return nil, domain.ErrUnsupportedWindow
	}
	var rows []struct {
		BrandID uuid.UUID
		Revenue float64
		Units   float64
		CM3     float64
	}
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Select(sel).
		Where("brand_id IS NOT NULL").
		Group("brand_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]domain.TrailingMetrics, len(rows))
	for _, row := range rows {
		out[row.BrandID] = domain.TrailingMetrics{
			Revenue:   row.Revenue,
			Units:     row.Units,
			CM3:       row.CM3,
			EBITDAPct: domain.EBITDAPct(row.CM3, row.Revenue),
		}
	}
	return out, nil
}

func (r *ProductRepo) StockSumsByBrand(ctx context.Context) (map[uuid.UUID]domain.StockMetrics, error) {
	var rows []struct {
		BrandID uuid.UUID
		Units   float64
		Value   float64
	}
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Select("brand_id, SUM(stock_units) AS units, SUM(stock_value) AS value").
		Where("brand_id IS NOT NULL").
		Group("brand_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]domain.StockMetrics, len(rows))
	for _, row := range rows {
		out[row.BrandID] = domain.StockMetrics{Units: row.Units, Value: row.Value}
	}
	return out, nil
}

func (r *ProductRepo) ReassignBrand(ctx context.Context, from, to uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("brand_id = ?", from).
		Update("brand_id", to)
	return res.RowsAffected, res.Error
}

// DeleteCascade removes a product together with its fact, stock and
// forecast rows. Summary rows are left to the next rebuild.
func (r *ProductRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.FactRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.StockRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductForecast{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Product{}).Error
	})
}
