package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ProductRepo interface {
	Save(ctx context.Context, p *Product) error
	FindByCode(ctx context.Context, code string) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	GetOrCreate(ctx context.Context, code, sku string, brandID *uuid.UUID, status string) (*Product, error)
	UpdateTrailing(ctx context.Context, id uuid.UUID, months int, tm TrailingMetrics) error
	UpdateStock(ctx context.Context, id uuid.UUID, sm StockMetrics) error
	UpdateOverstock(ctx context.Context, id uuid.UUID, om OverstockMetrics) error
	TrailingSumsByBrand(ctx context.Context, months int) (map[uuid.UUID]TrailingMetrics, error)
	StockSumsByBrand(ctx context.Context) (map[uuid.UUID]StockMetrics, error)
	ReassignBrand(ctx context.Context, from, to uuid.UUID) (int64, error)
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type BrandRepo interface {
	Save(ctx context.Context, b *Brand) error
	FindByName(ctx context.Context, name string) (*Brand, error)
	GetOrCreate(ctx context.Context, name, group string) (*Brand, error)
	List(ctx context.Context) ([]Brand, error)
	UpdateTrailing(ctx context.Context, id uuid.UUID, months int, tm TrailingMetrics) error
	UpdateStock(ctx context.Context, id uuid.UUID, sm StockMetrics) error
	UpdateOverstock(ctx context.Context, id uuid.UUID, om OverstockMetrics) error
}

type CategoryRepo interface {
	GetOrCreate(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
}

type FactRepo interface {
	BulkInsert(ctx context.Context, rows []FactRow) error
	LatestMonth(ctx context.Context) (time.Time, error)
	// MonthlyUnitsByCurve sums Net units per calendar month over [from, to]
	// for non-EOL products assigned to the named curve.
	MonthlyUnitsByCurve(ctx context.Context, curve string, from, to time.Time) (map[time.Month]float64, error)
	Quarantine(ctx context.Context, rejects []ImportReject) error
}

type SummaryRepo interface {
	RebuildLevel1(ctx context.Context) (int64, error)
	RebuildLevel2(ctx context.Context) (int64, error)
	RebuildLevel3(ctx context.Context) (int64, error)
	// TrailingByProduct sums Level-1 values per product across marketplaces
	// for the window, keyed case-insensitively on the derived-metric names.
	TrailingByProduct(ctx context.Context, w Window) (map[uuid.UUID]MetricTotals, error)
	States(ctx context.Context) ([]RefreshState, error)
}

type StockRepo interface {
	Upsert(ctx context.Context, rows []StockRow) error
	WindowTotals(ctx context.Context, w Window) (map[uuid.UUID]StockMetrics, error)
	GetOrCreateLocation(ctx context.Context, name string) (*Location, error)
}

type ForecastRepo interface {
	ReplaceProductForecasts(ctx context.Context, rows []ProductForecast) (int64, error)
	RebuildBrandForecasts(ctx context.Context) (int64, error)
	ProductUnits(ctx context.Context, months []time.Time) (map[uuid.UUID]float64, error)
	BrandUnits(ctx context.Context, months []time.Time) (map[uuid.UUID]float64, error)
}

type SeasonalityRepo interface {
	List(ctx context.Context) ([]Seasonality, error)
	FindByName(ctx context.Context, name string) (*Seasonality, error)
	Save(ctx context.Context, s *Seasonality) error
}

// JobLocker serialises batch jobs. Acquire returns ErrJobRunning when the
// named job is already held elsewhere; the returned func releases the lock.
type JobLocker interface {
	Acquire(ctx context.Context, job string) (func(), error)
}
