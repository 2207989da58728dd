package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/brandboard/internal/domain"
	"github.com/ledgerline/brandboard/internal/usecase"
)

type metricProducts struct {
	domain.ProductRepo
	items    []domain.Product
	trailing map[uuid.UUID]domain.TrailingMetrics
	sums     map[uuid.UUID]domain.TrailingMetrics
}

func (f *metricProducts) List(context.Context) ([]domain.Product, error) { return f.items, nil }

func (f *metricProducts) UpdateTrailing(_ context.Context, id uuid.UUID, _ int, tm domain.TrailingMetrics) error {
	f.trailing[id] = tm
	return nil
}

func (f *metricProducts) TrailingSumsByBrand(context.Context, int) (map[uuid.UUID]domain.TrailingMetrics, error) {
	return f.sums, nil
}

type metricBrands struct {
	domain.BrandRepo
	items    []domain.Brand
	trailing map[uuid.UUID]domain.TrailingMetrics
}

func (f *metricBrands) List(context.Context) ([]domain.Brand, error) { return f.items, nil }

func (f *metricBrands) UpdateTrailing(_ context.Context, id uuid.UUID, _ int, tm domain.TrailingMetrics) error {
	f.trailing[id] = tm
	return nil
}

type metricSummaries struct {
	domain.SummaryRepo
	totals map[uuid.UUID]domain.MetricTotals
}

func (f *metricSummaries) TrailingByProduct(context.Context, domain.Window) (map[uuid.UUID]domain.MetricTotals, error) {
	return f.totals, nil
}

type heldLocker struct{}

func (heldLocker) Acquire(context.Context, string) (func(), error) {
	return nil, domain.ErrJobRunning
}

func TestComputeTrailingRejectsOddWindows(t *testing.T) {
	uc := &usecase.MetricsUC{Locks: stubLocker{}}
	for _, months := range []int{0, 1, 6, 24, -3} {
		if _, err := uc.ComputeTrailing(context.Background(), months, time.Time{}); !errors.Is(err, domain.ErrUnsupportedWindow) {
			t.Errorf("months=%d: got %v", months, err)
		}
	}
}

func TestComputeTrailingRespectsJobLock(t *testing.T) {
	uc := &usecase.MetricsUC{Locks: heldLocker{}}
	if _, err := uc.ComputeTrailing(context.Background(), 12, time.Time{}); !errors.Is(err, domain.ErrJobRunning) {
		t.Errorf("got %v", err)
	}
}

func TestComputeTrailingTalliesBrandlessProducts(t *testing.T) {
	brand := domain.Brand{ID: uuid.New(), Name: "Alpha"}
	branded := domain.Product{ID: uuid.New(), Code: "B300BRND", BrandID: &brand.ID}
	orphan := domain.Product{ID: uuid.New(), Code: "B301ORPH"}

	products := &metricProducts{
		items:    []domain.Product{branded, orphan},
		trailing: map[uuid.UUID]domain.TrailingMetrics{},
		sums: map[uuid.UUID]domain.TrailingMetrics{
			brand.ID: {Revenue: 900, Units: 90, CM3: 225, EBITDAPct: 25},
		},
	}
	brands := &metricBrands{
		items:    []domain.Brand{brand},
		trailing: map[uuid.UUID]domain.TrailingMetrics{},
	}
	uc := &usecase.MetricsUC{
		Products: products,
		Brands:   brands,
		Summaries: &metricSummaries{totals: map[uuid.UUID]domain.MetricTotals{
			branded.ID: {Revenue: 900, Units: 90, CM3: 225},
			orphan.ID:  {Revenue: 100, Units: 10, CM3: 25},
		}},
		Locks: stubLocker{},
	}

	rep, err := uc.ComputeTrailing(context.Background(), 3, month(2025, time.September))
	if err != nil {
		t.Fatal(err)
	}
	if rep.ProductsUpdated != 2 || rep.BrandsUpdated != 1 || rep.Skipped != 0 {
		t.Fatalf("report: %+v", rep)
	}
	// The brandless product still gets its own columns but never feeds a
	// brand, and the run reports it.
	if rep.Orphans != 1 {
		t.Errorf("orphans = %d, want 1", rep.Orphans)
	}
	if tm := products.trailing[orphan.ID]; tm.Revenue != 100 || tm.Units != 10 {
		t.Errorf("orphan trailing = %+v", tm)
	}
	if tm := brands.trailing[brand.ID]; tm.Revenue != 900 {
		t.Errorf("brand trailing = %+v; orphan totals must not propagate", tm)
	}
}
