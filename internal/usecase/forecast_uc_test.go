package usecase_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/brandboard/internal/domain"
	"github.com/ledgerline/brandboard/internal/usecase"
)

type stubLocker struct{}

func (stubLocker) Acquire(context.Context, string) (func(), error) { return func() {}, nil }

type fakeProducts struct {
	domain.ProductRepo
	items []domain.Product
}

func (f *fakeProducts) List(context.Context) ([]domain.Product, error) { return f.items, nil }

type fakeCurves struct {
	domain.SeasonalityRepo
	items []domain.Seasonality
}

func (f *fakeCurves) List(context.Context) ([]domain.Seasonality, error) { return f.items, nil }

type fakeFacts struct {
	domain.FactRepo
	latest time.Time
}

func (f *fakeFacts) LatestMonth(context.Context) (time.Time, error) { return f.latest, nil }

type fakeForecasts struct {
	domain.ForecastRepo
	rows       []domain.ProductForecast
	brandBuilt bool
}

func (f *fakeForecasts) ReplaceProductForecasts(_ context.Context, rows []domain.ProductForecast) (int64, error) {
	f.rows = rows
	return int64(len(rows)), nil
}

func (f *fakeForecasts) RebuildBrandForecasts(context.Context) (int64, error) {
	f.brandBuilt = true
	return 0, nil
}

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func findRow(rows []domain.ProductForecast, productID uuid.UUID, metric string, m time.Time) (float64, bool) {
	for _, r := range rows {
		if r.ProductID == productID && r.Metric == metric && r.Month.Equal(m) {
			return r.Value, true
		}
	}
	return 0, false
}

func TestForecastGenerate(t *testing.T) {
	var curve domain.Seasonality
	curve.Name = "toys"
	curve.SetFactors([12]float64{0.05, 0.045, 0.06, 0.09, 0.12, 0.15, 0.17, 0.14, 0.09, 0.04, 0.013, 0.012})
	curve.Valid = true

	var invalid domain.Seasonality
	invalid.Name = "broken"

	selling := domain.Product{
		ID: uuid.New(), Code: "B200SELL", Seasonality: "toys",
		L3MUnits: 2700, L3MRevenue: 27000,
	}
	eol := domain.Product{
		ID: uuid.New(), Code: "B201DEAD", Seasonality: "toys", EOL: true,
	}
	noCurve := domain.Product{ID: uuid.New(), Code: "B202NONE"}
	badCurve := domain.Product{ID: uuid.New(), Code: "B203BRKN", Seasonality: "broken", L3MUnits: 10}

	forecasts := &fakeForecasts{}
	uc := &usecase.ForecastUC{
		Products:  &fakeProducts{items: []domain.Product{selling, eol, noCurve, badCurve}},
		Curves:    &fakeCurves{items: []domain.Seasonality{curve, invalid}},
		Facts:     &fakeFacts{latest: month(2025, time.September)},
		Forecasts: forecasts,
		Locks:     stubLocker{},
	}

	rep, err := uc.Generate(context.Background(), time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Forecast != 1 || rep.EndOfLife != 1 || rep.NoCurve != 2 {
		t.Fatalf("report: %+v", rep)
	}
	if !forecasts.brandBuilt {
		t.Error("brand roll-up not rebuilt")
	}

	// Jul+Aug+Sep factors sum to 0.40, annualising 2700 units to 6750;
	// November carries 1.3% of that at an ASP of 10.
	units, ok := findRow(forecasts.rows, selling.ID, string(domain.MetricNetUnits), month(2025, time.November))
	if !ok {
		t.Fatal("no November unit forecast")
	}
	if math.Abs(units-87.75) > 1e-9 {
		t.Errorf("November units = %v, want 87.75", units)
	}
	revenue, _ := findRow(forecasts.rows, selling.ID, string(domain.MetricNetRevenue), month(2025, time.November))
	if math.Abs(revenue-877.5) > 1e-9 {
		t.Errorf("November revenue = %v, want 877.5", revenue)
	}
	janUnits, _ := findRow(forecasts.rows, selling.ID, string(domain.MetricNetUnits), month(2026, time.January))
	if math.Abs(janUnits-337.5) > 1e-9 {
		t.Errorf("January units = %v, want 337.5", janUnits)
	}

	// The horizon starts right after the anchor and covers 12 months.
	if _, ok := findRow(forecasts.rows, selling.ID, string(domain.MetricNetUnits), month(2025, time.September)); ok {
		t.Error("anchor month itself must not be forecast")
	}
	if _, ok := findRow(forecasts.rows, selling.ID, string(domain.MetricNetUnits), month(2026, time.September)); !ok {
		t.Error("12th horizon month missing")
	}

	// EOL products get explicit zeros; curveless ones get nothing.
	if v, ok := findRow(forecasts.rows, eol.ID, string(domain.MetricNetUnits), month(2026, time.March)); !ok || v != 0 {
		t.Errorf("eol row = %v, %v; want explicit 0", v, ok)
	}
	for _, r := range forecasts.rows {
		if r.ProductID == noCurve.ID || r.ProductID == badCurve.ID {
			t.Fatalf("unexpected forecast row for skipped product: %+v", r)
		}
	}
}

func TestForecastPriceFallsBackToTrailingYear(t *testing.T) {
	var curve domain.Seasonality
	curve.Name = "flat"
	f := [12]float64{}
	for i := range f {
		f[i] = 1.0 / 12
	}
	curve.SetFactors(f)
	curve.Valid = true

	// Units sold in the last quarter but revenue only recorded over the
	// longer window: price comes from the 12-month figures.
	p := domain.Product{
		ID: uuid.New(), Code: "B210FALL", Seasonality: "flat",
		L3MUnits: 120, L3MRevenue: 0,
		LTMUnits: 480, LTMRevenue: 2400,
	}

	forecasts := &fakeForecasts{}
	uc := &usecase.ForecastUC{
		Products:  &fakeProducts{items: []domain.Product{p}},
		Curves:    &fakeCurves{items: []domain.Seasonality{curve}},
		Facts:     &fakeFacts{latest: month(2025, time.June)},
		Forecasts: forecasts,
		Locks:     stubLocker{},
	}
	if _, err := uc.Generate(context.Background(), time.Time{}); err != nil {
		t.Fatal(err)
	}

	// 120 units over a 0.25 base annualises to 480; 40 a month at the
	// 5.00 trailing-year price.
	units, _ := findRow(forecasts.rows, p.ID, string(domain.MetricNetUnits), month(2025, time.July))
	if math.Abs(units-40) > 1e-9 {
		t.Errorf("units = %v, want 40", units)
	}
	revenue, _ := findRow(forecasts.rows, p.ID, string(domain.MetricNetRevenue), month(2025, time.July))
	if math.Abs(revenue-200) > 1e-9 {
		t.Errorf("revenue = %v, want 200", revenue)
	}
}
