package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ledgerline/brandboard/internal/domain"
)

const jobComputeForecast = "compute_forecast"

// ForecastUC projects the next 12 months of unit sales and revenue per
// product from its seasonality curve and its trailing 3-month run rate,
// then rolls the product rows up to brands. It reads the trailing columns
// the metrics job wrote, so it must run after ComputeTrailing.
type ForecastUC struct {
	Products  domain.ProductRepo
	Curves    domain.SeasonalityRepo
	Facts     domain.FactRepo
	Forecasts domain.ForecastRepo
	Locks     domain.JobLocker
}

type ForecastReport struct {
	Anchor      time.Time
	Forecast    int
	EndOfLife   int
	NoCurve     int
	NoBase      int
	ProductRows int64
	BrandRows   int64
}

func (uc *ForecastUC) Generate(ctx context.Context, anchor time.Time) (*ForecastReport, error) {
	release, err := uc.Locks.Acquire(ctx, jobComputeForecast)
	if err != nil {
		return nil, err
	}
	defer release()

	if anchor.IsZero() {
		anchor, err = uc.Facts.LatestMonth(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve anchor: %w", err)
		}
	}
	anchor = domain.FirstOfMonth(anchor)

	curves, err := uc.Curves.List(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*domain.Seasonality, len(curves))
	for i := range curves {
		byName[curves[i].Name] = &curves[i]
	}

	products, err := uc.Products.List(ctx)
	if err != nil {
		return nil, err
	}

	base := domain.NewWindow(anchor, 3)
	baseMonths := base.MonthsIn()
	horizon := base.Following(12)

	rep := &ForecastReport{Anchor: anchor}
	var rows []domain.ProductForecast
	for i := range products {
		p := &products[i]

		// Discontinued products get explicit zero rows so downstream
		// readers can tell "forecast to sell nothing" from "never
		// forecast".
		if p.EOL {
			for _, m := range horizon {
				rows = append(rows,
					domain.ProductForecast{ProductID: p.ID, Metric: string(domain.MetricNetUnits), Month: m, Value: 0},
					domain.ProductForecast{ProductID: p.ID, Metric: string(domain.MetricNetRevenue), Month: m, Value: 0},
				)
			}
			rep.EndOfLife++
			continue
		}

		curve := byName[p.Seasonality]
		if p.Seasonality == "" || curve == nil || !curve.Valid {
			log.Debug().Str("code", p.Code).Msg("no usable seasonality curve, product skipped")
			rep.NoCurve++
			continue
		}

		baseSum := curve.BaseSum(baseMonths)
		if baseSum <= 0 {
			log.Debug().Str("code", p.Code).Str("curve", curve.Name).Msg("zero base factor sum, product skipped")
			rep.NoBase++
			continue
		}

		annualized := p.L3MUnits / baseSum
		asp := unitPrice(p.L3MRevenue, p.L3MUnits)
		if asp == 0 {
			asp = unitPrice(p.LTMRevenue, p.LTMUnits)
		}

		for _, m := range horizon {
			units := curve.FactorFor(m.Month()) * annualized
			rows = append(rows,
				domain.ProductForecast{ProductID: p.ID, Metric: string(domain.MetricNetUnits), Month: m, Value: units},
				domain.ProductForecast{ProductID: p.ID, Metric: string(domain.MetricNetRevenue), Month: m, Value: units * asp},
			)
		}
		rep.Forecast++
	}

	rep.ProductRows, err = uc.Forecasts.ReplaceProductForecasts(ctx, rows)
	if err != nil {
		return rep, fmt.Errorf("replace product forecasts: %w", err)
	}
	rep.BrandRows, err = uc.Forecasts.RebuildBrandForecasts(ctx)
	if err != nil {
		return rep, fmt.Errorf("rebuild brand forecasts: %w", err)
	}

	log.Info().
		Time("anchor", anchor).
		Int("forecast", rep.Forecast).
		Int("eol", rep.EndOfLife).
		Int("no_curve", rep.NoCurve).
		Int("no_base", rep.NoBase).
		Int64("product_rows", rep.ProductRows).
		Int64("brand_rows", rep.BrandRows).
		Msg("forecast generated")
	return rep, nil
}

func unitPrice(revenue, units float64) float64 {
	if units <= 0 {
		return 0
	}
	return revenue / units
}
