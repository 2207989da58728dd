package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ledgerline/brandboard/internal/domain"
)

const jobComputeOverstock = "compute_overstock"

// OverstockUC flags stock on hand exceeding the next six months of
// forecast demand. It reads the stock columns the metrics job wrote and
// the forecast rows the forecast job wrote, so it runs last in the chain.
//
// Brand overstock is computed from the brand's own stock and demand
// aggregates, not by summing product overstock. The two disagree whenever
// a shortfall on one product offsets excess on another; the aggregate form
// is the one reported.
type OverstockUC struct {
	Products  domain.ProductRepo
	Brands    domain.BrandRepo
	Facts     domain.FactRepo
	Forecasts domain.ForecastRepo
	Locks     domain.JobLocker
}

type OverstockReport struct {
	Anchor          time.Time
	ProductsUpdated int
	BrandsUpdated   int
	Skipped         int
}

func (uc *OverstockUC) Compute(ctx context.Context, anchor time.Time) (*OverstockReport, error) {
	release, err := uc.Locks.Acquire(ctx, jobComputeOverstock)
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
	months := domain.NewWindow(anchor, 1).Following(6)

	productDemand, err := uc.Forecasts.ProductUnits(ctx, months)
	if err != nil {
		return nil, fmt.Errorf("product forecast demand: %w", err)
	}
	brandDemand, err := uc.Forecasts.BrandUnits(ctx, months)
	if err != nil {
		return nil, fmt.Errorf("brand forecast demand: %w", err)
	}

	products, err := uc.Products.List(ctx)
	if err != nil {
		return nil, err
	}

	rep := &OverstockReport{Anchor: anchor}
	for i := range products {
		p := &products[i]
		om := domain.Overstock(domain.StockMetrics{Units: p.StockUnits, Value: p.StockValue}, productDemand[p.ID])
		if err := uc.Products.UpdateOverstock(ctx, p.ID, om); err != nil {
			log.Warn().Err(err).Str("code", p.Code).Msg("product overstock update failed")
			rep.Skipped++
			continue
		}
		rep.ProductsUpdated++
	}

	brands, err := uc.Brands.List(ctx)
	if err != nil {
		return rep, err
	}
	for i := range brands {
		b := &brands[i]
		om := domain.Overstock(domain.StockMetrics{Units: b.StockUnits, Value: b.StockValue}, brandDemand[b.ID])
		if err := uc.Brands.UpdateOverstock(ctx, b.ID, om); err != nil {
			log.Warn().Err(err).Str("brand", b.Name).Msg("brand overstock update failed")
			rep.Skipped++
			continue
		}
		rep.BrandsUpdated++
	}

	log.Info().
		Time("anchor", anchor).
		Int("products", rep.ProductsUpdated).
		Int("brands", rep.BrandsUpdated).
		Int("skipped", rep.Skipped).
		Msg("overstock computed")
	return rep, nil
}
