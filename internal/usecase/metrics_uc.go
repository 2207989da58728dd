package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ledgerline/brandboard/internal/domain"
)

const jobComputeMetrics = "compute_metrics"

// MetricsUC fills the trailing-window columns on products and brands from
// the level-1 summaries. Brands are written strictly after every product,
// by summing the finalized product columns, so a brand figure always
// equals the sum of its products'.
type MetricsUC struct {
	Products  domain.ProductRepo
	Brands    domain.BrandRepo
	Summaries domain.SummaryRepo
	Facts     domain.FactRepo
	Stocks    domain.StockRepo
	Locks     domain.JobLocker
}

type MetricsReport struct {
	Window          domain.Window
	ProductsUpdated int
	BrandsUpdated   int
	Skipped         int
	// Orphans counts products whose metrics were computed but carry no
	// brand reference, so nothing propagates upward from them.
	Orphans int
}

// ComputeTrailing computes the metrics for a 3 or 12 month window ending
// at anchor. A zero anchor means the latest fact month. The 12-month run
// additionally refreshes the stock columns from the snapshots falling
// inside the window.
func (uc *MetricsUC) ComputeTrailing(ctx context.Context, months int, anchor time.Time) (*MetricsReport, error) {
	if months != 3 && months != 12 {
		return nil, domain.ErrUnsupportedWindow
	}
	release, err := uc.Locks.Acquire(ctx, jobComputeMetrics)
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
	w := domain.NewWindow(anchor, months)

	totals, err := uc.Summaries.TrailingByProduct(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("window totals: %w", err)
	}

	var stock map[uuid.UUID]domain.StockMetrics
	if months == 12 {
		stock, err = uc.Stocks.WindowTotals(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("stock totals: %w", err)
		}
	}

	products, err := uc.Products.List(ctx)
	if err != nil {
		return nil, err
	}

	rep := &MetricsReport{Window: w}
	for i := range products {
		p := &products[i]
		t := totals[p.ID] // zero totals when the product has no rows in the window
		tm := domain.TrailingMetrics{
			Revenue:   t.Revenue,
			Units:     t.Units,
			CM3:       t.CM3,
			EBITDAPct: domain.EBITDAPct(t.CM3, t.Revenue),
		}
		if err := uc.Products.UpdateTrailing(ctx, p.ID, months, tm); err != nil {
			log.Warn().Err(err).Str("code", p.Code).Msg("product metrics update failed")
			rep.Skipped++
			continue
		}
		if months == 12 {
			if err := uc.Products.UpdateStock(ctx, p.ID, stock[p.ID]); err != nil {
				log.Warn().Err(err).Str("code", p.Code).Msg("product stock update failed")
				rep.Skipped++
				continue
			}
		}
		if p.BrandID == nil {
			rep.Orphans++
		}
		rep.ProductsUpdated++
	}

	if err := uc.propagateBrands(ctx, months, rep); err != nil {
		return rep, err
	}

	if rep.Orphans > 0 {
		log.Warn().
			Int("count", rep.Orphans).
			Msg("products without a brand excluded from brand propagation")
	}
	log.Info().
		Int("months", months).
		Time("anchor", w.Anchor).
		Int("products", rep.ProductsUpdated).
		Int("brands", rep.BrandsUpdated).
		Int("skipped", rep.Skipped).
		Int("orphans", rep.Orphans).
		Msg("trailing metrics computed")
	return rep, nil
}

func (uc *MetricsUC) propagateBrands(ctx context.Context, months int, rep *MetricsReport) error {
	sums, err := uc.Products.TrailingSumsByBrand(ctx, months)
	if err != nil {
		return fmt.Errorf("brand sums: %w", err)
	}
	var stockSums map[uuid.UUID]domain.StockMetrics
	if months == 12 {
		stockSums, err = uc.Products.StockSumsByBrand(ctx)
		if err != nil {
			return fmt.Errorf("brand stock sums: %w", err)
		}
	}

	brands, err := uc.Brands.List(ctx)
	if err != nil {
		return err
	}
	for i := range brands {
		b := &brands[i]
		if err := uc.Brands.UpdateTrailing(ctx, b.ID, months, sums[b.ID]); err != nil {
			log.Warn().Err(err).Str("brand", b.Name).Msg("brand metrics update failed")
			rep.Skipped++
			continue
		}
		if months == 12 {
			if err := uc.Brands.UpdateStock(ctx, b.ID, stockSums[b.ID]); err != nil {
				log.Warn().Err(err).Str("brand", b.Name).Msg("brand stock update failed")
				rep.Skipped++
				continue
			}
		}
		rep.BrandsUpdated++
	}
	return nil
}
