package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ledgerline/brandboard/internal/domain"
)

// Financials imports fact rows from the wide financial export: two header
// rows (a metric band over a month band), then one row per product and
// marketplace with the leading columns product id, brand, marketplace and
// status followed by one value cell per (metric, month) column.
type Financials struct {
	Products domain.ProductRepo
	Brands   domain.BrandRepo
	Facts    domain.FactRepo
}

type ImportReport struct {
	Source   string
	Imported int
	Rejected int
}

// factColumn binds one grid column to its canonical metric and month.
type factColumn struct {
	index  int
	metric domain.Metric
	month  time.Time
}

func (imp *Financials) Import(ctx context.Context, path string) (*ImportReport, error) {
	grid, err := readGrid(path)
	if err != nil {
		return nil, err
	}
	if len(grid) < 2 {
		return nil, fmt.Errorf("%s: missing header rows", path)
	}

	source := filepath.Base(path)
	rep := &ImportReport{Source: source}
	var rejects []domain.ImportReject

	reject := func(line int, raw []string, reason string) {
		rejects = append(rejects, domain.ImportReject{
			Source: source,
			Line:   line,
			Reason: reason,
			Raw:    strings.Join(raw, ";"),
		})
		rep.Rejected++
	}

	metricBand, header := grid[0], grid[1]

	// The header row leads with blank cells; data columns start at the
	// first populated one.
	dataStart := -1
	for i := range header.fields {
		if field(header.fields, i) != "" {
			dataStart = i
			break
		}
	}
	if dataStart < 0 {
		return nil, fmt.Errorf("%s: empty header row", path)
	}
	productCol, brandCol, mpCol, statusCol := dataStart, dataStart+1, dataStart+2, dataStart+3

	// Walk the band: a metric cell applies to every month column until
	// the next metric cell. Unknown metric names poison their whole band
	// and are quarantined once.
	var columns []factColumn
	var currentMetric domain.Metric
	currentKnown := false
	rejectedMetrics := map[string]bool{}
	for i := dataStart + 4; i < len(metricBand.fields); i++ {
		if raw := field(metricBand.fields, i); raw != "" {
			currentMetric, currentKnown = domain.CanonicalMetric(raw)
			if !currentKnown && !rejectedMetrics[raw] {
				rejectedMetrics[raw] = true
				reject(metricBand.line, []string{raw}, fmt.Sprintf("unknown metric %q", raw))
			}
		}
		monthCell := field(header.fields, i)
		if monthCell == "" || !currentKnown {
			continue
		}
		m, err := parseBandMonth(monthCell)
		if err != nil {
			reject(header.line, []string{monthCell}, err.Error())
			continue
		}
		columns = append(columns, factColumn{index: i, metric: currentMetric, month: m})
	}

	var facts []domain.FactRow
	for _, rec := range grid[2:] {
		sku := field(rec.fields, productCol)
		if sku == "" {
			continue
		}
		brandName := field(rec.fields, brandCol)
		if brandName == "" {
			reject(rec.line, rec.fields, "missing brand")
			continue
		}
		marketplace, err := domain.ParseMarketplace(field(rec.fields, mpCol))
		if err != nil {
			reject(rec.line, rec.fields, err.Error())
			continue
		}
		status := field(rec.fields, statusCol)

		brand, err := imp.Brands.GetOrCreate(ctx, brandName, "")
		if err != nil {
			return rep, fmt.Errorf("brand %s: %w", brandName, err)
		}
		product, err := imp.Products.GetOrCreate(ctx, "ASIN-"+sku, sku, &brand.ID, status)
		if err != nil {
			return rep, fmt.Errorf("product %s: %w", sku, err)
		}

		for _, col := range columns {
			cell := field(rec.fields, col.index)
			if blankValue(cell) {
				continue
			}
			value, err := parseMoney(cell)
			if err != nil {
				reject(rec.line, []string{cell}, fmt.Sprintf("unparseable value %q", cell))
				continue
			}
			facts = append(facts, domain.FactRow{
				ProductID:   product.ID,
				Metric:      string(col.metric),
				Marketplace: string(marketplace),
				Month:       col.month,
				Value:       value,
			})
			rep.Imported++
		}
	}

	if err := imp.Facts.BulkInsert(ctx, facts); err != nil {
		return rep, fmt.Errorf("insert facts: %w", err)
	}
	if err := imp.Facts.Quarantine(ctx, rejects); err != nil {
		return rep, fmt.Errorf("quarantine rejects: %w", err)
	}

	log.Info().
		Str("source", source).
		Int("imported", rep.Imported).
		Int("rejected", rep.Rejected).
		Msg("financials imported")
	return rep, nil
}
