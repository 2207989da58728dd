package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ledgerline/brandboard/internal/domain"
)

// Stock imports one month's stock snapshot from the warehouse export with
// the columns product_id;location;quantity;cogs;value;asin;brand. The
// month is not in the file and must be supplied by the caller. Rows are
// matched to the catalog by SKU first, then by ASIN; unmatched rows are
// quarantined, stock never creates catalog entries.
type Stock struct {
	Products domain.ProductRepo
	Stocks   domain.StockRepo
	Facts    domain.FactRepo
}

func (imp *Stock) Import(ctx context.Context, path string, snapshot time.Time) (*ImportReport, error) {
	grid, err := readGrid(path)
	if err != nil {
		return nil, err
	}
	if snapshot.IsZero() {
		snapshot = time.Now().UTC()
	}
	month := domain.FirstOfMonth(snapshot)

	source := filepath.Base(path)
	rep := &ImportReport{Source: source}
	var rows []domain.StockRow
	var rejects []domain.ImportReject

	reject := func(rec record, reason string) {
		rejects = append(rejects, domain.ImportReject{
			Source: source,
			Line:   rec.line,
			Reason: reason,
			Raw:    strings.Join(rec.fields, ";"),
		})
		rep.Rejected++
	}

	for _, rec := range grid {
		if rec.line == 1 { // header
			continue
		}
		sku := field(rec.fields, 0)
		locName := field(rec.fields, 1)
		asin := field(rec.fields, 5)
		if sku == "" && asin == "" {
			continue
		}
		if locName == "" {
			reject(rec, "missing location")
			continue
		}

		product, err := imp.findProduct(ctx, sku, asin)
		if errors.Is(err, domain.ErrNotFound) {
			reject(rec, fmt.Sprintf("no product for sku %q / asin %q", sku, asin))
			continue
		}
		if err != nil {
			return rep, err
		}

		quantity, err := stockCell(field(rec.fields, 2))
		if err != nil {
			reject(rec, fmt.Sprintf("unparseable quantity %q", field(rec.fields, 2)))
			continue
		}
		cogs, err := stockCell(field(rec.fields, 3))
		if err != nil {
			reject(rec, fmt.Sprintf("unparseable cogs %q", field(rec.fields, 3)))
			continue
		}
		value, err := stockCell(field(rec.fields, 4))
		if err != nil {
			reject(rec, fmt.Sprintf("unparseable value %q", field(rec.fields, 4)))
			continue
		}

		loc, err := imp.Stocks.GetOrCreateLocation(ctx, locName)
		if err != nil {
			return rep, fmt.Errorf("location %s: %w", locName, err)
		}

		rows = append(rows, domain.StockRow{
			ProductID:  product.ID,
			LocationID: loc.ID,
			Month:      month,
			Quantity:   quantity,
			COGS:       cogs,
			Value:      value,
		})
		rep.Imported++
	}

	if err := imp.Stocks.Upsert(ctx, rows); err != nil {
		return rep, fmt.Errorf("upsert stock: %w", err)
	}
	if err := imp.Facts.Quarantine(ctx, rejects); err != nil {
		return rep, fmt.Errorf("quarantine rejects: %w", err)
	}

	log.Info().
		Str("source", source).
		Time("month", month).
		Int("imported", rep.Imported).
		Int("rejected", rep.Rejected).
		Msg("stock imported")
	return rep, nil
}

func (imp *Stock) findProduct(ctx context.Context, sku, asin string) (*domain.Product, error) {
	if sku != "" {
		p, err := imp.Products.FindBySKU(ctx, sku)
		if err == nil || !errors.Is(err, domain.ErrNotFound) {
			return p, err
		}
	}
	if asin != "" {
		return imp.Products.FindByCode(ctx, asin)
	}
	return nil, domain.ErrNotFound
}

// stockCell treats blank markers as zero and accepts comma decimals.
func stockCell(s string) (float64, error) {
	if blankValue(s) {
		return 0, nil
	}
	return parseDecimal(s)
}
