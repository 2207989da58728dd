package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ledgerline/brandboard/internal/domain"
)

// SummaryRepo rebuilds the three summary levels. Each level is built into a
// freshly created shadow table with a single INSERT ... SELECT, then swapped
// in under the live name, so readers either see the previous rebuild or the
// new one, never an empty or half-written table. The SQL is kept free of
// server-side date functions so the same statements run under Postgres and
// the SQLite test database.
type SummaryRepo struct{ db *gorm.DB }

func NewSummaryRepo(db *gorm.DB) *SummaryRepo { return &SummaryRepo{db: db} }

const (
	level1Table = "summary_product_monthly"
	level2Table = "summary_brand_monthly"
	level3Table = "summary_category_monthly"
)

const level1ShadowDDL = `CREATE TABLE summary_product_monthly_shadow (
	product_id uuid NOT NULL,
	brand_id uuid NOT NULL,
	category_id uuid,
	marketplace varchar(10) NOT NULL,
	metric varchar(100) NOT NULL,
	month date NOT NULL,
	total_value decimal(18,2) NOT NULL,
	PRIMARY KEY (product_id, marketplace, metric, month)
)`

// Level 1 reads the raw fact store, the only level that does. Products
// whose brand carries the stock-only group tag are dropped here, and a
// fact row whose product or brand reference does not resolve never joins
// through. No row is emitted for a key with no source rows.
const level1InsertSQL = `INSERT INTO summary_product_monthly_shadow
	(product_id, brand_id, category_id, marketplace, metric, month, total_value)
SELECT
	f.product_id,
	p.brand_id,
	b.category_id,
	f.marketplace,
	f.metric,
	f.month,
	SUM(f.value)
FROM financials f
INNER JOIN products p ON p.id = f.product_id
INNER JOIN brands b ON b.id = p.brand_id
WHERE (b.group_tag IS NULL OR b.group_tag <> 'stock')
GROUP BY f.product_id, p.brand_id, b.category_id, f.marketplace, f.metric, f.month`

const level2ShadowDDL = `CREATE TABLE summary_brand_monthly_shadow (
	brand_id uuid NOT NULL,
	category_id uuid,
	marketplace varchar(10) NOT NULL,
	metric varchar(100) NOT NULL,
	month date NOT NULL,
	total_value decimal(18,2) NOT NULL,
	product_count bigint NOT NULL DEFAULT 0,
	PRIMARY KEY (brand_id, marketplace, metric, month)
)`

// Level 2 reads Level 1 only: per-marketplace rows first, then the
// cross-marketplace roll-up under the ALL sentinel into the same table.
const level2PerMarketplaceSQL = `INSERT INTO summary_brand_monthly_shadow
	(brand_id, category_id, marketplace, metric, month, total_value, product_count)
SELECT
	brand_id,
	category_id,
	marketplace,
	metric,
	month,
	SUM(total_value),
	COUNT(DISTINCT product_id)
FROM summary_product_monthly
GROUP BY brand_id, category_id, marketplace, metric, month`

const level2AllSQL = `INSERT INTO summary_brand_monthly_shadow
	(brand_id, category_id, marketplace, metric, month, total_value, product_count)
SELECT
	brand_id,
	category_id,
	'ALL',
	metric,
	month,
	SUM(total_value),
	COUNT(DISTINCT product_id)
FROM summary_product_monthly
GROUP BY brand_id, category_id, metric, month`

const level3ShadowDDL = `CREATE TABLE summary_category_monthly_shadow (
	category_id uuid NOT NULL,
	metric varchar(100) NOT NULL,
	month date NOT NULL,
	total_value decimal(18,2) NOT NULL,
	brand_count bigint NOT NULL DEFAULT 0,
	product_count bigint NOT NULL DEFAULT 0,
	PRIMARY KEY (category_id, metric, month)
)`

// Level 3 reads only Level-2 ALL rows; summing per-marketplace rows here
// would double count every marketplace. The product count is summed from
// Level 2 instead of re-derived from Level 1.
const level3InsertSQL = `INSERT INTO summary_category_monthly_shadow
	(category_id, metric, month, total_value, brand_count, product_count)
SELECT
	category_id,
	metric,
	month,
	SUM(total_value),
	COUNT(DISTINCT brand_id),
	SUM(product_count)
FROM summary_brand_monthly
WHERE marketplace = 'ALL' AND category_id IS NOT NULL
GROUP BY category_id, metric, month`

var summaryPostIndexes = map[string][]string{
	level1Table: {
		"CREATE INDEX IF NOT EXISTS idx_sum_product_brand ON summary_product_monthly (brand_id)",
		"CREATE INDEX IF NOT EXISTS idx_sum_product_month ON summary_product_monthly (month)",
	},
	level2Table: {
		"CREATE INDEX IF NOT EXISTS idx_sum_brand_category ON summary_brand_monthly (category_id)",
		"CREATE INDEX IF NOT EXISTS idx_sum_brand_month ON summary_brand_monthly (month)",
	},
	level3Table: {
		"CREATE INDEX IF NOT EXISTS idx_sum_category_month ON summary_category_monthly (month)",
	},
}

func (r *SummaryRepo) RebuildLevel1(ctx context.Context) (int64, error) {
	return r.rebuild(ctx, level1Table, level1ShadowDDL, []string{level1InsertSQL})
}

func (r *SummaryRepo) RebuildLevel2(ctx context.Context) (int64, error) {
	return r.rebuild(ctx, level2Table, level2ShadowDDL, []string{level2PerMarketplaceSQL, level2AllSQL})
}

func (r *SummaryRepo) RebuildLevel3(ctx context.Context) (int64, error) {
	return r.rebuild(ctx, level3Table, level3ShadowDDL, []string{level3InsertSQL})
}

func (r *SummaryRepo) rebuild(ctx context.Context, live, shadowDDL string, inserts []string) (int64, error) {
	db := r.db.WithContext(ctx)
	shadow := live + "_shadow"
	old := live + "_old"

	for _, t := range []string{shadow, old} {
		if err := db.Exec("DROP TABLE IF EXISTS " + t).Error; err != nil {
			return 0, fmt.Errorf("drop %s: %w", t, err)
		}
	}
	if err := db.Exec(shadowDDL).Error; err != nil {
		return 0, fmt.Errorf("create %s: %w", shadow, err)
	}

	var total int64
	for _, stmt := range inserts {
		res := db.Exec(stmt)
		if res.Error != nil {
			return 0, fmt.Errorf("build %s: %w", shadow, res.Error)
		}
		total += res.RowsAffected
	}

	// The swap is the commit barrier: until it succeeds, readers keep
	// seeing the previous rebuild.
	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("ALTER TABLE " + live + " RENAME TO " + old).Error; err != nil {
			return err
		}
		return tx.Exec("ALTER TABLE " + shadow + " RENAME TO " + live).Error
	}); err != nil {
		return 0, fmt.Errorf("swap %s: %w", live, err)
	}
	if err := db.Exec("DROP TABLE IF EXISTS " + old).Error; err != nil {
		return 0, fmt.Errorf("drop %s: %w", old, err)
	}
	for _, stmt := range summaryPostIndexes[live] {
		if err := db.Exec(stmt).Error; err != nil {
			return 0, fmt.Errorf("index %s: %w", live, err)
		}
	}

	state := domain.RefreshState{Name: live, RefreshedAt: time.Now().UTC(), Rows: total}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(&state).Error; err != nil {
		return 0, fmt.Errorf("refresh state %s: %w", live, err)
	}
	return total, nil
}

// TrailingByProduct sums Level-1 values per product across marketplaces for
// the window. Metric matching is case-insensitive: legacy fact rows predate
// metric canonicalisation.
func (r *SummaryRepo) TrailingByProduct(ctx context.Context, w domain.Window) (map[uuid.UUID]domain.MetricTotals, error) {
	var rows []struct {
		ProductID uuid.UUID
		Metric    string
		Total     float64
	}
	err := r.db.WithContext(ctx).
		Table(level1Table).
		Select("product_id, LOWER(metric) AS metric, SUM(total_value) AS total").
		Where("month BETWEEN ? AND ?", w.Start(), w.End()).
		Where("LOWER(metric) IN ?", []string{"net revenue", "net units", "cm3"}).
		Group("product_id, LOWER(metric)").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]domain.MetricTotals, len(rows))
	for _, row := range rows {
		t := out[row.ProductID]
		switch strings.ToLower(row.Metric) {
		case "net revenue":
			t.Revenue = row.Total
		case "net units":
			t.Units = row.Total
		case "cm3":
			t.CM3 = row.Total
		}
		out[row.ProductID] = t
	}
	return out, nil
}

func (r *SummaryRepo) States(ctx context.Context) ([]domain.RefreshState, error) {
	var states []domain.RefreshState
	if err := r.db.WithContext(ctx).Order("name asc").Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}
