package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/brandboard/internal/adapters/repo/postgres"
	"github.com/ledgerline/brandboard/internal/domain"
)

func rebuildAll(t *testing.T, repo *postgres.SummaryRepo) (l1, l2, l3 int64) {
	t.Helper()
	ctx := context.Background()
	var err error
	if l1, err = repo.RebuildLevel1(ctx); err != nil {
		t.Fatalf("level 1: %v", err)
	}
	if l2, err = repo.RebuildLevel2(ctx); err != nil {
		t.Fatalf("level 2: %v", err)
	}
	if l3, err = repo.RebuildLevel3(ctx); err != nil {
		t.Fatalf("level 3: %v", err)
	}
	return l1, l2, l3
}

func TestRebuildAggregatesThreeLevels(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewSummaryRepo(db)

	catID := uuid.New()
	mustCreate(t, db, &domain.Category{ID: catID, Name: "Toys"})

	brandA := newBrand(t, db, "Alpha", &catID, "")
	brandB := newBrand(t, db, "Beta", &catID, "")
	p1 := newProduct(t, db, "B001AAAA", &brandA.ID)
	p2 := newProduct(t, db, "B002BBBB", &brandA.ID)
	p3 := newProduct(t, db, "B003CCCC", &brandB.ID)

	jan := month(2025, time.January)

	// p1 sells in two marketplaces, two fact rows per key to prove the
	// level-1 SUM.
	newFact(t, db, p1.ID, "US", "Net revenue", jan, 100)
	newFact(t, db, p1.ID, "US", "Net revenue", jan, 50)
	newFact(t, db, p1.ID, "DE", "Net revenue", jan, 70)
	newFact(t, db, p2.ID, "US", "Net revenue", jan, 30)
	newFact(t, db, p3.ID, "US", "Net revenue", jan, 500)

	rebuildAll(t, repo)

	// Level 1: one row per (product, marketplace, metric, month).
	var l1 []domain.ProductSummary
	if err := db.Find(&l1).Error; err != nil {
		t.Fatal(err)
	}
	if len(l1) != 4 {
		t.Fatalf("level-1 rows = %d, want 4", len(l1))
	}
	var p1us domain.ProductSummary
	if err := db.Where("product_id = ? AND marketplace = ?", p1.ID, "US").First(&p1us).Error; err != nil {
		t.Fatal(err)
	}
	if p1us.TotalValue != 150 {
		t.Errorf("p1 US total = %v, want 150", p1us.TotalValue)
	}
	if p1us.BrandID != brandA.ID || p1us.CategoryID == nil || *p1us.CategoryID != catID {
		t.Errorf("denormalised parents wrong: %+v", p1us)
	}

	// Level 2: Alpha has per-marketplace rows plus an ALL row equal to
	// their sum, with a distinct product count.
	var alphaAll domain.BrandSummary
	if err := db.Where("brand_id = ? AND marketplace = ?", brandA.ID, "ALL").First(&alphaAll).Error; err != nil {
		t.Fatal(err)
	}
	if alphaAll.TotalValue != 250 {
		t.Errorf("Alpha ALL total = %v, want 250", alphaAll.TotalValue)
	}
	if alphaAll.ProductCount != 2 {
		t.Errorf("Alpha ALL product count = %d, want 2", alphaAll.ProductCount)
	}
	var alphaUS domain.BrandSummary
	if err := db.Where("brand_id = ? AND marketplace = ?", brandA.ID, "US").First(&alphaUS).Error; err != nil {
		t.Fatal(err)
	}
	if alphaUS.TotalValue != 180 {
		t.Errorf("Alpha US total = %v, want 180", alphaUS.TotalValue)
	}

	// Level 3 reads only ALL rows: category total is 250 + 500, counting
	// two brands and three products, with no marketplace double count.
	var l3 domain.CategorySummary
	if err := db.Where("category_id = ?", catID).First(&l3).Error; err != nil {
		t.Fatal(err)
	}
	if l3.TotalValue != 750 {
		t.Errorf("category total = %v, want 750", l3.TotalValue)
	}
	if l3.BrandCount != 2 || l3.ProductCount != 3 {
		t.Errorf("category counts = %d brands, %d products", l3.BrandCount, l3.ProductCount)
	}
}

func TestRebuildExcludesStockBrandsAndOrphans(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewSummaryRepo(db)

	brand := newBrand(t, db, "Kept", nil, "")
	stockBrand := newBrand(t, db, "Stock Stuff", nil, domain.BrandGroupStock)
	kept := newProduct(t, db, "B010KEPT", &brand.ID)
	excluded := newProduct(t, db, "B011STCK", &stockBrand.ID)
	orphan := newProduct(t, db, "B012ORPH", nil)

	jan := month(2025, time.January)
	newFact(t, db, kept.ID, "US", "Net revenue", jan, 100)
	newFact(t, db, excluded.ID, "US", "Net revenue", jan, 999)
	newFact(t, db, orphan.ID, "US", "Net revenue", jan, 888)

	l1, _, _ := rebuildAll(t, repo)
	if l1 != 1 {
		t.Fatalf("level-1 rows = %d, want 1", l1)
	}

	var count int64
	db.Model(&domain.ProductSummary{}).Where("product_id = ?", excluded.ID).Count(&count)
	if count != 0 {
		t.Error("stock-group brand leaked into level 1")
	}
	db.Model(&domain.ProductSummary{}).Where("product_id = ?", orphan.ID).Count(&count)
	if count != 0 {
		t.Error("brandless product leaked into level 1")
	}
}

func TestRebuildBrandWithoutCategoryStopsAtLevel2(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewSummaryRepo(db)

	brand := newBrand(t, db, "Uncategorised", nil, "")
	p := newProduct(t, db, "B020NCAT", &brand.ID)
	newFact(t, db, p.ID, "US", "Net revenue", month(2025, time.January), 100)

	_, l2, l3 := rebuildAll(t, repo)
	if l2 != 2 { // per-marketplace row + ALL row
		t.Errorf("level-2 rows = %d, want 2", l2)
	}
	if l3 != 0 {
		t.Errorf("level-3 rows = %d, want 0", l3)
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewSummaryRepo(db)

	brand := newBrand(t, db, "Alpha", nil, "")
	p := newProduct(t, db, "B030IDEM", &brand.ID)
	for i := 0; i < 3; i++ {
		newFact(t, db, p.ID, "US", "Net revenue", month(2025, time.Month(i+1)), 100)
	}

	a1, a2, a3 := rebuildAll(t, repo)
	b1, b2, b3 := rebuildAll(t, repo)
	if a1 != b1 || a2 != b2 || a3 != b3 {
		t.Errorf("second rebuild changed row counts: (%d,%d,%d) vs (%d,%d,%d)", a1, a2, a3, b1, b2, b3)
	}

	var total float64
	db.Model(&domain.ProductSummary{}).Select("COALESCE(SUM(total_value), 0)").Scan(&total)
	if total != 300 {
		t.Errorf("level-1 grand total = %v, want 300 (no double counting)", total)
	}

	states, err := repo.States(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 3 {
		t.Fatalf("states = %d, want 3", len(states))
	}
}

func TestTrailingByProduct(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewSummaryRepo(db)

	brand := newBrand(t, db, "Alpha", nil, "")
	p := newProduct(t, db, "B040TRLG", &brand.ID)

	// Three months of revenue/units/CM3 inside the window, one month
	// outside it, and legacy lowercase metric spellings.
	for i, m := range []time.Time{month(2025, time.April), month(2025, time.May), month(2025, time.June)} {
		newFact(t, db, p.ID, "US", "Net revenue", m, 100)
		newFact(t, db, p.ID, "DE", "net revenue", m, 100)
		newFact(t, db, p.ID, "US", "Net units", m, 20)
		newFact(t, db, p.ID, "US", "CM3", m, float64(10*(i+1)))
	}
	newFact(t, db, p.ID, "US", "Net revenue", month(2025, time.March), 9999)
	newFact(t, db, p.ID, "US", "Ad spend", month(2025, time.May), 5000)

	rebuildAll(t, repo)

	totals, err := repo.TrailingByProduct(context.Background(), domain.NewWindow(month(2025, time.June), 3))
	if err != nil {
		t.Fatal(err)
	}
	got := totals[p.ID]
	if got.Revenue != 600 {
		t.Errorf("revenue = %v, want 600", got.Revenue)
	}
	if got.Units != 60 {
		t.Errorf("units = %v, want 60", got.Units)
	}
	if got.CM3 != 60 {
		t.Errorf("cm3 = %v, want 60", got.CM3)
	}
}
