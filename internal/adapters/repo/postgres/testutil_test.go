package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ledgerline/brandboard/internal/app"
	"github.com/ledgerline/brandboard/internal/domain"
)

// newTestDB opens a per-test in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	// The shared-cache memory database disappears with its last
	// connection; pin a single one for the test's lifetime.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	a, err := app.NewApp(db)
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	if err := a.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// memLocker is an in-process JobLocker for tests.
type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemLocker() *memLocker { return &memLocker{held: map[string]bool{}} }

func (l *memLocker) Acquire(_ context.Context, job string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[job] {
		return nil, domain.ErrJobRunning
	}
	l.held[job] = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, job)
	}, nil
}

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func mustCreate(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

func newBrand(t *testing.T, db *gorm.DB, name string, categoryID *uuid.UUID, group string) *domain.Brand {
	t.Helper()
	b := &domain.Brand{ID: uuid.New(), Name: name, CategoryID: categoryID, Group: group}
	mustCreate(t, db, b)
	return b
}

func newProduct(t *testing.T, db *gorm.DB, code string, brandID *uuid.UUID) *domain.Product {
	t.Helper()
	p := &domain.Product{ID: uuid.New(), Code: code, Status: "active"}
	p.BrandID = brandID
	mustCreate(t, db, p)
	return p
}

func newFact(t *testing.T, db *gorm.DB, productID uuid.UUID, marketplace, metric string, m time.Time, value float64) {
	t.Helper()
	mustCreate(t, db, &domain.FactRow{
		ProductID:   productID,
		Marketplace: marketplace,
		Metric:      metric,
		Month:       m,
		Value:       value,
	})
}
