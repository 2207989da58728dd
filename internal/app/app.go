package app

import (
	"gorm.io/gorm"

	"github.com/ledgerline/brandboard/internal/adapters/importer"
	"github.com/ledgerline/brandboard/internal/adapters/repo/postgres"
	"github.com/ledgerline/brandboard/internal/domain"
	"github.com/ledgerline/brandboard/internal/usecase"
)

type App struct {
	DB *gorm.DB

	AggregationUC *usecase.AggregationUC
	MetricsUC     *usecase.MetricsUC
	SeasonalityUC *usecase.SeasonalityUC
	ForecastUC    *usecase.ForecastUC
	OverstockUC   *usecase.OverstockUC
	CatalogUC     *usecase.CatalogUC

	FinancialsImporter *importer.Financials
	StockImporter      *importer.Stock
}

func NewApp(db *gorm.DB) (*App, error) {
	prodRepo := postgres.NewProductRepo(db)
	brandRepo := postgres.NewBrandRepo(db)
	catRepo := postgres.NewCategoryRepo(db)
	factRepo := postgres.NewFinancialRepo(db)
	summaryRepo := postgres.NewSummaryRepo(db)
	stockRepo := postgres.NewStockRepo(db)
	forecastRepo := postgres.NewForecastRepo(db)
	curveRepo := postgres.NewSeasonalityRepo(db)
	locker := postgres.NewAdvisoryLocker(db)

	app := &App{DB: db}
	app.AggregationUC = &usecase.AggregationUC{Summaries: summaryRepo, Locks: locker}
	app.MetricsUC = &usecase.MetricsUC{
		Products:  prodRepo,
		Brands:    brandRepo,
		Summaries: summaryRepo,
		Facts:     factRepo,
		Stocks:    stockRepo,
		Locks:     locker,
	}
	app.SeasonalityUC = &usecase.SeasonalityUC{Curves: curveRepo, Facts: factRepo, Locks: locker}
	app.ForecastUC = &usecase.ForecastUC{
		Products:  prodRepo,
		Curves:    curveRepo,
		Facts:     factRepo,
		Forecasts: forecastRepo,
		Locks:     locker,
	}
	app.OverstockUC = &usecase.OverstockUC{
		Products:  prodRepo,
		Brands:    brandRepo,
		Facts:     factRepo,
		Forecasts: forecastRepo,
		Locks:     locker,
	}
	app.CatalogUC = &usecase.CatalogUC{Products: prodRepo, Brands: brandRepo, Categories: catRepo}

	app.FinancialsImporter = &importer.Financials{Products: prodRepo, Brands: brandRepo, Facts: factRepo}
	app.StockImporter = &importer.Stock{Products: prodRepo, Stocks: stockRepo, Facts: factRepo}

	return app, nil
}

func (a *App) Migrate() error {
	if err := a.DB.AutoMigrate(
		&domain.Category{}, &domain.Brand{}, &domain.Product{},
		&domain.FactRow{}, &domain.ImportReject{},
		&domain.Location{}, &domain.StockRow{},
		&domain.Seasonality{},
		&domain.ProductForecast{}, &domain.BrandForecast{},
		&domain.RefreshState{},
	); err != nil {
		return err
	}

	// The summary tables are created here rather than by AutoMigrate so
	// their DDL is byte-identical to the shadow tables the rebuild swaps
	// in. The rebuild renames the live table away, so it has to exist
	// before the first run.
	summaryDDL := []string{
		`CREATE TABLE IF NOT EXISTS summary_product_monthly (
	product_id uuid NOT NULL,
	brand_id uuid NOT NULL,
	category_id uuid,
	marketplace varchar(10) NOT NULL,
	metric varchar(100) NOT NULL,
	month date NOT NULL,
	total_value decimal(18,2) NOT NULL,
	PRIMARY KEY (product_id, marketplace, metric, month)
)`,
		`CREATE TABLE IF NOT EXISTS summary_brand_monthly (
	brand_id uuid NOT NULL,
	category_id uuid,
	marketplace varchar(10) NOT NULL,
	metric varchar(100) NOT NULL,
	month date NOT NULL,
	total_value decimal(18,2) NOT NULL,
	product_count bigint NOT NULL DEFAULT 0,
	PRIMARY KEY (brand_id, marketplace, metric, month)
)`,
		`CREATE TABLE IF NOT EXISTS summary_category_monthly (
	category_id uuid NOT NULL,
	metric varchar(100) NOT NULL,
	month date NOT NULL,
	total_value decimal(18,2) NOT NULL,
	brand_count bigint NOT NULL DEFAULT 0,
	product_count bigint NOT NULL DEFAULT 0,
	PRIMARY KEY (category_id, metric, month)
)`,
	}
	for _, ddl := range summaryDDL {
		if err := a.DB.Exec(ddl).Error; err != nil {
			return err
		}
	}

	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_sum_product_brand ON summary_product_monthly (brand_id)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_sum_product_month ON summary_product_monthly (month)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_sum_brand_category ON summary_brand_monthly (category_id)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_sum_brand_month ON summary_brand_monthly (month)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_sum_category_month ON summary_category_monthly (month)").Error

	return nil
}
