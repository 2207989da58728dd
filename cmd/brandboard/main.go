package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ledgerline/brandboard/internal/app"
	"github.com/ledgerline/brandboard/internal/domain"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitPartial = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	if len(os.Args) < 2 {
		usage()
		return exitFailure
	}
	cmd, args := os.Args[1], os.Args[2:]

	db, err := gorm.Open(postgres.Open(dsnFromEnv()), &gorm.Config{})
	if err != nil {
		zlog.Error().Err(err).Msg("database connection failed")
		return exitFailure
	}

	application, err := app.NewApp(db)
	if err != nil {
		zlog.Error().Err(err).Msg("app init failed")
		return exitFailure
	}
	if err := application.Migrate(); err != nil {
		zlog.Error().Err(err).Msg("migration failed")
		return exitFailure
	}

	ctx := context.Background()

	switch cmd {
	case "rebuild-summaries":
		return rebuildSummaries(ctx, application)
	case "compute-metrics":
		return computeMetrics(ctx, application, args)
	case "compute-seasonality":
		return computeSeasonality(ctx, application, args)
	case "compute-forecast":
		return computeForecast(ctx, application, args)
	case "compute-overstock":
		return computeOverstock(ctx, application, args)
	case "import-financials":
		return importFinancials(ctx, application, args)
	case "import-stock":
		return importStock(ctx, application, args)
	case "merge-brands":
		return mergeBrands(ctx, application, args)
	case "assign-category":
		return assignCategory(ctx, application, args)
	case "delete-product":
		return deleteProduct(ctx, application, args)
	case "run-all":
		return runAll(ctx, application, args)
	case "summary-status":
		return summaryStatus(ctx, application)
	default:
		usage()
		return exitFailure
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: brandboard <command> [flags]

commands:
  rebuild-summaries                 rebuild the three summary levels
  compute-metrics    -months N      compute trailing metrics (3 or 12)
  compute-seasonality [-year Y]     recompute seasonality curve factors
  compute-forecast   [-anchor M]    generate the 12-month forecast
  compute-overstock  [-anchor M]    compute overstock vs 6-month demand
  import-financials  <file>         import fact rows from CSV/XLSX
  import-stock       [-month M] <file>  import a monthly stock snapshot
  merge-brands       -from A -to B  reassign all products between brands
  assign-category    -brand B -category C  place a brand under a category
  delete-product     <asin>         delete a product and dependent rows
  run-all            [-anchor M]    full chain: rebuild, metrics, seasonality, forecast, overstock
  summary-status                    show last rebuild time per summary level

anchor months are given as YYYY-MM`)
}

func dsnFromEnv() string {
	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) != "" {
		return dsn
	}
	host := envOr("DB_HOST", "localhost")
	port := envOr("DB_PORT", "5432")
	user := os.Getenv("DB_USER")
	if user == "" {
		user = envOr("POSTGRES_USER", "postgres")
	}
	pass := os.Getenv("DB_PASSWORD")
	if pass == "" {
		pass = envOr("POSTGRES_PASSWORD", "postgres")
	}
	name := os.Getenv("DB_NAME")
	if name == "" {
		name = envOr("POSTGRES_DB", "brandboard")
	}
	ssl := envOr("DB_SSLMODE", "disable")
	return "host=" + host + " user=" + user + " password=" + pass + " dbname=" + name + " port=" + port + " sslmode=" + ssl
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseAnchor(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("month must be given as YYYY-MM: %w", err)
	}
	return t, nil
}

func fail(err error, msg string) int {
	if errors.Is(err, domain.ErrJobRunning) {
		zlog.Error().Msg("another run holds the job lock, nothing done")
		return exitFailure
	}
	zlog.Error().Err(err).Msg(msg)
	return exitFailure
}

func rebuildSummaries(ctx context.Context, a *app.App) int {
	rep, err := a.AggregationUC.Rebuild(ctx)
	if err != nil {
		return fail(err, "rebuild failed")
	}
	zlog.Info().
		Int64("level1", rep.Level1Rows).
		Int64("level2", rep.Level2Rows).
		Int64("level3", rep.Level3Rows).
		Dur("elapsed", rep.Elapsed).
		Msg("summaries rebuilt")
	return exitOK
}

func computeMetrics(ctx context.Context, a *app.App, args []string) int {
	fs := flag.NewFlagSet("compute-metrics", flag.ExitOnError)
	months := fs.Int("months", 12, "window length in months (3 or 12)")
	anchorStr := fs.String("anchor", "", "anchor month YYYY-MM (default latest fact month)")
	_ = fs.Parse(args)

	anchor, err := parseAnchor(*anchorStr)
	if err != nil {
		zlog.Error().Err(err).Msg("bad flags")
		return exitFailure
	}
	rep, err := a.MetricsUC.ComputeTrailing(ctx, *months, anchor)
	if err != nil {
		return fail(err, "metrics computation failed")
	}
	if rep.Skipped > 0 {
		return exitPartial
	}
	return exitOK
}

func computeSeasonality(ctx context.Context, a *app.App, args []string) int {
	fs := flag.NewFlagSet("compute-seasonality", flag.ExitOnError)
	year := fs.Int("year", 0, "baseline calendar year (default: year before latest fact month)")
	_ = fs.Parse(args)

	rep, err := a.SeasonalityUC.ComputeFactors(ctx, *year)
	if err != nil {
		return fail(err, "seasonality computation failed")
	}
	if rep.Invalid > 0 {
		return exitPartial
	}
	return exitOK
}

func computeForecast(ctx context.Context, a *app.App, args []string) int {
	fs := flag.NewFlagSet("compute-forecast", flag.ExitOnError)
	anchorStr := fs.String("anchor", "", "anchor month YYYY-MM (default latest fact month)")
	_ = fs.Parse(args)

	anchor, err := parseAnchor(*anchorStr)
	if err != nil {
		zlog.Error().Err(err).Msg("bad flags")
		return exitFailure
	}
	rep, err := a.ForecastUC.Generate(ctx, anchor)
	if err != nil {
		return fail(err, "forecast generation failed")
	}
	if rep.NoCurve > 0 || rep.NoBase > 0 {
		return exitPartial
	}
	return exitOK
}

func computeOverstock(ctx context.Context, a *app.App, args []string) int {
	fs := flag.NewFlagSet("compute-overstock", flag.ExitOnError)
	anchorStr := fs.String("anchor", "", "anchor month YYYY-MM (default latest fact month)")
	_ = fs.Parse(args)

	anchor, err := parseAnchor(*anchorStr)
	if err != nil {
		zlog.Error().Err(err).Msg("bad flags")
		return exitFailure
	}
	rep, err := a.OverstockUC.Compute(ctx, anchor)
	if err != nil {
		return fail(err, "overstock computation failed")
	}
	if rep.Skipped > 0 {
		return exitPartial
	}
	return exitOK
}

func importFinancials(ctx context.Context, a *app.App, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: brandboard import-financials <file>")
		return exitFailure
	}
	rep, err := a.FinancialsImporter.Import(ctx, args[0])
	if err != nil {
		return fail(err, "import failed")
	}
	if rep.Rejected > 0 {
		return exitPartial
	}
	return exitOK
}

func importStock(ctx context.Context, a *app.App, args []string) int {
	fs := flag.NewFlagSet("import-stock", flag.ExitOnError)
	monthStr := fs.String("month", "", "snapshot month YYYY-MM (default current month)")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: brandboard import-stock [-month YYYY-MM] <file>")
		return exitFailure
	}
	month, err := parseAnchor(*monthStr)
	if err != nil {
		zlog.Error().Err(err).Msg("bad flags")
		return exitFailure
	}
	rep, err := a.StockImporter.Import(ctx, fs.Arg(0), month)
	if err != nil {
		return fail(err, "import failed")
	}
	if rep.Rejected > 0 {
		return exitPartial
	}
	return exitOK
}

func mergeBrands(ctx context.Context, a *app.App, args []string) int {
	fs := flag.NewFlagSet("merge-brands", flag.ExitOnError)
	from := fs.String("from", "", "brand to empty")
	to := fs.String("to", "", "brand to receive the products")
	_ = fs.Parse(args)

	if *from == "" || *to == "" {
		fmt.Fprintln(os.Stderr, "usage: brandboard merge-brands -from A -to B")
		return exitFailure
	}
	if _, err := a.CatalogUC.MergeBrands(ctx, *from, *to); err != nil {
		return fail(err, "merge failed")
	}
	return exitOK
}

func assignCategory(ctx context.Context, a *app.App, args []string) int {
	fs := flag.NewFlagSet("assign-category", flag.ExitOnError)
	brand := fs.String("brand", "", "brand name")
	category := fs.String("category", "", "category name")
	_ = fs.Parse(args)

	if *brand == "" || *category == "" {
		fmt.Fprintln(os.Stderr, "usage: brandboard assign-category -brand B -category C")
		return exitFailure
	}
	if err := a.CatalogUC.AssignCategory(ctx, *brand, *category); err != nil {
		return fail(err, "category assignment failed")
	}
	return exitOK
}

func deleteProduct(ctx context.Context, a *app.App, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: brandboard delete-product <asin>")
		return exitFailure
	}
	if err := a.CatalogUC.RemoveProduct(ctx, args[0]); err != nil {
		return fail(err, "delete failed")
	}
	zlog.Info().Str("code", args[0]).Msg("product deleted")
	return exitOK
}

// runAll chains the batch jobs in dependency order: summaries feed the
// metrics, metrics feed the forecast, the forecast feeds overstock. The
// chain stops on the first hard failure; per-entity skips downgrade the
// exit code to partial but do not stop later stages.
func runAll(ctx context.Context, a *app.App, args []string) int {
	fs := flag.NewFlagSet("run-all", flag.ExitOnError)
	anchorStr := fs.String("anchor", "", "anchor month YYYY-MM (default latest fact month)")
	_ = fs.Parse(args)

	anchor, err := parseAnchor(*anchorStr)
	if err != nil {
		zlog.Error().Err(err).Msg("bad flags")
		return exitFailure
	}

	partial := false

	if _, err := a.AggregationUC.Rebuild(ctx); err != nil {
		return fail(err, "rebuild failed")
	}
	for _, months := range []int{12, 3} {
		rep, err := a.MetricsUC.ComputeTrailing(ctx, months, anchor)
		if err != nil {
			return fail(err, "metrics computation failed")
		}
		partial = partial || rep.Skipped > 0
	}
	srep, err := a.SeasonalityUC.ComputeFactors(ctx, 0)
	if err != nil {
		return fail(err, "seasonality computation failed")
	}
	partial = partial || srep.Invalid > 0

	frep, err := a.ForecastUC.Generate(ctx, anchor)
	if err != nil {
		return fail(err, "forecast generation failed")
	}
	partial = partial || frep.NoCurve > 0 || frep.NoBase > 0

	orep, err := a.OverstockUC.Compute(ctx, anchor)
	if err != nil {
		return fail(err, "overstock computation failed")
	}
	partial = partial || orep.Skipped > 0

	if partial {
		return exitPartial
	}
	return exitOK
}

func summaryStatus(ctx context.Context, a *app.App) int {
	states, err := a.AggregationUC.Status(ctx)
	if err != nil {
		return fail(err, "status query failed")
	}
	if len(states) == 0 {
		fmt.Println("no rebuild recorded yet")
		return exitOK
	}
	for _, s := range states {
		fmt.Printf("%-28s %10d rows   %s\n", s.Name, s.Rows, s.RefreshedAt.Format(time.RFC3339))
	}
	return exitOK
}
