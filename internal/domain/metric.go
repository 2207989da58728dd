package domain

import "strings"

// Metric is the closed set of fact metrics the pipeline understands.
// Fact rows ingested through the importer always carry one of these
// canonical spellings; rows written by legacy importers may still carry
// arbitrary casing, so every read path matches case-insensitively.
type Metric string

const (
	MetricNetRevenue Metric = "Net revenue"
	MetricNetUnits   Metric = "Net units"
	MetricCM1        Metric = "CM1"
	MetricCM2        Metric = "CM2"
	MetricCM3        Metric = "CM3"
	MetricCOGS       Metric = "COGS"
	MetricAdSpend    Metric = "Ad spend"
)

var knownMetrics = map[string]Metric{
	"net revenue": MetricNetRevenue,
	"net units":   MetricNetUnits,
	"cm1":         MetricCM1,
	"cm2":         MetricCM2,
	"cm3":         MetricCM3,
	"cogs":        MetricCOGS,
	"ad spend":    MetricAdSpend,
}

// CanonicalMetric resolves a free-text metric name to its canonical form.
func CanonicalMetric(s string) (Metric, bool) {
	m, ok := knownMetrics[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}

func (m Metric) String() string { return string(m) }

// Matches compares a stored metric string against m ignoring case.
func (m Metric) Matches(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), string(m))
}

// Marketplace is a marketplace partition code ("US", "DE", ...). The
// cross-marketplace roll-up rows in the brand summary carry the explicit
// MarketplaceAll value; it is reserved and never accepted as an input code.
type Marketplace string

const MarketplaceAll Marketplace = "ALL"

func (m Marketplace) IsAll() bool { return strings.EqualFold(string(m), string(MarketplaceAll)) }

// ParseMarketplace validates an imported marketplace code.
func ParseMarketplace(s string) (Marketplace, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if code == "" {
		return "", ErrEmptyMarketplace
	}
	if Marketplace(code).IsAll() {
		return "", ErrReservedMarketplace
	}
	return Marketplace(code), nil
}
