package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ledgerline/brandboard/internal/domain"
)

const jobComputeSeasonality = "compute_seasonality"

// SeasonalityUC recomputes curve factors from a full baseline year of net
// unit sales. Each factor is the month's share of the year total, so a
// curve's factors sum to 1 by construction; curves whose baseline year has
// no sales are flagged invalid instead of being given flat factors.
type SeasonalityUC struct {
	Curves domain.SeasonalityRepo
	Facts  domain.FactRepo
	Locks  domain.JobLocker
}

type SeasonalityReport struct {
	Year      int
	Computed  int
	Invalid   int
	Unchanged int
}

// ComputeFactors rebuilds every curve from the given baseline year. A zero
// year means the year before the latest fact month, the most recent
// complete year the data can be expected to cover.
func (uc *SeasonalityUC) ComputeFactors(ctx context.Context, year int) (*SeasonalityReport, error) {
	release, err := uc.Locks.Acquire(ctx, jobComputeSeasonality)
	if err != nil {
		return nil, err
	}
	defer release()

	if year == 0 {
		anchor, err := uc.Facts.LatestMonth(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve baseline year: %w", err)
		}
		year = anchor.Year() - 1
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 1, 0, 0, 0, 0, time.UTC)

	curves, err := uc.Curves.List(ctx)
	if err != nil {
		return nil, err
	}

	rep := &SeasonalityReport{Year: year}
	now := time.Now().UTC()
	for i := range curves {
		c := &curves[i]
		units, err := uc.Facts.MonthlyUnitsByCurve(ctx, c.Name, from, to)
		if err != nil {
			return rep, fmt.Errorf("curve %s: %w", c.Name, err)
		}

		var total float64
		var months [12]float64
		for m := time.January; m <= time.December; m++ {
			months[m-1] = units[m]
			total += units[m]
		}
		if total <= 0 {
			if c.Valid {
				c.Valid = false
				c.ComputedAt = &now
				if err := uc.Curves.Save(ctx, c); err != nil {
					return rep, err
				}
			}
			log.Warn().Str("curve", c.Name).Int("year", year).Msg("no baseline sales, curve invalid")
			rep.Invalid++
			continue
		}

		var factors [12]float64
		for m := range months {
			factors[m] = months[m] / total
		}
		if c.Valid && factors == c.Factors() {
			rep.Unchanged++
			continue
		}
		c.SetFactors(factors)
		c.Valid = c.ValidFactors()
		c.ComputedAt = &now
		if err := uc.Curves.Save(ctx, c); err != nil {
			return rep, err
		}
		rep.Computed++
	}

	log.Info().
		Int("year", year).
		Int("computed", rep.Computed).
		Int("invalid", rep.Invalid).
		Int("unchanged", rep.Unchanged).
		Msg("seasonality factors computed")
	return rep, nil
}
