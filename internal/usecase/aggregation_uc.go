package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ledgerline/brandboard/internal/domain"
)

const jobRebuildSummaries = "rebuild_summaries"

// AggregationUC rebuilds the three summary levels in strict order. Each
// level reads only the one below it (level 1 reads the raw facts), so a
// level never starts until the previous one has been swapped live.
type AggregationUC struct {
	Summaries domain.SummaryRepo
	Locks     domain.JobLocker
}

type RebuildReport struct {
	Level1Rows int64
	Level2Rows int64
	Level3Rows int64
	Elapsed    time.Duration
}

func (uc *AggregationUC) Rebuild(ctx context.Context) (*RebuildReport, error) {
	release, err := uc.Locks.Acquire(ctx, jobRebuildSummaries)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	rep := &RebuildReport{}

	rep.Level1Rows, err = uc.Summaries.RebuildLevel1(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuild level 1: %w", err)
	}
	log.Info().Int64("rows", rep.Level1Rows).Msg("product summaries rebuilt")

	rep.Level2Rows, err = uc.Summaries.RebuildLevel2(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuild level 2: %w", err)
	}
	log.Info().Int64("rows", rep.Level2Rows).Msg("brand summaries rebuilt")

	rep.Level3Rows, err = uc.Summaries.RebuildLevel3(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuild level 3: %w", err)
	}
	log.Info().Int64("rows", rep.Level3Rows).Msg("category summaries rebuilt")

	rep.Elapsed = time.Since(start)
	return rep, nil
}

func (uc *AggregationUC) Status(ctx context.Context) ([]domain.RefreshState, error) {
	return uc.Summaries.States(ctx)
}
