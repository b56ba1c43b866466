package stats

import (
	"context"
	"time"

	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/store"
)

// Input is everything a report is computed from.
type Input struct {
	Games       []model.Game
	Filter      model.Filter
	Previous    *Snapshot
	Reference   time.Time
	CurveWindow int
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Games       []model.Game
	Stats       Stats
	Comparison  Comparison
	Leaves      []LeaveStats
	Balls       []EquipmentStats
	Patterns    []EquipmentStats
	CurveWindow int
}

// LoadInput reads the games selected by cfg and the latest stored baseline.
func LoadInput(ctx context.Context, st *store.Store, cfg model.StatsConfig, now time.Time) (Input, error) {
	games, err := st.ListGames(ctx, cfg.Filter)
	if err != nil {
		return Input{}, err
	}
	in := Input{Games: games, Filter: cfg.Filter, Reference: now, CurveWindow: cfg.CurveWindow}
	base, ok, err := st.LatestSnapshot(ctx)
	if err != nil {
		return Input{}, err
	}
	if ok {
		snap := SnapshotFromBaseline(base)
		in.Previous = &snap
	}
	return in, nil
}

// Compute derives every statistic of a report. It does no I/O.
func Compute(in Input) Report {
	games := ApplyFilter(in.Games, in.Filter)
	cmp := ComparePeriods(games, in.Previous, in.Reference)
	return Report{
		Games:       games,
		Stats:       cmp.Current,
		Comparison:  cmp,
		Leaves:      CalculateAllLeaves(games),
		Balls:       CalculateBallStats(games),
		Patterns:    CalculatePatternStats(games),
		CurveWindow: in.CurveWindow,
	}
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	in, err := LoadInput(ctx, st, cfg, time.Now())
	if err != nil {
		return Report{}, err
	}
	return Compute(in), nil
}
