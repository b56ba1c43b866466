package stats

import (
	"time"

	"github.com/verte-zerg/tenpin/internal/model"
)

// Snapshot is a stored aggregate used as the baseline of a period comparison.
type Snapshot struct {
	TakenAt time.Time
	Games   int
	Stats   Stats
}

// Delta holds current minus previous for the headline rates.
type Delta struct {
	Average            float64
	StrikePct          float64
	SparePct           float64
	OpenPct            float64
	SpareConversionPct float64
	CleanPct           float64
}

// Comparison pairs current statistics with a baseline.
type Comparison struct {
	Current     Stats
	Previous    Snapshot
	HasPrevious bool
	Delta       Delta
}

// SnapshotBefore aggregates the games played before the calendar day of ref. It reports false
// when no game qualifies.
func SnapshotBefore(games []model.Game, ref time.Time) (Snapshot, bool) {
	cutoff := dayOf(ref)
	var earlier []model.Game
	for _, g := range games {
		if dayOf(g.Date).Before(cutoff) {
			earlier = append(earlier, g)
		}
	}
	if len(earlier) == 0 {
		return Snapshot{}, false
	}
	return Snapshot{TakenAt: ref, Games: len(earlier), Stats: Aggregate(earlier)}, true
}

// ComparePeriods aggregates games and compares them with previous. When previous is nil the
// baseline is derived from the games played before ref.
func ComparePeriods(games []model.Game, previous *Snapshot, ref time.Time) Comparison {
	c := Comparison{Current: Aggregate(games)}
	if previous != nil {
		c.Previous = *previous
		c.HasPrevious = true
	} else if snap, ok := SnapshotBefore(games, ref); ok {
		c.Previous = snap
		c.HasPrevious = true
	}
	if !c.HasPrevious {
		return c
	}
	cur, prev := c.Current, c.Previous.Stats
	c.Delta = Delta{
		Average:            cur.AverageScore - prev.AverageScore,
		StrikePct:          cur.StrikePct - prev.StrikePct,
		SparePct:           cur.SparePct - prev.SparePct,
		OpenPct:            cur.OpenPct - prev.OpenPct,
		SpareConversionPct: cur.SpareConversionPct - prev.SpareConversionPct,
		CleanPct:           cur.CleanPct - prev.CleanPct,
	}
	return c
}

// Baseline extracts the persisted form of the snapshot.
func (s Snapshot) Baseline() model.Baseline {
	return model.Baseline{
		TakenAt:            s.TakenAt,
		Games:              s.Games,
		Average:            s.Stats.AverageScore,
		StrikePct:          s.Stats.StrikePct,
		SparePct:           s.Stats.SparePct,
		OpenPct:            s.Stats.OpenPct,
		SpareConversionPct: s.Stats.SpareConversionPct,
		CleanPct:           s.Stats.CleanPct,
	}
}

// SnapshotFromBaseline rebuilds a snapshot from its persisted form. Only the headline rates are
// populated.
func SnapshotFromBaseline(b model.Baseline) Snapshot {
	return Snapshot{
		TakenAt: b.TakenAt,
		Games:   b.Games,
		Stats: Stats{
			TotalGames:         b.Games,
			AverageScore:       b.Average,
			StrikePct:          b.StrikePct,
			SparePct:           b.SparePct,
			OpenPct:            b.OpenPct,
			SpareConversionPct: b.SpareConversionPct,
			CleanPct:           b.CleanPct,
		},
	}
}
