package stats

import (
	"sort"
	"strings"

	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/scoring"
)

// EquipmentStats aggregates the games played with one ball or on one oil pattern.
type EquipmentStats struct {
	Name         string
	Games        int
	TotalPins    int
	AverageScore float64
	HighGame     int
	LowGame      int
	CleanGames   int
	Strikes      int
	StrikePct    float64
	SparePct     float64
}

// CalculateBallStats groups games by every ball they list.
func CalculateBallStats(games []model.Game) []EquipmentStats {
	return groupBy(games, func(g model.Game) []string { return g.Balls })
}

// CalculatePatternStats groups games by every oil pattern they list.
func CalculatePatternStats(games []model.Game) []EquipmentStats {
	return groupBy(games, func(g model.Game) []string { return g.Patterns })
}

type equipmentTotal struct {
	EquipmentStats
	spares     int
	frames     int
	throwGames int
}

func groupBy(games []model.Game, keys func(model.Game) []string) []EquipmentStats {
	totals := map[string]*equipmentTotal{}
	for _, g := range games {
		seen := map[string]bool{}
		for _, raw := range keys(g) {
			name := strings.TrimSpace(raw)
			key := strings.ToLower(name)
			if name == "" || seen[key] {
				continue
			}
			seen[key] = true
			t, ok := totals[key]
			if !ok {
				t = &equipmentTotal{EquipmentStats: EquipmentStats{Name: name}}
				totals[key] = t
			}
			t.add(g)
		}
	}
	out := make([]EquipmentStats, 0, len(totals))
	for _, t := range totals {
		e := t.EquipmentStats
		e.AverageScore = float64(e.TotalPins) / float64(e.Games)
		e.StrikePct = pct(e.Strikes, t.throwGames*strikeChancesPerGame)
		e.SparePct = pct(t.spares, t.frames)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Games != out[j].Games {
			return out[i].Games > out[j].Games
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (t *equipmentTotal) add(g model.Game) {
	score := gameScore(g)
	t.Games++
	t.TotalPins += score
	if t.Games == 1 || score > t.HighGame {
		t.HighGame = score
	}
	if t.Games == 1 || score < t.LowGame {
		t.LowGame = score
	}
	if len(g.Frames) < model.FrameCount || !g.HasThrows() {
		return
	}
	t.throwGames++
	if scoring.IsClean(g.Frames) {
		t.CleanGames++
	}
	for i, f := range g.Frames[:model.FrameCount] {
		switch scoring.Classify(f) {
		case scoring.Incomplete:
			continue
		case scoring.Spare:
			t.spares++
		}
		t.frames++
		for _, j := range freshBalls(f, i) {
			if f.Value(j) == 10 {
				t.Strikes++
			}
		}
	}
}
