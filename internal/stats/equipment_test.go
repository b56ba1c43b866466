package stats

import (
	"testing"
	"time"

	"github.com/verte-zerg/tenpin/internal/model"
)

func TestCalculateBallStats(t *testing.T) {
	a := perfectGame(t, day0)
	a.Balls = []string{"Phaze II", "Spare Ball"}
	b := allSparesGame(t, day0.Add(time.Hour))
	b.Balls = []string{"phaze ii"}
	c := model.Game{Date: day0.Add(2 * time.Hour), TotalScore: 150, Balls: []string{" ", "Spare Ball"}}

	got := CalculateBallStats([]model.Game{a, b, c})
	if len(got) != 2 {
		t.Fatalf("expected 2 balls, got %+v", got)
	}
	phaze := got[0]
	if phaze.Name != "Phaze II" || phaze.Games != 2 || phaze.AverageScore != 240 || phaze.HighGame != 300 || phaze.LowGame != 180 {
		t.Fatalf("unexpected ball stats %+v", phaze)
	}
	if phaze.Strikes != 12 || phaze.StrikePct != 50 || phaze.CleanGames != 2 {
		t.Fatalf("unexpected strike stats %+v", phaze)
	}
	spare := got[1]
	if spare.Name != "Spare Ball" || spare.Games != 2 || spare.AverageScore != 225 {
		t.Fatalf("unexpected ball stats %+v", spare)
	}
	// The score-only game counts toward the average but not the strike rate.
	if spare.Strikes != 12 || spare.StrikePct != 100 {
		t.Fatalf("unexpected spare ball strike rate %+v", spare)
	}
}

func TestCalculatePatternStats(t *testing.T) {
	a := dutchGame(t, day0)
	a.Patterns = []string{"House", "Shark"}
	b := allSparesGame(t, day0.AddDate(0, 0, 1))
	b.Patterns = []string{"House"}
	got := CalculatePatternStats([]model.Game{a, b})
	if len(got) != 2 || got[0].Name != "House" || got[0].Games != 2 || got[1].Name != "Shark" {
		t.Fatalf("unexpected pattern stats %+v", got)
	}
	if got[0].AverageScore != 190 || got[0].SparePct != 75 {
		t.Fatalf("unexpected house stats %+v", got[0])
	}
}
