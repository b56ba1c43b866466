package stats

import (
	"testing"
	"time"

	"github.com/verte-zerg/tenpin/internal/model"
)

func TestComparePeriodsDerivesBaseline(t *testing.T) {
	games := []model.Game{
		allSparesGame(t, day0),
		dutchGame(t, day0.AddDate(0, 0, 7)),
		perfectGame(t, day0.AddDate(0, 0, 14)),
	}
	c := ComparePeriods(games, nil, day0.AddDate(0, 0, 14).Add(2*time.Hour))
	if !c.HasPrevious || c.Previous.Games != 2 {
		t.Fatalf("expected a baseline of 2 games, got %+v", c.Previous)
	}
	if c.Previous.Stats.AverageScore != 190 || c.Current.AverageScore != 680.0/3 {
		t.Fatalf("unexpected averages %.2f -> %.2f", c.Previous.Stats.AverageScore, c.Current.AverageScore)
	}
	if c.Delta.Average != c.Current.AverageScore-190 {
		t.Fatalf("unexpected delta %.2f", c.Delta.Average)
	}
}

func TestComparePeriodsUsesGivenSnapshot(t *testing.T) {
	games := []model.Game{allSparesGame(t, day0)}
	prev := SnapshotFromBaseline(model.Baseline{TakenAt: day0.AddDate(0, -1, 0), Games: 9, Average: 170, StrikePct: 10})
	c := ComparePeriods(games, &prev, day0)
	if !c.HasPrevious || c.Previous.Games != 9 {
		t.Fatalf("expected the supplied baseline, got %+v", c.Previous)
	}
	if c.Delta.Average != 10 || c.Delta.StrikePct != -10 {
		t.Fatalf("unexpected delta %+v", c.Delta)
	}
	if got := prev.Baseline(); got.Average != 170 || got.Games != 9 {
		t.Fatalf("unexpected baseline round trip %+v", got)
	}
}

func TestComparePeriodsWithoutHistory(t *testing.T) {
	c := ComparePeriods([]model.Game{allSparesGame(t, day0)}, nil, day0)
	if c.HasPrevious || c.Delta != (Delta{}) {
		t.Fatalf("expected no baseline, got %+v", c)
	}
}

func TestApplyFilter(t *testing.T) {
	since := day0.AddDate(0, 0, 1)
	a := allSparesGame(t, day0)
	a.League = "Tuesday"
	b := dutchGame(t, day0.AddDate(0, 0, 1))
	b.League = "tuesday"
	b.Balls = []string{"Hammer"}
	c := perfectGame(t, day0.AddDate(0, 0, 2))
	c.League = "Tuesday"
	c.Practice = true
	d := allSparesGame(t, day0.AddDate(0, 0, 3))
	d.League = "Tuesday"
	d.Balls = []string{"hammer"}
	games := []model.Game{d, c, b, a}

	got := ApplyFilter(games, model.Filter{Since: &since, League: "TUESDAY", ExcludePractice: true})
	if len(got) != 2 || !got[0].Date.Equal(b.Date) || !got[1].Date.Equal(d.Date) {
		t.Fatalf("unexpected filtered games %+v", got)
	}
	got = ApplyFilter(games, model.Filter{Ball: "Hammer", Last: 1})
	if len(got) != 1 || !got[0].Date.Equal(d.Date) {
		t.Fatalf("unexpected ball filter result %+v", got)
	}
	until := day0
	if got = ApplyFilter(games, model.Filter{Until: &until}); len(got) != 1 {
		t.Fatalf("expected until to be inclusive of its day, got %d", len(got))
	}
}
