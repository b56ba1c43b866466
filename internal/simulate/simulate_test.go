package simulate

import (
	"testing"
	"time"

	"github.com/verte-zerg/tenpin/internal/frames"
	"github.com/verte-zerg/tenpin/internal/scoring"
)

var start = time.Date(2025, 1, 7, 19, 0, 0, 0, time.UTC)

func TestGamesAreLegal(t *testing.T) {
	g := NewSeeded(42)
	for _, skill := range []Skill{Beginner, League, Pro} {
		for i := 0; i < 200; i++ {
			game := g.Game(skill, start)
			if !frames.IsGameComplete(game.Frames) {
				t.Fatalf("game %d is incomplete: %v", i, frames.FormatGame(game.Frames))
			}
			if !frames.IsGameValid(game.Frames) {
				t.Fatalf("game %d is invalid: %v", i, frames.FormatGame(game.Frames))
			}
			if game.TotalScore != scoring.Calculate(game.Frames).Total || game.TotalScore > 300 {
				t.Fatalf("game %d has score %d", i, game.TotalScore)
			}
			notation := frames.FormatGame(game.Frames)
			parsed, ok := frames.ParseFrames(notation)
			if !ok || scoring.Calculate(parsed).Total != game.TotalScore {
				t.Fatalf("notation %v does not round-trip", notation)
			}
		}
	}
}

func TestSeededGeneratorIsDeterministic(t *testing.T) {
	a := NewSeeded(7).Series(League, start, 3)
	b := NewSeeded(7).Series(League, start, 3)
	for i := range a {
		if a[i].TotalScore != b[i].TotalScore || a[i].SeriesID != b[i].SeriesID {
			t.Fatalf("game %d differs between identical seeds", i)
		}
		if !a[i].Series || a[i].Date != start.Add(time.Duration(i)*15*time.Minute) {
			t.Fatalf("unexpected series game %+v", a[i])
		}
	}
}

func TestPerfectSkillBowls300(t *testing.T) {
	game := NewSeeded(1).Game(Skill{StrikeRate: 1, ConvertRate: 1}, start)
	if !game.Perfect || game.TotalScore != 300 {
		t.Fatalf("expected a perfect game, got %d", game.TotalScore)
	}
}
