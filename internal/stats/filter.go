package stats

import "github.com/verte-zerg/tenpin/internal/model"

// ApplyFilter returns the games matching f in date order. Last keeps the most recent games after
// every other condition has been applied.
func ApplyFilter(games []model.Game, f model.Filter) []model.Game {
	out := make([]model.Game, 0, len(games))
	for _, g := range byDate(games) {
		if f.Match(g) {
			out = append(out, g)
		}
	}
	if f.Last > 0 && len(out) > f.Last {
		out = out[len(out)-f.Last:]
	}
	return out
}
