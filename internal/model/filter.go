package model

import (
	"strings"
	"time"
)

// Match reports whether g satisfies every condition of f except Last. Since and Until compare
// calendar days in the game's own location, both inclusive.
func (f Filter) Match(g Game) bool {
	if f.Since != nil && g.Date.Before(startOfDay(*f.Since, g.Date.Location())) {
		return false
	}
	if f.Until != nil && !g.Date.Before(startOfDay(*f.Until, g.Date.Location()).AddDate(0, 0, 1)) {
		return false
	}
	if f.ExcludePractice && g.Practice {
		return false
	}
	if f.League != "" && !strings.EqualFold(strings.TrimSpace(g.League), strings.TrimSpace(f.League)) {
		return false
	}
	if f.Ball != "" && !containsFold(g.Balls, f.Ball) {
		return false
	}
	if f.Pattern != "" && !containsFold(g.Patterns, f.Pattern) {
		return false
	}
	return true
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func containsFold(values []string, want string) bool {
	want = strings.TrimSpace(want)
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}
