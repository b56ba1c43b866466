package stats

import (
	"sort"

	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/pins"
)

// Number of leaves reported by MostCommonLeaves.
const commonLeaves = 10

// Occurrences a leave needs before it can be named a best or worst spare.
const minSpareOccurrences = 2

// LeaveStats counts how often a set of pins was left standing and picked up.
type LeaveStats struct {
	Pins        pins.Set
	Occurrences int
	Pickups     int
}

// PickupPct returns the conversion rate in the 0-100 range.
func (l LeaveStats) PickupPct() float64 {
	return pct(l.Pickups, l.Occurrences)
}

// Score is the smoothed conversion rate used for ranking.
func (l LeaveStats) Score() float64 {
	return float64(l.Pickups+2) / float64(l.Occurrences+4)
}

// IsSplit reports whether the leave is a split.
func (l LeaveStats) IsSplit() bool {
	return pins.IsSplit(l.Pins)
}

// IsMakeable reports whether the leave is a split outside the unconvertible catalog.
func (l LeaveStats) IsMakeable() bool {
	return pins.IsMakeableSplit(l.Pins)
}

// SplitKind labels a split leave as "makeable" or "unmakeable"; other leaves get "".
func (l LeaveStats) SplitKind() string {
	switch {
	case l.IsMakeable():
		return "makeable"
	case l.IsSplit():
		return "unmakeable"
	}
	return ""
}

// SpareHighlights names the leave with the extreme score among single-pin and multi-pin leaves.
type SpareHighlights struct {
	Single    LeaveStats
	HasSingle bool
	Multi     LeaveStats
	HasMulti  bool
}

// CalculateAllLeaves collects every first-ball leave recorded pin by pin, ordered by occurrences
// descending and then by pin set.
func CalculateAllLeaves(games []model.Game) []LeaveStats {
	byPins := map[pins.Set]*LeaveStats{}
	for _, g := range games {
		for i, f := range g.Frames {
			if i >= model.FrameCount {
				break
			}
			for _, j := range freshBalls(f, i) {
				t := f.Throws[j]
				if !t.Tracked || t.Value == 10 || !f.Has(j+1) {
					continue
				}
				leave := t.Standing
				if leave.Empty() {
					continue
				}
				ls, ok := byPins[leave]
				if !ok {
					ls = &LeaveStats{Pins: leave}
					byPins[leave] = ls
				}
				ls.Occurrences++
				if converts(f, j) {
					ls.Pickups++
				}
			}
		}
	}
	out := make([]LeaveStats, 0, len(byPins))
	for _, ls := range byPins {
		out = append(out, *ls)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Occurrences != out[j].Occurrences {
			return out[i].Occurrences > out[j].Occurrences
		}
		return out[i].Pins < out[j].Pins
	})
	return out
}

// MostCommonLeaves returns the ten most frequent leaves.
func MostCommonLeaves(leaves []LeaveStats) []LeaveStats {
	out := append([]LeaveStats(nil), leaves...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Occurrences > out[j].Occurrences
	})
	if len(out) > commonLeaves {
		out = out[:commonLeaves]
	}
	return out
}

// BestSpares returns the single-pin and multi-pin leaves with the highest score.
func BestSpares(leaves []LeaveStats) SpareHighlights {
	return pickSpares(leaves, func(a, b float64) bool { return a > b })
}

// WorstSpares returns the single-pin and multi-pin leaves with the lowest score.
func WorstSpares(leaves []LeaveStats) SpareHighlights {
	return pickSpares(leaves, func(a, b float64) bool { return a < b })
}

func pickSpares(leaves []LeaveStats, better func(a, b float64) bool) SpareHighlights {
	var h SpareHighlights
	for _, l := range leaves {
		if l.Occurrences < minSpareOccurrences {
			continue
		}
		if l.Pins.Len() == 1 {
			if !h.HasSingle || better(l.Score(), h.Single.Score()) {
				h.Single, h.HasSingle = l, true
			}
			continue
		}
		if !h.HasMulti || better(l.Score(), h.Multi.Score()) {
			h.Multi, h.HasMulti = l, true
		}
	}
	return h
}
