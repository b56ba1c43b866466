package frames

import (
	"github.com/verte-zerg/tenpin/internal/model"
)

// IsGameValid reports whether frames form a complete, legal game. Pin data, where recorded, must
// agree with the counts and with the pins that were standing.
func IsGameValid(frames []model.Frame) bool {
	if len(frames) != model.FrameCount || !IsGameComplete(frames) {
		return false
	}
	for i, f := range frames {
		if !IsValidFrameScore(f, i) {
			return false
		}
		for j, t := range f.Throws {
			c := Cursor{Frame: i, Throw: j}
			if t.Value > ScoreAvailable(frames, c) {
				return false
			}
			if t.Tracked && !pinsConsistent(frames, c, t) {
				return false
			}
		}
	}
	return true
}

func pinsConsistent(frames []model.Frame, c Cursor, t model.Throw) bool {
	if !t.Knocked.Intersect(t.Standing).Empty() {
		return false
	}
	avail, known := PinsAvailable(frames, c)
	if !known {
		return t.Knocked.Len() >= t.Value
	}
	if t.Knocked.Len() != t.Value || !t.Knocked.SubsetOf(avail) {
		return false
	}
	return t.Standing == avail.Minus(t.Knocked)
}
