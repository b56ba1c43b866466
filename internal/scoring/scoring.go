// Package scoring computes ten-pin scores from frame snapshots.
package scoring

import (
	"github.com/verte-zerg/tenpin/internal/frames"
	"github.com/verte-zerg/tenpin/internal/model"
)

// PerfectScore is the score of twelve consecutive strikes.
const PerfectScore = 300

// Result is the score of a game so far.
type Result struct {
	// Total includes the bonus throws recorded so far for frames still waiting on lookahead.
	Total int
	// FrameScores holds running totals for the frames that are fully resolved, in order.
	FrameScores []int
}

// Kind classifies a frame by its first two deliveries.
type Kind int

const (
	// Incomplete frames have not had enough throws to be classified.
	Incomplete Kind = iota
	// Open frames leave pins standing after two throws.
	Open
	// Spare frames clear the rack with two throws.
	Spare
	// Strike frames clear the rack with the first throw.
	Strike
)

// Classify returns the kind of a frame.
func Classify(f model.Frame) Kind {
	if !f.Has(0) {
		return Incomplete
	}
	v0 := f.Value(0)
	if v0 == 10 {
		return Strike
	}
	if !f.Has(1) {
		return Incomplete
	}
	if v0+f.Value(1) == 10 {
		return Spare
	}
	return Open
}

// Calculate scores a game. Strike and spare bonuses only count throws already recorded, and a
// frame's running total is reported once all of its bonus throws exist.
func Calculate(fs []model.Frame) Result {
	var rolls []int
	var starts [model.FrameCount]int
	for i := 0; i < model.FrameCount && i < len(fs); i++ {
		starts[i] = len(rolls)
		for _, t := range fs[i].Throws {
			rolls = append(rolls, t.Value)
		}
	}

	var res Result
	resolved := true
	for i := 0; i < model.FrameCount && i < len(fs); i++ {
		f := fs[i]
		if len(f.Throws) == 0 {
			resolved = false
			continue
		}
		var score int
		var done bool
		if i < model.FrameCount-1 {
			switch Classify(f) {
			case Strike:
				bonus, n := take(rolls, starts[i]+1, 2)
				score, done = 10+bonus, n == 2
			case Spare:
				bonus, n := take(rolls, starts[i]+2, 1)
				score, done = 10+bonus, n == 1
			default:
				score, done = f.Value(0)+f.Value(1), f.Has(1)
			}
		} else {
			for _, t := range f.Throws {
				score += t.Value
			}
			done = frames.FrameComplete(f, i)
		}
		res.Total += score
		if resolved && done {
			res.FrameScores = append(res.FrameScores, res.Total)
		} else {
			resolved = false
		}
	}
	return res
}

func take(rolls []int, from, count int) (sum, n int) {
	for i := from; i < len(rolls) && n < count; i++ {
		sum += rolls[i]
		n++
	}
	return sum, n
}

// MaxScore returns the highest score still reachable if every remaining throw clears the pins
// it faces.
func MaxScore(fs []model.Frame) int {
	snapshot := model.CloneFrames(fs)
	c := frames.Resume(snapshot)
	for !c.Done() {
		next, nc, ok := frames.RecordDigitThrow(snapshot, c, frames.ScoreAvailable(snapshot, c))
		if !ok {
			break
		}
		snapshot, c = next, nc
	}
	return Calculate(snapshot).Total
}

// IsClean reports whether every frame, the tenth included, is a strike or a spare.
func IsClean(fs []model.Frame) bool {
	if len(fs) < model.FrameCount {
		return false
	}
	for i := 0; i < model.FrameCount; i++ {
		switch Classify(fs[i]) {
		case Strike, Spare:
		default:
			return false
		}
	}
	return true
}

// Finalize recomputes the derived score fields of a game.
func Finalize(g model.Game) model.Game {
	g.Frames = model.CloneFrames(g.Frames)
	res := Calculate(g.Frames)
	g.TotalScore = res.Total
	g.FrameScores = res.FrameScores
	g.Clean = IsClean(g.Frames)
	g.Perfect = res.Total == PerfectScore
	if g.SeriesID != "" {
		g.Series = true
	}
	return g
}
