// Package simulate generates plausible pin-accurate games.
package simulate

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/tenpin/internal/frames"
	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/pins"
	"github.com/verte-zerg/tenpin/internal/scoring"
)

// Skill controls how often the simulated bowler strikes and converts.
type Skill struct {
	StrikeRate  float64
	ConvertRate float64
	// SplitPenalty scales ConvertRate on split leaves.
	SplitPenalty float64
}

// Preset skills.
var (
	Beginner = Skill{StrikeRate: 0.08, ConvertRate: 0.35, SplitPenalty: 0.1}
	League   = Skill{StrikeRate: 0.35, ConvertRate: 0.7, SplitPenalty: 0.2}
	Pro      = Skill{StrikeRate: 0.6, ConvertRate: 0.9, SplitPenalty: 0.3}
)

// Relative chance of each pin being left standing after a first ball.
var leaveWeights = [pins.Count + 1]float64{0, 0.05, 1.2, 1.0, 1.6, 1.4, 1.3, 2.2, 0.9, 0.8, 3.0}

// Relative chance of leaving 1..4 pins.
var leaveSizes = []float64{5, 3, 1.5, 0.5}

// Generator produces randomized games.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Game bowls one complete game.
func (g *Generator) Game(skill Skill, date time.Time) model.Game {
	e := frames.NewPinEntry()
	for !e.Complete() {
		avail := e.Available()
		var knocked pins.Set
		if avail == pins.All() {
			knocked = g.firstBall(skill)
		} else {
			knocked = g.spareBall(skill, avail)
		}
		next, ok := e.Throw(knocked.Pins()...)
		if !ok {
			// Unreachable for a well-formed entry; stop rather than spin.
			break
		}
		e = next
	}
	return scoring.Finalize(model.Game{Date: date, Frames: e.Frames()})
}

// Series bowls count games in one series, a quarter hour apart.
func (g *Generator) Series(skill Skill, start time.Time, count int) []model.Game {
	id := fmt.Sprintf("sim-%s-%04d", start.Format("20060102"), g.rnd.Intn(10000))
	games := make([]model.Game, 0, count)
	for i := 0; i < count; i++ {
		game := g.Game(skill, start.Add(time.Duration(i)*15*time.Minute))
		game.SeriesID = id
		games = append(games, scoring.Finalize(game))
	}
	return games
}

func (g *Generator) firstBall(skill Skill) pins.Set {
	if g.rnd.Float64() < skill.StrikeRate {
		return pins.All()
	}
	size := pickWeighted(g.rnd, leaveSizes) + 1
	weights := leaveWeights[:]
	var standing pins.Set
	for standing.Len() < size {
		p := pickWeighted(g.rnd, weights)
		standing = standing.Add(p)
	}
	return pins.All().Minus(standing)
}

func (g *Generator) spareBall(skill Skill, avail pins.Set) pins.Set {
	rate := skill.ConvertRate
	if pins.IsSplit(avail) {
		rate *= skill.SplitPenalty
	}
	if g.rnd.Float64() < rate {
		return avail
	}
	var knocked pins.Set
	for _, p := range avail.Pins() {
		if g.rnd.Intn(2) == 0 {
			knocked = knocked.Add(p)
		}
	}
	if knocked == avail {
		knocked = knocked.Remove(avail.Pins()[0])
	}
	return knocked
}

// pickWeighted returns an index drawn in proportion to weights.
func pickWeighted(rnd *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if w > 0 && r <= acc {
			return i
		}
	}
	return len(weights) - 1
}
