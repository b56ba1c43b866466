// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/verte-zerg/tenpin/internal/pins"
)

// Frames per game.
const FrameCount = 10

// Oil patterns a game may list.
const MaxPatterns = 2

// Throw is a single delivery.
type Throw struct {
	Value    int
	Standing pins.Set
	Knocked  pins.Set
	// Tracked is set when Standing and Knocked were recorded pin by pin.
	Tracked bool
	Split   bool
}

// Frame is one scoring unit of a game.
type Frame struct {
	Index  int
	Throws []Throw
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	out := Frame{Index: f.Index}
	if f.Throws != nil {
		out.Throws = append([]Throw(nil), f.Throws...)
	}
	return out
}

// Value returns the value of throw i, or 0 when it was not recorded.
func (f Frame) Value(i int) int {
	if i < 0 || i >= len(f.Throws) {
		return 0
	}
	return f.Throws[i].Value
}

// Has reports whether throw i has been recorded.
func (f Frame) Has(i int) bool {
	return i >= 0 && i < len(f.Throws)
}

// NewFrames returns ten empty frames.
func NewFrames() []Frame {
	out := make([]Frame, FrameCount)
	for i := range out {
		out[i].Index = i
	}
	return out
}

// CloneFrames deep-copies a frame slice.
func CloneFrames(frames []Frame) []Frame {
	out := make([]Frame, len(frames))
	for i, f := range frames {
		out[i] = f.Clone()
	}
	return out
}

// Game is a scored game.
type Game struct {
	ID          int64
	Date        time.Time
	Frames      []Frame
	TotalScore  int
	FrameScores []int
	Clean       bool
	Perfect     bool
	Practice    bool
	Series      bool
	SeriesID    string
	Patterns    []string
	Balls       []string
	League      string
	Note        string
}

// GameMeta holds the fields of a game that may change after scoring.
type GameMeta struct {
	League   string
	Note     string
	Patterns []string
	Balls    []string
}

// Filter selects a subset of game history.
type Filter struct {
	Since           *time.Time
	Until           *time.Time
	League          string
	Ball            string
	Pattern         string
	ExcludePractice bool
	Last            int
}

// EntryMode selects how throws are entered.
type EntryMode string

const (
	// EntryDigit records pin counts only.
	EntryDigit EntryMode = "digit"
	// EntryPins records which pins fell on every throw.
	EntryPins EntryMode = "pins"
)

// EntryConfig defines settings for the game entry surface.
type EntryConfig struct {
	Mode     EntryMode
	Ball     string
	League   string
	Pattern  string
	Practice bool
	SeriesID string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Filter      Filter
	CurveWindow int
}

// Baseline is a stored set of headline rates that later periods are compared against.
type Baseline struct {
	TakenAt            time.Time
	Games              int
	Average            float64
	StrikePct          float64
	SparePct           float64
	OpenPct            float64
	SpareConversionPct float64
	CleanPct           float64
}

// HasThrows reports whether any throw of the game was recorded. Games imported as totals only
// have none.
func (g Game) HasThrows() bool {
	for _, f := range g.Frames {
		if len(f.Throws) > 0 {
			return true
		}
	}
	return false
}
