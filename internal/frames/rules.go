// Package frames implements the throw and frame state machine used while a game is entered.
//
// Every operation takes a frame snapshot and returns a new one; inputs are never mutated.
package frames

import (
	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/pins"
)

const lastFrame = model.FrameCount - 1

// Cursor addresses a throw position inside a game.
type Cursor struct {
	Frame int
	Throw int
}

// Start is the first throw of a game.
var Start = Cursor{}

// End is the cursor after the final throw of a complete game.
var End = Cursor{Frame: model.FrameCount}

// Done reports whether the cursor is past the last throw.
func (c Cursor) Done() bool {
	return c.Frame >= model.FrameCount
}

func (c Cursor) valid() bool {
	return c.Frame >= 0 && c.Frame < model.FrameCount && c.Throw >= 0 && c.Throw <= 2
}

func frameAt(frames []model.Frame, i int) model.Frame {
	if i < 0 || i >= len(frames) {
		return model.Frame{Index: i}
	}
	return frames[i]
}

// normalize returns a deep copy padded to ten frames.
func normalize(frames []model.Frame) []model.Frame {
	out := model.NewFrames()
	for i := 0; i < len(frames) && i < model.FrameCount; i++ {
		out[i] = frames[i].Clone()
		out[i].Index = i
	}
	return out
}

// CanRecordStrike reports whether a strike may be recorded at the cursor.
func CanRecordStrike(frames []model.Frame, c Cursor) bool {
	if !c.valid() {
		return false
	}
	if c.Frame < lastFrame {
		return c.Throw == 0
	}
	f := frameAt(frames, c.Frame)
	switch c.Throw {
	case 0:
		return true
	case 1:
		return f.Has(0) && f.Value(0) == 10
	default:
		if !f.Has(0) || !f.Has(1) {
			return false
		}
		v0, v1 := f.Value(0), f.Value(1)
		return (v0 == 10 && v1 == 10) || (v0 < 10 && v0+v1 == 10)
	}
}

// CanRecordSpare reports whether a spare may be recorded at the cursor.
func CanRecordSpare(frames []model.Frame, c Cursor) bool {
	if !c.valid() || c.Throw == 0 {
		return false
	}
	f := frameAt(frames, c.Frame)
	v0 := f.Value(0)
	if c.Frame < lastFrame {
		return c.Throw == 1 && f.Has(0) && v0 < 10
	}
	switch c.Throw {
	case 1:
		return f.Has(0) && v0 < 10
	default:
		v1 := f.Value(1)
		return f.Has(0) && f.Has(1) && v0 == 10 && v1 > 0 && v1 < 10
	}
}

// freshRack reports whether the throw at c is delivered at a full rack.
func freshRack(f model.Frame, c Cursor) bool {
	if c.Throw == 0 {
		return true
	}
	if c.Frame < lastFrame {
		return false
	}
	v0, v1 := f.Value(0), f.Value(1)
	switch c.Throw {
	case 1:
		return v0 == 10
	case 2:
		return (v0 == 10 && v1 == 10) || (v0 < 10 && v0+v1 == 10)
	}
	return false
}

// FreshRack reports whether the throw at c is delivered at a full rack of ten pins.
func FreshRack(frames []model.Frame, c Cursor) bool {
	if !c.valid() {
		return false
	}
	return freshRack(frameAt(frames, c.Frame), c)
}

// reachable reports whether a throw position exists given the earlier throws of its frame.
func reachable(f model.Frame, c Cursor) bool {
	if !c.valid() || c.Throw > len(f.Throws) {
		return false
	}
	v0, v1 := f.Value(0), f.Value(1)
	if c.Frame < lastFrame {
		switch c.Throw {
		case 0:
			return true
		case 1:
			return f.Has(0) && v0 < 10
		}
		return false
	}
	switch c.Throw {
	case 0:
		return true
	case 1:
		return f.Has(0)
	default:
		return f.Has(0) && f.Has(1) && (v0 == 10 || v0+v1 == 10)
	}
}

// FrameComplete reports whether frame index holds all the throws it needs.
func FrameComplete(f model.Frame, index int) bool {
	if index < lastFrame {
		return (f.Has(0) && f.Value(0) == 10) || f.Has(1)
	}
	if !f.Has(1) {
		return false
	}
	v0, v1 := f.Value(0), f.Value(1)
	if v0 == 10 || v0+v1 == 10 {
		return f.Has(2)
	}
	return true
}

// IsFrameComplete reports whether frame i of the game is complete.
func IsFrameComplete(frames []model.Frame, i int) bool {
	if i < 0 || i >= model.FrameCount {
		return false
	}
	return FrameComplete(frameAt(frames, i), i)
}

// IsGameComplete reports whether all ten frames are complete and hold no extra throws.
func IsGameComplete(frames []model.Frame) bool {
	if len(frames) < model.FrameCount {
		return false
	}
	for i := 0; i < model.FrameCount; i++ {
		f := frames[i]
		if !FrameComplete(f, i) || len(f.Throws) > expectedThrows(f, i) {
			return false
		}
	}
	return true
}

func expectedThrows(f model.Frame, index int) int {
	v0, v1 := f.Value(0), f.Value(1)
	if index < lastFrame {
		if v0 == 10 {
			return 1
		}
		return 2
	}
	if v0 == 10 || v0+v1 == 10 {
		return 3
	}
	return 2
}

// Next returns the cursor following a throw recorded at c.
func Next(frames []model.Frame, c Cursor) Cursor {
	if c.Done() {
		return End
	}
	f := frameAt(frames, c.Frame)
	if c.Frame < lastFrame {
		if c.Throw == 0 && f.Value(0) < 10 {
			return Cursor{Frame: c.Frame, Throw: 1}
		}
		return Cursor{Frame: c.Frame + 1}
	}
	switch c.Throw {
	case 0:
		return Cursor{Frame: c.Frame, Throw: 1}
	case 1:
		v0, v1 := f.Value(0), f.Value(1)
		if v0 == 10 || v0+v1 == 10 {
			return Cursor{Frame: c.Frame, Throw: 2}
		}
	}
	return End
}

// Prev returns the throw position before c, or false at the start of the game.
func Prev(frames []model.Frame, c Cursor) (Cursor, bool) {
	if c.Done() {
		n := len(frameAt(frames, lastFrame).Throws)
		if n == 0 {
			return Prev(frames, Cursor{Frame: lastFrame})
		}
		return Cursor{Frame: lastFrame, Throw: n - 1}, true
	}
	if c.Throw > 0 {
		return Cursor{Frame: c.Frame, Throw: c.Throw - 1}, true
	}
	if c.Frame <= 0 {
		return Cursor{}, false
	}
	n := len(frameAt(frames, c.Frame-1).Throws)
	if n == 0 {
		return Cursor{Frame: c.Frame - 1}, true
	}
	return Cursor{Frame: c.Frame - 1, Throw: n - 1}, true
}

// Resume returns the first unrecorded throw position of a partially entered game.
func Resume(frames []model.Frame) Cursor {
	c := Start
	for !c.Done() {
		f := frameAt(frames, c.Frame)
		if !f.Has(c.Throw) {
			return c
		}
		c = Next(frames, c)
	}
	return End
}

// PinsAvailable returns the pins standing before the throw at c. The second result is false
// when the earlier throw carries no pin data and only a count can be inferred.
func PinsAvailable(frames []model.Frame, c Cursor) (pins.Set, bool) {
	if !c.valid() {
		return 0, false
	}
	f := frameAt(frames, c.Frame)
	if freshRack(f, c) {
		return pins.All(), true
	}
	if !f.Has(c.Throw - 1) {
		return pins.All(), false
	}
	prev := f.Throws[c.Throw-1]
	if prev.Tracked {
		return prev.Standing, true
	}
	return pins.All(), false
}

// ScoreAvailable returns how many pins may fall on the throw at c.
func ScoreAvailable(frames []model.Frame, c Cursor) int {
	if !c.valid() {
		return 0
	}
	f := frameAt(frames, c.Frame)
	if freshRack(f, c) {
		return pins.Count
	}
	if !f.Has(c.Throw - 1) {
		return 0
	}
	prev := f.Throws[c.Throw-1]
	if prev.Tracked {
		return prev.Standing.Len()
	}
	left := pins.Count - prev.Value
	if left < 0 {
		return 0
	}
	return left
}

// revalidate drops throws after c in the same frame that the throw at c made impossible, and
// refreshes the standing pins of those that remain.
func revalidate(frames []model.Frame, c Cursor) {
	f := &frames[c.Frame]
	for i := c.Throw + 1; i < len(f.Throws); i++ {
		pos := Cursor{Frame: c.Frame, Throw: i}
		if !reachable(*f, pos) {
			f.Throws = f.Throws[:i]
			return
		}
		later := f.Throws[i]
		if later.Tracked {
			avail, known := PinsAvailable(frames, pos)
			if known {
				if !later.Knocked.SubsetOf(avail) {
					f.Throws = f.Throws[:i]
					return
				}
				later.Value = later.Knocked.Len()
				later.Standing = avail.Minus(later.Knocked)
				later.Split = freshRack(*f, pos) && pins.IsSplit(later.Standing)
			}
		}
		if later.Value > ScoreAvailable(frames, pos) {
			f.Throws = f.Throws[:i]
			return
		}
		f.Throws[i] = later
	}
}

func setThrow(frames []model.Frame, c Cursor, t model.Throw) {
	f := &frames[c.Frame]
	if c.Throw < len(f.Throws) {
		f.Throws[c.Throw] = t
	} else {
		f.Throws = append(f.Throws, t)
	}
	revalidate(frames, c)
}
