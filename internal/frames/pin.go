package frames

import (
	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/pins"
)

// ProcessPinThrow records the pins knocked down at c and returns the new snapshot and the next
// cursor. Pins that are already down are ignored. When the earlier throw of the frame carries no
// pin data, the supplied pins are accepted as given and the value is capped at the inferred count.
// The boolean is false when c cannot take a throw; the input snapshot is then returned unchanged.
func ProcessPinThrow(frames []model.Frame, c Cursor, knocked []int) ([]model.Frame, Cursor, bool) {
	if !c.valid() || !reachable(frameAt(frames, c.Frame), c) {
		return frames, c, false
	}
	out := normalize(frames)
	requested := pins.Of(knocked...)
	avail, known := PinsAvailable(out, c)
	fresh := freshRack(out[c.Frame], c)

	var t model.Throw
	if known {
		hit := requested.Intersect(avail)
		t = model.Throw{
			Value:    hit.Len(),
			Knocked:  hit,
			Standing: avail.Minus(hit),
			Tracked:  true,
		}
	} else {
		value := requested.Len()
		if limit := ScoreAvailable(out, c); value > limit {
			value = limit
		}
		t = model.Throw{
			Value:    value,
			Knocked:  requested,
			Standing: pins.All().Minus(requested),
			Tracked:  true,
		}
	}
	t.Split = fresh && pins.IsSplit(t.Standing)

	setThrow(out, c, t)
	return out, Next(out, c), true
}

// Undo clears the throw at c when one is recorded there and keeps the cursor. Otherwise it steps
// back one throw, crossing into the previous frame when needed, and clears that throw. It returns
// false at the start of a game.
//
// Throws are stored densely, so clearing a throw also drops the later throws of the same frame.
// Other frames are never touched.
func Undo(frames []model.Frame, c Cursor) ([]model.Frame, Cursor, bool) {
	if !c.Done() && frameAt(frames, c.Frame).Has(c.Throw) {
		out := normalize(frames)
		out[c.Frame].Throws = out[c.Frame].Throws[:c.Throw]
		return out, c, true
	}
	p, ok := Prev(frames, c)
	if !ok {
		return frames, c, false
	}
	out := normalize(frames)
	if p.Throw < len(out[p.Frame].Throws) {
		out[p.Frame].Throws = out[p.Frame].Throws[:p.Throw]
	}
	return out, p, true
}
