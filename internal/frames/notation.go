package frames

import (
	"strconv"
	"strings"

	"github.com/verte-zerg/tenpin/internal/model"
)

// Symbol returns the scorecard mark for throw i of a frame.
func Symbol(f model.Frame, index, i int) string {
	if !f.Has(i) {
		return ""
	}
	v := f.Value(i)
	c := Cursor{Frame: index, Throw: i}
	if freshRack(f, c) {
		if v == 10 {
			return "X"
		}
	} else if f.Value(i-1)+v == 10 {
		return "/"
	}
	if v == 0 {
		return "-"
	}
	return strconv.Itoa(v)
}

// FormatFrame renders a frame in scorecard notation, e.g. "X", "7/", "9-", "XX9".
func FormatFrame(f model.Frame, index int) string {
	var b strings.Builder
	for i := range f.Throws {
		b.WriteString(Symbol(f, index, i))
	}
	return b.String()
}

// FormatGame renders every frame in scorecard notation.
func FormatGame(frames []model.Frame) []string {
	out := make([]string, 0, model.FrameCount)
	for i := 0; i < model.FrameCount && i < len(frames); i++ {
		out = append(out, FormatFrame(frames[i], i))
	}
	return out
}

// ParseFrames reads scorecard notation, one string per frame. The last frame given may be
// incomplete; every other frame must be complete.
func ParseFrames(notation []string) ([]model.Frame, bool) {
	if len(notation) > model.FrameCount {
		return nil, false
	}
	e := NewDigitEntry()
	for i, text := range notation {
		text = strings.ReplaceAll(text, " ", "")
		if text == "" {
			return nil, false
		}
		for _, r := range text {
			if e.cursor.Frame != i {
				return nil, false
			}
			next, ok := e.Input(string(r))
			if !ok && r == '/' && !FreshRack(e.frames, e.cursor) {
				// A ten-pin conversion after a miss is still written as a spare.
				next, ok = e.Throw(e.Remaining())
			}
			if !ok {
				return nil, false
			}
			e = next
		}
		if i < len(notation)-1 && e.cursor.Frame == i {
			return nil, false
		}
	}
	return e.Frames(), true
}
