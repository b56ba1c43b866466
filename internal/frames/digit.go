package frames

import (
	"strconv"
	"strings"

	"github.com/verte-zerg/tenpin/internal/model"
)

// ParseInputValue converts a typed symbol into a pin count for the throw at c: "X" is a strike,
// "/" converts the spare, "-" is a miss, digits are counts. The boolean is false when the symbol
// is not legal at c.
func ParseInputValue(input string, frames []model.Frame, c Cursor) (int, bool) {
	input = strings.TrimSpace(input)
	var value int
	switch input {
	case "":
		return 0, false
	case "X", "x":
		if !CanRecordStrike(frames, c) {
			return 0, false
		}
		value = 10
	case "/":
		if !CanRecordSpare(frames, c) {
			return 0, false
		}
		value = ScoreAvailable(frames, c)
	case "-":
		value = 0
	default:
		n, err := strconv.Atoi(input)
		if err != nil {
			return 0, false
		}
		value = n
	}
	if !IsValidThrow(frames, c, value) {
		return 0, false
	}
	return value, true
}

// IsValidThrow reports whether value pins can fall on the throw at c.
func IsValidThrow(frames []model.Frame, c Cursor, value int) bool {
	if !c.valid() || !reachable(frameAt(frames, c.Frame), c) {
		return false
	}
	return value >= 0 && value <= ScoreAvailable(frames, c)
}

// IsValidFrameScore reports whether the recorded counts of a frame are legal. A frame still being
// entered is valid as long as what it holds is.
func IsValidFrameScore(f model.Frame, index int) bool {
	n := len(f.Throws)
	for _, t := range f.Throws {
		if t.Value < 0 || t.Value > 10 {
			return false
		}
	}
	v0, v1, v2 := f.Value(0), f.Value(1), f.Value(2)
	if index < lastFrame {
		switch {
		case n > 2:
			return false
		case n == 2:
			return v0 < 10 && v0+v1 <= 10
		}
		return true
	}
	if n > 3 {
		return false
	}
	if n >= 2 && v0 < 10 && v0+v1 > 10 {
		return false
	}
	if n == 3 {
		switch {
		case v0 == 10 && v1 == 10:
			return true
		case v0 == 10:
			return v1+v2 <= 10
		case v0+v1 == 10:
			return true
		}
		return false
	}
	return true
}

// RecordDigitThrow records a pin count at c and returns the new snapshot and next cursor.
func RecordDigitThrow(frames []model.Frame, c Cursor, value int) ([]model.Frame, Cursor, bool) {
	if !IsValidThrow(frames, c, value) {
		return frames, c, false
	}
	out := normalize(frames)
	setThrow(out, c, model.Throw{Value: value})
	return out, Next(out, c), true
}
