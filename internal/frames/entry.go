package frames

import (
	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/pins"
)

// Entry is a game being entered in one of the two entry modes.
type Entry interface {
	Mode() model.EntryMode
	Frames() []model.Frame
	Cursor() Cursor
	Complete() bool
	CanStrike() bool
	CanSpare() bool
	// Remaining is the number of pins that can fall on the current throw.
	Remaining() int
	Undo() (Entry, bool)
}

// PinEntry records which pins fall on every throw.
type PinEntry struct {
	frames []model.Frame
	cursor Cursor
}

// NewPinEntry starts an empty pin-accurate game.
func NewPinEntry() PinEntry {
	return PinEntry{frames: model.NewFrames()}
}

// ResumePinEntry continues entering an existing snapshot.
func ResumePinEntry(frames []model.Frame) PinEntry {
	fs := normalize(frames)
	return PinEntry{frames: fs, cursor: Resume(fs)}
}

// Mode implements Entry.
func (e PinEntry) Mode() model.EntryMode { return model.EntryPins }

// Frames implements Entry.
func (e PinEntry) Frames() []model.Frame { return model.CloneFrames(e.frames) }

// Cursor implements Entry.
func (e PinEntry) Cursor() Cursor { return e.cursor }

// Complete implements Entry.
func (e PinEntry) Complete() bool { return IsGameComplete(e.frames) }

// CanStrike implements Entry.
func (e PinEntry) CanStrike() bool { return CanRecordStrike(e.frames, e.cursor) }

// CanSpare implements Entry.
func (e PinEntry) CanSpare() bool { return CanRecordSpare(e.frames, e.cursor) }

// Remaining implements Entry.
func (e PinEntry) Remaining() int { return ScoreAvailable(e.frames, e.cursor) }

// Available returns the pins standing before the current throw.
func (e PinEntry) Available() pins.Set {
	avail, _ := PinsAvailable(e.frames, e.cursor)
	return avail
}

// Throw records the knocked pins at the cursor.
func (e PinEntry) Throw(knocked ...int) (PinEntry, bool) {
	fs, next, ok := ProcessPinThrow(e.frames, e.cursor, knocked)
	if !ok {
		return e, false
	}
	return PinEntry{frames: fs, cursor: next}, true
}

// Clear knocks down every standing pin.
func (e PinEntry) Clear() (PinEntry, bool) {
	return e.Throw(e.Available().Pins()...)
}

// Seek moves the cursor to an already reachable position for a corrective edit.
func (e PinEntry) Seek(c Cursor) (PinEntry, bool) {
	if c.Done() {
		return PinEntry{frames: e.frames, cursor: End}, true
	}
	if !reachable(frameAt(e.frames, c.Frame), c) {
		return e, false
	}
	return PinEntry{frames: e.frames, cursor: c}, true
}

// Undo implements Entry.
func (e PinEntry) Undo() (Entry, bool) {
	fs, c, ok := Undo(e.frames, e.cursor)
	if !ok {
		return e, false
	}
	return PinEntry{frames: fs, cursor: c}, true
}

// DigitEntry records pin counts only.
type DigitEntry struct {
	frames []model.Frame
	cursor Cursor
}

// NewDigitEntry starts an empty digit-entry game.
func NewDigitEntry() DigitEntry {
	return DigitEntry{frames: model.NewFrames()}
}

// Mode implements Entry.
func (e DigitEntry) Mode() model.EntryMode { return model.EntryDigit }

// Frames implements Entry.
func (e DigitEntry) Frames() []model.Frame { return model.CloneFrames(e.frames) }

// Cursor implements Entry.
func (e DigitEntry) Cursor() Cursor { return e.cursor }

// Complete implements Entry.
func (e DigitEntry) Complete() bool { return IsGameComplete(e.frames) }

// CanStrike implements Entry.
func (e DigitEntry) CanStrike() bool { return CanRecordStrike(e.frames, e.cursor) }

// CanSpare implements Entry.
func (e DigitEntry) CanSpare() bool { return CanRecordSpare(e.frames, e.cursor) }

// Remaining implements Entry.
func (e DigitEntry) Remaining() int { return ScoreAvailable(e.frames, e.cursor) }

// Throw records a pin count at the cursor.
func (e DigitEntry) Throw(value int) (DigitEntry, bool) {
	fs, next, ok := RecordDigitThrow(e.frames, e.cursor, value)
	if !ok {
		return e, false
	}
	return DigitEntry{frames: fs, cursor: next}, true
}

// Input records a typed symbol ("X", "/", "-" or a digit).
func (e DigitEntry) Input(symbol string) (DigitEntry, bool) {
	value, ok := ParseInputValue(symbol, e.frames, e.cursor)
	if !ok {
		return e, false
	}
	return e.Throw(value)
}

// Undo implements Entry.
func (e DigitEntry) Undo() (Entry, bool) {
	fs, c, ok := Undo(e.frames, e.cursor)
	if !ok {
		return e, false
	}
	return DigitEntry{frames: fs, cursor: c}, true
}
