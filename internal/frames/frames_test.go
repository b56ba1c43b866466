package frames

import (
	"reflect"
	"testing"

	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/pins"
)

func mustParse(t *testing.T, notation ...string) []model.Frame {
	t.Helper()
	fs, ok := ParseFrames(notation)
	if !ok {
		t.Fatalf("failed to parse %v", notation)
	}
	return fs
}

func TestCanRecordStrike(t *testing.T) {
	fs := mustParse(t, "X", "X", "X", "X", "X", "X", "X", "X", "X", "X")
	cases := []struct {
		c    Cursor
		want bool
	}{
		{Cursor{0, 0}, true},
		{Cursor{3, 1}, false},
		{Cursor{9, 0}, true},
		{Cursor{9, 1}, true},
		{Cursor{9, 2}, false},
	}
	for _, tc := range cases {
		if got := CanRecordStrike(fs, tc.c); got != tc.want {
			t.Errorf("CanRecordStrike(%v) = %v, want %v", tc.c, got, tc.want)
		}
	}

	fs = mustParse(t, "X", "X", "X", "X", "X", "X", "X", "X", "X", "XX")
	if !CanRecordStrike(fs, Cursor{9, 2}) {
		t.Fatalf("expected strike after double in tenth")
	}
	fs = mustParse(t, "X", "X", "X", "X", "X", "X", "X", "X", "X", "6/")
	if !CanRecordStrike(fs, Cursor{9, 2}) {
		t.Fatalf("expected strike after spare in tenth")
	}
	fs = mustParse(t, "X", "X", "X", "X", "X", "X", "X", "X", "X", "X5")
	if CanRecordStrike(fs, Cursor{9, 2}) {
		t.Fatalf("no strike possible with pins left from the second ball")
	}
}

func TestCanRecordSpare(t *testing.T) {
	fs := mustParse(t, "7")
	if CanRecordSpare(fs, Cursor{0, 0}) {
		t.Fatalf("spare never allowed on first ball")
	}
	if !CanRecordSpare(fs, Cursor{0, 1}) {
		t.Fatalf("spare allowed after 7")
	}
	fs = mustParse(t, "X")
	if CanRecordSpare(fs, Cursor{0, 1}) {
		t.Fatalf("no second ball after a strike in frames 1-9")
	}
	tenth := mustParse(t, "X", "X", "X", "X", "X", "X", "X", "X", "X", "X5")
	if !CanRecordSpare(tenth, Cursor{9, 2}) {
		t.Fatalf("spare allowed after X5 in tenth")
	}
	tenth = mustParse(t, "X", "X", "X", "X", "X", "X", "X", "X", "X", "X-")
	if CanRecordSpare(tenth, Cursor{9, 2}) {
		t.Fatalf("spare requires a non-zero second ball after a tenth-frame strike")
	}
	tenth = mustParse(t, "X", "X", "X", "X", "X", "X", "X", "X", "X", "XX")
	if CanRecordSpare(tenth, Cursor{9, 2}) {
		t.Fatalf("no spare after a double in tenth")
	}
}

func TestIsGameComplete(t *testing.T) {
	open := mustParse(t, "9-", "9-", "9-", "9-", "9-", "9-", "9-", "9-", "9-", "9-")
	if !IsGameComplete(open) {
		t.Fatalf("open game should be complete after two tenth-frame balls")
	}
	spare := mustParse(t, "9-", "9-", "9-", "9-", "9-", "9-", "9-", "9-", "9-", "9/")
	if IsGameComplete(spare) {
		t.Fatalf("tenth-frame spare needs a fill ball")
	}
	if IsGameComplete(model.NewFrames()) {
		t.Fatalf("empty game is not complete")
	}
}

func TestPinsAvailable(t *testing.T) {
	e := NewPinEntry()
	e, _ = e.Throw(1, 2, 3, 4, 5, 6, 8, 9)
	avail, known := PinsAvailable(e.frames, e.cursor)
	if !known || avail != pins.Of(7, 10) {
		t.Fatalf("expected 7-10 standing, got %v (%v)", avail, known)
	}
	if got := ScoreAvailable(e.frames, e.cursor); got != 2 {
		t.Fatalf("expected 2 pins available, got %d", got)
	}
	if !e.frames[0].Throws[0].Split {
		t.Fatalf("7-10 leave should be tagged as a split")
	}
}

func TestDigitScoreAvailable(t *testing.T) {
	fs := mustParse(t, "7")
	avail, known := PinsAvailable(fs, Cursor{0, 1})
	if known || avail != pins.All() {
		t.Fatalf("digit entry cannot know which pins stand")
	}
	if got := ScoreAvailable(fs, Cursor{0, 1}); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	tenth := mustParse(t, "X", "X", "X", "X", "X", "X", "X", "X", "X", "X")
	if got := ScoreAvailable(tenth, Cursor{9, 1}); got != 10 {
		t.Fatalf("rack resets after a tenth-frame strike, got %d", got)
	}
	tenth = mustParse(t, "X", "X", "X", "X", "X", "X", "X", "X", "X", "3/")
	if got := ScoreAvailable(tenth, Cursor{9, 2}); got != 10 {
		t.Fatalf("rack resets after a tenth-frame spare, got %d", got)
	}
}

func TestProcessPinThrowIgnoresDownedPins(t *testing.T) {
	fs, c, ok := ProcessPinThrow(model.NewFrames(), Start, []int{1, 2, 3, 4, 5, 6, 7, 8, 9})
	if !ok || c != (Cursor{0, 1}) {
		t.Fatalf("unexpected cursor %v (%v)", c, ok)
	}
	fs, c, ok = ProcessPinThrow(fs, c, []int{1, 10})
	if !ok || c != (Cursor{1, 0}) {
		t.Fatalf("unexpected cursor %v (%v)", c, ok)
	}
	second := fs[0].Throws[1]
	if second.Value != 1 || second.Knocked != pins.Of(10) || !second.Standing.Empty() {
		t.Fatalf("unexpected second throw %+v", second)
	}
}

func TestProcessPinThrowTruncatesInconsistentThrows(t *testing.T) {
	fs, c, _ := ProcessPinThrow(model.NewFrames(), Start, []int{1, 2, 3, 4, 5, 6, 7, 8})
	fs, _, _ = ProcessPinThrow(fs, c, []int{9, 10})

	edited, next, ok := ProcessPinThrow(fs, Start, []int{1, 2, 3, 4, 5, 6, 7, 9})
	if !ok || next != (Cursor{0, 1}) {
		t.Fatalf("unexpected cursor %v", next)
	}
	if len(edited[0].Throws) != 1 {
		t.Fatalf("second throw knocked pin 9 which is now down; expected truncation, got %d throws", len(edited[0].Throws))
	}
	if len(fs[0].Throws) != 2 {
		t.Fatalf("input snapshot must not be mutated")
	}

	fs, c, _ = ProcessPinThrow(model.NewFrames(), Start, []int{1, 2, 3, 4, 5, 6, 7, 8})
	fs, _, _ = ProcessPinThrow(fs, c, []int{9})
	edited, _, _ = ProcessPinThrow(fs, Start, []int{1, 2, 3, 4, 5, 6, 7})
	if len(edited[0].Throws) != 2 {
		t.Fatalf("consistent second throw should be kept")
	}
	if edited[0].Throws[1].Standing != pins.Of(8, 10) {
		t.Fatalf("standing pins should be refreshed, got %v", edited[0].Throws[1].Standing)
	}

	strike, _, _ := ProcessPinThrow(fs, Start, pins.All().Pins())
	if len(strike[0].Throws) != 1 {
		t.Fatalf("a strike leaves no room for a second ball")
	}
}

func TestProcessPinThrowLegacyFallback(t *testing.T) {
	fs := mustParse(t, "7")
	out, _, ok := ProcessPinThrow(fs, Cursor{0, 1}, []int{1, 2, 3, 4})
	if !ok {
		t.Fatalf("expected throw to be accepted")
	}
	if got := out[0].Throws[1].Value; got != 3 {
		t.Fatalf("value should be capped at the inferred count, got %d", got)
	}
}

func TestProcessPinThrowRejectsUnreachableCursor(t *testing.T) {
	fs := mustParse(t, "X")
	if _, _, ok := ProcessPinThrow(fs, Cursor{0, 1}, []int{1}); ok {
		t.Fatalf("frame after a strike has no second ball")
	}
	if _, _, ok := ProcessPinThrow(fs, Cursor{3, 0}, []int{1}); !ok {
		t.Fatalf("first ball of any frame is reachable")
	}
}

func TestTenthFrameCursorAdvance(t *testing.T) {
	e := NewPinEntry()
	for i := 0; i < 9; i++ {
		e, _ = e.Clear()
	}
	if e.Cursor() != (Cursor{9, 0}) {
		t.Fatalf("unexpected cursor %v", e.Cursor())
	}
	e, _ = e.Throw(1, 2, 3)
	e, _ = e.Throw(4, 5)
	if !e.Cursor().Done() {
		t.Fatalf("open tenth ends the game, cursor %v", e.Cursor())
	}
	if !IsGameValid(e.Frames()) {
		t.Fatalf("game built from legal throws must be valid")
	}

	e = NewPinEntry()
	for i := 0; i < 9; i++ {
		e, _ = e.Clear()
	}
	e, _ = e.Clear()
	if e.Cursor() != (Cursor{9, 1}) {
		t.Fatalf("unexpected cursor %v", e.Cursor())
	}
	e, _ = e.Throw(1, 2)
	if e.Cursor() != (Cursor{9, 2}) {
		t.Fatalf("strike earns a third ball, cursor %v", e.Cursor())
	}
	if got := e.Available(); got != pins.All().Minus(pins.Of(1, 2)) {
		t.Fatalf("third ball faces the pins left by the second, got %v", got)
	}
	e, _ = e.Clear()
	if !e.Complete() || !IsGameValid(e.Frames()) {
		t.Fatalf("expected a complete valid game")
	}
}

func TestUndo(t *testing.T) {
	fs := mustParse(t, "72", "X")
	fs2, c, ok := Undo(fs, Cursor{2, 0})
	if !ok || c != (Cursor{1, 0}) {
		t.Fatalf("expected step back into previous frame, got %v", c)
	}
	if len(fs2[1].Throws) != 0 {
		t.Fatalf("strike should be cleared")
	}
	fs3, c, ok := Undo(fs2, c)
	if !ok || c != (Cursor{0, 1}) || len(fs3[0].Throws) != 1 {
		t.Fatalf("expected to clear frame 1 second ball, got %v %v", c, fs3[0].Throws)
	}
	fs4, c, ok := Undo(fs, Cursor{0, 1})
	if !ok || c != (Cursor{0, 1}) || len(fs4[0].Throws) != 1 {
		t.Fatalf("value at cursor is cleared in place, got %v", c)
	}
	if _, _, ok := Undo(model.NewFrames(), Start); ok {
		t.Fatalf("nothing precedes the start of the game")
	}
	full := mustParse(t, "X", "X", "X", "X", "X", "X", "X", "X", "X", "XXX")
	out, c, ok := Undo(full, End)
	if !ok || c != (Cursor{9, 2}) || len(out[9].Throws) != 2 {
		t.Fatalf("undo from the end clears the fill ball, got %v", c)
	}
}

func TestPinEntrySeekAndResume(t *testing.T) {
	e := ResumePinEntry(mustParse(t, "X", "7/", "9-"))
	if c := e.Cursor(); c != (Cursor{3, 0}) {
		t.Fatalf("unexpected resume cursor %v", c)
	}
	if _, ok := e.Seek(Cursor{1, 2}); ok {
		t.Fatalf("third ball of frame 2 does not exist")
	}
	if done, ok := e.Seek(End); !ok || !done.Cursor().Done() {
		t.Fatalf("seek to the end should be allowed")
	}
	at, ok := e.Seek(Cursor{1, 0})
	if !ok || at.Cursor() != (Cursor{1, 0}) {
		t.Fatalf("seek failed: %v", at.Cursor())
	}

	undone, ok := at.Undo()
	if !ok || undone.Cursor() != (Cursor{1, 0}) {
		t.Fatalf("unexpected undo cursor %v", undone.Cursor())
	}
	fs := undone.Frames()
	if len(fs[1].Throws) != 0 {
		t.Fatalf("clearing the first ball drops the rest of the frame, got %+v", fs[1].Throws)
	}
	if len(fs[0].Throws) != 1 || len(fs[2].Throws) != 2 {
		t.Fatalf("other frames changed: %+v", fs)
	}
	if c := ResumePinEntry(fs).Cursor(); c != (Cursor{1, 0}) {
		t.Fatalf("expected resume at the cleared frame, got %v", c)
	}
}

func TestParseInputValue(t *testing.T) {
	empty := model.NewFrames()
	if v, ok := ParseInputValue("X", empty, Start); !ok || v != 10 {
		t.Fatalf("X should be 10")
	}
	if _, ok := ParseInputValue("/", empty, Start); ok {
		t.Fatalf("spare on first ball must fail")
	}
	fs := mustParse(t, "7")
	if v, ok := ParseInputValue("/", fs, Cursor{0, 1}); !ok || v != 3 {
		t.Fatalf("spare after 7 should be 3, got %d", v)
	}
	if _, ok := ParseInputValue("X", fs, Cursor{0, 1}); ok {
		t.Fatalf("strike on second ball must fail")
	}
	if _, ok := ParseInputValue("8", fs, Cursor{0, 1}); ok {
		t.Fatalf("7 then 8 exceeds the rack")
	}
	if v, ok := ParseInputValue("-", fs, Cursor{0, 1}); !ok || v != 0 {
		t.Fatalf("- should be a miss")
	}
	if _, ok := ParseInputValue("q", fs, Cursor{0, 1}); ok {
		t.Fatalf("unknown symbol must fail")
	}
}

func TestIsValidFrameScore(t *testing.T) {
	cases := []struct {
		values []int
		index  int
		want   bool
	}{
		{[]int{10}, 0, true},
		{[]int{10, 0}, 0, false},
		{[]int{6, 5}, 3, false},
		{[]int{6, 4}, 3, true},
		{[]int{10, 10, 10}, 9, true},
		{[]int{10, 6, 5}, 9, false},
		{[]int{3, 7, 10}, 9, true},
		{[]int{3, 6, 1}, 9, false},
		{[]int{11}, 0, false},
	}
	for _, tc := range cases {
		f := model.Frame{Index: tc.index}
		for _, v := range tc.values {
			f.Throws = append(f.Throws, model.Throw{Value: v})
		}
		if got := IsValidFrameScore(f, tc.index); got != tc.want {
			t.Errorf("IsValidFrameScore(%v, %d) = %v, want %v", tc.values, tc.index, got, tc.want)
		}
	}
}

func TestNotationRoundTrip(t *testing.T) {
	notation := []string{"X", "7/", "9-", "X", "-/", "81", "X", "9/", "X", "XX9"}
	fs := mustParse(t, notation...)
	if !IsGameValid(fs) {
		t.Fatalf("parsed game should be valid")
	}
	if got := FormatGame(fs); !reflect.DeepEqual(got, notation) {
		t.Fatalf("FormatGame = %v, want %v", got, notation)
	}
	if _, ok := ParseFrames([]string{"72X"}); ok {
		t.Fatalf("a frame string may not spill into the next frame")
	}
	if _, ok := ParseFrames([]string{"7", "X"}); ok {
		t.Fatalf("only the last frame may be incomplete")
	}
	tenth := mustParse(t, "X", "X", "X", "X", "X", "X", "X", "X", "X", "X-/")
	if got := FormatFrame(tenth[9], 9); got != "X-/" {
		t.Fatalf("unexpected tenth frame %q", got)
	}
}

func TestIsGameValidRejectsBadShapes(t *testing.T) {
	fs := mustParse(t, "X", "X", "X", "X", "X", "X", "X", "X", "X", "9-")
	if !IsGameValid(fs) {
		t.Fatalf("expected valid game")
	}
	bad := model.CloneFrames(fs)
	bad[9].Throws = append(bad[9].Throws, model.Throw{Value: 5})
	if IsGameValid(bad) {
		t.Fatalf("open tenth may not have a fill ball")
	}
	if IsGameValid(fs[:9]) {
		t.Fatalf("nine frames is not a game")
	}
	corrupt := model.CloneFrames(fs)
	corrupt[0].Throws[0] = model.Throw{Value: 10, Knocked: pins.Of(1, 2), Tracked: true}
	if IsGameValid(corrupt) {
		t.Fatalf("knocked pins must agree with the value")
	}
}

func TestDigitEntryUndo(t *testing.T) {
	e := NewDigitEntry()
	e, _ = e.Input("7")
	e, _ = e.Input("/")
	if e.Cursor() != (Cursor{1, 0}) {
		t.Fatalf("unexpected cursor %v", e.Cursor())
	}
	undone, ok := e.Undo()
	if !ok || undone.Cursor() != (Cursor{0, 1}) {
		t.Fatalf("unexpected undo cursor %v", undone.Cursor())
	}
	if undone.Mode() != model.EntryDigit {
		t.Fatalf("undo must keep the entry mode")
	}
	if _, ok := NewDigitEntry().Undo(); ok {
		t.Fatalf("undo on an empty game must fail")
	}
}
