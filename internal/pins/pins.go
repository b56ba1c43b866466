// Package pins models the ten-pin rack: pin sets, adjacency, columns and split classification.
package pins

import (
	"sort"
	"strconv"
	"strings"
)

// Count is the number of pins in a full rack.
const Count = 10

// Set is a bitmask of pins; bit n is pin n (1..10).
type Set uint16

const fullRack Set = 0x7FE

// All returns a full rack.
func All() Set {
	return fullRack
}

// Of builds a set from pin numbers. Numbers outside 1..10 are ignored.
func Of(pins ...int) Set {
	var s Set
	for _, p := range pins {
		s = s.Add(p)
	}
	return s
}

// Valid reports whether p is a pin number.
func Valid(p int) bool {
	return p >= 1 && p <= Count
}

// Has reports whether pin p is in the set.
func (s Set) Has(p int) bool {
	return Valid(p) && s&(1<<uint(p)) != 0
}

// Add returns s with pin p added.
func (s Set) Add(p int) Set {
	if !Valid(p) {
		return s
	}
	return s | 1<<uint(p)
}

// Remove returns s without pin p.
func (s Set) Remove(p int) Set {
	if !Valid(p) {
		return s
	}
	return s &^ (1 << uint(p))
}

// Toggle flips pin p.
func (s Set) Toggle(p int) Set {
	if s.Has(p) {
		return s.Remove(p)
	}
	return s.Add(p)
}

// Intersect returns pins present in both sets.
func (s Set) Intersect(o Set) Set {
	return s & o & fullRack
}

// Minus returns pins in s that are not in o.
func (s Set) Minus(o Set) Set {
	return s &^ o & fullRack
}

// SubsetOf reports whether every pin in s is also in o.
func (s Set) SubsetOf(o Set) bool {
	return s&^o == 0
}

// Len returns the number of pins in the set.
func (s Set) Len() int {
	n := 0
	for p := 1; p <= Count; p++ {
		if s.Has(p) {
			n++
		}
	}
	return n
}

// Empty reports whether no pin is in the set.
func (s Set) Empty() bool {
	return s&fullRack == 0
}

// Pins returns the pin numbers in ascending order.
func (s Set) Pins() []int {
	out := make([]int, 0, Count)
	for p := 1; p <= Count; p++ {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// String renders the set as a dash-joined leave, e.g. "4-7-10".
func (s Set) String() string {
	ps := s.Pins()
	if len(ps) == 0 {
		return "-"
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, "-")
}

// Parse reads a leave written as "4-7-10", "4,7,10" or "4 7 10".
func Parse(input string) (Set, bool) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == '-' || r == ',' || r == ' '
	})
	var s Set
	for _, f := range fields {
		p, err := strconv.Atoi(f)
		if err != nil || !Valid(p) {
			return 0, false
		}
		s = s.Add(p)
	}
	return s, true
}

var columns = [Count + 1]int{0, 4, 3, 5, 2, 4, 6, 1, 3, 5, 7}

// ColumnOf returns the left-to-right column (1..7) a pin stands in, or 0 for an invalid pin.
func ColumnOf(pin int) int {
	if !Valid(pin) {
		return 0
	}
	return columns[pin]
}

// Neighbours in the rack triangle: same-row and diagonal.
var adjacency = [Count + 1]Set{
	0,
	Of(2, 3),
	Of(1, 3, 4, 5),
	Of(1, 2, 5, 6),
	Of(2, 5, 7, 8),
	Of(2, 3, 4, 6, 8, 9),
	Of(3, 5, 9, 10),
	Of(4, 8),
	Of(4, 5, 7, 9),
	Of(5, 6, 8, 10),
	Of(6, 9),
}

// AdjacentPins returns the pins touching pin in the rack triangle.
func AdjacentPins(pin int) Set {
	if !Valid(pin) {
		return 0
	}
	return adjacency[pin]
}

// IsSplit reports whether a leave is a split: the headpin is down, at least two pins stand and
// two occupied columns are separated by a cleared column that no pair of neighbouring pins spans.
func IsSplit(standing Set) bool {
	standing = standing.Intersect(fullRack)
	if standing.Len() < 2 || standing.Has(1) {
		return false
	}
	byColumn := map[int]Set{}
	for _, p := range standing.Pins() {
		c := ColumnOf(p)
		byColumn[c] = byColumn[c].Add(p)
	}
	cols := make([]int, 0, len(byColumn))
	for c := range byColumn {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	for i := 1; i < len(cols); i++ {
		if cols[i]-cols[i-1] <= 1 {
			continue
		}
		if !bridged(byColumn[cols[i-1]], byColumn[cols[i]]) {
			return true
		}
	}
	return false
}

// bridged reports whether a standing pin on one side of a cleared column touches one on the other.
func bridged(left, right Set) bool {
	for _, p := range left.Pins() {
		if !AdjacentPins(p).Intersect(right).Empty() {
			return true
		}
	}
	return false
}

var unconvertible = []Set{
	Of(7, 10),
	Of(4, 6),
	Of(4, 6, 7),
	Of(4, 6, 10),
	Of(4, 7, 10),
	Of(6, 7, 10),
	Of(4, 6, 7, 10),
	Of(4, 6, 7, 9),
	Of(4, 6, 7, 9, 10),
}

// IsMakeableSplit reports whether a split is outside the catalog of unconvertible splits.
func IsMakeableSplit(standing Set) bool {
	if !IsSplit(standing) {
		return false
	}
	standing = standing.Intersect(fullRack)
	for _, s := range unconvertible {
		if s == standing {
			return false
		}
	}
	return true
}
