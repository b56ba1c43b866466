package tui

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tenpin/internal/frames"
	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/pins"
	"github.com/verte-zerg/tenpin/internal/scoring"
)

const (
	frameCellWidth = 5
	tenthCellWidth = 7
)

// Rows of the rack from the back row to the headpin.
var rackRows = [][]int{{7, 8, 9, 10}, {4, 5, 6}, {2, 3}, {1}}

func cellWidth(i int) int {
	if i == model.FrameCount-1 {
		return tenthCellWidth
	}
	return frameCellWidth
}

// renderScorecard draws frame numbers, marks and running totals, highlighting the frame at c.
func renderScorecard(fs []model.Frame, c frames.Cursor) string {
	res := scoring.Calculate(fs)
	header := make([]string, model.FrameCount)
	marks := make([]string, model.FrameCount)
	totals := make([]string, model.FrameCount)
	for i := 0; i < model.FrameCount; i++ {
		w := cellWidth(i)
		var f model.Frame
		if i < len(fs) {
			f = fs[i]
		}
		symbols := make([]string, 0, len(f.Throws))
		for t := range f.Throws {
			symbols = append(symbols, frames.Symbol(f, i, t))
		}
		header[i] = runewidth.FillRight(" "+strconv.Itoa(i+1), w)
		marks[i] = runewidth.FillLeft(strings.Join(symbols, " ")+" ", w)
		if i < len(res.FrameScores) {
			totals[i] = runewidth.FillLeft(strconv.Itoa(res.FrameScores[i])+" ", w)
		} else {
			totals[i] = strings.Repeat(" ", w)
		}

		style := markStyle
		switch {
		case !c.Done() && c.Frame == i:
			style = currentStyle
		case len(f.Throws) == 0:
			style = pendingStyle
		}
		header[i] = style.Render(header[i])
		marks[i] = style.Render(marks[i])
		totals[i] = style.Render(totals[i])
	}
	return strings.Join([]string{
		strings.Join(header, "│"),
		strings.Join(marks, "│"),
		strings.Join(totals, "│"),
	}, "\n")
}

// renderRack draws the pin deck: standing pins by number, selected pins as *, fallen pins as ·.
func renderRack(standing, selected pins.Set) string {
	lines := make([]string, 0, len(rackRows))
	for depth, row := range rackRows {
		cells := make([]string, 0, len(row))
		for _, p := range row {
			label := strconv.Itoa(p)
			switch {
			case selected.Has(p):
				label = currentStyle.Render(runewidth.FillLeft("*", len(label)))
			case !standing.Has(p):
				label = pendingStyle.Render(runewidth.FillLeft("·", len(label)))
			default:
				label = markStyle.Render(label)
			}
			cells = append(cells, label)
		}
		lines = append(lines, strings.Repeat(" ", depth*2)+strings.Join(cells, "   "))
	}
	return strings.Join(lines, "\n")
}
