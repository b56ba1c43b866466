package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series is a named line on a plot.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight = 8
	minPlotWidth      = 10
	axisLabelWidth    = 3
	axisSeparator     = " │ "
	fallbackWidth     = 80
	colorReset        = "\x1b[0m"
)

var seriesColors = []string{"\x1b[36m", "\x1b[33m", "\x1b[35m", "\x1b[32m"}

// Braille dot bits by column and row within a cell.
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// PlotWidthFor returns the number of plot columns that fit in totalWidth next to the axis.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	w := totalWidth - axisLabelWidth - runewidth.StringWidth(axisSeparator)
	if w < minPlotWidth {
		return minPlotWidth
	}
	return w
}

// PlotSeries draws all series on one shared vertical scale using braille cells. A width of zero
// sizes the plot to the terminal.
func PlotSeries(w io.Writer, title string, series []Series, width, height int, color bool) error {
	var lines []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			lines = append(lines, s)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range lines {
		for _, v := range s.Values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	lo, hi = math.Floor(lo), math.Ceil(hi)
	if hi-lo < 1 {
		lo--
		hi++
	}

	dotRows := height * 4
	grid := make([][]uint8, height)
	owner := make([][]int, height)
	for y := range grid {
		grid[y] = make([]uint8, width)
		owner[y] = make([]int, width)
		for x := range owner[y] {
			owner[y][x] = -1
		}
	}
	for si, s := range lines {
		points := resample(s.Values, width*2)
		prevX, prevY := -1, -1
		for x, v := range points {
			y := int(math.Round((hi - v) / (hi - lo) * float64(dotRows-1)))
			y = clamp(y, 0, dotRows-1)
			if prevX < 0 {
				prevX, prevY = x, y
			}
			step := 1
			if y < prevY {
				step = -1
			}
			for yy := prevY; ; yy += step {
				setDot(grid, owner, x, yy, si)
				if yy == y {
					break
				}
			}
			prevX, prevY = x, y
		}
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = fmt.Sprintf("%.0f", hi)
		case height - 1:
			label = fmt.Sprintf("%.0f", lo)
		case height / 2:
			label = fmt.Sprintf("%.0f", (hi+lo)/2)
		}
		b.WriteString(runewidth.FillLeft(label, axisLabelWidth))
		b.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			ch := rune(0x2800 + int(grid[y][x]))
			if color && owner[y][x] >= 0 {
				b.WriteString(seriesColors[owner[y][x]%len(seriesColors)])
				b.WriteRune(ch)
				b.WriteString(colorReset)
				continue
			}
			b.WriteRune(ch)
		}
		b.WriteByte('\n')
	}
	names := make([]string, len(lines))
	for i, s := range lines {
		names[i] = fmt.Sprintf("%s (last %.1f)", s.Name, s.Values[len(s.Values)-1])
	}
	b.WriteString("Legend: " + strings.Join(names, "  ") + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func setDot(grid [][]uint8, owner [][]int, x, y, series int) {
	cx, cy := x/2, y/4
	if cy < 0 || cy >= len(grid) || cx < 0 || cx >= len(grid[cy]) {
		return
	}
	grid[cy][cx] |= brailleBits[x%2][y%4]
	if owner[cy][cx] < 0 {
		owner[cy][cx] = series
	}
}

// resample stretches or squeezes values to n points by linear interpolation.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	if len(values) == 1 || n == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	for i := range out {
		pos := float64(i) * float64(len(values)-1) / float64(n-1)
		idx := int(pos)
		if idx >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx]*(1-frac) + values[idx+1]*frac
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

// ColorEnabled reports whether w is a terminal that should receive ANSI colors.
func ColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
