package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/pins"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[clamp(idx, 0, len(sparkChars)-1)])
	}
	return b.String()
}

// Scores returns the game totals in date order.
func Scores(games []model.Game) []float64 {
	ordered := byDate(games)
	out := make([]float64, len(ordered))
	for i, g := range ordered {
		out[i] = float64(gameScore(g))
	}
	return out
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func pctText(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// SummaryLines formats the headline numbers of s.
func SummaryLines(s Stats) []string {
	if s.TotalGames == 0 {
		return []string{"No games found."}
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Games: %d (%d practice) over %d days", s.TotalGames, s.PracticeGames, s.DaysPlayed),
		fmt.Sprintf("Average: %.1f  High: %d  Low: %d", s.AverageScore, s.HighGame, s.LowGame),
		fmt.Sprintf("Strike: %s  Spare: %s  Open: %s  Marks: %s",
			pctText(s.StrikePct), pctText(s.SparePct), pctText(s.OpenPct), pctText(s.MarkPct)),
		fmt.Sprintf("First ball: %.2f  Spare conversion: %s  Splits: %d/%d (%s)",
			s.FirstBallAverage, pctText(s.SpareConversionPct), s.SplitsConverted, s.Splits, pctText(s.SplitConversionPct)),
		fmt.Sprintf("Clean games: %d (%s)  Perfect: %d  Strike after strike: %s",
			s.CleanGames, pctText(s.CleanPct), s.PerfectGames, pctText(s.StrikeToStrikePct)),
		fmt.Sprintf("Longest strike run: %d  Longest open run: %d", s.LongestStrikeStreak, s.LongestOpenStreak),
	}

	var streaks []string
	for n := minTrackedStreak; n <= maxTrackedStreak; n++ {
		if s.StrikeStreaks[n] > 0 {
			streaks = append(streaks, fmt.Sprintf("%d-bagger x%d", n, s.StrikeStreaks[n]))
		}
	}
	if s.StrikeRunsOverEleven > 0 {
		streaks = append(streaks, fmt.Sprintf("12+ x%d", s.StrikeRunsOverEleven))
	}
	if len(streaks) > 0 {
		lines = append(lines, "Strike runs: "+strings.Join(streaks, ", "))
	}

	var feats []string
	for _, f := range []struct {
		name  string
		count int
	}{
		{"all spares", s.AllSparesGames},
		{"Dutch 200", s.Dutch200s},
		{"Varipapa 300", s.Varipapa300s},
		{"tenth-frame strikeout", s.TenthStrikeouts},
	} {
		if f.count > 0 {
			feats = append(feats, fmt.Sprintf("%s x%d", f.name, f.count))
		}
	}
	if len(feats) > 0 {
		lines = append(lines, "Feats: "+strings.Join(feats, ", "))
	}
	lines = append(lines,
		fmt.Sprintf("Per week: %.1f games, %.1f sessions  Per month: %.1f games, %.1f sessions",
			s.GamesPerWeek, s.SessionsPerWeek, s.GamesPerMonth, s.SessionsPerMonth),
	)
	return lines
}

// RenderSummary prints the headline statistics.
func RenderSummary(w io.Writer, s Stats) error {
	return writeLines(w, append(SummaryLines(s), ""))
}

// RenderSpareTable prints conversion rates by the number of pins left.
func RenderSpareTable(w io.Writer, s Stats) error {
	var rows [][]string
	for n := 1; n <= pins.Count; n++ {
		made, missed := s.SpareConvertedByPins[n], s.SpareMissedByPins[n]
		if made+missed == 0 {
			continue
		}
		rows = append(rows, []string{fmt.Sprint(n), fmt.Sprint(made + missed), fmt.Sprint(made), pctText(s.SpareRateByPins[n])})
	}
	if len(rows) == 0 {
		return nil
	}
	lines := append([]string{"Spares by pins left"}, formatTable([]string{"Pins", "Chances", "Made", "Rate"}, rows, map[int]bool{1: true, 2: true, 3: true})...)
	return writeLines(w, append(lines, ""))
}

// RenderSeries prints series totals and the per-length breakdown.
func RenderSeries(w io.Writer, s Stats) error {
	if s.SeriesCount == 0 {
		return writeLines(w, []string{"No series found.", ""})
	}
	lines := []string{
		"Series",
		fmt.Sprintf("Count: %d  Average: %.1f  High: %d", s.SeriesCount, s.AverageSeriesScore, s.HighSeries),
	}
	var rows [][]string
	for n := 3; n <= 6; n++ {
		b := s.SeriesByLength[n]
		if b.Count == 0 {
			continue
		}
		rows = append(rows, []string{fmt.Sprintf("%d-game", n), fmt.Sprint(b.Count), fmt.Sprintf("%.1f", b.Average), fmt.Sprint(b.High), fmt.Sprint(b.Low)})
	}
	if len(rows) > 0 {
		lines = append(lines, formatTable([]string{"Length", "Count", "Avg", "High", "Low"}, rows, map[int]bool{1: true, 2: true, 3: true, 4: true})...)
	}
	return writeLines(w, append(lines, ""))
}

// RenderLeaves prints the most common leaves and the best and worst conversions.
func RenderLeaves(w io.Writer, leaves []LeaveStats) error {
	if len(leaves) == 0 {
		return writeLines(w, []string{"No pin-tracked leaves found.", ""})
	}
	rows := make([][]string, 0, commonLeaves)
	for _, l := range MostCommonLeaves(leaves) {
		rows = append(rows, []string{l.Pins.String(), fmt.Sprint(l.Occurrences), fmt.Sprint(l.Pickups), pctText(l.PickupPct()), l.SplitKind()})
	}
	lines := append([]string{"Most common leaves"}, formatTable([]string{"Leave", "Seen", "Made", "Rate", "Split"}, rows, map[int]bool{1: true, 2: true, 3: true})...)

	describe := func(label string, l LeaveStats, ok bool) {
		if ok {
			lines = append(lines, fmt.Sprintf("%s: %s (%d/%d)", label, l.Pins, l.Pickups, l.Occurrences))
		}
	}
	best, worst := BestSpares(leaves), WorstSpares(leaves)
	describe("Best single pin", best.Single, best.HasSingle)
	describe("Best multi pin", best.Multi, best.HasMulti)
	describe("Worst single pin", worst.Single, worst.HasSingle)
	describe("Worst multi pin", worst.Multi, worst.HasMulti)
	return writeLines(w, append(lines, ""))
}

// RenderEquipment prints per-ball or per-pattern averages.
func RenderEquipment(w io.Writer, title string, items []EquipmentStats) error {
	if len(items) == 0 {
		return writeLines(w, []string{fmt.Sprintf("No %s recorded.", strings.ToLower(title)), ""})
	}
	rows := make([][]string, 0, len(items))
	for _, e := range items {
		rows = append(rows, []string{e.Name, fmt.Sprint(e.Games), fmt.Sprintf("%.1f", e.AverageScore), fmt.Sprint(e.HighGame), pctText(e.StrikePct), pctText(e.SparePct)})
	}
	lines := append([]string{title}, formatTable([]string{"Name", "Games", "Avg", "High", "Strike", "Spare"}, rows, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true})...)
	return writeLines(w, append(lines, ""))
}

// RenderComparison prints the change of headline rates against a baseline.
func RenderComparison(w io.Writer, c Comparison) error {
	if !c.HasPrevious {
		return nil
	}
	signed := func(v float64) string { return fmt.Sprintf("%+.1f", v) }
	lines := []string{
		fmt.Sprintf("Since %s (%d games)", c.Previous.TakenAt.Format("2006-01-02"), c.Previous.Games),
		fmt.Sprintf("Average %s  Strike %s  Spare %s  Open %s  Conversion %s  Clean %s",
			signed(c.Delta.Average), signed(c.Delta.StrikePct), signed(c.Delta.SparePct),
			signed(c.Delta.OpenPct), signed(c.Delta.SpareConversionPct), signed(c.Delta.CleanPct)),
		"",
	}
	return writeLines(w, lines)
}

// RenderScoreCurve plots game scores with their moving average.
func RenderScoreCurve(w io.Writer, games []model.Game, window, totalWidth, height int, color bool) error {
	scores := Scores(games)
	if len(scores) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeries(w, "Score Curve", []Series{
		{Name: "Score", Values: scores},
		{Name: fmt.Sprintf("Avg(%d)", window), Values: MovingAverage(scores, window)},
	}, width, height, color)
}
