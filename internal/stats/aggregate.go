// Package stats aggregates game history into derived statistics and renders reports.
package stats

import (
	"sort"
	"time"

	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/scoring"
)

// Strike opportunities in one game, counting both tenth-frame fill balls.
const strikeChancesPerGame = 12

// Streak lengths tracked in the histogram; longer runs are counted separately.
const (
	minTrackedStreak = 3
	maxTrackedStreak = 11
)

// SeriesStats summarizes the series of one length.
type SeriesStats struct {
	Length  int
	Count   int
	Average float64
	High    int
	Low     int
}

// Stats is the aggregate of a game history. Percentages are in the 0-100 range and are zero when
// there is nothing to divide by.
type Stats struct {
	TotalGames    int
	PracticeGames int
	TotalPins     int
	AverageScore  float64
	HighGame      int
	LowGame       int

	Frames           int
	StrikeFrames     int
	SpareFrames      int
	OpenFrames       int
	Strikes          int
	StrikePct        float64
	SparePct         float64
	OpenPct          float64
	MarkPct          float64
	FirstBallAverage float64

	SparesConverted    int
	SparesMissed       int
	SpareConversionPct float64
	// Indexed by the number of pins left after the first ball (1-10).
	SpareConvertedByPins [11]int
	SpareMissedByPins    [11]int
	SpareRateByPins      [11]float64

	Splits             int
	SplitsConverted    int
	SplitConversionPct float64

	LongestStrikeStreak int
	LongestOpenStreak   int
	// Indexed by run length; only 3 (turkey) through 11 are filled.
	StrikeStreaks         [12]int
	StrikeRunsOverEleven  int
	StrikeToStrikeChances int
	StrikeToStrikePct     float64

	PerfectGames    int
	CleanGames      int
	CleanPct        float64
	AllSparesGames  int
	Dutch200s       int
	Varipapa300s    int
	TenthStrikeouts int

	SeriesCount int
	// AverageSeriesScore is the mean game score over every game that belongs to a series.
	AverageSeriesScore float64
	// HighSeries is the best series total.
	HighSeries int
	// Indexed by series length; only 3 through 6 are filled. Average, High and Low are series totals.
	SeriesByLength [7]SeriesStats

	DaysPlayed       int
	FirstGame        time.Time
	LastGame         time.Time
	GamesPerWeek     float64
	GamesPerMonth    float64
	SessionsPerWeek  float64
	SessionsPerMonth float64
}

// Turkeys returns the number of strike runs of exactly three.
func (s Stats) Turkeys() int {
	return s.StrikeStreaks[3]
}

type seriesTotal struct {
	games int
	total int
}

type aggregator struct {
	s Stats

	day    time.Time
	hasDay bool

	strikeRun        int
	runFromGameStart bool
	openRun          int
	prevStrike       bool
	hasPrev          bool
	strikeToStrike   int

	firstBallPins int
	firstBalls    int
	// Games with a full set of recorded throws; the denominator of per-game frame rates.
	throwGames int

	series      map[string]*seriesTotal
	seriesOrder []string
}

// Aggregate computes statistics over games in a single forward pass. Games are processed in
// date order; the input slice is not modified.
func Aggregate(games []model.Game) Stats {
	a := &aggregator{series: map[string]*seriesTotal{}}
	for _, g := range byDate(games) {
		a.addGame(g)
	}
	return a.finish()
}

func byDate(games []model.Game) []model.Game {
	out := append([]model.Game(nil), games...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// gameScore prefers the frames over the stored total; games imported as totals only have none.
func gameScore(g model.Game) int {
	if !g.HasThrows() {
		return g.TotalScore
	}
	return scoring.Calculate(g.Frames).Total
}

func (a *aggregator) addGame(g model.Game) {
	day := dayOf(g.Date)
	if !a.hasDay || !day.Equal(a.day) {
		a.breakRuns()
		a.day = day
		a.hasDay = true
		a.s.DaysPlayed++
	}
	if a.s.TotalGames == 0 {
		a.s.FirstGame = g.Date
	}
	a.s.LastGame = g.Date

	score := gameScore(g)
	a.s.TotalGames++
	a.s.TotalPins += score
	if g.Practice {
		a.s.PracticeGames++
	}
	if a.s.TotalGames == 1 || score > a.s.HighGame {
		a.s.HighGame = score
	}
	if a.s.TotalGames == 1 || score < a.s.LowGame {
		a.s.LowGame = score
	}
	if score == scoring.PerfectScore {
		a.s.PerfectGames++
	}
	if g.SeriesID != "" {
		st, ok := a.series[g.SeriesID]
		if !ok {
			st = &seriesTotal{}
			a.series[g.SeriesID] = st
			a.seriesOrder = append(a.seriesOrder, g.SeriesID)
		}
		st.games++
		st.total += score
	}

	if len(g.Frames) < model.FrameCount || !g.HasThrows() {
		return
	}
	a.throwGames++
	if scoring.IsClean(g.Frames) {
		a.s.CleanGames++
	}
	if allSpares(g.Frames) {
		a.s.AllSparesGames++
	}
	if score == 200 && (dutch(g.Frames, 0) || dutch(g.Frames, 1)) {
		a.s.Dutch200s++
	}
	tenth := g.Frames[model.FrameCount-1]
	if tenth.Value(0) == 10 && tenth.Value(1) == 10 && tenth.Value(2) == 10 && len(tenth.Throws) == 3 {
		a.s.TenthStrikeouts++
	}

	for i, f := range g.Frames[:model.FrameCount] {
		a.addFrame(f, i)
	}
}

func (a *aggregator) addFrame(f model.Frame, index int) {
	kind := scoring.Classify(f)
	if kind == scoring.Incomplete {
		return
	}
	a.s.Frames++
	switch kind {
	case scoring.Strike:
		a.s.StrikeFrames++
		a.endOpenRun()
	case scoring.Spare:
		a.s.SpareFrames++
		a.endOpenRun()
	case scoring.Open:
		a.s.OpenFrames++
		a.openRun++
		if a.openRun > a.s.LongestOpenStreak {
			a.s.LongestOpenStreak = a.openRun
		}
	}
	a.firstBalls++
	a.firstBallPins += f.Value(0)

	for _, j := range freshBalls(f, index) {
		v := f.Value(j)
		a.freshBall(v == 10, index == 0 && j == 0)
		if v == 10 || !f.Has(j+1) {
			continue
		}
		t := f.Throws[j]
		left := 10 - v
		converted := converts(f, j)
		if converted {
			a.s.SparesConverted++
			a.s.SpareConvertedByPins[left]++
		} else {
			a.s.SparesMissed++
			a.s.SpareMissedByPins[left]++
		}
		if t.Tracked && t.Split {
			a.s.Splits++
			if converted {
				a.s.SplitsConverted++
			}
		}
	}
}

// freshBalls lists the throws of a frame delivered at a full rack.
func freshBalls(f model.Frame, index int) []int {
	out := []int{0}
	if index < model.FrameCount-1 {
		return out
	}
	v0, v1 := f.Value(0), f.Value(1)
	if f.Has(1) && v0 == 10 {
		out = append(out, 1)
	}
	if f.Has(2) && ((v0 == 10 && v1 == 10) || (v0 < 10 && v0+v1 == 10)) {
		out = append(out, 2)
	}
	return out
}

// converts reports whether the ball after fresh ball j cleared the rack.
func converts(f model.Frame, j int) bool {
	if !f.Has(j + 1) {
		return false
	}
	next := f.Throws[j+1]
	if f.Throws[j].Tracked && next.Tracked {
		return next.Standing.Empty()
	}
	return f.Value(j)+next.Value == 10
}

func (a *aggregator) freshBall(strike, gameStart bool) {
	if a.hasPrev && a.prevStrike {
		a.s.StrikeToStrikeChances++
		if strike {
			a.strikeToStrike++
		}
	}
	a.hasPrev = true
	a.prevStrike = strike

	if !strike {
		a.endStrikeRun()
		return
	}
	a.s.Strikes++
	if a.strikeRun == 0 {
		a.runFromGameStart = gameStart
	}
	a.strikeRun++
	if a.strikeRun > a.s.LongestStrikeStreak {
		a.s.LongestStrikeStreak = a.strikeRun
	}
	if a.strikeRun == strikeChancesPerGame && !a.runFromGameStart {
		a.s.Varipapa300s++
	}
}

func (a *aggregator) endStrikeRun() {
	switch {
	case a.strikeRun > maxTrackedStreak:
		a.s.StrikeRunsOverEleven++
	case a.strikeRun >= minTrackedStreak:
		a.s.StrikeStreaks[a.strikeRun]++
	}
	a.strikeRun = 0
}

func (a *aggregator) endOpenRun() {
	a.openRun = 0
}

// breakRuns closes every running streak; used at day boundaries and at the end of history.
func (a *aggregator) breakRuns() {
	a.endStrikeRun()
	a.endOpenRun()
	a.hasPrev = false
	a.prevStrike = false
}

func allSpares(fs []model.Frame) bool {
	for i := 0; i < model.FrameCount; i++ {
		if scoring.Classify(fs[i]) != scoring.Spare {
			return false
		}
	}
	return true
}

// dutch reports whether frames alternate strike and spare, starting with a strike when parity
// is 0 and with a spare when it is 1.
func dutch(fs []model.Frame, parity int) bool {
	for i := 0; i < model.FrameCount-1; i++ {
		want := scoring.Spare
		if i%2 == parity {
			want = scoring.Strike
		}
		if scoring.Classify(fs[i]) != want {
			return false
		}
	}
	tenth := fs[model.FrameCount-1]
	if parity == 0 {
		return scoring.Classify(tenth) == scoring.Spare && tenth.Value(2) == 10
	}
	return tenth.Value(0) == 10 && tenth.Has(2) && tenth.Value(1) < 10 && tenth.Value(1)+tenth.Value(2) == 10
}

func (a *aggregator) finish() Stats {
	a.breakRuns()
	s := a.s
	if s.TotalGames == 0 {
		return s
	}
	s.AverageScore = float64(s.TotalPins) / float64(s.TotalGames)
	s.StrikePct = pct(s.Strikes, a.throwGames*strikeChancesPerGame)
	s.SparePct = pct(s.SpareFrames, s.Frames)
	s.OpenPct = pct(s.OpenFrames, s.Frames)
	s.MarkPct = pct(s.StrikeFrames+s.SpareFrames, s.Frames)
	s.SpareConversionPct = pct(s.SparesConverted, s.SparesConverted+s.SparesMissed)
	for n := 1; n <= 10; n++ {
		s.SpareRateByPins[n] = pct(s.SpareConvertedByPins[n], s.SpareConvertedByPins[n]+s.SpareMissedByPins[n])
	}
	s.SplitConversionPct = pct(s.SplitsConverted, s.Splits)
	s.StrikeToStrikePct = pct(a.strikeToStrike, s.StrikeToStrikeChances)
	s.CleanPct = pct(s.CleanGames, a.throwGames)
	if a.firstBalls > 0 {
		s.FirstBallAverage = float64(a.firstBallPins) / float64(a.firstBalls)
	}

	var seriesPins, seriesGames int
	for _, id := range a.seriesOrder {
		st := a.series[id]
		s.SeriesCount++
		seriesPins += st.total
		seriesGames += st.games
		if st.total > s.HighSeries {
			s.HighSeries = st.total
		}
		if st.games < 3 || st.games > 6 {
			continue
		}
		b := &s.SeriesByLength[st.games]
		b.Length = st.games
		if b.Count == 0 || st.total < b.Low {
			b.Low = st.total
		}
		if st.total > b.High {
			b.High = st.total
		}
		b.Count++
		b.Average += float64(st.total)
	}
	if seriesGames > 0 {
		s.AverageSeriesScore = float64(seriesPins) / float64(seriesGames)
	}
	for n := 3; n <= 6; n++ {
		if b := &s.SeriesByLength[n]; b.Count > 0 {
			b.Average /= float64(b.Count)
		}
	}

	spanDays := dayOf(s.LastGame).Sub(dayOf(s.FirstGame)).Hours()/24 + 1
	weeks := maxFloat(1, spanDays/7)
	months := maxFloat(1, spanDays/30.4375)
	s.GamesPerWeek = float64(s.TotalGames) / weeks
	s.GamesPerMonth = float64(s.TotalGames) / months
	s.SessionsPerWeek = float64(s.DaysPlayed) / weeks
	s.SessionsPerMonth = float64(s.DaysPlayed) / months
	return s
}

func pct(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
