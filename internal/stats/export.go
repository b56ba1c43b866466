package stats

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const metricPrefix = "tenpin_"

type gauge struct {
	value  float64
	labels map[string]string
}

func strPtr(s string) *string { return &s }

func floatPtr(v float64) *float64 { return &v }

// WritePrometheus writes s in the Prometheus text exposition format.
func WritePrometheus(w io.Writer, s Stats) error {
	families := []*dto.MetricFamily{
		family("games", "Games in the selection.", float64(s.TotalGames)),
		family("practice_games", "Practice games in the selection.", float64(s.PracticeGames)),
		family("average_score", "Mean game score.", s.AverageScore),
		family("high_game", "Highest game score.", float64(s.HighGame)),
		family("low_game", "Lowest game score.", float64(s.LowGame)),
		family("strike_ratio", "Strikes per strike opportunity.", s.StrikePct/100),
		family("spare_ratio", "Spare frames per frame.", s.SparePct/100),
		family("open_ratio", "Open frames per frame.", s.OpenPct/100),
		family("spare_conversion_ratio", "Spare chances converted.", s.SpareConversionPct/100),
		family("split_conversion_ratio", "Splits converted.", s.SplitConversionPct/100),
		family("first_ball_average", "Mean first-ball pin count.", s.FirstBallAverage),
		family("clean_games", "Games without an open frame.", float64(s.CleanGames)),
		family("perfect_games", "Games of 300.", float64(s.PerfectGames)),
		family("longest_strike_streak", "Longest run of consecutive strikes.", float64(s.LongestStrikeStreak)),
		family("series", "Distinct series.", float64(s.SeriesCount)),
		family("average_series_score", "Mean game score over games that belong to a series.", s.AverageSeriesScore),
	}

	streaks := make([]gauge, 0, maxTrackedStreak-minTrackedStreak+1)
	for n := minTrackedStreak; n <= maxTrackedStreak; n++ {
		streaks = append(streaks, gauge{value: float64(s.StrikeStreaks[n]), labels: map[string]string{"length": strconv.Itoa(n)}})
	}
	families = append(families, labeledFamily("strike_streaks", "Strike runs by exact length.", streaks))

	spares := make([]gauge, 0, 10)
	for n := 1; n <= 10; n++ {
		if s.SpareConvertedByPins[n]+s.SpareMissedByPins[n] == 0 {
			continue
		}
		spares = append(spares, gauge{value: s.SpareRateByPins[n] / 100, labels: map[string]string{"pins": strconv.Itoa(n)}})
	}
	if len(spares) > 0 {
		families = append(families, labeledFamily("spare_conversion_by_pins_ratio", "Spare conversion by pins left.", spares))
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func family(name, help string, value float64) *dto.MetricFamily {
	return labeledFamily(name, help, []gauge{{value: value}})
}

func labeledFamily(name, help string, values []gauge) *dto.MetricFamily {
	mf := &dto.MetricFamily{
		Name: strPtr(metricPrefix + name),
		Help: strPtr(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	for _, g := range values {
		m := &dto.Metric{Gauge: &dto.Gauge{Value: floatPtr(g.value)}}
		for _, k := range sortedKeys(g.labels) {
			m.Label = append(m.Label, &dto.LabelPair{Name: strPtr(k), Value: strPtr(g.labels[k])})
		}
		mf.Metric = append(mf.Metric, m)
	}
	return mf
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
