// Package gamefile reads and writes game history as YAML.
package gamefile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tenpin/internal/frames"
	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/scoring"
)

// ErrNoGames is returned when a file holds no games.
var ErrNoGames = errors.New("no games in file")

const dateLayout = "2006-01-02"

// File is the document layout.
type File struct {
	Games []Record `yaml:"games"`
}

// Record is one game. Exactly one of Frames, Throws or Score describes the result: Frames holds
// scorecard notation per frame, Throws the pins knocked by every throw of every frame, and Score
// a bare total.
type Record struct {
	Date     string    `yaml:"date"`
	Series   string    `yaml:"series,omitempty"`
	League   string    `yaml:"league,omitempty"`
	Practice bool      `yaml:"practice,omitempty"`
	Balls    []string  `yaml:"balls,omitempty,flow"`
	Patterns []string  `yaml:"patterns,omitempty,flow"`
	Note     string    `yaml:"note,omitempty"`
	Score    int       `yaml:"score,omitempty"`
	Frames   []string  `yaml:"frames,omitempty,flow"`
	Throws   [][][]int `yaml:"throws,omitempty"`
}

// Load reads and decodes the game file at path.
func Load(path string) ([]model.Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open game file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()
	games, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return games, nil
}

// Decode parses a YAML document into scored games.
func Decode(r io.Reader) ([]model.Game, error) {
	var doc File
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoGames
		}
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if len(doc.Games) == 0 {
		return nil, ErrNoGames
	}
	games := make([]model.Game, 0, len(doc.Games))
	for i, rec := range doc.Games {
		g, err := rec.Game()
		if err != nil {
			return nil, fmt.Errorf("games[%d]: %w", i, err)
		}
		games = append(games, g)
	}
	return games, nil
}

// Game converts the record into a scored game.
func (rec Record) Game() (model.Game, error) {
	date, err := parseDate(rec.Date)
	if err != nil {
		return model.Game{}, err
	}
	if len(rec.Patterns) > model.MaxPatterns {
		return model.Game{}, fmt.Errorf("at most %d patterns allowed, got %d", model.MaxPatterns, len(rec.Patterns))
	}
	g := model.Game{
		Date:     date,
		Practice: rec.Practice,
		SeriesID: strings.TrimSpace(rec.Series),
		League:   rec.League,
		Note:     rec.Note,
		Balls:    rec.Balls,
		Patterns: rec.Patterns,
	}

	switch {
	case len(rec.Frames) > 0 && len(rec.Throws) > 0:
		return model.Game{}, errors.New("frames and throws are mutually exclusive")
	case len(rec.Frames) > 0:
		fs, ok := frames.ParseFrames(rec.Frames)
		if !ok {
			return model.Game{}, fmt.Errorf("invalid frames %q", strings.Join(rec.Frames, " "))
		}
		g.Frames = fs
	case len(rec.Throws) > 0:
		fs, err := pinFrames(rec.Throws)
		if err != nil {
			return model.Game{}, err
		}
		g.Frames = fs
	default:
		if rec.Score < 0 || rec.Score > scoring.PerfectScore {
			return model.Game{}, fmt.Errorf("score %d out of range", rec.Score)
		}
		g.TotalScore = rec.Score
		g.Perfect = rec.Score == scoring.PerfectScore
		g.Series = g.SeriesID != ""
		return g, nil
	}
	return scoring.Finalize(g), nil
}

func pinFrames(throws [][][]int) ([]model.Frame, error) {
	if len(throws) > model.FrameCount {
		return nil, fmt.Errorf("%d frames given, at most %d allowed", len(throws), model.FrameCount)
	}
	e := frames.NewPinEntry()
	for fi, frame := range throws {
		if len(frame) == 0 {
			return nil, fmt.Errorf("frame %d has no throws", fi+1)
		}
		for ti, knocked := range frame {
			if e.Cursor().Frame != fi {
				return nil, fmt.Errorf("frame %d: throw %d does not belong to this frame", fi+1, ti+1)
			}
			next, ok := e.Throw(knocked...)
			if !ok {
				return nil, fmt.Errorf("frame %d: throw %d rejected", fi+1, ti+1)
			}
			e = next
		}
		if fi < len(throws)-1 && e.Cursor().Frame == fi {
			return nil, fmt.Errorf("frame %d is incomplete", fi+1)
		}
	}
	return e.Frames(), nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("date is required")
	}
	if t, err := time.ParseInLocation(dateLayout, value, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t, nil
}

// Encode writes games as a YAML document. Pin-tracked games are written as throws, other games
// as scorecard notation, and games without throws as a bare score.
func Encode(w io.Writer, games []model.Game) error {
	doc := File{Games: make([]Record, 0, len(games))}
	for _, g := range games {
		doc.Games = append(doc.Games, toRecord(g))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode games: %w", err)
	}
	return enc.Close()
}

func toRecord(g model.Game) Record {
	rec := Record{
		Date:     formatDate(g.Date),
		Series:   g.SeriesID,
		League:   g.League,
		Practice: g.Practice,
		Balls:    g.Balls,
		Patterns: g.Patterns,
		Note:     g.Note,
	}
	switch {
	case !g.HasThrows():
		rec.Score = g.TotalScore
	case pinTracked(g.Frames):
		for _, f := range g.Frames {
			if len(f.Throws) == 0 {
				break
			}
			frame := make([][]int, len(f.Throws))
			for i, t := range f.Throws {
				frame[i] = t.Knocked.Pins()
				if frame[i] == nil {
					frame[i] = []int{}
				}
			}
			rec.Throws = append(rec.Throws, frame)
		}
	default:
		for _, text := range frames.FormatGame(g.Frames) {
			if text == "" {
				break
			}
			rec.Frames = append(rec.Frames, text)
		}
	}
	return rec
}

func pinTracked(fs []model.Frame) bool {
	for _, f := range fs {
		for _, t := range f.Throws {
			if !t.Tracked {
				return false
			}
		}
	}
	return true
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(time.RFC3339)
}
