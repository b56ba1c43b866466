package gamefile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/pins"
)

const sample = `
games:
  - date: 2026-03-01
    series: S1
    league: Tuesday Mixed
    balls: [Phaze II]
    patterns: [House Shot]
    frames: ["X", "7/", "9-", "X", "X", "81", "X", "9/", "X", "XX9"]
  - date: 2026-03-01T20:15:00Z
    series: S1
    throws:
      - [[1,2,3,4,5,6,7,8,9,10]]
      - [[1,2,3,5,6,8,9,10], [4,7]]
      - [[1,2,3,4,5,6,8,9], []]
  - date: 2026-03-02
    practice: true
    score: 212
`

func TestDecode(t *testing.T) {
	games, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("expected 3 games, got %d", len(games))
	}

	g := games[0]
	if g.TotalScore != 203 || !g.Series || g.SeriesID != "S1" || g.League != "Tuesday Mixed" {
		t.Fatalf("unexpected first game %+v", g)
	}
	if len(g.FrameScores) != 10 || g.FrameScores[0] != 20 {
		t.Fatalf("unexpected frame scores %v", g.FrameScores)
	}
	if g.Date.Hour() != 0 || g.Date.Day() != 1 {
		t.Fatalf("unexpected date %v", g.Date)
	}

	p := games[1]
	if !p.Frames[1].Throws[0].Tracked || p.Frames[1].Throws[0].Standing != pins.Of(4, 7) {
		t.Fatalf("expected pin data, got %+v", p.Frames[1].Throws[0])
	}
	if p.Frames[2].Throws[0].Standing != pins.Of(7, 10) || !p.Frames[2].Throws[0].Split {
		t.Fatalf("expected a 7-10 split, got %+v", p.Frames[2].Throws[0])
	}
	if p.TotalScore != 20+18+8 {
		t.Fatalf("unexpected partial score %d", p.TotalScore)
	}

	s := games[2]
	if s.TotalScore != 212 || !s.Practice || s.HasThrows() {
		t.Fatalf("unexpected score-only game %+v", s)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"missing date":  "games:\n  - frames: [X]\n",
		"bad frames":    "games:\n  - date: 2026-01-01\n    frames: [\"X7\", \"9-\"]\n",
		"both forms":    "games:\n  - date: 2026-01-01\n    frames: [X]\n    throws: [[[1]]]\n",
		"spill over":    "games:\n  - date: 2026-01-01\n    throws: [[[1,2,3,4,5,6,7,8,9,10], [1]]]\n",
		"incomplete":    "games:\n  - date: 2026-01-01\n    throws: [[[1]], [[2]]]\n",
		"many patterns": "games:\n  - date: 2026-01-01\n    patterns: [a, b, c]\n    score: 100\n",
		"bad score":     "games:\n  - date: 2026-01-01\n    score: 301\n",
	}
	for name, doc := range cases {
		if _, err := Decode(strings.NewReader(doc)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
	if _, err := Decode(strings.NewReader("games: []\n")); !errors.Is(err, ErrNoGames) {
		t.Fatalf("expected ErrNoGames, got %v", err)
	}
	if _, err := Decode(strings.NewReader("")); !errors.Is(err, ErrNoGames) {
		t.Fatalf("expected ErrNoGames for empty input, got %v", err)
	}
}

func TestEncodeKeepsPinData(t *testing.T) {
	games, err := Decode(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, games); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "2026-03-01") || !strings.Contains(out, "score: 212") {
		t.Fatalf("unexpected document:\n%s", out)
	}
	again, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode encoded document: %v\n%s", err, out)
	}
	for i := range games {
		if again[i].TotalScore != games[i].TotalScore {
			t.Fatalf("game %d: score %d, want %d", i, again[i].TotalScore, games[i].TotalScore)
		}
	}
	if again[1].Frames[2].Throws[0].Standing != pins.Of(7, 10) {
		t.Fatalf("pin data lost: %+v", again[1].Frames[2])
	}
	if again[0].Frames[9].Throws[2].Value != 9 {
		t.Fatalf("tenth frame lost: %+v", again[0].Frames[9])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.yaml")
	updated := sample + "  - date: 2026-03-03\n    score: 180\n"
	watchUntil(t, path, 4, func() error {
		return os.WriteFile(path, []byte(updated), 0o644)
	})
}

func TestWatchRenameSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "games.yaml")
	updated := sample + "  - date: 2026-03-03\n    score: 180\n  - date: 2026-03-04\n    score: 190\n"
	n := 0
	watchUntil(t, path, 5, func() error {
		n++
		tmp := filepath.Join(dir, fmt.Sprintf("games-%d.yaml.tmp", n))
		if err := os.WriteFile(tmp, []byte(updated), 0o644); err != nil {
			return err
		}
		return os.Rename(tmp, path)
	})
}

// watchUntil runs Watch on path and keeps calling save until a reload yields want games.
func watchUntil(t *testing.T, path string, want int, save func() error) {
	t.Helper()
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan []model.Game, 16)
	errc := make(chan error, 1)
	go func() {
		errc <- Watch(ctx, path, func(games []model.Game) {
			select {
			case changes <- games:
			default:
			}
		})
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case games := <-changes:
			if len(games) != want {
				continue
			}
			cancel()
			if err := <-errc; err != nil {
				t.Fatalf("watch returned %v", err)
			}
			return
		case <-tick.C:
			if err := save(); err != nil {
				t.Fatalf("save: %v", err)
			}
		case <-deadline:
			t.Fatalf("no change observed")
		}
	}
}
