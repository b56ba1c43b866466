package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tenpin/internal/gamefile"
	"github.com/verte-zerg/tenpin/internal/simulate"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
}

func TestScoreCommand(t *testing.T) {
	out, err := execute(t, "score", "X", "7/", "9-", "X", "X", "81", "X", "9/", "X", "XX9")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if !strings.Contains(out, "Total: 203") || strings.Contains(out, "Max:") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "Scores: 20 39 48 76 95 104 124 144 174 203") {
		t.Fatalf("unexpected frame scores:\n%s", out)
	}

	out, err = execute(t, "score", "X", "7/")
	if err != nil {
		t.Fatalf("score partial: %v", err)
	}
	if !strings.Contains(out, "Max: 280") {
		t.Fatalf("expected max for a partial game:\n%s", out)
	}

	if _, err := execute(t, "score", "X", "78"); err == nil {
		t.Fatalf("expected error for an illegal frame")
	}
}

const importDoc = `games:
  - date: 2026-03-01
    series: S1
    league: Tuesday Mixed
    balls: [Phaze II]
    frames: ["X", "7/", "9-", "X", "X", "81", "X", "9/", "X", "XX9"]
  - date: 2026-03-01
    series: S1
    score: 180
`

func TestImportExportRoundTrip(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.yaml")
	if err := os.WriteFile(in, []byte(importDoc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := execute(t, "import", in); err != nil {
		t.Fatalf("import: %v", err)
	}

	out := filepath.Join(dir, "out", "games.yaml")
	if _, err := execute(t, "export", out); err != nil {
		t.Fatalf("export: %v", err)
	}
	games, err := gamefile.Load(out)
	if err != nil {
		t.Fatalf("load export: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
	totals := []int{games[0].TotalScore, games[1].TotalScore}
	if !(totals[0] == 203 && totals[1] == 180) && !(totals[0] == 180 && totals[1] == 203) {
		t.Fatalf("unexpected totals %v", totals)
	}

	text, err := execute(t, "stats", "--format", "text", "--league", "tuesday mixed")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(text, "203") {
		t.Fatalf("stats output missing high game:\n%s", text)
	}

	prom, err := execute(t, "stats", "--format", "prom")
	if err != nil {
		t.Fatalf("stats prom: %v", err)
	}
	if !strings.Contains(prom, "tenpin_games 2") {
		t.Fatalf("prom output missing games gauge:\n%s", prom)
	}
}

func TestStatsRejectsBadFlags(t *testing.T) {
	isolate(t)
	if _, err := execute(t, "stats", "--format", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
	if _, err := execute(t, "stats", "--format", "text", "--since", "yesterday"); err == nil {
		t.Fatalf("expected since error")
	}
	if _, err := execute(t, "stats", "--format", "text", "--curve-window", "0"); err == nil {
		t.Fatalf("expected curve window error")
	}
}

func TestSimulatedGames(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	games := simulatedGames(simulate.NewSeeded(3), simulate.League, 7, 3, now)
	if len(games) != 7 {
		t.Fatalf("expected 7 games, got %d", len(games))
	}
	if !games[0].Series || games[0].SeriesID != games[2].SeriesID {
		t.Fatalf("first three games should share a series")
	}
	if games[3].SeriesID == games[0].SeriesID {
		t.Fatalf("second day should start a new series")
	}
	last := games[6]
	if last.Series || last.Date.Day() != 10 || last.Date.Hour() != 19 {
		t.Fatalf("unexpected trailing game %+v", last.Date)
	}
	if games[0].Date.Day() != 8 {
		t.Fatalf("expected the first series two days back, got %v", games[0].Date)
	}
}

func TestParseSkill(t *testing.T) {
	if s, err := parseSkill(" Pro "); err != nil || s != simulate.Pro {
		t.Fatalf("unexpected skill %+v err=%v", s, err)
	}
	if _, err := parseSkill("legend"); err == nil {
		t.Fatalf("expected error for unknown skill")
	}
}

func TestDeleteUnknownGame(t *testing.T) {
	isolate(t)
	if _, err := execute(t, "delete", "42"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := execute(t, "delete", "abc"); err == nil {
		t.Fatalf("expected invalid id error")
	}
}

func TestEditCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.yaml")
	if err := os.WriteFile(in, []byte(importDoc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := execute(t, "import", in); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, err := execute(t, "edit", "1", "--league", " Friday Trios ", "--ball", "Hammer,Spare", "--note", "new cover"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	out := filepath.Join(dir, "games.yaml")
	if _, err := execute(t, "export", out); err != nil {
		t.Fatalf("export: %v", err)
	}
	games, err := gamefile.Load(out)
	if err != nil {
		t.Fatalf("load export: %v", err)
	}
	edited := 0
	for _, g := range games {
		if g.League != "Friday Trios" {
			continue
		}
		edited++
		if len(g.Balls) != 2 || g.Balls[0] != "Hammer" || g.Balls[1] != "Spare" || g.Note != "new cover" {
			t.Fatalf("unexpected edited game %+v", g)
		}
		if g.TotalScore != 203 && g.TotalScore != 180 {
			t.Fatalf("score changed by edit: %d", g.TotalScore)
		}
	}
	if edited != 1 {
		t.Fatalf("expected one edited game, got %d", edited)
	}

	if _, err := execute(t, "edit", "1"); err == nil {
		t.Fatalf("expected an error without fields to edit")
	}
	if _, err := execute(t, "edit", "1", "--pattern", "a,b,c"); err == nil {
		t.Fatalf("expected an error for three patterns")
	}
	if _, err := execute(t, "edit", "42", "--league", "x"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found, got %v", err)
	}
}
