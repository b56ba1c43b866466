package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tenpin/internal/frames"
	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/scoring"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "tenpin.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func scoredGame(t *testing.T) model.Game {
	t.Helper()
	fs, ok := frames.ParseFrames([]string{"X", "7/", "9-", "X", "X", "81", "X", "9/", "X", "XX9"})
	if !ok {
		t.Fatalf("parse failed")
	}
	return scoring.Finalize(model.Game{
		Date:     time.Date(2024, 3, 4, 19, 0, 0, 0, time.UTC),
		Frames:   fs,
		League:   "Tuesday Mixed",
		Balls:    []string{"Phaze II"},
		Patterns: []string{"House"},
	})
}

func TestInsertAndListGames(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	id, err := st.InsertGame(ctx, scoredGame(t))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	games, err := st.ListGames(ctx, model.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(games) != 1 || games[0].ID != id {
		t.Fatalf("unexpected games %+v", games)
	}
	g := games[0]
	if g.TotalScore != 203 || scoring.Calculate(g.Frames).Total != 203 {
		t.Fatalf("frames not restored: total %d", g.TotalScore)
	}
	if len(g.Balls) != 1 || g.Balls[0] != "Phaze II" || len(g.Patterns) != 1 || g.League != "Tuesday Mixed" {
		t.Fatalf("metadata not restored %+v", g)
	}
}

func TestUpdateGameMeta(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	id, err := st.InsertGame(ctx, scoredGame(t))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	meta := model.GameMeta{League: "Friday Trios", Note: "new cover", Balls: []string{"Hammer", "Spare"}, Patterns: []string{"Shark"}}
	if err := st.UpdateGameMeta(ctx, id, meta); err != nil {
		t.Fatalf("update: %v", err)
	}
	games, err := st.ListGames(ctx, model.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	g := games[0]
	if g.League != "Friday Trios" || g.Note != "new cover" {
		t.Fatalf("unexpected league/note %q %q", g.League, g.Note)
	}
	if len(g.Balls) != 2 || g.Balls[0] != "Hammer" || g.Balls[1] != "Spare" {
		t.Fatalf("unexpected balls %v", g.Balls)
	}
	if len(g.Patterns) != 1 || g.Patterns[0] != "Shark" {
		t.Fatalf("unexpected patterns %v", g.Patterns)
	}
	if g.TotalScore != 203 || len(g.Frames[9].Throws) != 3 {
		t.Fatalf("frames changed by a metadata edit")
	}

	if err := st.UpdateGameMeta(ctx, id+1, meta); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteGame(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	id, err := st.InsertGame(ctx, scoredGame(t))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := st.DeleteGame(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	games, err := st.ListGames(ctx, model.Filter{})
	if err != nil || len(games) != 0 {
		t.Fatalf("expected no games, got %d (%v)", len(games), err)
	}
	if err := st.DeleteGame(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
