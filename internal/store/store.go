// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/pins"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a game id does not exist.
var ErrNotFound = errors.New("game not found")

const (
	kindBall    = "ball"
	kindPattern = "pattern"
)

// Store wraps SQLite access for game history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY,
			played_at TEXT NOT NULL,
			total_score INTEGER NOT NULL,
			frame_scores TEXT NOT NULL,
			clean INTEGER NOT NULL,
			perfect INTEGER NOT NULL,
			practice INTEGER NOT NULL,
			series_id TEXT NOT NULL,
			league TEXT NOT NULL,
			note TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS throws (
			game_id INTEGER NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			frame INTEGER NOT NULL,
			throw INTEGER NOT NULL,
			value INTEGER NOT NULL,
			standing INTEGER NOT NULL,
			knocked INTEGER NOT NULL,
			tracked INTEGER NOT NULL,
			split INTEGER NOT NULL,
			PRIMARY KEY (game_id, frame, throw)
		);`,
		`CREATE TABLE IF NOT EXISTS game_equipment (
			game_id INTEGER NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (game_id, kind, position)
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY,
			taken_at TEXT NOT NULL,
			games INTEGER NOT NULL,
			average REAL NOT NULL,
			strike_pct REAL NOT NULL,
			spare_pct REAL NOT NULL,
			open_pct REAL NOT NULL,
			conversion_pct REAL NOT NULL,
			clean_pct REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_played_at ON games(played_at);`,
		`CREATE INDEX IF NOT EXISTS idx_game_equipment_name ON game_equipment(kind, name);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertGame stores a scored game with its throws and equipment and returns its id.
func (s *Store) InsertGame(ctx context.Context, g model.Game) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO games (played_at, total_score, frame_scores, clean, perfect, practice, series_id, league, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Date.Format(time.RFC3339Nano),
		g.TotalScore,
		joinInts(g.FrameScores),
		boolInt(g.Clean),
		boolInt(g.Perfect),
		boolInt(g.Practice),
		g.SeriesID,
		g.League,
		g.Note,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err = insertThrows(ctx, tx, id, g.Frames); err != nil {
		return 0, err
	}
	if err = insertEquipment(ctx, tx, id, g.Balls, g.Patterns); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func insertThrows(ctx context.Context, tx *sql.Tx, id int64, frames []model.Frame) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO throws (game_id, frame, throw, value, standing, knocked, tracked, split)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for fi, f := range frames {
		for ti, t := range f.Throws {
			if _, err := stmt.ExecContext(ctx, id, fi, ti, t.Value, int(t.Standing), int(t.Knocked), boolInt(t.Tracked), boolInt(t.Split)); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertEquipment(ctx context.Context, tx *sql.Tx, id int64, balls, patterns []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM game_equipment WHERE game_id = ?`, id); err != nil {
		return err
	}
	for kind, names := range map[string][]string{kindBall: balls, kindPattern: patterns} {
		for pos, name := range names {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO game_equipment (game_id, kind, position, name) VALUES (?, ?, ?, ?)`,
				id, kind, pos, name); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteGame removes a game and everything recorded with it.
func (s *Store) DeleteGame(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("failed to delete game %d: %w", id, ErrNotFound)
	}
	// Foreign key cascades depend on the connection pragma; clear children explicitly.
	for _, table := range []string{"throws", "game_equipment"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE game_id = ?`, id); err != nil {
			return err
		}
	}
	return nil
}

// UpdateGameMeta replaces the league, note, balls and patterns of a game.
func (s *Store) UpdateGameMeta(ctx context.Context, id int64, meta model.GameMeta) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	res, err := tx.ExecContext(ctx, `UPDATE games SET league = ?, note = ? WHERE id = ?`, meta.League, meta.Note, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("failed to update game %d: %w", id, ErrNotFound)
		return err
	}
	if err = insertEquipment(ctx, tx, id, meta.Balls, meta.Patterns); err != nil {
		return err
	}
	return tx.Commit()
}

// ListGames returns the games matching filter in date order, with frames and equipment loaded.
func (s *Store) ListGames(ctx context.Context, filter model.Filter) ([]model.Game, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.ExcludePractice {
		clauses = append(clauses, "practice = 0")
	}
	if filter.League != "" {
		clauses = append(clauses, "league = ? COLLATE NOCASE")
		args = append(args, strings.TrimSpace(filter.League))
	}
	where := strings.Join(clauses, " AND ")

	games := map[int64]*model.Game{}
	var order []int64
	err := s.query(ctx, fmt.Sprintf(`SELECT id, played_at, total_score, frame_scores, clean, perfect, practice, series_id, league, note
		FROM games WHERE %s`, where), args, func(rows *sql.Rows) error {
		var g model.Game
		var playedAt, frameScores string
		var clean, perfect, practice int
		if err := rows.Scan(&g.ID, &playedAt, &g.TotalScore, &frameScores, &clean, &perfect, &practice, &g.SeriesID, &g.League, &g.Note); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, playedAt)
		if err != nil {
			return err
		}
		g.Date = parsed
		if g.FrameScores, err = splitInts(frameScores); err != nil {
			return err
		}
		g.Clean, g.Perfect, g.Practice = clean != 0, perfect != 0, practice != 0
		g.Series = g.SeriesID != ""
		g.Frames = model.NewFrames()
		games[g.ID] = &g
		order = append(order, g.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, nil
	}

	err = s.query(ctx, fmt.Sprintf(`SELECT game_id, frame, value, standing, knocked, tracked, split
		FROM throws WHERE game_id IN (SELECT id FROM games WHERE %s)
		ORDER BY game_id, frame, throw`, where), args, func(rows *sql.Rows) error {
		var id int64
		var frame, standing, knocked, tracked, split int
		var t model.Throw
		if err := rows.Scan(&id, &frame, &t.Value, &standing, &knocked, &tracked, &split); err != nil {
			return err
		}
		g, ok := games[id]
		if !ok || frame < 0 || frame >= len(g.Frames) {
			return nil
		}
		t.Standing, t.Knocked = pins.Set(standing), pins.Set(knocked)
		t.Tracked, t.Split = tracked != 0, split != 0
		g.Frames[frame].Throws = append(g.Frames[frame].Throws, t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.query(ctx, fmt.Sprintf(`SELECT game_id, kind, name
		FROM game_equipment WHERE game_id IN (SELECT id FROM games WHERE %s)
		ORDER BY game_id, kind, position`, where), args, func(rows *sql.Rows) error {
		var id int64
		var kind, name string
		if err := rows.Scan(&id, &kind, &name); err != nil {
			return err
		}
		g, ok := games[id]
		if !ok {
			return nil
		}
		switch kind {
		case kindBall:
			g.Balls = append(g.Balls, name)
		case kindPattern:
			g.Patterns = append(g.Patterns, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]model.Game, 0, len(order))
	for _, id := range order {
		if g := games[id]; filter.Match(*g) {
			result = append(result, *g)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	if filter.Last > 0 && len(result) > filter.Last {
		result = result[len(result)-filter.Last:]
	}
	return result, nil
}

// SaveSnapshot stores a baseline for later period comparisons.
func (s *Store) SaveSnapshot(ctx context.Context, b model.Baseline) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (taken_at, games, average, strike_pct, spare_pct, open_pct, conversion_pct, clean_pct)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.TakenAt.Format(time.RFC3339Nano), b.Games, b.Average, b.StrikePct, b.SparePct, b.OpenPct, b.SpareConversionPct, b.CleanPct)
	return err
}

// LatestSnapshot returns the most recently stored baseline. It reports false when none exists.
func (s *Store) LatestSnapshot(ctx context.Context) (model.Baseline, bool, error) {
	var b model.Baseline
	var takenAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT taken_at, games, average, strike_pct, spare_pct, open_pct, conversion_pct, clean_pct
		 FROM snapshots ORDER BY id DESC LIMIT 1`).
		Scan(&takenAt, &b.Games, &b.Average, &b.StrikePct, &b.SparePct, &b.OpenPct, &b.SpareConversionPct, &b.CleanPct)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Baseline{}, false, nil
	}
	if err != nil {
		return model.Baseline{}, false, err
	}
	if b.TakenAt, err = time.Parse(time.RFC3339Nano, takenAt); err != nil {
		return model.Baseline{}, false, err
	}
	return b, true, nil
}

func (s *Store) query(ctx context.Context, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func splitInts(value string) ([]int, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("failed to parse frame scores %q: %w", value, err)
		}
		out[i] = n
	}
	return out, nil
}
