package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tenpin/internal/gamefile"
	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/offload"
	"github.com/verte-zerg/tenpin/internal/simulate"
	"github.com/verte-zerg/tenpin/internal/stats"
	"github.com/verte-zerg/tenpin/internal/store"
)

const (
	plotHeight          = 8
	defaultSimGames     = 3
	defaultSeriesLength = 3
)

var (
	simGames        int
	simSkill        string
	simSeriesLength int
	simSeed         int64

	editLeague   string
	editNote     string
	editBalls    []string
	editPatterns []string
)

func renderStatsText(w io.Writer, r stats.Report) error {
	if len(r.Games) == 0 {
		if _, err := fmt.Fprintln(w, "No games found."); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	steps := []func() error{
		func() error { return stats.RenderComparison(w, r.Comparison) },
		func() error { return stats.RenderSummary(w, r.Stats) },
		func() error { return stats.RenderSpareTable(w, r.Stats) },
		func() error { return stats.RenderSeries(w, r.Stats) },
		func() error {
			return stats.RenderScoreCurve(w, r.Games, r.CurveWindow, 0, plotHeight, stats.ColorEnabled(w))
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import games from a YAML game file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	games, err := gamefile.Load(args[0])
	if err != nil {
		return err
	}
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	ctx := commandContext(cmd)
	res := env.client.ProcessHistoryWithFallback(ctx, offload.ProcessHistoryRequest{Games: games})
	for _, g := range res.Invalid {
		logErrf("Skipping invalid game dated %s\n", g.Date.Format("2006-01-02"))
	}
	for _, g := range res.Games {
		if _, err := env.store.InsertGame(ctx, g); err != nil {
			return fmt.Errorf("failed to save game: %w", err)
		}
	}
	logErrf("Imported %d games\n", len(res.Games))
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Export games to a YAML game file (stdout when FILE is omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExportCmd,
	}
	addStatsFlags(cmd)
	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	games, err := env.store.ListGames(commandContext(cmd), env.statsCfg.Filter)
	if err != nil {
		return fmt.Errorf("failed to load games: %w", err)
	}
	if len(games) == 0 {
		return gamefile.ErrNoGames
	}
	if len(args) == 0 {
		return gamefile.Encode(cmd.OutOrStdout(), games)
	}
	if err := writeGameFile(args[0], games); err != nil {
		return err
	}
	logErrf("Wrote %d games to %s\n", len(games), args[0])
	return nil
}

func writeGameFile(path string, games []model.Game) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create game file dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "games-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp game file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := gamefile.Encode(writer, games); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush game file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close game file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write game file: %w", err)
	}
	return nil
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Recompute stats whenever a YAML game file changes",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatchCmd,
	}
	addStatsFlags(cmd)
	return cmd
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	path := args[0]
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	show := func(games []model.Game) {
		processed := env.client.ProcessHistoryWithFallback(ctx, offload.ProcessHistoryRequest{Games: games})
		in := stats.Input{
			Games:       processed.Games,
			Filter:      env.statsCfg.Filter,
			Reference:   time.Now(),
			CurveWindow: env.statsCfg.CurveWindow,
		}
		report := env.client.ComputeStatsWithFallback(ctx, offload.ComputeStatsRequest{Input: in}).Report
		header := fmt.Sprintf("== %s (%s) ==", filepath.Base(path), time.Now().Format("15:04:05"))
		if _, err := fmt.Fprintln(out, header); err != nil {
			logErrf("failed to write output: %v\n", err)
			return
		}
		if err := renderStatsText(out, report); err != nil {
			logErrf("%v\n", err)
		}
	}

	games, err := gamefile.Load(path)
	switch {
	case err == nil:
		show(games)
	case errors.Is(err, gamefile.ErrNoGames):
		logErrln("No games yet; waiting for changes")
	default:
		return err
	}
	if err := gamefile.Watch(ctx, path, show); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return nil
}

func newSimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Bowl simulated games into the history",
		Args:  cobra.NoArgs,
		RunE:  runSimCmd,
	}
	cmd.Flags().IntVar(&simGames, "games", defaultSimGames, "number of games")
	cmd.Flags().StringVar(&simSkill, "skill", "league", "bowler skill: beginner, league or pro")
	cmd.Flags().IntVar(&simSeriesLength, "series-length", defaultSeriesLength, "games per series (0 for none)")
	cmd.Flags().Int64Var(&simSeed, "seed", 0, "random seed (0 for time based)")
	return cmd
}

func parseSkill(name string) (simulate.Skill, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "beginner":
		return simulate.Beginner, nil
	case "league":
		return simulate.League, nil
	case "pro":
		return simulate.Pro, nil
	}
	return simulate.Skill{}, fmt.Errorf("unknown skill %q (use beginner, league or pro)", name)
}

// simulatedGames bowls count games, one series per day ending today.
func simulatedGames(gen *simulate.Generator, skill simulate.Skill, count, seriesLength int, now time.Time) []model.Game {
	if seriesLength <= 0 {
		seriesLength = 1
	}
	sessions := (count + seriesLength - 1) / seriesLength
	evening := time.Date(now.Year(), now.Month(), now.Day(), 19, 0, 0, 0, now.Location())
	games := make([]model.Game, 0, count)
	for s := 0; s < sessions; s++ {
		n := seriesLength
		if left := count - len(games); left < n {
			n = left
		}
		start := evening.AddDate(0, 0, s-sessions+1)
		if seriesLength == 1 || n == 1 {
			games = append(games, gen.Game(skill, start))
			continue
		}
		games = append(games, gen.Series(skill, start, n)...)
	}
	return games
}

func runSimCmd(cmd *cobra.Command, _ []string) error {
	if simGames <= 0 {
		return fmt.Errorf("--games must be > 0")
	}
	skill, err := parseSkill(simSkill)
	if err != nil {
		return err
	}
	gen := simulate.New()
	if simSeed != 0 {
		gen = simulate.NewSeeded(simSeed)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := commandContext(cmd)
	games := simulatedGames(gen, skill, simGames, simSeriesLength, time.Now())
	total := 0
	for _, g := range games {
		if _, err := st.InsertGame(ctx, g); err != nil {
			return fmt.Errorf("failed to save game: %w", err)
		}
		total += g.TotalScore
	}
	logErrf("Bowled %d games, average %.1f\n", len(games), float64(total)/float64(len(games)))
	return nil
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a game from the history",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteCmd,
	}
}

func runDeleteCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid game id %q", args[0])
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.DeleteGame(commandContext(cmd), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("game %d not found", id)
		}
		return fmt.Errorf("failed to delete game: %w", err)
	}
	logErrf("Deleted game %d\n", id)
	return nil
}

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the league, note, balls or patterns of a saved game",
		Args:  cobra.ExactArgs(1),
		RunE:  runEditCmd,
	}
	cmd.Flags().StringVar(&editLeague, "league", "", "league name")
	cmd.Flags().StringVar(&editNote, "note", "", "free-form note")
	cmd.Flags().StringSliceVar(&editBalls, "ball", nil, "balls used (repeat or comma separate)")
	cmd.Flags().StringSliceVar(&editPatterns, "pattern", nil, "oil patterns (at most two)")
	return cmd
}

func runEditCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid game id %q", args[0])
	}
	flags := cmd.Flags()
	if !flags.Changed("league") && !flags.Changed("note") && !flags.Changed("ball") && !flags.Changed("pattern") {
		return fmt.Errorf("nothing to edit: pass --league, --note, --ball or --pattern")
	}
	if len(editPatterns) > model.MaxPatterns {
		return fmt.Errorf("--pattern accepts at most %d patterns", model.MaxPatterns)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := commandContext(cmd)
	games, err := st.ListGames(ctx, model.Filter{})
	if err != nil {
		return fmt.Errorf("failed to load games: %w", err)
	}
	var meta model.GameMeta
	found := false
	for _, g := range games {
		if g.ID == id {
			meta = model.GameMeta{League: g.League, Note: g.Note, Balls: g.Balls, Patterns: g.Patterns}
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("game %d not found", id)
	}
	if flags.Changed("league") {
		meta.League = strings.TrimSpace(editLeague)
	}
	if flags.Changed("note") {
		meta.Note = strings.TrimSpace(editNote)
	}
	if flags.Changed("ball") {
		meta.Balls = trimNames(editBalls)
	}
	if flags.Changed("pattern") {
		meta.Patterns = trimNames(editPatterns)
	}

	if err := st.UpdateGameMeta(ctx, id, meta); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("game %d not found", id)
		}
		return fmt.Errorf("failed to update game: %w", err)
	}
	logErrf("Updated game %d\n", id)
	return nil
}

func trimNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
