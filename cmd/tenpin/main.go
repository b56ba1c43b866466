// Package main provides the CLI entrypoint for tenpin.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tenpin/internal/config"
	"github.com/verte-zerg/tenpin/internal/frames"
	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/offload"
	"github.com/verte-zerg/tenpin/internal/scoring"
	"github.com/verte-zerg/tenpin/internal/stats"
	"github.com/verte-zerg/tenpin/internal/statsui"
	"github.com/verte-zerg/tenpin/internal/store"
	"github.com/verte-zerg/tenpin/internal/tui"
)

const (
	defaultMode        = "digit"
	defaultCurveWindow = 10
)

var (
	verbose bool

	bowlMode     string
	bowlBall     string
	bowlLeague   string
	bowlPattern  string
	bowlPractice bool
	bowlSeries   string

	statsSince           string
	statsUntil           string
	statsLeague          string
	statsBall            string
	statsPattern         string
	statsLast            int
	statsExcludePractice bool
	statsCurveWindow     int
	statsFormat          string
	statsSaveSnapshot    bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tenpin",
		Short:         "Ten-pin bowling scorecard and stats",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogging(verbose)
		},
		RunE: runBowlCmd,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log background work to stderr")
	addBowlFlags(rootCmd)

	bowlCmd := &cobra.Command{
		Use:   "bowl",
		Short: "Score a game interactively",
		Args:  cobra.NoArgs,
		RunE:  runBowlCmd,
	}
	addBowlFlags(bowlCmd)

	rootCmd.AddCommand(bowlCmd)
	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLeavesCmd())
	rootCmd.AddCommand(newBallsCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newSimCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func addBowlFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&bowlMode, "mode", defaultMode, "entry mode: digit or pins")
	cmd.Flags().StringVar(&bowlBall, "ball", "", "ball used for this game")
	cmd.Flags().StringVar(&bowlLeague, "league", "", "league name")
	cmd.Flags().StringVar(&bowlPattern, "pattern", "", "oil pattern")
	cmd.Flags().BoolVar(&bowlPractice, "practice", false, "mark games as practice")
	cmd.Flags().StringVar(&bowlSeries, "series", "", "series identifier shared by the games of a session")
}

func runBowlCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &bowlMode, fileCfg.Entry.Mode)
	applyStringConfig(cmd, "ball", &bowlBall, fileCfg.Entry.Ball)
	applyStringConfig(cmd, "league", &bowlLeague, fileCfg.Entry.League)
	applyStringConfig(cmd, "pattern", &bowlPattern, fileCfg.Entry.Pattern)

	cfg := model.EntryConfig{
		Mode:     model.EntryMode(bowlMode),
		Ball:     strings.TrimSpace(bowlBall),
		League:   strings.TrimSpace(bowlLeague),
		Pattern:  strings.TrimSpace(bowlPattern),
		Practice: bowlPractice,
		SeriesID: strings.TrimSpace(bowlSeries),
	}
	if cfg.Mode != model.EntryDigit && cfg.Mode != model.EntryPins {
		return fmt.Errorf("--mode must be digit or pins")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	program := tea.NewProgram(tui.NewModel(cfg, st), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score FRAME...",
		Short: "Score frames written in scorecard notation (e.g. X 7/ 9- XX9)",
		Args:  cobra.RangeArgs(1, model.FrameCount),
		RunE:  runScoreCmd,
	}
}

func runScoreCmd(cmd *cobra.Command, args []string) error {
	fs, ok := frames.ParseFrames(args)
	if !ok {
		return fmt.Errorf("invalid frame notation: %s", strings.Join(args, " "))
	}
	res := scoring.Calculate(fs)
	scores := make([]string, 0, len(res.FrameScores))
	for i, s := range res.FrameScores {
		if !frames.IsFrameComplete(fs, i) {
			break
		}
		scores = append(scores, fmt.Sprint(s))
	}
	lines := []string{
		"Frames: " + strings.Join(frames.FormatGame(fs), " "),
		"Scores: " + strings.Join(scores, " "),
		fmt.Sprintf("Total: %d", res.Total),
	}
	if !frames.IsGameComplete(fs) {
		lines = append(lines, fmt.Sprintf("Max: %d", scoring.MaxScore(fs)))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func addStatsFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&statsUntil, "until", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&statsLeague, "league", "", "league filter")
	cmd.Flags().StringVar(&statsBall, "ball", "", "ball filter")
	cmd.Flags().StringVar(&statsPattern, "pattern", "", "oil pattern filter")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N games")
	cmd.Flags().BoolVar(&statsExcludePractice, "exclude-practice", false, "skip practice games")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	addStatsFlags(cmd)
	cmd.Flags().StringVar(&statsFormat, "format", "tui", "output format: tui, text or prom")
	cmd.Flags().BoolVar(&statsSaveSnapshot, "save-snapshot", false, "store the current rates as the comparison baseline")
	return cmd
}

func newLeavesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaves",
		Short: "Show pin leaves and spare conversion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printReport(cmd, func(r stats.Report) error {
				return stats.RenderLeaves(cmd.OutOrStdout(), r.Leaves)
			})
		},
	}
	addStatsFlags(cmd)
	return cmd
}

func newBallsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balls",
		Short: "Show averages per ball and oil pattern",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printReport(cmd, func(r stats.Report) error {
				if err := stats.RenderEquipment(cmd.OutOrStdout(), "Balls", r.Balls); err != nil {
					return err
				}
				return stats.RenderEquipment(cmd.OutOrStdout(), "Patterns", r.Patterns)
			})
		},
	}
	addStatsFlags(cmd)
	return cmd
}

func buildStatsConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.StatsConfig, error) {
	applyBoolConfig(cmd, "exclude-practice", &statsExcludePractice, fileCfg.Stats.ExcludePractice)
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)
	applyIntConfig(cmd, "last", &statsLast, fileCfg.Stats.Last)

	since, err := parseDateFlag("since", statsSince)
	if err != nil {
		return model.StatsConfig{}, err
	}
	until, err := parseDateFlag("until", statsUntil)
	if err != nil {
		return model.StatsConfig{}, err
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return model.StatsConfig{
		Filter: model.Filter{
			Since:           since,
			Until:           until,
			League:          strings.TrimSpace(statsLeague),
			Ball:            strings.TrimSpace(statsBall),
			Pattern:         strings.TrimSpace(statsPattern),
			ExcludePractice: statsExcludePractice,
			Last:            statsLast,
		},
		CurveWindow: statsCurveWindow,
	}, nil
}

func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s value: %w", name, err)
	}
	return &parsed, nil
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	switch statsFormat {
	case "tui", "text", "prom":
	default:
		return fmt.Errorf("--format must be tui, text or prom")
	}
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	if statsFormat == "tui" {
		program := tea.NewProgram(statsui.NewModel(env.store, env.client, env.statsCfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}

	report, err := env.report(commandContext(cmd))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if statsFormat == "prom" {
		if err := stats.WritePrometheus(out, report.Stats); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	} else if err := renderStatsText(out, report); err != nil {
		return err
	}

	if statsSaveSnapshot {
		snap := stats.Snapshot{TakenAt: time.Now(), Games: report.Stats.TotalGames, Stats: report.Stats}
		if err := env.store.SaveSnapshot(commandContext(cmd), snap.Baseline()); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		logErrf("Saved baseline of %d games\n", snap.Games)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

// appEnv bundles what the history and stats commands share: the store, the offload worker and the
// resolved stats configuration.
type appEnv struct {
	store    *store.Store
	client   *offload.Client
	statsCfg model.StatsConfig
	cancel   context.CancelFunc
}

func openEnv(cmd *cobra.Command) (*appEnv, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	var statsCfg model.StatsConfig
	if cmd.Flags().Lookup("curve-window") != nil {
		if statsCfg, err = buildStatsConfig(cmd, fileCfg); err != nil {
			return nil, err
		}
	}
	statsTimeout, processTimeout, err := fileCfg.Offload.Timeouts()
	if err != nil {
		return nil, err
	}
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := offload.NewWorker()
	go w.Run(ctx)
	return &appEnv{
		store:    st,
		client:   offload.NewClient(w, statsTimeout, processTimeout),
		statsCfg: statsCfg,
		cancel:   cancel,
	}, nil
}

func (e *appEnv) close() {
	e.cancel()
	closeStore(e.store)
}

func (e *appEnv) report(ctx context.Context) (stats.Report, error) {
	in, err := stats.LoadInput(ctx, e.store, e.statsCfg, time.Now())
	if err != nil {
		return stats.Report{}, fmt.Errorf("failed to load games: %w", err)
	}
	return e.client.ComputeStatsWithFallback(ctx, offload.ComputeStatsRequest{Input: in}).Report, nil
}

func printReport(cmd *cobra.Command, render func(stats.Report) error) error {
	env, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()
	report, err := env.report(commandContext(cmd))
	if err != nil {
		return err
	}
	if err := render(report); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
