package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/particlefield/internal/automation"
	"github.com/san-kum/particlefield/internal/bench"
	"github.com/san-kum/particlefield/internal/config"
	"github.com/san-kum/particlefield/internal/logging"
	"github.com/san-kum/particlefield/internal/storage"
	"github.com/san-kum/particlefield/internal/tui"
	"github.com/san-kum/particlefield/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	dataDir    string
	themeName  string
	fps        int
	seed       int64
	logLevel   string
	logFile    string

	runFrames    int
	realtime     bool
	save         bool
	snapFrames   int
	snapOut      string
	recordFrames int
	recordOut    string
	showOut      string
	benchFrames  int
)

const logName = "particlefield.log"

func main() {
	rootCmd := &cobra.Command{
		Use:           "particlefield",
		Short:         "drifting point field with proximity links",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&themeName, "theme", config.DefaultTheme, "color theme")
	pf.IntVar(&fps, "fps", config.DefaultFPS, "frame rate")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 for time based)")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level")
	pf.StringVar(&logFile, "log-file", "", "log file (live view defaults to <data>/"+logName+")")

	runCmd := &cobra.Command{
		Use:   "run [preset|WxH]",
		Short: "run the field headless and plot links per frame",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&runFrames, "frames", 600, "frames to simulate")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "pace frames at --fps")
	runCmd.Flags().BoolVar(&save, "save", false, "store the final field as a snapshot")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [preset|WxH]",
		Short: "advance the field and write one frame (.svg, .png or .txt)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshotFrame,
	}
	snapshotCmd.Flags().IntVar(&snapFrames, "frames", 120, "frames to advance")
	snapshotCmd.Flags().StringVar(&snapOut, "out", "", "output file (default <data>/particlefield-<time>.svg)")

	recordCmd := &cobra.Command{
		Use:   "record [preset|WxH]",
		Short: "record an animated GIF",
		Args:  cobra.MaximumNArgs(1),
		RunE:  recordGIF,
	}
	recordCmd.Flags().IntVar(&recordFrames, "frames", 180, "frames to record")
	recordCmd.Flags().StringVar(&recordOut, "out", "", "output file (default <data>/particlefield-<time>.gif)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored snapshots",
		RunE:  listSnapshots,
	}

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "open a stored snapshot in the live view, or export it",
		Args:  cobra.ExactArgs(1),
		RunE:  showSnapshot,
	}
	showCmd.Flags().StringVar(&showOut, "out", "", "export to file (.svg, .png or .txt) instead of opening")

	themeCmd := &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "show or set the persisted theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: append(viz.ThemeNames(), "toggle"),
		RunE:      setTheme,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list viewport presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tPOINTS")
			for _, name := range config.ListPresets() {
				v := config.Presets[name]
				fmt.Fprintf(w, "%s\t%s\t%d\n", name, v, pointCount(v))
			}
			return w.Flush()
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench [preset|WxH]...",
		Short: "time frames for each viewport in parallel",
		RunE:  benchViewports,
	}
	benchCmd.Flags().IntVar(&benchFrames, "frames", 300, "frames per viewport")

	scriptCmd := &cobra.Command{
		Use:   "script [scenario.yaml]",
		Short: "render every step of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	windowCmd := &cobra.Command{
		Use:   "window [preset|WxH]",
		Short: "open the field in a native window (needs -tags raylib)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  openWindow,
	}

	rootCmd.AddCommand(runCmd, snapshotCmd, recordCmd, listCmd, showCmd, themeCmd, presetsCmd, benchCmd, scriptCmd, windowCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadSettings reads the config file, if any, and lets explicitly set
// flags override it.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !viz.HasTheme(cfg.Theme) {
		return nil, fmt.Errorf("%w: unknown theme %q (available: %v)", config.ErrInvalid, cfg.Theme, viz.ThemeNames())
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("theme") {
		cfg.Theme = themeName
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
}

// resolveTheme picks the theme: --theme, then the persisted preference,
// then the config file.
func resolveTheme(cmd *cobra.Command, cfg *config.Config, st *storage.Store) string {
	if cmd.Flags().Changed("theme") {
		return cfg.Theme
	}
	prefs, err := st.LoadPrefs()
	if err == nil && viz.HasTheme(prefs.Theme) {
		return prefs.Theme
	}
	return cfg.Theme
}

// newLogger logs to stderr for batch commands. The live view owns the
// terminal, so it always logs to a file.
func newLogger(cfg *config.Config, live bool) (*zap.Logger, error) {
	path := cfg.Log.File
	if live && path == "" {
		path = filepath.Join(cfg.DataDir, logName)
	}
	return logging.New(cfg.Log.Level, path)
}

func resolveSeed(cfg *config.Config) int64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return time.Now().UnixNano()
}

func viewportArg(args []string) (config.Viewport, error) {
	if len(args) == 0 {
		return config.Presets["desktop"], nil
	}
	return config.ParseViewport(args[0])
}

func defaultOut(cfg *config.Config, ext string) string {
	return filepath.Join(cfg.DataDir, fmt.Sprintf("particlefield-%s.%s", time.Now().Format("20060102-150405"), ext))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}
	return startLive(cmd, cfg, tui.Options{
		Config: cfg,
		Store:  st,
		Theme:  resolveTheme(cmd, cfg, st),
		Seed:   cfg.Seed,
	})
}

func startLive(cmd *cobra.Command, cfg *config.Config, opts tui.Options) error {
	log, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer log.Sync()
	opts.Logger = log

	p := tui.NewProgram(opts, tea.WithContext(cmd.Context()))

	if configFile != "" {
		w, err := config.NewWatcher(configFile, func(next *config.Config) {
			applyFlags(cmd, next)
			if err := next.Validate(); err != nil || !viz.HasTheme(next.Theme) {
				log.Warn("ignoring reloaded config", zap.Error(err), zap.String("theme", next.Theme))
				return
			}
			p.Send(tui.ConfigMsg{Config: next})
		}, log)
		if err != nil {
			log.Warn("config watcher disabled", zap.Error(err))
		} else {
			w.Start(cmd.Context())
			defer w.Stop()
		}
	}

	log.Info("live view starting", zap.String("theme", opts.Theme), zap.Int("fps", cfg.FPS))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	vp, err := viewportArg(args)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	s := resolveSeed(cfg)
	fmt.Printf("running %s (%s), %d points, %d frames...\n", vp.Name, vp, pointCount(vp), runFrames)

	start := time.Now()
	res, err := simulate(cmd.Context(), simulation{
		Viewport: vp,
		Frames:   runFrames,
		Seed:     s,
		FPS:      cfg.FPS,
		Realtime: realtime,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	links := res.Links()
	fmt.Printf("completed %d frames in %v\n", len(links), elapsed)
	fmt.Printf("seed: %d\n", s)
	fmt.Printf("density: 1 point per %d px²\n", densityOf(vp))
	fmt.Printf("mean links: %.1f\n\n", mean(links))
	if len(links) > 1 {
		fmt.Println(asciigraph.Plot(links,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("links per frame")))
	}

	if save {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		meta, err := st.SaveSnapshot(res.Field, s, resolveTheme(cmd, cfg, st))
		if err != nil {
			return err
		}
		fmt.Printf("\nsnapshot id: %s\n", meta.ID)
	}
	return nil
}

func snapshotFrame(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	vp, err := viewportArg(args)
	if err != nil {
		return err
	}
	if snapFrames < 0 {
		return fmt.Errorf("%w: frames must not be negative", config.ErrInvalid)
	}
	st := storage.New(cfg.DataDir)
	theme := viz.GetTheme(resolveTheme(cmd, cfg, st))

	f := advance(vp, resolveSeed(cfg), snapFrames)
	path := snapOut
	if path == "" {
		path = defaultOut(cfg, "svg")
	}
	if err := writeFrame(path, f, theme, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d points, %d links)\n", path, len(f.Points), f.Links())
	return nil
}

func recordGIF(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	vp, err := viewportArg(args)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()
	st := storage.New(cfg.DataDir)
	theme := viz.GetTheme(resolveTheme(cmd, cfg, st))

	path := recordOut
	if path == "" {
		path = defaultOut(cfg, "gif")
	}
	n, err := record(cmd.Context(), path, simulation{
		Viewport: vp,
		Frames:   recordFrames,
		Seed:     resolveSeed(cfg),
		FPS:      cfg.FPS,
		Logger:   log,
	}, theme, cfg.Export.Background)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d frames)\n", path, n)
	return nil
}

func listSnapshots(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	snaps, err := st.List()
	if err != nil {
		return err
	}

	if len(snaps) == 0 {
		fmt.Println("no snapshots found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tVIEWPORT\tPOINTS\tLINKS\tFRAME\tTHEME")
	for _, s := range snaps {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%d\t%d\t%s\n",
			s.ID,
			s.Timestamp.Format("2006-01-02 15:04:05"),
			s.Width, s.Height,
			s.Points,
			s.Links,
			s.Frame,
			s.Theme,
		)
	}
	return w.Flush()
}

func showSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	points, err := st.LoadPoints(meta.ID)
	if err != nil {
		return err
	}

	theme := meta.Theme
	if cmd.Flags().Changed("theme") || !viz.HasTheme(theme) {
		theme = resolveTheme(cmd, cfg, st)
	}

	if showOut != "" {
		f, err := restored(meta, points)
		if err != nil {
			return err
		}
		if err := writeFrame(showOut, f, viz.GetTheme(theme), cfg); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d points)\n", showOut, len(f.Points))
		return nil
	}

	return startLive(cmd, cfg, tui.Options{
		Config:  cfg,
		Store:   st,
		Theme:   theme,
		Seed:    meta.Seed,
		Restore: meta,
		Points:  points,
	})
}

func setTheme(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	current := resolveTheme(cmd, cfg, st)
	if len(args) == 0 {
		fmt.Println(current)
		return nil
	}

	next := strings.ToLower(args[0])
	if next == "toggle" {
		next = viz.Toggle(current)
	}
	if !viz.HasTheme(next) {
		return fmt.Errorf("%w: unknown theme %q (available: %v)", config.ErrInvalid, next, viz.ThemeNames())
	}
	if err := st.SavePrefs(storage.Prefs{Theme: next}); err != nil {
		return err
	}
	fmt.Println(next)
	return nil
}

func benchViewports(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	names := args
	if len(names) == 0 {
		names = config.ListPresets()
	}
	viewports := make([]config.Viewport, 0, len(names))
	for _, name := range names {
		vp, err := config.ParseViewport(name)
		if err != nil {
			return err
		}
		viewports = append(viewports, vp)
	}

	fmt.Printf("benchmarking %d viewports, %d frames each...\n\n", len(viewports), benchFrames)
	results, err := bench.Run(cmd.Context(), viewports, benchFrames, resolveSeed(cfg))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VIEWPORT\tSIZE\tPOINTS\tMEAN LINKS\tMAX LINKS\tPER FRAME\tBUDGET")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\t%d\t%v\t%.1f%%\n",
			r.Viewport.Name,
			r.Viewport,
			r.Points,
			r.MeanLinks,
			r.MaxLinks,
			r.PerFrame,
			r.FrameRatio*100,
		)
	}
	return w.Flush()
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	fallback := resolveTheme(cmd, cfg, storage.New(cfg.DataDir))
	fmt.Printf("running scenario %q (%d steps)...\n", sc.Name, len(sc.Steps))
	outs, err := automation.RunScenario(cmd.Context(), sc, stepRenderer(cfg, fallback, log), log)
	for _, o := range outs {
		fmt.Printf("  %d. %s (%d points, %d links, %d frames)\n", o.Step, o.Path, o.Points, o.Links, o.Frames)
	}
	return err
}
