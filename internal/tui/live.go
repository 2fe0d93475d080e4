package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/particlefield/internal/animate"
	"github.com/san-kum/particlefield/internal/config"
	"github.com/san-kum/particlefield/internal/export"
	"github.com/san-kum/particlefield/internal/field"
	"github.com/san-kum/particlefield/internal/storage"
	"github.com/san-kum/particlefield/internal/viz"
	"go.uber.org/zap"
)

const (
	panelWidth      = 30
	minPanelCols    = 90
	historyCapacity = 120
	recordLimit     = 900
)

type tickMsg struct {
	gen int
	at  time.Time
}

// ConfigMsg delivers a reloaded configuration to a running program.
type ConfigMsg struct {
	Config *config.Config
}

type Options struct {
	Config *config.Config
	Store  *storage.Store
	Logger *zap.Logger
	Theme  string
	Seed   int64

	// Restore, when set, replaces the field seeded for the first window size.
	Restore *storage.SnapshotMetadata
	Points  []field.Point
}

// Model is the live view. It is a pointer model: the animator keeps a
// reference to its host across updates.
type Model struct {
	cfg   *config.Config
	store *storage.Store
	log   *zap.Logger
	seed  int64

	theme    viz.Theme
	styles   viz.Styles
	help     help.Model
	progress progress.Model

	host     *host
	canvas   *viz.Canvas
	surface  *viz.MultiSurface
	animator *animate.Animator
	recorder *export.Recorder

	restore *storage.SnapshotMetadata
	points  []field.Point

	cols, rows int
	tickGen    int
	ready      bool
	showHelp   bool
	status     string
	history    []float64
	lastTick   time.Time
	fps        float64
}

func NewModel(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	themeName := opts.Theme
	if themeName == "" {
		themeName = cfg.Theme
	}

	canvas := viz.NewCanvas(0, 0)
	canvas.SetCellSize(cfg.Cell.Width, cfg.Cell.Height)
	canvas.SetGain(cfg.Cell.Gain)
	surface := viz.Multi(canvas)

	m := &Model{
		cfg:     cfg,
		store:   opts.Store,
		log:     log,
		seed:    opts.Seed,
		host:    &host{surface: surface},
		canvas:  canvas,
		surface: surface,
		history: make([]float64, 0, historyCapacity),
		restore: opts.Restore,
		points:  opts.Points,
		help:    help.New(),
	}
	m.setTheme(themeName)

	f := field.New(field.NewRand(opts.Seed))
	m.animator = animate.New(m.host, f,
		animate.WithLogger(log),
		animate.WithObserver(animate.ObserverFunc(m.onFrame)))
	m.animator.Mount()
	return m
}

// Animator exposes the animator driving the view.
func (m *Model) Animator() *animate.Animator { return m.animator }

func (m *Model) Theme() viz.Theme { return m.theme }

func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(time.Second/time.Duration(m.cfg.FPS), func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.ready = true
		m.layout()
		m.applyRestore()
	case tea.KeyMsg:
		return m.handleKey(msg)
	case ConfigMsg:
		return m, m.applyConfig(msg.Config)
	case tickMsg:
		if msg.gen != m.tickGen {
			return m, nil
		}
		if !m.lastTick.IsZero() {
			if d := msg.at.Sub(m.lastTick); d > 0 {
				m.fps = 0.9*m.fps + 0.1*(float64(time.Second)/float64(d))
			}
		}
		m.lastTick = msg.at
		m.host.refresh(msg.at)
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.shutdown()
		return m, tea.Quit
	case key.Matches(msg, keys.Pause):
		m.animator.SetPaused(!m.animator.Paused())
	case key.Matches(msg, keys.Reseed):
		m.animator.Reseed()
		m.status = "reseeded"
	case key.Matches(msg, keys.Theme):
		m.toggleTheme()
	case key.Matches(msg, keys.Snapshot):
		m.snapshot()
	case key.Matches(msg, keys.Record):
		m.toggleRecording()
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// layout splits the terminal between canvas and stats panel and resizes
// the viewport to match the canvas area exactly.
func (m *Model) layout() {
	cols := m.cols
	if m.cols >= minPanelCols {
		cols -= panelWidth
	}
	rows := max(0, m.rows-1)
	w, h := m.cfg.Viewport(max(0, cols), rows)
	m.host.resize(w, h)
}

func (m *Model) applyRestore() {
	if m.restore == nil {
		return
	}
	meta, points := m.restore, m.points
	m.restore, m.points = nil, nil
	if err := m.animator.Restore(meta.Width, meta.Height, points); err != nil {
		m.status = "restore failed: " + err.Error()
		return
	}
	m.status = "restored " + meta.ID
}

func (m *Model) onFrame(stats field.FrameStats) {
	m.history = append(m.history, float64(stats.Links))
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
	if m.recorder != nil {
		m.recorder.OnFrame(stats)
		if m.recorder.Full() {
			m.stopRecording()
		}
	}
}

func (m *Model) setTheme(name string) {
	m.theme = viz.GetTheme(name)
	m.styles = viz.NewStyles(m.theme)
	m.help.Styles.ShortKey = m.styles.Status
	m.help.Styles.FullKey = m.styles.Status
	m.help.Styles.ShortDesc = m.styles.Help
	m.help.Styles.FullDesc = m.styles.Value
	m.help.Styles.ShortSeparator = m.styles.Help
	m.help.Styles.FullSeparator = m.styles.Help
	m.progress = progress.New(
		progress.WithSolidFill(string(m.theme.Highlight)),
		progress.WithoutPercentage(),
		progress.WithWidth(panelWidth-4))
}

func (m *Model) toggleTheme() {
	m.setTheme(viz.Toggle(m.theme.Name))
	m.status = "theme: " + m.theme.Name
	if m.store == nil {
		return
	}
	if err := m.store.SavePrefs(storage.Prefs{Theme: m.theme.Name}); err != nil {
		m.log.Warn("save prefs failed", zap.Error(err))
		m.status = "theme not saved: " + err.Error()
	}
}

func (m *Model) applyConfig(cfg *config.Config) tea.Cmd {
	if cfg == nil {
		return nil
	}
	old := m.cfg
	m.cfg = cfg
	if cfg.Theme != old.Theme {
		m.setTheme(cfg.Theme)
	}
	if cfg.Cell != old.Cell {
		m.canvas.SetCellSize(cfg.Cell.Width, cfg.Cell.Height)
		m.canvas.SetGain(cfg.Cell.Gain)
		m.canvas.Resize(m.host.Size())
		m.layout()
	}
	m.status = "config reloaded"
	if cfg.FPS != old.FPS {
		m.tickGen++
		return m.tick()
	}
	return nil
}

func (m *Model) outputPath(ext string) (string, error) {
	dir := m.cfg.DataDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("particlefield-%s.%s", time.Now().Format("20060102-150405"), ext)
	return filepath.Join(dir, name), nil
}

func (m *Model) snapshot() {
	f := m.animator.Field()
	path, err := m.outputPath("svg")
	if err == nil {
		svg := export.FieldToSVG(f, m.theme, export.SVGOptions{Scale: m.cfg.Export.Scale, Background: m.cfg.Export.Background})
		err = os.WriteFile(path, []byte(svg), 0644)
	}
	if err != nil {
		m.log.Warn("snapshot failed", zap.Error(err))
		m.status = "snapshot failed: " + err.Error()
		return
	}
	m.status = "saved " + filepath.Base(path)

	if m.store != nil {
		meta, err := m.store.SaveSnapshot(f, m.seed, m.theme.Name)
		if err != nil {
			m.log.Warn("store snapshot failed", zap.Error(err))
			return
		}
		m.status += " (" + meta.ID + ")"
		m.log.Info("snapshot saved", zap.String("id", meta.ID), zap.String("svg", path))
	}
}

func (m *Model) toggleRecording() {
	if m.recorder != nil {
		m.stopRecording()
		return
	}
	w, h := m.host.Size()
	bg := export.BackgroundOf(m.theme, true)
	m.recorder = export.NewRecorder(w, h, bg, m.cfg.FPS, recordLimit)
	m.surface.Add(m.recorder.Surface())
	m.status = "recording"
}

func (m *Model) stopRecording() {
	rec := m.recorder
	if rec == nil {
		return
	}
	m.recorder = nil
	m.surface.Remove(rec.Surface())
	if rec.Len() == 0 {
		m.status = "recording discarded"
		return
	}

	path, err := m.outputPath("gif")
	if err == nil {
		var out *os.File
		out, err = os.Create(path)
		if err == nil {
			err = rec.Encode(out)
			if cerr := out.Close(); err == nil {
				err = cerr
			}
		}
	}
	if err != nil {
		m.log.Warn("gif export failed", zap.Error(err))
		m.status = "gif failed: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("saved %s (%d frames)", filepath.Base(path), rec.Len())
	m.log.Info("gif saved", zap.String("path", path), zap.Int("frames", rec.Len()))
}

func (m *Model) shutdown() {
	if m.recorder != nil {
		m.stopRecording()
	}
	m.animator.Unmount()
	m.tickGen++
}

func (m *Model) View() string {
	if !m.ready {
		return "initializing..."
	}

	canvasView := m.canvas.Render(m.theme)
	view := canvasView
	if m.cols >= minPanelCols {
		view = lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.panel())
	}
	if m.showHelp {
		view = lipgloss.Place(m.cols, max(0, m.rows-1), lipgloss.Center, lipgloss.Center, m.helpView(),
			lipgloss.WithWhitespaceBackground(m.theme.Background))
	}
	return view + "\n" + m.footer()
}

func (m *Model) panel() string {
	st := m.styles
	f := m.animator.Field()
	last := m.animator.Last()
	w, h := m.host.Size()

	state := "RUNNING"
	if m.animator.Paused() {
		state = "PAUSED"
	}
	if m.recorder != nil {
		state = fmt.Sprintf("REC %d", m.recorder.Len())
	}

	row := func(label, value string) string {
		return st.Label.Render(label) + st.Value.Render(value) + "\n"
	}

	var s strings.Builder
	s.WriteString(st.Header.Render("PARTICLE FIELD") + "\n")
	if m.recorder != nil {
		s.WriteString(st.Alert.Render(state) + "\n")
		s.WriteString(m.progress.ViewAs(float64(m.recorder.Len())/recordLimit) + "\n\n")
	} else {
		s.WriteString(st.Status.Render(state) + "\n\n")
	}
	s.WriteString(row("Viewport", fmt.Sprintf("%dx%d", w, h)))
	s.WriteString(row("Density", fmt.Sprintf("1/%d px²", field.DensityDivisor(w))))
	s.WriteString(row("Points", fmt.Sprint(len(f.Points))))
	s.WriteString(row("Links", fmt.Sprint(last.Links)))
	s.WriteString(row("Frame", fmt.Sprint(last.Frame)))
	s.WriteString(row("FPS", fmt.Sprintf("%.0f", m.fps)))
	s.WriteString(row("Theme", m.theme.Name))
	cw, ch := m.canvas.CellSize()
	s.WriteString(row("Cell", fmt.Sprintf("%dx%d ×%g", cw, ch, m.canvas.Gain())))
	s.WriteString("\n" + st.Label.Render("Links") + "\n")
	s.WriteString(st.Spark.Render(viz.SparklineChart(m.history, panelWidth-4)) + "\n")

	height := max(0, m.rows-1-2)
	return st.Panel.Width(panelWidth - 2).Height(height).Render(s.String())
}

func (m *Model) footer() string {
	m.help.Width = m.cols
	text := m.help.ShortHelpView(keys.ShortHelp())
	if m.status != "" {
		text = m.styles.Help.Render(m.status+"  │  ") + text
	}
	return lipgloss.NewStyle().MaxWidth(m.cols).Render(text)
}

func (m *Model) helpView() string {
	var s strings.Builder
	s.WriteString(m.styles.Header.Render("KEYBOARD SHORTCUTS") + "\n\n")
	s.WriteString(m.help.FullHelpView(keys.FullHelp()))
	return m.styles.Panel.Render(s.String())
}

// NewProgram builds the full-screen program for the live view.
func NewProgram(opts Options, progOpts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(NewModel(opts), append([]tea.ProgramOption{tea.WithAltScreen()}, progOpts...)...)
}
