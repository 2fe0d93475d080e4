package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/particlefield/internal/config"
	"github.com/san-kum/particlefield/internal/field"
	"github.com/san-kum/particlefield/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (*Model, *storage.Store) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	st := storage.New(dir)
	m := NewModel(Options{Config: cfg, Store: st, Seed: 11})
	return m, st
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// inkSurface records every color drawn through it.
type inkSurface struct {
	field.Surface
	seen map[colorful.Color]bool
}

func (s *inkSurface) FillCircle(_, _, _ float64, c colorful.Color, _ float64) { s.mark(c) }

func (s *inkSurface) StrokeLine(_, _, _, _, _ float64, c colorful.Color, _ float64) { s.mark(c) }

func (s *inkSurface) mark(c colorful.Color) {
	if s.seen == nil {
		s.seen = make(map[colorful.Color]bool)
	}
	s.seen[c] = true
}

func tick(m *Model) {
	m.Update(tickMsg{gen: m.tickGen, at: time.Now()})
}

func TestWindowSizeResizesViewport(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	w, h := m.host.Size()
	assert.Equal(t, 720, w)
	assert.Equal(t, 624, h)
	assert.Equal(t, 90, m.canvas.Width)
	assert.Equal(t, 39, m.canvas.Height)
	assert.Len(t, m.Animator().Field().Points, field.PointCount(720, 624))

	// A repeated size still reseeds.
	before := append([]field.Point(nil), m.Animator().Field().Points...)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	after := m.Animator().Field().Points
	assert.Len(t, after, len(before))
	assert.NotEqual(t, before, after)

	// Narrow terminals drop the stats panel.
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 25})
	w, _ = m.host.Size()
	assert.Equal(t, 640, w)
}

func TestTicksDriveFrames(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 200, Height: 60})
	start := m.Animator().Last().Frame

	tick(m)
	tick(m)
	assert.Equal(t, start+2, m.Animator().Last().Frame)

	_, cmd := m.Update(tickMsg{gen: m.tickGen + 1, at: time.Now()})
	assert.Nil(t, cmd, "stale ticks are dropped")
	assert.Equal(t, start+2, m.Animator().Last().Frame)
}

func TestPauseFreezesField(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 200, Height: 60})
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	require.True(t, m.Animator().Paused())

	before := append([]field.Point(nil), m.Animator().Field().Points...)
	tick(m)
	assert.Equal(t, before, m.Animator().Field().Points)
}

func TestThemeTogglePersists(t *testing.T) {
	m, st := newTestModel(t)
	require.Equal(t, "light", m.Theme().Name)

	m.Update(tea.WindowSizeMsg{Width: 200, Height: 60})
	inks := &inkSurface{Surface: field.Discard}
	m.surface.Add(inks)

	tick(m)
	m.Update(keyPress('t'))
	assert.Equal(t, "dark", m.Theme().Name)
	tick(m)
	assert.Equal(t, map[colorful.Color]bool{field.Accent: true}, inks.seen, "themes leave the field ink alone")

	prefs, err := st.LoadPrefs()
	require.NoError(t, err)
	assert.Equal(t, "dark", prefs.Theme)
}

func TestQuitTearsDown(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	tick(m)

	_, cmd := m.Update(keyPress('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.Animator().Mounted())
	assert.Zero(t, m.host.frames.Len())
	assert.Zero(t, m.host.listeners.Len())

	frame := m.Animator().Last().Frame
	m.host.refresh(time.Now())
	assert.Equal(t, frame, m.Animator().Last().Frame)
}

func TestConfigReload(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	gen := m.tickGen

	cfg := *m.cfg
	cfg.FPS = 30
	cfg.Theme = "ocean"
	cfg.Cell = config.CellConfig{Width: 4, Height: 8, Gain: 5}
	_, cmd := m.Update(ConfigMsg{Config: &cfg})

	assert.NotNil(t, cmd)
	assert.Equal(t, gen+1, m.tickGen)
	assert.Equal(t, "ocean", m.Theme().Name)
	w, h := m.host.Size()
	assert.Equal(t, 360, w)
	assert.Equal(t, 312, h)
	assert.Equal(t, 5.0, m.canvas.Gain())
	assert.Contains(t, m.View(), "4x8 ×5")
}

func TestSnapshotWritesFiles(t *testing.T) {
	m, st := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 200, Height: 60})
	m.Update(keyPress('s'))

	matches, err := filepath.Glob(filepath.Join(m.cfg.DataDir, "*.svg"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, len(m.Animator().Field().Points), strings.Count(string(data), "<circle"))

	snaps, err := st.List()
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestRecordingWritesGIF(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	m.Update(keyPress('g'))
	require.NotNil(t, m.recorder)
	tick(m)
	tick(m)
	m.Update(keyPress('g'))
	assert.Nil(t, m.recorder)
	assert.Equal(t, 1, m.surface.Len())

	matches, err := filepath.Glob(filepath.Join(m.cfg.DataDir, "*.gif"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRestoreAppliesAfterFirstLayout(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	points := []field.Point{{X: 10, Y: 10}, {X: 20, Y: 20}}
	m := NewModel(Options{
		Config:  cfg,
		Restore: &storage.SnapshotMetadata{ID: "abc", Width: 300, Height: 200},
		Points:  points,
	})

	m.Update(tea.WindowSizeMsg{Width: 200, Height: 60})
	assert.Equal(t, points, m.Animator().Field().Points)
	assert.Contains(t, m.View(), "restored abc")
}

func TestViewBeforeSize(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, "initializing...", m.View())
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Update(keyPress('?'))
	view := m.View()
	assert.Contains(t, view, "KEYBOARD SHORTCUTS")
	assert.Contains(t, view, "reseed")
}
