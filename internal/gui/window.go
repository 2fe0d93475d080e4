package gui

import (
	"context"
	"errors"
	"image/color"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/particlefield/internal/animate"
	"github.com/san-kum/particlefield/internal/field"
)

// ErrUnavailable is returned by NewDisplay in builds without the raylib tag.
var ErrUnavailable = errors.New("gui: built without raylib support (rebuild with -tags raylib)")

// Display is the native window the field is drawn into. Coordinates are
// window pixels; colors are straight (not premultiplied) RGBA.
type Display interface {
	Open(width, height int, title string, fps int)
	Close()
	Size() (width, height int)
	// Resized reports whether the window changed size since the last call.
	Resized() bool
	ShouldClose() bool
	// NextKey pops the next queued key press, or 0 when none is left.
	NextKey() rune
	Begin()
	End()
	Clear(c color.RGBA)
	Circle(x, y, r float32, c color.RGBA)
	Line(x0, y0, x1, y1, width float32, c color.RGBA)
}

// Window is an animate.Host backed by a Display. Every method and
// callback runs on the goroutine that calls Run.
type Window struct {
	display       Display
	width, height int
	surface       *surface
	frames        animate.FrameQueue
	listeners     animate.Listeners
	keys          map[rune]func()
	idle          func(field.Surface)
}

var _ animate.Host = (*Window)(nil)

func New(d Display, paper colorful.Color) *Window {
	return &Window{
		display: d,
		surface: &surface{display: d, paper: paper},
		keys:    make(map[rune]func()),
	}
}

// Open shows the window. The viewport takes the size the display
// actually opened with.
func (w *Window) Open(width, height int, title string, fps int) {
	w.display.Open(width, height, title, fps)
	w.width, w.height = w.display.Size()
}

func (w *Window) Close() { w.display.Close() }

// Bind runs fn when key is pressed. Letter keys arrive upper case.
func (w *Window) Bind(key rune, fn func()) { w.keys[key] = fn }

// OnIdle sets the redraw used for refreshes in which no frame callback
// drew anything, such as while paused.
func (w *Window) OnIdle(fn func(field.Surface)) { w.idle = fn }

func (w *Window) SetPaper(c colorful.Color) { w.surface.paper = c }

func (w *Window) Size() (int, int) { return w.width, w.height }

func (w *Window) Surface() (field.Surface, bool) { return w.surface, true }

func (w *Window) OnResize(fn func()) func() { return w.listeners.Add(fn) }

func (w *Window) RequestFrame(fn animate.FrameFunc) animate.FrameID {
	return w.frames.RequestFrame(fn)
}

func (w *Window) CancelFrame(id animate.FrameID) { w.frames.CancelFrame(id) }

// Run refreshes the window until it is closed or ctx is done.
func (w *Window) Run(ctx context.Context) error {
	for !w.display.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.Refresh(time.Now())
	}
	return nil
}

// Refresh serves one display refresh: resize, key presses, then the
// pending frame requests between Begin and End. It returns the number
// of requests served.
func (w *Window) Refresh(now time.Time) int {
	if w.display.Resized() {
		w.width, w.height = w.display.Size()
		w.listeners.Notify()
	}
	for k := w.display.NextKey(); k != 0; k = w.display.NextKey() {
		if fn := w.keys[k]; fn != nil {
			fn()
		}
	}

	w.display.Begin()
	w.surface.drawn = false
	served := w.frames.Flush(now)
	if !w.surface.drawn && w.idle != nil {
		w.idle(w.surface)
	}
	w.display.End()
	return served
}

// surface forwards field drawing to the display.
type surface struct {
	display Display
	paper   colorful.Color
	drawn   bool
}

// Resize is a no-op: the window owns its backbuffer size.
func (s *surface) Resize(int, int) {}

func (s *surface) Clear() {
	s.drawn = true
	s.display.Clear(RGBA(s.paper, 1))
}

func (s *surface) FillCircle(x, y, r float64, c colorful.Color, alpha float64) {
	s.display.Circle(float32(x), float32(y), float32(r), RGBA(c, alpha))
}

func (s *surface) StrokeLine(x0, y0, x1, y1, width float64, c colorful.Color, alpha float64) {
	s.display.Line(float32(x0), float32(y0), float32(x1), float32(y1), float32(width), RGBA(c, alpha))
}

// RGBA converts c at alpha to straight 8-bit RGBA.
func RGBA(c colorful.Color, alpha float64) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	a := math.Max(0, math.Min(1, alpha))
	return color.RGBA{R: r, G: g, B: b, A: uint8(math.Round(a * 255))}
}
