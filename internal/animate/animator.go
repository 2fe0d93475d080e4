package animate

import (
	"time"

	"github.com/san-kum/particlefield/internal/field"
	"go.uber.org/zap"
)

// Animator owns one particle field and drives it from a Host: seed on
// mount, reseed on resize, one Draw per frame, and cancel everything on
// unmount.
type Animator struct {
	host      Host
	field     *field.Field
	surface   field.Surface
	observers []Observer
	log       *zap.Logger

	pending      FrameID
	removeResize func()
	mounted      bool
	paused       bool
	last         field.FrameStats
}

type Option func(*Animator)

func WithLogger(log *zap.Logger) Option {
	return func(a *Animator) { a.log = log }
}

func WithObserver(o Observer) Option {
	return func(a *Animator) { a.observers = append(a.observers, o) }
}

func New(host Host, f *field.Field, opts ...Option) *Animator {
	a := &Animator{
		host:  host,
		field: f,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Animator) AddObserver(o Observer) { a.observers = append(a.observers, o) }

func (a *Animator) Field() *field.Field { return a.field }

func (a *Animator) Mounted() bool { return a.mounted }

func (a *Animator) Last() field.FrameStats { return a.last }

// Mount attaches the resize listener, seeds the field and starts the
// frame loop. It returns false, doing nothing, when the host has no
// drawing surface.
func (a *Animator) Mount() bool {
	if a.mounted {
		return true
	}
	s, ok := a.host.Surface()
	if !ok || s == nil {
		return false
	}
	a.surface = s
	a.mounted = true
	a.removeResize = a.host.OnResize(a.resize)
	a.resize()

	a.log.Debug("animator mounted",
		zap.Int("width", a.field.Width),
		zap.Int("height", a.field.Height),
		zap.Int("points", len(a.field.Points)))

	a.tick(time.Now())
	return true
}

// Unmount cancels the pending frame and detaches the resize listener.
// No callback fires for this Animator afterwards. Safe to call twice.
func (a *Animator) Unmount() {
	if !a.mounted {
		return
	}
	a.mounted = false
	if a.pending != 0 {
		a.host.CancelFrame(a.pending)
		a.pending = 0
	}
	if a.removeResize != nil {
		a.removeResize()
		a.removeResize = nil
	}
	a.log.Debug("animator unmounted", zap.Uint64("frames", a.field.Frame()))
}

// SetPaused freezes the field. Frames keep being scheduled so resize and
// resume take effect on the next display refresh.
func (a *Animator) SetPaused(paused bool) { a.paused = paused }

func (a *Animator) Paused() bool { return a.paused }

// Reseed regenerates the field at the current viewport size.
func (a *Animator) Reseed() {
	if !a.mounted {
		return
	}
	w, h := a.host.Size()
	a.field.Seed(w, h)
}

// Restore replaces the live field with stored points. The surface keeps
// the host's viewport size, and the next resize reseeds as usual.
func (a *Animator) Restore(width, height int, points []field.Point) error {
	return a.field.Restore(width, height, points)
}

func (a *Animator) resize() {
	w, h := a.host.Size()
	a.surface.Resize(w, h)
	a.field.Seed(w, h)
	a.log.Debug("field reseeded",
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Int("points", len(a.field.Points)))
}

func (a *Animator) tick(now time.Time) {
	a.pending = 0
	if !a.mounted {
		return
	}
	if !a.paused {
		a.last = a.field.Draw(a.surface)
		for _, o := range a.observers {
			o.OnFrame(a.last)
		}
	}
	a.pending = a.host.RequestFrame(a.tick)
}
