package animate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/san-kum/particlefield/internal/field"
)

// ErrLoopClosed is returned by Do once the loop has stopped.
var ErrLoopClosed = errors.New("animate: loop closed")

const DefaultFPS = 60

// Loop is a single-goroutine Host for headless use. Frame requests are
// served on each tick of the frame clock; requests made while a frame
// batch runs are served on the following tick.
type Loop struct {
	interval time.Duration
	clock    <-chan time.Time
	tasks    chan func()
	quit     chan struct{}
	done     chan struct{}
	stop     sync.Once

	// Owned by the loop goroutine.
	width, height int
	surface       field.Surface
	frames        FrameQueue
	listeners     Listeners
}

type LoopOption func(*Loop)

// WithFPS sets the frame clock rate.
func WithFPS(fps int) LoopOption {
	return func(l *Loop) {
		if fps > 0 {
			l.interval = time.Second / time.Duration(fps)
		}
	}
}

// WithClock drives frames from ticks instead of a ticker.
func WithClock(ticks <-chan time.Time) LoopOption {
	return func(l *Loop) { l.clock = ticks }
}

// NewLoop creates a loop with a width x height viewport. A nil surface
// models an environment without a drawing context.
func NewLoop(width, height int, surface field.Surface, opts ...LoopOption) *Loop {
	l := &Loop{
		interval: time.Second / DefaultFPS,
		tasks:    make(chan func()),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		width:    width,
		height:   height,
		surface:  surface,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run processes tasks and frames until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	ticks := l.clock
	if ticks == nil {
		t := time.NewTicker(l.interval)
		defer t.Stop()
		ticks = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.quit:
			return nil
		case fn := <-l.tasks:
			fn()
		case now := <-ticks:
			l.frames.Flush(now)
		}
	}
}

func (l *Loop) Close() {
	l.stop.Do(func() { close(l.quit) })
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Do runs fn on the loop goroutine and waits for it to finish. It must
// not be called from the loop goroutine itself.
func (l *Loop) Do(fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}
	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrLoopClosed
	}
	<-finished
	return nil
}

// Resize changes the viewport and notifies resize listeners.
func (l *Loop) Resize(width, height int) error {
	return l.Do(func() {
		l.width, l.height = width, height
		l.listeners.Notify()
	})
}

func (l *Loop) Size() (int, int) { return l.width, l.height }

func (l *Loop) Surface() (field.Surface, bool) {
	return l.surface, l.surface != nil
}

func (l *Loop) OnResize(fn func()) func() { return l.listeners.Add(fn) }

// Listeners reports the number of attached resize listeners.
func (l *Loop) Listeners() int { return l.listeners.Len() }

// Pending reports the number of frame requests waiting for the next tick.
func (l *Loop) Pending() int { return l.frames.Len() }

func (l *Loop) RequestFrame(fn FrameFunc) FrameID { return l.frames.RequestFrame(fn) }

func (l *Loop) CancelFrame(id FrameID) { l.frames.CancelFrame(id) }
