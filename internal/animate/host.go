package animate

import (
	"time"

	"github.com/san-kum/particlefield/internal/field"
)

// FrameID identifies a pending frame request. Zero is never issued.
type FrameID uint64

type FrameFunc func(now time.Time)

// Scheduler runs callbacks once per display frame, in the manner of a
// browser's animation frame queue. A request fires at most once.
type Scheduler interface {
	RequestFrame(fn FrameFunc) FrameID
	CancelFrame(id FrameID)
}

// Viewport reports the logical drawing area and its resize events.
type Viewport interface {
	Size() (width, height int)
	OnResize(fn func()) (remove func())
	// Surface returns the drawing context, or false when the environment
	// cannot provide one.
	Surface() (field.Surface, bool)
}

// Host provides everything an Animator needs. Its methods, and every
// callback it invokes, run on a single goroutine.
type Host interface {
	Viewport
	Scheduler
}

type Observer interface {
	OnFrame(stats field.FrameStats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(stats field.FrameStats)

func (f ObserverFunc) OnFrame(stats field.FrameStats) { f(stats) }
