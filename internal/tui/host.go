package tui

import (
	"time"

	"github.com/san-kum/particlefield/internal/animate"
	"github.com/san-kum/particlefield/internal/field"
)

// host adapts the bubbletea program to animate.Host. Update runs on one
// goroutine, so no locking is needed.
type host struct {
	width, height int
	surface       field.Surface
	frames        animate.FrameQueue
	listeners     animate.Listeners
}

func (h *host) Size() (int, int) { return h.width, h.height }

func (h *host) Surface() (field.Surface, bool) { return h.surface, h.surface != nil }

func (h *host) OnResize(fn func()) func() { return h.listeners.Add(fn) }

func (h *host) RequestFrame(fn animate.FrameFunc) animate.FrameID {
	return h.frames.RequestFrame(fn)
}

func (h *host) CancelFrame(id animate.FrameID) { h.frames.CancelFrame(id) }

// resize notifies on every call, including repeats of the current size.
func (h *host) resize(width, height int) {
	h.width, h.height = width, height
	h.listeners.Notify()
}

func (h *host) refresh(now time.Time) int { return h.frames.Flush(now) }
