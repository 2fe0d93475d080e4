package animate

import (
	"sort"
	"time"
)

// FrameQueue holds frame requests until the next display refresh. It
// implements Scheduler for hosts that own a frame clock.
type FrameQueue struct {
	next    FrameID
	pending map[FrameID]FrameFunc
	running map[FrameID]FrameFunc
}

func (q *FrameQueue) RequestFrame(fn FrameFunc) FrameID {
	if q.pending == nil {
		q.pending = make(map[FrameID]FrameFunc)
	}
	q.next++
	q.pending[q.next] = fn
	return q.next
}

// CancelFrame withdraws a request, including one in the batch currently
// being served.
func (q *FrameQueue) CancelFrame(id FrameID) {
	delete(q.pending, id)
	delete(q.running, id)
}

// Len reports the requests waiting for the next refresh.
func (q *FrameQueue) Len() int { return len(q.pending) }

// Flush serves every request made before the call, in request order.
// Requests made by the callbacks wait for the next Flush.
func (q *FrameQueue) Flush(now time.Time) int {
	if len(q.pending) == 0 {
		return 0
	}
	q.running = q.pending
	q.pending = nil

	ids := make([]FrameID, 0, len(q.running))
	for id := range q.running {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	served := 0
	for _, id := range ids {
		fn, ok := q.running[id]
		if !ok {
			continue
		}
		delete(q.running, id)
		fn(now)
		served++
	}
	q.running = nil
	return served
}

// Listeners is an ordered set of resize callbacks.
type Listeners struct {
	next  int
	items []listener
}

type listener struct {
	id int
	fn func()
}

// Add registers fn and returns a function that removes it.
func (ls *Listeners) Add(fn func()) func() {
	ls.next++
	id := ls.next
	ls.items = append(ls.items, listener{id: id, fn: fn})
	return func() {
		for i, l := range ls.items {
			if l.id == id {
				ls.items = append(ls.items[:i], ls.items[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every listener registered at the time of the call.
func (ls *Listeners) Notify() {
	for _, l := range append([]listener(nil), ls.items...) {
		l.fn()
	}
}

func (ls *Listeners) Len() int { return len(ls.items) }
