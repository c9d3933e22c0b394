package layout

import "github.com/evanschultz/dockyard/internal/domain"

// GestureKind identifies one queued gesture event.
type GestureKind int

// GestureBeginDrag and related constants define supported gesture events.
const (
	GestureBeginDrag GestureKind = iota
	GesturePointerMoved
	GestureEndDrag
	GestureCancelDrag
	GestureBeginResize
	GestureUpdateResize
	GestureEndResize
	GestureCancelResize
)

var gestureNames = [...]string{
	GestureBeginDrag:    "begin_drag",
	GesturePointerMoved: "pointer_moved",
	GestureEndDrag:      "end_drag",
	GestureCancelDrag:   "cancel_drag",
	GestureBeginResize:  "begin_resize",
	GestureUpdateResize: "update_resize",
	GestureEndResize:    "end_resize",
	GestureCancelResize: "cancel_resize",
}

// String returns the wire name of the gesture kind.
func (k GestureKind) String() string {
	if k < 0 || int(k) >= len(gestureNames) {
		return "unknown"
	}
	return gestureNames[k]
}

// GestureEvent is one host input waiting for the next frame boundary.
type GestureEvent struct {
	Kind    GestureKind
	PanelID domain.PanelID
	Pos     domain.Point
	Delta   float64
}

// EventQueue buffers gesture input between frames.
// Consecutive pointer motion keeps only the latest position and consecutive resize deltas for one panel are summed.
type EventQueue struct {
	pending []GestureEvent
}

// Push appends ev, merging it into the tail event when possible.
func (q *EventQueue) Push(ev GestureEvent) {
	if n := len(q.pending); n > 0 {
		last := &q.pending[n-1]
		switch {
		case ev.Kind == GesturePointerMoved && last.Kind == GesturePointerMoved:
			*last = ev
			return
		case ev.Kind == GestureUpdateResize && last.Kind == GestureUpdateResize && last.PanelID == ev.PanelID:
			last.Delta += ev.Delta
			return
		}
	}
	q.pending = append(q.pending, ev)
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return len(q.pending)
}

// Drain returns pending events in arrival order and empties the queue.
func (q *EventQueue) Drain() []GestureEvent {
	out := q.pending
	q.pending = nil
	return out
}
