package netsim

//
// Discrete-event scheduler
//

import (
	"container/heap"
	"fmt"
)

// HandlerFunc is the callback invoked when a scheduled [Event] fires.
// It receives the event it was scheduled with and may itself call
// [Scheduler.Add] or [Scheduler.Cancel] — the scheduler is single
// threaded and cooperative, so handlers always run to completion
// without preemption.
type HandlerFunc func(ev *Event)

// Event is a tuple of (deadline, insertion sequence, handler, payload)
// living inside the [Scheduler]'s heap. The zero value is not useful;
// events are created by [Scheduler.Add].
type Event struct {
	// Deadline is the simulated time at which this event fires.
	Deadline float64

	// Payload is an opaque value the caller attached to this event;
	// handlers type-assert it back to whatever they scheduled.
	Payload any

	// seq breaks ties between events with equal deadlines: lower
	// seq was inserted first and runs first.
	seq int64

	// handler is invoked when this event fires.
	handler HandlerFunc

	// active is cleared by [Scheduler.Cancel]. A canceled event
	// remains in the heap until popped, at which point Run ignores it.
	active bool

	// index is this event's position in the heap, kept current by
	// eventHeap's Swap/Push/Pop. Cancel does not use it.
	index int
}

// Handle is an opaque reference to a scheduled [Event], returned by
// [Scheduler.Add] and accepted by [Scheduler.Cancel].
type Handle struct {
	ev *Event
}

// eventHeap implements container/heap.Interface over *Event. A binary
// heap keyed by (deadline, seq) is the textbook data structure for a
// discrete-event scheduler's "pop the earliest pending event" access
// pattern; no third-party priority-queue package in the reference
// corpus offers cancelable handles or FIFO tie-breaking out of the
// box, so this stays on the standard library (see DESIGN.md).
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Deadline != h[j].Deadline {
		return h[i].Deadline < h[j].Deadline
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	ev := x.(*Event)
	ev.index = len(*h)
	*h = append(*h, ev)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	ev.index = -1
	*h = old[:n-1]
	return ev
}

// Scheduler is a single-threaded deterministic discrete-event engine.
// The zero value is not ready for use; call [NewScheduler].
type Scheduler struct {
	heap        eventHeap
	currentTime float64
	nextSeq     int64
	stopped     bool
}

// NewScheduler creates a new, empty [Scheduler] with current time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{
		heap:        eventHeap{},
		currentTime: 0,
		nextSeq:     0,
		stopped:     false,
	}
}

// Add schedules handler to run at CurrentTime()+delay with the given
// payload and returns a [Handle] that [Cancel] accepts. delay must be
// >= 0; otherwise Add returns [ErrNegativeDelay] and schedules nothing.
func (s *Scheduler) Add(delay float64, payload any, handler HandlerFunc) (Handle, error) {
	if delay < 0 {
		return Handle{}, fmt.Errorf("%w: got %v", ErrNegativeDelay, delay)
	}
	ev := &Event{
		Deadline: s.currentTime + delay,
		Payload:  payload,
		seq:      s.nextSeq,
		handler:  handler,
		active:   true,
	}
	s.nextSeq++
	heap.Push(&s.heap, ev)
	return Handle{ev: ev}, nil
}

// Cancel marks the event referenced by h inactive. Cancellation is
// idempotent: canceling an already-canceled or zero [Handle] is a
// no-op. The heap entry is discarded lazily when [Run] pops it.
func (s *Scheduler) Cancel(h Handle) {
	if h.ev == nil {
		return
	}
	h.ev.active = false
}

// CurrentTime returns the simulated time, in seconds, since the last
// [Reset] (or since construction).
func (s *Scheduler) CurrentTime() float64 {
	return s.currentTime
}

// Run repeatedly pops the earliest active event, advances CurrentTime
// to its deadline, and invokes its handler, until the heap empties or
// [Stop] is called from within a handler.
func (s *Scheduler) Run() {
	s.stopped = false
	for s.heap.Len() > 0 {
		if s.stopped {
			return
		}
		ev := heap.Pop(&s.heap).(*Event)
		if !ev.active {
			continue
		}
		s.currentTime = ev.Deadline
		ev.handler(ev)
	}
}

// Stop requests that [Run] return after the currently executing
// handler completes, without draining the rest of the heap.
func (s *Scheduler) Stop() {
	s.stopped = true
}

// Reset clears all pending events and resets CurrentTime to zero.
func (s *Scheduler) Reset() {
	s.heap = eventHeap{}
	s.currentTime = 0
	s.nextSeq = 0
	s.stopped = false
}

// Pending returns the number of events currently in the heap,
// including canceled-but-not-yet-popped ones. Mainly useful for tests.
func (s *Scheduler) Pending() int {
	return s.heap.Len()
}
