// Package schedule provides the deferred-callback scheduler used for effect
// expiry. Time is virtual: it only moves when the frame loop calls Advance,
// so callbacks always run on the frame goroutine, in deadline order.
package schedule

import (
	"container/heap"
	"sync"
	"time"
)

// Timer is a cancelable handle for a scheduled callback.
type Timer struct {
	deadline time.Duration
	seq      uint64
	fn       func()
	index    int // heap index, -1 once fired or canceled
	sched    *Scheduler
}

// Deadline returns the scheduler time at which the callback fires.
func (t *Timer) Deadline() time.Duration { return t.deadline }

// Cancel prevents the callback from running.
// Returns false if it already fired or was canceled before.
func (t *Timer) Cancel() bool {
	if t == nil || t.sched == nil {
		return false
	}
	s := t.sched
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.index < 0 {
		return false
	}
	heap.Remove(&s.timers, t.index)
	t.fn = nil
	return true
}

// Pending reports whether the timer is still armed.
func (t *Timer) Pending() bool {
	if t == nil || t.sched == nil {
		return false
	}
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	return t.index >= 0
}

// Scheduler is a min-heap of timers keyed by (deadline, arm order).
//
// Thread-safe: RunAfter and Cancel may be called from callbacks and from
// other goroutines; callbacks are invoked without the lock held.
type Scheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers timerHeap
}

// New creates a scheduler at virtual time zero.
func New() *Scheduler {
	return &Scheduler{timers: make(timerHeap, 0, 64)}
}

// Now returns the current virtual time.
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// RunAfter arms fn to run once d has elapsed. Negative d is treated as zero;
// a zero delay fires on the next Advance, never synchronously. This holds for
// callbacks that re-arm from inside Advance too.
func (s *Scheduler) RunAfter(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &Timer{
		deadline: s.now + d,
		seq:      s.seq,
		fn:       fn,
		sched:    s,
	}
	heap.Push(&s.timers, t)
	return t
}

// Advance moves virtual time forward by dt and fires every timer whose
// deadline is at or before the new time. Only timers armed before the call
// are eligible; those armed by callbacks wait for the next Advance. Returns
// the number of callbacks run.
func (s *Scheduler) Advance(dt time.Duration) int {
	s.mu.Lock()
	if dt > 0 {
		s.now += dt
	}
	limit := s.seq
	s.mu.Unlock()

	fired := 0
	for {
		fn := s.popDue(limit)
		if fn == nil {
			return fired
		}
		fn()
		fired++
	}
}

// Len returns the number of armed timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// popDue pops the next due timer armed no later than limit. A newer timer at
// the top means every older one left is not yet due.
func (s *Scheduler) popDue(limit uint64) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.timers) > 0 && s.timers[0].deadline <= s.now && s.timers[0].seq <= limit {
		t := heap.Pop(&s.timers).(*Timer)
		fn := t.fn
		t.fn = nil
		if fn != nil {
			return fn
		}
	}
	return nil
}

type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
