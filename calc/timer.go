package calc

import "container/heap"

// TimerID identifies a scheduled timer; returned by AddTimer.
type TimerID uint32

// TimerCallback is invoked when a timer expires. user is the opaque value
// passed to AddTimer.
type TimerCallback func(c *Calc, id TimerID, user any)

type timerEntry struct {
	id       TimerID
	deadline uint64
	period   uint64 // 0 for one-shot
	cb       TimerCallback
	user     any
	removed  bool
	index    int
}

// timerHeap is a binary min-heap ordered by deadline, with ties broken by
// ascending id (spec §4.8, §8.8, §5 "Ordering").
type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].id < h[j].id
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// TimerScheduler is the Calc's hardware-timer heap (spec §4.8): a
// monotonic cycle clock external to it (Calc.Z80.Clock) drives expiry.
type TimerScheduler struct {
	heap   timerHeap
	byID   map[TimerID]*timerEntry
	nextID TimerID
}

func newTimerScheduler() *TimerScheduler {
	return &TimerScheduler{byID: map[TimerID]*timerEntry{}}
}

// Add schedules a callback to fire at now+initialDelay, then every period
// cycles thereafter if period > 0. Returns the new timer's id.
func (s *TimerScheduler) Add(now, initialDelay, period uint64, cb TimerCallback, user any) TimerID {
	s.nextID++
	e := &timerEntry{
		id:       s.nextID,
		deadline: now + initialDelay,
		period:   period,
		cb:       cb,
		user:     user,
	}
	s.byID[e.id] = e
	heap.Push(&s.heap, e)
	return e.id
}

// Remove invalidates a timer; it will not fire again. Safe to call more
// than once or with an unknown id.
func (s *TimerScheduler) Remove(id TimerID) {
	if e, ok := s.byID[id]; ok {
		e.removed = true
		delete(s.byID, id)
	}
}

// NextDeadline returns the earliest live deadline and whether one exists.
func (s *TimerScheduler) NextDeadline() (uint64, bool) {
	for s.heap.Len() > 0 && s.heap[0].removed {
		heap.Pop(&s.heap)
	}
	if s.heap.Len() == 0 {
		return 0, false
	}
	return s.heap[0].deadline, true
}

// DispatchExpired pops and invokes every timer whose deadline has passed,
// in ascending (deadline, id) order, rescheduling periodic ones in place.
func (s *TimerScheduler) DispatchExpired(c *Calc, now uint64) {
	for s.heap.Len() > 0 {
		top := s.heap[0]
		if top.removed {
			heap.Pop(&s.heap)
			continue
		}
		if top.deadline > now {
			break
		}
		heap.Pop(&s.heap)
		if top.period > 0 {
			top.deadline += top.period
			top.removed = false
			heap.Push(&s.heap, top)
		} else {
			delete(s.byID, top.id)
		}
		top.cb(c, top.id, top.user)
	}
}
