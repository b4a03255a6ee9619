package calc

import "testing"

func TestTimerSchedulerFiresInDeadlineOrder(t *testing.T) {
	s := newTimerScheduler()
	var fired []TimerID

	record := func(c *Calc, id TimerID, user any) { fired = append(fired, id) }

	idLate := s.Add(0, 100, 0, record, nil)
	idEarly := s.Add(0, 10, 0, record, nil)
	idMid := s.Add(0, 50, 0, record, nil)

	s.DispatchExpired(nil, 100)

	want := []TimerID{idEarly, idMid, idLate}
	if len(fired) != len(want) {
		t.Fatalf("fired = %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("fired[%d] = %d, want %d", i, fired[i], want[i])
		}
	}
}

func TestTimerSchedulerTieBreaksByID(t *testing.T) {
	s := newTimerScheduler()
	var fired []TimerID
	record := func(c *Calc, id TimerID, user any) { fired = append(fired, id) }

	first := s.Add(0, 10, 0, record, nil)
	second := s.Add(0, 10, 0, record, nil)

	s.DispatchExpired(nil, 10)
	if len(fired) != 2 || fired[0] != first || fired[1] != second {
		t.Fatalf("fired = %v, want [%d %d]", fired, first, second)
	}
}

func TestTimerSchedulerPeriodicReschedules(t *testing.T) {
	s := newTimerScheduler()
	count := 0
	id := s.Add(0, 10, 10, func(c *Calc, id TimerID, user any) { count++ }, nil)

	s.DispatchExpired(nil, 10)
	s.DispatchExpired(nil, 20)
	s.DispatchExpired(nil, 25) // not yet due again
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if _, ok := s.byID[id]; !ok {
		t.Fatal("periodic timer should remain registered")
	}
}

func TestTimerSchedulerRemoveStopsFiring(t *testing.T) {
	s := newTimerScheduler()
	count := 0
	id := s.Add(0, 10, 10, func(c *Calc, id TimerID, user any) { count++ }, nil)
	s.Remove(id)
	s.DispatchExpired(nil, 100)
	if count != 0 {
		t.Fatalf("count = %d, want 0 after Remove", count)
	}
}

func TestTimerSchedulerRemoveUnknownIDIsSafe(t *testing.T) {
	s := newTimerScheduler()
	s.Remove(TimerID(999))
}

func TestTimerSchedulerNextDeadline(t *testing.T) {
	s := newTimerScheduler()
	if _, ok := s.NextDeadline(); ok {
		t.Fatal("expected no deadline on empty scheduler")
	}
	s.Add(0, 50, 0, func(c *Calc, id TimerID, user any) {}, nil)
	d, ok := s.NextDeadline()
	if !ok || d != 50 {
		t.Fatalf("NextDeadline = (%d, %v), want (50, true)", d, ok)
	}
}
