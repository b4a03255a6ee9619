package calc

import "testing"

func newTestCalc(t *testing.T, modelID byte) *Calc {
	t.Helper()
	c, err := NewCalc(modelID, nil)
	if err != nil {
		t.Fatalf("NewCalc(%q): %v", modelID, err)
	}
	rom := make([]byte, c.Model.FlashSize)
	if err := c.LoadROM(rom); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	// Exercise-protection exceptions are opt-in via StopMask; disable them
	// here so a ROM of all-NOPs can simply run to a cycle timeout.
	c.Z80.StopMask = 0
	return c
}

func TestRunCyclesAdvancesClockAndStopsAtTimeout(t *testing.T) {
	c := newTestCalc(t, 'p')
	ran, reason := c.RunCycles(1000)
	if reason != StopTimeout {
		t.Fatalf("reason = %v, want StopTimeout", reason)
	}
	if ran < 1000 {
		t.Fatalf("ran = %d, want at least 1000", ran)
	}
}

func TestRunCyclesMonotonicClock(t *testing.T) {
	c := newTestCalc(t, 'p')
	before := c.Z80.Clock
	c.RunCycles(500)
	after := c.Z80.Clock
	if after <= before {
		t.Fatalf("clock did not advance: before=%d after=%d", before, after)
	}
}

func TestStopIsCooperativeAndDoesNotBlockOnMu(t *testing.T) {
	c := newTestCalc(t, 'p')

	done := make(chan struct{})
	go func() {
		c.RunCycles(1 << 30) // a long run
		close(done)
	}()

	c.Stop()
	<-done // must not deadlock
}

func TestSetIRQLineAndTriggerNMIAreMutexGuarded(t *testing.T) {
	c := newTestCalc(t, 'p')
	c.SetIRQLine(true)
	if !c.Z80.IRQLine {
		t.Fatal("expected IRQLine set")
	}
	c.TriggerNMI()
	if !c.Z80.NMILine {
		t.Fatal("expected NMILine latched")
	}
}

func TestPeriodicHardwareTimerRequestsIRQOnlyWhenUnmasked(t *testing.T) {
	c := newTestCalc(t, 'p')

	// Masked: the timer must keep firing (clock advances) without ever
	// asserting IRQLine.
	c.RunCycles(uint64(c.Model.ClockHz) / 512 * 3)
	if c.Z80.IRQLine {
		t.Fatal("IRQLine asserted with the timer interrupt masked")
	}

	c.Out(0x04, 1) // unmask via port 4
	c.RunCycles(uint64(c.Model.ClockHz) / 512 * 2)
	if !c.Z80.IRQLine {
		t.Fatal("expected IRQLine asserted once the timer interrupt is unmasked")
	}
	if c.In(0x04)&0x02 == 0 {
		t.Fatal("expected port 4 to report the pending timer interrupt bit")
	}

	c.Out(0x04, 1) // ack
	if c.Z80.IRQLine {
		t.Fatal("expected IRQLine cleared after acking port 4")
	}
	if c.In(0x04)&0x02 != 0 {
		t.Fatal("expected pending timer interrupt bit cleared after ack")
	}
}
