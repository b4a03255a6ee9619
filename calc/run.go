package calc

// run.go implements the cycle-accurate run loop (spec §4.9): fetch,
// decode, execute one instruction via Step, charge timers, accept
// pending interrupts, and stop when the deadline or a StopMask bit is
// reached. The loop itself never runs concurrently with another Calc
// method; callers that need cooperative cancellation from another
// goroutine use Stop, which sets an atomic stop flag (checked between
// instructions) and wakes waiters on the Calc's condition variable.

// RunCycles advances the machine by at least n T-states (it may run a
// few over, since an instruction is never interrupted mid-execution)
// and returns the T-states actually consumed plus why it stopped.
func (c *Calc) RunCycles(n uint64) (uint64, StopReason) {
	c.mu.Lock()
	defer c.mu.Unlock()

	z := &c.Z80
	z.StopReason = StopNone
	start := z.Clock
	deadline := start + n

	for z.Clock < deadline {
		if c.stopRequested.CompareAndSwap(true, false) {
			z.StopReason = StopUser
			return z.Clock - start, StopUser
		}
		if reason := c.stepOnce(); reason != StopNone {
			return z.Clock - start, reason
		}
	}
	return z.Clock - start, StopTimeout
}

// RunTime advances the machine by at least the given number of
// microseconds, converting through the model's clock rate.
func (c *Calc) RunTime(microseconds uint64) (uint64, StopReason) {
	cycles := microseconds * uint64(c.Model.ClockHz) / 1000000
	return c.RunCycles(cycles)
}

// stepOnce runs interrupt acceptance, HALT handling, one Step, and timer
// dispatch, in the order spec §4.9 documents. It must be called with
// c.mu held.
func (c *Calc) stepOnce() StopReason {
	z := &c.Z80

	if z.NMILine {
		z.NMILine = false
		z.Halted = false
		z.IFF2 = z.IFF1
		z.IFF1 = false
		c.push16(z.PC)
		z.PC = 0x0066
		z.Clock += 11
	} else if z.IRQLine && z.IFF1 {
		c.acceptIRQ()
	}

	if z.Halted {
		if !z.IRQLine && !z.NMILine {
			z.Clock += 4
			c.Timers.DispatchExpired(c, z.Clock)
			if z.StopMask.has(z.StopReason) {
				return z.StopReason
			}
			return StopNone
		}
		z.Halted = false
	}

	c.Step()
	c.Timers.DispatchExpired(c, z.Clock)

	if z.StopReason != StopNone && z.StopMask.has(z.StopReason) {
		return z.StopReason
	}
	return StopNone
}

// acceptIRQ vectors a maskable interrupt per the current interrupt mode
// (spec §4.1 "Interrupts"). IM0 assumes the device places 0xFF on the
// bus (RST 38h), the overwhelmingly common case on these calculators
// since nothing else drives the data bus during the IM0 ack cycle.
func (c *Calc) acceptIRQ() {
	z := &c.Z80
	z.IFF1, z.IFF2 = false, false
	z.Halted = false
	c.push16(z.PC)

	switch z.IM {
	case IM0:
		z.PC = 0x0038
		z.Clock += 13
	case IM1:
		z.PC = 0x0038
		z.Clock += 13
	case IM2:
		vector := uint16(z.I)<<8 | 0x00FF
		lo := c.Read(vector)
		hi := c.Read(vector + 1)
		z.PC = uint16(hi)<<8 | uint16(lo)
		z.Clock += 19
	}
}

// TriggerNMI latches a non-maskable interrupt for the next stepOnce.
func (c *Calc) TriggerNMI() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Z80.NMILine = true
}

// SetIRQLine sets or clears the level-triggered maskable interrupt line.
func (c *Calc) SetIRQLine(asserted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Z80.IRQLine = asserted
}
