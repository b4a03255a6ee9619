package calc

import (
	"sync"
	"sync/atomic"
)

// WarnFunc receives non-fatal diagnostic messages (spec §7's
// "host-supplied warning sink"). A nil WarnFunc is replaced with a no-op.
type WarnFunc func(format string, args ...any)

// Calc is the aggregate machine state (spec §3): it owns its Z80, memory,
// flash, port/hardware-register file, LCD, keypad, link port, and timer
// scheduler exclusively. Subsystems never hold a pointer back to Calc;
// Calc always passes itself as a parameter where a subsystem needs
// cross-cutting state (e.g. the cycle clock for busy-timing).
type Calc struct {
	mu   sync.Mutex
	cond *sync.Cond

	Model *Model

	Z80    Z80
	Mem    *Memory
	Flash  *Flash
	HW     HWRegs
	LCD    *LCD
	Keypad *Keypad
	Link   *LinkPort
	Timers *TimerScheduler

	warn WarnFunc

	// runDeadline is not written or read by any code in this package;
	// RunCycles keeps its deadline in a local variable.
	runDeadline uint64

	// stopRequested is set by Stop from any goroutine without taking mu,
	// so a long RunCycles call notices it between instructions instead
	// of waiting for the whole call to finish (spec §5's cooperative
	// cancellation requirement).
	stopRequested atomic.Bool
}

// NewCalc allocates and resets a Calc for the given model id.
func NewCalc(modelID byte, warn WarnFunc) (*Calc, error) {
	m := LookupModel(modelID)
	if m == nil {
		return nil, ErrUnknownModel
	}
	if warn == nil {
		warn = func(string, ...any) {}
	}
	c := &Calc{
		Model:  m,
		Mem:    NewMemory(m.FlashSize, m.RAMSize),
		HW:     HWRegs{},
		LCD:    NewLCD(m.LCDWidth, m.LCDHeight, m.Features.Has(HasColorLCD)),
		Keypad: NewKeypad(),
		Link:   NewLinkPort(m.Features.Has(HasLinkAssist)),
		Timers: newTimerScheduler(),
		warn:   warn,
	}
	c.cond = sync.NewCond(&c.mu)
	if m.Features.Has(HasFlash) {
		c.Flash = NewFlash(m.FlashSectors, m.ProgramBusyCycles, m.EraseBusyCycles)
	} else {
		c.Flash = NewFlash(nil, 0, 0)
	}
	c.Z80.StopMask = DefaultStopMask
	c.Reset()
	return c, nil
}

// Warn forwards a diagnostic to the configured warning sink.
func (c *Calc) Warn(format string, args ...any) { c.warn(format, args...) }

// Reset reinstates power-on state: registers cleared, PC=0, page map
// identity, and the model's Reset hook (if any) runs last so it can
// install its own startup register values (spec §3 lifecycle).
func (c *Calc) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Z80 = Z80{StopMask: c.Z80.StopMask, EmuFlags: c.Z80.EmuFlags}
	c.Mem.PageMap = [4]uint32{0, 1, 2, 3}
	c.Mem.cacheGen++
	if c.Model.Reset != nil {
		c.Model.Reset(c)
	}
}

// LoadROM copies rom into the flash/mask-ROM region of the backing
// array. len(rom) must not exceed the model's FlashSize.
func (c *Calc) LoadROM(rom []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if uint32(len(rom)) > c.Model.FlashSize {
		return ErrSizeMismatch
	}
	copy(c.Mem.Bytes, rom)
	if c.Model.StateLoaded != nil {
		c.Model.StateLoaded(c)
	}
	return nil
}

// --- Bus: the interface the Z80 interpreter uses for memory/IO access ---

// Read implements the data-read half of spec §4.2.
func (c *Calc) Read(addr uint16) uint8 {
	page := c.Mem.pageFor(addr, c.HW[PORT27], c.HW[PORT28])
	if page == 0xFE && !c.Flash.Unlock {
		c.warn("reading from read-protected sector")
		return 0xFF
	}
	pa := uint32(addr&0x3FFF) | page<<14
	if pa < c.Mem.FlashSize {
		c.Z80.Clock += uint64(c.HW[FlashReadDelay])
	} else {
		c.Z80.Clock += uint64(c.HW[RAMReadDelay])
	}
	return c.readByteAt(pa)
}

func (c *Calc) readByteAt(pa uint32) uint8 {
	if int(pa) >= len(c.Mem.Bytes) {
		return 0xFF
	}
	var value uint8
	if pa < c.Mem.FlashSize && (c.Flash.state != flashRead || c.Flash.Busy) {
		value = c.Flash.ReadByte(c.Mem.Bytes, pa, c.Z80.Clock)
	} else {
		value = c.Mem.Bytes[pa]
	}
	c.HW[ProtectState] = advanceProtectState(c.HW[ProtectState], pa, value)
	return value
}

// ReadM1 implements the opcode-fetch read, including the execute-
// permission checks in spec §4.2.
func (c *Calc) ReadM1(addr uint16) uint8 {
	page := c.Mem.pageFor(addr, c.HW[PORT27], c.HW[PORT28])
	if page == 0xFE && !c.Flash.Unlock {
		c.warn("reading from read-protected sector")
		return 0xFF
	}
	pa := uint32(addr&0x3FFF) | page<<14

	if pa < c.Mem.FlashSize {
		c.Z80.Clock += uint64(c.HW[FlashExecDelay])
		lo := c.HW[PORT22] | (c.HW[PORT24]&1)<<8
		hi := c.HW[PORT23] | (c.HW[PORT24]&2)<<7
		if page >= lo && page <= hi {
			c.warn("executing in restricted Flash area")
			c.raiseException(ExcFlashExec)
		}
	} else {
		c.Z80.Clock += uint64(c.HW[RAMExecDelay])
		m := pa & c.HW[NoExecRAMMask]
		if m < c.HW[NoExecRAMLower] || m > c.HW[NoExecRAMUpper] {
			c.warn("executing in restricted RAM area")
			c.raiseException(ExcRAMExec)
		}
	}

	value := c.readByteAt(pa)
	if value == 0xFF && addr == 0x0038 {
		c.warn("no OS installed")
		c.raiseException(ExcFlashExec)
	}
	return value
}

// Write implements spec §4.2's write dispatch: flash range goes through
// the flash state machine, RAM range is a direct store.
func (c *Calc) Write(addr uint16, v uint8) {
	page := c.Mem.pageFor(addr, c.HW[PORT27], c.HW[PORT28])
	pa := uint32(addr&0x3FFF) | page<<14
	if pa >= uint32(len(c.Mem.Bytes)) {
		return
	}
	if pa < c.Mem.FlashSize {
		c.Z80.Clock += uint64(c.HW[FlashWriteDelay])
		c.Flash.WriteByte(c.Mem.Bytes, pa, v, c.Z80.Clock)
	} else {
		c.Z80.Clock += uint64(c.HW[RAMWriteDelay])
		c.Mem.Bytes[pa] = v
	}
}

// In/Out dispatch to the model's port table (spec §4.4).
func (c *Calc) In(port uint16) uint8  { return c.Model.In(c, port) }
func (c *Calc) Out(port uint16, v uint8) { c.Model.Out(c, port, v) }

// Ltop/Ptol expose the memory bus's address translation (spec §4.2, §6).
func (c *Calc) Ltop(addr uint16) uint32 { return c.Mem.Ltop(addr, c.HW[PORT27], c.HW[PORT28]) }
func (c *Calc) Ptol(pa uint32) uint32   { return c.Mem.Ptol(pa, c.HW[PORT27], c.HW[PORT28]) }

// raiseException records an exception and, if enabled in StopMask, stops
// the run; either way it never corrupts state (spec §4.10, §7).
func (c *Calc) raiseException(kind ExceptionKind) {
	var reason StopReason
	switch kind {
	case ExcFlashExec:
		reason = StopFlashExec
	case ExcRAMExec:
		reason = StopRAMExec
	default:
		reason = StopInstructionException
	}
	if c.Z80.StopMask.has(reason) {
		c.Z80.StopReason = reason
	}
}

// Stop requests cooperative cancellation of a running call (spec §5).
// Safe to call from another goroutine while RunCycles/RunTime holds the
// coarse lock for the whole call: it only flips an atomic flag the run
// loop polls between instructions, never blocking on mu itself.
func (c *Calc) Stop() {
	c.stopRequested.Store(true)
	c.cond.Broadcast()
}

// KeyPress/KeyRelease are host-facing operations (spec §6); each takes
// the coarse mutex for its duration per §5.
func (c *Calc) KeyPress(key KeyCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Keypad.Press(key)
}

func (c *Calc) KeyRelease(key KeyCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Keypad.Release(key)
}

// AddTimer/RemoveTimer are thin, mutex-guarded wrappers over Timers
// (spec §6 `timer_add`/`timer_remove`).
func (c *Calc) AddTimer(initialDelay, period uint64, cb TimerCallback, user any) TimerID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Timers.Add(c.Z80.Clock, initialDelay, period, cb, user)
}

func (c *Calc) RemoveTimer(id TimerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Timers.Remove(id)
}
