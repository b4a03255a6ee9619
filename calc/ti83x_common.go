package calc

// Port assignments shared by the TI-83+ family (spec §3's "model family
// sharing a port map"). The bank-page ports reuse the same numbers as
// their HWReg slot (PORT06/PORT07/PORT0E), matching real hardware.
const (
	port00Keypad    = 0x00 // out: group select; in: row read
	port02LinkCtl   = 0x02 // link status/control (tip/ring bits)
	port03LinkData  = 0x03 // link byte shift register
	port04IntStatus = 0x04 // interrupt status (read), ack (write)
	port06Bank1     = 0x06 // page mapped at $4000-$7FFF
	port07Bank2     = 0x07 // page mapped at $8000-$BFFF
	port0EBank3     = 0x0E // page mapped at $C000-$FFFF
	port0FUnlock    = 0x0F // flash read-protect unlock control
	port10LCDCmd    = 0x10
	port11LCDData   = 0x11
	port22FlashLo   = 0x22
	port23FlashHi   = 0x23
	port24FlashBits = 0x24
	port27Port27    = 0x27
	port28Port28    = 0x28
)

func ti83xIn(c *Calc, port uint16) uint8 {
	switch uint8(port) {
	case port00Keypad:
		return c.Keypad.Scan()
	case port02LinkCtl:
		v := uint8(c.Link.Effective())
		v |= uint8(c.Link.ExtLines()) << 2
		return v
	case port03LinkData:
		recv := c.Link.DequeueRecv(1)
		if len(recv) == 0 {
			return 0
		}
		return recv[0]
	case port04IntStatus:
		var v uint8
		if c.Link.StateChanged() {
			v |= 0x01
		}
		if c.HW[TimerIntPending] != 0 {
			v |= 0x02
		}
		return v
	case port06Bank1:
		return uint8(c.HW[PORT06])
	case port07Bank2:
		return uint8(c.HW[PORT07])
	case port0EBank3:
		return uint8(c.HW[PORT0E])
	case port0FUnlock:
		if c.Flash.Unlock {
			return 1
		}
		return 0
	case port10LCDCmd:
		return c.lcdStatus()
	case port11LCDData:
		return c.LCD.ReadData()
	case port22FlashLo:
		return uint8(c.HW[PORT22])
	case port23FlashHi:
		return uint8(c.HW[PORT23])
	case port24FlashBits:
		return uint8(c.HW[PORT24])
	case port27Port27:
		return uint8(c.HW[PORT27])
	case port28Port28:
		return uint8(c.HW[PORT28])
	default:
		return 0xFF
	}
}

func ti83xOut(c *Calc, port uint16, v uint8) {
	switch uint8(port) {
	case port00Keypad:
		c.Keypad.SetScanGroup(v)
	case port02LinkCtl:
		c.Link.SetLines(LinkLines(v & 3))
	case port03LinkData:
		c.Link.EnqueueSend(v)
		c.Link.graylinkStep(c.Z80.Clock)
	case port04IntStatus:
		c.HW.Set(TimerIntMask, uint32(v&1))
		if c.HW[TimerIntPending] != 0 {
			c.HW.Set(TimerIntPending, 0)
			c.Z80.IRQLine = false
		}
	case port06Bank1:
		c.HW.Set(PORT06, uint32(v))
		c.Mem.SetPage(1, uint32(v))
	case port07Bank2:
		c.HW.Set(PORT07, uint32(v))
		c.Mem.SetPage(2, uint32(v))
	case port0EBank3:
		c.HW.Set(PORT0E, uint32(v))
		c.Mem.SetPage(3, uint32(v))
	case port0FUnlock:
		c.Flash.Unlock = v&1 != 0
	case port10LCDCmd:
		c.LCD.Command(v)
	case port11LCDData:
		c.LCD.WriteData(v)
	case port22FlashLo:
		c.HW.Set(PORT22, uint32(v))
	case port23FlashHi:
		c.HW.Set(PORT23, uint32(v))
	case port24FlashBits:
		c.HW.Set(PORT24, uint32(v))
	case port27Port27:
		c.HW.Set(PORT27, uint32(v))
		c.Mem.cacheGen++
	case port28Port28:
		c.HW.Set(PORT28, uint32(v))
		c.Mem.cacheGen++
	}
}

// lcdStatus packs the T6A04 busy bit into bit 7, the documented polling
// idiom real TI-83+ OS code uses before every LCD command/data write.
func (c *Calc) lcdStatus() uint8 {
	var v uint8
	if c.LCD.Busy {
		v |= 0x80
	}
	return v
}

func ti83xReset(c *Calc) {
	c.HW.Set(NoExecRAMMask, 0xFFFF)
	c.HW.Set(NoExecRAMLower, 0)
	c.HW.Set(NoExecRAMUpper, 0xFFFF)
	c.HW.Set(PORT06, 0)
	c.HW.Set(PORT07, 0)
	c.HW.Set(PORT0E, 1)
	// PORT22/PORT23 bound the restricted flash-exec window; lo>hi makes
	// it empty so the boot page (page 0, where PC starts) is never
	// inside it. The OS narrows this window itself once it's running.
	c.HW.Set(PORT22, 0xFF)
	c.HW.Set(PORT23, 0x00)
	c.HW.Set(PORT24, 0)
	c.Mem.SetPage(1, 0)
	c.Mem.SetPage(2, 0)
	c.Mem.SetPage(3, 1)
	schedulePeriodicTimer(c)
}

// ti83xPeriodicTimer is the Model.PeriodicTimer hook (spec §4.4, "Timer
// ticks are realized by registering model-specific callbacks in the timer
// heap"): it latches the pending bit and asserts IRQLine when the OS has
// unmasked the timer interrupt via port 4, mirroring the documented
// mask/ack pair real TI-83+-family OS code polls.
func ti83xPeriodicTimer(c *Calc, id int) {
	if c.HW[TimerIntMask] != 0 {
		c.HW.Set(TimerIntPending, 1)
		c.Z80.IRQLine = true
	}
}

// schedulePeriodicTimer registers the repeating hardware-timer interrupt
// source shared by the whole family, called from each model's Reset hook
// (which already holds Calc's mutex, so this goes straight to the
// scheduler rather than through the locking AddTimer wrapper).
func schedulePeriodicTimer(c *Calc) {
	period := uint64(c.Model.ClockHz) / 512
	if period == 0 {
		period = 1
	}
	c.Timers.Add(c.Z80.Clock, period, period, func(cc *Calc, id TimerID, _ any) {
		if cc.Model.PeriodicTimer != nil {
			cc.Model.PeriodicTimer(cc, int(id))
		}
	}, nil)
}

// ti83xStateLoaded is present so the Model function table is always
// fully populated per spec §3, even though ROM load needs no extra work
// beyond Calc.LoadROM's copy.
func ti83xStateLoaded(c *Calc) {}
