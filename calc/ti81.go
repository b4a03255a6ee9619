package calc

// The TI-81/TI-82 class: mask-ROM only (no flash, no link-assist, no
// bank 3 switching), a plain monochrome LCD, and a minimal port map.
// Registered under model id '1' only; the family's other mask-ROM-only ids
// have no entry in the model table.
func init() {
	registerModel(&Model{
		Name:     "TI-81",
		ID:       '1',
		Features: HasLink | HasT6A04,

		LCDWidth:  96,
		LCDHeight: 64,
		RAMSize:   2 * 1024,
		FlashSize: 0,
		ClockHz:   2000000,

		Reset:         ti81Reset,
		StateLoaded:   ti83xStateLoaded,
		In:            ti81In,
		Out:           ti81Out,
		PeriodicTimer: ti83xPeriodicTimer,
	})
}

func ti81Reset(c *Calc) {
	c.Mem.PageMap = [4]uint32{0, 0, 0, 0}
	c.HW.Set(NoExecRAMMask, 0xFFFF)
	c.HW.Set(NoExecRAMLower, 0)
	c.HW.Set(NoExecRAMUpper, 0xFFFF)
	schedulePeriodicTimer(c)
}

func ti81In(c *Calc, port uint16) uint8 {
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
	case port10LCDCmd:
		return c.lcdStatus()
	case port11LCDData:
		return c.LCD.ReadData()
	default:
		return 0xFF
	}
}

func ti81Out(c *Calc, port uint16, v uint8) {
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
	case port10LCDCmd:
		c.LCD.Command(v)
	case port11LCDData:
		c.LCD.WriteData(v)
	}
}
