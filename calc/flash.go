package calc

// FlashSector describes one erase/protect unit of flash memory, the same
// shape as libtilemcore's TilemFlashSector (original_source/emu/xs/xs_subcore.c):
// offset and size in bytes within the flash physical address space, and
// which protect group the sector belongs to (sectors sharing a nonzero
// group number are protected or unprotected together).
type FlashSector struct {
	Offset uint32
	Size   uint32
	Group  uint8
}

// flashState is a state in the AMD/Spansion command sequencer (spec §4.3).
type flashState int

const (
	flashRead flashState = iota
	flashID
	flashCmdA // saw 0xAA at *AAA
	flashCmdB // saw 0x55 at *555 following cmdA
	flashProgram
	flashEraseA // saw 0x80 (at any address) following the 2-byte unlock
	flashEraseB // saw 0xAA at *AAA again
	flashEraseC // saw 0x55 at *555 again, waiting for 0x10 or 0x30
	flashProgramBusy // unused: programByte sets flashRead+Busy instead of this state
	flashEraseBusy
)

// Flash implements the AMD-style command sequencer: program/erase with
// sector protection and busy timing (spec §4.3).
type Flash struct {
	state   flashState
	Unlock  bool
	Busy    bool
	writeCount int

	sectors     []FlashSector
	protected   map[uint8]bool // protect-group -> locked
	busyDeadline uint64
	busyByte    uint8 // byte under program, recorded but not read back
	eraseFrom, eraseTo uint32

	programBusyCycles uint64
	eraseBusyCycles   uint64
}

// NewFlash creates a flash state machine over the given sector table.
func NewFlash(sectors []FlashSector, programBusyCycles, eraseBusyCycles uint64) *Flash {
	return &Flash{
		state:             flashRead,
		sectors:           sectors,
		protected:         map[uint8]bool{},
		programBusyCycles: programBusyCycles,
		eraseBusyCycles:   eraseBusyCycles,
	}
}

// SetSectorProtected locks or unlocks an entire protect group.
func (f *Flash) SetSectorProtected(group uint8, protected bool) {
	if protected {
		f.protected[group] = true
	} else {
		delete(f.protected, group)
	}
}

func (f *Flash) sectorAt(pa uint32) (FlashSector, bool) {
	for _, s := range f.sectors {
		if pa >= s.Offset && pa < s.Offset+s.Size {
			return s, true
		}
	}
	return FlashSector{}, false
}

func (f *Flash) sectorsInRange(lo, hi uint32) []FlashSector {
	var out []FlashSector
	for _, s := range f.sectors {
		if s.Offset < hi && s.Offset+s.Size > lo {
			out = append(out, s)
		}
	}
	return out
}

// ReadByte returns the byte at physical address pa, honoring busy-state
// toggle bits while a program/erase operation is in flight.
func (f *Flash) ReadByte(mem []byte, pa uint32, clock uint64) uint8 {
	if f.Busy {
		if clock >= f.busyDeadline {
			f.finishBusy(mem)
		} else {
			// DQ6 toggles on every read while busy; approximate with
			// the clock's low bit so consecutive polls observe a change.
			toggle := uint8(clock&1) << 6
			return mem[pa]&^0x40 | toggle
		}
	}
	return mem[pa]
}

func (f *Flash) finishBusy(mem []byte) {
	if f.state == flashEraseBusy {
		for pa := f.eraseFrom; pa < f.eraseTo; pa++ {
			mem[pa] = 0xFF
		}
	}
	f.Busy = false
	f.state = flashRead
}

// WriteByte feeds one byte of the AMD command sequence, or (if a program
// command is already latched) programs a byte, or is silently dropped if
// it targets a protected sector (spec §4.3, §7).
func (f *Flash) WriteByte(mem []byte, pa uint32, v uint8, clock uint64) {
	if f.Busy && clock < f.busyDeadline {
		return
	}
	if f.Busy {
		f.finishBusy(mem)
	}

	switch f.state {
	case flashRead, flashID:
		if pa&0xFFF == 0xAAA && v == 0xAA {
			f.state = flashCmdA
			return
		}
		f.state = flashRead
	case flashCmdA:
		if pa&0xFFF == 0x555 && v == 0x55 {
			f.state = flashCmdB
			return
		}
		f.state = flashRead
	case flashCmdB:
		switch v {
		case 0xA0:
			f.state = flashProgram
		case 0x80:
			f.state = flashEraseA
		case 0x90:
			f.state = flashID
		case 0xF0:
			f.state = flashRead
		default:
			f.state = flashRead
		}
		return
	case flashProgram:
		f.programByte(mem, pa, v, clock)
		return
	case flashEraseA:
		if pa&0xFFF == 0xAAA && v == 0xAA {
			f.state = flashEraseB
			return
		}
		f.state = flashRead
	case flashEraseB:
		if pa&0xFFF == 0x555 && v == 0x55 {
			f.state = flashEraseC
			return
		}
		f.state = flashRead
	case flashEraseC:
		switch v {
		case 0x10:
			f.chipErase(mem, clock)
		case 0x30:
			f.sectorErase(mem, pa, clock)
		default:
			f.state = flashRead
		}
		return
	}
}

func (f *Flash) sectorProtected(pa uint32) bool {
	s, ok := f.sectorAt(pa)
	if !ok {
		return false
	}
	return s.Group != 0 && f.protected[s.Group]
}

// programByte clears bits only (AND into the existing byte): writing
// 0xFF is a no-op, matching the documented idempotence property (§8.6).
func (f *Flash) programByte(mem []byte, pa uint32, v uint8, clock uint64) {
	f.state = flashRead
	if f.sectorProtected(pa) {
		return
	}
	mem[pa] &= v
	f.writeCount++
	f.Busy = true
	f.busyDeadline = clock + f.programBusyCycles
	f.busyByte = mem[pa]
}

func (f *Flash) sectorErase(mem []byte, pa uint32, clock uint64) {
	s, ok := f.sectorAt(pa)
	if !ok || (s.Group != 0 && f.protected[s.Group]) {
		return
	}
	f.eraseFrom, f.eraseTo = s.Offset, s.Offset+s.Size
	f.state = flashEraseBusy
	f.Busy = true
	f.busyDeadline = clock + f.eraseBusyCycles
}

func (f *Flash) chipErase(mem []byte, clock uint64) {
	for _, s := range f.sectors {
		if s.Group != 0 && f.protected[s.Group] {
			continue
		}
		for pa := s.Offset; pa < s.Offset+s.Size && int(pa) < len(mem); pa++ {
			mem[pa] = 0xFF
		}
	}
	f.state = flashRead
	f.Busy = false
}
