package calc

// HWReg names a slot in a Calc's model-dependent hardware register file
// (spec §3, "hwregs"). Not every model uses every register, but Model
// carries no per-model list of the ones it exposes: the backing array is
// fixed-size (NumHWRegs slots, named in hwRegNames) since the full family
// only ever needs this many slots.
type HWReg int

const (
	PORT06 HWReg = iota // bank page for logical bank 1 ($4000-$7FFF)
	PORT07              // bank page for logical bank 2 ($8000-$BFFF)
	PORT0E              // bank page for logical bank 3 ($C000-$FFFF), flash models only
	PORT0F              // flash-unlock / misc control

	PORT22 // lower bound of the restricted flash-exec window (page)
	PORT23 // upper bound of the restricted flash-exec window (page)
	PORT24 // high bits of PORT22/PORT23 (bit0 -> PORT22 bit8, bit1 -> PORT23 bit8)
	PORT27 // size (in 64-byte units) of the privileged window at top of bank 3
	PORT28 // size (in 64-byte units) of the privileged window at bottom of bank 2

	FlashReadDelay
	FlashWriteDelay
	FlashExecDelay
	RAMReadDelay
	RAMWriteDelay
	RAMExecDelay

	NoExecRAMMask
	NoExecRAMLower
	NoExecRAMUpper

	ProtectState

	TimerIntMask    // bit0: periodic hardware timer interrupt enabled
	TimerIntPending // bit0: periodic hardware timer interrupt awaiting ack

	NumHWRegs
)

var hwRegNames = [NumHWRegs]string{
	PORT06: "PORT06", PORT07: "PORT07", PORT0E: "PORT0E", PORT0F: "PORT0F",
	PORT22: "PORT22", PORT23: "PORT23", PORT24: "PORT24",
	PORT27: "PORT27", PORT28: "PORT28",
	FlashReadDelay: "FLASH_READ_DELAY", FlashWriteDelay: "FLASH_WRITE_DELAY", FlashExecDelay: "FLASH_EXEC_DELAY",
	RAMReadDelay: "RAM_READ_DELAY", RAMWriteDelay: "RAM_WRITE_DELAY", RAMExecDelay: "RAM_EXEC_DELAY",
	NoExecRAMMask: "NO_EXEC_RAM_MASK", NoExecRAMLower: "NO_EXEC_RAM_LOWER", NoExecRAMUpper: "NO_EXEC_RAM_UPPER",
	ProtectState:    "PROTECTSTATE",
	TimerIntMask:    "TIMER_INT_MASK",
	TimerIntPending: "TIMER_INT_PENDING",
}

// HWRegs is the named hardware register file.
type HWRegs [NumHWRegs]uint32

func (h *HWRegs) Get(r HWReg) uint32  { return h[r] }
func (h *HWRegs) Set(r HWReg, v uint32) { h[r] = v }
