package calc

// Step fetches, decodes, and executes one instruction, returning the
// number of T-states consumed including any bus-access surcharge (spec
// §4.1 "Cycle accounting"). Interrupt acceptance and HALT handling live
// in the run loop (run.go); Step always executes exactly one instruction
// (or treats HALT as a repeated NOP at the documented 4 T-states).
func (c *Calc) Step() int {
	z := &c.Z80
	startClock := z.Clock

	if z.Halted {
		z.Clock += 4
		return int(z.Clock - startClock)
	}

	z.R = z.R&0x80 | (z.R+1)&0x7F
	op := c.ReadM1(z.PC)
	z.PC++

	switch op {
	case 0xCB:
		c.execCB()
	case 0xED:
		c.execED()
	case 0xDD:
		c.execIndexed(&z.IX)
	case 0xFD:
		c.execIndexed(&z.IY)
	default:
		z.Clock += uint64(mainCycles[op])
		c.execMain(op)
	}

	return int(z.Clock - startClock)
}

func (c *Calc) fetch8() uint8 {
	z := &c.Z80
	v := c.ReadM1(z.PC)
	z.PC++
	return v
}

func (c *Calc) fetch8Data() uint8 {
	z := &c.Z80
	v := c.Read(z.PC)
	z.PC++
	return v
}

func (c *Calc) fetch16() uint16 {
	lo := c.fetch8Data()
	hi := c.fetch8Data()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *Calc) push16(v uint16) {
	z := &c.Z80
	z.SP--
	c.Write(z.SP, uint8(v>>8))
	z.SP--
	c.Write(z.SP, uint8(v))
}

func (c *Calc) pop16() uint16 {
	z := &c.Z80
	lo := c.Read(z.SP)
	z.SP++
	hi := c.Read(z.SP)
	z.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// reg8 returns a getter/setter pair for one of the 8 register-field
// codes (0=B,1=C,2=D,3=E,4=H,5=L,6=(HL)/(index+d),7=A), the classic Z80
// opcode decomposition. addr is the code-6 memory address ((HL), or
// (IX+d)/(IY+d) pre-computed by the caller for DD/FD forms); when indexed
// is set, codes 4/5 read the high/low byte of addr instead of H/L.
func (c *Calc) reg8(code uint8, indexed bool, addr uint16) uint8 {
	z := &c.Z80
	switch code {
	case 0:
		return z.BC.Hi
	case 1:
		return z.BC.Lo
	case 2:
		return z.DE.Hi
	case 3:
		return z.DE.Lo
	case 4:
		if indexed {
			return uint8(addr >> 8)
		}
		return z.HL.Hi
	case 5:
		if indexed {
			return uint8(addr)
		}
		return z.HL.Lo
	case 6:
		return c.Read(addr)
	default:
		return z.A()
	}
}

func (c *Calc) setReg8(code uint8, indexed bool, addr uint16, v uint8) {
	z := &c.Z80
	switch code {
	case 0:
		z.BC.Hi = v
	case 1:
		z.BC.Lo = v
	case 2:
		z.DE.Hi = v
	case 3:
		z.DE.Lo = v
	case 4:
		if !indexed {
			z.HL.Hi = v
		}
	case 5:
		if !indexed {
			z.HL.Lo = v
		}
	case 6:
		c.Write(addr, v)
	case 7:
		z.SetA(v)
	}
}

// regPair returns one of BC/DE/HL/SP (the "rp" table) or BC/DE/HL/AF
// (the "rp2" table used by PUSH/POP), by the 2-bit p field.
func (c *Calc) regPair(p uint8, withSP bool, hl uint16) uint16 {
	z := &c.Z80
	switch p {
	case 0:
		return z.BC.U16()
	case 1:
		return z.DE.U16()
	case 2:
		return hl
	default:
		if withSP {
			return z.SP
		}
		return z.AF.U16()
	}
}

func (c *Calc) setRegPair(p uint8, withSP bool, v uint16, hl *uint16) {
	z := &c.Z80
	switch p {
	case 0:
		z.BC.SetU16(v)
	case 1:
		z.DE.SetU16(v)
	case 2:
		*hl = v
	default:
		if withSP {
			z.SP = v
		} else {
			z.AF.SetU16(v & 0xFFFF)
		}
	}
}

func condTrue(z *Z80, cc uint8) bool {
	switch cc {
	case 0:
		return !z.flag(FlagZ)
	case 1:
		return z.flag(FlagZ)
	case 2:
		return !z.flag(FlagC)
	case 3:
		return z.flag(FlagC)
	case 4:
		return !z.flag(FlagP) // PO
	case 5:
		return z.flag(FlagP) // PE
	case 6:
		return !z.flag(FlagS) // P
	default:
		return z.flag(FlagS) // M
	}
}
