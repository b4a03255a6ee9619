package calc

// execMain executes an unprefixed opcode using the standard x/y/z/p/q
// decomposition (x=op>>6, y=(op>>3)&7, z=op&7, p=y>>1, q=y&1), the
// well-known decoding shared by most from-scratch Z80 interpreters.
func (c *Calc) execMain(op uint8) {
	z := &c.Z80
	x, y, zz := op>>6, (op>>3)&7, op&7
	p, q := y>>1, y&1

	switch x {
	case 0:
		switch zz {
		case 0:
			c.execX0Z0(y)
		case 1:
			if q == 0 {
				c.setRegPairHL(p, true, c.fetch16())
			} else {
				hl := z.HL.U16()
				z.HL.SetU16(add16(z.addrF(), hl, c.regPairHL(p, true)))
			}
		case 2:
			c.execX0Z2(p, q)
		case 3:
			rp := c.regPairHL(p, true)
			if q == 0 {
				c.setRegPairHL(p, true, rp+1)
			} else {
				c.setRegPairHL(p, true, rp-1)
			}
		case 4:
			addr := z.HL.U16()
			c.setReg8(y, false, addr, inc8(z.addrF(), c.reg8(y, false, addr)))
		case 5:
			addr := z.HL.U16()
			c.setReg8(y, false, addr, dec8(z.addrF(), c.reg8(y, false, addr)))
		case 6:
			addr := z.HL.U16()
			n := c.fetch8Data()
			c.setReg8(y, false, addr, n)
		case 7:
			c.execX0Z7(y)
		}
	case 1:
		if zz == 6 && y == 6 {
			z.Halted = true
			return
		}
		src := c.reg8(zz, false, z.HL.U16())
		c.setReg8(y, false, z.HL.U16(), src)
	case 2:
		v := c.reg8(zz, false, z.HL.U16())
		c.alu(y, v)
	case 3:
		switch zz {
		case 0:
			if condTrue(z, y) {
				z.PC = c.pop16()
				z.Clock += 6
			}
		case 1:
			if q == 0 {
				c.setRegPairHL(p, false, c.pop16())
			} else {
				c.execX3Z1Q1(p)
			}
		case 2:
			addr := c.fetch16()
			if condTrue(z, y) {
				z.PC = addr
			}
		case 3:
			c.execX3Z3(y)
		case 4:
			addr := c.fetch16()
			if condTrue(z, y) {
				c.push16(z.PC)
				z.PC = addr
				z.Clock += 7
			}
		case 5:
			if q == 0 {
				c.push16(c.regPairHL(p, false))
			} else {
				c.execX3Z5Q1(p)
			}
		case 6:
			n := c.fetch8Data()
			c.alu(y, n)
		case 7:
			c.push16(z.PC)
			z.PC = uint16(y) * 8
		}
	}
}

func (c *Calc) execX0Z0(y uint8) {
	z := &c.Z80
	switch y {
	case 0:
		// NOP
	case 1:
		z.AF, z.AFalt = z.AFalt, z.AF
	case 2:
		z.BC.Lo--
		d := int8(c.fetch8Data())
		if z.BC.Lo != 0 {
			z.PC = uint16(int32(z.PC) + int32(d))
			z.Clock += 5
		}
	case 3:
		d := int8(c.fetch8Data())
		z.PC = uint16(int32(z.PC) + int32(d))
	default:
		d := int8(c.fetch8Data())
		if condTrue(z, y-4) {
			z.PC = uint16(int32(z.PC) + int32(d))
			z.Clock += 5
		}
	}
}

func (c *Calc) execX0Z2(p, q uint8) {
	z := &c.Z80
	switch {
	case q == 0 && p == 0:
		c.Write(z.BC.U16(), z.A())
	case q == 0 && p == 1:
		c.Write(z.DE.U16(), z.A())
	case q == 0 && p == 2:
		addr := c.fetch16()
		c.Write(addr, z.HL.Lo)
		c.Write(addr+1, z.HL.Hi)
	case q == 0:
		addr := c.fetch16()
		c.Write(addr, z.A())
	case q == 1 && p == 0:
		z.SetA(c.Read(z.BC.U16()))
	case q == 1 && p == 1:
		z.SetA(c.Read(z.DE.U16()))
	case q == 1 && p == 2:
		addr := c.fetch16()
		lo := c.Read(addr)
		hi := c.Read(addr + 1)
		z.HL.SetU16(uint16(hi)<<8 | uint16(lo))
	default:
		addr := c.fetch16()
		z.SetA(c.Read(addr))
	}
}

func (c *Calc) execX0Z7(y uint8) {
	z := &c.Z80
	switch y {
	case 0:
		rlca(z)
	case 1:
		rrca(z)
	case 2:
		rla(z)
	case 3:
		rra(z)
	case 4:
		z.daa()
	case 5:
		cpl(z)
	case 6:
		scf(z)
	case 7:
		ccf(z)
	}
}

func (c *Calc) execX3Z1Q1(p uint8) {
	z := &c.Z80
	switch p {
	case 0:
		z.PC = c.pop16()
	case 1:
		z.BC, z.BCalt = z.BCalt, z.BC
		z.DE, z.DEalt = z.DEalt, z.DE
		z.HL, z.HLalt = z.HLalt, z.HL
	case 2:
		z.PC = z.HL.U16()
	default:
		z.SP = z.HL.U16()
	}
}

func (c *Calc) execX3Z3(y uint8) {
	z := &c.Z80
	switch y {
	case 0:
		addr := c.fetch16()
		z.PC = addr
	case 2:
		port := c.fetch8Data()
		c.Out(uint16(z.A())<<8|uint16(port), z.A())
	case 3:
		port := c.fetch8Data()
		z.SetA(c.In(uint16(z.A())<<8 | uint16(port)))
	case 4:
		lo := c.Read(z.SP)
		hi := c.Read(z.SP + 1)
		old := z.HL.U16()
		c.Write(z.SP, uint8(old))
		c.Write(z.SP+1, uint8(old>>8))
		z.HL.SetU16(uint16(hi)<<8 | uint16(lo))
	case 5:
		z.DE, z.HL = z.HL, z.DE
	case 6:
		z.IFF1, z.IFF2 = false, false
	case 7:
		z.IFF1, z.IFF2 = true, true
	}
}

func (c *Calc) execX3Z5Q1(p uint8) {
	z := &c.Z80
	switch p {
	case 0:
		addr := c.fetch16()
		c.push16(z.PC)
		z.PC = addr
	case 1:
		c.execCB()
	case 2:
		c.execED()
	default:
		c.execIndexed(&z.IY)
	}
}

// alu applies ALU operation y (ADD,ADC,SUB,SBC,AND,XOR,OR,CP) to A.
func (c *Calc) alu(y uint8, v uint8) {
	z := &c.Z80
	f := z.addrF()
	a := z.A()
	switch y {
	case 0:
		z.SetA(add8(f, a, v))
	case 1:
		z.SetA(adc8(f, a, v))
	case 2:
		z.SetA(sub8(f, a, v))
	case 3:
		z.SetA(sbc8(f, a, v))
	case 4:
		z.SetA(and8(f, a, v))
	case 5:
		z.SetA(xor8(f, a, v))
	case 6:
		z.SetA(or8(f, a, v))
	case 7:
		sub8(f, a, v)
	}
}

// addrF returns a pointer directly at F for the flag helpers.
func (z *Z80) addrF() *uint8 { return &z.AF.Lo }

// regPairHL/setRegPairHL are regPair/setRegPair specialized for the
// unprefixed (HL-based) instruction set.
func (c *Calc) regPairHL(p uint8, withSP bool) uint16 {
	return c.regPair(p, withSP, c.Z80.HL.U16())
}

func (c *Calc) setRegPairHL(p uint8, withSP bool, v uint16) {
	hl := c.Z80.HL.U16()
	c.setRegPair(p, withSP, v, &hl)
	if p == 2 {
		c.Z80.HL.SetU16(hl)
	}
}
