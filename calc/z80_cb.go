package calc

// execCB executes a CB-prefixed opcode against a plain register or (HL),
// the rotate/shift/BIT/SET/RES group (x/y/z decomposition: x selects the
// operation, y the bit number for BIT/SET/RES, z the operand register).
func (c *Calc) execCB() {
	op := c.fetch8()
	c.Z80.Clock += uint64(cbCycles(op))
	c.execCBOn(op, false, c.Z80.HL.U16())
}

// execCBOn applies a CB-group opcode to an explicit operand address,
// shared between the plain (HL) form and the DD/FD CB (IX+d)/(IY+d) form.
// When indexed is true and z != 6, the undocumented "shadow write" applies:
// the rotate/shift result is written to both (addr) and the register.
func (c *Calc) execCBOn(op uint8, indexed bool, addr uint16) {
	z := &c.Z80
	f := z.addrF()
	x, y, zz := op>>6, (op>>3)&7, op&7

	var v uint8
	if zz == 6 || indexed {
		v = c.Read(addr)
	} else {
		v = c.reg8(zz, false, 0)
	}

	var res uint8
	switch x {
	case 0:
		switch y {
		case 0:
			res = rlc(f, v)
		case 1:
			res = rrc(f, v)
		case 2:
			res = rl(f, v)
		case 3:
			res = rr(f, v)
		case 4:
			res = sla(f, v)
		case 5:
			res = sra(f, v)
		case 6:
			res = sll(f, v)
		default:
			res = srl(f, v)
		}
		c.storeCBResult(zz, indexed, addr, res)
	case 1:
		bit(f, uint(y), v)
		if indexed {
			// the undocumented BIT n,(IX+d) X/Y quirk copies from the
			// high byte of the displaced address, not from v.
			*f = (*f &^ (FlagX | FlagY)) | (uint8(addr>>8) & (FlagX | FlagY))
		}
	case 2:
		res = resBit(uint(y), v)
		c.storeCBResult(zz, indexed, addr, res)
	default:
		res = setBit(uint(y), v)
		c.storeCBResult(zz, indexed, addr, res)
	}
}

func (c *Calc) storeCBResult(zz uint8, indexed bool, addr uint16, v uint8) {
	if zz == 6 || indexed {
		c.Write(addr, v)
	}
	if zz != 6 {
		c.setReg8(zz, false, 0, v)
	}
}
