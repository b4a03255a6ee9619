package calc

// execIndexed executes a DD- or FD-prefixed opcode, substituting *idx
// (IX or IY) for HL and (IX+d)/(IY+d) for (HL). Opcodes that don't
// reference HL/(HL) at all behave exactly as their unprefixed form
// (the real CPU simply burns the prefix's 4 T-states and falls through);
// a second DD/FD byte restarts decoding with the new prefix, and a CB
// byte selects the displaced rotate/shift/BIT/SET/RES group.
func (c *Calc) execIndexed(idx *uint16) {
	z := &c.Z80
	op := c.fetch8()

	switch op {
	case 0xDD:
		z.Clock += 4
		c.execIndexed(&z.IX)
		return
	case 0xFD:
		z.Clock += 4
		c.execIndexed(&z.IY)
		return
	case 0xCB:
		d := int8(c.fetch8Data())
		addr := uint16(int32(*idx) + int32(d))
		cbOp := c.fetch8Data()
		if cbOp>>6 == 1 {
			z.Clock += 20 // BIT b,(IX+d)/(IY+d)
		} else {
			z.Clock += 23 // rotate/shift/SET/RES b,(IX+d)/(IY+d)
		}
		c.execCBOn(cbOp, true, addr)
		return
	case 0xEB:
		// EX DE,HL ignores the index prefix entirely on real hardware:
		// it swaps the real HL, never IX/IY. usesHLOperand has no x==3
		// case (every x==3 op goes through execMainWithHL's HL alias),
		// so without this guard execMainWithHL's alias-then-restore
		// would wrongly shuffle *idx through the swap instead.
		z.Clock += 8
		z.DE, z.HL = z.HL, z.DE
		return
	}

	x, y, zz := op>>6, (op>>3)&7, op&7
	p, q := y>>1, y&1

	// Opcodes that use register-field codes 4/5/6 (H, L, (HL)) or the HL
	// register pair (p==2) are the ones DD/FD retarget; everything else
	// is identical to the unprefixed form. As a documented simplification
	// we always substitute IXh/IXl for a plain H/L operand even in forms
	// like LD (IX+d),H where real hardware leaves that operand as plain
	// H; software relying on that distinction is vanishingly rare.
	usesHL := usesHLOperand(x, y, zz, p)
	if !usesHL {
		z.Clock += uint64(mainCycles[op]) + 4
		c.execMainWithHL(op, idx)
		return
	}

	z.Clock += uint64(indexedCycles(x, y, zz, p, q))

	switch {
	case x == 0 && zz == 1 && q == 0 && p == 2:
		*idx = c.fetch16()
	case x == 0 && zz == 1 && q == 1 && p == 2:
		f := z.addrF()
		*idx = add16(f, *idx, c.regPair(p, true, *idx))
	case x == 0 && zz == 2 && p == 2:
		c.indexedZ2(idx, q)
	case x == 0 && zz == 3 && p == 2:
		if q == 0 {
			*idx++
		} else {
			*idx--
		}
	case x == 0 && (zz == 4 || zz == 5 || zz == 6) && y == 6:
		c.indexedMem(idx, op)
	case x == 0 && zz == 4:
		c.setIdxHalf(idx, y, inc8(z.addrF(), c.idxHalf(*idx, y)))
	case x == 0 && zz == 5:
		c.setIdxHalf(idx, y, dec8(z.addrF(), c.idxHalf(*idx, y)))
	case x == 0 && zz == 6:
		c.setIdxHalf(idx, y, c.fetch8Data())
	case x == 1 && zz == 6 && y == 6:
		z.Halted = true
	case x == 1 && zz == 6:
		v := c.readIndexedOperand(idx, op)
		if y == 4 || y == 5 {
			c.setIdxHalf(idx, y, v)
		} else {
			c.setReg8(y, false, 0, v)
		}
	case x == 1 && y == 6:
		c.indexedMem(idx, op)
	case x == 1:
		c.setIdxHalf(idx, y, c.readIndexedOperand(idx, op))
	case x == 2:
		v := c.readIndexedOperand(idx, op)
		c.alu(y, v)
	case x == 3 && zz == 1 && q == 0 && p == 2:
		*idx = c.pop16()
	case x == 3 && zz == 1 && q == 1 && p == 2:
		z.PC = *idx
	case x == 3 && zz == 1 && q == 1 && p == 3:
		z.SP = *idx
	case x == 3 && zz == 3 && y == 4: // EX (SP),IX/IY
		lo := c.Read(z.SP)
		hi := c.Read(z.SP + 1)
		old := *idx
		c.Write(z.SP, uint8(old))
		c.Write(z.SP+1, uint8(old>>8))
		*idx = uint16(hi)<<8 | uint16(lo)
	case x == 3 && zz == 5 && q == 0 && p == 2:
		c.push16(*idx)
	default:
		c.execMainWithHL(op, idx)
	}
}

// usesHLOperand reports whether an unprefixed opcode's register-field
// codes reference H, L, or (HL) (the operands DD/FD retarget to the
// index register), versus opcodes like LD B,C that are untouched.
func usesHLOperand(x, y, zz, p uint8) bool {
	switch x {
	case 0:
		switch zz {
		case 1, 2, 3:
			return p == 2
		case 4, 5, 6:
			return y == 4 || y == 5 || y == 6
		default:
			return false
		}
	case 1:
		return y == 4 || y == 5 || y == 6 || zz == 4 || zz == 5 || zz == 6
	case 2:
		return zz == 4 || zz == 5 || zz == 6
	default:
		return false
	}
}

// readIndexedOperand evaluates the z (source) register field of op,
// substituting (idx+d) for (HL), fetching the displacement byte first
// per real hardware's opcode layout (displacement precedes any
// immediate operand byte that might otherwise follow).
func (c *Calc) readIndexedOperand(idx *uint16, op uint8) uint8 {
	zz := op & 7
	if zz == 6 {
		d := int8(c.fetch8Data())
		return c.Read(uint16(int32(*idx) + int32(d)))
	}
	return c.idxHalf(*idx, zz)
}

func (c *Calc) indexedMem(idx *uint16, op uint8) {
	z := &c.Z80
	d := int8(c.fetch8Data())
	addr := uint16(int32(*idx) + int32(d))
	x, zz := op>>6, op&7
	switch {
	case x == 0 && zz == 4:
		c.Write(addr, inc8(z.addrF(), c.Read(addr)))
	case x == 0 && zz == 5:
		c.Write(addr, dec8(z.addrF(), c.Read(addr)))
	case x == 0 && zz == 6:
		c.Write(addr, c.fetch8Data())
	case x == 1:
		var v uint8
		if zz == 4 || zz == 5 {
			v = c.idxHalf(*idx, zz)
		} else {
			v = c.reg8(zz, false, 0)
		}
		c.Write(addr, v)
	}
}

// idxHalf/setIdxHalf access the high/low byte of *idx by register code
// (4=high, 5=low), the DD/FD substitution for H/L.
func (c *Calc) idxHalf(idx uint16, code uint8) uint8 {
	if code == 4 {
		return uint8(idx >> 8)
	}
	return uint8(idx)
}

func (c *Calc) setIdxHalf(idx *uint16, code uint8, v uint8) {
	if code == 4 {
		*idx = uint16(v)<<8 | (*idx & 0xFF)
	} else {
		*idx = (*idx &^ 0xFF) | uint16(v)
	}
}

func (c *Calc) indexedZ2(idx *uint16, q uint8) {
	a := c.fetch16()
	if q == 0 {
		c.Write(a, uint8(*idx))
		c.Write(a+1, uint8(*idx>>8))
	} else {
		lo := c.Read(a)
		hi := c.Read(a + 1)
		*idx = uint16(hi)<<8 | uint16(lo)
	}
}

// execMainWithHL runs an unprefixed opcode with HL temporarily aliased to
// *idx, so the opcodes reaching this path that use HL as a whole register
// (ADD HL,rr, POP/PUSH HL, EX (SP),HL, JP (HL), LD SP,HL) act on the index
// register, and any change to HL is copied back into *idx.
func (c *Calc) execMainWithHL(op uint8, idx *uint16) {
	z := &c.Z80
	saved := z.HL
	z.HL.SetU16(*idx)
	c.execMain(op)
	*idx = z.HL.U16()
	z.HL = saved
}
