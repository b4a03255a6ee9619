package calc

// mainCycles holds the base T-state cost of each unprefixed opcode (spec
// §4.1's "base T-states"), independent of the memory-access surcharge
// Read/ReadM1/Write add on top. Conditional forms (DJNZ, JR cc, RET cc,
// CALL cc) store their not-taken cost here; the taken bonus is added at
// the call site in execX0Z0/execMain next to the branch itself, the same
// place the PC update happens. The CB/ED/DD/FD prefix bytes are charged
// by their own handlers (execCB/execED/execIndexed), so their slots here
// are 0 and never read: Step dispatches them before reaching the table.
var mainCycles [256]uint8

func init() {
	for op := 0; op < 256; op++ {
		mainCycles[op] = computeMainCycles(uint8(op))
	}
}

func computeMainCycles(op uint8) uint8 {
	x, y, zz := op>>6, (op>>3)&7, op&7
	p, q := y>>1, y&1

	switch x {
	case 0:
		switch zz {
		case 0:
			switch y {
			case 0, 1:
				return 4
			case 2:
				return 8 // DJNZ d, not taken
			case 3:
				return 12 // JR d
			default:
				return 7 // JR cc,d, not taken
			}
		case 1:
			if q == 0 {
				return 10 // LD rp,nn
			}
			return 11 // ADD HL,rp
		case 2:
			switch {
			case q == 0 && p < 2:
				return 7 // LD (BC/DE),A
			case q == 0 && p == 2:
				return 16 // LD (nn),HL
			case q == 0:
				return 13 // LD (nn),A
			case q == 1 && p < 2:
				return 7 // LD A,(BC/DE)
			case p == 2:
				return 16 // LD HL,(nn)
			default:
				return 13 // LD A,(nn)
			}
		case 3:
			return 6 // INC/DEC rp
		case 4:
			if y == 6 {
				return 11 // INC (HL)
			}
			return 4
		case 5:
			if y == 6 {
				return 11 // DEC (HL)
			}
			return 4
		case 6:
			if y == 6 {
				return 10 // LD (HL),n
			}
			return 7
		default:
			return 4 // rotate/DAA/CPL/SCF/CCF on A
		}
	case 1:
		if zz == 6 && y == 6 {
			return 4 // HALT
		}
		if zz == 6 || y == 6 {
			return 7 // LD r,(HL) / LD (HL),r
		}
		return 4
	case 2:
		if zz == 6 {
			return 7 // ALU A,(HL)
		}
		return 4
	default: // x == 3
		switch zz {
		case 0:
			return 5 // RET cc, not taken
		case 1:
			if q == 0 {
				return 10 // POP rp
			}
			switch p {
			case 0:
				return 10 // RET
			case 1:
				return 4 // EXX
			case 2:
				return 4 // JP HL
			default:
				return 6 // LD SP,HL
			}
		case 2:
			return 10 // JP cc,nn (always 10, win or lose)
		case 3:
			switch y {
			case 0:
				return 10 // JP nn
			case 1:
				return 0 // CB prefix, charged by execCB
			case 2, 3:
				return 11 // OUT (n),A / IN A,(n)
			case 4:
				return 19 // EX (SP),HL
			case 5:
				return 4 // EX DE,HL
			default:
				return 4 // DI/EI
			}
		case 4:
			return 10 // CALL cc,nn, not taken
		case 5:
			if q == 0 {
				return 11 // PUSH rp
			}
			if p == 0 {
				return 17 // CALL nn
			}
			return 0 // DD/ED/FD prefix, charged by their handler
		case 6:
			return 7 // ALU A,n
		default:
			return 11 // RST
		}
	}
}

// cbCycles is the base T-state cost of a CB-prefixed opcode, including
// the CB prefix byte itself.
func cbCycles(op uint8) uint8 {
	x, zz := op>>6, op&7
	switch {
	case zz != 6:
		return 8 // rotate/shift/BIT/SET/RES on a plain register
	case x == 1:
		return 12 // BIT b,(HL)
	default:
		return 15 // rotate/shift/SET/RES b,(HL)
	}
}

// edCycles is the base T-state cost of an ED-prefixed opcode, including
// the ED prefix byte. Unassigned x=0/x=3 encodings fall through to the
// 8-T-state NOP real hardware gives them.
func edCycles(x, y, zz uint8) uint8 {
	switch x {
	case 1:
		switch zz {
		case 0, 1:
			return 12 // IN r,(C) / OUT (C),r
		case 2:
			return 15 // ADC/SBC HL,rp
		case 3:
			return 20 // LD (nn),rp / LD rp,(nn)
		case 4:
			return 8 // NEG
		case 5:
			return 14 // RETN/RETI
		case 6:
			return 8 // IM 0/1/2
		default: // 7: I/R special loads, RRD/RLD
			switch y {
			case 4, 5:
				return 18 // RRD/RLD
			case 0, 1, 2, 3:
				return 9 // LD I,A / LD R,A / LD A,I / LD A,R
			default:
				return 8
			}
		}
	case 2:
		if y < 4 || zz > 3 {
			return 8 // unassigned ED2x: NOP
		}
		return 16 // LDI/LDD/CPI/CPD/INI/IND/OUTI/OUTD and their repeat forms
	default:
		return 8
	}
}

// indexedCycles is the base T-state cost of a genuinely HL-substituted
// DD/FD opcode (usesHLOperand reported true), mirroring execIndexed's
// dispatch arm-for-arm so the two stay in lockstep. It already includes
// the DD/FD prefix byte.
func indexedCycles(x, y, zz, p, q uint8) uint8 {
	switch {
	case x == 0 && zz == 1 && q == 0 && p == 2:
		return 14 // LD IX,nn
	case x == 0 && zz == 1 && q == 1 && p == 2:
		return 15 // ADD IX,rp
	case x == 0 && zz == 2 && p == 2:
		return 20 // LD (nn),IX / LD IX,(nn)
	case x == 0 && zz == 3 && p == 2:
		return 10 // INC IX / DEC IX
	case x == 0 && (zz == 4 || zz == 5 || zz == 6) && y == 6:
		if zz == 6 {
			return 19 // LD (IX+d),n
		}
		return 23 // INC/DEC (IX+d)
	case x == 0 && zz == 4:
		return 8 // INC IXh/IXl
	case x == 0 && zz == 5:
		return 8 // DEC IXh/IXl
	case x == 0 && zz == 6:
		return 11 // LD IXh/IXl,n
	case x == 1 && zz == 6 && y == 6:
		return 8 // DD 76: undocumented HALT-like form
	case x == 1 && zz == 6:
		return 19 // LD r,(IX+d)
	case x == 1 && y == 6:
		return 19 // LD (IX+d),r
	case x == 1:
		return 8 // LD IXh/IXl,r
	case x == 2 && zz == 6:
		return 19 // ALU A,(IX+d)
	case x == 2:
		return 8 // ALU A,IXh/IXl
	case x == 3 && zz == 1 && q == 0 && p == 2:
		return 14 // POP IX
	case x == 3 && zz == 1 && q == 1 && p == 2:
		return 8 // JP (IX)
	case x == 3 && zz == 1 && q == 1 && p == 3:
		return 10 // LD SP,IX
	case x == 3 && zz == 3 && y == 4:
		return 23 // EX (SP),IX
	case x == 3 && zz == 5 && q == 0 && p == 2:
		return 15 // PUSH IX
	default:
		return 8
	}
}
