package cpu

// illegal is the set of opcodes with no defined behavior on real
// hardware; executing one locks the CPU.
var illegal = map[byte]bool{
	0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true, 0xE4: true,
	0xEB: true, 0xEC: true, 0xED: true, 0xF4: true, 0xFC: true, 0xFD: true,
}

func (c *CPU) execute(op byte) int {
	if illegal[op] {
		c.locked = true
		return 4
	}

	// LD r,r' / LD r,(HL) / LD (HL),r span the entire 0x40-0x7F block
	// except 0x76 (HALT). The teacher's original switch enumerated
	// these by hand and silently dropped the six LD r,(HL) cases
	// (0x46/0x4E/0x56/0x5E/0x66/0x6E); deriving dst/src from the
	// opcode bits covers the full block without that gap.
	if op >= 0x40 && op <= 0x7F && op != 0x76 {
		dst := (op >> 3) & 7
		src := op & 7
		v := c.reg(src)
		c.setReg(dst, v)
		if dst == 6 || src == 6 {
			return 8
		}
		return 4
	}

	switch op {
	case 0x00: // NOP
		return 4
	case 0x10: // STOP
		c.fetch8() // the mandatory (and ignored) 0x00 operand byte
		return 4

	// LD r,d8
	case 0x06:
		c.B = c.fetch8()
		return 8
	case 0x0E:
		c.C = c.fetch8()
		return 8
	case 0x16:
		c.D = c.fetch8()
		return 8
	case 0x1E:
		c.E = c.fetch8()
		return 8
	case 0x26:
		c.H = c.fetch8()
		return 8
	case 0x2E:
		c.L = c.fetch8()
		return 8
	case 0x36:
		c.write8(c.getHL(), c.fetch8())
		return 12
	case 0x3E:
		c.A = c.fetch8()
		return 8

	// 16-bit loads
	case 0x01:
		c.setBC(c.fetch16())
		return 12
	case 0x11:
		c.setDE(c.fetch16())
		return 12
	case 0x21:
		c.setHL(c.fetch16())
		return 12
	case 0x31:
		c.SP = c.fetch16()
		return 12
	case 0x08: // LD (a16),SP
		addr := c.fetch16()
		c.write16(addr, c.SP)
		return 20

	case 0x02:
		c.write8(c.getBC(), c.A)
		return 8
	case 0x12:
		c.write8(c.getDE(), c.A)
		return 8
	case 0x0A:
		c.A = c.read8(c.getBC())
		return 8
	case 0x1A:
		c.A = c.read8(c.getDE())
		return 8

	case 0x22: // LD (HL+),A
		hl := c.getHL()
		c.write8(hl, c.A)
		c.setHL(hl + 1)
		return 8
	case 0x2A: // LD A,(HL+)
		hl := c.getHL()
		c.A = c.read8(hl)
		c.setHL(hl + 1)
		return 8
	case 0x32: // LD (HL-),A
		hl := c.getHL()
		c.write8(hl, c.A)
		c.setHL(hl - 1)
		return 8
	case 0x3A: // LD A,(HL-)
		hl := c.getHL()
		c.A = c.read8(hl)
		c.setHL(hl - 1)
		return 8

	case 0xE0: // LDH (FF00+n),A
		n := uint16(c.fetch8())
		c.write8(0xFF00+n, c.A)
		return 12
	case 0xF0: // LDH A,(FF00+n)
		n := uint16(c.fetch8())
		c.A = c.read8(0xFF00 + n)
		return 12
	case 0xE2: // LD (FF00+C),A
		c.write8(0xFF00+uint16(c.C), c.A)
		return 8
	case 0xF2: // LD A,(FF00+C)
		c.A = c.read8(0xFF00 + uint16(c.C))
		return 8
	case 0xEA: // LD (a16),A
		c.write8(c.fetch16(), c.A)
		return 16
	case 0xFA: // LD A,(a16)
		c.A = c.read8(c.fetch16())
		return 16

	// Rotate-A / flag ops
	case 0x07: // RLCA
		cval := (c.A >> 7) & 1
		c.A = (c.A << 1) | cval
		c.setZNHC(false, false, false, cval == 1)
		return 4
	case 0x0F: // RRCA
		cval := c.A & 1
		c.A = (c.A >> 1) | (cval << 7)
		c.setZNHC(false, false, false, cval == 1)
		return 4
	case 0x17: // RLA
		cval := (c.A >> 7) & 1
		cin := byte(0)
		if c.F&FlagC != 0 {
			cin = 1
		}
		c.A = (c.A << 1) | cin
		c.setZNHC(false, false, false, cval == 1)
		return 4
	case 0x1F: // RRA
		cval := c.A & 1
		cin := byte(0)
		if c.F&FlagC != 0 {
			cin = 1
		}
		c.A = (c.A >> 1) | (cin << 7)
		c.setZNHC(false, false, false, cval == 1)
		return 4
	case 0x27: // DAA
		a := c.A
		cf := c.F&FlagC != 0
		if c.F&FlagN == 0 {
			if cf || a > 0x99 {
				a += 0x60
				cf = true
			}
			if c.F&FlagH != 0 || (a&0x0F) > 9 {
				a += 0x06
			}
		} else {
			if cf {
				a -= 0x60
			}
			if c.F&FlagH != 0 {
				a -= 0x06
			}
		}
		c.A = a
		c.setZNHC(c.A == 0, c.F&FlagN != 0, false, cf)
		return 4
	case 0x2F: // CPL
		c.A = ^c.A
		c.F = (c.F & (FlagZ | FlagC)) | FlagN | FlagH
		return 4
	case 0x37: // SCF
		c.F = (c.F & FlagZ) | FlagC
		return 4
	case 0x3F: // CCF
		carry := c.F&FlagC == 0
		c.setZNHC(c.F&FlagZ != 0, false, false, carry)
		return 4

	// INC/DEC r
	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x3C:
		idx := (op >> 3) & 7
		old := c.reg(idx)
		v := old + 1
		c.setReg(idx, v)
		c.setZNHC(v == 0, false, old&0x0F == 0x0F, c.F&FlagC != 0)
		return 4
	case 0x34: // INC (HL)
		addr := c.getHL()
		old := c.read8(addr)
		v := old + 1
		c.write8(addr, v)
		c.setZNHC(v == 0, false, old&0x0F == 0x0F, c.F&FlagC != 0)
		return 12
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x3D:
		idx := (op >> 3) & 7
		old := c.reg(idx)
		v := old - 1
		c.setReg(idx, v)
		c.setZNHC(v == 0, true, old&0x0F == 0x00, c.F&FlagC != 0)
		return 4
	case 0x35: // DEC (HL)
		addr := c.getHL()
		old := c.read8(addr)
		v := old - 1
		c.write8(addr, v)
		c.setZNHC(v == 0, true, old&0x0F == 0x00, c.F&FlagC != 0)
		return 12

	// 16-bit INC/DEC
	case 0x03:
		c.setBC(c.getBC() + 1)
		return 8
	case 0x13:
		c.setDE(c.getDE() + 1)
		return 8
	case 0x23:
		c.setHL(c.getHL() + 1)
		return 8
	case 0x33:
		c.SP++
		return 8
	case 0x0B:
		c.setBC(c.getBC() - 1)
		return 8
	case 0x1B:
		c.setDE(c.getDE() - 1)
		return 8
	case 0x2B:
		c.setHL(c.getHL() - 1)
		return 8
	case 0x3B:
		c.SP--
		return 8

	// ADD HL,rr
	case 0x09, 0x19, 0x29, 0x39:
		hl := c.getHL()
		var operand uint16
		switch op {
		case 0x09:
			operand = c.getBC()
		case 0x19:
			operand = c.getDE()
		case 0x29:
			operand = hl
		case 0x39:
			operand = c.SP
		}
		r := uint32(hl) + uint32(operand)
		h := (hl&0x0FFF)+(operand&0x0FFF) > 0x0FFF
		c.setHL(uint16(r))
		c.setZNHC(c.F&FlagZ != 0, false, h, r > 0xFFFF)
		return 8

	// ALU A,r and A,(HL)
	case 0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87:
		r, z, n, h, cy := c.add8(c.A, c.reg(op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0x88, 0x89, 0x8A, 0x8B, 0x8C, 0x8D, 0x8E, 0x8F:
		r, z, n, h, cy := c.adc8(c.A, c.reg(op&7), c.F&FlagC != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0x90, 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97:
		r, z, n, h, cy := c.sub8(c.A, c.reg(op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0x98, 0x99, 0x9A, 0x9B, 0x9C, 0x9D, 0x9E, 0x9F:
		r, z, n, h, cy := c.sbc8(c.A, c.reg(op&7), c.F&FlagC != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6, 0xA7:
		r, z, n, h, cy := c.and8(c.A, c.reg(op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0xA8, 0xA9, 0xAA, 0xAB, 0xAC, 0xAD, 0xAE, 0xAF:
		r, z, n, h, cy := c.xor8(c.A, c.reg(op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0xB0, 0xB1, 0xB2, 0xB3, 0xB4, 0xB5, 0xB6, 0xB7:
		r, z, n, h, cy := c.or8(c.A, c.reg(op&7))
		c.A = r
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)
	case 0xB8, 0xB9, 0xBA, 0xBB, 0xBC, 0xBD, 0xBE, 0xBF:
		z, n, h, cy := c.cp8(c.A, c.reg(op&7))
		c.setZNHC(z, n, h, cy)
		return aluCycles(op)

	// ALU A,d8
	case 0xC6:
		r, z, n, h, cy := c.add8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xCE:
		r, z, n, h, cy := c.adc8(c.A, c.fetch8(), c.F&FlagC != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xD6:
		r, z, n, h, cy := c.sub8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xDE:
		r, z, n, h, cy := c.sbc8(c.A, c.fetch8(), c.F&FlagC != 0)
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xE6:
		r, z, n, h, cy := c.and8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xEE:
		r, z, n, h, cy := c.xor8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xF6:
		r, z, n, h, cy := c.or8(c.A, c.fetch8())
		c.A = r
		c.setZNHC(z, n, h, cy)
		return 8
	case 0xFE:
		z, n, h, cy := c.cp8(c.A, c.fetch8())
		c.setZNHC(z, n, h, cy)
		return 8

	// Jumps/calls/returns
	case 0xC3:
		c.PC = c.fetch16()
		return 16
	case 0xE9:
		c.PC = c.getHL()
		return 4
	case 0x18:
		off := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(off))
		return 12
	case 0x20, 0x28, 0x30, 0x38:
		off := int8(c.fetch8())
		if c.branchCond(op) {
			c.PC = uint16(int32(c.PC) + int32(off))
			return 12
		}
		return 8
	case 0xCD:
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		return 24
	case 0xC9:
		c.PC = c.pop16()
		return 16
	case 0xD9:
		c.PC = c.pop16()
		c.IME = true
		return 16
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		c.push16(c.PC)
		c.PC = uint16(op &^ 0xC7)
		return 16
	case 0xC4, 0xCC, 0xD4, 0xDC:
		addr := c.fetch16()
		if c.branchCond(op) {
			c.push16(c.PC)
			c.PC = addr
			return 24
		}
		return 12
	case 0xC0, 0xC8, 0xD0, 0xD8:
		if c.branchCond(op) {
			c.PC = c.pop16()
			return 20
		}
		return 8
	case 0xC2, 0xCA, 0xD2, 0xDA:
		addr := c.fetch16()
		if c.branchCond(op) {
			c.PC = addr
			return 16
		}
		return 12

	// Stack/SP
	case 0xF8: // LD HL,SP+r8
		off := int8(c.fetch8())
		low := byte(c.SP & 0xFF)
		_, _, _, h, cy := c.add8(low, byte(off))
		c.setHL(uint16(int32(int16(c.SP)) + int32(off)))
		c.setZNHC(false, false, h, cy)
		return 12
	case 0xF9:
		c.SP = c.getHL()
		return 8
	case 0xE8: // ADD SP,r8
		off := int8(c.fetch8())
		low := byte(c.SP & 0xFF)
		_, _, _, h, cy := c.add8(low, byte(off))
		c.SP = uint16(int32(int16(c.SP)) + int32(off))
		c.setZNHC(false, false, h, cy)
		return 16

	case 0xF3: // DI
		c.IME = false
		c.eiDelay = 0
		return 4
	case 0xFB: // EI
		c.eiDelay = 2
		return 4

	case 0xCB:
		return c.executeCB()

	case 0xF5:
		c.push16(c.getAF())
		return 16
	case 0xC5:
		c.push16(c.getBC())
		return 16
	case 0xD5:
		c.push16(c.getDE())
		return 16
	case 0xE5:
		c.push16(c.getHL())
		return 16
	case 0xF1:
		c.setAF(c.pop16())
		return 12
	case 0xC1:
		c.setBC(c.pop16())
		return 12
	case 0xD1:
		c.setDE(c.pop16())
		return 12
	case 0xE1:
		c.setHL(c.pop16())
		return 12

	case 0x76: // HALT
		// With IME=0 and an interrupt already pending, HALT does not
		// halt; it arms the halt bug instead (see haltBug).
		if !c.IME && c.bus.Read(0xFFFF)&c.bus.Read(0xFF0F)&0x1F != 0 {
			c.haltBug = true
			return 4
		}
		c.halted = true
		return 4

	default:
		return 4
	}
}

// aluCycles is 4 for a register operand, 8 when the low three bits
// select (HL).
func aluCycles(op byte) int {
	if op&7 == 6 {
		return 8
	}
	return 4
}

// branchCond evaluates the condition encoded in bits 3-4 of a
// conditional branch opcode (JR/JP/CALL/RET cc): 0=NZ 1=Z 2=NC 3=C.
func (c *CPU) branchCond(op byte) bool {
	switch (op >> 3) & 3 {
	case 0:
		return c.F&FlagZ == 0
	case 1:
		return c.F&FlagZ != 0
	case 2:
		return c.F&FlagC == 0
	default:
		return c.F&FlagC != 0
	}
}

func (c *CPU) executeCB() int {
	cb := c.fetch8()
	regIdx := cb & 7
	group := (cb >> 6) & 3
	y := (cb >> 3) & 7

	cycles := 8
	if regIdx == 6 {
		if group == 1 {
			cycles = 12 // BIT b,(HL) reads but never writes back
		} else {
			cycles = 16
		}
	}

	switch group {
	case 0: // rotate/shift/swap
		v := c.reg(regIdx)
		var cflag byte
		switch y {
		case 0: // RLC
			cflag = (v >> 7) & 1
			v = (v << 1) | cflag
			c.setZNHC(v == 0, false, false, cflag == 1)
		case 1: // RRC
			cflag = v & 1
			v = (v >> 1) | (cflag << 7)
			c.setZNHC(v == 0, false, false, cflag == 1)
		case 2: // RL
			cflag = (v >> 7) & 1
			cin := byte(0)
			if c.F&FlagC != 0 {
				cin = 1
			}
			v = (v << 1) | cin
			c.setZNHC(v == 0, false, false, cflag == 1)
		case 3: // RR
			cflag = v & 1
			cin := byte(0)
			if c.F&FlagC != 0 {
				cin = 1
			}
			v = (v >> 1) | (cin << 7)
			c.setZNHC(v == 0, false, false, cflag == 1)
		case 4: // SLA
			cflag = (v >> 7) & 1
			v <<= 1
			c.setZNHC(v == 0, false, false, cflag == 1)
		case 5: // SRA
			cflag = v & 1
			v = (v >> 1) | (v & 0x80)
			c.setZNHC(v == 0, false, false, cflag == 1)
		case 6: // SWAP
			v = (v << 4) | (v >> 4)
			c.setZNHC(v == 0, false, false, false)
		case 7: // SRL
			cflag = v & 1
			v >>= 1
			c.setZNHC(v == 0, false, false, cflag == 1)
		}
		c.setReg(regIdx, v)
	case 1: // BIT y,r
		v := c.reg(regIdx)
		c.F = (c.F & FlagC) | FlagH
		if v&(1<<y) == 0 {
			c.F |= FlagZ
		}
	case 2: // RES y,r
		c.setReg(regIdx, c.reg(regIdx)&^(1<<y))
	case 3: // SET y,r
		c.setReg(regIdx, c.reg(regIdx)|(1<<y))
	}
	return cycles
}
