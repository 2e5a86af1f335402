// Package cpu implements the Sharp SM83 fetch-decode-execute core: eight
// 8-bit registers addressable as four 16-bit pairs, the Z/N/H/C flag
// nibble, and the full primary and CB-prefixed opcode maps.
package cpu

import (
	"github.com/opcodeflow/go-silicon/internal/core/interrupt"
)

// Bus is the narrow memory interface the CPU needs. Any owner of the
// address space — the real system bus, or a bare RAM stub in a test —
// satisfies it.
type Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// Flag bit positions within F. The low nibble of F is always zero.
const (
	FlagZ byte = 1 << 7
	FlagN byte = 1 << 6
	FlagH byte = 1 << 5
	FlagC byte = 1 << 4
)

// CPU holds the SM83 register file and drives instruction execution
// against a Bus. It owns IME/HALT state but not IE/IF — those live on
// the bus's interrupt controller, read back each step.
type CPU struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	SP uint16
	PC uint16

	IME    bool
	halted bool

	// eiDelay counts down the instruction-boundaries remaining before a
	// pending EI takes effect: 2 when EI has just executed (one more
	// full instruction must retire before IME is checked again), 1
	// during that following instruction, 0 once IME has been applied.
	// EI does not enable interrupts until the instruction after it
	// completes — the instruction immediately following EI always runs
	// to completion uninterrupted.
	eiDelay int

	// haltBug reproduces the documented SM83 quirk: HALT executed with
	// IME=0 and an interrupt already pending doesn't actually halt —
	// the next opcode fetch reads the byte at PC without advancing PC,
	// so that instruction executes twice.
	haltBug bool

	// locked marks a CPU that has fetched one of the eleven undefined
	// opcodes (0xD3/0xDB/0xDD/0xE3/0xE4/0xEB/0xEC/0xED/0xF4/0xFC/0xFD).
	// Real hardware stops responding to the clock entirely; go-silicon
	// mirrors that rather than silently treating it as a NOP.
	locked bool

	bus Bus
}

func New(b Bus) *CPU {
	return &CPU{bus: b, SP: 0xFFFE}
}

// ResetNoBoot sets registers to the documented DMG post-boot-ROM state,
// for running a cartridge without a boot ROM image.
func (c *CPU) ResetNoBoot() {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.IME = false
	c.halted = false
	c.eiDelay = 0
	c.locked = false
}

func (c *CPU) Halted() bool  { return c.halted }
func (c *CPU) Locked() bool  { return c.locked }
func (c *CPU) IMEEnabled() bool { return c.IME }

func (c *CPU) setZNHC(z, n, h, carry bool) {
	var f byte
	if z {
		f |= FlagZ
	}
	if n {
		f |= FlagN
	}
	if h {
		f |= FlagH
	}
	if carry {
		f |= FlagC
	}
	c.F = f
}

func (c *CPU) add8(a, b byte) (res byte, z, n, h, cy bool) {
	r := uint16(a) + uint16(b)
	res = byte(r)
	z = res == 0
	h = ((a & 0x0F) + (b & 0x0F)) > 0x0F
	cy = r > 0xFF
	return
}

func (c *CPU) adc8(a, b byte, carryIn bool) (res byte, z, n, h, cy bool) {
	ci := byte(0)
	if carryIn {
		ci = 1
	}
	r := uint16(a) + uint16(b) + uint16(ci)
	res = byte(r)
	z = res == 0
	h = ((a & 0x0F) + (b & 0x0F) + ci) > 0x0F
	cy = r > 0xFF
	return
}

func (c *CPU) sub8(a, b byte) (res byte, z, n, h, cy bool) {
	r := int16(a) - int16(b)
	res = byte(r)
	z = res == 0
	n = true
	h = (a & 0x0F) < (b & 0x0F)
	cy = int16(a) < int16(b)
	return
}

func (c *CPU) sbc8(a, b byte, carryIn bool) (res byte, z, n, h, cy bool) {
	ci := byte(0)
	if carryIn {
		ci = 1
	}
	r := int16(a) - int16(b) - int16(ci)
	res = byte(r)
	z = res == 0
	n = true
	h = (a & 0x0F) < ((b & 0x0F) + ci)
	cy = int16(a) < int16(b)+int16(ci)
	return
}

func (c *CPU) and8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a & b
	z = res == 0
	h = true
	return
}

func (c *CPU) xor8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a ^ b
	z = res == 0
	return
}

func (c *CPU) or8(a, b byte) (res byte, z, n, h, cy bool) {
	res = a | b
	z = res == 0
	return
}

func (c *CPU) cp8(a, b byte) (z, n, h, cy bool) {
	_, z, n, h, cy = c.sub8(a, b)
	return
}

func (c *CPU) read8(addr uint16) byte     { return c.bus.Read(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.bus.Write(addr, v) }

// fetchOpcodeByte reads the opcode at PC, advancing PC — except the one
// time haltBug is armed, when PC must not move so the following decode
// re-reads and re-executes the same byte.
func (c *CPU) fetchOpcodeByte() byte {
	b := c.read8(c.PC)
	if c.haltBug {
		c.haltBug = false
		return b
	}
	c.PC++
	return b
}

func (c *CPU) fetch8() byte {
	b := c.read8(c.PC)
	c.PC++
	return b
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | (hi << 8)
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.read8(addr))
	hi := uint16(c.read8(addr + 1))
	return lo | (hi << 8)
}

func (c *CPU) write16(addr uint16, v uint16) {
	c.write8(addr, byte(v&0x00FF))
	c.write8(addr+1, byte(v>>8))
}

func (c *CPU) getAF() uint16  { return uint16(c.A)<<8 | uint16(c.F&0xF0) }
func (c *CPU) setAF(v uint16) { c.A = byte(v >> 8); c.F = byte(v) & 0xF0 }
func (c *CPU) getBC() uint16  { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) setBC(v uint16) { c.B = byte(v >> 8); c.C = byte(v) }
func (c *CPU) getDE() uint16  { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) setDE(v uint16) { c.D = byte(v >> 8); c.E = byte(v) }
func (c *CPU) getHL() uint16  { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) setHL(v uint16) { c.H = byte(v >> 8); c.L = byte(v) }

func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.write16(c.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.read16(c.SP)
	c.SP += 2
	return v
}

func (c *CPU) reg(idx byte) byte {
	switch idx {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.read8(c.getHL())
	default:
		return c.A
	}
}

func (c *CPU) setReg(idx byte, v byte) {
	switch idx {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.write8(c.getHL(), v)
	default:
		c.A = v
	}
}

// Step executes exactly one instruction (or one interrupt dispatch, or
// one HALT idle tick) and returns the number of T-cycles it consumed.
// Interrupt servicing happens before every opcode fetch, as the
// hardware's own instruction-boundary check does.
func (c *CPU) Step() (cycles int) {
	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.IME = true
		}
	}

	if c.locked {
		return 4
	}

	ie := c.bus.Read(0xFFFF)
	ifReg := c.bus.Read(0xFF0F) & 0x1F
	pending := interrupt.Pending(ie, ifReg)

	if c.halted {
		if pending != 0 {
			// Wake; with IME=0 execution resumes at the next
			// instruction without dispatching the interrupt.
			c.halted = false
		} else {
			return 4
		}
	}

	if c.IME && pending != 0 {
		bit, ok := interrupt.Highest(pending)
		if ok {
			c.bus.Write(0xFF0F, (ifReg &^ (1 << bit)))
			c.IME = false
			c.push16(c.PC)
			c.PC = interrupt.Vector(bit)
			return 20
		}
	}

	op := c.fetchOpcodeByte()
	return c.execute(op)
}
