package cpu

import (
	"bytes"
	"encoding/gob"
)

type state struct {
	A, F    byte
	B, C    byte
	D, E    byte
	H, L    byte
	SP, PC  uint16
	IME     bool
	Halted  bool
	EIDelay int
	HaltBug bool
	Locked  bool
}

// SaveState captures the full register file and the in-flight
// interrupt/HALT bookkeeping that doesn't show up in any register.
func (c *CPU) SaveState() []byte {
	var buf bytes.Buffer
	s := state{
		A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		SP: c.SP, PC: c.PC, IME: c.IME, Halted: c.halted,
		EIDelay: c.eiDelay, HaltBug: c.haltBug, Locked: c.locked,
	}
	_ = gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

func (c *CPU) LoadState(data []byte) {
	var s state
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = s.A, s.F, s.B, s.C, s.D, s.E, s.H, s.L
	c.SP, c.PC, c.IME, c.halted = s.SP, s.PC, s.IME, s.Halted
	c.eiDelay, c.haltBug, c.locked = s.EIDelay, s.HaltBug, s.Locked
}
