package joypad

import (
	"bytes"
	"encoding/gob"
)

type state struct {
	SelectBits  byte
	Pressed     byte
	LowerNibble byte
}

func (j *Joypad) SaveState() []byte {
	var buf bytes.Buffer
	s := state{SelectBits: j.selectBits, Pressed: j.pressed, LowerNibble: j.lowerNibble}
	_ = gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

func (j *Joypad) LoadState(data []byte) {
	var s state
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	j.selectBits, j.pressed, j.lowerNibble = s.SelectBits, s.Pressed, s.LowerNibble
}
