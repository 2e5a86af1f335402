package dma

import (
	"bytes"
	"encoding/gob"
)

type state struct {
	Reg      byte
	Active   bool
	Starting int
	Src      uint16
	Index    int
}

func (d *DMA) SaveState() []byte {
	var buf bytes.Buffer
	s := state{Reg: d.reg, Active: d.active, Starting: d.starting, Src: d.src, Index: d.index}
	_ = gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

func (d *DMA) LoadState(data []byte) {
	var s state
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	d.reg, d.active, d.starting, d.src, d.index = s.Reg, s.Active, s.Starting, s.Src, s.Index
}
