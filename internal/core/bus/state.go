package bus

import (
	"bytes"
	"encoding/gob"
)

type busState struct {
	WRAM       [0x2000]byte
	HRAM       [0x7F]byte
	IE, IF     byte
	SB, SC     byte
	BootActive bool
}

// SaveState encodes the bus's own backing bytes followed by each
// peripheral's own state blob, in a fixed order LoadState must mirror.
func (b *Bus) SaveState() []byte {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	s := busState{
		WRAM: b.wram, HRAM: b.hram, IE: b.ie, IF: b.ifReg,
		SB: b.sb, SC: b.sc, BootActive: b.bootActive,
	}
	_ = enc.Encode(s)
	_ = enc.Encode(b.Timer.SaveState())
	_ = enc.Encode(b.DMA.SaveState())
	_ = enc.Encode(b.Joypad.SaveState())
	_ = enc.Encode(b.PPU.SaveState())
	_ = enc.Encode(b.APU.SaveState())
	return buf.Bytes()
}

func (b *Bus) LoadState(data []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(data))
	var s busState
	if err := dec.Decode(&s); err != nil {
		return err
	}
	b.wram, b.hram = s.WRAM, s.HRAM
	b.ie, b.ifReg = s.IE, s.IF
	b.sb, b.sc, b.bootActive = s.SB, s.SC, s.BootActive

	var blob []byte
	if err := dec.Decode(&blob); err != nil {
		return err
	}
	b.Timer.LoadState(blob)
	if err := dec.Decode(&blob); err != nil {
		return err
	}
	b.DMA.LoadState(blob)
	if err := dec.Decode(&blob); err != nil {
		return err
	}
	b.Joypad.LoadState(blob)
	if err := dec.Decode(&blob); err != nil {
		return err
	}
	b.PPU.LoadState(blob)
	if err := dec.Decode(&blob); err != nil {
		return err
	}
	b.APU.LoadState(blob)
	return nil
}
