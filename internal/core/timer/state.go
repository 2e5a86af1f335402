package timer

import (
	"bytes"
	"encoding/gob"
)

type state struct {
	DivInternal uint16
	TIMA        byte
	TMA         byte
	TAC         byte
	ReloadDelay int
}

func (t *Timer) SaveState() []byte {
	var buf bytes.Buffer
	s := state{
		DivInternal: t.divInternal, TIMA: t.tima, TMA: t.tma, TAC: t.tac,
		ReloadDelay: t.reloadDelay,
	}
	_ = gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

func (t *Timer) LoadState(data []byte) {
	var s state
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	t.divInternal, t.tima, t.tma, t.tac = s.DivInternal, s.TIMA, s.TMA, s.TAC
	t.reloadDelay = s.ReloadDelay
}
