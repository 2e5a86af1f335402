package ppu

import (
	"bytes"
	"encoding/gob"
)

type state struct {
	VRAM         [0x2000]byte
	OAM          [0xA0]byte
	LCDC, STAT   byte
	SCY, SCX     byte
	LY, LYC      byte
	BGP          byte
	OBP0, OBP1   byte
	WY, WX       byte
	Dot          int
	WindowLine   int
	StatLineHigh bool
}

// SaveState captures VRAM, OAM, every register, and the in-flight
// dot/mode timing so a restored PPU resumes mid-scanline exactly
// where it left off.
func (p *PPU) SaveState() []byte {
	var buf bytes.Buffer
	s := state{
		VRAM: p.vram, OAM: p.oam,
		LCDC: p.lcdc, STAT: p.stat, SCY: p.scy, SCX: p.scx,
		LY: p.ly, LYC: p.lyc, BGP: p.bgp, OBP0: p.obp0, OBP1: p.obp1,
		WY: p.wy, WX: p.wx, Dot: p.dot, WindowLine: p.windowLine,
		StatLineHigh: p.statLineHigh,
	}
	_ = gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

func (p *PPU) LoadState(data []byte) {
	var s state
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	p.vram, p.oam = s.VRAM, s.OAM
	p.lcdc, p.stat, p.scy, p.scx = s.LCDC, s.STAT, s.SCY, s.SCX
	p.ly, p.lyc, p.bgp, p.obp0, p.obp1 = s.LY, s.LYC, s.BGP, s.OBP0, s.OBP1
	p.wy, p.wx, p.dot, p.windowLine = s.WY, s.WX, s.Dot, s.WindowLine
	p.statLineHigh = s.StatLineHigh
}
