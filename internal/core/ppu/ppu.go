// Package ppu implements the LCD mode state machine, OAM scan,
// per-scanline BG/window/sprite compositor, and the register file
// LCDC/STAT/SCY/SCX/LY/LYC/BGP/OBP0/OBP1/WY/WX.
package ppu

// IRQRequester raises an interrupt source; bit is an interrupt.* bit
// index (VBlank=0, LCDStat=1).
type IRQRequester func(bit uint)

const (
	Width  = 160
	Height = 144

	modeHBlank = 0
	modeVBlank = 1
	modeOAM    = 2
	modeXfer   = 3
)

// PPU owns VRAM, OAM, the LCD register file, and the assembled frame.
type PPU struct {
	vram [0x2000]byte
	oam  [0xA0]byte

	lcdc, stat byte
	scy, scx   byte
	ly, lyc    byte
	bgp        byte
	obp0, obp1 byte
	wy, wx     byte

	dot        int
	windowLine int
	frame      [Width * Height]uint32

	statLineHigh bool

	req IRQRequester
}

func New(req IRQRequester) *PPU {
	p := &PPU{req: req}
	p.stat = modeOAM
	return p
}

// ReadVRAM/WriteVRAM serve the bus's 0x8000-0x9FFF window. Per the
// memory map, VRAM access from the CPU is unconditional — it is not
// gated by the current PPU mode.
func (p *PPU) ReadVRAM(addr uint16) byte  { return p.vram[addr&0x1FFF] }
func (p *PPU) WriteVRAM(addr uint16, v byte) { p.vram[addr&0x1FFF] = v }

// ReadOAM/WriteOAM serve the bus's 0xFE00-0xFE9F window. DMA-active
// gating to 0xFF/dropped is the bus's responsibility, not the PPU's.
func (p *PPU) ReadOAM(addr uint16) byte  { return p.oam[addr&0xFF] }
func (p *PPU) WriteOAM(addr uint16, v byte) { p.oam[addr&0xFF] = v }

// OAMByte/SetOAMByte let the DMA engine address OAM by plain index
// (0..159) instead of a CPU address.
func (p *PPU) OAMByte(i int) byte       { return p.oam[i] }
func (p *PPU) SetOAMByte(i int, v byte) { p.oam[i] = v }

func (p *PPU) Frame() []uint32 { return p.frame[:] }

func (p *PPU) LCDC() byte { return p.lcdc }
func (p *PPU) SCY() byte  { return p.scy }
func (p *PPU) SCX() byte  { return p.scx }
func (p *PPU) LY() byte   { return p.ly }
func (p *PPU) LYC() byte  { return p.lyc }
func (p *PPU) BGP() byte  { return p.bgp }
func (p *PPU) OBP0() byte { return p.obp0 }
func (p *PPU) OBP1() byte { return p.obp1 }
func (p *PPU) WY() byte   { return p.wy }
func (p *PPU) WX() byte   { return p.wx }

// STAT reads back with bit 7 always set.
func (p *PPU) STAT() byte { return 0x80 | p.stat }

func (p *PPU) WriteLCDC(v byte) {
	prev := p.lcdc
	p.lcdc = v
	if prev&0x80 != 0 && v&0x80 == 0 {
		// LCD off: suspend entirely, matching real hardware's blank screen.
		p.ly = 0
		p.dot = 0
		p.setMode(modeHBlank)
		p.statLineHigh = false
	} else if prev&0x80 == 0 && v&0x80 != 0 {
		p.ly = 0
		p.dot = 0
		p.windowLine = 0
		p.setMode(modeOAM)
		p.updateCoincidence()
	}
}

// WriteSTAT only bits 3-6 (the interrupt enables) are writable; mode
// and coincidence are PPU-owned.
func (p *PPU) WriteSTAT(v byte) {
	p.stat = (p.stat & 0x07) | (v & 0x78)
	p.refreshSTATLine()
}

func (p *PPU) WriteSCY(v byte) { p.scy = v }
func (p *PPU) WriteSCX(v byte) { p.scx = v }

// WriteLY: LY is read-only on real hardware; writes are ignored.
func (p *PPU) WriteLY(byte) {}

func (p *PPU) WriteLYC(v byte) {
	p.lyc = v
	p.updateCoincidence()
}

func (p *PPU) WriteBGP(v byte)  { p.bgp = v }
func (p *PPU) WriteOBP0(v byte) { p.obp0 = v }
func (p *PPU) WriteOBP1(v byte) { p.obp1 = v }
func (p *PPU) WriteWY(v byte)   { p.wy = v }
func (p *PPU) WriteWX(v byte)   { p.wx = v }

func (p *PPU) mode() byte { return p.stat & 0x03 }

func (p *PPU) setMode(m byte) {
	p.stat = (p.stat &^ 0x03) | (m & 0x03)
	p.refreshSTATLine()
}

// refreshSTATLine recomputes the OR of the four enabled STAT sources
// and requests the interrupt only on a false->true transition, so a
// source that stays satisfied across ticks never re-fires.
func (p *PPU) refreshSTATLine() {
	line := false
	switch p.mode() {
	case modeHBlank:
		line = p.stat&(1<<3) != 0
	case modeVBlank:
		line = p.stat&(1<<4) != 0
	case modeOAM:
		line = p.stat&(1<<5) != 0
	}
	if p.stat&0x04 != 0 && p.stat&(1<<6) != 0 {
		line = true
	}
	if line && !p.statLineHigh {
		if p.req != nil {
			p.req(1)
		}
	}
	p.statLineHigh = line
}

func (p *PPU) updateCoincidence() {
	if p.ly == p.lyc {
		p.stat |= 1 << 2
	} else {
		p.stat &^= 1 << 2
	}
	p.refreshSTATLine()
}

// Tick advances the PPU by one T-cycle. Call once per T-cycle.
func (p *PPU) Tick() {
	if p.lcdc&0x80 == 0 {
		return
	}
	p.dot++

	if p.ly < 144 {
		switch {
		case p.dot == 80:
			p.setMode(modeXfer)
		case p.dot == 80+172:
			p.renderScanline()
			p.setMode(modeHBlank)
		}
	}

	if p.dot >= 456 {
		p.dot = 0
		p.ly++
		if p.ly == 144 {
			p.setMode(modeVBlank)
			if p.req != nil {
				p.req(0) // VBlank
			}
			p.windowLine = 0
		} else if p.ly > 153 {
			p.ly = 0
			p.setMode(modeOAM)
		} else if p.ly < 144 {
			p.setMode(modeOAM)
		}
		p.updateCoincidence()
	}
}
