package ppu

// dmgShades is a fixed 4-shade green-tinted palette, ARGB8888.
var dmgShades = [4]uint32{
	0xFF9BBC0F,
	0xFF8BAC0F,
	0xFF306230,
	0xFF0F380F,
}

func (p *PPU) vramAt(addr uint16) byte { return p.vram[addr-0x8000] }

// tileRow returns the low/high bitplane bytes for one row of a tile,
// honoring LCDC bit 4's unsigned/signed addressing mode.
func (p *PPU) tileRow(tileIndex byte, fineY byte, unsignedAddressing bool) (lo, hi byte) {
	var base uint16
	if unsignedAddressing {
		base = 0x8000 + uint16(tileIndex)*16 + uint16(fineY)*2
	} else {
		base = 0x9000 + uint16(int8(tileIndex))*16 + uint16(fineY)*2
	}
	return p.vramAt(base), p.vramAt(base + 1)
}

func colorID(lo, hi byte, bit byte) byte {
	return ((hi>>bit)&1)<<1 | ((lo >> bit) & 1)
}

func shade(palette byte, id byte) byte {
	return (palette >> (id * 2)) & 0x03
}

// renderScanline composites BG, window, and sprites for the current
// LY into the frame buffer. Called once, at the mode-3-to-HBlank
// transition.
func (p *PPU) renderScanline() {
	ly := p.ly
	var bgColorID [Width]byte

	bgEnabled := p.lcdc&0x01 != 0
	unsigned := p.lcdc&0x10 != 0

	if bgEnabled {
		bgMapBase := uint16(0x9800)
		if p.lcdc&0x08 != 0 {
			bgMapBase = 0x9C00
		}
		bgY := uint16(ly) + uint16(p.scy)
		fineY := byte(bgY & 7)
		mapY := (bgY >> 3) & 31
		for x := 0; x < Width; x++ {
			bgX := (uint16(p.scx) + uint16(x)) & 0xFF
			tileX := (bgX >> 3) & 31
			fineX := byte(bgX & 7)
			tileIndex := p.vramAt(bgMapBase + mapY*32 + tileX)
			lo, hi := p.tileRow(tileIndex, fineY, unsigned)
			bgColorID[x] = colorID(lo, hi, 7-fineX)
		}
	}

	windowDrawn := false
	if p.lcdc&0x20 != 0 && p.wy <= ly && p.wx <= 166 {
		winMapBase := uint16(0x9800)
		if p.lcdc&0x40 != 0 {
			winMapBase = 0x9C00
		}
		wxStart := int(p.wx) - 7
		if wxStart < Width {
			windowDrawn = true
			winLine := byte(p.windowLine)
			fineY := winLine & 7
			mapY := uint16(winLine>>3) & 31
			for x := wxStart; x < Width; x++ {
				if x < 0 {
					continue
				}
				wPix := uint16(x - wxStart)
				tileX := (wPix >> 3) & 31
				fineX := byte(wPix & 7)
				tileIndex := p.vramAt(winMapBase + mapY*32 + tileX)
				lo, hi := p.tileRow(tileIndex, fineY, unsigned)
				bgColorID[x] = colorID(lo, hi, 7-fineX)
			}
		}
	}
	if windowDrawn {
		p.windowLine++
	}

	var line [Width]byte
	for x := 0; x < Width; x++ {
		line[x] = shade(p.bgp, bgColorID[x])
	}

	if p.lcdc&0x02 != 0 {
		tall := p.lcdc&0x04 != 0
		sprites := p.scanOAM(ly, tall)
		p.composeSprites(sprites, ly, tall, bgColorID, &line)
	}

	base := int(ly) * Width
	for x := 0; x < Width; x++ {
		p.frame[base+x] = dmgShades[line[x]]
	}
}
