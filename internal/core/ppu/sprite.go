package ppu

import "sort"

// Sprite is one OAM entry's decoded fields, already offset so Y/X are
// the sprite's actual top-left screen coordinates (OAM's stored
// values minus 16/8).
type Sprite struct {
	X, Y     int
	Tile     byte
	Attr     byte
	OAMIndex int
}

// scanOAM walks all 40 OAM entries and returns up to 10 sprites
// intersecting scanline ly, sorted by X ascending with ties broken by
// OAM index (a stable sort of the scan order satisfies this, since
// entries are visited in ascending OAM index order).
func (p *PPU) scanOAM(ly byte, tall bool) []Sprite {
	height := 8
	if tall {
		height = 16
	}
	var found []Sprite
	for i := 0; i < 40 && len(found) < 10; i++ {
		base := i * 4
		yRaw := p.oam[base]
		xRaw := p.oam[base+1]
		tile := p.oam[base+2]
		attr := p.oam[base+3]
		y := int(yRaw) - 16
		if int(ly) < y || int(ly) >= y+height {
			continue
		}
		found = append(found, Sprite{
			X:        int(xRaw) - 8,
			Y:        y,
			Tile:     tile,
			Attr:     attr,
			OAMIndex: i,
		})
	}
	sort.SliceStable(found, func(a, b int) bool { return found[a].X < found[b].X })
	return found
}

// composeSprites overlays sprite pixels onto line in place, using
// bgColorID to resolve the BG-priority flag and the first
// sorted-order sprite with a non-transparent pixel at each x.
func (p *PPU) composeSprites(sprites []Sprite, ly byte, tall bool, bgColorID [Width]byte, line *[Width]byte) {
	for x := 0; x < Width; x++ {
		for _, s := range sprites {
			if x < s.X || x >= s.X+8 {
				continue
			}
			tile := s.Tile
			if tall {
				tile &^= 1
			}
			rowInSprite := int(ly) - s.Y
			if s.Attr&0x40 != 0 { // Y flip
				height := 8
				if tall {
					height = 16
				}
				rowInSprite = height - 1 - rowInSprite
			}
			spriteTileIndex := tile
			fineY := byte(rowInSprite & 7)
			if tall && rowInSprite >= 8 {
				spriteTileIndex = tile | 1
			}
			lo, hi := p.tileRow(spriteTileIndex, fineY, true)
			col := x - s.X
			if s.Attr&0x20 != 0 { // X flip
				col = 7 - col
			}
			id := colorID(lo, hi, 7-byte(col))
			if id == 0 {
				continue
			}
			if s.Attr&0x80 != 0 && bgColorID[x] != 0 {
				continue // behind BG/window
			}
			palette := p.obp0
			if s.Attr&0x10 != 0 {
				palette = p.obp1
			}
			line[x] = shade(palette, id)
			break
		}
	}
}
