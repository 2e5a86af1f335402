package cart

import (
	"fmt"
	"os"
)

// Cartridge is the minimal interface the bus needs for ROM/RAM banking.
// Addresses are CPU addresses (0x0000-0x7FFF for ROM+control, 0xA000-0xBFFF
// for external RAM).
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
	Header() *Header
}

// BatteryBacked is implemented by MBCs that expose persistable external
// RAM. Dirty reports whether RAM has changed since the last clear, so the
// host only touches disk when there is something to flush (spec.md §5:
// "Battery-save file I/O happens only at cartridge construction and
// destruction; it must not happen on the hot path").
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
	Dirty() bool
	ClearDirty()
}

// New picks an MBC implementation based on the ROM header's cart-type byte.
// Unknown/unsupported types fall back to ROM-only so homebrew and test ROMs
// with exotic mappers still boot as far as their bank-0 code reaches.
func New(rom []byte, h *Header) Cartridge {
	switch {
	case h.CartType == 0x00, h.CartType == 0x08, h.CartType == 0x09:
		return NewROMOnly(rom, h)
	case h.CartType >= 0x01 && h.CartType <= 0x03:
		return NewMBC1(rom, h)
	case h.CartType >= 0x0F && h.CartType <= 0x13:
		return NewMBC3(rom, h)
	case h.CartType >= 0x19 && h.CartType <= 0x1E:
		return NewMBC5(rom, h)
	default:
		return NewROMOnly(rom, h)
	}
}

// Load reads a ROM image from path, parses its header, constructs the
// matching MBC, and — when the header declares battery backup — loads a
// sibling "<path>.sav" file into cartridge RAM if one exists. Per spec.md
// §7 a missing, unreadable, or undersized ROM fails construction.
func Load(path string) (Cartridge, *Header, error) {
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cart: read %s: %w", path, err)
	}
	if len(rom) < 0x150 {
		return nil, nil, fmt.Errorf("cart: %s: %w", path, ErrROMTooShort)
	}
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, nil, fmt.Errorf("cart: %s: %w", path, err)
	}

	c := New(rom, h)
	if h.HasBattery {
		if bb, ok := c.(BatteryBacked); ok {
			if data, err := os.ReadFile(SavePath(path)); err == nil {
				bb.LoadRAM(data)
				bb.ClearDirty()
			}
		}
	}
	return c, h, nil
}

// SavePath derives the battery-save sidecar path for a ROM path, per
// spec.md §6: "<rom-path>.sav" (appended, not substituted — "game.gb"
// saves to "game.gb.sav").
func SavePath(romPath string) string {
	return romPath + ".sav"
}

// Flush writes cartridge RAM to its battery-save sidecar if the cartridge
// is battery-backed and dirty since the last flush. Called at shutdown,
// never on the hot path.
func Flush(romPath string, c Cartridge) error {
	bb, ok := c.(BatteryBacked)
	if !ok || !bb.Dirty() {
		return nil
	}
	if err := os.WriteFile(SavePath(romPath), bb.SaveRAM(), 0o644); err != nil {
		return fmt.Errorf("cart: flush save: %w", err)
	}
	bb.ClearDirty()
	return nil
}
