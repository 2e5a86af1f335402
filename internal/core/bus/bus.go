// Package bus implements the system memory map: it routes CPU
// addresses to the cartridge, WRAM, HRAM, and the peripherals that own
// their own register files (PPU, APU, timer, DMA, joypad), and holds
// IE/IF for the interrupt controller.
package bus

import (
	"github.com/opcodeflow/go-silicon/internal/cart"
	"github.com/opcodeflow/go-silicon/internal/core/apu"
	"github.com/opcodeflow/go-silicon/internal/core/dma"
	"github.com/opcodeflow/go-silicon/internal/core/interrupt"
	"github.com/opcodeflow/go-silicon/internal/core/joypad"
	"github.com/opcodeflow/go-silicon/internal/core/ppu"
	"github.com/opcodeflow/go-silicon/internal/core/timer"
)

// Bus wires every peripheral behind one Read/Write surface and owns
// WRAM, HRAM, and the IE/IF bytes directly since no peripheral does.
type Bus struct {
	Cart cart.Cartridge

	PPU    *ppu.PPU
	APU    *apu.APU
	Timer  *timer.Timer
	DMA    *dma.DMA
	Joypad *joypad.Joypad

	wram [0x2000]byte
	hram [0x7F]byte

	ie byte
	ifReg byte

	sb byte
	sc byte
	// SerialOut receives each byte SB transfers; nil drops it.
	SerialOut func(byte)

	bootROM    []byte
	bootActive bool
}

// New wires a bus around already-constructed peripherals and a
// cartridge. Interrupt wiring (PPU/timer/joypad -> IF) and the DMA
// engine's source-read and OAM-write callbacks are set up here so
// callers never need to know which bit belongs to whom.
func New(c cart.Cartridge, sampleRate int) *Bus {
	b := &Bus{
		Cart:   c,
		Timer:  timer.New(),
		DMA:    dma.New(),
		Joypad: joypad.New(),
		APU:    apu.New(sampleRate),
	}
	b.PPU = ppu.New(func(bit uint) { b.RequestInterrupt(byte(bit)) })
	b.Timer.IRQ = func() { b.RequestInterrupt(interrupt.Timer) }
	b.Joypad.IRQ = func() { b.RequestInterrupt(interrupt.Joypad) }
	b.DMA.Read = b.dmaSourceRead
	b.DMA.Write = b.PPU.SetOAMByte
	return b
}

// SetBootROM installs a 256-byte boot ROM overlay for 0x0000-0x00FF,
// active until a write to 0xFF50 disables it.
func (b *Bus) SetBootROM(rom []byte) {
	b.bootROM = rom
	b.bootActive = len(rom) > 0
}

func (b *Bus) RequestInterrupt(bit byte) {
	b.ifReg |= 1 << bit
}

func (b *Bus) IE() byte { return b.ie }
func (b *Bus) IF() byte { return 0xE0 | (b.ifReg & 0x1F) }

func (b *Bus) dmaSourceRead(addr uint16) byte { return b.Read(addr) }

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr <= 0x00FF && b.bootActive:
		return b.bootROM[addr]
	case addr <= 0x7FFF:
		return b.Cart.Read(addr)
	case addr >= 0x8000 && addr <= 0x9FFF:
		return b.PPU.ReadVRAM(addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return b.Cart.Read(addr)
	case addr >= 0xC000 && addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr >= 0xE000 && addr <= 0xFDFF:
		return b.wram[addr-0xE000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if b.DMA.Active() {
			return 0xFF
		}
		return b.PPU.ReadOAM(addr)
	case addr >= 0xFEA0 && addr <= 0xFEFF:
		return 0xFF
	case addr >= 0xFF00 && addr <= 0xFF7F:
		return b.readIO(addr)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.ie
	default:
		return 0xFF
	}
}

func (b *Bus) Write(addr uint16, v byte) {
	switch {
	case addr <= 0x7FFF:
		b.Cart.Write(addr, v)
	case addr >= 0x8000 && addr <= 0x9FFF:
		b.PPU.WriteVRAM(addr, v)
	case addr >= 0xA000 && addr <= 0xBFFF:
		b.Cart.Write(addr, v)
	case addr >= 0xC000 && addr <= 0xDFFF:
		b.wram[addr-0xC000] = v
	case addr >= 0xE000 && addr <= 0xFDFF:
		b.wram[addr-0xE000] = v
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if b.DMA.Active() {
			return
		}
		b.PPU.WriteOAM(addr, v)
	case addr >= 0xFEA0 && addr <= 0xFEFF:
		// dropped
	case addr >= 0xFF00 && addr <= 0xFF7F:
		b.writeIO(addr, v)
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.hram[addr-0xFF80] = v
	case addr == 0xFFFF:
		b.ie = v
	}
}

func (b *Bus) Read16(addr uint16) uint16 {
	lo := b.Read(addr)
	hi := b.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (b *Bus) Write16(addr uint16, v uint16) {
	b.Write(addr, byte(v))
	b.Write(addr+1, byte(v>>8))
}

func (b *Bus) readIO(addr uint16) byte {
	switch {
	case addr == 0xFF00:
		return b.Joypad.Read()
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return b.sc | 0x7E
	case addr == 0xFF04:
		return b.Timer.DIV()
	case addr == 0xFF05:
		return b.Timer.TIMA()
	case addr == 0xFF06:
		return b.Timer.TMA()
	case addr == 0xFF07:
		return b.Timer.TAC()
	case addr == 0xFF0F:
		return b.IF()
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return b.APU.ReadReg(addr)
	case addr == 0xFF40:
		return b.PPU.LCDC()
	case addr == 0xFF41:
		return b.PPU.STAT()
	case addr == 0xFF42:
		return b.PPU.SCY()
	case addr == 0xFF43:
		return b.PPU.SCX()
	case addr == 0xFF44:
		return b.PPU.LY()
	case addr == 0xFF45:
		return b.PPU.LYC()
	case addr == 0xFF46:
		return b.DMA.Register()
	case addr == 0xFF47:
		return b.PPU.BGP()
	case addr == 0xFF48:
		return b.PPU.OBP0()
	case addr == 0xFF49:
		return b.PPU.OBP1()
	case addr == 0xFF4A:
		return b.PPU.WY()
	case addr == 0xFF4B:
		return b.PPU.WX()
	case addr == 0xFF50:
		if b.bootActive {
			return 0x00
		}
		return 0x01
	default:
		return 0xFF
	}
}

func (b *Bus) writeIO(addr uint16, v byte) {
	switch {
	case addr == 0xFF00:
		b.Joypad.WriteSelect(v)
	case addr == 0xFF01:
		b.sb = v
	case addr == 0xFF02:
		b.sc = v
		if v&0x80 != 0 {
			// No link cable: the transfer completes immediately.
			if b.SerialOut != nil {
				b.SerialOut(b.sb)
			}
			b.sc &^= 0x80
			b.RequestInterrupt(interrupt.Serial)
		}
	case addr == 0xFF04:
		b.Timer.ResetDIV()
	case addr == 0xFF05:
		b.Timer.WriteTIMA(v)
	case addr == 0xFF06:
		b.Timer.WriteTMA(v)
	case addr == 0xFF07:
		b.Timer.WriteTAC(v)
	case addr == 0xFF0F:
		b.ifReg = v & 0x1F
	case addr >= 0xFF10 && addr <= 0xFF3F:
		b.APU.WriteReg(addr, v)
	case addr == 0xFF40:
		b.PPU.WriteLCDC(v)
	case addr == 0xFF41:
		b.PPU.WriteSTAT(v)
	case addr == 0xFF42:
		b.PPU.WriteSCY(v)
	case addr == 0xFF43:
		b.PPU.WriteSCX(v)
	case addr == 0xFF44:
		b.PPU.WriteLY(v)
	case addr == 0xFF45:
		b.PPU.WriteLYC(v)
	case addr == 0xFF46:
		b.DMA.Trigger(v)
	case addr == 0xFF47:
		b.PPU.WriteBGP(v)
	case addr == 0xFF48:
		b.PPU.WriteOBP0(v)
	case addr == 0xFF49:
		b.PPU.WriteOBP1(v)
	case addr == 0xFF4A:
		b.PPU.WriteWY(v)
	case addr == 0xFF4B:
		b.PPU.WriteWX(v)
	case addr == 0xFF50:
		if v != 0 {
			b.bootActive = false
		}
	}
}

// Tick advances every peripheral by one T-cycle. It does not drain
// interrupts into IF: the PPU and timer call RequestInterrupt directly
// as they tick, and the joypad does so when its selection or buttons
// change, so no separate drain step is needed.
func (b *Bus) Tick() {
	b.Timer.Tick()
	b.PPU.Tick()
	b.DMA.Tick()
	b.APU.Tick()
}
