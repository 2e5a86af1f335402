// Package machine is the driver: it owns the CPU and the bus, steps
// them against each other in lockstep, and exposes the host-facing
// surface (framebuffer, audio drain, button input, save state) that a
// frontend or a headless CLI drives from a single thread.
package machine

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/opcodeflow/go-silicon/internal/cart"
	"github.com/opcodeflow/go-silicon/internal/core/apu"
	"github.com/opcodeflow/go-silicon/internal/core/bus"
	"github.com/opcodeflow/go-silicon/internal/core/cpu"
	"github.com/opcodeflow/go-silicon/internal/core/joypad"
)

// cyclesPerFrame is 154 scanlines of 456 T-cycles, the DMG's fixed
// frame length regardless of what the CPU was doing during it.
const cyclesPerFrame = 154 * 456

// Button names the eight physical inputs.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonRight
	ButtonLeft
	ButtonUp
	ButtonDown
)

var buttonMask = map[Button]byte{
	ButtonA:      joypad.A,
	ButtonB:      joypad.B,
	ButtonSelect: joypad.SelectBtn,
	ButtonStart:  joypad.Start,
	ButtonRight:  joypad.Right,
	ButtonLeft:   joypad.Left,
	ButtonUp:     joypad.Up,
	ButtonDown:   joypad.Down,
}

// Config tunes the machine independently of any one cartridge.
type Config struct {
	SampleRate int
}

// Machine ties a CPU and a Bus to one cartridge and drives them.
type Machine struct {
	cfg Config

	cpu    *cpu.CPU
	bus    *bus.Bus
	cart   cart.Cartridge
	header *cart.Header

	romPath string
	pressed byte
	paused  bool
}

func New(cfg Config) *Machine {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	return &Machine{cfg: cfg}
}

// LoadCartridge wires a freshly parsed ROM image (and an optional boot
// ROM overlay) into a new bus and CPU. It does not touch disk; callers
// that want battery-save persistence should use LoadROMFile instead.
func (m *Machine) LoadCartridge(rom []byte, bootROM []byte) error {
	if len(rom) < 0x150 {
		return fmt.Errorf("machine: rom too short: %d bytes", len(rom))
	}
	h, err := cart.ParseHeader(rom)
	if err != nil {
		return fmt.Errorf("machine: parse header: %w", err)
	}
	c := cart.New(rom, h)
	m.attach(c, h, "", bootROM)
	return nil
}

// LoadROMFile loads a ROM from disk through cart.Load, which also
// restores a sibling .sav file for battery-backed cartridges.
func (m *Machine) LoadROMFile(path string, bootROM []byte) error {
	c, h, err := cart.Load(path)
	if err != nil {
		return err
	}
	m.attach(c, h, path, bootROM)
	return nil
}

func (m *Machine) attach(c cart.Cartridge, h *cart.Header, path string, bootROM []byte) {
	b := bus.New(c, m.cfg.SampleRate)
	cp := cpu.New(b)

	if len(bootROM) >= 0x100 {
		b.SetBootROM(bootROM)
		cp.PC, cp.SP = 0x0000, 0xFFFE
	} else {
		cp.ResetNoBoot()
		seedPostBootIO(b)
	}

	m.cart, m.header, m.bus, m.cpu, m.romPath = c, h, b, cp, path
	m.pressed = 0
	m.paused = false
}

// seedPostBootIO writes the documented post-boot-ROM register values
// so a cartridge started without a boot ROM image sees the same I/O
// state real hardware leaves behind once its boot ROM finishes.
func seedPostBootIO(b *bus.Bus) {
	b.APU.WriteReg(0xFF10, 0x80)
	b.APU.WriteReg(0xFF11, 0xBF)
	b.APU.WriteReg(0xFF12, 0xF3)
	b.APU.WriteReg(0xFF14, 0xBF)
	b.APU.WriteReg(0xFF16, 0x3F)
	b.APU.WriteReg(0xFF19, 0xBF)
	b.APU.WriteReg(0xFF1A, 0x7F)
	b.APU.WriteReg(0xFF1B, 0xFF)
	b.APU.WriteReg(0xFF1C, 0x9F)
	b.APU.WriteReg(0xFF1E, 0xBF)
	b.APU.WriteReg(0xFF20, 0xFF)
	b.APU.WriteReg(0xFF23, 0xBF)
	b.APU.WriteReg(0xFF24, 0x77)
	b.APU.WriteReg(0xFF25, 0xF3)
	b.APU.WriteReg(0xFF26, 0xF1)

	b.PPU.WriteLCDC(0x91)
	b.PPU.WriteBGP(0xFC)
	b.PPU.WriteOBP0(0xFF)
	b.PPU.WriteOBP1(0xFF)
}

// Header reports the cartridge header for the loaded ROM, or nil if
// nothing is loaded.
func (m *Machine) Header() *cart.Header { return m.header }

// ROMPath is the path LoadROMFile was called with, or "" if the
// machine was loaded from raw bytes.
func (m *Machine) ROMPath() string { return m.romPath }

func (m *Machine) Pause()        { m.paused = true }
func (m *Machine) Resume()       { m.paused = false }
func (m *Machine) Paused() bool  { return m.paused }

// SetButton updates one button's pressed state and re-evaluates the
// joypad interrupt edge immediately, matching real controller latency.
func (m *Machine) SetButton(btn Button, pressed bool) {
	mask, ok := buttonMask[btn]
	if !ok {
		return
	}
	if pressed {
		m.pressed |= mask
	} else {
		m.pressed &^= mask
	}
	if m.bus != nil {
		m.bus.Joypad.SetButtons(m.pressed)
	}
}

// Step executes one CPU step (instruction, interrupt dispatch, or
// HALT idle tick) and ticks every peripheral once per T-cycle the
// step consumed, returning the T-cycle count.
func (m *Machine) Step() int {
	if m.paused || m.cpu == nil {
		return 0
	}
	cycles := m.cpu.Step()
	for i := 0; i < cycles; i++ {
		m.bus.Tick()
	}
	return cycles
}

// RunFrame steps until at least one full frame's worth of T-cycles
// (154 scanlines x 456) has elapsed. The DMG's frame boundary is a
// fixed cycle count, not an event the CPU can observe directly.
func (m *Machine) RunFrame() {
	if m.paused || m.cpu == nil {
		return
	}
	acc := 0
	for acc < cyclesPerFrame {
		c := m.Step()
		if c == 0 {
			return
		}
		acc += c
	}
}

// Framebuffer returns the PPU's current 160x144 ARGB8888 pixel slice.
func (m *Machine) Framebuffer() []uint32 {
	if m.bus == nil {
		return nil
	}
	return m.bus.PPU.Frame()
}

// PullAudio drains up to len(dst) stereo samples produced since the
// last drain, returning how many were written.
func (m *Machine) PullAudio(dst []apu.Sample) int {
	if m.bus == nil {
		return 0
	}
	return m.bus.APU.DrainStereo(dst)
}

// SaveBattery flushes cartridge RAM to its .sav sidecar if the
// cartridge is battery-backed, dirty, and was loaded from a file.
func (m *Machine) SaveBattery() error {
	if m.cart == nil || m.romPath == "" {
		return nil
	}
	return cart.Flush(m.romPath, m.cart)
}

type saveBlob struct {
	CPU     []byte
	Bus     []byte
	CartRAM []byte
}

// SaveState snapshots CPU, bus (and every peripheral behind it), and
// cartridge RAM into one self-contained blob.
func (m *Machine) SaveState() ([]byte, error) {
	if m.cpu == nil || m.bus == nil {
		return nil, fmt.Errorf("machine: no cartridge loaded")
	}
	s := saveBlob{CPU: m.cpu.SaveState(), Bus: m.bus.SaveState()}
	if bb, ok := m.cart.(cart.BatteryBacked); ok {
		s.CartRAM = bb.SaveRAM()
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("machine: encode save state: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadState restores a blob produced by SaveState against the
// currently loaded cartridge. The cartridge must already be loaded
// (LoadState does not itself swap ROMs).
func (m *Machine) LoadState(data []byte) error {
	if m.cpu == nil || m.bus == nil {
		return fmt.Errorf("machine: no cartridge loaded")
	}
	var s saveBlob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("machine: decode save state: %w", err)
	}
	m.cpu.LoadState(s.CPU)
	if err := m.bus.LoadState(s.Bus); err != nil {
		return fmt.Errorf("machine: restore bus state: %w", err)
	}
	if s.CartRAM != nil {
		if bb, ok := m.cart.(cart.BatteryBacked); ok {
			bb.LoadRAM(s.CartRAM)
		}
	}
	return nil
}
