package machine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestROM builds a minimal, header-valid ROM-only cartridge image
// whose entry point is an infinite JP loop so Step/RunFrame never run
// off the end of the zeroed ROM.
func newTestROM() []byte {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x00 // NOP
	rom[0x0101] = 0xC3 // JP 0x0101
	rom[0x0102] = 0x01
	rom[0x0103] = 0x01
	copy(rom[0x0134:0x0144], "TESTROM")
	rom[0x0147] = 0x00 // ROM only
	rom[0x0148] = 0x00 // 32 KiB
	rom[0x0149] = 0x00 // no RAM

	var sum byte
	for addr := 0x0134; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	rom[0x014D] = sum
	return rom
}

func TestMachine_LoadCartridgeSeedsPostBootState(t *testing.T) {
	m := New(Config{})
	require.NoError(t, m.LoadCartridge(newTestROM(), nil))
	require.Equal(t, uint16(0x0100), m.cpu.PC)
	require.Equal(t, byte(0x91), m.bus.PPU.LCDC())
	require.Equal(t, byte(0xF0), m.bus.APU.ReadReg(0xFF26)&0xF0, "NR52 power bit must read back set")
}

func TestMachine_BootROMOverlayStartsAtZero(t *testing.T) {
	m := New(Config{})
	boot := make([]byte, 0x100)
	require.NoError(t, m.LoadCartridge(newTestROM(), boot))
	require.Equal(t, uint16(0x0000), m.cpu.PC)
}

func TestMachine_StepAdvancesCyclesAndTicksPeripherals(t *testing.T) {
	m := New(Config{})
	require.NoError(t, m.LoadCartridge(newTestROM(), nil))
	before := m.bus.Timer.DIV()
	for i := 0; i < 2000; i++ {
		m.Step()
	}
	require.NotEqual(t, before, m.bus.Timer.DIV(), "many T-cycles must advance the free-running divider")
}

func TestMachine_RunFrameRendersAFrame(t *testing.T) {
	m := New(Config{})
	require.NoError(t, m.LoadCartridge(newTestROM(), nil))
	m.RunFrame()
	fb := m.Framebuffer()
	require.NotZero(t, fb[0], "LCDC is on post-boot, so a full frame must paint the background shade")
}

func TestMachine_PauseStopsStepping(t *testing.T) {
	m := New(Config{})
	require.NoError(t, m.LoadCartridge(newTestROM(), nil))
	m.Pause()
	require.Zero(t, m.Step())
}

func TestMachine_SetButtonReachesJoypad(t *testing.T) {
	m := New(Config{})
	require.NoError(t, m.LoadCartridge(newTestROM(), nil))
	m.bus.Write(0xFF00, 0x20) // select D-pad group
	m.SetButton(ButtonUp, true)
	require.Zero(t, m.bus.Read(0xFF00)&0x04, "Up pressed and D-pad selected must read low")
}

func TestMachine_SaveStateRoundTripsCPUAndPPU(t *testing.T) {
	m := New(Config{})
	require.NoError(t, m.LoadCartridge(newTestROM(), nil))
	for i := 0; i < 5000; i++ {
		m.Step()
	}
	blob, err := m.SaveState()
	require.NoError(t, err)

	wantPC, wantLY := m.cpu.PC, m.bus.PPU.LY()

	m2 := New(Config{})
	require.NoError(t, m2.LoadCartridge(newTestROM(), nil))
	require.NoError(t, m2.LoadState(blob))
	require.Equal(t, wantPC, m2.cpu.PC)
	require.Equal(t, wantLY, m2.bus.PPU.LY())
}

func TestMachine_FramebufferIsFixedSize(t *testing.T) {
	m := New(Config{})
	require.NoError(t, m.LoadCartridge(newTestROM(), nil))
	require.Len(t, m.Framebuffer(), 160*144)
}
