package bus

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opcodeflow/go-silicon/internal/cart"
)

func newTestBus() *Bus {
	rom := make([]byte, 0x8000)
	c := cart.NewROMOnly(rom, &cart.Header{})
	return New(c, 44100)
}

func TestBus_WRAMEchoMirrors(t *testing.T) {
	b := newTestBus()
	b.Write(0xC010, 0x42)
	require.Equal(t, byte(0x42), b.Read(0xC010))
	require.Equal(t, byte(0x42), b.Read(0xE010), "echo RAM must mirror WRAM")

	b.Write(0xE020, 0x99)
	require.Equal(t, byte(0x99), b.Read(0xC020), "writes through the echo window must land in WRAM")
}

func TestBus_IFReadbackAlwaysHasTopBitsSet(t *testing.T) {
	b := newTestBus()
	b.Write(0xFF0F, 0x01)
	require.Equal(t, byte(0xE1), b.Read(0xFF0F))
}

func TestBus_UnmappedEchoGapReadsFFDropsWrites(t *testing.T) {
	b := newTestBus()
	b.Write(0xFEA0, 0x55) // dropped
	require.Equal(t, byte(0xFF), b.Read(0xFEA0))
}

func TestBus_OAMDMAGatesOAMAccess(t *testing.T) {
	b := newTestBus()
	for i := 0; i < 160; i++ {
		b.Write(0xC000+uint16(i), byte(i+1))
	}
	b.Write(0xFF46, 0xC0) // source page 0xC000

	require.True(t, b.DMA.Active())
	require.Equal(t, byte(0xFF), b.Read(0xFE00), "OAM reads return 0xFF while DMA is active")

	for i := 0; i < 2+160; i++ {
		b.Tick()
	}
	require.False(t, b.DMA.Active())
	for i := 0; i < 160; i++ {
		require.Equal(t, byte(i+1), b.Read(0xFE00+uint16(i)))
	}
}

func TestBus_InterruptEnableRoundTrips(t *testing.T) {
	b := newTestBus()
	b.Write(0xFFFF, 0x1F)
	require.Equal(t, byte(0x1F), b.Read(0xFFFF))
}

func TestBus_16BitHelpersAreLittleEndian(t *testing.T) {
	b := newTestBus()
	b.Write16(0xC000, 0xBEEF)
	require.Equal(t, byte(0xEF), b.Read(0xC000))
	require.Equal(t, byte(0xBE), b.Read(0xC001))
	require.Equal(t, uint16(0xBEEF), b.Read16(0xC000))
}

func TestBus_BootROMOverlayDisablesOnFF50Write(t *testing.T) {
	b := newTestBus()
	boot := make([]byte, 0x100)
	boot[0] = 0xAA
	b.SetBootROM(boot)
	require.Equal(t, byte(0xAA), b.Read(0x0000))

	b.Write(0xFF50, 0x01)
	require.NotEqual(t, byte(0xAA), b.Read(0x0000), "cart ROM must show through once the boot ROM is disabled")
}

func TestBus_SerialWriteCompletesImmediatelyAndRequestsInterrupt(t *testing.T) {
	b := newTestBus()
	var got byte
	b.SerialOut = func(v byte) { got = v }
	b.Write(0xFF01, 0x7A)
	b.Write(0xFF02, 0x81) // start bit set

	require.Equal(t, byte(0x7A), got)
	require.NotZero(t, b.IF()&0x08, "serial interrupt must be requested")
	require.Zero(t, b.Read(0xFF02)&0x80, "the start bit clears once the transfer completes")
}

func TestBus_JoypadRoundTripsThroughIO(t *testing.T) {
	b := newTestBus()
	b.Joypad.SetButtons(1 << 4) // A
	b.Write(0xFF00, 0x10)       // select buttons group (clear bit 5, set bit 4)
	v := b.Read(0xFF00)
	require.Zero(t, v&0x01, "A pressed and buttons selected must read low")
}
