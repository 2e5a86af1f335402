package timer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func tick(t *Timer, n int) {
	for i := 0; i < n; i++ {
		t.Tick()
	}
}

func TestTimer_DIVIncrementsEvery256Cycles(t *testing.T) {
	tm := New()
	tick(tm, 255)
	require.Zero(t, tm.DIV())
	tm.Tick()
	require.Equal(t, byte(1), tm.DIV())
}

func TestTimer_TIMAIncrementsAtSelectedRate(t *testing.T) {
	tm := New()
	tm.WriteTAC(0x05) // enabled, bit 3 (262144 Hz, every 16 cycles)
	tick(tm, 16)
	require.Equal(t, byte(1), tm.TIMA())
}

func TestTimer_OverflowDelaysReloadFourCycles(t *testing.T) {
	tm := New()
	fired := false
	tm.IRQ = func() { fired = true }
	tm.WriteTAC(0x05)
	tm.WriteTIMA(0xFF)

	tick(tm, 16) // trigger the falling edge that overflows TIMA
	require.Equal(t, byte(0x00), tm.TIMA(), "overflow lands on 0x00 immediately")
	require.False(t, fired)

	tick(tm, 3)
	require.False(t, fired, "reload hasn't landed yet")
	tm.WriteTMA(0x7F)
	tick(tm, 1)
	require.Equal(t, byte(0x7F), tm.TIMA())
	require.True(t, fired)
}

func TestTimer_WritingTIMADuringReloadCancelsIt(t *testing.T) {
	tm := New()
	tm.WriteTAC(0x05)
	tm.WriteTIMA(0xFF)
	tick(tm, 16) // overflow -> reload armed
	tm.WriteTIMA(0x42)
	tick(tm, 10)
	require.Equal(t, byte(0x42), tm.TIMA(), "the write must win over the pending reload")
}

func TestTimer_ResetDIVTriggersFallingEdgeIncrement(t *testing.T) {
	tm := New()
	tm.WriteTAC(0x05) // bit 3 selected
	tick(tm, 8)        // get bit 3 high (divInternal=8 -> bit3=1)
	require.Zero(t, tm.TIMA())
	tm.ResetDIV()
	require.Equal(t, byte(1), tm.TIMA(), "resetting DIV while bit 3 was high causes a falling edge")
}
