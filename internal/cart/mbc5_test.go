package cart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMBC5_BankZeroIsSelectable(t *testing.T) {
	rom := make([]byte, 1024*1024)
	for bank := 0; bank < 16; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC5(rom, &Header{})

	require.Equal(t, byte(0x01), m.Read(0x4000), "default switchable bank is 1")

	m.Write(0x2000, 0x00)
	require.Equal(t, byte(0x00), m.Read(0x4000), "MBC5 allows bank 0 in the switchable window")
}

func TestMBC5_HighROMBankBit(t *testing.T) {
	rom := make([]byte, 0x200*0x4000)
	rom[0x101*0x4000] = 0xAB
	m := NewMBC5(rom, &Header{})

	m.Write(0x2000, 0x01)
	m.Write(0x3000, 0x01) // sets bit 8 -> bank 0x101
	require.Equal(t, byte(0xAB), m.Read(0x4000))
}

func TestMBC5_RAMBankingAndDirty(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := NewMBC5(rom, &Header{RAMSizeBytes: 4 * 0x2000})

	m.Write(0x0000, 0x0A)
	m.Write(0x4000, 0x03)
	m.Write(0xA000, 0x9A)
	require.Equal(t, byte(0x9A), m.Read(0xA000))
	require.True(t, m.Dirty())
}
