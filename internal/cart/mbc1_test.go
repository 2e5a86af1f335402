package cart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMBC1_ROMBanking(t *testing.T) {
	rom := make([]byte, 128*1024)
	for bank := 0; bank < 8; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC1(rom, &Header{})

	require.Equal(t, byte(0x00), m.Read(0x0000), "bank0 fixed region")
	require.Equal(t, byte(0x01), m.Read(0x4000), "switchable bank defaults to 1")

	m.Write(0x2000, 0x03)
	require.Equal(t, byte(0x03), m.Read(0x4000))

	m.Write(0x2000, 0x00)
	require.Equal(t, byte(0x01), m.Read(0x4000), "bank 0 remaps to 1")
}

func TestMBC1_RAMBanking_Mode1(t *testing.T) {
	rom := make([]byte, 128*1024)
	m := NewMBC1(rom, &Header{RAMSizeBytes: 32 * 1024})

	m.Write(0x0000, 0x0A) // enable
	m.Write(0x6000, 0x01) // advanced (RAM banking) mode
	m.Write(0x4000, 0x02) // select RAM bank 2

	m.Write(0xA000, 0x77)
	require.Equal(t, byte(0x77), m.Read(0xA000))
	require.True(t, m.Dirty())

	m.ClearDirty()
	require.False(t, m.Dirty())
}

func TestMBC1_RAMDisabledReadsFF(t *testing.T) {
	rom := make([]byte, 32*1024)
	m := NewMBC1(rom, &Header{RAMSizeBytes: 8 * 1024})
	require.Equal(t, byte(0xFF), m.Read(0xA000))
}

func TestMBC1_SaveLoadRAM(t *testing.T) {
	rom := make([]byte, 32*1024)
	m := NewMBC1(rom, &Header{RAMSizeBytes: 0x2000})
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x42)

	saved := m.SaveRAM()

	n := NewMBC1(rom, &Header{RAMSizeBytes: 0x2000})
	n.LoadRAM(saved)
	n.Write(0x0000, 0x0A)
	require.Equal(t, byte(0x42), n.Read(0xA000))
}
