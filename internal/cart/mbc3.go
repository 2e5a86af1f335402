package cart

import (
	"encoding/binary"
	"time"
)

// nowUnix is the RTC's wall-clock source; tests substitute a fake clock
// to exercise rollover without sleeping.
var nowUnix = func() int64 { return time.Now().Unix() }

// MBC3 implements ROM/RAM banking plus the real-time clock window: a
// RAM-bank-select write of 0x08-0x0C addresses the clock's
// seconds/minutes/hours/day registers instead of a RAM bank, and a
// 0x00-then-0x01 write to the latch region snapshots the live,
// continuously-advancing counters into the latched registers that CPU
// reads observe.
//
//   - 0000-1FFF: RAM/RTC enable (0x0A in low nibble)
//   - 2000-3FFF: ROM bank, 7 bits (0 maps to 1)
//   - 4000-5FFF: RAM bank 0-3, or RTC register select 0x08-0x0C
//   - 6000-7FFF: latch clock data (0x00 then 0x01 edge)
//   - A000-BFFF: external RAM, or the selected (latched) RTC register
type MBC3 struct {
	rom []byte
	ram []byte
	h   *Header

	ramEnabled bool
	romBank    byte
	ramBank    byte
	latchPrev  byte
	dirty      bool

	rtcSec, rtcMin, rtcHour byte
	rtcDay                  uint16
	rtcHalt, rtcCarry       bool
	lastRTCWallSec          int64

	latchedSec, latchedMin, latchedHour byte
	latchedDay                          uint16
	latchedHalt, latchedCarry           bool
}

func NewMBC3(rom []byte, h *Header) *MBC3 {
	m := &MBC3{rom: rom, h: h, latchPrev: 0xFF, lastRTCWallSec: nowUnix()}
	if h.RAMSizeBytes > 0 {
		m.ram = make([]byte, h.RAMSizeBytes)
	}
	m.romBank = 1
	return m
}

func (m *MBC3) Header() *Header { return m.h }

// advanceRTC folds elapsed wall-clock seconds since the last access into
// the live counters. A halted clock still tracks lastRTCWallSec so that
// un-halting doesn't replay the paused interval in one jump.
func (m *MBC3) advanceRTC() {
	now := nowUnix()
	if m.rtcHalt {
		m.lastRTCWallSec = now
		return
	}
	delta := now - m.lastRTCWallSec
	if delta <= 0 {
		return
	}
	m.lastRTCWallSec = now

	total := int64(m.rtcSec) + int64(m.rtcMin)*60 + int64(m.rtcHour)*3600 + int64(m.rtcDay)*86400 + delta
	days := total / 86400
	rem := total % 86400
	m.rtcHour = byte(rem / 3600)
	rem %= 3600
	m.rtcMin = byte(rem / 60)
	m.rtcSec = byte(rem % 60)
	if days > 0x1FF {
		m.rtcCarry = true
		days &= 0x1FF
	}
	m.rtcDay = uint16(days)
}

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank & 0x7F)
		if bank == 0 {
			bank = 1
		}
		off := bank*0x4000 + int(addr-0x4000)
		if off >= 0 && off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.ramBank >= 0x08 && m.ramBank <= 0x0C {
			m.advanceRTC()
			return m.readRTCReg()
		}
		if len(m.ram) == 0 {
			return 0xFF
		}
		rb := int(m.ramBank & 0x03)
		off := rb*0x2000 + int(addr-0xA000)
		if off >= 0 && off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC3) readRTCReg() byte {
	switch m.ramBank {
	case 0x08:
		return m.latchedSec
	case 0x09:
		return m.latchedMin
	case 0x0A:
		return m.latchedHour
	case 0x0B:
		return byte(m.latchedDay & 0xFF)
	case 0x0C:
		var v byte
		if m.latchedDay&0x100 != 0 {
			v |= 0x01
		}
		if m.latchedHalt {
			v |= 0x40
		}
		if m.latchedCarry {
			v |= 0x80
		}
		return v
	default:
		return 0xFF
	}
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = (value & 0x0F) == 0x0A
	case addr < 0x4000:
		v := value & 0x7F
		if v == 0 {
			v = 1
		}
		m.romBank = v
	case addr < 0x6000:
		if value <= 0x03 || (value >= 0x08 && value <= 0x0C) {
			m.ramBank = value
		}
	case addr < 0x8000:
		if m.latchPrev == 0x00 && value == 0x01 {
			m.advanceRTC()
			m.latchedSec, m.latchedMin, m.latchedHour = m.rtcSec, m.rtcMin, m.rtcHour
			m.latchedDay, m.latchedHalt, m.latchedCarry = m.rtcDay, m.rtcHalt, m.rtcCarry
		}
		m.latchPrev = value
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		if m.ramBank >= 0x08 && m.ramBank <= 0x0C {
			m.advanceRTC()
			m.writeRTCReg(value)
			m.dirty = true
			return
		}
		if len(m.ram) == 0 {
			return
		}
		rb := int(m.ramBank & 0x03)
		off := rb*0x2000 + int(addr-0xA000)
		if off >= 0 && off < len(m.ram) {
			m.ram[off] = value
			m.dirty = true
		}
	}
}

func (m *MBC3) writeRTCReg(value byte) {
	switch m.ramBank {
	case 0x08:
		m.rtcSec = value % 60
	case 0x09:
		m.rtcMin = value % 60
	case 0x0A:
		m.rtcHour = value % 24
	case 0x0B:
		m.rtcDay = (m.rtcDay & 0x100) | uint16(value)
	case 0x0C:
		if value&0x01 != 0 {
			m.rtcDay |= 0x100
		} else {
			m.rtcDay &^= 0x100
		}
		m.rtcHalt = value&0x40 != 0
		m.rtcCarry = value&0x80 != 0
	}
}

// SaveRAM appends the RTC's live registers and last-tick timestamp after
// cartridge RAM so a reload resumes the clock instead of rewinding it.
func (m *MBC3) SaveRAM() []byte {
	out := make([]byte, len(m.ram)+14)
	copy(out, m.ram)
	off := len(m.ram)
	out[off] = m.rtcSec
	out[off+1] = m.rtcMin
	out[off+2] = m.rtcHour
	binary.LittleEndian.PutUint16(out[off+3:], m.rtcDay)
	var flags byte
	if m.rtcHalt {
		flags |= 0x01
	}
	if m.rtcCarry {
		flags |= 0x02
	}
	out[off+5] = flags
	binary.LittleEndian.PutUint64(out[off+6:], uint64(m.lastRTCWallSec))
	return out
}

func (m *MBC3) LoadRAM(data []byte) {
	n := copy(m.ram, data)
	if n < len(m.ram) {
		return
	}
	rest := data[len(m.ram):]
	if len(rest) < 14 {
		return
	}
	m.rtcSec = rest[0]
	m.rtcMin = rest[1]
	m.rtcHour = rest[2]
	m.rtcDay = binary.LittleEndian.Uint16(rest[3:5])
	m.rtcHalt = rest[5]&0x01 != 0
	m.rtcCarry = rest[5]&0x02 != 0
	m.lastRTCWallSec = int64(binary.LittleEndian.Uint64(rest[6:14]))
}

func (m *MBC3) Dirty() bool { return m.dirty }

func (m *MBC3) ClearDirty() { m.dirty = false }
