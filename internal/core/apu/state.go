package apu

import (
	"bytes"
	"encoding/gob"
)

type squareState struct {
	Enabled, DACEnabled    bool
	Duty, DutyIndex        byte
	Length                 int
	LengthEnabled          bool
	InitialVolume, Volume  byte
	EnvDir                 int8
	EnvPeriod, EnvTimer    byte
	Frequency              uint16
	PeriodTimer            int
	SweepPeriod            byte
	SweepNegate            bool
	SweepShift             byte
	SweepTimer             byte
	SweepEnabled           bool
	SweepShadow            uint16
	HasSweep               bool
}

func (c *square) snapshot() squareState {
	return squareState{
		Enabled: c.enabled, DACEnabled: c.dacEnabled,
		Duty: c.duty, DutyIndex: c.dutyIndex,
		Length: c.length, LengthEnabled: c.lengthEnabled,
		InitialVolume: c.initialVolume, Volume: c.volume,
		EnvDir: c.envDir, EnvPeriod: c.envPeriod, EnvTimer: c.envTimer,
		Frequency: c.frequency, PeriodTimer: c.periodTimer,
		SweepPeriod: c.sweepPeriod, SweepNegate: c.sweepNegate, SweepShift: c.sweepShift,
		SweepTimer: c.sweepTimer, SweepEnabled: c.sweepEnabled, SweepShadow: c.sweepShadow,
		HasSweep: c.hasSweep,
	}
}

func (c *square) restore(s squareState) {
	c.enabled, c.dacEnabled = s.Enabled, s.DACEnabled
	c.duty, c.dutyIndex = s.Duty, s.DutyIndex
	c.length, c.lengthEnabled = s.Length, s.LengthEnabled
	c.initialVolume, c.volume = s.InitialVolume, s.Volume
	c.envDir, c.envPeriod, c.envTimer = s.EnvDir, s.EnvPeriod, s.EnvTimer
	c.frequency, c.periodTimer = s.Frequency, s.PeriodTimer
	c.sweepPeriod, c.sweepNegate, c.sweepShift = s.SweepPeriod, s.SweepNegate, s.SweepShift
	c.sweepTimer, c.sweepEnabled, c.sweepShadow = s.SweepTimer, s.SweepEnabled, s.SweepShadow
	c.hasSweep = s.HasSweep
}

type waveState struct {
	Enabled, DACEnabled bool
	Length              int
	LengthEnabled       bool
	VolumeCode          byte
	Frequency           uint16
	PeriodTimer         int
	Position            byte
	Sample              byte
}

func (c *wave) snapshot() waveState {
	return waveState{
		Enabled: c.enabled, DACEnabled: c.dacEnabled,
		Length: c.length, LengthEnabled: c.lengthEnabled,
		VolumeCode: c.volumeCode, Frequency: c.frequency,
		PeriodTimer: c.periodTimer, Position: c.position, Sample: c.sample,
	}
}

func (c *wave) restore(s waveState) {
	c.enabled, c.dacEnabled = s.Enabled, s.DACEnabled
	c.length, c.lengthEnabled = s.Length, s.LengthEnabled
	c.volumeCode, c.frequency = s.VolumeCode, s.Frequency
	c.periodTimer, c.position, c.sample = s.PeriodTimer, s.Position, s.Sample
}

type noiseState struct {
	Enabled, DACEnabled   bool
	Length                int
	LengthEnabled         bool
	InitialVolume, Volume byte
	EnvDir                int8
	EnvPeriod, EnvTimer   byte
	ShiftClock            byte
	WidthMode             bool
	DivisorCode           byte
	PeriodTimer           int
	LFSR                  uint16
}

func (c *noise) snapshot() noiseState {
	return noiseState{
		Enabled: c.enabled, DACEnabled: c.dacEnabled,
		Length: c.length, LengthEnabled: c.lengthEnabled,
		InitialVolume: c.initialVolume, Volume: c.volume,
		EnvDir: c.envDir, EnvPeriod: c.envPeriod, EnvTimer: c.envTimer,
		ShiftClock: c.shiftClock, WidthMode: c.widthMode, DivisorCode: c.divisorCode,
		PeriodTimer: c.periodTimer, LFSR: c.lfsr,
	}
}

func (c *noise) restore(s noiseState) {
	c.enabled, c.dacEnabled = s.Enabled, s.DACEnabled
	c.length, c.lengthEnabled = s.Length, s.LengthEnabled
	c.initialVolume, c.volume = s.InitialVolume, s.Volume
	c.envDir, c.envPeriod, c.envTimer = s.EnvDir, s.EnvPeriod, s.EnvTimer
	c.shiftClock, c.widthMode, c.divisorCode = s.ShiftClock, s.WidthMode, s.DivisorCode
	c.periodTimer, c.lfsr = s.PeriodTimer, s.LFSR
}

type apuState struct {
	Powered       bool
	Regs          [0x30]byte
	NR50, NR51    byte
	Ch1, Ch2      squareState
	Ch3           waveState
	Ch4           noiseState
	FSCounter     int
	FSStep        int
	Accum         int
}

// SaveState captures every bit of audio-generation state: the raw
// register store and each channel's running phase, so resuming mid
// note doesn't produce an audible glitch.
func (a *APU) SaveState() []byte {
	var buf bytes.Buffer
	s := apuState{
		Powered: a.powered, Regs: a.regs, NR50: a.nr50, NR51: a.nr51,
		Ch1: a.ch1.snapshot(), Ch2: a.ch2.snapshot(), Ch3: a.ch3.snapshot(), Ch4: a.ch4.snapshot(),
		FSCounter: a.fsCounter, FSStep: a.fsStep, Accum: a.accum,
	}
	_ = gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

func (a *APU) LoadState(data []byte) {
	var s apuState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	a.powered, a.regs, a.nr50, a.nr51 = s.Powered, s.Regs, s.NR50, s.NR51
	a.ch1.restore(s.Ch1)
	a.ch2.restore(s.Ch2)
	a.ch3.restore(s.Ch3)
	a.ch4.restore(s.Ch4)
	a.fsCounter, a.fsStep, a.accum = s.FSCounter, s.FSStep, s.Accum
}
