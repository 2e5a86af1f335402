package ebitenapp

import (
	"encoding/binary"
	"time"

	"github.com/opcodeflow/go-silicon/internal/core/apu"
	"github.com/opcodeflow/go-silicon/internal/core/machine"
)

// apuStream implements io.Reader by draining stereo samples from the
// machine's APU and converting them to interleaved signed 16-bit
// little-endian bytes, the format ebiten's audio player expects.
type apuStream struct {
	m   *machine.Machine
	buf []apu.Sample
}

func (s *apuStream) Read(p []byte) (int, error) {
	if len(p) < 4 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	want := len(p) / 4
	if cap(s.buf) < want {
		s.buf = make([]apu.Sample, want)
	}
	dst := s.buf[:want]

	n := s.m.PullAudio(dst)
	if n == 0 {
		// The core produces samples at a fixed rate driven by RunFrame;
		// give it a moment rather than report silence as a hard error.
		time.Sleep(time.Millisecond)
		n = s.m.PullAudio(dst)
	}

	i := 0
	for _, smp := range dst[:n] {
		binary.LittleEndian.PutUint16(p[i:], uint16(smp.L))
		binary.LittleEndian.PutUint16(p[i+2:], uint16(smp.R))
		i += 4
	}
	for ; i < len(p); i += 2 {
		p[i] = 0
		if i+1 < len(p) {
			p[i+1] = 0
		}
	}
	return len(p), nil
}
