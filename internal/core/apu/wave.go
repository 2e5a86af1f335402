package apu

var waveShift = [4]byte{4, 0, 1, 2}

type wave struct {
	enabled    bool
	dacEnabled bool

	length        int
	lengthEnabled bool
	volumeCode    byte

	frequency   uint16
	periodTimer int
	position    byte
	sample      byte
}

func (c *wave) trigger() {
	c.enabled = c.dacEnabled
	if c.length == 0 {
		c.length = 256
	}
	c.periodTimer = (2048 - int(c.frequency)) * 2
	c.position = 0
}

func (c *wave) tickLength() {
	if c.lengthEnabled && c.length > 0 {
		c.length--
		if c.length == 0 {
			c.enabled = false
		}
	}
}

func (c *wave) tick(ram []byte) {
	c.periodTimer--
	if c.periodTimer <= 0 {
		c.periodTimer = (2048 - int(c.frequency)) * 2
		c.position = (c.position + 1) & 31
		b := ram[c.position/2]
		if c.position%2 == 0 {
			c.sample = b >> 4
		} else {
			c.sample = b & 0x0F
		}
	}
}

func (c *wave) output() byte {
	if !c.enabled || !c.dacEnabled {
		return 0
	}
	return c.sample >> waveShift[c.volumeCode]
}
