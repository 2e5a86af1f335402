package apu

// readMask gives the bits of each register that always read back as 1
// regardless of what was written — the documented hardware table,
// not a re-read of anything the engine itself derived.
func readMask(addr uint16) byte {
	switch addr {
	case 0xFF10:
		return 0x80
	case 0xFF11:
		return 0x3F
	case 0xFF12:
		return 0x00
	case 0xFF13:
		return 0xFF
	case 0xFF14:
		return 0xBF
	case 0xFF16:
		return 0x3F
	case 0xFF17:
		return 0x00
	case 0xFF18:
		return 0xFF
	case 0xFF19:
		return 0xBF
	case 0xFF1A:
		return 0x7F
	case 0xFF1B:
		return 0xFF
	case 0xFF1C:
		return 0x9F
	case 0xFF1D:
		return 0xFF
	case 0xFF1E:
		return 0xBF
	case 0xFF20:
		return 0xFF
	case 0xFF21:
		return 0x00
	case 0xFF22:
		return 0x00
	case 0xFF23:
		return 0xBF
	case 0xFF24:
		return 0x00
	case 0xFF25:
		return 0x00
	case 0xFF26:
		return 0x70
	case 0xFF15, 0xFF1F:
		return 0xFF // unused register slots
	default:
		return 0x00
	}
}
