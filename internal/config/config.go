// Package config holds the settings that affect emulation behavior
// but don't belong to any one component: CLI-selected options that
// get threaded down into the driver and the frontend.
package config

// Config mirrors the CLI surface in cmd/gbsil: which ROM/boot ROM to
// load, how the driver should run, and where output should land.
type Config struct {
	ROMPath  string
	BootROM  string
	SaveRAM  bool // persist battery RAM to <rom>.sav on shutdown

	SampleRate int
	Trace      bool // set from --trace; nothing reads it, so no CPU trace is produced

	// Headless mode
	Headless bool
	Frames   int
	PNGOut   string
	ExpectCRC string

	// Windowed mode
	Scale int
	Title string
}

// Default returns the settings cmd/gbsil falls back to when a flag is
// left unset.
func Default() Config {
	return Config{
		SampleRate: 44100,
		SaveRAM:    true,
		Frames:     300,
		Scale:      3,
		Title:      "go-silicon",
	}
}
