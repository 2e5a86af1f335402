package main

import (
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/opcodeflow/go-silicon/internal/config"
	"github.com/opcodeflow/go-silicon/internal/core/machine"
	"github.com/opcodeflow/go-silicon/internal/frontend/ebitenapp"
	"github.com/opcodeflow/go-silicon/internal/log"
)

func main() {
	app := cli.NewApp()
	app.Name = "gbsil"
	app.Usage = "gbsil [options] <ROM file>"
	app.Description = "A cycle-driven Game Boy emulator core"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "path to ROM (.gb)"},
		cli.StringFlag{Name: "bootrom", Usage: "optional DMG boot ROM"},
		cli.IntFlag{Name: "scale", Value: 3, Usage: "window scale"},
		cli.StringFlag{Name: "title", Value: "go-silicon", Usage: "window title"},
		cli.BoolFlag{Name: "trace", Usage: "accepted; no CPU trace is produced"},
		cli.BoolTFlag{Name: "save", Usage: "persist battery RAM to ROM.sav on exit"},
		cli.IntFlag{Name: "samplerate", Value: 44100, Usage: "audio sample rate"},

		cli.BoolFlag{Name: "headless", Usage: "run without a window"},
		cli.IntFlag{Name: "frames", Value: 300, Usage: "frames to run in headless mode"},
		cli.StringFlag{Name: "outpng", Usage: "write last framebuffer to PNG at path"},
		cli.StringFlag{Name: "expect", Usage: "assert framebuffer CRC32 (hex)"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(c *cli.Context) error {
	cfg := config.Default()
	cfg.ROMPath = c.String("rom")
	if cfg.ROMPath == "" && c.NArg() > 0 {
		cfg.ROMPath = c.Args().Get(0)
	}
	if cfg.ROMPath == "" {
		cli.ShowAppHelp(c)
		return fmt.Errorf("gbsil: no ROM path provided")
	}
	cfg.BootROM = c.String("bootrom")
	cfg.Scale = c.Int("scale")
	cfg.Title = c.String("title")
	cfg.Trace = c.Bool("trace")
	cfg.SaveRAM = c.BoolT("save")
	cfg.SampleRate = c.Int("samplerate")
	cfg.Headless = c.Bool("headless")
	cfg.Frames = c.Int("frames")
	cfg.PNGOut = c.String("outpng")
	cfg.ExpectCRC = c.String("expect")

	var boot []byte
	if cfg.BootROM != "" {
		b, err := os.ReadFile(cfg.BootROM)
		if err != nil {
			return fmt.Errorf("gbsil: read boot rom: %w", err)
		}
		boot = b
	}

	m := machine.New(machine.Config{SampleRate: cfg.SampleRate})
	if err := m.LoadROMFile(cfg.ROMPath, boot); err != nil {
		return fmt.Errorf("gbsil: load rom: %w", err)
	}
	if h := m.Header(); h != nil {
		log.Printf("ROM: %q type=%s banks=%d ram=%dB checksumOK=%v",
			h.Title, h.CartTypeStr, h.ROMBanks, h.RAMSizeBytes, h.ChecksumOK)
		if !h.ChecksumOK {
			log.Warnf("header checksum mismatch for %s", cfg.ROMPath)
		}
	}

	if cfg.SaveRAM {
		defer func() {
			if err := m.SaveBattery(); err != nil {
				log.Warnf("save battery: %v", err)
			}
		}()
	}

	if cfg.Headless {
		return runHeadless(m, cfg)
	}

	a := ebitenapp.NewApp(ebitenapp.Config{
		Scale: cfg.Scale, Title: cfg.Title, SampleRate: cfg.SampleRate,
	}, m)
	return a.Run()
}

func runHeadless(m *machine.Machine, cfg config.Config) error {
	frames := cfg.Frames
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		m.RunFrame()
	}
	dur := time.Since(start)

	pix := framebufferToRGBA(m.Framebuffer())
	crc := crc32.ChecksumIEEE(pix)
	fps := float64(frames) / dur.Seconds()
	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, dur.Truncate(time.Millisecond), fps, crc)

	if cfg.PNGOut != "" {
		if err := savePNG(pix, 160, 144, cfg.PNGOut); err != nil {
			return fmt.Errorf("gbsil: write png: %w", err)
		}
		log.Printf("wrote %s", cfg.PNGOut)
	}

	if cfg.ExpectCRC != "" {
		want := strings.TrimPrefix(strings.ToLower(cfg.ExpectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("gbsil: checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

// framebufferToRGBA converts the core's ARGB8888 pixel slice into the
// byte-major RGBA order image/png expects; this conversion is host
// glue, not part of the core's contract.
func framebufferToRGBA(fb []uint32) []byte {
	pix := make([]byte, len(fb)*4)
	for i, px := range fb {
		o := i * 4
		pix[o+0] = byte(px >> 16)
		pix[o+1] = byte(px >> 8)
		pix[o+2] = byte(px)
		pix[o+3] = byte(px >> 24)
	}
	return pix
}

func savePNG(pix []byte, w, h int, path string) error {
	img := &image.RGBA{Pix: pix, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
