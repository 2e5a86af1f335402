// Package ebitenapp is the windowed host: an ebiten.Game that steps
// the machine a frame at a time, uploads its ARGB framebuffer to a
// texture, reads the keyboard into button state, and drains the APU
// into an ebiten audio player.
package ebitenapp

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/opcodeflow/go-silicon/internal/core/machine"
)

const (
	screenWidth  = 160
	screenHeight = 144
)

// Config is the window-facing subset of the CLI configuration.
type Config struct {
	Scale      int
	Title      string
	SampleRate int
}

// App implements ebiten.Game against one Machine.
type App struct {
	cfg Config
	m   *machine.Machine

	tex    *ebiten.Image
	pixBuf []byte

	keymap map[ebiten.Key]machine.Button

	audioCtx    *audio.Context
	audioPlayer *audio.Player
}

func NewApp(cfg Config, m *machine.Machine) *App {
	if cfg.Scale <= 0 {
		cfg.Scale = 3
	}
	if cfg.Title == "" {
		cfg.Title = "go-silicon"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(screenWidth*cfg.Scale, screenHeight*cfg.Scale)

	return &App{
		cfg:    cfg,
		m:      m,
		tex:    ebiten.NewImage(screenWidth, screenHeight),
		pixBuf: make([]byte, screenWidth*screenHeight*4),
		keymap: defaultKeymap(),
	}
}

func (a *App) Run() error { return ebiten.RunGame(a) }

func defaultKeymap() map[ebiten.Key]machine.Button {
	return map[ebiten.Key]machine.Button{
		ebiten.KeyArrowRight: machine.ButtonRight,
		ebiten.KeyArrowLeft:  machine.ButtonLeft,
		ebiten.KeyArrowUp:    machine.ButtonUp,
		ebiten.KeyArrowDown:  machine.ButtonDown,
		ebiten.KeyZ:          machine.ButtonA,
		ebiten.KeyX:          machine.ButtonB,
		ebiten.KeyEnter:      machine.ButtonStart,
		ebiten.KeyShift:      machine.ButtonSelect,
	}
}

func (a *App) Update() error {
	if a.audioPlayer == nil {
		a.audioCtx = audio.NewContext(a.cfg.SampleRate)
		src := &apuStream{m: a.m}
		if p, err := a.audioCtx.NewPlayer(src); err == nil {
			a.audioPlayer = p
			a.audioPlayer.Play()
		}
	}

	for key, btn := range a.keymap {
		a.m.SetButton(btn, ebiten.IsKeyPressed(key))
	}

	a.m.RunFrame()
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	fb := a.m.Framebuffer()
	for i, px := range fb {
		o := i * 4
		a.pixBuf[o+0] = byte(px >> 16) // R
		a.pixBuf[o+1] = byte(px >> 8)  // G
		a.pixBuf[o+2] = byte(px)       // B
		a.pixBuf[o+3] = byte(px >> 24) // A
	}
	a.tex.WritePixels(a.pixBuf)
	screen.DrawImage(a.tex, nil)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}
