//go:build cgo

package hal

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// clearColor matches the blue background shown behind transparent fragments.
var clearColor = color.RGBA{R: 0, G: 0, B: 0xff, A: 0xff}

type windowProgram struct {
	shader *ebiten.Shader
}

func (p *windowProgram) Release() {
	if p.shader != nil {
		p.shader.Deallocate()
		p.shader = nil
	}
}

type windowSurface struct {
	cfg WindowConfig

	vertices []ebiten.Vertex
	indices  []uint16

	// Frame recorded by Draw and flushed to the screen by hostGame.Draw.
	shader   *ebiten.Shader
	uniforms map[string]any
	ready    bool

	cursorSeen       bool
	cursorX, cursorY int
}

// NewWindow returns an ebiten-backed surface. Shaders are Kage programs.
func NewWindow(cfg WindowConfig) (Surface, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("window: invalid size %dx%d", cfg.Width, cfg.Height)
	}

	s := &windowSurface{cfg: cfg}
	w, h := float32(cfg.Width), float32(cfg.Height)
	for _, v := range FullscreenQuad {
		px := (v.X + 1) / 2 * w
		py := (1 - v.Y) / 2 * h
		s.vertices = append(s.vertices, ebiten.Vertex{
			DstX: px, DstY: py,
			SrcX: px, SrcY: py,
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		})
	}
	s.indices = QuadStripIndices[:]
	return s, nil
}

func (s *windowSurface) Compile(vertex, fragment string) (Program, error) {
	sh, err := ebiten.NewShader([]byte(vertex + "\n" + fragment))
	if err != nil {
		return nil, &CompileError{Backend: "kage", Err: err}
	}
	return &windowProgram{shader: sh}, nil
}

func (s *windowSurface) Draw(p Program, u Uniforms) error {
	wp, ok := p.(*windowProgram)
	if !ok || wp.shader == nil {
		return fmt.Errorf("window: draw: unexpected program %T", p)
	}
	s.shader = wp.shader
	s.uniforms = map[string]any{
		"Resolution": u.Resolution[:],
		"Time":       u.Time,
		"Mouse":      u.Mouse[:],
	}
	return nil
}

func (s *windowSurface) Present() error {
	s.ready = true
	return nil
}

func (s *windowSurface) PollEvents(dst []Event) []Event {
	if ebiten.IsWindowBeingClosed() {
		dst = append(dst, Event{Kind: EventCloseRequested})
	}
	dst = pollKeys(dst)
	x, y := ebiten.CursorPosition()
	if !s.cursorSeen || x != s.cursorX || y != s.cursorY {
		s.cursorSeen = true
		s.cursorX, s.cursorY = x, y
		dst = append(dst, Event{Kind: EventPointerMoved, X: float64(x), Y: float64(y)})
	}
	return dst
}

// Run opens the window and blocks until step reports done or the game fails.
func (s *windowSurface) Run(step func() (bool, error)) error {
	ebiten.SetWindowTitle(s.cfg.Title)
	ebiten.SetWindowSize(s.cfg.Width, s.cfg.Height)
	ebiten.SetWindowDecorated(!s.cfg.Borderless)
	ebiten.SetFullscreen(s.cfg.Fullscreen)
	ebiten.SetVsyncEnabled(s.cfg.VSync)
	ebiten.SetWindowClosingHandled(true)
	// A paused session presents nothing; keep the last frame on screen.
	ebiten.SetScreenClearedEveryFrame(false)
	ebiten.SetTPS(60)

	return ebiten.RunGame(&hostGame{s: s, step: step})
}

type hostGame struct {
	s    *windowSurface
	step func() (bool, error)
}

func (g *hostGame) Update() error {
	done, err := g.step()
	if err != nil {
		return err
	}
	if done {
		return ebiten.Termination
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	s := g.s
	if !s.ready || s.shader == nil {
		return
	}
	s.ready = false

	screen.Fill(clearColor)
	screen.DrawTrianglesShader(s.vertices, s.indices, s.shader, &ebiten.DrawTrianglesShaderOptions{
		Uniforms:  s.uniforms,
		AntiAlias: s.cfg.MSAA > 0,
	})
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.s.cfg.Width, g.s.cfg.Height
}
