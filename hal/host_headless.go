package hal

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/naga"
)

// HeadlessConfig controls the no-window surface.
type HeadlessConfig struct {
	Width  int
	Height int
	Hz     int
	Frames uint64 // request close after N presented frames (0 = never)
}

type headlessProgram struct {
	words []uint32
}

func (p *headlessProgram) Release() { p.words = nil }

// Headless is a surface without a window. It compiles WGSL with naga,
// records the last frame's uniforms and paces frames with a ticker.
//
// Cancelling ctx, or reaching cfg.Frames, is reported as a close request
// so shutdown goes through the same path as closing a window.
type Headless struct {
	ctx context.Context
	cfg HeadlessConfig

	drawn     bool
	presented uint64
	last      Uniforms
}

// NewHeadless returns a headless surface.
func NewHeadless(ctx context.Context, cfg HeadlessConfig) (*Headless, error) {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("headless: invalid size %dx%d", cfg.Width, cfg.Height)
	}
	return &Headless{ctx: ctx, cfg: cfg}, nil
}

func (h *Headless) Compile(vertex, fragment string) (Program, error) {
	spirv, err := naga.Compile(vertex + "\n" + fragment)
	if err != nil {
		return nil, &CompileError{Backend: "wgsl", Err: err}
	}
	if len(spirv)%4 != 0 {
		return nil, &CompileError{Backend: "wgsl", Err: fmt.Errorf("spir-v length %d is not word aligned", len(spirv))}
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return &headlessProgram{words: words}, nil
}

func (h *Headless) Draw(p Program, u Uniforms) error {
	hp, ok := p.(*headlessProgram)
	if !ok {
		return fmt.Errorf("headless: draw: unexpected program %T", p)
	}
	if hp.words == nil {
		return errors.New("headless: draw: program released")
	}
	h.last = u
	h.drawn = true
	return nil
}

func (h *Headless) Present() error {
	if !h.drawn {
		return errors.New("headless: present without draw")
	}
	h.drawn = false
	h.presented++
	return nil
}

func (h *Headless) PollEvents(dst []Event) []Event {
	if h.ctx.Err() != nil || (h.cfg.Frames > 0 && h.presented >= h.cfg.Frames) {
		dst = append(dst, Event{Kind: EventCloseRequested})
	}
	return dst
}

// Run calls step at cfg.Hz until it reports done.
func (h *Headless) Run(step func() (bool, error)) error {
	d := time.Second / time.Duration(h.cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", h.cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	for range t.C {
		done, err := step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return nil
}

// Frames returns the number of presented frames.
func (h *Headless) Frames() uint64 { return h.presented }

// LastUniforms returns the uniforms of the most recent draw.
func (h *Headless) LastUniforms() Uniforms { return h.last }
