// Package render owns the live shader session: it drains the control and
// reload mailboxes, applies state transitions and issues one frame per step.
//
// Core is not safe for concurrent use. Exactly one goroutine (the one that
// calls Step, usually through Run) reads or writes session state; other
// goroutines reach it only through the mailboxes.
package render

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"yolo/hal"
	"yolo/internal/logging"
	"yolo/kernel"
	"yolo/proto"
)

// DefaultTimeStep is the time advance per drawn frame.
const DefaultTimeStep = 0.01

// State is the render session state.
type State uint8

const (
	StateRunning State = iota
	StatePaused
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config is the immutable configuration of a session.
type Config struct {
	Width    int
	Height   int
	TimeStep float32

	// Vertex is the vertex stage compiled together with every reloaded fragment.
	Vertex string

	// OnReload is called after a reloaded program has been swapped in.
	OnReload func(Session)
}

// Session is the mutable state owned by Core.
type Session struct {
	ID      string
	Time    float32
	Pointer [2]float32
	State   State
	Program hal.Program
	Frames  uint64
	Reloads uint64
}

// Core is the render state machine.
type Core struct {
	cfg     Config
	surface hal.Surface
	control kernel.Receiver[proto.Signal]
	reload  kernel.Receiver[proto.ShaderSource]
	log     *logrus.Entry

	session Session
	events  []hal.Event
}

// New creates a running session around an already compiled program.
func New(
	cfg Config,
	surface hal.Surface,
	program hal.Program,
	control kernel.Receiver[proto.Signal],
	reload kernel.Receiver[proto.ShaderSource],
	log *logrus.Entry,
) (*Core, error) {
	if surface == nil {
		return nil, errors.New("render: nil surface")
	}
	if program == nil {
		return nil, errors.New("render: nil program")
	}
	if control == nil || reload == nil {
		return nil, errors.New("render: nil mailbox")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("render: invalid resolution %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.TimeStep == 0 {
		cfg.TimeStep = DefaultTimeStep
	}

	id := uuid.NewString()
	return &Core{
		cfg:     cfg,
		surface: surface,
		control: control,
		reload:  reload,
		log:     logging.OrDiscard(log).WithField("session", id),
		session: Session{ID: id, State: StateRunning, Program: program},
	}, nil
}

// Session returns a copy of the current session.
func (c *Core) Session() Session { return c.session }

// Run drives Step through the surface until the session closes, then
// releases the active program.
func (c *Core) Run() error {
	defer c.release()

	c.log.WithFields(logrus.Fields{
		"width":  c.cfg.Width,
		"height": c.cfg.Height,
		"step":   c.cfg.TimeStep,
	}).Info("render loop started")

	err := c.surface.Run(c.Step)
	c.session.State = StateClosed

	c.log.WithFields(logrus.Fields{
		"frames":  c.session.Frames,
		"reloads": c.session.Reloads,
	}).Info("render loop stopped")
	return err
}

// Step runs one frame iteration. It consumes at most one control message
// and one reload message, so bursts are applied one per frame.
func (c *Core) Step() (done bool, err error) {
	s := &c.session

	if sig, ok := c.control.TryRecv(); ok {
		c.apply(sig)
	}
	if src, ok := c.reload.TryRecv(); ok {
		c.recompile(src)
	}

	if s.State == StateClosed {
		return true, nil
	}

	if s.State == StateRunning {
		s.Time += c.cfg.TimeStep
		if err := c.surface.Draw(s.Program, c.uniforms()); err != nil {
			return true, fmt.Errorf("render: draw: %w", err)
		}
		if err := c.surface.Present(); err != nil {
			return true, fmt.Errorf("render: present: %w", err)
		}
		s.Frames++
	}

	c.events = c.surface.PollEvents(c.events[:0])
	for _, ev := range c.events {
		switch ev.Kind {
		case hal.EventCloseRequested:
			if s.State != StateClosed {
				c.log.Info("close requested")
			}
			s.State = StateClosed
		case hal.EventPointerMoved:
			s.Pointer = c.normalize(ev.X, ev.Y)
		}
	}
	return false, nil
}

func (c *Core) apply(sig proto.Signal) {
	s := &c.session
	prev := s.State
	switch sig {
	case proto.SignalPause:
		if s.State == StateRunning {
			s.State = StatePaused
		}
	case proto.SignalResume:
		if s.State == StatePaused {
			s.State = StateRunning
		}
	case proto.SignalExit:
		s.State = StateClosed
	default:
		c.log.WithField("signal", sig).Warn("ignoring unknown signal")
		return
	}
	c.log.WithFields(logrus.Fields{
		"signal": sig,
		"from":   prev,
		"to":     s.State,
	}).Debug("control signal applied")
}

// recompile swaps in a program built from src. On failure the current
// program and uniforms are left exactly as they were.
func (c *Core) recompile(src proto.ShaderSource) {
	s := &c.session
	program, err := c.surface.Compile(c.cfg.Vertex, src.Text)
	if err != nil {
		c.log.WithError(err).WithField("path", src.Path).Error("shader reload failed, keeping previous program")
		return
	}

	old := s.Program
	s.Program = program
	s.Time = 0
	s.Pointer = [2]float32{}
	s.Reloads++
	old.Release()

	c.log.WithFields(logrus.Fields{
		"path":    src.Path,
		"reloads": s.Reloads,
	}).Info("shader reloaded")
	if c.cfg.OnReload != nil {
		c.cfg.OnReload(*s)
	}
}

func (c *Core) uniforms() hal.Uniforms {
	return hal.Uniforms{
		Resolution: [2]float32{float32(c.cfg.Width), float32(c.cfg.Height)},
		Time:       c.session.Time,
		Mouse:      c.session.Pointer,
	}
}

// normalize maps window pixels to [0,1]x[0,1] with the Y axis pointing up.
func (c *Core) normalize(x, y float64) [2]float32 {
	nx := x / float64(c.cfg.Width)
	ny := 1 - y/float64(c.cfg.Height)
	return [2]float32{float32(clamp01(nx)), float32(clamp01(ny))}
}

func (c *Core) release() {
	if c.session.Program != nil {
		c.session.Program.Release()
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
