// Package app wires the render core, the command console and the shader
// watcher into one previewer process.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"yolo/hal"
	"yolo/internal/config"
	"yolo/internal/logging"
	"yolo/internal/shader"
	"yolo/kernel"
	"yolo/proto"
	"yolo/services/console"
	"yolo/services/render"
	"yolo/services/watcher"
)

// SurfaceOpener creates the graphics surface for cfg.
type SurfaceOpener func(ctx context.Context, cfg config.Config) (hal.Surface, error)

// App is one previewer run.
type App struct {
	cfg config.Config
	log *logrus.Logger
	in  io.Reader
	out io.Writer

	openSurface SurfaceOpener
	watch       watcher.Options
}

// New returns an app reading console commands from in and printing
// operator-facing text to out.
func New(cfg config.Config, log *logrus.Logger, in io.Reader, out io.Writer) *App {
	if log == nil {
		log = logging.New(io.Discard, false)
	}
	return &App{
		cfg:         cfg,
		log:         log,
		in:          in,
		out:         out,
		openSurface: OpenSurface,
	}
}

// OpenSurface opens the backend named by cfg.Backend.
func OpenSurface(ctx context.Context, cfg config.Config) (hal.Surface, error) {
	switch cfg.Backend {
	case config.BackendHeadless:
		return hal.NewHeadless(ctx, cfg.HeadlessConfig())
	case config.BackendWindow, "":
		return hal.NewWindow(cfg.WindowConfig())
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Run blocks until the session closes. Startup failures are returned
// before any goroutine is started.
func (a *App) Run(ctx context.Context) error {
	log := logging.Component(a.log, "app")

	vertex, err := a.vertexSource()
	if err != nil {
		return err
	}
	log.WithField("path", a.cfg.Fragment).Info("loading fragment shader")
	fragment, err := shader.Load(a.cfg.Fragment, a.cfg.Decompress)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	surface, err := a.openSurface(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("open %s surface: %w", a.cfg.Backend, err)
	}
	program, err := surface.Compile(vertex, fragment)
	if err != nil {
		return fmt.Errorf("compile %q: %w", a.cfg.Fragment, err)
	}

	printBanner(a.out, a.cfg)

	control := kernel.NewMailbox[proto.Signal]()
	reload := kernel.NewMailbox[proto.ShaderSource]()

	core, err := render.New(render.Config{
		Width:    a.cfg.Width,
		Height:   a.cfg.Height,
		TimeStep: float32(a.cfg.TimeStep),
		Vertex:   vertex,
		OnReload: func(s render.Session) {
			fmt.Fprintf(a.out, "Shader reloaded (%d)\n", s.Reloads)
		},
	}, surface, program, control, reload, logging.Component(a.log, "render"))
	if err != nil {
		program.Release()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	// Interrupts end the session the same way the exit command does.
	g.Go(func() error {
		<-gctx.Done()
		control.Send(proto.SignalExit)
		return nil
	})

	if a.cfg.Reload {
		opts := a.watch
		opts.Compressed = a.cfg.Decompress
		w, err := watcher.New(a.cfg.Fragment, reload, logging.Component(a.log, "watcher"), opts)
		if err != nil {
			cancel()
			_ = g.Wait()
			program.Release()
			return err
		}
		g.Go(func() error { return w.Run(gctx) })
	}

	if a.cfg.Interactive {
		con := console.New(a.in, a.out, control, logging.Component(a.log, "console"), console.Options{Debug: a.cfg.Debug})
		con.PrintHelp()
		// Not part of the group: a blocking read cannot be interrupted, so
		// shutdown never waits for this goroutine.
		go func() {
			clog := logging.Component(a.log, "console")
			if err := con.Run(); err != nil {
				if errors.Is(err, console.ErrInputClosed) {
					clog.Warn("command input closed, rendering continues")
					return
				}
				clog.WithError(err).Error("console stopped")
				return
			}
			clog.Debug("console finished")
		}()
	}

	runErr := core.Run()
	cancel()
	if err := g.Wait(); err != nil {
		log.WithError(err).Warn("background task failed")
	}

	s := core.Session()
	log.WithFields(logrus.Fields{
		"frames":  s.Frames,
		"reloads": s.Reloads,
		"time":    s.Time,
	}).Info("session closed")
	return runErr
}

func (a *App) vertexSource() (string, error) {
	if a.cfg.Vertex == "" {
		return shader.DefaultVertex(shader.LangFor(a.cfg.Backend)), nil
	}
	logging.Component(a.log, "app").WithField("path", a.cfg.Vertex).Info("loading custom vertex shader")
	// --decompress applies to the fragment only.
	return shader.Load(a.cfg.Vertex, false)
}
