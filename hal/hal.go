package hal

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is returned by backends missing from this build.
var ErrNotImplemented = errors.New("not implemented")

// Program is a compiled shader program owned by the render loop.
type Program interface {
	// Release frees backend resources. The program must not be drawn afterwards.
	Release()
}

// CompileError reports a shader that the backend refused to compile.
type CompileError struct {
	Backend string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: compile shader: %v", e.Backend, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Uniforms is the per-frame input supplied to the fragment shader.
type Uniforms struct {
	Resolution [2]float32
	Time       float32
	Mouse      [2]float32
}

// EventKind identifies a window-system event.
type EventKind uint8

const (
	EventPointerMoved EventKind = iota + 1
	EventCloseRequested
)

func (k EventKind) String() string {
	switch k {
	case EventPointerMoved:
		return "pointer_moved"
	case EventCloseRequested:
		return "close_requested"
	default:
		return "unknown"
	}
}

// Event is a window-system event. X and Y are raw window coordinates in
// pixels for EventPointerMoved, origin at the top-left corner.
type Event struct {
	Kind EventKind
	X, Y float64
}

// Surface is a presentable render target plus its event source.
//
// All methods except Run are called from the step function passed to Run.
type Surface interface {
	Compile(vertex, fragment string) (Program, error)
	Draw(p Program, u Uniforms) error
	Present() error
	PollEvents(dst []Event) []Event

	// Run calls step once per frame until it reports done or fails.
	// It owns frame pacing.
	Run(step func() (done bool, err error)) error
}

// WindowConfig describes the window to open.
type WindowConfig struct {
	Title      string
	Width      int
	Height     int
	VSync      bool
	MSAA       int
	Borderless bool
	Fullscreen bool
}

// Vertex is a quad corner in normalized device coordinates.
type Vertex struct {
	X, Y float32
}

// FullscreenQuad covers [-1,1]x[-1,1] as a four-vertex triangle strip.
var FullscreenQuad = [4]Vertex{
	{X: -1, Y: 1},
	{X: 1, Y: 1},
	{X: -1, Y: -1},
	{X: 1, Y: -1},
}

// QuadStripIndices expands the strip into two triangles.
var QuadStripIndices = [6]uint16{0, 1, 2, 2, 1, 3}
