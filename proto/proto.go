// Package proto defines the messages exchanged between the console, the
// shader watcher and the render core.
package proto

// Signal is a control message from the console to the render core.
type Signal uint8

const (
	SignalPause Signal = iota + 1
	SignalResume
	SignalExit
)

func (s Signal) String() string {
	switch s {
	case SignalPause:
		return "pause"
	case SignalResume:
		return "resume"
	case SignalExit:
		return "exit"
	default:
		return "unknown"
	}
}

// ShaderSource carries the full text of a changed fragment shader.
type ShaderSource struct {
	Path string
	Text string
}
