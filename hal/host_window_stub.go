//go:build !cgo

package hal

import "fmt"

func NewWindow(_ WindowConfig) (Surface, error) {
	return nil, fmt.Errorf("window mode requires cgo (build/run with CGO_ENABLED=1, or use --backend headless): %w", ErrNotImplemented)
}
