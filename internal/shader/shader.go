// Package shader loads shader sources from disk and provides the built-in
// vertex stages for each backend.
package shader

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Lang is a shading language understood by one of the surfaces.
type Lang uint8

const (
	LangKage Lang = iota + 1
	LangWGSL
)

func (l Lang) String() string {
	switch l {
	case LangKage:
		return "kage"
	case LangWGSL:
		return "wgsl"
	default:
		return "unknown"
	}
}

//go:embed default.kage
var defaultKage string

//go:embed default.wgsl
var defaultWGSL string

// DefaultVertex returns the built-in vertex stage for lang.
//
// For Kage it is the package clause plus the uniform declarations; the
// fragment file supplies func Fragment. For WGSL it declares the uniform
// block and vs_main; the fragment file supplies fs_main.
func DefaultVertex(lang Lang) string {
	switch lang {
	case LangKage:
		return defaultKage
	case LangWGSL:
		return defaultWGSL
	default:
		return ""
	}
}

// LangFor maps a backend name to its shading language.
func LangFor(backend string) Lang {
	if strings.EqualFold(backend, "headless") {
		return LangWGSL
	}
	return LangKage
}

// Load reads the whole shader at path. When compressed is set the file is
// a gzip stream.
func Load(path string, compressed bool) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("load shader %q: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("load shader %q: decompress: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("load shader %q: %w", path, err)
	}
	return string(b), nil
}
