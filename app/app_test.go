package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"yolo/hal"
	"yolo/internal/config"
	"yolo/services/watcher"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeProgram struct{ vertex, fragment string }

func (p *fakeProgram) Release() {}

// fakeSurface steps the loop every millisecond and records compiled
// fragments.
type fakeSurface struct {
	mu       sync.Mutex
	compiled []string
	vertices []string
	frames   int
}

func (s *fakeSurface) Compile(vertex, fragment string) (hal.Program, error) {
	if strings.Contains(fragment, "syntax error") {
		return nil, &hal.CompileError{Backend: "fake", Err: errors.New("syntax error")}
	}
	s.mu.Lock()
	s.compiled = append(s.compiled, fragment)
	s.vertices = append(s.vertices, vertex)
	s.mu.Unlock()
	return &fakeProgram{vertex: vertex, fragment: fragment}, nil
}

func (s *fakeSurface) Draw(hal.Program, hal.Uniforms) error { return nil }

func (s *fakeSurface) Present() error {
	s.mu.Lock()
	s.frames++
	s.mu.Unlock()
	return nil
}

func (s *fakeSurface) PollEvents(dst []hal.Event) []hal.Event { return dst }

func (s *fakeSurface) Run(step func() (bool, error)) error {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		done, err := step()
		if err != nil || done {
			return err
		}
		time.Sleep(time.Millisecond)
	}
	return errors.New("fake surface: session never closed")
}

func (s *fakeSurface) compiledSources() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.compiled...)
}

func (s *fakeSurface) compiledVertices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.vertices...)
}

func writeShader(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frag.kage")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func testConfig(fragment string) config.Config {
	return config.Config{
		Fragment: fragment,
		Width:    64,
		Height:   32,
		TimeStep: 0.01,
		Backend:  config.BackendWindow,
	}
}

func newTestApp(cfg config.Config, in string, out *syncBuffer) (*App, *fakeSurface) {
	surface := &fakeSurface{}
	a := New(cfg, nil, strings.NewReader(in), out)
	a.openSurface = func(context.Context, config.Config) (hal.Surface, error) { return surface, nil }
	return a, surface
}

func TestInteractiveExit(t *testing.T) {
	cfg := testConfig(writeShader(t, "frag v1"))
	cfg.Interactive = true

	var out syncBuffer
	a, surface := newTestApp(cfg, "pause\nresume\nexit\n", &out)
	require.NoError(t, a.Run(context.Background()))

	require.Equal(t, []string{"frag v1"}, surface.compiledSources())
	text := out.String()
	require.Contains(t, text, "Fragment Shader:")
	require.Contains(t, text, cfg.Fragment)
	require.Contains(t, text, "Commands:")
}

func TestDecompressAppliesToFragmentOnly(t *testing.T) {
	dir := t.TempDir()
	frag := filepath.Join(dir, "frag.kage.gz")
	f, err := os.Create(frag)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte("frag gz"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	vert := filepath.Join(dir, "quad.vert")
	require.NoError(t, os.WriteFile(vert, []byte("plain vertex"), 0o644))

	cfg := testConfig(frag)
	cfg.Vertex = vert
	cfg.Decompress = true
	cfg.Interactive = true

	var out syncBuffer
	a, surface := newTestApp(cfg, "exit\n", &out)
	require.NoError(t, a.Run(context.Background()))

	require.Equal(t, []string{"frag gz"}, surface.compiledSources())
	require.Equal(t, []string{"plain vertex"}, surface.compiledVertices())
}

func TestCancelStopsSession(t *testing.T) {
	cfg := testConfig(writeShader(t, "frag v1"))

	var out syncBuffer
	a, _ := newTestApp(cfg, "", &out)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- a.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestMissingFragmentIsFatal(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "missing.kage"))

	var out syncBuffer
	a, surface := newTestApp(cfg, "", &out)
	err := a.Run(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Empty(t, surface.compiledSources())
	require.Empty(t, out.String())
}

func TestInitialCompileFailureIsFatal(t *testing.T) {
	cfg := testConfig(writeShader(t, "syntax error"))

	var out syncBuffer
	a, _ := newTestApp(cfg, "", &out)
	err := a.Run(context.Background())

	var ce *hal.CompileError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "fake", ce.Backend)
}

func TestSurfaceFailureIsFatal(t *testing.T) {
	cfg := testConfig(writeShader(t, "frag v1"))

	var out syncBuffer
	a := New(cfg, nil, strings.NewReader(""), &out)
	boom := errors.New("no display")
	a.openSurface = func(context.Context, config.Config) (hal.Surface, error) { return nil, boom }
	require.ErrorIs(t, a.Run(context.Background()), boom)
}

func TestReloadSwapsProgram(t *testing.T) {
	path := writeShader(t, "frag v1")
	cfg := testConfig(path)
	cfg.Reload = true

	var out syncBuffer
	a, surface := newTestApp(cfg, "", &out)
	a.watch = watcher.Options{Debounce: 20 * time.Millisecond, Settle: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- a.Run(ctx) }()

	// Wait for the watcher to be armed.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("frag v2"), 0o644))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Shader reloaded")
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-errc)
	require.Equal(t, []string{"frag v1", "frag v2"}, surface.compiledSources())
}

func TestOpenSurfaceUnknownBackend(t *testing.T) {
	cfg := testConfig("frag.kage")
	cfg.Backend = "vulkan"
	_, err := OpenSurface(context.Background(), cfg)
	require.Error(t, err)
}
