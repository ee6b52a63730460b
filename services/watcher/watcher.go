// Package watcher reloads a shader file when it changes on disk.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"yolo/internal/logging"
	"yolo/internal/shader"
	"yolo/kernel"
	"yolo/proto"
)

const (
	// DefaultDebounce coalesces bursts of file events into one change.
	DefaultDebounce = 2 * time.Second
	// DefaultSettle is waited after a change before reading, so a file
	// still being written is not read half-way.
	DefaultSettle = 100 * time.Millisecond
)

// Options tune the watcher.
type Options struct {
	Debounce   time.Duration
	Settle     time.Duration
	Compressed bool
}

// Watcher observes one shader file and sends its new contents on change.
type Watcher struct {
	path   string
	opts   Options
	reload kernel.Sender[proto.ShaderSource]
	log    *logrus.Entry
	fsw    *fsnotify.Watcher

	load    func(path string, compressed bool) (string, error)
	lastMod time.Time
}

// New starts observing path. The parent directory is watched because
// editors often replace a file instead of writing it in place.
func New(path string, reload kernel.Sender[proto.ShaderSource], log *logrus.Entry, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Settle < 0 {
		opts.Settle = 0
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watcher: resolve %q: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watcher: watch %q: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:   abs,
		opts:   opts,
		reload: reload,
		log:    logging.OrDiscard(log).WithField("path", abs),
		fsw:    fsw,
		load:   shader.Load,
	}, nil
}

// Run delivers reloads until ctx is done. Read failures and watch errors
// are logged and never stop the loop. The underlying watch is closed on
// return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	w.log.WithFields(logrus.Fields{
		"debounce": w.opts.Debounce,
		"settle":   w.opts.Settle,
	}).Info("watching shader")

	var (
		timer    *time.Timer
		debounce <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				w.log.Warn("watch events closed")
				return nil
			}
			if !w.matches(ev) {
				continue
			}
			w.log.WithField("op", ev.Op.String()).Debug("shader file event")
			if debounce == nil {
				timer = time.NewTimer(w.opts.Debounce)
				debounce = timer.C
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.log.Warn("watch errors closed")
				return nil
			}
			w.log.WithError(err).Warn("watch error")

		case <-debounce:
			timer, debounce = nil, nil
			if !w.settle(ctx) {
				return nil
			}
			w.emit()
		}
	}
}

// settle waits opts.Settle, absorbing events from the save being settled
// so they do not arm another debounce. It reports false when ctx is done.
func (w *Watcher) settle(ctx context.Context) bool {
	if w.opts.Settle <= 0 {
		return true
	}
	t := time.NewTimer(w.opts.Settle)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
			return true
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return true
			}
			if w.matches(ev) {
				w.log.WithField("op", ev.Op.String()).Debug("shader file event while settling")
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return true
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

func (w *Watcher) matches(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// emit loads and sends the shader unless its mtime is not newer than the
// last reload sent.
func (w *Watcher) emit() {
	var mod time.Time
	if fi, err := os.Stat(w.path); err == nil {
		mod = fi.ModTime()
		if !w.lastMod.IsZero() && !mod.After(w.lastMod) {
			w.log.Debug("shader unchanged since last reload")
			return
		}
	}
	text, err := w.load(w.path, w.opts.Compressed)
	if err != nil {
		w.log.WithError(err).Error("shader read failed, waiting for next change")
		return
	}
	w.lastMod = mod
	w.reload.Send(proto.ShaderSource{Path: w.path, Text: text})
	w.log.WithField("bytes", len(text)).Info("shader changed")
}
