// Package logging configures the process-wide logrus logger and hands out
// per-component entries.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New returns a text logger writing to out. Debug enables debug-level output.
func New(out io.Writer, debug bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	l.SetLevel(logrus.InfoLevel)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Component returns an entry tagged with the component name.
func Component(l logrus.FieldLogger, name string) *logrus.Entry {
	if l == nil {
		return Discard()
	}
	return l.WithField("component", name)
}

// Discard returns an entry that drops everything.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// OrDiscard returns e, or a discarding entry when e is nil.
func OrDiscard(e *logrus.Entry) *logrus.Entry {
	if e == nil {
		return Discard()
	}
	return e
}
