// Package console turns operator input lines into control signals for the
// render loop.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"yolo/internal/logging"
	"yolo/kernel"
	"yolo/proto"
)

// ErrInputClosed is returned by Run when the input stream ends before exit.
var ErrInputClosed = errors.New("console: input closed")

// Options tune console behaviour.
type Options struct {
	// Debug echoes every received line before it is interpreted.
	Debug bool
}

// Console reads one command per line and forwards control signals.
type Console struct {
	in      *bufio.Reader
	out     io.Writer
	control kernel.Sender[proto.Signal]
	opts    Options
	log     *logrus.Entry
	reg     *registry
}

// New creates a console reading from in and reporting to out.
func New(in io.Reader, out io.Writer, control kernel.Sender[proto.Signal], log *logrus.Entry, opts Options) *Console {
	return &Console{
		in:      bufio.NewReader(in),
		out:     out,
		control: control,
		opts:    opts,
		log:     logging.OrDiscard(log),
		reg:     defaultRegistry(),
	}
}

// Run blocks reading lines until "exit" is sent or the input fails.
//
// It returns nil after forwarding exit, ErrInputClosed at end of input and a
// wrapped error for any other read failure. It never touches render state.
func (c *Console) Run() error {
	for {
		line, err := c.in.ReadString('\n')
		if line != "" {
			if c.handle(strings.TrimRight(line, "\r\n")) {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ErrInputClosed
			}
			return fmt.Errorf("console: read: %w", err)
		}
	}
}

// handle interprets one line and reports whether the console should stop.
func (c *Console) handle(line string) bool {
	if c.opts.Debug {
		fmt.Fprintf(c.out, "> %s\n", line)
		c.log.WithField("line", line).Debug("console input")
	}
	if line == "" {
		return false
	}

	cmd, ok := c.reg.resolve(line)
	if !ok {
		fmt.Fprintf(c.out, "Unknown command: %q\n", line)
		if hint, ok := c.reg.suggest(line); ok {
			fmt.Fprintf(c.out, "Did you mean %q?\n", hint)
		}
		c.PrintHelp()
		return false
	}

	if cmd.Signal == 0 {
		c.PrintHelp()
		return false
	}

	c.control.Send(cmd.Signal)
	c.log.WithField("signal", cmd.Signal).Debug("control signal sent")
	return cmd.Signal == proto.SignalExit
}

// PrintHelp writes the command list.
func (c *Console) PrintHelp() {
	fmt.Fprintln(c.out, "Commands:")
	for _, cmd := range c.reg.commands() {
		fmt.Fprintf(c.out, "  %-7s %s\n", cmd.Name, cmd.Desc)
	}
}
