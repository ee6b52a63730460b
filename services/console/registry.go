package console

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"yolo/proto"
)

// maxSuggestDistance bounds the edit distance of a "did you mean" hint.
const maxSuggestDistance = 2

type command struct {
	Name   string
	Desc   string
	Signal proto.Signal // 0 when the command sends nothing
}

type registry struct {
	order  []string
	byName map[string]command
}

func newRegistry() *registry {
	return &registry{byName: make(map[string]command)}
}

func (r *registry) register(cmd command) error {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if cmd.Name == "" {
		return fmt.Errorf("console registry: empty command name")
	}
	if _, ok := r.byName[cmd.Name]; ok {
		return fmt.Errorf("console registry: duplicate command %q", cmd.Name)
	}
	r.byName[cmd.Name] = cmd
	r.order = append(r.order, cmd.Name)
	return nil
}

func (r *registry) resolve(name string) (command, bool) {
	cmd, ok := r.byName[name]
	return cmd, ok
}

// commands returns the registered commands in registration order.
func (r *registry) commands() []command {
	out := make([]command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// suggest returns the closest command name, if any is close enough.
func (r *registry) suggest(name string) (string, bool) {
	best, bestDist := "", maxSuggestDistance+1
	for _, candidate := range r.order {
		d := levenshtein.ComputeDistance(name, candidate)
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best, best != ""
}

func defaultRegistry() *registry {
	r := newRegistry()
	for _, cmd := range []command{
		{Name: "pause", Desc: "Pause rendering (time stops advancing).", Signal: proto.SignalPause},
		{Name: "resume", Desc: "Resume rendering.", Signal: proto.SignalResume},
		{Name: "exit", Desc: "Close the window and quit.", Signal: proto.SignalExit},
		{Name: "help", Desc: "Show this list."},
	} {
		if err := r.register(cmd); err != nil {
			panic(err)
		}
	}
	return r
}
