package demo

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/vango-dev/hostbridge/pkg/native"
	"github.com/vango-dev/hostbridge/pkg/vdom"
)

// Env is what a demo needs from the program running it.
type Env struct {
	// Out receives the backend's output lines.
	Out io.Writer

	// Post schedules fn on the renderer's queue. Timers use it to re-enter
	// the tree from their own goroutine.
	Post func(fn func())

	// Interval is the blink period for timed demos.
	Interval time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (e Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Env) printf(format string, args ...any) {
	if e.Out == nil {
		return
	}
	fmt.Fprintf(e.Out, format+"\n", args...)
}

// Demo is a runnable example: an element tree and the root it mounts into.
type Demo struct {
	Name        string
	Description string
	Build       func(env Env) (*vdom.Element, native.Factory)
}

var catalog = map[string]Demo{
	"box": {
		Name:        "box",
		Description: "a box that blinks on a timer",
		Build: func(env Env) (*vdom.Element, native.Factory) {
			return BlinkingBox(env), BoxScreen(env)
		},
	},
	"pancake": {
		Name:        "pancake",
		Description: "a pancake fried from nested ingredients",
		Build: func(env Env) (*vdom.Element, native.Factory) {
			return CoolPancake(env), PancakeFryer(env)
		},
	},
}

// Lookup returns the demo registered under name.
func Lookup(name string) (Demo, bool) {
	d, ok := catalog[name]
	return d, ok
}

// Names returns the registered demo names, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
