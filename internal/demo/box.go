package demo

import (
	"sync"
	"time"

	"github.com/vango-dev/hostbridge/pkg/native"
	"github.com/vango-dev/hostbridge/pkg/vdom"
)

// Box logs its visibility every time it renders.
type Box struct {
	native.Base
	env Env
}

// Render implements native.Node.
func (b *Box) Render() error {
	state := "invisible"
	if visible, _ := b.Props()["visible"].(bool); visible {
		state = "visible"
	}
	b.env.printf("x rendering %s box", state)
	return b.Base.Render()
}

// BoxScreen returns the root factory for the box demo. Its type map
// knows only "box".
func BoxScreen(env Env) native.Factory {
	types := native.MustTypeMap(map[string]native.Factory{
		"box": func(props native.Props) native.Node {
			return &Box{Base: native.NewBase(props, nil), env: env}
		},
	})
	return func(props native.Props) native.Node {
		b := native.NewBase(props, types)
		return &b
	}
}

// BlinkingBox returns a composite that flips a box's visibility every
// env.Interval. The box starts invisible.
func BlinkingBox(env Env) *vdom.Element {
	return vdom.Comp("BlinkingBox", func() vdom.Component {
		return &blinkingBox{env: env}
	}, nil)
}

type blinkingBox struct {
	env     Env
	visible bool

	stopOnce sync.Once
	stop     chan struct{}
}

func (b *blinkingBox) Render(vdom.Props) *vdom.Element {
	return vdom.El("box", vdom.Props{"visible": b.visible})
}

func (b *blinkingBox) ComponentDidMount(u vdom.Updater) {
	if b.env.Post == nil || b.env.Interval <= 0 {
		return
	}
	b.stop = make(chan struct{})
	go b.tick(u, b.stop)
}

func (b *blinkingBox) tick(u vdom.Updater, stop <-chan struct{}) {
	ticker := time.NewTicker(b.env.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			b.env.Post(func() {
				b.visible = !b.visible
				u.ForceUpdate()
			})
		}
	}
}

func (b *blinkingBox) ComponentWillUnmount() {
	if b.stop == nil {
		return
	}
	b.stopOnce.Do(func() { close(b.stop) })
}
