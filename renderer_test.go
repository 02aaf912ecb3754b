package hostbridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	verrors "github.com/vango-dev/hostbridge/internal/errors"
	"github.com/vango-dev/hostbridge/pkg/native"
	"github.com/vango-dev/hostbridge/pkg/scheduler"
	"github.com/vango-dev/hostbridge/pkg/vdom"
)

type screen struct {
	Base
	renders int
}

func (s *screen) Render() error {
	s.renders++
	return native.RenderChildren(s)
}

type box struct {
	Base
	destroyed int
}

func (b *box) Destroy() error {
	b.destroyed++
	return b.Base.Destroy()
}

var testTypes *TypeMap

func init() {
	testTypes = MustTypeMap(map[string]Factory{
		"box": func(props NodeProps) Node {
			return &box{Base: NewBase(props, testTypes)}
		},
	})
}

func newScreen(props NodeProps) Node {
	return &screen{Base: NewBase(props, testTypes)}
}

func newManualRenderer(opts ...Option) (*Renderer, *scheduler.Manual) {
	q := scheduler.NewManual()
	return New(append([]Option{WithQueue(q)}, opts...)...), q
}

func TestRenderHostElement(t *testing.T) {
	r, q := newManualRenderer()

	handle, err := r.Render(El("box", Props{"title": "hi"}, "hello"), newScreen)
	if err != nil {
		t.Fatal(err)
	}

	node, ok := handle.(*box)
	if !ok {
		t.Fatalf("handle = %T, want *box", handle)
	}
	if node.Content() != "hello" {
		t.Errorf("content = %q, want hello", node.Content())
	}
	if got, _ := r.Registry().Get("root.0"); got != Node(node) {
		t.Error("handle is not the node registered at root.0")
	}

	root := r.Registry().Root().(*screen)
	if root.renders != 0 {
		t.Error("root rendered synchronously")
	}
	q.Flush()
	if root.renders != 1 {
		t.Errorf("renders = %d, want 1", root.renders)
	}
}

type greeting struct{}

func (greeting) Render(props Props) *Element {
	return El("box", nil, "hello ", props["name"])
}

func TestRenderComposite(t *testing.T) {
	r, _ := newManualRenderer()

	c := greeting{}
	handle, err := r.Render(Comp("Greeting", func() Component { return c }, Props{"name": "world"}), newScreen)
	if err != nil {
		t.Fatal(err)
	}
	if handle != any(c) {
		t.Errorf("handle = %v, want the component", handle)
	}

	n, ok := r.Registry().Get("root.0")
	if !ok {
		t.Fatal("rendered box not registered under the composite's id")
	}
	if n.Content() != "hello world" {
		t.Errorf("content = %q", n.Content())
	}
}

func TestRenderInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		el      *Element
		root    Factory
		wantErr error
		code    string
	}{
		{"nil element", nil, newScreen, ErrInvalidElement, "E001"},
		{"empty tag", &Element{}, newScreen, ErrInvalidElement, "E001"},
		{"composite without constructor", &Element{Kind: vdom.KindComposite, Tag: "X"}, newScreen, ErrInvalidElement, "E001"},
		{"nil root", El("box", nil), nil, ErrInvalidRoot, "E002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, q := newManualRenderer()
			_, err := r.Render(tt.el, tt.root)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if verrors.CodeOf(err) != tt.code {
				t.Errorf("code = %q, want %q", verrors.CodeOf(err), tt.code)
			}
			if r.Registry().Root() != nil || r.Registry().Len() != 0 || q.Len() != 0 {
				t.Error("invalid input mutated the renderer")
			}
		})
	}
}

func TestRenderUnknownType(t *testing.T) {
	r, _ := newManualRenderer()
	_, err := r.Render(El("nonexistent", nil), newScreen)
	if !errors.Is(err, native.ErrUnknownType) {
		t.Errorf("err = %v, want ErrUnknownType", err)
	}
	if r.Registry().Len() != 0 {
		t.Error("failed render registered nodes")
	}
}

func TestRenderFailureUnmountsPartialTree(t *testing.T) {
	r, _ := newManualRenderer()

	_, err := r.Render(El("box", nil, El("box", nil), El("nonexistent", nil)), newScreen)
	if !errors.Is(err, native.ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
	if r.Registry().Len() != 0 {
		t.Errorf("registry = %v after failed render", r.Registry().IDs())
	}
	if n := len(r.Registry().Root().Children()); n != 0 {
		t.Errorf("root children = %d, want 0", n)
	}
	if err := r.Unmount(); err != nil {
		t.Errorf("Unmount after failed render: %v", err)
	}
}

func TestRenderAllocatesFreshRootIDs(t *testing.T) {
	r, _ := newManualRenderer()

	first, err := r.Render(El("box", nil), newScreen)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Render(El("box", nil), newScreen)
	if err != nil {
		t.Fatal(err)
	}

	if got, _ := r.Registry().Get("root.1"); got != second {
		t.Error("second render should mount at root.1")
	}
	if got, _ := r.Registry().Get("root.0"); got != first {
		t.Error("first tree should stay registered")
	}
	if len(r.Registry().Root().Children()) != 1 {
		t.Error("new root should only hold the second tree")
	}
}

func TestUnmount(t *testing.T) {
	r, _ := newManualRenderer()
	handle, err := r.Render(El("box", nil, El("box", nil), El("box", nil)), newScreen)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Unmount(); err != nil {
		t.Fatal(err)
	}
	if r.Registry().Len() != 0 {
		t.Errorf("registry = %v after unmount", r.Registry().IDs())
	}
	if handle.(*box).destroyed != 1 {
		t.Errorf("destroyed = %d, want 1", handle.(*box).destroyed)
	}
	if err := r.Unmount(); err != nil {
		t.Errorf("second Unmount: %v", err)
	}
}

func TestRenderMetrics(t *testing.T) {
	promReg := prometheus.NewRegistry()
	r, q := newManualRenderer(WithMetricsRegisterer(promReg))

	if _, err := r.Render(El("box", nil, El("box", nil)), newScreen); err != nil {
		t.Fatal(err)
	}
	q.Flush()

	n, err := testutil.GatherAndCount(promReg, "hostbridge_render_passes_total", "hostbridge_nodes_registered")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("series = %d, want 2", n)
	}
}

func TestRunRequiresLoop(t *testing.T) {
	r, _ := newManualRenderer()
	if err := r.Run(context.Background()); !errors.Is(err, ErrNoLoop) {
		t.Errorf("err = %v, want ErrNoLoop", err)
	}
}

func TestRunRendersOnLoop(t *testing.T) {
	r := New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	rendered := make(chan *screen, 1)
	r.Post(func() {
		if _, err := r.Render(El("box", nil), newScreen); err != nil {
			t.Error(err)
		}
		r.Registry().OnRender(func(root Node, err error) {
			select {
			case rendered <- root.(*screen):
			default:
			}
		})
	})

	select {
	case s := <-rendered:
		if s.renders != 1 {
			t.Errorf("renders = %d, want 1", s.renders)
		}
	case <-ctx.Done():
		t.Fatal("no render pass")
	}

	r.Close()
	if err := <-done; !errors.Is(err, scheduler.ErrClosed) {
		t.Errorf("Run() = %v, want ErrClosed", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	r, _ := newManualRenderer(WithTracerName(""), WithMetricsNamespace("app"))
	cfg := r.Config()
	if cfg.TracerName != DefaultTracerName {
		t.Errorf("TracerName = %q, want %q", cfg.TracerName, DefaultTracerName)
	}
	if cfg.Logger == nil {
		t.Error("Logger not defaulted")
	}
	if cfg.MetricsNamespace != "app" {
		t.Errorf("MetricsNamespace = %q, want app", cfg.MetricsNamespace)
	}
}
