package bridge

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	verrors "github.com/vango-dev/hostbridge/internal/errors"
	"github.com/vango-dev/hostbridge/internal/registry"
	"github.com/vango-dev/hostbridge/pkg/native"
	"github.com/vango-dev/hostbridge/pkg/reconciler"
	"github.com/vango-dev/hostbridge/pkg/scheduler"
	"github.com/vango-dev/hostbridge/pkg/vdom"
)

// backend is a recording native backend with "box" and "text" nodes and
// a "plate" node whose own type map only knows "box".
type backend struct {
	events []string
	types  *native.TypeMap
	plate  *native.TypeMap
}

func newBackend() *backend {
	b := &backend{}
	b.types = native.MustTypeMap(map[string]native.Factory{
		"box":   b.factory(func() *native.TypeMap { return b.types }),
		"text":  b.factory(func() *native.TypeMap { return nil }),
		"plate": b.factory(func() *native.TypeMap { return b.plate }),
	})
	b.plate = native.MustTypeMap(map[string]native.Factory{
		"box": b.factory(func() *native.TypeMap { return b.types }),
	})
	return b
}

func (b *backend) factory(types func() *native.TypeMap) native.Factory {
	return func(props native.Props) native.Node {
		n := &testNode{backend: b}
		n.Base = native.NewBase(props, types())
		return n
	}
}

func (b *backend) root(props native.Props) native.Node {
	n := &rootNode{}
	n.Base = native.NewBase(props, b.types)
	return n
}

type testNode struct {
	native.Base
	backend *backend
}

func (n *testNode) name() string {
	if s, ok := n.Props()["name"].(string); ok {
		return s
	}
	return n.Tag()
}

func (n *testNode) Update(props native.Props) {
	n.Base.Update(props)
	n.Emit("change", props)
}

func (n *testNode) Destroy() error {
	n.backend.events = append(n.backend.events, "destroy:"+n.name())
	return n.Base.Destroy()
}

type rootNode struct {
	native.Base
	renders int
}

func (n *rootNode) Render() error {
	n.renders++
	return native.RenderChildren(n)
}

type fixture struct {
	t       *testing.T
	backend *backend
	queue   *scheduler.Manual
	reg     *registry.Registry
	rec     *reconciler.Reconciler
	bridge  *Bridge
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, backend: newBackend(), queue: scheduler.NewManual()}
	f.reg = registry.New(f.queue)
	if _, err := f.reg.SetRoot(f.backend.root); err != nil {
		t.Fatal(err)
	}
	f.rec = reconciler.New()
	f.bridge = Inject(f.rec, f.reg)
	return f
}

func (f *fixture) root() *rootNode {
	return f.reg.Root().(*rootNode)
}

func (f *fixture) mount(el *vdom.Element) (reconciler.Instance, error) {
	inst, err := f.rec.Instantiate(el)
	if err != nil {
		return nil, err
	}
	err = f.rec.PerformBatched(func(tx *reconciler.Transaction) error {
		return inst.MountComponent(f.rec.CreateRootID(), tx, context.Background())
	})
	return inst, err
}

func (f *fixture) mustMount(el *vdom.Element) reconciler.Instance {
	f.t.Helper()
	inst, err := f.mount(el)
	if err != nil {
		f.t.Fatal(err)
	}
	return inst
}

func (f *fixture) receive(inst reconciler.Instance, next *vdom.Element) error {
	return f.rec.PerformBatched(func(tx *reconciler.Transaction) error {
		return inst.ReceiveComponent(next, tx, context.Background())
	})
}

func (f *fixture) node(id string) *testNode {
	f.t.Helper()
	n, ok := f.reg.Get(id)
	if !ok {
		f.t.Fatalf("no node registered at %s (have %v)", id, f.reg.IDs())
	}
	return n.(*testNode)
}

// childNames lists the names of n's native children in order.
func childNames(n native.Node) string {
	var names []string
	for _, c := range n.Children() {
		names = append(names, c.(*testNode).name())
	}
	return strings.Join(names, " ")
}

func TestPartition(t *testing.T) {
	child := vdom.El("box", nil)
	tests := []struct {
		name        string
		children    []any
		wantContent string
		wantHas     bool
		wantElems   int
		wantErr     bool
	}{
		{"mixed", []any{"a", 1, child}, "a1", true, 1, false},
		{"floats and uints", []any{1.5, uint8(2), int64(-3)}, "1.52-3", true, 0, false},
		{"empty string", []any{""}, "", true, 0, false},
		{"elements only", []any{child, child}, "", false, 2, false},
		{"ignored values", []any{true, nil, (*vdom.Element)(nil)}, "", false, 0, false},
		{"none", nil, "", false, 0, false},
		{"struct child", []any{"a", struct{}{}}, "", false, 0, true},
		{"map child", []any{map[string]int{}}, "", false, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, structural, has, err := Partition(tt.children)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidChild) || verrors.CodeOf(err) != "E001" {
					t.Errorf("err = %v, want E001 wrapping ErrInvalidChild", err)
				}
			}
			if content != tt.wantContent {
				t.Errorf("content = %q, want %q", content, tt.wantContent)
			}
			if has != tt.wantHas {
				t.Errorf("hasContent = %v, want %v", has, tt.wantHas)
			}
			if len(structural) != tt.wantElems {
				t.Errorf("structural = %d, want %d", len(structural), tt.wantElems)
			}
		})
	}
}

func TestMountRegistersNode(t *testing.T) {
	f := newFixture(t)
	inst := f.mustMount(vdom.El("box", vdom.Props{"name": "a"}))

	node, ok := f.reg.Get("root.0")
	if !ok {
		t.Fatal("root.0 not registered")
	}
	if inst.PublicInstance() != node {
		t.Error("PublicInstance() should return the registered node")
	}
	if got := f.root().Children(); len(got) != 1 || got[0] != node {
		t.Errorf("root children = %v, want the mounted node", got)
	}
	if native.TagOf(node) != "box" {
		t.Errorf("tag = %q, want box", native.TagOf(node))
	}
	if id := inst.(*HostComponent).ID(); id != "root.0" {
		t.Errorf("ID() = %q, want root.0", id)
	}
}

func TestMountContentAndChildren(t *testing.T) {
	f := newFixture(t)
	f.mustMount(vdom.El("box", nil, "a", 1, vdom.El("text", nil)))

	node := f.node("root.0")
	if node.Content() != "a1" {
		t.Errorf("content = %q, want a1", node.Content())
	}
	if len(node.Children()) != 1 {
		t.Fatalf("children = %d, want 1", len(node.Children()))
	}
	if node.Children()[0] != f.node("root.0.0") {
		t.Error("structural child not registered at root.0.0")
	}
}

func TestMountKeyedChildIDs(t *testing.T) {
	f := newFixture(t)
	f.mustMount(vdom.El("box", nil,
		vdom.El("text", vdom.Props{"key": "a.b"}),
		vdom.El("box", nil, vdom.El("text", nil)),
	))

	want := []string{"root.0", "root.0.$a=1b", "root.0.1", "root.0.1.0"}
	if ids := f.reg.IDs(); !reflect.DeepEqual(ids, want) {
		t.Errorf("IDs() = %v, want %v", ids, want)
	}
}

func TestUpdateKeepsIdentity(t *testing.T) {
	f := newFixture(t)
	inst := f.mustMount(vdom.El("box", vdom.Props{"name": "a", "size": 1}))
	before := inst.PublicInstance()

	for _, size := range []int{2, 3} {
		if err := f.receive(inst, vdom.El("box", vdom.Props{"name": "a", "size": size})); err != nil {
			t.Fatal(err)
		}
	}

	if inst.PublicInstance() != before {
		t.Error("update replaced the node backing root.0")
	}
	if got := f.node("root.0").Props()["size"]; got != 3 {
		t.Errorf("size = %v, want 3", got)
	}
}

func TestUpdatePassesChildrenProp(t *testing.T) {
	f := newFixture(t)
	inst := f.mustMount(vdom.El("box", nil))
	if err := f.receive(inst, vdom.El("box", nil, "hi")); err != nil {
		t.Fatal(err)
	}

	children, ok := f.node("root.0").Props()[vdom.ChildrenProp].([]any)
	if !ok || len(children) != 1 {
		t.Errorf("children prop = %v, want [hi]", f.node("root.0").Props()[vdom.ChildrenProp])
	}
}

func TestUpdateContent(t *testing.T) {
	f := newFixture(t)
	inst := f.mustMount(vdom.El("box", nil, "one"))

	steps := []struct {
		next *vdom.Element
		want string
	}{
		{vdom.El("box", nil, "two", 2), "two2"},
		{vdom.El("box", nil, vdom.El("text", nil)), ""},
		{vdom.El("box", nil, "three"), "three"},
	}
	for _, step := range steps {
		if err := f.receive(inst, step.next); err != nil {
			t.Fatal(err)
		}
		if got := f.node("root.0").Content(); got != step.want {
			t.Errorf("content = %q, want %q", got, step.want)
		}
	}
}

func TestUpdateChildren(t *testing.T) {
	f := newFixture(t)
	inst := f.mustMount(vdom.El("box", vdom.Props{"name": "parent"},
		vdom.El("text", vdom.Props{"key": "a", "name": "a"}),
		vdom.El("text", vdom.Props{"key": "b", "name": "b"}),
	))
	a := f.node("root.0.$a")

	err := f.receive(inst, vdom.El("box", vdom.Props{"name": "parent"},
		vdom.El("text", vdom.Props{"key": "a", "name": "a"}),
		vdom.El("text", vdom.Props{"key": "c", "name": "c"}),
	))
	if err != nil {
		t.Fatal(err)
	}

	if f.node("root.0.$a") != a {
		t.Error("kept child was recreated")
	}
	if _, ok := f.reg.Get("root.0.$b"); ok {
		t.Error("removed child still registered")
	}
	c := f.node("root.0.$c")

	parent := f.node("root.0")
	if got := parent.Children(); len(got) != 2 || got[0] != a || got[1] != c {
		t.Errorf("parent children = %v, want [a c]", got)
	}
	if strings.Join(f.backend.events, " ") != "destroy:b" {
		t.Errorf("events = %v, want [destroy:b]", f.backend.events)
	}
}

func TestUnmountDepthFirst(t *testing.T) {
	f := newFixture(t)
	inst := f.mustMount(vdom.El("box", vdom.Props{"name": "parent"},
		vdom.El("text", vdom.Props{"name": "a"}),
		vdom.El("text", vdom.Props{"name": "b"}),
	))
	parent := f.node("root.0")

	if err := f.rec.PerformBatched(func(*reconciler.Transaction) error {
		return inst.UnmountComponent()
	}); err != nil {
		t.Fatal(err)
	}

	want := []string{"destroy:a", "destroy:b", "destroy:parent"}
	if !reflect.DeepEqual(f.backend.events, want) {
		t.Errorf("events = %v, want %v", f.backend.events, want)
	}
	if f.reg.Len() != 0 {
		t.Errorf("registry still holds %v", f.reg.IDs())
	}
	if !parent.Destroyed() {
		t.Error("parent not destroyed")
	}
	if len(f.root().Children()) != 0 {
		t.Error("node still attached to the root")
	}
	if inst.PublicInstance() != nil {
		t.Error("PublicInstance() should be nil after unmount")
	}
}

func TestUnknownTypeLeavesRegistryUntouched(t *testing.T) {
	f := newFixture(t)

	_, err := f.mount(vdom.El("nonexistent", nil))
	if !errors.Is(err, native.ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}
	if verrors.CodeOf(err) != "E010" {
		t.Errorf("code = %q, want E010", verrors.CodeOf(err))
	}
	var be *verrors.BridgeError
	if errors.As(err, &be) && (be.Node == nil || be.Node.ID != "root.0") {
		t.Errorf("node ref = %v, want root.0", be.Node)
	}
	if f.reg.Len() != 0 {
		t.Errorf("registry = %v, want empty", f.reg.IDs())
	}
	if len(f.root().Children()) != 0 {
		t.Error("root gained a child")
	}
}

func TestRootTypeMapFallback(t *testing.T) {
	f := newFixture(t)
	f.mustMount(vdom.El("plate", nil, vdom.El("box", nil), vdom.El("text", nil)))

	if native.TagOf(f.node("root.0.1")) != "text" {
		t.Error("text under plate should resolve through the root's type map")
	}
	if len(f.node("root.0").Children()) != 2 {
		t.Error("fallback node not attached to its parent")
	}
}

func TestRenderCoalescedPerBatch(t *testing.T) {
	f := newFixture(t)
	f.mustMount(vdom.El("box", nil, vdom.El("text", nil), vdom.El("text", nil)))

	if f.root().renders != 0 {
		t.Fatal("render ran during mount")
	}
	f.queue.Flush()
	if f.root().renders != 1 {
		t.Errorf("renders = %d, want 1", f.root().renders)
	}
}

func TestEventDispatch(t *testing.T) {
	f := newFixture(t)

	var clicks []any
	var focused []any
	f.mustMount(vdom.El("box", vdom.Props{
		"onClick": func(args ...any) { clicks = append(clicks, args...) },
		"onFocus": func(args ...any) { focused = args },
	}))
	node := f.node("root.0")

	node.Emit("click", 1, 2)
	node.Emit("focus")
	node.Emit("scroll")
	node.Emit("unknown event")

	if !reflect.DeepEqual(clicks, []any{1, 2}) {
		t.Errorf("click args = %v, want [1 2]", clicks)
	}
	if len(focused) != 1 || focused[0] != native.Node(node) {
		t.Errorf("focus args = %v, want [node]", focused)
	}
}

func TestEventDispatchUsesCurrentProps(t *testing.T) {
	f := newFixture(t)

	var got string
	inst := f.mustMount(vdom.El("box", vdom.Props{"onPress": func() { got = "first" }}))
	if err := f.receive(inst, vdom.El("box", vdom.Props{"onPress": func() { got = "second" }})); err != nil {
		t.Fatal(err)
	}

	f.node("root.0").Emit("press")
	if got != "second" {
		t.Errorf("handler = %q, want second", got)
	}
}

func TestEventSuppressedDuringUpdate(t *testing.T) {
	f := newFixture(t)

	changes := 0
	onChange := func() { changes++ }
	inst := f.mustMount(vdom.El("box", vdom.Props{"onChange": onChange}))

	// testNode emits "change" from Update.
	if err := f.receive(inst, vdom.El("box", vdom.Props{"onChange": onChange, "v": 1})); err != nil {
		t.Fatal(err)
	}
	if changes != 0 {
		t.Errorf("change handler ran %d times during update", changes)
	}

	f.node("root.0").Emit("change")
	if changes != 1 {
		t.Errorf("changes = %d after explicit emit, want 1", changes)
	}
}

func TestListenerDetachedOnUnmount(t *testing.T) {
	f := newFixture(t)

	clicks := 0
	inst := f.mustMount(vdom.El("box", vdom.Props{"onClick": func() { clicks++ }}))
	node := f.node("root.0")
	if err := inst.UnmountComponent(); err != nil {
		t.Fatal(err)
	}

	node.Emit("click")
	if clicks != 0 {
		t.Error("handler ran after unmount")
	}
}

func TestLifecycleOrder(t *testing.T) {
	f := newFixture(t)
	inst, err := f.rec.Instantiate(vdom.El("box", nil))
	if err != nil {
		t.Fatal(err)
	}

	if err := f.receive(inst, vdom.El("box", nil)); !errors.Is(err, ErrNotMounted) {
		t.Errorf("receive before mount: err = %v, want ErrNotMounted", err)
	}
	if err := inst.UnmountComponent(); !errors.Is(err, ErrNotMounted) {
		t.Errorf("unmount before mount: err = %v, want ErrNotMounted", err)
	}

	mountAt := func(id string) error {
		return f.rec.PerformBatched(func(tx *reconciler.Transaction) error {
			return inst.MountComponent(id, tx, context.Background())
		})
	}
	if err := mountAt("root.0"); err != nil {
		t.Fatal(err)
	}
	if err := mountAt("root.1"); !errors.Is(err, ErrAlreadyMounted) {
		t.Errorf("second mount: err = %v, want ErrAlreadyMounted", err)
	}
	if err := inst.UnmountComponent(); err != nil {
		t.Fatal(err)
	}
	if err := inst.UnmountComponent(); !errors.Is(err, ErrNotMounted) {
		t.Errorf("second unmount: err = %v, want ErrNotMounted", err)
	}
}

func TestMountWithoutParent(t *testing.T) {
	f := newFixture(t)
	inst, _ := f.rec.Instantiate(vdom.El("box", nil))

	err := f.rec.PerformBatched(func(tx *reconciler.Transaction) error {
		return inst.MountComponent("root.0.4", tx, context.Background())
	})
	if !errors.Is(err, registry.ErrMissingParent) {
		t.Errorf("err = %v, want ErrMissingParent", err)
	}
	if f.reg.Len() != 0 {
		t.Error("registry mutated by failed mount")
	}
}

// counter renders its count as the content of a box.
type counter struct {
	n       int
	updater vdom.Updater
}

func (c *counter) Render(vdom.Props) *vdom.Element {
	return vdom.El("box", nil, "count: ", c.n)
}

func (c *counter) ComponentDidMount(u vdom.Updater) { c.updater = u }

func TestCompositeForceUpdate(t *testing.T) {
	f := newFixture(t)
	c := &counter{}
	inst := f.mustMount(vdom.Comp("Counter", func() vdom.Component { return c }, nil))
	f.queue.Flush()

	if inst.PublicInstance() != c {
		t.Error("composite PublicInstance() should be the component")
	}
	node := f.node("root.0")
	if node.Content() != "count: 0" {
		t.Errorf("content = %q", node.Content())
	}

	c.n = 5
	c.updater.ForceUpdate()
	c.updater.ForceUpdate()

	if f.node("root.0") != node {
		t.Error("force update replaced the node")
	}
	if node.Content() != "count: 5" {
		t.Errorf("content = %q, want count: 5", node.Content())
	}
	f.queue.Flush()
	if f.root().renders != 2 {
		t.Errorf("renders = %d, want 2", f.root().renders)
	}
}

func TestInject(t *testing.T) {
	q := scheduler.NewManual()
	reg := registry.New(q)
	r := reconciler.New()

	Inject(r, reg)
	Inject(r, reg)

	if !r.Injected() {
		t.Error("Injected() = false after Inject")
	}
	b := Inject(r, reg)
	if r.Environment() != reconciler.Environment(b) {
		t.Errorf("Environment() = %T, want the injected *Bridge", r.Environment())
	}
}

func TestInvalidChildRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.mount(vdom.El("box", nil, vdom.El("text", nil), struct{}{}))
	if !errors.Is(err, ErrInvalidChild) {
		t.Fatalf("err = %v, want ErrInvalidChild", err)
	}
	var be *verrors.BridgeError
	if !errors.As(err, &be) || be.Code != "E001" || be.Node == nil || be.Node.ID != "root.0" {
		t.Errorf("err = %#v, want E001 at root.0", err)
	}
	if f.reg.Len() != 0 || len(f.root().Children()) != 0 {
		t.Errorf("registry = %v after rejected mount", f.reg.IDs())
	}

	inst := f.mustMount(vdom.El("box", vdom.Props{"name": "a"}, "one"))
	err = f.receive(inst, vdom.El("box", vdom.Props{"name": "b"}, []int{1}))
	if verrors.CodeOf(err) != "E001" {
		t.Fatalf("update err = %v, want E001", err)
	}
	if got := f.node("root.1"); got.name() != "a" || got.Content() != "one" {
		t.Errorf("rejected update changed the node: name %q content %q", got.name(), got.Content())
	}
}

func TestChildOrderFollowsElements(t *testing.T) {
	text := func(name string) *vdom.Element {
		return vdom.El("text", vdom.Props{"name": name})
	}
	keyed := func(key string) *vdom.Element {
		return vdom.El("text", vdom.Props{"key": key, "name": key})
	}
	tests := []struct {
		name  string
		steps [][]any
		want  string
	}{
		{
			name: "unkeyed middle replaced by other type",
			steps: [][]any{
				{text("a"), text("b"), text("c")},
				{text("a"), vdom.El("box", vdom.Props{"name": "B"}), text("c")},
			},
			want: "a B c",
		},
		{
			name: "keyed move with insert",
			steps: [][]any{
				{keyed("a"), keyed("b")},
				{keyed("c"), keyed("b"), keyed("a")},
			},
			want: "c b a",
		},
		{
			name: "keyed reverse",
			steps: [][]any{
				{keyed("a"), keyed("b"), keyed("c")},
				{keyed("c"), keyed("b"), keyed("a")},
			},
			want: "c b a",
		},
		{
			name: "unkeyed tail insert",
			steps: [][]any{
				{text("a")},
				{text("a"), text("b")},
			},
			want: "a b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			inst := f.mustMount(vdom.El("box", vdom.Props{"name": "parent"}, tt.steps[0]...))
			for _, step := range tt.steps[1:] {
				if err := f.receive(inst, vdom.El("box", vdom.Props{"name": "parent"}, step...)); err != nil {
					t.Fatal(err)
				}
			}
			if got := childNames(f.node("root.0")); got != tt.want {
				t.Errorf("children = %s, want %s", got, tt.want)
			}
		})
	}
}

// swapper renders a text node until swapped, then a box.
type swapper struct {
	swapped bool
	updater vdom.Updater
}

func (s *swapper) Render(vdom.Props) *vdom.Element {
	if s.swapped {
		return vdom.El("box", vdom.Props{"name": "B"})
	}
	return vdom.El("text", vdom.Props{"name": "b"})
}

func (s *swapper) ComponentDidMount(u vdom.Updater) { s.updater = u }

func TestCompositeReplacementKeepsPosition(t *testing.T) {
	f := newFixture(t)
	s := &swapper{}
	f.mustMount(vdom.El("box", vdom.Props{"name": "parent"},
		vdom.El("text", vdom.Props{"name": "a"}),
		vdom.Comp("Swapper", func() vdom.Component { return s }, nil),
		vdom.El("text", vdom.Props{"name": "c"}),
	))
	if got := childNames(f.node("root.0")); got != "a b c" {
		t.Fatalf("children = %s, want a b c", got)
	}

	s.swapped = true
	s.updater.ForceUpdate()

	if got := childNames(f.node("root.0")); got != "a B c" {
		t.Errorf("children = %s, want a B c", got)
	}
	if f.node("root.0.1").name() != "B" {
		t.Errorf("root.0.1 = %s, want B", f.node("root.0.1").name())
	}
	if h, ok := f.bridge.Host("root.0"); !ok || h.ID() != "root.0" {
		t.Error("mounted parent host not tracked by the bridge")
	}
}

func TestBridgeForgetsUnmountedHosts(t *testing.T) {
	f := newFixture(t)
	inst := f.mustMount(vdom.El("box", nil, vdom.El("text", nil)))
	if _, ok := f.bridge.Host("root.0.0"); !ok {
		t.Fatal("child host not tracked")
	}
	if err := inst.UnmountComponent(); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"root.0", "root.0.0"} {
		if _, ok := f.bridge.Host(id); ok {
			t.Errorf("host %s still tracked after unmount", id)
		}
	}
}
