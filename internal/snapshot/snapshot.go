package snapshot

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/vango-dev/hostbridge/internal/registry"
	"github.com/vango-dev/hostbridge/pkg/native"
	"github.com/vango-dev/hostbridge/pkg/vdom"
	"github.com/vmihailenco/msgpack/v5"
)

// Node is the captured state of one native node.
type Node struct {
	ID       string         `json:"id,omitempty" msgpack:"id,omitempty"`
	Tag      string         `json:"tag,omitempty" msgpack:"tag,omitempty"`
	Content  string         `json:"content,omitempty" msgpack:"content,omitempty"`
	Props    map[string]any `json:"props,omitempty" msgpack:"props,omitempty"`
	Children []Node         `json:"children,omitempty" msgpack:"children,omitempty"`
}

// Snapshot is the captured tree after one render pass.
type Snapshot struct {
	Seq   uint64    `json:"seq" msgpack:"seq"`
	Time  time.Time `json:"time" msgpack:"time"`
	Nodes int       `json:"nodes" msgpack:"nodes"`
	Error string    `json:"error,omitempty" msgpack:"error,omitempty"`
	Root  *Node     `json:"root,omitempty" msgpack:"root,omitempty"`
}

// Take captures the tree under reg's root. Nodes are matched to their ids
// by identity, so backend nodes must be pointer types.
func Take(reg *registry.Registry) Snapshot {
	snap := Snapshot{
		Time:  time.Now().UTC(),
		Nodes: reg.Len(),
	}
	root := reg.Root()
	if root == nil {
		return snap
	}

	ids := make(map[native.Node]string, snap.Nodes)
	for _, id := range reg.IDs() {
		if n, ok := reg.Get(id); ok {
			ids[n] = id
		}
	}

	r := capture(root, ids)
	snap.Root = &r
	return snap
}

func capture(n native.Node, ids map[native.Node]string) Node {
	out := Node{
		ID:      ids[n],
		Tag:     native.TagOf(n),
		Content: n.Content(),
		Props:   printable(n.Props()),
	}
	for _, child := range n.Children() {
		out.Children = append(out.Children, capture(child, ids))
	}
	return out
}

// printable drops children and functions and renders other non-primitive
// values with fmt.
func printable(props native.Props) map[string]any {
	var out map[string]any
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == vdom.ChildrenProp {
			continue
		}
		v := props[k]
		if v == nil {
			continue
		}
		switch reflect.TypeOf(v).Kind() {
		case reflect.Func, reflect.Chan, reflect.UnsafePointer:
			continue
		case reflect.Bool, reflect.String,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
		default:
			v = fmt.Sprint(v)
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}

// MarshalJSON encodes s as JSON.
func MarshalJSON(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// MarshalMsgpack encodes s as msgpack.
func MarshalMsgpack(s Snapshot) ([]byte, error) {
	return msgpack.Marshal(s)
}

// UnmarshalMsgpack decodes a msgpack snapshot.
func UnmarshalMsgpack(data []byte) (Snapshot, error) {
	var s Snapshot
	err := msgpack.Unmarshal(data, &s)
	return s, err
}

// Find returns the node with the given id.
func (s Snapshot) Find(id string) (Node, bool) {
	if s.Root == nil {
		return Node{}, false
	}
	return s.Root.find(id)
}

func (n Node) find(id string) (Node, bool) {
	if n.ID == id {
		return n, true
	}
	for _, c := range n.Children {
		if found, ok := c.find(id); ok {
			return found, true
		}
	}
	return Node{}, false
}
