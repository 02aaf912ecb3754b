package vdom

// El creates a host element.
func El(tag string, props Props, children ...any) *Element {
	return &Element{
		Kind:  KindHost,
		Tag:   tag,
		Props: withChildren(props, children),
		Key:   keyOf(props),
	}
}

// Comp creates a composite element. newFn is called once per mounted instance.
func Comp(name string, newFn func() Component, props Props, children ...any) *Element {
	return &Element{
		Kind:  KindComposite,
		Tag:   name,
		Props: withChildren(props, children),
		Key:   keyOf(props),
		New:   newFn,
	}
}

// Func creates a composite element from a stateless render function.
func Func(name string, fn RenderFunc, props Props, children ...any) *Element {
	return Comp(name, func() Component { return fn }, props, children...)
}

// withChildren copies props and stores the flattened children.
func withChildren(props Props, children []any) Props {
	out := make(Props, len(props)+1)
	for k, v := range props {
		out[k] = v
	}
	if len(children) > 0 {
		out[ChildrenProp] = Flatten(children)
	} else if _, ok := out[ChildrenProp]; ok {
		out[ChildrenProp] = Flatten(out[ChildrenProp])
	}
	return out
}

func keyOf(props Props) string {
	if k, ok := props["key"].(string); ok {
		return k
	}
	return ""
}

// Flatten normalizes a child value into a flat list.
// nil, booleans and nil elements are dropped; nested slices are expanded.
func Flatten(v any) []any {
	var out []any
	flattenInto(&out, v)
	return out
}

func flattenInto(out *[]any, v any) {
	switch c := v.(type) {
	case nil, bool:
		return
	case *Element:
		if c != nil {
			*out = append(*out, c)
		}
	case []any:
		for _, item := range c {
			flattenInto(out, item)
		}
	case []*Element:
		for _, item := range c {
			if item != nil {
				*out = append(*out, item)
			}
		}
	case []string:
		for _, item := range c {
			*out = append(*out, item)
		}
	default:
		*out = append(*out, c)
	}
}

// IsContent reports whether a child value is folded into textual content.
func IsContent(v any) bool {
	switch v.(type) {
	case string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

// If returns the element if condition is true, nil otherwise.
func If(condition bool, el *Element) *Element {
	if condition {
		return el
	}
	return nil
}
