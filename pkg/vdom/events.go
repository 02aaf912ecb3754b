package vdom

import (
	"strings"
	"unicode"
)

// EventKind enumerates the backend events elements can handle.
type EventKind uint8

const (
	EventFocus EventKind = iota + 1
	EventBlur
	EventClick
	EventPress
	EventKeypress
	EventResize
	EventScroll
	EventSubmit
	EventChange
	EventMouse
)

// eventNames holds the canonical backend name of each kind.
var eventNames = map[EventKind]string{
	EventFocus:    "focus",
	EventBlur:     "blur",
	EventClick:    "click",
	EventPress:    "press",
	EventKeypress: "keypress",
	EventResize:   "resize",
	EventScroll:   "scroll",
	EventSubmit:   "submit",
	EventChange:   "change",
	EventMouse:    "mouse",
}

// byFoldedName maps lower-cased, separator-free names back to kinds.
var byFoldedName = func() map[string]EventKind {
	m := make(map[string]EventKind, len(eventNames))
	for k, name := range eventNames {
		m[strings.ToLower(PascalCase(name))] = k
	}
	return m
}()

// EventKinds returns every known kind in declaration order.
func EventKinds() []EventKind {
	kinds := make([]EventKind, 0, len(eventNames))
	for k := EventFocus; k <= EventMouse; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// String returns the canonical backend event name.
func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// PropName returns the handler prop for the kind, e.g. "onFocus".
func (k EventKind) PropName() string {
	name, ok := eventNames[k]
	if !ok {
		return ""
	}
	return "on" + PascalCase(name)
}

// ParseEvent resolves a backend event name to its kind. Matching ignores
// case and separators, so "keypress", "key press" and "Key-Press" agree.
func ParseEvent(name string) (EventKind, bool) {
	k, ok := byFoldedName[strings.ToLower(PascalCase(name))]
	return k, ok
}

// PascalCase capitalizes every word of name and strips the separators.
// Words are split on non-alphanumeric runes and lower-to-upper transitions.
func PascalCase(name string) string {
	var b strings.Builder
	upperNext := true
	var prev rune
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			prev = r
			continue
		}
		if unicode.IsUpper(r) && unicode.IsLower(prev) {
			upperNext = true
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		prev = r
	}
	return b.String()
}

// Handler is a resolved event handler.
type Handler func(args ...any)

// Handlers resolves the handler slots declared in props.
// Props values that are not functions of a supported shape are ignored.
func Handlers(props Props) map[EventKind]Handler {
	var out map[EventKind]Handler
	for k := range eventNames {
		h := toHandler(props[k.PropName()])
		if h == nil {
			continue
		}
		if out == nil {
			out = make(map[EventKind]Handler)
		}
		out[k] = h
	}
	return out
}

func toHandler(v any) Handler {
	switch fn := v.(type) {
	case Handler:
		return fn
	case func(args ...any):
		return fn
	case func():
		return func(...any) { fn() }
	case func(any):
		return func(args ...any) {
			var first any
			if len(args) > 0 {
				first = args[0]
			}
			fn(first)
		}
	default:
		return nil
	}
}
