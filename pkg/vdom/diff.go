package vdom

import (
	"strconv"
	"strings"
)

// NamedChild is a structural child with its id segment.
type NamedChild struct {
	Name    string
	Element *Element
}

var keyEscaper = strings.NewReplacer("=", "=0", ".", "=1")

// ChildName returns the id segment for a structural child at index.
// Keyed children are named "$key" with dots escaped, others by position.
func ChildName(el *Element, index int) string {
	if el != nil && el.Key != "" {
		return "$" + keyEscaper.Replace(el.Key)
	}
	return strconv.Itoa(index)
}

// NameChildren names structural children. When two children share a name
// the first one wins and the rest are dropped.
func NameChildren(children []*Element) []NamedChild {
	named := make([]NamedChild, 0, len(children))
	seen := make(map[string]bool, len(children))
	for i, child := range children {
		if child == nil {
			continue
		}
		name := ChildName(child, i)
		if seen[name] {
			continue
		}
		seen[name] = true
		named = append(named, NamedChild{Name: name, Element: child})
	}
	return named
}

// DiffChildren compares two structural child lists and returns the patches
// needed to turn prev into next. Removals come last.
func DiffChildren(prev, next []*Element) []Patch {
	return DiffNamed(NameChildren(prev), next)
}

// DiffNamed is DiffChildren for a previous list that was already named.
func DiffNamed(prevNamed []NamedChild, next []*Element) []Patch {
	nextNamed := NameChildren(next)

	prevIndex := make(map[string]int, len(prevNamed))
	for i, c := range prevNamed {
		prevIndex[c.Name] = i
	}

	var patches []Patch
	matched := make(map[string]bool, len(prevNamed))

	for nextIdx, c := range nextNamed {
		prevIdx, exists := prevIndex[c.Name]
		if !exists {
			patches = append(patches, Patch{
				Op:    PatchInsert,
				Name:  c.Name,
				Index: nextIdx,
				From:  -1,
				Node:  c.Element,
			})
			continue
		}

		matched[c.Name] = true
		if !SameType(prevNamed[prevIdx].Element, c.Element) {
			patches = append(patches, Patch{
				Op:    PatchReplace,
				Name:  c.Name,
				Index: nextIdx,
				From:  prevIdx,
				Node:  c.Element,
			})
			continue
		}

		if prevIdx != nextIdx {
			patches = append(patches, Patch{
				Op:    PatchMove,
				Name:  c.Name,
				Index: nextIdx,
				From:  prevIdx,
			})
		}
		patches = append(patches, Patch{
			Op:    PatchUpdate,
			Name:  c.Name,
			Index: nextIdx,
			From:  prevIdx,
			Node:  c.Element,
		})
	}

	for i, c := range prevNamed {
		if !matched[c.Name] {
			patches = append(patches, Patch{
				Op:    PatchRemove,
				Name:  c.Name,
				Index: -1,
				From:  i,
			})
		}
	}

	return patches
}

// Structural returns the *Element entries of a child list.
func Structural(children []any) []*Element {
	var out []*Element
	for _, c := range children {
		if el, ok := c.(*Element); ok && el != nil {
			out = append(out, el)
		}
	}
	return out
}
