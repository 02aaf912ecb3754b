package hostbridge

import (
	"github.com/vango-dev/hostbridge/pkg/native"
	"github.com/vango-dev/hostbridge/pkg/vdom"
)

// =============================================================================
// Element Types
// =============================================================================

type Element = vdom.Element
type Props = vdom.Props
type Component = vdom.Component
type RenderFunc = vdom.RenderFunc
type Updater = vdom.Updater
type Mounter = vdom.Mounter
type Unmounter = vdom.Unmounter

// El creates a host element.
var El = vdom.El

// Comp creates a composite element.
var Comp = vdom.Comp

// Func creates a composite element from a render function.
var Func = vdom.Func

// If returns el when condition holds, nil otherwise.
var If = vdom.If

// =============================================================================
// Native Types
// =============================================================================

type Node = native.Node
type NodeProps = native.Props
type Factory = native.Factory
type TypeMap = native.TypeMap
type Base = native.Base

// NewTypeMap validates and builds a type map.
var NewTypeMap = native.NewTypeMap

// MustTypeMap is NewTypeMap that panics on an invalid map.
var MustTypeMap = native.MustTypeMap

// NewBase returns a Base for embedding in backend nodes.
var NewBase = native.NewBase
