package demo

import (
	"time"

	"github.com/vango-dev/hostbridge/pkg/native"
	"github.com/vango-dev/hostbridge/pkg/vdom"
)

// Ingredient is a pancake node. It announces itself when constructed.
type Ingredient struct {
	native.Base
}

func ingredient(props native.Props) *Ingredient {
	return &Ingredient{Base: native.NewBase(props, nil)}
}

// Fryer is the pancake demo's root.
type Fryer struct {
	native.Base
	env Env
}

// Render implements native.Node.
func (f *Fryer) Render() error {
	f.env.printf("x frying")
	return f.Base.Render()
}

// PancakeFryer returns the root factory for the pancake demo. Only the
// fryer's type map knows the ingredients, so nested tags resolve through
// the root.
func PancakeFryer(env Env) native.Factory {
	types := native.MustTypeMap(map[string]native.Factory{
		"pancake": func(props native.Props) native.Node {
			env.printf("+ will be cooking at %v°C", props["fryingTemperature"])
			return ingredient(props)
		},
		"butter": func(props native.Props) native.Node {
			env.printf("+ adding butter")
			return ingredient(props)
		},
		"milk": func(props native.Props) native.Node {
			env.printf("+ adding milk")
			if best, ok := props["bestBefore"].(time.Time); ok && best.Before(env.now()) {
				env.printf("e your milk is expired, don't try to eat the pancake")
			}
			return ingredient(props)
		},
		"jam": func(props native.Props) native.Node {
			env.printf("+ adding %v jam", props["flavour"])
			return ingredient(props)
		},
		"flour": func(props native.Props) native.Node {
			env.printf("+ adding flour")
			return ingredient(props)
		},
	})
	return func(props native.Props) native.Node {
		return &Fryer{Base: native.NewBase(props, types), env: env}
	}
}

// CoolPancake returns the pancake tree. The milk went off a second ago.
func CoolPancake(env Env) *vdom.Element {
	return vdom.Func("CoolPancake", func(vdom.Props) *vdom.Element {
		return vdom.El("pancake", vdom.Props{"fryingTemperature": 145},
			vdom.El("butter", nil),
			vdom.El("milk", vdom.Props{"bestBefore": env.now().Add(-time.Second)}),
			vdom.El("jam", vdom.Props{"flavour": "orange"}),
			vdom.El("flour", nil),
		)
	}, nil)
}
