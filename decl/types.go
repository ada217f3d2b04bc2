package decl

import (
	"strings"

	"github.com/kates/vector/core"
)

// TypeDef describes, from static context only, what an expression may produce:
// the kinds of value it can yield, whether the result may be absent and whether
// evaluating it may fail.
//
// A TypeDef never refers to live data. The zero value has an empty Kind; use
// DefaultTypeDef for the unconstrained descriptor.
type TypeDef struct {
	Kind     core.Kind
	Optional bool
	Fallible bool
}

// DefaultTypeDef is {Kind: any, Optional: false, Fallible: false}.
func DefaultTypeDef() TypeDef {
	return TypeDef{Kind: core.KindAny}
}

// KindTypeDef is an infallible, non-optional descriptor of the given kind.
func KindTypeDef(kind core.Kind) TypeDef {
	return TypeDef{Kind: kind}
}

// Equal checks if two descriptors agree on kind, optionality and fallibility.
func (t TypeDef) Equal(other TypeDef) bool {
	return t.Kind == other.Kind && t.Optional == other.Optional && t.Fallible == other.Fallible
}

// Merge combines the descriptors of two branches that may each produce the
// result. Every composite node uses this to combine its children.
func (t TypeDef) Merge(other TypeDef) TypeDef {
	return TypeDef{
		Kind:     t.Kind.Union(other.Kind),
		Optional: t.Optional || other.Optional,
		Fallible: t.Fallible || other.Fallible,
	}
}

func (t TypeDef) WithKind(kind core.Kind) TypeDef {
	t.Kind = kind
	return t
}

func (t TypeDef) WithOptional(optional bool) TypeDef {
	t.Optional = optional
	return t
}

func (t TypeDef) WithFallible(fallible bool) TypeDef {
	t.Fallible = fallible
	return t
}

// String renders e.g. "bytes" or "integer or float (optional, fallible)".
func (t TypeDef) String() string {
	var flags []string
	if t.Optional {
		flags = append(flags, "optional")
	}
	if t.Fallible {
		flags = append(flags, "fallible")
	}
	if len(flags) == 0 {
		return t.Kind.String()
	}
	return t.Kind.String() + " (" + strings.Join(flags, ", ") + ")"
}
