package core

import (
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// Kind is a set of value shapes. A single value always has exactly one bit
// set, a type descriptor may carry several.
type Kind uint16

const (
	KindBytes Kind = 1 << iota
	KindInteger
	KindFloat
	KindBoolean
	KindTimestamp
	KindArray
	KindMap
	KindNull

	// KindAny is the unconstrained kind.
	KindAny = KindBytes | KindInteger | KindFloat | KindBoolean | KindTimestamp | KindArray | KindMap | KindNull
)

var kindNames = []struct {
	kind Kind
	name string
}{
	{KindBytes, "bytes"},
	{KindInteger, "integer"},
	{KindFloat, "float"},
	{KindBoolean, "boolean"},
	{KindTimestamp, "timestamp"},
	{KindArray, "array"},
	{KindMap, "map"},
	{KindNull, "null"},
}

// Union returns the kinds present in either k or other.
func (k Kind) Union(other Kind) Kind {
	return k | other
}

// Contains reports whether every kind in other is also in k.
func (k Kind) Contains(other Kind) bool {
	return k&other == other
}

// IsAny reports whether k is unconstrained.
func (k Kind) IsAny() bool {
	return k == KindAny
}

// Is reports whether k is exactly the single kind other.
func (k Kind) Is(other Kind) bool {
	return k == other
}

// Kinds splits k into its individual kinds, in declaration order.
func (k Kind) Kinds() (out []Kind) {
	for _, kn := range kindNames {
		if k&kn.kind != 0 {
			out = append(out, kn.kind)
		}
	}
	return
}

func (k Kind) String() string {
	if k.IsAny() {
		return "any"
	}
	if k == 0 {
		return "never"
	}
	return strings.Join(gfn.Map(k.Kinds(), func(single Kind) string {
		for _, kn := range kindNames {
			if kn.kind == single {
				return kn.name
			}
		}
		return "unknown"
	}), " or ")
}

// ParseKind parses a single kind name as printed by String. "any" is accepted.
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "any" {
		return KindAny, true
	}
	if name == "string" {
		return KindBytes, true
	}
	for _, kn := range kindNames {
		if kn.name == name {
			return kn.kind, true
		}
	}
	return 0, false
}
