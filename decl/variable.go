package decl

import "github.com/kates/vector/core"

// Variable reads a program variable.
type Variable struct {
	ident string
}

func NewVariable(ident string) *Variable {
	return &Variable{ident: ident}
}

func (v *Variable) Ident() string { return v.ident }

// TypeDef passes the registered descriptor through unchanged. An identifier
// with no registered descriptor may still be assigned on a path the compiler
// could not correlate with this reference, so it is reported as fallible of
// any kind instead of failing compilation. See Analyze for the stricter check.
func (v *Variable) TypeDef(state *CompilerState) TypeDef {
	if def, ok := state.Lookup(v.ident); ok {
		return def
	}
	return DefaultTypeDef().WithFallible(true)
}

// Execute returns a copy of the bound value. The object is never touched.
func (v *Variable) Execute(state *RuntimeState, _ core.Object) (core.Value, error) {
	value, ok := state.Get(v.ident)
	if !ok {
		return core.Null, WrapError(v, &VariableError{Ident: v.ident})
	}
	return value.Clone(), nil
}

func (v *Variable) String() string { return v.ident }

func (v *Variable) PrettyPrint(cp CodePrinter) { cp.Print(v.String()) }
