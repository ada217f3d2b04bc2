package decl

import (
	"errors"
	"fmt"
	"strings"
)

// Strictness decides what compilation does with a variable that is not bound
// on every path reaching it.
type Strictness int

const (
	// StrictnessPermissive keeps the fallible fallback and leaves the check to runtime.
	StrictnessPermissive Strictness = iota
	// StrictnessStrict rejects the program.
	StrictnessStrict
)

func (s Strictness) String() string {
	if s == StrictnessStrict {
		return "strict"
	}
	return "permissive"
}

func ParseStrictness(s string) (Strictness, error) {
	switch strings.ToLower(s) {
	case "", "permissive":
		return StrictnessPermissive, nil
	case "strict":
		return StrictnessStrict, nil
	}
	return StrictnessPermissive, fmt.Errorf("unknown strictness: %s", s)
}

// Analysis is the result of the definite-assignment pass.
type Analysis struct {
	// Unbound lists, in source order, the variable references that are not
	// bound on every path reaching them.
	Unbound []*Variable

	bound map[*Variable]bool
}

// IsBound reports whether v was proven bound. References that were not part
// of the analysed tree are reported unbound.
func (a *Analysis) IsBound(v *Variable) bool {
	return a.bound[v]
}

// Check turns the analysis into a compile error under StrictnessStrict.
func (a *Analysis) Check(strictness Strictness) error {
	if strictness != StrictnessStrict || len(a.Unbound) == 0 {
		return nil
	}
	errs := make([]error, 0, len(a.Unbound))
	for _, v := range a.Unbound {
		errs = append(errs, &UnassignedError{Ident: v.Ident()})
	}
	return errors.Join(errs...)
}

type boundSet map[string]struct{}

func (b boundSet) with(ident string) boundSet {
	out := make(boundSet, len(b)+1)
	for k := range b {
		out[k] = struct{}{}
	}
	out[ident] = struct{}{}
	return out
}

func (b boundSet) intersect(other boundSet) boundSet {
	out := boundSet{}
	for k := range b {
		if _, ok := other[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// Analyze walks root in evaluation order and determines, for every variable
// reference, whether some assignment binds it on every path that reaches it.
// Identifiers in assumed (e.g. variables the host seeds into every execution)
// count as bound from the start.
func Analyze(root Expr, assumed ...string) (*Analysis, error) {
	a := &Analysis{bound: map[*Variable]bool{}}
	start := boundSet{}
	for _, ident := range assumed {
		start[ident] = struct{}{}
	}
	if _, err := a.walk(root, start); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Analysis) walk(expr Expr, bound boundSet) (boundSet, error) {
	switch e := expr.(type) {
	case nil:
		return bound, nil
	case *Literal, *Noop, *Path:
		return bound, nil
	case *Variable:
		_, ok := bound[e.Ident()]
		a.bound[e] = ok
		if !ok {
			a.Unbound = append(a.Unbound, e)
		}
		return bound, nil
	case *Not:
		return a.walk(e.Expr(), bound)
	case *Assignment:
		after, err := a.walk(e.Value(), bound)
		if err != nil {
			return nil, err
		}
		if v, ok := e.Target().(*Variable); ok {
			return after.with(v.Ident()), nil
		}
		return after, nil
	case *Block:
		var err error
		for _, child := range e.Exprs() {
			if bound, err = a.walk(child, bound); err != nil {
				return nil, err
			}
		}
		return bound, nil
	case *IfStatement:
		afterCond, err := a.walk(e.Condition(), bound)
		if err != nil {
			return nil, err
		}
		thenBound, err := a.walk(e.Consequent(), afterCond)
		if err != nil {
			return nil, err
		}
		elseBound, err := a.walk(e.Alternative(), afterCond)
		if err != nil {
			return nil, err
		}
		return thenBound.intersect(elseBound), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownExpr, expr)
}
