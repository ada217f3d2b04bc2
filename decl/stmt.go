package decl

import (
	"fmt"

	"github.com/kates/vector/core"
)

// --- Assignment ---

// Assignment stores the result of an expression into a variable or into a
// field of the event.
type Assignment struct {
	target Expr // *Variable or *Path
	value  Expr
}

// NewAssignment builds an assignment and, for variable targets, registers the
// value's TypeDef in state. Assignments must therefore be constructed in
// source order.
func NewAssignment(target Expr, value Expr, state *CompilerState) (*Assignment, error) {
	switch t := target.(type) {
	case *Variable:
		state.Insert(t.Ident(), value.TypeDef(state))
	case *Path:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, target)
	}
	return &Assignment{target: target, value: value}, nil
}

func (a *Assignment) Target() Expr { return a.target }
func (a *Assignment) Value() Expr  { return a.value }

// TypeDef is the value's descriptor. Writing into the event can be rejected
// (e.g. setting a field below a string), which makes path targets fallible.
func (a *Assignment) TypeDef(state *CompilerState) TypeDef {
	def := a.value.TypeDef(state)
	if _, ok := a.target.(*Path); ok {
		def.Fallible = true
	}
	return def
}

// Execute evaluates the value first. If that fails nothing is written.
func (a *Assignment) Execute(state *RuntimeState, object core.Object) (core.Value, error) {
	value, err := a.value.Execute(state, object)
	if err != nil {
		return core.Null, WrapError(a.value, err)
	}
	switch t := a.target.(type) {
	case *Variable:
		state.Set(t.Ident(), value)
	case *Path:
		if object == nil {
			return core.Null, WrapError(a, &PathError{Target: t.Path(), Err: fmt.Errorf("no event to write to")})
		}
		if err := object.Insert(t.Path(), value); err != nil {
			return core.Null, WrapError(a, &PathError{Target: t.Path(), Err: err})
		}
	}
	return value.Clone(), nil
}

func (a *Assignment) String() string {
	return fmt.Sprintf("%s = %s", a.target, a.value)
}

func (a *Assignment) PrettyPrint(cp CodePrinter) {
	cp.Printf("%s = ", a.target)
	PrettyPrint(cp, a.value)
}

// --- IfStatement ---

// IfStatement runs one of two branches depending on a boolean condition. A
// missing else branch yields null.
type IfStatement struct {
	condition   Expr
	consequent  Expr
	alternative Expr // may be nil
}

func NewIfStatement(condition, consequent, alternative Expr) *IfStatement {
	return &IfStatement{condition: condition, consequent: consequent, alternative: alternative}
}

func (i *IfStatement) Condition() Expr   { return i.condition }
func (i *IfStatement) Consequent() Expr  { return i.consequent }
func (i *IfStatement) Alternative() Expr { return i.alternative }

func (i *IfStatement) elseBranch() Expr {
	if i.alternative == nil {
		return &Noop{}
	}
	return i.alternative
}

// TypeDef merges both branches. A condition that is fallible, or not provably
// boolean, makes the whole statement fallible.
func (i *IfStatement) TypeDef(state *CompilerState) TypeDef {
	cond := i.condition.TypeDef(state)
	def := i.consequent.TypeDef(state).Merge(i.elseBranch().TypeDef(state))
	def.Fallible = def.Fallible || cond.Fallible || !cond.Kind.Is(core.KindBoolean)
	return def
}

func (i *IfStatement) Execute(state *RuntimeState, object core.Object) (core.Value, error) {
	cond, err := i.condition.Execute(state, object)
	if err != nil {
		return core.Null, WrapError(i.condition, err)
	}
	b, ok := cond.AsBoolean()
	if !ok {
		return core.Null, WrapError(i, &IfError{Got: cond.Kind()})
	}
	branch := i.elseBranch()
	if b {
		branch = i.consequent
	}
	out, err := branch.Execute(state, object)
	if err != nil {
		return core.Null, WrapError(branch, err)
	}
	return out, nil
}

func (i *IfStatement) String() string {
	if i.alternative == nil {
		return fmt.Sprintf("if %s %s", i.condition, i.consequent)
	}
	return fmt.Sprintf("if %s %s else %s", i.condition, i.consequent, i.alternative)
}

func (i *IfStatement) PrettyPrint(cp CodePrinter) {
	cp.Printf("if %s ", i.condition)
	PrettyPrint(cp, i.consequent)
	if i.alternative != nil {
		cp.Print(" else ")
		PrettyPrint(cp, i.alternative)
	}
}
