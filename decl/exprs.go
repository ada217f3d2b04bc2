package decl

import (
	"fmt"
	"strings"

	"github.com/kates/vector/core"
	gfn "github.com/panyam/goutils/fn"
)

// Expr is implemented by every node of a compiled remap program.
//
// TypeDef answers what the node may produce using static context only. It must
// not mutate the CompilerState and must return the same answer every time it
// is called with the same state.
//
// Execute produces the node's value for one event. It may read and write the
// RuntimeState and the Object, and it returns either a value or an error,
// never both. The Object is borrowed for the call and must not be retained.
type Expr interface {
	TypeDef(state *CompilerState) TypeDef
	Execute(state *RuntimeState, object core.Object) (core.Value, error)
	String() string
}

// --- Literal ---

// Literal is a constant value.
type Literal struct {
	value core.Value
}

func NewLiteral(value core.Value) *Literal {
	return &Literal{value: value.Clone()}
}

func (l *Literal) Value() core.Value { return l.value.Clone() }

func (l *Literal) TypeDef(*CompilerState) TypeDef {
	return KindTypeDef(l.value.Kind())
}

func (l *Literal) Execute(*RuntimeState, core.Object) (core.Value, error) {
	return l.value.Clone(), nil
}

func (l *Literal) String() string { return l.value.String() }

func (l *Literal) PrettyPrint(cp CodePrinter) { cp.Print(l.String()) }

// --- Noop ---

// Noop does nothing and yields null.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) TypeDef(*CompilerState) TypeDef {
	return TypeDef{Kind: core.KindNull, Optional: true}
}

func (n *Noop) Execute(*RuntimeState, core.Object) (core.Value, error) {
	return core.Null, nil
}

func (n *Noop) String() string { return "null" }

func (n *Noop) PrettyPrint(cp CodePrinter) { cp.Print(n.String()) }

// --- Path ---

// Path reads a field of the event being processed. A missing field yields null.
type Path struct {
	path core.Path
}

func NewPath(path core.Path) *Path {
	return &Path{path: path}
}

func (p *Path) Path() core.Path { return p.path }

func (p *Path) TypeDef(*CompilerState) TypeDef {
	return TypeDef{Kind: core.KindAny, Optional: true}
}

func (p *Path) Execute(_ *RuntimeState, object core.Object) (core.Value, error) {
	if object == nil {
		return core.Null, nil
	}
	v, ok := object.Get(p.path)
	if !ok {
		return core.Null, nil
	}
	return v.Clone(), nil
}

func (p *Path) String() string { return p.path.String() }

func (p *Path) PrettyPrint(cp CodePrinter) { cp.Print(p.String()) }

// --- Block ---

// Block runs its expressions in order and yields the last value.
type Block struct {
	exprs []Expr
}

func NewBlock(exprs ...Expr) *Block {
	return &Block{exprs: exprs}
}

func (b *Block) Exprs() []Expr { return b.exprs }

// TypeDef is fallible if any expression is; kind and optionality come from the
// last expression since only its value escapes.
func (b *Block) TypeDef(state *CompilerState) TypeDef {
	if len(b.exprs) == 0 {
		return (&Noop{}).TypeDef(state)
	}
	fallible := false
	for _, e := range b.exprs {
		fallible = fallible || e.TypeDef(state).Fallible
	}
	return b.exprs[len(b.exprs)-1].TypeDef(state).WithFallible(fallible)
}

func (b *Block) Execute(state *RuntimeState, object core.Object) (result core.Value, err error) {
	result = core.Null
	for _, e := range b.exprs {
		if result, err = e.Execute(state, object); err != nil {
			return core.Null, WrapError(e, err)
		}
	}
	return
}

func (b *Block) String() string {
	return "{ " + strings.Join(gfn.Map(b.exprs, func(e Expr) string { return e.String() }), "; ") + " }"
}

func (b *Block) PrettyPrint(cp CodePrinter) {
	cp.Println("{")
	WithIndent(1, cp, func(cp CodePrinter) {
		for _, e := range b.exprs {
			PrettyPrint(cp, e)
			cp.Println("")
		}
	})
	cp.Print("}")
}

// --- Not ---

// Not negates a boolean.
type Not struct {
	expr Expr
}

func NewNot(expr Expr) *Not {
	return &Not{expr: expr}
}

func (n *Not) Expr() Expr { return n.expr }

func (n *Not) TypeDef(state *CompilerState) TypeDef {
	inner := n.expr.TypeDef(state)
	return TypeDef{
		Kind:     core.KindBoolean,
		Fallible: inner.Fallible || !inner.Kind.Is(core.KindBoolean),
	}
}

func (n *Not) Execute(state *RuntimeState, object core.Object) (core.Value, error) {
	v, err := n.expr.Execute(state, object)
	if err != nil {
		return core.Null, WrapError(n.expr, err)
	}
	b, ok := v.AsBoolean()
	if !ok {
		return core.Null, WrapError(n, &NotError{Got: v.Kind()})
	}
	return core.NewBoolean(!b), nil
}

func (n *Not) String() string { return fmt.Sprintf("!%s", n.expr) }

func (n *Not) PrettyPrint(cp CodePrinter) { cp.Print(n.String()) }
