package runtime

import (
	"context"

	"github.com/kates/vector/core"
	"github.com/kates/vector/decl"
)

// Program is a compiled expression tree bound to the compile state it was
// built against. A Program is immutable once created and may be run from
// many goroutines at once.
type Program struct {
	root     decl.Expr
	state    *decl.CompilerState
	analysis *decl.Analysis
	typeDef  decl.TypeDef
}

type programConfig struct {
	strictness decl.Strictness
	assumed    []string
	onUnbound  func(*decl.Variable)
}

type ProgramOption func(*programConfig)

// WithStrictness controls whether reading a possibly unassigned variable
// fails compilation (strict) or is only logged (permissive).
func WithStrictness(s decl.Strictness) ProgramOption {
	return func(c *programConfig) { c.strictness = s }
}

// WithAssumed declares variables the host will seed before every run.
func WithAssumed(idents ...string) ProgramOption {
	return func(c *programConfig) { c.assumed = append(c.assumed, idents...) }
}

// WithUnboundReporter replaces the warning logged in permissive mode for each
// variable that may be read before it is assigned.
func WithUnboundReporter(fn func(*decl.Variable)) ProgramOption {
	return func(c *programConfig) { c.onUnbound = fn }
}

// NewProgram checks root and freezes state. The state must already hold every
// variable the tree assigns, which is the case when the nodes were built with
// it. A nil state is treated as empty.
func NewProgram(root decl.Expr, state *decl.CompilerState, opts ...ProgramOption) (*Program, error) {
	cfg := &programConfig{
		onUnbound: func(v *decl.Variable) {
			Warn("variable %q may be read before it is assigned", v.Ident())
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if root == nil {
		root = decl.NewBlock()
	}
	if state == nil {
		state = decl.NewCompilerState()
	}

	analysis, err := decl.Analyze(root, cfg.assumed...)
	if err != nil {
		return nil, err
	}
	if err := analysis.Check(cfg.strictness); err != nil {
		return nil, err
	}
	if cfg.onUnbound != nil {
		for _, v := range analysis.Unbound {
			cfg.onUnbound(v)
		}
	}

	state.Freeze()
	return &Program{
		root:     root,
		state:    state,
		analysis: analysis,
		typeDef:  root.TypeDef(state),
	}, nil
}

func (p *Program) Root() decl.Expr                    { return p.root }
func (p *Program) State() *decl.CompilerState         { return p.state }
func (p *Program) Analysis() *decl.Analysis           { return p.analysis }
func (p *Program) TypeDef() decl.TypeDef              { return p.typeDef }
func (p *Program) Fallible() bool                     { return p.typeDef.Fallible }
func (p *Program) Variables() map[string]decl.TypeDef { return p.state.Variables() }

type runConfig struct {
	seed map[string]core.Value
}

type RunOption func(*runConfig)

// WithSeed starts the run with the given variable bindings. The map is not
// modified by the run.
func WithSeed(vars map[string]core.Value) RunOption {
	return func(c *runConfig) { c.seed = vars }
}

// Run executes the program once against object with a fresh RuntimeState.
func (p *Program) Run(ctx context.Context, object core.Object, opts ...RunOption) (core.Value, error) {
	cfg := &runConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	state := decl.NewRuntimeState()
	if cfg.seed != nil {
		state = decl.NewSeededRuntimeState(cfg.seed)
	}
	return p.RunWithState(ctx, state, object)
}

// RunWithState executes the program with a caller-owned RuntimeState, so the
// host can inspect or carry the bindings afterwards. state must not be shared
// with a concurrent run.
func (p *Program) RunWithState(ctx context.Context, state *decl.RuntimeState, object core.Object) (core.Value, error) {
	if err := ctx.Err(); err != nil {
		return core.Null, err
	}
	value, err := p.root.Execute(state, object)
	if err != nil {
		return core.Null, decl.WrapError(p.root, err)
	}
	return value, nil
}
