package decl

import (
	"fmt"

	"github.com/kates/vector/core"
)

// CompilerState is the compile-time symbol table: identifier -> TypeDef.
//
// It is filled in source order while assignments are constructed and is frozen
// once compilation finishes. After Freeze it is safe to share between
// goroutines.
type CompilerState struct {
	variables *Env[TypeDef]
	frozen    bool
}

func NewCompilerState() *CompilerState {
	return &CompilerState{variables: NewEnv[TypeDef](nil)}
}

// Insert records the descriptor for ident, replacing any earlier one.
func (s *CompilerState) Insert(ident string, def TypeDef) {
	if s.frozen {
		panic(fmt.Sprintf("compiler state is frozen, cannot register variable %q", ident))
	}
	s.variables.Set(ident, def)
}

// Lookup returns the descriptor registered for ident. Absence is not an error:
// it only means no assignment to ident has been seen yet.
func (s *CompilerState) Lookup(ident string) (TypeDef, bool) {
	if s == nil {
		return TypeDef{}, false
	}
	return s.variables.Get(ident)
}

// Freeze marks the end of compilation.
func (s *CompilerState) Freeze() {
	s.frozen = true
}

func (s *CompilerState) Frozen() bool {
	return s.frozen
}

// Variables returns a copy of every registered descriptor.
func (s *CompilerState) Variables() map[string]TypeDef {
	return s.variables.Flatten()
}

// RuntimeState holds the variable bindings of a single execution. It is never
// shared between concurrent executions.
type RuntimeState struct {
	variables *Env[core.Value]
}

func NewRuntimeState() *RuntimeState {
	return &RuntimeState{variables: NewEnv[core.Value](nil)}
}

// NewSeededRuntimeState starts an execution with bindings carried over by the
// host, e.g. variables persisted from an earlier event. The seed map is copied;
// assignments during the execution never write back into it.
func NewSeededRuntimeState(seed map[string]core.Value) *RuntimeState {
	base := NewEnv[core.Value](nil)
	base.SetMany(seed)
	return &RuntimeState{variables: base.Push()}
}

func (s *RuntimeState) Get(ident string) (core.Value, bool) {
	if s == nil {
		return core.Null, false
	}
	return s.variables.Get(ident)
}

// Set binds ident to value, replacing any earlier binding.
func (s *RuntimeState) Set(ident string, value core.Value) {
	s.variables.Set(ident, value)
}

// Variables returns every visible binding, seeded ones included.
func (s *RuntimeState) Variables() map[string]core.Value {
	return s.variables.Flatten()
}
