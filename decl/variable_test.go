package decl

import (
	"errors"
	"testing"

	"github.com/kates/vector/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariableTypeDef(t *testing.T) {
	tests := []struct {
		name string
		expr func(state *CompilerState) Expr
		def  TypeDef
	}{
		{
			name: "ident_match",
			expr: func(state *CompilerState) Expr {
				state.Insert("foo", DefaultTypeDef())
				return NewVariable("foo")
			},
			def: DefaultTypeDef(),
		},
		{
			name: "exact_match",
			expr: func(state *CompilerState) Expr {
				state.Insert("foo", TypeDef{Fallible: true, Optional: false, Kind: core.KindBytes})
				return NewVariable("foo")
			},
			def: TypeDef{Fallible: true, Optional: false, Kind: core.KindBytes},
		},
		{
			name: "ident_mismatch",
			expr: func(state *CompilerState) Expr {
				state.Insert("foo", DefaultTypeDef().WithFallible(true))
				return NewVariable("bar")
			},
			def: DefaultTypeDef().WithFallible(true),
		},
		{
			name: "empty_state",
			expr: func(*CompilerState) Expr { return NewVariable("foo") },
			def:  DefaultTypeDef().WithFallible(true),
		},
		{
			name: "optional_passthrough",
			expr: func(state *CompilerState) Expr {
				state.Insert("foo", TypeDef{Kind: core.KindInteger | core.KindNull, Optional: true})
				return NewVariable("foo")
			},
			def: TypeDef{Kind: core.KindInteger | core.KindNull, Optional: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewCompilerState()
			expr := tt.expr(state)
			got := expr.TypeDef(state)
			assert.Equal(t, tt.def, got)
			assert.True(t, tt.def.Equal(got), "expected %s, got %s", tt.def, got)
		})
	}
}

func TestVariableTypeDefFallbackIgnoresOtherIdents(t *testing.T) {
	state := NewCompilerState()
	for _, ident := range []string{"a", "b", "c", "foo_bar"} {
		state.Insert(ident, KindTypeDef(core.KindBoolean))
	}
	assert.Equal(t, TypeDef{Kind: core.KindAny, Fallible: true}, NewVariable("missing").TypeDef(state))
	assert.Equal(t, TypeDef{Kind: core.KindAny, Fallible: true}, NewVariable("missing").TypeDef(nil))
}

func TestVariableTypeDefIsPure(t *testing.T) {
	state := NewCompilerState()
	state.Insert("foo", KindTypeDef(core.KindFloat))
	before := state.Variables()

	v := NewVariable("foo")
	first := v.TypeDef(state)
	second := v.TypeDef(state)
	assert.Equal(t, first, second)
	assert.Equal(t, before, state.Variables(), "TypeDef must not mutate the compiler state")

	// Unknown identifiers are not registered by the lookup either.
	NewVariable("bar").TypeDef(state)
	_, ok := state.Lookup("bar")
	assert.False(t, ok)
}

func TestVariableExecute(t *testing.T) {
	state := NewRuntimeState()
	state.Set("foo", core.NewString("bar"))

	got, err := NewVariable("foo").Execute(state, nil)
	require.NoError(t, err)
	assert.True(t, core.NewString("bar").Equal(got), "got %s", got)
}

func TestVariableExecuteReturnsCopy(t *testing.T) {
	state := NewRuntimeState()
	state.Set("m", core.MustFrom(map[string]any{"a": []any{int64(1)}}))
	obj := core.NewMap(nil)

	got, err := NewVariable("m").Execute(state, &mapObject{root: obj})
	require.NoError(t, err)
	require.NoError(t, got.Insert(core.MustParsePath(".a[0]"), core.NewInteger(99)))

	stored, _ := state.Get("m")
	assert.Equal(t, `{ "a": [1] }`, stored.String())
}

func TestVariableExecuteUndefined(t *testing.T) {
	state := NewRuntimeState()
	obj := &mapObject{root: core.MustFrom(map[string]any{"message": "hi"})}
	before := obj.root.Clone()

	_, err := NewVariable("foo").Execute(state, obj)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUndefinedVariable)
	assert.EqualError(t, err, "undefined variable: foo")

	var exprErr *Error
	require.True(t, errors.As(err, &exprErr))
	assert.Equal(t, ErrKindVariable, exprErr.Kind)
	assert.Equal(t, "foo", exprErr.Expr)

	var varErr *VariableError
	require.True(t, errors.As(err, &varErr))
	assert.Equal(t, "foo", varErr.Ident)

	assert.Empty(t, state.Variables(), "failed lookup must not bind anything")
	assert.True(t, before.Equal(obj.root), "object must not be touched")
	assert.Equal(t, 0, obj.writes)
}

// mapObject is a minimal core.Object used by the decl tests.
type mapObject struct {
	root   core.Value
	writes int
}

func (m *mapObject) Get(path core.Path) (core.Value, bool) { return m.root.Get(path) }

func (m *mapObject) Insert(path core.Path, value core.Value) error {
	m.writes++
	return m.root.Insert(path, value)
}

func (m *mapObject) Remove(path core.Path) (core.Value, bool) {
	m.writes++
	return m.root.Remove(path)
}
