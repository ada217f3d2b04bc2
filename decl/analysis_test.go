package decl

import (
	"testing"

	"github.com/kates/vector/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeSequential(t *testing.T) {
	state := NewCompilerState()
	before := NewVariable("x")
	after := NewVariable("x")
	prog := NewBlock(
		before,
		mustAssign(t, NewVariable("x"), NewLiteral(core.NewInteger(1)), state),
		after,
	)

	a, err := Analyze(prog)
	require.NoError(t, err)
	assert.False(t, a.IsBound(before))
	assert.True(t, a.IsBound(after))
	assert.Equal(t, []*Variable{before}, a.Unbound)
}

func TestAnalyzeBranches(t *testing.T) {
	state := NewCompilerState()
	cond := NewPath(core.MustParsePath(".flag"))

	// assigned in only one branch: not definitely bound afterwards
	onlyThen := NewVariable("x")
	prog := NewBlock(
		NewIfStatement(cond,
			mustAssign(t, NewVariable("x"), NewLiteral(core.NewInteger(1)), state),
			nil),
		onlyThen,
	)
	a, err := Analyze(prog)
	require.NoError(t, err)
	assert.False(t, a.IsBound(onlyThen))

	// the compiler state still carries the descriptor, which is the gap
	// the analysis exists to close
	assert.Equal(t, KindTypeDef(core.KindInteger), onlyThen.TypeDef(state))

	// assigned in both branches: bound
	both := NewVariable("y")
	prog = NewBlock(
		NewIfStatement(cond,
			mustAssign(t, NewVariable("y"), NewLiteral(core.NewInteger(1)), state),
			mustAssign(t, NewVariable("y"), NewLiteral(core.NewInteger(2)), state)),
		both,
	)
	a, err = Analyze(prog)
	require.NoError(t, err)
	assert.True(t, a.IsBound(both))
	assert.Empty(t, a.Unbound)

	// assignments in the condition bind for both branches
	inCond := NewVariable("z")
	prog = NewBlock(
		NewIfStatement(
			NewNot(mustAssign(t, NewVariable("z"), NewLiteral(core.NewBoolean(true)), state)),
			NewNoop(), nil),
		inCond,
	)
	a, err = Analyze(prog)
	require.NoError(t, err)
	assert.True(t, a.IsBound(inCond))
}

func TestAnalyzeSelfReference(t *testing.T) {
	state := NewCompilerState()
	ref := NewVariable("x")
	prog := mustAssign(t, NewVariable("x"), ref, state)

	a, err := Analyze(prog)
	require.NoError(t, err)
	assert.False(t, a.IsBound(ref), "the value is evaluated before the binding happens")
}

func TestAnalyzeAssumed(t *testing.T) {
	ref := NewVariable("seeded")
	a, err := Analyze(NewBlock(ref), "seeded")
	require.NoError(t, err)
	assert.True(t, a.IsBound(ref))
}

func TestAnalysisCheck(t *testing.T) {
	a, err := Analyze(NewBlock(NewVariable("a"), NewVariable("b")))
	require.NoError(t, err)

	assert.NoError(t, a.Check(StrictnessPermissive))

	err = a.Check(StrictnessStrict)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnassignedVariable)
	assert.Contains(t, err.Error(), `variable "a" may be read before it is assigned`)
	assert.Contains(t, err.Error(), `variable "b" may be read before it is assigned`)
}

type unknownExpr struct{ Noop }

func TestAnalyzeUnknownExpr(t *testing.T) {
	_, err := Analyze(NewBlock(&unknownExpr{}))
	assert.ErrorIs(t, err, ErrUnknownExpr)
}

func TestParseStrictness(t *testing.T) {
	s, err := ParseStrictness("STRICT")
	require.NoError(t, err)
	assert.Equal(t, StrictnessStrict, s)

	s, err = ParseStrictness("")
	require.NoError(t, err)
	assert.Equal(t, StrictnessPermissive, s)

	_, err = ParseStrictness("lenient")
	assert.Error(t, err)
}
