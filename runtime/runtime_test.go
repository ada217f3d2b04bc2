package runtime

import (
	"context"
	"fmt"
	"testing"

	"github.com/kates/vector/core"
	"github.com/kates/vector/decl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func lit(v any) *decl.Literal { return decl.NewLiteral(core.MustFrom(v)) }

func field(p string) *decl.Path { return decl.NewPath(core.MustParsePath(p)) }

func assign(t *testing.T, target decl.Expr, value decl.Expr, state *decl.CompilerState) *decl.Assignment {
	t.Helper()
	a, err := decl.NewAssignment(target, value, state)
	require.NoError(t, err)
	return a
}

func TestNewProgram(t *testing.T) {
	state := decl.NewCompilerState()
	root := decl.NewBlock(
		assign(t, decl.NewVariable("x"), lit(1), state),
		decl.NewVariable("x"),
	)
	p, err := NewProgram(root, state)
	require.NoError(t, err)

	assert.True(t, state.Frozen())
	assert.True(t, decl.KindTypeDef(core.KindInteger).Equal(p.TypeDef()), "got %s", p.TypeDef())
	assert.False(t, p.Fallible())
	assert.Contains(t, p.Variables(), "x")
	assert.Empty(t, p.Analysis().Unbound)

	got, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, core.NewInteger(1).Equal(got))
}

func TestNewProgramNilRoot(t *testing.T) {
	p, err := NewProgram(nil, nil)
	require.NoError(t, err)
	got, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, got.IsNull())
}

func TestProgramStrictness(t *testing.T) {
	root := decl.NewVariable("y")

	_, err := NewProgram(root, nil, WithStrictness(decl.StrictnessStrict))
	assert.ErrorIs(t, err, decl.ErrUnassignedVariable)

	p, err := NewProgram(root, nil, WithStrictness(decl.StrictnessStrict), WithAssumed("y"))
	require.NoError(t, err)
	assert.True(t, p.Fallible())

	buffer, cleanup := CaptureLog(t, LogLevelWarn)
	p, err = NewProgram(root, nil)
	cleanup()
	require.NoError(t, err)
	AssertLogContains(t, buffer.String(), `[WARN] variable "y" may be read before it is assigned`)

	var reported []string
	_, err = NewProgram(root, nil, WithUnboundReporter(func(v *decl.Variable) {
		reported = append(reported, v.Ident())
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, reported)

	_, err = p.Run(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, decl.ErrUndefinedVariable)
	assert.Equal(t, "undefined variable: y", err.Error())

	var exprErr *decl.Error
	require.ErrorAs(t, err, &exprErr)
	assert.Equal(t, decl.ErrKindVariable, exprErr.Kind)
}

func TestProgramRunWithSeed(t *testing.T) {
	state := decl.NewCompilerState()
	root := decl.NewBlock(
		assign(t, field(".before"), decl.NewVariable("count"), state),
		assign(t, decl.NewVariable("count"), lit("replaced"), state),
		decl.NewVariable("count"),
	)
	p, err := NewProgram(root, state, WithAssumed("count"))
	require.NoError(t, err)

	seed := map[string]core.Value{"count": core.NewInteger(7)}
	ev, err := NewEvent(nil)
	require.NoError(t, err)

	got, err := p.Run(context.Background(), ev, WithSeed(seed))
	require.NoError(t, err)
	assert.True(t, core.NewString("replaced").Equal(got))
	assert.Equal(t, `{ "before": 7 }`, ev.String())
	assert.True(t, core.NewInteger(7).Equal(seed["count"]))
}

func TestProgramRunWithState(t *testing.T) {
	state := decl.NewCompilerState()
	root := assign(t, decl.NewVariable("seen"), lit(true), state)
	p, err := NewProgram(root, state)
	require.NoError(t, err)

	rs := decl.NewRuntimeState()
	_, err = p.RunWithState(context.Background(), rs, nil)
	require.NoError(t, err)
	v, ok := rs.Get("seen")
	require.True(t, ok)
	assert.True(t, core.NewBoolean(true).Equal(v))
}

func TestProgramRunCancelled(t *testing.T) {
	p, err := NewProgram(lit(1), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProgramConcurrentRuns(t *testing.T) {
	state := decl.NewCompilerState()
	root := decl.NewBlock(
		assign(t, decl.NewVariable("id"), field(".id"), state),
		assign(t, field(".copy"), decl.NewVariable("id"), state),
	)
	p, err := NewProgram(root, state)
	require.NoError(t, err)

	events := make([]*Event, 64)
	var g errgroup.Group
	for i := range events {
		ev, err := NewEvent(map[string]any{"id": i})
		require.NoError(t, err)
		events[i] = ev
		g.Go(func() error {
			_, err := p.Run(context.Background(), ev)
			return err
		})
	}
	require.NoError(t, g.Wait())

	for i, ev := range events {
		got, ok := ev.Get(core.MustParsePath(".copy"))
		require.True(t, ok)
		assert.Equal(t, fmt.Sprint(i), got.String())
	}
}
