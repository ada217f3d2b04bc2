package runtime

import (
	"errors"
	"testing"

	"github.com/kates/vector/decl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrorPolicy(t *testing.T) {
	p, err := ParseErrorPolicy("tag, variable=drop,if=abort")
	require.NoError(t, err)
	assert.Equal(t, PolicyTag, p.Default)
	assert.Equal(t, PolicyDrop, p.ByKind[decl.ErrKindVariable])
	assert.Equal(t, "tag,variable=drop,if=abort", p.String())

	p, err = ParseErrorPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyAbort, p.Default)

	_, err = ParseErrorPolicy("explode")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
	_, err = ParseErrorPolicy("bogus=drop")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestErrorPolicyFor(t *testing.T) {
	p := ErrorPolicy{
		Default: PolicyTag,
		ByKind:  map[decl.ErrorKind]PolicyAction{decl.ErrKindVariable: PolicyDrop},
	}
	undefined := decl.WrapError(decl.NewVariable("x"), &decl.VariableError{Ident: "x"})
	assert.Equal(t, PolicyDrop, p.For(undefined))
	assert.Equal(t, PolicyTag, p.For(decl.WrapError(nil, &decl.NotError{})))
	assert.Equal(t, PolicyTag, p.For(errors.New("plain")))
}
