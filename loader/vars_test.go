package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

func TestInterpolate(t *testing.T) {
	vars := map[string]string{"FOO": "dogs", "FOOBAR": "cats"}
	tests := []struct {
		in, want string
	}{
		{"$FOO", "dogs"},
		{"${FOO}", "dogs"},
		{"${FOOBAR}", "cats"},
		{"x${FOOBAR}y", "xcatsy"},
		{"x$FOOBARy", "x"},
		{"$ x", "$ x"},
		{"$$FOO", "$FOO"},
		{"$NOT_FOO", ""},
		{"$NOT-FOO", "-FOO"},
		{"${FOO x", "${FOO x"},
		{"${}", "${}"},
		{"${FOO:-cats}", "dogs"},
		{"${NOT:-dogcats}", "dogcats"},
		{"${NOT:-dogs and cats}", "dogs and cats"},
		{"${:-cats}", "${:-cats}"},
		{"${NOT:-}", ""},
	}
	for _, tt := range tests {
		got, _ := Interpolate(tt.in, vars)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestInterpolateWarnings(t *testing.T) {
	_, warnings := Interpolate("$A ${B} ${C:-x} $$D", map[string]string{})
	assert.Equal(t, []string{
		`unknown variable in program source: "A"`,
		`unknown variable in program source: "B"`,
	}, warnings)
}

func TestLoadEnvFiles(t *testing.T) {
	base := fs.NewFile(t, "base", fs.WithContent("STAGE=dev\nREGION=us-east-1\n"))
	defer base.Remove()
	override := fs.NewFile(t, "override", fs.WithContent("STAGE=prod\n"))
	defer override.Remove()

	vars, err := LoadEnvFiles(base.Path(), override.Path())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"STAGE": "prod", "REGION": "us-east-1"}, vars)

	_, err = LoadEnvFiles("/does/not/exist.env")
	assert.Error(t, err)
}

func TestEnvVars(t *testing.T) {
	file := fs.NewFile(t, "env", fs.WithContent("REMAP_TEST_STAGE=file\nREMAP_TEST_ONLY_FILE=yes\n"))
	defer file.Remove()
	t.Setenv("REMAP_TEST_STAGE", "process")

	vars, err := EnvVars(file.Path())
	require.NoError(t, err)
	assert.Equal(t, "process", vars["REMAP_TEST_STAGE"])
	assert.Equal(t, "yes", vars["REMAP_TEST_ONLY_FILE"])
}
