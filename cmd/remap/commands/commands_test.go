package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kates/vector/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

func resetFlags() {
	envFiles, assumedVars = nil, nil
	strictnessArg, logLevelArg = "permissive", ""
	noColor, checkPrint = true, false
	runInput, runOnError, runSeeds = "", "abort", nil
	runWorkers, runQuiet, runFormat = 4, false, "json"
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func programFile(t *testing.T, src string) string {
	t.Helper()
	f := fs.NewFile(t, "program", fs.WithContent(src))
	t.Cleanup(f.Remove)
	return f.Path()
}

const negate = `
program:
  - assign: { path: .out, value: { not: { path: .flag } } }
`

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "remap dev\n", out)
}

func TestCheck(t *testing.T) {
	path := programFile(t, `
program:
  - assign: { variable: x, value: { literal: 1 } }
  - variable: x
`)
	out, _, err := execute(t, "", "check", "--print", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+path+" (integer)")
	assert.Contains(t, out, "  x: integer\n")
	assert.Contains(t, out, "x = 1")
}

func TestCheckFailures(t *testing.T) {
	good := programFile(t, negate)
	bad := programFile(t, "program:\n  - bogus: 1\n")

	out, errOut, err := execute(t, "", "check", good, bad)
	require.Error(t, err)
	assert.Equal(t, "1 of 2 programs failed to load", err.Error())
	assert.Contains(t, out, "✗ "+bad)
	assert.Contains(t, errOut, `unknown expression "bogus"`)
}

func TestCheckStrictness(t *testing.T) {
	path := programFile(t, "program:\n  - variable: later\n")

	_, errOut, err := execute(t, "", "check", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, `warning: `)

	_, _, err = execute(t, "", "check", "--strictness", "strict", path)
	assert.Error(t, err)

	_, _, err = execute(t, "", "check", "--strictness", "strict", "--assume", "later", path)
	assert.NoError(t, err)

	_, _, err = execute(t, "", "check", "--strictness", "sloppy", path)
	assert.Error(t, err)
}

func TestCheckStdin(t *testing.T) {
	out, _, err := execute(t, negate, "check", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ -")
}

func TestRun(t *testing.T) {
	path := programFile(t, negate)
	events := `{"flag": true}
{"flag": "x"}
{"flag": false}
`
	out, errOut, err := execute(t, events, "run", "--on-error", "tag", "--workers", "2", path)
	require.NoError(t, err)
	assert.Equal(t, `{"flag":true,"out":false}
{"flag":"x","metadata":{"remap_error":"cannot negate bytes, expected boolean"}}
{"flag":false,"out":true}
`, out)
	assert.Contains(t, errOut, "3 events processed, 0 dropped, 1 tagged")

	out, _, err = execute(t, events, "run", "--on-error", "drop", "-q", path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))

	_, _, err = execute(t, events, "run", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event 1")
}

func TestRunInputFile(t *testing.T) {
	path := programFile(t, negate)
	input := fs.NewFile(t, "events", fs.WithContent(`{"flag": true}`))
	defer input.Remove()

	out, _, err := execute(t, "", "run", "-q", "--input", input.Path(), path)
	require.NoError(t, err)
	assert.Equal(t, "{\"flag\":true,\"out\":false}\n", out)
}

func TestRunVarsAndEnv(t *testing.T) {
	path := programFile(t, `
program:
  - assign: { path: .env, value: { variable: env } }
  - assign: { path: .stage, value: { literal: "${REMAP_CLI_STAGE}" } }
`)
	envFile := fs.NewFile(t, "env", fs.WithContent("REMAP_CLI_STAGE=qa\n"))
	defer envFile.Remove()

	out, _, err := execute(t, "{}", "run", "-q", "--strictness", "strict",
		"--env-file", envFile.Path(), "--var", `env="prod"`, path)
	require.NoError(t, err)
	assert.Equal(t, "{\"env\":\"prod\",\"stage\":\"qa\"}\n", out)
}

func TestRunProtoFormat(t *testing.T) {
	path := programFile(t, negate)
	events, err := runtime.ReadEvents(strings.NewReader(`{"flag": true} {"flag": false}`), runtime.FormatJSON)
	require.NoError(t, err)
	var in bytes.Buffer
	require.NoError(t, runtime.WriteEvents(&in, runtime.FormatProto, events))

	out, _, err := execute(t, in.String(), "run", "-q", "--format", "proto", path)
	require.NoError(t, err)
	got, err := runtime.ReadEvents(strings.NewReader(out), runtime.FormatProto)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, `{ "flag": true, "out": false }`, got[0].String())
	assert.Equal(t, `{ "flag": false, "out": true }`, got[1].String())

	_, _, err = execute(t, "{}", "run", "--format", "xml", path)
	assert.ErrorIs(t, err, runtime.ErrUnknownFormat)
}

func TestRunBadFlags(t *testing.T) {
	path := programFile(t, negate)

	_, _, err := execute(t, "{}", "run", "--on-error", "explode", path)
	assert.Error(t, err)

	_, _, err = execute(t, "{}", "run", "--var", "novalue", path)
	assert.ErrorContains(t, err, "expected name=<json>")

	_, _, err = execute(t, "[1]", "run", path)
	assert.Error(t, err)
}
