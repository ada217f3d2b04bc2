package commands

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/kates/vector/loader"
	"github.com/spf13/cobra"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

func loaderVars(files []string) (map[string]string, error) {
	return loader.EnvVars(files...)
}

// loadProgram loads the program at path, or from stdin when path is "-".
func loadProgram(cmd *cobra.Command, path string, extraAssumed ...string) (*loader.LoadResult, error) {
	s, err := strictness()
	if err != nil {
		return nil, err
	}
	l := loader.NewLoader(
		loader.WithVars(programVars),
		loader.WithStrictness(s),
		loader.WithAssumed(append(append([]string(nil), assumedVars...), extraAssumed...)...),
	)
	if path == "-" {
		return l.LoadSource("stdin", cmd.InOrStdin())
	}
	return l.LoadFile(path)
}

// openInput opens path for reading, or returns stdin for "" and "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}

func printDiagnostics(w io.Writer, result *loader.LoadResult) {
	for _, warning := range result.Warnings {
		warnColor.Fprint(w, "warning: ")
		io.WriteString(w, warning+"\n")
	}
	for _, err := range result.Errors {
		errColor.Fprint(w, "error: ")
		io.WriteString(w, err.Error()+"\n")
	}
}
