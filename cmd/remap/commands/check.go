package commands

import (
	"fmt"
	"io"
	"slices"

	"github.com/kates/vector/decl"
	"github.com/kates/vector/runtime"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var checkPrint bool

var checkCmd = &cobra.Command{
	Use:   "check <program.yaml...>",
	Short: "Loads programs and reports what they can produce",
	Long: `The check command loads one or more program files, reports load errors
and warnings, and prints each program's result type and the types of the
variables it assigns. It does not run the programs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		for _, path := range args {
			result, err := loadProgram(cmd, path)
			if err != nil && result == nil {
				return err
			}
			printDiagnostics(cmd.ErrOrStderr(), result)
			if err != nil {
				failed++
				errColor.Fprintf(out, "✗ %s\n", path)
				continue
			}
			okColor.Fprintf(out, "✓ %s", path)
			dimColor.Fprintf(out, " (%s)\n", result.Program.TypeDef())
			describeProgram(out, result.Program)
		}
		if failed > 0 {
			p := message.NewPrinter(language.English)
			return fmt.Errorf("%s", p.Sprintf("%d of %d programs failed to load", failed, len(args)))
		}
		return nil
	},
}

func describeProgram(w io.Writer, p *runtime.Program) {
	vars := p.Variables()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, vars[name])
	}
	if checkPrint {
		fmt.Fprintln(w, decl.PPrint(p.Root()))
	}
}

func init() {
	checkCmd.Flags().BoolVarP(&checkPrint, "print", "p", false, "Pretty print the loaded program")
	AddCommand(checkCmd)
}
